/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

package device

import (
	"fmt"

	"jinr.ru/greenlab/go-mlp/pkg/log"
	"jinr.ru/greenlab/go-mlp/pkg/regs"
)

const (
	TriggerBit = 0
)

// Store keeps the last values written to control registers
type Store interface {
	SetReg(name string, value uint32) error
	GetRegAll() (map[string]uint32, error)
}

// MLP is the mirror Langmuir probe instrument
type MLP struct {
	ctl   regs.Memory
	sts   regs.Memory
	store Store
}

func NewMLP(ctl, sts regs.Memory, store Store) *MLP {
	return &MLP{
		ctl:   ctl,
		sts:   sts,
		store: store,
	}
}

func (d *MLP) region(r Region) regs.Memory {
	if r == RegionControl {
		return d.ctl
	}
	return d.sts
}

// TrigPulse sets and clears the trigger bit
func (d *MLP) TrigPulse() error {
	reg := RegMap[RegTrigger]
	log.Debug("Trigger pulse")
	if err := regs.SetBit(d.ctl, reg.Offset, TriggerBit); err != nil {
		return err
	}
	return regs.ClearBit(d.ctl, reg.Offset, TriggerBit)
}

func (d *MLP) SetLed(value uint32) error {
	return d.write(RegLed, value)
}

func (d *MLP) SetPeriod(value uint32) error {
	return d.write(RegPeriod, value)
}

func (d *MLP) SetAcquisitionLength(value uint32) error {
	return d.write(RegAcquisitionLength, value)
}

func (d *MLP) Temperature() (uint32, error) {
	return d.read(RegTemperature)
}

func (d *MLP) Isaturation() (uint32, error) {
	return d.read(RegIsaturation)
}

func (d *MLP) VFloat() (uint32, error) {
	return d.read(RegVFloat)
}

func (d *MLP) Timestamp() (uint32, error) {
	return d.read(RegTimestamp)
}

func (d *MLP) read(alias RegAlias) (uint32, error) {
	reg := RegMap[alias]
	value, err := d.region(reg.Region).Read(reg.Offset)
	if err != nil {
		return 0, fmt.Errorf("could not read %s register: %w", reg.Name, err)
	}
	return value, nil
}

func (d *MLP) write(alias RegAlias, value uint32) error {
	reg := RegMap[alias]
	if reg.Region != RegionControl {
		return ErrReadOnly{Name: reg.Name}
	}
	log.Debug("Setting register: %s = 0x%x", reg.Name, value)
	if err := d.ctl.Write(reg.Offset, value); err != nil {
		return fmt.Errorf("could not write %s register: %w", reg.Name, err)
	}
	if d.store != nil {
		if err := d.store.SetReg(reg.Name, value); err != nil {
			log.Warning("Could not persist register %s: %s", reg.Name, err)
		}
	}
	return nil
}

// ReadReg ...
func (d *MLP) ReadReg(name string) (uint32, error) {
	alias, _, err := RegByName(name)
	if err != nil {
		return 0, err
	}
	return d.read(alias)
}

// WriteReg writes a control register
func (d *MLP) WriteReg(name string, value uint32) error {
	alias, _, err := RegByName(name)
	if err != nil {
		return err
	}
	return d.write(alias, value)
}

// ReadAll returns values of all registers by name
func (d *MLP) ReadAll() (map[string]uint32, error) {
	values := make(map[string]uint32, len(RegMap))
	for alias, reg := range RegMap {
		value, err := d.read(alias)
		if err != nil {
			return nil, err
		}
		values[reg.Name] = value
	}
	return values, nil
}

// Restore writes stored control register values back to the device
func (d *MLP) Restore() error {
	if d.store == nil {
		return nil
	}
	values, err := d.store.GetRegAll()
	if err != nil {
		return err
	}
	for name, value := range values {
		alias, reg, err := RegByName(name)
		if err != nil {
			log.Warning("Skip stored value of unknown register %s", name)
			continue
		}
		if reg.Region != RegionControl || alias == RegTrigger {
			continue
		}
		log.Info("Restoring register %s = 0x%x", name, value)
		if err := d.ctl.Write(reg.Offset, value); err != nil {
			return fmt.Errorf("could not restore %s register: %w", name, err)
		}
	}
	return nil
}
