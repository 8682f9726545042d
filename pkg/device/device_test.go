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
	"errors"
	"testing"

	"jinr.ru/greenlab/go-mlp/pkg/regs"
)

type fakeStore struct {
	values map[string]uint32
}

func (s *fakeStore) SetReg(name string, value uint32) error {
	s.values[name] = value
	return nil
}

func (s *fakeStore) GetRegAll() (map[string]uint32, error) {
	return s.values, nil
}

func newTestDevice() (*MLP, *regs.Mem, *regs.Mem, *fakeStore) {
	ctl := regs.NewMem(0x20)
	sts := regs.NewMem(0x20)
	store := &fakeStore{values: map[string]uint32{}}
	return NewMLP(ctl, sts, store), ctl, sts, store
}

func TestTrigPulse(t *testing.T) {
	d, ctl, _, _ := newTestDevice()
	ctl.Write(RegMap[RegTrigger].Offset, 0x100)
	if err := d.TrigPulse(); err != nil {
		t.Fatal(err)
	}
	writes := ctl.Writes(RegMap[RegTrigger].Offset)
	if len(writes) != 3 || writes[1] != 0x101 || writes[2] != 0x100 {
		t.Fatalf("trigger writes=%v", writes)
	}
}

func TestSetters(t *testing.T) {
	d, ctl, _, store := newTestDevice()
	if err := d.SetLed(0x5); err != nil {
		t.Fatal(err)
	}
	if err := d.SetPeriod(1000); err != nil {
		t.Fatal(err)
	}
	if err := d.SetAcquisitionLength(10); err != nil {
		t.Fatal(err)
	}
	if v, _ := ctl.Read(RegMap[RegPeriod].Offset); v != 1000 {
		t.Fatalf("period=%d", v)
	}
	if store.values["period"] != 1000 || store.values["led"] != 5 || store.values["acquisition_length"] != 10 {
		t.Fatalf("store=%v", store.values)
	}
}

func TestStatusRegisters(t *testing.T) {
	d, _, sts, _ := newTestDevice()
	sts.Write(RegMap[RegTemperature].Offset, 300)
	sts.Write(RegMap[RegIsaturation].Offset, 11)
	sts.Write(RegMap[RegVFloat].Offset, 12)
	sts.Write(RegMap[RegTimestamp].Offset, 13)

	getters := []struct {
		get  func() (uint32, error)
		want uint32
	}{
		{d.Temperature, 300}, {d.Isaturation, 11}, {d.VFloat, 12}, {d.Timestamp, 13},
	}
	for i, g := range getters {
		if v, err := g.get(); err != nil || v != g.want {
			t.Fatalf("getter %d: %d err=%v want %d", i, v, err, g.want)
		}
	}

	all, err := d.ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != len(RegMap) || all["temperature"] != 300 {
		t.Fatalf("ReadAll()=%v", all)
	}
}

func TestWriteRegByName(t *testing.T) {
	d, _, _, _ := newTestDevice()
	var readOnly ErrReadOnly
	if err := d.WriteReg("temperature", 1); !errors.As(err, &readOnly) {
		t.Fatalf("expected ErrReadOnly, got %v", err)
	}
	var unknown ErrUnknownReg
	if _, err := d.ReadReg("voltage"); !errors.As(err, &unknown) {
		t.Fatalf("expected ErrUnknownReg, got %v", err)
	}
	if err := d.WriteReg("led", 3); err != nil {
		t.Fatal(err)
	}
	if v, err := d.ReadReg("led"); err != nil || v != 3 {
		t.Fatalf("ReadReg(led)=%d err=%v", v, err)
	}
}

func TestRestore(t *testing.T) {
	d, ctl, _, store := newTestDevice()
	store.values["period"] = 42
	store.values["trigger"] = 1
	store.values["obsolete"] = 7
	if err := d.Restore(); err != nil {
		t.Fatal(err)
	}
	if v, _ := ctl.Read(RegMap[RegPeriod].Offset); v != 42 {
		t.Fatalf("period=%d", v)
	}
	if len(ctl.Writes(RegMap[RegTrigger].Offset)) != 0 {
		t.Fatalf("trigger must not be restored")
	}
}

func TestRegNames(t *testing.T) {
	names := RegNames()
	if len(names) != int(RegAliasLimit) || names[0] != "acquisition_length" {
		t.Fatalf("RegNames()=%v", names)
	}
}
