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
	"sort"
)

type RegAlias int

const (
	RegLed RegAlias = iota
	RegTrigger
	RegPeriod
	RegAcquisitionLength
	RegTemperature
	RegIsaturation
	RegVFloat
	RegTimestamp
	RegAliasLimit
)

type Region int

const (
	RegionControl Region = iota
	RegionStatus
)

func (r Region) String() string {
	if r == RegionControl {
		return "control"
	}
	return "status"
}

type Reg struct {
	Name   string
	Region Region
	Offset uint32
}

// Offsets are relative to the control and status regions of the FPGA design
var RegMap = map[RegAlias]Reg{
	RegLed:               {Name: "led", Region: RegionControl, Offset: 0x00},
	RegTrigger:           {Name: "trigger", Region: RegionControl, Offset: 0x04},
	RegPeriod:            {Name: "period", Region: RegionControl, Offset: 0x08},
	RegAcquisitionLength: {Name: "acquisition_length", Region: RegionControl, Offset: 0x0C},
	RegTemperature:       {Name: "temperature", Region: RegionStatus, Offset: 0x10},
	RegIsaturation:       {Name: "isaturation", Region: RegionStatus, Offset: 0x14},
	RegVFloat:            {Name: "vfloat", Region: RegionStatus, Offset: 0x18},
	RegTimestamp:         {Name: "timestamp", Region: RegionStatus, Offset: 0x1C},
}

// RegByName ...
func RegByName(name string) (RegAlias, Reg, error) {
	for alias, reg := range RegMap {
		if reg.Name == name {
			return alias, reg, nil
		}
	}
	return 0, Reg{}, ErrUnknownReg{Name: name}
}

// RegNames returns register names sorted alphabetically
func RegNames() []string {
	names := make([]string, 0, len(RegMap))
	for _, reg := range RegMap {
		names = append(names, reg.Name)
	}
	sort.Strings(names)
	return names
}
