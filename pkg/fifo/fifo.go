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

package fifo

import (
	"jinr.ru/greenlab/go-mlp/pkg/regs"
)

// Receive side registers of AXI4-Stream FIFO, see Xilinx PG080
const (
	RegRDFR = 0x18
	RegRDFO = 0x1C
	RegRDFD = 0x20
	RegRLR  = 0x24

	ResetMagic = 0x000000A5
	LengthMask = 0x3FFFFF
	WordSize   = 4
)

// Fifo is a hardware queue of 32-bit sample words.
// Pop must not be called when Length is 0.
type Fifo interface {
	Occupancy() (uint32, error)
	Length() (uint32, error)
	Reset() error
	Pop() (uint32, error)
}

type AxiFifo struct {
	mem regs.Memory
}

var _ Fifo = &AxiFifo{}

func NewAxiFifo(mem regs.Memory) *AxiFifo {
	return &AxiFifo{mem: mem}
}

func (f *AxiFifo) Occupancy() (uint32, error) {
	return f.mem.Read(RegRDFO)
}

// Length returns the number of words ready to be read.
// The register holds a byte count in its lower 22 bits.
func (f *AxiFifo) Length() (uint32, error) {
	rlr, err := f.mem.Read(RegRLR)
	if err != nil {
		return 0, err
	}
	return (rlr & LengthMask) / WordSize, nil
}

func (f *AxiFifo) Reset() error {
	return f.mem.Write(RegRDFR, ResetMagic)
}

func (f *AxiFifo) Pop() (uint32, error) {
	return f.mem.Read(RegRDFD)
}
