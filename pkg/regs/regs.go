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

// Package regs gives 32-bit access to memory-mapped register regions.
package regs

import (
	"sync"
)

// Memory is a register region addressed by byte offset.
type Memory interface {
	Read(off uint32) (uint32, error)
	Write(off, value uint32) error
}

func checkOffset(off, size uint32) error {
	if off%4 != 0 {
		return ErrUnaligned{Offset: off}
	}
	if off+4 > size || off+4 < off {
		return ErrOutOfRange{Offset: off, Size: size}
	}
	return nil
}

func SetBit(m Memory, off uint32, bit uint) error {
	value, err := m.Read(off)
	if err != nil {
		return err
	}
	return m.Write(off, value|(1<<bit))
}

func ClearBit(m Memory, off uint32, bit uint) error {
	value, err := m.Read(off)
	if err != nil {
		return err
	}
	return m.Write(off, value&^(1<<bit))
}

// Mem is an in-memory register region. It is used in simulation mode and tests.
type Mem struct {
	mu     sync.Mutex
	size   uint32
	words  []uint32
	writes map[uint32][]uint32
}

var _ Memory = &Mem{}

func NewMem(size uint32) *Mem {
	return &Mem{
		size:   size,
		words:  make([]uint32, size/4),
		writes: make(map[uint32][]uint32),
	}
}

func (m *Mem) Read(off uint32) (uint32, error) {
	if err := checkOffset(off, m.size); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.words[off/4], nil
}

func (m *Mem) Write(off, value uint32) error {
	if err := checkOffset(off, m.size); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.words[off/4] = value
	m.writes[off] = append(m.writes[off], value)
	return nil
}

// Writes returns the history of values written at the offset
func (m *Mem) Writes(off uint32) []uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]uint32(nil), m.writes[off]...)
}

func (m *Mem) Size() uint32 {
	return m.size
}
