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

package regs

import (
	"fmt"
	"os"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/unix"

	"jinr.ru/greenlab/go-mlp/pkg/log"
)

// MMap is a register region mapped from a memory device file (usually /dev/mem).
type MMap struct {
	file *os.File
	base uint32
	data []byte
}

var _ Memory = &MMap{}

// Open maps size bytes of devmem starting at physical address base
func Open(devmem string, base, size uint32) (*MMap, error) {
	pageSize := uint32(os.Getpagesize())
	if base%pageSize != 0 {
		return nil, ErrUnaligned{Offset: base}
	}
	if size == 0 || size%4 != 0 {
		return nil, ErrOutOfRange{Offset: 0, Size: size}
	}

	file, err := os.OpenFile(devmem, os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		return nil, fmt.Errorf("could not open %q: %w", devmem, err)
	}

	data, err := unix.Mmap(int(file.Fd()), int64(base), int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("could not map %s at 0x%08x (size 0x%x): %w", devmem, base, size, err)
	}
	log.Debug("Mapped %s at 0x%08x size 0x%x", devmem, base, size)

	return &MMap{
		file: file,
		base: base,
		data: data,
	}, nil
}

// Read uses atomic load so the compiler never caches or elides a register access.
func (m *MMap) Read(off uint32) (uint32, error) {
	if err := checkOffset(off, uint32(len(m.data))); err != nil {
		return 0, err
	}
	return atomic.LoadUint32((*uint32)(unsafe.Pointer(&m.data[off]))), nil
}

func (m *MMap) Write(off, value uint32) error {
	if err := checkOffset(off, uint32(len(m.data))); err != nil {
		return err
	}
	atomic.StoreUint32((*uint32)(unsafe.Pointer(&m.data[off])), value)
	return nil
}

func (m *MMap) Base() uint32 {
	return m.base
}

func (m *MMap) Close() error {
	if m.data != nil {
		if err := unix.Munmap(m.data); err != nil {
			return err
		}
		m.data = nil
	}
	return m.file.Close()
}
