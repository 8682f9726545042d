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
)

// ErrOutOfRange returned when a register offset is outside of the mapped region
type ErrOutOfRange struct {
	Offset uint32
	Size   uint32
}

func (e ErrOutOfRange) Error() string {
	return fmt.Sprintf("Register offset 0x%x is out of range (size 0x%x)", e.Offset, e.Size)
}

type ErrUnaligned struct {
	Offset uint32
}

func (e ErrUnaligned) Error() string {
	return fmt.Sprintf("Address 0x%x is not aligned", e.Offset)
}
