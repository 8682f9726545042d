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
)

type ErrUnknownReg struct {
	Name string
}

func (e ErrUnknownReg) Error() string {
	return fmt.Sprintf("Unknown register: %s", e.Name)
}

// ErrReadOnly returned on attempt to write a status register
type ErrReadOnly struct {
	Name string
}

func (e ErrReadOnly) Error() string {
	return fmt.Sprintf("Register is read only: %s", e.Name)
}
