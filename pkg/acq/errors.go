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

package acq

import (
	"fmt"
)

// ErrDeviceUnavailable returned when the FIFO registers can not be accessed.
// It stops the drain worker.
type ErrDeviceUnavailable struct {
	Op  string
	Err error
}

func (e ErrDeviceUnavailable) Error() string {
	return fmt.Sprintf("FIFO device unavailable during %s: %s", e.Op, e.Err)
}

func (e ErrDeviceUnavailable) Unwrap() error {
	return e.Err
}

// ErrBufferExhausted returned when draining more words would exceed the buffer limit.
// Nothing is popped from the FIFO in that case.
type ErrBufferExhausted struct {
	Limit int
	Need  int
}

func (e ErrBufferExhausted) Error() string {
	return fmt.Sprintf("Batch buffer exhausted: limit %d words, need %d", e.Limit, e.Need)
}
