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

package config

const (
	ConfigDir   = ".go-mlp"
	ConfigFile  = "config.yaml"
	DBFile      = "state.db"

	DefaultLogLevel = "info"

	DefaultDevMem      = "/dev/mem"
	DefaultControlAddr = 0x60000000
	DefaultStatusAddr  = 0x50000000
	DefaultFifoAddr    = 0x43C10000
	DefaultRangeSize   = 4096

	DefaultSimDepth = 32768
	DefaultSimRate  = 1000000

	// DefaultOverflowThreshold is the depth of the ADC FIFO in the FPGA design
	DefaultOverflowThreshold = 32768
	DefaultPollInterval      = "0s"
	DefaultReserve           = 1 << 20
	DefaultMaxWords          = 0

	DefaultApiAddress    = "127.0.0.1"
	DefaultApiPort       = 8010
	DefaultStatsInterval = "10s"
)
