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

package serve

import (
	"fmt"

	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-mlp/pkg/command"
	"jinr.ru/greenlab/go-mlp/pkg/config"
)

const (
	AddressOptionName  = "address"
	PortOptionName     = "port"
	SimulateOptionName = "simulate"
	DevMemOptionName   = "dev-mem"
)

func NewCommand(cfg *config.Config) *cobra.Command {
	var address, devMem string
	var port int
	var simulate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start acquisition server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed(AddressOptionName) {
				cfg.Api.Address = address
			}
			if cmd.Flags().Changed(PortOptionName) {
				cfg.Api.Port = port
			}
			if cmd.Flags().Changed(SimulateOptionName) {
				cfg.Device.Simulate = simulate
			}
			if cmd.Flags().Changed(DevMemOptionName) {
				cfg.Device.DevMem = devMem
			}
			return command.StartServer(cfg)
		},
	}
	cmd.Flags().StringVar(&address, AddressOptionName, config.DefaultApiAddress, "Address to bind API server")
	cmd.Flags().IntVar(&port, PortOptionName, config.DefaultApiPort, "API server port")
	cmd.Flags().BoolVar(&simulate, SimulateOptionName, false, "Simulate device registers and FIFO")
	cmd.Flags().StringVar(&devMem, DevMemOptionName, config.DefaultDevMem,
		fmt.Sprintf("Physical memory device used to map registers. E.g. %s", config.DefaultDevMem))

	return cmd
}
