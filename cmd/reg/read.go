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

package reg

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-mlp/pkg/command"
	"jinr.ru/greenlab/go-mlp/pkg/config"
	"jinr.ru/greenlab/go-mlp/pkg/device"
)

func NewReadCommand(cfg *config.Config) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "read",
		Short: "Read value from register",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient := command.NewApiClient(cfg)
			if name != "" {
				value, err := apiClient.RegRead(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Register state: %s = 0x%x\n", name, value)
				return nil
			}
			regs, err := apiClient.RegReadAll()
			if err != nil {
				return err
			}
			var keys []string
			for key := range regs {
				keys = append(keys, key)
			}
			sort.Strings(keys)
			for _, key := range keys {
				fmt.Fprintf(cmd.OutOrStdout(), "Register state: %s = 0x%x\n", key, regs[key])
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&name, NameOptionName, "", fmt.Sprintf("Register name. One of: %v. All registers when empty", device.RegNames()))

	return cmd
}
