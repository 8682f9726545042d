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
	"strconv"

	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-mlp/pkg/command"
	"jinr.ru/greenlab/go-mlp/pkg/config"
)

func NewWriteCommand(cfg *config.Config) *cobra.Command {
	var name, value string
	cmd := &cobra.Command{
		Use:   "write",
		Short: "Write value to control register",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := strconv.ParseUint(value, 0, 32)
			if err != nil {
				return err
			}
			apiClient := command.NewApiClient(cfg)
			return apiClient.RegWrite(name, uint32(parsed))
		},
	}
	cmd.Flags().StringVar(&name, NameOptionName, "", "Register name")
	cmd.MarkFlagRequired(NameOptionName)
	cmd.Flags().StringVar(&value, ValueOptionName, "", "Register value (decimal or 0x prefixed hexadecimal)")
	cmd.MarkFlagRequired(ValueOptionName)

	return cmd
}

func NewTriggerCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trigger",
		Short: "Send trigger pulse",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient := command.NewApiClient(cfg)
			return apiClient.Trigger()
		},
	}
	return cmd
}
