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
	"fmt"

	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-mlp/pkg/command"
	"jinr.ru/greenlab/go-mlp/pkg/config"
)

func NewCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:       "fifo status|reset",
		Short:     "Inspect or reset the stream FIFO",
		Args:      cobra.ExactValidArgs(1),
		ValidArgs: []string{"status", "reset"},
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient := command.NewApiClient(cfg)
			if args[0] == "reset" {
				return apiClient.FifoReset()
			}
			fs, err := apiClient.FifoStatus()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "FIFO occupancy: %d\nFIFO receive length: %d words\n", fs.Occupancy, fs.Length)
			return nil
		},
	}
	return cmd
}
