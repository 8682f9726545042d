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
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	pkgacq "jinr.ru/greenlab/go-mlp/pkg/acq"
	"jinr.ru/greenlab/go-mlp/pkg/command"
	"jinr.ru/greenlab/go-mlp/pkg/config"
)

func NewCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:       "acq start|stop|status",
		Short:     "Control FIFO acquisition",
		Args:      cobra.ExactValidArgs(1),
		ValidArgs: []string{"start", "stop", "status"},
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient := command.NewApiClient(cfg)
			var status *pkgacq.Status
			var err error
			switch args[0] {
			case "start":
				status, err = apiClient.AcqStart()
			case "stop":
				status, err = apiClient.AcqStop()
			default:
				status, err = apiClient.AcqStatus()
			}
			if err != nil {
				return err
			}
			return printStatus(cmd.OutOrStdout(), status)
		},
	}
	cmd.AddCommand(NewFetchCommand(cfg))
	return cmd
}

func printStatus(out io.Writer, status *pkgacq.Status) error {
	data, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(out, string(data))
	return nil
}
