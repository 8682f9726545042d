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
	"time"

	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-mlp/pkg/command"
	"jinr.ru/greenlab/go-mlp/pkg/config"
	"jinr.ru/greenlab/go-mlp/pkg/dump"
	"jinr.ru/greenlab/go-mlp/pkg/log"
)

const (
	OutOptionName      = "out"
	ZstdOptionName     = "zstd"
	JSONOptionName     = "json"
	BatchesOptionName  = "batches"
	IntervalOptionName = "interval"
)

func NewFetchCommand(cfg *config.Config) *cobra.Command {
	var out string
	var compress, asJSON bool
	var batches int
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch collected FIFO words",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient := command.NewApiClient(cfg)

			var writer *dump.Writer
			if out != "" {
				var err error
				writer, err = dump.Create(out, compress)
				if err != nil {
					return err
				}
				defer writer.Close()
			}

			for i := 0; i < batches; i++ {
				if i > 0 {
					time.Sleep(interval)
				}
				if asJSON {
					batch, err := apiClient.AcqDataJSON()
					if err != nil {
						return err
					}
					data, err := json.Marshal(batch)
					if err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), string(data))
					continue
				}

				batch, err := apiClient.AcqData()
				if err != nil {
					return err
				}
				log.Debug("Batch %d: %d words, drops %d, flags 0x%x", batch.Seq, len(batch.Words), batch.Drops, batch.Flags)
				if writer != nil {
					if err := writer.Write(batch.Words); err != nil {
						return err
					}
					continue
				}
				for _, word := range batch.Words {
					fmt.Fprintf(cmd.OutOrStdout(), "0x%08x\n", word)
				}
			}

			if writer != nil {
				if err := writer.Close(); err != nil {
					return err
				}
				log.Info("Written %d words to %s", writer.Words(), out)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&out, OutOptionName, "", "Dump file. Words are printed when not set")
	cmd.Flags().BoolVar(&compress, ZstdOptionName, false, "Compress dump file with zstd")
	cmd.Flags().BoolVar(&asJSON, JSONOptionName, false, "Print batches as JSON")
	cmd.Flags().IntVar(&batches, BatchesOptionName, 1, "Number of batches to fetch")
	cmd.Flags().DurationVar(&interval, IntervalOptionName, time.Second, "Pause between batches")
	return cmd
}
