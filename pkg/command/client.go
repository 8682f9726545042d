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

package command

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/imroc/req"

	"jinr.ru/greenlab/go-mlp/pkg/acq"
	"jinr.ru/greenlab/go-mlp/pkg/config"
	"jinr.ru/greenlab/go-mlp/pkg/layers"
	"jinr.ru/greenlab/go-mlp/pkg/srv"
)

type ApiClient struct {
	*config.Config
	ApiPrefix string
}

func NewApiClient(cfg *config.Config) *ApiClient {
	return &ApiClient{
		Config:    cfg,
		ApiPrefix: fmt.Sprintf("http://%s/api", cfg.ApiEndpoint()),
	}
}

func (c *ApiClient) url(path string) string {
	return fmt.Sprintf("%s%s", c.ApiPrefix, path)
}

func check(r *req.Resp) error {
	if r.Response().StatusCode != http.StatusOK {
		return ErrApi{
			Status:  r.Response().Status,
			Message: strings.TrimSpace(r.String()),
		}
	}
	return nil
}

func (c *ApiClient) status(method, path string) (*acq.Status, error) {
	var r *req.Resp
	var err error
	if method == http.MethodPost {
		r, err = req.Post(c.url(path))
	} else {
		r, err = req.Get(c.url(path))
	}
	if err != nil {
		return nil, err
	}
	if err = check(r); err != nil {
		return nil, err
	}
	status := &acq.Status{}
	if err = r.ToJSON(status); err != nil {
		return nil, err
	}
	return status, nil
}

// AcqStart sends request to start the drain worker
func (c *ApiClient) AcqStart() (*acq.Status, error) {
	return c.status(http.MethodPost, "/acq/start")
}

// AcqStop sends request to stop the drain worker
func (c *ApiClient) AcqStop() (*acq.Status, error) {
	return c.status(http.MethodPost, "/acq/stop")
}

// AcqStatus ...
func (c *ApiClient) AcqStatus() (*acq.Status, error) {
	return c.status(http.MethodGet, "/acq/status")
}

// AcqData fetches the words collected since the previous fetch
func (c *ApiClient) AcqData() (*layers.BatchLayer, error) {
	r, err := req.Get(c.url("/acq/data"))
	if err != nil {
		return nil, err
	}
	if err = check(r); err != nil {
		return nil, err
	}
	data, err := r.ToBytes()
	if err != nil {
		return nil, err
	}
	return layers.DecodeBatch(data)
}

// AcqDataJSON is AcqData with the batch encoded as JSON
func (c *ApiClient) AcqDataJSON() (*srv.Batch, error) {
	r, err := req.Get(c.url("/acq/data"), req.Param{"format": srv.FormatJSON})
	if err != nil {
		return nil, err
	}
	if err = check(r); err != nil {
		return nil, err
	}
	batch := &srv.Batch{}
	if err = r.ToJSON(batch); err != nil {
		return nil, err
	}
	return batch, nil
}

func (c *ApiClient) AcqCount() (uint32, error) {
	r, err := req.Get(c.url("/acq/count"))
	if err != nil {
		return 0, err
	}
	if err = check(r); err != nil {
		return 0, err
	}
	count := &srv.Count{}
	if err = r.ToJSON(count); err != nil {
		return 0, err
	}
	return count.Count, nil
}

func (c *ApiClient) AcqDrops() (uint32, error) {
	r, err := req.Get(c.url("/acq/drops"))
	if err != nil {
		return 0, err
	}
	if err = check(r); err != nil {
		return 0, err
	}
	drops := &srv.Drops{}
	if err = r.ToJSON(drops); err != nil {
		return 0, err
	}
	return drops.Drops, nil
}

// FifoStatus sends request to get FIFO occupancy and receive length
func (c *ApiClient) FifoStatus() (*srv.FifoStatus, error) {
	r, err := req.Get(c.url("/fifo"))
	if err != nil {
		return nil, err
	}
	if err = check(r); err != nil {
		return nil, err
	}
	fs := &srv.FifoStatus{}
	if err = r.ToJSON(fs); err != nil {
		return nil, err
	}
	return fs, nil
}

// FifoReset sends request to reset the receive side of the FIFO
func (c *ApiClient) FifoReset() error {
	r, err := req.Post(c.url("/fifo/reset"))
	if err != nil {
		return err
	}
	return check(r)
}

// Trigger sends request to pulse the trigger bit
func (c *ApiClient) Trigger() error {
	r, err := req.Post(c.url("/trigger"))
	if err != nil {
		return err
	}
	return check(r)
}

// RegRead sends request to get the value of a register
func (c *ApiClient) RegRead(name string) (uint32, error) {
	r, err := req.Get(c.url("/reg/" + name))
	if err != nil {
		return 0, err
	}
	if err = check(r); err != nil {
		return 0, err
	}
	reg := &srv.RegValue{}
	if err = r.ToJSON(reg); err != nil {
		return 0, err
	}
	return reg.Value, nil
}

// RegReadAll sends request to get values of all registers
func (c *ApiClient) RegReadAll() (map[string]uint32, error) {
	r, err := req.Get(c.url("/reg"))
	if err != nil {
		return nil, err
	}
	if err = check(r); err != nil {
		return nil, err
	}
	values := make(map[string]uint32)
	if err = r.ToJSON(&values); err != nil {
		return nil, err
	}
	return values, nil
}

// RegWrite sends request to write the value to a control register
func (c *ApiClient) RegWrite(name string, value uint32) error {
	r, err := req.Post(c.url("/reg/"+name), req.BodyJSON(&srv.RegValue{Value: value}))
	if err != nil {
		return err
	}
	return check(r)
}
