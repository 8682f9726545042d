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

package state

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
	"sigs.k8s.io/yaml"

	"jinr.ru/greenlab/go-mlp/pkg/acq"
	"jinr.ru/greenlab/go-mlp/pkg/log"
)

const (
	RegBucket = "reg_control"
	AcqBucket = "acq"
	TotalsKey = "totals"
)

// State keeps control register values and acquisition totals across restarts
type State struct {
	DB *bbolt.DB
}

// Open creates the database file and its directory when missing
func Open(path string) (*State, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	if err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{RegBucket, AcqBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, err
	}
	return &State{DB: db}, nil
}

func uint32ToByte(v uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return b
}

// Close ...
func (s *State) Close() error {
	return s.DB.Close()
}

// SetReg ...
func (s *State) SetReg(name string, value uint32) error {
	log.Debug("Storing register: %s = 0x%x", name, value)
	return s.DB.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(RegBucket))
		if b == nil {
			return ErrBucketNotFound{Bucket: RegBucket}
		}
		return b.Put([]byte(name), uint32ToByte(value))
	})
}

// GetReg ...
func (s *State) GetReg(name string) (uint32, error) {
	var value uint32
	if err := s.DB.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(RegBucket))
		if b == nil {
			return ErrBucketNotFound{Bucket: RegBucket}
		}
		valueBytes := b.Get([]byte(name))
		if len(valueBytes) != 4 {
			return ErrKeyNotFound{Key: name}
		}
		value = binary.BigEndian.Uint32(valueBytes)
		return nil
	}); err != nil {
		return 0, err
	}
	return value, nil
}

// GetRegAll ...
func (s *State) GetRegAll() (map[string]uint32, error) {
	values := make(map[string]uint32)
	if err := s.DB.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(RegBucket))
		if b == nil {
			return ErrBucketNotFound{Bucket: RegBucket}
		}
		return b.ForEach(func(k, v []byte) error {
			if len(v) != 4 {
				log.Warning("Skip malformed value of register %s", string(k))
				return nil
			}
			values[string(k)] = binary.BigEndian.Uint32(v)
			return nil
		})
	}); err != nil {
		return nil, err
	}
	return values, nil
}

// SetTotals ...
func (s *State) SetTotals(totals acq.Totals) error {
	data, err := yaml.Marshal(totals)
	if err != nil {
		return err
	}
	return s.DB.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(AcqBucket))
		if b == nil {
			return ErrBucketNotFound{Bucket: AcqBucket}
		}
		return b.Put([]byte(TotalsKey), data)
	})
}

// GetTotals returns zero totals when nothing was stored yet
func (s *State) GetTotals() (acq.Totals, error) {
	var totals acq.Totals
	var data []byte
	if err := s.DB.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(AcqBucket))
		if b == nil {
			return ErrBucketNotFound{Bucket: AcqBucket}
		}
		if v := b.Get([]byte(TotalsKey)); v != nil {
			data = append(data, v...)
		}
		return nil
	}); err != nil {
		return totals, err
	}
	if data == nil {
		return totals, nil
	}
	if err := yaml.Unmarshal(data, &totals); err != nil {
		return totals, err
	}
	return totals, nil
}
