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

// Package dump stores fetched FIFO words in files as little-endian uint32,
// optionally compressed with zstd.
package dump

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"

	"jinr.ru/greenlab/go-mlp/pkg/log"
)

var zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}

var decoder, _ = zstd.NewReader(nil)

type Writer struct {
	file   *os.File
	buf    *bufio.Writer
	enc    *zstd.Encoder
	out    io.Writer
	words  uint64
	closed bool
}

// Create truncates or creates the file at path
func Create(path string, compress bool) (*Writer, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	w := &Writer{
		file: file,
		buf:  bufio.NewWriter(file),
	}
	w.out = w.buf
	if compress {
		w.enc, err = zstd.NewWriter(w.buf, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			file.Close()
			return nil, err
		}
		w.out = w.enc
	}
	log.Debug("Created dump file %s, compress: %t", path, compress)
	return w, nil
}

func (w *Writer) Write(words []uint32) error {
	if len(words) == 0 {
		return nil
	}
	b := make([]byte, 4*len(words))
	for i, word := range words {
		binary.LittleEndian.PutUint32(b[4*i:], word)
	}
	if _, err := w.out.Write(b); err != nil {
		return err
	}
	w.words += uint64(len(words))
	return nil
}

// Words returns the number of words written so far
func (w *Writer) Words() uint64 {
	return w.words
}

// Close flushes buffered data and closes the file. Subsequent calls do nothing.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if w.enc != nil {
		if err := w.enc.Close(); err != nil {
			w.file.Close()
			return err
		}
	}
	if err := w.buf.Flush(); err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
}

// ReadFile reads all words of a dump file
func ReadFile(path string) ([]uint32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if bytes.HasPrefix(data, zstdMagic) {
		data, err = decoder.DecodeAll(data, nil)
		if err != nil {
			return nil, err
		}
	}
	if len(data)%4 != 0 {
		return nil, ErrTruncated{Path: path, Size: len(data)}
	}
	words := make([]uint32, len(data)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(data[4*i:])
	}
	return words, nil
}
