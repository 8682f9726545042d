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

package layers

import (
	"encoding/binary"
	"hash/crc32"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"

	"jinr.ru/greenlab/go-mlp/pkg/log"
)

const (
	// BatchLayerNum identifies the layer
	BatchLayerNum = 2001

	// BatchMagic is "MPLB" in little-endian byte order
	BatchMagic = 0x424C504D

	BatchHeaderSize  = 20
	BatchTrailerSize = 4
)

const (
	FlagAvailable uint32 = 1 << iota
	FlagDegraded
)

// BatchLayer carries one batch of FIFO words handed out by the acquisition controller
//
//	0      4      8       12      16      20
//	| Magic | Seq | Count | Drops | Flags | Words ... | CRC32 |
type BatchLayer struct {
	layers.BaseLayer
	Seq   uint32
	Drops uint32
	Flags uint32
	Words []uint32
}

var BatchLayerType = gopacket.RegisterLayerType(BatchLayerNum,
	gopacket.LayerTypeMetadata{Name: "BatchLayerType", Decoder: gopacket.DecodeFunc(DecodeBatchLayer)})

// LayerType returns the type of the batch layer in the layer catalog
func (b *BatchLayer) LayerType() gopacket.LayerType {
	return BatchLayerType
}

func (b *BatchLayer) Available() bool {
	return b.Flags&FlagAvailable != 0
}

func (b *BatchLayer) Degraded() bool {
	return b.Flags&FlagDegraded != 0
}

// SerializeTo serializes the batch layer into bytes and writes the bytes to the SerializeBuffer
func (b *BatchLayer) SerializeTo(sb gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	size := BatchHeaderSize + 4*len(b.Words) + BatchTrailerSize
	bytes, err := sb.AppendBytes(size)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(bytes[0:4], BatchMagic)
	binary.LittleEndian.PutUint32(bytes[4:8], b.Seq)
	binary.LittleEndian.PutUint32(bytes[8:12], uint32(len(b.Words)))
	binary.LittleEndian.PutUint32(bytes[12:16], b.Drops)
	binary.LittleEndian.PutUint32(bytes[16:20], b.Flags)
	offset := BatchHeaderSize
	for _, w := range b.Words {
		binary.LittleEndian.PutUint32(bytes[offset:offset+4], w)
		offset += 4
	}
	binary.LittleEndian.PutUint32(bytes[offset:], crc32.ChecksumIEEE(bytes[:offset]))
	return nil
}

func (b *BatchLayer) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	log.Debug("DecodeFromBytes: decoding batch layer, length: %d", len(data))

	if len(data) < BatchHeaderSize+BatchTrailerSize {
		df.SetTruncated()
		return ErrBatchDecode{Reason: "frame too short"}
	}
	if magic := binary.LittleEndian.Uint32(data[0:4]); magic != BatchMagic {
		return ErrBatchDecode{Reason: "wrong magic"}
	}
	count := int(binary.LittleEndian.Uint32(data[8:12]))
	end := BatchHeaderSize + 4*count
	if count > (len(data)-BatchHeaderSize-BatchTrailerSize)/4 || end+BatchTrailerSize != len(data) {
		df.SetTruncated()
		return ErrBatchDecode{Reason: "frame size does not match word count"}
	}
	if crc := binary.LittleEndian.Uint32(data[end:]); crc != crc32.ChecksumIEEE(data[:end]) {
		return ErrBatchDecode{Reason: "checksum mismatch"}
	}

	b.BaseLayer = layers.BaseLayer{
		Contents: data,
		Payload:  []byte{},
	}
	b.Seq = binary.LittleEndian.Uint32(data[4:8])
	b.Drops = binary.LittleEndian.Uint32(data[12:16])
	b.Flags = binary.LittleEndian.Uint32(data[16:20])
	b.Words = make([]uint32, count)
	for i := range b.Words {
		offset := BatchHeaderSize + 4*i
		b.Words[i] = binary.LittleEndian.Uint32(data[offset : offset+4])
	}
	return nil
}

func DecodeBatchLayer(data []byte, p gopacket.PacketBuilder) error {
	b := &BatchLayer{}
	err := b.DecodeFromBytes(data, p)
	if err != nil {
		return err
	}
	p.AddLayer(b)
	return nil
}

// EncodeBatch ...
func EncodeBatch(b *BatchLayer) ([]byte, error) {
	buf := gopacket.NewSerializeBuffer()
	if err := gopacket.SerializeLayers(buf, gopacket.SerializeOptions{}, b); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeBatch ...
func DecodeBatch(data []byte) (*BatchLayer, error) {
	packet := gopacket.NewPacket(data, BatchLayerType, gopacket.Default)
	if errLayer := packet.ErrorLayer(); errLayer != nil {
		return nil, errLayer.Error()
	}
	b, ok := packet.Layer(BatchLayerType).(*BatchLayer)
	if !ok {
		return nil, ErrBatchDecode{Reason: "no batch layer"}
	}
	return b, nil
}
