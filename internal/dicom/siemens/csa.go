// Package siemens decodes the Siemens CSA header blobs embedded in private
// DICOM attributes. CSA headers use the "SV10" binary chunk format; the
// series header additionally carries the scanner protocol as free text, which
// is where fields like ucMultiSliceMode live.
package siemens

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
)

var csaMagic = []byte("SV10")

// csaConstant follows the magic bytes and separates elements.
var csaConstant = []byte{0x04, 0x03, 0x02, 0x01}

// Chunk is one named element of a CSA header.
type Chunk struct {
	Name     string
	VM       int32
	VR       string
	SyngoDT  int32
	NumItems int32
	Values   []string
}

// ParseCSA decodes an SV10-format CSA header into its named chunks.
func ParseCSA(data []byte) (map[string]Chunk, error) {
	r := &csaReader{data: data}

	magic, err := r.bytes(4)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(magic, csaMagic) {
		return nil, fmt.Errorf("CSA header does not start with SV10")
	}

	constant, err := r.bytes(4)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(constant, csaConstant) {
		return nil, fmt.Errorf("CSA header missing constant %v", csaConstant)
	}

	numElements, err := r.uint32()
	if err != nil {
		return nil, err
	}
	// Delimiter word after the element count.
	if _, err := r.uint32(); err != nil {
		return nil, err
	}

	chunks := make(map[string]Chunk, numElements)
	for i := uint32(0); i < numElements; i++ {
		chunk, err := r.chunk()
		if err != nil {
			return nil, fmt.Errorf("CSA element %d: %w", i, err)
		}
		chunks[chunk.Name] = chunk
	}

	return chunks, nil
}

// ProtocolText returns the searchable text content of a CSA header blob. For
// a well-formed SV10 header this is the concatenated chunk values (including
// the embedded protocol text); for anything else the raw bytes are returned
// as-is, so callers can still pattern-match legacy or truncated headers.
func ProtocolText(data []byte) string {
	chunks, err := ParseCSA(data)
	if err != nil {
		return string(data)
	}

	var b strings.Builder
	for _, chunk := range chunks {
		for _, v := range chunk.Values {
			b.WriteString(v)
			b.WriteByte('\n')
		}
	}
	return b.String()
}

type csaReader struct {
	data   []byte
	offset int
}

func (r *csaReader) bytes(n int) ([]byte, error) {
	if r.offset+n > len(r.data) {
		return nil, fmt.Errorf("truncated CSA header at offset %d", r.offset)
	}
	out := r.data[r.offset : r.offset+n]
	r.offset += n
	return out, nil
}

func (r *csaReader) uint32() (uint32, error) {
	b, err := r.bytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *csaReader) chunk() (Chunk, error) {
	var out Chunk

	// Element name: 64 bytes, data after the first NUL is padding.
	nameBytes, err := r.bytes(64)
	if err != nil {
		return out, err
	}
	out.Name = string(bytes.SplitN(nameBytes, []byte{0x00}, 2)[0])

	vm, err := r.uint32()
	if err != nil {
		return out, err
	}
	out.VM = int32(vm)

	vrBytes, err := r.bytes(4)
	if err != nil {
		return out, err
	}
	out.VR = string(bytes.SplitN(vrBytes, []byte{0x00}, 2)[0])

	syngo, err := r.uint32()
	if err != nil {
		return out, err
	}
	out.SyngoDT = int32(syngo)

	numItems, err := r.uint32()
	if err != nil {
		return out, err
	}
	out.NumItems = int32(numItems)

	// Delimiter word before the items.
	if _, err := r.uint32(); err != nil {
		return out, err
	}

	for i := uint32(0); i < numItems; i++ {
		// Item header is 16 bytes: the length repeated four times.
		itemLen, err := r.uint32()
		if err != nil {
			return out, err
		}
		if _, err := r.bytes(12); err != nil {
			return out, err
		}

		data, err := r.bytes(int(itemLen))
		if err != nil {
			return out, err
		}

		// Items are padded out to a 4-byte boundary.
		if padding := (4 - int(itemLen)%4) % 4; padding > 0 {
			if _, err := r.bytes(padding); err != nil {
				return out, err
			}
		}

		if itemLen > 0 {
			out.Values = append(out.Values, string(bytes.TrimRight(data, "\x00")))
		}
	}

	return out, nil
}

// EncodeCSA encodes chunks into the SV10 binary format. The gatherer never
// writes CSA headers itself; this exists so tests and fixture generators can
// produce blobs that round-trip through ParseCSA.
func EncodeCSA(chunks []Chunk) []byte {
	var buf bytes.Buffer

	buf.Write(csaMagic)
	buf.Write(csaConstant)

	// binary.Write to bytes.Buffer never fails; discard errors explicitly.
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(chunks)))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(0x4D))

	for _, chunk := range chunks {
		name := make([]byte, 64)
		copy(name, chunk.Name)
		buf.Write(name)

		_ = binary.Write(&buf, binary.LittleEndian, chunk.VM)

		vr := make([]byte, 4)
		copy(vr, chunk.VR)
		buf.Write(vr)

		_ = binary.Write(&buf, binary.LittleEndian, chunk.SyngoDT)

		numItems := chunk.NumItems
		if numItems == 0 {
			numItems = int32(len(chunk.Values))
		}
		_ = binary.Write(&buf, binary.LittleEndian, numItems)
		_ = binary.Write(&buf, binary.LittleEndian, uint32(0x4D))

		for i := int32(0); i < numItems; i++ {
			var val []byte
			if i < int32(len(chunk.Values)) {
				val = []byte(chunk.Values[i])
			}

			itemLen := uint32(len(val))
			for j := 0; j < 4; j++ {
				_ = binary.Write(&buf, binary.LittleEndian, itemLen)
			}

			buf.Write(val)

			if padding := (4 - len(val)%4) % 4; padding > 0 {
				buf.Write(make([]byte, padding))
			}
		}
	}

	return buf.Bytes()
}
