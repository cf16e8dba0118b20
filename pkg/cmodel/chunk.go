package cmodel

import (
	"bytes"
	"io"

	"github.com/pkg/errors"

	"github.com/Faultbox/cmodel/pkg/scene"
)

// Chunk is the encoded form of one mesh, without its length prefix.
type Chunk struct {
	Name           string
	IndexWidth     IndexWidth
	AttributeCount uint8
	BonesSkipped   int // Bones present on the mesh and left out of the chunk
	Body           []byte
}

// Length returns the value written as chunkByteLength.
func (c *Chunk) Length() uint64 {
	return uint64(len(c.Body))
}

// WriteTo writes the 8-byte length prefix followed by the chunk body.
func (c *Chunk) WriteTo(w io.Writer) (int64, error) {
	var hdr [8]byte
	byteOrder.PutUint64(hdr[:], c.Length())
	n, err := w.Write(hdr[:])
	if err != nil {
		return int64(n), err
	}
	m, err := w.Write(c.Body)
	return int64(n + m), err
}

// EncodeMesh builds the chunk for a single mesh. The body is assembled in a
// scratch buffer so its length is known before anything is written.
func EncodeMesh(m *scene.Mesh) (*Chunk, error) {
	width, indices, err := packIndices(m)
	if err != nil {
		return nil, err
	}
	indexBlock, err := CompressBlock(indices)
	if err != nil {
		return nil, errors.Wrapf(err, "mesh %q: indices", m.Name)
	}

	var body bytes.Buffer
	body.WriteByte(byte(width))
	if _, err := indexBlock.WriteTo(&body); err != nil {
		return nil, errors.Wrapf(err, "mesh %q: indices", m.Name)
	}

	var present []attributeKind
	for _, k := range attributeKinds {
		if k.present(m) {
			present = append(present, k)
		}
	}
	body.WriteByte(uint8(len(present)))

	for _, k := range present {
		if err := writeAttribute(&body, k, m); err != nil {
			return nil, errors.Wrapf(err, "mesh %q: %s", m.Name, k.flag)
		}
	}

	return &Chunk{
		Name:           m.Name,
		IndexWidth:     width,
		AttributeCount: uint8(len(present)),
		BonesSkipped:   len(m.Bones),
		Body:           body.Bytes(),
	}, nil
}

// writeAttribute transforms, compresses and frames one attribute record.
func writeAttribute(body *bytes.Buffer, k attributeKind, m *scene.Mesh) error {
	block, err := CompressBlock(k.pack(m))
	if err != nil {
		return err
	}
	code := k.flag.Code()
	body.Write(code[:])
	_, err = block.WriteTo(body)
	return err
}
