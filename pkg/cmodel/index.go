package cmodel

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/Faultbox/cmodel/pkg/scene"
)

// IndexWidth is the on-disk element type of an index block.
type IndexWidth uint8

const (
	Index16 IndexWidth = 0 // uint16 indices
	Index32 IndexWidth = 1 // uint32 indices
)

// MaxIndex16Vertices is the largest vertex count encoded with 16-bit indices.
const MaxIndex16Vertices = 65535

// IndexWidthFor selects the index width from the vertex count. Index values
// are not inspected: a mesh above the limit always uses the wide path.
func IndexWidthFor(vertexCount int) IndexWidth {
	if vertexCount > MaxIndex16Vertices {
		return Index32
	}
	return Index16
}

// Size returns the byte size of one index.
func (w IndexWidth) Size() int {
	if w == Index32 {
		return 4
	}
	return 2
}

// String returns a human-readable width name.
func (w IndexWidth) String() string {
	switch w {
	case Index16:
		return "uint16"
	case Index32:
		return "uint32"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(w))
	}
}

// checkTriangulated fails on the first face that is not a triangle.
func checkTriangulated(m *scene.Mesh) error {
	for i, f := range m.Faces {
		if len(f) != 3 {
			return errors.Wrapf(ErrNotTriangulated, "mesh %q: face %d has %d indices", m.Name, i, len(f))
		}
	}
	return nil
}

// checkMesh runs the checks every mesh must pass before it is encoded.
func checkMesh(m *scene.Mesh) error {
	if err := checkTriangulated(m); err != nil {
		return err
	}
	return m.Validate()
}

// packIndices flattens the triangle list into little-endian indices of the
// width selected for the mesh.
func packIndices(m *scene.Mesh) (IndexWidth, []byte, error) {
	if err := checkMesh(m); err != nil {
		return 0, nil, err
	}

	width := IndexWidthFor(m.VertexCount())
	buf := make([]byte, 0, len(m.Faces)*3*width.Size())
	for _, f := range m.Faces {
		for _, idx := range f {
			if width == Index32 {
				buf = byteOrder.AppendUint32(buf, idx)
			} else {
				buf = byteOrder.AppendUint16(buf, uint16(idx))
			}
		}
	}
	return width, buf, nil
}

// unpackIndices is the inverse of packIndices.
func unpackIndices(width IndexWidth, buf []byte) ([]uint32, error) {
	size := width.Size()
	if len(buf)%size != 0 {
		return nil, errors.Wrapf(ErrInvalidBlock, "%d bytes is not a multiple of %s", len(buf), width)
	}
	out := make([]uint32, len(buf)/size)
	for i := range out {
		if width == Index32 {
			out[i] = byteOrder.Uint32(buf[i*4:])
		} else {
			out[i] = uint32(byteOrder.Uint16(buf[i*2:]))
		}
	}
	return out, nil
}
