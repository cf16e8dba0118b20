package cmodel

import (
	"bufio"
	"bytes"
	"io"
	"math"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// File is a decoded cmodel file. Blocks stay compressed until requested.
type File struct {
	Meshes []*DecodedMesh
}

// AttributeRecord is one flagged attribute block of a chunk.
type AttributeRecord struct {
	Flag  AttributeFlag
	Block Block
}

// DecodedMesh is the parsed content of one mesh chunk.
type DecodedMesh struct {
	Length     uint64 // chunkByteLength as stored
	IndexWidth IndexWidth
	Index      Block
	Attributes []AttributeRecord
}

// ChunkInfo locates a chunk inside a file without parsing it.
type ChunkInfo struct {
	Offset int64  // Offset of the chunk body, after the length prefix
	Length uint64 // chunkByteLength
}

// ReadFile decodes the cmodel file at path.
func ReadFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(bufio.NewReader(f))
}

// Decode reads a complete cmodel file.
func Decode(r io.Reader) (*File, error) {
	count, err := readHeader(r)
	if err != nil {
		return nil, err
	}

	file := &File{}
	for i := uint32(0); i < count; i++ {
		mesh, err := readChunk(r)
		if err != nil {
			return nil, errors.Wrapf(err, "mesh %d", i)
		}
		file.Meshes = append(file.Meshes, mesh)
	}
	return file, nil
}

// ScanChunks walks the chunk list by seeking past each body using only the
// length prefixes.
func ScanChunks(r io.ReadSeeker) ([]ChunkInfo, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	count, err := readHeader(r)
	if err != nil {
		return nil, err
	}

	end, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, err
	}
	offset := int64(len(Magic) + 4)
	if _, err := r.Seek(offset, io.SeekStart); err != nil {
		return nil, err
	}

	chunks := make([]ChunkInfo, 0, count)
	for i := uint32(0); i < count; i++ {
		var lenBuf [8]byte
		if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
			return nil, errors.Wrapf(ErrTruncated, "mesh %d length", i)
		}
		length := byteOrder.Uint64(lenBuf[:])
		offset += 8
		if length > uint64(end-offset) {
			return nil, errors.Wrapf(ErrTruncated, "mesh %d: %d bytes past offset %d", i, length, offset)
		}
		chunks = append(chunks, ChunkInfo{Offset: offset, Length: length})

		offset += int64(length)
		if _, err := r.Seek(offset, io.SeekStart); err != nil {
			return nil, err
		}
	}
	return chunks, nil
}

func readHeader(r io.Reader) (uint32, error) {
	var hdr [len(Magic) + 4]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return 0, errors.Wrap(ErrTruncated, "file header")
	}
	if string(hdr[:len(Magic)]) != Magic {
		return 0, ErrInvalidMagic
	}
	return byteOrder.Uint32(hdr[len(Magic):]), nil
}

func readChunk(r io.Reader) (*DecodedMesh, error) {
	var lenBuf [8]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, errors.Wrap(ErrTruncated, "chunk length")
	}
	length := byteOrder.Uint64(lenBuf[:])
	if length > math.MaxInt64 {
		return nil, errors.Wrapf(ErrChunkLength, "length %d", length)
	}

	// length is untrusted; the buffer grows only as data arrives.
	var body bytes.Buffer
	n, err := io.CopyN(&body, r, int64(length))
	if err != nil {
		return nil, errors.Wrapf(ErrTruncated, "chunk body %d of %d bytes", n, length)
	}

	mesh, err := parseChunkBody(body.Bytes())
	if err != nil {
		return nil, err
	}
	mesh.Length = length
	return mesh, nil
}

func parseChunkBody(data []byte) (*DecodedMesh, error) {
	r := bytes.NewReader(data)
	mesh := &DecodedMesh{}

	width, err := r.ReadByte()
	if err != nil {
		return nil, errors.Wrap(ErrChunkLength, "missing index width")
	}
	mesh.IndexWidth = IndexWidth(width)
	if mesh.IndexWidth != Index16 && mesh.IndexWidth != Index32 {
		return nil, errors.Wrapf(ErrIndexWidth, "flag %d", width)
	}

	if mesh.Index, err = readBlock(r); err != nil {
		return nil, errors.Wrap(ErrChunkLength, err.Error())
	}

	count, err := r.ReadByte()
	if err != nil {
		return nil, errors.Wrap(ErrChunkLength, "missing attribute count")
	}
	for i := 0; i < int(count); i++ {
		var flag [2]byte
		if _, err := io.ReadFull(r, flag[:]); err != nil {
			return nil, errors.Wrapf(ErrChunkLength, "attribute %d flag", i)
		}
		block, err := readBlock(r)
		if err != nil {
			return nil, errors.Wrapf(ErrChunkLength, "attribute %d: %v", i, err)
		}
		mesh.Attributes = append(mesh.Attributes, AttributeRecord{
			Flag:  AttributeFlag(byteOrder.Uint16(flag[:])),
			Block: block,
		})
	}

	if r.Len() != 0 {
		return nil, errors.Wrapf(ErrChunkLength, "%d trailing bytes", r.Len())
	}
	return mesh, nil
}

// Attribute returns the record with the given flag.
func (m *DecodedMesh) Attribute(flag AttributeFlag) (*AttributeRecord, bool) {
	for i := range m.Attributes {
		if m.Attributes[i].Flag == flag {
			return &m.Attributes[i], true
		}
	}
	return nil, false
}

// Indices decompresses the triangle index list.
func (m *DecodedMesh) Indices() ([]uint32, error) {
	buf, err := m.Index.Decompress()
	if err != nil {
		return nil, err
	}
	return unpackIndices(m.IndexWidth, buf)
}

// Positions decompresses the POSITION_3D attribute, or returns nil if absent.
func (m *DecodedMesh) Positions() ([]mgl32.Vec3, error) {
	return m.vec3(FlagPosition3D)
}

// Normals decompresses the NORMAL attribute, or returns nil if absent.
func (m *DecodedMesh) Normals() ([]mgl32.Vec3, error) {
	return m.vec3(FlagNormal)
}

// UVs decompresses the UV attribute, or returns nil if absent.
func (m *DecodedMesh) UVs() ([]mgl32.Vec2, error) {
	floats, err := m.floats(FlagUV, 2)
	if err != nil || floats == nil {
		return nil, err
	}
	out := make([]mgl32.Vec2, len(floats)/2)
	for i := range out {
		out[i] = mgl32.Vec2{floats[i*2], floats[i*2+1]}
	}
	return out, nil
}

// Colors decompresses the COLOR attribute as RGBA bytes, or returns nil if
// absent.
func (m *DecodedMesh) Colors() ([][4]uint8, error) {
	buf, err := m.raw(FlagColor, 4)
	if err != nil || buf == nil {
		return nil, err
	}
	out := make([][4]uint8, len(buf)/4)
	for i := range out {
		copy(out[i][:], buf[i*4:])
	}
	return out, nil
}

func (m *DecodedMesh) vec3(flag AttributeFlag) ([]mgl32.Vec3, error) {
	floats, err := m.floats(flag, 3)
	if err != nil || floats == nil {
		return nil, err
	}
	out := make([]mgl32.Vec3, len(floats)/3)
	for i := range out {
		out[i] = mgl32.Vec3{floats[i*3], floats[i*3+1], floats[i*3+2]}
	}
	return out, nil
}

func (m *DecodedMesh) floats(flag AttributeFlag, components int) ([]float32, error) {
	buf, err := m.raw(flag, components*4)
	if err != nil || buf == nil {
		return nil, err
	}
	out := make([]float32, len(buf)/4)
	for i := range out {
		out[i] = math.Float32frombits(byteOrder.Uint32(buf[i*4:]))
	}
	return out, nil
}

func (m *DecodedMesh) raw(flag AttributeFlag, elemSize int) ([]byte, error) {
	rec, ok := m.Attribute(flag)
	if !ok {
		return nil, nil
	}
	buf, err := rec.Block.Decompress()
	if err != nil {
		return nil, errors.Wrap(err, flag.String())
	}
	if len(buf)%elemSize != 0 {
		return nil, errors.Wrapf(ErrInvalidBlock, "%s: %d bytes is not a multiple of %d", flag, len(buf), elemSize)
	}
	return buf, nil
}
