package cmodel

import (
	"bytes"
	"io"
	"math"

	"github.com/pierrec/lz4/v4"
	"github.com/pkg/errors"
)

// blockHeaderSize is compressedSize + uncompressedSize.
const blockHeaderSize = 8

// Block is an LZ4-compressed buffer together with its original length.
type Block struct {
	UncompressedSize int32
	Payload          []byte
}

// CompressedSize returns the payload length.
func (b Block) CompressedSize() int32 {
	return int32(len(b.Payload))
}

// Size returns the number of bytes the framed block occupies on disk.
func (b Block) Size() int {
	return blockHeaderSize + len(b.Payload)
}

// CompressBound returns the worst-case compressed size for n input bytes.
func CompressBound(n int) int {
	return lz4.CompressBlockBound(n)
}

// CompressBlock compresses buf in a single fastest-mode pass.
func CompressBlock(buf []byte) (Block, error) {
	if len(buf) > math.MaxInt32 {
		return Block{}, errors.Wrapf(ErrBlockTooLarge, "%d bytes", len(buf))
	}
	bound := CompressBound(len(buf))
	if bound > math.MaxInt32 {
		return Block{}, errors.Wrapf(ErrBlockTooLarge, "bound %d for %d bytes", bound, len(buf))
	}

	dst := make([]byte, bound)
	var c lz4.Compressor
	n, err := c.CompressBlock(buf, dst)
	if err != nil {
		return Block{}, errors.Wrap(ErrCompression, err.Error())
	}
	if n <= 0 {
		return Block{}, errors.Wrapf(ErrCompression, "compressor returned %d for %d bytes", n, len(buf))
	}

	return Block{
		UncompressedSize: int32(len(buf)),
		Payload:          dst[:n],
	}, nil
}

// MaxDecompressedSize is the largest buffer an LZ4 block of n bytes can
// decode to.
func MaxDecompressedSize(n int) int64 {
	return int64(n)*255 + 16
}

// Decompress restores the original buffer.
func (b Block) Decompress() ([]byte, error) {
	if b.UncompressedSize < 0 {
		return nil, errors.Wrapf(ErrInvalidBlock, "negative uncompressed size %d", b.UncompressedSize)
	}
	if int64(b.UncompressedSize) > MaxDecompressedSize(len(b.Payload)) {
		return nil, errors.Wrapf(ErrInvalidBlock, "%d bytes cannot expand to %d", len(b.Payload), b.UncompressedSize)
	}
	out := make([]byte, b.UncompressedSize)
	if b.UncompressedSize == 0 {
		return out, nil
	}
	n, err := lz4.UncompressBlock(b.Payload, out)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidBlock, err.Error())
	}
	if n != len(out) {
		return nil, errors.Wrapf(ErrInvalidBlock, "decompressed %d bytes, want %d", n, len(out))
	}
	return out, nil
}

// WriteTo writes compressedSize, uncompressedSize and the payload.
func (b Block) WriteTo(w io.Writer) (int64, error) {
	var hdr [blockHeaderSize]byte
	byteOrder.PutUint32(hdr[0:4], uint32(b.CompressedSize()))
	byteOrder.PutUint32(hdr[4:8], uint32(b.UncompressedSize))

	n, err := w.Write(hdr[:])
	if err != nil {
		return int64(n), err
	}
	m, err := w.Write(b.Payload)
	return int64(n + m), err
}

// readBlock reads a framed block from a chunk body.
func readBlock(r *bytes.Reader) (Block, error) {
	var hdr [blockHeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return Block{}, errors.Wrap(ErrTruncated, "block header")
	}
	compressed := int32(byteOrder.Uint32(hdr[0:4]))
	uncompressed := int32(byteOrder.Uint32(hdr[4:8]))
	if compressed < 0 || uncompressed < 0 {
		return Block{}, errors.Wrapf(ErrInvalidBlock, "sizes %d/%d", compressed, uncompressed)
	}

	if int(compressed) > r.Len() {
		return Block{}, errors.Wrapf(ErrTruncated, "block payload of %d bytes, %d left", compressed, r.Len())
	}
	payload := make([]byte, compressed)
	if _, err := io.ReadFull(r, payload); err != nil {
		return Block{}, errors.Wrapf(ErrTruncated, "block payload of %d bytes", compressed)
	}
	return Block{UncompressedSize: uncompressed, Payload: payload}, nil
}
