// Package cmodel encodes mesh scenes into the cmodel binary container and
// decodes them back.
//
// File layout (all integers little-endian):
//
//	magic       "cmodel\n"
//	meshCount   uint32
//	per mesh:
//	  chunkByteLength  uint64   bytes that follow, this mesh only
//	  indexWidthFlag   uint8    0 = uint16 indices, 1 = uint32 indices
//	  index block      compressedSize int32, uncompressedSize int32, payload
//	  attributeCount   uint8
//	  per attribute:   flag uint16, compressedSize int32, uncompressedSize int32, payload
//
// Every payload is a raw LZ4 block.
package cmodel

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// Magic is the literal file signature.
const Magic = "cmodel\n"

var byteOrder = binary.LittleEndian

// Format errors.
var (
	ErrNotTriangulated = errors.New("mesh isn't triangulated")
	ErrCompression     = errors.New("lz4 compression failed")
	ErrBlockTooLarge   = errors.New("block exceeds int32 size")
	ErrTooManyMeshes   = errors.New("too many meshes")
	ErrInvalidMagic    = errors.New("invalid cmodel magic")
	ErrTruncated       = errors.New("truncated cmodel data")
	ErrChunkLength     = errors.New("chunk length does not match contents")
	ErrInvalidBlock    = errors.New("invalid compressed block")
	ErrIndexWidth      = errors.New("invalid index width flag")
)
