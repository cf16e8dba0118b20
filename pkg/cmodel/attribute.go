package cmodel

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/cmodel/pkg/scene"
)

// attributeKind describes how one vertex attribute is turned into the
// buffer handed to the compressor.
type attributeKind struct {
	flag     AttributeFlag
	elemSize int // bytes per vertex after transform
	present  func(m *scene.Mesh) bool
	pack     func(m *scene.Mesh) []byte
}

// attributeKinds lists encodable attributes in on-disk order.
var attributeKinds = []attributeKind{
	{
		flag:     FlagPosition3D,
		elemSize: 3 * 4,
		present:  (*scene.Mesh).HasPositions,
		pack:     func(m *scene.Mesh) []byte { return packVec3(m.Positions) },
	},
	{
		flag:     FlagNormal,
		elemSize: 3 * 4,
		present:  (*scene.Mesh).HasNormals,
		pack:     func(m *scene.Mesh) []byte { return packVec3(m.Normals) },
	},
	{
		flag:     FlagUV,
		elemSize: 2 * 4,
		present:  (*scene.Mesh).HasUVs,
		pack:     func(m *scene.Mesh) []byte { return packUV(m.UVs) },
	},
	{
		flag:     FlagColor,
		elemSize: 4,
		present:  (*scene.Mesh).HasColors,
		pack:     func(m *scene.Mesh) []byte { return packColors(m.Colors) },
	},
}

// ElementSize returns the per-vertex byte size of an attribute, or 0 for
// flags the encoder never emits.
func ElementSize(f AttributeFlag) int {
	for _, k := range attributeKinds {
		if k.flag == f {
			return k.elemSize
		}
	}
	return 0
}

func packVec3(vs []mgl32.Vec3) []byte {
	buf := make([]byte, 0, len(vs)*12)
	for _, v := range vs {
		buf = byteOrder.AppendUint32(buf, math.Float32bits(v[0]))
		buf = byteOrder.AppendUint32(buf, math.Float32bits(v[1]))
		buf = byteOrder.AppendUint32(buf, math.Float32bits(v[2]))
	}
	return buf
}

// packUV keeps x and y of each coordinate and drops z.
func packUV(uvs []mgl32.Vec3) []byte {
	buf := make([]byte, 0, len(uvs)*8)
	for _, uv := range uvs {
		buf = byteOrder.AppendUint32(buf, math.Float32bits(uv[0]))
		buf = byteOrder.AppendUint32(buf, math.Float32bits(uv[1]))
	}
	return buf
}

func packColors(cs []mgl32.Vec4) []byte {
	buf := make([]byte, 0, len(cs)*4)
	for _, c := range cs {
		buf = append(buf,
			QuantizeChannel(c[0]),
			QuantizeChannel(c[1]),
			QuantizeChannel(c[2]),
			QuantizeChannel(c[3]),
		)
	}
	return buf
}

// QuantizeChannel converts a [0,1] color channel to 8 bits by truncating
// c*255. Values outside the range saturate.
func QuantizeChannel(c float32) uint8 {
	v := c * 255
	if !(v > 0) {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}
