package cmodel

import "fmt"

// AttributeFlag identifies a vertex attribute kind on disk.
type AttributeFlag uint16

const (
	FlagPosition3D AttributeFlag = 0x0001
	FlagPosition2D AttributeFlag = 0x0002 // Reserved, never emitted
	FlagNormal     AttributeFlag = 0x0004
	FlagUV         AttributeFlag = 0x0008
	FlagColor      AttributeFlag = 0x0010
	FlagBoneWeight AttributeFlag = 0x0020 // Reserved, never emitted
)

// flagCodes holds the on-disk bytes of every known flag. Built once at init
// and never written afterwards.
var flagCodes = func() map[AttributeFlag][2]byte {
	codes := make(map[AttributeFlag][2]byte)
	for _, f := range []AttributeFlag{
		FlagPosition3D, FlagPosition2D, FlagNormal, FlagUV, FlagColor, FlagBoneWeight,
	} {
		var b [2]byte
		byteOrder.PutUint16(b[:], uint16(f))
		codes[f] = b
	}
	return codes
}()

// Code returns the little-endian wire bytes of the flag.
func (f AttributeFlag) Code() [2]byte {
	if b, ok := flagCodes[f]; ok {
		return b
	}
	var b [2]byte
	byteOrder.PutUint16(b[:], uint16(f))
	return b
}

// Reserved reports whether the flag is defined by the format but never
// produced by the encoder.
func (f AttributeFlag) Reserved() bool {
	return f == FlagPosition2D || f == FlagBoneWeight
}

// Known reports whether the flag is one of the defined attribute kinds.
func (f AttributeFlag) Known() bool {
	_, ok := flagCodes[f]
	return ok
}

// String returns a human-readable flag name.
func (f AttributeFlag) String() string {
	switch f {
	case FlagPosition3D:
		return "POSITION_3D"
	case FlagPosition2D:
		return "POSITION_2D"
	case FlagNormal:
		return "NORMAL"
	case FlagUV:
		return "UV"
	case FlagColor:
		return "COLOR"
	case FlagBoneWeight:
		return "BONE_WEIGHT"
	default:
		return fmt.Sprintf("Unknown(0x%04x)", uint16(f))
	}
}
