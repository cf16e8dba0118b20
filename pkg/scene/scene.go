// Package scene defines the in-memory mesh scene handed to the cmodel encoder.
package scene

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// Scene validation errors.
var (
	ErrAttributeLength = errors.New("attribute length does not match vertex count")
	ErrIndexRange      = errors.New("face index out of range")
)

// Face is a polygon given as indices into the mesh vertex arrays.
// A triangulated mesh has exactly three indices per face.
type Face []uint32

// VertexWeight binds a vertex to a bone.
type VertexWeight struct {
	Vertex uint32
	Weight float32
}

// Bone is skinning data attached to a mesh.
type Bone struct {
	Name    string
	Weights []VertexWeight
}

// Mesh is a single mesh of a scene. All per-vertex slices that are present
// have one entry per position.
type Mesh struct {
	Name string

	Positions []mgl32.Vec3 // Vertex positions
	Normals   []mgl32.Vec3 // Optional vertex normals
	UVs       []mgl32.Vec3 // Optional texture coordinates, channel 0 (z is ignored on encode)
	Colors    []mgl32.Vec4 // Optional RGBA vertex colors, channel 0, each in [0,1]

	Faces []Face
	Bones []Bone
}

// Scene is an ordered sequence of meshes.
type Scene struct {
	Meshes []*Mesh
}

// VertexCount returns the number of vertices in the mesh.
func (m *Mesh) VertexCount() int {
	return len(m.Positions)
}

// HasPositions reports whether the mesh carries vertex positions.
func (m *Mesh) HasPositions() bool { return len(m.Positions) > 0 }

// HasNormals reports whether the mesh carries vertex normals.
func (m *Mesh) HasNormals() bool { return len(m.Normals) > 0 }

// HasUVs reports whether the mesh carries texture coordinates.
func (m *Mesh) HasUVs() bool { return len(m.UVs) > 0 }

// HasColors reports whether the mesh carries vertex colors.
func (m *Mesh) HasColors() bool { return len(m.Colors) > 0 }

// HasBones reports whether the mesh carries skinning data.
func (m *Mesh) HasBones() bool { return len(m.Bones) > 0 }

// IndexCount returns the total number of face indices.
func (m *Mesh) IndexCount() int {
	n := 0
	for _, f := range m.Faces {
		n += len(f)
	}
	return n
}

// Validate checks that optional attributes match the vertex count and that
// every face index refers to an existing vertex.
func (m *Mesh) Validate() error {
	v := m.VertexCount()
	check := func(name string, n int) error {
		if n != 0 && n != v {
			return errors.Wrapf(ErrAttributeLength, "mesh %q: %s has %d entries, want %d", m.Name, name, n, v)
		}
		return nil
	}
	if err := check("normals", len(m.Normals)); err != nil {
		return err
	}
	if err := check("uvs", len(m.UVs)); err != nil {
		return err
	}
	if err := check("colors", len(m.Colors)); err != nil {
		return err
	}

	for i, f := range m.Faces {
		for _, idx := range f {
			if int(idx) >= v {
				return errors.Wrapf(ErrIndexRange, "mesh %q: face %d references vertex %d of %d", m.Name, i, idx, v)
			}
		}
	}
	return nil
}

// Validate validates every mesh in the scene.
func (s *Scene) Validate() error {
	for _, m := range s.Meshes {
		if err := m.Validate(); err != nil {
			return err
		}
	}
	return nil
}
