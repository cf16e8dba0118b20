package scene

import "github.com/go-gl/mathgl/mgl32"

// PostProcess selects import-time fixups applied by Process.
type PostProcess uint8

const (
	Triangulate     PostProcess = 1 << iota // Split polygons into triangles
	GenerateNormals                         // Compute normals for meshes without them
	FlipUVs                                 // Flip the V texture coordinate
)

// Process applies the selected steps to every mesh, in the order
// triangulate, normals, UV flip.
func (s *Scene) Process(steps PostProcess) {
	for _, m := range s.Meshes {
		m.Process(steps)
	}
}

// Process applies the selected steps to the mesh.
func (m *Mesh) Process(steps PostProcess) {
	if steps&Triangulate != 0 {
		m.Triangulate()
	}
	if steps&GenerateNormals != 0 && !m.HasNormals() {
		m.GenerateNormals()
	}
	if steps&FlipUVs != 0 {
		m.FlipUVs()
	}
}

// Triangulate fan-splits every polygon with more than three indices.
// Points and lines cannot be expressed as triangles and are dropped.
func (m *Mesh) Triangulate() {
	out := make([]Face, 0, len(m.Faces))
	for _, f := range m.Faces {
		switch {
		case len(f) < 3:
			continue
		case len(f) == 3:
			out = append(out, f)
		default:
			for i := 1; i+1 < len(f); i++ {
				out = append(out, Face{f[0], f[i], f[i+1]})
			}
		}
	}
	m.Faces = out
}

// GenerateNormals computes smooth vertex normals by accumulating the
// area-weighted normal of every triangle that touches a vertex. Faces that
// reference missing vertices are skipped.
func (m *Mesh) GenerateNormals() {
	v := m.VertexCount()
	normals := make([]mgl32.Vec3, v)
	for _, f := range m.Faces {
		if len(f) < 3 || !f.inRange(v) {
			continue
		}
		v0 := m.Positions[f[0]]
		v1 := m.Positions[f[1]]
		v2 := m.Positions[f[2]]
		// Cross product length is twice the triangle area.
		n := v1.Sub(v0).Cross(v2.Sub(v0))
		for _, idx := range f {
			normals[idx] = normals[idx].Add(n)
		}
	}

	for i, n := range normals {
		if n.Len() > 0 {
			normals[i] = n.Normalize()
		}
	}
	m.Normals = normals
}

func (f Face) inRange(v int) bool {
	for _, idx := range f {
		if int(idx) >= v {
			return false
		}
	}
	return true
}

// FlipUVs replaces every V coordinate with 1 - V.
func (m *Mesh) FlipUVs() {
	for i := range m.UVs {
		m.UVs[i][1] = 1 - m.UVs[i][1]
	}
}
