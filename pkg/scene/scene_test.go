package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

func quad() *Mesh {
	return &Mesh{
		Name: "quad",
		Positions: []mgl32.Vec3{
			{0, 0, 0},
			{1, 0, 0},
			{1, 1, 0},
			{0, 1, 0},
		},
		Faces: []Face{{0, 1, 2, 3}},
	}
}

func TestMeshValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(m *Mesh)
		wantErr error
	}{
		{"valid", func(m *Mesh) {}, nil},
		{"short normals", func(m *Mesh) { m.Normals = make([]mgl32.Vec3, 2) }, ErrAttributeLength},
		{"long colors", func(m *Mesh) { m.Colors = make([]mgl32.Vec4, 5) }, ErrAttributeLength},
		{"uvs match", func(m *Mesh) { m.UVs = make([]mgl32.Vec3, 4) }, nil},
		{"index out of range", func(m *Mesh) { m.Faces = []Face{{0, 1, 4}} }, ErrIndexRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := quad()
			tt.mutate(m)
			err := m.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestMeshPresence(t *testing.T) {
	m := quad()
	if !m.HasPositions() {
		t.Error("expected positions")
	}
	if m.HasNormals() || m.HasUVs() || m.HasColors() || m.HasBones() {
		t.Error("expected no optional attributes")
	}
	if m.VertexCount() != 4 {
		t.Errorf("expected 4 vertices, got %d", m.VertexCount())
	}
	if m.IndexCount() != 4 {
		t.Errorf("expected 4 indices, got %d", m.IndexCount())
	}
}

func TestTriangulate(t *testing.T) {
	m := quad()
	m.Faces = append(m.Faces, Face{0, 1}, Face{2})
	m.Triangulate()

	want := []Face{{0, 1, 2}, {0, 2, 3}}
	if len(m.Faces) != len(want) {
		t.Fatalf("expected %d faces, got %d", len(want), len(m.Faces))
	}
	for i := range want {
		for j := range want[i] {
			if m.Faces[i][j] != want[i][j] {
				t.Errorf("face %d: expected %v, got %v", i, want[i], m.Faces[i])
				break
			}
		}
	}
}

func TestGenerateNormals(t *testing.T) {
	m := quad()
	m.Process(Triangulate | GenerateNormals)

	if len(m.Normals) != 4 {
		t.Fatalf("expected 4 normals, got %d", len(m.Normals))
	}
	up := mgl32.Vec3{0, 0, 1}
	for i, n := range m.Normals {
		if !n.ApproxEqual(up) {
			t.Errorf("normal %d: expected %v, got %v", i, up, n)
		}
	}
}

func TestGenerateNormalsSkipsBadFaces(t *testing.T) {
	m := quad()
	m.Faces = append(m.Faces, Face{0, 1, 9})
	m.GenerateNormals()

	if len(m.Normals) != 4 {
		t.Fatalf("expected 4 normals, got %d", len(m.Normals))
	}
	if !m.Normals[0].ApproxEqual(mgl32.Vec3{0, 0, 1}) {
		t.Errorf("expected up normal, got %v", m.Normals[0])
	}
}

func TestGenerateNormalsKeepsExisting(t *testing.T) {
	m := quad()
	m.Normals = []mgl32.Vec3{{1, 0, 0}, {1, 0, 0}, {1, 0, 0}, {1, 0, 0}}
	m.Process(Triangulate | GenerateNormals)

	if m.Normals[0] != (mgl32.Vec3{1, 0, 0}) {
		t.Errorf("existing normals were replaced: %v", m.Normals[0])
	}
}

func TestFlipUVs(t *testing.T) {
	m := quad()
	m.UVs = []mgl32.Vec3{{0.25, 0.75, 0}, {0, 0, 0}, {1, 1, 0}, {0.5, 0.1, 0}}
	m.FlipUVs()

	want := []float32{0.25, 1, 0, 0.9}
	for i, w := range want {
		if d := m.UVs[i][1] - w; d > 1e-6 || d < -1e-6 {
			t.Errorf("uv %d: expected v=%f, got %f", i, w, m.UVs[i][1])
		}
	}
	if m.UVs[0][0] != 0.25 {
		t.Errorf("u changed: %f", m.UVs[0][0])
	}
}
