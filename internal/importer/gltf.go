package importer

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/Faultbox/cmodel/pkg/scene"
)

// loadGLTF reads a .gltf or .glb file.
func loadGLTF(path string) (*scene.Scene, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read gltf")
	}
	return convertDocument(doc)
}

// convertDocument turns every primitive of every glTF mesh into one scene
// mesh, in document order.
func convertDocument(doc *gltf.Document) (*scene.Scene, error) {
	s := &scene.Scene{}
	for iMesh, mesh := range doc.Meshes {
		skin := skinForMesh(doc, iMesh)
		for iPrim, prim := range mesh.Primitives {
			name := primitiveName(mesh, iMesh, iPrim)
			m, err := convertPrimitive(doc, prim, skin)
			if err != nil {
				return nil, errors.Wrapf(err, "mesh %q", name)
			}
			m.Name = name
			s.Meshes = append(s.Meshes, m)
		}
	}
	return s, nil
}

func primitiveName(mesh *gltf.Mesh, iMesh, iPrim int) string {
	name := mesh.Name
	if name == "" {
		name = fmt.Sprintf("mesh%d", iMesh)
	}
	if len(mesh.Primitives) > 1 {
		name = fmt.Sprintf("%s#%d", name, iPrim)
	}
	return name
}

// skinForMesh returns the skin of the first node that instances the mesh.
func skinForMesh(doc *gltf.Document, iMesh int) *gltf.Skin {
	for _, node := range doc.Nodes {
		if node.Mesh != nil && int(*node.Mesh) == iMesh && node.Skin != nil && int(*node.Skin) < len(doc.Skins) {
			return doc.Skins[*node.Skin]
		}
	}
	return nil
}

func accessor(doc *gltf.Document, prim *gltf.Primitive, name string) (*gltf.Accessor, bool, error) {
	idx, ok := prim.Attributes[name]
	if !ok {
		return nil, false, nil
	}
	if int(idx) >= len(doc.Accessors) {
		return nil, false, errors.Errorf("%s references missing accessor %d", name, idx)
	}
	return doc.Accessors[idx], true, nil
}

func convertPrimitive(doc *gltf.Document, prim *gltf.Primitive, skin *gltf.Skin) (*scene.Mesh, error) {
	m := &scene.Mesh{}

	acr, ok, err := accessor(doc, prim, "POSITION")
	if err != nil {
		return nil, err
	}
	if ok {
		positions, err := modeler.ReadPosition(doc, acr, nil)
		if err != nil {
			return nil, errors.Wrap(err, "failed to read positions")
		}
		m.Positions = make([]mgl32.Vec3, len(positions))
		for i, p := range positions {
			m.Positions[i] = p
		}
	}

	if acr, ok, err = accessor(doc, prim, "NORMAL"); err != nil {
		return nil, err
	} else if ok {
		normals, err := modeler.ReadNormal(doc, acr, nil)
		if err != nil {
			return nil, errors.Wrap(err, "failed to read normals")
		}
		m.Normals = make([]mgl32.Vec3, len(normals))
		for i, n := range normals {
			m.Normals[i] = n
		}
	}

	if acr, ok, err = accessor(doc, prim, "TEXCOORD_0"); err != nil {
		return nil, err
	} else if ok {
		uvs, err := modeler.ReadTextureCoord(doc, acr, nil)
		if err != nil {
			return nil, errors.Wrap(err, "failed to read texture coordinates")
		}
		// glTF puts the UV origin at the top left; scenes use bottom left.
		m.UVs = make([]mgl32.Vec3, len(uvs))
		for i, uv := range uvs {
			m.UVs[i] = mgl32.Vec3{uv[0], 1 - uv[1], 0}
		}
	}

	if acr, ok, err = accessor(doc, prim, "COLOR_0"); err != nil {
		return nil, err
	} else if ok {
		if m.Colors, err = readColors(doc, acr); err != nil {
			return nil, err
		}
	}

	if m.Bones, err = readBones(doc, prim, skin); err != nil {
		return nil, err
	}

	indices, err := readIndices(doc, prim, m.VertexCount())
	if err != nil {
		return nil, err
	}
	if m.Faces, err = facesForMode(prim.Mode, indices); err != nil {
		return nil, err
	}
	return m, nil
}

func readIndices(doc *gltf.Document, prim *gltf.Primitive, vertexCount int) ([]uint32, error) {
	if prim.Indices == nil {
		indices := make([]uint32, vertexCount)
		for i := range indices {
			indices[i] = uint32(i)
		}
		return indices, nil
	}
	if int(*prim.Indices) >= len(doc.Accessors) {
		return nil, errors.Errorf("indices reference missing accessor %d", *prim.Indices)
	}
	indices, err := modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read indices")
	}
	return indices, nil
}

// readColors converts any COLOR_0 layout glTF allows into float RGBA.
func readColors(doc *gltf.Document, acr *gltf.Accessor) ([]mgl32.Vec4, error) {
	data, err := modeler.ReadAccessor(doc, acr, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read colors")
	}

	var colors []mgl32.Vec4
	switch c := data.(type) {
	case [][4]float32:
		colors = make([]mgl32.Vec4, len(c))
		for i, v := range c {
			colors[i] = v
		}
	case [][3]float32:
		colors = make([]mgl32.Vec4, len(c))
		for i, v := range c {
			colors[i] = mgl32.Vec4{v[0], v[1], v[2], 1}
		}
	case [][4]uint8:
		colors = make([]mgl32.Vec4, len(c))
		for i, v := range c {
			colors[i] = mgl32.Vec4{unorm8(v[0]), unorm8(v[1]), unorm8(v[2]), unorm8(v[3])}
		}
	case [][3]uint8:
		colors = make([]mgl32.Vec4, len(c))
		for i, v := range c {
			colors[i] = mgl32.Vec4{unorm8(v[0]), unorm8(v[1]), unorm8(v[2]), 1}
		}
	case [][4]uint16:
		colors = make([]mgl32.Vec4, len(c))
		for i, v := range c {
			colors[i] = mgl32.Vec4{unorm16(v[0]), unorm16(v[1]), unorm16(v[2]), unorm16(v[3])}
		}
	case [][3]uint16:
		colors = make([]mgl32.Vec4, len(c))
		for i, v := range c {
			colors[i] = mgl32.Vec4{unorm16(v[0]), unorm16(v[1]), unorm16(v[2]), 1}
		}
	default:
		return nil, errors.Errorf("unsupported COLOR_0 layout %T", data)
	}
	return colors, nil
}

func unorm8(v uint8) float32   { return float32(v) / 255 }
func unorm16(v uint16) float32 { return float32(v) / 65535 }

// readBones groups JOINTS_0/WEIGHTS_0 influences per joint.
func readBones(doc *gltf.Document, prim *gltf.Primitive, skin *gltf.Skin) ([]scene.Bone, error) {
	jointsAcr, ok, err := accessor(doc, prim, "JOINTS_0")
	if err != nil || !ok {
		return nil, err
	}
	weightsAcr, ok, err := accessor(doc, prim, "WEIGHTS_0")
	if err != nil || !ok {
		return nil, err
	}

	joints, err := modeler.ReadJoints(doc, jointsAcr, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read joints")
	}
	weights, err := modeler.ReadWeights(doc, weightsAcr, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read weights")
	}
	if len(joints) != len(weights) {
		return nil, errors.Errorf("%d joints for %d weights", len(joints), len(weights))
	}

	byJoint := make(map[uint16]int)
	var bones []scene.Bone
	for v := range joints {
		for k := 0; k < 4; k++ {
			if weights[v][k] == 0 {
				continue
			}
			j := joints[v][k]
			bi, ok := byJoint[j]
			if !ok {
				bi = len(bones)
				byJoint[j] = bi
				bones = append(bones, scene.Bone{Name: jointName(doc, skin, j)})
			}
			bones[bi].Weights = append(bones[bi].Weights, scene.VertexWeight{
				Vertex: uint32(v),
				Weight: weights[v][k],
			})
		}
	}
	return bones, nil
}

func jointName(doc *gltf.Document, skin *gltf.Skin, j uint16) string {
	if skin != nil && int(j) < len(skin.Joints) {
		node := skin.Joints[j]
		if int(node) < len(doc.Nodes) && doc.Nodes[node].Name != "" {
			return doc.Nodes[node].Name
		}
	}
	return fmt.Sprintf("joint%d", j)
}

// facesForMode expands a glTF index stream into triangle faces.
func facesForMode(mode gltf.PrimitiveMode, indices []uint32) ([]scene.Face, error) {
	var faces []scene.Face
	switch mode {
	case gltf.PrimitiveTriangles:
		for i := 0; i+2 < len(indices); i += 3 {
			faces = append(faces, scene.Face{indices[i], indices[i+1], indices[i+2]})
		}
	case gltf.PrimitiveTriangleStrip:
		for i := 2; i < len(indices); i++ {
			// Every other triangle swaps its first two corners to keep winding.
			if i%2 == 0 {
				faces = append(faces, scene.Face{indices[i-2], indices[i-1], indices[i]})
			} else {
				faces = append(faces, scene.Face{indices[i-1], indices[i-2], indices[i]})
			}
		}
	case gltf.PrimitiveTriangleFan:
		for i := 2; i < len(indices); i++ {
			faces = append(faces, scene.Face{indices[0], indices[i-1], indices[i]})
		}
	default:
		return nil, errors.Wrapf(ErrUnsupportedTopology, "mode %d", mode)
	}
	return faces, nil
}
