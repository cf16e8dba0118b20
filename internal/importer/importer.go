// Package importer loads 3D model files into scenes for encoding.
package importer

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/Faultbox/cmodel/pkg/scene"
)

// Import errors.
var (
	ErrUnsupportedFormat   = errors.New("unsupported model format")
	ErrUnsupportedTopology = errors.New("primitive mode cannot be converted to triangles")
	ErrNoMeshes            = errors.New("model contains no meshes")
)

// Options controls post-processing of imported scenes.
type Options struct {
	Triangulate bool
	GenNormals  bool
	FlipUVs     bool
}

// steps converts the options into scene post-process flags.
func (o Options) steps() scene.PostProcess {
	var p scene.PostProcess
	if o.Triangulate {
		p |= scene.Triangulate
	}
	if o.GenNormals {
		p |= scene.GenerateNormals
	}
	if o.FlipUVs {
		p |= scene.FlipUVs
	}
	return p
}

// Load reads the model at path, post-processes it and validates the result.
func Load(path string, opts Options) (*scene.Scene, error) {
	var (
		s   *scene.Scene
		err error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".gltf", ".glb":
		s, err = loadGLTF(path)
	default:
		return nil, errors.Wrapf(ErrUnsupportedFormat, "%q", ext)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "importing %s", path)
	}

	return finish(s, opts)
}

func finish(s *scene.Scene, opts Options) (*scene.Scene, error) {
	if len(s.Meshes) == 0 {
		return nil, ErrNoMeshes
	}
	// Post-processing indexes vertices through the faces.
	if err := s.Validate(); err != nil {
		return nil, err
	}
	s.Process(opts.steps())
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}
