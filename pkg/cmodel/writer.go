package cmodel

import (
	"bufio"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Faultbox/cmodel/pkg/scene"
)

// Encoder writes scenes as cmodel files.
type Encoder struct {
	log     *zap.Logger
	workers int
}

// Option configures an Encoder.
type Option func(*Encoder)

// WithLogger sets the logger used for progress and diagnostics.
func WithLogger(log *zap.Logger) Option {
	return func(e *Encoder) {
		if log != nil {
			e.log = log
		}
	}
}

// WithWorkers sets how many meshes are encoded concurrently. Chunks are
// always written in scene order. Values below 2 encode sequentially.
func WithWorkers(n int) Option {
	return func(e *Encoder) {
		e.workers = n
	}
}

// NewEncoder creates an encoder.
func NewEncoder(opts ...Option) *Encoder {
	e := &Encoder{
		log:     zap.NewNop(),
		workers: 1,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Encode writes the whole scene to w. Every mesh is checked for
// triangulation, attribute lengths and index range before the first byte is
// written.
func (e *Encoder) Encode(w io.Writer, s *scene.Scene) error {
	if uint64(len(s.Meshes)) > math.MaxUint32 {
		return errors.Wrapf(ErrTooManyMeshes, "%d meshes", len(s.Meshes))
	}
	for _, m := range s.Meshes {
		if err := checkMesh(m); err != nil {
			return err
		}
	}

	var hdr [len(Magic) + 4]byte
	copy(hdr[:], Magic)
	byteOrder.PutUint32(hdr[len(Magic):], uint32(len(s.Meshes)))
	if _, err := w.Write(hdr[:]); err != nil {
		return errors.Wrap(err, "writing header")
	}

	if e.workers > 1 && len(s.Meshes) > 1 {
		return e.encodeParallel(w, s.Meshes)
	}
	for i, m := range s.Meshes {
		c, err := e.encodeMesh(i, m)
		if err != nil {
			return err
		}
		if err := e.commit(w, i, c); err != nil {
			return err
		}
	}
	return nil
}

// WriteFile encodes the scene into path. Output goes to a temporary file in
// the same directory that is renamed into place only on success.
func (e *Encoder) WriteFile(path string, s *scene.Scene) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(err, "creating output directory")
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "creating temporary file")
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	bw := bufio.NewWriter(tmp)
	if err = e.Encode(bw, s); err != nil {
		return err
	}
	if err = bw.Flush(); err != nil {
		return errors.Wrap(err, "flushing output")
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrap(err, "closing output")
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrap(err, "renaming output")
	}
	return nil
}

func (e *Encoder) encodeMesh(i int, m *scene.Mesh) (*Chunk, error) {
	c, err := EncodeMesh(m)
	if err != nil {
		return nil, errors.Wrapf(err, "mesh %d", i)
	}
	if c.BonesSkipped > 0 {
		e.log.Warn("Bones not currently supported",
			zap.Int("mesh", i),
			zap.String("name", m.Name),
			zap.Int("bones", c.BonesSkipped))
	}
	return c, nil
}

func (e *Encoder) commit(w io.Writer, i int, c *Chunk) error {
	if _, err := c.WriteTo(w); err != nil {
		return errors.Wrapf(err, "writing mesh %d", i)
	}
	e.log.Debug("Encoded mesh",
		zap.Int("mesh", i),
		zap.String("name", c.Name),
		zap.Stringer("indices", c.IndexWidth),
		zap.Uint8("attributes", c.AttributeCount),
		zap.Uint64("bytes", c.Length()))
	return nil
}

type chunkResult struct {
	chunk *Chunk
	err   error
}

// encodeParallel encodes up to e.workers meshes ahead of the writer and
// commits them in scene order.
func (e *Encoder) encodeParallel(w io.Writer, meshes []*scene.Mesh) error {
	results := make([]chan chunkResult, len(meshes))
	for i := range results {
		results[i] = make(chan chunkResult, 1)
	}

	slots := make(chan struct{}, e.workers)
	done := make(chan struct{})
	defer close(done)

	go func() {
		for i, m := range meshes {
			select {
			case slots <- struct{}{}:
			case <-done:
				return
			}
			go func(i int, m *scene.Mesh) {
				c, err := e.encodeMesh(i, m)
				results[i] <- chunkResult{chunk: c, err: err}
			}(i, m)
		}
	}()

	for i := range meshes {
		res := <-results[i]
		<-slots
		if res.err != nil {
			return res.err
		}
		if err := e.commit(w, i, res.chunk); err != nil {
			return err
		}
	}
	return nil
}
