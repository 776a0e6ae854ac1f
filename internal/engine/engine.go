// Package engine is the scene content engine: it imports a glTF animation
// file into a scene.Graph and exports the converted graph back out. All
// knowledge of the interchange format lives here; the conversion strategies
// only ever see the scene model.
package engine

import (
	"fmt"

	"github.com/qmuntal/gltf"

	"github.com/Schizogonia/mixamo-ue-fix/internal/report"
	"github.com/Schizogonia/mixamo-ue-fix/internal/scene"
)

// DefaultSampleRate is the frame rate used to map glTF key times (seconds)
// onto the integer frame grid.
const DefaultSampleRate = 30.0

// Options controls import behavior.
type Options struct {
	// SampleRate is the frames-per-second of the integer frame grid.
	// Zero means DefaultSampleRate.
	SampleRate float64
}

// File is one imported interchange file: the backing glTF document plus the
// scene graph built from it and the node bookkeeping needed to write results
// back.
type File struct {
	Path  string
	Doc   *gltf.Document
	Graph *scene.Graph

	boneNode       []int // glTF node index per skeleton bone
	rootJointNodes []int // node indices of the skeleton's hierarchy roots
}

// Import reads a .gltf/.glb file and builds the scene graph for one
// conversion.
func Import(path string, opts Options, log *report.Logger) (*File, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("engine: import %s: %w", path, err)
	}
	f, err := Build(doc, opts, log)
	if err != nil {
		return nil, fmt.Errorf("engine: import %s: %w", path, err)
	}
	f.Path = path
	log.Infof("imported %s: %d objects, %d bones", path, len(f.Graph.Objects), boneCount(f.Graph))
	return f, nil
}

// Build constructs a File from an already-decoded document.
func Build(doc *gltf.Document, opts Options, log *report.Logger) (*File, error) {
	if opts.SampleRate <= 0 {
		opts.SampleRate = DefaultSampleRate
	}
	return build(doc, opts, log)
}

func boneCount(g *scene.Graph) int {
	if g.Skeleton == nil {
		return 0
	}
	return len(g.Skeleton.Bones)
}
