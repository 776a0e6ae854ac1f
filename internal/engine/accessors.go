package engine

import (
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// Thin wrappers around the glTF accessor machinery. Animation data only ever
// uses float accessors: SCALAR times, VEC3 translations/scales, VEC4
// rotations. Accessor indices keep the document's uint32 type here; the rest
// of the package converts to int at these call sites.

func readTimes(doc *gltf.Document, accessor uint32) ([]float64, error) {
	if int(accessor) >= len(doc.Accessors) {
		return nil, fmt.Errorf("engine: sampler input accessor %d out of range", accessor)
	}
	data, err := modeler.ReadAccessor(doc, doc.Accessors[accessor], nil)
	if err != nil {
		return nil, fmt.Errorf("engine: read input accessor %d: %w", accessor, err)
	}
	v, ok := data.([]float32)
	if !ok {
		return nil, fmt.Errorf("engine: input accessor %d is not scalar float", accessor)
	}
	out := make([]float64, len(v))
	for i, t := range v {
		out[i] = float64(t)
	}
	return out, nil
}

// readRows returns one row per key: 3 components for translation/scale
// tracks, 4 for rotation tracks.
func readRows(doc *gltf.Document, accessor uint32) ([][]float64, error) {
	if int(accessor) >= len(doc.Accessors) {
		return nil, fmt.Errorf("engine: sampler output accessor %d out of range", accessor)
	}
	data, err := modeler.ReadAccessor(doc, doc.Accessors[accessor], nil)
	if err != nil {
		return nil, fmt.Errorf("engine: read output accessor %d: %w", accessor, err)
	}
	switch v := data.(type) {
	case [][3]float32:
		out := make([][]float64, len(v))
		for i, r := range v {
			out[i] = []float64{float64(r[0]), float64(r[1]), float64(r[2])}
		}
		return out, nil
	case [][4]float32:
		out := make([][]float64, len(v))
		for i, r := range v {
			out[i] = []float64{float64(r[0]), float64(r[1]), float64(r[2]), float64(r[3])}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("engine: output accessor %d is not vec3/vec4 float", accessor)
	}
}

func writeTimes(doc *gltf.Document, times []float32) uint32 {
	idx := modeler.WriteAccessor(doc, 0, times)
	min, max := times[0], times[0]
	for _, t := range times[1:] {
		if t < min {
			min = t
		}
		if t > max {
			max = t
		}
	}
	// min/max are required on animation input accessors.
	doc.Accessors[idx].Min = []float32{min}
	doc.Accessors[idx].Max = []float32{max}
	return idx
}

func writeVec3(doc *gltf.Document, data [][3]float32) uint32 {
	return modeler.WriteAccessor(doc, 0, data)
}

func writeVec4(doc *gltf.Document, data [][4]float32) uint32 {
	return modeler.WriteAccessor(doc, 0, data)
}
