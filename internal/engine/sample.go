package engine

import (
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/qmuntal/gltf"

	"github.com/Schizogonia/mixamo-ue-fix/internal/scene"
)

// keyTrack is one animated property of one node: keyframe times in seconds
// and one value row per key (3 components for translation/scale, 4 for
// rotation, glTF xyzw order).
type keyTrack struct {
	times  []float64
	rows   [][]float64
	interp gltf.Interpolation
}

// nodeTracks gathers the animated properties of one node.
type nodeTracks struct {
	translation *keyTrack
	rotation    *keyTrack
	scale       *keyTrack
}

// segment locates the key interval containing t and the interpolation factor
// within it. Times outside the track clamp to the first/last key.
func (k *keyTrack) segment(t float64) (int, int, float64) {
	n := len(k.times)
	if n == 1 || t <= k.times[0] {
		return 0, 0, 0
	}
	if t >= k.times[n-1] {
		return n - 1, n - 1, 0
	}
	hi := sort.SearchFloat64s(k.times, t)
	lo := hi - 1
	span := k.times[hi] - k.times[lo]
	if span <= 0 {
		return lo, lo, 0
	}
	if k.interp == gltf.InterpolationStep {
		return lo, lo, 0
	}
	return lo, hi, (t - k.times[lo]) / span
}

func (k *keyTrack) vec3At(t float64) mgl64.Vec3 {
	lo, hi, f := k.segment(t)
	a := mgl64.Vec3{k.rows[lo][0], k.rows[lo][1], k.rows[lo][2]}
	if lo == hi {
		return a
	}
	b := mgl64.Vec3{k.rows[hi][0], k.rows[hi][1], k.rows[hi][2]}
	return a.Mul(1 - f).Add(b.Mul(f))
}

func (k *keyTrack) quatAt(t float64) mgl64.Quat {
	lo, hi, f := k.segment(t)
	a := rowQuat(k.rows[lo])
	if lo == hi {
		return a
	}
	b := rowQuat(k.rows[hi])
	if a.Dot(b) < 0 {
		b = b.Scale(-1)
	}
	return mgl64.QuatSlerp(a, b, f).Normalize()
}

func rowQuat(row []float64) mgl64.Quat {
	return mgl64.Quat{W: row[3], V: mgl64.Vec3{row[0], row[1], row[2]}}.Normalize()
}

// localAt samples the node's full local transform at time t. Properties
// without a track keep the node's static value.
func (nt *nodeTracks) localAt(base scene.TRS, t float64) scene.TRS {
	out := base
	if nt == nil {
		return out
	}
	if nt.translation != nil {
		out.Translation = nt.translation.vec3At(t)
	}
	if nt.rotation != nil {
		out.Rotation = nt.rotation.quatAt(t)
	}
	if nt.scale != nil {
		out.Scale = nt.scale.vec3At(t)
	}
	return out
}

// trimCubicSpline keeps only the vertex values of a CUBICSPLINE output (rows
// come as in-tangent, value, out-tangent triples). Tangents are dropped and
// the track is interpolated linearly afterwards; the rig exporters this tool
// targets emit LINEAR anyway.
func trimCubicSpline(rows [][]float64, keys int) [][]float64 {
	if len(rows) != 3*keys {
		return rows
	}
	out := make([][]float64, keys)
	for i := 0; i < keys; i++ {
		out[i] = rows[3*i+1]
	}
	return out
}
