// Package scene holds the in-memory model for one conversion: the object
// hierarchy, the skeleton with its rest pose, and the dense per-frame
// animation clip. One Graph is built per input file and discarded after
// export; nothing here is shared across conversions.
package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Bone is one joint in the skeleton hierarchy. Parent is an index into
// Skeleton.Bones, -1 for a hierarchy root. Bones are ordered so that a parent
// always precedes its children.
type Bone struct {
	Name   string
	Parent int
	Rest   TRS
}

// Skeleton is the ordered bone collection plus its rest pose. Immutable after
// import.
type Skeleton struct {
	Bones []Bone

	byName map[string]int
}

// NewSkeleton builds a skeleton and its name index. Bone names must be unique
// and parents must precede children.
func NewSkeleton(bones []Bone) (*Skeleton, error) {
	byName := make(map[string]int, len(bones))
	for i, b := range bones {
		if b.Parent >= i {
			return nil, fmt.Errorf("scene: bone %q (%d) precedes its parent %d", b.Name, i, b.Parent)
		}
		if _, dup := byName[b.Name]; dup {
			return nil, fmt.Errorf("scene: duplicate bone name %q", b.Name)
		}
		byName[b.Name] = i
	}
	return &Skeleton{Bones: bones, byName: byName}, nil
}

// ByName returns the index of the named bone, or -1.
func (s *Skeleton) ByName(name string) int {
	if i, ok := s.byName[name]; ok {
		return i
	}
	return -1
}

// ChildrenOf returns the direct children of the given bone, in bone order.
func (s *Skeleton) ChildrenOf(parent int) []int {
	var out []int
	for i, b := range s.Bones {
		if b.Parent == parent {
			out = append(out, i)
		}
	}
	return out
}

// Clip is a keyframed animation sampled at every integer frame in
// [Start, End]. Bone samples are stored in basis form: the bone's local
// transform is Rest composed with the sample. Every skeleton bone has a
// sample at every frame (clips are dense after import). Object optionally
// carries the armature object's own animated transform.
type Clip struct {
	Name  string
	Start int
	End   int
	FPS   float64

	Bones  map[string][]TRS
	Object []TRS
}

// FrameCount returns the number of sampled frames.
func (c *Clip) FrameCount() int {
	return c.End - c.Start + 1
}

// BoneSample returns the basis sample of a bone at a frame. Bones without a
// track and frames outside the range evaluate as identity (rest pose).
func (c *Clip) BoneSample(bone string, frame int) TRS {
	track, ok := c.Bones[bone]
	if !ok {
		return Identity()
	}
	i := frame - c.Start
	if i < 0 {
		i = 0
	}
	if i >= len(track) {
		i = len(track) - 1
	}
	return track[i]
}

// SetBoneSample overwrites the full basis sample of a bone at one frame,
// allocating an identity track if the bone had none. Callers are expected to
// write every frame of the clip they alter; a partially written track is a
// caller bug.
func (c *Clip) SetBoneSample(bone string, frame int, sample TRS) {
	track, ok := c.Bones[bone]
	if !ok {
		track = make([]TRS, c.FrameCount())
		for i := range track {
			track[i] = Identity()
		}
		c.Bones[bone] = track
	}
	if i := frame - c.Start; i >= 0 && i < len(track) {
		track[i] = sample
	}
}

// SetBoneTranslation overwrites only the translation of a bone's basis sample
// at one frame.
func (c *Clip) SetBoneTranslation(bone string, frame int, t mgl64.Vec3) {
	sample := c.BoneSample(bone, frame)
	sample.Translation = t
	c.SetBoneSample(bone, frame, sample)
}

// Payload marks what a scene object carries.
type Payload int

const (
	PayloadNone Payload = iota
	PayloadArmature
	PayloadMesh
)

// Object is one node of the scene hierarchy. Parent indexes Graph.Objects,
// -1 for a top-level object. Node is the backing glTF node index, -1 for
// objects that exist only in memory (for example a synthesized armature
// parent).
type Object struct {
	Name    string
	Parent  int
	Local   TRS
	Node    int
	Payload Payload
}

// Graph is the scene for one loaded file: every object in stable enumeration
// order (backing document node order), the active skeleton and clip, and the
// scene's stored frame range used as a fallback when the clip has none.
type Graph struct {
	Objects  []*Object
	Armature int // index into Objects, -1 if the file has no armature
	Skeleton *Skeleton
	Clip     *Clip

	SceneStart int
	SceneEnd   int
}

// FrameRange resolves the working frame range: the armature's clip if it has
// one, otherwise the scene's stored range.
func (g *Graph) FrameRange() (int, int) {
	if g.Clip != nil {
		return g.Clip.Start, g.Clip.End
	}
	return g.SceneStart, g.SceneEnd
}

// SetObjectTranslation overwrites the armature object's animated translation
// at one frame, allocating the object track from the object's static
// transform if it did not exist. Rotation and scale are left untouched.
func (g *Graph) SetObjectTranslation(frame int, t mgl64.Vec3) {
	if g.Clip == nil || g.Armature < 0 {
		return
	}
	if g.Clip.Object == nil {
		track := make([]TRS, g.Clip.FrameCount())
		base := g.Objects[g.Armature].Local
		for i := range track {
			track[i] = base
		}
		g.Clip.Object = track
	}
	if i := frame - g.Clip.Start; i >= 0 && i < len(g.Clip.Object) {
		g.Clip.Object[i].Translation = t
	}
}

// ObjectChildren returns the direct children of an object, in enumeration
// order.
func (g *Graph) ObjectChildren(parent int) []int {
	var out []int
	for i, o := range g.Objects {
		if o.Parent == parent {
			out = append(out, i)
		}
	}
	return out
}

// RemoveObject drops an object from the graph, reparenting nothing: the
// caller must only remove leaves (temporary entities never acquire children).
func (g *Graph) RemoveObject(index int) {
	g.Objects = append(g.Objects[:index], g.Objects[index+1:]...)
	if g.Armature > index {
		g.Armature--
	} else if g.Armature == index {
		g.Armature = -1
	}
	for _, o := range g.Objects {
		if o.Parent > index {
			o.Parent--
		} else if o.Parent == index {
			o.Parent = -1
		}
	}
}
