package scene

import (
	"github.com/go-gl/mathgl/mgl64"
)

// World-space evaluation. These are pure functions of (hierarchy, samples,
// frame): the frame is always passed explicitly and nothing here mutates the
// graph, so results are re-derivable for any frame in any order.

// ObjectWorld returns the world transform of an object at a frame: its own
// transform pre-multiplied by its parent's world transform. The armature
// object uses its animated translation track when the clip carries one; every
// other object is static.
func ObjectWorld(g *Graph, object, frame int) mgl64.Mat4 {
	o := g.Objects[object]

	local := o.Local
	if object == g.Armature && g.Clip != nil && g.Clip.Object != nil {
		i := frame - g.Clip.Start
		if i < 0 {
			i = 0
		}
		if i >= len(g.Clip.Object) {
			i = len(g.Clip.Object) - 1
		}
		local = g.Clip.Object[i]
	}

	if o.Parent < 0 {
		return local.Mat4()
	}
	return ObjectWorld(g, o.Parent, frame).Mul4(local.Mat4())
}

// BoneWorld returns the world transform of a bone at a frame: the owning
// armature object's world transform, then each ancestor bone's rest pose
// composed with its animated basis sample, from the hierarchy root down to
// the bone itself. The target bone may be a hierarchy root or sit below
// ancestors; both compose the same way.
func BoneWorld(g *Graph, bone, frame int) mgl64.Mat4 {
	world := mgl64.Ident4()
	if g.Armature >= 0 {
		world = ObjectWorld(g, g.Armature, frame)
	}

	var chain []int
	for b := bone; b >= 0; b = g.Skeleton.Bones[b].Parent {
		chain = append(chain, b)
	}

	for i := len(chain) - 1; i >= 0; i-- {
		b := g.Skeleton.Bones[chain[i]]
		world = world.Mul4(b.Rest.Mat4())
		if g.Clip != nil {
			world = world.Mul4(g.Clip.BoneSample(b.Name, frame).Mat4())
		}
	}
	return world
}

// BoneWorldTranslation returns just the world-space position of a bone at a
// frame.
func BoneWorldTranslation(g *Graph, bone, frame int) mgl64.Vec3 {
	return BoneWorld(g, bone, frame).Col(3).Vec3()
}
