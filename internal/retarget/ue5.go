package retarget

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/tiendc/go-deepcopy"

	"github.com/Schizogonia/mixamo-ue-fix/internal/report"
	"github.com/Schizogonia/mixamo-ue-fix/internal/scene"
)

// Bone names baked into the UE skeleton family.
const (
	ueRootBone   = "root"
	uePelvisBone = "pelvis"
)

// UESkeletalMesh re-derives the "root" bone's placement from the pelvis of
// an unmodified reference copy of the skeleton, then bakes the composited
// result back into the clip.
//
// The constraint graph of the original workflow collapses into three
// per-frame rules inside the bake loop: the driver transform copies the
// reference pelvis's world X/Y and full world scale; the root bone copies
// the driver; every direct child of root copies its own world transform from
// the reference clip.
type UESkeletalMesh struct{}

// Apply implements Strategy.
func (UESkeletalMesh) Apply(g *scene.Graph, log *report.Logger) error {
	if g.Armature < 0 || g.Skeleton == nil {
		return &MissingAnimationError{}
	}
	armName := g.Objects[g.Armature].Name
	if g.Clip == nil {
		return &MissingAnimationError{Object: armName}
	}

	sk := g.Skeleton
	rootBone := sk.ByName(ueRootBone)
	if rootBone < 0 {
		return &MissingBoneError{Bone: ueRootBone}
	}

	// Duplicate the armature payload into a reference graph. The duplicate
	// only serves as an evaluation source and is never modified; it also
	// appears in the scene as a temporary object until cleanup.
	ref, err := duplicateGraph(g)
	if err != nil {
		return fmt.Errorf("retarget: duplicate armature: %w", err)
	}
	dupName := armName + ".001"
	g.Objects = append(g.Objects, &scene.Object{
		Name:    dupName,
		Parent:  -1,
		Local:   g.Objects[g.Armature].Local,
		Node:    -1,
		Payload: scene.PayloadArmature,
	})
	defer removeByName(g, dupName)
	log.Stepf("created reference duplicate %q", dupName)

	pelvis := ref.Skeleton.ByName(uePelvisBone)
	if pelvis < 0 {
		return &MissingBoneError{Bone: uePelvisBone}
	}

	// Drop any object-level root motion baked in at import time and reset
	// the armature object so root placement is fully re-derived.
	if g.Clip.Object != nil {
		log.Stepf("removed object-level animation channels")
		g.Clip.Object = nil
	}
	g.Objects[g.Armature].Local = scene.Identity()

	start, end := g.Clip.Start, g.Clip.End
	children := sk.ChildrenOf(rootBone)
	frames := end - start + 1

	log.Stepf("baking frames %d-%d for %q and %d children", start, end, ueRootBone, len(children))

	// Evaluate every frame against the reference before writing anything
	// back (visual keying).
	baked := make(map[int][]scene.TRS, len(children)+1)
	baked[rootBone] = make([]scene.TRS, frames)
	for _, c := range children {
		baked[c] = make([]scene.TRS, frames)
	}
	rootRestInv := sk.Bones[rootBone].Rest.Mat4().Inv()

	for f := start; f <= end; f++ {
		pel := scene.Decompose(scene.BoneWorld(ref, pelvis, f))
		driver := scene.TRS{
			Translation: mgl64.Vec3{pel.Translation.X(), pel.Translation.Y(), 0},
			Rotation:    mgl64.QuatIdent(),
			Scale:       pel.Scale,
		}
		driverMat := driver.Mat4()
		driverInv := driverMat.Inv()

		var parentW mgl64.Mat4
		if p := sk.Bones[rootBone].Parent; p >= 0 {
			parentW = scene.BoneWorld(g, p, f)
		} else {
			parentW = scene.ObjectWorld(g, g.Armature, f)
		}
		baked[rootBone][f-start] = scene.Decompose(rootRestInv.Mul4(parentW.Inv()).Mul4(driverMat))

		for _, c := range children {
			refW := scene.BoneWorld(ref, c, f)
			restInv := sk.Bones[c].Rest.Mat4().Inv()
			baked[c][f-start] = scene.Decompose(restInv.Mul4(driverInv).Mul4(refW))
		}
	}

	for bone, track := range baked {
		name := sk.Bones[bone].Name
		for f := start; f <= end; f++ {
			g.Clip.SetBoneSample(name, f, track[f-start])
		}
	}
	log.Stepf("baked %d frames", frames)

	return nil
}

// duplicateGraph deep-copies the pieces of the graph the bake evaluates
// against: objects, skeleton and clip. The copy shares nothing with the
// original.
func duplicateGraph(g *scene.Graph) (*scene.Graph, error) {
	var bones []scene.Bone
	if err := deepcopy.Copy(&bones, g.Skeleton.Bones); err != nil {
		return nil, err
	}
	sk, err := scene.NewSkeleton(bones)
	if err != nil {
		return nil, err
	}
	var clip *scene.Clip
	if err := deepcopy.Copy(&clip, g.Clip); err != nil {
		return nil, err
	}
	var objects []*scene.Object
	if err := deepcopy.Copy(&objects, g.Objects); err != nil {
		return nil, err
	}
	return &scene.Graph{
		Objects:    objects,
		Armature:   g.Armature,
		Skeleton:   sk,
		Clip:       clip,
		SceneStart: g.SceneStart,
		SceneEnd:   g.SceneEnd,
	}, nil
}

func removeByName(g *scene.Graph, name string) {
	for i, o := range g.Objects {
		if o.Name == name {
			g.RemoveObject(i)
			return
		}
	}
}
