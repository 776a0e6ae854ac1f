package scene

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

// twoBoneGraph builds an armature object translated by (1,0,0) holding a
// two-bone chain: root bone at (0,0,1), child at (0,1,0) relative to it.
func twoBoneGraph(t *testing.T) *Graph {
	t.Helper()
	sk, err := NewSkeleton([]Bone{
		{Name: "pelvis", Parent: -1, Rest: TRS{Translation: mgl64.Vec3{0, 0, 1}, Rotation: mgl64.QuatIdent(), Scale: mgl64.Vec3{1, 1, 1}}},
		{Name: "spine", Parent: 0, Rest: TRS{Translation: mgl64.Vec3{0, 1, 0}, Rotation: mgl64.QuatIdent(), Scale: mgl64.Vec3{1, 1, 1}}},
	})
	if err != nil {
		t.Fatalf("NewSkeleton: %v", err)
	}
	arm := &Object{
		Name:   "Armature",
		Parent: -1,
		Local:  TRS{Translation: mgl64.Vec3{1, 0, 0}, Rotation: mgl64.QuatIdent(), Scale: mgl64.Vec3{1, 1, 1}},
		Node:   -1,
	}
	return &Graph{Objects: []*Object{arm}, Armature: 0, Skeleton: sk}
}

func TestBoneWorldRestPose(t *testing.T) {
	g := twoBoneGraph(t)

	got := BoneWorldTranslation(g, 0, 0)
	if !vecNear(got, mgl64.Vec3{1, 0, 1}, tol) {
		t.Errorf("pelvis world: got %v", got)
	}
	got = BoneWorldTranslation(g, 1, 0)
	if !vecNear(got, mgl64.Vec3{1, 1, 1}, tol) {
		t.Errorf("spine world: got %v", got)
	}
}

func TestBoneWorldWithAnimation(t *testing.T) {
	g := twoBoneGraph(t)
	clip := &Clip{Name: "move", Start: 0, End: 2, FPS: 30, Bones: map[string][]TRS{}}
	g.Clip = clip
	for f := 0; f <= 2; f++ {
		s := Identity()
		s.Translation = mgl64.Vec3{float64(f), 0, 0}
		clip.SetBoneSample("pelvis", f, s)
	}

	got := BoneWorldTranslation(g, 1, 2)
	if !vecNear(got, mgl64.Vec3{3, 1, 1}, tol) {
		t.Errorf("spine world at frame 2: got %v", got)
	}
}

func TestBoneWorldIsPure(t *testing.T) {
	g := twoBoneGraph(t)
	clip := &Clip{Name: "move", Start: 0, End: 10, FPS: 30, Bones: map[string][]TRS{}}
	g.Clip = clip
	for f := 0; f <= 10; f++ {
		s := Identity()
		s.Translation = mgl64.Vec3{0, 0, math.Sin(float64(f))}
		clip.SetBoneSample("spine", f, s)
	}

	// Evaluation order must not matter.
	forward := make([]mgl64.Vec3, 11)
	for f := 0; f <= 10; f++ {
		forward[f] = BoneWorldTranslation(g, 1, f)
	}
	for f := 10; f >= 0; f-- {
		if got := BoneWorldTranslation(g, 1, f); !vecNear(got, forward[f], tol) {
			t.Fatalf("frame %d: got %v after reverse evaluation, want %v", f, got, forward[f])
		}
	}
}

func TestBoneWorldHipsBelowAncestor(t *testing.T) {
	// The pelvis-role bone is allowed to sit below other bones.
	sk, err := NewSkeleton([]Bone{
		{Name: "root", Parent: -1, Rest: Identity()},
		{Name: "Hips", Parent: 0, Rest: TRS{Translation: mgl64.Vec3{0, 0, 0.9}, Rotation: mgl64.QuatIdent(), Scale: mgl64.Vec3{1, 1, 1}}},
	})
	if err != nil {
		t.Fatalf("NewSkeleton: %v", err)
	}
	g := &Graph{
		Objects:  []*Object{{Name: "Armature", Parent: -1, Local: Identity(), Node: -1}},
		Armature: 0,
		Skeleton: sk,
	}
	clip := &Clip{Start: 0, End: 0, FPS: 30, Bones: map[string][]TRS{}}
	g.Clip = clip
	s := Identity()
	s.Translation = mgl64.Vec3{2, 0, 0}
	clip.SetBoneSample("root", 0, s)

	got := BoneWorldTranslation(g, 1, 0)
	if !vecNear(got, mgl64.Vec3{2, 0, 0.9}, tol) {
		t.Fatalf("hips world: got %v", got)
	}
}

func TestObjectWorldUsesObjectTrack(t *testing.T) {
	g := twoBoneGraph(t)
	g.Clip = &Clip{Start: 0, End: 1, FPS: 30, Bones: map[string][]TRS{}}
	g.SetObjectTranslation(0, mgl64.Vec3{0, 0, 0})
	g.SetObjectTranslation(1, mgl64.Vec3{5, 0, 0})

	got := ObjectWorld(g, 0, 1).Col(3).Vec3()
	if !vecNear(got, mgl64.Vec3{5, 0, 0}, tol) {
		t.Fatalf("object world at frame 1: got %v", got)
	}
	// The static transform stays untouched for rotation/scale.
	if !vecNear(g.Objects[0].Local.Translation, mgl64.Vec3{1, 0, 0}, tol) {
		t.Fatalf("static local mutated: %v", g.Objects[0].Local.Translation)
	}
}

func TestRemoveObject(t *testing.T) {
	g := twoBoneGraph(t)
	g.Objects = append(g.Objects,
		&Object{Name: "Mesh", Parent: 0, Local: Identity(), Node: -1, Payload: PayloadMesh},
		&Object{Name: "Armature.001", Parent: -1, Local: Identity(), Node: -1},
	)

	g.RemoveObject(2)
	if len(g.Objects) != 2 {
		t.Fatalf("objects: %d", len(g.Objects))
	}
	if g.Objects[1].Name != "Mesh" || g.Objects[1].Parent != 0 {
		t.Fatalf("mesh object broken: %+v", g.Objects[1])
	}
	if g.Armature != 0 {
		t.Fatalf("armature index: %d", g.Armature)
	}
}
