package retarget

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Schizogonia/mixamo-ue-fix/internal/report"
	"github.com/Schizogonia/mixamo-ue-fix/internal/scene"
)

// matNear compares matrices element-wise with an absolute tolerance. mgl64's
// ApproxEqualThreshold switches to an epsilon-squared bound near zero, which
// rejects plain float64 rounding noise on exact-zero entries.
func matNear(a, b mgl64.Mat4, tol float64) bool {
	for i := range a {
		if math.Abs(a[i]-b[i]) > tol {
			return false
		}
	}
	return true
}

// ueGraph builds a UE-style rig: a "root" bone with "pelvis" and
// "ik_foot_root" children. The imported clip carries motion on root and
// pelvis, an object-level track, and a non-identity armature transform, so
// the decoupler has real work to do in every step.
func ueGraph(t *testing.T) *scene.Graph {
	t.Helper()
	sk, err := scene.NewSkeleton([]scene.Bone{
		{Name: "root", Parent: -1, Rest: scene.Identity()},
		{Name: "pelvis", Parent: 0, Rest: scene.TRS{
			Translation: mgl64.Vec3{0, 0, 0.9},
			Rotation:    mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{1, 0, 0}),
			Scale:       mgl64.Vec3{1, 1, 1},
		}},
		{Name: "ik_foot_root", Parent: 0, Rest: scene.Identity()},
		{Name: "spine_01", Parent: 1, Rest: scene.TRS{
			Translation: mgl64.Vec3{0, 0.3, 0},
			Rotation:    mgl64.QuatIdent(),
			Scale:       mgl64.Vec3{1, 1, 1},
		}},
	})
	if err != nil {
		t.Fatalf("NewSkeleton: %v", err)
	}

	clip := &scene.Clip{Name: "run", Start: 0, End: 10, FPS: 30, Bones: map[string][]scene.TRS{}}
	for f := 0; f <= 10; f++ {
		rs := scene.Identity()
		rs.Translation = mgl64.Vec3{0.1 * float64(f), 0, 0}
		clip.SetBoneSample("root", f, rs)

		ps := scene.Identity()
		ps.Translation = mgl64.Vec3{0.05 * float64(f), 0.02 * float64(f), 0.01 * float64(f)}
		ps.Scale = mgl64.Vec3{1.1, 1.1, 1.1}
		clip.SetBoneSample("pelvis", f, ps)
	}

	g := &scene.Graph{
		Objects: []*scene.Object{
			{Name: "SKM_Quinn", Parent: -1, Local: scene.TRS{
				Translation: mgl64.Vec3{0, 0, 0},
				Rotation:    mgl64.QuatIdent(),
				Scale:       mgl64.Vec3{1, 1, 1},
			}, Node: -1, Payload: scene.PayloadArmature},
		},
		Armature: 0,
		Skeleton: sk,
		Clip:     clip,
	}
	// Object-level root motion baked in at import time.
	for f := 0; f <= 10; f++ {
		g.SetObjectTranslation(f, mgl64.Vec3{5, 0, 0})
	}
	return g
}

func TestUEDecouplerBake(t *testing.T) {
	g := ueGraph(t)
	ref := ueGraph(t) // pristine copy, stands in for the pre-conversion state

	if err := (UESkeletalMesh{}).Apply(g, report.New(nil)); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if g.Clip.Object != nil {
		t.Error("object-level channels were not removed")
	}
	if got := g.Objects[g.Armature].Local; !vecNear(got.Translation, mgl64.Vec3{}, tol) {
		t.Errorf("armature transform not reset: %v", got.Translation)
	}

	pelvis := ref.Skeleton.ByName("pelvis")
	root := g.Skeleton.ByName("root")
	for f := 0; f <= 10; f++ {
		refPelvis := scene.Decompose(scene.BoneWorld(ref, pelvis, f))

		// root world == driver world: reference pelvis X/Y, zero Z, full
		// reference scale.
		rootW := scene.Decompose(scene.BoneWorld(g, root, f))
		wantT := mgl64.Vec3{refPelvis.Translation.X(), refPelvis.Translation.Y(), 0}
		if !vecNear(rootW.Translation, wantT, 1e-9) {
			t.Errorf("frame %d: root world %v, want %v", f, rootW.Translation, wantT)
		}
		if !vecNear(rootW.Scale, refPelvis.Scale, 1e-9) {
			t.Errorf("frame %d: root scale %v, want %v", f, rootW.Scale, refPelvis.Scale)
		}

		// Direct children of root reproduce the reference world transforms.
		for _, name := range []string{"pelvis", "ik_foot_root"} {
			bi := g.Skeleton.ByName(name)
			refW := scene.BoneWorld(ref, ref.Skeleton.ByName(name), f)
			gotW := scene.BoneWorld(g, bi, f)
			if !matNear(gotW, refW, tol) {
				t.Errorf("frame %d: bone %q world differs from reference", f, name)
			}
		}
	}

	// Grandchildren ride along unchanged below the re-sourced pelvis.
	spine := g.Skeleton.ByName("spine_01")
	refSpine := ref.Skeleton.ByName("spine_01")
	for f := 0; f <= 10; f++ {
		got := scene.BoneWorld(g, spine, f)
		want := scene.BoneWorld(ref, refSpine, f)
		if !matNear(got, want, tol) {
			t.Errorf("frame %d: spine_01 world differs from reference", f)
		}
	}
}

func TestUEDecouplerCleanup(t *testing.T) {
	g := ueGraph(t)
	objects := len(g.Objects)

	if err := (UESkeletalMesh{}).Apply(g, report.New(nil)); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if len(g.Objects) != objects {
		t.Fatalf("temporary objects left behind: %d objects, started with %d", len(g.Objects), objects)
	}
	for _, o := range g.Objects {
		if o.Name == "SKM_Quinn.001" {
			t.Fatalf("reference duplicate still in scene")
		}
	}
}

func TestUEDecouplerMissingAnimation(t *testing.T) {
	g := ueGraph(t)
	g.Clip = nil

	err := (UESkeletalMesh{}).Apply(g, report.New(nil))
	var missing *MissingAnimationError
	if !errors.As(err, &missing) {
		t.Fatalf("got %v, want MissingAnimationError", err)
	}
}

func TestUEDecouplerMissingRoot(t *testing.T) {
	g := ueGraph(t)
	bones := append([]scene.Bone(nil), g.Skeleton.Bones...)
	bones[0].Name = "reference"
	bones[1].Parent = 0
	sk, err := scene.NewSkeleton(bones)
	if err != nil {
		t.Fatalf("NewSkeleton: %v", err)
	}
	g.Skeleton = sk

	applyErr := (UESkeletalMesh{}).Apply(g, report.New(nil))
	var missing *MissingBoneError
	if !errors.As(applyErr, &missing) || missing.Bone != "root" {
		t.Fatalf("got %v, want MissingBoneError for root", applyErr)
	}
}

func TestUEDecouplerMissingPelvis(t *testing.T) {
	g := ueGraph(t)
	bones := append([]scene.Bone(nil), g.Skeleton.Bones...)
	bones[1].Name = "hips"
	sk, err := scene.NewSkeleton(bones)
	if err != nil {
		t.Fatalf("NewSkeleton: %v", err)
	}
	g.Skeleton = sk

	applyErr := (UESkeletalMesh{}).Apply(g, report.New(nil))
	var missing *MissingBoneError
	if !errors.As(applyErr, &missing) || missing.Bone != "pelvis" {
		t.Fatalf("got %v, want MissingBoneError for pelvis", applyErr)
	}

	// A fatal error still leaves no temporary objects behind.
	for _, o := range g.Objects {
		if o.Name == "SKM_Quinn.001" {
			t.Fatalf("reference duplicate left in scene after error")
		}
	}
}
