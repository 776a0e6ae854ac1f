package retarget

import (
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Schizogonia/mixamo-ue-fix/internal/report"
	"github.com/Schizogonia/mixamo-ue-fix/internal/scene"
)

// Mixamo transfers the hips bone's horizontal world displacement onto the
// armature object and leaves only vertical motion on the bone itself.
//
// Axis convention: in this rig family the bone-local +Y axis is vertical and
// X/Z are lateral/forward. That mapping is assumed, not detected; rigs with a
// different bone-local convention are out of scope.
type Mixamo struct{}

// Apply implements Strategy.
func (Mixamo) Apply(g *scene.Graph, log *report.Logger) error {
	if g.Armature < 0 || g.Skeleton == nil {
		log.Warnf("no armature found, skipping root-motion extraction")
		return nil
	}
	if g.Clip == nil {
		log.Warnf("armature %q has no animation clip, skipping root-motion extraction", g.Objects[g.Armature].Name)
		return nil
	}

	hips := findHips(g.Skeleton)
	if hips < 0 {
		log.Warnf("hips bone not found, clip left unmodified")
		return nil
	}
	hipsName := g.Skeleton.Bones[hips].Name
	log.Stepf("found hips bone %q", hipsName)

	start, end := g.FrameRange()
	log.Stepf("collecting hips world positions for frames %d-%d", start, end)

	// Snapshot every frame before any mutation: the object track written
	// below would otherwise feed back into the evaluation.
	world := make([]mgl64.Vec3, end-start+1)
	for f := start; f <= end; f++ {
		world[f-start] = scene.BoneWorldTranslation(g, hips, f)
	}
	base := world[0]
	log.Infof("start position (frame %d): X=%.3f Y=%.3f Z=%.3f", start, base.X(), base.Y(), base.Z())

	log.Stepf("keying horizontal displacement onto the armature object")
	for f := start; f <= end; f++ {
		w := world[f-start]
		g.SetObjectTranslation(f, mgl64.Vec3{w.X() - base.X(), w.Y() - base.Y(), 0})
	}

	log.Stepf("removing lateral/forward motion from %q", hipsName)
	for f := start; f <= end; f++ {
		s := g.Clip.BoneSample(hipsName, f)
		// Local Y is vertical in this family: keep it, zero the rest.
		g.Clip.SetBoneTranslation(hipsName, f, mgl64.Vec3{0, s.Translation.Y(), 0})
	}

	return nil
}

// findHips returns the first bone, in skeleton order, whose name contains
// "hips" case-insensitively.
func findHips(sk *scene.Skeleton) int {
	for i, b := range sk.Bones {
		if strings.Contains(strings.ToLower(b.Name), "hips") {
			return i
		}
	}
	return -1
}
