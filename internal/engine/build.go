package engine

import (
	"fmt"
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/qmuntal/gltf"

	"github.com/Schizogonia/mixamo-ue-fix/internal/report"
	"github.com/Schizogonia/mixamo-ue-fix/internal/scene"
)

func build(doc *gltf.Document, opts Options, log *report.Logger) (*File, error) {
	n := len(doc.Nodes)
	parent := make([]int, n)
	for i := range parent {
		parent[i] = -1
	}
	for i, node := range doc.Nodes {
		for _, c := range node.Children {
			if int(c) < n {
				parent[c] = i
			}
		}
	}

	isJoint := make([]bool, n)
	var skin *gltf.Skin
	if len(doc.Skins) > 0 {
		if len(doc.Skins) > 1 {
			log.Warnf("file has %d skins, using the first", len(doc.Skins))
		}
		skin = doc.Skins[0]
		for _, j := range skin.Joints {
			if int(j) < n {
				isJoint[j] = true
			}
		}
	}

	f := &File{Doc: doc}
	g := &scene.Graph{Armature: -1}
	f.Graph = g

	// Skeleton: depth-first over the joint forest, root joints and siblings
	// in ascending node index, so parents always precede children.
	var bones []scene.Bone
	boneOf := make(map[int]int, n)
	if skin != nil {
		joints := make([]int, len(skin.Joints))
		for i, j := range skin.Joints {
			joints[i] = int(j)
		}
		sort.Ints(joints)
		var visit func(node, parentBone int)
		visit = func(node, parentBone int) {
			bi := len(bones)
			bones = append(bones, scene.Bone{
				Name:   nodeName(doc, node),
				Parent: parentBone,
				Rest:   nodeTRS(doc.Nodes[node]),
			})
			boneOf[node] = bi
			f.boneNode = append(f.boneNode, node)
			for _, c := range doc.Nodes[node].Children {
				if ci := int(c); ci < n && isJoint[ci] {
					visit(ci, bi)
				}
			}
		}
		for _, j := range joints {
			p := parent[j]
			if p < 0 || !isJoint[p] {
				f.rootJointNodes = append(f.rootJointNodes, j)
				visit(j, -1)
			}
		}
		sk, err := scene.NewSkeleton(bones)
		if err != nil {
			return nil, err
		}
		g.Skeleton = sk
	}

	// Objects: every non-joint node, in document node order. Joints are
	// bones, not objects.
	objOf := make(map[int]int, n)
	for i, node := range doc.Nodes {
		if isJoint[i] {
			continue
		}
		payload := scene.PayloadNone
		if node.Mesh != nil {
			payload = scene.PayloadMesh
		}
		objOf[i] = len(g.Objects)
		g.Objects = append(g.Objects, &scene.Object{
			Name:    nodeName(doc, i),
			Parent:  -1,
			Local:   nodeTRS(node),
			Node:    i,
			Payload: payload,
		})
	}
	for i, oi := range objOf {
		for p := parent[i]; p >= 0; p = parent[p] {
			if po, ok := objOf[p]; ok {
				g.Objects[oi].Parent = po
				break
			}
		}
	}

	// The armature object is the non-joint parent of the skeleton's first
	// hierarchy root. Files whose root joint sits directly in the scene get
	// a synthesized armature object instead.
	if skin != nil && len(f.rootJointNodes) > 0 {
		if p := parent[f.rootJointNodes[0]]; p >= 0 && !isJoint[p] {
			g.Armature = objOf[p]
		} else {
			name := skin.Name
			if name == "" {
				name = "Armature"
			}
			g.Armature = len(g.Objects)
			g.Objects = append(g.Objects, &scene.Object{
				Name:   name,
				Parent: -1,
				Local:  scene.Identity(),
				Node:   -1,
			})
			log.Infof("root joint is a scene root, synthesized armature object %q", name)
		}
		g.Objects[g.Armature].Payload = scene.PayloadArmature
	}

	if len(doc.Animations) > 0 {
		if len(doc.Animations) > 1 {
			log.Warnf("file has %d animations, using %q", len(doc.Animations), doc.Animations[0].Name)
		}
		clip, err := buildClip(f, doc.Animations[0], objOf, boneOf, opts, log)
		if err != nil {
			return nil, err
		}
		g.Clip = clip
		if clip != nil {
			g.SceneStart, g.SceneEnd = clip.Start, clip.End
		}
	}

	return f, nil
}

// buildClip resamples one glTF animation onto the dense integer frame grid.
// Joint samples are stored in basis form (rest⁻¹ ∘ local) so the bone-local
// translation axes the fix-up strategies reason about line up with the rest
// orientation, the way a DCC pose bone behaves.
func buildClip(f *File, anim *gltf.Animation, objOf, boneOf map[int]int, opts Options, log *report.Logger) (*scene.Clip, error) {
	doc := f.Doc
	g := f.Graph

	tracks := make(map[int]*nodeTracks)
	minT := math.Inf(1)
	maxT := math.Inf(-1)

	for ci, ch := range anim.Channels {
		if ch.Target.Node == nil {
			continue
		}
		node := int(*ch.Target.Node)
		if ch.Sampler == nil || int(*ch.Sampler) >= len(anim.Samplers) {
			continue
		}
		sampler := anim.Samplers[*ch.Sampler]
		if ch.Target.Path == gltf.TRSWeights {
			continue // morph weights are not part of this pipeline
		}

		times, err := readTimes(doc, sampler.Input)
		if err != nil {
			return nil, fmt.Errorf("channel %d: %w", ci, err)
		}
		rows, err := readRows(doc, sampler.Output)
		if err != nil {
			return nil, fmt.Errorf("channel %d: %w", ci, err)
		}
		if sampler.Interpolation == gltf.InterpolationCubicSpline {
			rows = trimCubicSpline(rows, len(times))
		}
		if len(times) == 0 || len(rows) < len(times) {
			continue
		}
		if times[0] < minT {
			minT = times[0]
		}
		if times[len(times)-1] > maxT {
			maxT = times[len(times)-1]
		}

		nt := tracks[node]
		if nt == nil {
			nt = &nodeTracks{}
			tracks[node] = nt
		}
		kt := &keyTrack{times: times, rows: rows, interp: sampler.Interpolation}
		switch ch.Target.Path {
		case gltf.TRSTranslation:
			nt.translation = kt
		case gltf.TRSRotation:
			nt.rotation = kt
		case gltf.TRSScale:
			nt.scale = kt
		}
	}

	if len(tracks) == 0 {
		log.Warnf("animation %q has no usable channels", anim.Name)
		return nil, nil
	}

	fps := opts.SampleRate
	start := int(math.Round(minT * fps))
	end := int(math.Round(maxT * fps))
	if end < start {
		end = start
	}

	clip := &scene.Clip{
		Name:  anim.Name,
		Start: start,
		End:   end,
		FPS:   fps,
		Bones: make(map[string][]scene.TRS),
	}
	frames := clip.FrameCount()

	if g.Skeleton != nil {
		for bi, bone := range g.Skeleton.Bones {
			nt := tracks[f.boneNode[bi]]
			track := make([]scene.TRS, frames)
			if nt == nil {
				for i := range track {
					track[i] = scene.Identity()
				}
			} else {
				restInv := bone.Rest.Mat4().Inv()
				for i := range track {
					t := float64(start+i) / fps
					local := nt.localAt(bone.Rest, t)
					track[i] = scene.Decompose(restInv.Mul4(local.Mat4()))
				}
			}
			clip.Bones[bone.Name] = track
		}
	}

	// Channels targeting the armature object itself become the clip's
	// object track (object-level root motion baked in at import time).
	if g.Armature >= 0 {
		if node := g.Objects[g.Armature].Node; node >= 0 {
			if nt := tracks[node]; nt != nil {
				base := g.Objects[g.Armature].Local
				objTrack := make([]scene.TRS, frames)
				for i := range objTrack {
					objTrack[i] = nt.localAt(base, float64(start+i)/fps)
				}
				clip.Object = objTrack
			}
		}
	}

	log.Infof("clip %q: frames %d-%d at %g fps", clip.Name, start, end, fps)
	return clip, nil
}

func nodeName(doc *gltf.Document, node int) string {
	if name := doc.Nodes[node].Name; name != "" {
		return name
	}
	return fmt.Sprintf("node_%d", node)
}

var identityMatrix = [16]float32{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 1, 0,
	0, 0, 0, 1,
}

// nodeTRS reads a node's static transform, handling matrix-form nodes and
// the zero values a hand-built document may carry for absent TRS fields.
// The document stores float32; the scene model works in float64.
func nodeTRS(n *gltf.Node) scene.TRS {
	if n.Matrix != identityMatrix && n.Matrix != ([16]float32{}) {
		var m mgl64.Mat4
		for i, v := range n.Matrix {
			m[i] = float64(v)
		}
		return scene.Decompose(m)
	}
	out := scene.Identity()
	out.Translation = mgl64.Vec3{float64(n.Translation[0]), float64(n.Translation[1]), float64(n.Translation[2])}
	if n.Rotation != ([4]float32{}) {
		out.Rotation = mgl64.Quat{
			W: float64(n.Rotation[3]),
			V: mgl64.Vec3{float64(n.Rotation[0]), float64(n.Rotation[1]), float64(n.Rotation[2])},
		}.Normalize()
	}
	if n.Scale != ([3]float32{}) {
		out.Scale = mgl64.Vec3{float64(n.Scale[0]), float64(n.Scale[1]), float64(n.Scale[2])}
	}
	return out
}
