package engine

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/qmuntal/gltf"

	"github.com/Schizogonia/mixamo-ue-fix/internal/report"
	"github.com/Schizogonia/mixamo-ue-fix/internal/scene"
)

// Export writes the converted graph back into the file's document and saves
// it. selection, when non-nil, is the set of object indices to export
// (scoped by re-rooting the scene to the selection's top object); nil means
// the entire scene.
func Export(f *File, selection []int, path string, log *report.Logger) error {
	if err := sync(f, selection, log); err != nil {
		return fmt.Errorf("engine: export %s: %w", path, err)
	}
	if err := save(f.Doc, path); err != nil {
		return fmt.Errorf("engine: export %s: %w", path, err)
	}
	log.Infof("exported %s", path)
	return nil
}

func sync(f *File, selection []int, log *report.Logger) error {
	doc := f.Doc
	g := f.Graph

	ensureArmatureNode(f)

	for _, o := range g.Objects {
		if o.Node < 0 || o.Node >= len(doc.Nodes) {
			continue
		}
		node := doc.Nodes[o.Node]
		node.Name = o.Name
		setNodeTRS(node, o.Local)
	}

	if g.Clip != nil {
		doc.Animations = []*gltf.Animation{buildAnimation(f)}
	} else {
		doc.Animations = nil
	}

	if len(selection) > 0 {
		top := g.Objects[selection[0]]
		if top.Node < 0 {
			return fmt.Errorf("selection root %q has no backing node", top.Name)
		}
		si := 0
		if doc.Scene != nil {
			si = int(*doc.Scene)
		}
		if si >= len(doc.Scenes) {
			return fmt.Errorf("document has no scene to scope")
		}
		doc.Scenes[si].Nodes = []uint32{uint32(top.Node)}
		log.Stepf("scoped export to %q and its %d children", top.Name, len(selection)-1)
	}

	return nil
}

// ensureArmatureNode materializes a synthesized armature object as a real
// node so renames and the object-level motion track have somewhere to land.
// The skeleton's root joints move from the scene roots under the new node.
func ensureArmatureNode(f *File) {
	g := f.Graph
	if g.Armature < 0 || g.Objects[g.Armature].Node >= 0 {
		return
	}
	doc := f.Doc

	arm := g.Objects[g.Armature]
	children := make([]uint32, len(f.rootJointNodes))
	for i, j := range f.rootJointNodes {
		children[i] = uint32(j)
	}
	node := &gltf.Node{Name: arm.Name, Children: children}
	setNodeTRS(node, arm.Local)
	idx := len(doc.Nodes)
	doc.Nodes = append(doc.Nodes, node)
	arm.Node = idx

	rooted := make(map[uint32]bool, len(f.rootJointNodes))
	for _, j := range f.rootJointNodes {
		rooted[uint32(j)] = true
	}
	for _, s := range doc.Scenes {
		var kept []uint32
		replaced := false
		for _, ni := range s.Nodes {
			if rooted[ni] {
				replaced = true
				continue
			}
			kept = append(kept, ni)
		}
		if replaced {
			s.Nodes = append(kept, uint32(idx))
		}
	}
}

// buildAnimation rebuilds the document animation from the dense clip. Bone
// samples leave basis form here: the exported node values are the composed
// rest ∘ basis local transforms.
func buildAnimation(f *File) *gltf.Animation {
	doc := f.Doc
	g := f.Graph
	clip := g.Clip
	frames := clip.FrameCount()

	times := make([]float32, frames)
	for i := range times {
		times[i] = float32(float64(clip.Start+i) / clip.FPS)
	}
	input := writeTimes(doc, times)

	anim := &gltf.Animation{Name: clip.Name}
	channel := func(node int, path gltf.TRSProperty, output uint32) {
		anim.Samplers = append(anim.Samplers, &gltf.AnimationSampler{
			Input:         input,
			Output:        output,
			Interpolation: gltf.InterpolationLinear,
		})
		anim.Channels = append(anim.Channels, &gltf.Channel{
			Sampler: gltf.Index(uint32(len(anim.Samplers) - 1)),
			Target: gltf.ChannelTarget{
				Node: gltf.Index(uint32(node)),
				Path: path,
			},
		})
	}

	if g.Skeleton != nil {
		for bi, bone := range g.Skeleton.Bones {
			tRows := make([][3]float32, frames)
			rRows := make([][4]float32, frames)
			sRows := make([][3]float32, frames)
			prev := mgl64.QuatIdent()
			for i := 0; i < frames; i++ {
				sample := clip.BoneSample(bone.Name, clip.Start+i)
				local := scene.Decompose(bone.Rest.Mat4().Mul4(sample.Mat4()))
				q := local.Rotation
				// Keep quaternion sign continuous across frames so engines
				// interpolating between keys stay on the short arc.
				if i > 0 && prev.Dot(q) < 0 {
					q = q.Scale(-1)
				}
				prev = q
				tRows[i] = vec3Row(local.Translation)
				rRows[i] = [4]float32{float32(q.V.X()), float32(q.V.Y()), float32(q.V.Z()), float32(q.W)}
				sRows[i] = vec3Row(local.Scale)
			}
			node := f.boneNode[bi]
			channel(node, gltf.TRSTranslation, writeVec3(doc, tRows))
			channel(node, gltf.TRSRotation, writeVec4(doc, rRows))
			channel(node, gltf.TRSScale, writeVec3(doc, sRows))
		}
	}

	if clip.Object != nil && g.Armature >= 0 && g.Objects[g.Armature].Node >= 0 {
		tRows := make([][3]float32, frames)
		for i := range tRows {
			tRows[i] = vec3Row(clip.Object[i].Translation)
		}
		channel(g.Objects[g.Armature].Node, gltf.TRSTranslation, writeVec3(doc, tRows))
	}

	return anim
}

func vec3Row(v mgl64.Vec3) [3]float32 {
	return [3]float32{float32(v.X()), float32(v.Y()), float32(v.Z())}
}

func setNodeTRS(node *gltf.Node, t scene.TRS) {
	node.Matrix = identityMatrix
	node.Translation = [3]float32{float32(t.Translation.X()), float32(t.Translation.Y()), float32(t.Translation.Z())}
	node.Rotation = [4]float32{float32(t.Rotation.V.X()), float32(t.Rotation.V.Y()), float32(t.Rotation.V.Z()), float32(t.Rotation.W)}
	node.Scale = [3]float32{float32(t.Scale.X()), float32(t.Scale.Y()), float32(t.Scale.Z())}
}

func save(doc *gltf.Document, path string) error {
	if strings.EqualFold(filepath.Ext(path), ".glb") {
		if len(doc.Buffers) > 0 {
			// GLB stores buffer 0 as the binary chunk.
			doc.Buffers[0].URI = ""
		}
		return gltf.SaveBinary(doc, path)
	}
	for _, b := range doc.Buffers {
		if len(b.Data) > 0 {
			b.EmbeddedResource()
		}
	}
	return gltf.Save(doc, path)
}
