package retarget

import (
	"github.com/Schizogonia/mixamo-ue-fix/internal/report"
	"github.com/Schizogonia/mixamo-ue-fix/internal/scene"
)

// TopObjectName is the fixed name given to the scene's top-level object in
// mixamo mode.
const TopObjectName = "root"

// Finalize renames the first parentless object (in scene enumeration order)
// to "root" and returns the export selection: that object followed by its
// transitive children, depth-first. A nil result means no parentless object
// was found and the export falls back to the entire scene.
//
// Mixamo mode only; the UE strategy exports the scene as-is.
func Finalize(g *scene.Graph, log *report.Logger) []int {
	top := -1
	for i, o := range g.Objects {
		if o.Parent < 0 {
			top = i
			break
		}
	}
	if top < 0 {
		log.Warnf("no top-level object found, exporting entire scene")
		return nil
	}

	log.Stepf("renamed %q -> %q", g.Objects[top].Name, TopObjectName)
	g.Objects[top].Name = TopObjectName

	var selection []int
	var visit func(i int)
	visit = func(i int) {
		selection = append(selection, i)
		for _, c := range g.ObjectChildren(i) {
			visit(c)
		}
	}
	visit(top)
	log.Stepf("selected %d objects for export", len(selection))
	return selection
}
