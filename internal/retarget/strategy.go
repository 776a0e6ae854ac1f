// Package retarget rewrites an imported clip so horizontal locomotion lives
// on the object root, the convention game engines expect. Two skeleton
// families are supported, each with its own strategy.
package retarget

import (
	"fmt"

	"github.com/Schizogonia/mixamo-ue-fix/internal/report"
	"github.com/Schizogonia/mixamo-ue-fix/internal/scene"
)

// Mode selects the fix-up strategy for a skeleton family.
type Mode int

const (
	// ModeMixamo handles rigs whose pelvis-region bone ("hips") is expected
	// to carry only vertical motion after conversion.
	ModeMixamo Mode = iota
	// ModeUESkeletalMesh handles UE-style rigs with a dedicated "root" bone
	// whose placement is re-derived from the pelvis.
	ModeUESkeletalMesh
)

// ParseMode maps the CLI mode selector onto a Mode. Empty input defaults to
// mixamo.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "mixamo":
		return ModeMixamo, nil
	case "ue5_skm":
		return ModeUESkeletalMesh, nil
	default:
		return ModeMixamo, fmt.Errorf("retarget: unknown mode %q (want mixamo or ue5_skm)", s)
	}
}

func (m Mode) String() string {
	switch m {
	case ModeUESkeletalMesh:
		return "ue5_skm"
	default:
		return "mixamo"
	}
}

// Strategy rewrites the graph's clip in place.
type Strategy interface {
	Apply(g *scene.Graph, log *report.Logger) error
}

// Strategy returns the strategy implementing this mode.
func (m Mode) Strategy() Strategy {
	if m == ModeUESkeletalMesh {
		return UESkeletalMesh{}
	}
	return Mixamo{}
}
