package retarget

import "fmt"

// MissingBoneError reports a bone the active strategy requires but could not
// find. Fatal for the current file only.
type MissingBoneError struct {
	Bone string
}

func (e *MissingBoneError) Error() string {
	return fmt.Sprintf("retarget: required bone %q not found", e.Bone)
}

// MissingAnimationError reports an armature without an active animation clip
// in a mode that needs one. Fatal for the current file only.
type MissingAnimationError struct {
	Object string
}

func (e *MissingAnimationError) Error() string {
	if e.Object == "" {
		return "retarget: no armature with an animation clip"
	}
	return fmt.Sprintf("retarget: armature %q has no animation clip", e.Object)
}
