// Package skinning turns a sampled pose into per-joint global and skinning
// transforms for a rig.
package skinning

import (
	"errors"
	"fmt"

	"github.com/Faultbox/midgard-anim/pkg/anim"
	"github.com/Faultbox/midgard-anim/pkg/math"
	"github.com/Faultbox/midgard-anim/pkg/rig"
)

// ErrBufferTooSmall is returned when an output or input slice holds fewer
// transforms than the rig has joints. Nothing is written in that case.
var ErrBufferTooSmall = errors.New("transform buffer smaller than joint count")

func checkLen(name string, have, need int) error {
	if have < need {
		return fmt.Errorf("%w: %s has %d, need %d", ErrBufferTooSmall, name, have, need)
	}
	return nil
}

// BuildGlobalJointTransforms fills outGlobal with each joint's model-space
// transform for the given pose. Joints missing from the pose use the
// identity local pose; a nil pose leaves every joint at identity.
//
// Roots get rootTranslation added to their local translation. Other joints
// are their parent's global transform composed with their local one. A
// joint whose parent index does not precede it is treated as unparented and
// does not receive the root translation.
func BuildGlobalJointTransforms(binding *rig.RigBinding, pose *anim.Pose, outGlobal []math.Transform, rootTranslation math.Vec3) error {
	joints := binding.Joints
	if err := checkLen("global transforms", len(outGlobal), len(joints)); err != nil {
		return err
	}

	for i, joint := range joints {
		local := anim.IdentityPose()
		if pose != nil {
			if p := pose.Find(joint.Name); p != nil {
				local = *p
			}
		}
		transform := local.Transform()

		switch {
		case joint.IsRoot():
			transform.Translation = transform.Translation.Add(rootTranslation)
			outGlobal[i] = transform
		case joint.Parent >= 0 && joint.Parent < i:
			outGlobal[i] = math.Combine(outGlobal[joint.Parent], transform)
		default:
			outGlobal[i] = transform
		}
	}
	return nil
}

// BuildSkinningTransforms composes each global transform with its joint's
// inverse bind pose, giving the transform that carries a bind-pose vertex
// to its posed position.
func BuildSkinningTransforms(binding *rig.RigBinding, globals []math.Transform, outSkinning []math.Transform) error {
	n := len(binding.Joints)
	if err := checkLen("skinning transforms", len(outSkinning), n); err != nil {
		return err
	}
	if err := checkLen("global transforms", len(globals), n); err != nil {
		return err
	}

	for i := range binding.Joints {
		outSkinning[i] = math.Combine(globals[i], binding.Joints[i].InverseBindPose)
	}
	return nil
}
