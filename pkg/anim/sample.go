package anim

import (
	gomath "math"
	"sort"

	"github.com/Faultbox/midgard-anim/pkg/math"
)

// SampleTrack evaluates the track at time t. Times outside the keyed range
// clamp to the first or last key; there is no extrapolation. Keys must be
// sorted. A track without keys yields the identity pose and a NaN time
// yields the first key.
func SampleTrack(track *JointTrack, t float64) JointPose {
	keys := track.Keyframes
	switch {
	case len(keys) == 0:
		return IdentityPose()
	case len(keys) == 1, gomath.IsNaN(t), t <= keys[0].Time:
		return keys[0].Pose
	case t >= keys[len(keys)-1].Time:
		return keys[len(keys)-1].Pose
	}

	// First key strictly after t; its predecessor is the last key at or before t.
	next := sort.Search(len(keys), func(i int) bool { return keys[i].Time > t })
	if next >= len(keys) {
		return keys[len(keys)-1].Pose
	}
	prev := next - 1

	k0, k1 := keys[prev], keys[next]
	span := k1.Time - k0.Time
	if span < TimeEpsilon {
		return k0.Pose
	}
	alpha := float32(math.Clamp((t-k0.Time)/span, 0, 1))
	return k0.Pose.Lerp(k1.Pose, alpha)
}

// SampleClip samples the named joint's track. The second result is false
// when the clip does not animate that joint.
func SampleClip(clip *Clip, joint string, t float64) (JointPose, bool) {
	track := clip.FindTrack(joint)
	if track == nil {
		return IdentityPose(), false
	}
	return SampleTrack(track, t), true
}

// SampleAll samples every track of the clip into a fresh pose.
func SampleAll(clip *Clip, t float64) Pose {
	pose := Pose{Joints: make([]PoseEntry, 0, len(clip.Tracks))}
	for i := range clip.Tracks {
		track := &clip.Tracks[i]
		pose.Set(track.JointName, SampleTrack(track, t))
	}
	return pose
}
