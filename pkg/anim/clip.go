// Package anim provides keyframed joint animation: clips, track sampling,
// poses and a simple playback controller.
package anim

import (
	"sort"

	"github.com/Faultbox/midgard-anim/pkg/math"
)

// TimeEpsilon is the smallest meaningful distance between two key times.
const TimeEpsilon = 1e-6

// JointPose is a joint's transform relative to its parent.
type JointPose struct {
	Translation math.Vec3
	Rotation    math.Quat
	Scale       math.Vec3
}

// IdentityPose returns the rest pose: no translation, no rotation, unit scale.
func IdentityPose() JointPose {
	return JointPose{
		Translation: math.Vec3Zero(),
		Rotation:    math.QuatIdentity(),
		Scale:       math.Vec3One(),
	}
}

// Transform returns the pose as a math.Transform.
func (p JointPose) Transform() math.Transform {
	return math.Transform{Translation: p.Translation, Rotation: p.Rotation, Scale: p.Scale}
}

// Lerp blends two poses: translation and scale linearly, rotation along the
// shorter arc.
func (p JointPose) Lerp(other JointPose, t float32) JointPose {
	return JointPose{
		Translation: p.Translation.Lerp(other.Translation, t),
		Rotation:    p.Rotation.Slerp(other.Rotation, t),
		Scale:       p.Scale.Lerp(other.Scale, t),
	}
}

// Keyframe is a pose at a point in time (seconds).
type Keyframe struct {
	Time float64
	Pose JointPose
}

// JointTrack is the keyframe sequence animating one joint.
type JointTrack struct {
	JointName string
	Keyframes []Keyframe
}

// Clip is a named set of joint tracks.
type Clip struct {
	Name     string
	Duration float64
	Tracks   []JointTrack
}

// SortKeyframes orders the track's keyframes by time. Keys sharing a time
// keep their relative order.
func SortKeyframes(track *JointTrack) {
	sort.SliceStable(track.Keyframes, func(i, j int) bool {
		return track.Keyframes[i].Time < track.Keyframes[j].Time
	})
}

// FindTrack returns the track animating the named joint.
func (c *Clip) FindTrack(joint string) *JointTrack {
	for i := range c.Tracks {
		if c.Tracks[i].JointName == joint {
			return &c.Tracks[i]
		}
	}
	return nil
}

// Clone returns a deep copy of the clip.
func (c *Clip) Clone() *Clip {
	out := &Clip{Name: c.Name, Duration: c.Duration, Tracks: make([]JointTrack, len(c.Tracks))}
	for i, track := range c.Tracks {
		out.Tracks[i] = JointTrack{
			JointName: track.JointName,
			Keyframes: append([]Keyframe(nil), track.Keyframes...),
		}
	}
	return out
}

// LastKeyTime returns the latest key time across all tracks.
func (c *Clip) LastKeyTime() float64 {
	var last float64
	for i := range c.Tracks {
		keys := c.Tracks[i].Keyframes
		if len(keys) > 0 {
			last = max(last, keys[len(keys)-1].Time)
		}
	}
	return last
}

// DefaultClip returns a one second clip that bobs the "root" joint up and
// down by half a unit.
func DefaultClip() *Clip {
	at := func(y float32) JointPose {
		p := IdentityPose()
		p.Translation.Y = y
		return p
	}
	return &Clip{
		Name:     "runtime.rig.oscillator",
		Duration: 1,
		Tracks: []JointTrack{{
			JointName: "root",
			Keyframes: []Keyframe{
				{Time: 0, Pose: at(0)},
				{Time: 0.5, Pose: at(0.5)},
				{Time: 1, Pose: at(0)},
			},
		}},
	}
}
