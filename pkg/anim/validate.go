package anim

import (
	"fmt"
	gomath "math"
)

// ValidationError describes one authoring problem found in a clip. Track and
// Keyframe are -1 when the problem is not tied to a specific entry.
type ValidationError struct {
	Message   string
	JointName string
	Track     int
	Keyframe  int
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	msg := e.Message
	if e.JointName != "" {
		msg += fmt.Sprintf(" (joint: %s)", e.JointName)
	}
	if e.Keyframe >= 0 {
		msg += fmt.Sprintf(" [keyframe %d]", e.Keyframe)
	}
	return msg
}

// minRotationLengthSq is float32 machine epsilon.
const minRotationLengthSq = 1.1920929e-07

// Validation messages reported by ValidateClip.
const (
	MsgEmptyClipName       = "animation clip must have a non-empty name"
	MsgBadDuration         = "animation clip duration must be non-negative and finite"
	MsgNoTracks            = "animation clip must contain at least one joint track"
	MsgEmptyJointName      = "joint track must provide a joint name"
	MsgDuplicateTrack      = "duplicate joint track"
	MsgNoKeyframes         = "joint track must contain at least one keyframe"
	MsgBadKeyTime          = "keyframe time must be finite and non-negative"
	MsgNonIncreasingTime   = "keyframe times must be strictly increasing"
	MsgNonFiniteTranslate  = "keyframe translation contains non-finite values"
	MsgNonFiniteScale      = "keyframe scale contains non-finite values"
	MsgNonFiniteRotation   = "keyframe rotation contains non-finite values"
	MsgZeroRotation        = "keyframe rotation must be non-zero"
	MsgDurationBeforeFinal = "clip duration is shorter than the final keyframe"
)

// ValidateClip returns every problem found in the clip. An empty result
// means the clip is well formed; callers decide what to do with the rest.
func ValidateClip(clip *Clip) []ValidationError {
	var errs []ValidationError
	clipErr := func(msg string) {
		errs = append(errs, ValidationError{Message: msg, Track: -1, Keyframe: -1})
	}

	if clip.Name == "" {
		clipErr(MsgEmptyClipName)
	}
	if gomath.IsNaN(clip.Duration) || gomath.IsInf(clip.Duration, 0) || clip.Duration < 0 {
		clipErr(MsgBadDuration)
	}
	if len(clip.Tracks) == 0 {
		clipErr(MsgNoTracks)
	}

	seen := make(map[string]struct{}, len(clip.Tracks))
	var lastKey float64
	for ti := range clip.Tracks {
		track := &clip.Tracks[ti]
		trackErr := func(msg string, key int) {
			errs = append(errs, ValidationError{Message: msg, JointName: track.JointName, Track: ti, Keyframe: key})
		}

		if track.JointName == "" {
			trackErr(MsgEmptyJointName, -1)
		} else if _, dup := seen[track.JointName]; dup {
			trackErr(MsgDuplicateTrack, -1)
		} else {
			seen[track.JointName] = struct{}{}
		}

		if len(track.Keyframes) == 0 {
			trackErr(MsgNoKeyframes, -1)
			continue
		}

		prev := gomath.Inf(-1)
		for ki, key := range track.Keyframes {
			if gomath.IsNaN(key.Time) || gomath.IsInf(key.Time, 0) || key.Time < 0 {
				trackErr(MsgBadKeyTime, ki)
			}
			if ki > 0 && key.Time <= prev+TimeEpsilon {
				trackErr(MsgNonIncreasingTime, ki)
			}
			prev = key.Time
			lastKey = max(lastKey, key.Time)

			if !key.Pose.Translation.IsFinite() {
				trackErr(MsgNonFiniteTranslate, ki)
			}
			if !key.Pose.Scale.IsFinite() {
				trackErr(MsgNonFiniteScale, ki)
			}
			if !key.Pose.Rotation.IsFinite() {
				trackErr(MsgNonFiniteRotation, ki)
			} else if key.Pose.Rotation.LengthSquared() <= minRotationLengthSq {
				trackErr(MsgZeroRotation, ki)
			}
		}
	}

	if clip.Duration > 0 && clip.Duration+TimeEpsilon < lastKey {
		clipErr(MsgDurationBeforeFinal)
	}
	return errs
}
