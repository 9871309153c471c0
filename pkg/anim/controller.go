package anim

import (
	"fmt"
	gomath "math"
	"strings"
)

// LoopMode decides what happens when playback reaches the end of a clip.
type LoopMode int

const (
	// LoopWrap wraps the cursor back to the start (modulo duration). The
	// cursor always stays in [0, duration).
	LoopWrap LoopMode = iota
	// LoopClamp holds the cursor at the clip's first or last frame.
	LoopClamp
)

// String returns the mode name used in configuration files.
func (m LoopMode) String() string {
	switch m {
	case LoopWrap:
		return "wrap"
	case LoopClamp:
		return "clamp"
	default:
		return fmt.Sprintf("LoopMode(%d)", int(m))
	}
}

// ParseLoopMode parses "wrap" (or "loop") and "clamp".
func ParseLoopMode(s string) (LoopMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "wrap", "loop", "":
		return LoopWrap, nil
	case "clamp", "once":
		return LoopClamp, nil
	default:
		return LoopWrap, fmt.Errorf("unknown loop mode %q", s)
	}
}

// Controller plays back a single clip.
type Controller struct {
	Clip *Clip
	// Time is the playback cursor in seconds.
	Time float64
	// Speed scales the time step given to Advance.
	Speed float64
	Mode  LoopMode
}

// NewController sorts the clip's keyframes, stretches its duration to cover
// the last key, and returns a wrapping controller at time zero.
func NewController(clip *Clip) *Controller {
	if clip == nil {
		return &Controller{Speed: 1, Mode: LoopWrap}
	}
	for i := range clip.Tracks {
		SortKeyframes(&clip.Tracks[i])
	}
	clip.Duration = max(clip.Duration, clip.LastKeyTime())
	return &Controller{Clip: clip, Speed: 1, Mode: LoopWrap}
}

// Reset moves the cursor back to the start.
func (c *Controller) Reset() {
	c.Time = 0
}

// Advance moves the cursor by dt*Speed and applies the loop mode. Clips
// shorter than TimeEpsilon pin the cursor at zero. Non-finite steps are
// ignored and a non-finite cursor restarts at zero.
func (c *Controller) Advance(dt float64) {
	if c.Clip == nil || c.Clip.Duration <= TimeEpsilon {
		c.Time = 0
		return
	}
	if gomath.IsNaN(c.Time) || gomath.IsInf(c.Time, 0) {
		c.Time = 0
	}
	step := dt * c.Speed
	if gomath.IsNaN(step) || gomath.IsInf(step, 0) {
		return
	}

	d := c.Clip.Duration
	t := c.Time + step
	switch c.Mode {
	case LoopClamp:
		t = min(max(t, 0), d)
	default:
		t = gomath.Mod(t, d)
		if t < 0 {
			t += d
		}
		// Mod of a value just below a multiple of d can round up to d.
		if t >= d {
			t = 0
		}
	}
	c.Time = t
}

// Evaluate samples every track at the cursor. Joints the clip does not
// animate are absent from the result.
func (c *Controller) Evaluate() Pose {
	if c.Clip == nil {
		return Pose{}
	}
	return SampleAll(c.Clip, c.Time)
}
