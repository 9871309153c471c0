// Package animator runs the per-frame skinning pipeline for one mesh:
// advance the pose source, evaluate a pose, build joint transforms and
// deform the mesh.
package animator

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-anim/internal/config"
	"github.com/Faultbox/midgard-anim/internal/logger"
	"github.com/Faultbox/midgard-anim/pkg/anim"
	"github.com/Faultbox/midgard-anim/pkg/deform"
	"github.com/Faultbox/midgard-anim/pkg/math"
	"github.com/Faultbox/midgard-anim/pkg/rig"
	"github.com/Faultbox/midgard-anim/pkg/skinning"
)

// ErrInvalidBinding is returned by New for a binding that cannot drive
// skinning.
var ErrInvalidBinding = errors.New("invalid rig binding")

// PoseSource produces a pose each frame. *anim.Controller and
// *blendtree.Tree implement it.
type PoseSource interface {
	Advance(dt float64)
	Evaluate() anim.Pose
}

// Options tunes an Animator.
type Options struct {
	// RootTranslation is added to every root joint.
	RootTranslation math.Vec3
	// WeightEpsilon is the tolerance for normalized vertex weights.
	WeightEpsilon float32
}

// DefaultOptions returns options with no root offset and the default weight
// tolerance.
func DefaultOptions() Options {
	return Options{WeightEpsilon: rig.DefaultWeightEpsilon}
}

// OptionsFromConfig maps the relevant config fields.
func OptionsFromConfig(cfg *config.Config) Options {
	rt := cfg.Animation.RootTranslation
	return Options{
		RootTranslation: math.Vec3{X: rt[0], Y: rt[1], Z: rt[2]},
		WeightEpsilon:   cfg.Skinning.WeightEpsilon,
	}
}

// ControllerFromConfig creates a controller for clip using the configured
// loop mode and playback speed.
func ControllerFromConfig(clip *anim.Clip, cfg *config.Config) (*anim.Controller, error) {
	mode, err := cfg.LoopMode()
	if err != nil {
		return nil, err
	}
	c := anim.NewController(clip)
	c.Mode = mode
	c.Speed = cfg.Animation.PlaybackSpeed
	return c, nil
}

// Animator owns the transform buffers for one skinned mesh. It is not safe
// for concurrent use.
type Animator struct {
	binding *rig.RigBinding
	source  PoseSource
	mesh    deform.Mesh
	opts    Options
	log     *zap.Logger

	pose     anim.Pose
	globals  []math.Transform
	skinning []math.Transform
	frames   uint64
}

// New validates binding and allocates buffers sized to its joint count.
func New(binding *rig.RigBinding, source PoseSource, mesh deform.Mesh, opts Options) (*Animator, error) {
	if binding == nil || source == nil || mesh == nil {
		return nil, fmt.Errorf("%w: binding, pose source and mesh are required", ErrInvalidBinding)
	}
	if err := rig.ValidateHierarchy(binding); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBinding, err)
	}
	if opts.WeightEpsilon <= 0 {
		opts.WeightEpsilon = rig.DefaultWeightEpsilon
	}
	if !rig.ValidateBindingEpsilon(binding, opts.WeightEpsilon) {
		return nil, fmt.Errorf("%w: joints missing, influence out of range or weights not normalized", ErrInvalidBinding)
	}

	log := logger.Named("animator")
	if rest := len(mesh.Rest()); rest != len(binding.Vertices) {
		log.Warn("mesh and binding vertex counts differ; unbound vertices stay at rest",
			zap.Int("mesh", rest), zap.Int("binding", len(binding.Vertices)))
	}

	n := len(binding.Joints)
	return &Animator{
		binding:  binding,
		source:   source,
		mesh:     mesh,
		opts:     opts,
		log:      log,
		globals:  make([]math.Transform, n),
		skinning: make([]math.Transform, n),
	}, nil
}

// Tick advances the pose source by dt seconds and deforms the mesh.
func (a *Animator) Tick(dt float64) error {
	a.source.Advance(dt)
	a.pose = a.source.Evaluate()

	if err := skinning.BuildGlobalJointTransforms(a.binding, &a.pose, a.globals, a.opts.RootTranslation); err != nil {
		return err
	}
	if err := skinning.BuildSkinningTransforms(a.binding, a.globals, a.skinning); err != nil {
		return err
	}
	if err := deform.ApplyLinearBlendSkinning(a.binding, a.skinning, a.mesh); err != nil {
		return err
	}

	a.frames++
	if ce := a.log.Check(zap.DebugLevel, "frame"); ce != nil {
		ce.Write(zap.Uint64("frame", a.frames), zap.Float64("dt", dt), zap.Int("joints", a.pose.Len()))
	}
	return nil
}

// Pose returns the pose evaluated by the last Tick.
func (a *Animator) Pose() anim.Pose {
	return a.pose
}

// Globals returns the global joint transforms from the last Tick. The slice
// is reused by the next Tick.
func (a *Animator) Globals() []math.Transform {
	return a.globals
}

// Skinning returns the skinning transforms from the last Tick. The slice is
// reused by the next Tick.
func (a *Animator) Skinning() []math.Transform {
	return a.skinning
}

// Frames returns the number of completed ticks.
func (a *Animator) Frames() uint64 {
	return a.frames
}

// SetRootTranslation moves every root joint from the next Tick on.
func (a *Animator) SetRootTranslation(v math.Vec3) {
	a.opts.RootTranslation = v
}
