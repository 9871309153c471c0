package blendtree

import (
	"github.com/Faultbox/midgard-anim/pkg/anim"
	"github.com/Faultbox/midgard-anim/pkg/math"
)

type visitState uint8

const (
	unvisited visitState = iota
	visiting
	done
)

// Valid reports whether the tree can be evaluated: the root is set, and
// every node reachable from it refers to existing nodes, has a clip to play,
// takes part in no cycle and binds weights only to float parameters.
func (t *Tree) Valid() bool {
	if t.node(t.Root) == nil {
		return false
	}
	state := make([]visitState, len(t.Nodes))
	return t.validNode(t.Root, state)
}

func (t *Tree) validNode(ref NodeRef, state []visitState) bool {
	n := t.node(ref)
	if n == nil {
		return false
	}
	switch state[ref] {
	case visiting:
		return false
	case done:
		return true
	}
	state[ref] = visiting

	ok := false
	switch n := n.(type) {
	case *ClipNode:
		ok = n.Controller != nil && n.Controller.Clip != nil
	case *LinearBlendNode:
		ok = t.validWeight(n.Weight) && t.validNode(n.A, state) && t.validNode(n.B, state)
	case *AdditiveBlendNode:
		ok = t.validWeight(n.Weight) && t.validNode(n.Base, state) && t.validNode(n.Additive, state)
	}

	state[ref] = done
	return ok
}

func (t *Tree) validWeight(w WeightSource) bool {
	return !w.Bound() || t.param(w.Param, ParamFloat) != nil
}

// Evaluate returns the root's pose. An invalid tree yields an empty pose;
// use Valid to tell that apart from an empty animation.
func (t *Tree) Evaluate() anim.Pose {
	if !t.Valid() {
		return anim.Pose{}
	}
	return t.evaluate(t.Root)
}

func (t *Tree) evaluate(ref NodeRef) anim.Pose {
	switch n := t.Nodes[ref].(type) {
	case *ClipNode:
		return n.Controller.Evaluate()
	case *LinearBlendNode:
		return blendLinear(t.evaluate(n.A), t.evaluate(n.B), t.weight(n.Weight))
	case *AdditiveBlendNode:
		return blendAdditive(t.evaluate(n.Base), t.evaluate(n.Additive), t.weight(n.Weight))
	default:
		return anim.Pose{}
	}
}

// weight resolves a weight source and clamps it to [0, 1]. NaN becomes 0.
func (t *Tree) weight(w WeightSource) float32 {
	v := w.Literal
	if w.Bound() {
		v = t.Params[w.Param].Float
	}
	if v != v {
		return 0
	}
	return math.Clamp(v, 0, 1)
}

// blendLinear interpolates joints found in both poses. Joints present in
// only one pose are copied unchanged.
func blendLinear(a, b anim.Pose, w float32) anim.Pose {
	return merge(a, b, func(pa, pb anim.JointPose) anim.JointPose {
		return pa.Lerp(pb, w)
	})
}

// blendAdditive applies the additive pose as a delta on top of base.
func blendAdditive(base, additive anim.Pose, w float32) anim.Pose {
	identity := math.QuatIdentity()
	return merge(base, additive, func(pb, pa anim.JointPose) anim.JointPose {
		return anim.JointPose{
			Translation: pb.Translation.Add(pa.Translation.Scale(w)),
			Rotation:    pb.Rotation.Mul(identity.Slerp(pa.Rotation, w)).Normalize(),
			Scale:       pb.Scale.Mul(math.Vec3One().Lerp(pa.Scale, w)),
		}
	})
}

func merge(first, second anim.Pose, combine func(a, b anim.JointPose) anim.JointPose) anim.Pose {
	out := anim.Pose{Joints: make([]anim.PoseEntry, 0, max(first.Len(), second.Len()))}
	for _, e := range first.Joints {
		if other := second.Find(e.Name); other != nil {
			out.Set(e.Name, combine(e.Pose, *other))
		} else {
			out.Set(e.Name, e.Pose)
		}
	}
	for _, e := range second.Joints {
		if first.Find(e.Name) == nil {
			out.Set(e.Name, e.Pose)
		}
	}
	return out
}
