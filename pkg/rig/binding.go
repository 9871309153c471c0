// Package rig holds skeleton topology and per-vertex joint weights.
//
// Joints live in a flat slice and reference their parent by index. A parent
// always precedes its children, so a single forward pass over the slice
// visits every ancestor before its descendants.
package rig

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"

	"github.com/Faultbox/midgard-anim/pkg/math"
)

// MaxInfluences is the number of joints that may affect one vertex.
const MaxInfluences = 4

// RootParent marks a joint without a parent.
const RootParent = -1

// DefaultWeightEpsilon is the tolerance used when checking that weights sum to one.
const DefaultWeightEpsilon float32 = 1e-4

// Rig binding errors.
var (
	ErrVertexOutOfRange  = errors.New("vertex index out of range")
	ErrTooManyInfluences = errors.New("too many influences for one vertex")
	ErrJointOutOfRange   = errors.New("joint index out of range")
	ErrInfluenceRejected = errors.New("influence rejected")
	ErrParentOrder       = errors.New("joint parent must precede the joint")
	ErrDuplicateJoint    = errors.New("duplicate joint name")
	ErrEmptyJointName    = errors.New("joint name must not be empty")
)

// Joint is one node of the skeleton.
type Joint struct {
	Name string
	// Parent is the index of the parent joint, or RootParent.
	Parent int
	// InverseBindPose maps bind-pose model space into the joint's local space.
	InverseBindPose math.Transform
}

// IsRoot reports whether the joint has no parent.
func (j Joint) IsRoot() bool {
	return j.Parent == RootParent
}

// VertexInfluence is a weighted reference to a joint.
type VertexInfluence struct {
	Joint  uint16
	Weight float32
}

// VertexBinding stores up to MaxInfluences influences for one vertex.
// Only the first Count entries are meaningful.
type VertexBinding struct {
	Influences [MaxInfluences]VertexInfluence
	Count      uint8
}

// Clear removes all influences.
func (b *VertexBinding) Clear() {
	*b = VertexBinding{}
}

// Active returns the stored influences. A corrupt Count is capped at
// MaxInfluences.
func (b *VertexBinding) Active() []VertexInfluence {
	return b.Influences[:min(int(b.Count), MaxInfluences)]
}

// AddInfluence admits an influence under the top-K-by-weight policy.
// Weights <= 0 are rejected. When the binding is full the smallest stored
// weight is evicted, but only if the new weight is strictly greater; on a
// tie the existing influence stays and false is returned.
func (b *VertexBinding) AddInfluence(joint uint16, weight float32) bool {
	if !(weight > 0) {
		return false
	}

	if b.Count < MaxInfluences {
		b.Influences[b.Count] = VertexInfluence{Joint: joint, Weight: weight}
		b.Count++
		return true
	}

	active := b.Active()
	smallest := 0
	for i := range active {
		if active[i].Weight < active[smallest].Weight {
			smallest = i
		}
	}
	if weight <= b.Influences[smallest].Weight {
		return false
	}
	b.Influences[smallest] = VertexInfluence{Joint: joint, Weight: weight}
	return true
}

// Weights returns the sum of the stored weights.
func (b *VertexBinding) Weights() float32 {
	var sum float32
	for _, inf := range b.Active() {
		sum += inf.Weight
	}
	return sum
}

// NormalizeWeights rescales the weights to sum to one. A binding whose
// weights sum to zero or less is cleared.
func (b *VertexBinding) NormalizeWeights() {
	if b.Count == 0 {
		return
	}

	sum := b.Weights()
	if sum <= 0 {
		b.Clear()
		return
	}

	inv := 1 / sum
	active := b.Active()
	for i := range active {
		active[i].Weight *= inv
	}
}

// WeightsNormalized reports whether the binding is empty or its weights sum
// to one within epsilon.
func (b *VertexBinding) WeightsNormalized(epsilon float32) bool {
	if b.Count == 0 {
		return true
	}
	return math32.Abs(b.Weights()-1) <= epsilon
}

// RigBinding is a skeleton plus the per-vertex influences of one mesh.
// Vertices are index-aligned with the mesh's rest positions.
type RigBinding struct {
	Joints   []Joint
	Vertices []VertexBinding
}

// Empty reports whether the binding has neither joints nor vertices.
func (r *RigBinding) Empty() bool {
	return len(r.Joints) == 0 && len(r.Vertices) == 0
}

// AddJoint appends a joint and returns its index. The parent must be
// RootParent or the index of an existing joint, which keeps ancestors ahead
// of descendants and makes cycles impossible.
func (r *RigBinding) AddJoint(name string, parent int, inverseBind math.Transform) (int, error) {
	if name == "" {
		return -1, ErrEmptyJointName
	}
	if _, ok := r.FindJointIndex(name); ok {
		return -1, fmt.Errorf("%w: %q", ErrDuplicateJoint, name)
	}
	if parent != RootParent && (parent < 0 || parent >= len(r.Joints)) {
		return -1, fmt.Errorf("%w: joint %q has parent %d with %d joints defined",
			ErrParentOrder, name, parent, len(r.Joints))
	}
	r.Joints = append(r.Joints, Joint{Name: name, Parent: parent, InverseBindPose: inverseBind})
	return len(r.Joints) - 1, nil
}

// FindJointIndex returns the index of the named joint.
func (r *RigBinding) FindJointIndex(name string) (int, bool) {
	for i := range r.Joints {
		if r.Joints[i].Name == name {
			return i, true
		}
	}
	return -1, false
}

// ResizeVertices sets the number of vertex bindings. New entries are empty.
func (r *RigBinding) ResizeVertices(n int) {
	if n < 0 {
		n = 0
	}
	if n <= len(r.Vertices) {
		r.Vertices = r.Vertices[:n]
		return
	}
	r.Vertices = append(r.Vertices, make([]VertexBinding, n-len(r.Vertices))...)
}

// SetVertexInfluences replaces the influences of one vertex. The new
// binding is built and normalized on the side and only committed when every
// entry was accepted, so a failed call leaves the vertex untouched.
func (r *RigBinding) SetVertexInfluences(vertex int, influences []VertexInfluence) error {
	if vertex < 0 || vertex >= len(r.Vertices) {
		return fmt.Errorf("%w: %d (have %d)", ErrVertexOutOfRange, vertex, len(r.Vertices))
	}
	if len(influences) > MaxInfluences {
		return fmt.Errorf("%w: %d > %d", ErrTooManyInfluences, len(influences), MaxInfluences)
	}

	var binding VertexBinding
	for _, inf := range influences {
		if int(inf.Joint) >= len(r.Joints) {
			return fmt.Errorf("%w: %d (have %d)", ErrJointOutOfRange, inf.Joint, len(r.Joints))
		}
		if !binding.AddInfluence(inf.Joint, inf.Weight) {
			return fmt.Errorf("%w: joint %d weight %v", ErrInfluenceRejected, inf.Joint, inf.Weight)
		}
	}
	binding.NormalizeWeights()
	r.Vertices[vertex] = binding
	return nil
}

// Normalized reports whether every vertex binding is normalized.
func (r *RigBinding) Normalized(epsilon float32) bool {
	for i := range r.Vertices {
		if !r.Vertices[i].WeightsNormalized(epsilon) {
			return false
		}
	}
	return true
}
