package rig

import (
	"errors"
	"math"
	"testing"

	animmath "github.com/Faultbox/midgard-anim/pkg/math"
)

func twoJointRig(t *testing.T) *RigBinding {
	t.Helper()
	r := &RigBinding{}
	if _, err := r.AddJoint("root", RootParent, animmath.TransformIdentity()); err != nil {
		t.Fatalf("AddJoint(root): %v", err)
	}
	if _, err := r.AddJoint("spine", 0, animmath.TransformIdentity()); err != nil {
		t.Fatalf("AddJoint(spine): %v", err)
	}
	return r
}

func TestRigBindingDefaultsToEmpty(t *testing.T) {
	var r RigBinding
	if !r.Empty() {
		t.Error("zero RigBinding should be empty")
	}
	if !r.Normalized(DefaultWeightEpsilon) {
		t.Error("empty binding should count as normalized")
	}
}

func TestFindJointIndex(t *testing.T) {
	r := twoJointRig(t)

	idx, ok := r.FindJointIndex("root")
	if !ok || idx != 0 {
		t.Errorf("FindJointIndex(root) = %d, %v; want 0, true", idx, ok)
	}
	idx, ok = r.FindJointIndex("spine")
	if !ok || idx != 1 {
		t.Errorf("FindJointIndex(spine) = %d, %v; want 1, true", idx, ok)
	}
	if _, ok := r.FindJointIndex("hand"); ok {
		t.Error("FindJointIndex(hand) should miss")
	}
}

func TestAddJointEnforcesParentOrder(t *testing.T) {
	r := twoJointRig(t)

	tests := []struct {
		name    string
		joint   string
		parent  int
		wantErr error
	}{
		{"forward parent", "arm", 5, ErrParentOrder},
		{"negative parent", "arm", -7, ErrParentOrder},
		{"duplicate", "spine", 0, ErrDuplicateJoint},
		{"empty name", "", 0, ErrEmptyJointName},
		{"valid", "arm", 1, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.AddJoint(tt.joint, tt.parent, animmath.TransformIdentity())
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("AddJoint(%q, %d) error = %v, want %v", tt.joint, tt.parent, err, tt.wantErr)
			}
		})
	}
	if err := ValidateHierarchy(r); err != nil {
		t.Errorf("hierarchy built through AddJoint should validate: %v", err)
	}
}

func TestValidateHierarchyReportsForwardParent(t *testing.T) {
	r := &RigBinding{Joints: []Joint{
		{Name: "a", Parent: 1, InverseBindPose: animmath.TransformIdentity()},
		{Name: "b", Parent: RootParent, InverseBindPose: animmath.TransformIdentity()},
	}}
	if err := ValidateHierarchy(r); !errors.Is(err, ErrParentOrder) {
		t.Errorf("ValidateHierarchy error = %v, want ErrParentOrder", err)
	}
}

func TestResizeVertices(t *testing.T) {
	r := twoJointRig(t)
	r.ResizeVertices(2)
	if !r.Vertices[1].AddInfluence(0, 1) {
		t.Fatal("AddInfluence should succeed")
	}

	r.ResizeVertices(1)
	r.ResizeVertices(3)
	if len(r.Vertices) != 3 {
		t.Fatalf("len(Vertices) = %d, want 3", len(r.Vertices))
	}
	for i := 1; i < 3; i++ {
		if r.Vertices[i].Count != 0 {
			t.Errorf("vertex %d should start empty, has %d influences", i, r.Vertices[i].Count)
		}
	}
}

func TestVertexBindingNormalizesWeights(t *testing.T) {
	var v VertexBinding
	for i, w := range []float32{0.25, 0.25, 0.5} {
		if !v.AddInfluence(uint16(i), w*3) {
			t.Fatalf("AddInfluence(%d) rejected", i)
		}
	}

	v.NormalizeWeights()
	if !v.WeightsNormalized(DefaultWeightEpsilon) {
		t.Errorf("weights sum to %v after normalize", v.Weights())
	}
	if math.Abs(float64(v.Influences[2].Weight-0.5)) > 1e-6 {
		t.Errorf("relative weights should be preserved, got %v", v.Influences[2].Weight)
	}
}

func TestAddInfluenceRejectsNonPositive(t *testing.T) {
	var v VertexBinding
	for _, w := range []float32{0, -1, float32(math.NaN())} {
		if v.AddInfluence(0, w) {
			t.Errorf("AddInfluence(weight=%v) should be rejected", w)
		}
	}
	if v.Count != 0 {
		t.Errorf("Count = %d, want 0", v.Count)
	}
}

func TestAddInfluenceDropsSmallestWhenFull(t *testing.T) {
	var v VertexBinding
	for i, w := range []float32{0.1, 0.2, 0.3, 0.4} {
		if !v.AddInfluence(uint16(i), w) {
			t.Fatalf("AddInfluence(%d) rejected", i)
		}
	}

	before := v
	if v.AddInfluence(4, 0.05) {
		t.Error("weight below the minimum should be rejected")
	}
	if v.AddInfluence(4, 0.1) {
		t.Error("weight equal to the minimum should be rejected")
	}
	if v != before {
		t.Errorf("rejected admission mutated binding: %+v", v)
	}

	if !v.AddInfluence(4, 0.6) {
		t.Fatal("weight above the minimum should be admitted")
	}
	if v.Count != MaxInfluences {
		t.Errorf("Count = %d, want %d", v.Count, MaxInfluences)
	}

	minWeight := v.Influences[0].Weight
	replaced := true
	for _, inf := range v.Active() {
		minWeight = min(minWeight, inf.Weight)
		if inf.Joint == 0 {
			replaced = false
		}
	}
	if minWeight <= 0.1 {
		t.Errorf("minimum weight should increase past 0.1, got %v", minWeight)
	}
	if !replaced {
		t.Error("joint 0 held the smallest weight and should have been evicted")
	}
	if v.Influences[0] != (VertexInfluence{Joint: 4, Weight: 0.6}) {
		t.Errorf("new influence should occupy the evicted slot, got %+v", v.Influences[0])
	}
}

func TestOverfullCountStaysInBounds(t *testing.T) {
	v := VertexBinding{
		Influences: [MaxInfluences]VertexInfluence{
			{Joint: 0, Weight: 0.4}, {Joint: 1, Weight: 0.1}, {Joint: 2, Weight: 0.2}, {Joint: 3, Weight: 0.3},
		},
		Count: MaxInfluences + 3,
	}

	if !v.AddInfluence(9, 0.5) {
		t.Fatal("weight above the minimum should be admitted")
	}
	if v.Influences[1] != (VertexInfluence{Joint: 9, Weight: 0.5}) {
		t.Errorf("smallest slot should be replaced, got %+v", v.Influences[1])
	}

	v.NormalizeWeights()
	if sum := v.Weights(); math.Abs(float64(sum)-1) > 1e-6 {
		t.Errorf("weights sum to %v after normalize, want 1", sum)
	}
}

func TestNormalizeWeightsClearsZeroSum(t *testing.T) {
	v := VertexBinding{Count: 2}
	v.Influences[0] = VertexInfluence{Joint: 0, Weight: 0}
	v.Influences[1] = VertexInfluence{Joint: 1, Weight: 0}

	v.NormalizeWeights()
	if v.Count != 0 {
		t.Errorf("Count = %d, want 0 after normalizing a zero-sum binding", v.Count)
	}
	if !v.WeightsNormalized(DefaultWeightEpsilon) {
		t.Error("cleared binding should count as normalized")
	}
}

func TestSetVertexInfluences(t *testing.T) {
	r := twoJointRig(t)
	r.ResizeVertices(2)

	err := r.SetVertexInfluences(1, []VertexInfluence{{Joint: 0, Weight: 0.2}, {Joint: 1, Weight: 0.8}})
	if err != nil {
		t.Fatalf("SetVertexInfluences: %v", err)
	}
	if !r.Normalized(DefaultWeightEpsilon) {
		t.Error("binding should be normalized")
	}
	if r.Vertices[1].Count != 2 {
		t.Fatalf("Count = %d, want 2", r.Vertices[1].Count)
	}
	sum := r.Vertices[1].Influences[0].Weight + r.Vertices[1].Influences[1].Weight
	if math.Abs(float64(sum-1)) > 1e-5 {
		t.Errorf("weights sum to %v, want 1", sum)
	}
}

func TestSetVertexInfluencesIsAtomic(t *testing.T) {
	r := twoJointRig(t)
	r.ResizeVertices(1)
	if err := r.SetVertexInfluences(0, []VertexInfluence{{Joint: 1, Weight: 1}}); err != nil {
		t.Fatalf("SetVertexInfluences: %v", err)
	}
	prior := r.Vertices[0]

	tests := []struct {
		name       string
		vertex     int
		influences []VertexInfluence
		wantErr    error
	}{
		{"bad joint", 0, []VertexInfluence{{Joint: 0, Weight: 0.5}, {Joint: 2, Weight: 0.5}}, ErrJointOutOfRange},
		{"too many", 0, []VertexInfluence{{0, 1}, {1, 1}, {0, 1}, {1, 1}, {0, 1}}, ErrTooManyInfluences},
		{"zero weight", 0, []VertexInfluence{{Joint: 0, Weight: 0.5}, {Joint: 1, Weight: 0}}, ErrInfluenceRejected},
		{"bad vertex", 3, []VertexInfluence{{Joint: 0, Weight: 1}}, ErrVertexOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.SetVertexInfluences(tt.vertex, tt.influences)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if r.Vertices[0] != prior {
				t.Errorf("failed call modified vertex: %+v", r.Vertices[0])
			}
		})
	}
}

func TestValidateBinding(t *testing.T) {
	valid := func() *RigBinding {
		r := twoJointRig(t)
		r.ResizeVertices(2)
		if err := r.SetVertexInfluences(0, []VertexInfluence{{Joint: 0, Weight: 1}}); err != nil {
			t.Fatal(err)
		}
		return r
	}

	if !ValidateBinding(valid()) {
		t.Error("valid binding rejected")
	}
	if ValidateBinding(&RigBinding{}) {
		t.Error("binding without joints should be invalid")
	}
	if ValidateBinding(nil) {
		t.Error("nil binding should be invalid")
	}

	outOfRange := valid()
	outOfRange.Vertices[1] = VertexBinding{Count: 1}
	outOfRange.Vertices[1].Influences[0] = VertexInfluence{Joint: 9, Weight: 1}
	if ValidateBinding(outOfRange) {
		t.Error("out-of-range influence should be invalid")
	}

	unnormalized := valid()
	unnormalized.Vertices[1] = VertexBinding{Count: 2}
	unnormalized.Vertices[1].Influences[0] = VertexInfluence{Joint: 0, Weight: 0.7}
	unnormalized.Vertices[1].Influences[1] = VertexInfluence{Joint: 1, Weight: 0.7}
	if ValidateBinding(unnormalized) {
		t.Error("non-normalized vertex should be invalid")
	}
}

func TestValidateBindingEpsilon(t *testing.T) {
	r := twoJointRig(t)
	r.ResizeVertices(1)
	r.Vertices[0] = VertexBinding{Count: 2}
	r.Vertices[0].Influences[0] = VertexInfluence{Joint: 0, Weight: 0.5}
	r.Vertices[0].Influences[1] = VertexInfluence{Joint: 1, Weight: 0.505}

	if ValidateBindingEpsilon(r, DefaultWeightEpsilon) {
		t.Error("sum 1.005 accepted at the default tolerance")
	}
	if !ValidateBindingEpsilon(r, 0.01) {
		t.Error("sum 1.005 rejected at tolerance 0.01")
	}
}
