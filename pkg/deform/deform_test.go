package deform

import (
	"errors"
	gomath "math"
	"testing"

	"github.com/Faultbox/midgard-anim/pkg/anim"
	"github.com/Faultbox/midgard-anim/pkg/math"
	"github.com/Faultbox/midgard-anim/pkg/mesh"
	"github.com/Faultbox/midgard-anim/pkg/rig"
	"github.com/Faultbox/midgard-anim/pkg/skinning"
)

func vecNear(a, b math.Vec3, tol float32) bool {
	return a.Distance(b) <= tol
}

// skinnedChain returns a two-joint rig binding a three-vertex strip, and the
// skinning transforms for the child bent 90 degrees about Z.
func skinnedChain(t *testing.T) (*rig.RigBinding, []math.Transform) {
	t.Helper()
	var binding rig.RigBinding
	if _, err := binding.AddJoint("root", rig.RootParent, math.TransformIdentity()); err != nil {
		t.Fatal(err)
	}
	inv := math.TransformIdentity()
	inv.Translation = math.Vec3{Y: -2}
	if _, err := binding.AddJoint("child", 0, inv); err != nil {
		t.Fatal(err)
	}

	binding.ResizeVertices(3)
	binding.Vertices[0].AddInfluence(0, 1)
	binding.Vertices[1].AddInfluence(0, 0.5)
	binding.Vertices[1].AddInfluence(1, 0.5)
	binding.Vertices[2].AddInfluence(1, 1)
	for i := range binding.Vertices {
		binding.Vertices[i].NormalizeWeights()
	}

	child := anim.IdentityPose()
	child.Translation = math.Vec3{Y: 2}
	child.Rotation = math.QuatFromAxisAngle(math.Vec3{Z: 1}, gomath.Pi/2)
	var pose anim.Pose
	pose.Set("root", anim.IdentityPose())
	pose.Set("child", child)

	globals := make([]math.Transform, 2)
	skin := make([]math.Transform, 2)
	if err := skinning.BuildGlobalJointTransforms(&binding, &pose, globals, math.Vec3{}); err != nil {
		t.Fatal(err)
	}
	if err := skinning.BuildSkinningTransforms(&binding, globals, skin); err != nil {
		t.Fatal(err)
	}
	return &binding, skin
}

func strip() *mesh.SurfaceMesh {
	rest := []math.Vec3{{}, {Y: 2}, {Y: 3}}
	return &mesh.SurfaceMesh{
		RestPositions: rest,
		Positions:     append([]math.Vec3(nil), rest...),
		Indices:       []uint32{0, 1, 2},
	}
}

func TestApplyLinearBlendSkinning(t *testing.T) {
	binding, skin := skinnedChain(t)
	m := strip()

	if err := ApplyLinearBlendSkinning(binding, skin, m); err != nil {
		t.Fatal(err)
	}
	if len(m.Positions) != 3 {
		t.Fatalf("positions = %d, want 3", len(m.Positions))
	}

	want := []math.Vec3{{}, {Y: 2}, {X: -1, Y: 2}}
	for i, w := range want {
		if !vecNear(m.Positions[i], w, 1e-3) {
			t.Errorf("vertex %d = %+v, want %+v", i, m.Positions[i], w)
		}
	}
	if len(m.Normals) != 3 {
		t.Errorf("normals = %d, want 3", len(m.Normals))
	}
	if !vecNear(m.Bounds.Min, math.Vec3{X: -1}, 1e-3) || !vecNear(m.Bounds.Max, math.Vec3{Y: 2}, 1e-3) {
		t.Errorf("bounds = %+v", m.Bounds)
	}
}

func TestRestFallback(t *testing.T) {
	binding, skin := skinnedChain(t)
	m := strip()

	// Vertex 1 loses its influences; vertex 2 points past the transforms.
	binding.Vertices[1].Clear()
	binding.Vertices[2].Clear()
	binding.Vertices[2].AddInfluence(7, 1)
	// Only two vertices are bound; the third has no binding at all.
	m.RestPositions = append(m.RestPositions, math.Vec3{X: 4})

	if err := ApplyLinearBlendSkinning(binding, skin, m); err != nil {
		t.Fatal(err)
	}
	want := []math.Vec3{{}, {Y: 2}, {Y: 3}, {X: 4}}
	for i, w := range want {
		if !vecNear(m.Positions[i], w, 1e-5) {
			t.Errorf("vertex %d = %+v, want rest %+v", i, m.Positions[i], w)
		}
	}
}

func TestEmptyMeshIsCleared(t *testing.T) {
	binding, skin := skinnedChain(t)
	m := &mesh.SurfaceMesh{
		Positions: []math.Vec3{{X: 1}},
		Normals:   []math.Vec3{{Y: 1}},
		Bounds:    mesh.Bounds{Max: math.Vec3{X: 1}},
	}

	if err := ApplyLinearBlendSkinning(binding, skin, m); err != nil {
		t.Fatal(err)
	}
	if len(m.Positions) != 0 || len(m.Normals) != 0 {
		t.Errorf("empty mesh kept %d positions and %d normals", len(m.Positions), len(m.Normals))
	}
	if m.Bounds != (mesh.Bounds{}) {
		t.Errorf("bounds = %+v, want origin box", m.Bounds)
	}
}

func TestTooFewTransforms(t *testing.T) {
	binding, skin := skinnedChain(t)
	m := strip()
	before := append([]math.Vec3(nil), m.Positions...)

	err := ApplyLinearBlendSkinning(binding, skin[:1], m)
	if !errors.Is(err, skinning.ErrBufferTooSmall) {
		t.Fatalf("expected ErrBufferTooSmall, got %v", err)
	}
	for i := range before {
		if m.Positions[i] != before[i] {
			t.Errorf("vertex %d modified on error", i)
		}
	}
}
