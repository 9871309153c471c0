package animator

import (
	gomath "math"

	"github.com/Faultbox/midgard-anim/pkg/anim"
	"github.com/Faultbox/midgard-anim/pkg/math"
	"github.com/Faultbox/midgard-anim/pkg/mesh"
	"github.com/Faultbox/midgard-anim/pkg/rig"
)

// BentChain returns a two-joint rig over a three-vertex strip along +Y and a
// one second clip that bends the child joint 90 degrees about Z. The child
// sits two units above the root; the top vertex is bound only to the child
// and ends at (-1, 2, 0) when fully bent. It panics if the rig cannot be
// bound.
func BentChain() (*rig.RigBinding, *mesh.SurfaceMesh, *anim.Clip) {
	binding := &rig.RigBinding{}
	_, err := binding.AddJoint("root", rig.RootParent, math.TransformIdentity())
	mustFixture(err)
	inv := math.TransformIdentity()
	inv.Translation = math.Vec3{Y: -2}
	_, err = binding.AddJoint("child", 0, inv)
	mustFixture(err)

	binding.ResizeVertices(3)
	mustFixture(binding.SetVertexInfluences(0, []rig.VertexInfluence{{Joint: 0, Weight: 1}}))
	mustFixture(binding.SetVertexInfluences(1, []rig.VertexInfluence{{Joint: 0, Weight: 0.5}, {Joint: 1, Weight: 0.5}}))
	mustFixture(binding.SetVertexInfluences(2, []rig.VertexInfluence{{Joint: 1, Weight: 1}}))

	rest := []math.Vec3{{}, {Y: 2}, {Y: 3}}
	m := &mesh.SurfaceMesh{
		RestPositions: rest,
		Positions:     append([]math.Vec3(nil), rest...),
		Indices:       []uint32{0, 1, 2},
	}
	m.RecomputeVertexNormals()
	m.UpdateBounds()

	straight := anim.IdentityPose()
	straight.Translation = math.Vec3{Y: 2}
	bent := straight
	bent.Rotation = math.QuatFromAxisAngle(math.Vec3{Z: 1}, gomath.Pi/2)

	clip := &anim.Clip{
		Name:     "chain.bend",
		Duration: 1,
		Tracks: []anim.JointTrack{
			{JointName: "root", Keyframes: []anim.Keyframe{{Time: 0, Pose: anim.IdentityPose()}}},
			{JointName: "child", Keyframes: []anim.Keyframe{{Time: 0, Pose: straight}, {Time: 1, Pose: bent}}},
		},
	}
	return binding, m, clip
}

func mustFixture(err error) {
	if err != nil {
		panic("animator: bent chain fixture: " + err.Error())
	}
}
