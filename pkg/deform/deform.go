// Package deform applies skinning transforms to mesh vertices.
package deform

import (
	"fmt"

	"github.com/Faultbox/midgard-anim/pkg/math"
	"github.com/Faultbox/midgard-anim/pkg/rig"
	"github.com/Faultbox/midgard-anim/pkg/skinning"
)

// Mesh is the surface a deformer writes into. *mesh.SurfaceMesh implements
// it.
type Mesh interface {
	// Rest returns the bind-pose vertex positions.
	Rest() []math.Vec3
	// ResizePositions sizes the deformed position buffer to n and returns it.
	ResizePositions(n int) []math.Vec3
	ClearGeometry()
	RecomputeVertexNormals()
	UpdateBounds()
}

// ApplyLinearBlendSkinning moves every rest vertex by the weighted sum of
// its influencing joints' skinning transforms, then refreshes normals and
// bounds.
//
// Influences naming a joint beyond the supplied transforms are skipped.
// Vertices left with no usable weight, including vertices past the end of
// binding.Vertices, keep their rest position. A mesh without rest positions
// is cleared.
func ApplyLinearBlendSkinning(binding *rig.RigBinding, skin []math.Transform, m Mesh) error {
	if len(skin) < len(binding.Joints) {
		return fmt.Errorf("%w: skinning transforms has %d, need %d",
			skinning.ErrBufferTooSmall, len(skin), len(binding.Joints))
	}

	rest := m.Rest()
	if len(rest) == 0 {
		m.ClearGeometry()
		m.UpdateBounds()
		return nil
	}

	positions := m.ResizePositions(len(rest))
	for i, restPos := range rest {
		var (
			sum    math.Vec3
			weight float32
		)
		if i < len(binding.Vertices) {
			for _, inf := range binding.Vertices[i].Active() {
				if int(inf.Joint) >= len(skin) {
					continue
				}
				sum = sum.Add(skin[inf.Joint].TransformPoint(restPos).Scale(inf.Weight))
				weight += inf.Weight
			}
		}
		if weight <= 0 {
			sum = restPos
		}
		positions[i] = sum
	}

	m.RecomputeVertexNormals()
	m.UpdateBounds()
	return nil
}
