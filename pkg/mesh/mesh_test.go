package mesh

import (
	"testing"

	"github.com/Faultbox/midgard-anim/pkg/math"
)

func vecNear(a, b math.Vec3) bool {
	return a.Distance(b) <= 1e-5
}

func TestUnitQuad(t *testing.T) {
	m := NewUnitQuad()
	if len(m.Positions) != 4 || len(m.Normals) != 4 || len(m.Indices) != 6 {
		t.Fatalf("unexpected sizes: %d positions, %d normals, %d indices",
			len(m.Positions), len(m.Normals), len(m.Indices))
	}
	if !vecNear(m.Bounds.Min, math.Vec3{X: -0.5, Z: -0.5}) || !vecNear(m.Bounds.Max, math.Vec3{X: 0.5, Z: 0.5}) {
		t.Errorf("bounds = %+v", m.Bounds)
	}
	if !vecNear(m.Bounds.Center(), math.Vec3{}) {
		t.Errorf("center = %+v, want origin", m.Bounds.Center())
	}
	if !vecNear(m.Bounds.Size(), math.Vec3{X: 1, Z: 1}) {
		t.Errorf("size = %+v", m.Bounds.Size())
	}
}

func TestRecomputeVertexNormals(t *testing.T) {
	tests := []struct {
		name    string
		indices []uint32
		want    math.Vec3
	}{
		{"quad winding", []uint32{0, 1, 2, 0, 2, 3}, math.Vec3{Y: -1}},
		{"reversed winding", []uint32{0, 2, 1, 0, 3, 2}, math.Vec3{Y: 1}},
	}
	for _, tt := range tests {
		m := NewUnitQuad()
		m.Indices = tt.indices
		m.RecomputeVertexNormals()
		for i, n := range m.Normals {
			if !vecNear(n, tt.want) {
				t.Errorf("%s: normal %d = %+v, want %+v", tt.name, i, n, tt.want)
			}
		}
	}
}

func TestRecomputeVertexNormalsFallbacks(t *testing.T) {
	m := &SurfaceMesh{
		Positions: []math.Vec3{{}, {X: 1}, {Z: 1}, {X: 5, Y: 5}},
		// The second triangle points past the end and is ignored.
		Indices: []uint32{0, 2, 1, 0, 1, 9},
	}
	m.RecomputeVertexNormals()

	if len(m.Normals) != 4 {
		t.Fatalf("normals = %d, want 4", len(m.Normals))
	}
	// (0,0,0), (0,0,1), (1,0,0) winds to +Y.
	if !vecNear(m.Normals[0], math.Vec3{Y: 1}) {
		t.Errorf("normal 0 = %+v", m.Normals[0])
	}
	if !vecNear(m.Normals[3], math.Vec3{Y: 1}) {
		t.Errorf("isolated vertex normal = %+v, want +Y default", m.Normals[3])
	}
}

func TestUpdateBoundsEmpty(t *testing.T) {
	m := &SurfaceMesh{Bounds: Bounds{Min: math.Vec3{X: -3}, Max: math.Vec3{X: 3}}}
	m.UpdateBounds()
	if m.Bounds != (Bounds{}) {
		t.Errorf("empty mesh bounds = %+v, want origin box", m.Bounds)
	}
}

func TestResizeAndClear(t *testing.T) {
	m := &SurfaceMesh{}
	if got := m.ResizePositions(3); len(got) != 3 {
		t.Fatalf("ResizePositions(3) len = %d", len(got))
	}
	if got := m.ResizePositions(1); len(got) != 1 {
		t.Fatalf("ResizePositions(1) len = %d", len(got))
	}
	m.Normals = make([]math.Vec3, 1)
	m.ClearGeometry()
	if len(m.Positions) != 0 || len(m.Normals) != 0 {
		t.Error("ClearGeometry left data behind")
	}
}

func TestApplyUniformTranslationAndCentroid(t *testing.T) {
	m := NewUnitQuad()
	m.ApplyUniformTranslation(math.Vec3{Y: 2})

	if !vecNear(m.Centroid(), math.Vec3{Y: 2}) {
		t.Errorf("centroid = %+v, want (0,2,0)", m.Centroid())
	}
	if m.Bounds.Min.Y != 2 || m.Bounds.Max.Y != 2 {
		t.Errorf("bounds = %+v, want y=2 plane", m.Bounds)
	}
	if !vecNear(m.RestPositions[0], math.Vec3{X: -0.5, Z: -0.5}) {
		t.Error("rest positions changed")
	}

	var empty SurfaceMesh
	if empty.Centroid() != (math.Vec3{}) {
		t.Error("empty centroid should be the origin")
	}
}
