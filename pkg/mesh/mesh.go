// Package mesh holds the triangle surface that skinning deforms.
package mesh

import (
	"github.com/Faultbox/midgard-anim/pkg/math"
)

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min math.Vec3
	Max math.Vec3
}

// Center returns the midpoint of the box.
func (b Bounds) Center() math.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Size returns the extent along each axis.
func (b Bounds) Size() math.Vec3 {
	return b.Max.Sub(b.Min)
}

// SurfaceMesh is an indexed triangle list. RestPositions is the bind-pose
// geometry; Positions and Normals hold the current deformed state and are
// index-aligned with it.
type SurfaceMesh struct {
	RestPositions []math.Vec3
	Positions     []math.Vec3
	Normals       []math.Vec3
	Indices       []uint32
	Bounds        Bounds
}

// NewUnitQuad returns a one-unit square on the XZ plane. Its normals start
// at +Y; the index winding itself faces -Y.
func NewUnitQuad() *SurfaceMesh {
	m := &SurfaceMesh{
		RestPositions: []math.Vec3{
			{X: -0.5, Z: -0.5},
			{X: 0.5, Z: -0.5},
			{X: 0.5, Z: 0.5},
			{X: -0.5, Z: 0.5},
		},
		Indices: []uint32{0, 1, 2, 0, 2, 3},
	}
	m.Positions = append([]math.Vec3(nil), m.RestPositions...)
	m.Normals = make([]math.Vec3, len(m.Positions))
	for i := range m.Normals {
		m.Normals[i] = math.Vec3{Y: 1}
	}
	m.UpdateBounds()
	return m
}

// Rest returns the bind-pose positions.
func (m *SurfaceMesh) Rest() []math.Vec3 {
	return m.RestPositions
}

// ResizePositions makes Positions hold n entries and returns it.
func (m *SurfaceMesh) ResizePositions(n int) []math.Vec3 {
	if cap(m.Positions) >= n {
		m.Positions = m.Positions[:n]
	} else {
		m.Positions = append(m.Positions[:cap(m.Positions)], make([]math.Vec3, n-cap(m.Positions))...)
	}
	return m.Positions
}

// ClearGeometry drops the deformed positions and normals.
func (m *SurfaceMesh) ClearGeometry() {
	m.Positions = m.Positions[:0]
	m.Normals = m.Normals[:0]
}

// RecomputeVertexNormals rebuilds Normals from the triangles in Indices.
// Each vertex gets the normalized sum of the unit normals of the faces
// using it. Vertices touched by no valid face point along +Y. Triangles
// referencing missing vertices are skipped.
func (m *SurfaceMesh) RecomputeVertexNormals() {
	n := len(m.Positions)
	if cap(m.Normals) >= n {
		m.Normals = m.Normals[:n]
		clear(m.Normals)
	} else {
		m.Normals = make([]math.Vec3, n)
	}

	for i := 0; i+2 < len(m.Indices); i += 3 {
		ia, ib, ic := int(m.Indices[i]), int(m.Indices[i+1]), int(m.Indices[i+2])
		if ia >= n || ib >= n || ic >= n {
			continue
		}
		a, b, c := m.Positions[ia], m.Positions[ib], m.Positions[ic]
		face := b.Sub(a).Cross(c.Sub(a)).Normalize()
		m.Normals[ia] = m.Normals[ia].Add(face)
		m.Normals[ib] = m.Normals[ib].Add(face)
		m.Normals[ic] = m.Normals[ic].Add(face)
	}

	for i, normal := range m.Normals {
		if normal.LengthSquared() > 0 {
			m.Normals[i] = normal.Normalize()
		} else {
			m.Normals[i] = math.Vec3{Y: 1}
		}
	}
}

// UpdateBounds recomputes Bounds from Positions. An empty mesh gets a
// zero-sized box at the origin.
func (m *SurfaceMesh) UpdateBounds() {
	if len(m.Positions) == 0 {
		m.Bounds = Bounds{}
		return
	}
	b := Bounds{Min: m.Positions[0], Max: m.Positions[0]}
	for _, p := range m.Positions[1:] {
		b.Min = b.Min.Min(p)
		b.Max = b.Max.Max(p)
	}
	m.Bounds = b
}

// ApplyUniformTranslation sets every position to its rest position moved
// by offset.
func (m *SurfaceMesh) ApplyUniformTranslation(offset math.Vec3) {
	positions := m.ResizePositions(len(m.RestPositions))
	for i, rest := range m.RestPositions {
		positions[i] = rest.Add(offset)
	}
	m.UpdateBounds()
}

// Centroid returns the mean of the current positions, or the origin for an
// empty mesh.
func (m *SurfaceMesh) Centroid() math.Vec3 {
	if len(m.Positions) == 0 {
		return math.Vec3{}
	}
	var sum math.Vec3
	for _, p := range m.Positions {
		sum = sum.Add(p)
	}
	return sum.Scale(1 / float32(len(m.Positions)))
}
