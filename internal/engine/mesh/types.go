// Package mesh provides the triangle mesh consumed by the geometry pass.
package mesh

import (
	"errors"
	"fmt"

	"github.com/Faultbox/ssao/pkg/math"
)

// ErrInvalidMesh is returned when a mesh breaks an indexing invariant.
var ErrInvalidMesh = errors.New("invalid mesh")

// Mesh holds an indexed triangle list with one normal per position.
type Mesh struct {
	Positions []math.Vec3
	Normals   []math.Vec3
	Indices   []uint32 // Three per triangle, counter-clockwise front faces
}

// Bounds holds an axis-aligned bounding box.
type Bounds struct {
	Min math.Vec3
	Max math.Vec3
}

// Center returns the middle of the box.
func (b Bounds) Center() math.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Size returns the box extent on each axis.
func (b Bounds) Size() math.Vec3 {
	return b.Max.Sub(b.Min)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Empty reports whether the mesh has nothing to draw.
func (m *Mesh) Empty() bool {
	return len(m.Positions) == 0 || len(m.Indices) == 0
}

// Validate checks the indexing invariants.
func (m *Mesh) Validate() error {
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("%w: %d indices is not a multiple of 3", ErrInvalidMesh, len(m.Indices))
	}
	if len(m.Normals) != len(m.Positions) {
		return fmt.Errorf("%w: %d normals for %d positions", ErrInvalidMesh, len(m.Normals), len(m.Positions))
	}
	n := uint32(len(m.Positions))
	for i, idx := range m.Indices {
		if idx >= n {
			return fmt.Errorf("%w: index %d at %d out of range [0, %d)", ErrInvalidMesh, idx, i, n)
		}
	}
	return nil
}

// Bounds returns the bounding box of all positions.
// An empty mesh has zero bounds.
func (m *Mesh) Bounds() Bounds {
	if len(m.Positions) == 0 {
		return Bounds{}
	}
	b := Bounds{Min: m.Positions[0], Max: m.Positions[0]}
	for _, p := range m.Positions[1:] {
		b.Min = b.Min.Min(p)
		b.Max = b.Max.Max(p)
	}
	return b
}
