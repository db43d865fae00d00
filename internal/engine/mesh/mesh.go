package mesh

import (
	"fmt"

	"github.com/Faultbox/ssao/pkg/formats"
	"github.com/Faultbox/ssao/pkg/math"
)

// Load reads an ASCII PLY file and derives per-vertex normals.
func Load(path string) (*Mesh, error) {
	ply, err := formats.ParsePLYFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading mesh %s: %w", path, err)
	}
	m := FromPLY(ply)
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("loading mesh %s: %w", path, err)
	}
	return m, nil
}

// FromPLY converts parsed PLY data into a mesh with accumulated normals.
func FromPLY(ply *formats.PLY) *Mesh {
	m := &Mesh{
		Positions: make([]math.Vec3, len(ply.Vertices)),
		Indices:   append([]uint32(nil), ply.Indices...),
	}
	for i, v := range ply.Vertices {
		m.Positions[i] = math.Vec3{X: v[0], Y: v[1], Z: v[2]}
	}
	ComputeNormals(m)
	return m
}

// ComputeNormals replaces the mesh normals with the renormalized sum of the
// unnormalized face normals of every triangle touching each vertex.
// Larger faces weigh more. Vertices referenced by no triangle, or only by
// degenerate ones, keep a zero normal.
func ComputeNormals(m *Mesh) {
	normals := make([]math.Vec3, len(m.Positions))
	n := uint32(len(m.Positions))

	for i := 0; i+2 < len(m.Indices); i += 3 {
		a, b, c := m.Indices[i], m.Indices[i+1], m.Indices[i+2]
		if a >= n || b >= n || c >= n {
			continue // Validate reports these
		}
		edge1 := m.Positions[b].Sub(m.Positions[a])
		edge2 := m.Positions[c].Sub(m.Positions[a])
		face := edge1.Cross(edge2)

		normals[a] = normals[a].Add(face)
		normals[b] = normals[b].Add(face)
		normals[c] = normals[c].Add(face)
	}

	for i := range normals {
		normals[i] = normals[i].Normalize()
	}
	m.Normals = normals
}

// Merge concatenates meshes into one, rebasing indices.
func Merge(meshes ...*Mesh) *Mesh {
	out := &Mesh{}
	for _, m := range meshes {
		base := uint32(len(out.Positions))
		out.Positions = append(out.Positions, m.Positions...)
		out.Normals = append(out.Normals, m.Normals...)
		for _, idx := range m.Indices {
			out.Indices = append(out.Indices, base+idx)
		}
	}
	return out
}

// CenterXZ shifts the mesh so its bounds are centred on the X and Z axes
// and its lowest point sits at floorY. Returns the applied offset.
func (m *Mesh) CenterXZ(floorY float32) math.Vec3 {
	b := m.Bounds()
	c := b.Center()
	offset := math.Vec3{X: -c.X, Y: floorY - b.Min.Y, Z: -c.Z}

	for i := range m.Positions {
		m.Positions[i] = m.Positions[i].Add(offset)
	}
	return offset
}
