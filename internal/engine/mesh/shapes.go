package mesh

import "github.com/Faultbox/ssao/pkg/math"

// Quad returns a unit square in the z=0 plane facing +Z.
func Quad() *Mesh {
	m := &Mesh{}
	m.addQuad(
		math.Vec3{X: -0.5, Y: -0.5},
		math.Vec3{X: 0.5, Y: -0.5},
		math.Vec3{X: 0.5, Y: 0.5},
		math.Vec3{X: -0.5, Y: 0.5},
	)
	return m
}

// Floor returns a square of the given edge length in the y=height plane facing +Y.
func Floor(size, height float32) *Mesh {
	h := size / 2
	m := &Mesh{}
	m.addQuad(
		math.Vec3{X: -h, Y: height, Z: h},
		math.Vec3{X: h, Y: height, Z: h},
		math.Vec3{X: h, Y: height, Z: -h},
		math.Vec3{X: -h, Y: height, Z: -h},
	)
	return m
}

// Box returns an axis-aligned box with flat, outward-facing sides.
func Box(lo, hi math.Vec3) *Mesh {
	x0, y0, z0 := lo.X, lo.Y, lo.Z
	x1, y1, z1 := hi.X, hi.Y, hi.Z
	v := func(x, y, z float32) math.Vec3 { return math.Vec3{X: x, Y: y, Z: z} }

	m := &Mesh{}
	m.addQuad(v(x0, y0, z1), v(x1, y0, z1), v(x1, y1, z1), v(x0, y1, z1)) // +Z
	m.addQuad(v(x1, y0, z0), v(x0, y0, z0), v(x0, y1, z0), v(x1, y1, z0)) // -Z
	m.addQuad(v(x1, y0, z1), v(x1, y0, z0), v(x1, y1, z0), v(x1, y1, z1)) // +X
	m.addQuad(v(x0, y0, z0), v(x0, y0, z1), v(x0, y1, z1), v(x0, y1, z0)) // -X
	m.addQuad(v(x0, y1, z1), v(x1, y1, z1), v(x1, y1, z0), v(x0, y1, z0)) // +Y
	m.addQuad(v(x0, y0, z0), v(x1, y0, z0), v(x1, y0, z1), v(x0, y0, z1)) // -Y
	return m
}

// Demo returns the built-in scene: a floor with a few boxes standing on it,
// placed in front of a camera at the origin looking down -Z.
func Demo() *Mesh {
	const floorY = -0.25
	return Merge(
		Floor(4, floorY),
		Box(math.Vec3{X: -0.35, Y: floorY, Z: -1.0}, math.Vec3{X: -0.05, Y: floorY + 0.3, Z: -0.7}),
		Box(math.Vec3{X: 0.05, Y: floorY, Z: -1.2}, math.Vec3{X: 0.3, Y: floorY + 0.5, Z: -0.95}),
		Box(math.Vec3{X: -0.6, Y: floorY, Z: -1.5}, math.Vec3{X: 0.6, Y: floorY + 0.8, Z: -1.35}),
	)
}

// addQuad appends two triangles for the counter-clockwise corners a, b, c, d
// with a shared flat normal.
func (m *Mesh) addQuad(a, b, c, d math.Vec3) {
	n := b.Sub(a).Cross(c.Sub(a)).Normalize()
	base := uint32(len(m.Positions))
	m.Positions = append(m.Positions, a, b, c, d)
	m.Normals = append(m.Normals, n, n, n, n)
	m.Indices = append(m.Indices, base, base+1, base+2, base, base+2, base+3)
}
