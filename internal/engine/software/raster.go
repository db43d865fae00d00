package software

import (
	gomath "math"

	"github.com/Faultbox/ssao/internal/engine/mesh"
	"github.com/Faultbox/ssao/pkg/math"
)

// clipVertex carries a vertex through clipping with its view-space attributes.
type clipVertex struct {
	clip     math.Vec4
	position math.Vec3
	normal   math.Vec3
}

func lerpVertex(a, b clipVertex, t float32) clipVertex {
	var out clipVertex
	for i := range out.clip {
		out.clip[i] = math.Lerp(a.clip[i], b.clip[i], t)
	}
	out.position = a.position.Add(b.position.Sub(a.position).Scale(t))
	out.normal = a.normal.Add(b.normal.Sub(a.normal).Scale(t))
	return out
}

// clipNear clips a polygon against the near plane z >= -w.
func clipNear(in []clipVertex, out []clipVertex) []clipVertex {
	out = out[:0]
	for i := range in {
		a := in[i]
		b := in[(i+1)%len(in)]
		da := a.clip[2] + a.clip[3]
		db := b.clip[2] + b.clip[3]

		if da >= 0 {
			out = append(out, a)
		}
		if (da >= 0) != (db >= 0) {
			out = append(out, lerpVertex(a, b, da/(da-db)))
		}
	}
	return out
}

// screenVertex is a clipped vertex after the perspective divide.
type screenVertex struct {
	x, y  float32 // Pixels, y down
	depth float32 // Window depth in [0, 1]
	invW  float32
	clipVertex
}

// rasterizer draws triangles into the geometry targets.
type rasterizer struct {
	t      *Targets
	albedo [4]uint8

	poly    [4]clipVertex
	clipped [8]clipVertex
}

// drawMesh transforms and rasterizes every triangle of m.
func (r *rasterizer) drawMesh(m *mesh.Mesh, modelView, projection math.Mat4, normalMatrix math.Mat3) {
	view := make([]clipVertex, len(m.Positions))
	for i, p := range m.Positions {
		vp := modelView.TransformPoint(p)
		view[i] = clipVertex{
			clip:     projection.Clip(vp),
			position: vp,
			normal:   normalMatrix.MulVec3(m.Normals[i]),
		}
	}

	for i := 0; i+2 < len(m.Indices); i += 3 {
		r.poly[0] = view[m.Indices[i]]
		r.poly[1] = view[m.Indices[i+1]]
		r.poly[2] = view[m.Indices[i+2]]

		verts := clipNear(r.poly[:3], r.clipped[:0])
		for k := 1; k+1 < len(verts); k++ {
			r.drawTriangle(verts[0], verts[k], verts[k+1])
		}
	}
}

func (r *rasterizer) project(v clipVertex) screenVertex {
	invW := 1 / v.clip[3]
	w, h := float32(r.t.width), float32(r.t.height)
	return screenVertex{
		x:          (v.clip[0]*invW*0.5 + 0.5) * w,
		y:          (0.5 - v.clip[1]*invW*0.5) * h,
		depth:      v.clip[2]*invW*0.5 + 0.5,
		invW:       invW,
		clipVertex: v,
	}
}

func edge(a, b screenVertex, px, py float32) float32 {
	return (b.x-a.x)*(py-a.y) - (b.y-a.y)*(px-a.x)
}

// drawTriangle fills a clipped triangle with perspective-correct attributes,
// culling back faces and testing depth with LESS.
func (r *rasterizer) drawTriangle(c0, c1, c2 clipVertex) {
	v0, v1, v2 := r.project(c0), r.project(c1), r.project(c2)

	// Counter-clockwise in NDC is clockwise once y points down
	area := edge(v0, v1, v2.x, v2.y)
	if area >= 0 {
		return
	}

	minX := max(int(floor32(min(v0.x, v1.x, v2.x))), 0)
	maxX := min(int(ceil32(max(v0.x, v1.x, v2.x))), r.t.width-1)
	minY := max(int(floor32(min(v0.y, v1.y, v2.y))), 0)
	maxY := min(int(ceil32(max(v0.y, v1.y, v2.y))), r.t.height-1)

	invArea := 1 / area
	for y := minY; y <= maxY; y++ {
		py := float32(y) + 0.5
		for x := minX; x <= maxX; x++ {
			px := float32(x) + 0.5

			l0 := edge(v1, v2, px, py) * invArea
			l1 := edge(v2, v0, px, py) * invArea
			l2 := edge(v0, v1, px, py) * invArea
			if l0 < 0 || l1 < 0 || l2 < 0 {
				continue
			}

			depth := l0*v0.depth + l1*v1.depth + l2*v2.depth
			di := y*r.t.width + x
			if depth < 0 || depth >= r.t.depth.Pix[di] {
				continue
			}
			r.t.depth.Pix[di] = depth

			// Perspective-correct weights
			w0, w1, w2 := l0*v0.invW, l1*v1.invW, l2*v2.invW
			norm := 1 / (w0 + w1 + w2)
			w0, w1, w2 = w0*norm, w1*norm, w2*norm

			pos := v0.position.Scale(w0).Add(v1.position.Scale(w1)).Add(v2.position.Scale(w2))
			n := v0.normal.Scale(w0).Add(v1.normal.Scale(w1)).Add(v2.normal.Scale(w2)).Normalize()

			o := r.t.position.Offset(x, y)
			copy(r.t.position.Pix[o:o+4], []float32{pos.X, pos.Y, pos.Z, 1})
			copy(r.t.normal.Pix[o:o+4], []float32{n.X, n.Y, n.Z, 1})

			ao := r.t.albedo.PixOffset(x, y)
			copy(r.t.albedo.Pix[ao:ao+4], r.albedo[:])
		}
	}
}

func floor32(v float32) float32 { return float32(gomath.Floor(float64(v))) }
func ceil32(v float32) float32  { return float32(gomath.Ceil(float64(v))) }
