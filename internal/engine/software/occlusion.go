package software

import (
	gomath "math"

	"github.com/Faultbox/ssao/internal/engine/kernel"
	"github.com/Faultbox/ssao/pkg/math"
)

// occlusionPass estimates ambient occlusion per pixel from the position and
// normal targets.
type occlusionPass struct {
	t          *Targets
	kernel     kernel.Kernel
	noise      kernel.NoiseTile
	projection math.Mat4
	radius     float32
	bias       float32
}

func (p *occlusionPass) rows(y0, y1 int) {
	out := p.t.occlusionRaw.Pix
	for y := y0; y < y1; y++ {
		for x := 0; x < p.t.width; x++ {
			out[y*p.t.width+x] = p.pixel(x, y)
		}
	}
}

// pixel returns 1 for background and 1 - occluded/N otherwise.
func (p *occlusionPass) pixel(x, y int) float32 {
	pos := p.t.position
	o := pos.Offset(x, y)
	if pos.Pix[o+3] == 0 {
		return 1
	}
	origin := math.Vec3{X: pos.Pix[o], Y: pos.Pix[o+1], Z: pos.Pix[o+2]}

	no := p.t.normal.Offset(x, y)
	n := math.Vec3{X: p.t.normal.Pix[no], Y: p.t.normal.Pix[no+1], Z: p.t.normal.Pix[no+2]}.Normalize()
	tangent, bitangent := basis(n, p.noise.At(x, y))

	w, h := float32(p.t.width), float32(p.t.height)
	var occluded float32
	for _, k := range p.kernel {
		offset := tangent.Scale(k.X).Add(bitangent.Scale(k.Y)).Add(n.Scale(k.Z))
		sample := origin.Add(offset.Scale(p.radius))

		c := p.projection.Clip(sample)
		if c[3] <= 0 {
			continue
		}
		sx := (c[0]/c[3]*0.5 + 0.5) * w
		sy := (0.5 - c[1]/c[3]*0.5) * h
		if sx < 0 || sy < 0 || sx >= w || sy >= h {
			continue
		}

		so := pos.Offset(int(sx), int(sy))
		if pos.Pix[so+3] == 0 {
			continue
		}
		storedZ := pos.Pix[so+2]

		if storedZ >= sample.Z+p.bias {
			rangeCheck := math.Smoothstep(0, 1, p.radius/float32(gomath.Abs(float64(origin.Z-storedZ))))
			occluded += rangeCheck
		}
	}
	return 1 - occluded/float32(len(p.kernel))
}

// basis orthogonalizes the noise vector against n. When the two are
// parallel a fixed axis stands in for the noise.
func basis(n, noise math.Vec3) (tangent, bitangent math.Vec3) {
	t := noise.Sub(n.Scale(noise.Dot(n)))
	if t.Length() < 1e-6 {
		axis := math.Vec3{X: 1}
		if gomath.Abs(float64(n.X)) > 0.9 {
			axis = math.Vec3{Y: 1}
		}
		t = axis.Sub(n.Scale(axis.Dot(n)))
	}
	t = t.Normalize()
	return t, n.Cross(t)
}
