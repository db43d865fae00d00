package software

import (
	"image"
	"image/color"

	"github.com/Faultbox/ssao/internal/engine/pipeline"
)

// Visualize renders a target as an 8-bit image for inspection.
// Normals map [-1, 1] to [0, 255], positions and depth are normalized to
// the covered range, and occlusion is shown as grey.
func (t *Targets) Visualize(role pipeline.Role) image.Image {
	if role == pipeline.RoleAlbedo {
		return t.albedo
	}
	img := image.NewRGBA(image.Rect(0, 0, t.width, t.height))
	p := t.Plane(role)
	if p == nil {
		return img
	}

	switch role {
	case pipeline.RoleNormal:
		t.eachCovered(func(x, y int) {
			img.SetRGBA(x, y, color.RGBA{
				R: unitByte(p.At(x, y, 0)*0.5 + 0.5),
				G: unitByte(p.At(x, y, 1)*0.5 + 0.5),
				B: unitByte(p.At(x, y, 2)*0.5 + 0.5),
				A: 255,
			})
		})
	case pipeline.RolePosition:
		lo, hi := t.coveredRange(p)
		t.eachCovered(func(x, y int) {
			var c [3]uint8
			for i := range c {
				c[i] = unitByte(normalize(p.At(x, y, i), lo[i], hi[i]))
			}
			img.SetRGBA(x, y, color.RGBA{R: c[0], G: c[1], B: c[2], A: 255})
		})
	default:
		for y := 0; y < t.height; y++ {
			for x := 0; x < t.width; x++ {
				v := unitByte(p.At(x, y, 0))
				img.SetRGBA(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
			}
		}
	}
	return img
}

func (t *Targets) eachCovered(fn func(x, y int)) {
	for y := 0; y < t.height; y++ {
		for x := 0; x < t.width; x++ {
			if t.position.At(x, y, 3) != 0 {
				fn(x, y)
			}
		}
	}
}

func (t *Targets) coveredRange(p *Plane) (lo, hi [3]float32) {
	first := true
	t.eachCovered(func(x, y int) {
		for i := range 3 {
			v := p.At(x, y, i)
			if first || v < lo[i] {
				lo[i] = v
			}
			if first || v > hi[i] {
				hi[i] = v
			}
		}
		first = false
	})
	return lo, hi
}

func normalize(v, lo, hi float32) float32 {
	if hi <= lo {
		return 0.5
	}
	return (v - lo) / (hi - lo)
}

func unitByte(v float32) uint8 {
	return scaleChannel(255, v)
}
