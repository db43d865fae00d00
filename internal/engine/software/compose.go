package software

// composePass modulates albedo by blurred occlusion into the output surface.
type composePass struct {
	t          *Targets
	background [4]uint8
}

func (p *composePass) rows(y0, y1 int) {
	t := p.t
	for y := y0; y < y1; y++ {
		for x := 0; x < t.width; x++ {
			o := t.output.PixOffset(x, y)
			if t.position.At(x, y, 3) == 0 {
				copy(t.output.Pix[o:o+4], p.background[:])
				continue
			}
			ao := t.occlusionBlurred.Pix[y*t.width+x]
			a := t.albedo.PixOffset(x, y)
			t.output.Pix[o] = scaleChannel(t.albedo.Pix[a], ao)
			t.output.Pix[o+1] = scaleChannel(t.albedo.Pix[a+1], ao)
			t.output.Pix[o+2] = scaleChannel(t.albedo.Pix[a+2], ao)
			t.output.Pix[o+3] = 255
		}
	}
}

func scaleChannel(c uint8, f float32) uint8 {
	v := float32(c)*f + 0.5
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v)
}

// toRGBA8 converts a linear colour in [0, 1] to opaque RGBA8.
func toRGBA8(c [3]float32) [4]uint8 {
	return [4]uint8{scaleChannel(255, c[0]), scaleChannel(255, c[1]), scaleChannel(255, c[2]), 255}
}
