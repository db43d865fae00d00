// Package software implements the deferred SSAO passes on CPU-resident
// render targets. Row 0 of every target is the top of the image.
package software

// Plane is a float render target with a fixed number of channels per texel.
type Plane struct {
	Width    int
	Height   int
	Channels int
	Pix      []float32 // Row-major, Channels values per texel
}

func newPlane(width, height, channels int) *Plane {
	return &Plane{
		Width:    width,
		Height:   height,
		Channels: channels,
		Pix:      make([]float32, width*height*channels),
	}
}

// Offset returns the index of the first channel of texel (x, y).
func (p *Plane) Offset(x, y int) int {
	return (y*p.Width + x) * p.Channels
}

// At returns channel c of texel (x, y).
func (p *Plane) At(x, y, c int) float32 {
	return p.Pix[p.Offset(x, y)+c]
}

// Fill sets every value in the plane.
func (p *Plane) Fill(v float32) {
	for i := range p.Pix {
		p.Pix[i] = v
	}
}

// Clear sets every value to zero.
func (p *Plane) Clear() {
	clear(p.Pix)
}
