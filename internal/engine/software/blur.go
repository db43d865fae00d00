package software

// blurPass averages raw occlusion over a size×size neighbourhood matching
// the noise tile, hiding its repeat pattern.
type blurPass struct {
	t    *Targets
	size int
}

func (p *blurPass) rows(y0, y1 int) {
	src := p.t.occlusionRaw.Pix
	dst := p.t.occlusionBlurred.Pix
	w, h := p.t.width, p.t.height

	lo := -p.size / 2
	hi := lo + p.size
	inv := 1 / float64(p.size*p.size)

	for y := y0; y < y1; y++ {
		for x := 0; x < w; x++ {
			var sum float64
			for dy := lo; dy < hi; dy++ {
				row := min(max(y+dy, 0), h-1) * w
				for dx := lo; dx < hi; dx++ {
					sum += float64(src[row+min(max(x+dx, 0), w-1)])
				}
			}
			dst[y*w+x] = float32(sum * inv)
		}
	}
}
