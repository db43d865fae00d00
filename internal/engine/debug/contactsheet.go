package debug

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// SheetBackground fills cells with no tile.
var SheetBackground = color.RGBA{R: 32, G: 32, B: 32, A: 255}

// ContactSheet lays tiles out left to right in rows of cols cells.
// Tiles are scaled nearest-neighbour to tileW wide, keeping the aspect ratio
// of the first non-nil tile. Nil tiles leave their cell empty.
func ContactSheet(tiles []image.Image, cols, tileW int) *image.RGBA {
	if len(tiles) == 0 || cols < 1 || tileW < 1 {
		return image.NewRGBA(image.Rectangle{})
	}
	if cols > len(tiles) {
		cols = len(tiles)
	}

	tileH := tileW
	for _, t := range tiles {
		if t != nil && !t.Bounds().Empty() {
			b := t.Bounds()
			tileH = max(1, tileW*b.Dy()/b.Dx())
			break
		}
	}

	rows := (len(tiles) + cols - 1) / cols
	sheet := image.NewRGBA(image.Rect(0, 0, cols*tileW, rows*tileH))
	draw.Draw(sheet, sheet.Bounds(), image.NewUniform(SheetBackground), image.Point{}, draw.Src)

	for i, t := range tiles {
		if t == nil {
			continue
		}
		x := (i % cols) * tileW
		y := (i / cols) * tileH
		cell := image.Rect(x, y, x+tileW, y+tileH)
		draw.NearestNeighbor.Scale(sheet, cell, t, t.Bounds(), draw.Src, nil)
	}
	return sheet
}
