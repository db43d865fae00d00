// Package kernel generates the hemisphere sample kernel and the tiled
// rotation noise used by the occlusion pass.
package kernel

import (
	"fmt"

	"github.com/Faultbox/ssao/pkg/math"
)

// MaxSize is the largest kernel the occlusion shader accepts.
const MaxSize = 64

// degenerateLength is the pre-normalization length below which a sample is redrawn.
const degenerateLength = 1e-6

// Source yields uniform floats in [0, 1). *rand.Rand from math/rand/v2 satisfies it.
type Source interface {
	Float32() float32
}

// Kernel is a set of sample offsets in the +Z hemisphere of tangent space.
type Kernel []math.Vec3

// Flat returns the samples as packed xyz triples, the layout of a vec3 uniform array.
func (k Kernel) Flat() []float32 {
	out := make([]float32, 0, len(k)*3)
	for _, v := range k {
		out = append(out, v.X, v.Y, v.Z)
	}
	return out
}

// NoiseTile is a Size×Size grid of rotation vectors in the tangent plane,
// tiled across the screen with wrap addressing.
type NoiseTile struct {
	Size    int
	Vectors []math.Vec3 // Row-major
}

// At returns the rotation vector for pixel (x, y), wrapping both coordinates.
func (n NoiseTile) At(x, y int) math.Vec3 {
	return n.Vectors[wrap(y, n.Size)*n.Size+wrap(x, n.Size)]
}

// Flat returns the vectors as packed xyz triples for texture upload.
func (n NoiseTile) Flat() []float32 {
	return Kernel(n.Vectors).Flat()
}

func wrap(v, n int) int {
	v %= n
	if v < 0 {
		v += n
	}
	return v
}

// Scale returns the length multiplier for sample i of count.
// Samples cluster toward the origin: lerp(0.1, 1.0, (i/count)²).
func Scale(i, count int) float32 {
	t := float32(i) / float32(count)
	return math.Lerp(0.1, 1.0, t*t)
}

// Generate draws a kernel of count samples and a noiseSize×noiseSize noise tile.
// It panics if count or noiseSize is below 1.
func Generate(count, noiseSize int, rng Source) (Kernel, NoiseTile) {
	if count < 1 {
		panic(fmt.Sprintf("kernel: sample count %d must be at least 1", count))
	}
	if noiseSize < 1 {
		panic(fmt.Sprintf("kernel: noise size %d must be at least 1", noiseSize))
	}

	k := make(Kernel, count)
	for i := range k {
		k[i] = drawDirection(rng).Scale(rng.Float32() * Scale(i, count))
	}

	noise := NoiseTile{Size: noiseSize, Vectors: make([]math.Vec3, noiseSize*noiseSize)}
	for i := range noise.Vectors {
		noise.Vectors[i] = math.Vec3{
			X: rng.Float32()*2 - 1,
			Y: rng.Float32()*2 - 1,
		}
	}
	return k, noise
}

// drawDirection returns a unit vector with z >= 0, redrawing near-zero vectors.
func drawDirection(rng Source) math.Vec3 {
	for {
		v := math.Vec3{
			X: rng.Float32()*2 - 1,
			Y: rng.Float32()*2 - 1,
			Z: rng.Float32(),
		}
		if v.Length() >= degenerateLength {
			return v.Normalize()
		}
	}
}
