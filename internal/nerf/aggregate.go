package nerf

import (
	"fmt"

	"github.com/radiant-ml/radiant/internal/render"
	"github.com/radiant-ml/radiant/internal/tensor"
)

// Image is an assembled full-frame render.
type Image[B tensor.Backend] struct {
	RGB       *tensor.Tensor[float32, B] // [H, W, 3]
	Disparity *tensor.Tensor[float32, B] // [H, W]
	Acc       *tensor.Tensor[float32, B] // [H, W]
	Depth     *tensor.Tensor[float32, B] // [H, W]
}

// Gatherer accumulates per-chunk ray results in submission order and
// assembles them into a full image. Ray batches may be padded with dummy
// rays to a round chunk multiple; Assemble trims the trailing excess.
type Gatherer[B tensor.Backend] struct {
	chunks []*render.Result[B]
}

// NewGatherer returns an empty gatherer.
func NewGatherer[B tensor.Backend]() *Gatherer[B] {
	return &Gatherer[B]{}
}

// Add appends one chunk's results. Chunks must arrive in ray order.
func (g *Gatherer[B]) Add(chunk *render.Result[B]) {
	g.chunks = append(g.chunks, chunk)
}

// NumRays returns the total number of gathered rays.
func (g *Gatherer[B]) NumRays() int {
	n := 0
	for _, c := range g.chunks {
		n += c.RGB.Shape()[0]
	}
	return n
}

// Assemble concatenates the gathered chunks, drops any trailing padding
// rays beyond height*width, and reshapes the pixel maps into image form.
func (g *Gatherer[B]) Assemble(height, width int) (*Image[B], error) {
	pixels := height * width
	total := g.NumRays()
	if total < pixels {
		return nil, fmt.Errorf("nerf: gathered %d rays, need %d for a %dx%d image", total, pixels, height, width)
	}

	rgbs := make([]*tensor.Tensor[float32, B], len(g.chunks))
	disps := make([]*tensor.Tensor[float32, B], len(g.chunks))
	accs := make([]*tensor.Tensor[float32, B], len(g.chunks))
	depths := make([]*tensor.Tensor[float32, B], len(g.chunks))
	for i, c := range g.chunks {
		rgbs[i] = c.RGB
		disps[i] = c.Disparity
		accs[i] = c.Acc
		depths[i] = c.Depth
	}

	return &Image[B]{
		RGB:       tensor.Cat(rgbs, 0).Narrow(0, pixels).Reshape(height, width, 3),
		Disparity: tensor.Cat(disps, 0).Narrow(0, pixels).Reshape(height, width),
		Acc:       tensor.Cat(accs, 0).Narrow(0, pixels).Reshape(height, width),
		Depth:     tensor.Cat(depths, 0).Narrow(0, pixels).Reshape(height, width),
	}, nil
}
