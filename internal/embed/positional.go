// Package embed implements the positional encoding applied to sample
// positions and view directions before they reach the radiance network.
//
// A raw 3D coordinate carries too little high-frequency signal for an MLP to
// fit fine geometry; lifting it through sinusoids at geometrically spaced
// frequencies restores that capacity.
package embed

import (
	"fmt"
	"math"

	"github.com/radiant-ml/radiant/internal/tensor"
)

// Embedder maps a batch of input vectors to their encoded form.
type Embedder[B tensor.Backend] interface {
	// Embed encodes [n, inputDims] into [n, OutputDim()].
	Embed(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B]

	// OutputDim returns the encoded width.
	OutputDim() int
}

// Identity passes inputs through unchanged.
type Identity[B tensor.Backend] struct {
	inputDims int
}

// NewIdentity creates a pass-through embedder.
func NewIdentity[B tensor.Backend](inputDims int) *Identity[B] {
	return &Identity[B]{inputDims: inputDims}
}

// Embed returns the input unchanged.
func (e *Identity[B]) Embed(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return x
}

// OutputDim returns the input width.
func (e *Identity[B]) OutputDim() int { return e.inputDims }

// Positional is the sinusoidal positional encoder.
//
// The encoding of x is the concatenation along the last dimension of
//
//	[x, sin(2^0 x), cos(2^0 x), ..., sin(2^(L-1) x), cos(2^(L-1) x)]
//
// giving an output width of inputDims * (1 + 2L).
type Positional[B tensor.Backend] struct {
	inputDims int
	freqBands []float32
	outDim    int
}

// NewPositional creates a positional encoder with L = multires frequency
// octaves over inputDims-wide inputs.
func NewPositional[B tensor.Backend](multires, inputDims int) *Positional[B] {
	if multires < 1 {
		panic(fmt.Sprintf("embed: multires must be >= 1, got %d", multires))
	}

	freqBands := make([]float32, multires)
	for k := range freqBands {
		freqBands[k] = float32(math.Exp2(float64(k)))
	}

	return &Positional[B]{
		inputDims: inputDims,
		freqBands: freqBands,
		outDim:    inputDims * (1 + 2*len(freqBands)),
	}
}

// Embed encodes [n, inputDims] into [n, inputDims*(1+2L)].
func (e *Positional[B]) Embed(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	shape := x.Shape()
	if shape[len(shape)-1] != e.inputDims {
		panic(fmt.Sprintf("embed: expected trailing dimension %d, got shape %v", e.inputDims, shape))
	}

	parts := make([]*tensor.Tensor[float32, B], 0, 1+2*len(e.freqBands))
	parts = append(parts, x)
	for _, freq := range e.freqBands {
		scaled := x.MulScalar(freq)
		parts = append(parts, scaled.Sin(), scaled.Cos())
	}
	return tensor.Cat(parts, -1)
}

// OutputDim returns the encoded width.
func (e *Positional[B]) OutputDim() int { return e.outDim }
