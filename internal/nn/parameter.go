package nn

import (
	"github.com/radiant-ml/radiant/internal/tensor"
)

// Parameter is a trainable tensor: a weight or bias updated by the optimizer.
type Parameter[B tensor.Backend] struct {
	name   string
	tensor *tensor.Tensor[float32, B]
	grad   *tensor.Tensor[float32, B] // nil until the first backward pass
}

// NewParameter creates a new trainable parameter from an initialized tensor.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return &Parameter[B]{name: name, tensor: t}
}

// Name returns the parameter name.
func (p *Parameter[B]) Name() string { return p.name }

// Tensor returns the parameter tensor.
func (p *Parameter[B]) Tensor() *tensor.Tensor[float32, B] { return p.tensor }

// Grad returns the gradient tensor, or nil before the first backward pass.
func (p *Parameter[B]) Grad() *tensor.Tensor[float32, B] { return p.grad }

// SetGrad sets the gradient tensor.
func (p *Parameter[B]) SetGrad(grad *tensor.Tensor[float32, B]) { p.grad = grad }

// ZeroGrad clears the gradient. Call before each training iteration to avoid
// accumulating gradients across steps.
func (p *Parameter[B]) ZeroGrad() { p.grad = nil }
