package nn

import (
	"github.com/radiant-ml/radiant/internal/tensor"
)

// ReLU is a rectified linear unit activation module: f(x) = max(0, x).
type ReLU[B tensor.Backend] struct{}

// NewReLU creates a new ReLU activation module.
func NewReLU[B tensor.Backend]() *ReLU[B] {
	return &ReLU[B]{}
}

// Forward applies ReLU activation.
func (r *ReLU[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	backend := input.Backend()
	reluBackend, ok := any(backend).(tensor.ReLUBackend)
	if !ok {
		panic("ReLU: backend must implement ReLU operation (use autodiff.AutodiffBackend)")
	}
	return tensor.New[float32, B](reluBackend.ReLU(input.Raw()), backend)
}

// Parameters returns nil (ReLU has no trainable parameters).
func (r *ReLU[B]) Parameters() []*Parameter[B] {
	return nil
}

// Sigmoid is a logistic activation module: σ(x) = 1 / (1 + exp(-x)).
// The radiance head uses it to squash colors into (0, 1).
type Sigmoid[B tensor.Backend] struct{}

// NewSigmoid creates a new Sigmoid activation module.
func NewSigmoid[B tensor.Backend]() *Sigmoid[B] {
	return &Sigmoid[B]{}
}

// Forward applies Sigmoid activation.
func (s *Sigmoid[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	backend := input.Backend()
	sigmoidBackend, ok := any(backend).(tensor.SigmoidBackend)
	if !ok {
		panic("Sigmoid: backend must implement Sigmoid operation (use autodiff.AutodiffBackend)")
	}
	return tensor.New[float32, B](sigmoidBackend.Sigmoid(input.Raw()), backend)
}

// Parameters returns nil (Sigmoid has no trainable parameters).
func (s *Sigmoid[B]) Parameters() []*Parameter[B] {
	return nil
}
