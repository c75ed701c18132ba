package nn

import (
	"github.com/radiant-ml/radiant/internal/tensor"
)

// MSELoss computes mean squared error: mean((predictions - targets)²).
//
// The reduction runs through backend tensor operations so the loss stays on
// the gradient tape; the backward pass reaches every pixel residual.
type MSELoss[B tensor.Backend] struct {
	backend B
}

// NewMSELoss creates a new MSE loss function.
func NewMSELoss[B tensor.Backend](backend B) *MSELoss[B] {
	return &MSELoss[B]{backend: backend}
}

// Forward computes the scalar loss, shape [1].
func (m *MSELoss[B]) Forward(predictions, targets *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	if !predictions.Shape().Equal(targets.Shape()) {
		panic("MSELoss: predictions and targets must have the same shape")
	}
	diff := predictions.Sub(targets)
	return diff.Mul(diff).Mean()
}

// Parameters returns nil (loss functions have no trainable parameters).
func (m *MSELoss[B]) Parameters() []*Parameter[B] {
	return nil
}
