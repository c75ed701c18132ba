// Package nn implements the neural network building blocks of the renderer.
//
// Building blocks:
//   - Module interface: base interface for all NN components
//   - Parameter: trainable parameters with gradient tracking
//   - Linear: fully connected layer
//   - Activations: ReLU, Sigmoid
//   - MSELoss: mean squared error over rendered pixels
//
// Design follows PyTorch's nn.Module, adapted for Go generics.
package nn

import (
	"github.com/radiant-ml/radiant/internal/tensor"
)

// Module is the base interface for all neural network components.
//
// Modules compose to build larger architectures; Parameters must return the
// trainable parameters of the module and all nested modules.
type Module[B tensor.Backend] interface {
	// Forward computes the output of the module given an input tensor.
	Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B]

	// Parameters returns all trainable parameters of this module.
	// Modules without trainable state return an empty slice.
	Parameters() []*Parameter[B]
}
