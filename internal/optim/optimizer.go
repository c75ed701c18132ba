// Package optim implements the optimization algorithms used for training.
//
// Provided optimizers:
//   - Adam: adaptive moment estimation, the default for radiance fields
//   - SGD: plain stochastic gradient descent with optional momentum
//
// Design follows PyTorch's torch.optim adapted for Go with type safety.
package optim

import (
	"github.com/radiant-ml/radiant/internal/nn"
	"github.com/radiant-ml/radiant/internal/tensor"
)

// Optimizer updates model parameters from computed gradients.
type Optimizer interface {
	// Step applies gradient updates to all parameters in-place. The map
	// comes straight from autodiff.Backward.
	Step(grads map[*tensor.RawTensor]*tensor.RawTensor)

	// ZeroGrad clears all parameter gradients. Call before each backward
	// pass to prevent accumulation across iterations.
	ZeroGrad()

	// GetLR returns the current learning rate.
	GetLR() float32
}

// getGradient retrieves the gradient for a parameter, or nil if the
// parameter was not part of the computation graph.
func getGradient[B tensor.Backend](param *nn.Parameter[B], grads map[*tensor.RawTensor]*tensor.RawTensor) *tensor.RawTensor {
	if param == nil {
		return nil
	}
	return grads[param.Tensor().Raw()]
}
