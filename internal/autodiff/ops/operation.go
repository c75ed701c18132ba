// Package ops defines the differentiable operations recorded on the
// gradient tape.
//
// Each operation stores the raw tensors of its forward pass and knows how to
// turn an output gradient into input gradients. One operation per file.
package ops

import "github.com/radiant-ml/radiant/internal/tensor"

// Operation is a node in the recorded computation graph.
type Operation interface {
	// Backward computes gradients for the inputs given the output gradient.
	// The returned slice corresponds positionally to Inputs(); a nil entry
	// means no gradient flows to that input.
	Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor

	// Inputs returns the operation's input tensors.
	Inputs() []*tensor.RawTensor

	// Output returns the tensor produced by the forward pass.
	Output() *tensor.RawTensor
}
