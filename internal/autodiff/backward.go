package autodiff

import (
	"fmt"

	"github.com/radiant-ml/radiant/internal/tensor"
)

// BackwardCapable is satisfied by backends that can run a backward pass.
// AutodiffBackend implements it.
type BackwardCapable interface {
	tensor.Backend
	GetTape() *GradientTape
}

// GetTape returns the gradient tape.
func (b *AutodiffBackend[B]) GetTape() *GradientTape { return b.tape }

// Backward seeds the output gradient with ones and walks the tape, returning
// a map from each participating RawTensor to its accumulated gradient.
//
// The output is typically a scalar loss; seeding with ones makes the result
// dL/dx for every recorded tensor x.
func Backward[T tensor.DType, B BackwardCapable](t *tensor.Tensor[T, B], backend B) map[*tensor.RawTensor]*tensor.RawTensor {
	tape := backend.GetTape()
	if tape.NumOps() == 0 {
		panic("backward: no operations recorded (did you forget to call Tape().StartRecording()?)")
	}

	outputGrad, err := tensor.NewRaw(t.Shape(), t.DType(), backend.Device())
	if err != nil {
		panic(fmt.Sprintf("backward: failed to create output gradient: %v", err))
	}
	switch t.DType() {
	case tensor.Float32:
		data := outputGrad.AsFloat32()
		for i := range data {
			data[i] = 1
		}
	case tensor.Float64:
		data := outputGrad.AsFloat64()
		for i := range data {
			data[i] = 1
		}
	default:
		panic(fmt.Sprintf("backward: unsupported dtype %s", t.DType()))
	}

	return tape.Backward(outputGrad, backend)
}
