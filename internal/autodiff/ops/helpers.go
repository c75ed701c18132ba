package ops

import "github.com/radiant-ml/radiant/internal/tensor"

// reduceBroadcast folds a gradient back down to the target input shape when
// the forward pass broadcast that input.
//
//	forward:  a[N,1] * b[N,S] -> c[N,S]
//	backward: grad_c[N,S] -> grad_a[N,1]  (sum along dim 1)
func reduceBroadcast(grad *tensor.RawTensor, targetShape tensor.Shape, backend tensor.Backend) *tensor.RawTensor {
	gradShape := grad.Shape()
	if gradShape.Equal(targetShape) {
		// Clone so later inplace accumulation cannot alias a shared gradient.
		return grad.Clone()
	}

	result := grad

	// Sum away extra leading dimensions.
	for len(result.Shape()) > len(targetShape) {
		result = backend.SumDim(result, 0, false)
	}

	// Sum along dimensions the input held at size 1.
	for i, target := range targetShape {
		if target == 1 && result.Shape()[i] > 1 {
			result = backend.SumDim(result, i, true)
		}
	}

	if !result.Shape().Equal(targetShape) {
		result = backend.Reshape(result, targetShape)
	}
	return result
}

// onesLike returns a tensor of ones matching x's shape and dtype.
func onesLike(x *tensor.RawTensor, backend tensor.Backend) *tensor.RawTensor {
	zeros, err := tensor.NewRaw(x.Shape().Clone(), x.DType(), backend.Device())
	if err != nil {
		panic("ops: failed to allocate gradient tensor: " + err.Error())
	}
	return backend.AddScalar(zeros, 1.0)
}
