package cpu

import (
	"fmt"

	"github.com/radiant-ml/radiant/internal/parallel"
	"github.com/radiant-ml/radiant/internal/tensor"
)

// Sum reduces all elements to a scalar tensor of shape [1].
func (cpu *CPUBackend) Sum(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.fullReduce("sum", x, false)
}

// Mean reduces all elements to their arithmetic mean, shape [1].
func (cpu *CPUBackend) Mean(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.fullReduce("mean", x, true)
}

func (cpu *CPUBackend) fullReduce(name string, x *tensor.RawTensor, mean bool) *tensor.RawTensor {
	result, err := tensor.NewRaw(tensor.Shape{1}, x.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("%s: failed to create result tensor: %v", name, err))
	}

	n := x.Shape().NumElements()
	var total float64
	switch x.DType() {
	case tensor.Float32:
		for _, v := range x.AsFloat32() {
			total += float64(v)
		}
	case tensor.Float64:
		for _, v := range x.AsFloat64() {
			total += v
		}
	default:
		panic(name + ": unsupported dtype " + x.DType().String())
	}
	if mean && n > 0 {
		total /= float64(n)
	}

	switch x.DType() {
	case tensor.Float32:
		result.AsFloat32()[0] = float32(total)
	case tensor.Float64:
		result.AsFloat64()[0] = total
	}
	return result
}

// SumDim sums along a single dimension. With keepDim the reduced dimension
// stays as size 1, otherwise it is removed from the shape.
func (cpu *CPUBackend) SumDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	return cpu.dimReduce("sumdim", x, dim, keepDim, false)
}

// MeanDim averages along a single dimension.
func (cpu *CPUBackend) MeanDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	return cpu.dimReduce("meandim", x, dim, keepDim, true)
}

func (cpu *CPUBackend) dimReduce(name string, x *tensor.RawTensor, dim int, keepDim, mean bool) *tensor.RawTensor {
	shape := x.Shape()
	dim = shape.NormalizeDim(dim)

	outShape := make(tensor.Shape, 0, len(shape))
	for i, s := range shape {
		if i == dim {
			if keepDim {
				outShape = append(outShape, 1)
			}
			continue
		}
		outShape = append(outShape, s)
	}
	if len(outShape) == 0 {
		outShape = tensor.Shape{1}
	}

	result, err := tensor.NewRaw(outShape, x.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("%s: failed to create result tensor: %v", name, err))
	}

	// Decompose the input as [outer, reduce, inner] around the reduced dim.
	outer, inner := 1, 1
	for i := 0; i < dim; i++ {
		outer *= shape[i]
	}
	reduceN := shape[dim]
	for i := dim + 1; i < len(shape); i++ {
		inner *= shape[i]
	}

	switch x.DType() {
	case tensor.Float32:
		dimReduceKernel(result.AsFloat32(), x.AsFloat32(), outer, reduceN, inner, mean, cpu.par)
	case tensor.Float64:
		dimReduceKernel(result.AsFloat64(), x.AsFloat64(), outer, reduceN, inner, mean, cpu.par)
	default:
		panic(name + ": unsupported dtype " + x.DType().String())
	}
	return result
}

func dimReduceKernel[T float32 | float64](out, in []T, outer, reduceN, inner int, mean bool, par parallel.Config) {
	parallel.ForRows(outer, func(o int) {
		base := o * reduceN * inner
		outBase := o * inner
		for j := 0; j < inner; j++ {
			var acc float64
			for r := 0; r < reduceN; r++ {
				acc += float64(in[base+r*inner+j])
			}
			if mean && reduceN > 0 {
				acc /= float64(reduceN)
			}
			out[outBase+j] = T(acc)
		}
	}, par)
}
