package cpu

import (
	"fmt"

	"github.com/radiant-ml/radiant/internal/parallel"
	"github.com/radiant-ml/radiant/internal/tensor"
)

// CumprodExclusive computes the exclusive cumulative product along the last
// dimension: out[..., i] = prod(x[..., :i]), with out[..., 0] = 1. Rows are
// independent and processed in parallel.
func (cpu *CPUBackend) CumprodExclusive(x *tensor.RawTensor) *tensor.RawTensor {
	shape := x.Shape()
	if len(shape) == 0 {
		panic("cumprodexclusive: cannot scan a scalar tensor")
	}

	result, err := tensor.NewRaw(shape.Clone(), x.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("cumprodexclusive: failed to create result tensor: %v", err))
	}

	lastDim := shape[len(shape)-1]
	rows := shape.NumElements() / lastDim

	switch x.DType() {
	case tensor.Float32:
		cumprodExclusiveKernel(result.AsFloat32(), x.AsFloat32(), rows, lastDim, cpu.par)
	case tensor.Float64:
		cumprodExclusiveKernel(result.AsFloat64(), x.AsFloat64(), rows, lastDim, cpu.par)
	default:
		panic("cumprodexclusive: unsupported dtype " + x.DType().String())
	}
	return result
}

func cumprodExclusiveKernel[T float32 | float64](out, in []T, rows, n int, par parallel.Config) {
	parallel.ForRows(rows, func(r int) {
		base := r * n
		acc := T(1)
		for i := 0; i < n; i++ {
			out[base+i] = acc
			acc *= in[base+i]
		}
	}, par)
}
