package cpu

import (
	"fmt"

	"github.com/radiant-ml/radiant/internal/parallel"
	"github.com/radiant-ml/radiant/internal/tensor"
)

// MatMul performs 2D matrix multiplication: [m, k] x [k, n] -> [m, n].
// Rows of the output are computed in parallel.
func (cpu *CPUBackend) MatMul(a, b *tensor.RawTensor) *tensor.RawTensor {
	aShape, bShape := a.Shape(), b.Shape()
	if len(aShape) != 2 || len(bShape) != 2 {
		panic(fmt.Sprintf("matmul: expected 2D tensors, got %v x %v", aShape, bShape))
	}
	if aShape[1] != bShape[0] {
		panic(fmt.Sprintf("matmul: inner dimensions mismatch: %v x %v", aShape, bShape))
	}
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("matmul: dtype mismatch %s vs %s", a.DType(), b.DType()))
	}

	m, k, n := aShape[0], aShape[1], bShape[1]
	result, err := tensor.NewRaw(tensor.Shape{m, n}, a.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("matmul: failed to create result tensor: %v", err))
	}

	switch a.DType() {
	case tensor.Float32:
		matmulKernel(result.AsFloat32(), a.AsFloat32(), b.AsFloat32(), m, k, n, cpu.par)
	case tensor.Float64:
		matmulKernel(result.AsFloat64(), a.AsFloat64(), b.AsFloat64(), m, k, n, cpu.par)
	default:
		panic("matmul: unsupported dtype " + a.DType().String())
	}
	return result
}

// matmulKernel uses an ikj loop order so the inner loop streams through
// contiguous rows of b, keeping accesses cache-friendly.
func matmulKernel[T float32 | float64](out, a, b []T, m, k, n int, par parallel.Config) {
	parallel.ForRows(m, func(i int) {
		aRow := a[i*k : (i+1)*k]
		outRow := out[i*n : (i+1)*n]
		for p := 0; p < k; p++ {
			av := aRow[p]
			if av == 0 {
				continue
			}
			bRow := b[p*n : (p+1)*n]
			for j := range outRow {
				outRow[j] += av * bRow[j]
			}
		}
	}, par)
}
