package cpu

import (
	"fmt"

	"github.com/radiant-ml/radiant/internal/parallel"
	"github.com/radiant-ml/radiant/internal/tensor"
)

// Reshape returns a tensor with the same data and a new shape. One dimension
// may be -1 and is inferred from the element count.
func (cpu *CPUBackend) Reshape(t *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	resolved := resolveReshape(t.Shape(), newShape)
	result := t.Clone()
	if err := result.SetShape(resolved); err != nil {
		panic(fmt.Sprintf("reshape: %v", err))
	}
	return result
}

func resolveReshape(old, newShape tensor.Shape) tensor.Shape {
	resolved := newShape.Clone()
	inferIdx := -1
	known := 1
	for i, s := range resolved {
		if s == -1 {
			if inferIdx != -1 {
				panic(fmt.Sprintf("reshape: multiple -1 dimensions in %v", newShape))
			}
			inferIdx = i
			continue
		}
		known *= s
	}
	total := old.NumElements()
	if inferIdx != -1 {
		if known == 0 || total%known != 0 {
			panic(fmt.Sprintf("reshape: cannot infer dimension for %v from %v", newShape, old))
		}
		resolved[inferIdx] = total / known
		known *= resolved[inferIdx]
	}
	if known != total {
		panic(fmt.Sprintf("reshape: cannot reshape %v (%d elements) to %v", old, total, newShape))
	}
	return resolved
}

// Transpose permutes dimensions. Without axes it reverses them (by far the
// common 2D case); with axes it applies the given permutation.
func (cpu *CPUBackend) Transpose(t *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	shape := t.Shape()
	ndim := len(shape)

	if len(axes) == 0 {
		axes = make([]int, ndim)
		for i := range axes {
			axes[i] = ndim - 1 - i
		}
	}
	if len(axes) != ndim {
		panic(fmt.Sprintf("transpose: got %d axes for %d dimensions", len(axes), ndim))
	}
	seen := make([]bool, ndim)
	for _, ax := range axes {
		if ax < 0 || ax >= ndim || seen[ax] {
			panic(fmt.Sprintf("transpose: invalid axes %v for shape %v", axes, shape))
		}
		seen[ax] = true
	}

	outShape := make(tensor.Shape, ndim)
	for i, ax := range axes {
		outShape[i] = shape[ax]
	}

	result, err := tensor.NewRaw(outShape, t.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("transpose: failed to create result tensor: %v", err))
	}

	inStrides := shape.ComputeStrides()
	outStrides := outShape.ComputeStrides()
	permStrides := make([]int, ndim)
	for i, ax := range axes {
		permStrides[i] = inStrides[ax]
	}

	switch t.DType() {
	case tensor.Float32:
		transposeKernel(result.AsFloat32(), t.AsFloat32(), outStrides, permStrides, cpu.par)
	case tensor.Float64:
		transposeKernel(result.AsFloat64(), t.AsFloat64(), outStrides, permStrides, cpu.par)
	default:
		panic("transpose: unsupported dtype " + t.DType().String())
	}
	return result
}

func transposeKernel[T float32 | float64](out, in []T, outStrides, permStrides []int, par parallel.Config) {
	parallel.For(len(out), func(i int) {
		src := 0
		rem := i
		for d := range outStrides {
			src += (rem / outStrides[d]) * permStrides[d]
			rem %= outStrides[d]
		}
		out[i] = in[src]
	}, par)
}

// Expand broadcasts a tensor to a larger shape, materializing the result.
func (cpu *CPUBackend) Expand(x *tensor.RawTensor, shape tensor.Shape) *tensor.RawTensor {
	if _, _, err := tensor.BroadcastShapes(x.Shape(), shape); err != nil {
		panic(fmt.Sprintf("expand: cannot expand %v to %v: %v", x.Shape(), shape, err))
	}

	result, err := tensor.NewRaw(shape.Clone(), x.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("expand: failed to create result tensor: %v", err))
	}

	idx := newBroadcastIndexer(x.Shape(), shape)
	switch x.DType() {
	case tensor.Float32:
		out, in := result.AsFloat32(), x.AsFloat32()
		parallel.For(len(out), func(i int) {
			out[i] = in[idx.srcIndex(i)]
		}, cpu.par)
	case tensor.Float64:
		out, in := result.AsFloat64(), x.AsFloat64()
		parallel.For(len(out), func(i int) {
			out[i] = in[idx.srcIndex(i)]
		}, cpu.par)
	default:
		panic("expand: unsupported dtype " + x.DType().String())
	}
	return result
}

// Narrow returns rows [start, start+length) of the leading dimension as a
// zero-copy view sharing the input's buffer.
func (cpu *CPUBackend) Narrow(x *tensor.RawTensor, start, length int) *tensor.RawTensor {
	shape := x.Shape()
	if len(shape) == 0 {
		panic("narrow: cannot narrow a scalar tensor")
	}
	if start < 0 || length < 0 || start+length > shape[0] {
		panic(fmt.Sprintf("narrow: range [%d, %d) out of bounds for leading dimension %d", start, start+length, shape[0]))
	}

	rowElems := 1
	for _, s := range shape[1:] {
		rowElems *= s
	}
	viewShape := shape.Clone()
	viewShape[0] = length
	return x.View(start*rowElems, viewShape)
}
