// Package cpu implements the pure-Go CPU compute backend.
//
// Kernels are batched over the flattened element (or ray) dimension and
// dispatched across a worker pool; this is where all of the renderer's
// data parallelism lives.
package cpu

import (
	"fmt"

	"github.com/radiant-ml/radiant/internal/parallel"
	"github.com/radiant-ml/radiant/internal/tensor"
)

// CPUBackend implements tensor operations on CPU.
type CPUBackend struct {
	device tensor.Device
	par    parallel.Config
}

// New creates a new CPU backend with default parallelism.
func New() *CPUBackend {
	return &CPUBackend{
		device: tensor.CPU,
		par:    parallel.DefaultConfig(),
	}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string { return "CPU" }

// Device returns the compute device.
func (cpu *CPUBackend) Device() tensor.Device { return cpu.device }

// Add performs element-wise addition with NumPy-style broadcasting.
func (cpu *CPUBackend) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binaryOp("add", a, b, func(x, y float64) float64 { return x + y })
}

// Sub performs element-wise subtraction with broadcasting.
func (cpu *CPUBackend) Sub(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binaryOp("sub", a, b, func(x, y float64) float64 { return x - y })
}

// Mul performs element-wise multiplication with broadcasting.
func (cpu *CPUBackend) Mul(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binaryOp("mul", a, b, func(x, y float64) float64 { return x * y })
}

// Div performs element-wise division with broadcasting.
func (cpu *CPUBackend) Div(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binaryOp("div", a, b, func(x, y float64) float64 { return x / y })
}

// binaryOp applies f element-wise with broadcasting. The float64 closure is
// the scalar kernel; the fast same-shape float32 path avoids the conversion.
func (cpu *CPUBackend) binaryOp(name string, a, b *tensor.RawTensor, f func(x, y float64) float64) *tensor.RawTensor {
	outShape, needsBroadcast, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("%s: %v", name, err))
	}
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("%s: dtype mismatch %s vs %s", name, a.DType(), b.DType()))
	}

	result, err := tensor.NewRaw(outShape, a.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("%s: failed to create result tensor: %v", name, err))
	}

	if !needsBroadcast && a.Shape().Equal(b.Shape()) {
		cpu.binaryVectorized(name, result, a, b, f)
		return result
	}
	cpu.binaryBroadcast(name, result, a, b, outShape, f)
	return result
}

func (cpu *CPUBackend) binaryVectorized(name string, result, a, b *tensor.RawTensor, f func(x, y float64) float64) {
	switch a.DType() {
	case tensor.Float32:
		out, x, y := result.AsFloat32(), a.AsFloat32(), b.AsFloat32()
		parallel.For(len(out), func(i int) {
			out[i] = float32(f(float64(x[i]), float64(y[i])))
		}, cpu.par)
	case tensor.Float64:
		out, x, y := result.AsFloat64(), a.AsFloat64(), b.AsFloat64()
		parallel.For(len(out), func(i int) {
			out[i] = f(x[i], y[i])
		}, cpu.par)
	default:
		panic(name + ": unsupported dtype " + a.DType().String())
	}
}

func (cpu *CPUBackend) binaryBroadcast(name string, result, a, b *tensor.RawTensor, outShape tensor.Shape, f func(x, y float64) float64) {
	aIdx := newBroadcastIndexer(a.Shape(), outShape)
	bIdx := newBroadcastIndexer(b.Shape(), outShape)

	switch a.DType() {
	case tensor.Float32:
		out, x, y := result.AsFloat32(), a.AsFloat32(), b.AsFloat32()
		parallel.For(len(out), func(i int) {
			out[i] = float32(f(float64(x[aIdx.srcIndex(i)]), float64(y[bIdx.srcIndex(i)])))
		}, cpu.par)
	case tensor.Float64:
		out, x, y := result.AsFloat64(), a.AsFloat64(), b.AsFloat64()
		parallel.For(len(out), func(i int) {
			out[i] = f(x[aIdx.srcIndex(i)], y[bIdx.srcIndex(i)])
		}, cpu.par)
	default:
		panic(name + ": unsupported dtype " + a.DType().String())
	}
}
