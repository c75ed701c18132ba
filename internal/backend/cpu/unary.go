package cpu

import (
	"fmt"
	"math"

	"github.com/radiant-ml/radiant/internal/parallel"
	"github.com/radiant-ml/radiant/internal/tensor"
)

// Exp computes element-wise e^x.
func (cpu *CPUBackend) Exp(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unaryOp("exp", x, math.Exp)
}

// Log computes element-wise natural logarithm.
func (cpu *CPUBackend) Log(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unaryOp("log", x, math.Log)
}

// Sqrt computes element-wise square root.
func (cpu *CPUBackend) Sqrt(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unaryOp("sqrt", x, math.Sqrt)
}

// Sin computes element-wise sine.
func (cpu *CPUBackend) Sin(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unaryOp("sin", x, math.Sin)
}

// Cos computes element-wise cosine.
func (cpu *CPUBackend) Cos(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unaryOp("cos", x, math.Cos)
}

// ReLU computes element-wise max(0, x).
func (cpu *CPUBackend) ReLU(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unaryOp("relu", x, func(v float64) float64 {
		if v > 0 {
			return v
		}
		return 0
	})
}

// Sigmoid computes element-wise 1/(1+e^-x).
func (cpu *CPUBackend) Sigmoid(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unaryOp("sigmoid", x, func(v float64) float64 {
		return 1.0 / (1.0 + math.Exp(-v))
	})
}

func (cpu *CPUBackend) unaryOp(name string, x *tensor.RawTensor, f func(float64) float64) *tensor.RawTensor {
	result, err := tensor.NewRaw(x.Shape().Clone(), x.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("%s: failed to create result tensor: %v", name, err))
	}

	switch x.DType() {
	case tensor.Float32:
		out, in := result.AsFloat32(), x.AsFloat32()
		parallel.For(len(out), func(i int) {
			out[i] = float32(f(float64(in[i])))
		}, cpu.par)
	case tensor.Float64:
		out, in := result.AsFloat64(), x.AsFloat64()
		parallel.For(len(out), func(i int) {
			out[i] = f(in[i])
		}, cpu.par)
	default:
		panic(name + ": unsupported dtype " + x.DType().String())
	}
	return result
}
