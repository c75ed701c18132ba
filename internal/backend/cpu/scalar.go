package cpu

import (
	"fmt"

	"github.com/radiant-ml/radiant/internal/tensor"
)

// AddScalar adds a scalar to every element.
func (cpu *CPUBackend) AddScalar(x *tensor.RawTensor, scalar any) *tensor.RawTensor {
	s := toFloat64("addscalar", scalar)
	return cpu.unaryOp("addscalar", x, func(v float64) float64 { return v + s })
}

// SubScalar subtracts a scalar from every element.
func (cpu *CPUBackend) SubScalar(x *tensor.RawTensor, scalar any) *tensor.RawTensor {
	s := toFloat64("subscalar", scalar)
	return cpu.unaryOp("subscalar", x, func(v float64) float64 { return v - s })
}

// MulScalar multiplies every element by a scalar.
func (cpu *CPUBackend) MulScalar(x *tensor.RawTensor, scalar any) *tensor.RawTensor {
	s := toFloat64("mulscalar", scalar)
	return cpu.unaryOp("mulscalar", x, func(v float64) float64 { return v * s })
}

// DivScalar divides every element by a scalar.
func (cpu *CPUBackend) DivScalar(x *tensor.RawTensor, scalar any) *tensor.RawTensor {
	s := toFloat64("divscalar", scalar)
	return cpu.unaryOp("divscalar", x, func(v float64) float64 { return v / s })
}

// MaximumScalar clamps every element from below by a scalar.
func (cpu *CPUBackend) MaximumScalar(x *tensor.RawTensor, scalar any) *tensor.RawTensor {
	s := toFloat64("maximumscalar", scalar)
	return cpu.unaryOp("maximumscalar", x, func(v float64) float64 {
		if v > s {
			return v
		}
		return s
	})
}

func toFloat64(name string, scalar any) float64 {
	switch s := scalar.(type) {
	case float32:
		return float64(s)
	case float64:
		return s
	case int:
		return float64(s)
	case int32:
		return float64(s)
	case int64:
		return float64(s)
	default:
		panic(fmt.Sprintf("%s: unsupported scalar type %T", name, scalar))
	}
}
