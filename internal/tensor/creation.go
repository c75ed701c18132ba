package tensor

import (
	"math"
	"math/rand"
)

// Zeros creates a tensor filled with zeros.
func Zeros[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	var dummy T
	raw, err := NewRaw(shape, inferDataType(dummy), b.Device())
	if err != nil {
		panic(err)
	}
	return New[T, B](raw, b)
}

// Ones creates a tensor filled with ones.
func Ones[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return Full[T, B](shape, T(1), b)
}

// Full creates a tensor filled with a specific value.
func Full[T DType, B Backend](shape Shape, value T, b B) *Tensor[T, B] {
	t := Zeros[T, B](shape, b)
	data := t.Data()
	for i := range data {
		data[i] = value
	}
	return t
}

// Randn creates a tensor with values drawn from N(0, 1) using the given
// source. Only float types are supported. math/rand is intentional:
// training noise must be reproducible under a fixed seed.
func Randn[T DType, B Backend](shape Shape, rng *rand.Rand, b B) *Tensor[T, B] {
	t := Zeros[T, B](shape, b)
	data := t.Data()
	var dummy T
	switch any(dummy).(type) {
	case float32:
		d := any(data).([]float32)
		for i := range d {
			d[i] = float32(rng.NormFloat64())
		}
	case float64:
		d := any(data).([]float64)
		for i := range d {
			d[i] = rng.NormFloat64()
		}
	default:
		panic("Randn only supports float32 and float64 types")
	}
	return t
}

// Rand creates a tensor with values uniformly distributed in [0, 1).
// Only float types are supported.
func Rand[T DType, B Backend](shape Shape, rng *rand.Rand, b B) *Tensor[T, B] {
	t := Zeros[T, B](shape, b)
	data := t.Data()
	var dummy T
	switch any(dummy).(type) {
	case float32:
		d := any(data).([]float32)
		for i := range d {
			d[i] = float32(rng.Float64())
		}
	case float64:
		d := any(data).([]float64)
		for i := range d {
			d[i] = rng.Float64()
		}
	default:
		panic("Rand only supports float32 and float64 types")
	}
	return t
}

// Linspace creates a 1D tensor of n evenly spaced values from start to end
// inclusive. Only float types are supported.
func Linspace[T DType, B Backend](start, end T, n int, b B) *Tensor[T, B] {
	if n <= 0 {
		panic("Linspace: n must be positive")
	}
	t := Zeros[T, B](Shape{n}, b)
	data := t.Data()
	if n == 1 {
		data[0] = start
		return t
	}
	var dummy T
	switch any(dummy).(type) {
	case float32:
		d := any(data).([]float32)
		s, e := float64(any(start).(float32)), float64(any(end).(float32))
		step := (e - s) / float64(n-1)
		for i := range d {
			d[i] = float32(s + float64(i)*step)
		}
	case float64:
		d := any(data).([]float64)
		s, e := any(start).(float64), any(end).(float64)
		step := (e - s) / float64(n-1)
		for i := range d {
			d[i] = s + float64(i)*step
		}
	default:
		panic("Linspace only supports float32 and float64 types")
	}
	return t
}

// Arange creates a 1D tensor with values from start to end (exclusive).
func Arange[T DType, B Backend](start, end T, b B) *Tensor[T, B] {
	n := int(math.Ceil(float64(end) - float64(start)))
	if n <= 0 {
		panic("Arange: end must be greater than start")
	}
	t := Zeros[T, B](Shape{n}, b)
	data := t.Data()
	for i := range data {
		data[i] = start + T(i)
	}
	return t
}
