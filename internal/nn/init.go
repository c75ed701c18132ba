package nn

import (
	"math"
	"math/rand"

	"github.com/radiant-ml/radiant/internal/tensor"
)

// Xavier initializes a weight tensor from the Glorot uniform distribution
// U(-sqrt(6/(fanIn+fanOut)), +sqrt(6/(fanIn+fanOut))), keeping activation
// variance stable across layers.
//
// The rng is threaded through so a seeded run produces identical weights.
func Xavier[B tensor.Backend](fanIn, fanOut int, shape tensor.Shape, rng *rand.Rand, backend B) *tensor.Tensor[float32, B] {
	bound := math.Sqrt(6.0 / float64(fanIn+fanOut))

	t, err := tensor.NewRaw(shape, tensor.Float32, backend.Device())
	if err != nil {
		panic(err)
	}
	data := t.AsFloat32()
	for i := range data {
		data[i] = float32((rng.Float64()*2.0 - 1.0) * bound)
	}
	return tensor.New[float32, B](t, backend)
}

// Zeros creates a zero-filled float32 tensor, the default bias init.
func Zeros[B tensor.Backend](shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return tensor.Zeros[float32](shape, backend)
}

// Ones creates a one-filled float32 tensor.
func Ones[B tensor.Backend](shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return tensor.Ones[float32](shape, backend)
}
