package render

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/radiant-ml/radiant/internal/tensor"
)

// infiniteDelta closes the last sample interval; anything remaining past the
// final sample is attributed to it.
const infiniteDelta = 1e10

// transmittanceEpsilon keeps the cumulative product away from exact zero
// once a sample saturates at alpha = 1.
const transmittanceEpsilon = 1e-10

// Result holds the per-ray outputs of one compositing pass. Ray ordering
// matches the input batch exactly.
type Result[B tensor.Backend] struct {
	RGB       *tensor.Tensor[float32, B] // [R, 3]
	Disparity *tensor.Tensor[float32, B] // [R]
	Acc       *tensor.Tensor[float32, B] // [R] accumulated opacity
	Depth     *tensor.Tensor[float32, B] // [R]
	Weights   *tensor.Tensor[float32, B] // [R, S] for the importance resampler
}

// Composite turns raw per-sample network outputs into per-ray color, depth,
// disparity and opacity by front-to-back alpha compositing.
//
//	alpha_i  = 1 - exp(-relu(sigma_i + noise) * delta_i)
//	T_i      = prod_{j<i} (1 - alpha_j + eps)
//	weight_i = alpha_i * T_i
//
// raw is [R, S, C] with RGB in channels 0..2 and density in channel 3;
// depths is [R, S]; dirs is [R, 3] and scales the deltas by each ray's
// direction norm. noiseStd > 0 adds Gaussian noise to densities before
// activation (training only). Everything here runs through backend tensor
// operations so gradients flow back into raw.
func Composite[B tensor.Backend](raw, depths, dirs *tensor.Tensor[float32, B], noiseStd float64, whiteBkgd bool, rng *rand.Rand, backend B) *Result[B] {
	shape := raw.Shape()
	if len(shape) != 3 || shape[2] < 4 {
		panic(fmt.Sprintf("render: raw output must be [R, S, C>=4], got %v", shape))
	}
	r, s, c := shape[0], shape[1], shape[2]
	if !depths.Shape().Equal(tensor.Shape{r, s}) {
		panic(fmt.Sprintf("render: depths %v do not match raw output %v", depths.Shape(), shape))
	}

	act, ok := any(backend).(interface {
		tensor.ReLUBackend
		tensor.SigmoidBackend
	})
	if !ok {
		panic("render: backend must implement ReLU and Sigmoid")
	}

	deltas := sampleDeltas(depths, dirs, backend)

	// Channel extraction as matmul with constant selectors keeps the slice
	// on the gradient tape.
	flat := raw.Reshape(r*s, c)
	rgbRaw := act.Sigmoid(flat.MatMul(selector[B](c, 0, 3, backend)).Raw())
	rgb := tensor.New[float32, B](rgbRaw, backend).Reshape(r, s, 3)
	sigma := flat.MatMul(selector[B](c, 3, 1, backend)).Reshape(r, s)

	if noiseStd > 0 {
		noise := tensor.Randn[float32](tensor.Shape{r, s}, rng, backend).MulScalar(float32(noiseStd))
		sigma = sigma.Add(noise)
	}

	active := tensor.New[float32, B](act.ReLU(sigma.Raw()), backend)
	negOptical := active.Mul(deltas).MulScalar(-1)
	alpha := negOptical.Exp().MulScalar(-1).AddScalar(1) // 1 - exp(-sigma*delta)

	trans := alpha.MulScalar(-1).AddScalar(1 + transmittanceEpsilon).CumprodExclusive()
	weights := alpha.Mul(trans)

	rgbMap := weights.Unsqueeze(-1).Mul(rgb).SumDim(1, false) // [R, 3]
	depthMap := weights.Mul(depths).SumDim(1, false)          // [R]
	acc := weights.SumDim(1, false)                           // [R]

	disparity := tensor.Ones[float32](tensor.Shape{r}, backend).
		Div(depthMap.Div(acc).MaximumScalar(1e-10))

	if whiteBkgd {
		background := acc.MulScalar(-1).AddScalar(1).Unsqueeze(-1) // [R, 1]
		rgbMap = rgbMap.Add(background)
	}

	return &Result[B]{
		RGB:       rgbMap,
		Disparity: disparity,
		Acc:       acc,
		Depth:     depthMap,
		Weights:   weights,
	}
}

// sampleDeltas computes consecutive depth differences scaled by the ray
// direction norm, with an effectively infinite delta for the last sample.
// Deltas are constants; no gradients flow through them.
func sampleDeltas[B tensor.Backend](depths, dirs *tensor.Tensor[float32, B], backend B) *tensor.Tensor[float32, B] {
	shape := depths.Shape()
	r, s := shape[0], shape[1]

	out, err := tensor.NewRaw(tensor.Shape{r, s}, tensor.Float32, backend.Device())
	if err != nil {
		panic(fmt.Sprintf("render: failed to allocate deltas: %v", err))
	}

	z := depths.Data()
	d := dirs.Data()
	deltas := out.AsFloat32()
	for row := 0; row < r; row++ {
		norm := float32(math.Sqrt(float64(d[row*3]*d[row*3] + d[row*3+1]*d[row*3+1] + d[row*3+2]*d[row*3+2])))
		for i := 0; i < s-1; i++ {
			deltas[row*s+i] = (z[row*s+i+1] - z[row*s+i]) * norm
		}
		deltas[row*s+s-1] = infiniteDelta * norm
	}
	return tensor.New[float32, B](out, backend)
}

// selector builds a constant [channels, width] matrix picking channels
// [start, start+width) out of the last dimension.
func selector[B tensor.Backend](channels, start, width int, backend B) *tensor.Tensor[float32, B] {
	raw, err := tensor.NewRaw(tensor.Shape{channels, width}, tensor.Float32, backend.Device())
	if err != nil {
		panic(fmt.Sprintf("render: failed to allocate channel selector: %v", err))
	}
	data := raw.AsFloat32()
	for j := 0; j < width; j++ {
		data[(start+j)*width+j] = 1
	}
	return tensor.New[float32, B](raw, backend)
}
