package autodiff

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/radiant-ml/radiant/internal/backend/cpu"
	"github.com/radiant-ml/radiant/internal/tensor"
)

// checkGradient compares analytic gradients against central finite
// differences of a scalar-valued function of one input.
func checkGradient(t *testing.T, shape tensor.Shape, data []float64, forward func(b tensor.Backend, x *tensor.RawTensor) *tensor.RawTensor, tol float64) {
	t.Helper()

	newInput := func() *tensor.RawTensor {
		raw, err := tensor.NewRaw(shape, tensor.Float64, tensor.CPU)
		require.NoError(t, err)
		copy(raw.AsFloat64(), data)
		return raw
	}

	// Analytic gradient via the tape.
	ad := New(cpu.New())
	ad.Tape().StartRecording()
	x := newInput()
	loss := forward(ad, x)
	require.Equal(t, 1, loss.NumElements(), "forward must reduce to a scalar")

	seed, err := tensor.NewRaw(tensor.Shape{1}, tensor.Float64, tensor.CPU)
	require.NoError(t, err)
	seed.AsFloat64()[0] = 1
	grads := ad.Tape().Backward(seed, ad)
	require.Contains(t, grads, x)
	analytic := grads[x].AsFloat64()

	// Numerical gradient via central differences on the plain backend.
	plain := cpu.New()
	const eps = 1e-6
	for i := range data {
		perturbed := newInput()
		perturbed.AsFloat64()[i] += eps
		plus := forward(plain, perturbed).AsFloat64()[0]

		perturbed = newInput()
		perturbed.AsFloat64()[i] -= eps
		minus := forward(plain, perturbed).AsFloat64()[0]

		numeric := (plus - minus) / (2 * eps)
		require.InDelta(t, numeric, analytic[i], tol, "gradient mismatch at element %d", i)
	}
}

func TestGradientCheckSigmoidSum(t *testing.T) {
	checkGradient(t, tensor.Shape{4}, []float64{-2, -0.3, 0.7, 1.5},
		func(b tensor.Backend, x *tensor.RawTensor) *tensor.RawTensor {
			sig, ok := b.(tensor.SigmoidBackend)
			require.True(t, ok)
			return b.Sum(sig.Sigmoid(x))
		}, 1e-5)
}

func TestGradientCheckExpMean(t *testing.T) {
	checkGradient(t, tensor.Shape{3}, []float64{-1, 0.5, 1.2},
		func(b tensor.Backend, x *tensor.RawTensor) *tensor.RawTensor {
			return b.Mean(b.Exp(x))
		}, 1e-5)
}

func TestGradientCheckCumprodExclusive(t *testing.T) {
	// Values in the range seen by the compositor's transmittance scan.
	checkGradient(t, tensor.Shape{1, 4}, []float64{0.9, 0.6, 0.3, 0.8},
		func(b tensor.Backend, x *tensor.RawTensor) *tensor.RawTensor {
			// Weight the scan so every position contributes differently.
			scan := b.CumprodExclusive(x)
			coef, err := tensor.NewRaw(tensor.Shape{1, 4}, tensor.Float64, tensor.CPU)
			require.NoError(t, err)
			copy(coef.AsFloat64(), []float64{1, 2, 3, 4})
			return b.Sum(b.Mul(scan, coef))
		}, 1e-5)
}

func TestGradientCheckMatMulChain(t *testing.T) {
	checkGradient(t, tensor.Shape{2, 3}, []float64{0.1, -0.2, 0.3, 0.4, -0.5, 0.6},
		func(b tensor.Backend, x *tensor.RawTensor) *tensor.RawTensor {
			w, err := tensor.NewRaw(tensor.Shape{3, 2}, tensor.Float64, tensor.CPU)
			require.NoError(t, err)
			copy(w.AsFloat64(), []float64{1, -1, 0.5, 2, -0.25, 0.75})

			relu, ok := b.(tensor.ReLUBackend)
			require.True(t, ok)
			return b.Mean(relu.ReLU(b.MatMul(x, w)))
		}, 1e-5)
}

func TestGradientCheckCompositeAlpha(t *testing.T) {
	// Miniature compositing pipeline over raw densities:
	// alpha = 1 - exp(-relu(sigma)), weights = alpha * cumprodExclusive(1 - alpha + 1e-10).
	checkGradient(t, tensor.Shape{1, 4}, []float64{0.5, 1.2, 0.01, 2.0},
		func(b tensor.Backend, x *tensor.RawTensor) *tensor.RawTensor {
			relu, ok := b.(tensor.ReLUBackend)
			require.True(t, ok)
			negSigma := b.MulScalar(relu.ReLU(x), -1.0)
			alpha := b.MulScalar(b.AddScalar(b.Exp(negSigma), -1.0), -1.0)
			trans := b.CumprodExclusive(b.AddScalar(b.MulScalar(alpha, -1.0), 1.0+1e-10))
			return b.Sum(b.Mul(alpha, trans))
		}, 1e-4)
}
