package optim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radiant-ml/radiant/internal/autodiff"
	"github.com/radiant-ml/radiant/internal/backend/cpu"
	"github.com/radiant-ml/radiant/internal/nn"
	"github.com/radiant-ml/radiant/internal/tensor"
)

type testBackend = *autodiff.AutodiffBackend[*cpu.CPUBackend]

func quadraticLoss(b testBackend, x *nn.Parameter[testBackend]) map[*tensor.RawTensor]*tensor.RawTensor {
	b.Tape().Clear()
	b.Tape().StartRecording()
	// loss = mean(x²), minimized at x = 0.
	loss := x.Tensor().Mul(x.Tensor()).Mean()
	return autodiff.Backward(loss, b)
}

func TestAdamConvergesOnQuadratic(t *testing.T) {
	b := autodiff.New(cpu.New())
	start, err := tensor.FromSlice([]float32{5, -3}, tensor.Shape{2}, b)
	require.NoError(t, err)
	param := nn.NewParameter("x", start)

	opt := NewAdam([]*nn.Parameter[testBackend]{param}, AdamConfig{LR: 0.1}, b)
	for i := 0; i < 300; i++ {
		grads := quadraticLoss(b, param)
		opt.Step(grads)
		opt.ZeroGrad()
	}

	for _, v := range param.Tensor().Data() {
		assert.InDelta(t, 0, v, 0.05)
	}
	assert.Equal(t, 300, opt.GetTimestep())
}

func TestAdamDefaults(t *testing.T) {
	b := autodiff.New(cpu.New())
	opt := NewAdam(nil, AdamConfig{}, b)
	assert.InDelta(t, 0.001, opt.GetLR(), 1e-9)
}

func TestAdamSkipsParamsWithoutGrad(t *testing.T) {
	b := autodiff.New(cpu.New())
	start, err := tensor.FromSlice([]float32{1, 2}, tensor.Shape{2}, b)
	require.NoError(t, err)
	param := nn.NewParameter("x", start)

	opt := NewAdam([]*nn.Parameter[testBackend]{param}, AdamConfig{LR: 0.1}, b)
	opt.Step(map[*tensor.RawTensor]*tensor.RawTensor{})

	assert.Equal(t, []float32{1, 2}, param.Tensor().Data())
}

func TestAdamSetLR(t *testing.T) {
	b := autodiff.New(cpu.New())
	opt := NewAdam(nil, AdamConfig{LR: 0.01}, b)
	opt.SetLR(0.005)
	assert.InDelta(t, 0.005, opt.GetLR(), 1e-9)
}

func TestSGDStep(t *testing.T) {
	b := autodiff.New(cpu.New())
	start, err := tensor.FromSlice([]float32{1, -1}, tensor.Shape{2}, b)
	require.NoError(t, err)
	param := nn.NewParameter("x", start)

	grad, err := tensor.NewRaw(tensor.Shape{2}, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	copy(grad.AsFloat32(), []float32{2, -2})

	opt := NewSGD([]*nn.Parameter[testBackend]{param}, SGDConfig{LR: 0.5}, b)
	opt.Step(map[*tensor.RawTensor]*tensor.RawTensor{param.Tensor().Raw(): grad})

	assert.Equal(t, []float32{0, 0}, param.Tensor().Data())
}

func TestSGDMomentumAccumulates(t *testing.T) {
	b := autodiff.New(cpu.New())
	start, err := tensor.FromSlice([]float32{0}, tensor.Shape{1}, b)
	require.NoError(t, err)
	param := nn.NewParameter("x", start)

	grad, err := tensor.NewRaw(tensor.Shape{1}, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	grad.AsFloat32()[0] = 1

	opt := NewSGD([]*nn.Parameter[testBackend]{param}, SGDConfig{LR: 1, Momentum: 0.5}, b)
	grads := map[*tensor.RawTensor]*tensor.RawTensor{param.Tensor().Raw(): grad}

	opt.Step(grads) // velocity 1, x = -1
	opt.Step(grads) // velocity 1.5, x = -2.5
	assert.InDelta(t, -2.5, param.Tensor().Data()[0], 1e-6)
}

var _ Optimizer = (*Adam[testBackend])(nil)
var _ Optimizer = (*SGD[testBackend])(nil)
