package nerf

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radiant-ml/radiant/internal/autodiff"
	"github.com/radiant-ml/radiant/internal/backend/cpu"
	"github.com/radiant-ml/radiant/internal/tensor"
)

func smallConfig() NetworkConfig {
	return NetworkConfig{
		Depth:        3,
		Width:        16,
		InputCh:      6,
		InputChViews: 4,
		Skips:        []int{1},
		UseViewdirs:  true,
	}
}

func randomInput(t *testing.T, b *cpu.CPUBackend, rows, cols int, rng *rand.Rand) *tensor.Tensor[float32, *cpu.CPUBackend] {
	t.Helper()
	data := make([]float32, rows*cols)
	for i := range data {
		data[i] = rng.Float32()*2 - 1
	}
	x, err := tensor.FromSlice(data, tensor.Shape{rows, cols}, b)
	require.NoError(t, err)
	return x
}

func TestNetworkForwardShape(t *testing.T) {
	b := cpu.New()
	rng := rand.New(rand.NewSource(1))

	net, err := NewNetwork(smallConfig(), rng, b)
	require.NoError(t, err)
	assert.Equal(t, 4, net.OutputCh())

	out := net.Forward(randomInput(t, b, 5, 10, rng))
	assert.Equal(t, tensor.Shape{5, 4}, out.Shape())
}

func TestNetworkViewIndependentHead(t *testing.T) {
	b := cpu.New()
	rng := rand.New(rand.NewSource(2))

	cfg := smallConfig()
	cfg.UseViewdirs = false
	cfg.InputChViews = 0
	cfg.OutputCh = 5

	net, err := NewNetwork(cfg, rng, b)
	require.NoError(t, err)
	assert.Equal(t, 5, net.OutputCh())

	out := net.Forward(randomInput(t, b, 3, 6, rng))
	assert.Equal(t, tensor.Shape{3, 5}, out.Shape())
}

func TestNetworkRejectsWrongInputWidth(t *testing.T) {
	b := cpu.New()
	rng := rand.New(rand.NewSource(3))

	net, err := NewNetwork(smallConfig(), rng, b)
	require.NoError(t, err)

	assert.Panics(t, func() {
		net.Forward(randomInput(t, b, 2, 7, rng))
	})
}

func TestNetworkConfigValidation(t *testing.T) {
	cfg := smallConfig()
	cfg.Depth = 0
	assert.Error(t, cfg.Validate())

	cfg = smallConfig()
	cfg.Skips = []int{2} // last layer has no successor to re-widen
	assert.Error(t, cfg.Validate())

	cfg = smallConfig()
	cfg.UseViewdirs = false
	cfg.OutputCh = 2
	assert.Error(t, cfg.Validate())

	assert.NoError(t, smallConfig().Validate())
}

func TestNetworkParameterCount(t *testing.T) {
	b := cpu.New()
	rng := rand.New(rand.NewSource(4))

	net, err := NewNetwork(smallConfig(), rng, b)
	require.NoError(t, err)

	// 3 position layers + alpha + feature + 1 view layer + rgb, each with
	// weight and bias.
	assert.Len(t, net.Parameters(), 14)
}

func TestNetworkStateDictRoundTrip(t *testing.T) {
	b := cpu.New()
	cfg := smallConfig()

	src, err := NewNetwork(cfg, rand.New(rand.NewSource(5)), b)
	require.NoError(t, err)
	dst, err := NewNetwork(cfg, rand.New(rand.NewSource(6)), b)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(7))
	x := randomInput(t, b, 4, 10, rng)
	require.NotEqual(t, src.Forward(x).Data(), dst.Forward(x).Data())

	require.NoError(t, dst.LoadStateDict(src.StateDict()))
	assert.InDeltaSlice(t, src.Forward(x).Data(), dst.Forward(x).Data(), 1e-7)
}

func TestNetworkLoadStateDictMissingLayer(t *testing.T) {
	b := cpu.New()
	net, err := NewNetwork(smallConfig(), rand.New(rand.NewSource(8)), b)
	require.NoError(t, err)

	sd := net.StateDict()
	delete(sd, "rgb_linear.weight")
	assert.Error(t, net.LoadStateDict(sd))
}

func TestNetworkGradientsReachAllLayers(t *testing.T) {
	b := autodiff.New(cpu.New())
	rng := rand.New(rand.NewSource(9))

	net, err := NewNetwork(smallConfig(), rng, b)
	require.NoError(t, err)

	data := make([]float32, 2*10)
	for i := range data {
		data[i] = rng.Float32() + 0.1
	}
	x, err := tensor.FromSlice(data, tensor.Shape{2, 10}, b)
	require.NoError(t, err)

	b.Tape().Clear()
	b.Tape().StartRecording()
	loss := net.Forward(x).Mean()
	grads := autodiff.Backward(loss, b)
	b.Tape().StopRecording()

	// The density head bypasses sigmoid and the view branch, so every
	// position layer must still receive gradient through it.
	for _, p := range net.Parameters() {
		if _, ok := grads[p.Tensor().Raw()]; !ok {
			t.Errorf("no gradient for parameter %s", p.Name())
		}
	}
}
