package render

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radiant-ml/radiant/internal/backend/cpu"
	"github.com/radiant-ml/radiant/internal/tensor"
)

// rawOutput builds a [R, S, 4] raw tensor from per-sample (r, g, b, sigma)
// logits.
func rawOutput(t *testing.T, b *cpu.CPUBackend, rows, samples int, data []float32) *tensor.Tensor[float32, *cpu.CPUBackend] {
	t.Helper()
	raw, err := tensor.FromSlice(data, tensor.Shape{rows, samples, 4}, b)
	require.NoError(t, err)
	return raw
}

func unitZRays(t *testing.T, b *cpu.CPUBackend, rows int) *tensor.Tensor[float32, *cpu.CPUBackend] {
	t.Helper()
	data := make([]float32, rows*3)
	for r := 0; r < rows; r++ {
		data[r*3+2] = 1
	}
	dirs, err := tensor.FromSlice(data, tensor.Shape{rows, 3}, b)
	require.NoError(t, err)
	return dirs
}

func TestCompositeZeroDensityIsBackground(t *testing.T) {
	b := cpu.New()
	// Two samples, zero density: nothing absorbs, nothing contributes.
	raw := rawOutput(t, b, 1, 2, []float32{
		0, 0, 0, -100, // sigma logit strongly negative, relu -> 0
		0, 0, 0, -100,
	})
	depths, err := tensor.FromSlice([]float32{1, 2}, tensor.Shape{1, 2}, b)
	require.NoError(t, err)

	black := Composite(raw, depths, unitZRays(t, b, 1), 0, false, nil, b)
	assert.InDeltaSlice(t, []float32{0, 0, 0}, black.RGB.Data(), 1e-6)
	assert.InDelta(t, 0, black.Acc.Data()[0], 1e-6)
	assert.InDeltaSlice(t, []float32{0, 0}, black.Weights.Data(), 1e-6)

	white := Composite(raw, depths, unitZRays(t, b, 1), 0, true, nil, b)
	assert.InDeltaSlice(t, []float32{1, 1, 1}, white.RGB.Data(), 1e-6)
}

func TestCompositeSaturatedSampleTakesItsColor(t *testing.T) {
	b := cpu.New()
	// One sample with huge density: alpha ~= 1, the ray is fully absorbed.
	raw := rawOutput(t, b, 1, 1, []float32{
		10, -10, 0, 1000, // sigmoid -> (~1, ~0, 0.5)
	})
	depths, err := tensor.FromSlice([]float32{1}, tensor.Shape{1, 1}, b)
	require.NoError(t, err)

	got := Composite(raw, depths, unitZRays(t, b, 1), 0, false, nil, b)
	assert.InDelta(t, 1, got.Acc.Data()[0], 1e-5)
	assert.InDelta(t, 1, got.Weights.Data()[0], 1e-5)
	assert.InDelta(t, 1, got.Depth.Data()[0], 1e-4)

	rgb := got.RGB.Data()
	assert.InDelta(t, 1, rgb[0], 1e-3)
	assert.InDelta(t, 0, rgb[1], 1e-3)
	assert.InDelta(t, 0.5, rgb[2], 1e-3)
}

func TestCompositeInvariants(t *testing.T) {
	b := cpu.New()
	const rows, samples = 4, 8
	data := make([]float32, rows*samples*4)
	for i := range data {
		// Deterministic spread of logits across samples and channels.
		data[i] = float32(math.Sin(float64(i) * 0.7))
	}
	raw := rawOutput(t, b, rows, samples, data)

	depthData := make([]float32, rows*samples)
	for r := 0; r < rows; r++ {
		for i := 0; i < samples; i++ {
			depthData[r*samples+i] = 1 + float32(i)*0.5
		}
	}
	depths, err := tensor.FromSlice(depthData, tensor.Shape{rows, samples}, b)
	require.NoError(t, err)

	got := Composite(raw, depths, unitZRays(t, b, rows), 0, false, nil, b)

	acc := got.Acc.Data()
	weights := got.Weights.Data()
	for r := 0; r < rows; r++ {
		assert.GreaterOrEqual(t, acc[r], float32(0))
		assert.LessOrEqual(t, acc[r], float32(1.0001))

		var sum float32
		for i := 0; i < samples; i++ {
			sum += weights[r*samples+i]
		}
		assert.InDelta(t, acc[r], sum, 1e-5, "weights must sum to accumulated opacity")
	}
	for _, v := range got.RGB.Data() {
		assert.GreaterOrEqual(t, v, float32(0))
		assert.LessOrEqual(t, v, float32(1.0001))
	}
}

func TestCompositePreservesRayOrder(t *testing.T) {
	b := cpu.New()
	// Ray 0 renders opaque red, ray 1 opaque green; swapping inputs must
	// swap outputs.
	data := []float32{
		10, -10, -10, 1000,
		-10, 10, -10, 1000,
	}
	raw := rawOutput(t, b, 2, 1, data)
	depths, err := tensor.FromSlice([]float32{1, 1}, tensor.Shape{2, 1}, b)
	require.NoError(t, err)

	got := Composite(raw, depths, unitZRays(t, b, 2), 0, false, nil, b)
	rgb := got.RGB.Data()
	assert.Greater(t, rgb[0], float32(0.9)) // ray 0 red channel
	assert.Greater(t, rgb[4], float32(0.9)) // ray 1 green channel
}

func TestCompositeDeltaScalesWithDirectionNorm(t *testing.T) {
	b := cpu.New()
	raw := rawOutput(t, b, 1, 2, []float32{
		0, 0, 0, 0.5,
		0, 0, 0, 0.5,
	})
	depths, err := tensor.FromSlice([]float32{1, 2}, tensor.Shape{1, 2}, b)
	require.NoError(t, err)

	unit := Composite(raw, depths, unitZRays(t, b, 1), 0, false, nil, b)

	scaled, err := tensor.FromSlice([]float32{0, 0, 2}, tensor.Shape{1, 3}, b)
	require.NoError(t, err)
	double := Composite(raw, depths, scaled, 0, false, nil, b)

	// Doubling the direction norm doubles the optical depth of the first
	// interval, increasing its alpha.
	assert.Greater(t, double.Weights.Data()[0], unit.Weights.Data()[0])
}

func TestCompositeRejectsBadShapes(t *testing.T) {
	b := cpu.New()
	raw := rawOutput(t, b, 1, 2, make([]float32, 8))
	badDepths, err := tensor.FromSlice([]float32{1, 2, 3}, tensor.Shape{1, 3}, b)
	require.NoError(t, err)

	assert.Panics(t, func() {
		Composite(raw, badDepths, unitZRays(t, b, 1), 0, false, nil, b)
	})
}
