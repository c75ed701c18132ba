package nerf

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radiant-ml/radiant/internal/backend/cpu"
	"github.com/radiant-ml/radiant/internal/render"
	"github.com/radiant-ml/radiant/internal/tensor"
)

func tinyModelConfig() ModelConfig {
	return ModelConfig{
		Multires:       2,
		MultiresViews:  1,
		NetDepth:       2,
		NetWidth:       16,
		Skips:          []int{0},
		UseViewdirs:    true,
		UseFineNetwork: true,
	}
}

func tinyRenderConfig() render.Config {
	return render.Config{
		NumCoarseSamples: 6,
		NumFineSamples:   4,
		Near:             2,
		Far:              6,
	}
}

func testRays(t *testing.T, b *cpu.CPUBackend, n int) *render.RayBatch[*cpu.CPUBackend] {
	t.Helper()
	origins := tensor.Zeros[float32](tensor.Shape{n, 3}, b)
	dirData := make([]float32, n*3)
	for i := 0; i < n; i++ {
		dirData[i*3] = 0.1 * float32(i)
		dirData[i*3+2] = 1
	}
	dirs, err := tensor.FromSlice(dirData, tensor.Shape{n, 3}, b)
	require.NoError(t, err)
	rays, err := render.NewRayBatch(origins, dirs, true, b)
	require.NoError(t, err)
	return rays
}

func TestModelRenderShapes(t *testing.T) {
	b := cpu.New()
	m, err := NewModel(tinyModelConfig(), tinyRenderConfig(), rand.New(rand.NewSource(1)), b)
	require.NoError(t, err)
	require.NotNil(t, m.Fine())

	const rays = 3
	out := m.Render(testRays(t, b, rays), tinyRenderConfig(), rand.New(rand.NewSource(2)))

	require.NotNil(t, out.Coarse, "fine sampling must preserve the coarse pass")
	assert.Equal(t, tensor.Shape{rays, 3}, out.Result.RGB.Shape())
	assert.Equal(t, tensor.Shape{rays}, out.Result.Acc.Shape())
	assert.Equal(t, tensor.Shape{rays, 10}, out.Result.Weights.Shape(), "fine pass composites coarse+fine samples")
	assert.Equal(t, tensor.Shape{rays, 6}, out.Coarse.Weights.Shape())
}

func TestModelCoarseOnly(t *testing.T) {
	b := cpu.New()
	cfg := tinyRenderConfig()
	cfg.NumFineSamples = 0

	mc := tinyModelConfig()
	m, err := NewModel(mc, cfg, rand.New(rand.NewSource(3)), b)
	require.NoError(t, err)
	assert.Nil(t, m.Fine())

	out := m.Render(testRays(t, b, 2), cfg, rand.New(rand.NewSource(4)))
	assert.Nil(t, out.Coarse)
	assert.Equal(t, tensor.Shape{2, 6}, out.Result.Weights.Shape())
}

func TestModelViewIndependentOutputWidth(t *testing.T) {
	b := cpu.New()
	mc := tinyModelConfig()
	mc.UseViewdirs = false

	m, err := NewModel(mc, tinyRenderConfig(), rand.New(rand.NewSource(5)), b)
	require.NoError(t, err)
	// The extra channel is reserved when a fine pass exists.
	assert.Equal(t, 5, m.Coarse().OutputCh())

	noFine := tinyRenderConfig()
	noFine.NumFineSamples = 0
	m, err = NewModel(mc, noFine, rand.New(rand.NewSource(6)), b)
	require.NoError(t, err)
	assert.Equal(t, 4, m.Coarse().OutputCh())
}

func TestModelChunkedMatchesUnchunked(t *testing.T) {
	b := cpu.New()
	cfg := tinyRenderConfig().EvalVariant()

	m, err := NewModel(tinyModelConfig(), cfg, rand.New(rand.NewSource(7)), b)
	require.NoError(t, err)

	rays := testRays(t, b, 5)
	whole := m.Render(rays, cfg, nil).Result

	cfg.ChunkSize = 2
	chunked := m.RenderChunked(rays, cfg, nil)

	assert.InDeltaSlice(t, whole.RGB.Data(), chunked.RGB.Data(), 1e-6)
	assert.InDeltaSlice(t, whole.Acc.Data(), chunked.Acc.Data(), 1e-6)
	assert.InDeltaSlice(t, whole.Depth.Data(), chunked.Depth.Data(), 1e-6)
}

func TestModelStateDictRoundTrip(t *testing.T) {
	b := cpu.New()
	cfg := tinyRenderConfig().EvalVariant()

	src, err := NewModel(tinyModelConfig(), cfg, rand.New(rand.NewSource(8)), b)
	require.NoError(t, err)
	dst, err := NewModel(tinyModelConfig(), cfg, rand.New(rand.NewSource(9)), b)
	require.NoError(t, err)

	rays := testRays(t, b, 2)
	require.NotEqual(t, src.Render(rays, cfg, nil).Result.RGB.Data(), dst.Render(rays, cfg, nil).Result.RGB.Data())

	require.NoError(t, dst.LoadStateDict(src.StateDict()))
	assert.InDeltaSlice(t,
		src.Render(rays, cfg, nil).Result.RGB.Data(),
		dst.Render(rays, cfg, nil).Result.RGB.Data(), 1e-6)
}

func TestModelRequiresViewDirections(t *testing.T) {
	b := cpu.New()
	m, err := NewModel(tinyModelConfig(), tinyRenderConfig(), rand.New(rand.NewSource(10)), b)
	require.NoError(t, err)

	origins := tensor.Zeros[float32](tensor.Shape{1, 3}, b)
	dirs, err := tensor.FromSlice([]float32{0, 0, 1}, tensor.Shape{1, 3}, b)
	require.NoError(t, err)
	bare, err := render.NewRayBatch(origins, dirs, false, b)
	require.NoError(t, err)

	assert.Panics(t, func() {
		m.Render(bare, tinyRenderConfig(), rand.New(rand.NewSource(11)))
	})
}

func TestGathererAssemblesPaddedChunks(t *testing.T) {
	b := cpu.New()
	cfg := tinyRenderConfig().EvalVariant()

	m, err := NewModel(tinyModelConfig(), cfg, rand.New(rand.NewSource(12)), b)
	require.NoError(t, err)

	// A 2x3 image padded to 8 rays, rendered in two chunks of 4.
	rays := testRays(t, b, 8)
	g := NewGatherer[*cpu.CPUBackend]()
	for start := 0; start < 8; start += 4 {
		chunk := &render.RayBatch[*cpu.CPUBackend]{
			Origins:    rays.Origins.Narrow(start, 4),
			Directions: rays.Directions.Narrow(start, 4),
			ViewDirs:   rays.ViewDirs.Narrow(start, 4),
		}
		g.Add(m.Render(chunk, cfg, nil).Result)
	}
	require.Equal(t, 8, g.NumRays())

	img, err := g.Assemble(2, 3)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{2, 3, 3}, img.RGB.Shape())
	assert.Equal(t, tensor.Shape{2, 3}, img.Disparity.Shape())

	// Trimming must keep the leading rays.
	whole := m.Render(rays, cfg, nil).Result
	assert.InDeltaSlice(t, whole.RGB.Data()[:18], img.RGB.Data(), 1e-6)

	_, err = g.Assemble(10, 10)
	assert.Error(t, err)
}
