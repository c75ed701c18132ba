package render

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radiant-ml/radiant/internal/backend/cpu"
	"github.com/radiant-ml/radiant/internal/tensor"
)

func makeRays(t *testing.T, b *cpu.CPUBackend, origins, dirs []float32, withViewDirs bool) *RayBatch[*cpu.CPUBackend] {
	t.Helper()
	o, err := tensor.FromSlice(origins, tensor.Shape{len(origins) / 3, 3}, b)
	require.NoError(t, err)
	d, err := tensor.FromSlice(dirs, tensor.Shape{len(dirs) / 3, 3}, b)
	require.NoError(t, err)
	rays, err := NewRayBatch(o, d, withViewDirs, b)
	require.NoError(t, err)
	return rays
}

func TestNewRayBatchValidates(t *testing.T) {
	b := cpu.New()
	o := tensor.Zeros[float32](tensor.Shape{2, 3}, b)
	bad := tensor.Zeros[float32](tensor.Shape{3, 3}, b)

	_, err := NewRayBatch(o, bad, false, b)
	assert.Error(t, err)

	_, err = NewRayBatch(tensor.Zeros[float32](tensor.Shape{2, 2}, b), bad, false, b)
	assert.Error(t, err)
}

func TestViewDirsAreNormalized(t *testing.T) {
	b := cpu.New()
	rays := makeRays(t, b,
		[]float32{0, 0, 0},
		[]float32{3, 0, 4}, true)

	require.NotNil(t, rays.ViewDirs)
	assert.InDeltaSlice(t, []float32{0.6, 0, 0.8}, rays.ViewDirs.Data(), 1e-6)
}

func TestSampleDepthsDeterministic(t *testing.T) {
	b := cpu.New()
	rays := makeRays(t, b, []float32{0, 0, 0}, []float32{0, 0, 1}, false)

	depths, points := SampleRays(rays, 2, 6, 5, false, false, nil, b)
	require.Equal(t, tensor.Shape{1, 5}, depths.Shape())
	require.Equal(t, tensor.Shape{1, 5, 3}, points.Shape())

	assert.InDeltaSlice(t, []float32{2, 3, 4, 5, 6}, depths.Data(), 1e-6)
	// Points march along +z from the origin.
	assert.InDelta(t, 2.0, points.At(0, 0, 2), 1e-6)
	assert.InDelta(t, 6.0, points.At(0, 4, 2), 1e-6)
}

func TestSampleDepthsMonotoneWithoutPerturb(t *testing.T) {
	b := cpu.New()
	rays := makeRays(t, b,
		[]float32{0, 0, 0, 1, 1, 1},
		[]float32{0, 0, 1, 0, 1, 0}, false)

	depths, _ := SampleRays(rays, 0.5, 8, 32, false, false, nil, b)
	data := depths.Data()
	for r := 0; r < 2; r++ {
		for i := 1; i < 32; i++ {
			assert.LessOrEqual(t, data[r*32+i-1], data[r*32+i])
		}
	}
}

func TestSampleDepthsStayInBoundsWithPerturb(t *testing.T) {
	b := cpu.New()
	rng := rand.New(rand.NewSource(3))
	rays := makeRays(t, b, []float32{0, 0, 0}, []float32{0, 0, 1}, false)

	depths, _ := SampleRays(rays, 1, 4, 64, true, false, rng, b)
	for _, z := range depths.Data() {
		assert.GreaterOrEqual(t, z, float32(1))
		assert.LessOrEqual(t, z, float32(4))
	}
}

func TestSampleLinDisp(t *testing.T) {
	b := cpu.New()
	rays := makeRays(t, b, []float32{0, 0, 0}, []float32{0, 0, 1}, false)

	depths, _ := SampleRays(rays, 1, 4, 3, false, true, nil, b)
	// Disparity-linear midpoint: 1 / ((1/1 + 1/4)/2) = 1.6.
	assert.InDeltaSlice(t, []float32{1, 1.6, 4}, depths.Data(), 1e-5)
}

func TestSampleRejectsNonPositiveCount(t *testing.T) {
	b := cpu.New()
	rays := makeRays(t, b, []float32{0, 0, 0}, []float32{0, 0, 1}, false)
	assert.Panics(t, func() { SampleRays(rays, 1, 4, 0, false, false, nil, b) })
}

func TestNDCDepthRange(t *testing.T) {
	b := cpu.New()
	// A forward-facing ray through a 100x100 camera with focal 50.
	rays := makeRays(t, b, []float32{0, 0, -1}, []float32{0.1, 0.1, -1}, false)

	ndc := NDCRays(100, 100, 50, 1, rays, b)
	depths, _ := SampleRays(ndc, 0, 1, 16, false, false, nil, b)
	for _, z := range depths.Data() {
		assert.GreaterOrEqual(t, z, float32(0))
		assert.LessOrEqual(t, z, float32(1))
	}
}
