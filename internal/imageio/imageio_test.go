package imageio

import (
	"image/png"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomImage(rng *rand.Rand, n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = rng.Float32()
	}
	return out
}

func TestWritePNG(t *testing.T) {
	const h, w = 3, 5
	path := filepath.Join(t.TempDir(), "out.png")
	pixels := randomImage(rand.New(rand.NewSource(1)), h*w*3)

	require.NoError(t, WritePNG(path, pixels, h, w))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, w, img.Bounds().Dx())
	assert.Equal(t, h, img.Bounds().Dy())
}

func TestWritePNGClampsOutOfRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clamp.png")
	assert.NoError(t, WritePNG(path, []float32{-1, 2, 0.5}, 1, 1))
}

func TestWritePNGSizeMismatch(t *testing.T) {
	err := WritePNG(filepath.Join(t.TempDir(), "bad.png"), make([]float32, 5), 2, 2)
	assert.Error(t, err)
}

func TestEXRRoundTrip(t *testing.T) {
	const h, w = 4, 6
	path := filepath.Join(t.TempDir(), "out.exr")
	pixels := randomImage(rand.New(rand.NewSource(2)), h*w*3)

	require.NoError(t, WriteEXR(path, pixels, h, w))

	got, gh, gw, err := ReadEXR(path)
	require.NoError(t, err)
	assert.Equal(t, h, gh)
	assert.Equal(t, w, gw)
	// Pixels travel as half floats.
	assert.InDeltaSlice(t, pixels, got, 1e-3)
}

func TestWriteDepthEXR(t *testing.T) {
	const h, w = 2, 3
	path := filepath.Join(t.TempDir(), "depth.exr")
	depth := []float32{0.5, 1, 2, 3, 4, 5.5}

	require.NoError(t, WriteDepthEXR(path, depth, h, w))

	got, gh, gw, err := ReadEXR(path)
	require.NoError(t, err)
	require.Equal(t, h, gh)
	require.Equal(t, w, gw)
	// Grayscale: all three channels carry the depth value, including
	// values above 1.
	for i, v := range depth {
		assert.InDelta(t, v, got[i*3], 5e-3)
		assert.InDelta(t, v, got[i*3+1], 5e-3)
	}
}

func TestWriteEXRSizeMismatch(t *testing.T) {
	assert.Error(t, WriteEXR(filepath.Join(t.TempDir(), "bad.exr"), make([]float32, 4), 2, 2))
	assert.Error(t, WriteDepthEXR(filepath.Join(t.TempDir(), "bad.exr"), make([]float32, 3), 2, 2))
}
