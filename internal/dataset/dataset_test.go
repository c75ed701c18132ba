package dataset

import (
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func identityPose() *mat.Dense {
	m := mat.NewDense(4, 4, nil)
	for i := 0; i < 4; i++ {
		m.Set(i, i, 1)
	}
	return m
}

// writeScene creates a minimal Blender-layout scene: every split shares one
// 4x4 solid-color frame at the identity pose.
func writeScene(t *testing.T, dir string, frames int) {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.NRGBA{R: 255, G: 0, B: 0, A: 255})
		}
	}

	for _, split := range []string{"train", "val", "test"} {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, split), 0o755))

		tf := map[string]any{"camera_angle_x": math.Pi / 2}
		var fs []map[string]any
		for i := 0; i < frames; i++ {
			name := filepath.Join(split, "r_"+string(rune('0'+i)))
			f, err := os.Create(filepath.Join(dir, name+".png"))
			require.NoError(t, err)
			require.NoError(t, png.Encode(f, img))
			require.NoError(t, f.Close())

			fs = append(fs, map[string]any{
				"file_path": "./" + name,
				"transform_matrix": [][]float64{
					{1, 0, 0, 0}, {0, 1, 0, 0}, {0, 0, 1, 0}, {0, 0, 0, 1},
				},
			})
		}
		tf["frames"] = fs

		data, err := json.Marshal(tf)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, "transforms_"+split+".json"), data, 0o644))
	}
}

func TestLoadBlender(t *testing.T) {
	dir := t.TempDir()
	writeScene(t, dir, 3)

	ds, err := LoadBlender(dir, Options{})
	require.NoError(t, err)

	assert.Equal(t, 4, ds.Width)
	assert.Equal(t, 4, ds.Height)
	// camera_angle_x = pi/2 gives focal = w/2.
	assert.InDelta(t, 2.0, ds.Focal, 1e-9)
	assert.Equal(t, float32(2), ds.Near)
	assert.Equal(t, float32(6), ds.Far)

	require.Len(t, ds.Splits[SplitTrain], 3)
	px := ds.Splits[SplitTrain][0].Pixels
	require.Len(t, px, 4*4*3)
	assert.InDelta(t, 1, px[0], 1e-3) // solid red
	assert.InDelta(t, 0, px[1], 1e-3)
}

func TestLoadBlenderTestSkip(t *testing.T) {
	dir := t.TempDir()
	writeScene(t, dir, 4)

	ds, err := LoadBlender(dir, Options{TestSkip: 2})
	require.NoError(t, err)

	assert.Len(t, ds.Splits[SplitTrain], 4, "TestSkip never thins the training split")
	assert.Len(t, ds.Splits[SplitVal], 2)
	assert.Len(t, ds.Splits[SplitTest], 2)
}

func TestLoadBlenderMissingScene(t *testing.T) {
	_, err := LoadBlender(t.TempDir(), Options{})
	assert.Error(t, err)
}

func TestCameraRaysCanonicalPose(t *testing.T) {
	// Identity pose: the camera sits at the origin looking down -z.
	origins, dirs := CameraRays(2, 2, 1.0, identityPose(), false)
	require.Len(t, origins, 12)
	require.Len(t, dirs, 12)

	for _, v := range origins {
		assert.Equal(t, float32(0), v)
	}

	// Pixel (0,0) is the top-left: x offset -1, y offset +1 in camera space.
	assert.InDeltaSlice(t, []float32{-1, 1, -1}, dirs[0:3], 1e-6)
	// Pixel (1,1): x offset 0, y offset 0.
	assert.InDeltaSlice(t, []float32{0, 0, -1}, dirs[9:12], 1e-6)
}

func TestCameraRaysTranslatedPose(t *testing.T) {
	pose := identityPose()
	pose.Set(0, 3, 5)
	pose.Set(2, 3, -1)

	origins, _ := CameraRays(1, 1, 1.0, pose, true)
	assert.InDeltaSlice(t, []float32{5, 0, -1}, origins[0:3], 1e-6)
}

func TestCameraRaysPixelCenter(t *testing.T) {
	_, corner := CameraRays(2, 2, 1.0, identityPose(), false)
	_, center := CameraRays(2, 2, 1.0, identityPose(), true)

	// The half-pixel offset shifts every direction by 0.5/focal.
	assert.InDelta(t, float64(corner[0])+0.5, float64(center[0]), 1e-6)
	assert.InDelta(t, float64(corner[1])-0.5, float64(center[1]), 1e-6)
}

func TestRayBatcherSample(t *testing.T) {
	dir := t.TempDir()
	writeScene(t, dir, 2)
	ds, err := LoadBlender(dir, Options{})
	require.NoError(t, err)

	b, err := NewRayBatcher(ds, SplitTrain, true, rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	origins, dirs, rgb := b.Sample(32)
	assert.Len(t, origins, 96)
	assert.Len(t, dirs, 96)
	assert.Len(t, rgb, 96)

	// All frames are solid red.
	for i := 0; i < 32; i++ {
		assert.InDelta(t, 1, rgb[i*3], 1e-3)
		assert.InDelta(t, 0, rgb[i*3+1], 1e-3)
	}
}

func TestRayBatcherEmptySplit(t *testing.T) {
	ds := &Dataset{Splits: map[Split][]Frame{}}
	_, err := NewRayBatcher(ds, SplitTrain, false, rand.New(rand.NewSource(2)))
	assert.Error(t, err)
}

func TestPaddingFor(t *testing.T) {
	assert.Equal(t, 0, PaddingFor(8, 4))
	assert.Equal(t, 3, PaddingFor(5, 4))
	assert.Equal(t, 0, PaddingFor(5, 0))
}
