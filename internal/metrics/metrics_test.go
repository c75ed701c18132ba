package metrics

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMSE(t *testing.T) {
	assert.InDelta(t, 0, MSE([]float32{1, 2, 3}, []float32{1, 2, 3}), 1e-12)
	assert.InDelta(t, 0.25, MSE([]float32{0, 0.5, 1, 0.5}, []float32{0.5, 0, 0.5, 1}), 1e-6)

	assert.Panics(t, func() { MSE([]float32{1}, []float32{1, 2}) })
	assert.Panics(t, func() { MSE(nil, nil) })
}

func TestPSNR(t *testing.T) {
	assert.InDelta(t, 20, PSNR(0.01), 1e-9)
	assert.InDelta(t, 10, PSNR(0.1), 1e-9)

	// A perfect reconstruction clamps to the floor instead of +Inf.
	assert.False(t, math.IsInf(PSNR(0), 1))
	assert.InDelta(t, 100, PSNR(0), 1e-9)
}

func TestSSIMIdenticalImages(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	img := make([]float32, 16*16*3)
	for i := range img {
		img[i] = rng.Float32()
	}
	assert.InDelta(t, 1, SSIM(img, img, 16, 16, 3), 1e-9)
}

func TestSSIMOrdersByDistortion(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	const h, w = 16, 16
	img := make([]float32, h*w)
	for i := range img {
		img[i] = rng.Float32()
	}

	mild := make([]float32, len(img))
	heavy := make([]float32, len(img))
	for i := range img {
		mild[i] = img[i] + 0.05*(rng.Float32()-0.5)
		heavy[i] = img[i] + 0.5*(rng.Float32()-0.5)
	}

	s1 := SSIM(img, mild, h, w, 1)
	s2 := SSIM(img, heavy, h, w, 1)
	assert.Greater(t, s1, s2)
	assert.Greater(t, s1, 0.8)
	assert.LessOrEqual(t, s1, 1.0)
}

func TestSSIMShapeMismatchPanics(t *testing.T) {
	assert.Panics(t, func() {
		SSIM(make([]float32, 10), make([]float32, 10), 2, 2, 3)
	})
}
