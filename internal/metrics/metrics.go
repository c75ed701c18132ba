// Package metrics implements image reconstruction quality measures used
// for validation: MSE, PSNR and SSIM. These run on finished renders and
// carry no gradients; the differentiable training loss lives in nn.
package metrics

import (
	"fmt"
	"math"
)

// mseFloor bounds MSE away from zero before the PSNR log, so a perfect
// reconstruction reports a large finite PSNR instead of +Inf.
const mseFloor = 1e-10

// MSE returns the mean squared error between two equally sized value
// slices.
func MSE(pred, target []float32) float64 {
	if len(pred) != len(target) {
		panic(fmt.Sprintf("metrics: length mismatch %d vs %d", len(pred), len(target)))
	}
	if len(pred) == 0 {
		panic("metrics: empty input")
	}
	var sum float64
	for i := range pred {
		d := float64(pred[i]) - float64(target[i])
		sum += d * d
	}
	return sum / float64(len(pred))
}

// PSNR converts a mean squared error over [0,1] values to peak
// signal-to-noise ratio in dB.
func PSNR(mse float64) float64 {
	return -10 * math.Log10(math.Max(mse, mseFloor))
}

// SSIM window parameters, the standard 11-tap Gaussian of sigma 1.5 with
// stabilizers for a unit dynamic range.
const (
	ssimWindow = 11
	ssimSigma  = 1.5
	ssimC1     = 0.01 * 0.01
	ssimC2     = 0.03 * 0.03
)

// SSIM computes the mean structural similarity between two images of shape
// [height, width, channels] in row-major layout with values in [0,1].
// Channels are scored independently and averaged.
func SSIM(pred, target []float32, height, width, channels int) float64 {
	if height*width*channels != len(pred) || len(pred) != len(target) {
		panic(fmt.Sprintf("metrics: %dx%dx%d does not match inputs of %d and %d values",
			height, width, channels, len(pred), len(target)))
	}

	kernel := gaussianKernel(ssimWindow, ssimSigma)

	var total float64
	for c := 0; c < channels; c++ {
		x := channelPlane(pred, height, width, channels, c)
		y := channelPlane(target, height, width, channels, c)

		// Separable Gaussian filtering of the five moment maps.
		mx := filter2D(x, height, width, kernel)
		my := filter2D(y, height, width, kernel)
		mxx := filter2D(mulPlanes(x, x), height, width, kernel)
		myy := filter2D(mulPlanes(y, y), height, width, kernel)
		mxy := filter2D(mulPlanes(x, y), height, width, kernel)

		var sum float64
		for i := range mx {
			muX, muY := mx[i], my[i]
			varX := mxx[i] - muX*muX
			varY := myy[i] - muY*muY
			cov := mxy[i] - muX*muY

			num := (2*muX*muY + ssimC1) * (2*cov + ssimC2)
			den := (muX*muX + muY*muY + ssimC1) * (varX + varY + ssimC2)
			sum += num / den
		}
		total += sum / float64(len(mx))
	}
	return total / float64(channels)
}

func gaussianKernel(size int, sigma float64) []float64 {
	k := make([]float64, size)
	half := float64(size-1) / 2
	var sum float64
	for i := range k {
		d := float64(i) - half
		k[i] = math.Exp(-d * d / (2 * sigma * sigma))
		sum += k[i]
	}
	for i := range k {
		k[i] /= sum
	}
	return k
}

func channelPlane(img []float32, height, width, channels, c int) []float64 {
	out := make([]float64, height*width)
	for i := range out {
		out[i] = float64(img[i*channels+c])
	}
	return out
}

func mulPlanes(a, b []float64) []float64 {
	out := make([]float64, len(a))
	for i := range out {
		out[i] = a[i] * b[i]
	}
	return out
}

// filter2D applies a separable kernel with edge clamping.
func filter2D(plane []float64, height, width int, kernel []float64) []float64 {
	half := len(kernel) / 2

	tmp := make([]float64, len(plane))
	for r := 0; r < height; r++ {
		for col := 0; col < width; col++ {
			var acc float64
			for k, w := range kernel {
				src := col + k - half
				if src < 0 {
					src = 0
				} else if src >= width {
					src = width - 1
				}
				acc += w * plane[r*width+src]
			}
			tmp[r*width+col] = acc
		}
	}

	out := make([]float64, len(plane))
	for r := 0; r < height; r++ {
		for col := 0; col < width; col++ {
			var acc float64
			for k, w := range kernel {
				src := r + k - half
				if src < 0 {
					src = 0
				} else if src >= height {
					src = height - 1
				}
				acc += w * tmp[src*width+col]
			}
			out[r*width+col] = acc
		}
	}
	return out
}

// PerceptualMetric scores image pairs with a learned similarity model such
// as LPIPS. No implementation ships here: it needs pretrained weights the
// pipeline does not carry.
type PerceptualMetric interface {
	// Distance returns a dissimilarity score for two [height, width,
	// channels] images; lower is more similar.
	Distance(pred, target []float32, height, width, channels int) (float64, error)
}
