package render

import (
	"fmt"
	"math/rand"

	"github.com/radiant-ml/radiant/internal/tensor"
)

// SampleRays produces num depth samples per ray between near and far, plus
// the corresponding 3D points origin + t*direction.
//
// Depths are linearly spaced in depth, or in disparity when lindisp is set.
// With perturb, each sample is jittered uniformly within its bin (bin edges
// are midpoints between neighbors, clamped to near/far at the boundaries) to
// avoid fixed-grid aliasing during training.
//
// Returns depths [R, num] and points [R, num, 3]. Sampling is an index
// construction step; nothing here is recorded for gradients.
func SampleRays[B tensor.Backend](rays *RayBatch[B], near, far float32, num int, perturb, lindisp bool, rng *rand.Rand, backend B) (*tensor.Tensor[float32, B], *tensor.Tensor[float32, B]) {
	if num <= 0 {
		panic(fmt.Sprintf("render: sample count must be > 0, got %d", num))
	}
	r := rays.NumRays()

	depthsRaw, err := tensor.NewRaw(tensor.Shape{r, num}, tensor.Float32, backend.Device())
	if err != nil {
		panic(fmt.Sprintf("render: failed to allocate depths: %v", err))
	}
	depths := depthsRaw.AsFloat32()

	// Base grid, identical for every ray.
	base := make([]float32, num)
	for i := range base {
		t := float32(0)
		if num > 1 {
			t = float32(i) / float32(num-1)
		}
		if lindisp {
			// Linear in disparity: 1 / lerp(1/near, 1/far, t).
			base[i] = 1.0 / ((1.0-t)/near + t/far)
		} else {
			base[i] = near*(1.0-t) + far*t
		}
	}

	for row := 0; row < r; row++ {
		copy(depths[row*num:(row+1)*num], base)
	}

	if perturb {
		perturbDepths(depths, r, num, rng)
	}

	points := pointsAtDepths(rays, depthsRaw, backend)
	return tensor.New[float32, B](depthsRaw, backend), points
}

// PointsAlongRays evaluates origin + t*direction for an externally supplied
// depth grid [R, num], as produced by importance resampling.
func PointsAlongRays[B tensor.Backend](rays *RayBatch[B], depths *tensor.Tensor[float32, B], backend B) *tensor.Tensor[float32, B] {
	shape := depths.Shape()
	if len(shape) != 2 || shape[0] != rays.NumRays() {
		panic(fmt.Sprintf("render: depths must be [%d, num], got %v", rays.NumRays(), shape))
	}
	return pointsAtDepths(rays, depths.Raw(), backend)
}

// perturbDepths jitters each depth uniformly within its bin.
func perturbDepths(depths []float32, rows, num int, rng *rand.Rand) {
	row := make([]float32, num)
	for r := 0; r < rows; r++ {
		z := depths[r*num : (r+1)*num]
		copy(row, z)
		for i := 0; i < num; i++ {
			lower, upper := row[i], row[i]
			if i > 0 {
				lower = 0.5 * (row[i-1] + row[i])
			}
			if i < num-1 {
				upper = 0.5 * (row[i] + row[i+1])
			}
			z[i] = lower + (upper-lower)*rng.Float32()
		}
	}
}

// pointsAtDepths evaluates origin + t*direction for every (ray, depth) pair.
func pointsAtDepths[B tensor.Backend](rays *RayBatch[B], depthsRaw *tensor.RawTensor, backend B) *tensor.Tensor[float32, B] {
	shape := depthsRaw.Shape()
	r, num := shape[0], shape[1]

	ptsRaw, err := tensor.NewRaw(tensor.Shape{r, num, 3}, tensor.Float32, backend.Device())
	if err != nil {
		panic(fmt.Sprintf("render: failed to allocate sample points: %v", err))
	}

	o := rays.Origins.Data()
	d := rays.Directions.Data()
	z := depthsRaw.AsFloat32()
	pts := ptsRaw.AsFloat32()

	for row := 0; row < r; row++ {
		ox, oy, oz := o[row*3], o[row*3+1], o[row*3+2]
		dx, dy, dz := d[row*3], d[row*3+1], d[row*3+2]
		for i := 0; i < num; i++ {
			t := z[row*num+i]
			base := (row*num + i) * 3
			pts[base] = ox + t*dx
			pts[base+1] = oy + t*dy
			pts[base+2] = oz + t*dz
		}
	}
	return tensor.New[float32, B](ptsRaw, backend)
}
