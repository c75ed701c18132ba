// Package render provides the differentiable volume rendering pipeline for
// radiance fields in Radiant.
//
// This package wraps the internal render implementations and provides a
// clean public API for ray generation, sampling, and compositing.
//
// Components:
//   - RayBatch: A batch of camera rays with optional unit view directions
//   - SampleRays: Stratified depth sampling between the near and far planes
//   - SamplePDF: Inverse-CDF importance resampling for the fine pass
//   - QueryNetwork: Chunked network evaluation over flattened sample points
//   - Composite: Front-to-back alpha compositing of raw network output
//
// Example usage:
//
//	import (
//	    "github.com/radiant-ml/radiant/render"
//	    "github.com/radiant-ml/radiant/backend/cpu"
//	)
//
//	backend := cpu.New()
//	rays, err := render.NewRayBatch(origins, directions, true, backend)
//	points, depths := render.SampleRays(rays, 2, 6, 64, false, false, nil, backend)
package render

import (
	"math/rand"

	"github.com/radiant-ml/radiant/internal/embed"
	"github.com/radiant-ml/radiant/internal/render"
	"github.com/radiant-ml/radiant/internal/tensor"
)

// Configuration

// Config holds the rendering hyperparameters: sample counts, depth range,
// perturbation and noise settings, and chunk sizes.
type Config = render.Config

// Rays

// RayBatch is a batch of rays with per-ray origins and directions, plus
// normalized view directions when view-dependent appearance is enabled.
type RayBatch[B tensor.Backend] = render.RayBatch[B]

// NewRayBatch builds a ray batch from [R, 3] origin and direction tensors.
// When withViewDirs is set, unit-normalized copies of the directions are
// attached for the view-dependent network head.
func NewRayBatch[B tensor.Backend](origins, directions *tensor.Tensor[float32, B], withViewDirs bool, backend B) (*RayBatch[B], error) {
	return render.NewRayBatch(origins, directions, withViewDirs, backend)
}

// NDCRays shifts ray origins to the near plane and maps rays to normalized
// device coordinates, for forward-facing scene captures.
func NDCRays[B tensor.Backend](height, width int, focal, near float32, rays *RayBatch[B], backend B) *RayBatch[B] {
	return render.NDCRays(height, width, focal, near, rays, backend)
}

// Sampling

// SampleRays draws num depths per ray between near and far, stratified when
// perturb is set, spaced linearly in inverse depth when lindisp is set.
// It returns the [R, num, 3] sample points and the [R, num] depths.
func SampleRays[B tensor.Backend](rays *RayBatch[B], near, far float32, num int, perturb, lindisp bool, rng *rand.Rand, backend B) (*tensor.Tensor[float32, B], *tensor.Tensor[float32, B]) {
	return render.SampleRays(rays, near, far, num, perturb, lindisp, rng, backend)
}

// PointsAlongRays places [R, num, 3] sample points at the given [R, num]
// depths along each ray.
func PointsAlongRays[B tensor.Backend](rays *RayBatch[B], depths *tensor.Tensor[float32, B], backend B) *tensor.Tensor[float32, B] {
	return render.PointsAlongRays(rays, depths, backend)
}

// SamplePDF draws num samples per ray from the piecewise-constant
// distribution delimited by bins [R, m+1] and weighted by weights [R, m],
// by inverse transform sampling. Deterministic draws use an evenly spaced
// grid; otherwise samples come from rng.
func SamplePDF[B tensor.Backend](bins, weights *tensor.Tensor[float32, B], num int, det bool, rng *rand.Rand, backend B) *tensor.Tensor[float32, B] {
	return render.SamplePDF(bins, weights, num, det, rng, backend)
}

// MergeSorted merges two per-ray sorted depth tensors into one sorted
// [R, n1+n2] tensor.
func MergeSorted[B tensor.Backend](depths, newDepths *tensor.Tensor[float32, B], backend B) *tensor.Tensor[float32, B] {
	return render.MergeSorted(depths, newDepths, backend)
}

// Midpoints returns the per-ray midpoints of adjacent depth samples,
// shrinking the last dimension by one.
func Midpoints[B tensor.Backend](depths *tensor.Tensor[float32, B], backend B) *tensor.Tensor[float32, B] {
	return render.Midpoints(depths, backend)
}

// Network evaluation

// NetworkFunc evaluates a radiance network on a flat batch of encoded
// sample points.
type NetworkFunc[B tensor.Backend] = render.NetworkFunc[B]

// QueryNetwork encodes and evaluates sample points [R, S, 3] in chunks of at
// most chunkSize rows, bounding peak memory independently of the total sample
// count. viewdirs, when non-nil, is broadcast across each ray's samples.
func QueryNetwork[B tensor.Backend](points, viewdirs *tensor.Tensor[float32, B], network NetworkFunc[B], embedFn, embedDirsFn embed.Embedder[B], chunkSize int, backend B) *tensor.Tensor[float32, B] {
	return render.QueryNetwork(points, viewdirs, network, embedFn, embedDirsFn, chunkSize, backend)
}

// Compositing

// Result holds the per-ray outputs of volume compositing: RGB, disparity,
// accumulated opacity, depth and per-sample weights.
type Result[B tensor.Backend] = render.Result[B]

// Composite integrates raw network output [R, S, C] along each ray into
// pixel values by front-to-back alpha compositing.
func Composite[B tensor.Backend](raw, depths, dirs *tensor.Tensor[float32, B], noiseStd float64, whiteBkgd bool, rng *rand.Rand, backend B) *Result[B] {
	return render.Composite(raw, depths, dirs, noiseStd, whiteBkgd, rng, backend)
}
