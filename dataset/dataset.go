// Package dataset provides posed image dataset loading for Radiant.
//
// This package wraps the internal dataset implementations and provides a
// clean public API for loading synthetic Blender-style scenes and turning
// their camera poses into ray batches.
//
// Example usage:
//
//	import "github.com/radiant-ml/radiant/dataset"
//
//	ds, err := dataset.LoadBlender("data/lego", dataset.Options{
//	    HalfRes:         true,
//	    WhiteBackground: true,
//	    TestSkip:        8,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	origins, dirs := dataset.CameraRays(ds.Height, ds.Width, ds.Focal, ds.Splits[dataset.SplitTrain][0].Pose, true)
package dataset

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/radiant-ml/radiant/internal/dataset"
)

// Split names one of the dataset partitions.
type Split = dataset.Split

// Dataset splits.
const (
	SplitTrain Split = dataset.SplitTrain
	SplitVal   Split = dataset.SplitVal
	SplitTest  Split = dataset.SplitTest
)

// Options control dataset loading: resolution halving, background
// compositing and test-split thinning.
type Options = dataset.Options

// Frame is one posed image: row-major RGB pixels in [0, 1] and the 4x4
// camera-to-world pose.
type Frame = dataset.Frame

// Dataset is a loaded scene: image geometry, depth range and per-split
// frames.
type Dataset = dataset.Dataset

// Info summarizes a loaded dataset for logging.
type Info = dataset.Info

// LoadBlender loads a synthetic scene directory containing
// transforms_{train,val,test}.json and the images they reference.
func LoadBlender(dir string, opts Options) (*Dataset, error) {
	return dataset.LoadBlender(dir, opts)
}

// CameraRays generates one ray per pixel for a camera-to-world pose,
// returning flat [H*W*3] origin and direction slices. Directions are
// unnormalized; their z-length keeps depth parameterization consistent
// across the image.
func CameraRays(height, width int, focal float64, pose *mat.Dense, pixelCenter bool) (origins, directions []float32) {
	return dataset.CameraRays(height, width, focal, pose, pixelCenter)
}

// RayBatcher draws random training rays across a split, caching per-frame
// rays lazily.
type RayBatcher = dataset.RayBatcher

// NewRayBatcher creates a batcher over one split of the dataset.
func NewRayBatcher(ds *Dataset, split Split, pixelCenter bool, rng *rand.Rand) (*RayBatcher, error) {
	return dataset.NewRayBatcher(ds, split, pixelCenter, rng)
}

// PaddingFor returns how many dummy rays pad a ray count up to a whole
// number of chunks.
func PaddingFor(rays, chunk int) int {
	return dataset.PaddingFor(rays, chunk)
}
