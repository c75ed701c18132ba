package dataset

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// CameraRays generates one ray per pixel of a pinhole camera, row-major.
// The camera looks down -z with +x right and +y up in camera space; pose is
// the 4x4 camera-to-world transform. With pixelCenter, rays pass through
// pixel centers instead of the top-left corners.
//
// Returns origins and directions as [H*W*3] slices. Directions are not
// normalized: their z-scale carries depth information for compositing.
func CameraRays(height, width int, focal float64, pose *mat.Dense, pixelCenter bool) (origins, directions []float32) {
	r, c := pose.Dims()
	if r != 4 || c != 4 {
		panic(fmt.Sprintf("dataset: pose must be 4x4, got %dx%d", r, c))
	}

	var offset float64
	if pixelCenter {
		offset = 0.5
	}

	ox := float32(pose.At(0, 3))
	oy := float32(pose.At(1, 3))
	oz := float32(pose.At(2, 3))

	origins = make([]float32, height*width*3)
	directions = make([]float32, height*width*3)

	i := 0
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			dx := (float64(x) + offset - 0.5*float64(width)) / focal
			dy := -(float64(y) + offset - 0.5*float64(height)) / focal
			dz := -1.0

			directions[i] = float32(pose.At(0, 0)*dx + pose.At(0, 1)*dy + pose.At(0, 2)*dz)
			directions[i+1] = float32(pose.At(1, 0)*dx + pose.At(1, 1)*dy + pose.At(1, 2)*dz)
			directions[i+2] = float32(pose.At(2, 0)*dx + pose.At(2, 1)*dy + pose.At(2, 2)*dz)
			origins[i] = ox
			origins[i+1] = oy
			origins[i+2] = oz
			i += 3
		}
	}
	return origins, directions
}

// RayBatcher draws random training rays across all frames of one split,
// pairing each ray with its ground-truth pixel.
type RayBatcher struct {
	ds          *Dataset
	frames      []Frame
	rng         *rand.Rand
	pixelCenter bool

	// Per-frame ray caches, generated lazily: poses do not change, so each
	// frame's rays are computed once.
	origins    [][]float32
	directions [][]float32
}

// NewRayBatcher creates a batcher over one split.
func NewRayBatcher(ds *Dataset, split Split, pixelCenter bool, rng *rand.Rand) (*RayBatcher, error) {
	frames := ds.Splits[split]
	if len(frames) == 0 {
		return nil, fmt.Errorf("dataset: split %q is empty", split)
	}
	return &RayBatcher{
		ds:          ds,
		frames:      frames,
		rng:         rng,
		pixelCenter: pixelCenter,
		origins:     make([][]float32, len(frames)),
		directions:  make([][]float32, len(frames)),
	}, nil
}

// Sample draws n rays uniformly over (frame, pixel) pairs. Returns origins
// and directions [n*3] plus the target RGB values [n*3].
func (b *RayBatcher) Sample(n int) (origins, directions, rgb []float32) {
	origins = make([]float32, n*3)
	directions = make([]float32, n*3)
	rgb = make([]float32, n*3)

	pixels := b.ds.Height * b.ds.Width
	for i := 0; i < n; i++ {
		fi := b.rng.Intn(len(b.frames))
		pi := b.rng.Intn(pixels)

		o, d := b.frameRays(fi)
		copy(origins[i*3:], o[pi*3:pi*3+3])
		copy(directions[i*3:], d[pi*3:pi*3+3])
		copy(rgb[i*3:], b.frames[fi].Pixels[pi*3:pi*3+3])
	}
	return origins, directions, rgb
}

// FrameRays returns the cached full-image rays for one frame of the split.
func (b *RayBatcher) FrameRays(frame int) (origins, directions []float32) {
	if frame < 0 || frame >= len(b.frames) {
		panic(fmt.Sprintf("dataset: frame %d out of range [0, %d)", frame, len(b.frames)))
	}
	return b.frameRays(frame)
}

// NumFrames returns the frame count of the batched split.
func (b *RayBatcher) NumFrames() int { return len(b.frames) }

// Frame returns one posed image of the batched split.
func (b *RayBatcher) Frame(i int) Frame { return b.frames[i] }

func (b *RayBatcher) frameRays(i int) (origins, directions []float32) {
	if b.origins[i] == nil {
		b.origins[i], b.directions[i] = CameraRays(b.ds.Height, b.ds.Width, b.ds.Focal, b.frames[i].Pose, b.pixelCenter)
	}
	return b.origins[i], b.directions[i]
}
