package render

import (
	"fmt"
	"math"

	"github.com/radiant-ml/radiant/internal/tensor"
)

// RayBatch holds a batch of camera rays. Origins and Directions are [R, 3];
// Directions may be non-unit, carrying depth-scale information. ViewDirs are
// the unit-normalized directions fed to the view-dependent network head.
//
// Ray ordering is preserved through the whole pipeline: the caller reshapes
// rendered pixels back into images by index.
type RayBatch[B tensor.Backend] struct {
	Origins    *tensor.Tensor[float32, B]
	Directions *tensor.Tensor[float32, B]
	ViewDirs   *tensor.Tensor[float32, B] // nil when view dependence is off
}

// NumRays returns the batch size.
func (r *RayBatch[B]) NumRays() int { return r.Origins.Shape()[0] }

// NewRayBatch validates shapes and derives normalized view directions when
// withViewDirs is set.
func NewRayBatch[B tensor.Backend](origins, directions *tensor.Tensor[float32, B], withViewDirs bool, backend B) (*RayBatch[B], error) {
	oShape, dShape := origins.Shape(), directions.Shape()
	if len(oShape) != 2 || oShape[1] != 3 {
		return nil, fmt.Errorf("render: ray origins must be [R, 3], got %v", oShape)
	}
	if !oShape.Equal(dShape) {
		return nil, fmt.Errorf("render: ray origins %v and directions %v must match", oShape, dShape)
	}
	if oShape[0] == 0 {
		return nil, fmt.Errorf("render: empty ray batch")
	}

	batch := &RayBatch[B]{Origins: origins, Directions: directions}
	if withViewDirs {
		batch.ViewDirs = normalizeRows(directions, backend)
	}
	return batch, nil
}

// normalizeRows returns d / ||d|| per row.
func normalizeRows[B tensor.Backend](dirs *tensor.Tensor[float32, B], backend B) *tensor.Tensor[float32, B] {
	shape := dirs.Shape()
	raw, err := tensor.NewRaw(shape.Clone(), tensor.Float32, backend.Device())
	if err != nil {
		panic(fmt.Sprintf("render: failed to allocate view directions: %v", err))
	}

	in, out := dirs.Data(), raw.AsFloat32()
	for r := 0; r < shape[0]; r++ {
		base := r * 3
		norm := float32(math.Sqrt(float64(in[base]*in[base] + in[base+1]*in[base+1] + in[base+2]*in[base+2])))
		if norm == 0 {
			continue
		}
		out[base] = in[base] / norm
		out[base+1] = in[base+1] / norm
		out[base+2] = in[base+2] / norm
	}
	return tensor.New[float32, B](raw, backend)
}

// NDCRays reprojects rays into normalized device coordinates for
// forward-facing captures: origins are first shifted to the near plane, then
// both origins and directions are mapped through the perspective projection
// defined by the image size and focal length.
func NDCRays[B tensor.Backend](height, width int, focal, near float32, rays *RayBatch[B], backend B) *RayBatch[B] {
	r := rays.NumRays()
	o := rays.Origins.Data()
	d := rays.Directions.Data()

	newO, err := tensor.NewRaw(tensor.Shape{r, 3}, tensor.Float32, backend.Device())
	if err != nil {
		panic(fmt.Sprintf("render: failed to allocate NDC origins: %v", err))
	}
	newD, err := tensor.NewRaw(tensor.Shape{r, 3}, tensor.Float32, backend.Device())
	if err != nil {
		panic(fmt.Sprintf("render: failed to allocate NDC directions: %v", err))
	}

	no, nd := newO.AsFloat32(), newD.AsFloat32()
	wScale := -1.0 / (float32(width) / (2.0 * focal))
	hScale := -1.0 / (float32(height) / (2.0 * focal))

	for i := 0; i < r; i++ {
		ox, oy, oz := o[i*3], o[i*3+1], o[i*3+2]
		dx, dy, dz := d[i*3], d[i*3+1], d[i*3+2]

		// Shift the origin onto the near plane.
		t := -(near + oz) / dz
		ox, oy, oz = ox+t*dx, oy+t*dy, oz+t*dz

		no[i*3] = wScale * ox / oz
		no[i*3+1] = hScale * oy / oz
		no[i*3+2] = 1.0 + 2.0*near/oz

		nd[i*3] = wScale * (dx/dz - ox/oz)
		nd[i*3+1] = hScale * (dy/dz - oy/oz)
		nd[i*3+2] = -2.0 * near / oz
	}

	out := &RayBatch[B]{
		Origins:    tensor.New[float32, B](newO, backend),
		Directions: tensor.New[float32, B](newD, backend),
		ViewDirs:   rays.ViewDirs, // view directions stay in world space
	}
	return out
}
