package render

import (
	"fmt"

	"github.com/radiant-ml/radiant/internal/embed"
	"github.com/radiant-ml/radiant/internal/tensor"
)

// NetworkFunc evaluates a radiance network on a batch of encoded inputs
// [n, inputCh(+inputChViews)] and returns raw outputs [n, outCh].
type NetworkFunc[B tensor.Backend] func(encoded *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B]

// QueryNetwork evaluates the network on every sample point, bounding peak
// memory by splitting the encoded batch into chunks of at most chunkSize
// rows.
//
// points is [R, S, 3]; viewdirs, when non-nil, is [R, 3] and each ray's
// direction is broadcast across its S samples before encoding. The result
// is [R, S, outCh] with row order preserved: chunking is purely a memory
// management detail and never changes values.
func QueryNetwork[B tensor.Backend](
	points *tensor.Tensor[float32, B],
	viewdirs *tensor.Tensor[float32, B],
	network NetworkFunc[B],
	embedFn embed.Embedder[B],
	embedDirsFn embed.Embedder[B],
	chunkSize int,
	backend B,
) *tensor.Tensor[float32, B] {
	shape := points.Shape()
	if len(shape) != 3 || shape[2] != 3 {
		panic(fmt.Sprintf("render: points must be [R, S, 3], got %v", shape))
	}
	r, s := shape[0], shape[1]
	n := r * s

	flat := points.Reshape(n, 3)
	encoded := embedFn.Embed(flat)

	if viewdirs != nil {
		if embedDirsFn == nil {
			panic("render: view directions supplied without a direction embedder")
		}
		dirs := repeatPerSample(viewdirs, s, backend)
		encoded = tensor.Cat([]*tensor.Tensor[float32, B]{encoded, embedDirsFn.Embed(dirs)}, -1)
	}

	if chunkSize <= 0 || chunkSize >= n {
		out := network(encoded)
		return out.Reshape(r, s, out.Shape()[1])
	}

	var outputs []*tensor.Tensor[float32, B]
	for start := 0; start < n; start += chunkSize {
		length := min(chunkSize, n-start)
		chunk := encoded.Narrow(start, length)
		outputs = append(outputs, network(chunk))
	}
	out := tensor.Cat(outputs, 0)
	return out.Reshape(r, s, out.Shape()[1])
}

// repeatPerSample expands per-ray directions [R, 3] to per-sample rows
// [R*S, 3].
func repeatPerSample[B tensor.Backend](viewdirs *tensor.Tensor[float32, B], samples int, backend B) *tensor.Tensor[float32, B] {
	shape := viewdirs.Shape()
	r := shape[0]

	out, err := tensor.NewRaw(tensor.Shape{r * samples, 3}, tensor.Float32, backend.Device())
	if err != nil {
		panic(fmt.Sprintf("render: failed to allocate per-sample directions: %v", err))
	}
	in, data := viewdirs.Data(), out.AsFloat32()
	for row := 0; row < r; row++ {
		src := in[row*3 : (row+1)*3]
		for i := 0; i < samples; i++ {
			copy(data[(row*samples+i)*3:], src)
		}
	}
	return tensor.New[float32, B](out, backend)
}
