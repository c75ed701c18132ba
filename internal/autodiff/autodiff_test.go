package autodiff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radiant-ml/radiant/internal/backend/cpu"
	"github.com/radiant-ml/radiant/internal/tensor"
)

func rawFromF32(t *testing.T, shape tensor.Shape, data []float32) *tensor.RawTensor {
	t.Helper()
	raw, err := tensor.NewRaw(shape, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	copy(raw.AsFloat32(), data)
	return raw
}

func onesGrad(t *testing.T, shape tensor.Shape) *tensor.RawTensor {
	t.Helper()
	data := make([]float32, shape.NumElements())
	for i := range data {
		data[i] = 1
	}
	return rawFromF32(t, shape, data)
}

func TestTapeRecordsOnlyWhileRecording(t *testing.T) {
	b := New(cpu.New())
	x := rawFromF32(t, tensor.Shape{2}, []float32{1, 2})
	y := rawFromF32(t, tensor.Shape{2}, []float32{3, 4})

	b.Add(x, y)
	assert.Equal(t, 0, b.Tape().NumOps())

	b.Tape().StartRecording()
	b.Add(x, y)
	b.Mul(x, y)
	assert.Equal(t, 2, b.Tape().NumOps())

	b.Tape().Clear()
	assert.Equal(t, 0, b.Tape().NumOps())
	assert.True(t, b.Tape().IsRecording())
}

func TestBackwardSquare(t *testing.T) {
	b := New(cpu.New())
	b.Tape().StartRecording()

	x := rawFromF32(t, tensor.Shape{3}, []float32{2, -1, 3})
	y := b.Mul(x, x) // y = x²

	grads := b.Tape().Backward(onesGrad(t, tensor.Shape{3}), b)
	require.Contains(t, grads, x)
	assert.InDeltaSlice(t, []float32{4, -2, 6}, grads[x].AsFloat32(), 1e-6)
	_ = y
}

func TestBackwardAccumulatesSharedInput(t *testing.T) {
	b := New(cpu.New())
	b.Tape().StartRecording()

	x := rawFromF32(t, tensor.Shape{2}, []float32{1, 2})
	y := rawFromF32(t, tensor.Shape{2}, []float32{5, 7})

	// z = x*y + x, so dz/dx = y + 1.
	xy := b.Mul(x, y)
	z := b.Add(xy, x)

	grads := b.Tape().Backward(onesGrad(t, z.Shape()), b)
	assert.InDeltaSlice(t, []float32{6, 8}, grads[x].AsFloat32(), 1e-6)
	assert.InDeltaSlice(t, []float32{1, 2}, grads[y].AsFloat32(), 1e-6)
}

func TestBackwardThroughBroadcast(t *testing.T) {
	b := New(cpu.New())
	b.Tape().StartRecording()

	x := rawFromF32(t, tensor.Shape{2, 1}, []float32{1, 2})
	y := rawFromF32(t, tensor.Shape{2, 3}, []float32{1, 2, 3, 4, 5, 6})

	z := b.Mul(x, y)
	grads := b.Tape().Backward(onesGrad(t, z.Shape()), b)

	// grad_x[i] = sum of y's row i.
	require.Contains(t, grads, x)
	assert.Equal(t, tensor.Shape{2, 1}, grads[x].Shape())
	assert.InDeltaSlice(t, []float32{6, 15}, grads[x].AsFloat32(), 1e-6)
}

func TestBackwardMatMul(t *testing.T) {
	b := New(cpu.New())
	b.Tape().StartRecording()

	a := rawFromF32(t, tensor.Shape{2, 2}, []float32{1, 2, 3, 4})
	w := rawFromF32(t, tensor.Shape{2, 2}, []float32{5, 6, 7, 8})

	c := b.MatMul(a, w)
	grads := b.Tape().Backward(onesGrad(t, c.Shape()), b)

	// grad_A = ones @ W^T, grad_W = A^T @ ones.
	assert.InDeltaSlice(t, []float32{11, 15, 11, 15}, grads[a].AsFloat32(), 1e-6)
	assert.InDeltaSlice(t, []float32{4, 4, 6, 6}, grads[w].AsFloat32(), 1e-6)
}

func TestBackwardNoGradForDetachedBranch(t *testing.T) {
	b := New(cpu.New())
	b.Tape().StartRecording()

	x := rawFromF32(t, tensor.Shape{2}, []float32{1, 2})
	y := rawFromF32(t, tensor.Shape{2}, []float32{3, 4})

	z := b.Add(x, y)
	b.Tape().StopRecording()
	dead := b.Mul(z, z) // not recorded
	b.Tape().StartRecording()

	grads := b.Tape().Backward(onesGrad(t, z.Shape()), b)
	assert.Contains(t, grads, x)
	assert.NotContains(t, grads, dead)
}

func TestBackwardCatSplitsGradient(t *testing.T) {
	b := New(cpu.New())
	b.Tape().StartRecording()

	x := rawFromF32(t, tensor.Shape{2, 2}, []float32{1, 2, 3, 4})
	y := rawFromF32(t, tensor.Shape{2, 1}, []float32{5, 6})

	z := b.Cat([]*tensor.RawTensor{x, y}, 1)
	require.Equal(t, tensor.Shape{2, 3}, z.Shape())

	seed := rawFromF32(t, tensor.Shape{2, 3}, []float32{10, 20, 30, 40, 50, 60})
	grads := b.Tape().Backward(seed, b)

	assert.Equal(t, []float32{10, 20, 40, 50}, grads[x].AsFloat32())
	assert.Equal(t, []float32{30, 60}, grads[y].AsFloat32())
}

func TestBackwardHelperSeedsOnes(t *testing.T) {
	b := New(cpu.New())
	b.Tape().StartRecording()

	x, err := tensor.FromSlice([]float32{2, 3}, tensor.Shape{2}, b)
	require.NoError(t, err)
	loss := x.Mul(x).Mean()

	grads := Backward(loss, b)
	require.Contains(t, grads, x.Raw())
	// d(mean(x²))/dx = 2x/N.
	assert.InDeltaSlice(t, []float32{2, 3}, grads[x.Raw()].AsFloat32(), 1e-6)
}
