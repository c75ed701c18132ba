package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radiant-ml/radiant/internal/tensor"
)

func rawFromF32(t *testing.T, shape tensor.Shape, data []float32) *tensor.RawTensor {
	t.Helper()
	raw, err := tensor.NewRaw(shape, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	copy(raw.AsFloat32(), data)
	return raw
}

func TestBinaryOps(t *testing.T) {
	b := New()
	a := rawFromF32(t, tensor.Shape{2, 2}, []float32{1, 2, 3, 4})
	c := rawFromF32(t, tensor.Shape{2, 2}, []float32{5, 6, 7, 8})

	assert.Equal(t, []float32{6, 8, 10, 12}, b.Add(a, c).AsFloat32())
	assert.Equal(t, []float32{-4, -4, -4, -4}, b.Sub(a, c).AsFloat32())
	assert.Equal(t, []float32{5, 12, 21, 32}, b.Mul(a, c).AsFloat32())
	assert.InDeltaSlice(t, []float32{0.2, 1.0 / 3, 3.0 / 7, 0.5}, b.Div(a, c).AsFloat32(), 1e-6)
}

func TestBroadcastAdd(t *testing.T) {
	b := New()
	a := rawFromF32(t, tensor.Shape{2, 3}, []float32{1, 2, 3, 4, 5, 6})
	row := rawFromF32(t, tensor.Shape{1, 3}, []float32{10, 20, 30})

	got := b.Add(a, row)
	assert.Equal(t, tensor.Shape{2, 3}, got.Shape())
	assert.Equal(t, []float32{11, 22, 33, 14, 25, 36}, got.AsFloat32())
}

func TestBroadcastColumn(t *testing.T) {
	b := New()
	a := rawFromF32(t, tensor.Shape{2, 3}, []float32{1, 2, 3, 4, 5, 6})
	col := rawFromF32(t, tensor.Shape{2, 1}, []float32{10, 100})

	got := b.Mul(a, col)
	assert.Equal(t, []float32{10, 20, 30, 400, 500, 600}, got.AsFloat32())
}

func TestMatMul(t *testing.T) {
	b := New()
	a := rawFromF32(t, tensor.Shape{2, 3}, []float32{1, 2, 3, 4, 5, 6})
	w := rawFromF32(t, tensor.Shape{3, 2}, []float32{7, 8, 9, 10, 11, 12})

	got := b.MatMul(a, w)
	assert.Equal(t, tensor.Shape{2, 2}, got.Shape())
	assert.Equal(t, []float32{58, 64, 139, 154}, got.AsFloat32())
}

func TestMatMulShapeMismatchPanics(t *testing.T) {
	b := New()
	a := rawFromF32(t, tensor.Shape{2, 3}, make([]float32, 6))
	w := rawFromF32(t, tensor.Shape{2, 2}, make([]float32, 4))

	assert.Panics(t, func() { b.MatMul(a, w) })
}

func TestTranspose2D(t *testing.T) {
	b := New()
	a := rawFromF32(t, tensor.Shape{2, 3}, []float32{1, 2, 3, 4, 5, 6})

	got := b.Transpose(a)
	assert.Equal(t, tensor.Shape{3, 2}, got.Shape())
	assert.Equal(t, []float32{1, 4, 2, 5, 3, 6}, got.AsFloat32())
}

func TestReshapeInferred(t *testing.T) {
	b := New()
	a := rawFromF32(t, tensor.Shape{2, 3}, []float32{1, 2, 3, 4, 5, 6})

	got := b.Reshape(a, tensor.Shape{3, -1})
	assert.Equal(t, tensor.Shape{3, 2}, got.Shape())
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, got.AsFloat32())
}

func TestScalarOps(t *testing.T) {
	b := New()
	a := rawFromF32(t, tensor.Shape{4}, []float32{-2, -0.5, 0.5, 2})

	assert.Equal(t, []float32{-1, 0.5, 1.5, 3}, b.AddScalar(a, float32(1)).AsFloat32())
	assert.Equal(t, []float32{-4, -1, 1, 4}, b.MulScalar(a, 2.0).AsFloat32())
	assert.Equal(t, []float32{0, 0, 0.5, 2}, b.MaximumScalar(a, 0.0).AsFloat32())
}

func TestReductions(t *testing.T) {
	b := New()
	a := rawFromF32(t, tensor.Shape{2, 3}, []float32{1, 2, 3, 4, 5, 6})

	assert.Equal(t, []float32{21}, b.Sum(a).AsFloat32())
	assert.InDelta(t, 3.5, b.Mean(a).AsFloat32()[0], 1e-6)

	alongRows := b.SumDim(a, 0, false)
	assert.Equal(t, tensor.Shape{3}, alongRows.Shape())
	assert.Equal(t, []float32{5, 7, 9}, alongRows.AsFloat32())

	alongCols := b.SumDim(a, -1, true)
	assert.Equal(t, tensor.Shape{2, 1}, alongCols.Shape())
	assert.Equal(t, []float32{6, 15}, alongCols.AsFloat32())

	meanCols := b.MeanDim(a, 1, false)
	assert.Equal(t, []float32{2, 5}, meanCols.AsFloat32())
}

func TestCat(t *testing.T) {
	b := New()
	a := rawFromF32(t, tensor.Shape{2, 2}, []float32{1, 2, 3, 4})
	c := rawFromF32(t, tensor.Shape{2, 3}, []float32{5, 6, 7, 8, 9, 10})

	got := b.Cat([]*tensor.RawTensor{a, c}, 1)
	assert.Equal(t, tensor.Shape{2, 5}, got.Shape())
	assert.Equal(t, []float32{1, 2, 5, 6, 7, 3, 4, 8, 9, 10}, got.AsFloat32())

	rows := b.Cat([]*tensor.RawTensor{a, a}, 0)
	assert.Equal(t, tensor.Shape{4, 2}, rows.Shape())
	assert.Equal(t, []float32{1, 2, 3, 4, 1, 2, 3, 4}, rows.AsFloat32())
}

func TestNarrowIsView(t *testing.T) {
	b := New()
	a := rawFromF32(t, tensor.Shape{4, 2}, []float32{1, 2, 3, 4, 5, 6, 7, 8})

	view := b.Narrow(a, 1, 2)
	assert.Equal(t, tensor.Shape{2, 2}, view.Shape())
	assert.Equal(t, []float32{3, 4, 5, 6}, view.AsFloat32())

	// The view aliases the source buffer.
	a.AsFloat32()[2] = 99
	assert.Equal(t, float32(99), view.AsFloat32()[0])
}

func TestCumprodExclusive(t *testing.T) {
	b := New()
	a := rawFromF32(t, tensor.Shape{2, 4}, []float32{2, 3, 4, 5, 1, 0.5, 0.5, 2})

	got := b.CumprodExclusive(a)
	assert.Equal(t, []float32{1, 2, 6, 24, 1, 1, 0.5, 0.25}, got.AsFloat32())
}

func TestActivations(t *testing.T) {
	b := New()
	a := rawFromF32(t, tensor.Shape{3}, []float32{-1, 0, 2})

	assert.Equal(t, []float32{0, 0, 2}, b.ReLU(a).AsFloat32())

	sig := b.Sigmoid(a).AsFloat32()
	assert.InDelta(t, 0.26894143, sig[0], 1e-6)
	assert.InDelta(t, 0.5, sig[1], 1e-6)
	assert.InDelta(t, 0.880797, sig[2], 1e-6)
}

func TestExpandBroadcasts(t *testing.T) {
	b := New()
	a := rawFromF32(t, tensor.Shape{1, 3}, []float32{1, 2, 3})

	got := b.Expand(a, tensor.Shape{2, 3})
	assert.Equal(t, []float32{1, 2, 3, 1, 2, 3}, got.AsFloat32())
}

func TestUnsqueezeSqueeze(t *testing.T) {
	b := New()
	a := rawFromF32(t, tensor.Shape{2, 3}, []float32{1, 2, 3, 4, 5, 6})

	up := b.Unsqueeze(a, 1)
	assert.Equal(t, tensor.Shape{2, 1, 3}, up.Shape())

	down := b.Squeeze(up, 1)
	assert.Equal(t, tensor.Shape{2, 3}, down.Shape())
}
