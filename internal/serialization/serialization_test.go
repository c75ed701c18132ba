package serialization

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radiant-ml/radiant/internal/tensor"
)

func rawWithValues(t *testing.T, shape tensor.Shape, values []float32) *tensor.RawTensor {
	t.Helper()
	raw, err := tensor.NewRaw(shape, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	copy(raw.AsFloat32(), values)
	return raw
}

func sampleStateDict(t *testing.T) map[string]*tensor.RawTensor {
	t.Helper()
	return map[string]*tensor.RawTensor{
		"layer.weight": rawWithValues(t, tensor.Shape{2, 3}, []float32{1, 2, 3, 4, 5, 6}),
		"layer.bias":   rawWithValues(t, tensor.Shape{2}, []float32{-1, 0.5}),
	}
}

func TestStateDictRoundTrip(t *testing.T) {
	for _, compress := range []bool{false, true} {
		path := filepath.Join(t.TempDir(), "model.radiant")
		src := sampleStateDict(t)

		require.NoError(t, WriteStateDict(path, src, WriteOptions{
			ModelType: "nerf",
			Compress:  compress,
			Metadata:  map[string]string{"scene": "lego"},
		}))

		got, header, err := ReadStateDict(path)
		require.NoError(t, err)

		assert.Equal(t, FormatVersion, header.FormatVersion)
		assert.Equal(t, "nerf", header.ModelType)
		assert.Equal(t, "lego", header.Metadata["scene"])

		require.Len(t, got, 2)
		for name, raw := range src {
			loaded, ok := got[name]
			require.True(t, ok, "missing tensor %s", name)
			assert.True(t, loaded.Shape().Equal(raw.Shape()))
			assert.Equal(t, raw.AsFloat32(), loaded.AsFloat32(), "compress=%v", compress)
		}
	}
}

func TestCheckpointMetaSurvives(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ckpt.radiant")
	require.NoError(t, WriteStateDict(path, sampleStateDict(t), WriteOptions{
		ModelType:    "nerf",
		HasOptimizer: true,
		Checkpoint: &CheckpointMeta{
			Step:          5000,
			Loss:          0.0123,
			OptimizerType: "Adam",
			LearningRate:  5e-4,
		},
	}))

	_, header, err := ReadStateDict(path)
	require.NoError(t, err)
	require.NotNil(t, header.CheckpointMeta)
	assert.Equal(t, 5000, header.CheckpointMeta.Step)
	assert.InDelta(t, 0.0123, header.CheckpointMeta.Loss, 1e-12)
	assert.Equal(t, "Adam", header.CheckpointMeta.OptimizerType)
}

func TestReadRejectsWrongMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bogus.radiant")
	require.NoError(t, os.WriteFile(path, []byte("not a checkpoint at all"), 0o644))

	_, _, err := ReadStateDict(path)
	assert.Error(t, err)
}

func TestReadRejectsTruncatedPayload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trunc.radiant")
	require.NoError(t, WriteStateDict(path, sampleStateDict(t), WriteOptions{}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data[:len(data)-8], 0o644))

	_, _, err = ReadStateDict(path)
	assert.Error(t, err)
}

func TestTensorTableIsSorted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sorted.radiant")
	require.NoError(t, WriteStateDict(path, sampleStateDict(t), WriteOptions{}))

	_, header, err := ReadStateDict(path)
	require.NoError(t, err)
	require.Len(t, header.Tensors, 2)
	assert.Equal(t, "layer.bias", header.Tensors[0].Name)
	assert.Equal(t, "layer.weight", header.Tensors[1].Name)
	assert.Equal(t, int64(0), header.Tensors[0].Offset)
	assert.Equal(t, int64(8), header.Tensors[1].Offset)
}
