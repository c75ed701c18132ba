// Package serialization implements the .radiant checkpoint container:
// magic bytes, a little-endian fixed prefix, a JSON header describing the
// tensor table, padding to a 64-byte boundary, then the raw tensor payload,
// optionally gzip-compressed.
package serialization

import (
	"time"

	"github.com/radiant-ml/radiant/internal/tensor"
)

// Format constants.
const (
	MagicBytes      = "RADI"
	FormatVersion   = 1
	HeaderAlignment = 64 // tensor payload starts on a 64-byte boundary
)

// Data type names used in the tensor table.
const (
	DTypeFloat32 = "float32"
	DTypeFloat64 = "float64"
	DTypeInt32   = "int32"
	DTypeInt64   = "int64"
)

// Flags stored in the fixed prefix.
const (
	FlagCompressed   uint32 = 1 << 0 // payload is gzip-compressed
	FlagHasOptimizer uint32 = 1 << 1 // optimizer moments included
)

// Header is the JSON header of a .radiant file.
type Header struct {
	FormatVersion  int               `json:"format_version"`
	RadiantVersion string            `json:"radiant_version"`
	ModelType      string            `json:"model_type"`
	CreatedAt      time.Time         `json:"created_at"`
	Tensors        []TensorMeta      `json:"tensors"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	CheckpointMeta *CheckpointMeta   `json:"checkpoint,omitempty"`
}

// CheckpointMeta carries training state for resumable checkpoints.
type CheckpointMeta struct {
	Step          int     `json:"step"`
	Loss          float64 `json:"loss"`
	OptimizerType string  `json:"optimizer_type,omitempty"`
	LearningRate  float64 `json:"learning_rate,omitempty"`
}

// TensorMeta locates one tensor in the payload. Offset is relative to the
// start of the (uncompressed) payload.
type TensorMeta struct {
	Name   string `json:"name"`
	DType  string `json:"dtype"`
	Shape  []int  `json:"shape"`
	Offset int64  `json:"offset"`
	Size   int64  `json:"size"`
}

func dtypeToString(dt tensor.DataType) string {
	switch dt {
	case tensor.Float32:
		return DTypeFloat32
	case tensor.Float64:
		return DTypeFloat64
	case tensor.Int32:
		return DTypeInt32
	case tensor.Int64:
		return DTypeInt64
	default:
		return "unknown"
	}
}

func stringToDtype(s string) (tensor.DataType, bool) {
	switch s {
	case DTypeFloat32:
		return tensor.Float32, true
	case DTypeFloat64:
		return tensor.Float64, true
	case DTypeInt32:
		return tensor.Int32, true
	case DTypeInt64:
		return tensor.Int64, true
	default:
		return 0, false
	}
}
