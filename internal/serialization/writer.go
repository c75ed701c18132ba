package serialization

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/radiant-ml/radiant/internal/tensor"
)

const radiantVersion = "0.1.0"

// WriteOptions controls how a state dictionary is written.
type WriteOptions struct {
	// ModelType labels the checkpoint, e.g. "nerf".
	ModelType string

	// Compress gzips the tensor payload.
	Compress bool

	// Metadata carries free-form key/value pairs into the header.
	Metadata map[string]string

	// Checkpoint adds training state; its presence marks the file as
	// resumable.
	Checkpoint *CheckpointMeta

	// HasOptimizer marks that optimizer moments are among the tensors.
	HasOptimizer bool
}

// WriteStateDict writes a state dictionary as a .radiant file. Tensors are
// written in sorted name order so identical state produces identical files.
func WriteStateDict(path string, stateDict map[string]*tensor.RawTensor, opts WriteOptions) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("serialization: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("serialization: %w", cerr)
		}
	}()

	names := make([]string, 0, len(stateDict))
	for name := range stateDict {
		names = append(names, name)
	}
	sort.Strings(names)

	header := Header{
		FormatVersion:  FormatVersion,
		RadiantVersion: radiantVersion,
		ModelType:      opts.ModelType,
		CreatedAt:      time.Now().UTC(),
		Metadata:       opts.Metadata,
		CheckpointMeta: opts.Checkpoint,
		Tensors:        make([]TensorMeta, 0, len(names)),
	}

	var offset int64
	for _, name := range names {
		raw := stateDict[name]
		size := int64(raw.ByteSize())
		header.Tensors = append(header.Tensors, TensorMeta{
			Name:   name,
			DType:  dtypeToString(raw.DType()),
			Shape:  []int(raw.Shape()),
			Offset: offset,
			Size:   size,
		})
		offset += size
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("serialization: marshaling header: %w", err)
	}

	var flags uint32
	if opts.Compress {
		flags |= FlagCompressed
	}
	if opts.HasOptimizer {
		flags |= FlagHasOptimizer
	}

	if _, err := file.WriteString(MagicBytes); err != nil {
		return fmt.Errorf("serialization: writing magic: %w", err)
	}
	if err := binary.Write(file, binary.LittleEndian, uint32(FormatVersion)); err != nil {
		return fmt.Errorf("serialization: writing version: %w", err)
	}
	if err := binary.Write(file, binary.LittleEndian, flags); err != nil {
		return fmt.Errorf("serialization: writing flags: %w", err)
	}
	if err := binary.Write(file, binary.LittleEndian, uint64(len(headerJSON))); err != nil {
		return fmt.Errorf("serialization: writing header size: %w", err)
	}
	if _, err := file.Write(headerJSON); err != nil {
		return fmt.Errorf("serialization: writing header: %w", err)
	}

	pos := int64(len(MagicBytes)+4+4+8) + int64(len(headerJSON))
	if padding := (HeaderAlignment - pos%HeaderAlignment) % HeaderAlignment; padding > 0 {
		if _, err := file.Write(make([]byte, padding)); err != nil {
			return fmt.Errorf("serialization: writing padding: %w", err)
		}
	}

	if opts.Compress {
		zw := gzip.NewWriter(file)
		for _, name := range names {
			if _, err := zw.Write(stateDict[name].Data()); err != nil {
				return fmt.Errorf("serialization: writing tensor %s: %w", name, err)
			}
		}
		if err := zw.Close(); err != nil {
			return fmt.Errorf("serialization: closing compressor: %w", err)
		}
		return nil
	}

	for _, name := range names {
		if _, err := file.Write(stateDict[name].Data()); err != nil {
			return fmt.Errorf("serialization: writing tensor %s: %w", name, err)
		}
	}
	return nil
}
