package serialization

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"

	"github.com/radiant-ml/radiant/internal/tensor"
)

// maxHeaderSize bounds the JSON header to reject corrupt files before
// allocating.
const maxHeaderSize = 64 << 20

// ReadStateDict reads a .radiant file back into a state dictionary, on the
// CPU device, together with its header.
func ReadStateDict(path string) (map[string]*tensor.RawTensor, *Header, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("serialization: %w", err)
	}
	defer file.Close()

	magic := make([]byte, len(MagicBytes))
	if _, err := io.ReadFull(file, magic); err != nil {
		return nil, nil, fmt.Errorf("serialization: reading magic: %w", err)
	}
	if string(magic) != MagicBytes {
		return nil, nil, fmt.Errorf("serialization: %s is not a .radiant file", path)
	}

	var version, flags uint32
	if err := binary.Read(file, binary.LittleEndian, &version); err != nil {
		return nil, nil, fmt.Errorf("serialization: reading version: %w", err)
	}
	if version != FormatVersion {
		return nil, nil, fmt.Errorf("serialization: unsupported format version %d", version)
	}
	if err := binary.Read(file, binary.LittleEndian, &flags); err != nil {
		return nil, nil, fmt.Errorf("serialization: reading flags: %w", err)
	}

	var headerSize uint64
	if err := binary.Read(file, binary.LittleEndian, &headerSize); err != nil {
		return nil, nil, fmt.Errorf("serialization: reading header size: %w", err)
	}
	if headerSize > maxHeaderSize {
		return nil, nil, fmt.Errorf("serialization: header size %d exceeds limit", headerSize)
	}

	headerJSON := make([]byte, headerSize)
	if _, err := io.ReadFull(file, headerJSON); err != nil {
		return nil, nil, fmt.Errorf("serialization: reading header: %w", err)
	}
	var header Header
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		return nil, nil, fmt.Errorf("serialization: parsing header: %w", err)
	}

	pos := int64(len(MagicBytes)+4+4+8) + int64(headerSize)
	if padding := (HeaderAlignment - pos%HeaderAlignment) % HeaderAlignment; padding > 0 {
		if _, err := io.CopyN(io.Discard, file, padding); err != nil {
			return nil, nil, fmt.Errorf("serialization: skipping padding: %w", err)
		}
	}

	var payload io.Reader = file
	if flags&FlagCompressed != 0 {
		zr, err := gzip.NewReader(file)
		if err != nil {
			return nil, nil, fmt.Errorf("serialization: opening compressed payload: %w", err)
		}
		defer zr.Close()
		payload = zr
	}

	// Tensors were written back to back in table order.
	stateDict := make(map[string]*tensor.RawTensor, len(header.Tensors))
	var read int64
	for _, meta := range header.Tensors {
		if meta.Offset != read {
			return nil, nil, fmt.Errorf("serialization: tensor %s at offset %d, expected %d", meta.Name, meta.Offset, read)
		}
		dtype, ok := stringToDtype(meta.DType)
		if !ok {
			return nil, nil, fmt.Errorf("serialization: tensor %s has unknown dtype %q", meta.Name, meta.DType)
		}

		raw, err := tensor.NewRaw(tensor.Shape(meta.Shape), dtype, tensor.CPU)
		if err != nil {
			return nil, nil, fmt.Errorf("serialization: tensor %s: %w", meta.Name, err)
		}
		if got := int64(raw.ByteSize()); got != meta.Size {
			return nil, nil, fmt.Errorf("serialization: tensor %s declares %d bytes, shape needs %d", meta.Name, meta.Size, got)
		}
		if _, err := io.ReadFull(payload, raw.Data()); err != nil {
			return nil, nil, fmt.Errorf("serialization: reading tensor %s: %w", meta.Name, err)
		}
		stateDict[meta.Name] = raw
		read += meta.Size
	}
	return stateDict, &header, nil
}
