// Copyright 2025 Radiant ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor_test

import (
	"testing"

	"github.com/radiant-ml/radiant/internal/backend/cpu"
	"github.com/radiant-ml/radiant/tensor"
)

// TestBackendInterface verifies that cpu.CPUBackend implements tensor.Backend.
func TestBackendInterface(_ *testing.T) {
	var _ tensor.Backend = (*cpu.CPUBackend)(nil)
}

// TestRawTensorAPI verifies RawTensor type alias exposes expected API.
func TestRawTensorAPI(t *testing.T) {
	raw, err := tensor.NewRaw(tensor.Shape{2, 3}, tensor.Float32, tensor.CPU)
	if err != nil {
		t.Fatalf("NewRaw failed: %v", err)
	}

	if !raw.Shape().Equal(tensor.Shape{2, 3}) {
		t.Errorf("Shape() = %v, want [2 3]", raw.Shape())
	}
	if raw.DType() != tensor.Float32 {
		t.Errorf("DType() = %v, want Float32", raw.DType())
	}
	if raw.Device() != tensor.CPU {
		t.Errorf("Device() = %v, want CPU", raw.Device())
	}
	if raw.NumElements() != 6 {
		t.Errorf("NumElements() = %d, want 6", raw.NumElements())
	}
	if raw.ByteSize() != 24 {
		t.Errorf("ByteSize() = %d, want 24", raw.ByteSize())
	}
}

// TestPublicCreationFunctions exercises the re-exported creation helpers.
func TestPublicCreationFunctions(t *testing.T) {
	backend := cpu.New()

	x := tensor.Zeros[float32](tensor.Shape{2, 2}, backend)
	y := tensor.Ones[float32](tensor.Shape{2, 2}, backend)
	z := x.Add(y)

	for i, v := range z.Data() {
		if v != 1 {
			t.Fatalf("z[%d] = %f, want 1", i, v)
		}
	}

	w, err := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2}, backend)
	if err != nil {
		t.Fatalf("FromSlice failed: %v", err)
	}
	if w.At(1, 0) != 3 {
		t.Errorf("At(1, 0) = %f, want 3", w.At(1, 0))
	}
}
