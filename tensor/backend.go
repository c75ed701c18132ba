// Copyright 2025 Radiant ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import "github.com/radiant-ml/radiant/internal/tensor"

// Backend defines the interface that all compute backends must implement.
// Backends handle the actual computation for tensor operations.
//
// Implementations:
//   - backend/cpu: Pure Go kernels with worker-pool parallelism
//
// Decorator backends for additional functionality:
//   - autodiff: Automatic differentiation (wraps any backend)
//
// Example:
//
//	import (
//	    "github.com/radiant-ml/radiant/tensor"
//	    "github.com/radiant-ml/radiant/backend/cpu"
//	)
//
//	backend := cpu.New()
//	x := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
//	y := tensor.Ones[float32](tensor.Shape{2, 3}, backend)
//	z := x.Add(y)  // Uses backend.Add under the hood
type Backend = tensor.Backend

// ReLUBackend is implemented by backends with a fused ReLU kernel.
type ReLUBackend = tensor.ReLUBackend

// SigmoidBackend is implemented by backends with a fused sigmoid kernel.
type SigmoidBackend = tensor.SigmoidBackend
