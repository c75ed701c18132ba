// Copyright 2025 Radiant ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides neural network layers and building blocks.
//
// # Overview
//
// This package contains:
//   - Layers: Linear
//   - Activations: ReLU, Sigmoid
//   - Loss functions: MSELoss
//   - Utilities: Module interface, Parameter
//   - Initialization: Xavier
//
// # Basic Usage
//
//	import (
//	    "github.com/radiant-ml/radiant/nn"
//	    "github.com/radiant-ml/radiant/backend/cpu"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    rng := rand.New(rand.NewSource(1))
//
//	    layer := nn.NewLinear(63, 256, rng, backend)
//	    relu := nn.NewReLU[*cpu.Backend]()
//
//	    // Forward pass
//	    output := relu.Forward(layer.Forward(input))
//	}
//
// # Loss Functions
//
// MSELoss: Mean squared reconstruction error
//
//	criterion := nn.NewMSELoss(backend)
//	loss := criterion.Forward(predictions, targets)
package nn
