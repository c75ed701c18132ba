// Copyright 2025 Radiant ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides optimization algorithms for training.
//
// # Overview
//
// This package contains:
//   - SGD: Stochastic gradient descent with optional momentum
//   - Adam: Adaptive moment estimation with bias correction
//
// # Basic Usage
//
//	import (
//	    "github.com/radiant-ml/radiant/optim"
//	    "github.com/radiant-ml/radiant/autodiff"
//	    "github.com/radiant-ml/radiant/backend/cpu"
//	)
//
//	func main() {
//	    backend := autodiff.New(cpu.New())
//	    optimizer := optim.NewAdam(model.Parameters(), optim.AdamConfig{
//	        LR: 5e-4,
//	    }, backend)
//
//	    // Training step
//	    grads := autodiff.Backward(loss, backend)
//	    optimizer.Step(grads)
//	}
package optim
