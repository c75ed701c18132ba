// Package nerf provides the coarse/fine radiance field model for Radiant.
//
// This package wraps the internal nerf implementations and provides a clean
// public API for building and rendering neural radiance fields.
//
// Components:
//   - Network: The radiance MLP with skip connections and an optional
//     view-dependent head
//   - Model: The full coarse/fine pipeline from ray batch to pixel values
//   - Gatherer: Assembly of chunked render results into full images
//
// Example usage:
//
//	import (
//	    "github.com/radiant-ml/radiant/nerf"
//	    "github.com/radiant-ml/radiant/autodiff"
//	    "github.com/radiant-ml/radiant/backend/cpu"
//	)
//
//	backend := autodiff.New(cpu.New())
//	rng := rand.New(rand.NewSource(1))
//	model, err := nerf.NewModel(nerf.DefaultModelConfig(), renderCfg, rng, backend)
//	out := model.Render(rays, renderCfg, rng)
package nerf

import (
	"math/rand"

	"github.com/radiant-ml/radiant/internal/nerf"
	"github.com/radiant-ml/radiant/internal/render"
	"github.com/radiant-ml/radiant/internal/tensor"
)

// Network

// NetworkConfig describes one radiance MLP: depth, width, input channels,
// skip connections and the view-dependence of the output head.
type NetworkConfig = nerf.NetworkConfig

// DefaultNetworkConfig returns the standard 8x256 network with a skip
// connection at layer 4 and a view-dependent head.
func DefaultNetworkConfig() NetworkConfig {
	return nerf.DefaultNetworkConfig()
}

// Network is a radiance MLP mapping encoded sample points (and optionally
// encoded view directions) to raw color and density.
type Network[B tensor.Backend] = nerf.Network[B]

// NewNetwork builds a network with Xavier-initialized layers drawn from rng.
func NewNetwork[B tensor.Backend](config NetworkConfig, rng *rand.Rand, backend B) (*Network[B], error) {
	return nerf.NewNetwork(config, rng, backend)
}

// Model

// ModelConfig describes the full coarse/fine model: encoder resolutions and
// the architecture of both networks.
type ModelConfig = nerf.ModelConfig

// DefaultModelConfig returns the standard configuration: multires 10
// position encoding, multires 4 direction encoding, 8x256 networks.
func DefaultModelConfig() ModelConfig {
	return nerf.DefaultModelConfig()
}

// Output bundles the fine render result with the coarse result when a fine
// pass ran.
type Output[B tensor.Backend] = nerf.Output[B]

// Model is the full radiance field pipeline: positional encoders, a coarse
// network, and optionally a fine network fed by importance resampling.
type Model[B tensor.Backend] = nerf.Model[B]

// NewModel builds a model for the given render configuration.
func NewModel[B tensor.Backend](config ModelConfig, renderCfg render.Config, rng *rand.Rand, backend B) (*Model[B], error) {
	return nerf.NewModel(config, renderCfg, rng, backend)
}

// Image assembly

// Image holds a rendered frame: [H, W, 3] RGB plus [H, W] disparity,
// accumulated opacity and depth maps.
type Image[B tensor.Backend] = nerf.Image[B]

// Gatherer accumulates chunked render results and assembles them into a
// full image, trimming any trailing padding rays.
type Gatherer[B tensor.Backend] = nerf.Gatherer[B]

// NewGatherer creates an empty gatherer.
func NewGatherer[B tensor.Backend]() *Gatherer[B] {
	return nerf.NewGatherer[B]()
}
