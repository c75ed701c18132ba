// Package embed provides input encodings for radiance networks in Radiant.
//
// Raw 3D coordinates make it hard for an MLP to represent high-frequency
// geometry and texture. Positional encoding lifts each coordinate into a
// bank of sine and cosine features at geometrically spaced frequencies,
// which is what lets a compact network capture fine detail.
//
// Example usage:
//
//	import "github.com/radiant-ml/radiant/embed"
//
//	enc := embed.NewPositional[*cpu.Backend](10, 3)
//	features := enc.Embed(points)  // [n, 3] -> [n, 63]
package embed

import (
	"github.com/radiant-ml/radiant/internal/embed"
	"github.com/radiant-ml/radiant/internal/tensor"
)

// Embedder maps raw network inputs to encoded features.
type Embedder[B tensor.Backend] = embed.Embedder[B]

// Identity passes inputs through unchanged.
type Identity[B tensor.Backend] = embed.Identity[B]

// NewIdentity creates an identity embedder for inputs of inputDims channels.
func NewIdentity[B tensor.Backend](inputDims int) *Identity[B] {
	return embed.NewIdentity[B](inputDims)
}

// Positional encodes inputs with sine and cosine features at multires
// geometrically spaced frequency bands, keeping the raw input as the first
// channels.
type Positional[B tensor.Backend] = embed.Positional[B]

// NewPositional creates a positional encoder. The output width is
// inputDims * (1 + 2*multires).
func NewPositional[B tensor.Backend](multires, inputDims int) *Positional[B] {
	return embed.NewPositional[B](multires, inputDims)
}
