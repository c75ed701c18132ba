// Package render implements the differentiable volumetric rendering
// pipeline: stratified ray sampling, chunked network queries, hierarchical
// importance resampling, and front-to-back alpha compositing.
//
// Sampling and resampling are index-selection steps and carry no gradients;
// compositing runs entirely through recorded tensor operations so the loss
// can back-propagate into the radiance network.
package render

import "fmt"

// Config is the immutable set of options controlling one render pass.
// Training and evaluation share most fields; EvalVariant derives the
// deterministic evaluation counterpart of a training config.
type Config struct {
	// NumCoarseSamples is the stratified sample count per ray.
	NumCoarseSamples int
	// NumFineSamples is the importance sample count per ray; zero disables
	// the fine pass.
	NumFineSamples int

	// Perturb jitters stratified samples within their bins and switches the
	// importance resampler to i.i.d. uniforms.
	Perturb bool
	// RawNoiseStd is the standard deviation of Gaussian noise added to raw
	// densities before activation, a train-time regularizer.
	RawNoiseStd float64
	// WhiteBackground composites against white instead of black.
	WhiteBackground bool

	// NDC reprojects rays into normalized device coordinates before
	// sampling; valid only for forward-facing captures.
	NDC bool
	// LinDisp samples linearly in disparity instead of depth. Ignored
	// under NDC.
	LinDisp bool

	// Near and Far bound the sampled depth range.
	Near float32
	Far  float32

	// ChunkSize bounds how many rays one render pass processes at a time.
	ChunkSize int
	// NetChunkSize bounds how many samples one network evaluation sees.
	NetChunkSize int
}

// EvalVariant returns a copy with perturbation and density noise disabled,
// making renders deterministic for validation and test.
func (c Config) EvalVariant() Config {
	c.Perturb = false
	c.RawNoiseStd = 0
	return c
}

// Validate reports the first structurally invalid field.
func (c Config) Validate() error {
	if c.NumCoarseSamples <= 0 {
		return fmt.Errorf("render: NumCoarseSamples must be > 0, got %d", c.NumCoarseSamples)
	}
	if c.NumFineSamples < 0 {
		return fmt.Errorf("render: NumFineSamples must be >= 0, got %d", c.NumFineSamples)
	}
	if !c.NDC && c.Near >= c.Far {
		return fmt.Errorf("render: near %v must be < far %v", c.Near, c.Far)
	}
	if c.RawNoiseStd < 0 {
		return fmt.Errorf("render: RawNoiseStd must be >= 0, got %v", c.RawNoiseStd)
	}
	if c.NetChunkSize < 0 || c.ChunkSize < 0 {
		return fmt.Errorf("render: chunk sizes must be >= 0")
	}
	return nil
}
