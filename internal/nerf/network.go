// Package nerf implements a neural radiance field: an MLP mapping encoded
// 5D coordinates (position and view direction) to emitted color and volume
// density, plus the coarse/fine rendering model built on top of it.
package nerf

import (
	"fmt"
	"math/rand"

	"github.com/radiant-ml/radiant/internal/nn"
	"github.com/radiant-ml/radiant/internal/tensor"
)

// NetworkConfig describes the radiance MLP architecture.
type NetworkConfig struct {
	// Depth is the number of position layers.
	Depth int

	// Width is the hidden feature width.
	Width int

	// InputCh is the encoded position width.
	InputCh int

	// InputChViews is the encoded view direction width. Only used when
	// UseViewdirs is set.
	InputChViews int

	// OutputCh is the output width of the view-independent head. The
	// view-dependent head always emits 4 channels (rgb, sigma).
	OutputCh int

	// Skips lists position layer indices after which the encoded input is
	// concatenated back onto the hidden features.
	Skips []int

	// UseViewdirs selects the view-dependent head: density from position
	// features alone, color conditioned on the view direction.
	UseViewdirs bool
}

// DefaultNetworkConfig returns the standard architecture for a 10-frequency
// position encoding and 4-frequency direction encoding.
func DefaultNetworkConfig() NetworkConfig {
	return NetworkConfig{
		Depth:        8,
		Width:        256,
		InputCh:      63,
		InputChViews: 27,
		OutputCh:     4,
		Skips:        []int{4},
		UseViewdirs:  true,
	}
}

// Validate checks the architecture for internal consistency.
func (c NetworkConfig) Validate() error {
	if c.Depth < 1 {
		return fmt.Errorf("depth must be at least 1, got %d", c.Depth)
	}
	if c.Width < 1 {
		return fmt.Errorf("width must be at least 1, got %d", c.Width)
	}
	if c.InputCh < 1 {
		return fmt.Errorf("input channels must be at least 1, got %d", c.InputCh)
	}
	if c.UseViewdirs && c.InputChViews < 1 {
		return fmt.Errorf("view direction channels must be at least 1, got %d", c.InputChViews)
	}
	if !c.UseViewdirs && c.OutputCh < 4 {
		return fmt.Errorf("output channels must be at least 4, got %d", c.OutputCh)
	}
	for _, s := range c.Skips {
		if s < 0 || s > c.Depth-2 {
			return fmt.Errorf("skip index %d out of range [0, %d]", s, c.Depth-2)
		}
	}
	return nil
}

// Network is the radiance MLP.
//
// Positions pass through Depth hidden layers of Width features with ReLU
// activations; at each skip index the encoded position is concatenated back
// onto the features. With view directions enabled, density comes from a
// linear head on the position features while color passes through a
// half-width direction-conditioned branch. Output channels are (r, g, b,
// sigma) as raw logits: the compositor applies sigmoid and ReLU.
type Network[B tensor.Backend] struct {
	config NetworkConfig

	ptsLinears []*nn.Linear[B]
	relu       *nn.ReLU[B]

	// View-dependent head.
	alphaLinear   *nn.Linear[B]
	featureLinear *nn.Linear[B]
	viewsLinears  []*nn.Linear[B]
	rgbLinear     *nn.Linear[B]

	// View-independent head.
	outputLinear *nn.Linear[B]

	backend B
}

// NewNetwork builds a radiance MLP with Xavier-initialized weights drawn
// from rng.
func NewNetwork[B tensor.Backend](config NetworkConfig, rng *rand.Rand, backend B) (*Network[B], error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid network config: %w", err)
	}

	skips := make(map[int]bool, len(config.Skips))
	for _, s := range config.Skips {
		skips[s] = true
	}

	n := &Network[B]{
		config:  config,
		relu:    nn.NewReLU[B](),
		backend: backend,
	}

	n.ptsLinears = make([]*nn.Linear[B], config.Depth)
	n.ptsLinears[0] = nn.NewLinear[B](config.InputCh, config.Width, rng, backend)
	for i := 1; i < config.Depth; i++ {
		in := config.Width
		if skips[i-1] {
			in = config.Width + config.InputCh
		}
		n.ptsLinears[i] = nn.NewLinear[B](in, config.Width, rng, backend)
	}

	if config.UseViewdirs {
		n.alphaLinear = nn.NewLinear[B](config.Width, 1, rng, backend)
		n.featureLinear = nn.NewLinear[B](config.Width, config.Width, rng, backend)
		n.viewsLinears = []*nn.Linear[B]{
			nn.NewLinear[B](config.Width+config.InputChViews, config.Width/2, rng, backend),
		}
		n.rgbLinear = nn.NewLinear[B](config.Width/2, 3, rng, backend)
	} else {
		n.outputLinear = nn.NewLinear[B](config.Width, config.OutputCh, rng, backend)
	}
	return n, nil
}

// OutputCh returns the number of output channels per sample.
func (n *Network[B]) OutputCh() int {
	if n.config.UseViewdirs {
		return 4
	}
	return n.config.OutputCh
}

// Config returns the architecture description.
func (n *Network[B]) Config() NetworkConfig { return n.config }

// Forward evaluates the MLP on encoded inputs [batch, InputCh] or, with
// view directions enabled, [batch, InputCh+InputChViews] where the encoded
// direction occupies the trailing channels.
func (n *Network[B]) Forward(encoded *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	shape := encoded.Shape()
	want := n.config.InputCh
	if n.config.UseViewdirs {
		want += n.config.InputChViews
	}
	if len(shape) != 2 || shape[1] != want {
		panic(fmt.Sprintf("nerf: expected encoded input [batch, %d], got %v", want, shape))
	}

	skips := make(map[int]bool, len(n.config.Skips))
	for _, s := range n.config.Skips {
		skips[s] = true
	}

	pts := encoded
	var views *tensor.Tensor[float32, B]
	if n.config.UseViewdirs {
		pts = columnSlice(encoded, 0, n.config.InputCh, n.backend)
		views = columnSlice(encoded, n.config.InputCh, n.config.InputChViews, n.backend)
	}

	h := pts
	for i, layer := range n.ptsLinears {
		h = n.relu.Forward(layer.Forward(h))
		if skips[i] {
			h = tensor.Cat([]*tensor.Tensor[float32, B]{pts, h}, -1)
		}
	}

	if !n.config.UseViewdirs {
		return n.outputLinear.Forward(h)
	}

	alpha := n.alphaLinear.Forward(h)
	feature := n.featureLinear.Forward(h)
	h = tensor.Cat([]*tensor.Tensor[float32, B]{feature, views}, -1)
	for _, layer := range n.viewsLinears {
		h = n.relu.Forward(layer.Forward(h))
	}
	rgb := n.rgbLinear.Forward(h)
	return tensor.Cat([]*tensor.Tensor[float32, B]{rgb, alpha}, -1)
}

// Parameters returns all trainable parameters.
func (n *Network[B]) Parameters() []*nn.Parameter[B] {
	var params []*nn.Parameter[B]
	for _, l := range n.ptsLinears {
		params = append(params, l.Parameters()...)
	}
	if n.config.UseViewdirs {
		params = append(params, n.alphaLinear.Parameters()...)
		params = append(params, n.featureLinear.Parameters()...)
		for _, l := range n.viewsLinears {
			params = append(params, l.Parameters()...)
		}
		params = append(params, n.rgbLinear.Parameters()...)
	} else {
		params = append(params, n.outputLinear.Parameters()...)
	}
	return params
}

// StateDict returns all parameters keyed by layer path.
func (n *Network[B]) StateDict() map[string]*tensor.RawTensor {
	out := make(map[string]*tensor.RawTensor)
	for i, l := range n.ptsLinears {
		mergeStateDict(out, fmt.Sprintf("pts_linears.%d", i), l.StateDict())
	}
	if n.config.UseViewdirs {
		mergeStateDict(out, "alpha_linear", n.alphaLinear.StateDict())
		mergeStateDict(out, "feature_linear", n.featureLinear.StateDict())
		for i, l := range n.viewsLinears {
			mergeStateDict(out, fmt.Sprintf("views_linears.%d", i), l.StateDict())
		}
		mergeStateDict(out, "rgb_linear", n.rgbLinear.StateDict())
	} else {
		mergeStateDict(out, "output_linear", n.outputLinear.StateDict())
	}
	return out
}

// LoadStateDict restores all parameters from a state dictionary produced by
// StateDict on an identically configured network.
func (n *Network[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	for i, l := range n.ptsLinears {
		if err := l.LoadStateDict(subStateDict(stateDict, fmt.Sprintf("pts_linears.%d", i))); err != nil {
			return fmt.Errorf("pts_linears.%d: %w", i, err)
		}
	}
	if !n.config.UseViewdirs {
		if err := n.outputLinear.LoadStateDict(subStateDict(stateDict, "output_linear")); err != nil {
			return fmt.Errorf("output_linear: %w", err)
		}
		return nil
	}
	if err := n.alphaLinear.LoadStateDict(subStateDict(stateDict, "alpha_linear")); err != nil {
		return fmt.Errorf("alpha_linear: %w", err)
	}
	if err := n.featureLinear.LoadStateDict(subStateDict(stateDict, "feature_linear")); err != nil {
		return fmt.Errorf("feature_linear: %w", err)
	}
	for i, l := range n.viewsLinears {
		if err := l.LoadStateDict(subStateDict(stateDict, fmt.Sprintf("views_linears.%d", i))); err != nil {
			return fmt.Errorf("views_linears.%d: %w", i, err)
		}
	}
	if err := n.rgbLinear.LoadStateDict(subStateDict(stateDict, "rgb_linear")); err != nil {
		return fmt.Errorf("rgb_linear: %w", err)
	}
	return nil
}

func mergeStateDict(dst map[string]*tensor.RawTensor, prefix string, src map[string]*tensor.RawTensor) {
	for k, v := range src {
		dst[prefix+"."+k] = v
	}
}

func subStateDict(src map[string]*tensor.RawTensor, prefix string) map[string]*tensor.RawTensor {
	out := make(map[string]*tensor.RawTensor)
	for k, v := range src {
		if len(k) > len(prefix)+1 && k[:len(prefix)+1] == prefix+"." {
			out[k[len(prefix)+1:]] = v
		}
	}
	return out
}

// columnSlice copies columns [start, start+length) of a 2D tensor. Encoded
// inputs are constant leaves, so the slice is not recorded on the tape.
func columnSlice[B tensor.Backend](x *tensor.Tensor[float32, B], start, length int, backend B) *tensor.Tensor[float32, B] {
	shape := x.Shape()
	rows, cols := shape[0], shape[1]

	out, err := tensor.NewRaw(tensor.Shape{rows, length}, tensor.Float32, backend.Device())
	if err != nil {
		panic(fmt.Sprintf("nerf: failed to allocate column slice: %v", err))
	}
	in, data := x.Data(), out.AsFloat32()
	for r := 0; r < rows; r++ {
		copy(data[r*length:(r+1)*length], in[r*cols+start:r*cols+start+length])
	}
	return tensor.New[float32, B](out, backend)
}
