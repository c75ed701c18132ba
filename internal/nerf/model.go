package nerf

import (
	"fmt"
	"math/rand"

	"github.com/radiant-ml/radiant/internal/embed"
	"github.com/radiant-ml/radiant/internal/nn"
	"github.com/radiant-ml/radiant/internal/render"
	"github.com/radiant-ml/radiant/internal/tensor"
)

// ModelConfig describes a coarse/fine radiance field pair and its input
// encodings.
type ModelConfig struct {
	// Multires is the number of position encoding frequencies.
	Multires int
	// MultiresViews is the number of view direction encoding frequencies.
	MultiresViews int

	// NetDepth and NetWidth size the coarse network.
	NetDepth int
	NetWidth int
	// NetDepthFine and NetWidthFine size the fine network. Zero values
	// reuse the coarse sizes.
	NetDepthFine int
	NetWidthFine int

	// Skips lists position layers followed by a skip connection.
	Skips []int

	// UseViewdirs conditions color on the viewing direction.
	UseViewdirs bool

	// UseFineNetwork allocates a separate network for importance samples.
	// Without it the fine pass reuses the coarse network.
	UseFineNetwork bool
}

// DefaultModelConfig returns the standard coarse/fine configuration.
func DefaultModelConfig() ModelConfig {
	return ModelConfig{
		Multires:       10,
		MultiresViews:  4,
		NetDepth:       8,
		NetWidth:       256,
		Skips:          []int{4},
		UseViewdirs:    true,
		UseFineNetwork: true,
	}
}

// Output bundles the results of one render pass. Result is always the
// finest pass; Coarse carries the first pass when importance sampling ran,
// so its reconstruction loss can be supervised as well.
type Output[B tensor.Backend] struct {
	Result *render.Result[B]
	Coarse *render.Result[B]
}

// Model is a coarse/fine neural radiance field: positional encoders, one or
// two radiance networks, and the sampling/rendering pipeline connecting
// them.
type Model[B tensor.Backend] struct {
	config ModelConfig

	embedPts  embed.Embedder[B]
	embedDirs embed.Embedder[B]

	coarse *Network[B]
	fine   *Network[B] // nil unless UseFineNetwork

	backend B
}

// NewModel builds the encoders and networks for config. renderCfg supplies
// the fine sample count, which fixes the view-independent output width.
func NewModel[B tensor.Backend](config ModelConfig, renderCfg render.Config, rng *rand.Rand, backend B) (*Model[B], error) {
	if err := renderCfg.Validate(); err != nil {
		return nil, err
	}

	m := &Model[B]{
		config:   config,
		embedPts: embed.NewPositional[B](config.Multires, 3),
		backend:  backend,
	}

	netCfg := NetworkConfig{
		Depth:       config.NetDepth,
		Width:       config.NetWidth,
		InputCh:     m.embedPts.OutputDim(),
		Skips:       config.Skips,
		UseViewdirs: config.UseViewdirs,
	}
	if config.UseViewdirs {
		m.embedDirs = embed.NewPositional[B](config.MultiresViews, 3)
		netCfg.InputChViews = m.embedDirs.OutputDim()
	} else if renderCfg.NumFineSamples > 0 {
		netCfg.OutputCh = 5
	} else {
		netCfg.OutputCh = 4
	}

	coarse, err := NewNetwork(netCfg, rng, backend)
	if err != nil {
		return nil, fmt.Errorf("coarse network: %w", err)
	}
	m.coarse = coarse

	if config.UseFineNetwork && renderCfg.NumFineSamples > 0 {
		fineCfg := netCfg
		if config.NetDepthFine > 0 {
			fineCfg.Depth = config.NetDepthFine
		}
		if config.NetWidthFine > 0 {
			fineCfg.Width = config.NetWidthFine
		}
		fine, err := NewNetwork(fineCfg, rng, backend)
		if err != nil {
			return nil, fmt.Errorf("fine network: %w", err)
		}
		m.fine = fine
	}
	return m, nil
}

// Coarse returns the coarse network.
func (m *Model[B]) Coarse() *Network[B] { return m.coarse }

// Fine returns the fine network, or nil when the fine pass reuses the
// coarse one.
func (m *Model[B]) Fine() *Network[B] { return m.fine }

// Render renders a batch of rays in one pass: stratified coarse sampling,
// then optional importance resampling around the coarse weights.
//
// Everything from the network query to the composited pixel stays on the
// gradient tape; depth selection does not.
func (m *Model[B]) Render(rays *render.RayBatch[B], cfg render.Config, rng *rand.Rand) *Output[B] {
	if m.config.UseViewdirs && rays.ViewDirs == nil {
		panic("nerf: model conditions on view directions but the ray batch has none")
	}
	if cfg.NumFineSamples > 0 && cfg.NumCoarseSamples < 3 {
		panic(fmt.Sprintf("nerf: importance sampling needs at least 3 coarse samples, got %d", cfg.NumCoarseSamples))
	}

	near, far, lindisp := cfg.Near, cfg.Far, cfg.LinDisp
	if cfg.NDC {
		// Rays are expected to already be projected through render.NDCRays;
		// depth is sampled in the unit range and LinDisp does not apply.
		near, far, lindisp = 0, 1, false
	}
	depths, points := render.SampleRays(rays, near, far, cfg.NumCoarseSamples, cfg.Perturb, lindisp, rng, m.backend)

	raw := render.QueryNetwork(points, rays.ViewDirs, m.coarse.Forward, m.embedPts, m.embedDirs, cfg.NetChunkSize, m.backend)
	result := render.Composite(raw, depths, rays.Directions, cfg.RawNoiseStd, cfg.WhiteBackground, rng, m.backend)

	if cfg.NumFineSamples == 0 {
		return &Output[B]{Result: result}
	}

	// Resample where the coarse pass found mass. Weights feed the sampler
	// as plain probabilities; cut from the tape so the fine pass does not
	// differentiate through sample placement.
	mids := render.Midpoints(depths, m.backend)
	interior := columnSlice(result.Weights.Detach(), 1, cfg.NumCoarseSamples-2, m.backend)
	fineDepths := render.SamplePDF(mids, interior, cfg.NumFineSamples, !cfg.Perturb, rng, m.backend)

	allDepths := render.MergeSorted(depths, fineDepths, m.backend)
	finePoints := render.PointsAlongRays(rays, allDepths, m.backend)

	network := m.coarse
	if m.fine != nil {
		network = m.fine
	}
	fineRaw := render.QueryNetwork(finePoints, rays.ViewDirs, network.Forward, m.embedPts, m.embedDirs, cfg.NetChunkSize, m.backend)
	fineResult := render.Composite(fineRaw, allDepths, rays.Directions, cfg.RawNoiseStd, cfg.WhiteBackground, rng, m.backend)

	return &Output[B]{Result: fineResult, Coarse: result}
}

// RenderChunked renders rays in slices of at most cfg.ChunkSize, bounding
// peak memory for full-image evaluation, and concatenates the per-chunk
// results. Per-sample weights are not concatenated: chunks can differ in
// sample count only through configuration, but eval consumers read pixel
// maps, not weights.
func (m *Model[B]) RenderChunked(rays *render.RayBatch[B], cfg render.Config, rng *rand.Rand) *render.Result[B] {
	n := rays.NumRays()
	if cfg.ChunkSize <= 0 || cfg.ChunkSize >= n {
		return m.Render(rays, cfg, rng).Result
	}

	var rgbs, disps, accs, depths []*tensor.Tensor[float32, B]
	for start := 0; start < n; start += cfg.ChunkSize {
		length := min(cfg.ChunkSize, n-start)
		chunk := &render.RayBatch[B]{
			Origins:    rays.Origins.Narrow(start, length),
			Directions: rays.Directions.Narrow(start, length),
		}
		if rays.ViewDirs != nil {
			chunk.ViewDirs = rays.ViewDirs.Narrow(start, length)
		}
		out := m.Render(chunk, cfg, rng).Result
		rgbs = append(rgbs, out.RGB)
		disps = append(disps, out.Disparity)
		accs = append(accs, out.Acc)
		depths = append(depths, out.Depth)
	}
	return &render.Result[B]{
		RGB:       tensor.Cat(rgbs, 0),
		Disparity: tensor.Cat(disps, 0),
		Acc:       tensor.Cat(accs, 0),
		Depth:     tensor.Cat(depths, 0),
	}
}

// Parameters returns the trainable parameters of both networks.
func (m *Model[B]) Parameters() []*nn.Parameter[B] {
	params := m.coarse.Parameters()
	if m.fine != nil {
		params = append(params, m.fine.Parameters()...)
	}
	return params
}

// StateDict returns all network parameters keyed by network and layer path.
func (m *Model[B]) StateDict() map[string]*tensor.RawTensor {
	out := make(map[string]*tensor.RawTensor)
	mergeStateDict(out, "coarse", m.coarse.StateDict())
	if m.fine != nil {
		mergeStateDict(out, "fine", m.fine.StateDict())
	}
	return out
}

// LoadStateDict restores both networks from a StateDict of an identically
// configured model.
func (m *Model[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	if err := m.coarse.LoadStateDict(subStateDict(stateDict, "coarse")); err != nil {
		return fmt.Errorf("coarse: %w", err)
	}
	if m.fine != nil {
		if err := m.fine.LoadStateDict(subStateDict(stateDict, "fine")); err != nil {
			return fmt.Errorf("fine: %w", err)
		}
	}
	return nil
}
