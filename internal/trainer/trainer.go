// Package trainer runs the radiance field training workload: random ray
// batches through the coarse/fine model, MSE reconstruction loss, Adam
// updates, periodic validation renders and resumable checkpoints.
package trainer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/radiant-ml/radiant/internal/autodiff"
	"github.com/radiant-ml/radiant/internal/config"
	"github.com/radiant-ml/radiant/internal/dataset"
	"github.com/radiant-ml/radiant/internal/imageio"
	"github.com/radiant-ml/radiant/internal/metrics"
	"github.com/radiant-ml/radiant/internal/nerf"
	"github.com/radiant-ml/radiant/internal/nn"
	"github.com/radiant-ml/radiant/internal/optim"
	"github.com/radiant-ml/radiant/internal/render"
	"github.com/radiant-ml/radiant/internal/tensor"
)

// Trainer owns one training run's mutable state.
type Trainer[B autodiff.BackwardCapable] struct {
	cfg     *config.Config
	ds      *dataset.Dataset
	batcher *dataset.RayBatcher
	model   *nerf.Model[B]
	opt     *optim.Adam[B]
	loss    *nn.MSELoss[B]
	rng     *rand.Rand
	backend B

	step int
}

// New builds a trainer from a validated config and a loaded dataset.
func New[B autodiff.BackwardCapable](cfg *config.Config, ds *dataset.Dataset, backend B) (*Trainer[B], error) {
	rng := rand.New(rand.NewSource(cfg.Seed))

	model, err := nerf.NewModel(modelConfig(cfg), renderConfig(cfg, ds), rng, backend)
	if err != nil {
		return nil, fmt.Errorf("trainer: %w", err)
	}

	batcher, err := dataset.NewRayBatcher(ds, dataset.SplitTrain, true, rng)
	if err != nil {
		return nil, fmt.Errorf("trainer: %w", err)
	}

	return &Trainer[B]{
		cfg:     cfg,
		ds:      ds,
		batcher: batcher,
		model:   model,
		opt: optim.NewAdam(model.Parameters(), optim.AdamConfig{
			LR: float32(cfg.LearningRate),
		}, backend),
		loss:    nn.NewMSELoss(backend),
		rng:     rng,
		backend: backend,
	}, nil
}

// Model returns the trained model.
func (t *Trainer[B]) Model() *nerf.Model[B] { return t.model }

// Step returns the number of completed training steps.
func (t *Trainer[B]) Step() int { return t.step }

func modelConfig(c *config.Config) nerf.ModelConfig {
	// One skip connection halfway through the position stack; shallow
	// networks have no room for one.
	var skips []int
	if c.NetDepth > 2 {
		skips = []int{c.NetDepth / 2}
	}
	return nerf.ModelConfig{
		Multires:       c.Multires,
		MultiresViews:  c.MultiresViews,
		NetDepth:       c.NetDepth,
		NetWidth:       c.NetWidth,
		NetDepthFine:   c.NetDepthFine,
		NetWidthFine:   c.NetWidthFine,
		Skips:          skips,
		UseViewdirs:    c.UseViewdirs,
		UseFineNetwork: c.NumFine > 0,
	}
}

func renderConfig(c *config.Config, ds *dataset.Dataset) render.Config {
	return render.Config{
		NumCoarseSamples: c.NumCoarse,
		NumFineSamples:   c.NumFine,
		Perturb:          c.Perturb,
		RawNoiseStd:      c.RawNoiseStd,
		WhiteBackground:  c.WhiteBkgd,
		LinDisp:          c.LinDisp,
		Near:             ds.Near,
		Far:              ds.Far,
		ChunkSize:        c.ChunkSize,
		NetChunkSize:     c.NetChunkSize,
	}
}

// Run executes the training loop until cfg.Steps, logging a metrics window
// every LogEvery steps, validating every ValEvery and checkpointing every
// CheckpointEvery.
func (t *Trainer[B]) Run(ctx context.Context) error {
	if t.cfg.Steps <= 0 {
		return errors.New("trainer: steps must be > 0")
	}

	var win window
	var lastLoss float64

	for t.step < t.cfg.Steps {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		startData := time.Now()
		rays, target := t.nextBatch()
		dataTime := time.Since(startData)

		startCompute := time.Now()
		loss := t.trainStep(rays, target)
		computeTime := time.Since(startCompute)

		if math.IsNaN(loss) || math.IsInf(loss, 0) {
			return fmt.Errorf("trainer: loss diverged to %v at step %d", loss, t.step+1)
		}

		t.step++
		lastLoss = loss
		win.Record(t.cfg.BatchSize, dataTime, computeTime, loss)

		if t.step%t.cfg.LogEvery == 0 {
			snap := win.Snapshot()
			log.Printf("step=%d rays_per_sec=%.1f data_ms=%.2f compute_ms=%.2f loss=%.5f psnr=%.2f",
				t.step,
				snap.RaysPerSec,
				snap.AvgDataMS,
				snap.AvgComputeMS,
				snap.AvgLoss,
				metrics.PSNR(snap.AvgLoss),
			)
		}

		if t.cfg.ValEvery > 0 && t.step%t.cfg.ValEvery == 0 {
			if err := t.validate(); err != nil {
				return err
			}
		}

		if t.cfg.CheckpointEvery > 0 && t.step%t.cfg.CheckpointEvery == 0 && t.cfg.OutDir != "" {
			path := filepath.Join(t.cfg.OutDir, fmt.Sprintf("step_%06d.radiant", t.step))
			if err := t.SaveCheckpoint(path, lastLoss); err != nil {
				return err
			}
			log.Printf("step=%d checkpoint=%s", t.step, path)
		}
	}
	return nil
}

// nextBatch draws a random ray batch with its ground-truth colors.
func (t *Trainer[B]) nextBatch() (*render.RayBatch[B], *tensor.Tensor[float32, B]) {
	origins, dirs, rgb := t.batcher.Sample(t.cfg.BatchSize)
	return t.rayBatch(origins, dirs), t.colors(rgb)
}

func (t *Trainer[B]) rayBatch(origins, dirs []float32) *render.RayBatch[B] {
	n := len(origins) / 3
	o, err := tensor.FromSlice(origins, tensor.Shape{n, 3}, t.backend)
	if err != nil {
		panic(fmt.Sprintf("trainer: %v", err))
	}
	d, err := tensor.FromSlice(dirs, tensor.Shape{n, 3}, t.backend)
	if err != nil {
		panic(fmt.Sprintf("trainer: %v", err))
	}
	rays, err := render.NewRayBatch(o, d, t.cfg.UseViewdirs, t.backend)
	if err != nil {
		panic(fmt.Sprintf("trainer: %v", err))
	}
	return rays
}

func (t *Trainer[B]) colors(rgb []float32) *tensor.Tensor[float32, B] {
	n := len(rgb) / 3
	target, err := tensor.FromSlice(rgb, tensor.Shape{n, 3}, t.backend)
	if err != nil {
		panic(fmt.Sprintf("trainer: %v", err))
	}
	return target
}

// trainStep runs one forward/backward/update cycle and returns the fine
// loss.
func (t *Trainer[B]) trainStep(rays *render.RayBatch[B], target *tensor.Tensor[float32, B]) float64 {
	tape := t.backend.GetTape()
	tape.Clear()
	tape.StartRecording()
	defer tape.Clear()

	out := t.model.Render(rays, renderConfig(t.cfg, t.ds), t.rng)

	loss := t.loss.Forward(out.Result.RGB, target)
	total := loss
	if out.Coarse != nil {
		// The coarse head gets its own reconstruction term, otherwise its
		// weights only matter through sample placement, which carries no
		// gradient.
		total = total.Add(t.loss.Forward(out.Coarse.RGB, target))
	}

	grads := autodiff.Backward(total, t.backend)
	tape.StopRecording()

	t.opt.Step(grads)
	return float64(loss.Item())
}

// RenderPose renders a full frame from a camera-to-world pose with the
// deterministic eval preset, off the gradient tape.
func (t *Trainer[B]) RenderPose(pose *mat.Dense) *render.Result[B] {
	tape := t.backend.GetTape()
	tape.StopRecording()
	tape.Clear()

	origins, dirs := dataset.CameraRays(t.ds.Height, t.ds.Width, t.ds.Focal, pose, true)
	rays := t.rayBatch(origins, dirs)
	return t.model.RenderChunked(rays, renderConfig(t.cfg, t.ds).EvalVariant(), t.rng)
}

// validate renders one validation frame deterministically and logs its
// PSNR, writing preview images when an output directory is set.
func (t *Trainer[B]) validate() error {
	frames := t.ds.Splits[dataset.SplitVal]
	if len(frames) == 0 {
		return nil
	}
	frame := frames[t.rng.Intn(len(frames))]
	result := t.RenderPose(frame.Pose)

	mse := metrics.MSE(result.RGB.Data(), frame.Pixels)
	log.Printf("step=%d val_mse=%.6f val_psnr=%.2f", t.step, mse, metrics.PSNR(mse))

	if t.cfg.OutDir == "" {
		return nil
	}
	if err := os.MkdirAll(t.cfg.OutDir, 0o755); err != nil {
		return fmt.Errorf("trainer: %w", err)
	}
	base := filepath.Join(t.cfg.OutDir, fmt.Sprintf("val_%06d", t.step))
	if err := imageio.WritePNG(base+".png", result.RGB.Data(), t.ds.Height, t.ds.Width); err != nil {
		return err
	}
	return imageio.WriteDepthEXR(base+"_disp.exr", result.Disparity.Data(), t.ds.Height, t.ds.Width)
}
