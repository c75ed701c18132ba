// Command radiant trains and renders neural radiance fields.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/radiant-ml/radiant/internal/autodiff"
	"github.com/radiant-ml/radiant/internal/backend/cpu"
	"github.com/radiant-ml/radiant/internal/config"
	"github.com/radiant-ml/radiant/internal/dataset"
	"github.com/radiant-ml/radiant/internal/imageio"
	"github.com/radiant-ml/radiant/internal/metrics"
	"github.com/radiant-ml/radiant/internal/trainer"
)

const version = "v0.1.0"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "version":
		fmt.Printf("radiant %s\n", version)
	case "train":
		runTrain(os.Args[2:])
	case "render":
		runRender(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("radiant - neural radiance fields in Go")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  train      Train a model on a posed image dataset")
	fmt.Println("  render     Render the test split from a checkpoint")
	fmt.Println("  version    Show version")
}

func loadConfig(fs *flag.FlagSet, args []string) (*config.Config, string) {
	cfgPath := fs.String("config", "", "Path to config file")
	dataDir := fs.String("data-dir", "", "Override dataset directory")
	outDir := fs.String("out-dir", "", "Override output directory")
	steps := fs.Int("steps", 0, "Number of training steps")
	batchSize := fs.Int("batch-size", 0, "Rays per training batch")
	seed := fs.Int64("seed", 0, "PRNG seed")
	lr := fs.Float64("lr", 0, "Learning rate")
	logEvery := fs.Int("log-every", 0, "Log every N steps")
	checkpoint := fs.String("checkpoint", "", "Checkpoint to resume from or render with")

	if err := fs.Parse(args); err != nil {
		os.Exit(2)
	}

	var cfg *config.Config
	if *cfgPath != "" {
		loaded, err := config.Load(*cfgPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		cfg = loaded
	} else {
		cfg = config.Default()
	}

	cfg.ApplyOverrides(config.Overrides{
		DataDir:      *dataDir,
		OutDir:       *outDir,
		Steps:        *steps,
		BatchSize:    *batchSize,
		Seed:         *seed,
		LearningRate: *lr,
		LogEvery:     *logEvery,
	})

	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}
	return cfg, *checkpoint
}

func newTrainer(cfg *config.Config) (*trainer.Trainer[*autodiff.AutodiffBackend[*cpu.CPUBackend]], *dataset.Dataset) {
	ds, err := dataset.LoadBlender(cfg.DataDir, dataset.Options{
		HalfRes:         cfg.HalfRes,
		WhiteBackground: cfg.WhiteBkgd,
		TestSkip:        cfg.TestSkip,
	})
	if err != nil {
		log.Fatalf("failed to load dataset: %v", err)
	}
	info := ds.Info()
	log.Printf("dataset=%s h=%d w=%d focal=%.2f train=%d val=%d test=%d",
		cfg.DataDir, info.Height, info.Width, info.Focal,
		info.NumFrames[dataset.SplitTrain], info.NumFrames[dataset.SplitVal], info.NumFrames[dataset.SplitTest])

	tr, err := trainer.New(cfg, ds, autodiff.New(cpu.New()))
	if err != nil {
		log.Fatalf("failed to build trainer: %v", err)
	}
	return tr, ds
}

func runTrain(args []string) {
	cfg, checkpoint := loadConfig(flag.NewFlagSet("train", flag.ExitOnError), args)
	tr, _ := newTrainer(cfg)

	if checkpoint != "" {
		if err := tr.LoadCheckpoint(checkpoint); err != nil {
			log.Fatalf("failed to resume: %v", err)
		}
		log.Printf("resumed from %s at step=%d", checkpoint, tr.Step())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := tr.Run(ctx); err != nil {
		log.Fatalf("training failed: %v", err)
	}
}

func runRender(args []string) {
	cfg, checkpoint := loadConfig(flag.NewFlagSet("render", flag.ExitOnError), args)
	if checkpoint == "" {
		log.Fatal("render requires -checkpoint")
	}
	if cfg.OutDir == "" {
		log.Fatal("render requires an output directory")
	}

	tr, ds := newTrainer(cfg)
	if err := tr.LoadCheckpoint(checkpoint); err != nil {
		log.Fatalf("failed to load checkpoint: %v", err)
	}

	if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
		log.Fatalf("failed to create %s: %v", cfg.OutDir, err)
	}

	frames := ds.Splits[dataset.SplitTest]
	if len(frames) == 0 {
		log.Fatal("test split is empty")
	}

	var psnrSum float64
	for i, frame := range frames {
		result := tr.RenderPose(frame.Pose)
		rgb := result.RGB.Data()

		mse := metrics.MSE(rgb, frame.Pixels)
		psnr := metrics.PSNR(mse)
		ssim := metrics.SSIM(rgb, frame.Pixels, ds.Height, ds.Width, 3)
		psnrSum += psnr
		log.Printf("test_frame=%d psnr=%.2f ssim=%.4f", i, psnr, ssim)

		pngPath := filepath.Join(cfg.OutDir, fmt.Sprintf("test_%03d.png", i))
		if err := imageio.WritePNG(pngPath, rgb, ds.Height, ds.Width); err != nil {
			log.Fatalf("failed to write %s: %v", pngPath, err)
		}
		dispPath := filepath.Join(cfg.OutDir, fmt.Sprintf("test_%03d_disp.exr", i))
		if err := imageio.WriteDepthEXR(dispPath, result.Disparity.Data(), ds.Height, ds.Width); err != nil {
			log.Fatalf("failed to write %s: %v", dispPath, err)
		}
	}
	log.Printf("rendered %d test frames, mean psnr=%.2f", len(frames), psnrSum/float64(len(frames)))
}
