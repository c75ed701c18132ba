package trainer

import (
	"fmt"
	"strings"

	"github.com/radiant-ml/radiant/internal/serialization"
	"github.com/radiant-ml/radiant/internal/tensor"
)

// SaveCheckpoint writes the model parameters, Adam moments and step
// counter as a resumable .radiant file.
func (t *Trainer[B]) SaveCheckpoint(path string, loss float64) error {
	stateDict := make(map[string]*tensor.RawTensor)
	for name, raw := range t.model.StateDict() {
		stateDict["model."+name] = raw
	}
	for name, raw := range t.opt.StateDict() {
		stateDict["optim."+name] = raw
	}

	return serialization.WriteStateDict(path, stateDict, serialization.WriteOptions{
		ModelType:    "nerf",
		Compress:     t.cfg.Compress,
		HasOptimizer: true,
		Checkpoint: &serialization.CheckpointMeta{
			Step:          t.step,
			Loss:          loss,
			OptimizerType: "Adam",
			LearningRate:  float64(t.opt.GetLR()),
		},
	})
}

// LoadCheckpoint restores model parameters, optimizer moments and the step
// counter from a checkpoint written by SaveCheckpoint.
func (t *Trainer[B]) LoadCheckpoint(path string) error {
	stateDict, header, err := serialization.ReadStateDict(path)
	if err != nil {
		return err
	}

	modelState := make(map[string]*tensor.RawTensor)
	optimState := make(map[string]*tensor.RawTensor)
	for name, raw := range stateDict {
		switch {
		case strings.HasPrefix(name, "model."):
			modelState[strings.TrimPrefix(name, "model.")] = raw
		case strings.HasPrefix(name, "optim."):
			optimState[strings.TrimPrefix(name, "optim.")] = raw
		default:
			return fmt.Errorf("trainer: unexpected tensor %q in checkpoint", name)
		}
	}

	if err := t.model.LoadStateDict(modelState); err != nil {
		return fmt.Errorf("trainer: restoring model: %w", err)
	}
	if err := t.opt.LoadStateDict(optimState); err != nil {
		return fmt.Errorf("trainer: restoring optimizer: %w", err)
	}

	if header.CheckpointMeta != nil {
		t.step = header.CheckpointMeta.Step
		t.opt.SetTimestep(header.CheckpointMeta.Step)
		if header.CheckpointMeta.LearningRate > 0 {
			t.opt.SetLR(float32(header.CheckpointMeta.LearningRate))
		}
	}
	return nil
}
