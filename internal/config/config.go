// Package config captures the runtime knobs for training and rendering
// runs, loaded from a simple key: value file with CLI overrides on top.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Config captures the runtime knobs for a run.
type Config struct {
	// Paths.
	DataDir string `yaml:"data_dir"`
	OutDir  string `yaml:"out_dir"`

	// Model architecture.
	NetDepth      int  `yaml:"net_depth"`
	NetWidth      int  `yaml:"net_width"`
	NetDepthFine  int  `yaml:"net_depth_fine"`
	NetWidthFine  int  `yaml:"net_width_fine"`
	Multires      int  `yaml:"multires"`
	MultiresViews int  `yaml:"multires_views"`
	UseViewdirs   bool `yaml:"use_viewdirs"`

	// Rendering.
	NumCoarse    int     `yaml:"num_coarse"`
	NumFine      int     `yaml:"num_fine"`
	Perturb      bool    `yaml:"perturb"`
	RawNoiseStd  float64 `yaml:"raw_noise_std"`
	WhiteBkgd    bool    `yaml:"white_bkgd"`
	LinDisp      bool    `yaml:"lindisp"`
	ChunkSize    int     `yaml:"chunk_size"`
	NetChunkSize int     `yaml:"net_chunk_size"`

	// Dataset.
	HalfRes  bool `yaml:"half_res"`
	TestSkip int  `yaml:"test_skip"`

	// Training.
	LearningRate    float64 `yaml:"learning_rate"`
	Steps           int     `yaml:"steps"`
	BatchSize       int     `yaml:"batch_size"`
	Seed            int64   `yaml:"seed"`
	LogEvery        int     `yaml:"log_every"`
	ValEvery        int     `yaml:"val_every"`
	CheckpointEvery int     `yaml:"checkpoint_every"`
	Compress        bool    `yaml:"compress"`
}

// Overrides captures CLI supplied values. Zero values leave the config
// untouched.
type Overrides struct {
	DataDir      string
	OutDir       string
	Steps        int
	BatchSize    int
	Seed         int64
	LearningRate float64
	LogEvery     int
}

// Default returns the standard Blender-synthetic training configuration.
func Default() *Config {
	return &Config{
		NetDepth:        8,
		NetWidth:        256,
		Multires:        10,
		MultiresViews:   4,
		UseViewdirs:     true,
		NumCoarse:       64,
		NumFine:         128,
		Perturb:         true,
		WhiteBkgd:       true,
		ChunkSize:       4096,
		NetChunkSize:    16384,
		HalfRes:         true,
		TestSkip:        8,
		LearningRate:    5e-4,
		Steps:           200000,
		BatchSize:       1024,
		Seed:            1,
		LogEvery:        100,
		ValEvery:        2500,
		CheckpointEvery: 10000,
	}
}

// Load reads and validates a Config. Keys absent from the file keep their
// defaults.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg, err := parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyOverrides updates cfg using any non-zero override.
func (c *Config) ApplyOverrides(o Overrides) {
	if o.DataDir != "" {
		c.DataDir = o.DataDir
	}
	if o.OutDir != "" {
		c.OutDir = o.OutDir
	}
	if o.Steps > 0 {
		c.Steps = o.Steps
	}
	if o.BatchSize > 0 {
		c.BatchSize = o.BatchSize
	}
	if o.Seed != 0 {
		c.Seed = o.Seed
	}
	if o.LearningRate > 0 {
		c.LearningRate = o.LearningRate
	}
	if o.LogEvery > 0 {
		c.LogEvery = o.LogEvery
	}
}

// Validate verifies the config is runnable.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.DataDir == "" {
		return errors.New("data_dir must be set")
	}
	if c.NetDepth <= 0 || c.NetWidth <= 0 {
		return fmt.Errorf("net_depth and net_width must be > 0 (got %d, %d)", c.NetDepth, c.NetWidth)
	}
	if c.Multires <= 0 {
		return fmt.Errorf("multires must be > 0 (got %d)", c.Multires)
	}
	if c.UseViewdirs && c.MultiresViews <= 0 {
		return fmt.Errorf("multires_views must be > 0 (got %d)", c.MultiresViews)
	}
	if c.NumCoarse <= 0 {
		return fmt.Errorf("num_coarse must be > 0 (got %d)", c.NumCoarse)
	}
	if c.NumFine < 0 {
		return fmt.Errorf("num_fine must be >= 0 (got %d)", c.NumFine)
	}
	if c.LearningRate <= 0 {
		return fmt.Errorf("learning_rate must be > 0 (got %g)", c.LearningRate)
	}
	if c.Steps <= 0 {
		return fmt.Errorf("steps must be > 0 (got %d)", c.Steps)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be > 0 (got %d)", c.BatchSize)
	}
	if c.LogEvery <= 0 {
		c.LogEvery = 100
	}
	return nil
}

func parse(r io.Reader) (*Config, error) {
	cfg := Default()
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("line %d: missing ':'", lineNo)
		}
		key := strings.TrimSpace(parts[0])
		value := strings.Trim(strings.TrimSpace(parts[1]), "\"'")
		if err := cfg.set(key, value); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) set(key, value string) error {
	var err error
	switch key {
	case "data_dir":
		c.DataDir = value
	case "out_dir":
		c.OutDir = value
	case "net_depth":
		c.NetDepth, err = strconv.Atoi(value)
	case "net_width":
		c.NetWidth, err = strconv.Atoi(value)
	case "net_depth_fine":
		c.NetDepthFine, err = strconv.Atoi(value)
	case "net_width_fine":
		c.NetWidthFine, err = strconv.Atoi(value)
	case "multires":
		c.Multires, err = strconv.Atoi(value)
	case "multires_views":
		c.MultiresViews, err = strconv.Atoi(value)
	case "use_viewdirs":
		c.UseViewdirs, err = strconv.ParseBool(value)
	case "num_coarse":
		c.NumCoarse, err = strconv.Atoi(value)
	case "num_fine":
		c.NumFine, err = strconv.Atoi(value)
	case "perturb":
		c.Perturb, err = strconv.ParseBool(value)
	case "raw_noise_std":
		c.RawNoiseStd, err = strconv.ParseFloat(value, 64)
	case "white_bkgd":
		c.WhiteBkgd, err = strconv.ParseBool(value)
	case "lindisp":
		c.LinDisp, err = strconv.ParseBool(value)
	case "chunk_size":
		c.ChunkSize, err = strconv.Atoi(value)
	case "net_chunk_size":
		c.NetChunkSize, err = strconv.Atoi(value)
	case "half_res":
		c.HalfRes, err = strconv.ParseBool(value)
	case "test_skip":
		c.TestSkip, err = strconv.Atoi(value)
	case "learning_rate":
		c.LearningRate, err = strconv.ParseFloat(value, 64)
	case "steps":
		c.Steps, err = strconv.Atoi(value)
	case "batch_size":
		c.BatchSize, err = strconv.Atoi(value)
	case "seed":
		c.Seed, err = strconv.ParseInt(value, 10, 64)
	case "log_every":
		c.LogEvery, err = strconv.Atoi(value)
	case "val_every":
		c.ValEvery, err = strconv.Atoi(value)
	case "checkpoint_every":
		c.CheckpointEvery, err = strconv.Atoi(value)
	case "compress":
		c.Compress, err = strconv.ParseBool(value)
	default:
		return fmt.Errorf("unknown key %s", key)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return nil
}
