// Package dataset loads posed multi-view captures for radiance field
// training. The Blender-synthetic layout is a scene directory holding one
// transforms_<split>.json per split, each listing camera-to-world poses and
// RGBA frame paths, with shared pinhole intrinsics derived from the
// horizontal field of view.
package dataset

import (
	"encoding/json"
	"fmt"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/mat"
)

// Split names a dataset partition.
type Split string

const (
	SplitTrain Split = "train"
	SplitVal   Split = "val"
	SplitTest  Split = "test"
)

// Options controls loading.
type Options struct {
	// HalfRes downsamples frames 2x in both dimensions and rescales the
	// focal length to match.
	HalfRes bool

	// WhiteBackground composites RGBA frames over white instead of black,
	// matching renders with a white background.
	WhiteBackground bool

	// TestSkip keeps every TestSkip-th frame of the val and test splits;
	// zero or one keeps all of them.
	TestSkip int
}

// Frame is one posed image. Pixels are [H*W*3] row-major RGB in [0,1];
// Pose is the 4x4 camera-to-world transform.
type Frame struct {
	Pixels []float32
	Pose   *mat.Dense
}

// Dataset is a loaded scene.
type Dataset struct {
	Height int
	Width  int
	Focal  float64

	// Near and Far bound the scene's depth range along each ray.
	Near float32
	Far  float32

	Splits map[Split][]Frame
}

// Info summarizes a dataset for logging and shard-size planning.
type Info struct {
	Height    int
	Width     int
	Focal     float64
	Near      float32
	Far       float32
	NumFrames map[Split]int
}

// Info returns the dataset summary.
func (d *Dataset) Info() Info {
	n := make(map[Split]int, len(d.Splits))
	for s, frames := range d.Splits {
		n[s] = len(frames)
	}
	return Info{
		Height: d.Height, Width: d.Width, Focal: d.Focal,
		Near: d.Near, Far: d.Far, NumFrames: n,
	}
}

// PaddingFor returns how many dummy rays extend rays to a whole number of
// chunks, so full-image evaluation shards evenly.
func PaddingFor(rays, chunk int) int {
	if chunk <= 0 || rays%chunk == 0 {
		return 0
	}
	return chunk - rays%chunk
}

type transformsFile struct {
	CameraAngleX float64 `json:"camera_angle_x"`
	Frames       []struct {
		FilePath        string      `json:"file_path"`
		TransformMatrix [][]float64 `json:"transform_matrix"`
	} `json:"frames"`
}

// LoadBlender loads a Blender-synthetic scene directory. Missing split
// files are an error; the standard scenes always carry all three.
func LoadBlender(dir string, opts Options) (*Dataset, error) {
	ds := &Dataset{
		Near:   2,
		Far:    6,
		Splits: make(map[Split][]Frame, 3),
	}

	for _, split := range []Split{SplitTrain, SplitVal, SplitTest} {
		path := filepath.Join(dir, fmt.Sprintf("transforms_%s.json", split))
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("dataset: reading %s: %w", path, err)
		}
		var tf transformsFile
		if err := json.Unmarshal(data, &tf); err != nil {
			return nil, fmt.Errorf("dataset: parsing %s: %w", path, err)
		}

		skip := 1
		if split != SplitTrain && opts.TestSkip > 1 {
			skip = opts.TestSkip
		}

		for i := 0; i < len(tf.Frames); i += skip {
			f := tf.Frames[i]
			pose, err := poseMatrix(f.TransformMatrix)
			if err != nil {
				return nil, fmt.Errorf("dataset: %s frame %d: %w", split, i, err)
			}

			imgPath := filepath.Join(dir, f.FilePath+".png")
			pixels, w, h, err := loadRGBA(imgPath, opts.WhiteBackground)
			if err != nil {
				return nil, fmt.Errorf("dataset: %s frame %d: %w", split, i, err)
			}
			if opts.HalfRes {
				pixels, w, h = downsample2x(pixels, w, h)
			}

			if ds.Width == 0 {
				ds.Width, ds.Height = w, h
				ds.Focal = 0.5 * float64(w) / math.Tan(0.5*tf.CameraAngleX)
			} else if w != ds.Width || h != ds.Height {
				return nil, fmt.Errorf("dataset: %s frame %d is %dx%d, scene is %dx%d", split, i, w, h, ds.Width, ds.Height)
			}

			ds.Splits[split] = append(ds.Splits[split], Frame{Pixels: pixels, Pose: pose})
		}
	}

	if len(ds.Splits[SplitTrain]) == 0 {
		return nil, fmt.Errorf("dataset: no training frames in %s", dir)
	}
	return ds, nil
}

func poseMatrix(rows [][]float64) (*mat.Dense, error) {
	if len(rows) != 4 {
		return nil, fmt.Errorf("transform matrix has %d rows, want 4", len(rows))
	}
	m := mat.NewDense(4, 4, nil)
	for r, row := range rows {
		if len(row) != 4 {
			return nil, fmt.Errorf("transform matrix row %d has %d entries, want 4", r, len(row))
		}
		m.SetRow(r, row)
	}
	return m, nil
}

// loadRGBA decodes a PNG and composites its alpha channel over the chosen
// background.
func loadRGBA(path string, whiteBkgd bool) ([]float32, int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, 0, err
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("decoding %s: %w", path, err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	out := make([]float32, w*h*3)

	var bg float64
	if whiteBkgd {
		bg = 1
	}

	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := img.At(x, y).RGBA()
			// RGBA returns alpha-premultiplied values in [0, 0xffff].
			af := float64(a) / 0xffff
			out[i] = float32(float64(r)/0xffff + bg*(1-af))
			out[i+1] = float32(float64(g)/0xffff + bg*(1-af))
			out[i+2] = float32(float64(b)/0xffff + bg*(1-af))
			i += 3
		}
	}
	return out, w, h, nil
}

// downsample2x box-filters an RGB image to half resolution.
func downsample2x(pixels []float32, w, h int) ([]float32, int, int) {
	nw, nh := w/2, h/2
	out := make([]float32, nw*nh*3)
	for y := 0; y < nh; y++ {
		for x := 0; x < nw; x++ {
			for c := 0; c < 3; c++ {
				sum := pixels[((2*y)*w+2*x)*3+c] +
					pixels[((2*y)*w+2*x+1)*3+c] +
					pixels[((2*y+1)*w+2*x)*3+c] +
					pixels[((2*y+1)*w+2*x+1)*3+c]
				out[(y*nw+x)*3+c] = sum / 4
			}
		}
	}
	return out, nw, nh
}
