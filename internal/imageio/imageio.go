// Package imageio writes rendered images to disk: 8-bit PNG for previews
// and float EXR for HDR color and depth maps.
package imageio

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/mrjoshuak/go-openexr/exr"
)

// WritePNG stores an RGB image [height*width*3] of [0,1] values as an
// 8-bit PNG, clamping out-of-range values.
func WritePNG(path string, pixels []float32, height, width int) error {
	if len(pixels) != height*width*3 {
		return fmt.Errorf("imageio: %dx%d image needs %d values, got %d", height, width, height*width*3, len(pixels))
	}

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			base := (y*width + x) * 3
			img.SetNRGBA(x, y, color.NRGBA{
				R: toByte(pixels[base]),
				G: toByte(pixels[base+1]),
				B: toByte(pixels[base+2]),
				A: 255,
			})
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("imageio: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("imageio: encoding %s: %w", path, err)
	}
	return f.Close()
}

func toByte(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}

// WriteEXR stores an RGB image [height*width*3] as a float EXR, preserving
// values outside [0,1].
func WriteEXR(path string, pixels []float32, height, width int) error {
	if len(pixels) != height*width*3 {
		return fmt.Errorf("imageio: %dx%d image needs %d values, got %d", height, width, height*width*3, len(pixels))
	}

	img := exr.NewRGBAImage(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			base := (y*width + x) * 3
			img.SetRGBA(x, y, pixels[base], pixels[base+1], pixels[base+2], 1)
		}
	}
	if err := exr.EncodeFile(path, img); err != nil {
		return fmt.Errorf("imageio: encoding %s: %w", path, err)
	}
	return nil
}

// WriteDepthEXR stores a scalar map [height*width], such as depth or
// disparity, as a grayscale float EXR.
func WriteDepthEXR(path string, values []float32, height, width int) error {
	if len(values) != height*width {
		return fmt.Errorf("imageio: %dx%d map needs %d values, got %d", height, width, height*width, len(values))
	}

	img := exr.NewRGBAImage(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := values[y*width+x]
			img.SetRGBA(x, y, v, v, v, 1)
		}
	}
	if err := exr.EncodeFile(path, img); err != nil {
		return fmt.Errorf("imageio: encoding %s: %w", path, err)
	}
	return nil
}

// ReadEXR loads a float EXR written by WriteEXR back as [height*width*3]
// RGB values.
func ReadEXR(path string) (pixels []float32, height, width int, err error) {
	img, err := exr.DecodeFile(path)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("imageio: decoding %s: %w", path, err)
	}

	bounds := img.Bounds()
	width, height = bounds.Dx(), bounds.Dy()
	pixels = make([]float32, height*width*3)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := img.RGBA(bounds.Min.X+x, bounds.Min.Y+y)
			base := (y*width + x) * 3
			pixels[base], pixels[base+1], pixels[base+2] = r, g, b
		}
	}
	return pixels, height, width, nil
}
