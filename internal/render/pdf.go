package render

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/radiant-ml/radiant/internal/tensor"
)

// weightEpsilon pads importance weights before normalization so rays whose
// coarse pass produced all-zero weights still define a valid distribution.
const weightEpsilon = 1e-5

// SamplePDF draws num new depths per ray by inverse-CDF sampling of the
// piecewise-constant density the coarse weights define over the intervals
// delimited by bins: bins [R, m+1] carries the edges of the m weighted
// intervals in weights [R, m].
//
// With det, the uniforms are a stratified [0,1] grid shared by all rays,
// keeping evaluation reproducible; otherwise they are i.i.d. draws. The
// result carries no gradients: resampling is pure index selection, and the
// coarse weights receive gradient through the coarse loss term instead.
func SamplePDF[B tensor.Backend](bins, weights *tensor.Tensor[float32, B], num int, det bool, rng *rand.Rand, backend B) *tensor.Tensor[float32, B] {
	bShape, wShape := bins.Shape(), weights.Shape()
	if bShape[0] != wShape[0] || bShape[1] != wShape[1]+1 {
		panic(fmt.Sprintf("render: bins %v must delimit weights %v", bShape, wShape))
	}
	if num <= 0 {
		panic(fmt.Sprintf("render: importance sample count must be > 0, got %d", num))
	}
	rows, m := wShape[0], wShape[1]

	out, err := tensor.NewRaw(tensor.Shape{rows, num}, tensor.Float32, backend.Device())
	if err != nil {
		panic(fmt.Sprintf("render: failed to allocate importance samples: %v", err))
	}
	samples := out.AsFloat32()
	binsData := bins.Data()
	weightsData := weights.Data()

	// cdf has m+1 entries per row, cdf[0] = 0, cdf[m] = 1.
	cdf := make([]float64, m+1)
	u := make([]float64, num)
	if det {
		for i := range u {
			if num > 1 {
				u[i] = float64(i) / float64(num-1)
			}
		}
	}

	for r := 0; r < rows; r++ {
		w := weightsData[r*m : (r+1)*m]
		var total float64
		for _, v := range w {
			total += float64(v) + weightEpsilon
		}
		cdf[0] = 0
		for i := 0; i < m; i++ {
			cdf[i+1] = cdf[i] + (float64(w[i])+weightEpsilon)/total
		}
		cdf[m] = 1

		b := binsData[r*(m+1) : (r+1)*(m+1)]
		for i := 0; i < num; i++ {
			ui := u[i]
			if !det {
				ui = rng.Float64()
			}

			// First index with cdf > u, then back off to the enclosing bin.
			idx := sort.Search(m+1, func(j int) bool { return cdf[j] > ui })
			below := max(idx-1, 0)
			above := min(idx, m)

			denom := cdf[above] - cdf[below]
			if denom < 1e-5 {
				denom = 1
			}
			t := (ui - cdf[below]) / denom
			samples[r*num+i] = float32(float64(b[below]) + t*(float64(b[above])-float64(b[below])))
		}
	}
	return tensor.New[float32, B](out, backend)
}

// MergeSorted merges each ray's original and newly drawn depths into one
// ascending-sorted sample set, the input to the fine-network pass.
func MergeSorted[B tensor.Backend](depths, newDepths *tensor.Tensor[float32, B], backend B) *tensor.Tensor[float32, B] {
	dShape, nShape := depths.Shape(), newDepths.Shape()
	if dShape[0] != nShape[0] {
		panic(fmt.Sprintf("render: depth batches %v and %v must agree on ray count", dShape, nShape))
	}
	rows := dShape[0]
	total := dShape[1] + nShape[1]

	out, err := tensor.NewRaw(tensor.Shape{rows, total}, tensor.Float32, backend.Device())
	if err != nil {
		panic(fmt.Sprintf("render: failed to allocate merged depths: %v", err))
	}

	d, n, merged := depths.Data(), newDepths.Data(), out.AsFloat32()
	for r := 0; r < rows; r++ {
		row := merged[r*total : (r+1)*total]
		copy(row, d[r*dShape[1]:(r+1)*dShape[1]])
		copy(row[dShape[1]:], n[r*nShape[1]:(r+1)*nShape[1]])
		sort.Slice(row, func(i, j int) bool { return row[i] < row[j] })
	}
	return tensor.New[float32, B](out, backend)
}

// Midpoints returns the m-1 midpoints of each ray's m depths, the bins the
// importance resampler draws over.
func Midpoints[B tensor.Backend](depths *tensor.Tensor[float32, B], backend B) *tensor.Tensor[float32, B] {
	shape := depths.Shape()
	rows, m := shape[0], shape[1]
	if m < 2 {
		panic(fmt.Sprintf("render: need at least 2 depths for midpoints, got %d", m))
	}

	out, err := tensor.NewRaw(tensor.Shape{rows, m - 1}, tensor.Float32, backend.Device())
	if err != nil {
		panic(fmt.Sprintf("render: failed to allocate midpoints: %v", err))
	}
	z, mid := depths.Data(), out.AsFloat32()
	for r := 0; r < rows; r++ {
		for i := 0; i < m-1; i++ {
			mid[r*(m-1)+i] = 0.5 * (z[r*m+i] + z[r*m+i+1])
		}
	}
	return tensor.New[float32, B](out, backend)
}
