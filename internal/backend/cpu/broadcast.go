package cpu

import "github.com/radiant-ml/radiant/internal/tensor"

// broadcastIndexer maps a flat index in the broadcast output shape back to
// the flat index in a (possibly smaller) source shape. Dimensions of size 1
// in the source contribute stride 0.
type broadcastIndexer struct {
	outStrides []int
	srcStrides []int
	ndim       int
	identity   bool
}

func newBroadcastIndexer(src, out tensor.Shape) *broadcastIndexer {
	if src.Equal(out) {
		return &broadcastIndexer{identity: true}
	}

	ndim := len(out)
	// Left-pad the source shape with 1s to the output rank.
	padded := make(tensor.Shape, ndim)
	for i := range padded {
		padded[i] = 1
	}
	copy(padded[ndim-len(src):], src)

	srcContig := padded.ComputeStrides()
	srcStrides := make([]int, ndim)
	for i := 0; i < ndim; i++ {
		if padded[i] == 1 && out[i] != 1 {
			srcStrides[i] = 0
		} else {
			srcStrides[i] = srcContig[i]
		}
	}

	return &broadcastIndexer{
		outStrides: out.ComputeStrides(),
		srcStrides: srcStrides,
		ndim:       ndim,
	}
}

// srcIndex converts a flat output index to the corresponding source index.
func (bi *broadcastIndexer) srcIndex(flat int) int {
	if bi.identity {
		return flat
	}
	src := 0
	rem := flat
	for d := 0; d < bi.ndim; d++ {
		coord := rem / bi.outStrides[d]
		rem %= bi.outStrides[d]
		src += coord * bi.srcStrides[d]
	}
	return src
}
