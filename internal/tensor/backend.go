package tensor

// Backend defines the interface that all compute backends must implement.
// Backends execute the actual numeric work for tensor operations; parallelism
// across a ray batch lives entirely inside these batched kernels.
//
// Implementations:
//   - CPU: pure Go kernels with worker-pool parallelism
//   - autodiff: decorator adding gradient recording around any backend
type Backend interface {
	// Element-wise binary operations with NumPy-style broadcasting.
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor
	Div(a, b *RawTensor) *RawTensor

	// Matrix operations.
	MatMul(a, b *RawTensor) *RawTensor

	// Shape operations.
	Reshape(t *RawTensor, newShape Shape) *RawTensor
	Transpose(t *RawTensor, axes ...int) *RawTensor
	Expand(x *RawTensor, shape Shape) *RawTensor

	// Scalar operations (element-wise with scalar).
	AddScalar(x *RawTensor, scalar any) *RawTensor
	SubScalar(x *RawTensor, scalar any) *RawTensor
	MulScalar(x *RawTensor, scalar any) *RawTensor
	DivScalar(x *RawTensor, scalar any) *RawTensor
	MaximumScalar(x *RawTensor, scalar any) *RawTensor

	// Math operations (element-wise).
	Exp(x *RawTensor) *RawTensor
	Log(x *RawTensor) *RawTensor
	Sqrt(x *RawTensor) *RawTensor
	Sin(x *RawTensor) *RawTensor
	Cos(x *RawTensor) *RawTensor

	// Scan operations.
	//
	// CumprodExclusive computes the exclusive cumulative product along the
	// last dimension: out[..., i] = prod(x[..., :i]), with out[..., 0] = 1.
	// This is the transmittance accumulator of front-to-back compositing.
	CumprodExclusive(x *RawTensor) *RawTensor

	// Reduction operations.
	Sum(x *RawTensor) *RawTensor
	Mean(x *RawTensor) *RawTensor
	SumDim(x *RawTensor, dim int, keepDim bool) *RawTensor
	MeanDim(x *RawTensor, dim int, keepDim bool) *RawTensor

	// Manipulation operations.
	Cat(tensors []*RawTensor, dim int) *RawTensor
	Unsqueeze(x *RawTensor, dim int) *RawTensor
	Squeeze(x *RawTensor, dim int) *RawTensor

	// Narrow returns rows [start, start+length) along the leading dimension
	// as a zero-copy view. This is the memory-bounding primitive of chunked
	// network evaluation.
	Narrow(x *RawTensor, start, length int) *RawTensor

	// Metadata.
	Name() string
	Device() Device
}

// Optional backend capabilities. Activation layers assert for these at
// construction time rather than bloating the core interface.

// ReLUBackend is implemented by backends with a fused ReLU kernel.
type ReLUBackend interface {
	ReLU(x *RawTensor) *RawTensor
}

// SigmoidBackend is implemented by backends with a fused sigmoid kernel.
type SigmoidBackend interface {
	Sigmoid(x *RawTensor) *RawTensor
}
