package tensor

// Cat concatenates tensors along the specified dimension.
// All tensors must agree in every dimension except the concatenation one.
// Supports negative dim indexing (-1 = last dimension).
func Cat[T DType, B Backend](tensors []*Tensor[T, B], dim int) *Tensor[T, B] {
	if len(tensors) == 0 {
		panic("cat: at least one tensor required")
	}
	if len(tensors) == 1 {
		return tensors[0].Clone()
	}

	raws := make([]*RawTensor, len(tensors))
	backend := tensors[0].backend
	for i, t := range tensors {
		raws[i] = t.raw
	}
	return New[T, B](backend.Cat(raws, dim), backend)
}

// Unsqueeze adds a dimension of size 1 at the specified position.
// Supports negative dim indexing.
func (t *Tensor[T, B]) Unsqueeze(dim int) *Tensor[T, B] {
	return New[T, B](t.backend.Unsqueeze(t.raw, dim), t.backend)
}

// Squeeze removes a dimension of size 1 at the specified position.
// Panics if the dimension size is not 1. Supports negative dim indexing.
func (t *Tensor[T, B]) Squeeze(dim int) *Tensor[T, B] {
	return New[T, B](t.backend.Squeeze(t.raw, dim), t.backend)
}

// Narrow returns rows [start, start+length) along the leading dimension as
// a zero-copy view.
func (t *Tensor[T, B]) Narrow(start, length int) *Tensor[T, B] {
	return New[T, B](t.backend.Narrow(t.raw, start, length), t.backend)
}
