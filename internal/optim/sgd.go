package optim

import (
	"github.com/radiant-ml/radiant/internal/nn"
	"github.com/radiant-ml/radiant/internal/tensor"
)

// SGD implements stochastic gradient descent with optional momentum.
//
//	velocity = momentum * velocity + grad
//	param    = param - lr * velocity
type SGD[B tensor.Backend] struct {
	params   []*nn.Parameter[B]
	lr       float32
	momentum float32
	velocity map[*nn.Parameter[B]]*tensor.Tensor[float32, B]
	backend  B
}

// SGDConfig holds the SGD hyperparameters. A zero LR takes the default 0.01.
type SGDConfig struct {
	LR       float32
	Momentum float32
}

// NewSGD creates a new SGD optimizer over the given parameters.
func NewSGD[B tensor.Backend](params []*nn.Parameter[B], config SGDConfig, backend B) *SGD[B] {
	if config.LR == 0 {
		config.LR = 0.01
	}
	return &SGD[B]{
		params:   params,
		lr:       config.LR,
		momentum: config.Momentum,
		velocity: make(map[*nn.Parameter[B]]*tensor.Tensor[float32, B]),
		backend:  backend,
	}
}

// Step performs a single optimization step. Parameters with no gradient are
// skipped.
func (s *SGD[B]) Step(grads map[*tensor.RawTensor]*tensor.RawTensor) {
	for _, param := range s.params {
		grad := getGradient(param, grads)
		if grad == nil {
			continue
		}

		gradData := grad.AsFloat32()
		paramData := param.Tensor().Raw().AsFloat32()

		if s.momentum == 0 {
			for i := range paramData {
				paramData[i] -= s.lr * gradData[i]
			}
			continue
		}

		vel, ok := s.velocity[param]
		if !ok {
			vel = tensor.Zeros[float32](param.Tensor().Shape(), s.backend)
			s.velocity[param] = vel
		}
		velData := vel.Raw().AsFloat32()
		for i := range paramData {
			velData[i] = s.momentum*velData[i] + gradData[i]
			paramData[i] -= s.lr * velData[i]
		}
	}
}

// ZeroGrad clears gradients for all parameters.
func (s *SGD[B]) ZeroGrad() {
	for _, param := range s.params {
		param.ZeroGrad()
	}
}

// GetLR returns the current learning rate.
func (s *SGD[B]) GetLR() float32 { return s.lr }

// SetLR updates the learning rate.
func (s *SGD[B]) SetLR(lr float32) { s.lr = lr }
