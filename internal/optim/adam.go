package optim

import (
	"fmt"
	"math"

	"github.com/radiant-ml/radiant/internal/nn"
	"github.com/radiant-ml/radiant/internal/tensor"
)

// Adam implements adaptive moment estimation.
//
// Update rule:
//
//	m_t = beta1 * m_{t-1} + (1-beta1) * g
//	v_t = beta2 * v_{t-1} + (1-beta2) * g²
//	m_hat = m_t / (1 - beta1^t)
//	v_hat = v_t / (1 - beta2^t)
//	param = param - lr * m_hat / (sqrt(v_hat) + eps)
//
// Reference: "Adam: A Method for Stochastic Optimization" (Kingma & Ba, 2014).
type Adam[B tensor.Backend] struct {
	params  []*nn.Parameter[B]
	lr      float32
	beta1   float32
	beta2   float32
	eps     float32
	t       int // timestep for bias correction
	m       map[*nn.Parameter[B]]*tensor.Tensor[float32, B]
	v       map[*nn.Parameter[B]]*tensor.Tensor[float32, B]
	backend B
}

// AdamConfig holds the Adam hyperparameters. Zero values take the defaults
// LR=0.001, Betas=[0.9, 0.999], Eps=1e-8.
type AdamConfig struct {
	LR    float32
	Betas [2]float32
	Eps   float32
}

// NewAdam creates a new Adam optimizer over the given parameters.
func NewAdam[B tensor.Backend](params []*nn.Parameter[B], config AdamConfig, backend B) *Adam[B] {
	if config.LR == 0 {
		config.LR = 0.001
	}
	if config.Betas[0] == 0 {
		config.Betas[0] = 0.9
	}
	if config.Betas[1] == 0 {
		config.Betas[1] = 0.999
	}
	if config.Eps == 0 {
		config.Eps = 1e-8
	}

	return &Adam[B]{
		params:  params,
		lr:      config.LR,
		beta1:   config.Betas[0],
		beta2:   config.Betas[1],
		eps:     config.Eps,
		m:       make(map[*nn.Parameter[B]]*tensor.Tensor[float32, B]),
		v:       make(map[*nn.Parameter[B]]*tensor.Tensor[float32, B]),
		backend: backend,
	}
}

// Step performs a single optimization step. Parameters with no gradient are
// skipped.
func (a *Adam[B]) Step(grads map[*tensor.RawTensor]*tensor.RawTensor) {
	a.t++
	biasCorrection1 := float32(1.0 - math.Pow(float64(a.beta1), float64(a.t)))
	biasCorrection2 := float32(1.0 - math.Pow(float64(a.beta2), float64(a.t)))

	for _, param := range a.params {
		grad := getGradient(param, grads)
		if grad == nil {
			continue
		}

		m, ok := a.m[param]
		if !ok {
			m = tensor.Zeros[float32](param.Tensor().Shape(), a.backend)
			a.m[param] = m
		}
		v, ok := a.v[param]
		if !ok {
			v = tensor.Zeros[float32](param.Tensor().Shape(), a.backend)
			a.v[param] = v
		}

		a.updateParameter(param, grad, m, v, biasCorrection1, biasCorrection2)
	}
}

func (a *Adam[B]) updateParameter(
	param *nn.Parameter[B],
	grad *tensor.RawTensor,
	m, v *tensor.Tensor[float32, B],
	biasCorrection1, biasCorrection2 float32,
) {
	gradData := grad.AsFloat32()
	mData := m.Raw().AsFloat32()
	vData := v.Raw().AsFloat32()
	paramData := param.Tensor().Raw().AsFloat32()

	for i := range paramData {
		g := gradData[i]
		mData[i] = a.beta1*mData[i] + (1.0-a.beta1)*g
		vData[i] = a.beta2*vData[i] + (1.0-a.beta2)*g*g

		mHat := mData[i] / biasCorrection1
		vHat := vData[i] / biasCorrection2

		paramData[i] -= a.lr * mHat / (float32(math.Sqrt(float64(vHat))) + a.eps)
	}
}

// ZeroGrad clears gradients for all parameters.
func (a *Adam[B]) ZeroGrad() {
	for _, param := range a.params {
		param.ZeroGrad()
	}
}

// GetLR returns the current learning rate.
func (a *Adam[B]) GetLR() float32 { return a.lr }

// SetLR updates the learning rate.
func (a *Adam[B]) SetLR(lr float32) { a.lr = lr }

// GetTimestep returns the current timestep.
func (a *Adam[B]) GetTimestep() int { return a.t }

// SetTimestep restores the timestep when resuming from a checkpoint, so
// bias correction continues where it left off.
func (a *Adam[B]) SetTimestep(t int) { a.t = t }

// StateDict returns the first and second moment estimates keyed by
// parameter index. Parameters never stepped so far are absent.
func (a *Adam[B]) StateDict() map[string]*tensor.RawTensor {
	out := make(map[string]*tensor.RawTensor, 2*len(a.params))
	for i, param := range a.params {
		if m, ok := a.m[param]; ok {
			out[fmt.Sprintf("%d.m", i)] = m.Raw()
		}
		if v, ok := a.v[param]; ok {
			out[fmt.Sprintf("%d.v", i)] = v.Raw()
		}
	}
	return out
}

// LoadStateDict restores moment estimates saved by StateDict on an
// optimizer over the same parameter list.
func (a *Adam[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	for i, param := range a.params {
		shape := param.Tensor().Shape()
		for _, moment := range []string{"m", "v"} {
			raw, ok := stateDict[fmt.Sprintf("%d.%s", i, moment)]
			if !ok {
				continue
			}
			if !raw.Shape().Equal(shape) {
				return fmt.Errorf("optim: moment %d.%s shape %v does not match parameter shape %v", i, moment, raw.Shape(), shape)
			}
			dst := tensor.Zeros[float32](shape, a.backend)
			copy(dst.Raw().AsFloat32(), raw.AsFloat32())
			if moment == "m" {
				a.m[param] = dst
			} else {
				a.v[param] = dst
			}
		}
	}
	return nil
}
