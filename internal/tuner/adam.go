package tuner

import "math"

// adam implements Adam gradient descent without bias correction: the
// reference tuner.cpp's update rule divides by the raw moment estimates
// directly, never by (1 - beta^t). GooseEngine's own tuner/opt_adam.go adds
// bias-correction terms; this follows the original C++ tuner instead.
type adam struct {
	m, v  []float64
	beta1 float64
	beta2 float64
	eps   float64
}

func newAdam(n int, beta1, beta2, eps float64) *adam {
	return &adam{
		m:     make([]float64, n),
		v:     make([]float64, n),
		beta1: beta1,
		beta2: beta2,
		eps:   eps,
	}
}

// step applies one Adam update to params given grad, scaled by lr.
func (a *adam) step(params, grad []float64, lr float64) {
	for i, g := range grad {
		a.m[i] = a.beta1*a.m[i] + (1-a.beta1)*g
		a.v[i] = a.beta2*a.v[i] + (1-a.beta2)*g*g
		params[i] -= lr * a.m[i] / (math.Sqrt(a.v[i]) + a.eps)
	}
}
