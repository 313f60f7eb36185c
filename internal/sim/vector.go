package sim

import "math"

// Vec is a point or displacement in 2 or 3 dimensions. Its length is fixed
// for the lifetime of a simulation (ndim); operations return a newly
// allocated Vec and leave their operands unchanged.
type Vec []float64

func newVec(ndim int) Vec {
	return make(Vec, ndim)
}

func (v Vec) clone() Vec {
	out := make(Vec, len(v))
	copy(out, v)
	return out
}

func (v Vec) add(o Vec) Vec {
	out := make(Vec, len(v))
	for i := range v {
		out[i] = v[i] + o[i]
	}
	return out
}

func (v Vec) sub(o Vec) Vec {
	out := make(Vec, len(v))
	for i := range v {
		out[i] = v[i] - o[i]
	}
	return out
}

func (v Vec) scale(s float64) Vec {
	out := make(Vec, len(v))
	for i := range v {
		out[i] = v[i] * s
	}
	return out
}

func (v Vec) dot(o Vec) float64 {
	sum := 0.0
	for i := range v {
		sum += v[i] * o[i]
	}
	return sum
}

func (v Vec) norm() float64 {
	return math.Sqrt(v.dot(v))
}

// freeFlight returns x(t) = x + v*tau + 0.5*g*tau^2 for tau = t - t0.
func freeFlight(x, v, g Vec, tau float64) Vec {
	out := make(Vec, len(x))
	for i := range x {
		out[i] = x[i] + v[i]*tau + 0.5*g[i]*tau*tau
	}
	return out
}

// velocityAt returns v + g*tau, the velocity after free flight of duration tau.
func velocityAt(v, g Vec, tau float64) Vec {
	out := make(Vec, len(v))
	for i := range v {
		out[i] = v[i] + g[i]*tau
	}
	return out
}
