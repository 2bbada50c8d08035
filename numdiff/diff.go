// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package numdiff estimates derivatives of vector functions by finite
// differences. It is mainly a test companion: the generated gradient kernels
// are validated against a numerical differentiation of the cost kernel.
package numdiff

import (
	"errors"
	"math"
)

var (
	sqrtEps = math.Sqrt(math.Nextafter(1, 2) - 1)
	cubeEps = math.Pow(math.Nextafter(1, 2)-1, float64(1)/3)
)

type Method int

const (
	// Forward use the first order accuracy forward difference.
	Forward Method = iota
	// Central use the second order accuracy central difference.
	Central
)

// Approx estimates the M×N Jacobian of a function ℝⁿ → ℝᵐ.
// The evaluation buffers are reused across calls.
type Approx struct {
	N, M int
	// Function of which to estimate the derivatives.
	// The result of the n-vector argument x is stored into the m-vector y.
	Func func(x, y []float64)
	// Finite difference method to use.
	Method Method
	// Relative step size used to compute the absolute step size
	// h = RelStep × 𝚖𝚊𝚡(1,|x₀|). A method-specific default is selected
	// automatically when RelStep is zero.
	RelStep float64

	x, f0, f1 []float64
}

func (a *Approx) check(x0, jac []float64) error {
	switch {
	case a.N <= 0 || a.M <= 0:
		return errors.New("negative dimensions")
	case a.Method != Forward && a.Method != Central:
		return errors.New("unknown method")
	case a.Func == nil:
		return errors.New("object function is required")
	case len(x0) != a.N:
		return errors.New("invalid x0 dimensions")
	case len(jac) != a.N*a.M:
		return errors.New("invalid jacobian dimensions")
	}
	if len(a.x) != a.N {
		a.x = make([]float64, a.N)
	}
	if len(a.f0) != a.M {
		a.f0 = make([]float64, a.M)
		a.f1 = make([]float64, a.M)
	}
	return nil
}

func (a *Approx) step(x float64) float64 {
	rel := a.RelStep
	if rel == 0 {
		if rel = sqrtEps; a.Method == Central {
			rel = cubeEps
		}
	}
	return rel * math.Max(1, math.Abs(x))
}

// Jacobian fills jac with the row-major M×N derivative approximation at x0,
// so that jac[i×N+j] ≈ ∂fᵢ/∂xⱼ. For a scalar function (M = 1) the result is
// the gradient.
func (a *Approx) Jacobian(x0, jac []float64) error {

	if err := a.check(x0, jac); err != nil {
		return err
	}

	n, m := a.N, a.M
	copy(a.x, x0)

	if a.Method == Forward {
		a.Func(a.x, a.f0)
	}

	for j := 0; j < n; j++ {
		h := a.step(x0[j])
		if a.Method == Central {
			a.x[j] = x0[j] - h
			a.Func(a.x, a.f0)
		}
		a.x[j] = x0[j] + h
		a.Func(a.x, a.f1)
		a.x[j] = x0[j]

		d := h
		if a.Method == Central {
			d = 2 * h
		}
		for i := 0; i < m; i++ {
			jac[i*n+j] = (a.f1[i] - a.f0[i]) / d
		}
	}
	return nil
}

// Gradient fills g with the derivative approximation of a scalar function
// (M must be 1) at x0.
func (a *Approx) Gradient(x0, g []float64) error {
	if a.M != 1 {
		return errors.New("gradient requires a scalar function")
	}
	return a.Jacobian(x0, g)
}
