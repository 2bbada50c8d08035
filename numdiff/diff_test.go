// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package numdiff

import (
	"math"
	"testing"
)

func TestGradientQuadratic(t *testing.T) {

	// f(x) = x₀² + 3x₀x₁ + 2x₁²
	approx := Approx{
		N: 2, M: 1,
		Method: Central,
		Func: func(x, y []float64) {
			y[0] = x[0]*x[0] + 3*x[0]*x[1] + 2*x[1]*x[1]
		},
	}

	x0 := []float64{1.5, -2.0}
	g := make([]float64, 2)
	if err := approx.Gradient(x0, g); err != nil {
		t.Fatal(err)
	}

	want := []float64{2*x0[0] + 3*x0[1], 3*x0[0] + 4*x0[1]}
	for i := range want {
		if math.Abs(g[i]-want[i]) > 1e-7 {
			t.Fatalf("gradient[%d] = %v, want %v", i, g[i], want[i])
		}
	}
}

func TestJacobianTrigonometric(t *testing.T) {

	// f(x) = (sin x₀ · cos x₁, x₀·x₁)
	approx := Approx{
		N: 2, M: 2,
		Func: func(x, y []float64) {
			y[0] = math.Sin(x[0]) * math.Cos(x[1])
			y[1] = x[0] * x[1]
		},
	}

	x0 := []float64{0.3, 0.7}
	jac := make([]float64, 4)

	for _, method := range []Method{Forward, Central} {
		approx.Method = method
		if err := approx.Jacobian(x0, jac); err != nil {
			t.Fatal(err)
		}
		want := []float64{
			math.Cos(x0[0]) * math.Cos(x0[1]), -math.Sin(x0[0]) * math.Sin(x0[1]),
			x0[1], x0[0],
		}
		tol := 1e-6
		if method == Forward {
			tol = 1e-5
		}
		for i := range want {
			if math.Abs(jac[i]-want[i]) > tol {
				t.Fatalf("method %v jac[%d] = %v, want %v", method, i, jac[i], want[i])
			}
		}
	}
}

func TestApproxErrors(t *testing.T) {

	f := func(x, y []float64) { y[0] = x[0] }

	cases := []struct {
		name   string
		approx Approx
		x0, d  []float64
	}{
		{"zero dims", Approx{Func: f}, nil, nil},
		{"nil func", Approx{N: 1, M: 1}, []float64{0}, []float64{0}},
		{"bad method", Approx{N: 1, M: 1, Func: f, Method: Method(7)}, []float64{0}, []float64{0}},
		{"bad x0", Approx{N: 2, M: 1, Func: f}, []float64{0}, []float64{0, 0}},
		{"bad jac", Approx{N: 2, M: 1, Func: f}, []float64{0, 0}, []float64{0}},
	}
	for _, c := range cases {
		if err := c.approx.Jacobian(c.x0, c.d); err == nil {
			t.Fatalf("%s: expect error", c.name)
		}
	}

	scalar := Approx{N: 2, M: 2, Func: func(x, y []float64) { y[0], y[1] = x[0], x[1] }}
	if err := scalar.Gradient([]float64{0, 0}, []float64{0, 0, 0, 0}); err == nil {
		t.Fatal("gradient of vector function: expect error")
	}
}
