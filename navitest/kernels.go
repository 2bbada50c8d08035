// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package navitest

import (
	"math"

	"github.com/curioloop/mpckernel/dispatch"
)

// The four generated kernels of the navi_test instance.
//
// The cost is the augmented-Lagrangian evaluation
//
//	𝞇(𝐮,𝛏,𝐩) = 𝒇(𝐮,𝐩) + 𝐲ᵀ𝐅₁(𝐮,𝐩) + ½c‖𝐅₁(𝐮,𝐩)‖² + ½c‖𝐅₂(𝐮,𝐩)‖²
//
// where 𝒇 is the rollout cost of the differential-drive model
//
//	xₖ₊₁ = xₖ + 𝚝𝚜·vₖ·cosθₖ
//	yₖ₊₁ = yₖ + 𝚝𝚜·vₖ·sinθₖ
//	θₖ₊₁ = θₖ + 𝚝𝚜·ωₖ
//
// with stage terms for path/heading tracking, speed reference deviation,
// control effort, fleet collision and dynamic-obstacle hinge costs, plus a
// terminal goal term and quadratic acceleration penalties.
//
// 𝐅₁ stacks the linear and angular accelerations (vₖ-vₖ₋₁)/𝚝𝚜 and (ωₖ-ωₖ₋₁)/𝚝𝚜.
// 𝐅₂ stacks the insideness of the terminal position w.r.t. the dynamic
// ellipses at the last step and the first NPenPoly static polygons.
//
// The gradient kernel computes 𝜵𝞇 exactly by a reverse (adjoint) sweep over
// the stored rollout. Kernels touch only their argument views, their result
// slot and their declared scratch; they never allocate.

func step(x, y, th, v, om float64) (float64, float64, float64) {
	return x + ts*v*math.Cos(th), y + ts*v*math.Sin(th), th + ts*om
}

// rollout stores the NHor+1 states of the trajectory into st.
func rollout(u, p, st []float64) {
	st[0], st[1], st[2] = p[offState], p[offState+1], p[offState+2]
	for k := 0; k < NHor; k++ {
		i := NState * k
		st[i+3], st[i+4], st[i+5] = step(st[i], st[i+1], st[i+2], u[2*k], u[2*k+1])
	}
}

// accAt computes the linear and angular acceleration of step k.
func accAt(u, p []float64, k int) (av, aw float64) {
	pv, pw := p[offState+6], p[offState+7]
	if k > 0 {
		pv, pw = u[2*k-2], u[2*k-1]
	}
	return (u[2*k] - pv) / ts, (u[2*k+1] - pw) / ts
}

func hinge(z float64) float64 {
	if z > 0 {
		return z
	}
	return 0
}

// fleetTerm sums the squared collision hinges against the other robots at
// step k, and their (x,y) partials.
func fleetTerm(p []float64, k int, x, y float64) (f, gx, gy float64) {
	for j := 0; j < NOther; j++ {
		o := offFleet + j*NState*NHor + k*NState
		dx, dy := x-p[o], y-p[o+1]
		z := hinge(safeDistance*safeDistance - dx*dx - dy*dy)
		f += z * z
		gx -= 4 * z * dx
		gy -= 4 * z * dy
	}
	return
}

// ellipse evaluates the insideness indicator of an obstacle parameter block
// at (x,y) with the given margin, and its (x,y) partials.
func ellipse(p []float64, base int, x, y, margin float64) (h, gx, gy float64) {
	cx, cy := p[base], p[base+1]
	rx, ry := p[base+2]+margin+radiusEps, p[base+3]+margin+radiusEps
	ca, sa := math.Cos(p[base+4]), math.Sin(p[base+4])
	dx, dy := x-cx, y-cy
	a, b := dx*ca+dy*sa, dy*ca-dx*sa
	ia, ib := 2*a/(rx*rx), 2*b/(ry*ry)
	h = 1 - 0.5*a*ia - 0.5*b*ib
	gx = -ia*ca + ib*sa
	gy = -ia*sa - ib*ca
	return
}

// dynTerm sums the squared soft-avoidance hinges of the dynamic ellipses at
// step k (inflated by the social margin, scaled by the obstacle alpha), and
// their (x,y) partials.
func dynTerm(p []float64, k int, x, y float64) (f, gx, gy float64) {
	for j := 0; j < NDynObs; j++ {
		base := offDynObs + j*NDynParam*NHor + k*NDynParam
		h, hx, hy := ellipse(p, base, x, y, socialMargin)
		if h > 0 {
			alpha := p[base+5]
			f += alpha * h * h
			gx += alpha * 2 * h * hx
			gy += alpha * 2 * h * hy
		}
	}
	return
}

// penaltyTerm evaluates component i of 𝐅₂ at the terminal position, and its
// (x,y) partials.
func penaltyTerm(p []float64, x, y float64, i int) (f, gx, gy float64) {
	if i < NDynObs {
		// Dynamic ellipse insideness at the last step.
		base := offDynObs + i*NDynParam*NHor + (NHor-1)*NDynParam
		h, hx, hy := ellipse(p, base, x, y, 0)
		if h > 0 {
			return h, hx, hy
		}
		return 0, 0, 0
	}

	// Static polygon insideness: ∏ₑ 𝚖𝚊𝚡(0, bₑ - a0ₑ·x - a1ₑ·y)².
	base := offStcObs + (i-NDynObs)*NStcParam
	var t [NPolyEdge]float64
	f = 1
	for e := 0; e < NPolyEdge; e++ {
		t[e] = hinge(p[base+e] - p[base+NPolyEdge+e]*x - p[base+2*NPolyEdge+e]*y)
		f *= t[e] * t[e]
	}
	for e := 0; e < NPolyEdge; e++ {
		if t[e] <= 0 {
			continue
		}
		rest := 1.0
		for o := 0; o < NPolyEdge; o++ {
			if o != e {
				rest *= t[o] * t[o]
			}
		}
		gx -= 2 * t[e] * p[base+NPolyEdge+e] * rest
		gy -= 2 * t[e] * p[base+2*NPolyEdge+e] * rest
	}
	return
}

// Cost is the generated cost kernel 𝞇(𝐮,𝛏,𝐩).
func Cost(arg, res [][]float64, _ []int, w []float64) dispatch.Status {
	u, xi, p := arg[0], arg[1], arg[2]
	q := p[offWeight : offWeight+nWeight]
	qPos, qVel, qTheta, rV, rW := q[0], q[1], q[2], q[3], q[4]
	qN, qThetaN, qFleet, qAcc, qWAcc := q[5], q[6], q[7], q[8], q[9]

	st := w[:NState*(NHor+1)]
	rollout(u, p, st)

	f := 0.0
	for k := 0; k < NHor; k++ {
		i := NState * (k + 1)
		x, y, th := st[i], st[i+1], st[i+2]
		r := offPathRef + NState*k
		dx, dy, dth := x-p[r], y-p[r+1], th-p[r+2]
		v, om := u[2*k], u[2*k+1]
		dv := v - p[offSpeedRef+k]
		f += qPos*(dx*dx+dy*dy) + qTheta*dth*dth
		f += qVel*dv*dv + rV*v*v + rW*om*om
		fc, _, _ := fleetTerm(p, k, x, y)
		f += qFleet * fc
		dc, _, _ := dynTerm(p, k, x, y)
		f += p[offDynWeight+k] * dc
	}

	i := NState * NHor
	x, y, th := st[i], st[i+1], st[i+2]
	dx, dy, dth := x-p[offState+3], y-p[offState+4], th-p[offState+5]
	f += qN*(dx*dx+dy*dy) + qThetaN*dth*dth

	c, y1 := xi[0], xi[1:]
	for k := 0; k < NHor; k++ {
		av, aw := accAt(u, p, k)
		f += qAcc*av*av + qWAcc*aw*aw
		f += y1[2*k]*av + 0.5*c*av*av
		f += y1[2*k+1]*aw + 0.5*c*aw*aw
	}

	pen := 0.0
	for j := 0; j < N2; j++ {
		h, _, _ := penaltyTerm(p, x, y, j)
		pen += h * h
	}
	f += 0.5 * c * pen

	res[0][0] = f
	return dispatch.StatusOK
}

// Grad is the generated gradient kernel 𝜵𝞇(𝐮,𝛏,𝐩).
func Grad(arg, res [][]float64, _ []int, w []float64) dispatch.Status {
	u, xi, p := arg[0], arg[1], arg[2]
	q := p[offWeight : offWeight+nWeight]
	qPos, qVel, qTheta, rV, rW := q[0], q[1], q[2], q[3], q[4]
	qN, qThetaN, qFleet, qAcc, qWAcc := q[5], q[6], q[7], q[8], q[9]

	st := w[:NState*(NHor+1)]
	rollout(u, p, st)

	g := res[0]
	for i := range g[:Nu] {
		g[i] = 0
	}

	c, y1 := xi[0], xi[1:]

	// Adjoint seed at the terminal state: goal term plus penalty pullback.
	i := NState * NHor
	x, y, th := st[i], st[i+1], st[i+2]
	lx := 2 * qN * (x - p[offState+3])
	ly := 2 * qN * (y - p[offState+4])
	lth := 2 * qThetaN * (th - p[offState+5])
	for j := 0; j < N2; j++ {
		h, hx, hy := penaltyTerm(p, x, y, j)
		lx += c * h * hx
		ly += c * h * hy
	}

	// Reverse sweep over the rollout.
	for k := NHor - 1; k >= 0; k-- {
		i = NState * (k + 1)
		x, y, th = st[i], st[i+1], st[i+2]
		r := offPathRef + NState*k
		lx += 2 * qPos * (x - p[r])
		ly += 2 * qPos * (y - p[r+1])
		lth += 2 * qTheta * (th - p[r+2])
		_, fx, fy := fleetTerm(p, k, x, y)
		lx += qFleet * fx
		ly += qFleet * fy
		_, dx, dy := dynTerm(p, k, x, y)
		lx += p[offDynWeight+k] * dx
		ly += p[offDynWeight+k] * dy

		// Input partials through the dynamics at the pre-step heading.
		i = NState * k
		pth := st[i+2]
		v, om := u[2*k], u[2*k+1]
		sin, cos := math.Sincos(pth)
		g[2*k] += ts*(cos*lx+sin*ly) + 2*qVel*(v-p[offSpeedRef+k]) + 2*rV*v
		g[2*k+1] += ts*lth + 2*rW*om

		// Pull the adjoint back through the step transition.
		lth += ts * v * (cos*ly - sin*lx)
	}

	// Acceleration penalty and ALM terms couple adjacent inputs.
	var nv, nw float64
	for k := NHor - 1; k >= 0; k-- {
		av, aw := accAt(u, p, k)
		gv := 2*qAcc*av + y1[2*k] + c*av
		gw := 2*qWAcc*aw + y1[2*k+1] + c*aw
		g[2*k] += (gv - nv) / ts
		g[2*k+1] += (gw - nw) / ts
		nv, nw = gv, gw
	}

	return dispatch.StatusOK
}

// MappingF1 is the generated ALM constraint mapping kernel 𝐅₁(𝐮,𝐩).
func MappingF1(arg, res [][]float64, _ []int, _ []float64) dispatch.Status {
	u, p := arg[0], arg[1]
	out := res[0]
	for k := 0; k < NHor; k++ {
		out[2*k], out[2*k+1] = accAt(u, p, k)
	}
	return dispatch.StatusOK
}

// MappingF2 is the generated penalty constraint mapping kernel 𝐅₂(𝐮,𝐩).
func MappingF2(arg, res [][]float64, _ []int, _ []float64) dispatch.Status {
	u, p := arg[0], arg[1]
	out := res[0]
	x, y, th := p[offState], p[offState+1], p[offState+2]
	for k := 0; k < NHor; k++ {
		x, y, th = step(x, y, th, u[2*k], u[2*k+1])
	}
	for j := 0; j < N2; j++ {
		out[j], _, _ = penaltyTerm(p, x, y, j)
	}
	return dispatch.StatusOK
}
