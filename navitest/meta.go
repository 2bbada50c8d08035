// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package navitest is the generated problem instance "navi_test": a
// differential-drive trajectory tracking problem with fleet and obstacle
// avoidance over a 20-step horizon, consumed through the dispatch layer.
//
// The decision vector interleaves the inputs of every predictive step,
// 𝐮 = (v₀,ω₀,···,v₁₉,ω₁₉). The extended vector 𝛏 = (c,𝐲) carries the penalty
// parameter and the ALM multipliers of the acceleration constraints. The
// parameter vector packs the problem data in fixed sub-regions (see the
// off* constants); the packed workspace reserves NpReserved slots of which
// only the first Np are ever read.
package navitest

import (
	"github.com/curioloop/mpckernel/dispatch"
	"github.com/rs/zerolog"
)

// Generated problem dimensions.
const (
	NHor   = 20 // control/prediction horizon
	NState = 3  // state (x, y, θ)
	NInput = 2  // input (v, ω)

	Nu = NInput * NHor // decision vector length
	N1 = NInput * NHor // ALM constraint mapping 𝐅₁ dimension (accelerations)
	N2 = 15            // penalty constraint mapping 𝐅₂ dimension
	// Nxi is the extended vector 𝛏 = (c, 𝐲) with one multiplier per 𝐅₁ output.
	Nxi = 1 + N1

	NOther    = 20 // other robots in the fleet
	NStcObs   = 10 // static polygon obstacles
	NPolyEdge = 4  // edges per polygon
	NStcParam = 12 // 3 slots per edge: b, a0, a1
	NDynObs   = 10 // dynamic ellipse obstacles
	NDynParam = 6  // cx, cy, rx, ry, angle, alpha
	NPenPoly  = 5  // polygons entering the penalty mapping
)

// Fixed offsets of the parameter sub-regions.
const (
	// Current state, goal state and initial inputs: x, y, θ, x𝘨, y𝘨, θ𝘨, v₀, ω₀.
	offState = 0
	// Penalty weights: qPos, qVel, qTheta, rV, rW, qN, qThetaN, qFleet, qAcc, qWAcc.
	offWeight = offState + 2*NState + NInput
	nWeight   = 10
	// Reference path (x, y, θ) per step.
	offPathRef = offWeight + nWeight
	// Reference speed per step.
	offSpeedRef = offPathRef + NState*NHor
	// Predicted states of the other robots, robot-major.
	offFleet = offSpeedRef + NHor
	// Static polygon obstacles: b×4, a0×4, a1×4 each.
	offStcObs = offFleet + NState*NHor*NOther
	// Dynamic ellipse obstacles, obstacle-major, one parameter set per step.
	offDynObs = offStcObs + NStcObs*NStcParam
	// Per-step weights of the static and dynamic obstacle costs.
	offStcWeight = offDynObs + NDynObs*NDynParam*NHor
	offDynWeight = offStcWeight + NHor

	// Np is the declared parameter count.
	Np = offDynWeight + NHor
	// NpReserved is the parameter region reserved by the generator. The
	// 15-slot tail carries no semantics and is never read by a kernel.
	NpReserved = Np + N2
)

// Model constants baked in by the generator.
const (
	ts           = 0.2  // sampling time
	safeDistance = 0.5  // fleet collision distance
	socialMargin = 0.2  // ellipse margin of the soft avoidance cost
	radiusEps    = 1e-6 // guards the ellipse semi-axes
)

// Problem wires the generated metadata and kernels of the navi_test instance.
// The optional logger is only used at construction time.
func Problem(log *zerolog.Logger) *dispatch.Problem {
	return &dispatch.Problem{
		Meta: dispatch.Meta{
			Name:       "navi_test",
			Nu:         Nu,
			Nxi:        Nxi,
			Np:         Np,
			NpReserved: NpReserved,
			Kernels: [4]dispatch.KernelMeta{
				dispatch.KernelCost: {Args: 3, Res: 1, Out: 1, SizeW: NState * (NHor + 1)},
				dispatch.KernelGrad: {Args: 3, Res: 1, Out: Nu, SizeW: NState * (NHor + 1)},
				dispatch.KernelF1:   {Args: 2, Res: 1, Out: N1},
				dispatch.KernelF2:   {Args: 2, Res: 1, Out: N2},
			},
		},
		Cost:      Cost,
		Grad:      Grad,
		MappingF1: MappingF1,
		MappingF2: MappingF2,
		Log:       log,
	}
}
