// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dispatch implements the evaluation-kernel dispatch layer that sits
// between an outer ALM/penalty MPC solver and four code-generated math kernels:
// the cost 𝞇(𝐮,𝛏,𝐩), its gradient 𝜵𝞇(𝐮,𝛏,𝐩) and two constraint mappings
// 𝐅₁(𝐮,𝐩), 𝐅₂(𝐮,𝐩).
//
// The generated kernels expect their logical arguments as an array of base
// views into contiguous memory. The layer therefore packs the solver iterate
// into a single preallocated buffer
//
//	0        Nu-1    Nu       Nu+Nxi-1   Nu+Nxi      Nu+Nxi+Np-1
//	|--- 𝐮 ----|     |--- 𝛏 ------|      |----- 𝐩 -------|
//	|----------------------- packed ----------------------|
//
// and rebinds per-kernel argument views, result slots and scratch arenas on
// every call, so that an evaluation performs no allocation. The outer solver
// calls these entry points thousands of times per control step under a hard
// real-time deadline.
//
// An Evaluator is immutable after construction and may be shared. All mutable
// state lives in a Workspace: to avoid race conditions, a separate workspace
// must be created for each concurrent control loop, and at most one evaluation
// may be in flight per workspace at a time.
package dispatch

// Status is the raw integer code returned by a generated kernel.
// Zero conventionally denotes success. Any other value is kernel-specific and
// is propagated to the caller uninterpreted: no retry, no translation.
type Status int

// StatusOK is the conventional success code shared by all generated kernels.
const StatusOK Status = 0

// OK reports whether the status denotes success.
func (s Status) OK() bool { return s == StatusOK }

// Kernel is the call contract of a generated math kernel.
//
// The arg views are read-only base views into the packed workspace, one per
// logical input, in the kernel's declared order. The res slots reference
// caller-owned output buffers the kernel writes through. The iw and w arenas
// are preallocated scratch of the kernel's declared sizes; a kernel that
// declares no scratch receives nil.
type Kernel func(arg, res [][]float64, iw []int, w []float64) Status

// KernelID selects one of the four generated kernels of a problem instance.
type KernelID int

const (
	// KernelCost evaluates the augmented cost 𝞇(𝐮,𝛏,𝐩).
	KernelCost KernelID = iota
	// KernelGrad evaluates the cost gradient 𝜵𝞇(𝐮,𝛏,𝐩).
	KernelGrad
	// KernelF1 evaluates the ALM constraint mapping 𝐅₁(𝐮,𝐩).
	KernelF1
	// KernelF2 evaluates the penalty constraint mapping 𝐅₂(𝐮,𝐩).
	KernelF2

	numKernels
)

func (k KernelID) String() string {
	switch k {
	case KernelCost:
		return "cost"
	case KernelGrad:
		return "grad"
	case KernelF1:
		return "f1"
	case KernelF2:
		return "f2"
	}
	return "unknown"
}
