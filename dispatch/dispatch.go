// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dispatch

// Each entry point is a single-shot call: pack the caller inputs into the
// packed buffer, rebind the argument views and the result slot, invoke the
// kernel and return its raw status. The kernel writes directly into the
// caller's output buffer; no copy, no retry, no interpretation happens here.

// Cost evaluates the cost kernel 𝞇(𝐮,𝛏,𝐩) and writes its scalar output
// into out.
func (e *Evaluator) Cost(w *Workspace, u, xi, p, out []float64) Status {
	return e.callFull(w, KernelCost, u, xi, p, out)
}

// Gradient evaluates the gradient kernel 𝜵𝞇(𝐮,𝛏,𝐩) and writes a length-Nu
// vector into out.
func (e *Evaluator) Gradient(w *Workspace, u, xi, p, out []float64) Status {
	return e.callFull(w, KernelGrad, u, xi, p, out)
}

// MappingF1 evaluates the ALM constraint mapping 𝐅₁(𝐮,𝐩). The 𝛏 region of
// the packed buffer is left untouched.
func (e *Evaluator) MappingF1(w *Workspace, u, p, out []float64) Status {
	return e.callReduced(w, KernelF1, u, p, out)
}

// MappingF2 evaluates the penalty constraint mapping 𝐅₂(𝐮,𝐩). The 𝛏 region
// of the packed buffer is left untouched.
func (e *Evaluator) MappingF2(w *Workspace, u, p, out []float64) Status {
	return e.callReduced(w, KernelF2, u, p, out)
}

// Evaluate dispatches to the kernel selected by id. The xi vector is required
// by the cost and gradient kernels and ignored by the mappings, which may
// receive nil.
func (e *Evaluator) Evaluate(w *Workspace, id KernelID, u, xi, p, out []float64) Status {
	switch id {
	case KernelCost, KernelGrad:
		return e.callFull(w, id, u, xi, p, out)
	case KernelF1, KernelF2:
		return e.callReduced(w, id, u, p, out)
	}
	panic("unknown kernel id")
}

func (e *Evaluator) callFull(w *Workspace, k KernelID, u, xi, p, out []float64) Status {
	e.check(w, k, u, p, out)
	if len(xi) != e.meta.Nxi {
		panic("extended vector dimension not match meta")
	}
	w.packFull(u, xi, p)
	arg := w.bindFull(k)
	res := w.res[k]
	res[0] = out
	return e.kernels[k](arg, res, w.iw[k], w.w[k])
}

func (e *Evaluator) callReduced(w *Workspace, k KernelID, u, p, out []float64) Status {
	e.check(w, k, u, p, out)
	w.packReduced(u, p)
	arg := w.bindReduced(k)
	res := w.res[k]
	res[0] = out
	return e.kernels[k](arg, res, w.iw[k], w.w[k])
}

func (e *Evaluator) check(w *Workspace, k KernelID, u, p, out []float64) {
	m := &e.meta
	switch {
	case w.nu != m.Nu || w.nxi != m.Nxi || w.npr != m.NpReserved:
		panic("workspace dimension not match meta")
	case len(u) != m.Nu:
		panic("decision vector dimension not match meta")
	case len(p) != m.Np:
		panic("parameter vector dimension not match meta")
	case len(out) != m.Kernels[k].Out:
		panic("output buffer dimension not match meta")
	}
}
