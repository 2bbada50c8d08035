// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dispatch

// Workspace holds the preallocated, reusable evaluation state of one problem
// instance: the packed [𝐮|𝛏|𝐩] buffer, one scratch arena pair per kernel and
// the per-kernel result slots and argument views.
//
// The packed buffer and the arenas are allocated once by Init and overwritten,
// never reset, on each call. Stale contents in untouched regions are harmless
// because every kernel reads only the regions it is declared to need.
//
// A workspace is not safe for concurrent use, even across different kernels:
// all four entry points write through the same packed buffer. Create a
// separate workspace for each concurrent control loop.
type Workspace struct {
	nu, nxi, np, npr int

	// uxip is the packed [𝐮|𝛏|𝐩] region of length nu+nxi+npr with the fixed
	// offsets 0, nu, nu+nxi.
	uxip []float64

	// Per-kernel scratch arenas, sized to the declared requirements.
	// A zero-declared size degrades to nil.
	iw [numKernels][]int
	w  [numKernels][]float64

	// Per-kernel result slots, rebound to the caller's output buffer on every
	// call. The slot only holds the reference for the duration of one call.
	res [numKernels][][]float64

	// Per-kernel argument views into uxip, rebound on every call from the
	// fixed offsets.
	arg [numKernels][][]float64
}

// Init allocates a workspace for the problem instance. All real-valued
// buffers are carved out of a single backing slice. To avoid race conditions,
// separate workspaces need to be created for each goroutine.
func (e *Evaluator) Init() *Workspace {

	m := &e.meta
	packed := m.Nu + m.Nxi + m.NpReserved

	totW, totIW := packed, 0
	for _, km := range m.Kernels {
		totW += km.SizeW
		totIW += km.SizeIW
	}
	wrk := make([]float64, totW)
	iwk := make([]int, totIW)

	w := &Workspace{
		nu:   m.Nu,
		nxi:  m.Nxi,
		np:   m.Np,
		npr:  m.NpReserved,
		uxip: wrk[:packed:packed],
	}

	ow, oiw := packed, 0
	for k, km := range m.Kernels {
		if km.SizeW > 0 {
			w.w[k] = wrk[ow : ow+km.SizeW : ow+km.SizeW]
			ow += km.SizeW
		}
		if km.SizeIW > 0 {
			w.iw[k] = iwk[oiw : oiw+km.SizeIW : oiw+km.SizeIW]
			oiw += km.SizeIW
		}
		w.res[k] = make([][]float64, km.Res)
		w.arg[k] = make([][]float64, km.Args)
	}

	if e.log != nil {
		e.log.Debug().
			Str("problem", m.Name).
			Int("nu", m.Nu).Int("nxi", m.Nxi).
			Int("np", m.Np).Int("reserved", m.NpReserved).
			Int("packed", packed).
			Int("scratch_w", totW-packed).Int("scratch_iw", totIW).
			Msg("workspace allocated")
	}
	return w
}

// packFull copies 𝐮 into [0,Nu), 𝛏 into [Nu,Nu+Nxi) and 𝐩 into
// [Nu+Nxi,Nu+Nxi+Np). The reserved parameter tail beyond Np is left as is.
func (w *Workspace) packFull(u, xi, p []float64) {
	nu, nxi := w.nu, w.nxi
	copy(w.uxip[:nu], u)
	copy(w.uxip[nu:nu+nxi], xi)
	copy(w.uxip[nu+nxi:nu+nxi+w.np], p)
}

// packReduced copies 𝐮 into [0,Nu) and 𝐩 into [Nu+Nxi,Nu+Nxi+Np), leaving the
// 𝛏 region untouched. The mapping kernels structurally never read it.
func (w *Workspace) packReduced(u, p []float64) {
	nu, nxi := w.nu, w.nxi
	copy(w.uxip[:nu], u)
	copy(w.uxip[nu+nxi:nu+nxi+w.np], p)
}

// bindFull rebinds the argument views of a (𝐮,𝛏,𝐩) kernel to the fixed
// packed offsets. The 𝐩 view spans the whole reserved region.
func (w *Workspace) bindFull(k KernelID) [][]float64 {
	nu, nxi := w.nu, w.nxi
	arg := w.arg[k]
	arg[0] = w.uxip[0:nu:nu]
	arg[1] = w.uxip[nu : nu+nxi : nu+nxi]
	arg[2] = w.uxip[nu+nxi:]
	return arg
}

// bindReduced rebinds the argument views of a (𝐮,𝐩) kernel.
func (w *Workspace) bindReduced(k KernelID) [][]float64 {
	nu, nxi := w.nu, w.nxi
	arg := w.arg[k]
	arg[0] = w.uxip[0:nu:nu]
	arg[1] = w.uxip[nu+nxi:]
	return arg
}
