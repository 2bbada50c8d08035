// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dispatch

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// KernelMeta holds the generated metadata of a single kernel: the number of
// argument views it consumes, the number of result slots it writes, its output
// length and its declared scratch requirements. These figures originate from
// the problem-definition/code-generation step and are never recomputed here.
type KernelMeta struct {
	Args   int // number of argument views (3 for cost/grad, 2 for the mappings)
	Res    int // number of result slots
	Out    int // declared output length written through the first result slot
	SizeIW int // declared integer scratch size (0 means none)
	SizeW  int // declared real scratch size (0 means none)
}

// Meta holds the per-instance configuration constants of one generated
// problem shape. All dimensions are fixed for the lifetime of the instance:
// a different problem shape requires a fully independent instance.
type Meta struct {
	// Name of the generated optimizer.
	Name string
	// Nu is the decision vector length.
	Nu int
	// Nxi is the extended vector length, conceptually 𝛏 = (c, 𝐲).
	Nxi int
	// Np is the declared parameter count supplied by the caller.
	Np int
	// NpReserved is the parameter region actually reserved in the packed
	// workspace. It may exceed Np; kernels never read the unused tail.
	NpReserved int
	// Kernels is the per-kernel metadata, indexed by KernelID.
	Kernels [4]KernelMeta
}

// Problem wires the generated metadata of one problem instance to its four
// kernels.
type Problem struct {
	Meta
	// The four generated kernels.
	Cost, Grad, MappingF1, MappingF2 Kernel
	// Optional logger for construction-time diagnostics.
	// Never used on the evaluation path.
	Log *zerolog.Logger
}

// New validates the generated metadata and creates an Evaluator for the
// problem instance.
func (p *Problem) New() (evaluator *Evaluator, err error) {

	m := p.Meta
	switch {
	case m.Nu <= 0:
		err = errors.New("decision dimension must greater than 0")
	case m.Nxi <= 0:
		err = errors.New("extended dimension must greater than 0")
	case m.Np <= 0:
		err = errors.New("parameter dimension must greater than 0")
	case m.NpReserved < m.Np:
		err = errors.New("reserved parameter region must not less than declared count")
	case p.Cost == nil || p.Grad == nil || p.MappingF1 == nil || p.MappingF2 == nil:
		err = errors.New("all four kernels are required")
	}
	if err != nil {
		return
	}

	for k, km := range m.Kernels {
		id := KernelID(k)
		full := id == KernelCost || id == KernelGrad
		switch {
		case full && km.Args != 3:
			err = fmt.Errorf("%v kernel must declare 3 arguments", id)
		case !full && km.Args != 2:
			err = fmt.Errorf("%v kernel must declare 2 arguments", id)
		case km.Res <= 0:
			err = fmt.Errorf("%v kernel must declare at least 1 result slot", id)
		case km.Out <= 0:
			err = fmt.Errorf("%v kernel output length must greater than 0", id)
		case km.SizeIW < 0 || km.SizeW < 0:
			err = fmt.Errorf("%v kernel scratch size must not less than 0", id)
		}
		if err != nil {
			return
		}
	}

	evaluator = &Evaluator{
		meta:    m,
		kernels: [numKernels]Kernel{p.Cost, p.Grad, p.MappingF1, p.MappingF2},
		log:     p.Log,
	}
	return
}

// Evaluator dispatches solver iterates to the four generated kernels of one
// problem instance. It is immutable after construction: multiple workspaces
// could share one evaluator.
type Evaluator struct {
	meta    Meta
	kernels [numKernels]Kernel
	log     *zerolog.Logger
}

// Meta returns the generated metadata of the problem instance.
func (e *Evaluator) Meta() Meta { return e.meta }
