// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gmg

import "github.com/patchdd/thunderegg/vec"

// VCycle runs one geometric multigrid V-cycle, from its finest level down to
// the coarsest and back, correcting u in place against the finest level's
// operator applied to u equaling f.
type VCycle struct {
	Finest *Level
}

// NewVCycle returns a VCycle driven by the given finest Level.
func NewVCycle(finest *Level) *VCycle { return &VCycle{Finest: finest} }

// Apply performs one V-cycle, updating u in place.
func (vc *VCycle) Apply(u, f vec.Vector) error {
	return cycle(vc.Finest, u, f)
}

// cycle implements the recursive pre-smooth, restrict, recurse, interpolate,
// post-smooth pattern; at the coarsest level it only smooths, since no exact
// coarse solve is wired (see DESIGN.md).
func cycle(l *Level, u, f vec.Vector) error {
	if l.Coarsest() {
		return l.Smoother.Smooth(u, f)
	}
	if err := l.Smoother.Smooth(u, f); err != nil {
		return err
	}

	residual := l.Gen.GetNewVector()
	l.Op.Apply(u, residual)
	residual.Scale(-1)
	residual.Add(f)

	coarser := l.coarser
	coarseF := coarser.Gen.GetNewVector()
	if err := l.restrictor.Restrict(residual, coarseF); err != nil {
		return err
	}

	coarseE := coarser.Gen.GetNewVector()
	if err := cycle(coarser, coarseE, coarseF); err != nil {
		return err
	}

	if err := l.interpolator.Interpolate(coarseE, u); err != nil {
		return err
	}

	return l.Smoother.Smooth(u, f)
}
