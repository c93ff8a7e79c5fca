// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gmg

import (
	"github.com/patchdd/thunderegg/geom"
	"github.com/patchdd/thunderegg/ld"
	"github.com/patchdd/thunderegg/vec"
)

// Interpolator transfers a coarse-level correction up to its finer level:
// piecewise-constant injection, each fine cell adding its parent's
// orthant-quadrant coarse value, the V-cycle's standard correction-add step.
type Interpolator struct {
	Comm *InterLevelComm
}

// NewInterpolator returns an Interpolator over the given fine/coarse pairing.
func NewInterpolator(ic *InterLevelComm) *Interpolator { return &Interpolator{Comm: ic} }

// Interpolate adds coarse's correction into fine. Remote parents are
// fetched once up front through InterLevelComm's forward (Get) exchange.
func (ip *Interpolator) Interpolate(coarse, fine vec.Vector) error {
	ic := ip.Comm
	nd := ic.Fine.ND
	var ghost vec.Vector
	if len(ic.GhostPairs) > 0 {
		ghost = ic.GetNewGhostVector()
		if err := ic.GetGhostPatchesStart(coarse, ghost); err != nil {
			return err
		}
		if err := ic.GetGhostPatchesFinish(); err != nil {
			return err
		}
	}
	for _, p := range ic.LocalPairs {
		pf := ic.Fine.PatchByLocalIndex(p.FineLocal)
		for comp := 0; comp < fine.NumComponents(); comp++ {
			prolongOrthant(fine.LocalData(p.FineLocal, comp), coarse.LocalData(p.CoarseLocal, comp), pf.OrthantOnParent, ic.N, nd)
		}
	}
	for _, gp := range ic.GhostPairs {
		pf := ic.Fine.PatchByLocalIndex(gp.FineLocal)
		for comp := 0; comp < fine.NumComponents(); comp++ {
			prolongOrthant(fine.LocalData(gp.FineLocal, comp), ghost.LocalData(gp.GhostLocal, comp), pf.OrthantOnParent, ic.N, nd)
		}
	}
	return nil
}

// prolongOrthant adds coarse's value at each cell's orthant-quadrant parent
// into the corresponding 2^nd fine cells.
func prolongOrthant(fine, coarse ld.LocalData, orthant geom.Orthant, n, nd int) {
	half := n / 2
	fineLens := make([]int, nd)
	for i := range fineLens {
		fineLens[i] = n
	}
	rangeLoop(fineLens, func(fineCoord []int) {
		coarseCoord := make([]int, nd)
		for a := 0; a < nd; a++ {
			base := 0
			if orthant.OnAxis(a) {
				base = half
			}
			coarseCoord[a] = base + fineCoord[a]/2
		}
		fine.Add(fineCoord, coarse.At(coarseCoord))
	})
}
