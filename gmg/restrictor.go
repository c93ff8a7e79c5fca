// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gmg

import (
	"github.com/patchdd/thunderegg/geom"
	"github.com/patchdd/thunderegg/ld"
	"github.com/patchdd/thunderegg/vec"
)

// Restrictor transfers a fine-level vector down to its coarser level. Every
// coarse patch is the full-weighting average of its 2^ND children, each
// child contributing the quadrant of the coarse patch its OrthantOnParent
// selects.
type Restrictor struct {
	Comm *InterLevelComm
}

// NewRestrictor returns a Restrictor over the given fine/coarse pairing.
func NewRestrictor(ic *InterLevelComm) *Restrictor { return &Restrictor{Comm: ic} }

// Restrict fills coarse entirely from fine: local pairs write directly,
// remote pairs restrict into a scratch ghost vector and add it in through
// InterLevelComm's reverse (Send) exchange.
func (r *Restrictor) Restrict(fine, coarse vec.Vector) error {
	coarse.Set(0)
	ic := r.Comm
	nd := ic.Fine.ND
	for _, p := range ic.LocalPairs {
		pf := ic.Fine.PatchByLocalIndex(p.FineLocal)
		for comp := 0; comp < fine.NumComponents(); comp++ {
			restrictOrthant(coarse.LocalData(p.CoarseLocal, comp), fine.LocalData(p.FineLocal, comp), pf.OrthantOnParent, ic.N, nd)
		}
	}
	if len(ic.GhostPairs) == 0 {
		return nil
	}
	ghost := ic.GetNewGhostVector()
	for _, gp := range ic.GhostPairs {
		pf := ic.Fine.PatchByLocalIndex(gp.FineLocal)
		for comp := 0; comp < fine.NumComponents(); comp++ {
			restrictOrthant(ghost.LocalData(gp.GhostLocal, comp), fine.LocalData(gp.FineLocal, comp), pf.OrthantOnParent, ic.N, nd)
		}
	}
	if err := ic.SendGhostPatchesStart(coarse, ghost); err != nil {
		return err
	}
	return ic.SendGhostPatchesFinish()
}

// restrictOrthant averages fine's N^nd interior cells, 2^nd at a time, into
// the half-size quadrant of coarse that orthant selects on every axis.
func restrictOrthant(coarse, fine ld.LocalData, orthant geom.Orthant, n, nd int) {
	half := n / 2
	quadLens := make([]int, nd)
	for i := range quadLens {
		quadLens[i] = half
	}
	rangeLoop(quadLens, func(localCoarse []int) {
		coarseCoord := make([]int, nd)
		for a := 0; a < nd; a++ {
			base := 0
			if orthant.OnAxis(a) {
				base = half
			}
			coarseCoord[a] = base + localCoarse[a]
		}
		var sum float64
		subLens := make([]int, nd)
		for i := range subLens {
			subLens[i] = 2
		}
		rangeLoop(subLens, func(bit []int) {
			fineCoord := make([]int, nd)
			for a := 0; a < nd; a++ {
				fineCoord[a] = localCoarse[a]*2 + bit[a]
			}
			sum += fine.At(fineCoord)
		})
		coarse.Set(coarseCoord, sum/float64(int(1)<<uint(nd)))
	})
}
