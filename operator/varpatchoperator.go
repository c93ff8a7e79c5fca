// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package operator

import (
	"github.com/cpmech/gosl/chk"

	"github.com/patchdd/thunderegg/domain"
	"github.com/patchdd/thunderegg/geom"
	"github.com/patchdd/thunderegg/ghost"
	"github.com/patchdd/thunderegg/ld"
	"github.com/patchdd/thunderegg/vec"
)

// VarPatchOperator implements the variable-coefficient Laplacian
// f = Div[h*Grad[u]], with h a cell-centered coefficient field filled with
// ghosts once at construction time. Unlike StarPatchOperator it does not
// distinguish Neumann from Dirichlet at a physical boundary: every
// no-neighbor side is mirrored to -mid, matching the coefficient source
// this is grounded on.
type VarPatchOperator struct {
	Domain *domain.Domain
	Coeffs vec.Vector
}

// NewVarPatchOperator builds a VarPatchOperator over coeffs, ghost-filling
// it once through filler. filler's ghost depth must be at least 1.
func NewVarPatchOperator(d *domain.Domain, coeffs vec.Vector, filler *ghost.Filler) (*VarPatchOperator, error) {
	if filler.G < 1 {
		chk.Panic("operator.NewVarPatchOperator: needs at least one ghost layer; got %d", filler.G)
	}
	if err := filler.FillGhost(coeffs); err != nil {
		return nil, err
	}
	return &VarPatchOperator{Domain: d, Coeffs: coeffs}, nil
}

// Apply computes f = Div[h*Grad[u]] for every local patch and component,
// assuming u's ghosts have already been filled and this operator's
// coefficient field was ghost-filled at construction.
func (op *VarPatchOperator) Apply(u, f vec.Vector) {
	for li := 0; li < op.Domain.NumLocalPatches(); li++ {
		pi := op.Domain.PatchByLocalIndex(li)
		c := op.Coeffs.LocalData(li, 0)
		for comp := 0; comp < u.NumComponents(); comp++ {
			op.applySinglePatch(pi, u.LocalData(li, comp), c, f.LocalData(li, comp))
		}
	}
}

// applySinglePatch mirrors every no-neighbor side to -mid, then walks the
// whole interior (including faces, whose outside value is now either a
// filled ghost or that mirror) with the variable-coefficient flux-difference
// stencil.
func (op *VarPatchOperator) applySinglePatch(pi *domain.PatchInfo, u, c, f ld.LocalData) {
	nd := pi.ND
	for axis := 0; axis < nd; axis++ {
		for _, s := range [2]geom.Side{geom.Side(axis * 2), geom.Side(axis*2 + 1)} {
			if pi.HasNbr(s) {
				continue
			}
			mid := u.SliceOnSide(s, 0)
			bnd := u.GhostSliceOnSide(s, 1)
			walkFace(mid, func(coord []int) {
				bnd.Set(coord, -mid.At(coord))
			})
		}
	}
	for axis := 0; axis < nd; axis++ {
		h2 := pi.Spacings[axis] * pi.Spacings[axis]
		first := axis == 0
		walkRange(nd, u.Start(), u.End(), func(coord []int) {
			lo, hi := shift(coord, axis, -1), shift(coord, axis, 1)
			lower, mid, upper := u.At(lo), u.At(coord), u.At(hi)
			cLower, cMid, cUpper := c.At(lo), c.At(coord), c.At(hi)
			val := ((cUpper+cMid)*(upper-mid) - (cLower+cMid)*(mid-lower)) / (2 * h2)
			accumulate(f, coord, val, first)
		})
	}
}

// AddGhostToRHS folds the neighbor-coupling term at every interface side
// into f and zeros the corresponding ghost, so a subsequent applySinglePatch
// on a decoupled copy of u behaves like a true single-patch solve with the
// coupling captured explicitly in the right-hand side.
func (op *VarPatchOperator) AddGhostToRHS(u, f vec.Vector) {
	for li := 0; li < op.Domain.NumLocalPatches(); li++ {
		pi := op.Domain.PatchByLocalIndex(li)
		c := op.Coeffs.LocalData(li, 0)
		for comp := 0; comp < u.NumComponents(); comp++ {
			addGhostToRHSPatch(pi, u.LocalData(li, comp), c, f.LocalData(li, comp))
		}
	}
}

func addGhostToRHSPatch(pi *domain.PatchInfo, u, c, f ld.LocalData) {
	for _, s := range geom.Sides(pi.ND) {
		if !pi.HasNbr(s) {
			continue
		}
		h2 := pi.Spacings[s.Axis()] * pi.Spacings[s.Axis()]
		fInner := f.SliceOnSide(s, 0)
		uGhost := u.GhostSliceOnSide(s, 1)
		uInner := u.SliceOnSide(s, 0)
		cGhost := c.GhostSliceOnSide(s, 1)
		cInner := c.SliceOnSide(s, 0)
		walkFace(fInner, func(coord []int) {
			fInner.Add(coord, -(uGhost.At(coord)+uInner.At(coord))*(cInner.At(coord)+cGhost.At(coord))/(2*h2))
			uGhost.Set(coord, 0)
		})
	}
}

// AddDirichletBCToRHS folds a Dirichlet boundary value g, weighted by the
// coefficient field evaluated via hfunc, into f at every physical boundary
// (every side with no neighbor), for the patches holding coeffs' own
// domain. gfunc and hfunc are evaluated at the boundary's real-space
// coordinate.
func (op *VarPatchOperator) AddDirichletBCToRHS(f vec.Vector, gfunc, hfunc func(coord []float64) float64) {
	for li := 0; li < op.Domain.NumLocalPatches(); li++ {
		pi := op.Domain.PatchByLocalIndex(li)
		fld := f.LocalData(li, 0)
		for _, s := range geom.Sides(pi.ND) {
			if pi.HasNbr(s) {
				continue
			}
			h2 := pi.Spacings[s.Axis()] * pi.Spacings[s.Axis()]
			slice := fld.SliceOnSide(s, 0)
			walkFace(slice, func(coord []int) {
				real := pi.RealCoordBound(coord, s)
				slice.Add(coord, -2*gfunc(real)*hfunc(real)/h2)
			})
		}
	}
}
