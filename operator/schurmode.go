// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package operator

import (
	"github.com/patchdd/thunderegg/domain"
	"github.com/patchdd/thunderegg/geom"
	"github.com/patchdd/thunderegg/ld"
)

// BoundaryLookup supplies the interface value gamma on a patch's side: the
// schur package implements this over its InterfaceDomain so that this
// package never needs to import schur.
type BoundaryLookup func(s geom.Side) ld.LocalData

// ApplyWithInterface computes f = A(u) for a single patch using gamma as
// the boundary value on every side that has a neighbor (Schur mode): the
// outside value in the star stencil is read from the interface rather than
// from a ghost cell, entering as a mirror (2*gamma - 3*mid + inner)/h^2.
// Physical boundaries behave exactly as in the ghost-filled Apply.
func (op *StarPatchOperator) ApplyWithInterface(pi *domain.PatchInfo, u ld.LocalData, gamma BoundaryLookup, f ld.LocalData) {
	nd := pi.ND
	for axis := 0; axis < nd; axis++ {
		h2 := pi.Spacings[axis] * pi.Spacings[axis]
		first := axis == 0
		applySchurFace(pi, u, f, geom.Side(axis*2), gamma, h2, first)
		applySchurFace(pi, u, f, geom.Side(axis*2+1), gamma, h2, first)
		applyInteriorAxis(u, f, axis, h2, first)
	}
}

func applySchurFace(pi *domain.PatchInfo, u, f ld.LocalData, s geom.Side, gamma BoundaryLookup, h2 float64, first bool) {
	mid := u.SliceOnSide(s, 0)
	inner := u.SliceOnSide(s, 1)
	fFace := f.SliceOnSide(s, 0)

	switch {
	case pi.HasNbr(s):
		bnd := gamma(s)
		walkFace(mid, func(coord []int) {
			val := (2*bnd.At(coord) - 3*mid.At(coord) + inner.At(coord)) / h2
			accumulate(fFace, coord, val, first)
		})
	case pi.IsNeumann(s):
		walkFace(mid, func(coord []int) {
			val := (-mid.At(coord) + inner.At(coord)) / h2
			accumulate(fFace, coord, val, first)
		})
	default:
		walkFace(mid, func(coord []int) {
			val := (-3*mid.At(coord) + inner.At(coord)) / h2
			accumulate(fFace, coord, val, first)
		})
	}
}

// AddInterfaceToRHS subtracts each interface side's 2/h^2 * gamma
// contribution from f, the adjustment that lets a zero-RHS patch solve
// stand in for the true interface-coupled system (the "double solve"
// pattern the Schur apply is built from).
func (op *StarPatchOperator) AddInterfaceToRHS(pi *domain.PatchInfo, gamma BoundaryLookup, f ld.LocalData) {
	for _, s := range geom.Sides(pi.ND) {
		if !pi.HasNbr(s) {
			continue
		}
		h2 := pi.Spacings[s.Axis()] * pi.Spacings[s.Axis()]
		bnd := gamma(s)
		slice := f.SliceOnSide(s, 0)
		walkFace(slice, func(coord []int) {
			slice.Add(coord, -2.0/h2*bnd.At(coord))
		})
	}
}
