// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package operator implements the discrete star-stencil Laplacian applied
// per patch: the plain ghost-filled Laplacian used by multigrid and the
// interface-mirror variant the Schur complement apply needs, plus a
// variable-coefficient counterpart.
package operator

import (
	"github.com/patchdd/thunderegg/domain"
	"github.com/patchdd/thunderegg/geom"
	"github.com/patchdd/thunderegg/ld"
	"github.com/patchdd/thunderegg/vec"
)

// BoundaryScheme selects which refinement-boundary stencil coefficients a
// StarPatchOperator uses at cells adjacent to a Fine or Coarse neighbor.
// The source this system is grounded on leaves this as commented-out,
// unresolved code; both candidate coefficient sets are implemented and
// selectable rather than guessed at.
type BoundaryScheme int

const (
	// BoundaryMirror is the default scheme: refinement-boundary cells use
	// the same central-difference stencil as an equal-level neighbor,
	// trusting the ghost filler's interpolation to have already placed a
	// same-scale value in the ghost cell.
	BoundaryMirror BoundaryScheme = iota
	// BoundaryThird is the (1/3,-4/3,1) alternative scheme: the ghost cell
	// weighted 1/3 instead of 1, the cell itself -4/3 instead of -2, and the
	// interior neighbor 1 as in the plain central difference.
	BoundaryThird
)

// Operator is the interface Krylov solvers and multigrid levels apply:
// f = A(u), with u's ghosts already filled by a GhostFiller.
type Operator interface {
	Apply(u, f vec.Vector)
}

// StarPatchOperator implements the 2*ND+1-point Laplacian with per-axis
// spacings, Dirichlet/Neumann boundary adjustment, and a selectable
// refinement-boundary scheme.
type StarPatchOperator struct {
	Domain *domain.Domain
	Scheme BoundaryScheme
}

// New returns a StarPatchOperator over d using the default BoundaryMirror
// scheme.
func New(d *domain.Domain) *StarPatchOperator {
	return &StarPatchOperator{Domain: d, Scheme: BoundaryMirror}
}

// Apply computes f = A(u) for every local patch, assuming u's ghost cells
// have already been filled (by a ghost.Filler) to the correct
// interpolation order.
func (op *StarPatchOperator) Apply(u, f vec.Vector) {
	for li := 0; li < op.Domain.NumLocalPatches(); li++ {
		pi := op.Domain.PatchByLocalIndex(li)
		for c := 0; c < u.NumComponents(); c++ {
			op.applyPatch(pi, u.LocalData(li, c), f.LocalData(li, c))
		}
	}
}

// applyPatch is the ghost-filled single-patch Laplacian: standard central
// differences everywhere, overridden only at true physical boundaries
// (Dirichlet-zero mirror or Neumann) and, per Scheme, at refinement-jump
// boundaries.
func (op *StarPatchOperator) applyPatch(pi *domain.PatchInfo, u, f ld.LocalData) {
	nd := pi.ND
	for axis := 0; axis < nd; axis++ {
		h2 := pi.Spacings[axis] * pi.Spacings[axis]
		first := axis == 0
		op.applyFace(pi, u, f, axis, geom.Side(axis*2), h2, first)
		op.applyFace(pi, u, f, axis, geom.Side(axis*2+1), h2, first)
		applyInteriorAxis(u, f, axis, h2, first)
	}
}

// applyInteriorAxis handles every cell strictly interior along axis,
// accumulating into f with = on the first axis processed and += after.
func applyInteriorAxis(u, f ld.LocalData, axis int, h2 float64, first bool) {
	nd := u.NumDims()
	start := append([]int(nil), u.Start()...)
	end := append([]int(nil), u.End()...)
	start[axis]++
	end[axis]--
	walkRange(nd, start, end, func(coord []int) {
		lo, hi := shift(coord, axis, -1), shift(coord, axis, 1)
		val := (u.At(lo) - 2*u.At(coord) + u.At(hi)) / h2
		accumulate(f, coord, val, first)
	})
}

// applyFace handles the single layer of cells touching side s: a physical
// boundary (Dirichlet mirror-with-zero or Neumann), an equal-level
// neighbor (plain central difference using the already-filled ghost), or a
// refinement-jump neighbor (Scheme-selected coefficients).
func (op *StarPatchOperator) applyFace(pi *domain.PatchInfo, u, f ld.LocalData, axis int, s geom.Side, h2 float64, first bool) {
	mid := u.SliceOnSide(s, 0)
	inner := u.SliceOnSide(s, 1)
	fFace := f.SliceOnSide(s, 0)

	switch {
	case !pi.HasNbr(s) && pi.IsNeumann(s):
		walkFace(mid, func(coord []int) {
			val := (inner.At(coord) - mid.At(coord)) / h2
			accumulate(fFace, coord, val, first)
		})
	case !pi.HasNbr(s):
		// physical Dirichlet boundary: mirror formula with g=0.
		walkFace(mid, func(coord []int) {
			val := (-3*mid.At(coord) + inner.At(coord)) / h2
			accumulate(fFace, coord, val, first)
		})
	case pi.NbrType(s) == domain.NbrNormal:
		ghost := u.GhostSliceOnSide(s, 1)
		walkFace(mid, func(coord []int) {
			val := (ghost.At(coord) - 2*mid.At(coord) + inner.At(coord)) / h2
			accumulate(fFace, coord, val, first)
		})
	default: // NbrFine or NbrCoarse: refinement jump
		ghost := u.GhostSliceOnSide(s, 1)
		walkFace(mid, func(coord []int) {
			var val float64
			switch op.Scheme {
			case BoundaryThird:
				val = (ghost.At(coord)/3 - 4.0/3.0*mid.At(coord) + inner.At(coord)) / h2
			default:
				val = (ghost.At(coord) - 2*mid.At(coord) + inner.At(coord)) / h2
			}
			accumulate(fFace, coord, val, first)
		})
	}
}

// AddDirichletBCToRHS folds a non-homogeneous Dirichlet boundary value g
// into f at every physical boundary (every side with no neighbor), the
// constant-coefficient specialization of the variable-coefficient
// counterpart: 2*g(x)/h^2 subtracted from the boundary-adjacent RHS cell.
func (op *StarPatchOperator) AddDirichletBCToRHS(f vec.Vector, gfunc func(coord []float64) float64) {
	for li := 0; li < op.Domain.NumLocalPatches(); li++ {
		pi := op.Domain.PatchByLocalIndex(li)
		for comp := 0; comp < f.NumComponents(); comp++ {
			fld := f.LocalData(li, comp)
			for _, s := range geom.Sides(pi.ND) {
				if pi.HasNbr(s) {
					continue
				}
				h2 := pi.Spacings[s.Axis()] * pi.Spacings[s.Axis()]
				slice := fld.SliceOnSide(s, 0)
				walkFace(slice, func(coord []int) {
					real := pi.RealCoordBound(coord, s)
					slice.Add(coord, -2*gfunc(real)/h2)
				})
			}
		}
	}
}

func accumulate(v ld.LocalData, coord []int, val float64, first bool) {
	if first {
		v.Set(coord, val)
	} else {
		v.Add(coord, val)
	}
}

func shift(coord []int, axis, delta int) []int {
	out := append([]int(nil), coord...)
	out[axis] += delta
	return out
}

// walkRange visits every coordinate in [start[i],end[i]] inclusive per axis.
func walkRange(nd int, start, end []int, fn func(coord []int)) {
	coord := append([]int(nil), start...)
	var rec func(axis int)
	rec = func(axis int) {
		if axis < 0 {
			fn(coord)
			return
		}
		for coord[axis] = start[axis]; coord[axis] <= end[axis]; coord[axis]++ {
			rec(axis - 1)
		}
	}
	rec(nd - 1)
}

// walkFace visits every coordinate of an (ND-1)-dimensional face view.
func walkFace(v ld.LocalData, fn func(coord []int)) {
	walkRange(v.NumDims(), v.Start(), v.End(), fn)
}
