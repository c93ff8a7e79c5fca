// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gmg

import (
	"github.com/patchdd/thunderegg/domain"
	"github.com/patchdd/thunderegg/ghost"
	"github.com/patchdd/thunderegg/operator"
	"github.com/patchdd/thunderegg/vec"
)

// Smoother relaxes u in place against op(u) = f for a fixed number of
// sweeps, the per-level relaxation step a V-cycle applies before
// restricting the residual and after interpolating the correction back.
type Smoother interface {
	Smooth(u, f vec.Vector) error
}

// JacobiSmoother is a damped-Jacobi relaxation using an approximate,
// spatially-constant diagonal rather than the operator's exact per-cell
// diagonal (gosl's dense/sparse solve API could not be verified against
// local sources, so this avoids guessing at it — see DESIGN.md). For the
// constant-coefficient star stencil this surrogate diagonal, -2*ND/h^2
// (negative, since the operator computes Δu), is exact away from a
// physical boundary and only approximate at boundary and
// refinement-jump cells, which is enough to damp the residual's high
// frequencies the way a V-cycle smoother needs to.
type JacobiSmoother struct {
	Domain  *domain.Domain
	Op      operator.Operator
	Filler  *ghost.Filler
	Omega   float64
	Sweeps  int
}

// NewJacobiSmoother returns a JacobiSmoother with the conventional 2D/3D
// damping factor (2/3) and a single sweep per call.
func NewJacobiSmoother(d *domain.Domain, op operator.Operator, filler *ghost.Filler) *JacobiSmoother {
	return &JacobiSmoother{Domain: d, Op: op, Filler: filler, Omega: 2.0 / 3.0, Sweeps: 1}
}

// Smooth performs Sweeps damped-Jacobi iterations on u in place.
func (s *JacobiSmoother) Smooth(u, f vec.Vector) error {
	gen := &vec.ValVectorGenerator{Comm: s.Domain.Comm, ND: s.Domain.ND, N: localN(s.Domain), G: 0, NumComponents: u.NumComponents(), NumLocalPatches: u.NumLocalPatches()}
	for iter := 0; iter < s.Sweeps; iter++ {
		if err := s.Filler.FillGhost(u); err != nil {
			return err
		}
		residual := gen.GetNewVector()
		s.Op.Apply(u, residual)
		residual.Scale(-1)
		residual.Add(f)
		for li := 0; li < s.Domain.NumLocalPatches(); li++ {
			pi := s.Domain.PatchByLocalIndex(li)
			diag := surrogateDiagonal(pi)
			for comp := 0; comp < u.NumComponents(); comp++ {
				uld := u.LocalData(li, comp)
				rld := residual.LocalData(li, comp)
				walkInterior(uld, func(coord []int) {
					uld.Add(coord, s.Omega/diag*rld.At(coord))
				})
			}
		}
	}
	return nil
}

// surrogateDiagonal approximates A's diagonal at every cell of pi with the
// constant-coefficient interior value, the sum of -2/h^2 over every axis
// (-2*ND/h^2 when all spacings are equal).
func surrogateDiagonal(pi *domain.PatchInfo) float64 {
	var sum float64
	for axis := 0; axis < pi.ND; axis++ {
		h2 := pi.Spacings[axis] * pi.Spacings[axis]
		sum += 2.0 / h2
	}
	return -sum
}

func localN(d *domain.Domain) int {
	if d.NumLocalPatches() == 0 {
		return 0
	}
	return d.PatchByLocalIndex(0).N
}
