// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package patchsolver provides a reference solve.PatchSolver built entirely
// on operator.StarPatchOperator.ApplyWithInterface, so schur and krylov
// tests have a real single-patch solve to exercise without depending on an
// external FFT or dense-linear-algebra library (gosl's own solve API could
// not be verified against any locally available source; see DESIGN.md).
package patchsolver

import (
	"math"

	"github.com/patchdd/thunderegg/domain"
	"github.com/patchdd/thunderegg/geom"
	"github.com/patchdd/thunderegg/ld"
	"github.com/patchdd/thunderegg/operator"
	"github.com/patchdd/thunderegg/solve"
)

// JacobiPatchSolver solves A(u) = f on a single patch by damped-Jacobi
// relaxation, iterated to a tight tolerance, using the same
// approximate-diagonal surrogate as gmg.JacobiSmoother.
type JacobiPatchSolver struct {
	Op       *operator.StarPatchOperator
	Omega    float64
	MaxIters int
	Tol      float64
}

// New returns a JacobiPatchSolver with the conventional 2D/3D damping
// factor (2/3), a generous iteration cap, and a tight tolerance suitable
// for standing in as an exact solve in tests.
func New(op *operator.StarPatchOperator) *JacobiPatchSolver {
	return &JacobiPatchSolver{Op: op, Omega: 2.0 / 3.0, MaxIters: 20000, Tol: 1e-10}
}

// Solve returns a fresh ghost-free LocalData holding the relaxed solution,
// or a *solve.SingularPatchError if pi has no Dirichlet or interface side
// to pin the solution against.
func (s *JacobiPatchSolver) Solve(pi *domain.PatchInfo, f ld.LocalData, gamma operator.BoundaryLookup) (ld.LocalData, error) {
	if isSingular(pi) {
		return ld.LocalData{}, &solve.SingularPatchError{PatchID: pi.ID}
	}
	nd := pi.ND
	n := pi.N
	lens := make([]int, nd)
	strides := make([]int, nd)
	stride := 1
	for i := 0; i < nd; i++ {
		lens[i] = n
		strides[i] = stride
		stride *= n
	}
	u := ld.New(make([]float64, stride), strides, lens, 0)
	r := ld.New(make([]float64, stride), strides, lens, 0)

	diag := surrogateDiagonal(pi)
	for iter := 0; iter < s.MaxIters; iter++ {
		s.Op.ApplyWithInterface(pi, u, gamma, r)
		var maxRes float64
		walkAll(lens, func(coord []int) {
			res := f.At(coord) - r.At(coord)
			if a := math.Abs(res); a > maxRes {
				maxRes = a
			}
			u.Add(coord, s.Omega/diag*res)
		})
		if maxRes < s.Tol {
			break
		}
	}
	return u, nil
}

// isSingular reports whether every side of pi is a physical boundary
// flagged Neumann: with no interface side to read a gamma pin from and no
// homogeneous-Dirichlet side either, A(u) = f has a one-parameter family of
// solutions (or none).
func isSingular(pi *domain.PatchInfo) bool {
	for _, s := range geom.Sides(pi.ND) {
		if pi.HasNbr(s) {
			return false
		}
		if !pi.IsNeumann(s) {
			return false
		}
	}
	return true
}

// surrogateDiagonal approximates A's diagonal with the constant-coefficient
// interior value -2*ND/h^2 (the sum of -2/h^2 over every axis; negative,
// since the operator computes Δu), the same surrogate gmg.JacobiSmoother
// uses.
func surrogateDiagonal(pi *domain.PatchInfo) float64 {
	var sum float64
	for axis := 0; axis < pi.ND; axis++ {
		h2 := pi.Spacings[axis] * pi.Spacings[axis]
		sum += 2.0 / h2
	}
	return -sum
}

func walkAll(lens []int, fn func(coord []int)) {
	coord := make([]int, len(lens))
	var rec func(axis int)
	rec = func(axis int) {
		if axis < 0 {
			fn(coord)
			return
		}
		for coord[axis] = 0; coord[axis] < lens[axis]; coord[axis]++ {
			rec(axis - 1)
		}
	}
	rec(len(lens) - 1)
}
