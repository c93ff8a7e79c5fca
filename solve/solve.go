// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package solve declares the two "external" interfaces this system consumes
// rather than implements: PatchSolver (a per-patch direct or iterative
// solve, supplied by whatever discretization package a caller pairs with
// this one) and DomainReader (a mesh source). Reference implementations
// live in patchsolver and domreader respectively.
package solve

import (
	"github.com/patchdd/thunderegg/domain"
	"github.com/patchdd/thunderegg/ld"
	"github.com/patchdd/thunderegg/operator"
)

// PatchSolver solves the single-patch problem A(u) = f on pi, with gamma
// supplying the interface value on every side that has a neighbor (Schur
// mode) exactly as operator.StarPatchOperator.ApplyWithInterface consumes
// it. Implementations must fail rather than return a meaningless answer
// when pi is singular (pure-Neumann on every side, with gamma never
// supplying a pinning value).
type PatchSolver interface {
	Solve(pi *domain.PatchInfo, f ld.LocalData, gamma operator.BoundaryLookup) (ld.LocalData, error)
}

// DomainReader constructs a Domain (and the per-rank patch data a Vector
// needs to be seeded with) from some external mesh description.
type DomainReader interface {
	ReadDomain() (*domain.Domain, error)
}

// SingularPatchError is returned by a PatchSolver when pi has no Dirichlet
// or interface side to pin the solution against, so A(u) = f has either no
// solution or a one-parameter family of them.
type SingularPatchError struct {
	PatchID int
}

func (e *SingularPatchError) Error() string {
	return "solve: patch is singular (pure-Neumann, no pinning side)"
}
