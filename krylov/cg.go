// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package krylov

import (
	"github.com/patchdd/thunderegg/vec"
)

// CG is the standard Conjugate Gradient method for a symmetric
// positive-definite Operator: the Schur complement (schur.SchurHelper) or a
// volume operator wrapped in OperatorFunc. Diverges visibly if A is not
// actually SPD rather than silently returning a meaningless answer.
type CG struct {
	Options
}

// Solve runs (optionally preconditioned) CG against A*x = b starting from
// x's current contents (a warm start), returning the number of iterations
// taken.
func (s *CG) Solve(gen vec.Generator, a Operator, x, b vec.Vector) (int, error) {
	r := gen.GetNewVector()
	if err := a.Apply(x, r); err != nil {
		return 0, err
	}
	r.ScaleThenAdd(-1, b)

	bNorm := b.TwoNorm()
	if bNorm == 0 {
		return 0, nil
	}

	z := gen.GetNewVector()
	if err := s.precondition(z, r); err != nil {
		return 0, err
	}

	p := gen.GetNewVector()
	p.Copy(z)
	p.Scale(-1)

	ap := gen.GetNewVector()
	rho := r.Dot(z)

	iters := 0
	residual := r.TwoNorm() / bNorm
	s.report(iters, residual)

	maxIters := s.maxIters()
	tol := s.tol()
	for residual > tol && iters < maxIters {
		if err := a.Apply(p, ap); err != nil {
			return iters, err
		}
		pAp := p.Dot(ap)
		if pAp == 0 {
			return iters, &BreakdownError{Iter: iters, What: "p^T A p was 0"}
		}
		alpha := rho / pAp

		// p holds -z, not z, so the x update carries the compensating
		// minus sign; r's update does not, since ap = A*p is already
		// negated and cancels it.
		x.AddScaled(-alpha, p)
		r.AddScaled(alpha, ap)

		iters++
		residual = r.TwoNorm() / bNorm

		if residual > 1e6 {
			return iters, &DivergenceError{Iter: iters, Res: residual}
		}
		s.report(iters, residual)

		if err := s.precondition(z, r); err != nil {
			return iters, err
		}
		rhoNew := r.Dot(z)
		beta := rhoNew / rho
		p.ScaleThenAddScaled(beta, -1, z)
		rho = rhoNew
	}
	if residual > tol {
		return iters, &NotConvergedError{Iters: iters, Res: residual}
	}
	return iters, nil
}

// precondition sets z ≈ M⁻¹r, or z = r when no Precond is configured
// (plain unpreconditioned CG).
func (s *CG) precondition(z, r vec.Vector) error {
	if s.Precond == nil {
		z.Copy(r)
		return nil
	}
	z.Set(0)
	return s.Precond.Apply(z, r)
}
