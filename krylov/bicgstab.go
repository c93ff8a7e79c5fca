// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package krylov

import (
	"github.com/patchdd/thunderegg/vec"
)

// BiCGStab is the stabilized biconjugate gradient method, usable against a
// general (non-symmetric) Operator: the go-to when a discretization's
// Schur complement is not guaranteed SPD, e.g. a variable-coefficient
// problem with a strongly anisotropic coefficient field.
type BiCGStab struct {
	Options
}

// Solve runs BiCGStab against A*x = b starting from x's current contents
// (a warm start is preserved and added back at the end, matching the
// reference solve's initial_guess bookkeeping), returning the number of
// iterations taken.
func (s *BiCGStab) Solve(gen vec.Generator, a Operator, x, b vec.Vector) (int, error) {
	resid := gen.GetNewVector()
	if err := a.Apply(x, resid); err != nil {
		return 0, err
	}
	resid.ScaleThenAdd(-1, b)

	initialGuess := gen.GetNewVector()
	initialGuess.Copy(x)
	x.Set(0)

	r0Norm := b.TwoNorm()
	if r0Norm == 0 {
		return 0, nil
	}

	rhat := gen.GetNewVector()
	rhat.Copy(resid)
	p := gen.GetNewVector()
	p.Copy(resid)
	ap := gen.GetNewVector()
	as := gen.GetNewVector()
	sVec := gen.GetNewVector()

	rho := rhat.Dot(resid)

	iters := 0
	residual := resid.TwoNorm() / r0Norm
	s.report(iters, residual)

	maxIters := s.maxIters()
	tol := s.tol()
	for residual > tol && iters < maxIters {
		if rho == 0 {
			return iters, &BreakdownError{Iter: iters, What: "rho was 0"}
		}

		if err := a.Apply(p, ap); err != nil {
			return iters, err
		}
		alpha := rho / rhat.Dot(ap)

		sVec.Copy(resid)
		sVec.AddScaled(-alpha, ap)
		if sNorm := sVec.TwoNorm() / r0Norm; sNorm <= tol {
			x.AddScaled(alpha, p)
			iters++
			residual = sNorm
			break
		}

		if err := a.Apply(sVec, as); err != nil {
			return iters, err
		}
		omega := as.Dot(sVec) / as.Dot(as)
		x.AddScaled2(alpha, p, omega, sVec)
		resid.AddScaled(-alpha, ap)
		resid.AddScaled(-omega, as)

		rhoNew := resid.Dot(rhat)
		beta := rhoNew * alpha / (rho * omega)
		p.AddScaled(-omega, ap)
		p.ScaleThenAdd(beta, resid)

		iters++
		rho = rhoNew
		residual = resid.TwoNorm() / r0Norm

		if residual > 1e6 {
			return iters, &DivergenceError{Iter: iters, Res: residual}
		}
		s.report(iters, residual)
	}
	x.Add(initialGuess)
	if residual > tol {
		return iters, &NotConvergedError{Iters: iters, Res: residual}
	}
	return iters, nil
}
