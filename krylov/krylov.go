// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package krylov implements matrix-free Krylov solvers over vec.Vector:
// CG for a symmetric positive-definite Operator (the Schur complement or a
// plain ghost-filled Laplacian), and BiCGStab and restarted GMRES for a
// general nonsymmetric one. All three loop directly rather than through a
// reverse-communication
// state machine, the same direct-call iteration style gofem's own
// return-mapping solvers use.
package krylov

import (
	"github.com/cpmech/gosl/io"

	"github.com/patchdd/thunderegg/vec"
)

// Operator is what a Krylov solver applies each iteration. Unlike
// operator.Operator (A(u) = f with no error path, since a ghost-filled
// patch Apply cannot itself fail) this can fail, since a schur.SchurHelper
// application is a real nonblocking communication round that can surface a
// protocol error.
type Operator interface {
	Apply(u, f vec.Vector) error
}

// OperatorFunc adapts a plain operator.Operator-shaped Apply (no error)
// into Operator, for solving directly against a ghost-filled volume
// operator rather than a schur.SchurHelper.
type OperatorFunc func(u, f vec.Vector)

// Apply calls fn and always returns nil.
func (fn OperatorFunc) Apply(u, f vec.Vector) error {
	fn(u, f)
	return nil
}

// Options configures every solver in this package.
type Options struct {
	MaxIters int
	Tol      float64
	Verbose  bool

	// OnIter, if set, is called after every iteration with the current
	// iteration count and relative residual, independently of Verbose --
	// diag.ResidualHistory.Record has this exact signature.
	OnIter func(iter int, res float64)

	// Precond, if set, is an approximate inverse applied to the residual
	// each iteration: Precond.Apply(z, r) computes z ≈ M⁻¹r starting from
	// z's current contents (zeroed by the solver before each call), the
	// same in-place-correction shape gmg.VCycle.Apply already has. CG uses
	// it as the standard preconditioned-CG M⁻¹; BiCGStab and GMRES run
	// unpreconditioned regardless of this field (see DESIGN.md).
	Precond Operator
}

// DefaultOptions returns the conventional limits: 1000 iterations, a
// relative residual tolerance of 1e-12.
func DefaultOptions() Options {
	return Options{MaxIters: 1000, Tol: 1e-12}
}

func (o Options) maxIters() int {
	if o.MaxIters > 0 {
		return o.MaxIters
	}
	return DefaultOptions().MaxIters
}

func (o Options) tol() float64 {
	if o.Tol > 0 {
		return o.Tol
	}
	return DefaultOptions().Tol
}

func printIter(verbose bool, iter int, res float64) {
	if verbose {
		io.Pf("%5d %16.8e\n", iter, res)
	}
}

func (o Options) report(iter int, res float64) {
	printIter(o.Verbose, iter, res)
	if o.OnIter != nil {
		o.OnIter(iter, res)
	}
}

// BreakdownError is returned when a Krylov recurrence's denominator
// vanishes (or nearly so) before convergence, leaving the method unable to
// make further progress.
type BreakdownError struct {
	Iter int
	What string
}

func (e *BreakdownError) Error() string {
	return io.Sf("krylov: breakdown at iteration %d (%s)", e.Iter, e.What)
}

// DivergenceError is returned when the residual grows past a sane bound
// relative to its starting value, rather than looping to MaxIters on a
// visibly diverging iteration.
type DivergenceError struct {
	Iter int
	Res  float64
}

func (e *DivergenceError) Error() string {
	return io.Sf("krylov: residual diverged to %e at iteration %d", e.Res, e.Iter)
}

// NotConvergedError is returned when MaxIters is exhausted without meeting
// Tol.
type NotConvergedError struct {
	Iters int
	Res   float64
}

func (e *NotConvergedError) Error() string {
	return io.Sf("krylov: did not converge in %d iterations (residual %e)", e.Iters, e.Res)
}
