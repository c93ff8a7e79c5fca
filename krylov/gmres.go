// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package krylov

import (
	"math"

	"github.com/patchdd/thunderegg/vec"
)

// GMRES is restarted generalized minimal residual, block size 1: a full
// Arnoldi process over a fixed-size window with explicit Givens rotations
// reducing the Hessenberg system to upper-triangular as each column is
// built, restarting from the current iterate whenever the window fills.
type GMRES struct {
	Options

	// Restart is the Arnoldi window size before a restart. Zero uses 30,
	// the conventional default for a window small enough to keep the
	// Hessenberg system's O(Restart^2) storage and orthogonalization cost
	// negligible next to the per-iteration Operator.Apply.
	Restart int
}

func (s *GMRES) restart() int {
	if s.Restart > 0 {
		return s.Restart
	}
	return 30
}

// Solve runs restarted GMRES against A*x = b starting from x's current
// contents, returning the total number of Arnoldi iterations across every
// restart cycle (the residual recomputed around each cycle is an Operator
// apply that is not counted).
func (s *GMRES) Solve(gen vec.Generator, a Operator, x, b vec.Vector) (int, error) {
	bNorm := b.TwoNorm()
	if bNorm == 0 {
		return 0, nil
	}

	m := s.restart()
	tol := s.tol()
	maxIters := s.maxIters()

	r := gen.GetNewVector()
	iters := 0

	for iters < maxIters {
		if err := a.Apply(x, r); err != nil {
			return iters, err
		}
		r.ScaleThenAdd(-1, b)
		beta := r.TwoNorm()
		residual := beta / bNorm
		s.report(iters, residual)
		if residual <= tol {
			return iters, nil
		}

		v := make([]vec.Vector, m+1)
		v[0] = gen.GetNewVector()
		v[0].Copy(r)
		v[0].Scale(1 / beta)

		h := make([][]float64, m+1)
		for i := range h {
			h[i] = make([]float64, m)
		}
		cs := make([]float64, m)
		sn := make([]float64, m)
		g := make([]float64, m+1)
		g[0] = beta

		k := 0
		for ; k < m && iters < maxIters; k++ {
			w := gen.GetNewVector()
			if err := a.Apply(v[k], w); err != nil {
				return iters, err
			}
			for i := 0; i <= k; i++ {
				h[i][k] = w.Dot(v[i])
				w.AddScaled(-h[i][k], v[i])
			}
			hNorm := w.TwoNorm()
			h[k+1][k] = hNorm

			for i := 0; i < k; i++ {
				applyGivens(h, k, i, cs[i], sn[i])
			}
			cs[k], sn[k] = givensRotation(h[k][k], h[k+1][k])
			h[k][k] = cs[k]*h[k][k] + sn[k]*h[k+1][k]
			h[k+1][k] = 0

			g[k+1] = -sn[k] * g[k]
			g[k] = cs[k] * g[k]

			iters++
			residual = math.Abs(g[k+1]) / bNorm
			s.report(iters, residual)

			if residual > 1e6 {
				return iters, &DivergenceError{Iter: iters, Res: residual}
			}
			if hNorm == 0 || residual <= tol {
				k++
				break
			}

			v[k+1] = gen.GetNewVector()
			v[k+1].Copy(w)
			v[k+1].Scale(1 / hNorm)
		}

		y := solveUpperTriangular(h, g, k)
		for i := 0; i < k; i++ {
			x.AddScaled(y[i], v[i])
		}

		if a.Apply(x, r) == nil {
			r.ScaleThenAdd(-1, b)
			if r.TwoNorm()/bNorm <= tol {
				return iters, nil
			}
		}
	}
	if err := a.Apply(x, r); err == nil {
		r.ScaleThenAdd(-1, b)
		if res := r.TwoNorm() / bNorm; res > tol {
			return iters, &NotConvergedError{Iters: iters, Res: res}
		}
	}
	return iters, nil
}

// applyGivens applies the i-th already-computed rotation to column k of h.
func applyGivens(h [][]float64, k, i int, c, sVal float64) {
	t := c*h[i][k] + sVal*h[i+1][k]
	h[i+1][k] = -sVal*h[i][k] + c*h[i+1][k]
	h[i][k] = t
}

// givensRotation returns (c, s) such that [c s; -s c] * [a; b] = [r; 0].
func givensRotation(a, b float64) (c, s float64) {
	if b == 0 {
		return 1, 0
	}
	if math.Abs(b) > math.Abs(a) {
		t := a / b
		s = 1 / math.Sqrt(1+t*t)
		c = s * t
		return
	}
	t := b / a
	c = 1 / math.Sqrt(1+t*t)
	s = c * t
	return
}

// solveUpperTriangular back-substitutes the k-by-k upper-triangular system
// h[0:k][0:k] y = g[0:k] produced by the Givens-rotated Hessenberg matrix.
func solveUpperTriangular(h [][]float64, g []float64, k int) []float64 {
	y := make([]float64, k)
	for i := k - 1; i >= 0; i-- {
		sum := g[i]
		for j := i + 1; j < k; j++ {
			sum -= h[i][j] * y[j]
		}
		y[i] = sum / h[i][i]
	}
	return y
}
