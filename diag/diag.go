// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package diag plots the residual history a krylov solver's verbose mode
// prints: a thin purpose-built cousin of gofem's out package, which plots
// post-processed FEM field histories with the same gosl/plt primitives.
package diag

import (
	"math"

	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/plt"
)

// ResidualHistory is the (iteration, relative residual) series a Krylov
// solver accumulates across its run, the same pair its verbose mode prints
// as "%5d %16.8e\n".
type ResidualHistory struct {
	Iters     []int
	Residuals []float64
}

// Record appends one (iteration, residual) sample.
func (h *ResidualHistory) Record(iter int, residual float64) {
	h.Iters = append(h.Iters, iter)
	h.Residuals = append(h.Residuals, residual)
}

// ConvergencePlot draws log10(relative residual) against iteration and
// saves it to dirout/fname, or shows it interactively when fname is empty,
// following out.Draw's save-or-show convention.
func ConvergencePlot(h *ResidualHistory, dirout, fname string) {
	x := make([]float64, len(h.Iters))
	y := make([]float64, len(h.Residuals))
	for i, it := range h.Iters {
		x[i] = float64(it)
		y[i] = math.Log10(h.Residuals[i])
	}
	fm := plt.Fmt{C: "b", M: "o", L: "residual"}
	plt.Plot(x, y, fm.GetArgs("clip_on=0"))
	plt.Gll("iteration", "$\\log_{10}$(relative residual)", "")
	if fname == "" {
		plt.Show()
		return
	}
	fnk := io.FnKey(fname)
	ext := io.FnExt(fname)
	if dirout == "" {
		plt.Save(fnk + ext)
	} else {
		plt.SaveD(dirout, fnk+ext)
	}
}
