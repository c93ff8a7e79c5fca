// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package diag

import (
	"testing"

	"github.com/cpmech/gosl/chk"
)

func Test_diag01_record_accumulates_history(tst *testing.T) {

	chk.PrintTitle("diag01. Record appends (iter, residual) pairs in order")

	h := &ResidualHistory{}
	h.Record(0, 1.0)
	h.Record(1, 1e-2)
	h.Record(2, 1e-5)

	chk.IntAssert(len(h.Iters), 3)
	chk.IntAssert(h.Iters[2], 2)
	chk.Scalar(tst, "residual", 1e-15, h.Residuals[2], 1e-5)
}

func Test_diag02_convergence_plot(tst *testing.T) {

	chk.PrintTitle("diag02. ConvergencePlot renders without panicking")

	// run only if verbose==true, matching out's own plotting-test gate
	if chk.Verbose {
		h := &ResidualHistory{}
		h.Record(0, 1.0)
		h.Record(1, 1e-3)
		h.Record(2, 1e-7)
		ConvergencePlot(h, "/tmp/thunderegg", "test_diag02.png")
	}
}
