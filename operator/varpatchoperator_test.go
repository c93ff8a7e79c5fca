// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package operator

import (
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/patchdd/thunderegg/comm"
	"github.com/patchdd/thunderegg/domain"
	"github.com/patchdd/thunderegg/ghost"
	"github.com/patchdd/thunderegg/vec"
)

// with a constant coefficient field, VarPatchOperator must reduce to the
// plain Laplacian (up to the factor baked into the coefficient) on a
// quadratic field.
func Test_varpatch01_constant_coeff_matches_plain_laplacian(tst *testing.T) {

	chk.PrintTitle("varpatch01. constant-coefficient VarPatchOperator matches the plain Laplacian")

	c := comm.World()
	n := 6
	h := 0.1
	d := domain.NewDomain(c, 2)
	pi := domain.NewPatchInfo(0, 0, 2, n, 0, []float64{h, h}, []float64{0, 0})
	d.AddPatch(pi)
	d.Finalize()

	gen := &vec.ValVectorGenerator{Comm: c, ND: 2, N: n, G: 1, NumComponents: 1, NumLocalPatches: 1}
	u := gen.GetNewVector()
	lda := u.LocalData(0, 0)
	for x := 0; x < n; x++ {
		for y := 0; y < n; y++ {
			xc := (float64(x) + 0.5) * h
			yc := (float64(y) + 0.5) * h
			lda.Set([]int{x, y}, xc*xc+yc*yc)
		}
	}

	coeffs := gen.GetNewVector()
	coeffs.Set(1.0)

	filler := ghost.New(d, 1)
	op, err := NewVarPatchOperator(d, coeffs, filler)
	if err != nil {
		tst.Fatalf("NewVarPatchOperator: %v", err)
	}

	f := gen.GetNewVector()
	op.Apply(u, f)

	fld := f.LocalData(0, 0)
	for x := 1; x < n-1; x++ {
		for y := 1; y < n-1; y++ {
			chk.Scalar(tst, "interior matches plain Laplacian", 1e-9, fld.At([]int{x, y}), 4.0)
		}
	}
}

func Test_varpatch02_dirichlet_rhs_zero_leaves_f_untouched(tst *testing.T) {

	chk.PrintTitle("varpatch02. AddDirichletBCToRHS(g=0) leaves f untouched")

	c := comm.World()
	n := 4
	d := domain.NewDomain(c, 2)
	pi := domain.NewPatchInfo(0, 0, 2, n, 0, []float64{0.25, 0.25}, []float64{0, 0})
	d.AddPatch(pi)
	d.Finalize()

	gen := &vec.ValVectorGenerator{Comm: c, ND: 2, N: n, G: 1, NumComponents: 1, NumLocalPatches: 1}
	coeffs := gen.GetNewVector()
	coeffs.Set(1.0)
	filler := ghost.New(d, 1)
	op, err := NewVarPatchOperator(d, coeffs, filler)
	if err != nil {
		tst.Fatalf("NewVarPatchOperator: %v", err)
	}

	f := gen.GetNewVector()
	f.Set(1.0)
	before := f.LocalData(0, 0).At([]int{0, 0})
	op.AddDirichletBCToRHS(f, func(coord []float64) float64 { return 0.0 }, func(coord []float64) float64 { return 1.0 })
	after := f.LocalData(0, 0).At([]int{0, 0})
	chk.Scalar(tst, "zero Dirichlet value adds nothing", 1e-15, after, before)
}
