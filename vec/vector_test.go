// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vec

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/patchdd/thunderegg/comm"
)

func fillConst(v Vector, value float64) {
	for p := 0; p < v.NumLocalPatches(); p++ {
		for c := 0; c < v.NumComponents(); c++ {
			lda := v.LocalData(p, c)
			forEachCell(lda.NumDims(), lda, func(coord []int) { lda.Set(coord, value) })
		}
	}
}

func Test_valvector01(tst *testing.T) {

	chk.PrintTitle("valvector01. ghost cells do not participate in norms or dot products")

	c := comm.World()
	v := NewValVector(c, 2, 4, 1, 1, 1)
	fillConst(v, 2.0)

	lda := v.LocalData(0, 0)
	lda.Set([]int{-1, 0}, 999.0)
	lda.Set([]int{4, 0}, 999.0)

	chk.Scalar(tst, "inf-norm ignores ghosts", 1e-15, v.InfNorm(), 2.0)
	chk.Scalar(tst, "two-norm ignores ghosts", 1e-12, v.TwoNorm(), math.Sqrt(16*4.0))
}

func Test_valvector02(tst *testing.T) {

	chk.PrintTitle("valvector02. Scale is homogeneous under the two-norm")

	c := comm.World()
	v := NewValVector(c, 2, 3, 0, 1, 2)
	fillConst(v, 1.5)

	base := v.TwoNorm()
	v.Scale(-2.0)
	chk.Scalar(tst, "||alpha v|| == |alpha| ||v||", 1e-12, v.TwoNorm(), 2.0*base)
}

func Test_valvector03(tst *testing.T) {

	chk.PrintTitle("valvector03. triangle inequality holds for Add")

	c := comm.World()
	gen := &ValVectorGenerator{Comm: c, ND: 2, N: 4, G: 1, NumComponents: 1, NumLocalPatches: 1}
	a := gen.GetNewVector()
	b := gen.GetNewVector()
	fillConst(a, 3.0)
	fillConst(b, -1.0)

	na, nb := a.TwoNorm(), b.TwoNorm()
	a.Add(b)
	sum := a.TwoNorm()
	if sum > na+nb+1e-9 {
		tst.Fatalf("triangle inequality violated: ||a+b||=%v > ||a||+||b||=%v", sum, na+nb)
	}
}

func Test_valvector04(tst *testing.T) {

	chk.PrintTitle("valvector04. AddScaled2 matches manual axpy")

	c := comm.World()
	gen := &ValVectorGenerator{Comm: c, ND: 2, N: 2, G: 1, NumComponents: 1, NumLocalPatches: 1}
	a := gen.GetNewVector()
	x := gen.GetNewVector()
	y := gen.GetNewVector()
	fillConst(a, 0.0)
	fillConst(x, 2.0)
	fillConst(y, 3.0)

	a.AddScaled2(4.0, x, 5.0, y)
	expect := 4.0*2.0 + 5.0*3.0
	lda := a.LocalData(0, 0)
	chk.Scalar(tst, "a += alpha*x + beta*y", 1e-12, lda.At([]int{0, 0}), expect)
}

func Test_petscvector01(tst *testing.T) {

	chk.PrintTitle("petscvector01. PetscVector over an external buffer matches ValVector layout")

	c := comm.World()
	nd, n, g, ncomp, npatch := 2, 3, 1, 1, 1
	full := n + 2*g
	buf := make([]float64, ncomp*full*full*npatch)
	pv := WrapPetscVector(c, nd, n, g, ncomp, npatch, buf)

	pv.Set(7.0)
	chk.Scalar(tst, "inf-norm over wrapped buffer", 1e-15, pv.InfNorm(), 7.0)

	// mutating the underlying buffer directly is visible through the view
	buf[0] = 100.0
	lda := pv.LocalData(0, 0)
	ghostCorner := lda.At([]int{-1, -1})
	chk.Scalar(tst, "buffer aliasing", 1e-15, ghostCorner, 100.0)
}

func Test_vector_shape_mismatch(tst *testing.T) {

	chk.PrintTitle("vector_shape_mismatch. Add panics when shapes differ")

	defer func() {
		if r := recover(); r == nil {
			tst.Fatalf("expected panic on shape mismatch")
		}
	}()

	c := comm.World()
	a := NewValVector(c, 2, 4, 1, 1, 1)
	b := NewValVector(c, 2, 4, 1, 2, 1)
	a.Add(b)
}
