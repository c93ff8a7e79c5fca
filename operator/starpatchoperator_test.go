// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package operator

import (
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/patchdd/thunderegg/comm"
	"github.com/patchdd/thunderegg/domain"
	"github.com/patchdd/thunderegg/geom"
	"github.com/patchdd/thunderegg/vec"
)

func singlePatchDomain(n int, h float64) (*domain.Domain, *vec.ValVectorGenerator) {
	c := comm.World()
	d := domain.NewDomain(c, 2)
	pi := domain.NewPatchInfo(0, 0, 2, n, 0, []float64{h, h}, []float64{0, 0})
	d.AddPatch(pi)
	d.Finalize()
	gen := &vec.ValVectorGenerator{Comm: c, ND: 2, N: n, G: 1, NumComponents: 1, NumLocalPatches: 1}
	return d, gen
}

// a quadratic field is exactly reproduced by the 3-point stencil, so a
// single all-Dirichlet-zero patch applied to u(x,y) = x^2+y^2 must recover
// the constant Laplacian 4 everywhere except where the mirror boundary
// departs from the true ghost value.
func Test_starpatch01_interior_laplacian_of_quadratic(tst *testing.T) {

	chk.PrintTitle("starpatch01. interior cells of a quadratic field see Laplacian==4")

	n := 6
	h := 0.1
	d, gen := singlePatchDomain(n, h)
	u := gen.GetNewVector()
	f := gen.GetNewVector()

	lda := u.LocalData(0, 0)
	for x := 0; x < n; x++ {
		for y := 0; y < n; y++ {
			xc := (float64(x) + 0.5) * h
			yc := (float64(y) + 0.5) * h
			lda.Set([]int{x, y}, xc*xc+yc*yc)
		}
	}

	op := New(d)
	op.Apply(u, f)

	fld := f.LocalData(0, 0)
	for x := 1; x < n-1; x++ {
		for y := 1; y < n-1; y++ {
			chk.Scalar(tst, "interior Laplacian", 1e-9, fld.At([]int{x, y}), 4.0)
		}
	}
}

func Test_starpatch02_neumann_zero_flux(tst *testing.T) {

	chk.PrintTitle("starpatch02. constant field with all-Neumann boundary has zero Laplacian")

	n := 4
	h := 0.25
	gen := &vec.ValVectorGenerator{Comm: comm.World(), ND: 2, N: n, G: 1, NumComponents: 1, NumLocalPatches: 1}
	u := gen.GetNewVector()
	fvec := gen.GetNewVector()
	u.Set(7.0)

	c := comm.World()
	d2 := domain.NewDomain(c, 2)
	pi2 := domain.NewPatchInfo(0, 0, 2, n, 0, []float64{h, h}, []float64{0, 0})
	for _, s := range geom.Sides(2) {
		pi2.SetNeumann(s, true)
	}
	d2.AddPatch(pi2)
	d2.Finalize()

	op := New(d2)
	op.Apply(u, fvec)

	fld := fvec.LocalData(0, 0)
	for x := 0; x < n; x++ {
		for y := 0; y < n; y++ {
			chk.Scalar(tst, "Neumann constant field", 1e-12, fld.At([]int{x, y}), 0.0)
		}
	}
}

func Test_starpatch03_dirichlet_rhs_matches_mirror(tst *testing.T) {

	chk.PrintTitle("starpatch03. AddDirichletBCToRHS(g=0) leaves f untouched")

	n := 4
	h := 0.25
	d, gen := singlePatchDomain(n, h)
	f := gen.GetNewVector()
	f.Set(1.0)

	op := New(d)
	before := f.LocalData(0, 0).At([]int{0, 0})
	op.AddDirichletBCToRHS(f, func(coord []float64) float64 { return 0.0 })
	after := f.LocalData(0, 0).At([]int{0, 0})
	chk.Scalar(tst, "zero Dirichlet value adds nothing", 1e-15, after, before)
}

func Test_starpatch04_boundary_scheme_third_differs_from_mirror(tst *testing.T) {

	chk.PrintTitle("starpatch04. BoundaryThird and BoundaryMirror diverge at a refinement jump")

	c := comm.World()
	d := domain.NewDomain(c, 2)
	n := 4
	pi := domain.NewPatchInfo(0, 0, 2, n, 1, []float64{0.25, 0.25}, []float64{0, 0})
	pi.SetNbr(geom.Side(1), domain.NewCoarseNbr(1, 0, geom.Orthant(0)))
	d.AddPatch(pi)
	d.Finalize()

	gen := &vec.ValVectorGenerator{Comm: c, ND: 2, N: n, G: 1, NumComponents: 1, NumLocalPatches: 1}
	u := gen.GetNewVector()
	lda := u.LocalData(0, 0)
	for x := 0; x < n; x++ {
		for y := 0; y < n; y++ {
			lda.Set([]int{x, y}, float64(x+y))
		}
	}
	ghostSlice := lda.GhostSliceOnSide(geom.Side(1), 1)
	for y := 0; y < n; y++ {
		ghostSlice.Set([]int{y}, 9.0)
	}

	fMirror := gen.GetNewVector()
	opMirror := New(d)
	opMirror.Apply(u, fMirror)

	fThird := gen.GetNewVector()
	opThird := New(d)
	opThird.Scheme = BoundaryThird
	opThird.Apply(u, fThird)

	got := fMirror.LocalData(0, 0).At([]int{n - 1, 0}) - fThird.LocalData(0, 0).At([]int{n - 1, 0})
	if got == 0 {
		tst.Fatalf("expected BoundaryMirror and BoundaryThird to diverge at the refinement-jump face, got equal values")
	}
}
