// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gmg

import (
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/patchdd/thunderegg/comm"
	"github.com/patchdd/thunderegg/domain"
	"github.com/patchdd/thunderegg/geom"
	"github.com/patchdd/thunderegg/vec"
)

// oneCoarseFourFine builds a single-rank hierarchy: one coarse patch
// (N=4, origin (0,0), spacing 1) and its 4 same-rank children (N=4,
// spacing 0.5), each occupying one orthant.
func oneCoarseFourFine(n int) (*domain.Domain, *domain.Domain) {
	c := comm.World()
	coarse := domain.NewDomain(c, 2)
	pc := domain.NewPatchInfo(0, 0, 2, n, 0, []float64{1, 1}, []float64{0, 0})
	coarse.AddPatch(pc)

	fine := domain.NewDomain(c, 2)
	for o := 0; o < 4; o++ {
		origin := []float64{0, 0}
		if geom.Orthant(o).OnAxis(0) {
			origin[0] = 0.5 * float64(n)
		}
		if geom.Orthant(o).OnAxis(1) {
			origin[1] = 0.5 * float64(n)
		}
		pf := domain.NewPatchInfo(1+o, 0, 2, n, 1, []float64{0.5, 0.5}, origin)
		pf.HasParent = true
		pf.ParentID = 0
		pf.ParentRank = 0
		pf.OrthantOnParent = geom.Orthant(o)
		fine.AddPatch(pf)
	}
	pc.ChildIDs = []int{1, 2, 3, 4}
	pc.ChildRanks = []int{0, 0, 0, 0}

	coarse.Finalize()
	fine.Finalize()
	return coarse, fine
}

func Test_gmg01_restrict_constant_field_preserves_value(tst *testing.T) {

	chk.PrintTitle("gmg01. restricting a constant fine field reproduces it on the coarse patch")

	n := 4
	coarse, fine := oneCoarseFourFine(n)
	ic := New(coarse, fine, n, 1)
	if len(ic.LocalPairs) != 4 || len(ic.GhostPairs) != 0 {
		tst.Fatalf("expected 4 local pairs and 0 ghost pairs, got %d/%d", len(ic.LocalPairs), len(ic.GhostPairs))
	}

	fineVec := &vec.ValVectorGenerator{Comm: comm.World(), ND: 2, N: n, G: 0, NumComponents: 1, NumLocalPatches: 4}
	coarseVec := &vec.ValVectorGenerator{Comm: comm.World(), ND: 2, N: n, G: 0, NumComponents: 1, NumLocalPatches: 1}

	u := fineVec.GetNewVector()
	u.Set(3.0)
	f := coarseVec.GetNewVector()

	r := NewRestrictor(ic)
	if err := r.Restrict(u, f); err != nil {
		tst.Fatalf("Restrict: %v", err)
	}

	fld := f.LocalData(0, 0)
	for x := 0; x < n; x++ {
		for y := 0; y < n; y++ {
			chk.Scalar(tst, "constant field restricts to itself", 1e-12, fld.At([]int{x, y}), 3.0)
		}
	}
}

func Test_gmg02_interpolate_constant_correction_uniform(tst *testing.T) {

	chk.PrintTitle("gmg02. interpolating a constant coarse correction adds it uniformly on every child")

	n := 4
	coarse, fine := oneCoarseFourFine(n)
	ic := New(coarse, fine, n, 1)

	fineVec := &vec.ValVectorGenerator{Comm: comm.World(), ND: 2, N: n, G: 0, NumComponents: 1, NumLocalPatches: 4}
	coarseVec := &vec.ValVectorGenerator{Comm: comm.World(), ND: 2, N: n, G: 0, NumComponents: 1, NumLocalPatches: 1}

	u := fineVec.GetNewVector()
	e := coarseVec.GetNewVector()
	e.Set(5.0)

	ip := NewInterpolator(ic)
	if err := ip.Interpolate(e, u); err != nil {
		tst.Fatalf("Interpolate: %v", err)
	}

	for li := 0; li < 4; li++ {
		fld := u.LocalData(li, 0)
		for x := 0; x < n; x++ {
			for y := 0; y < n; y++ {
				chk.Scalar(tst, "constant coarse correction lands uniformly", 1e-12, fld.At([]int{x, y}), 5.0)
			}
		}
	}
}
