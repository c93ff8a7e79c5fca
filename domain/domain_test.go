// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package domain

import (
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/patchdd/thunderegg/comm"
	"github.com/patchdd/thunderegg/geom"
)

func twoPatchDomain() *Domain {
	c := comm.World()
	d := NewDomain(c, 2)
	a := NewPatchInfo(0, 0, 2, 4, 0, []float64{0.25, 0.25}, []float64{0, 0})
	b := NewPatchInfo(1, 0, 2, 4, 0, []float64{0.25, 0.25}, []float64{1, 0})
	a.SetNbr(geom.Side(1), NewNormalNbr(1, 0)) // east
	b.SetNbr(geom.Side(0), NewNormalNbr(0, 0)) // west
	d.AddPatch(a)
	d.AddPatch(b)
	d.Finalize()
	return d
}

func Test_domain01(tst *testing.T) {

	chk.PrintTitle("domain01. dense local index map is stable after Finalize")

	d := twoPatchDomain()
	chk.IntAssert(d.NumLocalPatches(), 2)

	idx, ok := d.LocalIndex(1)
	if !ok || idx != 1 {
		tst.Fatalf("expected patch 1 at local index 1, got idx=%d ok=%v", idx, ok)
	}

	if _, ok := d.LocalIndex(99); ok {
		tst.Fatalf("expected patch 99 to be absent")
	}
}

func Test_domain02(tst *testing.T) {

	chk.PrintTitle("domain02. neighbor symmetry between two normal-level patches")

	d := twoPatchDomain()
	a := d.PatchByID(0)
	b := d.PatchByID(1)

	if !a.HasNbr(geom.Side(1)) || a.NbrType(geom.Side(1)) != NbrNormal {
		tst.Fatalf("patch 0 east side should be a normal neighbor")
	}
	if a.GetNormalNbrInfo(geom.Side(1)).ID != 1 {
		tst.Fatalf("patch 0 east neighbor should be patch 1")
	}
	if b.GetNormalNbrInfo(geom.Side(0)).ID != 0 {
		tst.Fatalf("patch 1 west neighbor should be patch 0")
	}
}

func Test_domain03(tst *testing.T) {

	chk.PrintTitle("domain03. untouched boundary sides default to non-Neumann")

	d := twoPatchDomain()
	a := d.PatchByID(0)

	if a.HasNbr(geom.Side(2)) {
		tst.Fatalf("patch 0 south side should have no neighbor")
	}
	if a.IsNeumann(geom.Side(2)) {
		tst.Fatalf("untouched boundary should default to Dirichlet, not Neumann")
	}
}

func Test_domain_mutation_after_finalize_panics(tst *testing.T) {

	chk.PrintTitle("domain_mutation_after_finalize_panics. SetNbr after Finalize panics")

	defer func() {
		if r := recover(); r == nil {
			tst.Fatalf("expected panic mutating a finalized patch")
		}
	}()

	d := twoPatchDomain()
	a := d.PatchByID(0)
	a.SetNbr(geom.Side(3), NewNormalNbr(7, 0))
}
