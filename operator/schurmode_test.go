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
	"github.com/patchdd/thunderegg/ld"
	"github.com/patchdd/thunderegg/vec"
)

// constantLookup returns a BoundaryLookup that always hands back the same
// constant-valued (ND-1)-dimensional face, regardless of which side is
// requested.
func constantLookup(nd int, n int, val float64) BoundaryLookup {
	lens := make([]int, nd-1)
	strides := make([]int, nd-1)
	stride := 1
	for i := 0; i < nd-1; i++ {
		lens[i] = n
		strides[i] = stride
		stride *= n
	}
	data := make([]float64, stride)
	for i := range data {
		data[i] = val
	}
	face := ld.New(data, strides, lens, 0)
	return func(s geom.Side) ld.LocalData { return face }
}

func Test_schurmode01_interface_mirror_matches_zero_gamma_dirichlet(tst *testing.T) {

	chk.PrintTitle("schurmode01. gamma=0 on every interface side reduces to the Dirichlet-zero mirror")

	c := comm.World()
	d := domain.NewDomain(c, 2)
	n := 4
	pi := domain.NewPatchInfo(0, 0, 2, n, 0, []float64{0.25, 0.25}, []float64{0, 0})
	pi.SetNbr(geom.Side(1), domain.NewNormalNbr(1, 0))
	d.AddPatch(pi)
	d.Finalize()

	gen := &vec.ValVectorGenerator{Comm: c, ND: 2, N: n, G: 1, NumComponents: 1, NumLocalPatches: 1}
	u := gen.GetNewVector()
	for x := 0; x < n; x++ {
		for y := 0; y < n; y++ {
			u.LocalData(0, 0).Set([]int{x, y}, float64(x+1))
		}
	}

	fSchur := gen.GetNewVector()
	op := New(d)
	gamma := constantLookup(2, n, 0.0)
	for comp := 0; comp < u.NumComponents(); comp++ {
		op.ApplyWithInterface(pi, u.LocalData(0, comp), gamma, fSchur.LocalData(0, comp))
	}

	fPhysical := gen.GetNewVector()
	pi2 := domain.NewPatchInfo(0, 0, 2, n, 0, []float64{0.25, 0.25}, []float64{0, 0})
	d2 := domain.NewDomain(c, 2)
	d2.AddPatch(pi2)
	d2.Finalize()
	op2 := New(d2)
	op2.Apply(u, fPhysical)

	for x := 0; x < n; x++ {
		for y := 0; y < n; y++ {
			chk.Scalar(tst, "gamma=0 matches physical Dirichlet-zero", 1e-12,
				fSchur.LocalData(0, 0).At([]int{x, y}), fPhysical.LocalData(0, 0).At([]int{x, y}))
		}
	}
}

func Test_schurmode02_add_interface_to_rhs_only_touches_nbr_sides(tst *testing.T) {

	chk.PrintTitle("schurmode02. AddInterfaceToRHS only adjusts cells on sides with a neighbor")

	c := comm.World()
	d := domain.NewDomain(c, 2)
	n := 4
	pi := domain.NewPatchInfo(0, 0, 2, n, 0, []float64{0.5, 0.5}, []float64{0, 0})
	pi.SetNbr(geom.Side(1), domain.NewNormalNbr(1, 0)) // east only
	d.AddPatch(pi)
	d.Finalize()

	gen := &vec.ValVectorGenerator{Comm: c, ND: 2, N: n, G: 1, NumComponents: 1, NumLocalPatches: 1}
	f := gen.GetNewVector()
	f.Set(10.0)

	op := New(d)
	gamma := constantLookup(2, n, 2.0)
	op.AddInterfaceToRHS(pi, gamma, f.LocalData(0, 0))

	fld := f.LocalData(0, 0)
	h2 := 0.25
	for y := 0; y < n; y++ {
		chk.Scalar(tst, "east face adjusted", 1e-12, fld.At([]int{n - 1, y}), 10.0-2.0/h2*2.0)
	}
	chk.Scalar(tst, "west face untouched (no neighbor)", 1e-12, fld.At([]int{0, 0}), 10.0)
}
