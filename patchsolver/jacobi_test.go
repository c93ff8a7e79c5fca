// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package patchsolver

import (
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/patchdd/thunderegg/comm"
	"github.com/patchdd/thunderegg/domain"
	"github.com/patchdd/thunderegg/geom"
	"github.com/patchdd/thunderegg/ld"
	"github.com/patchdd/thunderegg/operator"
)

func zeroGamma(nd, n int) operator.BoundaryLookup {
	lens := make([]int, nd-1)
	strides := make([]int, nd-1)
	stride := 1
	for i := 0; i < nd-1; i++ {
		lens[i] = n
		strides[i] = stride
		stride *= n
	}
	face := ld.New(make([]float64, stride), strides, lens, 0)
	return func(s geom.Side) ld.LocalData { return face }
}

func Test_patchsolver01_dirichlet_zero_rhs_gives_zero_solution(tst *testing.T) {

	chk.PrintTitle("patchsolver01. all-Dirichlet-zero patch with f=0 solves to u=0")

	c := comm.World()
	d := domain.NewDomain(c, 2)
	n := 4
	pi := domain.NewPatchInfo(0, 0, 2, n, 0, []float64{0.25, 0.25}, []float64{0, 0})
	d.AddPatch(pi)
	d.Finalize()

	op := operator.New(d)
	solver := New(op)
	f := ld.New(make([]float64, n*n), []int{1, n}, []int{n, n}, 0)

	u, err := solver.Solve(pi, f, zeroGamma(2, n))
	if err != nil {
		tst.Fatalf("Solve: %v", err)
	}
	for x := 0; x < n; x++ {
		for y := 0; y < n; y++ {
			chk.Scalar(tst, "zero RHS solves to zero", 1e-8, u.At([]int{x, y}), 0.0)
		}
	}
}

func Test_patchsolver02_pure_neumann_is_singular(tst *testing.T) {

	chk.PrintTitle("patchsolver02. pure-Neumann patch reports SingularPatchError")

	c := comm.World()
	d := domain.NewDomain(c, 2)
	n := 4
	pi := domain.NewPatchInfo(0, 0, 2, n, 0, []float64{0.25, 0.25}, []float64{0, 0})
	for _, s := range geom.Sides(2) {
		pi.SetNeumann(s, true)
	}
	d.AddPatch(pi)
	d.Finalize()

	op := operator.New(d)
	solver := New(op)
	f := ld.New(make([]float64, n*n), []int{1, n}, []int{n, n}, 0)

	_, err := solver.Solve(pi, f, zeroGamma(2, n))
	if err == nil {
		tst.Fatalf("expected a SingularPatchError")
	}
}
