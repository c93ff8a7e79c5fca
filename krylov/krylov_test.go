// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package krylov

import (
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/patchdd/thunderegg/comm"
	"github.com/patchdd/thunderegg/domain"
	"github.com/patchdd/thunderegg/geom"
	"github.com/patchdd/thunderegg/ghost"
	"github.com/patchdd/thunderegg/gmg"
	"github.com/patchdd/thunderegg/operator"
	"github.com/patchdd/thunderegg/patchsolver"
	"github.com/patchdd/thunderegg/schur"
	"github.com/patchdd/thunderegg/vec"
)

func Test_krylov01_cg_default_limits(tst *testing.T) {

	chk.PrintTitle("krylov01. CG defaults to 1000 iterations and a 1e-12 tolerance")

	cg := &CG{}
	chk.IntAssert(cg.maxIters(), 1000)
	chk.Scalar(tst, "tol", 1e-15, cg.tol(), 1e-12)
}

func Test_krylov02_bicgstab_default_limits(tst *testing.T) {

	chk.PrintTitle("krylov02. BiCGStab defaults to 1000 iterations and a 1e-12 tolerance")

	s := &BiCGStab{}
	chk.IntAssert(s.maxIters(), 1000)
	chk.Scalar(tst, "tol", 1e-15, s.tol(), 1e-12)
}

// twoNormalPatches mirrors schur's own fixture: two same-rank patches
// sharing a single Normal interface, small enough to solve by inspection.
func twoNormalPatches(n int) *domain.Domain {
	c := comm.World()
	d := domain.NewDomain(c, 2)
	p0 := domain.NewPatchInfo(0, 0, 2, n, 0, []float64{0.25, 0.25}, []float64{0, 0})
	p1 := domain.NewPatchInfo(1, 0, 2, n, 0, []float64{0.25, 0.25}, []float64{1, 0})
	p0.SetNbr(geom.Side(1), domain.NewNormalNbr(1, 0))
	p1.SetNbr(geom.Side(0), domain.NewNormalNbr(0, 0))
	d.AddPatch(p0)
	d.AddPatch(p1)
	d.Finalize()
	return d
}

// Test_krylov03_cg_solves_schur_complement runs CG directly against the
// Schur complement of a two-patch domain. S is symmetric positive-definite
// for a Poisson problem, so starting from a right-hand side built by
// applying S to a known gamma, CG should recover a gamma' with S(gamma')
// matching that right-hand side to the solve tolerance.
func Test_krylov03_cg_solves_schur_complement(tst *testing.T) {

	chk.PrintTitle("krylov03. CG recovers a Schur right-hand side it was built from")

	n := 4
	d := twoNormalPatches(n)
	id := schur.NewInterfaceDomain(d)

	op := operator.New(d)
	solver := patchsolver.New(op)
	helper := schur.NewSchurHelper(id, solver, d.Comm)

	gen := &schur.Generator{Comm: d.Comm, Iface: id}
	gammaTrue := gen.GetNewVector()
	gammaTrue.Set(1.0)
	b := gen.GetNewVector()
	if err := helper.Apply(gammaTrue, b); err != nil {
		tst.Fatalf("building rhs: %v", err)
	}

	x := gen.GetNewVector()
	x.Set(0)

	cg := &CG{Options{MaxIters: 200, Tol: 1e-10}}
	if _, err := cg.Solve(gen, helper, x, b); err != nil {
		tst.Fatalf("CG.Solve: %v", err)
	}

	check := gen.GetNewVector()
	if err := helper.Apply(x, check); err != nil {
		tst.Fatalf("verifying solution: %v", err)
	}
	for oi := range id.Owned {
		got, want := check.LocalData(oi, 0), b.LocalData(oi, 0)
		rangeOverCells(got.Lengths(), func(c []int) {
			chk.Scalar(tst, "S(x)=b", 1e-6, got.At(c), want.At(c))
		})
	}
}

// Test_krylov04_gmres_solves_schur_complement mirrors krylov03 but drives
// the same system through restarted GMRES instead of CG, exercising the
// Arnoldi/Givens machinery against a real (if tiny) Schur complement.
func Test_krylov04_gmres_solves_schur_complement(tst *testing.T) {

	chk.PrintTitle("krylov04. GMRES recovers a Schur right-hand side it was built from")

	n := 4
	d := twoNormalPatches(n)
	id := schur.NewInterfaceDomain(d)

	op := operator.New(d)
	solver := patchsolver.New(op)
	helper := schur.NewSchurHelper(id, solver, d.Comm)

	gen := &schur.Generator{Comm: d.Comm, Iface: id}
	gammaTrue := gen.GetNewVector()
	gammaTrue.Set(1.0)
	b := gen.GetNewVector()
	if err := helper.Apply(gammaTrue, b); err != nil {
		tst.Fatalf("building rhs: %v", err)
	}

	x := gen.GetNewVector()
	x.Set(0)

	gmres := &GMRES{Options: Options{MaxIters: 200, Tol: 1e-10}, Restart: 10}
	if _, err := gmres.Solve(gen, helper, x, b); err != nil {
		tst.Fatalf("GMRES.Solve: %v", err)
	}

	check := gen.GetNewVector()
	if err := helper.Apply(x, check); err != nil {
		tst.Fatalf("verifying solution: %v", err)
	}
	for oi := range id.Owned {
		got, want := check.LocalData(oi, 0), b.LocalData(oi, 0)
		rangeOverCells(got.Lengths(), func(c []int) {
			chk.Scalar(tst, "S(x)=b", 1e-6, got.At(c), want.At(c))
		})
	}
}

// Test_krylov05_bicgstab_solves_schur_complement mirrors krylov03 but
// drives the same system through BiCGStab.
func Test_krylov05_bicgstab_solves_schur_complement(tst *testing.T) {

	chk.PrintTitle("krylov05. BiCGStab recovers a Schur right-hand side it was built from")

	n := 4
	d := twoNormalPatches(n)
	id := schur.NewInterfaceDomain(d)

	op := operator.New(d)
	solver := patchsolver.New(op)
	helper := schur.NewSchurHelper(id, solver, d.Comm)

	gen := &schur.Generator{Comm: d.Comm, Iface: id}
	gammaTrue := gen.GetNewVector()
	gammaTrue.Set(1.0)
	b := gen.GetNewVector()
	if err := helper.Apply(gammaTrue, b); err != nil {
		tst.Fatalf("building rhs: %v", err)
	}

	x := gen.GetNewVector()
	x.Set(0)

	bicg := &BiCGStab{Options{MaxIters: 200, Tol: 1e-10}}
	if _, err := bicg.Solve(gen, helper, x, b); err != nil {
		tst.Fatalf("BiCGStab.Solve: %v", err)
	}

	check := gen.GetNewVector()
	if err := helper.Apply(x, check); err != nil {
		tst.Fatalf("verifying solution: %v", err)
	}
	for oi := range id.Owned {
		got, want := check.LocalData(oi, 0), b.LocalData(oi, 0)
		rangeOverCells(got.Lengths(), func(c []int) {
			chk.Scalar(tst, "S(x)=b", 1e-6, got.At(c), want.At(c))
		})
	}
}

// Test_krylov06_cg_zero_rhs_is_immediate covers the zero-right-hand-side
// early exit: CG must return 0 iterations and leave x untouched rather than
// dividing by a zero norm.
func Test_krylov06_cg_zero_rhs_is_immediate(tst *testing.T) {

	chk.PrintTitle("krylov06. CG exits immediately on a zero right-hand side")

	n := 4
	d := twoNormalPatches(n)
	id := schur.NewInterfaceDomain(d)
	op := operator.New(d)
	solver := patchsolver.New(op)
	helper := schur.NewSchurHelper(id, solver, d.Comm)

	gen := &schur.Generator{Comm: d.Comm, Iface: id}
	x := gen.GetNewVector()
	b := gen.GetNewVector()
	x.Set(0.375)
	b.Set(0)

	cg := &CG{}
	iters, err := cg.Solve(gen, helper, x, b)
	if err != nil {
		tst.Fatalf("CG.Solve: %v", err)
	}
	chk.IntAssert(iters, 0)

	for oi := range id.Owned {
		lda := x.LocalData(oi, 0)
		rangeOverCells(lda.Lengths(), func(c []int) {
			chk.Scalar(tst, "x unchanged", 1e-15, lda.At(c), 0.375)
		})
	}
}

// filledOp adapts a ghost-filled volume operator into Operator, same
// obligation cmd/thunderegg's own adapter meets: fill ghosts before every
// apply.
type filledOp struct {
	g  *ghost.Filler
	op *operator.StarPatchOperator
}

func (o filledOp) Apply(u, f vec.Vector) error {
	if err := o.g.FillGhost(u); err != nil {
		return err
	}
	o.op.Apply(u, f)
	return nil
}

// smootherAdapter exposes a gmg.JacobiSmoother as a krylov.Operator, the
// shape CG.Precond expects (Apply(z, r) computing z ≈ M⁻¹r in place).
type smootherAdapter struct{ s *gmg.JacobiSmoother }

func (a smootherAdapter) Apply(u, f vec.Vector) error { return a.s.Smooth(u, f) }

// Test_krylov07_cg_preconditioned_by_jacobi_smoother checks that
// Jacobi-smoother-preconditioned CG finds an x with A(x) = b, for a direct
// (non-Schur) ghost-filled volume operator.
func Test_krylov07_cg_preconditioned_by_jacobi_smoother(tst *testing.T) {

	chk.PrintTitle("krylov07. Jacobi-preconditioned CG recovers a volume-operator right-hand side")

	n := 8
	d := twoNormalPatches(n)
	op := operator.New(d)
	filler := ghost.New(d, 1)
	a := filledOp{g: filler, op: op}

	gen := &vec.ValVectorGenerator{Comm: d.Comm, ND: 2, N: n, G: 1, NumComponents: 1, NumLocalPatches: d.NumLocalPatches()}

	uTrue := gen.GetNewVector()
	uTrue.Set(1.0)
	b := gen.GetNewVector()
	if err := a.Apply(uTrue, b); err != nil {
		tst.Fatalf("building rhs: %v", err)
	}

	x := gen.GetNewVector()
	x.Set(0)

	smoother := gmg.NewJacobiSmoother(d, op, filler)
	cg := &CG{Options{MaxIters: 500, Tol: 1e-10, Precond: smootherAdapter{smoother}}}
	if _, err := cg.Solve(gen, a, x, b); err != nil {
		tst.Fatalf("CG.Solve: %v", err)
	}

	check := gen.GetNewVector()
	if err := a.Apply(x, check); err != nil {
		tst.Fatalf("verifying solution: %v", err)
	}
	for li := 0; li < d.NumLocalPatches(); li++ {
		got, want := check.LocalData(li, 0), b.LocalData(li, 0)
		rangeOverCells(got.Lengths(), func(c []int) {
			chk.Scalar(tst, "A(x)=b", 1e-6, got.At(c), want.At(c))
		})
	}
}

func rangeOverCells(lens []int, fn func(c []int)) {
	coord := make([]int, len(lens))
	var rec func(axis int)
	rec = func(axis int) {
		if axis < 0 {
			cp := make([]int, len(coord))
			copy(cp, coord)
			fn(cp)
			return
		}
		for coord[axis] = 0; coord[axis] < lens[axis]; coord[axis]++ {
			rec(axis - 1)
		}
	}
	rec(len(lens) - 1)
}
