// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command thunderegg reads a JSON mesh description, assembles the
// star-stencil Poisson operator over it, and solves it with a Krylov
// method, optionally through the Schur-complement interface system.
package main

import (
	"flag"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/mpi"

	"github.com/patchdd/thunderegg/ana"
	"github.com/patchdd/thunderegg/comm"
	"github.com/patchdd/thunderegg/diag"
	"github.com/patchdd/thunderegg/domain"
	"github.com/patchdd/thunderegg/domreader"
	"github.com/patchdd/thunderegg/ghost"
	"github.com/patchdd/thunderegg/krylov"
	"github.com/patchdd/thunderegg/operator"
	"github.com/patchdd/thunderegg/patchsolver"
	"github.com/patchdd/thunderegg/schur"
	"github.com/patchdd/thunderegg/vec"
)

func main() {

	defer func() {
		if err := recover(); err != nil {
			if mpi.Rank() == 0 {
				chk.Verbose = true
				for i := 8; i > 3; i-- {
					chk.CallerInfo(i)
				}
				io.PfRed("ERROR: %v\n", err)
			}
		}
		mpi.Stop(false)
	}()
	mpi.Start(false)

	if mpi.Rank() == 0 {
		io.PfWhite("\nthunderegg -- elliptic solver on block-structured Cartesian meshes\n\n")
	}

	meshPath := flag.String("mesh", "", "path to a JSON mesh description")
	ghostWidth := flag.Int("ghost", 1, "ghost cell depth")
	schurMode := flag.Bool("schur", false, "solve through the Schur-complement interface system instead of the volume operator directly")
	solver := flag.String("solver", "cg", "cg, bicgstab, or gmres")
	maxIters := flag.Int("maxiters", 200, "Krylov iteration cap")
	tol := flag.Float64("tol", 1e-10, "Krylov relative tolerance")
	verbose := flag.Bool("v", false, "print per-iteration residuals")
	plotPath := flag.String("plot", "", "if set, write a convergence plot (iteration vs log10 residual) here")
	flag.Parse()

	if *meshPath == "" {
		chk.Panic("thunderegg: -mesh is required")
	}

	c := comm.World()
	d, err := domreader.New(*meshPath, c).ReadDomain()
	if err != nil {
		chk.Panic("reading mesh: %v", err)
	}

	g := ghost.New(d, *ghostWidth)
	op := operator.New(d)

	var sol ana.Poisson2D
	sol.Init(nil)

	var history diag.ResidualHistory
	opts := krylov.Options{MaxIters: *maxIters, Tol: *tol, Verbose: *verbose, OnIter: history.Record}

	var iters int
	var solveErr error
	if *schurMode {
		iface := schur.NewInterfaceDomain(d)
		helper := schur.NewSchurHelper(iface, patchsolver.New(op), c)
		gen := &schur.Generator{Comm: c, Iface: iface}

		// build a consistent right-hand side by applying the Schur
		// operator to the manufactured solution's interface trace,
		// the same construction krylov_test.go exercises against a
		// known gamma.
		gammaTrue := gen.GetNewVector()
		seedInterfaceGamma(d, iface, &sol, gammaTrue)
		rhs := gen.GetNewVector()
		if err := helper.Apply(gammaTrue, rhs); err != nil {
			chk.Panic("building Schur right-hand side: %v", err)
		}

		gamma := gen.GetNewVector()
		iters, solveErr = runSolver(*solver, opts, gen, helper, gamma, rhs, &history)
	} else {
		gen := &vec.ValVectorGenerator{Comm: c, ND: d.ND, N: d.Patches[0].N, G: *ghostWidth, NumComponents: 1, NumLocalPatches: d.NumLocalPatches()}
		u := gen.GetNewVector()
		f := gen.GetNewVector()
		seedVolumeRHS(d, &sol, f)
		op.AddDirichletBCToRHS(f, sol.U)

		filled := ghostFilledOperator{g: g, op: op}
		iters, solveErr = runSolver(*solver, opts, gen, filled, u, f, &history)
	}

	if solveErr != nil {
		chk.Panic("solve: %v", solveErr)
	}
	if mpi.Rank() == 0 {
		io.Pf("converged in %d iterations\n", iters)
	}
	if *plotPath != "" {
		diag.ConvergencePlot(&history, "", *plotPath)
	}
}

// ghostFilledOperator adapts operator.StarPatchOperator into a
// krylov.Operator by filling u's ghost cells before every apply, the
// obligation operator.Operator's doc comment places on its caller.
type ghostFilledOperator struct {
	g  *ghost.Filler
	op *operator.StarPatchOperator
}

func (o ghostFilledOperator) Apply(u, f vec.Vector) error {
	if err := o.g.FillGhost(u); err != nil {
		return err
	}
	o.op.Apply(u, f)
	return nil
}

// runSolver dispatches to the requested Krylov method. It does not use
// history itself: residuals reach history only through opts.OnIter, which
// every solver calls on each iteration whether or not opts.Verbose is set.
func runSolver(name string, opts krylov.Options, gen vec.Generator, a krylov.Operator, x, b vec.Vector, history *diag.ResidualHistory) (int, error) {
	switch name {
	case "bicgstab":
		return (&krylov.BiCGStab{Options: opts}).Solve(gen, a, x, b)
	case "gmres":
		return (&krylov.GMRES{Options: opts, Restart: 30}).Solve(gen, a, x, b)
	default:
		return (&krylov.CG{Options: opts}).Solve(gen, a, x, b)
	}
}

// seedVolumeRHS fills f's interior cells with the manufactured forcing
// term at each cell center, leaving boundary adjustment to
// AddDirichletBCToRHS.
func seedVolumeRHS(d *domain.Domain, sol *ana.Poisson2D, f vec.Vector) {
	for li := 0; li < d.NumLocalPatches(); li++ {
		pi := d.PatchByLocalIndex(li)
		fld := f.LocalData(li, 0)
		walkCoords(fld.Start(), fld.End(), func(coord []int) {
			real := cellCenter(pi, coord)
			fld.Set(coord, sol.F(real))
		})
	}
}

// seedInterfaceGamma fills gamma with the manufactured solution's value at
// every owned interface cell's center, using the owning binding's patch
// and side to map a face coordinate to real space.
func seedInterfaceGamma(d *domain.Domain, iface *schur.InterfaceDomain, sol *ana.Poisson2D, gamma vec.Vector) {
	for oi := range iface.Owned {
		fb := iface.Bindings[iface.OwnerBinding[oi]]
		pi := d.PatchByLocalIndex(fb.LocalPatchIdx)
		lda := gamma.LocalData(oi, 0)
		walkCoords(lda.Start(), lda.End(), func(coord []int) {
			real := pi.RealCoordBound(coord, fb.Side)
			lda.Set(coord, sol.U(real))
		})
	}
}

// cellCenter returns the real-space coordinate of interior cell coord on
// pi, the coordinate convention operator.StarPatchOperator's stencils
// assume: cell i spans [origin+i*h, origin+(i+1)*h].
func cellCenter(pi *domain.PatchInfo, coord []int) []float64 {
	real := make([]float64, pi.ND)
	for a := 0; a < pi.ND; a++ {
		real[a] = pi.Origin[a] + pi.Spacings[a]*(float64(coord[a])+0.5)
	}
	return real
}

// walkCoords recursively visits every integer coordinate in [start,end]
// (inclusive), innermost axis fastest.
func walkCoords(start, end []int, fn func(coord []int)) {
	coord := make([]int, len(start))
	copy(coord, start)
	var rec func(axis int)
	rec = func(axis int) {
		if axis < 0 {
			fn(coord)
			return
		}
		for coord[axis] = start[axis]; coord[axis] <= end[axis]; coord[axis]++ {
			rec(axis - 1)
		}
	}
	rec(len(start) - 1)
}
