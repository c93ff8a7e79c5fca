// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package vec implements Vector, the Hilbert-space element every Krylov
// solver and multigrid level operates on: one ld.LocalData view per local
// patch, with global linear-algebra operations (dot, norms, axpy-family
// updates) that reduce across the owning comm.Communicator.
package vec

import (
	"math"

	"github.com/cpmech/gosl/chk"

	"github.com/patchdd/thunderegg/comm"
	"github.com/patchdd/thunderegg/ld"
)

// Vector is the common interface ValVector and PetscVector both satisfy.
// Krylov solvers and multigrid levels only ever see this interface, plus a
// Generator to make more of them.
type Vector interface {
	NumLocalPatches() int
	NumComponents() int
	LocalData(patchLocalIndex, component int) ld.LocalData
	Comm() *comm.Communicator

	Set(alpha float64)
	Scale(alpha float64)
	Shift(delta float64)
	Copy(b Vector)
	Add(b Vector)
	AddScaled(alpha float64, a Vector)
	AddScaled2(alpha float64, a Vector, beta float64, b Vector)
	ScaleThenAdd(alpha float64, b Vector)
	ScaleThenAddScaled(alpha, beta float64, b Vector)

	Dot(b Vector) float64
	TwoNorm() float64
	InfNorm() float64
}

// Generator is the only blessed factory for workspace vectors: solvers call
// GetNewVector to allocate scratch without knowing the concrete layout
// (ValVector vs PetscVector).
type Generator interface {
	GetNewVector() Vector
}

// forEachCell invokes fn on every owned (non-ghost) coordinate of ldv,
// from Start to End on each axis.
func forEachCell(nd int, ldv ld.LocalData, fn func(coord []int)) {
	start, end := ldv.Start(), ldv.End()
	coord := make([]int, nd)
	copy(coord, start)
	nestedLoop(nd, nd-1, coord, start, end, fn)
}

// nestedLoop walks coord[dir] from start[dir] to end[dir], recursing on
// lower axes, exactly mirroring ThunderEgg's NestedLoop<D,Dir,T> template
// (_examples/original_source/src/Thunderegg/Vector.h) as ordinary Go
// recursion over a runtime dimension count.
func nestedLoop(nd, dir int, coord, start, end []int, fn func(coord []int)) {
	if dir == 0 {
		for coord[0] = start[0]; coord[0] <= end[0]; coord[0]++ {
			fn(coord)
		}
		return
	}
	for coord[dir] = start[dir]; coord[dir] <= end[dir]; coord[dir]++ {
		nestedLoop(nd, dir-1, coord, start, end, fn)
	}
}

// checkSameShape panics on programmer misuse if b does not have the same
// patch/component layout as a.
func checkSameShape(a, b Vector) {
	if a.NumLocalPatches() != b.NumLocalPatches() || a.NumComponents() != b.NumComponents() {
		chk.Panic("vec: vectors have mismatched shape: (%d patches, %d comps) vs (%d patches, %d comps)",
			a.NumLocalPatches(), a.NumComponents(), b.NumLocalPatches(), b.NumComponents())
	}
}

// genericDot computes a's dot with b, reducing with one Allreduce, shared by
// every Vector implementation via embedding (see valvector.go).
func genericDot(a, b Vector) float64 {
	checkSameShape(a, b)
	var local float64
	nd := 0
	for p := 0; p < a.NumLocalPatches(); p++ {
		for c := 0; c < a.NumComponents(); c++ {
			lda := a.LocalData(p, c)
			ldb := b.LocalData(p, c)
			nd = lda.NumDims()
			forEachCell(nd, lda, func(coord []int) {
				local += lda.At(coord) * ldb.At(coord)
			})
		}
	}
	return a.Comm().AllreduceSum(local)
}

func genericTwoNorm(a Vector) float64 {
	return math.Sqrt(genericDot(a, a))
}

func genericInfNorm(a Vector) float64 {
	var local float64
	for p := 0; p < a.NumLocalPatches(); p++ {
		for c := 0; c < a.NumComponents(); c++ {
			lda := a.LocalData(p, c)
			forEachCell(lda.NumDims(), lda, func(coord []int) {
				if v := math.Abs(lda.At(coord)); v > local {
					local = v
				}
			})
		}
	}
	return a.Comm().AllreduceMax(local)
}

// genericSet, genericScale, ... implement the axpy-family ops in terms of
// LocalData access, using gosl/la's VecFill/VecAdd style free-function
// idiom (teacher's own la package) applied per-patch.
func genericSet(a Vector, alpha float64) {
	walk1(a, func(lda ld.LocalData, coord []int) { lda.Set(coord, alpha) })
}

func genericScale(a Vector, alpha float64) {
	walk1(a, func(lda ld.LocalData, coord []int) { lda.Set(coord, lda.At(coord)*alpha) })
}

func genericShift(a Vector, delta float64) {
	walk1(a, func(lda ld.LocalData, coord []int) { lda.Set(coord, lda.At(coord)+delta) })
}

func genericCopy(a, b Vector) {
	checkSameShape(a, b)
	walk2(a, b, func(lda, ldb ld.LocalData, coord []int) { lda.Set(coord, ldb.At(coord)) })
}

func genericAdd(a, b Vector) {
	checkSameShape(a, b)
	walk2(a, b, func(lda, ldb ld.LocalData, coord []int) { lda.Add(coord, ldb.At(coord)) })
}

func genericAddScaled(a Vector, alpha float64, b Vector) {
	checkSameShape(a, b)
	walk2(a, b, func(lda, ldb ld.LocalData, coord []int) { lda.Add(coord, alpha*ldb.At(coord)) })
}

func genericAddScaled2(a Vector, alpha float64, x Vector, beta float64, y Vector) {
	checkSameShape(a, x)
	checkSameShape(a, y)
	walk3(a, x, y, func(lda, ldx, ldy ld.LocalData, coord []int) {
		lda.Add(coord, alpha*ldx.At(coord)+beta*ldy.At(coord))
	})
}

func genericScaleThenAdd(a Vector, alpha float64, b Vector) {
	checkSameShape(a, b)
	walk2(a, b, func(lda, ldb ld.LocalData, coord []int) {
		lda.Set(coord, alpha*lda.At(coord)+ldb.At(coord))
	})
}

func genericScaleThenAddScaled(a Vector, alpha, beta float64, b Vector) {
	checkSameShape(a, b)
	walk2(a, b, func(lda, ldb ld.LocalData, coord []int) {
		lda.Set(coord, alpha*lda.At(coord)+beta*ldb.At(coord))
	})
}

func walk1(a Vector, fn func(lda ld.LocalData, coord []int)) {
	for p := 0; p < a.NumLocalPatches(); p++ {
		for c := 0; c < a.NumComponents(); c++ {
			lda := a.LocalData(p, c)
			forEachCell(lda.NumDims(), lda, func(coord []int) { fn(lda, coord) })
		}
	}
}

func walk2(a, b Vector, fn func(lda, ldb ld.LocalData, coord []int)) {
	for p := 0; p < a.NumLocalPatches(); p++ {
		for c := 0; c < a.NumComponents(); c++ {
			lda := a.LocalData(p, c)
			ldb := b.LocalData(p, c)
			forEachCell(lda.NumDims(), lda, func(coord []int) { fn(lda, ldb, coord) })
		}
	}
}

func walk3(a, x, y Vector, fn func(lda, ldx, ldy ld.LocalData, coord []int)) {
	for p := 0; p < a.NumLocalPatches(); p++ {
		for c := 0; c < a.NumComponents(); c++ {
			lda := a.LocalData(p, c)
			ldx := x.LocalData(p, c)
			ldy := y.LocalData(p, c)
			forEachCell(lda.NumDims(), lda, func(coord []int) { fn(lda, ldx, ldy, coord) })
		}
	}
}
