// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package schur

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"

	"github.com/patchdd/thunderegg/vec"
)

// AssembleMatrix explicitly forms the Schur complement S as a sparse
// matrix, by probing helper.Apply one unit interface vector at a time and
// recording every nonzero entry it produces. S is block-structured (one
// diagonal block per interface, off-diagonal blocks only between
// interfaces that share a patch -- spec.md 4.6), so each probe column
// comes back with nonzeros only at rows belonging to the probed
// interface's own block and its patch-sharing neighbors; the rest are
// exact zeros and never reach the triplet.
//
// This is the matrix-free probing approach, not ThunderEgg's
// FFTWPatchSolver-specific fast assembly (which exploits the solver's
// separability directly rather than probing); that algorithm's body isn't
// available to port, only its signature. Formation is optional and
// intended for small interface systems -- a direct solve or a debugging
// comparison against the matrix-free path, never required by the
// iterative solvers in this package.
//
// AssembleMatrix only supports a single-rank gen.Comm: every Owned
// interface must be locally resolvable without a cross-rank exchange of
// rows that belong to another rank's block.
func AssembleMatrix(gen *Generator, helper *SchurHelper) (*la.CCMatrix, error) {
	if gen.Comm.Size() != 1 {
		chk.Panic("schur.AssembleMatrix: only single-rank assembly is supported; got size %d", gen.Comm.Size())
	}

	n := 0
	offset := make([]int, len(gen.Iface.Owned))
	for i, o := range gen.Iface.Owned {
		offset[i] = n
		n += cellCount(o.N, gen.Iface.NDm1)
	}

	trip := new(la.Triplet)
	trip.Init(n, n, n*n)

	e := gen.GetNewVector().(*IfaceVector)
	col := gen.GetNewVector().(*IfaceVector)
	for j := 0; j < n; j++ {
		e.Set(0)
		setFlat(e, offset, j, 1)

		if err := helper.Apply(e, col); err != nil {
			return nil, err
		}

		for i := 0; i < n; i++ {
			if v := flatAt(col, offset, i); v != 0 {
				trip.Put(i, j, v)
			}
		}
	}
	return trip.ToMatrix(nil), nil
}

// MatVec computes y = A*x for an assembled Schur matrix, flattening x into
// gosl/la's contiguous-slice convention, multiplying with
// la.SpMatVecMulAdd, and scattering the result back into y. Used to check
// an AssembleMatrix result against the matrix-free SchurHelper.Apply it
// was probed from.
func MatVec(gen *Generator, a *la.CCMatrix, x, y vec.Vector) {
	n := 0
	offset := make([]int, len(gen.Iface.Owned))
	for i, o := range gen.Iface.Owned {
		offset[i] = n
		n += cellCount(o.N, gen.Iface.NDm1)
	}

	flat := make([]float64, n)
	for i := 0; i < n; i++ {
		flat[i] = flatAt(x, offset, i)
	}
	out := make([]float64, n)
	la.SpMatVecMulAdd(out, 1, a, flat)

	for i := 0; i < n; i++ {
		setFlat(y, offset, i, out[i])
	}
}

// setFlat and flatAt convert between a dense 0..n-1 index over every
// Owned interface's cells (in Owned order, row-major per interface, the
// same order offset/cellCount enumerate) and the patch-indexed
// ld.LocalData storage IfaceVector actually holds.
func setFlat(v *IfaceVector, offset []int, flat int, val float64) {
	p, c := locate(v, offset, flat)
	lda := v.LocalData(p, 0)
	lda.Set(c, val)
}

func flatAt(v vec.Vector, offset []int, flat int) float64 {
	iv := v.(*IfaceVector)
	p, c := locate(iv, offset, flat)
	lda := iv.LocalData(p, 0)
	return lda.At(c)
}

func locate(v *IfaceVector, offset []int, flat int) (patch int, coord []int) {
	p := len(offset) - 1
	for p > 0 && offset[p] > flat {
		p--
	}
	local := flat - offset[p]
	n := v.ns[p]
	coord = make([]int, v.nd)
	for a := 0; a < v.nd; a++ {
		coord[a] = local % n
		local /= n
	}
	return p, coord
}
