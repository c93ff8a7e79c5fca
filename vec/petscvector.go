// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vec

import (
	"github.com/cpmech/gosl/chk"

	"github.com/patchdd/thunderegg/comm"
	"github.com/patchdd/thunderegg/ld"
)

// PetscVector wraps a contiguous buffer it does not own — typically a PETSc
// Vec's local array handed in by an external solver — behind the same
// interface as ValVector. The caller is responsible for the buffer's
// lifetime; PetscVector never allocates or frees it.
type PetscVector struct {
	c             *comm.Communicator
	nd            int
	n, g          int
	numComponents int
	strides       []int
	buf           []float64
	numPatches    int
}

// WrapPetscVector builds a PetscVector view over buf, an externally-owned
// slice already laid out one patch after another (each patchStride =
// numComponents * (n+2g)^nd floats), matching ValVector's own layout so the
// two are interchangeable to every caller that only sees the Vector
// interface.
func WrapPetscVector(c *comm.Communicator, nd, n, g, numComponents, numPatches int, buf []float64) *PetscVector {
	if nd != 2 && nd != 3 {
		chk.Panic("vec.WrapPetscVector: nd must be 2 or 3; got %d", nd)
	}
	full := n + 2*g
	cellsPerComponent := 1
	strides := make([]int, nd)
	stride := 1
	for i := 0; i < nd; i++ {
		strides[i] = stride
		stride *= full
	}
	for i := 0; i < nd; i++ {
		cellsPerComponent *= full
	}
	patchStride := numComponents * cellsPerComponent
	if len(buf) != patchStride*numPatches {
		chk.Panic("vec.WrapPetscVector: buffer has %d entries; want %d (%d patches x %d per patch)",
			len(buf), patchStride*numPatches, numPatches, patchStride)
	}
	return &PetscVector{
		c: c, nd: nd, n: n, g: g,
		numComponents: numComponents,
		strides:       strides,
		buf:           buf,
		numPatches:    numPatches,
	}
}

func (v *PetscVector) NumLocalPatches() int     { return v.numPatches }
func (v *PetscVector) NumComponents() int       { return v.numComponents }
func (v *PetscVector) Comm() *comm.Communicator { return v.c }

func (v *PetscVector) patchStride() int {
	cellsPerComponent := 1
	full := v.n + 2*v.g
	for i := 0; i < v.nd; i++ {
		cellsPerComponent *= full
	}
	return v.numComponents * cellsPerComponent
}

// LocalData returns the view for one (patch, component) pair, aliasing
// directly into the externally-owned buffer.
func (v *PetscVector) LocalData(patchLocalIndex, component int) ld.LocalData {
	stride := v.patchStride()
	cellsPerComponent := stride / v.numComponents
	patchOff := patchLocalIndex * stride
	compOff := patchOff + component*cellsPerComponent
	interior := make([]int, v.nd)
	for i := range interior {
		interior[i] = v.n
	}
	sub := v.buf[compOff : compOff+cellsPerComponent]
	return ld.New(sub, v.strides, interior, v.g)
}

func (v *PetscVector) Set(alpha float64)                { genericSet(v, alpha) }
func (v *PetscVector) Scale(alpha float64)               { genericScale(v, alpha) }
func (v *PetscVector) Shift(delta float64)               { genericShift(v, delta) }
func (v *PetscVector) Copy(b Vector)                     { genericCopy(v, b) }
func (v *PetscVector) Add(b Vector)                      { genericAdd(v, b) }
func (v *PetscVector) AddScaled(alpha float64, a Vector) { genericAddScaled(v, alpha, a) }
func (v *PetscVector) AddScaled2(alpha float64, a Vector, beta float64, b Vector) {
	genericAddScaled2(v, alpha, a, beta, b)
}
func (v *PetscVector) ScaleThenAdd(alpha float64, b Vector) { genericScaleThenAdd(v, alpha, b) }
func (v *PetscVector) ScaleThenAddScaled(alpha, beta float64, b Vector) {
	genericScaleThenAddScaled(v, alpha, beta, b)
}

func (v *PetscVector) Dot(b Vector) float64 { return genericDot(v, b) }
func (v *PetscVector) TwoNorm() float64     { return genericTwoNorm(v) }
func (v *PetscVector) InfNorm() float64     { return genericInfNorm(v) }
