// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vec

import (
	"github.com/cpmech/gosl/chk"

	"github.com/patchdd/thunderegg/comm"
	"github.com/patchdd/thunderegg/ld"
)

// ValVector allocates its own contiguous storage: one backing []float64 per
// local patch, sized patch_stride = num_components * prod(n_i+2g).
type ValVector struct {
	c             *comm.Communicator
	nd            int
	n             int // cells per axis (uniform patches)
	g             int // ghost depth
	numComponents int
	patchStride   int
	patches       [][]float64 // [patch][component*stride_per_component + strided cell]
	strides       []int
}

// NewValVector allocates a vector over numLocalPatches patches, each an
// nd-dimensional n^nd block of cells with g ghost layers and numComponents
// scalar fields.
func NewValVector(c *comm.Communicator, nd, n, g, numComponents, numLocalPatches int) *ValVector {
	if nd != 2 && nd != 3 {
		chk.Panic("vec.NewValVector: nd must be 2 or 3; got %d", nd)
	}
	if g < 0 {
		chk.Panic("vec.NewValVector: ghost depth must be >= 0; got %d", g)
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
	stride = cellsPerComponent
	patchStride := numComponents * cellsPerComponent

	patches := make([][]float64, numLocalPatches)
	for i := range patches {
		patches[i] = make([]float64, patchStride)
	}
	return &ValVector{
		c: c, nd: nd, n: n, g: g,
		numComponents: numComponents,
		patchStride:   patchStride,
		patches:       patches,
		strides:       strides,
	}
}

func (v *ValVector) NumLocalPatches() int { return len(v.patches) }
func (v *ValVector) NumComponents() int   { return v.numComponents }
func (v *ValVector) Comm() *comm.Communicator { return v.c }

// LocalData returns the view for one (patch, component) pair. Component
// fields are laid out contiguously within a patch's backing slice, each
// sized n^nd (ghost-inclusive (n+2g)^nd).
func (v *ValVector) LocalData(patchLocalIndex, component int) ld.LocalData {
	cellsPerComponent := v.patchStride / v.numComponents
	off := component * cellsPerComponent
	interior := make([]int, v.nd)
	for i := range interior {
		interior[i] = v.n
	}
	sub := v.patches[patchLocalIndex][off : off+cellsPerComponent]
	return ld.New(sub, v.strides, interior, v.g)
}

func (v *ValVector) Set(alpha float64)                    { genericSet(v, alpha) }
func (v *ValVector) Scale(alpha float64)                  { genericScale(v, alpha) }
func (v *ValVector) Shift(delta float64)                  { genericShift(v, delta) }
func (v *ValVector) Copy(b Vector)                         { genericCopy(v, b) }
func (v *ValVector) Add(b Vector)                          { genericAdd(v, b) }
func (v *ValVector) AddScaled(alpha float64, a Vector)     { genericAddScaled(v, alpha, a) }
func (v *ValVector) AddScaled2(alpha float64, a Vector, beta float64, b Vector) {
	genericAddScaled2(v, alpha, a, beta, b)
}
func (v *ValVector) ScaleThenAdd(alpha float64, b Vector) { genericScaleThenAdd(v, alpha, b) }
func (v *ValVector) ScaleThenAddScaled(alpha, beta float64, b Vector) {
	genericScaleThenAddScaled(v, alpha, beta, b)
}

func (v *ValVector) Dot(b Vector) float64 { return genericDot(v, b) }
func (v *ValVector) TwoNorm() float64     { return genericTwoNorm(v) }
func (v *ValVector) InfNorm() float64     { return genericInfNorm(v) }

// ValVectorGenerator is the blessed Generator for ValVector: every vector it
// mints has the same nd/n/g/numComponents/numLocalPatches shape.
type ValVectorGenerator struct {
	Comm            *comm.Communicator
	ND, N, G        int
	NumComponents   int
	NumLocalPatches int
}

// GetNewVector implements Generator.
func (g *ValVectorGenerator) GetNewVector() Vector {
	return NewValVector(g.Comm, g.ND, g.N, g.G, g.NumComponents, g.NumLocalPatches)
}
