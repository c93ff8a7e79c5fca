// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ld implements LocalData: a strided, ghost-aware view over one
// patch's storage. A LocalData owns nothing; it holds a reference to the
// backing []float64 slice it was built from, which is how Go's garbage
// collector keeps the data alive for as long as any view survives (the
// direct replacement for ThunderEgg's shared_ptr<LocalDataManager>: see
// DESIGN.md).
package ld

import (
	"github.com/cpmech/gosl/chk"

	"github.com/patchdd/thunderegg/geom"
)

// LocalData is a strided view over a backing array of up to 3 axes. Start
// points at the first owned cell on each axis, End at the last; ghost cells
// lie outside [Start,End] and are addressed with negative or past-end
// coordinates, which is why the interior does not start at index 0 of the
// data field — see the offset field.
type LocalData struct {
	data    []float64 // backing store; keeps the owner alive
	offset  int        // index in data of the all-zero coordinate
	strides []int      // per-axis stride, length ND
	lengths []int      // per-axis owned-cell count (End-Start+1), length ND
	start   []int      // first owned-cell coordinate per axis (usually all 0)
	end     []int      // last owned-cell coordinate per axis
}

// New builds a LocalData over data, with the given per-axis strides and
// interior lengths (ghost cells excluded), starting at offset cells into
// data for a patch with ghost depth g.
func New(data []float64, strides, interiorLengths []int, g int) LocalData {
	nd := len(strides)
	if len(interiorLengths) != nd {
		chk.Panic("ld.New: strides and lengths must have the same length")
	}
	lengths := make([]int, nd)
	start := make([]int, nd)
	end := make([]int, nd)
	offset := 0
	for i := 0; i < nd; i++ {
		lengths[i] = interiorLengths[i]
		start[i] = 0
		end[i] = interiorLengths[i] - 1
		offset += g * strides[i]
	}
	return LocalData{data: data, offset: offset, strides: strides, lengths: lengths, start: start, end: end}
}

// NumDims returns the number of axes this view spans.
func (v LocalData) NumDims() int { return len(v.strides) }

// Lengths returns the number of owned (non-ghost) cells on each axis,
// End-Start+1.
func (v LocalData) Lengths() []int { return v.lengths }

// Strides returns the per-axis stride into the backing array.
func (v LocalData) Strides() []int { return v.strides }

// Start returns the coordinate of the first owned (non-ghost) cell.
func (v LocalData) Start() []int { return v.start }

// End returns the coordinate of the last owned (non-ghost) cell.
func (v LocalData) End() []int { return v.end }

// index computes the flat index of coord, which may be negative or past
// End to address ghost cells.
func (v LocalData) index(coord []int) int {
	idx := v.offset
	for i, c := range coord {
		idx += c * v.strides[i]
	}
	return idx
}

// At returns the value at coord.
func (v LocalData) At(coord []int) float64 {
	return v.data[v.index(coord)]
}

// Set stores value at coord.
func (v LocalData) Set(coord []int, value float64) {
	v.data[v.index(coord)] = value
}

// Add adds delta to the value at coord.
func (v LocalData) Add(coord []int, delta float64) {
	v.data[v.index(coord)] += delta
}

// Ptr returns a pointer into the backing array at coord, for stencil
// arithmetic that wants to walk strides[axis] without recomputing index().
func (v LocalData) Ptr(coord []int) *float64 {
	return &v.data[v.index(coord)]
}

// SliceOnSide returns a (ND-1)-dimensional view, offset cells inside the
// given side's face (offset=0 is the layer of cells immediately adjacent to
// the face, i.e. the last interior layer).
func (v LocalData) SliceOnSide(s geom.Side, offset int) LocalData {
	return v.slicePriv(s, offset)
}

// GhostSliceOnSide returns a (ND-1)-dimensional view, k cells OUTSIDE the
// given side's face (k>=1); k=1 is the ghost layer immediately past the
// face.
func (v LocalData) GhostSliceOnSide(s geom.Side, k int) LocalData {
	if k < 1 {
		chk.Panic("ld.GhostSliceOnSide: k must be >= 1; got %d", k)
	}
	return v.slicePriv(s, -k)
}

func (v LocalData) slicePriv(s geom.Side, offset int) LocalData {
	nd := v.NumDims()
	axis := s.Axis()
	if axis < 0 || axis >= nd {
		chk.Panic("ld: side %v is not valid for a %d-dimensional view", s, nd)
	}
	newStrides := make([]int, 0, nd-1)
	newLengths := make([]int, 0, nd-1)
	newStart := make([]int, 0, nd-1)
	newEnd := make([]int, 0, nd-1)
	for i := 0; i < nd; i++ {
		if i == axis {
			continue
		}
		newStrides = append(newStrides, v.strides[i])
		newLengths = append(newLengths, v.lengths[i])
		newStart = append(newStart, v.start[i])
		newEnd = append(newEnd, v.end[i])
	}
	var fixedCoord int
	if s.IsLowerOnAxis() {
		fixedCoord = v.start[axis] + offset
	} else {
		fixedCoord = v.end[axis] - offset
	}
	newOffset := v.offset + fixedCoord*v.strides[axis]
	return LocalData{data: v.data, offset: newOffset, strides: newStrides, lengths: newLengths, start: newStart, end: newEnd}
}
