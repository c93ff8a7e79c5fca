// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gmg

import "github.com/patchdd/thunderegg/ld"

// rangeLoop walks every coordinate in [0,lens[0]) x [0,lens[1]) x ..., most
// significant axis outermost, the same ND-runtime iteration idiom
// ghost/interp.go uses for its own face packing.
func rangeLoop(lens []int, fn func(coord []int)) {
	coord := make([]int, len(lens))
	var rec func(axis int)
	rec = func(axis int) {
		if axis < 0 {
			fn(coord)
			return
		}
		for coord[axis] = 0; coord[axis] < lens[axis]; coord[axis]++ {
			rec(axis - 1)
		}
	}
	rec(len(lens) - 1)
}

func cellCount(n, nd int) int {
	c := 1
	for i := 0; i < nd; i++ {
		c *= n
	}
	return c
}

// packPatch flattens an entire patch's interior (ghost-free) cells into a
// buffer, the whole-patch counterpart to ghost/interp.go's packFace.
func packPatch(v ld.LocalData, n, nd int) []float64 {
	lens := make([]int, nd)
	for i := range lens {
		lens[i] = n
	}
	out := make([]float64, 0, cellCount(n, nd))
	rangeLoop(lens, func(coord []int) { out = append(out, v.At(coord)) })
	return out
}

// unpackSet overwrites v's interior cells from buf, in the same order
// packPatch produced it.
func unpackSet(v ld.LocalData, buf []float64, n, nd int) {
	lens := make([]int, nd)
	for i := range lens {
		lens[i] = n
	}
	i := 0
	rangeLoop(lens, func(coord []int) { v.Set(coord, buf[i]); i++ })
}

// unpackAdd adds buf into v's interior cells, in the same order packPatch
// produced it.
func unpackAdd(v ld.LocalData, buf []float64, n, nd int) {
	lens := make([]int, nd)
	for i := range lens {
		lens[i] = n
	}
	i := 0
	rangeLoop(lens, func(coord []int) { v.Add(coord, buf[i]); i++ })
}

// walkInterior visits every coordinate in v's owned (ghost-free) range.
func walkInterior(v ld.LocalData, fn func(coord []int)) {
	start, end := v.Start(), v.End()
	nd := len(start)
	coord := append([]int(nil), start...)
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
	rec(nd - 1)
}
