// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ghost

import (
	"github.com/patchdd/thunderegg/domain"
	"github.com/patchdd/thunderegg/geom"
	"github.com/patchdd/thunderegg/ld"
	"github.com/patchdd/thunderegg/vec"
)

// rangeLoop walks every coordinate in [0,lens[0]) x [0,lens[1]) x ..., most
// significant axis outermost, mirroring the nested_loop idiom used
// throughout this system for ND-runtime iteration.
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

// ---- equal-level (same refinement) ----

// fillEqualLocal copies every component's boundary slab from a same-rank
// equal-level neighbor directly into pi's ghost layer(s).
func (f *Filler) fillEqualLocal(v vec.Vector, selfLocal int, pi *domain.PatchInfo, s geom.Side, nbrID int) {
	nbrLocal := mustLocalIndex(f.Domain, nbrID)
	for c := 0; c < v.NumComponents(); c++ {
		self := v.LocalData(selfLocal, c)
		nbr := v.LocalData(nbrLocal, c)
		for k := 1; k <= f.G; k++ {
			srcInterior := nbr.SliceOnSide(s.Opposite(), k-1)
			dstGhost := self.GhostSliceOnSide(s, k)
			copyFace(dstGhost, srcInterior)
		}
	}
}

func copyFace(dst, src ld.LocalData) {
	lens := make([]int, dst.NumDims())
	copy(lens, dst.Lengths())
	rangeLoop(lens, func(rel []int) {
		dc := addStart(dst, rel)
		sc := addStart(src, rel)
		dst.Set(dc, src.At(sc))
	})
}

func addStart(v ld.LocalData, rel []int) []int {
	out := make([]int, len(rel))
	start := v.Start()
	for i := range rel {
		out[i] = start[i] + rel[i]
	}
	return out
}

// postEqualRemote packs this patch's own boundary slab and posts the
// nonblocking send/receive pair for a cross-rank equal-level neighbor.
func (f *Filler) postEqualRemote(v vec.Vector, selfLocal int, pi *domain.PatchInfo, s geom.Side, nbrID, nbrRank int) {
	c := f.Domain.Comm
	for comp := 0; comp < v.NumComponents(); comp++ {
		self := v.LocalData(selfLocal, comp)
		sendBuf := packFace(self.SliceOnSide(s, 0))
		tag := makeTag(pi.ID, s, comp)
		sreq := c.ISend(nbrRank, tag, sendBuf)

		recvBuf := make([]float64, len(sendBuf))
		rtag := makeTag(nbrID, s.Opposite(), comp)
		rreq := c.IRecv(nbrRank, rtag, recvBuf)

		f.inputs = append(f.inputs, inflight{
			sendReq: sreq, recvReq: rreq, recvBuf: recvBuf,
			patch: pi, side: s, comp: comp,
		})
	}
}

func packFace(v ld.LocalData) []float64 {
	lens := make([]int, v.NumDims())
	copy(lens, v.Lengths())
	n := 1
	for _, l := range lens {
		n *= l
	}
	out := make([]float64, 0, n)
	rangeLoop(lens, func(rel []int) {
		out = append(out, v.At(addStart(v, rel)))
	})
	return out
}

// depositEqual writes a received boundary slab into the ghost layer on
// side s (depth 1; equal-level cross-rank exchange only fills the first
// ghost layer, matching ThunderEgg's single-exchange-per-call contract).
func depositEqual(self ld.LocalData, s geom.Side, g int, buf []float64) {
	dst := self.GhostSliceOnSide(s, 1)
	lens := make([]int, dst.NumDims())
	copy(lens, dst.Lengths())
	i := 0
	rangeLoop(lens, func(rel []int) {
		dst.Set(addStart(dst, rel), buf[i])
		i++
	})
}

// makeTag folds (patch id, side, component) into a single MPI tag. Patch
// ids are globally dense and small in this system, so multiplying by a
// fixed small stride never overflows a realistic tag space.
func makeTag(patchID int, s geom.Side, component int) int {
	return (patchID*16+s.Index())*16 + component
}

// ---- fine -> coarse (face averaging) ----

// fillCoarseFromLocalFine averages one same-rank fine neighbor's boundary
// slab into this (coarser) patch's ghost layer, covering just the
// orthant-sized quadrant of the face that fine neighbor is responsible for.
func (f *Filler) fillCoarseFromLocalFine(v vec.Vector, selfLocal int, pi *domain.PatchInfo, s geom.Side, fineID int, orthant geom.Orthant) {
	fineLocal := mustLocalIndex(f.Domain, fineID)
	for c := 0; c < v.NumComponents(); c++ {
		fine := v.LocalData(fineLocal, c)
		fineFace := fine.SliceOnSide(s.Opposite(), 0)
		self := v.LocalData(selfLocal, c)
		coarseGhost := self.GhostSliceOnSide(s, 1)
		averageOrthantIntoCoarse(coarseGhost, fineFace, orthant, pi.N)
	}
}

// averageOrthantIntoCoarse deposits one fine face (N cells/axis) into the
// (N/2)^(ND-1) coarse cells its orthant owns (N/2 cells/axis within the
// quadrant selected by orthant), each coarse cell the average of its 2^(ND-1)
// underlying fine cells.
func averageOrthantIntoCoarse(coarseGhost, fineFace ld.LocalData, orthant geom.Orthant, n int) {
	faceND := coarseGhost.NumDims()
	half := n / 2
	quadLens := make([]int, faceND)
	for i := range quadLens {
		quadLens[i] = half
	}
	rangeLoop(quadLens, func(localCoarse []int) {
		coarseCoord := make([]int, faceND)
		for a := 0; a < faceND; a++ {
			base := 0
			if orthant.OnAxis(a) {
				base = half
			}
			coarseCoord[a] = base + localCoarse[a]
		}
		var sum float64
		subLens := make([]int, faceND)
		for i := range subLens {
			subLens[i] = 2
		}
		rangeLoop(subLens, func(bit []int) {
			fineCoord := make([]int, faceND)
			for a := 0; a < faceND; a++ {
				fineCoord[a] = localCoarse[a]*2 + bit[a]
			}
			sum += fineFace.At(addStart(fineFace, fineCoord))
		})
		count := 1 << uint(faceND)
		coarseGhost.Set(addStart(coarseGhost, coarseCoord), sum/float64(count))
	})
}

// ---- coarse -> fine (quadratic interpolation) ----

// fillFineFromLocalCoarse produces one same-rank fine neighbor's ghost
// layer from this (coarser) patch's interior, via quadraticUpsampleIntoFine:
// quadratic along the interface and linear across it, so a field that is
// quadratic in the in-plane directions and linear in the normal direction
// is reproduced exactly; curvature across the interface is not.
func (f *Filler) fillFineFromLocalCoarse(v vec.Vector, selfLocal int, pi *domain.PatchInfo, s geom.Side, fineID int, orthant geom.Orthant) {
	fineLocal := mustLocalIndex(f.Domain, fineID)
	for c := 0; c < v.NumComponents(); c++ {
		coarse := v.LocalData(selfLocal, c)
		coarseFace := coarse.SliceOnSide(s, 0)
		coarseInner := coarse.SliceOnSide(s, 1)
		fine := v.LocalData(fineLocal, c)
		fineGhost := fine.GhostSliceOnSide(s.Opposite(), 1)
		quadraticUpsampleIntoFine(fineGhost, coarseFace, coarseInner, orthant, pi.N)
	}
}

// quadraticHalfStencil returns the quadratic (Lagrange, 3-point) interpolant
// at the half-cell offset -1/4 (lower=true) or +1/4 (lower=false) from the
// center sample cCenter, given its immediate neighbors. This reproduces any
// quadratic exactly.
func quadraticHalfStencil(cLower, cCenter, cUpper float64, lower bool) float64 {
	if lower {
		return 0.15625*cLower + 0.9375*cCenter - 0.09375*cUpper
	}
	return -0.09375*cLower + 0.9375*cCenter + 0.15625*cUpper
}

// quadraticUpsampleIntoFine fills the N-cell-per-axis fine ghost face from
// the N/2-cell-per-axis quadrant of the coarse face that orthant selects.
// Each fine cell's value combines the coarse face layer's tensor-product
// quadratic (quadraticHalfStencil applied along every in-plane axis --
// "biquadratic" in 2D faces, "triquadratic" when the face itself is 2D)
// with a normal-direction correction read from coarseInner, the next
// coarse layer back from the face, so the interpolation also varies across
// the refinement-boundary normal rather than holding it at the face
// layer's value. At the first and last coarse cell of the face along an
// in-plane axis, the missing neighbor past the face's edge is replaced by
// the linear extension of the two cells that exist, which locally degrades
// the in-plane scheme to linear.
func quadraticUpsampleIntoFine(fineGhost, coarseFace, coarseInner ld.LocalData, orthant geom.Orthant, n int) {
	faceND := fineGhost.NumDims()
	half := n / 2
	fineLens := make([]int, faceND)
	for i := range fineLens {
		fineLens[i] = n
	}
	rangeLoop(fineLens, func(fineCoord []int) {
		// tensor-product accumulation: start from the coarse value and
		// apply each axis's 1D quadratic correction in turn.
		coarseCoord := make([]int, faceND)
		lower := make([]bool, faceND)
		for a := 0; a < faceND; a++ {
			base := 0
			if orthant.OnAxis(a) {
				base = half
			}
			coarseCoord[a] = base + fineCoord[a]/2
			lower[a] = fineCoord[a]%2 == 0
		}
		face := tensorQuadratic(coarseFace, coarseCoord, lower, faceND, half, orthant, 0)
		inner := tensorQuadratic(coarseInner, coarseCoord, lower, faceND, half, orthant, 0)
		value := normalExtrapolate(face, inner)
		fineGhost.Set(addStart(fineGhost, fineCoord), value)
	})
}

// normalExtrapolate extends the unique linear function through the face
// layer and the next coarse layer back out to the fine ghost cell's own
// location. In coarse cell-width units measured from the interface (at 0)
// into the coarse patch, the face layer sits at -1/2 and the next layer
// back at -3/2; the fine ghost cell (half the coarse cell width) sits at
// -1/4, a quarter-cell extrapolation past the face layer:
//
//	value = face + (inner-face)/(-1) * (-1/4 - (-1/2)) = 1.25*face - 0.25*inner
//
// Exact when the field varies linearly in the normal direction; the face
// layer alone (the prior behavior) is only exact when it happens to be
// constant there.
func normalExtrapolate(face, inner float64) float64 {
	return 1.25*face - 0.25*inner
}

// tensorQuadratic recursively applies the 1D quadratic half-stencil on each
// axis from 0..faceND-1, holding the remaining axes at their coarse
// coordinate, building the full ND-1-dimensional tensor-product stencil.
// source is whichever coarse layer (face-adjacent or one further in) the
// caller wants this tangential fit evaluated against.
func tensorQuadratic(source ld.LocalData, coarseCoord []int, lower []bool, faceND, half int, orthant geom.Orthant, axis int) float64 {
	if axis == faceND {
		return source.At(addStart(source, coarseCoord))
	}
	c := coarseCoord[axis]
	lo, hi := c-1, c+1

	at := func(coord int) float64 {
		cc := append([]int(nil), coarseCoord...)
		cc[axis] = coord
		return tensorQuadratic(source, cc, lower, faceND, half, orthant, axis+1)
	}
	switch {
	case lo < 0:
		return quadraticHalfStencil(2*at(c)-at(hi), at(c), at(hi), lower[axis])
	case hi > 2*half-1:
		return quadraticHalfStencil(at(lo), at(c), 2*at(c)-at(lo), lower[axis])
	}
	return quadraticHalfStencil(at(lo), at(c), at(hi), lower[axis])
}

// ---- cross-rank fine/coarse posting ----
//
// Both directions send raw, uninterpolated data at the sender's own
// resolution: the fine side sends its face layer, the coarse side its face
// layer followed by the next layer back. Each side interpolates or averages
// on receipt exactly as it would for a same-rank neighbor (see
// fillCoarseFromLocalFine / fillFineFromLocalCoarse); only the transport
// differs.

// postFineRemote runs on the COARSE side of a cross-rank refinement jump,
// sending both the face layer and the next layer back so the fine
// receiver's quadraticUpsampleIntoFine has the same normal-direction
// sample a same-rank fillFineFromLocalCoarse reads directly, and receiving
// the fine neighbor's face layer for averaging.
func (f *Filler) postFineRemote(v vec.Vector, selfLocal int, pi *domain.PatchInfo, s geom.Side, fineID, fineRank int, orthant geom.Orthant) {
	c := f.Domain.Comm
	for comp := 0; comp < v.NumComponents(); comp++ {
		self := v.LocalData(selfLocal, comp)
		sendBuf := append(packFace(self.SliceOnSide(s, 0)), packFace(self.SliceOnSide(s, 1))...)
		tag := makeTag(pi.ID, s, comp)
		sreq := c.ISend(fineRank, tag, sendBuf)
		f.sendOnly = append(f.sendOnly, sreq)

		recvBuf := make([]float64, pow(pi.N, pi.ND-1))
		rtag := makeTag(fineID, s.Opposite(), comp)
		rreq := c.IRecv(fineRank, rtag, recvBuf)

		f.fineRecv = append(f.fineRecv, fineInflight{
			req: rreq, buf: recvBuf, selfLocal: selfLocal, side: s, comp: comp, orthant: orthant, n: pi.N,
		})
	}
}

// postCoarseRemote runs on the FINE side of a cross-rank refinement jump,
// sending its own face layer for the coarse neighbor to average and
// receiving the coarse neighbor's face layer plus the next layer back.
func (f *Filler) postCoarseRemote(v vec.Vector, selfLocal int, pi *domain.PatchInfo, s geom.Side, coarseID, coarseRank int, orthant geom.Orthant) {
	c := f.Domain.Comm
	for comp := 0; comp < v.NumComponents(); comp++ {
		self := v.LocalData(selfLocal, comp)
		sendBuf := packFace(self.SliceOnSide(s, 0))
		tag := makeTag(pi.ID, s, comp)
		sreq := c.ISend(coarseRank, tag, sendBuf)

		recvBuf := make([]float64, 2*pow(pi.N, pi.ND-1))
		rtag := makeTag(coarseID, s.Opposite(), comp)
		rreq := c.IRecv(coarseRank, rtag, recvBuf)

		f.coarseRecv = append(f.coarseRecv, coarseInflight{
			req: rreq, buf: recvBuf, selfLocal: selfLocal, side: s, comp: comp, orthant: orthant, n: pi.N,
		})
		f.sendOnly = append(f.sendOnly, sreq)
	}
}

// wrapFace views a packed, ghost-free raw face buffer (n cells per axis,
// faceND axes) as an ld.LocalData, so received cross-rank data can reuse
// the same interpolation code as the same-rank path.
func wrapFace(buf []float64, faceND, n int) ld.LocalData {
	strides := make([]int, faceND)
	stride := 1
	for i := 0; i < faceND; i++ {
		strides[i] = stride
		stride *= n
	}
	lens := make([]int, faceND)
	for i := range lens {
		lens[i] = n
	}
	return ld.New(buf, strides, lens, 0)
}

func pow(b, e int) int {
	r := 1
	for i := 0; i < e; i++ {
		r *= b
	}
	return r
}
