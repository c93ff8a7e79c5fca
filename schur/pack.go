package schur

import (
	"github.com/patchdd/thunderegg/geom"
	"github.com/patchdd/thunderegg/ld"
)

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

func packFace(v ld.LocalData, n, nd int) []float64 {
	lens := make([]int, nd)
	for i := range lens {
		lens[i] = n
	}
	out := make([]float64, 0, cellCount(n, nd))
	rangeLoop(lens, func(coord []int) { out = append(out, v.At(coord)) })
	return out
}

func unpackSet(v ld.LocalData, buf []float64, n, nd int) {
	lens := make([]int, nd)
	for i := range lens {
		lens[i] = n
	}
	i := 0
	rangeLoop(lens, func(coord []int) { v.Set(coord, buf[i]); i++ })
}

// restrictFaceOrthant averages the 2^ndm1 fine cells of srcFine (a full
// n-per-axis face) into the orthant quadrant of dstCoarse (also n
// per-axis, but only the orthant-th quadrant of it is written), the face
// analog of gmg's whole-patch restriction.
func restrictFaceOrthant(dstCoarse, srcFine ld.LocalData, orthant geom.Orthant, n, ndm1 int) {
	half := n / 2
	quadLens := make([]int, ndm1)
	for i := range quadLens {
		quadLens[i] = half
	}
	rangeLoop(quadLens, func(localCoarse []int) {
		coarseCoord := make([]int, ndm1)
		for a := 0; a < ndm1; a++ {
			base := 0
			if orthant.OnAxis(a) {
				base = half
			}
			coarseCoord[a] = base + localCoarse[a]
		}
		var sum float64
		subLens := make([]int, ndm1)
		for i := range subLens {
			subLens[i] = 2
		}
		rangeLoop(subLens, func(bit []int) {
			fineCoord := make([]int, ndm1)
			for a := 0; a < ndm1; a++ {
				fineCoord[a] = localCoarse[a]*2 + bit[a]
			}
			sum += srcFine.At(fineCoord)
		})
		dstCoarse.Add(coarseCoord, sum/float64(int(1)<<uint(ndm1)))
	})
}

// interpFaceOrthant injects one orthant quadrant of srcCoarse (n per-axis)
// onto dstFine (also n per-axis, covering that same orthant at double
// resolution), the face analog of gmg's whole-patch piecewise-constant
// prolongation.
func interpFaceOrthant(dstFine, srcCoarse ld.LocalData, orthant geom.Orthant, n, ndm1 int) {
	half := n / 2
	fineLens := make([]int, ndm1)
	for i := range fineLens {
		fineLens[i] = n
	}
	rangeLoop(fineLens, func(fineCoord []int) {
		coarseCoord := make([]int, ndm1)
		for a := 0; a < ndm1; a++ {
			base := 0
			if orthant.OnAxis(a) {
				base = half
			}
			coarseCoord[a] = base + fineCoord[a]/2
		}
		dstFine.Add(fineCoord, srcCoarse.At(coarseCoord))
	})
}
