// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package geom

import "github.com/cpmech/gosl/io"

// Orthant identifies one child of a refined ND-dimensional patch (2^ND
// children; bit i set means the child lies on the upper half of axis i), or
// equivalently one of the 2^(ND-1) sub-squares/sub-cubes an ND-dimensional
// face splits into under 2:1 balance (bit i there indexes the face's own
// i-th in-plane axis, i.e. the patch axes other than the face's normal).
type Orthant int

// NumOrthants returns the number of orthants (2^nd) of an nd-dimensional
// space: children of an nd-dimensional patch, or sub-orthants of an
// nd-dimensional face.
func NumOrthants(nd int) int {
	return 1 << uint(nd)
}

// OnAxis reports whether this orthant lies on the upper half of the given
// in-space axis (0-based, relative to the space the orthant was enumerated
// in — e.g. for a FaceOrthant, axis indexes the face's own in-plane axes,
// not the parent patch's axes).
func (o Orthant) OnAxis(axis int) bool {
	return int(o)&(1<<uint(axis)) != 0
}

// Orthants returns every orthant of an nd-dimensional space, in index order.
func Orthants(nd int) []Orthant {
	out := make([]Orthant, NumOrthants(nd))
	for i := range out {
		out[i] = Orthant(i)
	}
	return out
}

// FaceOrthants returns the 2^(ND-1) orthants of the (ND-1)-dimensional face
// of an ND-dimensional patch, in the canonical order used to index
// FineNbrInfo.IDs/Ranks and CoarseNbrInfo.OrthantOnCoarse.
func FaceOrthants(nd int) []Orthant {
	checkND(nd)
	return Orthants(nd - 1)
}

func (o Orthant) String() string {
	return io.Sf("orthant(%d)", int(o))
}
