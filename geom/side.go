// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package geom implements the compile-time-sized enumerations that a
// D-dimensional block-structured patch needs: the 2*ND faces (Side) of a
// D-cube and the 2^(D-1) orthants (Orthant) a face splits into under 2:1
// refinement. Nothing here owns mesh data; these are pure value types.
package geom

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

// Side identifies one of the 2*ND faces of a D-dimensional patch. Sides are
// numbered axis-major: axis 0's lower face is 0, its upper face is 1, axis
// 1's lower face is 2, and so on. ND is not baked into the type (Go has no
// const generics); callers carry ND alongside and validate against it with
// NumSides.
type Side int

// NumSides returns the number of sides (2*nd) of an nd-dimensional patch.
func NumSides(nd int) int {
	checkND(nd)
	return 2 * nd
}

// Axis returns the coordinate axis this side lies on (0=x, 1=y, 2=z).
func (s Side) Axis() int {
	return int(s) / 2
}

// IsLowerOnAxis reports whether this side is the lower face on its axis
// (e.g. west/south/bottom) as opposed to the upper face (east/north/top).
func (s Side) IsLowerOnAxis() bool {
	return int(s)%2 == 0
}

// Opposite returns the side on the other end of the same axis.
func (s Side) Opposite() Side {
	if s.IsLowerOnAxis() {
		return s + 1
	}
	return s - 1
}

// Index returns the integer index used when encoding a (patch id, side)
// pair as a single interface id: id*NumSides(nd) + side.Index().
func (s Side) Index() int {
	return int(s)
}

// String returns a short mnemonic for 2D/3D sides; higher axes print
// numerically since the system caps at ND=3.
func (s Side) String() string {
	names := []string{"west", "east", "south", "north", "bottom", "top"}
	if int(s) >= 0 && int(s) < len(names) {
		return names[s]
	}
	return io.Sf("side(%d)", int(s))
}

// Sides returns every side of an nd-dimensional patch, in index order.
func Sides(nd int) []Side {
	checkND(nd)
	out := make([]Side, NumSides(nd))
	for i := range out {
		out[i] = Side(i)
	}
	return out
}

func checkND(nd int) {
	if nd != 2 && nd != 3 {
		chk.Panic("geom: number of dimensions must be 2 or 3; got %d", nd)
	}
}
