// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package geom

import (
	"testing"

	"github.com/cpmech/gosl/chk"
)

func Test_side01(tst *testing.T) {

	chk.PrintTitle("side01. Axis, Opposite, IsLowerOnAxis in 2D")

	if NumSides(2) != 4 {
		tst.Errorf("NumSides(2) should be 4")
	}
	sides := Sides(2)
	if len(sides) != 4 {
		tst.Errorf("Sides(2) should have length 4")
	}
	west, east, south, north := Side(0), Side(1), Side(2), Side(3)
	chk.IntAssert(west.Axis(), 0)
	chk.IntAssert(south.Axis(), 1)
	if !west.IsLowerOnAxis() || east.IsLowerOnAxis() {
		tst.Errorf("IsLowerOnAxis wrong for west/east")
	}
	if west.Opposite() != east || east.Opposite() != west {
		tst.Errorf("Opposite should pair west/east")
	}
	if south.Opposite() != north || north.Opposite() != south {
		tst.Errorf("Opposite should pair south/north")
	}
}

func Test_side02(tst *testing.T) {

	chk.PrintTitle("side02. 3D has 6 sides, bottom/top present")

	chk.IntAssert(NumSides(3), 6)
	bottom, top := Side(4), Side(5)
	chk.IntAssert(bottom.Axis(), 2)
	if bottom.Opposite() != top {
		tst.Errorf("bottom/top should be opposite")
	}
}

func Test_orthant01(tst *testing.T) {

	chk.PrintTitle("orthant01. FaceOrthants counts")

	if len(FaceOrthants(2)) != 2 {
		tst.Errorf("2D face orthants (1D face) should have 2 entries")
	}
	if len(FaceOrthants(3)) != 4 {
		tst.Errorf("3D face orthants (2D face) should have 4 entries")
	}
}
