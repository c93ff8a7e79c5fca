// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ana

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun"
)

// Poisson2D is the manufactured solution u(x,y) = sin(Ky*π*y)*cos(Kx*π*x)
// for Δu = f on the unit square, used to seed a convergence test: f is
// derived analytically from u so the discrete solve can be checked against
// a known closed form at any mesh resolution.
type Poisson2D struct {
	// input
	Kx float64 // x-direction wavenumber (in units of π)
	Ky float64 // y-direction wavenumber (in units of π)
}

// Init initialises this structure, following ConfinedSelfWeight.Init's
// name-switch parameter convention.
func (o *Poisson2D) Init(prms fun.Prms) {

	// default values: matches the worked example this system ships a seed
	// test for (Kx=2, Ky=1)
	o.Kx = 2.0
	o.Ky = 1.0

	// parameters
	for _, p := range prms {
		switch p.N {
		case "kx":
			o.Kx = p.V
		case "ky":
			o.Ky = p.V
		}
	}
}

// U evaluates the manufactured exact solution at x.
func (o Poisson2D) U(x []float64) float64 {
	return math.Sin(o.Ky*math.Pi*x[1]) * math.Cos(o.Kx*math.Pi*x[0])
}

// F evaluates the forcing term f = Δu for this U (the sign convention
// operator.StarPatchOperator.Apply computes, Δu rather than -Δu): by direct
// differentiation, Δu = -(Kx²+Ky²)π²·u.
func (o Poisson2D) F(x []float64) float64 {
	k2 := o.Kx*o.Kx + o.Ky*o.Ky
	return -k2 * math.Pi * math.Pi * o.U(x)
}

// CheckU checks a computed field value against the analytic solution.
func (o Poisson2D) CheckU(tst *testing.T, x []float64, u, tol float64) {
	chk.Scalar(tst, "u", tol, u, o.U(x))
}
