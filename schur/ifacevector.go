package schur

import (
	"math"

	"github.com/cpmech/gosl/chk"

	"github.com/patchdd/thunderegg/comm"
	"github.com/patchdd/thunderegg/ld"
	"github.com/patchdd/thunderegg/vec"
)

// IfaceVector is a vec.Vector over one rank's Owned interfaces: a single
// scalar field of n^(ND-1) cells per interface. Adapted from
// vec.ValVector, which cannot be reused directly since it panics outside
// nd in {2,3} while an interface's own dimension (ND-1) is 1 for a 2D
// domain.
type IfaceVector struct {
	c       *comm.Communicator
	nd      int
	ns      []int
	patches [][]float64
}

func newIfaceVector(c *comm.Communicator, owned []OwnedIface, ndm1 int) *IfaceVector {
	if ndm1 < 1 {
		chk.Panic("schur.IfaceVector: interface dimension must be >= 1; got %d", ndm1)
	}
	v := &IfaceVector{c: c, nd: ndm1, ns: make([]int, len(owned)), patches: make([][]float64, len(owned))}
	for i, o := range owned {
		v.ns[i] = o.N
		v.patches[i] = make([]float64, cellCount(o.N, ndm1))
	}
	return v
}

func (v *IfaceVector) NumLocalPatches() int     { return len(v.patches) }
func (v *IfaceVector) NumComponents() int       { return 1 }
func (v *IfaceVector) Comm() *comm.Communicator { return v.c }

// LocalData returns the view for one owned interface; component must be 0.
func (v *IfaceVector) LocalData(patchLocalIndex, component int) ld.LocalData {
	n := v.ns[patchLocalIndex]
	lens := make([]int, v.nd)
	strides := make([]int, v.nd)
	stride := 1
	for a := 0; a < v.nd; a++ {
		lens[a] = n
		strides[a] = stride
		stride *= n
	}
	return ld.New(v.patches[patchLocalIndex], strides, lens, 0)
}

func (v *IfaceVector) walk(fn func(lda ld.LocalData, coord []int)) {
	for p := 0; p < len(v.patches); p++ {
		lda := v.LocalData(p, 0)
		rangeLoop(lda.Lengths(), func(coord []int) { fn(lda, coord) })
	}
}

func (v *IfaceVector) walk2(b vec.Vector, fn func(lda, ldb ld.LocalData, coord []int)) {
	for p := 0; p < len(v.patches); p++ {
		lda := v.LocalData(p, 0)
		ldb := b.LocalData(p, 0)
		rangeLoop(lda.Lengths(), func(coord []int) { fn(lda, ldb, coord) })
	}
}

func (v *IfaceVector) Set(alpha float64) {
	v.walk(func(lda ld.LocalData, c []int) { lda.Set(c, alpha) })
}

func (v *IfaceVector) Scale(alpha float64) {
	v.walk(func(lda ld.LocalData, c []int) { lda.Set(c, lda.At(c)*alpha) })
}

func (v *IfaceVector) Shift(delta float64) {
	v.walk(func(lda ld.LocalData, c []int) { lda.Set(c, lda.At(c)+delta) })
}

func (v *IfaceVector) Copy(b vec.Vector) {
	v.walk2(b, func(lda, ldb ld.LocalData, c []int) { lda.Set(c, ldb.At(c)) })
}

func (v *IfaceVector) Add(b vec.Vector) {
	v.walk2(b, func(lda, ldb ld.LocalData, c []int) { lda.Add(c, ldb.At(c)) })
}

func (v *IfaceVector) AddScaled(alpha float64, a vec.Vector) {
	v.walk2(a, func(lda, lda2 ld.LocalData, c []int) { lda.Add(c, alpha*lda2.At(c)) })
}

func (v *IfaceVector) AddScaled2(alpha float64, a vec.Vector, beta float64, b vec.Vector) {
	for p := 0; p < len(v.patches); p++ {
		lda := v.LocalData(p, 0)
		lx := a.LocalData(p, 0)
		ly := b.LocalData(p, 0)
		rangeLoop(lda.Lengths(), func(c []int) { lda.Add(c, alpha*lx.At(c)+beta*ly.At(c)) })
	}
}

func (v *IfaceVector) ScaleThenAdd(alpha float64, b vec.Vector) {
	v.walk2(b, func(lda, ldb ld.LocalData, c []int) { lda.Set(c, alpha*lda.At(c)+ldb.At(c)) })
}

func (v *IfaceVector) ScaleThenAddScaled(alpha, beta float64, b vec.Vector) {
	v.walk2(b, func(lda, ldb ld.LocalData, c []int) { lda.Set(c, alpha*lda.At(c)+beta*ldb.At(c)) })
}

func (v *IfaceVector) Dot(b vec.Vector) float64 {
	var local float64
	for p := 0; p < len(v.patches); p++ {
		lda := v.LocalData(p, 0)
		ldb := b.LocalData(p, 0)
		rangeLoop(lda.Lengths(), func(c []int) { local += lda.At(c) * ldb.At(c) })
	}
	return v.c.AllreduceSum(local)
}

func (v *IfaceVector) TwoNorm() float64 { return math.Sqrt(v.Dot(v)) }

func (v *IfaceVector) InfNorm() float64 {
	var local float64
	v.walk(func(lda ld.LocalData, c []int) {
		if a := math.Abs(lda.At(c)); a > local {
			local = a
		}
	})
	return v.c.AllreduceMax(local)
}

// Generator mints IfaceVectors over a fixed InterfaceDomain's Owned shape.
type Generator struct {
	Comm  *comm.Communicator
	Iface *InterfaceDomain
}

func (g *Generator) GetNewVector() vec.Vector {
	return newIfaceVector(g.Comm, g.Iface.Owned, g.Iface.NDm1)
}
