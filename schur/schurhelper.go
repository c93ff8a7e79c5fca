package schur

import (
	"github.com/patchdd/thunderegg/comm"
	"github.com/patchdd/thunderegg/geom"
	"github.com/patchdd/thunderegg/ld"
	"github.com/patchdd/thunderegg/operator"
	"github.com/patchdd/thunderegg/solve"
	"github.com/patchdd/thunderegg/vec"
)

// SchurHelper implements Sγ = γ − jump(solve(0,γ)): a local patch solve
// against the candidate interface value gamma, followed by reading off how
// far the two sides of each interface disagree after that solve.
type SchurHelper struct {
	Iface    *InterfaceDomain
	Solver   solve.PatchSolver
	Exchange *IfaceExchange

	zeroF map[int]ld.LocalData
}

// NewSchurHelper returns a SchurHelper over id, solving each local patch
// with solver and exchanging gamma/face data over c.
func NewSchurHelper(id *InterfaceDomain, solver solve.PatchSolver, c *comm.Communicator) *SchurHelper {
	return &SchurHelper{Iface: id, Solver: solver, Exchange: NewIfaceExchange(id, c)}
}

func (h *SchurHelper) zeroRHS(li int, n, nd int) ld.LocalData {
	if h.zeroF == nil {
		h.zeroF = make(map[int]ld.LocalData)
	}
	if f, ok := h.zeroF[li]; ok {
		return f
	}
	lens := make([]int, nd)
	strides := make([]int, nd)
	stride := 1
	for i := 0; i < nd; i++ {
		lens[i] = n
		strides[i] = stride
		stride *= n
	}
	f := ld.New(make([]float64, stride), strides, lens, 0)
	h.zeroF[li] = f
	return f
}

// Apply computes out = Sγ = γ − jump(solve(0,γ)) for every interface this
// rank owns: pull gamma for every local binding, solve each local patch
// against it with f=0, push the solved faces to wherever a jump needs
// them, then read out = 2γ − (ownFace+partnerFace)/2 per Owned interface
// (the algebraic simplification of γ − [(ownFace+partnerFace)/2 − γ]).
func (h *SchurHelper) Apply(gamma, out vec.Vector) error {
	d := h.Iface.Domain

	if err := h.Exchange.PullGammaStart(gamma); err != nil {
		return err
	}
	if err := h.Exchange.PullGammaFinish(); err != nil {
		return err
	}

	solved := make([]ld.LocalData, d.NumLocalPatches())
	for li := 0; li < d.NumLocalPatches(); li++ {
		pi := d.PatchByLocalIndex(li)
		lookup := h.lookupFor(li, gamma)
		f := h.zeroRHS(li, pi.N, pi.ND)
		u, err := h.Solver.Solve(pi, f, lookup)
		if err != nil {
			return err
		}
		solved[li] = u
	}

	uVecLike := localDataVector{byPatch: solved}
	if err := h.Exchange.PushFaceStart(uVecLike); err != nil {
		return err
	}
	if err := h.Exchange.PushFaceFinish(); err != nil {
		return err
	}

	for oi := range h.Iface.Owned {
		bi := h.Iface.OwnerBinding[oi]
		fb := h.Iface.Bindings[bi]
		ownFace := solved[fb.LocalPatchIdx].SliceOnSide(fb.Side, 0)
		outFace := out.LocalData(oi, 0)
		gammaFace := gamma.LocalData(oi, 0)
		partner := h.Exchange.PartnerFace(oi)

		rangeLoop(outFace.Lengths(), func(c []int) {
			avg := (ownFace.At(c) + partner.At(c)) / 2
			outFace.Set(c, 2*gammaFace.At(c)-avg)
		})
	}
	return nil
}

// lookupFor builds the operator.BoundaryLookup pi's solve needs: every side
// with a neighbor resolves to this interface's current gamma value,
// whether owned locally or pulled from a remote owner.
func (h *SchurHelper) lookupFor(li int, gamma vec.Vector) operator.BoundaryLookup {
	return func(s geom.Side) ld.LocalData {
		bi, ok := h.Iface.bySide[sideKey{li, s}]
		if !ok {
			return ld.LocalData{}
		}
		fb := &h.Iface.Bindings[bi]
		return h.Exchange.Gamma(gamma, fb, bi)
	}
}

// localDataVector adapts a plain []ld.LocalData (one already-solved patch
// field per local patch) to vec.Vector's LocalData accessor, the minimal
// slice IfaceExchange.PushFaceStart needs to read each patch's own solved
// face; no other vec.Vector method is ever called on it.
type localDataVector struct {
	byPatch []ld.LocalData
}

func (v localDataVector) NumLocalPatches() int               { return len(v.byPatch) }
func (v localDataVector) NumComponents() int                 { return 1 }
func (v localDataVector) Comm() *comm.Communicator           { return nil }
func (v localDataVector) LocalData(li, comp int) ld.LocalData { return v.byPatch[li] }
func (v localDataVector) Set(alpha float64)                  {}
func (v localDataVector) Scale(alpha float64)                {}
func (v localDataVector) Shift(delta float64)                {}
func (v localDataVector) Copy(b vec.Vector)                  {}
func (v localDataVector) Add(b vec.Vector)                   {}
func (v localDataVector) AddScaled(alpha float64, a vec.Vector) {}
func (v localDataVector) AddScaled2(alpha float64, a vec.Vector, beta float64, b vec.Vector) {}
func (v localDataVector) ScaleThenAdd(alpha float64, b vec.Vector)             {}
func (v localDataVector) ScaleThenAddScaled(alpha, beta float64, b vec.Vector) {}
func (v localDataVector) Dot(b vec.Vector) float64 { return 0 }
func (v localDataVector) TwoNorm() float64         { return 0 }
func (v localDataVector) InfNorm() float64         { return 0 }
