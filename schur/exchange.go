package schur

import (
	"github.com/patchdd/thunderegg/comm"
	"github.com/patchdd/thunderegg/geom"
	"github.com/patchdd/thunderegg/ld"
	"github.com/patchdd/thunderegg/vec"
)

// exchange slot numbers, the second component of every tag this package
// sends: gamma is pulled once (slot 0), every binding's own solved face is
// pushed up to whichever binding owns the interface it belongs to (slot 1),
// and a CoarseSide owner broadcasts its own face back down to each fine
// partner that needs it for interpolation (slot 2).
const (
	slotGamma = 0
	slotPush  = 1
	slotBcast = 2
)

// tag folds an interface's EncodedID, an exchange slot, and (for a
// refinement-jump relation) the orthant distinguishing one fine partner
// from its siblings into a single MPI tag. Both ends of a relation compute
// this independently from data already in their own PatchInfo, exactly as
// EncodedID itself does.
func tag(encID, slot int, orthant geom.Orthant) int {
	return (encID*3+slot)*8 + int(orthant)
}

func faceLen(n, ndm1 int) int { return cellCount(n, ndm1) }

func faceView(buf []float64, n, ndm1 int) ld.LocalData {
	lens := make([]int, ndm1)
	strides := make([]int, ndm1)
	stride := 1
	for a := 0; a < ndm1; a++ {
		lens[a] = n
		strides[a] = stride
		stride *= n
	}
	return ld.New(buf, strides, lens, 0)
}

// ErrProtocol is returned when a caller violates IfaceExchange's
// single-in-flight contract: starting a second exchange before finishing
// the first, or finishing without a matching Start. Defined locally rather
// than shared with ghost.ErrProtocol or gmg.ErrProtocol, matching the
// per-package precedent those two already set.
type ErrProtocol struct {
	msg string
}

func (e *ErrProtocol) Error() string { return e.msg }

func protocolErr(msg string) error { return &ErrProtocol{msg: msg} }

type state int

const (
	idle state = iota
	busy
)

// IfaceExchange moves gamma and solved-face data between the local
// bindings of an InterfaceDomain and whichever rank owns or needs them,
// using nonblocking comm.ISend/IRecv pairs matched by the tag scheme
// documented on tag(). Every face push, including a same-rank one, is
// routed through comm uniformly rather than special-cased with a direct
// memory copy (see DESIGN.md); a gamma pull between same-rank patches posts
// nothing, since both bindings read the same Owned entry (see Gamma).
type IfaceExchange struct {
	Iface *InterfaceDomain
	Comm  *comm.Communicator

	st state

	// gammaRecv holds, per non-owned Normal binding, the gamma value
	// pulled from its owner.
	gammaRecv map[int][]float64
	gammaReqs []*comm.Request
	sendReqs  []*comm.Request

	// faceRecv holds, per Owned interface, the raw partner face(s)
	// received during PushFace: one entry for Normal/FineSide, one per
	// fine child (keyed by orthant) for CoarseSide.
	faceRecv map[int]map[geom.Orthant][]float64
	faceReqs []*comm.Request
}

// NewIfaceExchange returns an IfaceExchange over id, communicating through c.
func NewIfaceExchange(id *InterfaceDomain, c *comm.Communicator) *IfaceExchange {
	return &IfaceExchange{Iface: id, Comm: c}
}

// PullGammaStart posts the sends and receives needed so that every Normal
// binding on this rank (owner or not) can read the interface's current
// gamma value: only a Normal binding's gamma ever needs cross-rank
// movement, since a CoarseSide or FineSide sub-interface is always Owned
// locally by construction.
func (x *IfaceExchange) PullGammaStart(gamma vec.Vector) error {
	if x.st != idle {
		return protocolErr("schur.IfaceExchange.PullGammaStart: an exchange is already in flight")
	}
	x.gammaRecv = make(map[int][]float64)
	x.gammaReqs = x.gammaReqs[:0]
	x.sendReqs = x.sendReqs[:0]

	for bi := range x.Iface.Bindings {
		fb := &x.Iface.Bindings[bi]
		if fb.Kind != KindNormal {
			continue
		}
		n := faceLen(fb.N, x.Iface.NDm1)
		if fb.IsCanonicalSite {
			p := fb.Partners[0]
			if p.Rank == x.Comm.Rank() {
				continue
			}
			buf := packFace(gamma.LocalData(fb.OwnerLocalIdx, 0), fb.N, x.Iface.NDm1)
			x.sendReqs = append(x.sendReqs, x.Comm.ISend(p.Rank, tag(fb.EncodedID, slotGamma, 0), buf))
		} else if !fb.Owned {
			buf := make([]float64, n)
			x.gammaRecv[bi] = buf
			x.gammaReqs = append(x.gammaReqs, x.Comm.IRecv(fb.OwnerRank, tag(fb.EncodedID, slotGamma, 0), buf))
		}
	}
	x.st = busy
	return nil
}

// PullGammaFinish blocks until every gamma exchange posted by the matching
// Start has completed.
func (x *IfaceExchange) PullGammaFinish() error {
	if x.st != busy {
		return protocolErr("schur.IfaceExchange.PullGammaFinish: no exchange in flight")
	}
	if err := comm.WaitAll(x.sendReqs); err != nil {
		return err
	}
	if err := comm.WaitAll(x.gammaReqs); err != nil {
		return err
	}
	x.st = idle
	return nil
}

// Gamma returns the LocalData a solve.PatchSolver should read binding's
// interface value from: the owned vector directly when fb.Owned (true for
// every CoarseSide/FineSide binding and every same-rank Normal pair), or
// the value PullGammaFinish deposited for a remote Normal partner.
func (x *IfaceExchange) Gamma(gamma vec.Vector, fb *FaceBinding, bindingIdx int) ld.LocalData {
	if fb.Owned {
		return gamma.LocalData(fb.OwnerLocalIdx, 0)
	}
	return faceView(x.gammaRecv[bindingIdx], fb.N, x.Iface.NDm1)
}

// partnerEncID returns the EncodedID the owning side of p independently
// computes for itself, letting a non-owning binding address its owner
// without any discovery round.
func partnerEncID(p PartnerPatch, nd int) int {
	return EncodedID(p.PatchID, p.Side, nd)
}

// PushFaceStart posts the sends and receives that move each local
// binding's own solved face to wherever its jump gets computed: a Normal
// non-owner sends to its owner and the owner receives; a CoarseSide owner
// receives one face per fine child and also sends its own just-solved face
// back down to each of those children; a FineSide binding
// sends its own face up to the coarse owner and receives the coarse face
// broadcast back for its own interpolation.
func (x *IfaceExchange) PushFaceStart(u vec.Vector) error {
	if x.st != idle {
		return protocolErr("schur.IfaceExchange.PushFaceStart: an exchange is already in flight")
	}
	x.faceRecv = make(map[int]map[geom.Orthant][]float64)
	x.faceReqs = x.faceReqs[:0]
	x.sendReqs = x.sendReqs[:0]
	nd := x.Iface.NDm1 + 1

	for bi := range x.Iface.Bindings {
		fb := &x.Iface.Bindings[bi]
		own := fb.LocalPatchIdx
		ownFace := u.LocalData(own, 0).SliceOnSide(fb.Side, 0)

		switch fb.Partner {
		case PartnerNone:
			if fb.IsCanonicalSite {
				p := fb.Partners[0]
				n := faceLen(fb.N, x.Iface.NDm1)
				buf := make([]float64, n)
				x.recvFaceInto(fb.OwnerLocalIdx, 0, buf)
				x.faceReqs = append(x.faceReqs, x.Comm.IRecv(p.Rank, tag(fb.EncodedID, slotPush, 0), buf))
			} else {
				buf := packFace(ownFace, fb.N, x.Iface.NDm1)
				p := fb.Partners[0]
				x.sendReqs = append(x.sendReqs, x.Comm.ISend(p.Rank, tag(fb.EncodedID, slotPush, 0), buf))
			}

		case PartnerRestrictFineAvg:
			for _, p := range fb.Partners {
				n := faceLen(fb.N, x.Iface.NDm1)
				buf := make([]float64, n)
				x.recvFaceInto(fb.OwnerLocalIdx, p.Orthant, buf)
				x.faceReqs = append(x.faceReqs, x.Comm.IRecv(p.Rank, tag(fb.EncodedID, slotPush, p.Orthant), buf))
			}
			// Broadcasts its own just-solved face down to every fine
			// child so each can interpolate its own jump partner (slot 2).
			sendBuf := packFace(ownFace, fb.N, x.Iface.NDm1)
			for _, p := range fb.Partners {
				x.sendReqs = append(x.sendReqs, x.Comm.ISend(p.Rank, tag(fb.EncodedID, slotBcast, p.Orthant), sendBuf))
			}

		case PartnerInterpolateCoarse:
			p := fb.Partners[0]
			ownerEncID := partnerEncID(p, nd)
			sendBuf := packFace(ownFace, fb.N, x.Iface.NDm1)
			x.sendReqs = append(x.sendReqs, x.Comm.ISend(p.Rank, tag(ownerEncID, slotPush, p.Orthant), sendBuf))

			n := faceLen(fb.N, x.Iface.NDm1)
			buf := make([]float64, n)
			x.recvFaceInto(fb.OwnerLocalIdx, p.Orthant, buf)
			x.faceReqs = append(x.faceReqs, x.Comm.IRecv(p.Rank, tag(ownerEncID, slotBcast, p.Orthant), buf))
		}
	}
	x.st = busy
	return nil
}

func (x *IfaceExchange) recvFaceInto(ownedIdx int, orthant geom.Orthant, buf []float64) {
	slots, ok := x.faceRecv[ownedIdx]
	if !ok {
		slots = make(map[geom.Orthant][]float64)
		x.faceRecv[ownedIdx] = slots
	}
	slots[orthant] = buf
}

// PushFaceFinish blocks until every face exchange posted by the matching
// Start has completed.
func (x *IfaceExchange) PushFaceFinish() error {
	if x.st != busy {
		return protocolErr("schur.IfaceExchange.PushFaceFinish: no exchange in flight")
	}
	if err := comm.WaitAll(x.sendReqs); err != nil {
		return err
	}
	if err := comm.WaitAll(x.faceReqs); err != nil {
		return err
	}
	x.st = idle
	return nil
}

// PartnerFace returns the jump partner's value for the Owned interface at
// ownedIdx, resolved to that interface's own resolution: the single
// received face for Normal and FineSide, or the restrict-average of every
// received fine child for CoarseSide.
func (x *IfaceExchange) PartnerFace(ownedIdx int) ld.LocalData {
	o := x.Iface.Owned[ownedIdx]
	ndm1 := x.Iface.NDm1
	slots := x.faceRecv[ownedIdx]

	switch o.Kind {
	case KindNormal:
		return faceView(slots[geom.Orthant(0)], o.N, ndm1)

	case KindFineSide:
		dst := make([]float64, faceLen(o.N, ndm1))
		dstView := faceView(dst, o.N, ndm1)
		bi := x.Iface.OwnerBinding[ownedIdx]
		orthant := x.Iface.Bindings[bi].Partners[0].Orthant
		interpFaceOrthant(dstView, faceView(slots[orthant], o.N, ndm1), orthant, o.N, ndm1)
		return dstView

	case KindCoarseSide:
		dst := make([]float64, faceLen(o.N, ndm1))
		dstView := faceView(dst, o.N, ndm1)
		bi := x.Iface.OwnerBinding[ownedIdx]
		for _, p := range x.Iface.Bindings[bi].Partners {
			restrictFaceOrthant(dstView, faceView(slots[p.Orthant], o.N, ndm1), p.Orthant, o.N, ndm1)
		}
		return dstView
	}
	return ld.LocalData{}
}
