// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package schur enumerates the canonical (D-1)-dimensional interfaces
// between neighboring patches, lays them out as a rank-contiguous Vector,
// and implements the Schur-complement apply Sγ = γ − jump(solve(0,γ)) on
// top of a solve.PatchSolver.
package schur

import (
	"github.com/patchdd/thunderegg/domain"
	"github.com/patchdd/thunderegg/geom"
)

// EncodedID is the identity of the interface that patch patchID's side s
// touches: both patches sharing a side can derive the same value from only
// their own PatchInfo, with no communication, exactly as geom.Side.Index's
// doc comment describes (id*NumSides(nd) + side.Index()).
func EncodedID(patchID int, s geom.Side, nd int) int {
	return patchID*geom.NumSides(nd) + s.Index()
}

// IfaceKind tags what an interface represents.
type IfaceKind int

const (
	// KindNormal is a same-resolution interface between two equal-level
	// patches; canonical ownership goes to the lower patch id.
	KindNormal IfaceKind = iota
	// KindCoarseSide is the coarse-resolution interface on a patch's side
	// that has finer neighbors; always owned by the coarse patch.
	KindCoarseSide
	// KindFineSide is a fine-resolution sub-interface on a fine patch's
	// side that neighbors a coarser patch; always owned by the fine patch.
	KindFineSide
)

func (k IfaceKind) String() string {
	switch k {
	case KindNormal:
		return "normal"
	case KindCoarseSide:
		return "coarse-side"
	case KindFineSide:
		return "fine-side"
	}
	return "ifacekind(?)"
}

// PartnerKind says how a FaceBinding's jump partner value must be obtained
// relative to this binding's own resolution.
type PartnerKind int

const (
	// PartnerNone: the partner is a single equal-resolution face (Normal).
	PartnerNone PartnerKind = iota
	// PartnerRestrictFineAvg: the partner value is the 2^(ND-1)-point
	// average of several finer faces (this binding is a CoarseSide).
	PartnerRestrictFineAvg
	// PartnerInterpolateCoarse: the partner value is one orthant of a
	// coarser face, injected at this binding's resolution (FineSide).
	PartnerInterpolateCoarse
)

// PartnerPatch names one remote-or-local patch/side whose solved face
// value this binding's jump computation needs, and (for a refinement-jump
// relation) which orthant of the coarse face it occupies.
type PartnerPatch struct {
	PatchID int
	Rank    int
	Side    geom.Side
	Orthant geom.Orthant
}

// FaceBinding is one local patch side that touches an interface: where its
// γ value comes from, where its own solved face value must be reported to,
// and (for a refinement jump) how the two sides' resolutions reconcile.
type FaceBinding struct {
	LocalPatchIdx int
	Side          geom.Side
	EncodedID     int
	Kind          IfaceKind
	N             int

	// Owned is true when this rank holds the EncodedID interface's
	// storage; OwnerLocalIdx then indexes InterfaceDomain.Owned. When
	// false, OwnerRank names the rank that does.
	Owned         bool
	OwnerLocalIdx int
	OwnerRank     int

	// IsCanonicalSite is true exactly for the binding that created the
	// Owned entry at construction time (NbrNormal's lower-id side,
	// NbrFine's coarse side, NbrCoarse's fine side); false only for
	// NbrNormal's higher-id side, which may still end up Owned==true via
	// a same-rank alias resolved after construction.
	IsCanonicalSite bool

	Partner  PartnerKind
	Partners []PartnerPatch
}

// OwnedIface is one interface this rank stores: a dense GlobalID (rank
// contiguous) plus the EncodedID every touching rank computes it by.
type OwnedIface struct {
	EncodedID int
	GlobalID  int
	Kind      IfaceKind
	N         int
}

// InterfaceDomain is the per-rank enumeration of a Domain's interfaces:
// which ones this rank owns (and stores in its interface Vector), and how
// every local patch side relates to its interface (owned directly, or via
// a partner this rank must exchange with).
type InterfaceDomain struct {
	Domain   *domain.Domain
	NDm1     int
	Bindings []FaceBinding
	Owned    []OwnedIface

	// OwnerBinding maps an index into Owned to the index into Bindings of
	// the FaceBinding that holds that interface's own solved-face data
	// (IsCanonicalSite==true: the lower-id Normal side, or the patch that
	// owns a CoarseSide/FineSide sub-interface).
	OwnerBinding []int

	ownedIndex map[int]int     // EncodedID -> index into Owned
	bySide     map[sideKey]int // (local patch, side) -> index into Bindings
}

type sideKey struct {
	localIdx int
	side     geom.Side
}

// BindingAt returns the FaceBinding for local patch li's side s, and
// whether one exists (false if s has no neighbor).
func (id *InterfaceDomain) BindingAt(li int, s geom.Side) (*FaceBinding, bool) {
	idx, ok := id.bySide[sideKey{li, s}]
	if !ok {
		return nil, false
	}
	return &id.Bindings[idx], true
}

// NewInterfaceDomain walks every local patch of d and builds the canonical
// interface enumeration described in SPEC_FULL.md §4.6: one interface per
// canonical side (lower id wins for an equal-level pair; the coarse side
// of a refinement jump is always canonical), plus one fine sub-interface
// per fine neighbor, each fine patch owning its own.
func NewInterfaceDomain(d *domain.Domain) *InterfaceDomain {
	id := &InterfaceDomain{Domain: d, NDm1: d.ND - 1, ownedIndex: make(map[int]int), bySide: make(map[sideKey]int)}
	myRank := d.Comm.Rank()

	own := func(encID int, kind IfaceKind, n int) int {
		if idx, ok := id.ownedIndex[encID]; ok {
			return idx
		}
		idx := len(id.Owned)
		id.Owned = append(id.Owned, OwnedIface{EncodedID: encID, Kind: kind, N: n})
		id.ownedIndex[encID] = idx
		id.OwnerBinding = append(id.OwnerBinding, -1)
		return idx
	}

	appendBinding := func(li int, s geom.Side, fb FaceBinding) {
		bidx := len(id.Bindings)
		id.bySide[sideKey{li, s}] = bidx
		id.Bindings = append(id.Bindings, fb)
		if fb.IsCanonicalSite {
			id.OwnerBinding[fb.OwnerLocalIdx] = bidx
		}
	}

	for li := 0; li < d.NumLocalPatches(); li++ {
		pi := d.PatchByLocalIndex(li)
		for _, s := range geom.Sides(pi.ND) {
			if !pi.HasNbr(s) {
				continue
			}
			switch pi.NbrType(s) {
			case domain.NbrNormal:
				nb := pi.GetNormalNbrInfo(s)
				fb := FaceBinding{LocalPatchIdx: li, Side: s, Kind: KindNormal, N: pi.N, Partner: PartnerNone,
					Partners: []PartnerPatch{{PatchID: nb.ID, Rank: nb.Rank, Side: s.Opposite()}}}
				if pi.ID < nb.ID {
					fb.EncodedID = EncodedID(pi.ID, s, pi.ND)
					fb.Owned = true
					fb.IsCanonicalSite = true
					fb.OwnerLocalIdx = own(fb.EncodedID, KindNormal, pi.N)
				} else {
					fb.EncodedID = EncodedID(nb.ID, s.Opposite(), pi.ND)
					fb.OwnerRank = nb.Rank
				}
				appendBinding(li, s, fb)

			case domain.NbrFine:
				fn := pi.GetFineNbrInfo(s)
				encID := EncodedID(pi.ID, s, pi.ND)
				partners := make([]PartnerPatch, len(fn.IDs))
				orthants := geom.FaceOrthants(pi.ND)
				for k := range fn.IDs {
					partners[k] = PartnerPatch{PatchID: fn.IDs[k], Rank: fn.Ranks[k], Side: s.Opposite(), Orthant: orthants[k]}
				}
				fb := FaceBinding{LocalPatchIdx: li, Side: s, EncodedID: encID, Kind: KindCoarseSide, N: pi.N,
					Partner: PartnerRestrictFineAvg, Partners: partners,
					Owned: true, IsCanonicalSite: true, OwnerLocalIdx: own(encID, KindCoarseSide, pi.N)}
				appendBinding(li, s, fb)

			case domain.NbrCoarse:
				cn := pi.GetCoarseNbrInfo(s)
				encID := EncodedID(pi.ID, s, pi.ND)
				fb := FaceBinding{LocalPatchIdx: li, Side: s, EncodedID: encID, Kind: KindFineSide, N: pi.N,
					Partner: PartnerInterpolateCoarse,
					Partners: []PartnerPatch{{PatchID: cn.ID, Rank: cn.Rank, Side: s.Opposite(), Orthant: cn.OrthantOnCoarse}},
					Owned:   true, IsCanonicalSite: true, OwnerLocalIdx: own(encID, KindFineSide, pi.N)}
				appendBinding(li, s, fb)
			}
		}
	}

	// A non-owned binding whose owner turns out to be local too (same-rank
	// neighbor pair) resolves to a direct local lookup, not an exchange.
	for i := range id.Bindings {
		fb := &id.Bindings[i]
		if fb.Owned {
			continue
		}
		if idx, ok := id.ownedIndex[fb.EncodedID]; ok {
			fb.Owned = true
			fb.OwnerLocalIdx = idx
		}
	}

	id.assignGlobalIDs(myRank)
	return id
}

// assignGlobalIDs gives every Owned interface a dense, rank-contiguous
// GlobalID: this rank's block starts at the sum of every lower rank's
// Owned count, obtained with one AllgatherInts collective.
func (id *InterfaceDomain) assignGlobalIDs(myRank int) {
	counts := id.Domain.Comm.AllgatherInts(len(id.Owned))
	base := 0
	for r := 0; r < myRank; r++ {
		base += counts[r]
	}
	for i := range id.Owned {
		id.Owned[i].GlobalID = base + i
	}
}
