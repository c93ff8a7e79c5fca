// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package domain

import (
	"github.com/cpmech/gosl/chk"

	"github.com/patchdd/thunderegg/geom"
)

// PatchInfo is the per-patch geometric record: a logically rectangular
// block of N^ND cells at a given refinement Level, plus one NbrInfo per
// side. Set by a Domain builder and frozen once the Domain is finalized;
// nothing in this package mutates a PatchInfo after that point.
type PatchInfo struct {
	ID    int
	Rank  int
	ND    int
	N     int // cells per axis
	Level int

	// Spacings and Origin both have length ND.
	Spacings []float64
	Origin   []float64

	// ParentID/ParentRank/OrthantOnParent are only meaningful when this
	// patch has a coarser parent (Level > 0); OrthantOnParent is this
	// patch's child index in {0,...,2^ND-1} within its parent.
	HasParent       bool
	ParentID        int
	ParentRank      int
	OrthantOnParent geom.Orthant

	// ChildIDs/ChildRanks are only meaningful when this patch has been
	// refined into 2^ND children; both empty otherwise.
	ChildIDs   []int
	ChildRanks []int

	nbrs      []NbrInfo // indexed by geom.Side
	neumann   []bool    // indexed by geom.Side; only consulted where nbrs[s].Type == NbrNone
	finalized bool
}

// NewPatchInfo allocates a PatchInfo with every side defaulted to NbrNone
// and not Neumann (i.e. homogeneous Dirichlet on every untouched boundary).
// Callers set neighbors with SetNbr/SetNeumann before the owning Domain
// calls Finalize.
func NewPatchInfo(id, rank, nd, n, level int, spacings, origin []float64) *PatchInfo {
	if nd != 2 && nd != 3 {
		chk.Panic("domain.NewPatchInfo: nd must be 2 or 3; got %d", nd)
	}
	if len(spacings) != nd || len(origin) != nd {
		chk.Panic("domain.NewPatchInfo: spacings/origin must have length %d", nd)
	}
	ns := geom.NumSides(nd)
	pi := &PatchInfo{
		ID: id, Rank: rank, ND: nd, N: n, Level: level,
		Spacings: spacings, Origin: origin,
		nbrs:    make([]NbrInfo, ns),
		neumann: make([]bool, ns),
	}
	for i := range pi.nbrs {
		pi.nbrs[i] = NoNbr()
	}
	return pi
}

// SetNbr assigns the neighbor relation on the given side. Panics if the
// PatchInfo has already been finalized.
func (pi *PatchInfo) SetNbr(s geom.Side, info NbrInfo) {
	pi.checkMutable()
	pi.nbrs[s.Index()] = info
}

// SetNeumann flags a physical boundary (a NbrNone side) as Neumann rather
// than the default homogeneous Dirichlet. Panics if the side has a
// neighbor: Neumann only makes sense on a true physical boundary.
func (pi *PatchInfo) SetNeumann(s geom.Side, neumann bool) {
	pi.checkMutable()
	if pi.nbrs[s.Index()].HasNbr() {
		chk.Panic("domain.PatchInfo.SetNeumann: side %v has a neighbor, not a physical boundary", s)
	}
	pi.neumann[s.Index()] = neumann
}

// Finalize freezes this PatchInfo; every subsequent SetNbr/SetNeumann call
// panics.
func (pi *PatchInfo) Finalize() { pi.finalized = true }

func (pi *PatchInfo) checkMutable() {
	if pi.finalized {
		chk.Panic("domain.PatchInfo: patch %d is finalized and immutable", pi.ID)
	}
}

// HasNbr reports whether side s has any neighbor.
func (pi *PatchInfo) HasNbr(s geom.Side) bool {
	return pi.nbrs[s.Index()].HasNbr()
}

// NbrType returns the neighbor tag on side s.
func (pi *PatchInfo) NbrType(s geom.Side) NbrType {
	return pi.nbrs[s.Index()].Type
}

// GetNormalNbrInfo returns the equal-level neighbor on side s, panicking if
// side s is not a NbrNormal side.
func (pi *PatchInfo) GetNormalNbrInfo(s geom.Side) NormalNbrInfo {
	return pi.nbrs[s.Index()].Normal()
}

// GetFineNbrInfo returns the finer neighbors on side s, panicking if side s
// is not a NbrFine side.
func (pi *PatchInfo) GetFineNbrInfo(s geom.Side) FineNbrInfo {
	return pi.nbrs[s.Index()].Fine()
}

// GetCoarseNbrInfo returns the coarser neighbor on side s, panicking if side
// s is not a NbrCoarse side.
func (pi *PatchInfo) GetCoarseNbrInfo(s geom.Side) CoarseNbrInfo {
	return pi.nbrs[s.Index()].Coarse()
}

// IsNeumann reports whether side s is a physical boundary flagged Neumann.
// Always false on a side that has a neighbor.
func (pi *PatchInfo) IsNeumann(s geom.Side) bool {
	if pi.nbrs[s.Index()].HasNbr() {
		return false
	}
	return pi.neumann[s.Index()]
}

// RealCoordBound maps a face coordinate (the ND-1 length coordinate
// produced by slicing along side s) to the ND physical coordinate of that
// boundary point: a cell center on every in-plane axis, and the boundary
// position itself (not a cell center) on s's own axis.
func (pi *PatchInfo) RealCoordBound(faceCoord []int, s geom.Side) []float64 {
	axis := s.Axis()
	out := make([]float64, pi.ND)
	fi := 0
	for i := 0; i < pi.ND; i++ {
		if i == axis {
			if s.IsLowerOnAxis() {
				out[i] = pi.Origin[i]
			} else {
				out[i] = pi.Origin[i] + float64(pi.N)*pi.Spacings[i]
			}
			continue
		}
		out[i] = pi.Origin[i] + (float64(faceCoord[fi])+0.5)*pi.Spacings[i]
		fi++
	}
	return out
}
