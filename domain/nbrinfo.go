// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package domain holds the per-patch geometric record (PatchInfo), its
// tagged neighbor relations (NbrInfo), and the rank-local collection of
// patches with a global id to local index map (Domain).
package domain

import (
	"github.com/cpmech/gosl/chk"

	"github.com/patchdd/thunderegg/geom"
)

// NbrType tags which variant an NbrInfo currently holds.
type NbrType int

const (
	// NbrNone marks a side with no neighbor: a physical boundary.
	NbrNone NbrType = iota
	// NbrNormal marks a side with one neighbor of equal refinement level.
	NbrNormal
	// NbrFine marks a side with 2^(ND-1) neighbors one level finer.
	NbrFine
	// NbrCoarse marks a side with one neighbor one level coarser.
	NbrCoarse
)

func (t NbrType) String() string {
	switch t {
	case NbrNone:
		return "none"
	case NbrNormal:
		return "normal"
	case NbrFine:
		return "fine"
	case NbrCoarse:
		return "coarse"
	}
	return "nbrtype(?)"
}

// NormalNbrInfo is the payload for an equal-level neighbor.
type NormalNbrInfo struct {
	ID   int
	Rank int
}

// FineNbrInfo is the payload for 2^(ND-1) neighbors one level finer, stored
// in the canonical face-orthant order from geom.FaceOrthants.
type FineNbrInfo struct {
	IDs   []int
	Ranks []int
}

// CoarseNbrInfo is the payload for one neighbor one level coarser, plus
// which child-orthant of the coarse face this patch occupies.
type CoarseNbrInfo struct {
	ID             int
	Rank           int
	OrthantOnCoarse geom.Orthant
}

// NbrInfo is a tagged union: exactly one of Normal/Fine/Coarse is valid,
// selected by Type. Go has no sum types, so this is the idiomatic
// tagged-struct substitute for ThunderEgg's NbrInfo class hierarchy;
// accessors panic loudly rather than silently returning a zero value when
// called against the wrong tag, the same contract a failed dynamic_cast
// would have given the original.
type NbrInfo struct {
	Type   NbrType
	normal NormalNbrInfo
	fine   FineNbrInfo
	coarse CoarseNbrInfo
}

// NoNbr returns the NbrInfo for a physical boundary.
func NoNbr() NbrInfo { return NbrInfo{Type: NbrNone} }

// NewNormalNbr returns an equal-level NbrInfo.
func NewNormalNbr(id, rank int) NbrInfo {
	return NbrInfo{Type: NbrNormal, normal: NormalNbrInfo{ID: id, Rank: rank}}
}

// NewFineNbr returns a finer-neighbor NbrInfo. ids/ranks must each have
// len == len(geom.FaceOrthants(nd)).
func NewFineNbr(ids, ranks []int) NbrInfo {
	if len(ids) != len(ranks) {
		chk.Panic("domain.NewFineNbr: len(ids)=%d != len(ranks)=%d", len(ids), len(ranks))
	}
	return NbrInfo{Type: NbrFine, fine: FineNbrInfo{IDs: ids, Ranks: ranks}}
}

// NewCoarseNbr returns a coarser-neighbor NbrInfo.
func NewCoarseNbr(id, rank int, orthant geom.Orthant) NbrInfo {
	return NbrInfo{Type: NbrCoarse, coarse: CoarseNbrInfo{ID: id, Rank: rank, OrthantOnCoarse: orthant}}
}

// HasNbr reports whether this side has any neighbor at all.
func (n NbrInfo) HasNbr() bool { return n.Type != NbrNone }

// Normal returns the normal-neighbor payload, panicking if Type != NbrNormal.
func (n NbrInfo) Normal() NormalNbrInfo {
	if n.Type != NbrNormal {
		chk.Panic("domain.NbrInfo.Normal: called on a %v-type NbrInfo", n.Type)
	}
	return n.normal
}

// Fine returns the fine-neighbor payload, panicking if Type != NbrFine.
func (n NbrInfo) Fine() FineNbrInfo {
	if n.Type != NbrFine {
		chk.Panic("domain.NbrInfo.Fine: called on a %v-type NbrInfo", n.Type)
	}
	return n.fine
}

// Coarse returns the coarse-neighbor payload, panicking if Type != NbrCoarse.
func (n NbrInfo) Coarse() CoarseNbrInfo {
	if n.Type != NbrCoarse {
		chk.Panic("domain.NbrInfo.Coarse: called on a %v-type NbrInfo", n.Type)
	}
	return n.coarse
}
