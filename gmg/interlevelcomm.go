// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gmg implements geometric multigrid over the same Domain/Vector
// machinery the ghost filler and patch operators use: InterLevelComm moves
// whole-patch data between a fine Domain and its coarser parent Domain,
// Restrictor/Interpolator transfer fields across that comm, a Smoother
// relaxes a level in place, and Level/VCycle assemble the classic
// finest-to-coarsest correction scheme.
package gmg

import (
	"github.com/cpmech/gosl/chk"

	"github.com/patchdd/thunderegg/comm"
	"github.com/patchdd/thunderegg/domain"
	"github.com/patchdd/thunderegg/vec"
)

// state tracks InterLevelComm's single-in-flight exchange protocol, the same
// idle/busy contract ghost.Filler uses.
type state int

const (
	idle state = iota
	busy
)

// ErrProtocol is returned when a caller violates the single-in-flight
// contract: starting a second exchange before finishing the first, or
// finishing without a matching Start, or finishing with a mismatched vector
// pair.
type ErrProtocol struct {
	msg string
}

func (e *ErrProtocol) Error() string { return e.msg }

func protocolErr(msg string) error { return &ErrProtocol{msg: msg} }

// LocalPair names a (coarse, fine) patch pair that live on the same rank:
// no exchange is needed, a Restrictor/Interpolator reads and writes both
// LocalData views directly.
type LocalPair struct {
	CoarseLocal int
	FineLocal   int
}

// GhostPair names a fine patch whose coarse parent lives on another rank.
// GhostLocal indexes the scratch vector GetNewGhostVector allocates; once an
// exchange has completed, slot GhostLocal holds that parent's data.
type GhostPair struct {
	FineLocal  int
	GhostLocal int
}

// ghostRelation is one fine patch's remote-parent bookkeeping, enough to
// address both exchange directions without a rank-batched send/recv plan:
// InterLevelComm posts one message per relation, the same per-relation
// granularity ghost.Filler uses for its own cross-rank exchanges.
type ghostRelation struct {
	fineID     int
	fineLocal  int
	parentID   int
	parentRank int
	ghostLocal int
}

// childRelation is one coarse patch's remote child, the send/recv
// counterpart of a ghostRelation seen from the parent's side.
type childRelation struct {
	coarseLocal int
	childID     int
	childRank   int
}

// InterLevelComm transfers whole-patch data between a fine Domain and its
// coarser parent Domain, exactly as ThunderEgg's GMG::InterLevelComm does:
// patches with a same-rank parent are paired directly (LocalPairs), patches
// whose parent lives elsewhere exchange through a small per-rank ghost
// vector (GhostPairs plus the Start/Finish pairs below).
type InterLevelComm struct {
	Coarse        *domain.Domain
	Fine          *domain.Domain
	N             int
	NumComponents int

	LocalPairs []LocalPair
	GhostPairs []GhostPair

	ghosts   []ghostRelation
	children []childRelation

	st      state
	sending bool
	vector  vec.Vector
	ghost   vec.Vector
	reqs    []*comm.Request
	recvs   []recvEntry
}

// New classifies every local fine patch into a local-parent or ghost-parent
// relation. Fine and coarse must share a communicator.
func New(coarse, fine *domain.Domain, n, numComponents int) *InterLevelComm {
	ic := &InterLevelComm{Coarse: coarse, Fine: fine, N: n, NumComponents: numComponents}
	myRank := fine.Comm.Rank()
	for fl := 0; fl < fine.NumLocalPatches(); fl++ {
		pf := fine.PatchByLocalIndex(fl)
		if !pf.HasParent {
			continue
		}
		if pf.ParentRank == myRank {
			cl := mustLocalIndex(coarse, pf.ParentID)
			ic.LocalPairs = append(ic.LocalPairs, LocalPair{CoarseLocal: cl, FineLocal: fl})
			continue
		}
		gl := len(ic.ghosts)
		ic.ghosts = append(ic.ghosts, ghostRelation{
			fineID: pf.ID, fineLocal: fl, parentID: pf.ParentID, parentRank: pf.ParentRank, ghostLocal: gl,
		})
		ic.GhostPairs = append(ic.GhostPairs, GhostPair{FineLocal: fl, GhostLocal: gl})
	}
	for cl := 0; cl < coarse.NumLocalPatches(); cl++ {
		pc := coarse.PatchByLocalIndex(cl)
		for i, childID := range pc.ChildIDs {
			childRank := pc.ChildRanks[i]
			if childRank == myRank {
				continue
			}
			ic.children = append(ic.children, childRelation{coarseLocal: cl, childID: childID, childRank: childRank})
		}
	}
	return ic
}

// GetNewGhostVector allocates the rank-local scratch vector GhostPairs index
// into: one N^ND-cell, no-ghost-layer patch per remote-parent relation.
func (ic *InterLevelComm) GetNewGhostVector() vec.Vector {
	return vec.NewValVector(ic.Coarse.Comm, ic.Coarse.ND, ic.N, 0, ic.NumComponents, len(ic.ghosts))
}

// GetGhostPatchesStart posts the forward exchange: every coarse patch with a
// remote child sends its own data, every ghost relation posts a matching
// receive that will overwrite ghost's slot on Finish. v is the coarse-level
// vector being read; ghost is the scratch vector GetNewGhostVector returned.
func (ic *InterLevelComm) GetGhostPatchesStart(v, ghost vec.Vector) error {
	if ic.st != idle {
		return protocolErr("gmg.InterLevelComm.GetGhostPatchesStart: an exchange is already in flight")
	}
	ic.vector, ic.ghost, ic.sending = v, ghost, false
	ic.reqs = ic.reqs[:0]
	ic.recvs = ic.recvs[:0]
	for _, ch := range ic.children {
		for comp := 0; comp < ic.NumComponents; comp++ {
			buf := packPatch(v.LocalData(ch.coarseLocal, comp), ic.N, ic.Coarse.ND)
			ic.reqs = append(ic.reqs, ic.Coarse.Comm.ISend(ch.childRank, tagFor(ch.childID, comp), buf))
		}
	}
	for _, g := range ic.ghosts {
		for comp := 0; comp < ic.NumComponents; comp++ {
			buf := make([]float64, cellCount(ic.N, ic.Coarse.ND))
			req := ic.Fine.Comm.IRecv(g.parentRank, tagFor(g.fineID, comp), buf)
			ic.reqs = append(ic.reqs, req)
			ic.pendingRecv(g.ghostLocal, comp, buf, false)
		}
	}
	ic.st = busy
	return nil
}

// GetGhostPatchesFinish blocks until the forward exchange posted by
// GetGhostPatchesStart has completed and deposits every receive into ghost.
func (ic *InterLevelComm) GetGhostPatchesFinish() error {
	return ic.finish(false)
}

// SendGhostPatchesStart posts the reverse exchange: every ghost relation
// sends its fine patch's own data up to the coarse owner, which will add it
// into its local patch on Finish (the restriction accumulation direction).
func (ic *InterLevelComm) SendGhostPatchesStart(v, ghost vec.Vector) error {
	if ic.st != idle {
		return protocolErr("gmg.InterLevelComm.SendGhostPatchesStart: an exchange is already in flight")
	}
	ic.vector, ic.ghost, ic.sending = v, ghost, true
	ic.reqs = ic.reqs[:0]
	ic.recvs = ic.recvs[:0]
	for _, g := range ic.ghosts {
		for comp := 0; comp < ic.NumComponents; comp++ {
			buf := packPatch(ghost.LocalData(g.ghostLocal, comp), ic.N, ic.Fine.ND)
			ic.reqs = append(ic.reqs, ic.Fine.Comm.ISend(g.parentRank, tagFor(g.fineID, comp), buf))
		}
	}
	for _, ch := range ic.children {
		for comp := 0; comp < ic.NumComponents; comp++ {
			buf := make([]float64, cellCount(ic.N, ic.Coarse.ND))
			req := ic.Coarse.Comm.IRecv(ch.childRank, tagFor(ch.childID, comp), buf)
			ic.reqs = append(ic.reqs, req)
			ic.pendingRecv(ch.coarseLocal, comp, buf, true)
		}
	}
	ic.st = busy
	return nil
}

// SendGhostPatchesFinish blocks until the reverse exchange posted by
// SendGhostPatchesStart has completed and adds every receive into v.
func (ic *InterLevelComm) SendGhostPatchesFinish() error {
	return ic.finish(true)
}

// recvEntry is a posted receive awaiting deposit: overwrite (Get direction)
// into the ghost vector, or add (Send direction) into the coarse vector.
type recvEntry struct {
	localIndex int
	comp       int
	buf        []float64
	intoCoarse bool
}

func (ic *InterLevelComm) pendingRecv(localIndex, comp int, buf []float64, intoCoarse bool) {
	ic.recvs = append(ic.recvs, recvEntry{localIndex: localIndex, comp: comp, buf: buf, intoCoarse: intoCoarse})
}

func (ic *InterLevelComm) finish(sending bool) error {
	if ic.st != busy {
		return protocolErr("gmg.InterLevelComm: no exchange in flight; call a Start method first")
	}
	if ic.sending != sending {
		return protocolErr("gmg.InterLevelComm: Finish direction does not match the posted Start")
	}
	if err := comm.WaitAll(ic.reqs); err != nil {
		return err
	}
	for _, r := range ic.recvs {
		var dst vec.Vector
		if r.intoCoarse {
			dst = ic.vector
		} else {
			dst = ic.ghost
		}
		lda := dst.LocalData(r.localIndex, r.comp)
		if r.intoCoarse {
			unpackAdd(lda, r.buf, ic.N, ic.Coarse.ND)
		} else {
			unpackSet(lda, r.buf, ic.N, ic.Fine.ND)
		}
	}
	ic.reqs = ic.reqs[:0]
	ic.recvs = ic.recvs[:0]
	ic.vector, ic.ghost = nil, nil
	ic.st = idle
	return nil
}

func mustLocalIndex(d *domain.Domain, id int) int {
	idx, ok := d.LocalIndex(id)
	if !ok {
		chk.Panic("gmg: patch %d is not local", id)
	}
	return idx
}

// tagFor derives a message tag that is unique for (patchID, component) pairs
// within this exchange; patch ids are globally unique so no rank-pair
// coordination is needed to avoid collisions.
func tagFor(patchID, comp int) int { return patchID*8 + comp }
