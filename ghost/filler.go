// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ghost implements the two-phase MPI ghost-cell exchange every
// patch operator depends on: same-rank neighbors are copied directly,
// cross-rank neighbors are packed, sent, and received nonblockingly, and
// interface jumps in refinement level are bridged by face averaging
// (fine to coarse) and by an interpolation (coarse to fine) that is
// quadratic along the interface and linear across it: it is exact for
// fields that are quadratic in-plane and linear in the normal direction,
// not for fields with curvature across the interface.
package ghost

import (
	"github.com/cpmech/gosl/chk"

	"github.com/patchdd/thunderegg/comm"
	"github.com/patchdd/thunderegg/domain"
	"github.com/patchdd/thunderegg/geom"
	"github.com/patchdd/thunderegg/vec"
)

// state tracks the filler's single-in-flight exchange protocol.
type state int

const (
	idle state = iota
	busy
)

// ErrProtocol is returned when a caller violates the single-in-flight
// contract: starting a second exchange before finishing the first, or
// finishing without a matching Start.
type ErrProtocol struct {
	msg string
}

func (e *ErrProtocol) Error() string { return e.msg }

func protocolErr(msg string) error { return &ErrProtocol{msg: msg} }

// inflight tracks one posted cross-rank equal-level exchange.
type inflight struct {
	sendReq *comm.Request
	recvReq *comm.Request
	recvBuf []float64
	patch   *domain.PatchInfo
	side    geom.Side
	comp    int
}

// fineInflight tracks a coarse patch's posted receive of a remote fine
// neighbor's raw face, averaged down into this patch's ghost on Finish.
type fineInflight struct {
	req       *comm.Request
	buf       []float64
	selfLocal int
	side      geom.Side
	comp      int
	orthant   geom.Orthant
	n         int
}

// coarseInflight tracks a fine patch's posted receive of a remote coarse
// neighbor's raw face layer followed by the next layer back, interpolated
// up into this patch's ghost on Finish.
type coarseInflight struct {
	req       *comm.Request
	buf       []float64
	selfLocal int
	side      geom.Side
	comp      int
	orthant   geom.Orthant
	n         int
}

// Filler is the MPIGhostFiller: given a Domain and a ghost depth, fills
// every local patch's ghost layer from its neighbors, whether same-rank,
// cross-rank, or across a 2:1 refinement jump.
type Filler struct {
	Domain *domain.Domain
	G      int

	st      state
	pending vec.Vector
	inputs  []inflight
	fineRecv   []fineInflight
	coarseRecv []coarseInflight
	sendOnly   []*comm.Request
}

// New returns a Filler over d with ghost depth g (at least 1).
func New(d *domain.Domain, g int) *Filler {
	if g < 1 {
		chk.Panic("ghost.New: ghost depth must be >= 1; got %d", g)
	}
	return &Filler{Domain: d, G: g}
}

// FillGhost fills every ghost cell of v, blocking until every cross-rank
// exchange it posts has completed. Equivalent to Start followed by Finish.
func (f *Filler) FillGhost(v vec.Vector) error {
	if err := f.Start(v); err != nil {
		return err
	}
	return f.Finish()
}

// Start posts the local-patch fills immediately and the cross-rank
// sends/receives nonblockingly, returning without waiting for them to
// complete. Only one Start may be outstanding per Filler; a second Start
// before Finish returns ErrProtocol.
func (f *Filler) Start(v vec.Vector) error {
	if f.st != idle {
		return protocolErr("ghost.Filler.Start: an exchange is already in flight; call Finish first")
	}
	f.pending = v
	f.inputs = f.inputs[:0]
	f.fineRecv = f.fineRecv[:0]
	f.coarseRecv = f.coarseRecv[:0]
	f.sendOnly = f.sendOnly[:0]

	c := f.Domain.Comm
	for li := 0; li < f.Domain.NumLocalPatches(); li++ {
		pi := f.Domain.PatchByLocalIndex(li)
		for _, s := range geom.Sides(f.Domain.ND) {
			if !pi.HasNbr(s) {
				continue
			}
			switch pi.NbrType(s) {
			case domain.NbrNormal:
				nb := pi.GetNormalNbrInfo(s)
				if nb.Rank == c.Rank() {
					f.fillEqualLocal(v, li, pi, s, nb.ID)
				} else {
					f.postEqualRemote(v, li, pi, s, nb.ID, nb.Rank)
				}
			case domain.NbrFine:
				fn := pi.GetFineNbrInfo(s)
				orthants := geom.FaceOrthants(f.Domain.ND)
				for oi, o := range orthants {
					id, rank := fn.IDs[oi], fn.Ranks[oi]
					if rank == c.Rank() {
						f.fillFineFromLocalCoarse(v, li, pi, s, id, o)
					} else {
						f.postFineRemote(v, li, pi, s, id, rank, o)
					}
				}
			case domain.NbrCoarse:
				cn := pi.GetCoarseNbrInfo(s)
				if cn.Rank == c.Rank() {
					// fillCoarseFromLocalFine fills the COARSE patch's
					// ghost, so selfLocal/s must name the coarse side of
					// the interface and fineID this (fine) patch itself.
					coarseLocal := mustLocalIndex(f.Domain, cn.ID)
					f.fillCoarseFromLocalFine(v, coarseLocal, pi, s.Opposite(), pi.ID, cn.OrthantOnCoarse)
				} else {
					f.postCoarseRemote(v, li, pi, s, cn.ID, cn.Rank, cn.OrthantOnCoarse)
				}
			}
		}
	}
	f.st = busy
	return nil
}

// Finish blocks until every exchange posted by the matching Start has
// completed, then deposits the received data as ghosts. Calling Finish
// without a matching Start returns ErrProtocol.
func (f *Filler) Finish() error {
	if f.st != busy {
		return protocolErr("ghost.Filler.Finish: no exchange in flight; call Start first")
	}
	for _, in := range f.inputs {
		if in.sendReq != nil {
			if err := in.sendReq.Wait(); err != nil {
				return err
			}
		}
		if in.recvReq != nil {
			if err := in.recvReq.Wait(); err != nil {
				return err
			}
			lda := f.pending.LocalData(mustLocalIndex(f.Domain, in.patch.ID), in.comp)
			depositEqual(lda, in.side, f.G, in.recvBuf)
		}
	}
	for _, req := range f.sendOnly {
		if err := req.Wait(); err != nil {
			return err
		}
	}
	for _, in := range f.fineRecv {
		if err := in.req.Wait(); err != nil {
			return err
		}
		faceND := f.Domain.ND - 1
		fineFace := wrapFace(in.buf, faceND, in.n)
		self := f.pending.LocalData(in.selfLocal, in.comp)
		coarseGhost := self.GhostSliceOnSide(in.side, 1)
		averageOrthantIntoCoarse(coarseGhost, fineFace, in.orthant, in.n)
	}
	for _, in := range f.coarseRecv {
		if err := in.req.Wait(); err != nil {
			return err
		}
		faceND := f.Domain.ND - 1
		faceCount := pow(in.n, faceND)
		coarseFace := wrapFace(in.buf[:faceCount], faceND, in.n)
		coarseInner := wrapFace(in.buf[faceCount:], faceND, in.n)
		self := f.pending.LocalData(in.selfLocal, in.comp)
		fineGhost := self.GhostSliceOnSide(in.side, 1)
		quadraticUpsampleIntoFine(fineGhost, coarseFace, coarseInner, in.orthant, in.n)
	}
	f.inputs = f.inputs[:0]
	f.fineRecv = f.fineRecv[:0]
	f.coarseRecv = f.coarseRecv[:0]
	f.sendOnly = f.sendOnly[:0]
	f.pending = nil
	f.st = idle
	return nil
}

func mustLocalIndex(d *domain.Domain, id int) int {
	idx, ok := d.LocalIndex(id)
	if !ok {
		chk.Panic("ghost: patch %d is not local", id)
	}
	return idx
}
