// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package domain

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/utl"

	"github.com/patchdd/thunderegg/comm"
)

// Domain is one rank's collection of PatchInfo records plus the global id
// to local index map every other package (ghost, operator, schur, gmg)
// uses to find a patch by id. Mirrors gofem's Domain.Vid2node /
// Domain.Cid2elem: a dense lookup built once at assembly time and treated
// as read-only thereafter.
type Domain struct {
	ND      int
	Comm    *comm.Communicator
	Patches []*PatchInfo // local patches, dense index == local index

	globalToLocal map[int]int // global PatchInfo.ID -> index into Patches
	finalized     bool
}

// NewDomain starts an empty, rank-local domain builder.
func NewDomain(c *comm.Communicator, nd int) *Domain {
	if nd != 2 && nd != 3 {
		chk.Panic("domain.NewDomain: nd must be 2 or 3; got %d", nd)
	}
	return &Domain{ND: nd, Comm: c, globalToLocal: make(map[int]int)}
}

// AddPatch appends pi as the next local patch, assigning it the next dense
// local index. Panics if the Domain is already finalized or pi.ID is
// already present.
func (d *Domain) AddPatch(pi *PatchInfo) {
	if d.finalized {
		chk.Panic("domain.Domain.AddPatch: domain is finalized")
	}
	if pi.ND != d.ND {
		chk.Panic("domain.Domain.AddPatch: patch %d has ND=%d, domain has ND=%d", pi.ID, pi.ND, d.ND)
	}
	if _, dup := d.globalToLocal[pi.ID]; dup {
		chk.Panic("domain.Domain.AddPatch: duplicate patch id %d", pi.ID)
	}
	d.globalToLocal[pi.ID] = len(d.Patches)
	d.Patches = append(d.Patches, pi)
}

// Finalize freezes every local patch (see PatchInfo.Finalize) and the
// Domain's own id-to-index map. Local indices are stable for the Domain's
// remaining lifetime, per invariant (d).
func (d *Domain) Finalize() {
	if d.finalized {
		return
	}
	ids := make([]int, len(d.Patches))
	for i, pi := range d.Patches {
		pi.Finalize()
		ids[i] = pi.ID
	}
	if len(utl.IntUnique(ids)) != len(ids) {
		chk.Panic("domain.Domain.Finalize: duplicate patch ids slipped past AddPatch")
	}
	d.finalized = true
}

// NumLocalPatches returns the number of patches this rank owns.
func (d *Domain) NumLocalPatches() int { return len(d.Patches) }

// LocalIndex returns the local index of the patch with the given global id
// and true, or (-1, false) if this rank does not own that patch.
func (d *Domain) LocalIndex(globalID int) (int, bool) {
	idx, ok := d.globalToLocal[globalID]
	if !ok {
		return -1, false
	}
	return idx, ok
}

// PatchByID returns the local patch with the given global id, panicking if
// this rank does not own it. Use LocalIndex first when the caller must
// handle a cross-rank patch gracefully (e.g. in the ghost filler).
func (d *Domain) PatchByID(globalID int) *PatchInfo {
	idx, ok := d.globalToLocal[globalID]
	if !ok {
		chk.Panic("domain.Domain.PatchByID: this rank does not own patch %d", globalID)
	}
	return d.Patches[idx]
}

// PatchByLocalIndex returns the local patch at the given dense local index.
func (d *Domain) PatchByLocalIndex(i int) *PatchInfo {
	return d.Patches[i]
}
