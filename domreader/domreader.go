// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package domreader implements solve.DomainReader against a JSON mesh
// description: the reference file format this system ships with, parallel
// to gofem's inp package reading a .sim file into a Simulation. Any other
// mesh source (an octree builder, a programmatic generator) is free to
// implement solve.DomainReader directly without going through this
// package.
package domreader

import (
	"encoding/json"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"

	"github.com/patchdd/thunderegg/comm"
	"github.com/patchdd/thunderegg/domain"
	"github.com/patchdd/thunderegg/geom"
)

// NbrData describes one side's neighbor relation in the JSON file. Exactly
// one of the three shapes applies, selected by Type; Go's encoding/json has
// no tagged-union support, so the unused fields are simply left zero,
// mirroring gofem's own FaceBc/SeamBc "extra flags in one struct" style.
type NbrData struct {
	Side int    `json:"side"`
	Type string `json:"type"` // "normal", "fine", "coarse", or "neumann"

	// normal / coarse
	ID   int `json:"id"`
	Rank int `json:"rank"`

	// fine: len(IDs) == len(Ranks) == 2^(ND-1)
	IDs   []int `json:"ids"`
	Ranks []int `json:"ranks"`

	// coarse only
	OrthantOnCoarse int `json:"orthantOnCoarse"`
}

// PatchData is one patch's JSON record.
type PatchData struct {
	ID       int       `json:"id"`
	Rank     int       `json:"rank"`
	Level    int       `json:"level"`
	N        int       `json:"n"`
	Spacings []float64 `json:"spacings"`
	Origin   []float64 `json:"origin"`
	Nbrs     []NbrData `json:"nbrs"`
}

// MeshData is the top-level JSON document: a flat list of patches, every
// rank's portion of a fully decomposed domain. A real deployment would
// typically emit one file per run naming only the patches a given rank
// owns; Reader filters to comm.Rank() at read time either way.
type MeshData struct {
	ND      int         `json:"nd"`
	Patches []PatchData `json:"patches"`
}

// Reader is the reference solve.DomainReader: reads MeshData from Path and
// builds a domain.Domain over Comm, keeping only the patches whose Rank
// matches Comm.Rank().
type Reader struct {
	Path string
	Comm *comm.Communicator
}

// New returns a Reader for the mesh file at path, owned by c.
func New(path string, c *comm.Communicator) *Reader {
	return &Reader{Path: path, Comm: c}
}

// ReadDomain parses r.Path and returns the finalized Domain for r.Comm's
// rank.
func (r *Reader) ReadDomain() (*domain.Domain, error) {
	raw, err := io.ReadFile(r.Path)
	if err != nil {
		return nil, chk.Err("domreader: cannot read mesh file %q: %v", r.Path, err)
	}

	var mesh MeshData
	if err := json.Unmarshal(raw, &mesh); err != nil {
		return nil, chk.Err("domreader: cannot unmarshal mesh file %q: %v", r.Path, err)
	}

	d := domain.NewDomain(r.Comm, mesh.ND)
	rank := r.Comm.Rank()
	for _, pd := range mesh.Patches {
		if pd.Rank != rank {
			continue
		}
		pi := domain.NewPatchInfo(pd.ID, pd.Rank, mesh.ND, pd.N, pd.Level, pd.Spacings, pd.Origin)
		for _, nb := range pd.Nbrs {
			s := geom.Side(nb.Side)
			switch nb.Type {
			case "normal":
				pi.SetNbr(s, domain.NewNormalNbr(nb.ID, nb.Rank))
			case "fine":
				pi.SetNbr(s, domain.NewFineNbr(nb.IDs, nb.Ranks))
			case "coarse":
				pi.SetNbr(s, domain.NewCoarseNbr(nb.ID, nb.Rank, geom.Orthant(nb.OrthantOnCoarse)))
			case "neumann":
				pi.SetNeumann(s, true)
			default:
				return nil, chk.Err("domreader: patch %d side %d: unknown neighbor type %q", pd.ID, nb.Side, nb.Type)
			}
		}
		d.AddPatch(pi)
	}
	d.Finalize()
	return d, nil
}
