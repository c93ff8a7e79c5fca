// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package domreader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/patchdd/thunderegg/comm"
	"github.com/patchdd/thunderegg/geom"
)

const twoPatchMesh = `{
  "nd": 2,
  "patches": [
    {
      "id": 0, "rank": 0, "level": 0, "n": 4,
      "spacings": [0.25, 0.25], "origin": [0, 0],
      "nbrs": [{"side": 1, "type": "normal", "id": 1, "rank": 0}]
    },
    {
      "id": 1, "rank": 0, "level": 0, "n": 4,
      "spacings": [0.25, 0.25], "origin": [1, 0],
      "nbrs": [{"side": 0, "type": "normal", "id": 0, "rank": 0}]
    }
  ]
}`

func Test_domreader01_reads_two_patch_mesh(tst *testing.T) {

	chk.PrintTitle("domreader01. reads a two-patch JSON mesh into a finalized Domain")

	dir := tst.TempDir()
	path := filepath.Join(dir, "mesh.json")
	if err := os.WriteFile(path, []byte(twoPatchMesh), 0644); err != nil {
		tst.Fatalf("writing fixture: %v", err)
	}

	r := New(path, comm.World())
	d, err := r.ReadDomain()
	if err != nil {
		tst.Fatalf("ReadDomain: %v", err)
	}

	chk.IntAssert(d.NumLocalPatches(), 2)
	chk.IntAssert(d.ND, 2)

	idx0, ok := d.LocalIndex(0)
	if !ok {
		tst.Fatalf("patch 0 not found")
	}
	p0 := d.Patches[idx0]
	if !p0.HasNbr(geom.Side(1)) {
		tst.Fatalf("patch 0 east side should have a normal neighbor")
	}
	nb := p0.GetNormalNbrInfo(geom.Side(1))
	chk.IntAssert(nb.ID, 1)
}

func Test_domreader02_unknown_neighbor_type_errors(tst *testing.T) {

	chk.PrintTitle("domreader02. an unrecognized neighbor type fails the read")

	dir := tst.TempDir()
	path := filepath.Join(dir, "mesh.json")
	bad := `{"nd":2,"patches":[{"id":0,"rank":0,"level":0,"n":4,"spacings":[0.25,0.25],"origin":[0,0],"nbrs":[{"side":1,"type":"bogus"}]}]}`
	if err := os.WriteFile(path, []byte(bad), 0644); err != nil {
		tst.Fatalf("writing fixture: %v", err)
	}

	r := New(path, comm.World())
	if _, err := r.ReadDomain(); err == nil {
		tst.Fatalf("expected an error for an unknown neighbor type")
	}
}
