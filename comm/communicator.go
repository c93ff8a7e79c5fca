// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package comm threads an explicit MPI communicator through every
// constructor that needs one, rather than reaching for MPI_COMM_WORLD as a
// hidden global. It wraps github.com/cpmech/gosl/mpi's rank/size and
// collective-reduction calls, and adds the nonblocking point-to-point
// transport the ghost filler and InterLevelComm need.
package comm

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/mpi"
)

// Communicator is a thin handle over an MPI communicator. The zero value is
// not valid; use World() or New().
type Communicator struct {
	rank      int
	size      int
	transport transport
}

// World returns the communicator over MPI_COMM_WORLD, the only implicit
// default this package provides. If gosl/mpi has not been started
// (mpi.IsOn() false), it behaves as a single-rank communicator so that
// unit tests can exercise every component without an mpirun launcher.
func World() *Communicator {
	if mpi.IsOn() {
		return &Communicator{rank: mpi.Rank(), size: mpi.Size(), transport: mpiTransport{}}
	}
	return singleRank()
}

// singleRank returns a communicator of size 1, rank 0, backed by the
// in-process goroutine transport. This is what every package's tests use
// (see comm/local_transport.go), and what a solve on a laptop with no
// mpirun falls back to.
func singleRank() *Communicator {
	return &Communicator{rank: 0, size: 1, transport: newLocalTransport(1)[0]}
}

// NewLocalGroup returns `n` communicators that talk to each other over
// in-process channels rather than real MPI ranks, for deterministic tests
// of multi-rank behavior (ghost exchange across a simulated rank boundary,
// InterLevelComm round-trips) without an mpirun launcher.
func NewLocalGroup(n int) []*Communicator {
	if n < 1 {
		chk.Panic("comm.NewLocalGroup: n must be >= 1; got %d", n)
	}
	transports := newLocalTransport(n)
	out := make([]*Communicator, n)
	for i := 0; i < n; i++ {
		out[i] = &Communicator{rank: i, size: n, transport: transports[i]}
	}
	return out
}

// Rank returns this communicator's rank.
func (c *Communicator) Rank() int { return c.rank }

// Size returns the communicator's size.
func (c *Communicator) Size() int { return c.size }

// AllreduceSum returns the sum of local across every rank in the
// communicator (one Allreduce collective), backing Vector.Dot/TwoNorm.
func (c *Communicator) AllreduceSum(local float64) float64 {
	if c.size == 1 {
		return local
	}
	buf := []float64{local}
	mpi.AllReduceSum(buf, make([]float64, 1))
	return buf[0]
}

// AllreduceMax returns the max of local across every rank in the
// communicator (one Allreduce collective), backing Vector.InfNorm.
func (c *Communicator) AllreduceMax(local float64) float64 {
	if c.size == 1 {
		return local
	}
	buf := []float64{local}
	mpi.AllReduceMax(buf, make([]float64, 1))
	return buf[0]
}

// AllgatherInts returns an array of length Size(), where slot i holds the
// value rank i passed as local. Implemented as a single Allreduce-sum over
// a one-hot vector (every rank's other slots are zero), since gosl/mpi
// exposes no dedicated Allgather for this system's small, fixed-size
// per-rank scalars.
func (c *Communicator) AllgatherInts(local int) []int {
	if c.size == 1 {
		return []int{local}
	}
	buf := make([]float64, c.size)
	buf[c.rank] = float64(local)
	mpi.AllReduceSum(buf, make([]float64, c.size))
	out := make([]int, c.size)
	for i, v := range buf {
		out[i] = int(v)
	}
	return out
}

// Barrier blocks until every rank in the communicator has called Barrier.
func (c *Communicator) Barrier() {
	if c.size == 1 {
		return
	}
	mpi.Barrier()
}

// Request is a handle to a pending nonblocking send or receive.
type Request struct {
	wait func() error
}

// Wait blocks until this request completes.
func (r *Request) Wait() error {
	if r == nil {
		return nil
	}
	return r.wait()
}

// WaitAll blocks until every request in reqs has completed, returning the
// first error encountered (if any); it still waits on every request before
// returning, matching MPI_Waitall's all-or-nothing completion semantics.
func WaitAll(reqs []*Request) error {
	var first error
	for _, r := range reqs {
		if err := r.Wait(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// ISend posts a nonblocking send of data to rank dest tagged tag. The
// buffer must not be mutated until the returned Request completes.
func (c *Communicator) ISend(dest, tag int, data []float64) *Request {
	return c.transport.isend(dest, tag, data)
}

// IRecv posts a nonblocking receive of len(data) floats from rank src
// tagged tag into data. The buffer is only valid once the returned Request
// completes.
func (c *Communicator) IRecv(src, tag int, data []float64) *Request {
	return c.transport.irecv(src, tag, data)
}

// transport abstracts point-to-point delivery so the same Communicator API
// serves both real multi-process MPI runs (mpiTransport, backed by
// gosl/mpi) and same-process multi-rank simulation (localTransport, backed
// by goroutines/channels — see SPEC_FULL.md §C for why this is a
// stdlib-concurrency exception rather than a missing third-party dep).
type transport interface {
	isend(dest, tag int, data []float64) *Request
	irecv(src, tag int, data []float64) *Request
}
