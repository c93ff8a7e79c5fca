// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package comm

import "github.com/cpmech/gosl/mpi"

// mpiTransport drives gosl/mpi's blocking point-to-point Send/Recv from a
// goroutine per request, giving ISend/IRecv their nonblocking contract
// (post now, observe completion on Wait) the way the ghost filler and
// InterLevelComm both need, without requiring gosl/mpi to expose true
// MPI_Isend/MPI_Irecv itself.
type mpiTransport struct{}

func (mpiTransport) isend(dest, tag int, data []float64) *Request {
	done := make(chan error, 1)
	go func() {
		done <- mpi.Send(data, dest, tag)
	}()
	return &Request{wait: func() error { return <-done }}
}

func (mpiTransport) irecv(src, tag int, data []float64) *Request {
	done := make(chan error, 1)
	go func() {
		done <- mpi.Recv(data, src, tag)
	}()
	return &Request{wait: func() error { return <-done }}
}
