// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package comm

import "sync"

// localTransport delivers point-to-point messages between in-process
// "ranks" over channels, so that ghost exchange and InterLevelComm can be
// unit-tested deterministically without an mpirun launcher. See
// SPEC_FULL.md §C for why this is a standard-library concurrency exception
// rather than a missing third-party dependency.
type localTransport struct {
	self  int
	inbox *localGroup
}

// localGroup is the shared mailbox set for one NewLocalGroup call.
type localGroup struct {
	mu      sync.Mutex
	pending map[localKey]chan []float64
}

type localKey struct {
	from, to, tag int
}

func newLocalTransport(n int) []localTransport {
	group := &localGroup{pending: make(map[localKey]chan []float64)}
	out := make([]localTransport, n)
	for i := 0; i < n; i++ {
		out[i] = localTransport{self: i, inbox: group}
	}
	return out
}

func (g *localGroup) channel(key localKey) chan []float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	ch, ok := g.pending[key]
	if !ok {
		ch = make(chan []float64, 1)
		g.pending[key] = ch
	}
	return ch
}

func (t localTransport) isend(dest, tag int, data []float64) *Request {
	key := localKey{from: t.self, to: dest, tag: tag}
	ch := t.inbox.channel(key)
	cp := make([]float64, len(data))
	copy(cp, data)
	done := make(chan struct{})
	go func() {
		ch <- cp
		close(done)
	}()
	return &Request{wait: func() error {
		<-done
		return nil
	}}
}

func (t localTransport) irecv(src, tag int, data []float64) *Request {
	key := localKey{from: src, to: t.self, tag: tag}
	ch := t.inbox.channel(key)
	return &Request{wait: func() error {
		received := <-ch
		copy(data, received)
		return nil
	}}
}
