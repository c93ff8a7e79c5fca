// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gmg

import (
	"github.com/patchdd/thunderegg/domain"
	"github.com/patchdd/thunderegg/operator"
	"github.com/patchdd/thunderegg/vec"
)

// Level is one level of the multigrid hierarchy: its own Domain, operator,
// smoother, and (if not the coarsest) a Restrictor/Interpolator pair down to
// the next-coarser Level. Levels form a doubly-linked list finest-to-coarsest,
// mirroring ThunderEgg's GMG::Level.
type Level struct {
	Domain   *domain.Domain
	Gen      vec.Generator
	Op       operator.Operator
	Smoother Smoother

	restrictor *Restrictor
	interpolator *Interpolator

	coarser *Level
	finer   *Level
}

// NewLevel returns a leaf Level with no coarser/finer neighbor yet; wire the
// hierarchy together with SetCoarser.
func NewLevel(d *domain.Domain, gen vec.Generator, op operator.Operator, sm Smoother) *Level {
	return &Level{Domain: d, Gen: gen, Op: op, Smoother: sm}
}

// SetCoarser links l to its coarser neighbor through ic (whose Fine must be
// l.Domain and whose Coarse must be coarser.Domain), setting both directions
// of the doubly-linked list.
func (l *Level) SetCoarser(coarser *Level, ic *InterLevelComm) {
	l.coarser = coarser
	l.restrictor = NewRestrictor(ic)
	l.interpolator = NewInterpolator(ic)
	coarser.finer = l
}

// Coarser returns the next-coarser level, or nil if l is the coarsest.
func (l *Level) Coarser() *Level { return l.coarser }

// Finer returns the next-finer level, or nil if l is the finest.
func (l *Level) Finer() *Level { return l.finer }

// Finest reports whether l has no finer neighbor.
func (l *Level) Finest() bool { return l.finer == nil }

// Coarsest reports whether l has no coarser neighbor.
func (l *Level) Coarsest() bool { return l.coarser == nil }
