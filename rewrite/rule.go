// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package rewrite implements the ematch/apply rewrite framework: a
// registry of semantics-preserving algebraic rewrites over a
// netlist.Store, each expressed as a pure matcher and a row-inserting
// applier, run to saturation by the driver package.
package rewrite

import "github.com/nlsat/eqsat/netlist"

// Match is one tuple produced by a Rule's Ematch. Its concrete type is
// rule-specific; Apply type-asserts back to the shape it produced.
// ematch returning these as a plain slice (never a live cursor) is
// the "matches are stable snapshots" discipline: apply may insert
// rows into the very relation ematch scanned without invalidating
// matches already collected.
type Match any

// Rule is a named, tagged pair of (Ematch, Apply) functions.
type Rule struct {
	Name string

	// PostRebuild reports whether the driver must call Store.Rebuild
	// after this rule fires in a pass.
	PostRebuild bool

	// Batched reports whether Apply consumes every match from one
	// Ematch call at once, rather than the driver calling Apply once
	// per match. Every built-in rule here is batched; the tag exists
	// so a future non-batched rule (one whose apply must observe the
	// store mutated by its own earlier matches) has somewhere to say so.
	Batched bool

	// Ematch returns every row tuple in s matching this rule's
	// left-hand pattern.
	Ematch func(s *netlist.Store) []Match

	// Apply performs the right-hand rewrite for each match, inserting
	// new cell rows (never deleting any) and minting fresh wires and
	// WireVecs as needed. It returns the number of rows it inserted.
	Apply func(s *netlist.Store, matches []Match) int
}

// RunOnce runs one ematch/apply round of r against s and reports
// whether it fired (inserted at least one row).
func (r Rule) RunOnce(s *netlist.Store) (fired bool, inserted int) {
	matches := r.Ematch(s)
	if len(matches) == 0 {
		return false, 0
	}
	if !r.Batched {
		n := 0
		for _, m := range matches {
			n += r.Apply(s, []Match{m})
		}
		return n > 0, n
	}
	n := r.Apply(s, matches)
	return n > 0, n
}
