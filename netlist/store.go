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

// Package netlist is the content-addressed relational store for a
// synthesized gate-level design: wire vectors keyed by a rolling
// hash, cell relations joined against them, and the congruence-closure
// rebuilder that keeps both canonical.
package netlist

import (
	"fmt"

	"github.com/nlsat/eqsat/internal/rolling"
	"github.com/nlsat/eqsat/internal/wire"
)

// WireVecID identifies a WireVec row. Ids are never reused once freed
// by a rebuild.
type WireVecID int64

// wireVecRow is the live representation of one WireVec: its ordered
// members and the rolling hash of that sequence (invariant I2: hash
// always equals rolling.Hash(members)).
type wireVecRow struct {
	members []wire.ID
	hash    int64
}

// AYCell is a row of the ay_cells relation: y = op(a).
type AYCell struct {
	Type string
	A, Y WireVecID
}

// ABYCell is a row of the aby_cells relation: y = a op b.
type ABYCell struct {
	Type    string
	A, B, Y WireVecID
}

// ABSYCell is a row of the absy_cells relation: y = s ? b : a.
type ABSYCell struct {
	Type       string
	A, B, S, Y WireVecID
}

// DFFCell is a row of the dffs relation: q on the next clock = d now.
type DFFCell struct {
	D, Q WireVecID
}

// FromInput is a row of the from_inputs relation.
type FromInput struct {
	Source WireVecID
	Name   string
}

// AsOutput is a row of the as_outputs relation.
type AsOutput struct {
	Sink WireVecID
	Name string
}

// Instance is a row of the instances relation: an unresolved blackbox
// cell.
type Instance struct {
	Name, Module string
	Params       map[string]int64
}

// InstancePort is a row of the instance_ports relation: one connection
// of a blackbox instance to a WireVec.
type InstancePort struct {
	Instance string
	Port     string
	WireVec  WireVecID
}

// Store owns every WireVec row, cell row, and the wire id counter for
// one netlist. It is the sole mutator of that state; external code
// reads through the query methods on this type and writes only
// through the documented operations (CreateOrLookup, Add, the relation
// Insert* methods, and Rebuild).
type Store struct {
	ClockName string

	wires *wire.Allocator

	nextWV  WireVecID
	vecs    map[WireVecID]*wireVecRow
	buckets map[int64][]WireVecID // hash -> candidate live ids

	AY            []AYCell
	ABY           []ABYCell
	ABSY          []ABSYCell
	DFF           []DFFCell
	FromInputs    []FromInput
	AsOutputs     []AsOutput
	Instances     []Instance
	InstancePorts []InstancePort
}

// New returns an empty store. clockName is the module input port name
// treated as the global clock (default "clk" if empty).
func New(clockName string) *Store {
	if clockName == "" {
		clockName = "clk"
	}
	return &Store{
		ClockName: clockName,
		wires:     wire.NewAllocator(1),
		vecs:      make(map[WireVecID]*wireVecRow),
		buckets:   make(map[int64][]WireVecID),
	}
}

// FreshWire allocates a new, never-before-issued wire id.
func (s *Store) FreshWire() wire.ID { return s.wires.Fresh() }

// toInts converts a wire member slice to the plain ints rolling.Hash
// operates on (wire.ID's -1/0/1 sentinels are ordinary integers as far
// as the hash is concerned).
func toInts(members []wire.ID) []int {
	out := make([]int, len(members))
	for i, m := range members {
		out[i] = int(m)
	}
	return out
}

func equalMembers(a, b []wire.ID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// CreateOrLookup returns the id of the WireVec with exactly this
// member sequence, inserting a new row only if no live WireVec has it
// already. Hash equality is always verified against the actual member
// sequence before two ids are treated as equal (Design Note:
// hash-collision safety).
func (s *Store) CreateOrLookup(members []wire.ID) WireVecID {
	h := rolling.Hash(toInts(members))
	for _, id := range s.buckets[h] {
		row := s.vecs[id]
		if row != nil && equalMembers(row.members, members) {
			return id
		}
	}
	return s.insert(members, h)
}

// Add unconditionally inserts a new WireVec row, for callers that have
// already established uniqueness themselves.
func (s *Store) Add(members []wire.ID) WireVecID {
	h := rolling.Hash(toInts(members))
	return s.insert(members, h)
}

func (s *Store) insert(members []wire.ID, h int64) WireVecID {
	id := s.nextWV
	s.nextWV++
	cp := make([]wire.ID, len(members))
	copy(cp, members)
	s.vecs[id] = &wireVecRow{members: cp, hash: h}
	s.buckets[h] = append(s.buckets[h], id)
	return id
}

// FreshWireVec mints width fresh wires and inserts them as a new
// WireVec row, for rewrite rules that must introduce an output no
// existing WireVec names (associativity, retiming).
func (s *Store) FreshWireVec(width int) WireVecID {
	members := make([]wire.ID, width)
	for i := range members {
		members[i] = s.FreshWire()
	}
	return s.Add(members)
}

// Get returns the ordered members of a live WireVec, or nil if id is
// not live.
func (s *Store) Get(id WireVecID) []wire.ID {
	row := s.vecs[id]
	if row == nil {
		return nil
	}
	return row.members
}

// Width returns len(Get(id)).
func (s *Store) Width(id WireVecID) int {
	return len(s.Get(id))
}

// Live reports whether id currently names a row in the store.
func (s *Store) Live(id WireVecID) bool {
	return s.vecs[id] != nil
}

// checkInvariants panics with an InvariantError if any WireVec's
// stored hash has drifted from rolling.Hash(members) (I2) or if two
// live ids share a member sequence (I3). It is called at the end of
// Rebuild, never on the normal insert path, since I3 is only
// guaranteed to hold post-rebuild.
func (s *Store) checkInvariants() {
	seen := make(map[string]WireVecID)
	for id, row := range s.vecs {
		if want := rolling.Hash(toInts(row.members)); want != row.hash {
			panic(InvariantError{fmt.Sprintf("wirevec %d: hash %d != recomputed %d", id, row.hash, want)})
		}
		key := fmt.Sprint(row.members)
		if other, dup := seen[key]; dup {
			panic(InvariantError{fmt.Sprintf("wirevecs %d and %d have identical members after rebuild", other, id)})
		}
		seen[key] = id
	}
}
