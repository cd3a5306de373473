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

package netlist

import (
	"github.com/dchest/siphash"

	"github.com/nlsat/eqsat/internal/dsu"
	"github.com/nlsat/eqsat/internal/rolling"
	"github.com/nlsat/eqsat/internal/wire"
)

// siphashKeys is a fixed key pair for the non-cryptographic bucketing
// hash merge_cells uses to group rows by congruence key before doing
// the O(n) exact-equality pass (mirrors vm/zion's use of siphash for
// row hashing in the teacher codebase). Collisions are always
// resolved by full key comparison, never trusted on their own.
var siphashKeys = [2]uint64{0x6c62272e07bb0142, 0x62b821756295c58d}

func bucketHash(parts ...int64) uint64 {
	buf := make([]byte, 8*len(parts))
	for i, p := range parts {
		u := uint64(p)
		for j := 0; j < 8; j++ {
			buf[8*i+j] = byte(u >> (8 * j))
		}
	}
	return siphash.Hash(siphashKeys[0], siphashKeys[1], buf)
}

// Rebuild runs the congruence-closure loop (spec §4.5) to a fixed
// point: merge_cells, merge_wires, merge_wirevecs, update_cells,
// repeated until merge_cells finds nothing left to unify. When
// merge_cells finds nothing, WireVecs with identical member sequences
// are still merged (and the loop goes on if any were), so aliased
// WireVecs collapse even without a congruent cell pair. It reports
// whether anything changed.
func (s *Store) Rebuild() bool {
	changed := false
	for {
		wireEq := s.mergeCells()
		if wireEq == nil {
			wvEq := s.mergeWirevecs()
			if len(wvEq.Touched()) == 0 {
				break
			}
			changed = true
			s.updateCells(wvEq)
			continue
		}
		changed = true
		s.mergeWires(wireEq)
		wvEq := s.mergeWirevecs()
		s.updateCells(wvEq)
	}
	s.checkInvariants()
	return changed
}

// mergeCells groups rows of every congruence-keyed relation by their
// key and, for any group with more than one member, unions the
// corresponding output WireVecs bit-by-bit in a fresh wire DSU. It
// returns nil if no relation had a group of size > 1 (the fixed-point
// signal spec §4.5 describes), or the populated DSU otherwise.
//
// Per the Open Question decision recorded in SPEC_FULL.md, every
// relation with a congruence key (ay_cells, aby_cells, absy_cells) is
// visited, generalizing spec §4.5's "currently required for aby_cells
// at minimum" note. instances/instance_ports have no congruence key
// and dffs are keyed by d, so two dff rows with the same d (which the
// builder or dff_forward can produce) have their q outputs merged too.
func (s *Store) mergeCells() *dsu.DSU {
	var d dsu.DSU
	any := false

	type ayKey struct {
		typ string
		a   WireVecID
	}
	groupAY := make(map[uint64][]int)
	for i, c := range s.AY {
		k := bucketHash(int64(stringKey(c.Type)), int64(c.A))
		groupAY[k] = append(groupAY[k], i)
	}
	for _, idxs := range groupAY {
		if len(idxs) < 2 {
			continue
		}
		// verify exact key equality within the bucket (collision safety)
		byKey := map[ayKey][]WireVecID{}
		for _, i := range idxs {
			c := s.AY[i]
			k := ayKey{c.Type, c.A}
			byKey[k] = append(byKey[k], c.Y)
		}
		for _, ys := range byKey {
			if len(ys) > 1 {
				s.unionOutputs(&d, ys)
				any = true
			}
		}
	}

	type abyKey struct {
		typ  string
		a, b WireVecID
	}
	groupABY := make(map[uint64][]int)
	for i, c := range s.ABY {
		k := bucketHash(int64(stringKey(c.Type)), int64(c.A), int64(c.B))
		groupABY[k] = append(groupABY[k], i)
	}
	for _, idxs := range groupABY {
		if len(idxs) < 2 {
			continue
		}
		byKey := map[abyKey][]WireVecID{}
		for _, i := range idxs {
			c := s.ABY[i]
			k := abyKey{c.Type, c.A, c.B}
			byKey[k] = append(byKey[k], c.Y)
		}
		for _, ys := range byKey {
			if len(ys) > 1 {
				s.unionOutputs(&d, ys)
				any = true
			}
		}
	}

	type absyKey struct {
		typ     string
		a, b, c WireVecID
	}
	groupABSY := make(map[uint64][]int)
	for i, c := range s.ABSY {
		k := bucketHash(int64(stringKey(c.Type)), int64(c.A), int64(c.B), int64(c.S))
		groupABSY[k] = append(groupABSY[k], i)
	}
	for _, idxs := range groupABSY {
		if len(idxs) < 2 {
			continue
		}
		byKey := map[absyKey][]WireVecID{}
		for _, i := range idxs {
			cell := s.ABSY[i]
			k := absyKey{cell.Type, cell.A, cell.B, cell.S}
			byKey[k] = append(byKey[k], cell.Y)
		}
		for _, ys := range byKey {
			if len(ys) > 1 {
				s.unionOutputs(&d, ys)
				any = true
			}
		}
	}

	groupDFF := make(map[uint64][]int)
	for i, c := range s.DFF {
		k := bucketHash(int64(c.D))
		groupDFF[k] = append(groupDFF[k], i)
	}
	for _, idxs := range groupDFF {
		if len(idxs) < 2 {
			continue
		}
		byKey := map[WireVecID][]WireVecID{}
		for _, i := range idxs {
			c := s.DFF[i]
			byKey[c.D] = append(byKey[c.D], c.Q)
		}
		for _, qs := range byKey {
			if len(qs) > 1 {
				s.unionOutputs(&d, qs)
				any = true
			}
		}
	}

	if !any {
		return nil
	}
	return &d
}

// unionOutputs unions, bit by bit, the wire ids referenced by every
// WireVec in ys against the first one. WireVecs that disagree in
// width are a schema-invariant violation: a congruence-key match
// implies the same operator applied to the same operands, which must
// produce outputs of the same width.
func (s *Store) unionOutputs(d *dsu.DSU, ys []WireVecID) {
	ref := s.Get(ys[0])
	for _, y := range ys[1:] {
		members := s.Get(y)
		if len(members) != len(ref) {
			panic(InvariantError{"congruent cells with outputs of differing width"})
		}
		for i := range ref {
			d.Union(int(ref[i]), int(members[i]))
		}
	}
}

// stringKey hashes a type tag into an int64 bucket discriminator so it
// can sit alongside WireVecIDs in a single bucketHash call; the exact
// byKey map above still compares the real string, so collisions here
// only cost bucketing precision, never correctness.
func stringKey(s string) int64 {
	var h int64 = 1469598103934665603 // FNV offset basis
	for _, c := range s {
		h ^= int64(c)
		h *= 1099511628211
	}
	return h
}

// mergeWires rewrites every WireVec's members to replace any wire
// that is not a root in wireEq with its root, repairing the rolling
// hash incrementally via rolling.Update (spec §4.5 phase 2).
func (s *Store) mergeWires(wireEq *dsu.DSU) {
	for id, row := range s.vecs {
		changedAny := false
		for i, m := range row.members {
			root := wire.ID(wireEq.Find(int(m)))
			if root == m {
				continue
			}
			row.hash = rolling.Update(row.hash, len(row.members), i, int(m), int(root))
			row.members[i] = root
			changedAny = true
		}
		if changedAny {
			s.reindex(id, row)
		}
	}
}

// reindex moves a WireVec's bucket entry to match its (possibly
// changed) hash.
func (s *Store) reindex(id WireVecID, row *wireVecRow) {
	for h, ids := range s.buckets {
		for i, other := range ids {
			if other == id {
				s.buckets[h] = append(ids[:i], ids[i+1:]...)
				break
			}
		}
	}
	s.buckets[row.hash] = append(s.buckets[row.hash], id)
}

// mergeWirevecs buckets all WireVecs by hash, then by full member
// sequence, and unions any collision group of size >= 2 in a second
// DSU over WireVec ids, deleting the non-root rows. It returns the
// populated DSU (spec §4.5 phase 3).
func (s *Store) mergeWirevecs() *dsu.DSU {
	var d dsu.DSU
	byHash := make(map[int64][]WireVecID)
	for id, row := range s.vecs {
		byHash[row.hash] = append(byHash[row.hash], id)
	}
	for _, ids := range byHash {
		if len(ids) < 2 {
			continue
		}
		bySeq := make(map[string][]WireVecID)
		for _, id := range ids {
			bySeq[seqKey(s.vecs[id].members)] = append(bySeq[seqKey(s.vecs[id].members)], id)
		}
		for _, group := range bySeq {
			if len(group) < 2 {
				continue
			}
			for i := 1; i < len(group); i++ {
				d.Union(int(group[0]), int(group[i]))
			}
		}
	}
	for _, id := range d.Touched() {
		wv := WireVecID(id)
		root := WireVecID(d.Find(id))
		if wv != root {
			s.deleteWireVec(wv)
		}
	}
	return &d
}

func seqKey(members []wire.ID) string {
	b := make([]byte, 0, len(members)*4)
	for _, m := range members {
		v := int32(m)
		b = append(b, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
	}
	return string(b)
}

func (s *Store) deleteWireVec(id WireVecID) {
	row := s.vecs[id]
	if row == nil {
		return
	}
	delete(s.vecs, id)
	ids := s.buckets[row.hash]
	for i, other := range ids {
		if other == id {
			s.buckets[row.hash] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
}

// updateCells rewrites every cell row's WireVecID columns to use the
// root of wvEq, dropping any row that becomes a duplicate of one
// already rewritten (spec §4.5 phase 4, "INSERT OR IGNORE" semantics).
func (s *Store) updateCells(wvEq *dsu.DSU) {
	root := func(id WireVecID) WireVecID {
		return WireVecID(wvEq.Find(int(id)))
	}

	seenAY := make(map[AYCell]bool)
	out := s.AY[:0]
	for _, c := range s.AY {
		c.A, c.Y = root(c.A), root(c.Y)
		if !seenAY[c] {
			seenAY[c] = true
			out = append(out, c)
		}
	}
	s.AY = out

	seenABY := make(map[ABYCell]bool)
	outABY := s.ABY[:0]
	for _, c := range s.ABY {
		c.A, c.B, c.Y = root(c.A), root(c.B), root(c.Y)
		if !seenABY[c] {
			seenABY[c] = true
			outABY = append(outABY, c)
		}
	}
	s.ABY = outABY

	seenABSY := make(map[ABSYCell]bool)
	outABSY := s.ABSY[:0]
	for _, c := range s.ABSY {
		c.A, c.B, c.S, c.Y = root(c.A), root(c.B), root(c.S), root(c.Y)
		if !seenABSY[c] {
			seenABSY[c] = true
			outABSY = append(outABSY, c)
		}
	}
	s.ABSY = outABSY

	seenDFF := make(map[DFFCell]bool)
	outDFF := s.DFF[:0]
	for _, c := range s.DFF {
		c.D, c.Q = root(c.D), root(c.Q)
		if !seenDFF[c] {
			seenDFF[c] = true
			outDFF = append(outDFF, c)
		}
	}
	s.DFF = outDFF

	for i := range s.FromInputs {
		s.FromInputs[i].Source = root(s.FromInputs[i].Source)
	}
	for i := range s.AsOutputs {
		s.AsOutputs[i].Sink = root(s.AsOutputs[i].Sink)
	}
	for i := range s.InstancePorts {
		s.InstancePorts[i].WireVec = root(s.InstancePorts[i].WireVec)
	}
}
