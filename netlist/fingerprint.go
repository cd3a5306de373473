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
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Fingerprint produces a blake2b-256 digest over a canonicalized form
// of the store's relations, independent of WireVecID numbering: two
// stores that differ only by a renumbering of live ids (as happens
// across a dump/reload or a rebuild) hash identically. It exists so
// the round-trip and idempotence checks can compare stores without
// depending on allocation order. It covers the WireVecs, ay_cells,
// aby_cells, absy_cells, dffs, from_inputs and as_outputs; instances
// and instance_ports are not included in the digest.
func (s *Store) Fingerprint() [32]byte {
	h, _ := blake2b.New256(nil)

	// canonicalize WireVecIDs to the lexicographic rank of their
	// member sequence, not their storage id.
	ids := maps.Keys(s.vecs)
	slices.SortFunc(ids, func(a, b WireVecID) bool {
		return seqKey(s.vecs[a].members) < seqKey(s.vecs[b].members)
	})
	rank := make(map[WireVecID]int64, len(ids))
	for i, id := range ids {
		rank[id] = int64(i)
	}

	writeInt := func(n int64) {
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], uint64(n))
		h.Write(buf[:])
	}
	writeStr := func(s string) {
		writeInt(int64(len(s)))
		h.Write([]byte(s))
	}

	writeInt(int64(len(ids)))
	for _, id := range ids {
		row := s.vecs[id]
		writeInt(int64(len(row.members)))
		for _, m := range row.members {
			writeInt(int64(m))
		}
	}

	type ayRow struct {
		typ  string
		a, y int64
	}
	ay := make([]ayRow, len(s.AY))
	for i, c := range s.AY {
		ay[i] = ayRow{c.Type, rank[c.A], rank[c.Y]}
	}
	slices.SortFunc(ay, less[ayRow])
	writeInt(int64(len(ay)))
	for _, c := range ay {
		writeStr(c.typ)
		writeInt(c.a)
		writeInt(c.y)
	}

	type abyRow struct {
		typ     string
		a, b, y int64
	}
	aby := make([]abyRow, len(s.ABY))
	for i, c := range s.ABY {
		aby[i] = abyRow{c.Type, rank[c.A], rank[c.B], rank[c.Y]}
	}
	slices.SortFunc(aby, less[abyRow])
	writeInt(int64(len(aby)))
	for _, c := range aby {
		writeStr(c.typ)
		writeInt(c.a)
		writeInt(c.b)
		writeInt(c.y)
	}

	type absyRow struct {
		typ        string
		a, b, s, y int64
	}
	absy := make([]absyRow, len(s.ABSY))
	for i, c := range s.ABSY {
		absy[i] = absyRow{c.Type, rank[c.A], rank[c.B], rank[c.S], rank[c.Y]}
	}
	slices.SortFunc(absy, less[absyRow])
	writeInt(int64(len(absy)))
	for _, c := range absy {
		writeStr(c.typ)
		writeInt(c.a)
		writeInt(c.b)
		writeInt(c.s)
		writeInt(c.y)
	}

	type dffRow struct{ d, q int64 }
	dff := make([]dffRow, len(s.DFF))
	for i, c := range s.DFF {
		dff[i] = dffRow{rank[c.D], rank[c.Q]}
	}
	slices.SortFunc(dff, less[dffRow])
	writeInt(int64(len(dff)))
	for _, c := range dff {
		writeInt(c.d)
		writeInt(c.q)
	}

	type namedRow struct {
		name string
		wv   int64
	}
	froms := make([]namedRow, len(s.FromInputs))
	for i, c := range s.FromInputs {
		froms[i] = namedRow{c.Name, rank[c.Source]}
	}
	slices.SortFunc(froms, func(a, b namedRow) bool { return a.name < b.name })
	writeInt(int64(len(froms)))
	for _, c := range froms {
		writeStr(c.name)
		writeInt(c.wv)
	}

	outs := make([]namedRow, len(s.AsOutputs))
	for i, c := range s.AsOutputs {
		outs[i] = namedRow{c.Name, rank[c.Sink]}
	}
	slices.SortFunc(outs, func(a, b namedRow) bool { return a.name < b.name })
	writeInt(int64(len(outs)))
	for _, c := range outs {
		writeStr(c.name)
		writeInt(c.wv)
	}

	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// less orders two same-typed comparable-by-fmt rows lexicographically
// by their %v representation; it is only used to get a deterministic
// row order before hashing, never for correctness of the fingerprint
// itself.
func less[T any](a, b T) bool {
	return fmt.Sprint(a) < fmt.Sprint(b)
}
