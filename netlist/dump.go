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
	"encoding/json"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/nlsat/eqsat/internal/wire"
)

// Row is one relation row rendered for dump/round-trip purposes, per
// spec §6: "a mapping from relation name to the list of rows (each
// row a map of column to value)".
type Row map[string]any

// Snapshot is the dumped form of an entire store.
type Snapshot map[string][]Row

// Dump renders the store's relations (including the wirevecs and
// wirevec_members tables backing every WireVecID column) into the
// mapping described by spec §6.
func (s *Store) Dump() Snapshot {
	out := Snapshot{}

	var wirevecs []Row
	var members []Row
	// iterate in id order for a stable, diffable dump
	ids := maps.Keys(s.vecs)
	slices.Sort(ids)
	for _, id := range ids {
		row := s.vecs[id]
		wirevecs = append(wirevecs, Row{"id": int64(id), "hash": row.hash, "width": len(row.members)})
		for i, m := range row.members {
			members = append(members, Row{"wirevec": int64(id), "idx": i, "wire": int(m)})
		}
	}
	out["wirevecs"] = wirevecs
	out["wirevec_members"] = members

	for _, c := range s.AY {
		out["ay_cells"] = append(out["ay_cells"], Row{"type": c.Type, "a": int64(c.A), "y": int64(c.Y)})
	}
	for _, c := range s.ABY {
		out["aby_cells"] = append(out["aby_cells"], Row{"type": c.Type, "a": int64(c.A), "b": int64(c.B), "y": int64(c.Y)})
	}
	for _, c := range s.ABSY {
		out["absy_cells"] = append(out["absy_cells"], Row{"type": c.Type, "a": int64(c.A), "b": int64(c.B), "s": int64(c.S), "y": int64(c.Y)})
	}
	for _, c := range s.DFF {
		out["dffs"] = append(out["dffs"], Row{"d": int64(c.D), "q": int64(c.Q)})
	}
	for _, c := range s.FromInputs {
		out["from_inputs"] = append(out["from_inputs"], Row{"source": int64(c.Source), "name": c.Name})
	}
	for _, c := range s.AsOutputs {
		out["as_outputs"] = append(out["as_outputs"], Row{"sink": int64(c.Sink), "name": c.Name})
	}
	for _, c := range s.Instances {
		out["instances"] = append(out["instances"], Row{"name": c.Name, "module": c.Module, "params": c.Params})
	}
	for _, c := range s.InstancePorts {
		out["instance_ports"] = append(out["instance_ports"], Row{"instance": c.Instance, "port": c.Port, "wirevec": int64(c.WireVec)})
	}
	return out
}

// WriteJSON encodes the dump as JSON to w, optionally through a zstd
// compressor when compress is true (mirroring ion/zion's use of
// klauspost/compress/zstd for block compression).
func (snap Snapshot) WriteJSON(w io.Writer, compress bool) error {
	enc := json.NewEncoder(w)
	if !compress {
		return enc.Encode(snap)
	}
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("zstd writer: %w", err)
	}
	if err := json.NewEncoder(zw).Encode(snap); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}

// Load reconstructs a Store from a Snapshot produced by Dump. It is
// used by the round-trip tests in spec §8 and by the SQL persistence
// adapter's LoadSQL. An out-of-range member index or a dangling
// WireVec reference in snap panics with an InvariantError.
func Load(snap Snapshot, clockName string) (*Store, error) {
	s := New(clockName)
	wvByOldID := map[int64]WireVecID{}

	type memberEntry struct {
		idx  int
		wire int
	}
	membersByVec := map[int64][]memberEntry{}
	for _, r := range snap["wirevec_members"] {
		vec, err := asInt64(r["wirevec"])
		if err != nil {
			return nil, fmt.Errorf("wirevec_members.wirevec: %w", err)
		}
		idx, err := asInt64(r["idx"])
		if err != nil {
			return nil, fmt.Errorf("wirevec_members.idx: %w", err)
		}
		w, err := asInt64(r["wire"])
		if err != nil {
			return nil, fmt.Errorf("wirevec_members.wire: %w", err)
		}
		membersByVec[vec] = append(membersByVec[vec], memberEntry{idx: int(idx), wire: int(w)})
	}

	for _, r := range snap["wirevecs"] {
		oldID, err := asInt64(r["id"])
		if err != nil {
			return nil, fmt.Errorf("wirevecs.id: %w", err)
		}
		entries := membersByVec[oldID]
		members := make([]wire.ID, len(entries))
		for _, e := range entries {
			if e.idx < 0 || e.idx >= len(members) {
				panic(InvariantError{Detail: fmt.Sprintf("wirevec %d: member index %d out of range", oldID, e.idx)})
			}
			members[e.idx] = wire.ID(e.wire)
		}
		wvByOldID[oldID] = s.Add(members)
	}

	remap := func(key string, r Row) (WireVecID, error) {
		old, err := asInt64(r[key])
		if err != nil {
			return 0, fmt.Errorf("%s: %w", key, err)
		}
		id, ok := wvByOldID[old]
		if !ok {
			panic(InvariantError{Detail: fmt.Sprintf("dangling wirevec reference %d", old)})
		}
		return id, nil
	}

	for _, r := range snap["ay_cells"] {
		a, err := remap("a", r)
		if err != nil {
			return nil, err
		}
		y, err := remap("y", r)
		if err != nil {
			return nil, err
		}
		s.AY = append(s.AY, AYCell{Type: r["type"].(string), A: a, Y: y})
	}
	for _, r := range snap["aby_cells"] {
		a, err := remap("a", r)
		if err != nil {
			return nil, err
		}
		b, err := remap("b", r)
		if err != nil {
			return nil, err
		}
		y, err := remap("y", r)
		if err != nil {
			return nil, err
		}
		s.ABY = append(s.ABY, ABYCell{Type: r["type"].(string), A: a, B: b, Y: y})
	}
	for _, r := range snap["absy_cells"] {
		a, err := remap("a", r)
		if err != nil {
			return nil, err
		}
		b, err := remap("b", r)
		if err != nil {
			return nil, err
		}
		sel, err := remap("s", r)
		if err != nil {
			return nil, err
		}
		y, err := remap("y", r)
		if err != nil {
			return nil, err
		}
		s.ABSY = append(s.ABSY, ABSYCell{Type: r["type"].(string), A: a, B: b, S: sel, Y: y})
	}
	for _, r := range snap["dffs"] {
		d, err := remap("d", r)
		if err != nil {
			return nil, err
		}
		q, err := remap("q", r)
		if err != nil {
			return nil, err
		}
		s.DFF = append(s.DFF, DFFCell{D: d, Q: q})
	}
	for _, r := range snap["from_inputs"] {
		src, err := remap("source", r)
		if err != nil {
			return nil, err
		}
		s.FromInputs = append(s.FromInputs, FromInput{Source: src, Name: r["name"].(string)})
	}
	for _, r := range snap["as_outputs"] {
		sink, err := remap("sink", r)
		if err != nil {
			return nil, err
		}
		s.AsOutputs = append(s.AsOutputs, AsOutput{Sink: sink, Name: r["name"].(string)})
	}
	for _, r := range snap["instances"] {
		params, _ := r["params"].(map[string]int64)
		s.Instances = append(s.Instances, Instance{Name: r["name"].(string), Module: r["module"].(string), Params: params})
	}
	for _, r := range snap["instance_ports"] {
		wv, err := remap("wirevec", r)
		if err != nil {
			return nil, err
		}
		s.InstancePorts = append(s.InstancePorts, InstancePort{Instance: r["instance"].(string), Port: r["port"].(string), WireVec: wv})
	}

	maxWire := wire.ID(1)
	for _, row := range s.vecs {
		for _, m := range row.members {
			if m > maxWire {
				maxWire = m
			}
		}
	}
	s.wires = wire.NewAllocator(maxWire)
	return s, nil
}

func asInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case float64:
		return int64(n), nil
	default:
		return 0, fmt.Errorf("expected a number, got %T", v)
	}
}
