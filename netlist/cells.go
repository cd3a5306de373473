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

// This file implements the insert/lookup surface for the cell
// relations. Inserts never fail and never delete rows (spec §4.6:
// "apply... must never delete rows"); they silently suppress an exact
// duplicate of an existing row, mirroring the "INSERT OR IGNORE"
// semantics spec §4.5 calls for in update_cells.

// InsertAY appends a row to ay_cells, or is a no-op if an identical
// row is already present.
func (s *Store) InsertAY(typ string, a, y WireVecID) {
	for _, c := range s.AY {
		if c.Type == typ && c.A == a && c.Y == y {
			return
		}
	}
	s.AY = append(s.AY, AYCell{Type: typ, A: a, Y: y})
}

// LookupAY finds a row by its congruence key (type, a) and reports
// its y, if present.
func (s *Store) LookupAY(typ string, a WireVecID) (y WireVecID, ok bool) {
	for _, c := range s.AY {
		if c.Type == typ && c.A == a {
			return c.Y, true
		}
	}
	return 0, false
}

// InsertABY appends a row to aby_cells, or is a no-op if an identical
// row is already present.
func (s *Store) InsertABY(typ string, a, b, y WireVecID) {
	for _, c := range s.ABY {
		if c.Type == typ && c.A == a && c.B == b && c.Y == y {
			return
		}
	}
	s.ABY = append(s.ABY, ABYCell{Type: typ, A: a, B: b, Y: y})
}

// LookupABY finds a row by its congruence key (type, a, b).
func (s *Store) LookupABY(typ string, a, b WireVecID) (y WireVecID, ok bool) {
	for _, c := range s.ABY {
		if c.Type == typ && c.A == a && c.B == b {
			return c.Y, true
		}
	}
	return 0, false
}

// InsertABSY appends a row to absy_cells, or is a no-op if an
// identical row is already present.
func (s *Store) InsertABSY(typ string, a, b, sel, y WireVecID) {
	for _, c := range s.ABSY {
		if c.Type == typ && c.A == a && c.B == b && c.S == sel && c.Y == y {
			return
		}
	}
	s.ABSY = append(s.ABSY, ABSYCell{Type: typ, A: a, B: b, S: sel, Y: y})
}

// InsertDFF appends a row to dffs, or is a no-op if an identical row
// is already present.
func (s *Store) InsertDFF(d, q WireVecID) {
	for _, c := range s.DFF {
		if c.D == d && c.Q == q {
			return
		}
	}
	s.DFF = append(s.DFF, DFFCell{D: d, Q: q})
}

// LookupDFFByD finds a dff row by its congruence key (d).
func (s *Store) LookupDFFByD(d WireVecID) (q WireVecID, ok bool) {
	for _, c := range s.DFF {
		if c.D == d {
			return c.Q, true
		}
	}
	return 0, false
}

// InsertFromInput appends a row to from_inputs.
func (s *Store) InsertFromInput(source WireVecID, name string) {
	s.FromInputs = append(s.FromInputs, FromInput{Source: source, Name: name})
}

// InsertAsOutput appends a row to as_outputs.
func (s *Store) InsertAsOutput(sink WireVecID, name string) {
	s.AsOutputs = append(s.AsOutputs, AsOutput{Sink: sink, Name: name})
}

// InsertInstance appends a row to instances.
func (s *Store) InsertInstance(name, module string, params map[string]int64) {
	s.Instances = append(s.Instances, Instance{Name: name, Module: module, Params: params})
}

// InsertInstancePort appends a row to instance_ports.
func (s *Store) InsertInstancePort(instance, port string, wv WireVecID) {
	s.InstancePorts = append(s.InstancePorts, InstancePort{Instance: instance, Port: port, WireVec: wv})
}
