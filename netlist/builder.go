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
	"strconv"

	"github.com/nlsat/eqsat/internal/wire"
)

// Bit is one element of a port's or connection's "bits" array in the
// synthesized JSON netlist: either the literal strings "0"/"1"/"x" or
// an integer wire id, per spec §6.
type Bit wire.ID

// UnmarshalJSON accepts a JSON string ("0", "1", "x", or a decimal
// integer written as a string) or a JSON number.
func (b *Bit) UnmarshalJSON(data []byte) error {
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		switch asString {
		case "0":
			*b = Bit(wire.GroundID)
		case "1":
			*b = Bit(wire.SupplyID)
		case "x":
			*b = Bit(wire.DontCareID)
		default:
			n, err := strconv.ParseInt(asString, 10, 64)
			if err != nil {
				return fmt.Errorf("bit %q: %w", asString, err)
			}
			*b = Bit(n)
		}
		return nil
	}
	var asNumber int64
	if err := json.Unmarshal(data, &asNumber); err != nil {
		return fmt.Errorf("bit: %w", err)
	}
	*b = Bit(asNumber)
	return nil
}

// Port is one entry of a module's "ports" map.
type Port struct {
	Direction string `json:"direction"`
	Bits      []Bit  `json:"bits"`
}

// Param is a cell parameter value: either a JSON integer or a binary
// string of '0'/'1' characters, normalized to an int64 (spec §4.4:
// "Parameters may arrive as decimal integers or as binary strings").
type Param int64

func (p *Param) UnmarshalJSON(data []byte) error {
	var asNumber int64
	if err := json.Unmarshal(data, &asNumber); err == nil {
		*p = Param(asNumber)
		return nil
	}
	var asString string
	if err := json.Unmarshal(data, &asString); err != nil {
		return fmt.Errorf("parameter: %w", err)
	}
	n, err := strconv.ParseInt(asString, 2, 64)
	if err != nil {
		// fall back to decimal, in case the string is a plain
		// decimal integer rather than a binary string.
		n, err = strconv.ParseInt(asString, 10, 64)
		if err != nil {
			return fmt.Errorf("parameter %q: not binary or decimal: %w", asString, err)
		}
	}
	*p = Param(n)
	return nil
}

// Cell is one entry of a module's "cells" map.
type Cell struct {
	Type        string           `json:"type"`
	Parameters  map[string]Param `json:"parameters"`
	Connections map[string][]Bit `json:"connections"`
	Attributes  map[string]Param `json:"attributes"`
}

// Module is the synthesized JSON netlist for one module, per spec §6.
type Module struct {
	Ports map[string]Port `json:"ports"`
	Cells map[string]Cell `json:"cells"`
}

// unaryTypes are the cell types that go into ay_cells.
var unaryTypes = map[string]bool{"$not": true, "$logic_not": true}

// binaryArithTypes require the A_SIGNED/B_SIGNED-derived "s"/"u" type
// suffix per spec §4.4.
var binaryArithTypes = map[string]bool{
	"$and": true, "$or": true, "$xor": true,
	"$add": true, "$sub": true, "$mul": true, "$mod": true,
}

// binaryPlainTypes go into aby_cells without a signedness suffix.
var binaryPlainTypes = map[string]bool{
	"$eq": true, "$ge": true, "$le": true, "$gt": true, "$lt": true,
	"$logic_and": true, "$logic_or": true,
}

// Build populates a fresh Store from a parsed Module description,
// per spec §4.4. clockName selects which input port is the global
// clock (default "clk" if empty).
func Build(m *Module, clockName string) (*Store, error) {
	s := New(clockName)
	var maxWire wire.ID = 1

	trackMax := func(bits []Bit) {
		for _, b := range bits {
			if wire.ID(b) > maxWire {
				maxWire = wire.ID(b)
			}
		}
	}

	for name, port := range m.Ports {
		members := make([]wire.ID, len(port.Bits))
		for i, b := range port.Bits {
			members[i] = wire.ID(b)
		}
		trackMax(port.Bits)
		id := s.CreateOrLookup(members)
		switch port.Direction {
		case "input":
			s.InsertFromInput(id, name)
		case "output":
			s.InsertAsOutput(id, name)
		default:
			return nil, &BuildError{Cell: name, Reason: fmt.Sprintf("unknown port direction %q", port.Direction)}
		}
	}

	clockID, haveClock := findClockWireVec(s, m, s.ClockName)

	for name, cell := range m.Cells {
		if err := buildCell(s, name, cell, clockID, haveClock, &maxWire); err != nil {
			return nil, err
		}
	}

	s.wires = wire.NewAllocator(maxWire)
	return s, nil
}

func findClockWireVec(s *Store, m *Module, clockName string) (WireVecID, bool) {
	port, ok := m.Ports[clockName]
	if !ok {
		return 0, false
	}
	members := make([]wire.ID, len(port.Bits))
	for i, b := range port.Bits {
		members[i] = wire.ID(b)
	}
	return s.CreateOrLookup(members), true
}

func connWireVec(s *Store, cell Cell, port string, maxWire *wire.ID) (WireVecID, bool) {
	bits, ok := cell.Connections[port]
	if !ok {
		return 0, false
	}
	members := make([]wire.ID, len(bits))
	for i, b := range bits {
		members[i] = wire.ID(b)
		if members[i] > *maxWire {
			*maxWire = members[i]
		}
	}
	return s.CreateOrLookup(members), true
}

func buildCell(s *Store, name string, cell Cell, clockID WireVecID, haveClock bool, maxWire *wire.ID) error {
	if isBlackbox(cell) {
		params := make(map[string]int64, len(cell.Parameters))
		for k, v := range cell.Parameters {
			params[k] = int64(v)
		}
		s.InsertInstance(name, cell.Type, params)
		for port, bits := range cell.Connections {
			members := make([]wire.ID, len(bits))
			for i, b := range bits {
				members[i] = wire.ID(b)
				if members[i] > *maxWire {
					*maxWire = members[i]
				}
			}
			wv := s.CreateOrLookup(members)
			s.InsertInstancePort(name, port, wv)
		}
		return nil
	}

	switch {
	case unaryTypes[cell.Type]:
		a, ok := connWireVec(s, cell, "A", maxWire)
		if !ok {
			return &BuildError{Cell: name, Reason: "missing port A"}
		}
		y, ok := connWireVec(s, cell, "Y", maxWire)
		if !ok {
			return &BuildError{Cell: name, Reason: "missing port Y"}
		}
		s.InsertAY(cell.Type, a, y)
		return nil

	case binaryArithTypes[cell.Type]:
		a, ok := connWireVec(s, cell, "A", maxWire)
		if !ok {
			return &BuildError{Cell: name, Reason: "missing port A"}
		}
		b, ok := connWireVec(s, cell, "B", maxWire)
		if !ok {
			return &BuildError{Cell: name, Reason: "missing port B"}
		}
		y, ok := connWireVec(s, cell, "Y", maxWire)
		if !ok {
			return &BuildError{Cell: name, Reason: "missing port Y"}
		}
		suffix := "u"
		if cell.Parameters["A_SIGNED"] != 0 && cell.Parameters["B_SIGNED"] != 0 {
			suffix = "s"
		}
		s.InsertABY(cell.Type+suffix, a, b, y)
		return nil

	case binaryPlainTypes[cell.Type]:
		a, ok := connWireVec(s, cell, "A", maxWire)
		if !ok {
			return &BuildError{Cell: name, Reason: "missing port A"}
		}
		b, ok := connWireVec(s, cell, "B", maxWire)
		if !ok {
			return &BuildError{Cell: name, Reason: "missing port B"}
		}
		y, ok := connWireVec(s, cell, "Y", maxWire)
		if !ok {
			return &BuildError{Cell: name, Reason: "missing port Y"}
		}
		s.InsertABY(cell.Type, a, b, y)
		return nil

	case cell.Type == "$mux":
		a, ok := connWireVec(s, cell, "A", maxWire)
		if !ok {
			return &BuildError{Cell: name, Reason: "missing port A"}
		}
		b, ok := connWireVec(s, cell, "B", maxWire)
		if !ok {
			return &BuildError{Cell: name, Reason: "missing port B"}
		}
		sel, ok := connWireVec(s, cell, "S", maxWire)
		if !ok {
			return &BuildError{Cell: name, Reason: "missing port S"}
		}
		y, ok := connWireVec(s, cell, "Y", maxWire)
		if !ok {
			return &BuildError{Cell: name, Reason: "missing port Y"}
		}
		if s.Width(sel) != 1 {
			return &BuildError{Cell: name, Reason: "width(S) != 1"}
		}
		if s.Width(a) != s.Width(b) || s.Width(a) != s.Width(y) {
			return &BuildError{Cell: name, Reason: "width(A), width(B), width(Y) must match"}
		}
		s.InsertABSY(cell.Type, a, b, sel, y)
		return nil

	case cell.Type == "$dff":
		if cell.Parameters["CLK_POLARITY"] != 1 {
			return &BuildError{Cell: name, Reason: "only CLK_POLARITY=1 is supported"}
		}
		clk, ok := connWireVec(s, cell, "CLK", maxWire)
		if !ok {
			return &BuildError{Cell: name, Reason: "missing port CLK"}
		}
		if s.Width(clk) != 1 {
			return &BuildError{Cell: name, Reason: "width(CLK) != 1"}
		}
		if !haveClock || clk != clockID {
			return &BuildError{Cell: name, Reason: "CLK does not match the module's single global clock"}
		}
		d, ok := connWireVec(s, cell, "D", maxWire)
		if !ok {
			return &BuildError{Cell: name, Reason: "missing port D"}
		}
		q, ok := connWireVec(s, cell, "Q", maxWire)
		if !ok {
			return &BuildError{Cell: name, Reason: "missing port Q"}
		}
		s.InsertDFF(d, q)
		return nil

	default:
		return &BuildError{Cell: name, Reason: fmt.Sprintf("unsupported cell type %q", cell.Type)}
	}
}

func isBlackbox(cell Cell) bool {
	return cell.Attributes["module_not_derived"] == 1
}
