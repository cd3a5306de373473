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

package rewrite

import "github.com/nlsat/eqsat/netlist"

type assocMatch struct {
	typ        string
	a, b, c, y netlist.WireVecID
}

// findOrMintABY looks up an existing (typ, x, z) row in aby_cells whose
// y has exactly width wide bits; if none exists, it mints a fresh
// WireVec of that width and inserts (typ, x, z, fresh).
func findOrMintABY(s *netlist.Store, typ string, x, z netlist.WireVecID, width int) netlist.WireVecID {
	for _, c := range s.ABY {
		if c.Type == typ && c.A == x && c.B == z && s.Width(c.Y) == width {
			return c.Y
		}
	}
	y := s.FreshWireVec(width)
	s.InsertABY(typ, x, z, y)
	return y
}

// AssocRight matches a chain `(a op b) op c = y` — cell1(type,a,b,y1)
// joined to cell2(type,y1,c,y) on cell1.y = cell2.a — and applies the
// right-associated form `a op (b op c) = y`, per spec.md §4.6.
func AssocRight(types []string) Rule {
	allowed := make(map[string]bool, len(types))
	for _, t := range types {
		allowed[t] = true
	}
	return Rule{
		Name:        "assoc_right",
		PostRebuild: true,
		Batched:     true,
		Ematch: func(s *netlist.Store) []Match {
			var out []Match
			byA := map[netlist.WireVecID][]netlist.ABYCell{}
			for _, c := range s.ABY {
				if allowed[c.Type] {
					byA[c.A] = append(byA[c.A], c)
				}
			}
			for _, cell1 := range s.ABY {
				if !allowed[cell1.Type] {
					continue
				}
				for _, cell2 := range byA[cell1.Y] {
					if cell2.Type != cell1.Type {
						continue
					}
					out = append(out, assocMatch{cell1.Type, cell1.A, cell1.B, cell2.B, cell2.Y})
				}
			}
			return out
		},
		Apply: func(s *netlist.Store, matches []Match) int {
			before := len(s.ABY)
			for _, match := range matches {
				m := match.(assocMatch)
				yBC := findOrMintABY(s, m.typ, m.b, m.c, s.Width(m.y))
				s.InsertABY(m.typ, m.a, yBC, m.y)
			}
			return len(s.ABY) - before
		},
	}
}

// AssocLeft is the symmetric rewrite: matches `a op (b op c) = y` —
// cell2(type,b,c,y1) joined to cell1(type,a,y1,y) — and applies the
// left-associated form `(a op b) op c = y`.
func AssocLeft(types []string) Rule {
	allowed := make(map[string]bool, len(types))
	for _, t := range types {
		allowed[t] = true
	}
	return Rule{
		Name:        "assoc_left",
		PostRebuild: true,
		Batched:     true,
		Ematch: func(s *netlist.Store) []Match {
			var out []Match
			byY := map[netlist.WireVecID][]netlist.ABYCell{}
			for _, c := range s.ABY {
				if allowed[c.Type] {
					byY[c.Y] = append(byY[c.Y], c)
				}
			}
			for _, cell1 := range s.ABY {
				if !allowed[cell1.Type] {
					continue
				}
				for _, cell2 := range byY[cell1.B] {
					if cell2.Type != cell1.Type {
						continue
					}
					out = append(out, assocMatch{cell1.Type, cell1.A, cell2.A, cell2.B, cell1.Y})
				}
			}
			return out
		},
		Apply: func(s *netlist.Store, matches []Match) int {
			before := len(s.ABY)
			for _, match := range matches {
				m := match.(assocMatch)
				yAB := findOrMintABY(s, m.typ, m.a, m.b, s.Width(m.y))
				s.InsertABY(m.typ, yAB, m.c, m.y)
			}
			return len(s.ABY) - before
		},
	}
}
