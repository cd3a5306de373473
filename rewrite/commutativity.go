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

type commMatch struct {
	typ  string
	a, b netlist.WireVecID
	y    netlist.WireVecID
}

// Commutativity matches (type, a, b, y) in aby_cells for any type in
// types and applies (type, b, a, y). It introduces no new WireVecs,
// only a redundant row the next rebuild collapses via congruence, so
// it never needs a post-apply rebuild of its own.
func Commutativity(types []string) Rule {
	allowed := make(map[string]bool, len(types))
	for _, t := range types {
		allowed[t] = true
	}
	return Rule{
		Name:        "commutativity",
		PostRebuild: false,
		Batched:     true,
		Ematch: func(s *netlist.Store) []Match {
			var out []Match
			for _, c := range s.ABY {
				if allowed[c.Type] {
					out = append(out, commMatch{c.Type, c.A, c.B, c.Y})
				}
			}
			return out
		},
		Apply: func(s *netlist.Store, matches []Match) int {
			before := len(s.ABY)
			for _, m := range matches {
				c := m.(commMatch)
				s.InsertABY(c.typ, c.b, c.a, c.y)
			}
			return len(s.ABY) - before
		},
	}
}
