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

type dffForwardMatch struct {
	typ    string
	d1, d2 netlist.WireVecID
	y      netlist.WireVecID
}

// DFFForward discovers a binary cell fed entirely by flip-flop
// outputs — dff(d1)=a, dff(d2)=b, cell(type,a,b,y) — and retimes it
// one cycle earlier: cell(type,d1,d2,pre), dff(pre,y). types
// restricts which aby_cells types the rule considers; pass nil to
// match every type.
func DFFForward(types []string) Rule {
	var allowed map[string]bool
	if types != nil {
		allowed = make(map[string]bool, len(types))
		for _, t := range types {
			allowed[t] = true
		}
	}
	return Rule{
		Name:        "dff_forward",
		PostRebuild: true,
		Batched:     true,
		Ematch: func(s *netlist.Store) []Match {
			qByD := map[netlist.WireVecID][]netlist.WireVecID{}
			dByQ := map[netlist.WireVecID][]netlist.WireVecID{}
			for _, c := range s.DFF {
				qByD[c.D] = append(qByD[c.D], c.Q)
				dByQ[c.Q] = append(dByQ[c.Q], c.D)
			}
			var out []Match
			for _, cell := range s.ABY {
				if allowed != nil && !allowed[cell.Type] {
					continue
				}
				d1s := dByQ[cell.A]
				d2s := dByQ[cell.B]
				if len(d1s) == 0 || len(d2s) == 0 {
					continue
				}
				for _, d1 := range d1s {
					for _, d2 := range d2s {
						out = append(out, dffForwardMatch{typ: cell.Type, d1: d1, d2: d2, y: cell.Y})
					}
				}
			}
			return out
		},
		Apply: func(s *netlist.Store, matches []Match) int {
			before := len(s.DFF) + len(s.ABY)
			for _, match := range matches {
				m := match.(dffForwardMatch)
				pre := findOrMintABY(s, m.typ, m.d1, m.d2, s.Width(m.y))
				s.InsertDFF(pre, m.y)
			}
			return len(s.DFF) + len(s.ABY) - before
		},
	}
}
