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

import (
	"testing"

	"github.com/nlsat/eqsat/netlist"
)

// TestAssocRightBuildsRightAssociatedChain is a two-cell form of spec
// §8's associativity scenario: (a+b) = t; t+c = y. Saturating
// assoc_right must produce the right-associated form a+(b+c)=y
// sharing every leaf, while the original (a+b) row remains.
func TestAssocRightBuildsRightAssociatedChain(t *testing.T) {
	s := netlist.New("clk")
	a, b, c := oneBit(s), oneBit(s), oneBit(s)
	tmp := oneBit(s)
	y := oneBit(s)
	s.InsertABY("$addu", a, b, tmp)
	s.InsertABY("$addu", tmp, c, y)

	rule := AssocRight([]string{"$addu"})
	for i := 0; i < 8; i++ {
		fired, _ := rule.RunOnce(s)
		s.Rebuild()
		if !fired {
			break
		}
	}

	var found bool
	for _, c1 := range s.ABY {
		if c1.Type != "$addu" || c1.A != a {
			continue
		}
		for _, c2 := range s.ABY {
			if c2.Type == "$addu" && c2.Y == c1.B && c1.Y == y {
				found = true
			}
		}
	}
	if !found {
		t.Fatalf("expected a right-associated a+(b+c)=y chain to appear, aby_cells=%+v", s.ABY)
	}

	// the original left-associated rows must still be present too.
	foundOriginal := false
	for _, c1 := range s.ABY {
		if c1.Type == "$addu" && c1.A == a && c1.B == b {
			foundOriginal = true
		}
	}
	if !foundOriginal {
		t.Fatal("expected the original (a+b) row to remain; apply must never delete rows")
	}
}

func TestAssocLeftIsSymmetricToAssocRight(t *testing.T) {
	s := netlist.New("clk")
	a, b, c := oneBit(s), oneBit(s), oneBit(s)
	bc := oneBit(s)
	y := oneBit(s)
	s.InsertABY("$addu", b, c, bc)
	s.InsertABY("$addu", a, bc, y)

	rule := AssocLeft([]string{"$addu"})
	fired, n := rule.RunOnce(s)
	if !fired || n == 0 {
		t.Fatal("expected assoc_left to fire on a op (b op c) = y")
	}

	found := false
	for _, cell := range s.ABY {
		if cell.Type == "$addu" && cell.B == c && cell.Y == y {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a left-associated (a+b)+c=y row, aby_cells=%+v", s.ABY)
	}
}
