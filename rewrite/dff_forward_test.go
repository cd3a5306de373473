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

// TestDFFForwardIntroducesRetimedCell is spec §8's flip-flop-forwarding
// scenario: dff(d1)=a; dff(d2)=b; a+b=y. After dff_forward, a new cell
// (d1+d2)=pre and dff(pre,y) must appear, and the original a+b=y
// cell must remain alongside it.
func TestDFFForwardIntroducesRetimedCell(t *testing.T) {
	s := netlist.New("clk")
	d1, d2, a, b, y := oneBit(s), oneBit(s), oneBit(s), oneBit(s), oneBit(s)
	s.InsertDFF(d1, a)
	s.InsertDFF(d2, b)
	s.InsertABY("$addu", a, b, y)

	fired, n := DFFForward(nil).RunOnce(s)
	if !fired || n == 0 {
		t.Fatal("expected dff_forward to fire")
	}

	var pre netlist.WireVecID
	foundCell := false
	for _, c := range s.ABY {
		if c.Type == "$addu" && c.A == d1 && c.B == d2 {
			foundCell = true
			pre = c.Y
		}
	}
	if !foundCell {
		t.Fatalf("expected a forwarded (d1+d2)=pre cell, aby_cells=%+v", s.ABY)
	}

	foundDFF := false
	for _, c := range s.DFF {
		if c.D == pre && c.Q == y {
			foundDFF = true
		}
	}
	if !foundDFF {
		t.Fatalf("expected dff(pre)=y, dffs=%+v", s.DFF)
	}

	// the original structure must still be present.
	foundOriginal := false
	for _, c := range s.ABY {
		if c.Type == "$addu" && c.A == a && c.B == b {
			foundOriginal = true
		}
	}
	if !foundOriginal {
		t.Fatal("expected the original a+b=y cell to remain; apply must never delete rows")
	}
}

func TestDFFForwardTypeFilter(t *testing.T) {
	s := netlist.New("clk")
	d1, d2, a, b, y := oneBit(s), oneBit(s), oneBit(s), oneBit(s), oneBit(s)
	s.InsertDFF(d1, a)
	s.InsertDFF(d2, b)
	s.InsertABY("$subu", a, b, y)

	fired, _ := DFFForward([]string{"$addu"}).RunOnce(s)
	if fired {
		t.Fatal("expected the type filter to exclude $subu")
	}
}
