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

package dsu

import "testing"

func TestUnionSmallerIdWins(t *testing.T) {
	var d DSU
	d.Union(5, 2)
	if d.Find(5) != 2 {
		t.Fatalf("expected smaller id 2 to win, got %d", d.Find(5))
	}
	d.Union(2, 9)
	if d.Find(9) != 2 {
		t.Fatalf("expected root 2 after chained union, got %d", d.Find(9))
	}
}

func TestFindUnknownInsertsAsRoot(t *testing.T) {
	var d DSU
	if got := d.Find(42); got != 42 {
		t.Fatalf("expected 42, got %d", got)
	}
}

func TestChainedUnionsShareRoot(t *testing.T) {
	var d DSU
	d.Union(1, 0)
	d.Union(2, 1)
	d.Union(3, 2)
	if d.Find(3) != 0 {
		t.Fatalf("expected root 0, got %d", d.Find(3))
	}
}
