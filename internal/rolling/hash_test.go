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

package rolling

import "testing"

func TestHashMatchesUpdate(t *testing.T) {
	xs := []int{2, 3, -1, 0, 1, 7, 9}
	h := Hash(xs)
	for i := range xs {
		old := xs[i]
		next := old + 11
		h2 := Update(h, len(xs), i, old, next)
		xs[i] = next
		want := Hash(xs)
		if h2 != want {
			t.Fatalf("update at %d: got %d want %d", i, h2, want)
		}
		h = h2
	}
}

func TestHashDistinguishesSequences(t *testing.T) {
	a := Hash([]int{1, 2, 3})
	b := Hash([]int{3, 2, 1})
	if a == b {
		t.Fatalf("expected different hashes for different orderings")
	}
}

func TestUpdateHandlesNegativeSentinels(t *testing.T) {
	xs := []int{-1, -1, 0, 1}
	h := Hash(xs)
	h2 := Update(h, len(xs), 0, -1, 5)
	xs[0] = 5
	if want := Hash(xs); h2 != want {
		t.Fatalf("got %d want %d", h2, want)
	}
}
