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

package wire

import "testing"

func TestClassify(t *testing.T) {
	cases := []struct {
		id   ID
		want Kind
	}{
		{GroundID, Ground},
		{SupplyID, Supply},
		{DontCareID, DontCare},
		{7, Net},
	}
	for _, c := range cases {
		if got := Classify(c.id); got != c.want {
			t.Errorf("Classify(%d) = %v, want %v", c.id, got, c.want)
		}
	}
}

func TestAllocatorResumesAfterSeed(t *testing.T) {
	a := NewAllocator(9)
	if got := a.Fresh(); got != 10 {
		t.Fatalf("expected 10, got %d", got)
	}
	if got := a.Max(); got != 10 {
		t.Fatalf("expected max 10, got %d", got)
	}
}

func TestAllocatorDefaultsWhenNoWiresObserved(t *testing.T) {
	a := NewAllocator(1)
	if got := a.Fresh(); got != FirstNetID {
		t.Fatalf("expected %d, got %d", FirstNetID, got)
	}
}
