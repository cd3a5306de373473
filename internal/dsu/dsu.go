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

// Package dsu implements an integer union-find (disjoint set union)
// with path compression. Ties are broken in favor of the smaller id,
// which is a stable canonicalization that downstream dump/compare
// logic depends on.
package dsu

// DSU is a union-find structure over non-negative integer elements.
// The zero value is ready to use.
type DSU struct {
	parent map[int]int
}

// Find returns the representative of x's set, inserting x as its own
// root if it has not been seen before.
func (d *DSU) Find(x int) int {
	if d.parent == nil {
		d.parent = make(map[int]int)
	}
	p, ok := d.parent[x]
	if !ok {
		d.parent[x] = x
		return x
	}
	if p == x {
		return x
	}
	root := d.Find(p)
	d.parent[x] = root
	return root
}

// Union merges the sets containing x and y. The smaller of the two
// roots becomes the representative of the merged set.
func (d *DSU) Union(x, y int) {
	rx, ry := d.Find(x), d.Find(y)
	if rx == ry {
		return
	}
	if rx < ry {
		d.parent[ry] = rx
	} else {
		d.parent[rx] = ry
	}
}

// Touched returns every element ever inserted into d, via Find or
// Union, in no particular order. Callers that need to iterate over
// everything the DSU has merged (e.g. to rewrite references) use this
// instead of tracking their own set of touched ids.
func (d *DSU) Touched() []int {
	out := make([]int, 0, len(d.parent))
	for x := range d.parent {
		out = append(out, x)
	}
	return out
}

// Roots returns the set of distinct representatives among Touched().
func (d *DSU) Roots() []int {
	seen := make(map[int]bool)
	for x := range d.parent {
		seen[d.Find(x)] = true
	}
	out := make([]int, 0, len(seen))
	for r := range seen {
		out = append(out, r)
	}
	return out
}
