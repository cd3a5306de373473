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

import "fmt"

// BuildError reports an unsupported-construct error encountered while
// translating a synthesized module description into store rows (spec
// §7: "Unsupported-construct"). It is fatal to the current build:
// Build returns it with a nil store, so no partially built store
// reaches the caller. The checks run after the cell's port WireVecs
// have been interned, so the discarded store may already hold them.
type BuildError struct {
	Cell   string
	Reason string
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("build error: cell %q: %s", e.Cell, e.Reason)
}

// InvariantError indicates a schema-invariant violation (spec §7):
// a hash/member mismatch, a WireVec id collision, or a dangling wire
// reference. It always indicates a defect in the core itself, so it
// is raised as a panic rather than returned, matching spec §4.5's
// "Failure semantics" paragraph ("not a user error, and aborts the
// process").
type InvariantError struct {
	Detail string
}

func (e InvariantError) Error() string {
	return fmt.Sprintf("invariant violation: %s", e.Detail)
}
