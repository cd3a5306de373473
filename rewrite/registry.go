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

// arithTypes are the aby_cells types the built-in algebraic rules
// apply to: commutative, associative bitwise and arithmetic ops.
// $sub is deliberately excluded from AssocLeft/AssocRight/Commutativity
// since subtraction is neither commutative nor associative.
var arithTypes = []string{
	"$andu", "$ands", "$oru", "$ors", "$xoru", "$xors",
	"$addu", "$adds", "$mulu", "$muls",
}

// Default returns the built-in rule set of spec.md §4.6: commutativity
// and both associativity directions over the commutative/associative
// arithmetic and bitwise cell types, plus flip-flop forwarding over
// every aby_cells type.
func Default() []Rule {
	return []Rule{
		Commutativity(arithTypes),
		AssocRight(arithTypes),
		AssocLeft(arithTypes),
		DFFForward(nil),
	}
}
