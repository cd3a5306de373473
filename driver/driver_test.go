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

package driver

import (
	"bytes"
	"context"
	"log"
	"testing"

	"github.com/nlsat/eqsat/internal/wire"
	"github.com/nlsat/eqsat/netlist"
	"github.com/nlsat/eqsat/rewrite"
)

func TestRunSaturatesAndStops(t *testing.T) {
	s := netlist.New("clk")
	a := s.Add([]wire.ID{s.FreshWire()})
	b := s.Add([]wire.ID{s.FreshWire()})
	y := s.Add([]wire.ID{s.FreshWire()})
	yPrime := s.Add([]wire.ID{s.FreshWire()})
	s.InsertABY("$addu", a, b, y)
	s.InsertABY("$addu", b, a, yPrime)

	var buf bytes.Buffer
	logger := log.New(&buf, "", 0)

	res, err := Run(context.Background(), s, rewrite.Default(), 0, logger)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.Saturated {
		t.Fatal("expected the run to saturate rather than exhaust its budget")
	}
	if res.RunID == "" {
		t.Fatal("expected a non-empty run id")
	}
	if buf.Len() == 0 {
		t.Fatal("expected log output tagged with the run id")
	}
}

func TestRunRespectsBudget(t *testing.T) {
	s := netlist.New("clk")
	a, b := s.Add([]wire.ID{s.FreshWire()}), s.Add([]wire.ID{s.FreshWire()})
	y := s.Add([]wire.ID{s.FreshWire()})
	s.InsertABY("$addu", a, b, y)

	res, err := Run(context.Background(), s, rewrite.Default(), 1, log.New(bytes.NewBuffer(nil), "", 0))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Passes > 1 {
		t.Fatalf("expected at most 1 pass with budget=1, got %d", res.Passes)
	}
}

func TestRunHonorsCancellation(t *testing.T) {
	s := netlist.New("clk")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, s, rewrite.Default(), 0, log.New(bytes.NewBuffer(nil), "", 0))
	if err == nil {
		t.Fatal("expected Run to report the canceled context")
	}
}
