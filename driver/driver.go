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

// Package driver implements the alternation loop of spec.md §4.7: run
// every rule's ematch/apply, rebuild if anything tagged post_rebuild
// fired, and repeat until a full pass inserts nothing or the pass
// budget is exhausted.
package driver

import (
	"context"
	"log"

	"github.com/google/uuid"

	"github.com/nlsat/eqsat/netlist"
	"github.com/nlsat/eqsat/rewrite"
)

// Result summarizes one call to Run.
type Result struct {
	RunID     string
	Passes    int
	Inserted  int
	Saturated bool // true if it terminated on a zero-rewrite pass rather than the budget
}

// Run calls s.Rebuild once, then alternates ematch/apply rounds over
// rules with rebuilds, until a pass applies zero rewrites or budget
// passes have run (budget <= 0 means unbounded). Every log line is
// tagged with a per-run uuid so concurrent or sequential saturation
// runs are greppable, mirroring how the teacher codebase correlates
// per-session log lines with a uuid.
//
// A rule tagged PostRebuild=false (e.g. commutativity) only inserts
// redundant rows for congruence to collapse later; it never forces a
// rebuild on its own. So a pass can reach total==0 (nothing further to
// insert) while such rows are still sitting un-rebuilt from an earlier
// pass. Run tracks that as "dirty" and, on an otherwise-saturated pass,
// spends one more rebuild before it will actually declare saturation —
// otherwise a run could stop with stale congruence-key collisions the
// store never resolved.
func Run(ctx context.Context, s *netlist.Store, rules []rewrite.Rule, budget int, logger *log.Logger) (Result, error) {
	runID := uuid.NewString()
	if logger == nil {
		logger = log.Default()
	}

	s.Rebuild()
	logger.Printf("run=%s pass=0 rebuild initial", runID)

	res := Result{RunID: runID}
	dirty := false
	for budget <= 0 || res.Passes < budget {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Passes++

		total := 0
		needRebuild := false
		for _, r := range rules {
			_, n := r.RunOnce(s)
			if n > 0 {
				total += n
				if r.PostRebuild {
					needRebuild = true
				} else {
					dirty = true
				}
				logger.Printf("run=%s pass=%d rule=%s inserted=%d", runID, res.Passes, r.Name, n)
			}
		}
		res.Inserted += total

		if needRebuild {
			s.Rebuild()
			dirty = false
			logger.Printf("run=%s pass=%d rebuild", runID, res.Passes)
		}

		if total == 0 {
			if dirty {
				s.Rebuild()
				dirty = false
				logger.Printf("run=%s pass=%d rebuild (pending redundant rows)", runID, res.Passes)
				continue
			}
			res.Saturated = true
			logger.Printf("run=%s pass=%d saturated", runID, res.Passes)
			break
		}
	}
	return res, nil
}
