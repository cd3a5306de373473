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

package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/nlsat/eqsat/driver"
	"github.com/nlsat/eqsat/netlist"
	"github.com/nlsat/eqsat/netlist/schema"
	"github.com/nlsat/eqsat/rewrite"
)

func main() {
	schemaPath := flag.String("schema", "", "path to an external schema file (default: the built-in schema)")
	dbPath := flag.String("db", ":memory:", "sqlite database path, or :memory:")
	clk := flag.String("clk", "clk", "name of the module's global clock input port")
	budget := flag.Int("budget", 0, "maximum rewrite passes (0 = unbounded, run to saturation)")
	zstdOut := flag.Bool("z", false, "zstd-compress the dumped JSON")
	flag.Parse()

	args := flag.Args()
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: eqsatctl [-db path] [-clk name] [-budget n] [-z] <netlist.json>")
		os.Exit(2)
	}

	logger := log.New(os.Stderr, "eqsatctl: ", log.LstdFlags)

	f, err := os.Open(args[0])
	if err != nil {
		logger.Fatalf("open %s: %s", args[0], err)
	}
	var m netlist.Module
	err = json.NewDecoder(f).Decode(&m)
	f.Close()
	if err != nil {
		logger.Fatalf("parse %s: %s", args[0], err)
	}

	store, err := netlist.Build(&m, *clk)
	if err != nil {
		logger.Fatalf("build: %s", err)
	}

	ddl := schema.DDL
	if *schemaPath != "" {
		b, err := os.ReadFile(*schemaPath)
		if err != nil {
			logger.Fatalf("read schema %s: %s", *schemaPath, err)
		}
		ddl = string(b)
	}
	db, err := netlist.OpenSQLWithSchema(*dbPath, ddl)
	if err != nil {
		logger.Fatalf("open database %s: %s", *dbPath, err)
	}
	defer db.Close()

	res, err := driver.Run(context.Background(), store, rewrite.Default(), *budget, logger)
	if err != nil {
		logger.Fatalf("run: %s", err)
	}
	logger.Printf("run=%s passes=%d inserted=%d saturated=%v", res.RunID, res.Passes, res.Inserted, res.Saturated)

	if err := store.SaveSQL(db); err != nil {
		logger.Fatalf("persist: %s", err)
	}

	out := bufio.NewWriter(os.Stdout)
	if err := store.Dump().WriteJSON(out, *zstdOut); err != nil {
		logger.Fatalf("dump: %s", err)
	}
	if err := out.Flush(); err != nil {
		logger.Fatalf("flush: %s", err)
	}
}
