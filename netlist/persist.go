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

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/nlsat/eqsat/netlist/schema"
)

// OpenSQL opens (creating if necessary) a SQLite database at path,
// which may be the literal string ":memory:" per spec §6, and applies
// the embedded schema. The returned *sql.DB is safe to pass to SaveSQL
// and LoadSQL.
func OpenSQL(path string) (*sql.DB, error) {
	return OpenSQLWithSchema(path, schema.DDL)
}

// OpenSQLWithSchema is OpenSQL with the DDL loaded from an external
// file's contents instead of the package's embedded default, per
// spec.md §6 ("The SQL-like schema is loaded from an external file at
// construction").
func OpenSQLWithSchema(path, ddl string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if _, err := db.Exec(ddl); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return db, nil
}

var persistTables = []string{
	"instance_ports", "instances", "as_outputs", "from_inputs",
	"dffs", "absy_cells", "aby_cells", "ay_cells",
	"wirevec_members", "wirevecs",
}

// SaveSQL replaces db's contents with this store's current dump,
// inside a single transaction (all-or-nothing, per the "apply never
// leaves partial state visible" rule spec §4.6 states for in-memory
// mutation, extended here to the persisted copy).
func (s *Store) SaveSQL(db *sql.DB) error {
	snap := s.Dump()
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, t := range persistTables {
		if _, err := tx.Exec("DELETE FROM " + t); err != nil {
			return fmt.Errorf("clear %s: %w", t, err)
		}
	}

	for _, r := range snap["wirevecs"] {
		if _, err := tx.Exec(`INSERT INTO wirevecs(id, hash, width) VALUES (?, ?, ?)`,
			r["id"], r["hash"], r["width"]); err != nil {
			return fmt.Errorf("insert wirevecs: %w", err)
		}
	}
	for _, r := range snap["wirevec_members"] {
		if _, err := tx.Exec(`INSERT INTO wirevec_members(wirevec, idx, wire) VALUES (?, ?, ?)`,
			r["wirevec"], r["idx"], r["wire"]); err != nil {
			return fmt.Errorf("insert wirevec_members: %w", err)
		}
	}
	for _, r := range snap["ay_cells"] {
		if _, err := tx.Exec(`INSERT INTO ay_cells(type, a, y) VALUES (?, ?, ?)`,
			r["type"], r["a"], r["y"]); err != nil {
			return fmt.Errorf("insert ay_cells: %w", err)
		}
	}
	for _, r := range snap["aby_cells"] {
		if _, err := tx.Exec(`INSERT INTO aby_cells(type, a, b, y) VALUES (?, ?, ?, ?)`,
			r["type"], r["a"], r["b"], r["y"]); err != nil {
			return fmt.Errorf("insert aby_cells: %w", err)
		}
	}
	for _, r := range snap["absy_cells"] {
		if _, err := tx.Exec(`INSERT INTO absy_cells(type, a, b, s, y) VALUES (?, ?, ?, ?, ?)`,
			r["type"], r["a"], r["b"], r["s"], r["y"]); err != nil {
			return fmt.Errorf("insert absy_cells: %w", err)
		}
	}
	for _, r := range snap["dffs"] {
		if _, err := tx.Exec(`INSERT INTO dffs(d, q) VALUES (?, ?)`, r["d"], r["q"]); err != nil {
			return fmt.Errorf("insert dffs: %w", err)
		}
	}
	for _, r := range snap["from_inputs"] {
		if _, err := tx.Exec(`INSERT INTO from_inputs(source, name) VALUES (?, ?)`,
			r["source"], r["name"]); err != nil {
			return fmt.Errorf("insert from_inputs: %w", err)
		}
	}
	for _, r := range snap["as_outputs"] {
		if _, err := tx.Exec(`INSERT INTO as_outputs(sink, name) VALUES (?, ?)`,
			r["sink"], r["name"]); err != nil {
			return fmt.Errorf("insert as_outputs: %w", err)
		}
	}
	for _, r := range snap["instances"] {
		params, err := json.Marshal(r["params"])
		if err != nil {
			return fmt.Errorf("marshal instance params: %w", err)
		}
		if _, err := tx.Exec(`INSERT INTO instances(name, module, params) VALUES (?, ?, ?)`,
			r["name"], r["module"], string(params)); err != nil {
			return fmt.Errorf("insert instances: %w", err)
		}
	}
	for _, r := range snap["instance_ports"] {
		if _, err := tx.Exec(`INSERT INTO instance_ports(instance, port, wirevec) VALUES (?, ?, ?)`,
			r["instance"], r["port"], r["wirevec"]); err != nil {
			return fmt.Errorf("insert instance_ports: %w", err)
		}
	}
	return tx.Commit()
}

// LoadSQL reconstructs a Store from a database previously populated by
// SaveSQL.
func LoadSQL(db *sql.DB, clockName string) (*Store, error) {
	snap := Snapshot{}

	if err := queryInto(db, &snap, "wirevecs",
		`SELECT id, hash, width FROM wirevecs`,
		func(scan func(...any) error) (Row, error) {
			var id, hash, width int64
			if err := scan(&id, &hash, &width); err != nil {
				return nil, err
			}
			return Row{"id": id, "hash": hash, "width": width}, nil
		}); err != nil {
		return nil, err
	}
	if err := queryInto(db, &snap, "wirevec_members",
		`SELECT wirevec, idx, wire FROM wirevec_members`,
		func(scan func(...any) error) (Row, error) {
			var wv, idx, w int64
			if err := scan(&wv, &idx, &w); err != nil {
				return nil, err
			}
			return Row{"wirevec": wv, "idx": idx, "wire": w}, nil
		}); err != nil {
		return nil, err
	}
	if err := queryInto(db, &snap, "ay_cells",
		`SELECT type, a, y FROM ay_cells`,
		func(scan func(...any) error) (Row, error) {
			var typ string
			var a, y int64
			if err := scan(&typ, &a, &y); err != nil {
				return nil, err
			}
			return Row{"type": typ, "a": a, "y": y}, nil
		}); err != nil {
		return nil, err
	}
	if err := queryInto(db, &snap, "aby_cells",
		`SELECT type, a, b, y FROM aby_cells`,
		func(scan func(...any) error) (Row, error) {
			var typ string
			var a, b, y int64
			if err := scan(&typ, &a, &b, &y); err != nil {
				return nil, err
			}
			return Row{"type": typ, "a": a, "b": b, "y": y}, nil
		}); err != nil {
		return nil, err
	}
	if err := queryInto(db, &snap, "absy_cells",
		`SELECT type, a, b, s, y FROM absy_cells`,
		func(scan func(...any) error) (Row, error) {
			var typ string
			var a, b, sel, y int64
			if err := scan(&typ, &a, &b, &sel, &y); err != nil {
				return nil, err
			}
			return Row{"type": typ, "a": a, "b": b, "s": sel, "y": y}, nil
		}); err != nil {
		return nil, err
	}
	if err := queryInto(db, &snap, "dffs",
		`SELECT d, q FROM dffs`,
		func(scan func(...any) error) (Row, error) {
			var d, q int64
			if err := scan(&d, &q); err != nil {
				return nil, err
			}
			return Row{"d": d, "q": q}, nil
		}); err != nil {
		return nil, err
	}
	if err := queryInto(db, &snap, "from_inputs",
		`SELECT source, name FROM from_inputs`,
		func(scan func(...any) error) (Row, error) {
			var src int64
			var name string
			if err := scan(&src, &name); err != nil {
				return nil, err
			}
			return Row{"source": src, "name": name}, nil
		}); err != nil {
		return nil, err
	}
	if err := queryInto(db, &snap, "as_outputs",
		`SELECT sink, name FROM as_outputs`,
		func(scan func(...any) error) (Row, error) {
			var sink int64
			var name string
			if err := scan(&sink, &name); err != nil {
				return nil, err
			}
			return Row{"sink": sink, "name": name}, nil
		}); err != nil {
		return nil, err
	}

	if err := queryInto(db, &snap, "instances",
		`SELECT name, module, params FROM instances`,
		func(scan func(...any) error) (Row, error) {
			var name, module, paramsJSON string
			if err := scan(&name, &module, &paramsJSON); err != nil {
				return nil, err
			}
			var params map[string]int64
			if err := json.Unmarshal([]byte(paramsJSON), &params); err != nil {
				return nil, fmt.Errorf("instance %s: params: %w", name, err)
			}
			return Row{"name": name, "module": module, "params": params}, nil
		}); err != nil {
		return nil, err
	}
	if err := queryInto(db, &snap, "instance_ports",
		`SELECT instance, port, wirevec FROM instance_ports`,
		func(scan func(...any) error) (Row, error) {
			var instance, port string
			var wv int64
			if err := scan(&instance, &port, &wv); err != nil {
				return nil, err
			}
			return Row{"instance": instance, "port": port, "wirevec": wv}, nil
		}); err != nil {
		return nil, err
	}

	return Load(snap, clockName)
}

// queryInto runs query against db and appends one Row per result row
// to snap[table], using scanRow to pull columns out of the driver's
// positional scan. It exists so LoadSQL's ten near-identical queries
// don't each repeat the rows.Err/rows.Close bookkeeping.
func queryInto(db *sql.DB, snap *Snapshot, table, query string, scanRow func(scan func(...any) error) (Row, error)) error {
	rows, err := db.Query(query)
	if err != nil {
		return fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()
	for rows.Next() {
		row, err := scanRow(rows.Scan)
		if err != nil {
			return fmt.Errorf("scan %s: %w", table, err)
		}
		(*snap)[table] = append((*snap)[table], row)
	}
	return rows.Err()
}
