package main

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"
)

// Seeds a small demo store (default BC.db) with the TRANSACT/INPUTS/OUTPUTS
// schema the sqlite backend reads, including a change output that cycles back
// to the first address. Usage: go run scripts/seed_demo_db.go [path].
func main() {
	path := "BC.db"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		fmt.Printf("Failed to open %s: %v\n", path, err)
		os.Exit(1)
	}
	defer db.Close()

	schema := []string{
		`CREATE TABLE IF NOT EXISTS TRANSACT (
			hash TEXT PRIMARY KEY,
			time TEXT NOT NULL,
			input_total TEXT NOT NULL,
			output_total TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS INPUTS (
			transaction_hash TEXT NOT NULL,
			recipient TEXT,
			value TEXT,
			spending_transaction_hash TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS OUTPUTS (
			transaction_hash TEXT NOT NULL,
			recipient TEXT,
			value TEXT
		)`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			fmt.Printf("Failed to create schema: %v\n", err)
			os.Exit(1)
		}
	}

	txA := "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	txB := "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
	txC := "cccccccccccccccccccccccccccccccccccccccccccccccccccccccccccccccc"
	addr1 := "1DemoAlphaAlphaAlphaAlphaAlpha"
	addr2 := "1DemoBravoBravoBravoBravoBravo"
	addr3 := "1DemoCharlieCharlieCharlieChar"

	type row struct {
		query string
		args  []interface{}
	}
	rows := []row{
		{`INSERT OR REPLACE INTO TRANSACT VALUES (?, ?, ?, ?)`, []interface{}{txA, "2024-01-10 09:30:00", "5.0", "5.0"}},
		{`INSERT OR REPLACE INTO TRANSACT VALUES (?, ?, ?, ?)`, []interface{}{txB, "2024-01-11 14:00:00", "3.0", "3.0"}},
		{`INSERT OR REPLACE INTO TRANSACT VALUES (?, ?, ?, ?)`, []interface{}{txC, "2024-01-12 08:15:00", "1.0", "1.0"}},

		{`INSERT INTO INPUTS VALUES (?, ?, ?, ?)`, []interface{}{txA, addr1, "5.0", txB}},
		{`INSERT INTO OUTPUTS VALUES (?, ?, ?)`, []interface{}{txA, addr2, "3.0"}},
		{`INSERT INTO OUTPUTS VALUES (?, ?, ?)`, []interface{}{txA, addr3, "2.0"}},

		{`INSERT INTO INPUTS VALUES (?, ?, ?, ?)`, []interface{}{txB, addr2, "3.0", txC}},
		{`INSERT INTO OUTPUTS VALUES (?, ?, ?)`, []interface{}{txB, addr3, "3.0"}},

		// Change cycles back to the first address.
		{`INSERT INTO INPUTS VALUES (?, ?, ?, ?)`, []interface{}{txC, addr3, "1.0", nil}},
		{`INSERT INTO OUTPUTS VALUES (?, ?, ?)`, []interface{}{txC, addr1, "1.0"}},
	}
	for _, r := range rows {
		if _, err := db.Exec(r.query, r.args...); err != nil {
			fmt.Printf("Failed to insert demo data: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Printf("Seeded demo store at %s (try explore.target=%s)\n", path, addr1)
}
