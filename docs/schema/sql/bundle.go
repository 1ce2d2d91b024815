// Package sqldocs holds the DDL of the export record state table, one file
// per SQL dialect.
package sqldocs

import _ "embed"

// SQLite creates the state table in SQLite.
//
//go:embed sqlite.sql
var SQLite string

// Postgres creates the state table in Postgres.
//
//go:embed postgres.sql
var Postgres string
