// Package sql provides the embedded catalog queries used to introspect a
// PostgreSQL database.
package sql

import (
	_ "embed"
)

// Each query takes one argument: a comma-separated list of schema names.
// Results are ordered so that introspection output is deterministic.

// TablesSQL lists ordinary and partitioned tables with their primary key
// columns as a comma-separated string in key order.
//
//go:embed tables.sql
var TablesSQL string

// ColumnsSQL lists every user column of every table.
//
//go:embed columns.sql
var ColumnsSQL string

// ForeignKeysSQL lists single-column foreign keys.
//
//go:embed foreign_keys.sql
var ForeignKeysSQL string

// UniqueColumnsSQL lists columns covered on their own by a unique index,
// primary keys included.
//
//go:embed unique_columns.sql
var UniqueColumnsSQL string

// IndexedColumnsSQL lists columns that lead at least one index.
//
//go:embed indexed_columns.sql
var IndexedColumnsSQL string
