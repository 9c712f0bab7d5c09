package introspect

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	catalogsql "github.com/pthm/joinplan/sql"
)

// Querier is satisfied by *sql.DB, *sql.Tx and *sql.Conn.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Table is one table as read from the catalog.
type Table struct {
	Schema     string
	Name       string
	PrimaryKey []string
	Columns    []string
	// Unique holds columns covered on their own by a unique index.
	Unique map[string]bool
	// Indexed holds columns that lead at least one index.
	Indexed map[string]bool
}

// HasColumn reports whether the table has the named column.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// ForeignKey is a single-column foreign key.
type ForeignKey struct {
	Name         string
	ChildTable   string
	ChildColumn  string
	ParentTable  string
	ParentColumn string
}

// Catalog is the subset of the PostgreSQL catalog needed to derive
// associations. Tables are keyed by name; schemas sharing a table name are
// not distinguished.
type Catalog struct {
	Tables      map[string]*Table
	Order       []string
	ForeignKeys []ForeignKey
}

// Table returns the named table or nil.
func (c *Catalog) Table(name string) *Table { return c.Tables[name] }

// ReadCatalog reads tables, columns, keys and indexes from the given schemas
// (default "public").
func ReadCatalog(ctx context.Context, q Querier, schemas ...string) (*Catalog, error) {
	if len(schemas) == 0 {
		schemas = []string{"public"}
	}
	arg := strings.Join(schemas, ",")
	cat := &Catalog{Tables: make(map[string]*Table)}

	err := scan(ctx, q, "tables", catalogsql.TablesSQL, arg, func(rows *sql.Rows) error {
		var t Table
		var pk string
		if err := rows.Scan(&t.Schema, &t.Name, &pk); err != nil {
			return err
		}
		if pk != "" {
			t.PrimaryKey = strings.Split(pk, ",")
		}
		t.Unique = make(map[string]bool)
		t.Indexed = make(map[string]bool)
		if _, dup := cat.Tables[t.Name]; !dup {
			cat.Order = append(cat.Order, t.Name)
		}
		cat.Tables[t.Name] = &t
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = scan(ctx, q, "columns", catalogsql.ColumnsSQL, arg, func(rows *sql.Rows) error {
		var table, column string
		if err := rows.Scan(&table, &column); err != nil {
			return err
		}
		if t := cat.Tables[table]; t != nil {
			t.Columns = append(t.Columns, column)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = scan(ctx, q, "foreign keys", catalogsql.ForeignKeysSQL, arg, func(rows *sql.Rows) error {
		var fk ForeignKey
		if err := rows.Scan(&fk.Name, &fk.ChildTable, &fk.ChildColumn, &fk.ParentTable, &fk.ParentColumn); err != nil {
			return err
		}
		cat.ForeignKeys = append(cat.ForeignKeys, fk)
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, idx := range []struct {
		name  string
		query string
		set   func(*Table) map[string]bool
	}{
		{"unique columns", catalogsql.UniqueColumnsSQL, func(t *Table) map[string]bool { return t.Unique }},
		{"indexed columns", catalogsql.IndexedColumnsSQL, func(t *Table) map[string]bool { return t.Indexed }},
	} {
		err = scan(ctx, q, idx.name, idx.query, arg, func(rows *sql.Rows) error {
			var table, column string
			if err := rows.Scan(&table, &column); err != nil {
				return err
			}
			if t := cat.Tables[table]; t != nil {
				idx.set(t)[column] = true
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return cat, nil
}

func scan(ctx context.Context, q Querier, what, query, arg string, fn func(*sql.Rows) error) error {
	rows, err := q.QueryContext(ctx, query, arg)
	if err != nil {
		return fmt.Errorf("query %s: %w", what, err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		if err := fn(rows); err != nil {
			return fmt.Errorf("scan %s: %w", what, err)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("read %s: %w", what, err)
	}
	return nil
}
