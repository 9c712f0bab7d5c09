package sqldsl

import "strings"

// TableRef is a table bound to an alias.
type TableRef struct {
	Name  string
	Alias string
}

// TableAs returns name AS alias.
func TableAs(name, alias string) TableRef { return TableRef{Name: name, Alias: alias} }

func (t TableRef) SQL() string {
	if t.Alias == "" {
		return Ident(t.Name)
	}
	return Ident(t.Name) + " AS " + Ident(t.Alias)
}

// JoinClause is a LEFT JOIN. Preloads never drop root rows, so no other
// join type is rendered.
type JoinClause struct {
	Table TableRef
	On    Eq
}

func (j JoinClause) SQL() string {
	return "LEFT JOIN " + j.Table.SQL() + " ON " + j.On.SQL()
}

// SelectStmt is the main preload query.
type SelectStmt struct {
	Columns []Expr
	From    TableRef
	Joins   []JoinClause
	OrderBy []Expr
}

// SQL renders the statement with one clause per line.
func (s SelectStmt) SQL() string {
	var b strings.Builder
	b.WriteString("SELECT ")
	writeList(&b, s.Columns, "1")
	b.WriteString("\nFROM ")
	b.WriteString(s.From.SQL())
	for _, j := range s.Joins {
		b.WriteByte('\n')
		b.WriteString(j.SQL())
	}
	if len(s.OrderBy) > 0 {
		b.WriteString("\nORDER BY ")
		writeList(&b, s.OrderBy, "")
	}
	return b.String()
}

func writeList(b *strings.Builder, exprs []Expr, empty string) {
	if len(exprs) == 0 {
		b.WriteString(empty)
		return
	}
	for i, e := range exprs {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(e.SQL())
	}
}
