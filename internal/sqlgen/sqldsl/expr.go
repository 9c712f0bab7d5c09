package sqldsl

import "strings"

// Expr is anything that renders as a SQL expression.
type Expr interface {
	SQL() string
}

// Col is a column of a binding, e.g. a0.author_id.
type Col struct {
	Table  string
	Column string
}

func (c Col) SQL() string {
	if c.Table == "" {
		return Ident(c.Column)
	}
	return Ident(c.Table) + "." + Ident(c.Column)
}

// StarExpr is every column of a binding.
type StarExpr struct {
	Table string
}

func (s StarExpr) SQL() string {
	if s.Table == "" {
		return "*"
	}
	return Ident(s.Table) + ".*"
}

// Star returns table.*.
func Star(table string) StarExpr { return StarExpr{Table: table} }

// Raw is rendered as is. Callers quote identifiers themselves.
type Raw string

func (r Raw) SQL() string { return string(r) }

// Func is a function call.
type Func struct {
	Name string
	Args []Expr
}

func (f Func) SQL() string {
	var b strings.Builder
	b.WriteString(f.Name)
	b.WriteByte('(')
	for i, arg := range f.Args {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(arg.SQL())
	}
	b.WriteByte(')')
	return b.String()
}

// Alias names a selected expression.
type Alias struct {
	Expr Expr
	Name string
}

func (a Alias) SQL() string { return a.Expr.SQL() + " AS " + Ident(a.Name) }

// SelectAs returns expr AS alias.
func SelectAs(expr Expr, alias string) Alias { return Alias{Expr: expr, Name: alias} }

// Eq is key equality, the only condition a preload join uses.
type Eq struct {
	Left  Expr
	Right Expr
}

func (e Eq) SQL() string { return e.Left.SQL() + " = " + e.Right.SQL() }

// Ident renders name as a PostgreSQL identifier.
func Ident(name string) string {
	if isPlainIdent(name) {
		return name
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func isPlainIdent(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r == '_':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return !reserved[name]
}

// reserved holds the keywords most likely to collide with table or column
// names. It is not exhaustive.
var reserved = map[string]bool{
	"all": true, "and": true, "as": true, "case": true, "check": true,
	"column": true, "constraint": true, "default": true, "desc": true,
	"from": true, "group": true, "limit": true, "order": true, "select": true,
	"table": true, "to": true, "user": true, "where": true, "with": true,
}
