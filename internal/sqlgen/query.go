package sqlgen

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/pthm/joinplan/internal/planner"
	"github.com/pthm/joinplan/internal/sqlgen/sqldsl"
	"github.com/pthm/joinplan/pkg/schema"
)

// Join is one LEFT JOIN recorded on a Query.
type Join struct {
	// Binding is the alias of the joined target table.
	Binding string
	// ParentBinding is the alias of the row the association hangs from.
	ParentBinding string
	// Path is the field path from the root.
	Path        []string
	Association schema.Association
	Target      schema.Entity
	// ThroughBinding is the alias of the join table for many_to_many joins.
	ThroughBinding string
}

// Query is the main preload query for one root entity. It implements
// planner.Joiner: every join the planner decides on is recorded here as a
// LEFT JOIN with a freshly allocated binding.
//
// Bindings are the first letter of the table followed by a counter that is
// shared by every alias in the query, so they never collide.
type Query struct {
	schema      *schema.Schema
	root        schema.Entity
	rootBinding string
	joins       []Join
	byPath      map[string]int
	counter     int
}

// NewQuery creates a Query selecting from root.
func NewQuery(s *schema.Schema, root string) (*Query, error) {
	e, err := s.Entity(root)
	if err != nil {
		return nil, err
	}
	return &Query{
		schema:      s,
		root:        e,
		rootBinding: alias(e.Table, 0),
		byPath:      make(map[string]int),
	}, nil
}

// Root returns the root entity.
func (q *Query) Root() schema.Entity { return q.root }

// RootBinding implements planner.Joiner.
func (q *Query) RootBinding() string { return q.rootBinding }

// Join implements planner.Joiner. Asking for a path that is already joined
// returns the existing binding. A target entity missing from the schema is an
// error and allocates nothing.
func (q *Query) Join(req planner.JoinRequest) (string, error) {
	key := strings.Join(req.Path, ".")
	if i, ok := q.byPath[key]; ok {
		return q.joins[i].Binding, nil
	}

	target, err := q.schema.Entity(req.Association.Target)
	if err != nil {
		return "", fmt.Errorf("join %s: %w", key, err)
	}

	j := Join{
		ParentBinding: req.ParentBinding,
		Path:          append([]string(nil), req.Path...),
		Association:   req.Association,
		Target:        target,
	}
	if req.Association.Through != nil {
		j.ThroughBinding = q.next(req.Association.Through.Table)
	}
	j.Binding = q.next(target.Table)

	q.byPath[key] = len(q.joins)
	q.joins = append(q.joins, j)
	return j.Binding, nil
}

// Joins returns the recorded joins in the order they were made.
func (q *Query) Joins() []Join { return q.joins }

func (q *Query) next(table string) string {
	q.counter++
	return alias(table, q.counter)
}

// JoinClauses renders the recorded joins. A many_to_many join contributes
// two clauses: the join table, then the target.
func (q *Query) JoinClauses() []sqldsl.JoinClause {
	var out []sqldsl.JoinClause
	for _, j := range q.joins {
		a := j.Association
		if a.Through == nil {
			out = append(out, sqldsl.JoinClause{
				Table: sqldsl.TableAs(j.Target.Table, j.Binding),
				On: sqldsl.Eq{
					Left:  sqldsl.Col{Table: j.Binding, Column: a.RelatedKey},
					Right: sqldsl.Col{Table: j.ParentBinding, Column: a.OwnerKey},
				},
			})
			continue
		}
		out = append(out,
			sqldsl.JoinClause{
				Table: sqldsl.TableAs(a.Through.Table, j.ThroughBinding),
				On: sqldsl.Eq{
					Left:  sqldsl.Col{Table: j.ThroughBinding, Column: a.Through.OwnerKey},
					Right: sqldsl.Col{Table: j.ParentBinding, Column: a.OwnerKey},
				},
			},
			sqldsl.JoinClause{
				Table: sqldsl.TableAs(j.Target.Table, j.Binding),
				On: sqldsl.Eq{
					Left:  sqldsl.Col{Table: j.Binding, Column: a.RelatedKey},
					Right: sqldsl.Col{Table: j.ThroughBinding, Column: a.Through.RelatedKey},
				},
			},
		)
	}
	return out
}

// Select builds the main query: every root column, plus one JSON column per
// joined binding named after the binding.
func (q *Query) Select() sqldsl.SelectStmt {
	cols := []sqldsl.Expr{sqldsl.Star(q.rootBinding)}
	for _, j := range q.joins {
		cols = append(cols, sqldsl.SelectAs(
			sqldsl.Func{Name: "to_jsonb", Args: []sqldsl.Expr{sqldsl.Raw(sqldsl.Ident(j.Binding))}},
			j.Binding,
		))
	}
	return sqldsl.SelectStmt{
		Columns: cols,
		From:    sqldsl.TableAs(q.root.Table, q.rootBinding),
		Joins:   q.JoinClauses(),
		OrderBy: []sqldsl.Expr{sqldsl.Col{Table: q.rootBinding, Column: q.root.PrimaryKey}},
	}
}

// alias builds "<first letter of table><n>", falling back to "t" for tables
// that do not start with a letter.
func alias(table string, n int) string {
	letter := 't'
	for _, r := range table {
		if unicode.IsLetter(r) && r < unicode.MaxASCII {
			letter = unicode.ToLower(r)
		}
		break
	}
	return fmt.Sprintf("%c%d", letter, n)
}
