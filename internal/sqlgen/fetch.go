package sqlgen

import (
	"context"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/sm"

	"github.com/pthm/joinplan/internal/planner"
	"github.com/pthm/joinplan/pkg/schema"
)

// OwnerKeyColumn is the extra column a many_to_many fetch selects so the
// engine can group fetched rows by the owner they belong to.
const OwnerKeyColumn = "joinplan_owner_key"

// FetchQuery is one follow-up query. It is executed once per level with the
// distinct ParentKey values of the parent rows bound to $1.
type FetchQuery struct {
	// Path is the field path from the root, ending with Field.
	Path  []string
	Field string
	// Anchor is the joined chain whose rows are the parents at the top level.
	// It is only set on top-level fetch queries.
	Anchor planner.Path
	// Owner is the entity declaring the association.
	Owner       string
	Association schema.Association
	// ParentKey is the column of the parent rows whose values are bound to $1.
	ParentKey string
	// MatchKey is the column of the fetched rows (or of the join table for
	// many_to_many) compared against the parent keys.
	MatchKey string
	SQL      string
	Children []FetchQuery
}

// Bind returns the query arguments for the given parent keys. keys should be
// a slice such as []int64 or []string.
func (f FetchQuery) Bind(keys any) []any {
	return []any{pq.Array(keys)}
}

// Walk visits f and its descendants depth-first.
func (f FetchQuery) Walk(fn func(FetchQuery)) {
	fn(f)
	for _, c := range f.Children {
		c.Walk(fn)
	}
}

// BuildFetches renders one FetchQuery tree per fetch directive.
func BuildFetches(s *schema.Schema, root string, fetches []planner.FetchDirective) ([]FetchQuery, error) {
	out := make([]FetchQuery, 0, len(fetches))
	for _, d := range fetches {
		owner, err := anchorEntity(s, root, d.Anchor)
		if err != nil {
			return nil, err
		}
		fq, err := buildFetch(s, owner, d.Anchor.Fields(), d.Node)
		if err != nil {
			return nil, err
		}
		fq.Anchor = d.Anchor
		out = append(out, fq)
	}
	return out, nil
}

// anchorEntity walks the anchor chain from root and returns the entity whose
// rows the fetch hangs from.
func anchorEntity(s *schema.Schema, root string, anchor planner.Path) (string, error) {
	entity := root
	for _, step := range anchor {
		a, err := s.Resolve(entity, step.Field)
		if err != nil {
			return "", err
		}
		entity = a.Target
	}
	return entity, nil
}

func buildFetch(s *schema.Schema, owner string, prefix []string, n planner.FetchNode) (FetchQuery, error) {
	a, err := s.Resolve(owner, n.Field)
	if err != nil {
		return FetchQuery{}, err
	}
	target, err := s.Entity(a.Target)
	if err != nil {
		return FetchQuery{}, err
	}

	path := append(append([]string(nil), prefix...), n.Field)
	sql, matchKey, err := renderFetch(a, target)
	if err != nil {
		return FetchQuery{}, fmt.Errorf("fetch %s: %w", strings.Join(path, "."), err)
	}

	fq := FetchQuery{
		Path:        path,
		Field:       n.Field,
		Owner:       owner,
		Association: a,
		ParentKey:   a.OwnerKey,
		MatchKey:    matchKey,
		SQL:         sql,
	}
	for _, c := range n.Nested {
		child, err := buildFetch(s, a.Target, path, c)
		if err != nil {
			return FetchQuery{}, err
		}
		fq.Children = append(fq.Children, child)
	}
	return fq, nil
}

// renderFetch renders
//
//	SELECT t0.* FROM target AS t0 WHERE t0.related_key = ANY($1)
//
// or, for many_to_many, the same query joined through the join table and
// filtered on the join table's owner column.
func renderFetch(a schema.Association, target schema.Entity) (string, string, error) {
	b := alias(target.Table, 0)
	keys := psql.F("ANY", psql.Arg(nil))

	var q bob.Query
	var matchKey string
	if a.Through == nil {
		matchKey = a.RelatedKey
		q = psql.Select(
			sm.Columns(psql.Raw(b+".*")),
			sm.From(psql.Quote(target.Table)).As(b),
			sm.Where(psql.Quote(b, a.RelatedKey).EQ(keys)),
			sm.OrderBy(psql.Quote(b, target.PrimaryKey)),
		)
	} else {
		jb := alias(a.Through.Table, 1)
		matchKey = a.Through.OwnerKey
		q = psql.Select(
			sm.Columns(psql.Raw(b+".*"), psql.Quote(jb, a.Through.OwnerKey).As(OwnerKeyColumn)),
			sm.From(psql.Quote(target.Table)).As(b),
			sm.InnerJoin(psql.Quote(a.Through.Table)).As(jb).On(
				psql.Quote(jb, a.Through.RelatedKey).EQ(psql.Quote(b, a.RelatedKey)),
			),
			sm.Where(psql.Quote(jb, a.Through.OwnerKey).EQ(keys)),
			sm.OrderBy(psql.Quote(b, target.PrimaryKey)),
		)
	}

	sql, args, err := bob.Build(context.Background(), q)
	if err != nil {
		return "", "", err
	}
	if len(args) != 1 {
		return "", "", fmt.Errorf("expected one query arg, got %d", len(args))
	}
	return strings.TrimSpace(sql), matchKey, nil
}
