// Package joinplan plans how nested associations are preloaded alongside a
// relational query.
//
// # Overview
//
// A preload request names associations to load with the root rows, for
// example "each article's author, the author's role, and the article's
// comments". For every association edge joinplan decides whether it is
// satisfied by a LEFT JOIN folded into the main query or by a follow-up
// fetch keyed by the parent rows' identifiers, then renders the SQL for both.
//
// # Basic Usage
//
//	sch, _ := schema.ParseFile("schema.yaml")
//	q, _ := joinplan.From(sch, "article")
//	_ = q.Preload("author.role, comments")
//	res, err := q.Build()
//	// res.SQL: the main query, author and role LEFT JOINed
//	// res.Fetches: one query loading comments for a batch of article ids
//
// # Join Rules
//
// Singular associations (belongs_to, has_one) are joined when their parent
// is joined or is the root. Plural associations (has_many, many_to_many) are
// fetched. Once an association is fetched, everything beneath it is fetched
// too, so join chains never skip a hop.
//
// Join forces associations into the main query, plural ones included, for
// callers that need to filter on them. A later Preload of the same path
// reuses those joins.
//
// # Sessions
//
// A Query is a single-use build session. Preload and Join accumulate state;
// Build consumes it. A failed Preload or Join leaves the Query as it was.
// A Query must not be shared between goroutines.
package joinplan

import (
	"context"

	"github.com/pthm/joinplan/internal/planner"
	"github.com/pthm/joinplan/internal/sqlgen"
	"github.com/pthm/joinplan/pkg/schema"
)

// Spec is one requested association with optional nested associations.
type Spec = planner.Spec

// Field builds a Spec for name with the given nested specs.
func Field(name string, nested ...Spec) Spec { return planner.Field(name, nested...) }

// ParseSpec parses a compact association list such as
// "articles.comments, author[role, bio]".
func ParseSpec(s string) ([]Spec, error) { return planner.ParseSpec(s) }

// Option configures a Query.
type Option func(*Query)

// WithMode sets the join mode. The default is IfPreferable.
func WithMode(m JoinMode) Option {
	return func(q *Query) { q.mode = m }
}

// WithContextMode makes BuildContext honor a mode set with WithModeContext.
// Context modes take precedence over WithMode.
func WithContextMode() Option {
	return func(q *Query) { q.useContextMode = true }
}

// Query is a preload build session rooted at one entity.
type Query struct {
	schema         *schema.Schema
	root           string
	mode           JoinMode
	useContextMode bool

	sql   *sqlgen.Query
	token *planner.Token
	built bool
}

// From starts a Query selecting from root.
func From(s *schema.Schema, root string, opts ...Option) (*Query, error) {
	sq, err := sqlgen.NewQuery(s, root)
	if err != nil {
		return nil, err
	}
	q := &Query{
		schema: s,
		root:   root,
		mode:   IfPreferable,
		sql:    sq,
		token:  planner.NewToken(root),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q, nil
}

// Root returns the root entity name.
func (q *Query) Root() string { return q.root }

// Requested returns the top-level fields requested so far, in request order.
func (q *Query) Requested() []string {
	return append([]string(nil), q.token.Preload...)
}

// Preload requests the associations described by spec, in ParseSpec syntax.
func (q *Query) Preload(spec string) error {
	specs, err := planner.ParseSpec(spec)
	if err != nil {
		return err
	}
	return q.PreloadSpecs(specs...)
}

// PreloadSpecs requests the given associations.
func (q *Query) PreloadSpecs(specs ...Spec) error {
	if q.built {
		return ErrQueryBuilt
	}
	return q.planner(q.mode).Preload(q.token, specs...)
}

// Join joins the associations described by spec into the main query right
// away, whatever their cardinality.
func (q *Query) Join(spec string) error {
	specs, err := planner.ParseSpec(spec)
	if err != nil {
		return err
	}
	return q.JoinSpecs(specs...)
}

// JoinSpecs joins the given associations into the main query.
func (q *Query) JoinSpecs(specs ...Spec) error {
	if q.built {
		return ErrQueryBuilt
	}
	return q.planner(q.mode).Join(q.token, specs...)
}

// Build plans the remaining associations and renders the SQL. The Query
// cannot be used afterwards.
func (q *Query) Build() (*Result, error) {
	return q.build(q.mode)
}

// BuildContext is like Build but honors WithModeContext when the Query was
// created with WithContextMode.
func (q *Query) BuildContext(ctx context.Context) (*Result, error) {
	mode := q.mode
	if q.useContextMode {
		if m, ok := ModeFromContext(ctx); ok {
			mode = m
		}
	}
	return q.build(mode)
}

func (q *Query) build(mode JoinMode) (*Result, error) {
	if q.built {
		return nil, ErrQueryBuilt
	}

	plan, err := q.planner(mode).Plan(q.token)
	if err != nil {
		return nil, err
	}
	compiled, err := sqlgen.Compile(q.sql, plan)
	if err != nil {
		return nil, err
	}

	q.built = true
	q.token = nil
	return &Result{Plan: plan, Compiled: compiled}, nil
}

func (q *Query) planner(mode JoinMode) *planner.Planner {
	return planner.New(q.schema, q.sql, planner.WithMode(mode))
}

// Plan holds the join and fetch directives decided for one Build.
type Plan = planner.Plan

// JoinDirective copies already-joined rows into nested association fields.
type JoinDirective = planner.JoinDirective

// FetchDirective loads associations with a follow-up query anchored on
// already-loaded rows.
type FetchDirective = planner.FetchDirective

// FetchNode is one association loaded by a FetchDirective, with the
// associations loaded beneath it.
type FetchNode = planner.FetchNode

// Path is a joined chain of steps from the root, used as a fetch anchor.
type Path = planner.Path

// Step is one hop of a Path.
type Step = planner.Step

// Compiled is the SQL for a Plan: the main query and its fetch queries.
type Compiled = sqlgen.Compiled

// Join is one LEFT JOIN of the main query.
type Join = sqlgen.Join

// FetchQuery is one follow-up query of a Compiled plan.
type FetchQuery = sqlgen.FetchQuery

// Result is the output of Build.
type Result struct {
	Plan *Plan
	*Compiled
}

// Explain renders a human-readable description of the plan and its SQL.
func (r *Result) Explain() string {
	return sqlgen.Explain(r.Plan, r.Compiled)
}
