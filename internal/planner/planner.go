package planner

import (
	"github.com/pthm/joinplan/internal/logging"
)

// Plan is the directive set produced by one terminal planning call.
type Plan struct {
	Root        string
	RootBinding string
	Mode        JoinMode
	// Paths are the flattened root-to-leaf paths with their join decisions.
	Paths []Path
	// Joins are the maximal joined chains, one directive each.
	Joins []JoinDirective
	// Fetches are the follow-up fetches, one per anchor and first field.
	Fetches []FetchDirective
}

// Planner runs the preload pipeline against a schema resolver and a join
// collaborator. A Planner is stateless apart from its configuration; all
// per-query state lives in the Token passed to each call.
type Planner struct {
	resolver Resolver
	joiner   Joiner
	mode     JoinMode
}

// Option configures a Planner.
type Option func(*Planner)

// WithMode sets the join mode used by Plan. The default is IfPreferable.
func WithMode(m JoinMode) Option {
	return func(p *Planner) { p.mode = m }
}

// New creates a Planner.
func New(r Resolver, j Joiner, opts ...Option) *Planner {
	p := &Planner{resolver: r, joiner: j, mode: IfPreferable}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Mode returns the join mode used by Plan.
func (p *Planner) Mode() JoinMode { return p.mode }

// Preload merges specs into tok without deciding anything. On error tok is
// left unchanged.
func (p *Planner) Preload(tok *Token, specs ...Spec) error {
	next, err := Build(tok, p.resolver, specs)
	if err != nil {
		return err
	}
	*tok = *next
	return nil
}

// Join merges specs into tok and joins every named association immediately,
// plural ones included. Later Plan calls reuse these bindings. On error tok
// is left unchanged.
func (p *Planner) Join(tok *Token, specs ...Spec) error {
	next, err := Build(tok, p.resolver, specs)
	if err != nil {
		return err
	}
	if err := DecideSpecs(next.Forest, specs, Always, p.joiner); err != nil {
		return err
	}
	if err := CheckContiguity(next.Forest); err != nil {
		return err
	}
	*tok = *next
	return nil
}

// Plan decides every remaining descriptor of tok and emits the directives.
// tok is consumed: callers should discard it afterwards.
func (p *Planner) Plan(tok *Token) (*Plan, error) {
	forest := cloneForest(tok.Forest)
	if err := Decide(forest, p.mode, p.joiner); err != nil {
		return nil, err
	}
	if err := CheckContiguity(forest); err != nil {
		return nil, err
	}

	paths := Flatten(forest)
	chains := make([]Path, 0, len(paths))
	for _, path := range paths {
		chains = append(chains, JoinedPrefix(path))
	}
	reduced := Reduce(chains)

	plan := &Plan{
		Root:        tok.Root,
		RootBinding: p.joiner.RootBinding(),
		Mode:        p.mode,
		Paths:       paths,
		Joins:       EmitJoins(p.joiner.RootBinding(), reduced),
		Fetches:     EmitFetches(paths),
	}

	logging.Debug().
		Str("root", plan.Root).
		Stringer("mode", p.mode).
		Int("paths", len(paths)).
		Int("joins", len(plan.Joins)).
		Int("fetches", len(plan.Fetches)).
		Msg("preload planned")

	return plan, nil
}

// Apply is Preload followed by Plan.
func (p *Planner) Apply(tok *Token, specs ...Spec) (*Plan, error) {
	if err := p.Preload(tok, specs...); err != nil {
		return nil, err
	}
	return p.Plan(tok)
}
