package sqlgen

import (
	"github.com/pthm/joinplan/internal/logging"
	"github.com/pthm/joinplan/internal/planner"
)

// Compiled is the SQL for one planned preload: the main query with every
// joined association folded in, and the follow-up fetch queries.
type Compiled struct {
	SQL     string
	Joins   []Join
	Fetches []FetchQuery
}

// Compile renders the main query recorded on q and the fetch queries for
// plan. plan must have been produced with q as its joiner.
func Compile(q *Query, plan *planner.Plan) (*Compiled, error) {
	fetches, err := BuildFetches(q.schema, q.root.Name, plan.Fetches)
	if err != nil {
		return nil, err
	}

	c := &Compiled{
		SQL:     q.Select().SQL(),
		Joins:   q.Joins(),
		Fetches: fetches,
	}

	n := 0
	for _, f := range fetches {
		f.Walk(func(FetchQuery) { n++ })
	}
	logging.Debug().
		Str("root", q.root.Name).
		Int("joins", len(c.Joins)).
		Int("fetch_queries", n).
		Msg("preload compiled")

	return c, nil
}
