package joinplan_test

import (
	"fmt"

	"github.com/pthm/joinplan"
	"github.com/pthm/joinplan/pkg/schema"
)

func ExampleQuery() {
	sch := schema.MustNew(
		schema.Entity{Name: "article", Table: "articles", Associations: []schema.Association{
			{Name: "author", Kind: schema.BelongsTo, Target: "user"},
			{Name: "comments", Kind: schema.HasMany, Target: "comment"},
		}},
		schema.Entity{Name: "user", Table: "users"},
		schema.Entity{Name: "comment", Table: "comments"},
	)

	q, _ := joinplan.From(sch, "article")
	_ = q.Preload("author, comments")
	res, _ := q.Build()

	fmt.Println(res.SQL)
	for _, d := range res.Plan.Fetches {
		fmt.Println(d)
	}
	// Output:
	// SELECT a0.*, to_jsonb(u1) AS u1
	// FROM articles AS a0
	// LEFT JOIN users AS u1 ON u1.id = a0.author_id
	// ORDER BY a0.id
	// root => comments
}
