package planner

import (
	"fmt"
	"strings"

	"github.com/pthm/joinplan/pkg/schema"
)

func blogSchema() *schema.Schema {
	return schema.MustNew(
		schema.Entity{Name: "user", Table: "users", Associations: []schema.Association{
			{Name: "role", Kind: schema.BelongsTo, Target: "role"},
			{Name: "bio", Kind: schema.HasOne, Target: "bio"},
			{Name: "articles", Kind: schema.HasMany, Target: "article", RelatedKey: "author_id"},
		}},
		schema.Entity{Name: "role", Table: "roles"},
		schema.Entity{Name: "bio", Table: "bios"},
		schema.Entity{Name: "article", Table: "articles", Associations: []schema.Association{
			{Name: "author", Kind: schema.BelongsTo, Target: "user"},
			{Name: "comments", Kind: schema.HasMany, Target: "comment"},
			{Name: "tags", Kind: schema.ManyToMany, Target: "tag", Through: &schema.JoinTable{
				Table: "article_tags", OwnerKey: "article_id", RelatedKey: "tag_id",
			}},
		}},
		schema.Entity{Name: "comment", Table: "comments", Associations: []schema.Association{
			{Name: "author", Kind: schema.BelongsTo, Target: "user"},
			{Name: "article", Kind: schema.BelongsTo, Target: "article"},
		}},
		schema.Entity{Name: "tag", Table: "tags"},
	)
}

// fakeJoiner allocates "<first letter of target><n>" bindings and records
// every request it receives.
type fakeJoiner struct {
	root     string
	next     int
	bindings map[string]string
	requests []JoinRequest

	// failPath makes Join return fail for that dotted path.
	failPath string
	fail     error
}

func newFakeJoiner() *fakeJoiner {
	return &fakeJoiner{root: "a0", next: 1, bindings: make(map[string]string)}
}

func (j *fakeJoiner) RootBinding() string { return j.root }

func (j *fakeJoiner) Join(req JoinRequest) (string, error) {
	key := strings.Join(req.Path, ".")
	if j.fail != nil && key == j.failPath {
		return "", j.fail
	}
	if b, ok := j.bindings[key]; ok {
		return b, nil
	}
	b := fmt.Sprintf("%c%d", req.Association.Target[0], j.next)
	j.next++
	j.bindings[key] = b
	j.requests = append(j.requests, req)
	return b, nil
}

func mustParse(s string) []Spec {
	specs, err := ParseSpec(s)
	if err != nil {
		panic(err)
	}
	return specs
}
