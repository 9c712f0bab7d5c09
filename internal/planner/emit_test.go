package planner

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func joined(field, binding string) Step { return Step{Field: field, Binding: binding, Joined: true} }

func unjoined(field string) Step { return Step{Field: field} }

func TestNest(t *testing.T) {
	tests := []struct {
		fields []string
		want   FetchNode
	}{
		{[]string{"a"}, FetchNode{Field: "a"}},
		{[]string{"a", "b"}, FetchNode{Field: "a", Nested: []FetchNode{{Field: "b"}}}},
		{
			[]string{"a", "b", "c", "d", "e", "f", "g", "h"},
			FetchNode{Field: "a", Nested: []FetchNode{{Field: "b", Nested: []FetchNode{{Field: "c", Nested: []FetchNode{
				{Field: "d", Nested: []FetchNode{{Field: "e", Nested: []FetchNode{{Field: "f", Nested: []FetchNode{
					{Field: "g", Nested: []FetchNode{{Field: "h"}}},
				}}}}}},
			}}}}}},
		},
	}
	for _, tt := range tests {
		got := Nest(tt.fields)
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("Nest(%v) mismatch (-want +got):\n%s", tt.fields, diff)
		}
		assert.Equal(t, tt.fields, Unnest(got))
	}
}

func TestReduce(t *testing.T) {
	a := joined("author", "u1")
	r := joined("role", "r2")
	b := joined("bio", "b3")

	tests := []struct {
		name string
		in   []Path
		want []Path
	}{
		{"empty", nil, nil},
		{"drops empty chains", []Path{{}, {a}}, []Path{{a}}},
		{"dedupes", []Path{{a, r}, {a, r}}, []Path{{a, r}}},
		{"drops strict prefix", []Path{{a}, {a, r}}, []Path{{a, r}}},
		{"keeps siblings", []Path{{a, r}, {a}, {a, b}}, []Path{{a, r}, {a, b}}},
		{"binding mismatch is not a prefix", []Path{{joined("author", "u9")}, {a, r}}, []Path{{joined("author", "u9")}, {a, r}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Reduce(tt.in)
			if diff := cmp.Diff(tt.want, got, equateEmpty); diff != "" {
				t.Errorf("Reduce mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(got, Reduce(got), equateEmpty); diff != "" {
				t.Errorf("Reduce not idempotent (-once +twice):\n%s", diff)
			}
		})
	}
}

func TestJoinedPrefixAndSuffix(t *testing.T) {
	p := Path{joined("author", "u1"), unjoined("articles"), unjoined("comments")}
	assert.Equal(t, Path{joined("author", "u1")}, JoinedPrefix(p))
	assert.Equal(t, []string{"articles", "comments"}, FetchSuffix(p))

	full := Path{joined("author", "u1"), joined("role", "r2")}
	assert.Equal(t, full, JoinedPrefix(full))
	assert.Empty(t, FetchSuffix(full))

	assert.Empty(t, JoinedPrefix(Path{unjoined("articles")}))
}

func TestEmitFetches_GroupsByAnchorAndFirstField(t *testing.T) {
	u := joined("author", "u1")
	paths := []Path{
		{unjoined("comments"), unjoined("author"), unjoined("role")},
		{unjoined("comments"), unjoined("author"), unjoined("bio")},
		{unjoined("comments"), unjoined("article")},
		{u, unjoined("articles")},
		{u, joined("role", "r2")},
		{unjoined("tags")},
	}

	want := []FetchDirective{
		{Node: FetchNode{Field: "comments", Nested: []FetchNode{
			{Field: "author", Nested: []FetchNode{{Field: "role"}, {Field: "bio"}}},
			{Field: "article"},
		}}},
		{Anchor: Path{u}, Node: FetchNode{Field: "articles"}},
		{Node: FetchNode{Field: "tags"}},
	}
	if diff := cmp.Diff(want, EmitFetches(paths), equateEmpty); diff != "" {
		t.Errorf("EmitFetches mismatch (-want +got):\n%s", diff)
	}
}

func TestDirectiveStrings(t *testing.T) {
	d := JoinDirective{Bindings: []string{"a0", "u1", "r2"}, Fields: []string{"author", "role"}}
	assert.Equal(t, "a0 -> author(u1) -> role(r2)", d.String())

	f := FetchDirective{
		Anchor: Path{joined("author", "u1")},
		Node:   FetchNode{Field: "articles", Nested: []FetchNode{{Field: "comments"}, {Field: "tags"}}},
	}
	assert.Equal(t, "author@u1 => articles[comments, tags]", f.String())
}

func TestFlatten(t *testing.T) {
	role := &Descriptor{Field: "role"}
	bio := &Descriptor{Field: "bio"}
	author := &Descriptor{Field: "author", Nested: []*Descriptor{role, bio}}
	comments := &Descriptor{Field: "comments"}
	author.markJoined("u1")
	role.markJoined("r2")
	bio.markUnjoined()
	comments.markUnjoined()

	want := []Path{
		{joined("author", "u1"), joined("role", "r2")},
		{joined("author", "u1"), unjoined("bio")},
		{unjoined("comments")},
	}
	if diff := cmp.Diff(want, Flatten([]*Descriptor{author, comments})); diff != "" {
		t.Errorf("Flatten mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "author@u1.bio", want[1].String())
}
