package introspect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm/joinplan/pkg/schema"
)

func table(name string, pk []string, unique ...string) *Table {
	t := &Table{Name: name, Schema: "public", PrimaryKey: pk, Unique: map[string]bool{}, Indexed: map[string]bool{}}
	for _, c := range unique {
		t.Unique[c] = true
	}
	return t
}

func blogCatalog() *Catalog {
	cat := &Catalog{Tables: map[string]*Table{}}
	for _, t := range []*Table{
		table("users", []string{"id"}, "id"),
		table("roles", []string{"id"}, "id"),
		table("bios", []string{"id"}, "id", "user_id"),
		table("articles", []string{"id"}, "id"),
		table("comments", []string{"id"}, "id"),
		table("tags", []string{"id"}, "id"),
		table("article_tags", []string{"article_id", "tag_id"}),
	} {
		cat.Tables[t.Name] = t
		cat.Order = append(cat.Order, t.Name)
	}
	cat.ForeignKeys = []ForeignKey{
		{Name: "users_role_fk", ChildTable: "users", ChildColumn: "role_id", ParentTable: "roles", ParentColumn: "id"},
		{Name: "bios_user_fk", ChildTable: "bios", ChildColumn: "user_id", ParentTable: "users", ParentColumn: "id"},
		{Name: "articles_author_fk", ChildTable: "articles", ChildColumn: "author_id", ParentTable: "users", ParentColumn: "id"},
		{Name: "articles_editor_fk", ChildTable: "articles", ChildColumn: "editor_id", ParentTable: "users", ParentColumn: "id"},
		{Name: "comments_article_fk", ChildTable: "comments", ChildColumn: "article_id", ParentTable: "articles", ParentColumn: "id"},
		{Name: "comments_parent_fk", ChildTable: "comments", ChildColumn: "parent_id", ParentTable: "comments", ParentColumn: "id"},
		{Name: "article_tags_article_fk", ChildTable: "article_tags", ChildColumn: "article_id", ParentTable: "articles", ParentColumn: "id"},
		{Name: "article_tags_tag_fk", ChildTable: "article_tags", ChildColumn: "tag_id", ParentTable: "tags", ParentColumn: "id"},
		{Name: "audit_fk", ChildTable: "audit_log", ChildColumn: "user_id", ParentTable: "users", ParentColumn: "id"},
	}
	return cat
}

func TestBuild(t *testing.T) {
	s, err := Build(blogCatalog())
	require.NoError(t, err)

	assert.Equal(t, []string{"article", "article_tag", "bio", "comment", "role", "tag", "user"}, s.Names())

	tests := []struct {
		entity, field string
		kind          schema.Kind
		target        string
		ownerKey      string
		relatedKey    string
	}{
		{"user", "role", schema.BelongsTo, "role", "role_id", "id"},
		{"role", "users", schema.HasMany, "user", "id", "role_id"},
		{"user", "bio", schema.HasOne, "bio", "id", "user_id"},
		{"bio", "user", schema.BelongsTo, "user", "user_id", "id"},
		{"article", "author", schema.BelongsTo, "user", "author_id", "id"},
		{"article", "editor", schema.BelongsTo, "user", "editor_id", "id"},
		{"user", "author_articles", schema.HasMany, "article", "id", "author_id"},
		{"user", "editor_articles", schema.HasMany, "article", "id", "editor_id"},
		{"article", "comments", schema.HasMany, "comment", "id", "article_id"},
		{"comment", "parent", schema.BelongsTo, "comment", "parent_id", "id"},
		{"comment", "comments", schema.HasMany, "comment", "id", "parent_id"},
		{"article", "tags", schema.ManyToMany, "tag", "id", "id"},
		{"tag", "articles", schema.ManyToMany, "article", "id", "id"},
		{"article_tag", "article", schema.BelongsTo, "article", "article_id", "id"},
	}
	for _, tt := range tests {
		t.Run(tt.entity+"."+tt.field, func(t *testing.T) {
			a, err := s.Resolve(tt.entity, tt.field)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, a.Kind)
			assert.Equal(t, tt.target, a.Target)
			assert.Equal(t, tt.ownerKey, a.OwnerKey)
			assert.Equal(t, tt.relatedKey, a.RelatedKey)
		})
	}

	tags, err := s.Resolve("article", "tags")
	require.NoError(t, err)
	assert.Equal(t, &schema.JoinTable{Table: "article_tags", OwnerKey: "article_id", RelatedKey: "tag_id"}, tags.Through)

	_, err = s.Resolve("article", "article_tags")
	assert.True(t, schema.IsUnknownAssociationErr(err), "join tables get many_to_many, not has_many")

	_, err = s.Resolve("user", "audit_logs")
	assert.Error(t, err, "foreign keys from tables outside the catalog are skipped")
}

func TestBuild_NameCollisions(t *testing.T) {
	cat := &Catalog{Tables: map[string]*Table{}}
	for _, tb := range []*Table{
		table("users", []string{"id"}),
		table("user", []string{"id"}),
		table("follows", []string{"follower_id", "followee_id"}),
	} {
		cat.Tables[tb.Name] = tb
		cat.Order = append(cat.Order, tb.Name)
	}
	cat.ForeignKeys = []ForeignKey{
		{ChildTable: "follows", ChildColumn: "follower_id", ParentTable: "users", ParentColumn: "id"},
		{ChildTable: "follows", ChildColumn: "followee_id", ParentTable: "users", ParentColumn: "id"},
	}

	s, err := Build(cat)
	require.NoError(t, err)
	assert.Equal(t, []string{"follow", "user", "users"}, s.Names(), "tables sharing a singular keep their table names")

	first, err := s.Resolve("users", "users")
	require.NoError(t, err)
	second, err := s.Resolve("users", "users_2")
	require.NoError(t, err)
	assert.Equal(t, "follower_id", first.Through.OwnerKey)
	assert.Equal(t, "followee_id", second.Through.OwnerKey)
}

func TestSingular(t *testing.T) {
	for in, want := range map[string]string{
		"users":      "user",
		"categories": "category",
		"addresses":  "address",
		"boxes":      "box",
		"branches":   "branch",
		"status":     "status",
		"analysis":   "analysis",
		"access":     "access",
		"person":     "person",
		"s":          "s",
	} {
		assert.Equal(t, want, Singular(in), in)
	}
}
