package introspect_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm/joinplan/internal/testutil"
	"github.com/pthm/joinplan/pkg/introspect"
	"github.com/pthm/joinplan/pkg/schema"
)

func TestReadCatalog(t *testing.T) {
	db := testutil.DB(t, testutil.BlogSQL)

	cat, err := introspect.ReadCatalog(context.Background(), db)
	require.NoError(t, err)

	assert.Equal(t, []string{"article_tags", "articles", "bios", "comments", "roles", "tags", "users"}, cat.Order)
	assert.Equal(t, []string{"article_id", "tag_id"}, cat.Table("article_tags").PrimaryKey)
	assert.True(t, cat.Table("users").HasColumn("role_id"))
	assert.True(t, cat.Table("bios").Unique["user_id"])
	assert.False(t, cat.Table("articles").Unique["author_id"])
	assert.True(t, cat.Table("articles").Indexed["author_id"])
	assert.False(t, cat.Table("comments").Indexed["article_id"])
	assert.Len(t, cat.ForeignKeys, 8)
}

func TestLoad(t *testing.T) {
	db := testutil.DB(t, testutil.BlogSQL)

	s, err := introspect.Load(context.Background(), db)
	require.NoError(t, err)

	tests := []struct {
		entity, field string
		kind          schema.Kind
		target        string
	}{
		{"article", "author", schema.BelongsTo, "user"},
		{"article", "comments", schema.HasMany, "comment"},
		{"article", "tags", schema.ManyToMany, "tag"},
		{"user", "bio", schema.HasOne, "bio"},
		{"user", "role", schema.BelongsTo, "role"},
		{"user", "author_articles", schema.HasMany, "article"},
		{"user", "comments", schema.HasMany, "comment"},
		{"comment", "author", schema.BelongsTo, "user"},
	}
	for _, tt := range tests {
		a, err := s.Resolve(tt.entity, tt.field)
		if assert.NoError(t, err, "%s.%s", tt.entity, tt.field) {
			assert.Equal(t, tt.kind, a.Kind, "%s.%s", tt.entity, tt.field)
			assert.Equal(t, tt.target, a.Target, "%s.%s", tt.entity, tt.field)
		}
	}
}

func TestLoad_UnknownSchema(t *testing.T) {
	db := testutil.DB(t)

	s, err := introspect.Load(context.Background(), db, "missing")
	require.NoError(t, err)
	assert.Empty(t, s.Names())
}
