package joinplan_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm/joinplan"
	"github.com/pthm/joinplan/internal/testutil"
	"github.com/pthm/joinplan/pkg/introspect"
)

// TestBuild_Executes runs the generated SQL against the blog fixture and
// checks that joined and fetched rows line up with the data.
func TestBuild_Executes(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t, testutil.BlogSQL)

	s, err := introspect.Load(ctx, db)
	require.NoError(t, err)

	q, err := joinplan.From(s, "article")
	require.NoError(t, err)
	require.NoError(t, q.Preload("author[role, bio], comments.author, tags"))
	res, err := q.Build()
	require.NoError(t, err)

	rows, err := db.QueryContext(ctx, res.SQL)
	require.NoError(t, err)
	cols, err := rows.Columns()
	require.NoError(t, err)

	type article struct {
		id     int64
		author map[string]any
	}
	var articles []article
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		require.NoError(t, rows.Scan(ptrs...))

		var a article
		for i, c := range cols {
			switch c {
			case "id":
				a.id = vals[i].(int64)
			case res.Joins[0].Binding:
				a.author = decodeJSON(t, vals[i])
			}
		}
		articles = append(articles, a)
	}
	require.NoError(t, rows.Err())
	require.NoError(t, rows.Close())

	require.Len(t, articles, 2)
	assert.Equal(t, "ada", articles[0].author["name"])
	assert.Equal(t, "bob", articles[1].author["name"])

	ids := []int64{articles[0].id, articles[1].id}
	counts := make(map[string]int)
	for _, f := range res.Fetches {
		f.Walk(func(fq joinplan.FetchQuery) {
			if len(fq.Path) > 1 {
				return
			}
			counts[fq.Field] = countRows(t, db, fq.SQL, fq.Bind(ids)...)
		})
	}
	assert.Equal(t, map[string]int{"comments": 3, "tags": 3}, counts)
}

func decodeJSON(t *testing.T, v any) map[string]any {
	t.Helper()
	if v == nil {
		return nil
	}
	var raw []byte
	switch v := v.(type) {
	case map[string]any:
		return v
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		t.Fatalf("unexpected json column type %T", v)
	}
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func countRows(t *testing.T, db *sql.DB, query string, args ...any) int {
	t.Helper()
	rows, err := db.Query(query, args...)
	require.NoError(t, err, query)
	defer func() { _ = rows.Close() }()
	n := 0
	for rows.Next() {
		n++
	}
	require.NoError(t, rows.Err())
	return n
}
