// Package introspect derives a joinplan schema from a live PostgreSQL
// database by reading its primary keys, foreign keys and unique indexes.
//
// Only single-column foreign keys are considered. See Build for the rules
// that turn them into associations.
package introspect

import (
	"context"

	"github.com/pthm/joinplan/internal/logging"
	"github.com/pthm/joinplan/pkg/schema"
)

// Load reads the catalog of the given schemas (default "public") and builds
// a schema from it.
func Load(ctx context.Context, q Querier, schemas ...string) (*schema.Schema, error) {
	cat, err := ReadCatalog(ctx, q, schemas...)
	if err != nil {
		return nil, err
	}
	logging.Debug().
		Strs("schemas", schemas).
		Int("tables", len(cat.Order)).
		Int("foreign_keys", len(cat.ForeignKeys)).
		Msg("catalog read")
	return Build(cat)
}
