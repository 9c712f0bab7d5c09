package joinplan

import (
	"context"

	"github.com/pthm/joinplan/internal/planner"
)

// JoinMode selects how associations are satisfied.
type JoinMode = planner.JoinMode

const (
	// IfPreferable joins singular associations reachable through joins from
	// the root and fetches everything else. This is the default.
	IfPreferable = planner.IfPreferable

	// Always joins every requested association, plural ones included.
	Always = planner.Always

	// Never fetches every requested association with a follow-up query.
	Never = planner.Never
)

// ParseJoinMode parses "if_preferable", "always" or "never".
func ParseJoinMode(s string) (JoinMode, error) { return planner.ParseJoinMode(s) }

type modeKey struct{}

// WithModeContext returns a new context carrying a join mode override.
//
// Build does not consult the context. BuildContext does, but only on queries
// created with WithContextMode.
func WithModeContext(ctx context.Context, mode JoinMode) context.Context {
	return context.WithValue(ctx, modeKey{}, mode)
}

// ModeFromContext returns the join mode carried by ctx, if any.
func ModeFromContext(ctx context.Context) (JoinMode, bool) {
	mode, ok := ctx.Value(modeKey{}).(JoinMode)
	return mode, ok
}
