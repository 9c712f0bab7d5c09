package planner

import (
	"fmt"
	"strings"

	"github.com/pthm/joinplan/internal/logging"
	"github.com/pthm/joinplan/pkg/schema"
)

// JoinMode selects how the decision engine treats undecided descriptors.
type JoinMode int

const (
	// IfPreferable joins singular associations reachable through a chain of
	// joins from the root and never joins plural ones.
	IfPreferable JoinMode = iota
	// Always joins every association whose parent is joined, plural included.
	// Used for joins requested explicitly for filtering.
	Always
	// Never leaves every association to a follow-up fetch.
	Never
)

func (m JoinMode) String() string {
	switch m {
	case IfPreferable:
		return "if_preferable"
	case Always:
		return "always"
	case Never:
		return "never"
	default:
		return "unknown"
	}
}

// ParseJoinMode parses "if_preferable", "always" or "never".
func ParseJoinMode(s string) (JoinMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "if_preferable":
		return IfPreferable, nil
	case "always":
		return Always, nil
	case "never":
		return Never, nil
	default:
		return IfPreferable, fmt.Errorf("unknown join mode %q", s)
	}
}

// JoinRequest describes one association the decision engine wants joined.
type JoinRequest struct {
	// ParentBinding is the binding of the row the association hangs from.
	ParentBinding string
	// Path is the field path from the root, ending with the association.
	Path []string
	// Owner is the entity declaring the association.
	Owner       string
	Association schema.Association
}

// Joiner is the join-construction collaborator. It allocates a binding for
// each joined association and records whatever the query needs to join it.
//
// Join must be idempotent per Path: asking for the same path twice returns
// the binding allocated the first time. An error aborts the decision pass.
type Joiner interface {
	RootBinding() string
	Join(req JoinRequest) (string, error)
}

// Decide records a join decision on every undecided descriptor in forest.
// Descriptors decided by an earlier call keep their decision.
func Decide(forest []*Descriptor, mode JoinMode, j Joiner) error {
	return decideLevel(forest, nil, true, j.RootBinding(), mode, j)
}

func decideLevel(forest []*Descriptor, prefix []string, parentJoined bool, parentBinding string, mode JoinMode, j Joiner) error {
	for _, d := range forest {
		path := append(append([]string(nil), prefix...), d.Field)
		if err := decideOne(d, path, parentJoined, parentBinding, mode, j); err != nil {
			return err
		}
		if err := decideLevel(d.Nested, path, d.joined, d.Binding, mode, j); err != nil {
			return err
		}
	}
	return nil
}

// DecideSpecs is like Decide but only visits descriptors named by specs.
// Each spec path is decided from the root down, so the chain stays contiguous.
func DecideSpecs(forest []*Descriptor, specs []Spec, mode JoinMode, j Joiner) error {
	return decideSpecLevel(forest, MergeSpecs(specs), nil, true, j.RootBinding(), mode, j)
}

func decideSpecLevel(forest []*Descriptor, specs []Spec, prefix []string, parentJoined bool, parentBinding string, mode JoinMode, j Joiner) error {
	for _, s := range specs {
		d := find(forest, s.Field)
		if d == nil {
			continue
		}
		path := append(append([]string(nil), prefix...), d.Field)
		if err := decideOne(d, path, parentJoined, parentBinding, mode, j); err != nil {
			return err
		}
		if err := decideSpecLevel(d.Nested, s.Nested, path, d.joined, d.Binding, mode, j); err != nil {
			return err
		}
	}
	return nil
}

func decideOne(d *Descriptor, path []string, parentJoined bool, parentBinding string, mode JoinMode, j Joiner) error {
	if d.decided {
		return nil
	}

	join, reason := wantsJoin(d, parentJoined, mode)
	if join {
		binding, err := j.Join(JoinRequest{
			ParentBinding: parentBinding,
			Path:          path,
			Owner:         d.Owner,
			Association:   d.Association,
		})
		if err != nil {
			return fmt.Errorf("joining %s: %w", pathKey(path), err)
		}
		d.markJoined(binding)
	} else {
		d.markUnjoined()
	}

	logging.Trace().
		Str("path", pathKey(path)).
		Str("cardinality", d.Association.Cardinality().String()).
		Bool("joined", d.joined).
		Str("binding", d.Binding).
		Str("reason", reason).
		Msg("join decision")
	return nil
}

func wantsJoin(d *Descriptor, parentJoined bool, mode JoinMode) (bool, string) {
	if !parentJoined {
		return false, "parent not joined"
	}
	switch mode {
	case Never:
		return false, "mode never"
	case Always:
		return true, "mode always"
	}
	if d.Singular() {
		return true, "singular"
	}
	return false, "plural"
}

// CheckContiguity verifies that no joined descriptor hangs from an unjoined
// parent and that every joined descriptor has a binding.
func CheckContiguity(forest []*Descriptor) error {
	var err error
	walk(forest, nil, nil, func(path []string, parent, d *Descriptor) {
		if err != nil || !d.joined {
			return
		}
		switch {
		case parent != nil && !parent.joined:
			err = fmt.Errorf("%w: %s is joined but %s is not", ErrInvalidJoinChain, pathKey(path), pathKey(path[:len(path)-1]))
		case d.Binding == "":
			err = fmt.Errorf("%w: %s is joined without a binding", ErrInvalidJoinChain, pathKey(path))
		}
	})
	return err
}
