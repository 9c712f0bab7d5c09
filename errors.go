package joinplan

import (
	"errors"

	"github.com/pthm/joinplan/internal/planner"
	"github.com/pthm/joinplan/pkg/schema"
)

// Sentinel errors for failures while building a preload query. Any of them
// aborts the call that returned it; the Query keeps the state it had before
// that call.
//
// Use the Is*Err helper functions to check for specific errors.
var (
	// ErrUnknownAssociation is returned when a requested field does not name
	// an association declared on the entity it is requested from.
	ErrUnknownAssociation = schema.ErrUnknownAssociation

	// ErrUnknownEntity is returned when the root entity is not in the schema.
	ErrUnknownEntity = schema.ErrUnknownEntity

	// ErrInvalidSchema is returned when a schema fails validation.
	ErrInvalidSchema = schema.ErrInvalidSchema

	// ErrInvalidSpec is returned when an association spec string cannot be parsed.
	ErrInvalidSpec = planner.ErrInvalidSpec

	// ErrInvalidJoinChain is returned if a joined association hangs from an
	// unjoined parent. The planner never produces one; seeing it is a bug.
	ErrInvalidJoinChain = planner.ErrInvalidJoinChain

	// ErrQueryBuilt is returned when a Query is used after Build.
	ErrQueryBuilt = errors.New("joinplan: query already built")
)

// IsUnknownAssociationErr returns true if err is or wraps ErrUnknownAssociation.
func IsUnknownAssociationErr(err error) bool {
	return errors.Is(err, ErrUnknownAssociation)
}

// IsUnknownEntityErr returns true if err is or wraps ErrUnknownEntity.
func IsUnknownEntityErr(err error) bool {
	return errors.Is(err, ErrUnknownEntity)
}

// IsInvalidSchemaErr returns true if err is or wraps ErrInvalidSchema.
func IsInvalidSchemaErr(err error) bool {
	return errors.Is(err, ErrInvalidSchema)
}

// IsInvalidSpecErr returns true if err is or wraps ErrInvalidSpec.
func IsInvalidSpecErr(err error) bool {
	return errors.Is(err, ErrInvalidSpec)
}

// IsInvalidJoinChainErr returns true if err is or wraps ErrInvalidJoinChain.
func IsInvalidJoinChainErr(err error) bool {
	return errors.Is(err, ErrInvalidJoinChain)
}

// IsQueryBuiltErr returns true if err is or wraps ErrQueryBuilt.
func IsQueryBuiltErr(err error) bool {
	return errors.Is(err, ErrQueryBuilt)
}
