package planner

import "errors"

var (
	// ErrInvalidJoinChain is returned when a descriptor is marked joined while
	// its parent is not. The decision rules never produce this; it guards
	// against emitting a directive with a broken binding chain.
	ErrInvalidJoinChain = errors.New("joinplan/planner: invalid join chain")

	// ErrInvalidSpec is returned when an association spec cannot be parsed.
	ErrInvalidSpec = errors.New("joinplan/planner: invalid association spec")
)

// IsInvalidJoinChainErr returns true if err is or wraps ErrInvalidJoinChain.
func IsInvalidJoinChainErr(err error) bool {
	return errors.Is(err, ErrInvalidJoinChain)
}

// IsInvalidSpecErr returns true if err is or wraps ErrInvalidSpec.
func IsInvalidSpecErr(err error) bool {
	return errors.Is(err, ErrInvalidSpec)
}
