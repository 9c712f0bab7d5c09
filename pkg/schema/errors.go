package schema

import "errors"

var (
	// ErrUnknownAssociation is returned when a requested field does not name
	// a declared association on the entity.
	ErrUnknownAssociation = errors.New("joinplan/schema: unknown association")

	// ErrUnknownEntity is returned when an entity name is not declared.
	ErrUnknownEntity = errors.New("joinplan/schema: unknown entity")

	// ErrInvalidSchema is returned when a schema definition fails validation.
	ErrInvalidSchema = errors.New("joinplan/schema: invalid schema")
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
