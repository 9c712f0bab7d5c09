package schema

import (
	"errors"
	"fmt"
)

// Validate checks referential integrity of the schema:
//   - every association has a name and a known kind
//   - association names are unique per entity
//   - every target entity is declared
//   - keys are present (after defaults), and many_to_many declares its join table
//
// All problems are reported together, each wrapping ErrInvalidSchema.
func (s *Schema) Validate() error {
	var errs []error
	for _, name := range s.order {
		e := s.entities[name]
		seen := make(map[string]bool, len(e.Associations))
		for _, a := range e.Associations {
			errs = append(errs, validateAssociation(s, e, a, seen)...)
		}
	}
	return errors.Join(errs...)
}

func validateAssociation(s *Schema, e Entity, a Association, seen map[string]bool) []error {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: %s: %s", ErrInvalidSchema, e.Name, fmt.Sprintf(format, args...)))
	}

	if a.Name == "" {
		invalid("association with empty name")
		return errs
	}
	if seen[a.Name] {
		invalid("duplicate association %q", a.Name)
	}
	seen[a.Name] = true

	if !a.Kind.Valid() {
		invalid("association %q has unknown kind %q", a.Name, a.Kind)
	}
	if _, ok := s.entities[a.Target]; !ok {
		invalid("association %q targets undeclared entity %q", a.Name, a.Target)
		return errs
	}
	if a.OwnerKey == "" || a.RelatedKey == "" {
		invalid("association %q is missing key columns", a.Name)
	}
	if a.Kind == ManyToMany {
		switch {
		case a.Through == nil:
			invalid("many_to_many association %q requires a join table", a.Name)
		case a.Through.Table == "" || a.Through.OwnerKey == "" || a.Through.RelatedKey == "":
			invalid("many_to_many association %q has an incomplete join table", a.Name)
		}
	} else if a.Through != nil {
		invalid("association %q declares a join table but is %s", a.Name, a.Kind)
	}
	return errs
}
