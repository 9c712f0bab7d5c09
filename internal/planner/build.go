package planner

import (
	"slices"

	"github.com/pthm/joinplan/pkg/schema"
)

// Resolver resolves an association name on an entity. *schema.Schema
// implements it.
type Resolver interface {
	Resolve(entity, field string) (schema.Association, error)
}

// Build merges the requested specs into a copy of tok and returns the copy.
//
// A requested field that already has a descriptor at the same position is
// reused and its nested specs are merged beneath it; new fields are appended
// after the existing ones. Every new field is resolved against its owner
// entity, and the first failure aborts the whole call. tok itself is never
// modified, so a failed Build leaves the caller's token untouched.
func Build(tok *Token, r Resolver, specs []Spec) (*Token, error) {
	next := tok.Clone()
	for _, s := range MergeSpecs(specs) {
		forest, err := mergeSpec(next.Forest, tok.Root, r, s)
		if err != nil {
			return nil, err
		}
		next.Forest = forest
		if !slices.Contains(next.Preload, s.Field) {
			next.Preload = append(next.Preload, s.Field)
		}
	}
	return next, nil
}

func mergeSpec(forest []*Descriptor, owner string, r Resolver, s Spec) ([]*Descriptor, error) {
	d := find(forest, s.Field)
	if d == nil {
		assoc, err := r.Resolve(owner, s.Field)
		if err != nil {
			return nil, err
		}
		d = &Descriptor{Field: s.Field, Owner: owner, Association: assoc}
		forest = append(forest, d)
	}

	for _, n := range s.Nested {
		nested, err := mergeSpec(d.Nested, d.Association.Target, r, n)
		if err != nil {
			return nil, err
		}
		d.Nested = nested
	}
	return forest, nil
}
