// Package schema describes the entities and associations a query can preload.
//
// It is the schema-reflection side of joinplan: the planner never inspects
// tables or structs directly, it asks a Schema to resolve a field name on an
// entity and gets back an Association carrying the association's kind (and
// therefore its cardinality), its target entity, and the key columns needed
// to join or fetch it.
//
// # Association kinds
//
//	belongs_to    owner.owner_key  = target.related_key   (singular)
//	has_one       owner.owner_key  = target.related_key   (singular)
//	has_many      owner.owner_key  = target.related_key   (plural)
//	many_to_many  owner.owner_key  = through.owner_key
//	              through.related_key = target.related_key (plural)
//
// Keys left empty in a definition are filled in when the Schema is built:
// belongs_to defaults to "<name>_id" on the owner and the target's primary
// key, has_one/has_many default to the owner's primary key and
// "<owner entity>_id" on the target, many_to_many defaults to both primary keys.
//
// # Loading
//
// Schemas are usually loaded from YAML:
//
//	entities:
//	  - name: article
//	    table: articles
//	    associations:
//	      - {name: author, kind: belongs_to, target: user}
//	      - {name: comments, kind: has_many, target: comment}
//
// or reflected from a database with the introspect package.
package schema

import (
	"fmt"
	"sort"
)

// Kind is the kind of an association.
type Kind string

const (
	BelongsTo  Kind = "belongs_to"
	HasOne     Kind = "has_one"
	HasMany    Kind = "has_many"
	ManyToMany Kind = "many_to_many"
)

// Valid reports whether k is a known association kind.
func (k Kind) Valid() bool {
	switch k {
	case BelongsTo, HasOne, HasMany, ManyToMany:
		return true
	default:
		return false
	}
}

// Cardinality returns whether the association yields at most one row per
// owner (Singular) or potentially many (Plural).
func (k Kind) Cardinality() Cardinality {
	switch k {
	case BelongsTo, HasOne:
		return Singular
	default:
		return Plural
	}
}

// Cardinality is the number of related rows an association can yield per owner.
type Cardinality int

const (
	Singular Cardinality = iota
	Plural
)

func (c Cardinality) String() string {
	switch c {
	case Singular:
		return "singular"
	case Plural:
		return "plural"
	default:
		return "unknown"
	}
}

// JoinTable describes the intermediate table of a many_to_many association.
type JoinTable struct {
	Table      string `json:"table"`
	OwnerKey   string `json:"owner_key"`   // column referencing the owner
	RelatedKey string `json:"related_key"` // column referencing the target
}

// Association is one named edge from an entity to a target entity.
type Association struct {
	Name       string     `json:"name"`
	Kind       Kind       `json:"kind"`
	Target     string     `json:"target"`
	OwnerKey   string     `json:"owner_key,omitempty"`
	RelatedKey string     `json:"related_key,omitempty"`
	Through    *JoinTable `json:"through,omitempty"`
}

// Cardinality is shorthand for a.Kind.Cardinality().
func (a Association) Cardinality() Cardinality {
	return a.Kind.Cardinality()
}

// Entity is a table-backed type that owns associations.
type Entity struct {
	Name         string        `json:"name"`
	Table        string        `json:"table,omitempty"`
	PrimaryKey   string        `json:"primary_key,omitempty"`
	Associations []Association `json:"associations,omitempty"`
}

// Association looks up an association by name.
func (e Entity) Association(name string) (Association, bool) {
	for _, a := range e.Associations {
		if a.Name == name {
			return a, true
		}
	}
	return Association{}, false
}

// Schema is an immutable, validated set of entities.
// It is safe for concurrent use.
type Schema struct {
	entities map[string]Entity
	order    []string
}

// New builds a Schema from entity definitions, filling in default tables and
// keys, and validates it. Entity order is preserved.
func New(entities ...Entity) (*Schema, error) {
	s := &Schema{entities: make(map[string]Entity, len(entities))}
	for _, e := range entities {
		if e.Name == "" {
			return nil, fmt.Errorf("%w: entity with empty name", ErrInvalidSchema)
		}
		if _, dup := s.entities[e.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate entity %q", ErrInvalidSchema, e.Name)
		}
		if e.Table == "" {
			e.Table = e.Name
		}
		if e.PrimaryKey == "" {
			e.PrimaryKey = "id"
		}
		s.entities[e.Name] = e
		s.order = append(s.order, e.Name)
	}

	// Key defaults depend on the target's primary key, so they are filled in
	// once every entity is registered.
	for _, name := range s.order {
		e := s.entities[name]
		assocs := make([]Association, len(e.Associations))
		for i, a := range e.Associations {
			assocs[i] = s.withDefaultKeys(e, a)
		}
		e.Associations = assocs
		s.entities[name] = e
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// MustNew is like New but panics on error. Intended for tests and fixtures.
func MustNew(entities ...Entity) *Schema {
	s, err := New(entities...)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Schema) withDefaultKeys(owner Entity, a Association) Association {
	target, ok := s.entities[a.Target]
	if !ok {
		// Validate reports the missing target.
		return a
	}
	switch a.Kind {
	case BelongsTo:
		if a.OwnerKey == "" {
			a.OwnerKey = a.Name + "_id"
		}
		if a.RelatedKey == "" {
			a.RelatedKey = target.PrimaryKey
		}
	case HasOne, HasMany:
		if a.OwnerKey == "" {
			a.OwnerKey = owner.PrimaryKey
		}
		if a.RelatedKey == "" {
			a.RelatedKey = owner.Name + "_id"
		}
	case ManyToMany:
		if a.OwnerKey == "" {
			a.OwnerKey = owner.PrimaryKey
		}
		if a.RelatedKey == "" {
			a.RelatedKey = target.PrimaryKey
		}
	}
	return a
}

// Entity returns the entity with the given name.
func (s *Schema) Entity(name string) (Entity, error) {
	e, ok := s.entities[name]
	if !ok {
		return Entity{}, fmt.Errorf("%w: %s", ErrUnknownEntity, name)
	}
	return e, nil
}

// Entities returns all entities in declaration order.
func (s *Schema) Entities() []Entity {
	out := make([]Entity, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.entities[name])
	}
	return out
}

// Names returns the sorted entity names.
func (s *Schema) Names() []string {
	names := make([]string, len(s.order))
	copy(names, s.order)
	sort.Strings(names)
	return names
}

// Resolve returns the association named field on entity.
// It fails with ErrUnknownEntity or ErrUnknownAssociation.
func (s *Schema) Resolve(entity, field string) (Association, error) {
	e, err := s.Entity(entity)
	if err != nil {
		return Association{}, err
	}
	a, ok := e.Association(field)
	if !ok {
		return Association{}, fmt.Errorf("%w: %s.%s", ErrUnknownAssociation, entity, field)
	}
	return a, nil
}
