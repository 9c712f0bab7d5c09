package introspect

import (
	"fmt"
	"strings"

	"github.com/pthm/joinplan/internal/logging"
	"github.com/pthm/joinplan/pkg/schema"
)

// Build derives a schema from a catalog.
//
// Every table becomes an entity named after the singular form of the table.
// Every single-column foreign key child.x_id -> parent.id yields:
//
//   - child belongs_to x (the column name without "_id", or the singular
//     parent table name when the column has no such suffix);
//   - parent has_one <singular child> when the column is unique on its own,
//     otherwise parent has_many <child table>.
//
// A table whose primary key is exactly two foreign key columns is a join
// table: instead of has_many associations to it, its two parents get
// many_to_many associations to each other through it.
//
// When two derived associations on one entity would share a name, the
// association is prefixed with the belongs_to name (author_articles) and, if
// that still collides, suffixed with a counter.
func Build(cat *Catalog) (*schema.Schema, error) {
	names := entityNames(cat)
	entities := make(map[string]*schema.Entity, len(cat.Order))
	for _, table := range cat.Order {
		t := cat.Tables[table]
		e := &schema.Entity{Name: names[table], Table: table, Associations: []schema.Association{}}
		if len(t.PrimaryKey) > 0 {
			e.PrimaryKey = t.PrimaryKey[0]
		}
		entities[table] = e
	}

	joinTables := make(map[string][2]ForeignKey)
	for _, table := range cat.Order {
		if fks, ok := joinTableKeys(cat, cat.Tables[table]); ok {
			joinTables[table] = fks
		}
	}

	// Foreign keys from one child to one parent; more than one means the
	// inverse associations need the belongs_to name to stay distinct.
	fanout := make(map[[2]string]int)
	for _, fk := range cat.ForeignKeys {
		fanout[[2]string{fk.ChildTable, fk.ParentTable}]++
	}

	for _, fk := range cat.ForeignKeys {
		child, parent := entities[fk.ChildTable], entities[fk.ParentTable]
		if child == nil || parent == nil {
			logging.Debug().Str("constraint", fk.Name).Msg("skipping foreign key to a table outside the introspected schemas")
			continue
		}

		belongs := belongsToName(fk, names)
		addAssociation(child, schema.Association{
			Name:       belongs,
			Kind:       schema.BelongsTo,
			Target:     parent.Name,
			OwnerKey:   fk.ChildColumn,
			RelatedKey: fk.ParentColumn,
		})

		if _, isJoin := joinTables[fk.ChildTable]; isJoin {
			continue
		}

		inverse := schema.Association{
			Target:     child.Name,
			OwnerKey:   fk.ParentColumn,
			RelatedKey: fk.ChildColumn,
		}
		if cat.Tables[fk.ChildTable].Unique[fk.ChildColumn] {
			inverse.Kind, inverse.Name = schema.HasOne, child.Name
		} else {
			inverse.Kind, inverse.Name = schema.HasMany, fk.ChildTable
		}
		if fanout[[2]string{fk.ChildTable, fk.ParentTable}] > 1 {
			inverse.Name = belongs + "_" + inverse.Name
		}
		addAssociation(parent, inverse)
	}

	for _, table := range cat.Order {
		fks, ok := joinTables[table]
		if !ok {
			continue
		}
		for i, fk := range fks {
			other := fks[1-i]
			owner, target := entities[fk.ParentTable], entities[other.ParentTable]
			if owner == nil || target == nil {
				continue
			}
			addAssociation(owner, schema.Association{
				Name:       other.ParentTable,
				Kind:       schema.ManyToMany,
				Target:     target.Name,
				OwnerKey:   fk.ParentColumn,
				RelatedKey: other.ParentColumn,
				Through: &schema.JoinTable{
					Table:      table,
					OwnerKey:   fk.ChildColumn,
					RelatedKey: other.ChildColumn,
				},
			})
		}
	}

	out := make([]schema.Entity, 0, len(cat.Order))
	for _, table := range cat.Order {
		out = append(out, *entities[table])
	}
	s, err := schema.New(out...)
	if err != nil {
		return nil, fmt.Errorf("introspected schema: %w", err)
	}
	return s, nil
}

// joinTableKeys reports whether t is a join table: a two-column primary key
// whose columns are both foreign keys.
func joinTableKeys(cat *Catalog, t *Table) ([2]ForeignKey, bool) {
	var out [2]ForeignKey
	if len(t.PrimaryKey) != 2 {
		return out, false
	}
	for i, col := range t.PrimaryKey {
		found := false
		for _, fk := range cat.ForeignKeys {
			if fk.ChildTable == t.Name && fk.ChildColumn == col {
				out[i], found = fk, true
				break
			}
		}
		if !found {
			return out, false
		}
	}
	return out, true
}

func belongsToName(fk ForeignKey, names map[string]string) string {
	if name, ok := strings.CutSuffix(fk.ChildColumn, "_id"); ok && name != "" {
		return name
	}
	return names[fk.ParentTable]
}

// addAssociation appends a, renaming it with a numeric suffix if e already
// has an association of that name.
func addAssociation(e *schema.Entity, a schema.Association) {
	base := a.Name
	for n := 2; ; n++ {
		if _, taken := e.Association(a.Name); !taken {
			break
		}
		a.Name = fmt.Sprintf("%s_%d", base, n)
	}
	e.Associations = append(e.Associations, a)
}

// entityNames maps each table to a unique entity name: its singular form,
// or the table name itself when two tables share a singular form.
func entityNames(cat *Catalog) map[string]string {
	count := make(map[string]int)
	for _, table := range cat.Order {
		count[Singular(table)]++
	}
	names := make(map[string]string, len(cat.Order))
	for _, table := range cat.Order {
		if s := Singular(table); count[s] == 1 {
			names[table] = s
		} else {
			names[table] = table
		}
	}
	return names
}

// Singular returns a naive English singular of a table name: "categories"
// becomes "category", "addresses" becomes "address", "users" becomes "user".
// Names it does not recognise as plural are returned unchanged.
func Singular(name string) string {
	switch {
	case strings.HasSuffix(name, "ies") && len(name) > 3:
		return name[:len(name)-3] + "y"
	case strings.HasSuffix(name, "sses"), strings.HasSuffix(name, "xes"), strings.HasSuffix(name, "ches"), strings.HasSuffix(name, "shes"):
		return name[:len(name)-2]
	case strings.HasSuffix(name, "ss"), strings.HasSuffix(name, "us"), strings.HasSuffix(name, "is"):
		return name
	case strings.HasSuffix(name, "s") && len(name) > 1:
		return name[:len(name)-1]
	default:
		return name
	}
}
