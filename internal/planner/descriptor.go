package planner

import (
	"strings"

	"github.com/pthm/joinplan/pkg/schema"
)

// Descriptor is one edge of the requested association tree.
type Descriptor struct {
	// Field is the association name on the owning entity.
	Field string
	// Owner is the entity that declares Field.
	Owner string
	// Association is the resolved schema association.
	Association schema.Association
	// Binding is the SQL alias allocated when the association is joined.
	Binding string
	// Nested holds the child descriptors in request order.
	Nested []*Descriptor

	decided bool
	joined  bool
}

// HasJoined reports whether the association is satisfied by a join.
func (d *Descriptor) HasJoined() bool { return d.joined }

// Decided reports whether a join decision has been recorded.
func (d *Descriptor) Decided() bool { return d.decided }

// Singular reports whether the association yields at most one row per owner.
func (d *Descriptor) Singular() bool {
	return d.Association.Cardinality() == schema.Singular
}

// markJoined records the join decision. The first decision wins; later
// calls are ignored so a descriptor joined by an earlier step keeps its binding.
func (d *Descriptor) markJoined(binding string) {
	if d.decided {
		return
	}
	d.decided, d.joined, d.Binding = true, true, binding
}

func (d *Descriptor) markUnjoined() {
	if d.decided {
		return
	}
	d.decided, d.joined = true, false
}

func (d *Descriptor) child(field string) *Descriptor {
	for _, c := range d.Nested {
		if c.Field == field {
			return c
		}
	}
	return nil
}

func (d *Descriptor) clone() *Descriptor {
	c := *d
	c.Nested = cloneForest(d.Nested)
	return &c
}

func cloneForest(forest []*Descriptor) []*Descriptor {
	if forest == nil {
		return nil
	}
	out := make([]*Descriptor, len(forest))
	for i, d := range forest {
		out[i] = d.clone()
	}
	return out
}

func find(forest []*Descriptor, field string) *Descriptor {
	for _, d := range forest {
		if d.Field == field {
			return d
		}
	}
	return nil
}

// Token is the per-query planning state threaded through repeated preload
// and join calls. A Token belongs to exactly one query-build session and must
// not be shared between goroutines.
type Token struct {
	// Root is the entity the query selects from.
	Root string
	// Forest holds the accumulated top-level descriptors.
	Forest []*Descriptor
	// Preload lists the top-level fields requested so far, in request order.
	Preload []string
}

// NewToken creates an empty token for a query rooted at entity root.
func NewToken(root string) *Token {
	return &Token{Root: root}
}

// Clone returns a deep copy of t.
func (t *Token) Clone() *Token {
	c := &Token{Root: t.Root, Forest: cloneForest(t.Forest)}
	if t.Preload != nil {
		c.Preload = append([]string(nil), t.Preload...)
	}
	return c
}

// Lookup returns the descriptor at the given field path, or nil.
func (t *Token) Lookup(path ...string) *Descriptor {
	if len(path) == 0 {
		return nil
	}
	d := find(t.Forest, path[0])
	for _, f := range path[1:] {
		if d == nil {
			return nil
		}
		d = d.child(f)
	}
	return d
}

// Walk visits every descriptor depth-first, passing the field path from the
// root and the parent descriptor (nil for top-level descriptors).
func (t *Token) Walk(fn func(path []string, parent, d *Descriptor)) {
	walk(t.Forest, nil, nil, fn)
}

func walk(forest []*Descriptor, prefix []string, parent *Descriptor, fn func([]string, *Descriptor, *Descriptor)) {
	for _, d := range forest {
		path := append(append([]string(nil), prefix...), d.Field)
		fn(path, parent, d)
		walk(d.Nested, path, d, fn)
	}
}

func pathKey(path []string) string {
	return strings.Join(path, ".")
}
