package planner

import "strings"

// JoinDirective tells the query engine how to copy already-joined rows into
// nested association fields. Bindings holds the root binding followed by one
// binding per entry of Fields, so Fields[i] is loaded from Bindings[i+1] onto
// the row bound at Bindings[i].
type JoinDirective struct {
	Bindings []string
	Fields   []string
}

// String renders the directive as "a0 -> author(u1) -> role(r2)".
func (d JoinDirective) String() string {
	var b strings.Builder
	if len(d.Bindings) > 0 {
		b.WriteString(d.Bindings[0])
	}
	for i, f := range d.Fields {
		b.WriteString(" -> ")
		b.WriteString(f)
		if i+1 < len(d.Bindings) {
			b.WriteByte('(')
			b.WriteString(d.Bindings[i+1])
			b.WriteByte(')')
		}
	}
	return b.String()
}

// EmitJoins converts reduced joined chains into join directives.
func EmitJoins(rootBinding string, chains []Path) []JoinDirective {
	out := make([]JoinDirective, 0, len(chains))
	for _, c := range chains {
		out = append(out, JoinDirective{
			Bindings: append([]string{rootBinding}, c.Bindings()...),
			Fields:   c.Fields(),
		})
	}
	return out
}

// FetchNode is a nested-field structure describing a follow-up fetch: Field
// is loaded for every parent row, then each Nested node is loaded for the
// rows Field produced.
type FetchNode struct {
	Field  string
	Nested []FetchNode
}

// Spec converts n back into a Spec.
func (n FetchNode) Spec() Spec {
	s := Spec{Field: n.Field}
	for _, c := range n.Nested {
		s.Nested = append(s.Nested, c.Spec())
	}
	return s
}

func (n FetchNode) String() string { return n.Spec().String() }

// Nest converts a field sequence into a right-nested structure where each
// field wraps the next as its single child. Nest panics on an empty slice.
func Nest(fields []string) FetchNode {
	n := FetchNode{Field: fields[len(fields)-1]}
	for i := len(fields) - 2; i >= 0; i-- {
		n = FetchNode{Field: fields[i], Nested: []FetchNode{n}}
	}
	return n
}

// Unnest is the inverse of Nest for single-branch structures. Only the first
// child is followed at each level.
func Unnest(n FetchNode) []string {
	fields := []string{n.Field}
	for len(n.Nested) > 0 {
		n = n.Nested[0]
		fields = append(fields, n.Field)
	}
	return fields
}

// FetchSuffix drops the leading joined steps of p and returns the field
// names of what remains.
func FetchSuffix(p Path) []string {
	return p[len(JoinedPrefix(p)):].Fields()
}

// FetchDirective describes one follow-up fetch. Anchor is the joined chain
// whose rows supply the parent keys; an empty Anchor means the root rows.
type FetchDirective struct {
	Anchor Path
	Node   FetchNode
}

// String renders the directive as "author@u1 => comments.article".
func (d FetchDirective) String() string {
	anchor := d.Anchor.String()
	if anchor == "" {
		anchor = "root"
	}
	return anchor + " => " + d.Node.String()
}

// EmitFetches converts the unjoined suffix of every path into fetch
// directives. Fully joined paths contribute nothing. Suffixes sharing an
// anchor and a first field are merged into one directive.
func EmitFetches(paths []Path) []FetchDirective {
	var out []FetchDirective
	index := make(map[string]int)
	for _, p := range paths {
		suffix := FetchSuffix(p)
		if len(suffix) == 0 {
			continue
		}
		anchor := JoinedPrefix(p)
		node := Nest(suffix)

		key := chainKey(anchor) + "|" + node.Field
		if i, ok := index[key]; ok {
			out[i].Node.Nested = mergeFetch(out[i].Node.Nested, node.Nested...)
			continue
		}
		index[key] = len(out)
		out = append(out, FetchDirective{Anchor: anchor, Node: node})
	}
	return out
}

func mergeFetch(into []FetchNode, nodes ...FetchNode) []FetchNode {
	for _, n := range nodes {
		merged := false
		for i := range into {
			if into[i].Field == n.Field {
				into[i].Nested = mergeFetch(into[i].Nested, n.Nested...)
				merged = true
				break
			}
		}
		if !merged {
			into = append(into, n)
		}
	}
	return into
}
