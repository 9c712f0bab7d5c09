package planner

import "strings"

// Step is one (binding, field) pair of a flattened path.
type Step struct {
	Field   string
	Binding string
	Joined  bool
}

// Path is a root-to-leaf chain of steps.
type Path []Step

// Fields returns the field names of p in order.
func (p Path) Fields() []string {
	out := make([]string, len(p))
	for i, s := range p {
		out[i] = s.Field
	}
	return out
}

// Bindings returns the bindings of p in order.
func (p Path) Bindings() []string {
	out := make([]string, len(p))
	for i, s := range p {
		out[i] = s.Binding
	}
	return out
}

// String renders p as "author@u1.role@r2.bio", with "@binding" on joined steps.
func (p Path) String() string {
	var b strings.Builder
	for i, s := range p {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(s.Field)
		if s.Joined {
			b.WriteByte('@')
			b.WriteString(s.Binding)
		}
	}
	return b.String()
}

// Flatten enumerates every root-to-leaf path of forest, depth-first and
// left-to-right. A descriptor with n leaves below it contributes n paths,
// each starting with the descriptor's own step.
func Flatten(forest []*Descriptor) []Path {
	var out []Path
	for _, d := range forest {
		out = append(out, flatten(d)...)
	}
	return out
}

func flatten(d *Descriptor) []Path {
	self := Step{Field: d.Field, Binding: d.Binding, Joined: d.joined}
	if len(d.Nested) == 0 {
		return []Path{{self}}
	}

	var out []Path
	for _, c := range d.Nested {
		for _, tail := range flatten(c) {
			p := make(Path, 0, len(tail)+1)
			out = append(out, append(append(p, self), tail...))
		}
	}
	return out
}
