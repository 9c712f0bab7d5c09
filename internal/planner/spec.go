package planner

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Spec is one requested association and, optionally, the associations to
// load beneath it.
type Spec struct {
	Field  string
	Nested []Spec
}

// Field builds a Spec for name with the given nested specs.
func Field(name string, nested ...Spec) Spec {
	return Spec{Field: name, Nested: nested}
}

// Fields builds leaf specs for each name.
func Fields(names ...string) []Spec {
	specs := make([]Spec, len(names))
	for i, n := range names {
		specs[i] = Spec{Field: n}
	}
	return specs
}

// String renders the spec in the same compact form ParseSpec accepts.
func (s Spec) String() string {
	switch len(s.Nested) {
	case 0:
		return s.Field
	case 1:
		return s.Field + "." + s.Nested[0].String()
	default:
		return s.Field + "[" + FormatSpecs(s.Nested) + "]"
	}
}

// FormatSpecs renders a spec list as a comma-separated string.
func FormatSpecs(specs []Spec) string {
	parts := make([]string, len(specs))
	for i, s := range specs {
		parts[i] = s.String()
	}
	return strings.Join(parts, ", ")
}

// MergeSpecs merges siblings that name the same field, keeping the order in
// which fields were first seen.
func MergeSpecs(specs []Spec) []Spec {
	var out []Spec
	index := make(map[string]int)
	for _, s := range specs {
		if i, ok := index[s.Field]; ok {
			out[i].Nested = MergeSpecs(append(out[i].Nested, s.Nested...))
			continue
		}
		index[s.Field] = len(out)
		out = append(out, Spec{Field: s.Field, Nested: MergeSpecs(s.Nested)})
	}
	return out
}

// ParseSpec parses a compact association list such as
//
//	articles.comments, author[role, bio]
//
// A dot descends one level, brackets group several nested fields. Paths that
// share a prefix are merged, so "author.role, author.bio" equals "author[role, bio]".
func ParseSpec(input string) ([]Spec, error) {
	p := &specParser{src: input}
	p.skipSpace()
	if p.done() {
		return nil, nil
	}
	specs, err := p.list()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if !p.done() {
		return nil, p.errorf("unexpected %q", p.char())
	}
	return MergeSpecs(specs), nil
}

type specParser struct {
	src string
	pos int
}

func (p *specParser) done() bool { return p.pos >= len(p.src) }

// peek decodes the rune at the current offset. Invalid UTF-8 decodes as
// utf8.RuneError with width 1.
func (p *specParser) peek() (rune, int) { return utf8.DecodeRuneInString(p.src[p.pos:]) }

// char is the rune at the current offset.
func (p *specParser) char() rune {
	r, _ := p.peek()
	return r
}

func (p *specParser) skipSpace() {
	for !p.done() {
		r, n := p.peek()
		if !unicode.IsSpace(r) {
			return
		}
		p.pos += n
	}
}

func (p *specParser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s at offset %d in %q", ErrInvalidSpec, fmt.Sprintf(format, args...), p.pos, p.src)
}

// list := item { "," item }
func (p *specParser) list() ([]Spec, error) {
	var specs []Spec
	for {
		s, err := p.item()
		if err != nil {
			return nil, err
		}
		specs = append(specs, s)
		p.skipSpace()
		if p.done() || p.char() != ',' {
			return specs, nil
		}
		p.pos++
	}
}

// item := ident [ "." item | "[" list "]" ]
func (p *specParser) item() (Spec, error) {
	p.skipSpace()
	name := p.ident()
	if name == "" {
		if p.done() {
			return Spec{}, p.errorf("expected field name")
		}
		return Spec{}, p.errorf("expected field name, got %q", p.char())
	}
	s := Spec{Field: name}

	p.skipSpace()
	if p.done() {
		return s, nil
	}
	switch p.char() {
	case '.':
		p.pos++
		child, err := p.item()
		if err != nil {
			return Spec{}, err
		}
		s.Nested = []Spec{child}
	case '[':
		p.pos++
		nested, err := p.list()
		if err != nil {
			return Spec{}, err
		}
		p.skipSpace()
		if p.done() || p.char() != ']' {
			return Spec{}, p.errorf("missing ]")
		}
		p.pos++
		s.Nested = nested
	}
	return s, nil
}

func (p *specParser) ident() string {
	start := p.pos
	for !p.done() {
		r, n := p.peek()
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}
		p.pos += n
	}
	return p.src[start:p.pos]
}
