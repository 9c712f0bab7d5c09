package sqlgen

import (
	"fmt"
	"strings"

	"github.com/pthm/joinplan/internal/planner"
)

// outline builds indented multi-line text.
type outline struct {
	lines  []string
	indent int
}

func (o *outline) line(format string, args ...any) *outline {
	o.lines = append(o.lines, strings.Repeat("    ", o.indent)+fmt.Sprintf(format, args...))
	return o
}

// text adds a multi-line string, indenting each of its lines.
func (o *outline) text(s string) *outline {
	for _, l := range strings.Split(strings.TrimRight(s, "\n"), "\n") {
		o.line("%s", l)
	}
	return o
}

func (o *outline) block(fn func(*outline)) *outline {
	o.indent++
	fn(o)
	o.indent--
	return o
}

func (o *outline) String() string { return strings.Join(o.lines, "\n") + "\n" }

// Explain renders a human-readable description of a plan. When c is non-nil
// the SQL of the main query and of every fetch query is included.
func Explain(plan *planner.Plan, c *Compiled) string {
	o := &outline{}
	o.line("preload %s AS %s (mode %s)", plan.Root, plan.RootBinding, plan.Mode)

	o.line("paths:")
	o.block(func(o *outline) {
		if len(plan.Paths) == 0 {
			o.line("(none)")
		}
		for _, p := range plan.Paths {
			o.line("%s", p)
		}
	})

	o.line("joins:")
	o.block(func(o *outline) {
		if len(plan.Joins) == 0 {
			o.line("(none)")
		}
		for _, d := range plan.Joins {
			o.line("%s", d)
		}
	})

	o.line("fetches:")
	o.block(func(o *outline) {
		if len(plan.Fetches) == 0 {
			o.line("(none)")
		}
		for _, d := range plan.Fetches {
			o.line("%s", d)
		}
	})

	if c == nil {
		return o.String()
	}

	o.line("sql:")
	o.block(func(o *outline) { o.text(c.SQL) })
	for _, f := range c.Fetches {
		explainFetch(o, f)
	}
	return o.String()
}

func explainFetch(o *outline, f FetchQuery) {
	o.line("fetch %s (%s.%s by %s):", strings.Join(f.Path, "."), f.Owner, f.Field, f.ParentKey)
	o.block(func(o *outline) {
		o.text(f.SQL)
		for _, c := range f.Children {
			explainFetch(o, c)
		}
	})
}
