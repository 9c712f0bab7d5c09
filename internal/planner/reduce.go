package planner

import "strings"

// JoinedPrefix returns the leading run of joined steps of p. Joins are
// contiguous from the root, so this is a truncation at the first unjoined step.
func JoinedPrefix(p Path) Path {
	for i, s := range p {
		if !s.Joined {
			return p[:i:i]
		}
	}
	return p
}

// Reduce returns the maximal chains among chains: empty chains and
// duplicates are dropped, then every chain that is a strict prefix of another
// surviving chain is discarded. First-seen order is kept.
// Reduce(Reduce(x)) equals Reduce(x).
func Reduce(chains []Path) []Path {
	var uniq []Path
	seen := make(map[string]bool, len(chains))
	for _, c := range chains {
		if len(c) == 0 {
			continue
		}
		k := chainKey(c)
		if seen[k] {
			continue
		}
		seen[k] = true
		uniq = append(uniq, c)
	}

	var out []Path
	for i, l := range uniq {
		redundant := false
		for j, m := range uniq {
			if i != j && isStrictPrefix(l, m) {
				redundant = true
				break
			}
		}
		if !redundant {
			out = append(out, l)
		}
	}
	return out
}

// isStrictPrefix reports whether l equals the first len(l) steps of a longer m.
func isStrictPrefix(l, m Path) bool {
	if len(l) >= len(m) {
		return false
	}
	for i := range l {
		if l[i].Field != m[i].Field || l[i].Binding != m[i].Binding {
			return false
		}
	}
	return true
}

func chainKey(p Path) string {
	var b strings.Builder
	for _, s := range p {
		b.WriteString(s.Field)
		b.WriteByte('@')
		b.WriteString(s.Binding)
		b.WriteByte('/')
	}
	return b.String()
}
