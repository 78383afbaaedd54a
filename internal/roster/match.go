// Package roster holds the static list of people and maps the free-text names
// used by each data source onto it.
package roster

import "strings"

// Override pins an alias that the heuristics get wrong to a roster name
type Override struct {
	Alias string `yaml:"alias" json:"alias"`
	Name  string `yaml:"name" json:"name"`
}

// Matcher resolves raw names to canonical roster names.
//
// Precedence: exact (case-insensitive), unique first token, longest roster
// name the raw name starts with, then the override table in its listed order.
// Excluded names never match, whether excluded as written or after matching.
type Matcher struct {
	names     []string
	lower     []string
	first     []string
	overrides []Override
	excluded  map[string]bool
}

// NewMatcher builds a matcher over the canonical names in roster order
func NewMatcher(names []string, overrides []Override, exclusions []string) *Matcher {
	m := &Matcher{
		names:     names,
		lower:     make([]string, len(names)),
		first:     make([]string, len(names)),
		overrides: overrides,
		excluded:  make(map[string]bool, len(exclusions)),
	}
	for i, n := range names {
		m.lower[i] = normalize(n)
		m.first[i] = firstToken(m.lower[i])
	}
	for _, e := range exclusions {
		m.excluded[normalize(e)] = true
	}
	return m
}

// Match returns the canonical roster name for raw, or false when nothing fits
func (m *Matcher) Match(raw string) (string, bool) {
	norm := normalize(raw)
	if norm == "" || m.excluded[norm] {
		return "", false
	}

	idx := m.find(norm)
	if idx < 0 {
		return "", false
	}
	if m.excluded[m.lower[idx]] {
		return "", false
	}
	return m.names[idx], true
}

func (m *Matcher) excludes(name string) bool {
	return m.excluded[normalize(name)]
}

func (m *Matcher) find(norm string) int {
	for i, l := range m.lower {
		if l == norm {
			return i
		}
	}

	tok := firstToken(norm)
	hit := -1
	for i, f := range m.first {
		if f != tok {
			continue
		}
		if hit >= 0 {
			hit = -2 // ambiguous
			break
		}
		hit = i
	}
	if hit >= 0 {
		return hit
	}

	best := -1
	for i, l := range m.lower {
		if l == "" || !strings.HasPrefix(norm, l) {
			continue
		}
		if best < 0 || len(l) > len(m.lower[best]) {
			best = i
		}
	}
	if best >= 0 {
		return best
	}

	for _, o := range m.overrides {
		if normalize(o.Alias) != norm {
			continue
		}
		target := normalize(o.Name)
		for i, l := range m.lower {
			if l == target {
				return i
			}
		}
	}
	return -1
}

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func firstToken(s string) string {
	if i := strings.IndexByte(s, ' '); i >= 0 {
		return s[:i]
	}
	return s
}
