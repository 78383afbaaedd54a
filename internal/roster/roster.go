package roster

import "github.com/dennisdiepolder/availability/internal/types"

// Roster is the immutable set of people shown on the dashboard
type Roster struct {
	people  []types.Person
	byName  map[string]types.Person
	matcher *Matcher
}

// New builds a roster. Later duplicates of a name are ignored and excluded
// people are left out entirely.
func New(people []types.Person, overrides []Override, exclusions []string) *Roster {
	r := &Roster{
		people: make([]types.Person, 0, len(people)),
		byName: make(map[string]types.Person, len(people)),
	}
	skip := NewMatcher(nil, nil, exclusions)
	names := make([]string, 0, len(people))
	for _, p := range people {
		key := normalize(p.Name)
		if key == "" || skip.excludes(p.Name) {
			continue
		}
		if _, dup := r.byName[key]; dup {
			continue
		}
		r.byName[key] = p
		r.people = append(r.people, p)
		names = append(names, p.Name)
	}
	r.matcher = NewMatcher(names, overrides, exclusions)
	return r
}

// People returns the roster in configured order
func (r *Roster) People() []types.Person {
	out := make([]types.Person, len(r.people))
	copy(out, r.people)
	return out
}

// Len returns the number of people on the roster
func (r *Roster) Len() int {
	return len(r.people)
}

// Lookup maps a raw name from any source to its roster entry
func (r *Roster) Lookup(raw string) (types.Person, bool) {
	name, ok := r.matcher.Match(raw)
	if !ok {
		return types.Person{}, false
	}
	return r.byName[normalize(name)], true
}
