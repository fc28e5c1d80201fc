// Package filter narrows plan rows by equality on hierarchy columns and
// works out which dropdown values remain reachable.
package filter

import (
	"sort"

	"sales-pacing-console/internal/sales"
)

// Set maps a field to its selected value. An empty value leaves the field
// unconstrained.
type Set map[sales.Field]string

func (s Set) Clone() Set {
	out := make(Set, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Without returns a copy of s minus field.
func (s Set) Without(field sales.Field) Set {
	out := make(Set, len(s))
	for k, v := range s {
		if k == field {
			continue
		}
		out[k] = v
	}
	return out
}

// Active reports whether any field carries a value.
func (s Set) Active() bool {
	for _, v := range s {
		if v != "" {
			return true
		}
	}
	return false
}

// Matches compares raw field values exactly; no trimming or case folding.
func (s Set) Matches(row sales.PlanRow) bool {
	for field, want := range s {
		if want == "" {
			continue
		}
		if row.Value(field) != want {
			return false
		}
	}
	return true
}

// Apply returns the plans that satisfy every non-empty filter.
func Apply(plans []sales.PlanRow, set Set) []sales.PlanRow {
	filtered := make([]sales.PlanRow, 0, len(plans))
	for _, row := range plans {
		if set.Matches(row) {
			filtered = append(filtered, row)
		}
	}
	return filtered
}

// Options lists the values target can still take. Rows are restricted by the
// permission floor and by every active filter except target itself, so a
// dropdown never collapses to its own selection.
func Options(plans []sales.PlanRow, floor, active Set, target sales.Field) []string {
	others := active.Without(target)
	seen := make(map[string]struct{})
	values := make([]string, 0)
	for _, row := range plans {
		if !floor.Matches(row) || !others.Matches(row) {
			continue
		}
		value := row.Value(target)
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		values = append(values, value)
	}
	sort.Strings(values)
	return values
}

// Layers keeps the session's permission floor apart from the user's own
// selections. The floor always wins.
type Layers struct {
	floor Set
	user  Set
}

func NewLayers(floor Set) *Layers {
	pinned := make(Set, len(floor))
	for k, v := range floor {
		if v != "" {
			pinned[k] = v
		}
	}
	return &Layers{floor: pinned, user: Set{}}
}

// Floor returns a copy of the permission floor.
func (l *Layers) Floor() Set { return l.floor.Clone() }

// User returns a copy of the user's overrides.
func (l *Layers) User() Set { return l.user.Clone() }

func (l *Layers) Locked(field sales.Field) bool {
	_, ok := l.floor[field]
	return ok
}

// Set records a user selection. Fields pinned by the floor are refused.
func (l *Layers) Set(field sales.Field, value string) bool {
	if l.Locked(field) {
		return false
	}
	if value == "" {
		delete(l.user, field)
		return true
	}
	l.user[field] = value
	return true
}

// Clear resets to the floor.
func (l *Layers) Clear() {
	l.user = Set{}
}

// Effective merges the user layer under the floor.
func (l *Layers) Effective() Set {
	merged := l.user.Clone()
	for k, v := range l.floor {
		merged[k] = v
	}
	return merged
}

// VisibleFields lists the dropdown fields the floor leaves adjustable.
func (l *Layers) VisibleFields() []sales.Field {
	fields := make([]sales.Field, 0, len(sales.FilterFields))
	for _, f := range sales.FilterFields {
		if !l.Locked(f) {
			fields = append(fields, f)
		}
	}
	return fields
}
