package session

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"sales-pacing-console/internal/sales"
)

// Directory lists the identities a user can pick for each role.
type Directory struct {
	users []User
	plans []sales.PlanRow
}

func NewDirectory(users []User, plans []sales.PlanRow) *Directory {
	return &Directory{users: users, plans: plans}
}

// Identities returns the selectable names for role. Salesmen are listed as
// "<id> - <name>".
func (d *Directory) Identities(role Role) []string {
	switch role {
	case RoleRSM:
		return d.unique(sales.FieldRSM)
	case RoleSM:
		return d.unique(sales.FieldSM)
	case RoleDistributor:
		return d.unique(sales.FieldDistName)
	case RoleSalesman:
		return d.salesmen()
	case RoleStaff:
		out := make([]string, 0)
		for _, u := range d.users {
			if strings.EqualFold(strings.TrimSpace(u.JobTitle), string(RoleStaff)) {
				out = append(out, u.DisplayName())
			}
		}
		return out
	default:
		return nil
	}
}

func (d *Directory) unique(field sales.Field) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, p := range d.plans {
		v := p.Value(field)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func (d *Directory) salesmen() []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, p := range d.plans {
		if p.SalesmanNo == "" || p.SalesmanName == "" {
			continue
		}
		if _, ok := seen[p.SalesmanNo]; ok {
			continue
		}
		seen[p.SalesmanNo] = struct{}{}
		out = append(out, p.SalesmanNo+" - "+p.SalesmanName)
	}
	return out
}

// Search returns identities containing term, ignoring case. An empty term
// returns everything.
func (d *Directory) Search(role Role, term string) []string {
	all := d.Identities(role)
	needle := strings.ToLower(strings.TrimSpace(term))
	if needle == "" {
		return all
	}
	out := make([]string, 0)
	for _, candidate := range all {
		if strings.Contains(strings.ToLower(candidate), needle) {
			out = append(out, candidate)
		}
	}
	return out
}

// Suggest returns up to n identities closest to term by edit distance, for
// when Search finds nothing.
func (d *Directory) Suggest(role Role, term string, n int) []string {
	needle := strings.ToLower(strings.TrimSpace(term))
	all := d.Identities(role)
	if needle == "" || len(all) == 0 || n <= 0 {
		return nil
	}
	type scored struct {
		value    string
		distance int
	}
	ranked := make([]scored, 0, len(all))
	for _, candidate := range all {
		ranked = append(ranked, scored{
			value:    candidate,
			distance: levenshtein.ComputeDistance(needle, strings.ToLower(candidate)),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].distance < ranked[j].distance
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	out := make([]string, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, r.value)
	}
	return out
}
