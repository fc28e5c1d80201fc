// Package session authenticates dashboard users against the credentials
// table and derives the row level security floor for their role.
package session

import (
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"sales-pacing-console/internal/filter"
	"sales-pacing-console/internal/sales"
)

// Role is the job a user logs in as.
type Role string

const (
	RoleRSM         Role = "RSM"
	RoleSM          Role = "SM"
	RoleDistributor Role = "ASM"
	RoleSalesman    Role = "SALESMANNAMEA"
	RoleStaff       Role = "Staff"
	RoleAdmin       Role = "Admin"
)

// Roles lists the login choices in display order.
var Roles = []Role{RoleRSM, RoleSM, RoleDistributor, RoleSalesman, RoleStaff, RoleAdmin}

func (r Role) Label() string {
	switch r {
	case RoleRSM:
		return "RSM (Regional Manager)"
	case RoleSM:
		return "SM (Sales Manager)"
	case RoleDistributor:
		return "ASM / Distributor"
	case RoleSalesman:
		return "Sales Representative"
	case RoleStaff:
		return "Staff"
	case RoleAdmin:
		return "System Administrator"
	default:
		return string(r)
	}
}

// ParseRole matches a role by its code, case-insensitively.
func ParseRole(value string) (Role, bool) {
	for _, r := range Roles {
		if strings.EqualFold(strings.TrimSpace(value), string(r)) {
			return r, true
		}
	}
	return "", false
}

var (
	ErrRoleRequired        = errors.New("role is required")
	ErrIdentityRequired    = errors.New("identity is required")
	ErrDistributorNotFound = errors.New("no distributor found for salesman")
	ErrInvalidCredentials  = errors.New("invalid credentials")
)

// User is one row of the credentials table.
type User struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Password string `json:"password"`
	JobTitle string `json:"jobTitle"`
}

// DisplayName prefers Name and falls back to Username.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Username
}

// Identity is an authenticated session.
type Identity struct {
	SessionID  uuid.UUID
	Role       Role
	Name       string
	Username   string
	JobTitle   string
	Floor      filter.Set
	LoggedInAt time.Time
}

// Restricted identities see only their own totals and series, never peer
// rankings or channel comparisons.
func (i Identity) Restricted() bool {
	if i.Floor[sales.FieldDistName] != "" || i.Floor[sales.FieldSalesmanNo] != "" {
		return true
	}
	return i.Role == RoleDistributor || i.Role == RoleSalesman
}

// FloorFor derives the permission filters a role pins for the session.
func FloorFor(role Role, identity string) filter.Set {
	switch role {
	case RoleRSM:
		return filter.Set{sales.FieldRSM: identity}
	case RoleSM:
		return filter.Set{sales.FieldSM: identity}
	case RoleDistributor:
		return filter.Set{sales.FieldDistName: identity}
	case RoleSalesman:
		return filter.Set{sales.FieldSalesmanNo: SalesmanID(identity)}
	default:
		return filter.Set{}
	}
}

// SalesmanID extracts the id from a "<id> - <name>" selection.
func SalesmanID(identity string) string {
	id, _, _ := strings.Cut(identity, " - ")
	return strings.TrimSpace(id)
}

// Authenticator checks logins against the credentials table, using plans to
// resolve a salesman's distributor.
type Authenticator struct {
	users []User
	plans []sales.PlanRow
	now   func() time.Time
}

func NewAuthenticator(users []User, plans []sales.PlanRow) *Authenticator {
	return &Authenticator{users: users, plans: plans, now: time.Now}
}

// Login authenticates identity for role. Salesmen authenticate with their
// distributor's credentials.
func (a *Authenticator) Login(role Role, identity, password string) (Identity, error) {
	if role == "" {
		return Identity{}, ErrRoleRequired
	}
	// The floor keeps the selection as listed so it matches source values exactly.
	if strings.TrimSpace(identity) == "" {
		return Identity{}, ErrIdentityRequired
	}

	target := identity
	if role == RoleSalesman {
		dist, ok := a.distributorOf(SalesmanID(identity))
		if !ok {
			return Identity{}, ErrDistributorNotFound
		}
		target = dist
	}

	user, ok := a.match(target, password)
	if !ok {
		return Identity{}, ErrInvalidCredentials
	}
	if role == RoleAdmin && !isAdmin(user) {
		return Identity{}, ErrInvalidCredentials
	}
	if role == RoleStaff && !strings.EqualFold(strings.TrimSpace(user.JobTitle), string(RoleStaff)) {
		return Identity{}, ErrInvalidCredentials
	}

	jobTitle := user.JobTitle
	if role == RoleSalesman {
		jobTitle = "DSF"
	}
	if jobTitle == "" {
		jobTitle = string(role)
	}

	return Identity{
		SessionID:  uuid.New(),
		Role:       role,
		Name:       identity,
		Username:   user.Username,
		JobTitle:   jobTitle,
		Floor:      FloorFor(role, identity),
		LoggedInAt: a.now(),
	}, nil
}

func (a *Authenticator) distributorOf(salesmanID string) (string, bool) {
	for _, p := range a.plans {
		if p.Identity() == salesmanID && p.DistName != "" {
			return p.DistName, true
		}
	}
	return "", false
}

func (a *Authenticator) match(target, password string) (User, bool) {
	want := strings.ToLower(strings.TrimSpace(target))
	for _, u := range a.users {
		name := strings.ToLower(strings.TrimSpace(u.DisplayName()))
		username := strings.ToLower(strings.TrimSpace(u.Username))
		if name != want && username != want {
			continue
		}
		if passwordMatches(u.Password, password) {
			return u, true
		}
	}
	return User{}, false
}

func passwordMatches(stored, given string) bool {
	stored = strings.TrimSpace(stored)
	given = strings.TrimSpace(given)
	if stored == "" {
		return false
	}
	if isBcryptHash(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(given)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(given)) == 1
}

func isBcryptHash(value string) bool {
	return strings.HasPrefix(value, "$2a$") || strings.HasPrefix(value, "$2b$") || strings.HasPrefix(value, "$2y$")
}

func isAdmin(u User) bool {
	title := strings.ToLower(strings.TrimSpace(u.JobTitle))
	return title == "admin" || strings.Contains(title, "administrator") || title == "it manager"
}
