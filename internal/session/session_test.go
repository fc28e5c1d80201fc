package session

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"sales-pacing-console/internal/filter"
	"sales-pacing-console/internal/sales"
)

func fixture(t *testing.T) ([]User, []sales.PlanRow) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	users := []User{
		{Username: "omar", Name: "Omar Said", Password: "rsm-pass", JobTitle: "RSM"},
		{Username: "north", Name: "North Dist", Password: " dist-pass ", JobTitle: "ASM"},
		{Username: "lina", Name: "Lina", Password: string(hash), JobTitle: "Staff"},
		{Username: "root", Name: "", Password: "admin-pass", JobTitle: "IT Manager"},
		{Username: "sami", Name: "Sami", Password: "sm-pass", JobTitle: "SM"},
	}
	plans := []sales.PlanRow{
		{SalesmanNo: "1001", SalesmanName: "Ali", DistName: "North Dist", RSM: "Omar Said", SM: "Sami"},
		{SalesmanNo: " 1002", SalesmanName: "Badr", DistName: "", RSM: "Omar Said", SM: "Sami"},
		{SalesmanNo: "1003", SalesmanName: "Chadi", DistName: "South Dist", RSM: "Hana", SM: "Sami"},
	}
	return users, plans
}

func TestLoginDerivesFloor(t *testing.T) {
	users, plans := fixture(t)
	auth := NewAuthenticator(users, plans)

	tests := []struct {
		name     string
		role     Role
		identity string
		password string
		floor    filter.Set
		title    string
		limited  bool
	}{
		{"regional manager", RoleRSM, "Omar Said", "rsm-pass", filter.Set{sales.FieldRSM: "Omar Said"}, "RSM", false},
		{"sales manager", RoleSM, "sami", "sm-pass", filter.Set{sales.FieldSM: "sami"}, "SM", false},
		{"distributor", RoleDistributor, "North Dist", "dist-pass", filter.Set{sales.FieldDistName: "North Dist"}, "ASM", true},
		{"salesman uses distributor password", RoleSalesman, "1001 - Ali", "dist-pass", filter.Set{sales.FieldSalesmanNo: "1001"}, "DSF", true},
		{"staff with bcrypt hash", RoleStaff, "Lina", "s3cret", filter.Set{}, "Staff", false},
		{"admin", RoleAdmin, "root", "admin-pass", filter.Set{}, "IT Manager", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := auth.Login(tt.role, tt.identity, tt.password)
			require.NoError(t, err)
			assert.Equal(t, tt.floor, id.Floor)
			assert.Equal(t, tt.title, id.JobTitle)
			assert.Equal(t, tt.limited, id.Restricted())
			assert.NotEqual(t, uuid.Nil, id.SessionID)
			assert.False(t, id.LoggedInAt.IsZero())
		})
	}
}

func TestLoginFloorKeepsSourceWhitespace(t *testing.T) {
	users := []User{
		{Username: "Ali", Password: "pw", JobTitle: "RSM"},
		{Username: "East Dist", Password: "east", JobTitle: "ASM"},
	}
	plans := []sales.PlanRow{
		{SalesmanNo: "2001", SalesmanName: "Nour", DistName: " East Dist ", RSM: "Ali "},
		{SalesmanNo: "2002", SalesmanName: "Rami", DistName: "West Dist", RSM: "Hana"},
	}
	auth := NewAuthenticator(users, plans)
	dir := NewDirectory(users, plans)

	rsm := dir.Identities(RoleRSM)
	require.Contains(t, rsm, "Ali ")
	id, err := auth.Login(RoleRSM, "Ali ", "pw")
	require.NoError(t, err)
	assert.Equal(t, "Ali ", id.Name)
	assert.Len(t, filter.Apply(plans, id.Floor), 1)

	require.Contains(t, dir.Identities(RoleDistributor), " East Dist ")
	id, err = auth.Login(RoleDistributor, " East Dist ", "east")
	require.NoError(t, err)
	rows := filter.Apply(plans, id.Floor)
	require.Len(t, rows, 1)
	assert.Equal(t, "2001", rows[0].SalesmanNo)

	_, err = auth.Login(RoleRSM, "   ", "pw")
	assert.ErrorIs(t, err, ErrIdentityRequired)
}

func TestLoginFailures(t *testing.T) {
	users, plans := fixture(t)
	auth := NewAuthenticator(users, plans)

	tests := []struct {
		name     string
		role     Role
		identity string
		password string
		want     error
	}{
		{"missing role", "", "Omar Said", "rsm-pass", ErrRoleRequired},
		{"missing identity", RoleRSM, "  ", "rsm-pass", ErrIdentityRequired},
		{"wrong password", RoleRSM, "Omar Said", "nope", ErrInvalidCredentials},
		{"salesman without distributor", RoleSalesman, "1002 - Badr", "dist-pass", ErrDistributorNotFound},
		{"unknown salesman", RoleSalesman, "9999 - Nobody", "dist-pass", ErrDistributorNotFound},
		{"staff role needs staff title", RoleStaff, "Omar Said", "rsm-pass", ErrInvalidCredentials},
		{"admin role needs admin title", RoleAdmin, "omar", "rsm-pass", ErrInvalidCredentials},
		{"empty stored password never matches", RoleRSM, "ghost", "", ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := auth.Login(tt.role, tt.identity, tt.password)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestFloorForStaffIsEmpty(t *testing.T) {
	assert.Empty(t, FloorFor(RoleStaff, "Lina"))
	assert.Empty(t, FloorFor(RoleAdmin, "root"))
	assert.Equal(t, "42", SalesmanID(" 42 - Someone"))
	assert.Equal(t, "42", SalesmanID("42"))
}

func TestParseRole(t *testing.T) {
	role, ok := ParseRole("asm")
	assert.True(t, ok)
	assert.Equal(t, RoleDistributor, role)

	_, ok = ParseRole("ceo")
	assert.False(t, ok)
}

func TestDirectory(t *testing.T) {
	users, plans := fixture(t)
	dir := NewDirectory(users, plans)

	assert.Equal(t, []string{"Hana", "Omar Said"}, dir.Identities(RoleRSM))
	assert.Equal(t, []string{"North Dist", "South Dist"}, dir.Identities(RoleDistributor))
	assert.Equal(t, []string{"1001 - Ali", " 1002 - Badr", "1003 - Chadi"}, dir.Identities(RoleSalesman))
	assert.Equal(t, []string{"Lina"}, dir.Identities(RoleStaff))
	assert.Nil(t, dir.Identities(RoleAdmin))

	assert.Equal(t, []string{"1003 - Chadi"}, dir.Search(RoleSalesman, "CHA"))
	assert.Len(t, dir.Search(RoleSalesman, ""), 3)
	assert.Empty(t, dir.Search(RoleDistributor, "west"))

	assert.Equal(t, []string{"North Dist"}, dir.Suggest(RoleDistributor, "nort dist", 1))
	assert.Nil(t, dir.Suggest(RoleDistributor, "", 3))
}
