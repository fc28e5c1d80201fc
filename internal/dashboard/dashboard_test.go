package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sales-pacing-console/internal/filter"
	"sales-pacing-console/internal/sales"
	"sales-pacing-console/internal/session"
	"sales-pacing-console/internal/source"
)

func fixedClock(day string) func() time.Time {
	t, err := time.Parse("2006-01-02", day)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return t.Add(10 * time.Hour) }
}

func snapshot() source.Snapshot {
	plans := []sales.PlanRow{
		{SalesmanNo: "1", SalesmanName: "Ali", DistName: "North Dist", Region: "North", RSM: "Omar", Channel: "Retail"},
		{SalesmanNo: "2", SalesmanName: "Badr", DistName: "South Dist", Region: "South", RSM: "Hana", Channel: "Wholesale"},
	}
	plans[0].Plan.Set(sales.GSV, 100)
	plans[1].Plan.Set(sales.GSV, 200)

	achs := []sales.AchievedRow{
		{SalesmanNo: "1", Days: "2024-03-04"},
		{SalesmanNo: "1", Days: "2024-03-05"},
		{SalesmanNo: "2", Days: "2024-03-05"},
	}
	achs[0].Ach.Set(sales.GSV, 10)
	achs[1].Ach.Set(sales.GSV, 40)
	achs[2].Ach.Set(sales.GSV, 50)
	return source.Snapshot{
		Plans:        plans,
		Achievements: achs,
		LoadedAt:     time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC),
		Origin:       "test",
	}
}

func TestLoadAutoSelectsLatestDay(t *testing.T) {
	d := New(session.Identity{Role: session.RoleStaff}, WithClock(fixedClock("2024-03-20")), WithLocation(time.UTC))
	assert.Equal(t, "2024-03-20", d.RequestedDate())

	d.Load(snapshot())
	assert.Equal(t, "2024-03-05", d.RequestedDate())
	assert.Equal(t, []string{"2024-03-04", "2024-03-05"}, d.AvailableDates())
	assert.Equal(t, "test", d.Origin())
	assert.False(t, d.LastUpdated().IsZero())
}

func TestLoadKeepsTodayWhenItHasData(t *testing.T) {
	d := New(session.Identity{}, WithClock(fixedClock("2024-03-04")), WithLocation(time.UTC))
	d.Load(snapshot())
	assert.Equal(t, "2024-03-04", d.RequestedDate())
}

func TestViewFollowsDateAndFilters(t *testing.T) {
	d := New(session.Identity{Role: session.RoleStaff}, WithClock(fixedClock("2024-03-20")), WithLocation(time.UTC))
	d.Load(snapshot())

	view := d.View()
	assert.Equal(t, 90.0, view.Totals.Actual.Get(sales.GSV))
	assert.Equal(t, 300.0, view.Totals.Plan.Get(sales.GSV))
	assert.Len(t, view.Channels, 2)

	require.True(t, d.SetFilter(sales.FieldRegion, "North"))
	view = d.View()
	assert.Equal(t, 40.0, view.Totals.Actual.Get(sales.GSV))
	assert.Equal(t, []string{"North", "South"}, d.Options(sales.FieldRegion))
	assert.Equal(t, []string{"North Dist"}, d.Options(sales.FieldDistName))

	d.StepDate(-1)
	view = d.View()
	assert.Equal(t, "2024-03-04", view.EffectiveDate)
	assert.Equal(t, 10.0, view.Totals.Actual.Get(sales.GSV))

	d.StepDate(3)
	view = d.View()
	assert.Equal(t, "2024-03-07", view.RequestedDate)
	assert.Equal(t, "2024-03-05", view.EffectiveDate)
	assert.True(t, view.FallbackActive)

	d.ClearFilters()
	assert.False(t, d.Filters().Active())
}

func TestFloorIsPermanent(t *testing.T) {
	identity := session.Identity{
		Role:  session.RoleDistributor,
		Floor: filter.Set{sales.FieldDistName: "South Dist"},
	}
	d := New(identity, WithClock(fixedClock("2024-03-05")), WithLocation(time.UTC))
	d.Load(snapshot())

	assert.False(t, d.SetFilter(sales.FieldDistName, "North Dist"))
	assert.NotContains(t, d.VisibleFields(), sales.FieldDistName)

	d.SetFilter(sales.FieldChannel, "Retail")
	assert.Empty(t, d.FilteredPlans())

	d.ClearFilters()
	assert.Equal(t, filter.Set{sales.FieldDistName: "South Dist"}, d.Filters())

	view := d.View()
	assert.True(t, view.Restricted)
	assert.Nil(t, view.Top)
	assert.Nil(t, view.Channels)
	assert.Equal(t, 50.0, view.Totals.Actual.Get(sales.GSV))
}

func TestDateControls(t *testing.T) {
	d := New(session.Identity{}, WithClock(fixedClock("2024-03-20")), WithLocation(time.UTC))
	assert.False(t, d.JumpToLatest())

	d.Load(snapshot())
	assert.False(t, d.SetDate("2024-3-1"))
	assert.False(t, d.SetDate("2024-03-01T00:00"))
	assert.True(t, d.SetDate("2024-03-01"))
	assert.Equal(t, "2024-03-01", d.RequestedDate())

	d.JumpToToday()
	assert.Equal(t, "2024-03-20", d.RequestedDate())
	assert.True(t, d.JumpToLatest())
	assert.Equal(t, "2024-03-05", d.RequestedDate())
}

func TestKPISelectors(t *testing.T) {
	d := New(session.Identity{})
	assert.Equal(t, sales.ECO, d.CycleKPI(PanelDaily))
	d.SetKPI(PanelChannel, sales.MVS)
	assert.Equal(t, sales.GSV, d.CycleKPI(PanelChannel))
	d.SetKPI(PanelDistributor, sales.PC)

	sel := d.Selectors()
	assert.Equal(t, sales.ECO, sel.Daily)
	assert.Equal(t, sales.GSV, sel.Channel)
	assert.Equal(t, sales.PC, sel.Distributor)
	assert.Equal(t, "distributor", PanelDistributor.String())
}
