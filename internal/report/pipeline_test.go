package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sales-pacing-console/internal/sales"
)

func plan(id, dist, channel string, gsv float64) sales.PlanRow {
	p := sales.PlanRow{SalesmanNo: id, DistName: dist, Channel: channel}
	p.Plan.Set(sales.GSV, gsv)
	return p
}

func ach(id, days string, gsv float64) sales.AchievedRow {
	a := sales.AchievedRow{SalesmanNo: id, Days: days}
	a.Ach.Set(sales.GSV, gsv)
	return a
}

func TestSingleSalesmanExample(t *testing.T) {
	plans := []sales.PlanRow{plan("1", "", "A", 100)}
	achievements := []sales.AchievedRow{ach("1", "2024-03-05", 40)}

	view := Build(Input{
		Plans:         plans,
		Achievements:  achievements,
		RequestedDate: "2024-03-05",
		Now:           time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC),
	})

	assert.Equal(t, "2024-03-05", view.EffectiveDate)
	assert.False(t, view.FallbackActive)
	assert.Equal(t, 40.0, view.Totals.Actual.Get(sales.GSV))
	assert.Equal(t, 100.0, view.Totals.Plan.Get(sales.GSV))
	require.Len(t, view.Channels, 1)
	assert.Equal(t, ChannelPoint{Name: "A", Plan: 100, Actual: 40, AchPct: 40}, view.Channels[0])
	assert.Equal(t, 1, view.MatchedCount)
}

func TestFallbackExample(t *testing.T) {
	plans := []sales.PlanRow{plan("1", "", "A", 100)}
	achievements := []sales.AchievedRow{ach("1", "2024-03-05", 40)}

	view := Build(Input{Plans: plans, Achievements: achievements, RequestedDate: "2024-03-10"})

	assert.Equal(t, "2024-03-05", view.EffectiveDate)
	assert.True(t, view.FallbackActive)
	assert.Equal(t, 40.0, view.Totals.Actual.Get(sales.GSV))
}

func TestJoinTrimsIdentityAndTakesFirstMatch(t *testing.T) {
	plans := []sales.PlanRow{plan(" 7 ", "D", "", 10), plan("8", "D", "", 10)}
	achievements := []sales.AchievedRow{
		ach("7", "2024-03-04", 1),
		ach("7 ", "2024-03-05T00:00:00.000Z", 2),
		ach("7", "2024-03-05", 3),
	}

	rows := Join(plans, achievements, "2024-03-05")
	require.Len(t, rows, 2)
	assert.Equal(t, 2.0, rows[0].Ach.Get(sales.GSV))
	assert.Equal(t, 0.0, rows[1].Ach.Get(sales.GSV))
	assert.Equal(t, " 7 ", rows[0].SalesmanNo)
}

func TestEmptyInputsDegradeToZero(t *testing.T) {
	view := Build(Input{RequestedDate: "2024-03-05"})

	assert.Equal(t, Totals{}, view.Totals)
	assert.Empty(t, view.Channels)
	assert.Empty(t, view.Top)
	assert.Empty(t, view.Bottom)
	assert.Empty(t, view.Series)
	assert.False(t, view.FallbackActive)
	assert.Equal(t, 0, view.PlanCount)
}

func TestChannelBreakdownPartitionsTotals(t *testing.T) {
	plans := []sales.PlanRow{
		plan("1", "D1", "Retail", 100),
		plan("2", "D1", "", 50),
		plan("3", "D2", "Retail", 0),
		plan("4", "D2", "Wholesale", 80),
	}
	achievements := []sales.AchievedRow{
		ach("1", "2024-03-05", 70),
		ach("2", "2024-03-05", 20),
		ach("3", "2024-03-05", 15),
		ach("4", "2024-03-04", 99),
	}
	rows := Join(plans, achievements, "2024-03-05")
	totals := Aggregate(rows)
	channels := ChannelBreakdown(rows, sales.GSV)

	var sum float64
	names := make([]string, 0, len(channels))
	for _, c := range channels {
		sum += c.Actual
		names = append(names, c.Name)
	}
	assert.Equal(t, totals.Actual.Get(sales.GSV), sum)
	assert.Equal(t, []string{"Retail", "Other", "Wholesale"}, names)
	assert.Equal(t, 85, channels[0].AchPct)
	assert.Equal(t, 0, channels[2].AchPct)
}

func TestAchPctRoundsHalfUp(t *testing.T) {
	rows := Join([]sales.PlanRow{plan("1", "", "A", 200)}, []sales.AchievedRow{ach("1", "2024-03-05", 1)}, "2024-03-05")
	channels := ChannelBreakdown(rows, sales.GSV)
	assert.Equal(t, 1, channels[0].AchPct)
}

func TestRankDistributors(t *testing.T) {
	plans := []sales.PlanRow{
		plan("1", "Alpha", "", 100),
		plan("2", "Bravo", "", 100),
		plan("3", "Charlie", "", 0),
		plan("4", "", "", 100),
		plan("5", "Delta", "", 100),
		plan("6", "Echo", "", 100),
		plan("7", "Foxtrot", "", 100),
		plan("8", "Alpha", "", 100),
	}
	achievements := []sales.AchievedRow{
		ach("1", "2024-03-05", 50),
		ach("2", "2024-03-05", 90),
		ach("3", "2024-03-05", 500),
		ach("4", "2024-03-05", 10),
		ach("5", "2024-03-05", 90),
		ach("6", "2024-03-05", 120),
		ach("7", "2024-03-05", 0),
		ach("8", "2024-03-05", 50),
	}
	rows := Join(plans, achievements, "2024-03-05")
	top, bottom := RankDistributors(rows, sales.GSV, 5)

	topNames := make([]string, 0, len(top))
	for _, r := range top {
		topNames = append(topNames, r.Name)
	}
	// Charlie has no plan so its value is 0; Bravo and Delta tie and keep first-seen order.
	assert.Equal(t, []string{"Echo", "Bravo", "Delta", "Alpha", "Unknown"}, topNames)

	bottomNames := make([]string, 0, len(bottom))
	for _, r := range bottom {
		bottomNames = append(bottomNames, r.Name)
		assert.Greater(t, r.Plan, 0.0)
	}
	assert.Equal(t, []string{"Foxtrot", "Unknown", "Alpha", "Bravo", "Delta"}, bottomNames)
	assert.NotContains(t, bottomNames, "Charlie")

	assert.Equal(t, DistributorRank{Name: "Alpha", Plan: 200, Actual: 100, Value: 50}, top[3])
}

func TestRankZeroPlanValueIsZero(t *testing.T) {
	rows := Join([]sales.PlanRow{plan("1", "Solo", "", 0)}, []sales.AchievedRow{ach("1", "2024-03-05", 10)}, "2024-03-05")
	top, bottom := RankDistributors(rows, sales.GSV, 0)

	require.Len(t, top, 1)
	assert.Equal(t, 0.0, top[0].Value)
	assert.Empty(t, bottom)
}

func TestDailySeries(t *testing.T) {
	plans := []sales.PlanRow{plan("1", "", "", 60), plan("2", "", "", 60)}
	achievements := []sales.AchievedRow{
		ach("1", "2024-04-15T00:00:00Z", 10),
		ach("2", "2024-04-15", 5),
		ach("1", "2024-04-03", 4),
		ach("1", "2024-04-20", 8),
		ach("3", "2024-04-15", 1000),
		ach("1", "garbage", 1000),
	}

	series := DailySeries(plans, achievements, sales.GSV, "2024-04-15")
	require.Len(t, series, 2)
	assert.Equal(t, "2024-04-03", series[0].Date)
	assert.Equal(t, 4.0, series[0].Value)
	assert.InDelta(t, 12.0, series[0].Target, 1e-9)
	assert.Equal(t, "2024-04-15", series[1].Date)
	assert.Equal(t, 15.0, series[1].Value)
	assert.InDelta(t, 60.0, series[1].Target, 1e-9)
}

func TestSeriesTargetAtHalfMonth(t *testing.T) {
	series := DailySeries([]sales.PlanRow{plan("1", "", "", 100)}, []sales.AchievedRow{ach("1", "2024-04-15", 1)}, sales.GSV, "2024-04-30")
	require.Len(t, series, 1)
	assert.InDelta(t, 50.0, series[0].Target, 1e-9)
}

func TestRestrictedViewSuppressesComparisons(t *testing.T) {
	plans := []sales.PlanRow{plan("1", "D", "A", 100)}
	achievements := []sales.AchievedRow{ach("1", "2024-03-05", 40)}

	view := Build(Input{Plans: plans, Achievements: achievements, RequestedDate: "2024-03-05", Restricted: true})

	assert.Nil(t, view.Channels)
	assert.Nil(t, view.Top)
	assert.Nil(t, view.Bottom)
	assert.Len(t, view.Series, 1)
	assert.Equal(t, 40.0, view.Totals.Pct(sales.GSV))
}

func TestTotalsPctWithoutPlan(t *testing.T) {
	var totals Totals
	totals.Actual.Set(sales.ECO, 5)
	assert.Equal(t, 0.0, totals.Pct(sales.ECO))
}
