// Package report joins plans with achievements for a report day and derives
// the dashboard's aggregate views.
package report

import (
	"math"
	"sort"
	"strings"

	"sales-pacing-console/internal/period"
	"sales-pacing-console/internal/sales"
)

// DefaultRankSize is the length of the top and bottom distributor lists.
const DefaultRankSize = 5

// Join attaches to each plan the first achievement for the same salesman
// whose Days contains effectiveDate. Unmatched plans get zero actuals.
func Join(plans []sales.PlanRow, achievements []sales.AchievedRow, effectiveDate string) []sales.KPIRow {
	rows, _ := join(plans, achievements, effectiveDate)
	return rows
}

func join(plans []sales.PlanRow, achievements []sales.AchievedRow, effectiveDate string) ([]sales.KPIRow, int) {
	bySalesman := indexAchievements(achievements)
	rows := make([]sales.KPIRow, 0, len(plans))
	matched := 0
	for _, plan := range plans {
		row := sales.KPIRow{PlanRow: plan}
		for _, idx := range bySalesman[plan.Identity()] {
			if strings.Contains(achievements[idx].Days, effectiveDate) {
				row.Ach = achievements[idx].Ach
				matched++
				break
			}
		}
		rows = append(rows, row)
	}
	return rows, matched
}

func indexAchievements(achievements []sales.AchievedRow) map[string][]int {
	index := make(map[string][]int)
	for i, a := range achievements {
		id := a.Identity()
		index[id] = append(index[id], i)
	}
	return index
}

// Totals holds the plan and actual sums for every KPI.
type Totals struct {
	Plan   sales.Metrics
	Actual sales.Metrics
}

// Pct is actual over plan as a percentage, 0 when there is no plan.
func (t Totals) Pct(k sales.KPI) float64 {
	return percent(t.Actual.Get(k), t.Plan.Get(k))
}

// Aggregate sums plan and actual values across rows.
func Aggregate(rows []sales.KPIRow) Totals {
	var totals Totals
	for _, row := range rows {
		totals.Plan.Add(row.Plan)
		totals.Actual.Add(row.Ach)
	}
	return totals
}

// ChannelPoint is one bar of the channel breakdown.
type ChannelPoint struct {
	Name   string  `json:"name"`
	Plan   float64 `json:"plan"`
	Actual float64 `json:"actual"`
	AchPct int     `json:"ach_pct"`
}

// ChannelBreakdown groups rows by channel in first-seen order.
func ChannelBreakdown(rows []sales.KPIRow, kpi sales.KPI) []ChannelPoint {
	positions := make(map[string]int)
	points := make([]ChannelPoint, 0)
	for _, row := range rows {
		name := row.ChannelOrOther()
		pos, ok := positions[name]
		if !ok {
			pos = len(points)
			positions[name] = pos
			points = append(points, ChannelPoint{Name: name})
		}
		points[pos].Plan += row.Plan.Get(kpi)
		points[pos].Actual += row.Ach.Get(kpi)
	}
	for i := range points {
		points[i].AchPct = int(roundHalfUp(percent(points[i].Actual, points[i].Plan)))
	}
	return points
}

// DistributorRank is one distributor's achievement against plan.
type DistributorRank struct {
	Name   string  `json:"name"`
	Plan   float64 `json:"plan"`
	Actual float64 `json:"actual"`
	Value  float64 `json:"value"`
}

// RankDistributors returns the n best and n worst distributors by
// achievement percentage. Distributors without plan are left out of the
// bottom list.
func RankDistributors(rows []sales.KPIRow, kpi sales.KPI, n int) ([]DistributorRank, []DistributorRank) {
	if n <= 0 {
		n = DefaultRankSize
	}
	positions := make(map[string]int)
	groups := make([]DistributorRank, 0)
	for _, row := range rows {
		name := row.DistNameOrUnknown()
		pos, ok := positions[name]
		if !ok {
			pos = len(groups)
			positions[name] = pos
			groups = append(groups, DistributorRank{Name: name})
		}
		groups[pos].Plan += row.Plan.Get(kpi)
		groups[pos].Actual += row.Ach.Get(kpi)
	}
	for i := range groups {
		groups[i].Value = percent(groups[i].Actual, groups[i].Plan)
	}

	top := make([]DistributorRank, len(groups))
	copy(top, groups)
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].Value > top[j].Value
	})

	bottom := make([]DistributorRank, 0, len(groups))
	for _, g := range groups {
		if g.Plan > 0 {
			bottom = append(bottom, g)
		}
	}
	sort.SliceStable(bottom, func(i, j int) bool {
		return bottom[i].Value < bottom[j].Value
	})

	return limit(top, n), limit(bottom, n)
}

// SeriesPoint is one day of the daily progress chart.
type SeriesPoint struct {
	Date   string  `json:"date"`
	Value  float64 `json:"value"`
	Target float64 `json:"target"`
}

// DailySeries sums the KPI per day over every achievement of the planned
// salesmen, up to and including effectiveDate. Each point carries the linear
// pacing target for that day.
func DailySeries(plans []sales.PlanRow, achievements []sales.AchievedRow, kpi sales.KPI, effectiveDate string) []SeriesPoint {
	allowed := make(map[string]struct{}, len(plans))
	var totalPlan float64
	for _, p := range plans {
		allowed[p.Identity()] = struct{}{}
		totalPlan += p.Plan.Get(kpi)
	}

	byDay := make(map[string]float64)
	for _, a := range achievements {
		if _, ok := allowed[a.Identity()]; !ok {
			continue
		}
		day, ok := sales.DayKey(a.Days)
		if !ok {
			continue
		}
		byDay[day] += a.Ach.Get(kpi)
	}

	points := make([]SeriesPoint, 0, len(byDay))
	for day, value := range byDay {
		if day > effectiveDate {
			continue
		}
		points = append(points, SeriesPoint{
			Date:   day,
			Value:  value,
			Target: totalPlan * (period.ElapsedOn(day).Percent / 100),
		})
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Date < points[j].Date
	})
	return points
}

func percent(actual, plan float64) float64 {
	if plan == 0 {
		return 0
	}
	pct := actual / plan * 100
	if math.IsNaN(pct) || math.IsInf(pct, 0) {
		return 0
	}
	return pct
}

func roundHalfUp(value float64) float64 {
	return math.Floor(value + 0.5)
}

func limit(ranks []DistributorRank, n int) []DistributorRank {
	if len(ranks) > n {
		return ranks[:n]
	}
	return ranks
}
