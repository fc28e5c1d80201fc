package report

import (
	"time"

	"sales-pacing-console/internal/period"
	"sales-pacing-console/internal/sales"
)

// Selectors picks the KPI shown by each chart.
type Selectors struct {
	Daily       sales.KPI
	Channel     sales.KPI
	Distributor sales.KPI
}

// Input is everything one render of the dashboard depends on.
type Input struct {
	Plans          []sales.PlanRow
	Achievements   []sales.AchievedRow
	AvailableDates []string
	RequestedDate  string
	Selectors      Selectors
	RankSize       int
	Restricted     bool
	Now            time.Time
}

// View is the dashboard's render model.
type View struct {
	RequestedDate  string
	EffectiveDate  string
	FallbackActive bool
	PlanCount      int
	MatchedCount   int
	Totals         Totals
	Selectors      Selectors
	Channels       []ChannelPoint
	Top            []DistributorRank
	Bottom         []DistributorRank
	Series         []SeriesPoint
	ReportElapsed  period.Elapsed
	TodayElapsed   period.Elapsed
	Restricted     bool
}

// Build runs the whole pipeline. Plans are expected to be filtered already.
// Restricted views never see channel or distributor comparisons.
func Build(in Input) View {
	available := in.AvailableDates
	if available == nil {
		available = period.AvailableDates(in.Achievements)
	}
	effective := period.ResolveEffectiveDate(in.RequestedDate, available)
	rows, matched := join(in.Plans, in.Achievements, effective)

	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}

	view := View{
		RequestedDate:  in.RequestedDate,
		EffectiveDate:  effective,
		FallbackActive: period.IsFallbackActive(in.RequestedDate, effective, available),
		PlanCount:      len(rows),
		MatchedCount:   matched,
		Totals:         Aggregate(rows),
		Selectors:      in.Selectors,
		Series:         DailySeries(in.Plans, in.Achievements, in.Selectors.Daily, effective),
		ReportElapsed:  period.ElapsedOn(effective),
		TodayElapsed:   period.ElapsedAt(now),
		Restricted:     in.Restricted,
	}
	if !in.Restricted {
		view.Channels = ChannelBreakdown(rows, in.Selectors.Channel)
		view.Top, view.Bottom = RankDistributors(rows, in.Selectors.Distributor, in.RankSize)
	}
	return view
}
