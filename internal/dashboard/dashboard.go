// Package dashboard holds one session's report state: the source snapshots,
// the layered filters, the requested day and the chart selectors.
package dashboard

import (
	"time"

	"sales-pacing-console/internal/filter"
	"sales-pacing-console/internal/period"
	"sales-pacing-console/internal/report"
	"sales-pacing-console/internal/sales"
	"sales-pacing-console/internal/session"
	"sales-pacing-console/internal/source"
)

// Panel names a chart with its own KPI selector.
type Panel int

const (
	PanelDaily Panel = iota
	PanelChannel
	PanelDistributor
)

func (p Panel) String() string {
	switch p {
	case PanelDaily:
		return "daily"
	case PanelChannel:
		return "channel"
	case PanelDistributor:
		return "distributor"
	default:
		return "unknown"
	}
}

// Dashboard is single-writer state; callers mutate it from one goroutine.
type Dashboard struct {
	identity     session.Identity
	layers       *filter.Layers
	plans        []sales.PlanRow
	achievements []sales.AchievedRow
	available    []string
	requested    string
	selectors    report.Selectors
	rankSize     int
	lastUpdated  time.Time
	origin       string
	now          func() time.Time
	loc          *time.Location
}

// Option configures a Dashboard.
type Option func(*Dashboard)

// WithClock replaces the wall clock used for "today".
func WithClock(now func() time.Time) Option {
	return func(d *Dashboard) { d.now = now }
}

// WithLocation sets the zone "today" is computed in.
func WithLocation(loc *time.Location) Option {
	return func(d *Dashboard) { d.loc = loc }
}

// WithRankSize sets how many distributors the top and bottom lists hold.
func WithRankSize(n int) Option {
	return func(d *Dashboard) { d.rankSize = n }
}

// New starts a dashboard for identity with its permission floor pinned.
// The requested day starts at today.
func New(identity session.Identity, opts ...Option) *Dashboard {
	d := &Dashboard{
		identity: identity,
		layers:   filter.NewLayers(identity.Floor),
		rankSize: report.DefaultRankSize,
		now:      time.Now,
		loc:      time.Local,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.loc == nil {
		d.loc = time.Local
	}
	if d.rankSize <= 0 {
		d.rankSize = report.DefaultRankSize
	}
	d.requested = d.Today()
	return d
}

// Load swaps in a new snapshot. Available days are recomputed and the report
// day is auto-selected once per snapshot.
func (d *Dashboard) Load(snap source.Snapshot) {
	d.plans = snap.Plans
	d.achievements = snap.Achievements
	d.available = period.AvailableDates(snap.Achievements)
	d.lastUpdated = snap.LoadedAt
	d.origin = snap.Origin
	d.requested = period.AutoSelect(d.requested, d.achievements, d.available, d.Today())
}

func (d *Dashboard) Identity() session.Identity { return d.identity }

func (d *Dashboard) LastUpdated() time.Time { return d.lastUpdated }

func (d *Dashboard) Origin() string { return d.origin }

func (d *Dashboard) AvailableDates() []string {
	out := make([]string, len(d.available))
	copy(out, d.available)
	return out
}

// Today is the current day key in the dashboard's zone.
func (d *Dashboard) Today() string {
	return period.Today(d.now(), d.loc)
}

func (d *Dashboard) RequestedDate() string { return d.requested }

// SetDate requests a report day. Malformed keys are ignored.
func (d *Dashboard) SetDate(day string) bool {
	if _, ok := sales.DayKey(day); !ok || len(day) != len(period.DateLayout) {
		return false
	}
	d.requested = day
	return true
}

// StepDate moves the requested day by n days.
func (d *Dashboard) StepDate(n int) {
	d.requested = period.Shift(d.requested, n)
}

// JumpToLatest requests the newest day with data, if any.
func (d *Dashboard) JumpToLatest() bool {
	if len(d.available) == 0 {
		return false
	}
	d.requested = d.available[len(d.available)-1]
	return true
}

// JumpToToday requests today.
func (d *Dashboard) JumpToToday() {
	d.requested = d.Today()
}

// SetFilter records a user selection. Floor fields are refused.
func (d *Dashboard) SetFilter(field sales.Field, value string) bool {
	return d.layers.Set(field, value)
}

// ClearFilters resets to the permission floor.
func (d *Dashboard) ClearFilters() {
	d.layers.Clear()
}

// Filters is the effective filter set.
func (d *Dashboard) Filters() filter.Set {
	return d.layers.Effective()
}

// VisibleFields lists the filters the user may change.
func (d *Dashboard) VisibleFields() []sales.Field {
	return d.layers.VisibleFields()
}

// Options lists the reachable values of field under the other filters.
func (d *Dashboard) Options(field sales.Field) []string {
	return filter.Options(d.plans, d.layers.Floor(), d.layers.Effective(), field)
}

func (d *Dashboard) Selectors() report.Selectors { return d.selectors }

// SetKPI picks the KPI shown by panel.
func (d *Dashboard) SetKPI(panel Panel, kpi sales.KPI) {
	switch panel {
	case PanelDaily:
		d.selectors.Daily = kpi
	case PanelChannel:
		d.selectors.Channel = kpi
	case PanelDistributor:
		d.selectors.Distributor = kpi
	}
}

// CycleKPI advances panel to the next KPI and returns it.
func (d *Dashboard) CycleKPI(panel Panel) sales.KPI {
	var next sales.KPI
	switch panel {
	case PanelDaily:
		next = d.selectors.Daily.Next()
	case PanelChannel:
		next = d.selectors.Channel.Next()
	case PanelDistributor:
		next = d.selectors.Distributor.Next()
	}
	d.SetKPI(panel, next)
	return next
}

// FilteredPlans is the plan snapshot under the effective filters.
func (d *Dashboard) FilteredPlans() []sales.PlanRow {
	return filter.Apply(d.plans, d.layers.Effective())
}

// View recomputes the report from current state.
func (d *Dashboard) View() report.View {
	return report.Build(report.Input{
		Plans:          d.FilteredPlans(),
		Achievements:   d.achievements,
		AvailableDates: d.available,
		RequestedDate:  d.requested,
		Selectors:      d.selectors,
		RankSize:       d.rankSize,
		Restricted:     d.identity.Restricted(),
		Now:            d.now().In(d.loc),
	})
}
