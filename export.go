package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"sales-pacing-console/internal/filter"
	"sales-pacing-console/internal/report"
	"sales-pacing-console/internal/sales"
	"sales-pacing-console/internal/session"
)

type kpiSummary struct {
	KPI    string  `json:"kpi"`
	Label  string  `json:"label"`
	Plan   float64 `json:"plan"`
	Actual float64 `json:"actual"`
	Pct    float64 `json:"pct"`
}

type timeGone struct {
	Percent float64 `json:"percent"`
	Label   string  `json:"label"`
}

type reportPayload struct {
	GeneratedAt    string                   `json:"generated_at"`
	Identity       string                   `json:"identity"`
	Role           string                   `json:"role"`
	Filters        map[string]string        `json:"filters"`
	RequestedDate  string                   `json:"requested_date"`
	EffectiveDate  string                   `json:"effective_date"`
	FallbackActive bool                     `json:"fallback_active"`
	ReportTimeGone timeGone                 `json:"report_time_gone"`
	TodayTimeGone  timeGone                 `json:"today_time_gone"`
	Totals         []kpiSummary             `json:"totals"`
	ChannelKPI     string                   `json:"channel_kpi,omitempty"`
	Channels       []report.ChannelPoint    `json:"channels,omitempty"`
	RankKPI        string                   `json:"rank_kpi,omitempty"`
	Top            []report.DistributorRank `json:"top,omitempty"`
	Bottom         []report.DistributorRank `json:"bottom,omitempty"`
	DailyKPI       string                   `json:"daily_kpi"`
	Series         []report.SeriesPoint     `json:"series"`
}

func writeReport(path, format string, view report.View, identity session.Identity, filters filter.Set, generatedAt time.Time) error {
	format, err := normalizeReportFormat(path, format)
	if err != nil {
		return err
	}
	if format == "json" {
		payload := buildReportPayload(view, identity, filters, generatedAt)
		content, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return err
		}
		return writeReportOutput(path, content)
	}
	content := []byte(buildReportText(view, identity, filters, generatedAt))
	return writeReportOutput(path, content)
}

func normalizeReportFormat(path, format string) (string, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		if strings.EqualFold(filepath.Ext(path), ".json") {
			return "json", nil
		}
		return "text", nil
	}
	switch format {
	case "json", "text":
		return format, nil
	case "txt":
		return "text", nil
	default:
		return "", fmt.Errorf("unsupported report format %q (use text or json)", format)
	}
}

func writeReportOutput(path string, content []byte) error {
	if path == "" || path == "-" {
		_, err := os.Stdout.Write(content)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, content, 0o644)
}

func buildReportPayload(view report.View, identity session.Identity, filters filter.Set, generatedAt time.Time) reportPayload {
	payload := reportPayload{
		GeneratedAt:    generatedAt.Format(time.RFC3339),
		Identity:       identity.Name,
		Role:           string(identity.Role),
		Filters:        filterMap(filters),
		RequestedDate:  view.RequestedDate,
		EffectiveDate:  view.EffectiveDate,
		FallbackActive: view.FallbackActive,
		ReportTimeGone: timeGone{Percent: view.ReportElapsed.Percent, Label: view.ReportElapsed.Label},
		TodayTimeGone:  timeGone{Percent: view.TodayElapsed.Percent, Label: view.TodayElapsed.Label},
		Totals:         buildKPISummaries(view.Totals),
		DailyKPI:       view.Selectors.Daily.String(),
		Series:         view.Series,
	}
	if !view.Restricted {
		payload.ChannelKPI = view.Selectors.Channel.String()
		payload.Channels = view.Channels
		payload.RankKPI = view.Selectors.Distributor.String()
		payload.Top = view.Top
		payload.Bottom = view.Bottom
	}
	return payload
}

func buildKPISummaries(totals report.Totals) []kpiSummary {
	out := make([]kpiSummary, 0, len(sales.KPIs))
	for _, k := range sales.KPIs {
		out = append(out, kpiSummary{
			KPI:    k.String(),
			Label:  k.Label(),
			Plan:   totals.Plan.Get(k),
			Actual: totals.Actual.Get(k),
			Pct:    totals.Pct(k),
		})
	}
	return out
}

func filterMap(filters filter.Set) map[string]string {
	out := make(map[string]string, len(filters))
	for field, value := range filters {
		if value != "" {
			out[string(field)] = value
		}
	}
	return out
}

func describeFilters(filters filter.Set) string {
	parts := make([]string, 0, len(filters))
	for field, value := range filters {
		if value == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=%s", field.Label(), value))
	}
	if len(parts) == 0 {
		return "none"
	}
	sort.Strings(parts)
	return strings.Join(parts, " · ")
}

func buildReportText(view report.View, identity session.Identity, filters filter.Set, generatedAt time.Time) string {
	lines := []string{
		"EVPM Sales Pacing Report",
		fmt.Sprintf("Generated: %s", generatedAt.Format(time.RFC3339)),
		fmt.Sprintf("Identity: %s (%s)", identity.Name, identity.JobTitle),
		fmt.Sprintf("Filters: %s", describeFilters(filters)),
		"",
	}
	dateLine := fmt.Sprintf("Report date: %s", view.EffectiveDate)
	if view.FallbackActive {
		dateLine = fmt.Sprintf("Report date: %s (no data for %s, showing latest earlier day)", view.EffectiveDate, view.RequestedDate)
	}
	lines = append(lines,
		dateLine,
		fmt.Sprintf("Time gone: %0.1f%% of %s · today %0.1f%%", view.ReportElapsed.Percent, monthLabel(view.ReportElapsed.Date), view.TodayElapsed.Percent),
		"",
	)
	for _, s := range buildKPISummaries(view.Totals) {
		lines = append(lines, fmt.Sprintf("%-16s %s / %s (%0.1f%%)", s.Label, formatNumber(s.Actual), formatNumber(s.Plan), s.Pct))
	}

	if !view.Restricted {
		lines = append(lines, "", fmt.Sprintf("Channels (%s):", view.Selectors.Channel))
		for _, c := range view.Channels {
			lines = append(lines, fmt.Sprintf("  %-20s %s / %s (%d%%)", c.Name, formatNumber(c.Actual), formatNumber(c.Plan), c.AchPct))
		}
		lines = append(lines, "", fmt.Sprintf("Top distributors (%s):", view.Selectors.Distributor))
		lines = append(lines, rankLines(view.Top)...)
		lines = append(lines, "", fmt.Sprintf("Bottom distributors (%s):", view.Selectors.Distributor))
		lines = append(lines, rankLines(view.Bottom)...)
	}

	lines = append(lines, "", fmt.Sprintf("Daily %s vs target:", view.Selectors.Daily))
	if len(view.Series) == 0 {
		lines = append(lines, "  No daily data.")
	}
	for _, p := range view.Series {
		lines = append(lines, fmt.Sprintf("  %s  %s (target %s)", p.Date, formatNumber(p.Value), formatNumber(p.Target)))
	}

	return strings.Join(lines, "\n") + "\n"
}

func rankLines(ranks []report.DistributorRank) []string {
	if len(ranks) == 0 {
		return []string{"  None"}
	}
	lines := make([]string, 0, len(ranks))
	for i, r := range ranks {
		lines = append(lines, fmt.Sprintf("  %d. %-24s %0.1f%% (%s / %s)", i+1, r.Name, r.Value, formatNumber(r.Actual), formatNumber(r.Plan)))
	}
	return lines
}

func monthLabel(t time.Time) string {
	if t.IsZero() {
		return "month"
	}
	return t.Format("January 2006")
}
