// Package sales holds the plan and achievement records the dashboard reports on.
package sales

import (
	"fmt"
	"strings"
)

// KPI is one of the five tracked performance metrics.
type KPI int

const (
	GSV KPI = iota
	ECO
	PC
	LPC
	MVS

	numKPIs
)

// KPIs lists every metric in display order.
var KPIs = []KPI{GSV, ECO, PC, LPC, MVS}

var kpiNames = [numKPIs]string{"GSV", "ECO", "PC", "LPC", "MVS"}

var kpiLabels = [numKPIs]string{"Total GSV", "ECO Coverage", "Productive Calls", "LPC", "MVS"}

func (k KPI) String() string {
	if k < 0 || k >= numKPIs {
		return fmt.Sprintf("KPI(%d)", int(k))
	}
	return kpiNames[k]
}

// Label is the card title used on the dashboard.
func (k KPI) Label() string {
	if k < 0 || k >= numKPIs {
		return k.String()
	}
	return kpiLabels[k]
}

// PlanField is the source column carrying the plan value, e.g. "Plan GSV".
func (k KPI) PlanField() string { return "Plan " + k.String() }

// AchField is the source column carrying the achieved value, e.g. "Ach GSV".
func (k KPI) AchField() string { return "Ach " + k.String() }

// Next cycles through KPIs in display order.
func (k KPI) Next() KPI {
	return (k + 1) % numKPIs
}

// ParseKPI accepts a bare metric name or a source column name such as "Ach ECO".
func ParseKPI(value string) (KPI, error) {
	name := strings.TrimSpace(value)
	name = strings.TrimPrefix(name, "Plan ")
	name = strings.TrimPrefix(name, "Ach ")
	for i, candidate := range kpiNames {
		if strings.EqualFold(name, candidate) {
			return KPI(i), nil
		}
	}
	return GSV, fmt.Errorf("unknown kpi %q", value)
}

// Metrics stores one value per KPI.
type Metrics [numKPIs]float64

func (m Metrics) Get(k KPI) float64 {
	if k < 0 || k >= numKPIs {
		return 0
	}
	return m[k]
}

func (m *Metrics) Set(k KPI, value float64) {
	if k < 0 || k >= numKPIs {
		return
	}
	m[k] = value
}

// Add accumulates other into m.
func (m *Metrics) Add(other Metrics) {
	for i := range m {
		m[i] += other[i]
	}
}

// Field names a filterable plan column using its source header.
type Field string

const (
	FieldSalesmanNo   Field = "SALESMANNO"
	FieldSalesmanName Field = "SALESMANNAMEA"
	FieldDistName     Field = "Dist Name"
	FieldRegion       Field = "Region"
	FieldRSM          Field = "RSM"
	FieldSM           Field = "SM"
	FieldTeamLeader   Field = "T.L Name"
	FieldChannel      Field = "Channel"
)

// FilterFields is the dropdown order on the dashboard.
var FilterFields = []Field{
	FieldRegion,
	FieldRSM,
	FieldSM,
	FieldDistName,
	FieldTeamLeader,
	FieldSalesmanName,
	FieldChannel,
}

// Label is a human readable name for the field.
func (f Field) Label() string {
	switch f {
	case FieldSalesmanName:
		return "Salesman"
	case FieldTeamLeader:
		return "Team Leader"
	case FieldSalesmanNo:
		return "Salesman No"
	default:
		return strings.ReplaceAll(string(f), "_", " ")
	}
}

// PlanRow is one salesman's monthly target.
type PlanRow struct {
	SalesmanNo   string
	SalesmanName string
	DistName     string
	Region       string
	RSM          string
	SM           string
	TeamLeader   string
	Channel      string
	Plan         Metrics
}

// Value returns the raw column value for f, untrimmed.
func (p PlanRow) Value(f Field) string {
	switch f {
	case FieldSalesmanNo:
		return p.SalesmanNo
	case FieldSalesmanName:
		return p.SalesmanName
	case FieldDistName:
		return p.DistName
	case FieldRegion:
		return p.Region
	case FieldRSM:
		return p.RSM
	case FieldSM:
		return p.SM
	case FieldTeamLeader:
		return p.TeamLeader
	case FieldChannel:
		return p.Channel
	default:
		return ""
	}
}

// Identity is the join key: SALESMANNO with surrounding whitespace removed.
func (p PlanRow) Identity() string {
	return strings.TrimSpace(p.SalesmanNo)
}

func (p PlanRow) ChannelOrOther() string {
	if p.Channel == "" {
		return "Other"
	}
	return p.Channel
}

func (p PlanRow) DistNameOrUnknown() string {
	if p.DistName == "" {
		return "Unknown"
	}
	return p.DistName
}

// AchievedRow is one salesman's achievement snapshot for one day.
type AchievedRow struct {
	SalesmanNo string
	Days       string
	Ach        Metrics
}

func (a AchievedRow) Identity() string {
	return strings.TrimSpace(a.SalesmanNo)
}

// KPIRow is a plan joined with the achievement for the effective date.
type KPIRow struct {
	PlanRow
	Ach Metrics
}
