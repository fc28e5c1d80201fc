package sales

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKPI(t *testing.T) {
	tests := []struct {
		in   string
		want KPI
	}{
		{"GSV", GSV},
		{"eco", ECO},
		{"Ach PC", PC},
		{"Plan LPC", LPC},
		{" MVS ", MVS},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseKPI(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseKPI("revenue")
	assert.Error(t, err)
}

func TestKPIFieldsAndCycle(t *testing.T) {
	assert.Equal(t, "Plan GSV", GSV.PlanField())
	assert.Equal(t, "Ach MVS", MVS.AchField())
	assert.Equal(t, "Productive Calls", PC.Label())
	assert.Equal(t, ECO, GSV.Next())
	assert.Equal(t, GSV, MVS.Next())
}

func TestMetricsAccessors(t *testing.T) {
	var m Metrics
	m.Set(ECO, 4)
	m.Set(KPI(42), 9)
	other := Metrics{}
	other.Set(ECO, 1)
	other.Set(GSV, 10)
	m.Add(other)

	assert.Equal(t, 5.0, m.Get(ECO))
	assert.Equal(t, 10.0, m.Get(GSV))
	assert.Equal(t, 0.0, m.Get(KPI(42)))
}

func TestNumberIsDefensive(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want float64
	}{
		{"nil", nil, 0},
		{"float", 12.5, 12.5},
		{"int", 7, 7},
		{"string", " 1,234.5 ", 1234.5},
		{"garbage", "n/a", 0},
		{"empty", "", 0},
		{"nan", math.NaN(), 0},
		{"inf", math.Inf(1), 0},
		{"json number", json.Number("42"), 42},
		{"struct", struct{}{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Number(tt.in))
		})
	}
}

func TestTextPrintsIntegralNumbersPlainly(t *testing.T) {
	assert.Equal(t, "1001", Text(1001.0))
	assert.Equal(t, "10.5", Text(10.5))
	assert.Equal(t, "", Text(nil))
	assert.Equal(t, " A ", Text(" A "))
}

func TestDayKey(t *testing.T) {
	tests := []struct {
		in    string
		want  string
		valid bool
	}{
		{"2024-03-05", "2024-03-05", true},
		{"2024-03-05T00:00:00.000Z", "2024-03-05", true},
		{"2024-03-05 10:00", "2024-03-05", true},
		{"2024-13-05", "", false},
		{"05/03/2024", "", false},
		{"2024-03-0", "", false},
		{"2024-03-05x", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := DayKey(tt.in)
		assert.Equal(t, tt.valid, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestRecordsFromMaps(t *testing.T) {
	plan := PlanFromRecord(map[string]any{
		"SALESMANNO": 1001.0,
		"Dist Name":  "North Dist",
		"Channel":    "Retail",
		"Plan GSV":   "2,500",
		"Plan ECO":   nil,
	})
	assert.Equal(t, "1001", plan.SalesmanNo)
	assert.Equal(t, "North Dist", plan.Value(FieldDistName))
	assert.Equal(t, 2500.0, plan.Plan.Get(GSV))
	assert.Equal(t, 0.0, plan.Plan.Get(ECO))
	assert.Equal(t, "", plan.Region)

	ach := AchievedFromRecord(map[string]any{
		"SALESMANNO": " 1001 ",
		"Days":       "2024-03-05T00:00:00Z",
		"Ach PC":     3.0,
	})
	assert.Equal(t, "1001", ach.Identity())
	assert.Equal(t, 3.0, ach.Ach.Get(PC))
}

func TestPlanDefaults(t *testing.T) {
	var p PlanRow
	assert.Equal(t, "Other", p.ChannelOrOther())
	assert.Equal(t, "Unknown", p.DistNameOrUnknown())
	assert.Equal(t, "Team Leader", FieldTeamLeader.Label())
	assert.Equal(t, "Dist Name", FieldDistName.Label())
}
