package sales

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const dayLayout = "2006-01-02"

// Number coerces a loosely typed cell to a float. Anything that is not a
// finite number becomes 0.
func Number(value any) float64 {
	var out float64
	switch v := value.(type) {
	case nil:
		return 0
	case float64:
		out = v
	case float32:
		out = float64(v)
	case int:
		out = float64(v)
	case int32:
		out = float64(v)
	case int64:
		out = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0
		}
		out = parsed
	case string:
		out = ParseNumber(v)
	case []byte:
		out = ParseNumber(string(v))
	case bool:
		if v {
			return 1
		}
		return 0
	default:
		return 0
	}
	if math.IsNaN(out) || math.IsInf(out, 0) {
		return 0
	}
	return out
}

// ParseNumber parses a numeric string, ignoring thousands separators.
func ParseNumber(value string) float64 {
	cleaned := strings.ReplaceAll(strings.TrimSpace(value), ",", "")
	if cleaned == "" {
		return 0
	}
	parsed, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return 0
	}
	return parsed
}

// Text renders a loosely typed cell as a string. Integral numbers print
// without a fractional part so numeric IDs compare equal to their text form.
func Text(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case json.Number:
		return v.String()
	case []byte:
		return string(v)
	case time.Time:
		return v.Format(time.RFC3339)
	default:
		return fmt.Sprint(v)
	}
}

// DayKey extracts the YYYY-MM-DD prefix of a Days value. Trailing time of
// day content is ignored; anything else is malformed.
func DayKey(days string) (string, bool) {
	if len(days) < len(dayLayout) {
		return "", false
	}
	key := days[:len(dayLayout)]
	if len(days) > len(dayLayout) {
		switch days[len(dayLayout)] {
		case 'T', ' ':
		default:
			return "", false
		}
	}
	if _, err := time.Parse(dayLayout, key); err != nil {
		return "", false
	}
	return key, true
}

// PlanFromRecord builds a plan row from a header keyed record. Missing keys
// are empty or zero.
func PlanFromRecord(record map[string]any) PlanRow {
	row := PlanRow{
		SalesmanNo:   Text(record[string(FieldSalesmanNo)]),
		SalesmanName: Text(record[string(FieldSalesmanName)]),
		DistName:     Text(record[string(FieldDistName)]),
		Region:       Text(record[string(FieldRegion)]),
		RSM:          Text(record[string(FieldRSM)]),
		SM:           Text(record[string(FieldSM)]),
		TeamLeader:   Text(record[string(FieldTeamLeader)]),
		Channel:      Text(record[string(FieldChannel)]),
	}
	for _, k := range KPIs {
		row.Plan.Set(k, Number(record[k.PlanField()]))
	}
	return row
}

// AchievedFromRecord builds an achievement row from a header keyed record.
func AchievedFromRecord(record map[string]any) AchievedRow {
	row := AchievedRow{
		SalesmanNo: Text(record[string(FieldSalesmanNo)]),
		Days:       Text(record["Days"]),
	}
	for _, k := range KPIs {
		row.Ach.Set(k, Number(record[k.AchField()]))
	}
	return row
}
