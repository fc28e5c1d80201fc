package source

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"sales-pacing-console/internal/period"
	"sales-pacing-console/internal/sales"
)

func loadXLSX(path string) (Snapshot, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	tables := make(map[string][][]string)
	for _, name := range f.GetSheetList() {
		key, ok := sheetKey(name)
		if !ok {
			continue
		}
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return Snapshot{}, fmt.Errorf("read sheet %s: %w", name, err)
		}
		tables[key] = rows
	}
	if _, ok := tables[PlanSheet]; !ok {
		return Snapshot{}, fmt.Errorf("workbook %s has no %s sheet", path, PlanSheet)
	}
	return fromTables(tables, excelSerialDay), nil
}

// maxExcelSerial is 9999-12-31, the last day Excel can store.
const maxExcelSerial = 2958465

// excelSerialDay turns a raw date serial such as "45356" into a day key.
// Text dates and numbers outside Excel's date range pass through untouched.
func excelSerialDay(cell string) string {
	trimmed := strings.TrimSpace(cell)
	serial, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || serial < 1 || serial > maxExcelSerial {
		return cell
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return cell
	}
	return t.Format(period.DateLayout)
}

func loadXLS(path string) (Snapshot, error) {
	wb, err := xls.Open(path, "utf-8")
	if err != nil {
		return Snapshot{}, fmt.Errorf("open xls workbook: %w", err)
	}
	tables := make(map[string][][]string)
	for i := 0; i < wb.NumSheets(); i++ {
		sheet := wb.GetSheet(i)
		if sheet == nil {
			continue
		}
		key, ok := sheetKey(sheet.Name)
		if !ok {
			continue
		}
		rows := make([][]string, 0, int(sheet.MaxRow)+1)
		for r := 0; r <= int(sheet.MaxRow); r++ {
			row := sheet.Row(r)
			if row == nil {
				continue
			}
			cells := make([]string, 0, row.LastCol()+1)
			for c := 0; c <= row.LastCol(); c++ {
				cells = append(cells, row.Col(c))
			}
			rows = append(rows, cells)
		}
		tables[key] = rows
	}
	if _, ok := tables[PlanSheet]; !ok {
		return Snapshot{}, fmt.Errorf("workbook %s has no %s sheet", path, PlanSheet)
	}
	return fromTables(tables, excelSerialDay), nil
}

type jsonExport struct {
	Plans        []map[string]any `json:"plans"`
	Achievements []map[string]any `json:"achievements"`
	Users        []map[string]any `json:"users"`
}

func loadJSON(path string) (Snapshot, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, err
	}
	var export jsonExport
	if err := json.Unmarshal(content, &export); err != nil {
		return Snapshot{}, fmt.Errorf("decode %s: %w", path, err)
	}
	var snap Snapshot
	for _, record := range export.Plans {
		snap.Plans = append(snap.Plans, sales.PlanFromRecord(record))
	}
	for _, record := range export.Achievements {
		snap.Achievements = append(snap.Achievements, sales.AchievedFromRecord(record))
	}
	for _, record := range export.Users {
		snap.Users = append(snap.Users, userFromRecord(record))
	}
	return snap, nil
}

// WriteWorkbook saves a snapshot as an xlsx workbook with Plan, Achieved and
// Users sheets.
func WriteWorkbook(path string, snap Snapshot) error {
	f := excelize.NewFile()
	defer f.Close()

	planHeader := []any{
		string(sales.FieldSalesmanNo), string(sales.FieldSalesmanName), string(sales.FieldDistName),
		string(sales.FieldRegion), string(sales.FieldRSM), string(sales.FieldSM),
		string(sales.FieldTeamLeader), string(sales.FieldChannel),
	}
	achHeader := []any{string(sales.FieldSalesmanNo), "Days"}
	for _, k := range sales.KPIs {
		planHeader = append(planHeader, k.PlanField())
		achHeader = append(achHeader, k.AchField())
	}

	planRows := [][]any{planHeader}
	for _, p := range snap.Plans {
		row := []any{p.SalesmanNo, p.SalesmanName, p.DistName, p.Region, p.RSM, p.SM, p.TeamLeader, p.Channel}
		for _, k := range sales.KPIs {
			row = append(row, p.Plan.Get(k))
		}
		planRows = append(planRows, row)
	}
	achRows := [][]any{achHeader}
	for _, a := range snap.Achievements {
		row := []any{a.SalesmanNo, a.Days}
		for _, k := range sales.KPIs {
			row = append(row, a.Ach.Get(k))
		}
		achRows = append(achRows, row)
	}
	userRows := [][]any{{"username", "name", "password", "jobTitle"}}
	for _, u := range snap.Users {
		userRows = append(userRows, []any{u.Username, u.Name, u.Password, u.JobTitle})
	}

	if err := f.SetSheetName("Sheet1", PlanSheet); err != nil {
		return err
	}
	for _, sheet := range []struct {
		name string
		rows [][]any
	}{
		{PlanSheet, planRows},
		{AchievedSheet, achRows},
		{UsersSheet, userRows},
	} {
		if sheet.name != PlanSheet {
			if _, err := f.NewSheet(sheet.name); err != nil {
				return fmt.Errorf("create sheet %s: %w", sheet.name, err)
			}
		}
		for i, row := range sheet.rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			if err != nil {
				return err
			}
			values := row
			if err := f.SetSheetRow(sheet.name, cell, &values); err != nil {
				return fmt.Errorf("write sheet %s: %w", sheet.name, err)
			}
		}
	}
	return f.SaveAs(path)
}
