// Package source loads plan, achievement and credential snapshots from
// workbooks, JSON exports or SQL tables.
package source

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"sales-pacing-console/internal/sales"
	"sales-pacing-console/internal/session"
)

// Sheet and table names shared by every source.
const (
	PlanSheet     = "Plan"
	AchievedSheet = "Achieved"
	UsersSheet    = "Users"
)

var ErrUnsupportedFormat = errors.New("unsupported data format")

// Snapshot is an immutable copy of the source tables.
type Snapshot struct {
	Plans        []sales.PlanRow
	Achievements []sales.AchievedRow
	Users        []session.User
	LoadedAt     time.Time
	Origin       string
}

// Loader produces a fresh snapshot on every call.
type Loader interface {
	Load(ctx context.Context) (Snapshot, error)
}

// FileLoader reads a workbook (.xlsx, .xls) or a JSON export.
type FileLoader struct {
	Path string
	Now  func() time.Time
}

func NewFileLoader(path string) *FileLoader {
	return &FileLoader{Path: path, Now: time.Now}
}

func (l *FileLoader) Load(ctx context.Context) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	var (
		snap Snapshot
		err  error
	)
	switch strings.ToLower(filepath.Ext(l.Path)) {
	case ".xlsx", ".xlsm":
		snap, err = loadXLSX(l.Path)
	case ".xls":
		snap, err = loadXLS(l.Path)
	case ".json":
		snap, err = loadJSON(l.Path)
	default:
		return Snapshot{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, l.Path)
	}
	if err != nil {
		return Snapshot{}, err
	}
	snap.Origin = l.Path
	snap.LoadedAt = l.now()
	return snap, nil
}

func (l *FileLoader) now() time.Time {
	if l.Now == nil {
		return time.Now()
	}
	return l.Now()
}

// fromTables converts header keyed sheets into a snapshot. The first row of
// each table is its header; blank rows are skipped.
func fromTables(tables map[string][][]string, dayCell func(string) string) Snapshot {
	var snap Snapshot
	for _, record := range records(tables[PlanSheet]) {
		snap.Plans = append(snap.Plans, sales.PlanFromRecord(record))
	}
	for _, record := range records(tables[AchievedSheet]) {
		if dayCell != nil {
			if days, ok := record["Days"].(string); ok {
				record["Days"] = dayCell(days)
			}
		}
		snap.Achievements = append(snap.Achievements, sales.AchievedFromRecord(record))
	}
	for _, record := range records(tables[UsersSheet]) {
		snap.Users = append(snap.Users, userFromRecord(record))
	}
	return snap
}

func records(rows [][]string) []map[string]any {
	if len(rows) < 2 {
		return nil
	}
	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
	}
	out := make([]map[string]any, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if blank(row) {
			continue
		}
		record := make(map[string]any, len(header))
		for i, key := range header {
			if key == "" || i >= len(row) {
				continue
			}
			record[key] = row[i]
		}
		out = append(out, record)
	}
	return out
}

func blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func userFromRecord(record map[string]any) session.User {
	return session.User{
		Username: sales.Text(record["username"]),
		Name:     sales.Text(record["name"]),
		Password: sales.Text(record["password"]),
		JobTitle: sales.Text(record["jobTitle"]),
	}
}

// sheetKey maps a workbook sheet name onto one of the known tables.
func sheetKey(name string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "plan", "plans":
		return PlanSheet, true
	case "achieved", "achievement", "achievements":
		return AchievedSheet, true
	case "users", "user":
		return UsersSheet, true
	default:
		return "", false
	}
}
