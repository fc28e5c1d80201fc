package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"sales-pacing-console/internal/config"
	"sales-pacing-console/internal/dashboard"
	"sales-pacing-console/internal/logger"
	"sales-pacing-console/internal/sales"
	"sales-pacing-console/internal/session"
	"sales-pacing-console/internal/source"
)

func main() {
	configPath := flag.String("config", "", "path to config file (toml)")
	dataPath := flag.String("data", "", "workbook or JSON snapshot; overrides source.path and any database source")
	date := flag.String("date", "", "report date (YYYY-MM-DD); defaults to today or the latest day with data")
	exportPath := flag.String("export", "", "write a report and exit (use - for stdout)")
	exportFormat := flag.String("format", "", "report format: text or json")
	role := flag.String("role", "", "role for -export (RSM, SM, ASM, SALESMANNAMEA, Staff, Admin)")
	identityName := flag.String("identity", "", "identity for -export; password is read from PACING_PASSWORD")
	kpiName := flag.String("kpi", "", "KPI shown by every chart at start (GSV, ECO, PC, LPC, MVS)")
	seedPath := flag.String("seed", "", "write a sample workbook to this path and exit; logins use PACING_PASSWORD")
	flag.Parse()

	if *seedPath != "" {
		snap, err := writeSampleWorkbook(*seedPath, time.Now(), os.Getenv("PACING_PASSWORD"))
		if err != nil {
			fmt.Println("error seeding sample data:", err)
			os.Exit(1)
		}
		fmt.Printf("wrote %s: %d plans, %d achievements, %d users\n", *seedPath, len(snap.Plans), len(snap.Achievements), len(snap.Users))
		return
	}

	var kpi *sales.KPI
	if *kpiName != "" {
		parsed, err := sales.ParseKPI(*kpiName)
		if err != nil {
			fmt.Println("error parsing -kpi:", err)
			os.Exit(1)
		}
		kpi = &parsed
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Println("error loading config:", err)
		os.Exit(1)
	}
	if *dataPath != "" {
		cfg.Source.Driver = ""
		cfg.Source.Path = *dataPath
	}
	loc, err := cfg.Location()
	if err != nil {
		fmt.Println("error loading config:", err)
		os.Exit(1)
	}

	log, err := logger.New(&logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output})
	if err != nil {
		fmt.Println("error opening log:", err)
		os.Exit(1)
	}
	defer log.Sync()

	loader, closeLoader, err := openLoader(cfg.Source)
	if err != nil {
		fmt.Println("error opening data source:", err)
		os.Exit(1)
	}
	defer closeLoader()

	snap, err := loadSnapshot(context.Background(), loader, log)
	if err != nil {
		fmt.Println("error loading data:", err)
		os.Exit(1)
	}

	s := settings{
		loc:          loc,
		rankSize:     cfg.Report.TopN,
		initialDate:  strings.TrimSpace(*date),
		exportPath:   *exportPath,
		exportFormat: *exportFormat,
		kpi:          kpi,
	}

	if *exportPath != "" {
		err := runExport(snap, s, *role, *identityName, os.Getenv("PACING_PASSWORD"), time.Now())
		if err != nil {
			log.Error("export failed", zap.Error(err))
			fmt.Println("error exporting report:", err)
			os.Exit(1)
		}
		return
	}

	program := tea.NewProgram(newModel(snap, loader, log, s), tea.WithAltScreen())
	refresher, err := scheduleRefresh(cfg.Refresh.Schedule, loc, program.Send, log)
	if err != nil {
		fmt.Println("error scheduling refresh:", err)
		os.Exit(1)
	}
	if refresher != nil {
		defer refresher.Stop()
	}

	if _, err := program.Run(); err != nil {
		fmt.Println("error running program:", err)
		os.Exit(1)
	}
}

var errNoIdentity = errors.New("-role and -identity are required for -export")

// runExport signs in without the UI and writes one report.
func runExport(snap source.Snapshot, s settings, roleName, identityName, password string, now time.Time) error {
	if strings.TrimSpace(roleName) == "" || strings.TrimSpace(identityName) == "" {
		return errNoIdentity
	}
	role, ok := session.ParseRole(roleName)
	if !ok {
		return fmt.Errorf("unknown role %q", roleName)
	}
	if s.loc == nil {
		s.loc = time.Local
	}

	identity, err := session.NewAuthenticator(snap.Users, snap.Plans).Login(role, identityName, password)
	if err != nil {
		return err
	}

	d := dashboard.New(identity,
		dashboard.WithClock(func() time.Time { return now }),
		dashboard.WithLocation(s.loc),
		dashboard.WithRankSize(s.rankSize),
	)
	d.Load(snap)
	if !s.apply(d) {
		return errors.New("-date must be YYYY-MM-DD")
	}
	return writeReport(s.exportPath, s.exportFormat, d.View(), identity, d.Filters(), now.In(s.loc))
}
