package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"sales-pacing-console/internal/period"
	"sales-pacing-console/internal/sales"
	"sales-pacing-console/internal/session"
	"sales-pacing-console/internal/source"
)

var errSeedPassword = errors.New("PACING_PASSWORD is required to seed sample credentials")

type seedRegion struct {
	name  string
	rsm   string
	sm    string
	dists []string
}

var seedRegions = []seedRegion{
	{name: "North", rsm: "Omar Said", sm: "Sami Haddad", dists: []string{"Atlas Trading", "Cedar Supply"}},
	{name: "South", rsm: "Hana Aziz", sm: "Karim Nassar", dists: []string{"Delta Foods", "Oasis Distribution"}},
	{name: "Central", rsm: "Laila Mansour", sm: "Youssef Amin", dists: []string{"Crown Wholesale", "Nile Partners"}},
}

var seedChannels = []string{"Retail", "Wholesale", "Modern Trade"}

// buildSampleSnapshot generates a month of plans and daily achievements up
// to now. Every login in the users sheet shares password, stored as a bcrypt hash.
func buildSampleSnapshot(now time.Time, password string) (source.Snapshot, error) {
	if strings.TrimSpace(password) == "" {
		return source.Snapshot{}, errSeedPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return source.Snapshot{}, err
	}
	secret := string(hash)

	snap := source.Snapshot{LoadedAt: now, Origin: "sample"}
	snap.Users = append(snap.Users,
		session.User{Username: "staff", Name: "Sales Ops", Password: secret, JobTitle: "Staff"},
		session.User{Username: "admin", Name: "Administrator", Password: secret, JobTitle: "Admin"},
	)

	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	seq := 0
	for r, region := range seedRegions {
		snap.Users = append(snap.Users,
			session.User{Username: slug(region.rsm), Name: region.rsm, Password: secret, JobTitle: "RSM"},
			session.User{Username: slug(region.sm), Name: region.sm, Password: secret, JobTitle: "SM"},
		)
		for d, dist := range region.dists {
			snap.Users = append(snap.Users, session.User{Username: slug(dist), Name: dist, Password: secret, JobTitle: "ASM"})
			for s := 0; s < 3; s++ {
				seq++
				plan := sales.PlanRow{
					SalesmanNo:   fmt.Sprintf("%d", 1000+seq),
					SalesmanName: fmt.Sprintf("Salesman %02d", seq),
					DistName:     dist,
					Region:       region.name,
					RSM:          region.rsm,
					SM:           region.sm,
					TeamLeader:   fmt.Sprintf("TL %s %d", region.name, d+1),
					Channel:      seedChannels[(r+d+s)%len(seedChannels)],
				}
				plan.Plan.Set(sales.GSV, float64(60000+seq*2500))
				plan.Plan.Set(sales.ECO, float64(120+seq*4))
				plan.Plan.Set(sales.PC, float64(300+seq*10))
				plan.Plan.Set(sales.LPC, 3)
				plan.Plan.Set(sales.MVS, float64(8+seq%5))
				snap.Plans = append(snap.Plans, plan)

				for day := first; !day.After(now); day = day.AddDate(0, 0, 1) {
					// Uneven daily pacing so rankings and the target line diverge.
					pace := 0.7 + float64((seq*7+day.Day()*3)%9)/10
					ach := sales.AchievedRow{SalesmanNo: plan.SalesmanNo, Days: day.Format(period.DateLayout)}
					ach.Ach.Set(sales.GSV, plan.Plan.Get(sales.GSV)/30*pace)
					ach.Ach.Set(sales.ECO, float64(4+(seq+day.Day())%4))
					ach.Ach.Set(sales.PC, float64(9+(seq*day.Day())%5))
					ach.Ach.Set(sales.LPC, 2+float64((seq+day.Day())%3)/2)
					ach.Ach.Set(sales.MVS, float64((seq+day.Day())%2))
					snap.Achievements = append(snap.Achievements, ach)
				}
			}
		}
	}
	return snap, nil
}

// writeSampleWorkbook seeds path with a sample month for trying the console.
func writeSampleWorkbook(path string, now time.Time, password string) (source.Snapshot, error) {
	snap, err := buildSampleSnapshot(now, password)
	if err != nil {
		return source.Snapshot{}, err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return source.Snapshot{}, err
		}
	}
	if err := source.WriteWorkbook(path, snap); err != nil {
		return source.Snapshot{}, err
	}
	return snap, nil
}

func slug(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", ".")
}
