package source

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"

	"sales-pacing-console/internal/sales"
	"sales-pacing-console/internal/session"
)

// Supported database/sql driver names.
const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite3"
)

var schemaName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLLoader reads the plans, achievements and users tables. It only reads;
// the tables are owned by whatever syncs the source data.
type SQLLoader struct {
	db      *sql.DB
	schema  string
	timeout time.Duration
	now     func() time.Time
	origin  string
}

// OpenSQL opens a loader over driver and dsn.
func OpenSQL(driver, dsn, schema string, timeout time.Duration) (*SQLLoader, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, errors.New("source.dsn is required for database sources")
	}
	switch driver {
	case DriverPostgres, DriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	loader, err := NewSQLLoader(db, schema, timeout)
	if err != nil {
		db.Close()
		return nil, err
	}
	loader.origin = driver
	return loader, nil
}

// NewSQLLoader wraps an open handle. An empty schema uses unqualified table
// names.
func NewSQLLoader(db *sql.DB, schema string, timeout time.Duration) (*SQLLoader, error) {
	schema = strings.TrimSpace(schema)
	if schema != "" && !schemaName.MatchString(schema) {
		return nil, fmt.Errorf("invalid schema name %q", schema)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &SQLLoader{db: db, schema: schema, timeout: timeout, now: time.Now, origin: "sql"}, nil
}

func (l *SQLLoader) Close() error {
	return l.db.Close()
}

func (l *SQLLoader) table(name string) string {
	if l.schema == "" {
		return name
	}
	return l.schema + "." + name
}

func (l *SQLLoader) Load(ctx context.Context) (Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	plans, err := l.loadPlans(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load plans: %w", err)
	}
	achievements, err := l.loadAchievements(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load achievements: %w", err)
	}
	users, err := l.loadUsers(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load users: %w", err)
	}
	return Snapshot{
		Plans:        plans,
		Achievements: achievements,
		Users:        users,
		LoadedAt:     l.now(),
		Origin:       l.origin,
	}, nil
}

func (l *SQLLoader) loadPlans(ctx context.Context) ([]sales.PlanRow, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT salesman_no, salesman_name, dist_name, region, rsm, sm, tl_name, channel,
			plan_gsv, plan_eco, plan_pc, plan_lpc, plan_mvs
		FROM `+l.table("plans")+`
		ORDER BY salesman_no ASC;
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	plans := make([]sales.PlanRow, 0)
	for rows.Next() {
		var (
			no, name, dist, region, rsm, sm, tl, channel sql.NullString
			gsv, eco, pc, lpc, mvs                      sql.NullFloat64
		)
		if err := rows.Scan(&no, &name, &dist, &region, &rsm, &sm, &tl, &channel, &gsv, &eco, &pc, &lpc, &mvs); err != nil {
			return nil, err
		}
		p := sales.PlanRow{
			SalesmanNo:   no.String,
			SalesmanName: name.String,
			DistName:     dist.String,
			Region:       region.String,
			RSM:          rsm.String,
			SM:           sm.String,
			TeamLeader:   tl.String,
			Channel:      channel.String,
		}
		setMetrics(&p.Plan, gsv, eco, pc, lpc, mvs)
		plans = append(plans, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return plans, nil
}

func (l *SQLLoader) loadAchievements(ctx context.Context) ([]sales.AchievedRow, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT salesman_no, days, ach_gsv, ach_eco, ach_pc, ach_lpc, ach_mvs
		FROM `+l.table("achievements")+`
		ORDER BY days ASC, salesman_no ASC;
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	achievements := make([]sales.AchievedRow, 0)
	for rows.Next() {
		var (
			no, days               sql.NullString
			gsv, eco, pc, lpc, mvs sql.NullFloat64
		)
		if err := rows.Scan(&no, &days, &gsv, &eco, &pc, &lpc, &mvs); err != nil {
			return nil, err
		}
		a := sales.AchievedRow{SalesmanNo: no.String, Days: days.String}
		setMetrics(&a.Ach, gsv, eco, pc, lpc, mvs)
		achievements = append(achievements, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return achievements, nil
}

func (l *SQLLoader) loadUsers(ctx context.Context) ([]session.User, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT username, name, password, job_title
		FROM `+l.table("users")+`
		ORDER BY username ASC;
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]session.User, 0)
	for rows.Next() {
		var username, name, password, jobTitle sql.NullString
		if err := rows.Scan(&username, &name, &password, &jobTitle); err != nil {
			return nil, err
		}
		users = append(users, session.User{
			Username: username.String,
			Name:     name.String,
			Password: password.String,
			JobTitle: jobTitle.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func setMetrics(m *sales.Metrics, values ...sql.NullFloat64) {
	for i, k := range sales.KPIs {
		if i >= len(values) || !values[i].Valid {
			continue
		}
		m.Set(k, sales.Number(values[i].Float64))
	}
}
