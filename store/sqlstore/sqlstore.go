package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	poller "nba-game-poller"
)

// Drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const schema = `CREATE TABLE IF NOT EXISTS games (
	id TEXT NOT NULL,
	date TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT '',
	clock TEXT NOT NULL DEFAULT '',
	starttime TEXT NOT NULL DEFAULT '',
	hometeam TEXT NOT NULL DEFAULT '',
	awayteam TEXT NOT NULL DEFAULT '',
	hometeamid INTEGER NOT NULL DEFAULT 0,
	awayteamid INTEGER NOT NULL DEFAULT 0,
	homescore INTEGER NOT NULL DEFAULT 0,
	awayscore INTEGER NOT NULL DEFAULT 0,
	homerecord TEXT NOT NULL DEFAULT '',
	awayrecord TEXT NOT NULL DEFAULT '',
	play_etag TEXT NOT NULL DEFAULT '',
	box_etag TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (id, date)
)`

// Store keeps game records in a single games table keyed by (id, date).
type Store struct {
	db     *sql.DB
	driver string
}

// Open connects with the given driver and creates the games table if needed.
// For sqlite the DSN is a file path.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	var (
		db  *sql.DB
		err error
	)
	switch driver {
	case DriverSQLite:
		db, err = openSQLite(dsn, 5*time.Second)
	case DriverPostgres:
		db, err = sql.Open(DriverPostgres, dsn)
		if err == nil {
			err = db.PingContext(ctx)
		}
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
	if err != nil {
		if db != nil {
			db.Close()
		}
		return nil, err
	}

	s := &Store{db: db, driver: driver}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func openSQLite(path string, busyTimeout time.Duration) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)",
		path, busyTimeout.Milliseconds())
	db, err := sql.Open(DriverSQLite, dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open failed: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetConnMaxLifetime(time.Hour)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: ping failed: %w", err)
	}
	return db, nil
}

func (s *Store) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create games table: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// placeholder returns the n-th (1-based) bind parameter for the driver.
func (s *Store) placeholder(n int) string {
	if s.driver == DriverPostgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

const selectColumns = `id, date, status, clock, starttime, hometeam, awayteam, hometeamid, awayteamid,
	homescore, awayscore, homerecord, awayrecord, play_etag, box_etag`

func (s *Store) QueryByDate(ctx context.Context, date string) ([]poller.GameRecord, error) {
	query := "SELECT " + selectColumns + " FROM games WHERE date = " + s.placeholder(1) + " ORDER BY id"
	rows, err := s.db.QueryContext(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("query games for %s: %w", date, err)
	}
	defer rows.Close()

	var records []poller.GameRecord
	for rows.Next() {
		var r poller.GameRecord
		if err := rows.Scan(&r.ID, &r.Date, &r.Status, &r.Clock, &r.StartTime, &r.HomeTeam, &r.AwayTeam,
			&r.HomeTeamID, &r.AwayTeamID, &r.HomeScore, &r.AwayScore, &r.HomeRecord, &r.AwayRecord,
			&r.PlayETag, &r.BoxETag); err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate games: %w", err)
	}
	return records, nil
}

// UpdateFields sets only the supplied columns of an existing row.
func (s *Store) UpdateFields(ctx context.Context, gameID, date string, update poller.GameUpdate) error {
	fields := update.Fields()
	if len(fields) == 0 {
		return nil
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	sets := make([]string, len(names))
	args := make([]any, 0, len(names)+2)
	for i, name := range names {
		sets[i] = name + " = " + s.placeholder(i+1)
		args = append(args, fields[name])
	}
	n := len(names)
	query := fmt.Sprintf("UPDATE games SET %s WHERE id = %s AND date = %s",
		strings.Join(sets, ", "), s.placeholder(n+1), s.placeholder(n+2))
	args = append(args, gameID, date)

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update game %s: %w", gameID, err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("update game %s: no record for %s", gameID, date)
	}
	return nil
}

// Upsert inserts rec or refreshes its scheduling columns. Validator tokens of
// an existing row are kept.
func (s *Store) Upsert(ctx context.Context, rec poller.GameRecord) error {
	ph := make([]string, 13)
	for i := range ph {
		ph[i] = s.placeholder(i + 1)
	}
	query := `INSERT INTO games (id, date, status, clock, starttime, hometeam, awayteam, hometeamid, awayteamid,
	homescore, awayscore, homerecord, awayrecord)
VALUES (` + strings.Join(ph, ", ") + `)
ON CONFLICT (id, date) DO UPDATE SET
	status = excluded.status,
	clock = excluded.clock,
	starttime = excluded.starttime,
	hometeam = excluded.hometeam,
	awayteam = excluded.awayteam,
	hometeamid = excluded.hometeamid,
	awayteamid = excluded.awayteamid,
	homescore = excluded.homescore,
	awayscore = excluded.awayscore,
	homerecord = excluded.homerecord,
	awayrecord = excluded.awayrecord`

	_, err := s.db.ExecContext(ctx, query, rec.ID, rec.Date, rec.Status, rec.Clock, rec.StartTime,
		rec.HomeTeam, rec.AwayTeam, rec.HomeTeamID, rec.AwayTeamID, rec.HomeScore, rec.AwayScore,
		rec.HomeRecord, rec.AwayRecord)
	if err != nil {
		return fmt.Errorf("upsert game %s: %w", rec.ID, err)
	}
	return nil
}
