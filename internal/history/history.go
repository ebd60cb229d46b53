// Package history keeps an optional local log of assessment results.
// Only the result tuple is stored; answers and names never are.
package history

import (
	"context"
	"database/sql"
	"embed"
	"os"
	"path/filepath"
	"time"

	"github.com/dshills/wellcheck/internal/scoring"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

const (
	DefaultLimit = 20

	// Fixed width so created_at sorts lexically.
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

var (
	//go:embed sql/*
	f embed.FS

	// openDB is a package-level var to allow test injection.
	openDB = sql.Open

	errNotOpen = errors.New("history store not open")
)

// Entry is one recorded assessment.
type Entry struct {
	ID            string           `json:"id"`
	Profile       string           `json:"profile"`
	SeverityIndex int              `json:"severity_index"`
	RiskBand      scoring.RiskBand `json:"risk_band"`
	ClusterID     int              `json:"cluster_id"`
	CreatedAt     time.Time        `json:"created_at"`
}

// Summary counts recorded assessments per band.
type Summary struct {
	Total int64                      `json:"total"`
	Bands map[scoring.RiskBand]int64 `json:"bands"`
}

// Store is a SQLite-backed history log. It is safe for concurrent use.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the history database at path.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("history path not specified")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, errors.Wrapf(err, "failed to create history dir: %s", dir)
		}
	}

	db, err := openDB("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database: %s", path)
	}
	// Pragmas below are per connection.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, errors.Wrapf(err, "pragma %q", p)
		}
	}

	b, err := f.ReadFile("sql/ddl.sql")
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to read the schema creation file")
	}
	if _, err := db.Exec(string(b)); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "failed to create database schema in: %s", path)
	}

	return &Store{db: db, path: path}, nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record stores the result tuple. ID and CreatedAt are filled when empty.
func (s *Store) Record(ctx context.Context, e Entry) (Entry, error) {
	if s == nil || s.db == nil {
		return e, errNotOpen
	}
	if !e.RiskBand.Valid() {
		return e, errors.Errorf("invalid risk band: %q", e.RiskBand)
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	e.CreatedAt = e.CreatedAt.UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO assessments (id, profile, severity_index, risk_band, cluster_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.Profile, e.SeverityIndex, string(e.RiskBand), e.ClusterID, e.CreatedAt.Format(timeLayout))
	if err != nil {
		return e, errors.Wrap(err, "failed to insert assessment")
	}
	return e, nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if s == nil || s.db == nil {
		return nil, errNotOpen
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, profile, severity_index, risk_band, cluster_id, created_at
		 FROM assessments ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query assessments")
	}
	defer rows.Close()

	var list []Entry
	for rows.Next() {
		var (
			e       Entry
			band    string
			created string
		)
		if err := rows.Scan(&e.ID, &e.Profile, &e.SeverityIndex, &band, &e.ClusterID, &created); err != nil {
			return nil, errors.Wrap(err, "failed to scan assessment row")
		}
		e.RiskBand = scoring.RiskBand(band)
		if e.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
			return nil, errors.Wrapf(err, "bad created_at for %s", e.ID)
		}
		list = append(list, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate assessments")
	}
	return list, nil
}

// Summarize counts entries per band. Every band is present in the result.
func (s *Store) Summarize(ctx context.Context) (*Summary, error) {
	if s == nil || s.db == nil {
		return nil, errNotOpen
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT risk_band, COUNT(*) FROM assessments GROUP BY risk_band`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to count assessments")
	}
	defer rows.Close()

	sum := &Summary{Bands: make(map[scoring.RiskBand]int64)}
	for _, b := range scoring.Bands() {
		sum.Bands[b] = 0
	}
	for rows.Next() {
		var (
			band string
			n    int64
		)
		if err := rows.Scan(&band, &n); err != nil {
			return nil, errors.Wrap(err, "failed to scan band count")
		}
		sum.Bands[scoring.RiskBand(band)] = n
		sum.Total += n
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate band counts")
	}
	return sum, nil
}
