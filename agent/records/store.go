package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/Chative-Banking-Dialogue/agent/contract"
	statex "github.com/tanpawarit/Chative-Banking-Dialogue/agent/state"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	_ "modernc.org/sqlite"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Driver string `split_words:"true" default:"sqlite"`
	DSN    string `envconfig:"DSN" split_words:"true" default:"file:banco.db?_pragma=busy_timeout(5000)"`
	Seed   bool   `split_words:"true" default:"true"`
}

var (
	_ contractx.CustomerStore  = (*Store)(nil)
	_ contractx.ScoreBandStore = (*Store)(nil)
	_ contractx.RequestLog     = (*Store)(nil)
)

// Store keeps customers, score bands and the increase-request log in SQL.
type Store struct {
	db *bun.DB
}

func Open(ctx context.Context, cfg Config) (*Store, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, fmt.Errorf("%w: database dsn is required", contractx.ErrValidation)
	}

	var db *bun.DB
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case DriverPostgres:
		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
		db = bun.NewDB(sqldb, pgdialect.New())
	case DriverSQLite, "":
		sqldb, err := sql.Open("sqlite", dsn)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		// One connection serializes writers and keeps :memory: databases alive.
		sqldb.SetMaxOpenConns(1)
		db = bun.NewDB(sqldb, sqlitedialect.New())
	default:
		return nil, fmt.Errorf("%w: unsupported database driver %q", contractx.ErrValidation, cfg.Driver)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{db: db}, nil
}

func NewStore(db *bun.DB) *Store {
	return &Store{db: db}
}

func (s *Store) DB() *bun.DB {
	return s.db
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate creates every table the store uses.
func (s *Store) Migrate(ctx context.Context) error {
	models := []any{
		(*CustomerRow)(nil),
		(*ScoreBandRow)(nil),
		(*IncreaseRequestRow)(nil),
	}
	for _, model := range models {
		if _, err := s.db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create table for %T: %w", model, err)
		}
	}
	return nil
}

func (s *Store) FindByIDAndBirthDate(ctx context.Context, nationalID, birthDate string) (*statex.Customer, error) {
	var row CustomerRow
	err := s.db.NewSelect().
		Model(&row).
		Where("national_id = ?", nationalID).
		Where("birth_date = ?", birthDate).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, contractx.ErrNotFound
		}
		return nil, fmt.Errorf("find customer: %w", err)
	}
	return row.toCustomer(), nil
}

func (s *Store) UpdateLimit(ctx context.Context, nationalID string, limit float64) error {
	res, err := s.db.NewUpdate().
		Model((*CustomerRow)(nil)).
		Set("credit_limit = ?", limit).
		Where("national_id = ?", nationalID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update credit limit: %w", err)
	}
	return requireAffected(res, nationalID)
}

func (s *Store) UpdateScore(ctx context.Context, nationalID string, score int) error {
	res, err := s.db.NewUpdate().
		Model((*CustomerRow)(nil)).
		Set("score = ?", score).
		Where("national_id = ?", nationalID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update score: %w", err)
	}
	return requireAffected(res, nationalID)
}

func (s *Store) AllBands(ctx context.Context) ([]contractx.ScoreBand, error) {
	var rows []ScoreBandRow
	if err := s.db.NewSelect().
		Model(&rows).
		Order("position ASC", "id ASC").
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("list score bands: %w", err)
	}

	bands := make([]contractx.ScoreBand, 0, len(rows))
	for _, r := range rows {
		bands = append(bands, contractx.ScoreBand{
			Min:      r.ScoreMin,
			Max:      r.ScoreMax,
			MaxLimit: r.MaxLimit,
		})
	}
	return bands, nil
}

// Append writes one increase request, creating the log table on first use.
func (s *Store) Append(ctx context.Context, req contractx.IncreaseRequest) error {
	if _, err := s.db.NewCreateTable().Model((*IncreaseRequestRow)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("ensure request log table: %w", err)
	}
	if _, err := s.db.NewInsert().Model(newIncreaseRequestRow(req)).Exec(ctx); err != nil {
		return fmt.Errorf("append increase request: %w", err)
	}
	return nil
}

// Requests lists the log for one customer, oldest first.
func (s *Store) Requests(ctx context.Context, nationalID string) ([]contractx.IncreaseRequest, error) {
	var rows []IncreaseRequestRow
	if err := s.db.NewSelect().
		Model(&rows).
		Where("national_id = ?", nationalID).
		Order("id ASC").
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("list increase requests: %w", err)
	}

	out := make([]contractx.IncreaseRequest, 0, len(rows))
	for _, r := range rows {
		out = append(out, contractx.IncreaseRequest{
			NationalID:     r.NationalID,
			RequestedAt:    r.RequestedAt,
			CurrentLimit:   r.CurrentLimit,
			RequestedLimit: r.RequestedLimit,
			Status:         contractx.RequestStatus(r.Status),
		})
	}
	return out, nil
}

func requireAffected(res sql.Result, nationalID string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: customer %s", contractx.ErrNotFound, nationalID)
	}
	return nil
}
