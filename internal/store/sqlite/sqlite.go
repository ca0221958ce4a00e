package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"autotrade/internal/model"
	"autotrade/internal/store"
)

type Store struct {
	db *sql.DB
}

func New(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite: path is required")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) ReplaceUnified(ctx context.Context, run store.RunSummary, records []model.UnifiedRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM unified_records`); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO unified_records (
			reporter, partner_iso3, partner_name, year, flow, category,
			value, currency, gdp_usd, mfn_tariff_rate
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := range records {
		record := records[i]
		_, err = stmt.ExecContext(
			ctx,
			record.Reporter,
			record.PartnerISO3,
			record.PartnerName,
			record.Year,
			string(record.Flow),
			record.Category,
			toNullFloat64(record.Value),
			record.Currency,
			toNullFloat64(record.GDPUSD),
			toNullFloat64(record.MFNTariffRate),
		)
		if err != nil {
			return err
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO pipeline_runs (
			run_id, started_at, finished_at,
			trade_records, econ_records, unified_records, unmatched_primary
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		run.RunID,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.FinishedAt.UTC().Format(time.RFC3339Nano),
		run.TradeRecords,
		run.EconRecords,
		run.UnifiedRecords,
		run.UnmatchedPrimary,
	)
	if err != nil {
		return err
	}

	err = tx.Commit()
	return err
}

func (s *Store) ListUnified(ctx context.Context) ([]model.UnifiedRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT reporter, partner_iso3, partner_name, year, flow, category,
			value, currency, gdp_usd, mfn_tariff_rate
		FROM unified_records
		ORDER BY partner_iso3, year, flow, category
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]model.UnifiedRecord, 0)
	for rows.Next() {
		var (
			record model.UnifiedRecord
			flow   string
			value  sql.NullFloat64
			gdp    sql.NullFloat64
			tariff sql.NullFloat64
		)
		err := rows.Scan(
			&record.Reporter,
			&record.PartnerISO3,
			&record.PartnerName,
			&record.Year,
			&flow,
			&record.Category,
			&value,
			&record.Currency,
			&gdp,
			&tariff,
		)
		if err != nil {
			return nil, err
		}
		record.Flow = model.Flow(flow)
		record.Value = fromNullFloat64(value)
		record.GDPUSD = fromNullFloat64(gdp)
		record.MFNTariffRate = fromNullFloat64(tariff)
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Store) LastRun(ctx context.Context) (store.RunSummary, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT run_id, started_at, finished_at,
			trade_records, econ_records, unified_records, unmatched_primary
		FROM pipeline_runs
		ORDER BY finished_at DESC
		LIMIT 1
	`)

	var (
		run        store.RunSummary
		startedAt  string
		finishedAt string
	)
	err := row.Scan(
		&run.RunID,
		&startedAt,
		&finishedAt,
		&run.TradeRecords,
		&run.EconRecords,
		&run.UnifiedRecords,
		&run.UnmatchedPrimary,
	)
	if err == sql.ErrNoRows {
		return store.RunSummary{}, false, nil
	}
	if err != nil {
		return store.RunSummary{}, false, err
	}
	if run.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
		return store.RunSummary{}, false, fmt.Errorf("sqlite: parse started_at: %w", err)
	}
	if run.FinishedAt, err = time.Parse(time.RFC3339Nano, finishedAt); err != nil {
		return store.RunSummary{}, false, fmt.Errorf("sqlite: parse finished_at: %w", err)
	}
	return run, true, nil
}

func (s *Store) migrate() error {
	statements := []string{
		`PRAGMA foreign_keys = ON;`,
		`CREATE TABLE IF NOT EXISTS unified_records (
			reporter TEXT NOT NULL,
			partner_iso3 TEXT NOT NULL,
			partner_name TEXT NOT NULL,
			year INTEGER NOT NULL,
			flow TEXT NOT NULL,
			category TEXT NOT NULL,
			value REAL,
			currency TEXT NOT NULL,
			gdp_usd REAL,
			mfn_tariff_rate REAL,
			PRIMARY KEY (partner_iso3, year, flow, category)
		);`,
		`CREATE TABLE IF NOT EXISTS pipeline_runs (
			run_id TEXT NOT NULL PRIMARY KEY,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL,
			trade_records INTEGER NOT NULL,
			econ_records INTEGER NOT NULL,
			unified_records INTEGER NOT NULL,
			unmatched_primary INTEGER NOT NULL
		);`,
	}

	for _, statement := range statements {
		if _, err := s.db.Exec(statement); err != nil {
			return err
		}
	}

	return nil
}

func toNullFloat64(value model.NullFloat) sql.NullFloat64 {
	return sql.NullFloat64{Float64: value.Float64, Valid: value.Valid}
}

func fromNullFloat64(value sql.NullFloat64) model.NullFloat {
	if !value.Valid {
		return model.Null()
	}
	return model.Float(value.Float64)
}
