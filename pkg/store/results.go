package store

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/akashuv-21/parase/internal/types"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

type StoreConfig struct {
	ConnString string
	// TableName prefixes the runs and documents tables.
	TableName string
	BatchSize int
}

// ResultStore persists evaluation reports in PostgreSQL.
type ResultStore struct {
	config StoreConfig
	pool   *pgxpool.Pool
}

var _ types.ResultStore = (*ResultStore)(nil)

var documentColumns = []string{"run_id", "document_id", "teds", "teds_s", "nid", "error"}

func NewWithConfig(ctx context.Context, config StoreConfig) (*ResultStore, error) {
	if config.TableName == "" {
		config.TableName = "evaluations"
	}
	if config.BatchSize == 0 {
		config.BatchSize = 100
	}

	pool, err := pgxpool.New(ctx, config.ConnString)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}

	rs := &ResultStore{
		config: config,
		pool:   pool,
	}

	if err := rs.initialize(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return rs, nil
}

func (rs *ResultStore) runsTable() string {
	return rs.config.TableName + "_runs"
}

func (rs *ResultStore) documentsTable() string {
	return rs.config.TableName + "_documents"
}

func (rs *ResultStore) initialize(ctx context.Context) error {
	createRuns := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id BIGSERIAL PRIMARY KEY,
			mode TEXT NOT NULL,
			label_path TEXT,
			pred_path TEXT,
			ignore_classes TEXT[],
			teds DOUBLE PRECISION,
			teds_s DOUBLE PRECISION,
			nid DOUBLE PRECISION,
			warning TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, pgx.Identifier{rs.runsTable()}.Sanitize())

	if _, err := rs.pool.Exec(ctx, createRuns); err != nil {
		return errors.Wrap(err, "failed to create runs table")
	}

	createDocuments := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			run_id BIGINT NOT NULL REFERENCES %s (id) ON DELETE CASCADE,
			document_id TEXT NOT NULL,
			teds DOUBLE PRECISION,
			teds_s DOUBLE PRECISION,
			nid DOUBLE PRECISION,
			error TEXT,
			PRIMARY KEY (run_id, document_id)
		)`,
		pgx.Identifier{rs.documentsTable()}.Sanitize(),
		pgx.Identifier{rs.runsTable()}.Sanitize())

	if _, err := rs.pool.Exec(ctx, createDocuments); err != nil {
		return errors.Wrap(err, "failed to create documents table")
	}

	return nil
}

// Save writes the run and its per-document scores in one transaction and
// returns the new run id.
func (rs *ResultStore) Save(ctx context.Context, run types.Run, report *types.Report) (int64, error) {
	tx, err := rs.pool.Begin(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback(ctx)

	insertRun := fmt.Sprintf(`
		INSERT INTO %s (mode, label_path, pred_path, ignore_classes, teds, teds_s, nid, warning)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		pgx.Identifier{rs.runsTable()}.Sanitize())

	var runID int64
	err = tx.QueryRow(ctx, insertRun,
		string(report.Mode),
		sanitizeUTF8(run.LabelPath),
		sanitizeUTF8(run.PredPath),
		run.IgnoreClasses,
		report.TEDS,
		report.TEDSS,
		report.NID,
		report.Warning,
	).Scan(&runID)
	if err != nil {
		return 0, errors.Wrap(err, "failed to insert run")
	}

	// Copy document rows in batches
	for start := 0; start < len(report.Documents); start += rs.config.BatchSize {
		end := start + rs.config.BatchSize
		if end > len(report.Documents) {
			end = len(report.Documents)
		}

		rows := make([][]any, 0, end-start)
		for _, d := range report.Documents[start:end] {
			rows = append(rows, []any{
				runID,
				sanitizeUTF8(d.DocumentID),
				d.TEDS,
				d.TEDSS,
				d.NID,
				sanitizeUTF8(d.Error),
			})
		}

		_, err := tx.CopyFrom(ctx, pgx.Identifier{rs.documentsTable()}, documentColumns, pgx.CopyFromRows(rows))
		if err != nil {
			return 0, errors.Wrapf(err, "failed to copy documents %d-%d", start, end)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, errors.Wrap(err, "failed to commit transaction")
	}

	return runID, nil
}

// Recent lists the latest runs, newest first.
func (rs *ResultStore) Recent(ctx context.Context, limit int) ([]types.Run, error) {
	if limit <= 0 {
		limit = 10
	}

	query := fmt.Sprintf(`
		SELECT id, mode, COALESCE(label_path, ''), COALESCE(pred_path, ''), ignore_classes, created_at
		FROM %s
		ORDER BY id DESC
		LIMIT $1`,
		pgx.Identifier{rs.runsTable()}.Sanitize())

	rows, err := rs.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query runs")
	}
	defer rows.Close()

	var runs []types.Run
	for rows.Next() {
		var run types.Run
		var mode string
		err := rows.Scan(
			&run.ID,
			&mode,
			&run.LabelPath,
			&run.PredPath,
			&run.IgnoreClasses,
			&run.CreatedAt,
		)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan row")
		}
		run.Mode = types.Mode(mode)
		runs = append(runs, run)
	}

	return runs, errors.Wrap(rows.Err(), "failed to read runs")
}

func (rs *ResultStore) Close() {
	if rs.pool != nil {
		rs.pool.Close()
	}
}

// sanitizeUTF8 drops invalid bytes, which PostgreSQL text columns reject.
func sanitizeUTF8(s string) string {
	if !utf8.ValidString(s) {
		v := make([]rune, 0, len(s))
		for i, r := range s {
			if r == utf8.RuneError {
				_, size := utf8.DecodeRuneInString(s[i:])
				if size == 1 {
					continue
				}
			}
			v = append(v, r)
		}
		return string(v)
	}
	return s
}
