package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/patlytics/patscope/internal/domain/run"
	"github.com/patlytics/patscope/internal/infrastructure/monitoring/logging"
	"github.com/patlytics/patscope/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// RunRepository — tool-owned run store
// ─────────────────────────────────────────────────────────────────────────────

const defaultListLimit = 20

// RunRepository implements run.Repository against the patscope.runs table.
// This is the only table the tool writes to.
type RunRepository struct {
	pool    *pgxpool.Pool
	timeout time.Duration
	logger  logging.Logger
}

// NewRunRepository constructs a ready-to-use RunRepository.
func NewRunRepository(pool *pgxpool.Pool, timeout time.Duration, log logging.Logger) *RunRepository {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &RunRepository{pool: pool, timeout: timeout, logger: log.Named("repo.run")}
}

const runColumns = `
	id, status, started_at, finished_at,
	keywords, class_prefixes, combine_mode, year_from, year_to,
	applications, citations, countries, families, score,
	error_message`

// Create inserts the record in its initial state.
func (r *RunRepository) Create(ctx context.Context, rec *run.Record) error {
	ctx, cancel := withQueryTimeout(ctx, r.timeout)
	defer cancel()

	_, err := r.pool.Exec(ctx, `
		INSERT INTO patscope.runs (`+runColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`,
		rec.ID, rec.Status, rec.StartedAt, rec.FinishedAt,
		rec.Keywords, rec.ClassPrefixes, rec.Combine, rec.YearFrom, rec.YearTo,
		rec.Counts.Applications, rec.Counts.Citations, rec.Counts.Countries, rec.Counts.Families, rec.Score,
		rec.Error,
	)
	if err != nil {
		return errors.Wrap(err, errors.CodeDBQueryError, "failed to insert run record")
	}

	r.logger.Debug("run record created", logging.String("run_id", rec.ID.String()))
	return nil
}

// Finish updates the record's terminal state.
func (r *RunRepository) Finish(ctx context.Context, rec *run.Record) error {
	ctx, cancel := withQueryTimeout(ctx, r.timeout)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `
		UPDATE patscope.runs
		SET status = $2, finished_at = $3,
		    applications = $4, citations = $5, countries = $6, families = $7,
		    score = $8, error_message = $9
		WHERE id = $1`,
		rec.ID, rec.Status, rec.FinishedAt,
		rec.Counts.Applications, rec.Counts.Citations, rec.Counts.Countries, rec.Counts.Families,
		rec.Score, rec.Error,
	)
	if err != nil {
		return errors.Wrap(err, errors.CodeDBQueryError, "failed to update run record")
	}
	if tag.RowsAffected() == 0 {
		return errors.New(errors.CodeRunNotFound, "run "+rec.ID.String()+" not found")
	}
	return nil
}

// Get loads one run by id.
func (r *RunRepository) Get(ctx context.Context, id uuid.UUID) (*run.Record, error) {
	ctx, cancel := withQueryTimeout(ctx, r.timeout)
	defer cancel()

	rec, err := scanRun(r.pool.QueryRow(ctx, `
		SELECT `+runColumns+`
		FROM patscope.runs WHERE id = $1`, id))
	if err != nil {
		if errors.IsCode(err, errors.CodeRunNotFound) {
			return nil, errors.New(errors.CodeRunNotFound, "run "+id.String()+" not found")
		}
		return nil, err
	}
	return rec, nil
}

// List returns the most recent runs, newest first.
func (r *RunRepository) List(ctx context.Context, limit int) ([]*run.Record, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	ctx, cancel := withQueryTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, `
		SELECT `+runColumns+`
		FROM patscope.runs
		ORDER BY started_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDBQueryError, "failed to list run records")
	}
	defer rows.Close()

	var out []*run.Record
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeDBQueryError, "run row iteration failed")
	}
	return out, nil
}

func scanRun(row pgx.Row) (*run.Record, error) {
	rec := &run.Record{}
	err := row.Scan(
		&rec.ID, &rec.Status, &rec.StartedAt, &rec.FinishedAt,
		&rec.Keywords, &rec.ClassPrefixes, &rec.Combine, &rec.YearFrom, &rec.YearTo,
		&rec.Counts.Applications, &rec.Counts.Citations, &rec.Counts.Countries, &rec.Counts.Families, &rec.Score,
		&rec.Error,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, errors.New(errors.CodeRunNotFound, "run not found")
		}
		return nil, errors.Wrap(err, errors.CodeDBQueryError, "failed to scan run record")
	}
	return rec, nil
}
