package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/patlytics/patscope/internal/domain/geography"
	"github.com/patlytics/patscope/internal/infrastructure/monitoring/logging"
	"github.com/patlytics/patscope/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// ApplicantRepository — PATSTAT person / applicant queries
// ─────────────────────────────────────────────────────────────────────────────

// ApplicantRepository implements geography.ApplicantRepository against
// tls207 / tls206.
type ApplicantRepository struct {
	pool    *pgxpool.Pool
	timeout time.Duration
	logger  logging.Logger
}

// NewApplicantRepository constructs a ready-to-use ApplicantRepository.
func NewApplicantRepository(pool *pgxpool.Pool, timeout time.Duration, log logging.Logger) *ApplicantRepository {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &ApplicantRepository{pool: pool, timeout: timeout, logger: log.Named("repo.applicant")}
}

// The primary applicant is the lowest applicant sequence number with a
// usable country code.  applt_seq_nr = 0 marks inventor-only person links in
// PATSTAT, so those rows are excluded up front.
const primaryApplicantCountriesSQL = `
	SELECT DISTINCT ON (pa.appln_id)
	       pa.appln_id,
	       pe.person_id,
	       btrim(pe.person_ctry_code)
	FROM tls207_pers_appln pa
	JOIN tls206_person pe ON pe.person_id = pa.person_id
	WHERE pa.appln_id = ANY($1::bigint[])
	  AND pa.applt_seq_nr > 0
	  AND pe.person_ctry_code IS NOT NULL
	  AND btrim(pe.person_ctry_code) <> ''
	ORDER BY pa.appln_id, pa.applt_seq_nr, pe.person_id`

// PrimaryApplicantCountries returns the primary applicant country for each
// application that has one.
func (r *ApplicantRepository) PrimaryApplicantCountries(ctx context.Context, applnIDs []int64) ([]geography.ApplicantCountry, error) {
	if len(applnIDs) == 0 {
		return nil, nil
	}

	ctx, cancel := withQueryTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	rows, err := r.pool.Query(ctx, primaryApplicantCountriesSQL, applnIDs)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDBQueryError, "applicant country query failed")
	}
	defer rows.Close()

	var out []geography.ApplicantCountry
	for rows.Next() {
		var a geography.ApplicantCountry
		if err := rows.Scan(&a.ApplnID, &a.PersonID, &a.Country); err != nil {
			return nil, errors.Wrap(err, errors.CodeDBQueryError, "failed to scan applicant row")
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeDBQueryError, "applicant row iteration failed")
	}

	r.logger.Debug("applicant countries resolved",
		logging.Int("applications", len(applnIDs)),
		logging.Int("resolved", len(out)),
		logging.Duration("elapsed", time.Since(start)),
	)
	return out, nil
}
