package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/patlytics/patscope/internal/domain/dataset"
	"github.com/patlytics/patscope/internal/infrastructure/monitoring/logging"
	"github.com/patlytics/patscope/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// ApplicationRepository — PATSTAT application queries
// ─────────────────────────────────────────────────────────────────────────────

// ApplicationRepository implements dataset.ApplicationRepository against the
// PATSTAT tables.  Every query is parameterised; keyword and prefix lists
// cross the wire as text arrays, never as interpolated SQL.
type ApplicationRepository struct {
	pool    *pgxpool.Pool
	timeout time.Duration
	logger  logging.Logger
}

// NewApplicationRepository constructs a ready-to-use ApplicationRepository.
func NewApplicationRepository(pool *pgxpool.Pool, timeout time.Duration, log logging.Logger) *ApplicationRepository {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &ApplicationRepository{pool: pool, timeout: timeout, logger: log.Named("repo.application")}
}

// applicationColumns is the shared SELECT list; both match queries fetch the
// same shape so the builder can combine them without a second lookup.
const applicationColumns = `
	a.appln_id,
	a.appln_filing_year,
	a.appln_auth,
	COALESCE(a.docdb_family_id, 0),
	COALESCE(t.appln_title, ''),
	COALESCE(ab.appln_abstract, '')`

// findByKeywordsSQL matches any keyword as a case-insensitive substring of
// the title or abstract.  Year bounds of 0 mean unbounded; LIMIT NULL (via
// NULLIF) means unlimited.
const findByKeywordsSQL = `
	SELECT ` + applicationColumns + `
	FROM tls201_appln a
	LEFT JOIN tls202_appln_title t  ON t.appln_id  = a.appln_id
	LEFT JOIN tls203_appln_abstr ab ON ab.appln_id = a.appln_id
	WHERE ($2 = 0 OR a.appln_filing_year >= $2)
	  AND ($3 = 0 OR a.appln_filing_year <= $3)
	  AND EXISTS (
		SELECT 1 FROM unnest($1::text[]) AS kw(term)
		WHERE t.appln_title ILIKE '%' || kw.term || '%'
		   OR ab.appln_abstract ILIKE '%' || kw.term || '%'
	  )
	ORDER BY a.appln_id
	LIMIT NULLIF($4::bigint, 0)`

// findByClassPrefixesSQL matches any prefix against IPC and CPC symbols.
// PATSTAT pads classification symbols with internal spaces, so prefixes are
// matched against the symbol as stored via LIKE.
const findByClassPrefixesSQL = `
	SELECT ` + applicationColumns + `
	FROM tls201_appln a
	LEFT JOIN tls202_appln_title t  ON t.appln_id  = a.appln_id
	LEFT JOIN tls203_appln_abstr ab ON ab.appln_id = a.appln_id
	WHERE ($2 = 0 OR a.appln_filing_year >= $2)
	  AND ($3 = 0 OR a.appln_filing_year <= $3)
	  AND EXISTS (
		SELECT 1 FROM unnest($1::text[]) AS pfx(symbol)
		WHERE EXISTS (
			SELECT 1 FROM tls209_appln_ipc i
			WHERE i.appln_id = a.appln_id
			  AND i.ipc_class_symbol LIKE pfx.symbol || '%'
		)
		OR EXISTS (
			SELECT 1 FROM tls224_appln_cpc c
			WHERE c.appln_id = a.appln_id
			  AND c.cpc_class_symbol LIKE pfx.symbol || '%'
		)
	  )
	ORDER BY a.appln_id
	LIMIT NULLIF($4::bigint, 0)`

// FindByKeywords returns applications whose title or abstract contains any
// keyword, case-insensitively, within the filing-year window.
func (r *ApplicationRepository) FindByKeywords(ctx context.Context, keywords []string, yearFrom, yearTo, limit int) ([]dataset.Application, error) {
	if len(keywords) == 0 {
		return nil, nil
	}
	return r.query(ctx, "keywords", findByKeywordsSQL, keywords, yearFrom, yearTo, limit)
}

// FindByClassPrefixes returns applications carrying at least one IPC or CPC
// symbol starting with any of the prefixes, within the filing-year window.
func (r *ApplicationRepository) FindByClassPrefixes(ctx context.Context, prefixes []string, yearFrom, yearTo, limit int) ([]dataset.Application, error) {
	if len(prefixes) == 0 {
		return nil, nil
	}
	return r.query(ctx, "class_prefixes", findByClassPrefixesSQL, prefixes, yearFrom, yearTo, limit)
}

func (r *ApplicationRepository) query(ctx context.Context, kind, sql string, terms []string, yearFrom, yearTo, limit int) ([]dataset.Application, error) {
	ctx, cancel := withQueryTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	rows, err := r.pool.Query(ctx, sql, terms, yearFrom, yearTo, limit)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDBQueryError, "application query failed")
	}
	defer rows.Close()

	apps, err := scanApplications(rows)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("application query executed",
		logging.String("match", kind),
		logging.Int("terms", len(terms)),
		logging.Int("rows", len(apps)),
		logging.Duration("elapsed", time.Since(start)),
	)
	return apps, nil
}

func scanApplications(rows pgx.Rows) ([]dataset.Application, error) {
	var apps []dataset.Application
	for rows.Next() {
		var a dataset.Application
		if err := rows.Scan(&a.ApplnID, &a.FilingYear, &a.Authority, &a.FamilyID, &a.Title, &a.Abstract); err != nil {
			return nil, errors.Wrap(err, errors.CodeDBQueryError, "failed to scan application row")
		}
		apps = append(apps, a)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeDBQueryError, "application row iteration failed")
	}
	return apps, nil
}
