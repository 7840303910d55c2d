package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/patlytics/patscope/internal/domain/citation"
	"github.com/patlytics/patscope/internal/infrastructure/monitoring/logging"
	"github.com/patlytics/patscope/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// CitationRepository — PATSTAT publication and citation queries
// ─────────────────────────────────────────────────────────────────────────────

// CitationRepository implements citation.Repository against tls211 / tls212.
type CitationRepository struct {
	pool    *pgxpool.Pool
	timeout time.Duration
	logger  logging.Logger
}

// NewCitationRepository constructs a ready-to-use CitationRepository.
func NewCitationRepository(pool *pgxpool.Pool, timeout time.Duration, log logging.Logger) *CitationRepository {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &CitationRepository{pool: pool, timeout: timeout, logger: log.Named("repo.citation")}
}

const resolvePublicationsSQL = `
	SELECT p.pat_publn_id, p.appln_id, COALESCE(p.publn_auth, '')
	FROM tls211_pat_publn p
	WHERE p.appln_id = ANY($1::bigint[])
	ORDER BY p.pat_publn_id`

// The citing-side join is on the citation table's own pat_publn_id; the
// cited side excludes non-patent literature rows, which carry a zero
// cited_pat_publn_id in PATSTAT.
const forwardCitationsSQL = `
	SELECT c.pat_publn_id,
	       c.cited_pat_publn_id,
	       COALESCE(c.citn_origin, ''),
	       COALESCE(citing.publn_auth, ''),
	       COALESCE(cited.publn_auth, '')
	FROM tls212_citation c
	LEFT JOIN tls211_pat_publn citing ON citing.pat_publn_id = c.pat_publn_id
	LEFT JOIN tls211_pat_publn cited  ON cited.pat_publn_id  = c.cited_pat_publn_id
	WHERE c.cited_pat_publn_id = ANY($1::bigint[])
	ORDER BY c.pat_publn_id, c.cited_pat_publn_id`

const backwardCitationsSQL = `
	SELECT c.pat_publn_id,
	       c.cited_pat_publn_id,
	       COALESCE(c.citn_origin, ''),
	       COALESCE(citing.publn_auth, ''),
	       COALESCE(cited.publn_auth, '')
	FROM tls212_citation c
	LEFT JOIN tls211_pat_publn citing ON citing.pat_publn_id = c.pat_publn_id
	LEFT JOIN tls211_pat_publn cited  ON cited.pat_publn_id  = c.cited_pat_publn_id
	WHERE c.pat_publn_id = ANY($1::bigint[])
	  AND c.cited_pat_publn_id > 0
	ORDER BY c.pat_publn_id, c.cited_pat_publn_id`

// ResolvePublications maps applications to their publications.
func (r *CitationRepository) ResolvePublications(ctx context.Context, applnIDs []int64) ([]citation.PublicationRef, error) {
	if len(applnIDs) == 0 {
		return nil, nil
	}

	ctx, cancel := withQueryTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, resolvePublicationsSQL, applnIDs)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDBQueryError, "publication resolution query failed")
	}
	defer rows.Close()

	var pubs []citation.PublicationRef
	for rows.Next() {
		var p citation.PublicationRef
		if err := rows.Scan(&p.PublnID, &p.ApplnID, &p.Authority); err != nil {
			return nil, errors.Wrap(err, errors.CodeDBQueryError, "failed to scan publication row")
		}
		pubs = append(pubs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeDBQueryError, "publication row iteration failed")
	}

	r.logger.Debug("publications resolved",
		logging.Int("applications", len(applnIDs)),
		logging.Int("publications", len(pubs)),
	)
	return pubs, nil
}

// ForwardCitations returns edges citing into the given publications.
func (r *CitationRepository) ForwardCitations(ctx context.Context, publnIDs []int64) ([]citation.Edge, error) {
	return r.queryEdges(ctx, "forward", forwardCitationsSQL, publnIDs)
}

// BackwardCitations returns edges cited by the given publications.
func (r *CitationRepository) BackwardCitations(ctx context.Context, publnIDs []int64) ([]citation.Edge, error) {
	return r.queryEdges(ctx, "backward", backwardCitationsSQL, publnIDs)
}

func (r *CitationRepository) queryEdges(ctx context.Context, direction, sql string, publnIDs []int64) ([]citation.Edge, error) {
	if len(publnIDs) == 0 {
		return nil, nil
	}

	ctx, cancel := withQueryTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	rows, err := r.pool.Query(ctx, sql, publnIDs)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDBQueryError, "citation query failed")
	}
	defer rows.Close()

	edges, err := scanEdges(rows)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("citation query executed",
		logging.String("direction", direction),
		logging.Int("publications", len(publnIDs)),
		logging.Int("edges", len(edges)),
		logging.Duration("elapsed", time.Since(start)),
	)
	return edges, nil
}

func scanEdges(rows pgx.Rows) ([]citation.Edge, error) {
	var edges []citation.Edge
	for rows.Next() {
		var e citation.Edge
		var origin string
		if err := rows.Scan(&e.CitingPublnID, &e.CitedPublnID, &origin, &e.CitingAuthority, &e.CitedAuthority); err != nil {
			return nil, errors.Wrap(err, errors.CodeDBQueryError, "failed to scan citation row")
		}
		e.Origin = citation.Origin(origin)
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeDBQueryError, "citation row iteration failed")
	}
	return edges, nil
}
