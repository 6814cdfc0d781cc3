// Package store provides the persistence layer for investor candidates,
// match results, and cached profiles.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	"github.com/Ayush1216/Frictionless/internal/common/errors"
	"github.com/Ayush1216/Frictionless/internal/common/logger"
)

// Candidate is one investor row eligible for batch matching. Profile holds
// the normalized investor thesis document as stored.
type Candidate struct {
	ID      string
	Name    string
	Profile map[string]interface{}
}

// InvestorStore reads investor candidates and persists match results.
type InvestorStore struct {
	db     *sql.DB
	logger logger.Logger
}

func NewInvestorStore(db *sql.DB, log logger.Logger) *InvestorStore {
	return &InvestorStore{db: db, logger: log}
}

const listCandidatesQuery = `
SELECT id, name, profile
FROM investors
WHERE active = true
  AND ($1::text[] IS NULL OR sector_focus && $1::text[])
  AND ($2::text[] IS NULL OR geo_focus && $2::text[])
ORDER BY name
LIMIT $3`

// ListActiveCandidates returns active investors whose stored sector or geo
// focus overlaps the given filters. Empty filters match everything.
func (s *InvestorStore) ListActiveCandidates(ctx context.Context, sectors, geos []string, limit int) ([]Candidate, error) {
	if limit <= 0 {
		limit = 200
	}

	var sectorArg, geoArg interface{}
	if len(sectors) > 0 {
		sectorArg = pq.Array(sectors)
	}
	if len(geos) > 0 {
		geoArg = pq.Array(geos)
	}

	rows, err := s.db.QueryContext(ctx, listCandidatesQuery, sectorArg, geoArg, limit)
	if err != nil {
		return nil, errors.NewCandidateQueryError(fmt.Sprintf("list candidates: %v", err))
	}
	defer rows.Close()

	var candidates []Candidate
	for rows.Next() {
		var (
			c       Candidate
			rawDoc  []byte
		)
		if err := rows.Scan(&c.ID, &c.Name, &rawDoc); err != nil {
			return nil, errors.NewCandidateQueryError(fmt.Sprintf("scan candidate row: %v", err))
		}
		if len(rawDoc) > 0 {
			if err := json.Unmarshal(rawDoc, &c.Profile); err != nil {
				s.logger.Warn("skipping investor with malformed profile document", map[string]interface{}{
					"investorId": c.ID,
					"error":      err.Error(),
				})
				continue
			}
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewCandidateQueryError(fmt.Sprintf("iterate candidates: %v", err))
	}
	return candidates, nil
}

const insertMatchResultQuery = `
INSERT INTO match_results (id, startup_id, investor_id, eligible, fit_score, result, created_at)
VALUES ($1, $2, $3, $4, $5, $6, NOW())
ON CONFLICT (id) DO UPDATE
SET eligible = EXCLUDED.eligible, fit_score = EXCLUDED.fit_score, result = EXCLUDED.result`

// SaveMatchResult upserts one scored pair keyed by the match run ID.
func (s *InvestorStore) SaveMatchResult(ctx context.Context, matchID, startupID, investorID string, eligible bool, fitScore float64, result interface{}) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return errors.New(errors.ErrCodeResultPersistFailed, "Match result persistence failed", fmt.Sprintf("marshal result: %v", err), false)
	}

	if _, err := s.db.ExecContext(ctx, insertMatchResultQuery, matchID, startupID, investorID, eligible, fitScore, payload); err != nil {
		return errors.New(errors.ErrCodeResultPersistFailed, "Match result persistence failed", fmt.Sprintf("insert match result: %v", err), true)
	}
	return nil
}
