package stats

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/scentswap/tradepost/internal/models"
	"github.com/scentswap/tradepost/internal/monitoring"
)

// Service computes aggregate reputation statistics over a trader's
// evaluations. The aggregate is a derived read model, never persisted;
// results are cached in Redis and invalidated when a new evaluation lands.
type Service struct {
	db    *pgxpool.Pool
	cache *Cache
}

// NewService creates a new stats service. cache may be nil to disable
// caching.
func NewService(db *pgxpool.Pool, cache *Cache) *Service {
	return &Service{db: db, cache: cache}
}

// GetTraderAggregates returns the aggregate read model for a trader. A
// trader with no evaluations yields zero counts and nil averages/min/max,
// which callers must treat as a valid "no data yet" result.
func (s *Service) GetTraderAggregates(ctx context.Context, traderID uuid.UUID) (*models.Aggregate, error) {
	if s.cache != nil {
		if agg, ok := s.cache.Get(ctx, traderID); ok {
			monitoring.RecordCacheHit("stats")
			return agg, nil
		}
		monitoring.RecordCacheMiss("stats")
	}

	rows, err := s.db.Query(ctx, `
		SELECT no_show, responsiveness, demeanor, overall_rating
		FROM evaluations
		WHERE trader_id = $1
	`, traderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query evaluations: %w", err)
	}
	defer rows.Close()

	var evals []models.Evaluation
	for rows.Next() {
		var e models.Evaluation
		if err := rows.Scan(&e.NoShow, &e.Responsiveness, &e.Demeanor, &e.OverallRating); err != nil {
			return nil, fmt.Errorf("failed to scan evaluation: %w", err)
		}
		evals = append(evals, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate evaluations: %w", err)
	}

	agg := Compute(evals)

	if s.cache != nil {
		if err := s.cache.Set(ctx, traderID, agg); err != nil {
			log.Warn().Err(err).Str("trader_id", traderID.String()).Msg("Failed to cache aggregate stats")
		}
	}

	return agg, nil
}

// Compute folds a set of evaluations into the aggregate read model.
// Averages for responsiveness and demeanor ignore evaluations where the
// rating is absent; overall_rating is always present.
func Compute(evals []models.Evaluation) *models.Aggregate {
	agg := &models.Aggregate{
		TotalEvaluations: len(evals),
	}
	if len(evals) == 0 {
		return agg
	}

	var (
		overallSum          int
		responsivenessSum   int
		responsivenessCount int
		demeanorSum         int
		demeanorCount       int
	)

	minOverall := evals[0].OverallRating
	maxOverall := evals[0].OverallRating

	for _, e := range evals {
		overallSum += e.OverallRating
		if e.OverallRating < minOverall {
			minOverall = e.OverallRating
		}
		if e.OverallRating > maxOverall {
			maxOverall = e.OverallRating
		}
		switch e.OverallRating {
		case 1:
			agg.OneStars++
		case 2:
			agg.TwoStars++
		case 3:
			agg.ThreeStars++
		case 4:
			agg.FourStars++
		case 5:
			agg.FiveStars++
		}
		if e.Responsiveness != nil {
			responsivenessSum += *e.Responsiveness
			responsivenessCount++
		}
		if e.Demeanor != nil {
			demeanorSum += *e.Demeanor
			demeanorCount++
		}
		if e.NoShow {
			agg.TotalNoShow++
		}
	}

	avgOverall := float64(overallSum) / float64(len(evals))
	agg.AvgOverallRating = &avgOverall
	agg.MinOverallRating = &minOverall
	agg.MaxOverallRating = &maxOverall

	if responsivenessCount > 0 {
		avg := float64(responsivenessSum) / float64(responsivenessCount)
		agg.AvgResponsiveness = &avg
	}
	if demeanorCount > 0 {
		avg := float64(demeanorSum) / float64(demeanorCount)
		agg.AvgDemeanor = &avg
	}

	return agg
}
