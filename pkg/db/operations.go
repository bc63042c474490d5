package db

import (
	"fmt"
	"time"

	"github.com/placemetrics/rankengine/models"
)

// RunRecord summarizes one resolve invocation.
type RunRecord struct {
	ID            string
	Keyword       string
	TargetPlaceID string
	TargetRank    *int
	TotalResults  int
	CreatedAt     time.Time
}

// Sample is one (position, factors) tuple for the offline trainer.
type Sample struct {
	RunID          string
	Keyword        string
	PlaceID        string
	Position       int
	VisitorReviews int
	BlogReviews    int
	SaveCount      int
	FreshnessCount int
	CreatedAt      time.Time
}

// InsertRun records a resolve invocation.
func (s *Store) InsertRun(run RunRecord) error {
	_, err := s.Exec(`
		INSERT INTO analysis_runs (id, keyword, target_place_id, target_rank, total_results)
		VALUES (?, ?, ?, ?, ?)
	`, run.ID, run.Keyword, run.TargetPlaceID, run.TargetRank, run.TotalResults)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

// InsertSamples writes one training sample per ranked entity, in a single
// transaction. Unranked entities carry no ordering signal and are skipped.
func (s *Store) InsertSamples(runID, keyword string, entities []models.Entity) error {
	tx, err := s.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO training_samples
			(run_id, keyword, place_id, position, visitor_reviews, blog_reviews, save_count, freshness_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare sample insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entities {
		if e.Rank == 0 {
			continue
		}
		_, err := stmt.Exec(runID, keyword, e.ID, e.Rank,
			e.VisitorReviews, e.BlogReviews, e.SaveCount, e.FreshnessCount)
		if err != nil {
			return fmt.Errorf("failed to insert sample for %s: %w", e.ID, err)
		}
	}
	return tx.Commit()
}

// RecentSamples returns the newest samples for a keyword, capped at limit.
func (s *Store) RecentSamples(keyword string, limit int) ([]Sample, error) {
	rows, err := s.Query(`
		SELECT run_id, keyword, place_id, position,
		       visitor_reviews, blog_reviews, save_count, freshness_count, created_at
		FROM training_samples
		WHERE keyword = ?
		ORDER BY created_at DESC, position ASC
		LIMIT ?
	`, keyword, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query samples: %w", err)
	}
	defer rows.Close()

	var samples []Sample
	for rows.Next() {
		var smp Sample
		err := rows.Scan(&smp.RunID, &smp.Keyword, &smp.PlaceID, &smp.Position,
			&smp.VisitorReviews, &smp.BlogReviews, &smp.SaveCount, &smp.FreshnessCount, &smp.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sample: %w", err)
		}
		samples = append(samples, smp)
	}
	return samples, rows.Err()
}

// RunCount reports how many runs were recorded for a keyword.
func (s *Store) RunCount(keyword string) (int, error) {
	var count int
	err := s.QueryRow(`SELECT COUNT(*) FROM analysis_runs WHERE keyword = ?`, keyword).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count runs: %w", err)
	}
	return count, nil
}
