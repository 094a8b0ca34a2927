// Package rating maintains career-long Elo ratings for runners. Finished
// results are replayed in chronological order; every pair of finishers in an
// edition is compared twice, once in each direction, and both comparisons
// adjust the pair's ratings immediately. A runner's rating carries forward
// across years, seeded from their most recent stored rating.
package rating

import (
	"fmt"
	"math"

	"github.com/fellrank-data/race.report/internal/db"
)

// Elo parameters.
const (
	InitialRating = 1500.0
	KFactor       = 32.0
)

// Store is the persistence surface the engine drives. *db.DB satisfies it.
type Store interface {
	FinishedResults(raceName string, year int) ([]db.FinishedResult, error)
	ClearRatings() error
	GetOrCreateRunner(name string, club *string, year int) (int64, error)
	IncrementAppearance(runnerID int64) error
	LatestRating(runnerID int64) (float64, bool, error)
	UpsertRating(runnerID int64, year int, rating float64, gamesDelta, wonDelta int) error
}

// Engine replays finished results into rating updates.
type Engine struct {
	store Store
}

func NewEngine(store Store) *Engine {
	return &Engine{store: store}
}

// Calculate processes finished results and updates stored ratings. Empty
// raceName and zero year process everything; recalculate clears all stored
// ratings first so the replay starts from a blank slate. Replaying the same
// inputs after a recalculate yields identical ratings: processing order is
// fully determined by (date, year, position, insertion order).
func (e *Engine) Calculate(raceName string, year int, recalculate bool) error {
	finished, err := e.store.FinishedResults(raceName, year)
	if err != nil {
		return fmt.Errorf("failed to load finished results: %w", err)
	}
	if len(finished) == 0 {
		return nil
	}

	if recalculate {
		if err := e.store.ClearRatings(); err != nil {
			return err
		}
	}

	// Group by edition, preserving the chronological order of first
	// appearance.
	editionOrder := make([]int64, 0)
	editions := make(map[int64][]db.FinishedResult)
	for _, f := range finished {
		if _, seen := editions[f.EditionID]; !seen {
			editionOrder = append(editionOrder, f.EditionID)
		}
		editions[f.EditionID] = append(editions[f.EditionID], f)
	}

	for _, editionID := range editionOrder {
		if err := e.processEdition(editions[editionID]); err != nil {
			return err
		}
	}
	return nil
}

// processEdition runs the all-pairs comparison for one edition's finishers,
// which are already ordered by position.
func (e *Engine) processEdition(finishers []db.FinishedResult) error {
	year := finishers[0].Year

	ids := make([]int64, len(finishers))
	for i, f := range finishers {
		id, err := e.store.GetOrCreateRunner(f.Name, f.Club, year)
		if err != nil {
			return err
		}
		ids[i] = id
		if err := e.store.IncrementAppearance(id); err != nil {
			return err
		}
	}

	// Seed each runner's working rating from their most recent stored
	// rating, falling back to the initial rating for newcomers.
	ratings := make([]float64, len(finishers))
	for i, id := range ids {
		r, found, err := e.store.LatestRating(id)
		if err != nil {
			return err
		}
		if !found {
			r = InitialRating
		}
		ratings[i] = r
	}

	games := make([]int, len(finishers))
	wins := make([]int, len(finishers))

	// Directed all-pairs: each ordered pair is one game, so every runner
	// plays 2*(N-1) games per edition. Ratings drift within the edition;
	// each comparison sees the adjustments made by earlier ones.
	for i := range finishers {
		for j := range finishers {
			if i == j {
				continue
			}

			scoreI, scoreJ := 0.0, 1.0
			if finishers[i].Position < finishers[j].Position {
				scoreI, scoreJ = 1.0, 0.0
			}

			expectedI := expectedScore(ratings[i], ratings[j])
			expectedJ := expectedScore(ratings[j], ratings[i])

			ratings[i] += KFactor * (scoreI - expectedI)
			ratings[j] += KFactor * (scoreJ - expectedJ)

			games[i]++
			games[j]++
			if scoreI == 1.0 {
				wins[i]++
			} else {
				wins[j]++
			}
		}
	}

	for i, id := range ids {
		if err := e.store.UpsertRating(id, year, ratings[i], games[i], wins[i]); err != nil {
			return err
		}
	}
	return nil
}

// expectedScore is the standard Elo expectation for a against b.
func expectedScore(a, b float64) float64 {
	return 1 / (1 + math.Pow(10, (b-a)/400))
}
