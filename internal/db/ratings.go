package db

import (
	"database/sql"
	"fmt"
)

// Runner is one registry row. Runners are identified by (name, club); a NULL
// club (unattached) is a distinct identity from every named club.
type Runner struct {
	ID            int64
	Name          string
	Club          *string
	FirstSeenYear *int
	LastSeenYear  *int
	Appearances   int
}

// RatingRow is one stored (runner, year) rating record.
type RatingRow struct {
	RunnerID    int64
	Year        int
	Rating      float64
	GamesPlayed int
	GamesWon    int
}

// RankingEntry is one row of the rankings listing.
type RankingEntry struct {
	RunnerID    int64
	Name        string
	Club        *string
	Year        int
	Rating      float64
	GamesPlayed int
	Appearances int
	RacesCount  int
}

// GetOrCreateRunner returns the id for a (name, club) identity, creating the
// registry row on first sight. Year updates last_seen_year when later than
// the stored value; appearance counting is a separate operation so callers
// control when an appearance is recorded.
func (db *DB) GetOrCreateRunner(name string, club *string, year int) (int64, error) {
	if name == "" {
		return 0, fmt.Errorf("runner name must not be empty")
	}

	var yr *int
	if year != 0 {
		yr = &year
	}

	// Look up before inserting: the UNIQUE(name, club) constraint never
	// fires for NULL clubs (SQLite treats NULLs as distinct), so an
	// insert-or-ignore would duplicate unattached runners on every call.
	var id int64
	err := db.QueryRow(
		"SELECT runner_id FROM runners WHERE name = ? AND club IS ?",
		name, club,
	).Scan(&id)
	if err == sql.ErrNoRows {
		res, insErr := db.Exec(`
			INSERT INTO runners (name, club, first_seen_year, last_seen_year, appearance_count)
			VALUES (?, ?, ?, ?, 0)`,
			name, club, yr, yr,
		)
		if insErr != nil {
			return 0, fmt.Errorf("failed to insert runner: %w", insErr)
		}
		id, insErr = res.LastInsertId()
		if insErr != nil {
			return 0, fmt.Errorf("failed to get runner id: %w", insErr)
		}
		return id, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to look up runner %q: %w", name, err)
	}

	if yr != nil {
		_, err = db.Exec(
			"UPDATE runners SET last_seen_year = MAX(COALESCE(last_seen_year, 0), ?) WHERE runner_id = ?",
			year, id,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to update runner last seen year: %w", err)
		}
	}
	return id, nil
}

// IncrementAppearance records one appearance for a runner.
func (db *DB) IncrementAppearance(runnerID int64) error {
	_, err := db.Exec(
		"UPDATE runners SET appearance_count = appearance_count + 1 WHERE runner_id = ?",
		runnerID,
	)
	if err != nil {
		return fmt.Errorf("failed to increment appearance count: %w", err)
	}
	return nil
}

// GetRunner returns a registry row by exact (name, club) identity, or
// sql.ErrNoRows if absent.
func (db *DB) GetRunner(name string, club *string) (*Runner, error) {
	var r Runner
	err := db.QueryRow(`
		SELECT runner_id, name, club, first_seen_year, last_seen_year, appearance_count
		FROM runners WHERE name = ? AND club IS ?`,
		name, club,
	).Scan(&r.ID, &r.Name, &r.Club, &r.FirstSeenYear, &r.LastSeenYear, &r.Appearances)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to query runner %q: %w", name, err)
	}
	return &r, nil
}

// SearchRunners returns registry rows whose name contains the query string,
// most frequently seen first. Exact restricts to exact name matches.
func (db *DB) SearchRunners(name string, exact bool) ([]Runner, error) {
	query := `
		SELECT runner_id, name, club, first_seen_year, last_seen_year, appearance_count
		FROM runners`

	var args []any
	if exact {
		query += " WHERE name = ?"
		args = append(args, name)
	} else {
		query += " WHERE name LIKE ?"
		args = append(args, "%"+name+"%")
	}
	query += " ORDER BY appearance_count DESC, name"

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search runners: %w", err)
	}
	defer rows.Close()

	var out []Runner
	for rows.Next() {
		var r Runner
		if err := rows.Scan(&r.ID, &r.Name, &r.Club, &r.FirstSeenYear, &r.LastSeenYear, &r.Appearances); err != nil {
			return nil, fmt.Errorf("failed to scan runner: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// AllRunners returns every registry row, most frequently seen first.
func (db *DB) AllRunners() ([]Runner, error) {
	return db.SearchRunners("", false)
}

// ClearRatings deletes every stored rating record.
func (db *DB) ClearRatings() error {
	if _, err := db.Exec("DELETE FROM elo_ratings"); err != nil {
		return fmt.Errorf("failed to clear ratings: %w", err)
	}
	return nil
}

// LatestRating returns a runner's most recent rating across all years.
func (db *DB) LatestRating(runnerID int64) (float64, bool, error) {
	var rating float64
	err := db.QueryRow(
		"SELECT rating FROM elo_ratings WHERE runner_id = ? ORDER BY race_year DESC LIMIT 1",
		runnerID,
	).Scan(&rating)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to query latest rating: %w", err)
	}
	return rating, true, nil
}

// RatingForYear returns a runner's rating record for a specific year.
func (db *DB) RatingForYear(runnerID int64, year int) (*RatingRow, error) {
	var row RatingRow
	err := db.QueryRow(`
		SELECT runner_id, race_year, rating, games_played, games_won
		FROM elo_ratings WHERE runner_id = ? AND race_year = ?`,
		runnerID, year,
	).Scan(&row.RunnerID, &row.Year, &row.Rating, &row.GamesPlayed, &row.GamesWon)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to query rating: %w", err)
	}
	return &row, nil
}

// UpsertRating writes a runner's rating for a year. The rating value
// replaces the stored one; the game counters accumulate, so one edition's
// deltas add onto earlier editions in the same year.
func (db *DB) UpsertRating(runnerID int64, year int, rating float64, gamesDelta, wonDelta int) error {
	_, err := db.Exec(`
		INSERT INTO elo_ratings (runner_id, race_year, rating, games_played, games_won)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(runner_id, race_year) DO UPDATE SET
			rating = excluded.rating,
			games_played = elo_ratings.games_played + excluded.games_played,
			games_won = elo_ratings.games_won + excluded.games_won,
			last_updated = CURRENT_TIMESTAMP`,
		runnerID, year, rating, gamesDelta, wonDelta,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert rating: %w", err)
	}
	return nil
}

// RatingHistory returns a runner's rating records ordered by year.
func (db *DB) RatingHistory(runnerID int64) ([]RatingRow, error) {
	rows, err := db.Query(`
		SELECT runner_id, race_year, rating, games_played, games_won
		FROM elo_ratings WHERE runner_id = ? ORDER BY race_year ASC`,
		runnerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query rating history: %w", err)
	}
	defer rows.Close()

	var out []RatingRow
	for rows.Next() {
		var r RatingRow
		if err := rows.Scan(&r.RunnerID, &r.Year, &r.Rating, &r.GamesPlayed, &r.GamesWon); err != nil {
			return nil, fmt.Errorf("failed to scan rating row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Rankings lists runners by rating, highest first. A nonzero year returns
// each runner's most recent rating as of that year; zero means all-time.
// minGames excludes sparsely compared runners, and races_count reports the
// number of distinct editions the runner appears in.
func (db *DB) Rankings(year, limit, minGames int) ([]RankingEntry, error) {
	query := `
		WITH latest_ratings AS (
			SELECT
				runner_id, race_year, rating, games_played,
				ROW_NUMBER() OVER (PARTITION BY runner_id ORDER BY race_year DESC) AS rn
			FROM elo_ratings
			WHERE games_played >= ?`
	args := []any{minGames}
	if year != 0 {
		query += " AND race_year <= ?"
		args = append(args, year)
	}
	query += `
		)
		SELECT
			r.runner_id, r.name, r.club,
			lr.race_year, lr.rating, lr.games_played, r.appearance_count,
			(
				SELECT COUNT(DISTINCT res.edition_id)
				FROM results res
				JOIN race_editions re ON res.edition_id = re.edition_id
				WHERE res.name = r.name
				  AND COALESCE(res.club, '') = COALESCE(r.club, '')`
	if year != 0 {
		query += " AND re.race_year <= lr.race_year"
	}
	query += `
			) AS races_count
		FROM runners r
		JOIN latest_ratings lr ON r.runner_id = lr.runner_id
		WHERE lr.rn = 1
		ORDER BY lr.rating DESC`
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query rankings: %w", err)
	}
	defer rows.Close()

	var out []RankingEntry
	for rows.Next() {
		var e RankingEntry
		err := rows.Scan(&e.RunnerID, &e.Name, &e.Club, &e.Year, &e.Rating, &e.GamesPlayed, &e.Appearances, &e.RacesCount)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ranking entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
