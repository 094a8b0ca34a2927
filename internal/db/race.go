package db

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// Race is a named event that recurs across years.
type Race struct {
	ID       int64
	Name     string
	Category *string
}

// Edition is one running of a race in a particular year.
type Edition struct {
	ID         int64
	RaceID     int64
	Year       *int
	Date       *string
	SourceURL  *string
	SourceFile *string

	// ImportID identifies the import batch that produced this edition's
	// rows. Assigned on insert when empty.
	ImportID string
}

// RaceSummary is one row of the races listing.
type RaceSummary struct {
	Name        string
	Category    *string
	Editions    int
	ResultCount int
	FirstYear   *int
	LastYear    *int
}

// AddRace inserts a race if it does not exist and returns its id. Race names
// are unique; repeated calls with the same name return the same id.
func (db *DB) AddRace(name string, category *string) (int64, error) {
	_, err := db.Exec(
		"INSERT OR IGNORE INTO races (race_name, race_category) VALUES (?, ?)",
		name, category,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert race: %w", err)
	}

	var id int64
	err = db.QueryRow("SELECT race_id FROM races WHERE race_name = ?", name).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to look up race %q: %w", name, err)
	}
	return id, nil
}

// AddEdition inserts or replaces the edition of a race for a year and
// returns its id. One edition per (race, year).
func (db *DB) AddEdition(e Edition) (int64, error) {
	if e.ImportID == "" {
		e.ImportID = uuid.NewString()
	}
	res, err := db.Exec(`
		INSERT OR REPLACE INTO race_editions
		(race_id, race_year, race_date, source_url, source_file, import_id)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.RaceID, e.Year, e.Date, e.SourceURL, e.SourceFile, e.ImportID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert race edition: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get edition id: %w", err)
	}
	return id, nil
}

// GetRace returns a race by name, or sql.ErrNoRows if absent.
func (db *DB) GetRace(name string) (*Race, error) {
	var r Race
	err := db.QueryRow(
		"SELECT race_id, race_name, race_category FROM races WHERE race_name = ?",
		name,
	).Scan(&r.ID, &r.Name, &r.Category)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to query race %q: %w", name, err)
	}
	return &r, nil
}

// ListRaces summarizes every stored race with its edition and result counts.
func (db *DB) ListRaces() ([]RaceSummary, error) {
	rows, err := db.Query(`
		SELECT
			ra.race_name,
			ra.race_category,
			COUNT(DISTINCT re.edition_id) AS editions,
			COUNT(res.result_id) AS result_count,
			MIN(re.race_year) AS first_year,
			MAX(re.race_year) AS last_year
		FROM races ra
		LEFT JOIN race_editions re ON re.race_id = ra.race_id
		LEFT JOIN results res ON res.edition_id = re.edition_id
		GROUP BY ra.race_id
		ORDER BY ra.race_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list races: %w", err)
	}
	defer rows.Close()

	var summaries []RaceSummary
	for rows.Next() {
		var s RaceSummary
		if err := rows.Scan(&s.Name, &s.Category, &s.Editions, &s.ResultCount, &s.FirstYear, &s.LastYear); err != nil {
			return nil, fmt.Errorf("failed to scan race summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}
