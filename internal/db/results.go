package db

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fellrank-data/race.report/internal/results"
)

// StoredResult is one results row joined with its race and edition.
type StoredResult struct {
	ResultID         int64
	RaceName         string
	RaceYear         *int
	RaceDate         *string
	PositionOverall  *int
	PositionGender   *int
	PositionCategory *int
	Name             string
	Bib              *string
	Gender           *string
	AgeCategory      *string
	Club             *string
	Status           string
	FinishSeconds    *float64
	FinishMinutes    *float64
	ChipSeconds      *float64
	GunSeconds       *float64
}

// FinishedResult is the slice of a results row the rating engine consumes.
type FinishedResult struct {
	EditionID int64
	RaceName  string
	Year      int
	Date      *string
	Name      string
	Club      *string
	Position  int
}

// ResultFilter narrows result queries. Zero values mean no constraint; the
// name and club filters are substring matches.
type ResultFilter struct {
	RaceName   string
	Year       int
	RunnerName string
	Club       string
}

// InsertResults stores normalized records against an edition and returns the
// number of rows written. Record metadata is stored as JSON.
func (db *DB) InsertResults(editionID int64, recs []results.Record) (int, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO results (
			edition_id, position_overall, position_gender, position_category,
			name, bib_number, gender, age_category, club, race_status,
			finish_time_seconds, finish_time_minutes,
			chip_time_seconds, chip_time_minutes,
			gun_time_seconds, gun_time_minutes, metadata
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare results insert: %w", err)
	}
	defer stmt.Close()

	count := 0
	for _, r := range recs {
		var metadata *string
		if len(r.Metadata) > 0 {
			encoded, err := json.Marshal(r.Metadata)
			if err != nil {
				return 0, fmt.Errorf("failed to encode metadata for %q: %w", r.Name, err)
			}
			s := string(encoded)
			metadata = &s
		}

		_, err := stmt.Exec(
			editionID,
			r.PositionOverall, r.PositionGender, r.PositionCategory,
			r.Name, r.Bib, string(r.Gender), r.AgeCategory, r.Club, string(r.Status),
			r.FinishTimeSeconds, r.FinishTimeMinutes,
			r.ChipTimeSeconds, r.ChipTimeMinutes,
			r.GunTimeSeconds, r.GunTimeMinutes,
			metadata,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert result for %q: %w", r.Name, err)
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit results: %w", err)
	}
	return count, nil
}

// QueryResults returns stored results matching the filter, ordered by year
// and overall position with unplaced rows last.
func (db *DB) QueryResults(filter ResultFilter) ([]StoredResult, error) {
	query := `
		SELECT
			res.result_id, ra.race_name, re.race_year, re.race_date,
			res.position_overall, res.position_gender, res.position_category,
			res.name, res.bib_number, res.gender, res.age_category, res.club,
			res.race_status, res.finish_time_seconds, res.finish_time_minutes,
			res.chip_time_seconds, res.gun_time_seconds
		FROM results res
		JOIN race_editions re ON res.edition_id = re.edition_id
		JOIN races ra ON re.race_id = ra.race_id
		WHERE 1=1`

	var args []any
	if filter.RaceName != "" {
		query += " AND ra.race_name = ?"
		args = append(args, filter.RaceName)
	}
	if filter.Year != 0 {
		query += " AND re.race_year = ?"
		args = append(args, filter.Year)
	}
	if filter.RunnerName != "" {
		query += " AND res.name LIKE ?"
		args = append(args, "%"+filter.RunnerName+"%")
	}
	if filter.Club != "" {
		query += " AND res.club LIKE ?"
		args = append(args, "%"+filter.Club+"%")
	}
	query += " ORDER BY re.race_year, (res.position_overall IS NULL), res.position_overall"

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	var out []StoredResult
	for rows.Next() {
		var r StoredResult
		err := rows.Scan(
			&r.ResultID, &r.RaceName, &r.RaceYear, &r.RaceDate,
			&r.PositionOverall, &r.PositionGender, &r.PositionCategory,
			&r.Name, &r.Bib, &r.Gender, &r.AgeCategory, &r.Club,
			&r.Status, &r.FinishSeconds, &r.FinishMinutes,
			&r.ChipSeconds, &r.GunSeconds,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// FinishedResults returns every finished result with a known name and
// overall position, in processing order for the rating engine: race date,
// then year, then position. Empty raceName or zero year mean no filter.
func (db *DB) FinishedResults(raceName string, year int) ([]FinishedResult, error) {
	query := `
		SELECT
			re.edition_id, ra.race_name, re.race_year, re.race_date,
			r.name, r.club, r.position_overall
		FROM results r
		JOIN race_editions re ON r.edition_id = re.edition_id
		JOIN races ra ON re.race_id = ra.race_id
		WHERE r.race_status = 'finished'
		  AND r.name != ''
		  AND r.position_overall IS NOT NULL`

	var args []any
	if raceName != "" {
		query += " AND ra.race_name = ?"
		args = append(args, raceName)
	}
	if year != 0 {
		query += " AND re.race_year = ?"
		args = append(args, year)
	}
	query += " ORDER BY re.race_date ASC, re.race_year ASC, r.position_overall ASC"

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query finished results: %w", err)
	}
	defer rows.Close()

	var out []FinishedResult
	for rows.Next() {
		var f FinishedResult
		var yr *int
		if err := rows.Scan(&f.EditionID, &f.RaceName, &yr, &f.Date, &f.Name, &f.Club, &f.Position); err != nil {
			return nil, fmt.Errorf("failed to scan finished result: %w", err)
		}
		if yr != nil {
			f.Year = *yr
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// RunnerHistory returns a runner's stored results across all races, oldest
// first. The club filter is exact when non-nil.
func (db *DB) RunnerHistory(name string, club *string) ([]StoredResult, error) {
	filter := ResultFilter{RunnerName: name}
	all, err := db.QueryResults(filter)
	if err != nil {
		return nil, err
	}

	var out []StoredResult
	for _, r := range all {
		if !strings.EqualFold(r.Name, name) {
			continue
		}
		if club != nil && (r.Club == nil || *r.Club != *club) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}
