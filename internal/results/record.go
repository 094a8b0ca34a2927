// Package results normalizes race-result rows from arbitrary tabular sources
// into a canonical, schema-stable record. It infers column mappings, repairs
// and parses malformed time tokens, canonicalizes club and age-category
// values, resolves completion status, and backfills gender- and
// category-scoped finishing positions.
package results

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Gender is a normalized gender code.
type Gender string

const (
	GenderMale      Gender = "M"
	GenderFemale    Gender = "F"
	GenderNonBinary Gender = "N"
	GenderUnknown   Gender = "U"
)

// Status is a race completion status.
type Status string

const (
	StatusFinished Status = "finished"
	StatusDNF      Status = "dnf"
	StatusDNS      Status = "dns"
	StatusDSQ      Status = "dsq"
	StatusUnknown  Status = "unknown"
)

// Record is one runner's canonical outcome in one race edition. All results,
// regardless of source format, conform to this schema so that analysis and
// rating code can be written once.
//
// A nil Club means the runner is unattached; the canonicalizer maps tokens
// like "U/A" and empty strings to nil. Time fields are nil when the source
// value was absent or unparseable.
type Record struct {
	PositionOverall  *int `json:"position_overall" validate:"omitempty,gte=0"`
	PositionGender   *int `json:"position_gender" validate:"omitempty,gte=0"`
	PositionCategory *int `json:"position_category" validate:"omitempty,gte=0"`

	Name string `json:"name"`
	Bib  string `json:"bib_number"`

	Gender      Gender  `json:"gender" validate:"omitempty,oneof=M F N U"`
	AgeCategory string  `json:"age_category"`
	Club        *string `json:"club"`

	Status Status `json:"race_status" validate:"omitempty,oneof=finished dnf dns dsq unknown"`

	FinishTimeSeconds *float64 `json:"finish_time_seconds" validate:"omitempty,gte=0"`
	FinishTimeMinutes *float64 `json:"finish_time_minutes" validate:"omitempty,gte=0"`
	ChipTimeSeconds   *float64 `json:"chip_time_seconds" validate:"omitempty,gte=0"`
	ChipTimeMinutes   *float64 `json:"chip_time_minutes" validate:"omitempty,gte=0"`
	GunTimeSeconds    *float64 `json:"gun_time_seconds" validate:"omitempty,gte=0"`
	GunTimeMinutes    *float64 `json:"gun_time_minutes" validate:"omitempty,gte=0"`

	RaceName     string `json:"race_name"`
	RaceYear     int    `json:"race_year" validate:"omitempty,gte=0"`
	RaceCategory string `json:"race_category"`

	// Metadata preserves unmapped source columns verbatim.
	Metadata map[string]string `json:"metadata,omitempty"`
}

var recordValidator = validator.New()

// Validate checks the record against its schema constraints.
func (r *Record) Validate() error {
	if err := recordValidator.Struct(r); err != nil {
		return fmt.Errorf("invalid record: %w", err)
	}
	return nil
}

// HasTime reports whether any of the three time fields carries a value.
func (r *Record) HasTime() bool {
	return r.FinishTimeSeconds != nil || r.FinishTimeMinutes != nil ||
		r.ChipTimeSeconds != nil || r.ChipTimeMinutes != nil ||
		r.GunTimeSeconds != nil || r.GunTimeMinutes != nil
}

// BestTimeSeconds returns the preferred time for ranking purposes: finish
// time, then chip time, then gun time.
func (r *Record) BestTimeSeconds() (float64, bool) {
	for _, t := range []*float64{r.FinishTimeSeconds, r.ChipTimeSeconds, r.GunTimeSeconds} {
		if t != nil {
			return *t, true
		}
	}
	return 0, false
}

// genderFromLetter maps a category's leading letter to a gender code,
// defaulting to male for unrecognized letters.
func genderFromLetter(letter byte) Gender {
	switch letter {
	case 'M':
		return GenderMale
	case 'F', 'L':
		return GenderFemale
	case 'N':
		return GenderNonBinary
	}
	return GenderMale
}

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }
func strPtr(s string) *string     { return &s }
