package results

import (
	"regexp"
	"strings"
)

// ColumnMapping associates canonical fields with source column names. Every
// field is optional; an empty mapping makes the Normalizer auto-detect
// columns. An explicit mapping, even a partial one, is never auto-augmented.
type ColumnMapping struct {
	PositionOverall  string `json:"position_overall,omitempty" koanf:"position_overall"`
	PositionGender   string `json:"position_gender,omitempty" koanf:"position_gender"`
	PositionCategory string `json:"position_category,omitempty" koanf:"position_category"`

	Name string `json:"name,omitempty" koanf:"name"`
	Bib  string `json:"bib_number,omitempty" koanf:"bib_number"`

	Gender      string `json:"gender,omitempty" koanf:"gender"`
	AgeCategory string `json:"age_category,omitempty" koanf:"age_category"`
	Club        string `json:"club,omitempty" koanf:"club"`

	// FinishTime is a generic finish-time column; values are parsed and
	// stored into the seconds/minutes pair.
	FinishTime        string `json:"finish_time,omitempty" koanf:"finish_time"`
	FinishTimeSeconds string `json:"finish_time_seconds,omitempty" koanf:"finish_time_seconds"`
	FinishTimeMinutes string `json:"finish_time_minutes,omitempty" koanf:"finish_time_minutes"`
	ChipTimeSeconds   string `json:"chip_time_seconds,omitempty" koanf:"chip_time_seconds"`
	ChipTimeMinutes   string `json:"chip_time_minutes,omitempty" koanf:"chip_time_minutes"`
	GunTimeSeconds    string `json:"gun_time_seconds,omitempty" koanf:"gun_time_seconds"`
	GunTimeMinutes    string `json:"gun_time_minutes,omitempty" koanf:"gun_time_minutes"`

	RaceYear string `json:"race_year,omitempty" koanf:"race_year"`
	Status   string `json:"race_status,omitempty" koanf:"race_status"`
}

// IsEmpty reports whether no field has a source column assigned.
func (m *ColumnMapping) IsEmpty() bool {
	return *m == ColumnMapping{}
}

// MappedColumns returns the set of source columns used by the mapping.
func (m *ColumnMapping) MappedColumns() map[string]bool {
	cols := make(map[string]bool)
	for _, c := range []string{
		m.PositionOverall, m.PositionGender, m.PositionCategory,
		m.Name, m.Bib, m.Gender, m.AgeCategory, m.Club,
		m.FinishTime, m.FinishTimeSeconds, m.FinishTimeMinutes,
		m.ChipTimeSeconds, m.ChipTimeMinutes,
		m.GunTimeSeconds, m.GunTimeMinutes,
		m.RaceYear, m.Status,
	} {
		if c != "" {
			cols[c] = true
		}
	}
	return cols
}

// detectRule binds a canonical field setter to an ordered pattern list.
// Rules are evaluated top to bottom and patterns within a rule left to
// right; the first column whose lower-cased name matches wins the field.
type detectRule struct {
	assign   func(m *ColumnMapping, col string)
	patterns []*regexp.Regexp
}

func compilePatterns(exprs ...string) []*regexp.Regexp {
	ps := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		ps[i] = regexp.MustCompile(e)
	}
	return ps
}

var detectRules = []detectRule{
	{func(m *ColumnMapping, c string) { m.PositionOverall = c },
		compilePatterns(`position.*overall`, `overall.*pos`, `^pos(n|\.)?$`, `^position$`, `place`, `rank`)},
	{func(m *ColumnMapping, c string) { m.PositionGender = c },
		compilePatterns(`position.*gender`, `gender.*pos`)},
	{func(m *ColumnMapping, c string) { m.PositionCategory = c },
		compilePatterns(`position.*cat`, `cat.*pos`)},
	{func(m *ColumnMapping, c string) { m.Name = c },
		compilePatterns(`name`, `runner`, `participant`)},
	{func(m *ColumnMapping, c string) { m.Bib = c },
		compilePatterns(`bib`, `race.*n(o|umber)`, `^number$`)},
	{func(m *ColumnMapping, c string) { m.Club = c },
		compilePatterns(`club`, `team`, `affiliation`)},
	{func(m *ColumnMapping, c string) { m.ChipTimeSeconds = c },
		compilePatterns(`chip.*second`, `elapsed.*second`)},
	{func(m *ColumnMapping, c string) { m.ChipTimeMinutes = c },
		compilePatterns(`chip.*minute`, `elapsed.*minute`)},
	{func(m *ColumnMapping, c string) { m.GunTimeSeconds = c },
		compilePatterns(`gun.*second`, `start.*second`)},
	{func(m *ColumnMapping, c string) { m.GunTimeMinutes = c },
		compilePatterns(`gun.*minute`, `start.*minute`)},
	{func(m *ColumnMapping, c string) { m.FinishTimeSeconds = c },
		compilePatterns(`finish.*second`, `time.*second`)},
	{func(m *ColumnMapping, c string) { m.FinishTimeMinutes = c },
		compilePatterns(`finish.*minute`, `time.*minute`)},
	{func(m *ColumnMapping, c string) { m.FinishTime = c },
		compilePatterns(`^time$`, `finish.*time`, `final.*time`, `^tiime$`)},
	{func(m *ColumnMapping, c string) { m.AgeCategory = c },
		compilePatterns(`^cat(egory)?\.?:?$`, `age.*cat`, `age.*group`, `^class$`, `cat`)},
	{func(m *ColumnMapping, c string) { m.Gender = c },
		compilePatterns(`gender`, `^sex$`)},
	{func(m *ColumnMapping, c string) { m.RaceYear = c },
		compilePatterns(`year`)},
	{func(m *ColumnMapping, c string) { m.Status = c },
		compilePatterns(`status`, `^result$`, `dnf`, `dns`)},
}

// DetectColumns infers a ColumnMapping from raw column names. Matching is
// case-insensitive. If both a firstname-like and a surname-like column are
// present, the name field is deliberately left unmapped so the Normalizer
// synthesizes a combined name from the two parts instead.
func DetectColumns(columns []string) *ColumnMapping {
	lower := make([]string, len(columns))
	hasFirst, hasSur := false, false
	for i, c := range columns {
		lower[i] = strings.ToLower(strings.TrimSpace(c))
		if strings.Contains(lower[i], "firstname") || strings.Contains(lower[i], "first name") {
			hasFirst = true
		}
		if strings.Contains(lower[i], "surname") || strings.Contains(lower[i], "last name") {
			hasSur = true
		}
	}

	mapping := &ColumnMapping{}
	claimed := make(map[int]bool)
	for _, rule := range detectRules {
		if hasFirst && hasSur && ruleIsName(rule) {
			continue
		}
	match:
		for _, p := range rule.patterns {
			for i, lc := range lower {
				if claimed[i] || !p.MatchString(lc) {
					continue
				}
				rule.assign(mapping, columns[i])
				claimed[i] = true
				break match
			}
		}
	}
	return mapping
}

// ruleIsName reports whether a rule assigns the name field. Probing with a
// scratch mapping avoids tagging rules with field identifiers.
func ruleIsName(r detectRule) bool {
	var probe ColumnMapping
	r.assign(&probe, "x")
	return probe.Name == "x"
}
