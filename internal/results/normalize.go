package results

import (
	"fmt"
	"strconv"
	"strings"
)

// statusTokens are explicit completion-status markers matched against raw
// values before any type conversion. A status token frequently shares a
// source column with the time value ("DNF" in the Time column), so detection
// must happen before the parser discards the unparseable fragment.
var statusTokens = []struct {
	token  string
	status Status
}{
	{"DNF", StatusDNF},
	{"DID NOT FINISH", StatusDNF},
	{"DID-NOT-FINISH", StatusDNF},
	{"DNS", StatusDNS},
	{"DID NOT START", StatusDNS},
	{"DID-NOT-START", StatusDNS},
	{"DSQ", StatusDSQ},
	{"DISQUALIFIED", StatusDSQ},
}

// DetectStatus scans a raw value for an explicit status token.
func DetectStatus(raw string) (Status, bool) {
	upper := strings.ToUpper(strings.TrimSpace(raw))
	if upper == "" {
		return "", false
	}
	for _, st := range statusTokens {
		if strings.Contains(upper, st.token) {
			return st.status, true
		}
	}
	return "", false
}

// ParseStatus interprets a dedicated status-column value, including the
// finished spellings that DetectStatus deliberately ignores.
func ParseStatus(raw string) (Status, bool) {
	if s, ok := DetectStatus(raw); ok {
		return s, true
	}
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "FINISHED", "FINISH":
		return StatusFinished, true
	}
	return "", false
}

// ParseGender interprets a raw gender value, accepting the single-letter
// codes and their spelled-out forms.
func ParseGender(raw string) (Gender, bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "M", "MALE":
		return GenderMale, true
	case "F", "FEMALE", "W", "WOMAN":
		return GenderFemale, true
	case "N", "NB", "NON-BINARY", "NON_BINARY":
		return GenderNonBinary, true
	case "U", "UNKNOWN":
		return GenderUnknown, true
	}
	return "", false
}

// Config controls a Normalizer. The zero value auto-detects columns, parses
// times as HH:MM:SS, uses the default canonical tables, and recovers from
// row-level validation failures instead of propagating them.
type Config struct {
	// Mapping assigns source columns explicitly. A nil or empty mapping
	// triggers auto-detection unless DisableAutoDetect is set; an explicit
	// mapping, even a partial one, is never auto-augmented.
	Mapping *ColumnMapping

	// TimeFormat is one of FormatHMS, FormatMS or FormatSeconds.
	TimeFormat string

	// Tables overrides the canonical lookup tables.
	Tables *CanonicalTables

	// Edition metadata stamped onto every record.
	RaceName     string
	RaceYear     int
	RaceCategory string

	// DefaultAgeCategory is assigned when a row carries neither gender nor
	// category; DefaultGender overrides the gender inferred from it. The
	// stock default of "M" (senior male) is a compatibility policy, not a
	// neutral one, which is why both knobs are surfaced here.
	DefaultAgeCategory string
	DefaultGender      Gender

	// Strict propagates row validation failures instead of recovering.
	Strict bool

	DisableAutoDetect bool
}

// Normalizer converts raw tabular rows into canonical Records.
type Normalizer struct {
	cfg    Config
	parser *TimeParser
	tables CanonicalTables
}

// NewNormalizer validates the configuration and builds a Normalizer. The
// only rejected configuration is an unparseable time format.
func NewNormalizer(cfg Config) (*Normalizer, error) {
	parser, err := NewTimeParser(cfg.TimeFormat)
	if err != nil {
		return nil, err
	}
	tables := DefaultTables()
	if cfg.Tables != nil {
		tables = *cfg.Tables
	}
	if cfg.DefaultAgeCategory == "" {
		cfg.DefaultAgeCategory = "M"
	}
	return &Normalizer{cfg: cfg, parser: parser, tables: tables}, nil
}

// Normalize converts one edition's worth of raw rows into canonical records
// and backfills gender- and category-scoped positions. Columns preserve the
// source order; each row maps column name to raw value.
func (n *Normalizer) Normalize(columns []string, rows []map[string]string) ([]Record, error) {
	mapping := n.cfg.Mapping
	if (mapping == nil || mapping.IsEmpty()) && !n.cfg.DisableAutoDetect {
		mapping = DetectColumns(columns)
	}
	if mapping == nil {
		mapping = &ColumnMapping{}
	}

	records := make([]Record, 0, len(rows))
	for i, row := range rows {
		rec, err := n.normalizeRow(columns, row, mapping)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		records = append(records, rec)
	}

	DerivePositions(records)
	return records, nil
}

func (n *Normalizer) normalizeRow(columns []string, row map[string]string, m *ColumnMapping) (Record, error) {
	get := func(col string) (string, bool) {
		if col == "" {
			return "", false
		}
		v, ok := row[col]
		if !ok || strings.TrimSpace(v) == "" {
			return "", false
		}
		return v, true
	}

	rec := Record{
		RaceName:     n.cfg.RaceName,
		RaceYear:     n.cfg.RaceYear,
		RaceCategory: n.cfg.RaceCategory,
	}

	// Explicit status tokens win over everything else, wherever they appear
	// among the mapped values. Columns are scanned in source order so a row
	// carrying two different tokens resolves the same way every run.
	var status Status
	mappedCols := m.MappedColumns()
	for _, col := range columns {
		if !mappedCols[col] {
			continue
		}
		if v, ok := get(col); ok {
			if s, found := DetectStatus(v); found {
				status = s
				break
			}
		}
	}

	if v, ok := get(m.PositionOverall); ok {
		rec.PositionOverall = parseIntValue(v)
	}
	if v, ok := get(m.PositionGender); ok {
		rec.PositionGender = parseIntValue(v)
	}
	if v, ok := get(m.PositionCategory); ok {
		rec.PositionCategory = parseIntValue(v)
	}
	if v, ok := get(m.Name); ok {
		rec.Name = strings.TrimSpace(v)
	}
	if v, ok := get(m.Bib); ok {
		rec.Bib = strings.TrimSpace(v)
	}
	if v, ok := get(m.Gender); ok {
		if g, found := ParseGender(v); found {
			rec.Gender = g
		}
	}
	if v, ok := get(m.RaceYear); ok {
		if y := parseIntValue(v); y != nil {
			rec.RaceYear = *y
		}
	}
	if status == "" {
		if v, ok := get(m.Status); ok {
			if s, found := ParseStatus(v); found {
				status = s
			}
		}
	}

	// Sources with split name columns get a synthesized "Surname Firstname".
	if rec.Name == "" {
		rec.Name = synthesizeName(columns, row)
	}

	n.parseTimes(&rec, row, m, get)

	switch {
	case status != "":
		rec.Status = status
	case !rec.HasTime():
		rec.Status = StatusDNF
	default:
		rec.Status = StatusFinished
	}

	if v, ok := get(m.Club); ok {
		if club, attached := n.tables.NormalizeClub(v); attached {
			rec.Club = strPtr(club)
		}
	}

	if v, ok := get(m.AgeCategory); ok {
		rec.AgeCategory, rec.Gender = n.tables.ParseAgeCategory(v, rec.Gender)
	}

	// Rows carrying neither gender nor category get the configured default.
	if rec.AgeCategory == "" && (rec.Gender == "" || rec.Gender == GenderUnknown) {
		rec.AgeCategory = n.cfg.DefaultAgeCategory
		if n.cfg.DefaultGender != "" {
			rec.Gender = n.cfg.DefaultGender
		} else {
			rec.Gender = genderFromLetter(rec.AgeCategory[0])
		}
	}

	// Preserve unmapped columns verbatim, skipping empty values.
	for _, col := range columns {
		if mappedCols[col] {
			continue
		}
		if v, ok := row[col]; ok && strings.TrimSpace(v) != "" {
			if rec.Metadata == nil {
				rec.Metadata = make(map[string]string)
			}
			rec.Metadata[col] = v
		}
	}

	if err := rec.Validate(); err != nil {
		if n.cfg.Strict {
			return Record{}, err
		}
		// Retry without the metadata bag; in lenient mode a row never fails.
		rec.Metadata = nil
	}
	return rec, nil
}

// parseTimes runs the time parser over every mapped time-bearing column.
// Minutes-scoped columns also populate the corresponding seconds field so
// the two stay consistent (minutes == seconds/60), and vice versa.
func (n *Normalizer) parseTimes(rec *Record, row map[string]string, m *ColumnMapping, get func(string) (string, bool)) {
	secondsFields := []struct {
		col     string
		seconds **float64
		minutes **float64
	}{
		{m.FinishTimeSeconds, &rec.FinishTimeSeconds, &rec.FinishTimeMinutes},
		{m.FinishTime, &rec.FinishTimeSeconds, &rec.FinishTimeMinutes},
		{m.ChipTimeSeconds, &rec.ChipTimeSeconds, &rec.ChipTimeMinutes},
		{m.GunTimeSeconds, &rec.GunTimeSeconds, &rec.GunTimeMinutes},
	}
	for _, f := range secondsFields {
		v, ok := get(f.col)
		if !ok || *f.seconds != nil {
			continue
		}
		if secs, parsed := n.parser.Parse(v); parsed {
			*f.seconds = floatPtr(secs)
			if *f.minutes == nil {
				*f.minutes = floatPtr(secs / 60)
			}
		}
	}

	minutesFields := []struct {
		col     string
		minutes **float64
		seconds **float64
	}{
		{m.FinishTimeMinutes, &rec.FinishTimeMinutes, &rec.FinishTimeSeconds},
		{m.ChipTimeMinutes, &rec.ChipTimeMinutes, &rec.ChipTimeSeconds},
		{m.GunTimeMinutes, &rec.GunTimeMinutes, &rec.GunTimeSeconds},
	}
	for _, f := range minutesFields {
		v, ok := get(f.col)
		if !ok || *f.minutes != nil {
			continue
		}
		// Plain numeric values are already in minutes; anything with time
		// structure goes through the parser and converts from seconds.
		if mins, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			if sane, ok := saneMinutes(mins); ok {
				*f.minutes = floatPtr(sane)
				if *f.seconds == nil {
					*f.seconds = floatPtr(sane * 60)
				}
			}
			continue
		}
		if secs, parsed := n.parser.Parse(v); parsed {
			*f.minutes = floatPtr(secs / 60)
			if *f.seconds == nil {
				*f.seconds = floatPtr(secs)
			}
		}
	}
}

// synthesizeName combines firstname/surname-like columns into one name,
// surname first, omitting blank parts.
func synthesizeName(columns []string, row map[string]string) string {
	var first, sur string
	for _, col := range columns {
		lc := strings.ToLower(col)
		v := strings.TrimSpace(row[col])
		switch {
		case strings.Contains(lc, "firstname") || strings.Contains(lc, "first name"):
			first = v
		case strings.Contains(lc, "surname") || strings.Contains(lc, "last name"):
			sur = v
		}
	}
	parts := make([]string, 0, 2)
	if sur != "" {
		parts = append(parts, sur)
	}
	if first != "" {
		parts = append(parts, first)
	}
	return strings.Join(parts, " ")
}

func parseIntValue(raw string) *int {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || v < 0 {
		return nil
	}
	return intPtr(int(v))
}
