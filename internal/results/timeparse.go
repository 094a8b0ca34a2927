package results

import (
	"fmt"
	"strconv"
	"strings"
)

// Time format specifiers accepted by NewTimeParser.
const (
	FormatHMS     = "HH:MM:SS"
	FormatMS      = "MM:SS"
	FormatSeconds = "seconds"
)

// Sanity ceilings: about ten days. Anything beyond is treated as garbage.
const (
	maxSaneSeconds = 864000
	maxSaneMinutes = 14400
)

// RepairTimeToken fixes common defects in raw time tokens before parsing:
// dot-separated digit groups become colon-separated ("1.00.24" -> "1:00:24"),
// runs of colons collapse to one ("42::51" -> "42:51"), and leading/trailing
// colons are stripped. Returns "" when nothing usable remains. The repair is
// idempotent: repairing an already-valid token is a no-op.
func RepairTimeToken(token string) string {
	fixed := strings.TrimSpace(token)

	if !strings.Contains(fixed, ":") && strings.Contains(fixed, ".") {
		parts := strings.Split(fixed, ".")
		if len(parts) >= 2 && len(parts) <= 3 && allDigits(parts) {
			fixed = strings.Join(parts, ":")
		}
	}

	for strings.Contains(fixed, "::") {
		fixed = strings.ReplaceAll(fixed, "::", ":")
	}

	return strings.Trim(fixed, ":")
}

func allDigits(parts []string) bool {
	for _, p := range parts {
		if p == "" {
			return false
		}
		for _, r := range p {
			if r < '0' || r > '9' {
				return false
			}
		}
	}
	return true
}

// TimeParser converts repaired time tokens into seconds according to a
// declared format. Colon-delimited tokens are interpreted by part count
// regardless of the declared format: three parts read as h:m:s, two as m:s.
type TimeParser struct {
	format string
}

// NewTimeParser returns a parser for the given format specifier. An
// unrecognized format is a configuration error and is the only condition
// under which time handling raises rather than degrading.
func NewTimeParser(format string) (*TimeParser, error) {
	switch format {
	case FormatHMS, FormatMS, FormatSeconds:
		return &TimeParser{format: format}, nil
	case "":
		return &TimeParser{format: FormatHMS}, nil
	}
	return nil, fmt.Errorf("unknown time format %q (want %s, %s, or %s)", format, FormatHMS, FormatMS, FormatSeconds)
}

// Format returns the declared format specifier.
func (p *TimeParser) Format() string { return p.format }

// Parse converts a raw token to seconds. Unparseable tokens report ok=false;
// parsing never returns an error so one bad field cannot abort a row. Tokens
// containing characters outside digits, colons and dots, or longer than a
// plausible time string, are rejected — status markers and free-text notes
// frequently share a column with times.
func (p *TimeParser) Parse(raw string) (seconds float64, ok bool) {
	token := strings.TrimSpace(raw)
	if token == "" || len(token) > 20 || !timeChars(token) {
		return 0, false
	}

	token = RepairTimeToken(token)
	if token == "" {
		return 0, false
	}

	if p.format == FormatSeconds && !strings.Contains(token, ":") {
		v, err := strconv.ParseFloat(token, 64)
		if err != nil {
			return 0, false
		}
		return saneSeconds(v)
	}

	parts := strings.Split(token, ":")
	switch len(parts) {
	case 1:
		v, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return 0, false
		}
		return saneSeconds(v)
	case 2:
		m, err1 := strconv.ParseFloat(parts[0], 64)
		s, err2 := strconv.ParseFloat(parts[1], 64)
		if err1 != nil || err2 != nil {
			return 0, false
		}
		return saneSeconds(m*60 + s)
	case 3:
		h, err1 := strconv.ParseFloat(parts[0], 64)
		m, err2 := strconv.ParseFloat(parts[1], 64)
		s, err3 := strconv.ParseFloat(parts[2], 64)
		if err1 != nil || err2 != nil || err3 != nil {
			return 0, false
		}
		return saneSeconds(h*3600 + m*60 + s)
	}
	return 0, false
}

func saneSeconds(v float64) (float64, bool) {
	if v <= 0 || v > maxSaneSeconds {
		return 0, false
	}
	return v, true
}

func saneMinutes(v float64) (float64, bool) {
	if v <= 0 || v > maxSaneMinutes {
		return 0, false
	}
	return v, true
}

func timeChars(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r == ':' || r == '.':
		default:
			return false
		}
	}
	return true
}
