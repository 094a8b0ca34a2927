package results

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CanonicalTables holds the lookup data used to canonicalize club names and
// age-category codes. Tables are immutable once constructed; tests substitute
// alternate tables rather than mutating the defaults.
type CanonicalTables struct {
	// UnattachedTokens map (upper-cased) to the no-club sentinel.
	UnattachedTokens map[string]bool
	// ClubSynonyms maps lower-cased, dot-stripped club variants to one
	// canonical club string.
	ClubSynonyms map[string]string
	// ClubSuffixes are stripped from club names when no synonym matched,
	// checked in order; the most specific suffixes come first.
	ClubSuffixes []string
	// CategoryCodes maps upper-cased age-category variants to the
	// standardized code.
	CategoryCodes map[string]string
	// MaleVeteranAliases are legacy codes that imply male without a
	// leading M ("V", "VM", "SV", "SSV").
	MaleVeteranAliases map[string]bool
}

// DefaultTables returns the stock lookup tables covering the common Scottish
// hill-running club variants and UK age-category conventions.
func DefaultTables() CanonicalTables {
	return CanonicalTables{
		UnattachedTokens: map[string]bool{
			"U/A": true, "UA": true, "N/A": true, "NA": true, "UNATTACHED": true, "": true,
		},
		ClubSynonyms: map[string]string{
			"westies":                        "Westerlands CCC",
			"westerlands":                    "Westerlands CCC",
			"westerlands ccc":                "Westerlands CCC",
			"westerlands cross country club": "Westerlands CCC",
			"hbt":                            "Hunters Bog Trotters",
			"hunters bog trotters":           "Hunters Bog Trotters",
			"ochil hr":                       "Ochil Hill Runners",
			"ochils hr":                      "Ochil Hill Runners",
			"ochil hill runners":             "Ochil Hill Runners",
			"ochils hill runners":            "Ochil Hill Runners",
			"lothian rc":                     "Lothian RC",
			"lothian":                        "Lothian RC",
			"lochtayside":                    "Lochtayside",
			"lochtay":                        "Lochtayside",
			"north ayrshire":                 "North Ayrshire AC",
			"north ayrshire ac":              "North Ayrshire AC",
			"north ayrshire athletics club":  "North Ayrshire AC",
			"carnegie harriers":              "Carnegie Harriers",
			"shettleston harriers":           "Shettleston Harriers",
			"deeside runners":                "Deeside Runners",
			"bellahouston road runners":      "Bellahouston Road Runners",
			"dumfries rc":                    "Dumfries RC",
			"dumfries running club":          "Dumfries RC",
			"galloway harriers":              "Galloway Harriers",
			"moorfoot runners":               "Moorfoot Runners",
			"penicuik harriers":              "Penicuik Harriers",
			"portobello rrc":                 "Portobello RRC",
			"tinto hill runners":             "Tinto Hill Runners",
			"teviotdale harriers":            "Teviotdale Harriers",
			"fife ac":                        "Fife AC",
		},
		ClubSuffixes: []string{
			" HRC",
			" H.R.C.",
			" Hill Running Club",
			" AC",
			" A.C.",
			" Athletic Club",
			" Harriers",
			" RC",
			" R.C.",
			" Running Club",
			" AAC",
			" A.A.C.",
		},
		CategoryCodes: map[string]string{
			// Male veterans
			"V": "M40", "VM": "M40", "MV": "M40", "M40": "M40", "V40": "M40",
			"SV": "M50", "MSV": "M50", "M50": "M50", "V50": "M50",
			"SSV": "M60", "M60": "M60", "V60": "M60",
			"M70": "M70", "V70": "M70",
			// Female veterans
			"FV": "F40", "F40": "F40", "VF": "F40", "LV": "F40",
			"FSV": "F50", "F50": "F50",
			"FSSV": "F60", "F60": "F60",
			// Juniors
			"J": "U20", "JNR": "U20", "JUNIOR": "U20", "U20": "U20",
			// Gender only
			"M": "M", "F": "F", "L": "F",
		},
		MaleVeteranAliases: map[string]bool{
			"V": true, "VM": true, "SV": true, "SSV": true,
		},
	}
}

var titleCaser = cases.Title(language.BritishEnglish)

// NormalizeClub canonicalizes a raw club value. The second return is false
// for unattached runners (explicit unattached tokens or an empty value),
// which is distinct from any club string. When no synonym matches, one
// matching suffix is stripped and the remainder is title-cased.
func (t CanonicalTables) NormalizeClub(raw string) (string, bool) {
	club := strings.TrimSpace(raw)
	if t.UnattachedTokens[strings.ToUpper(club)] {
		return "", false
	}

	key := strings.TrimSpace(strings.ReplaceAll(strings.ToLower(club), ".", ""))
	if canonical, ok := t.ClubSynonyms[key]; ok {
		return canonical, true
	}

	upper := strings.ToUpper(club)
	for _, suffix := range t.ClubSuffixes {
		if strings.HasSuffix(upper, strings.ToUpper(suffix)) {
			club = strings.TrimSpace(club[:len(club)-len(suffix)])
			break
		}
	}

	club = titleCaser.String(strings.ToLower(club))
	if club == "" {
		return "", false
	}
	return club, true
}

// ParseAgeCategory standardizes an age-category code and infers gender from
// it when the caller has none. Unrecognized codes pass through unchanged.
// Codes starting with F or L imply female; codes starting with M and the
// legacy male-veteran aliases imply male.
func (t CanonicalTables) ParseAgeCategory(raw string, gender Gender) (string, Gender) {
	code := strings.ToUpper(strings.TrimSpace(raw))
	if code == "" {
		return "", gender
	}

	canonical, ok := t.CategoryCodes[code]
	if !ok {
		return strings.TrimSpace(raw), gender
	}

	if gender == "" || gender == GenderUnknown {
		switch {
		case strings.HasPrefix(code, "F"), strings.HasPrefix(code, "L"):
			gender = GenderFemale
		case strings.HasPrefix(code, "M"), t.MaleVeteranAliases[code]:
			gender = GenderMale
		}
	}
	return canonical, gender
}
