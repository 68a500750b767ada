package team

import (
	"strconv"
	"strings"
	"unicode"
)

const (
	minBirthYear = 1950
	maxBirthYear = 2035
)

// DefaultStrippedTokens is the boilerplate vocabulary removed from names
// before matching. "FC Riverside" and "Riverside" are the same club.
var DefaultStrippedTokens = []string{
	"fc", "sc", "cf", "afc", "soccer", "club", "futbol",
}

// Attributes is what a raw provider name decomposes into: the cleaned name
// plus the birth year and gender the provider tucked into suffix tokens.
type Attributes struct {
	NormalizedName string
	BirthYear      int
	Gender         string
}

// ParseRawName normalizes a raw provider team name and extracts the birth
// year and gender encoded in it. Applied steps, in order: bracketed
// qualifiers dropped, lowercased, punctuation flattened to spaces, a leading
// provider roster code (four alphanumerics with a digit, e.g. "7115" or
// "711A") stripped, year/gender tokens ("2015B", "B15") extracted, and
// boilerplate vocabulary removed. The result is idempotent: parsing an
// already-normalized name changes nothing.
func ParseRawName(raw string, strippedTokens []string) Attributes {
	if strippedTokens == nil {
		strippedTokens = DefaultStrippedTokens
	}
	vocab := make(map[string]struct{}, len(strippedTokens))
	for _, tok := range strippedTokens {
		vocab[strings.ToLower(strings.TrimSpace(tok))] = struct{}{}
	}

	cleaned := dropBracketed(strings.TrimSpace(raw))
	cleaned = strings.ToLower(cleaned)
	cleaned = flattenPunctuation(cleaned)

	tokens := strings.Fields(cleaned)
	out := Attributes{}
	kept := make([]string, 0, len(tokens))

	for _, tok := range tokens {
		if year, gender, ok := parseYearGenderToken(tok); ok {
			if out.BirthYear == 0 {
				out.BirthYear = year
			}
			if out.Gender == "" {
				out.Gender = gender
			}
			continue
		}
		if gender, ok := parseGenderWord(tok); ok {
			if out.Gender == "" {
				out.Gender = gender
			}
			continue
		}
		if _, boilerplate := vocab[tok]; boilerplate {
			continue
		}
		kept = append(kept, tok)
	}

	if len(kept) > 1 && isRosterCode(kept[0]) {
		kept = kept[1:]
	}

	out.NormalizedName = strings.Join(kept, " ")
	return out
}

// Normalize is ParseRawName keeping only the name.
func Normalize(raw string, strippedTokens []string) string {
	return ParseRawName(raw, strippedTokens).NormalizedName
}

func dropBracketed(s string) string {
	var b strings.Builder
	depth := 0
	for _, r := range s {
		switch r {
		case '(', '[':
			depth++
		case ')', ']':
			if depth > 0 {
				depth--
			}
		default:
			if depth == 0 {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}

func flattenPunctuation(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return ' '
	}, s)
}

// isRosterCode recognizes the four-character scheduling codes providers
// prefix team names with. A plausible birth year is not a roster code.
func isRosterCode(tok string) bool {
	if len(tok) != 4 {
		return false
	}
	hasDigit := false
	for _, r := range tok {
		switch {
		case r >= '0' && r <= '9':
			hasDigit = true
		case r >= 'a' && r <= 'z':
		default:
			return false
		}
	}
	if !hasDigit {
		return false
	}
	if year, err := strconv.Atoi(tok); err == nil && plausibleBirthYear(year) {
		return false
	}
	return true
}

// parseYearGenderToken handles the provider suffix shapes: "2015", "2015b",
// "b2015", "b15", "15b".
func parseYearGenderToken(tok string) (year int, gender string, ok bool) {
	if y, err := strconv.Atoi(tok); err == nil {
		if plausibleBirthYear(y) {
			return y, "", true
		}
		return 0, "", false
	}

	gender, digits := splitGenderLetter(tok)
	if gender == "" || digits == "" {
		return 0, "", false
	}

	y, err := strconv.Atoi(digits)
	if err != nil {
		return 0, "", false
	}
	switch len(digits) {
	case 2:
		y += 2000
	case 4:
	default:
		return 0, "", false
	}
	if !plausibleBirthYear(y) {
		return 0, "", false
	}
	return y, gender, true
}

func splitGenderLetter(tok string) (gender, digits string) {
	if len(tok) < 3 {
		return "", ""
	}
	switch tok[0] {
	case 'b':
		return GenderBoys, tok[1:]
	case 'g':
		return GenderGirls, tok[1:]
	}
	switch tok[len(tok)-1] {
	case 'b':
		return GenderBoys, tok[:len(tok)-1]
	case 'g':
		return GenderGirls, tok[:len(tok)-1]
	}
	return "", ""
}

func parseGenderWord(tok string) (string, bool) {
	switch tok {
	case "boys":
		return GenderBoys, true
	case "girls":
		return GenderGirls, true
	default:
		return "", false
	}
}

func plausibleBirthYear(year int) bool {
	return year >= minBirthYear && year <= maxBirthYear
}
