package season

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	TermFall   = "fall"
	TermSpring = "spring"
)

// Season is the competitive year a batch of observations belongs to. A fall
// term opens the season, a spring term closes the one opened the year
// before, so both 2025_fall and 2026_spring map to code "2025-26".
type Season struct {
	StartYear int
}

// Parse accepts provider season slugs like "2025_fall" or "2026_spring".
func Parse(value string) (Season, error) {
	parts := strings.SplitN(strings.TrimSpace(strings.ToLower(value)), "_", 2)
	if len(parts) != 2 {
		return Season{}, fmt.Errorf("invalid season %q", value)
	}

	year, err := strconv.Atoi(parts[0])
	if err != nil || year < 1900 || year > 2200 {
		return Season{}, fmt.Errorf("invalid season year %q", value)
	}

	switch parts[1] {
	case TermFall:
		return Season{StartYear: year}, nil
	case TermSpring:
		return Season{StartYear: year - 1}, nil
	default:
		return Season{}, fmt.Errorf("invalid season term %q", value)
	}
}

func (s Season) Valid() bool {
	return s.StartYear >= 1900 && s.StartYear <= 2200
}

// Code renders the cross-year season code, e.g. "2025-26".
func (s Season) Code() string {
	return fmt.Sprintf("%d-%02d", s.StartYear, (s.StartYear+1)%100)
}

// AgeGroup derives the U-code for a birth year within this season, e.g.
// birth year 2015 in season 2025-26 is U11.
func (s Season) AgeGroup(birthYear int) string {
	if birthYear <= 0 {
		return ""
	}
	age := s.StartYear + 1 - birthYear
	if age < 4 || age > 19 {
		return ""
	}
	return "U" + strconv.Itoa(age)
}

// BirthYearFor inverts AgeGroup: "U11" in season 2025-26 is birth year 2015.
// Returns 0 when the age group cannot be parsed.
func (s Season) BirthYearFor(ageGroup string) int {
	code := strings.TrimSpace(strings.ToUpper(ageGroup))
	if !strings.HasPrefix(code, "U") {
		return 0
	}
	age, err := strconv.Atoi(code[1:])
	if err != nil || age < 4 || age > 19 {
		return 0
	}
	return s.StartYear + 1 - age
}
