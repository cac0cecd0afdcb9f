package core

// convert.go turns raw text from CSV cells and request bodies into typed values.
//
// Birth dates arrive in US month-first forms with or without zero padding
// (5/1/1990, 05/01/1990) and in day-month-name forms with a two-digit year
// (3-Mar-85). Two-digit years are placed in the hundred-year window that
// starts 100 years before a reference instant, so the same input is read
// consistently for the lifetime of one import.

import (
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// DateRule is one accepted input layout.
type DateRule struct {
	// Layout is a time.Parse layout. Month names match case-insensitively.
	Layout string
	// TwoDigitYear marks layouts whose year is resolved against the
	// reference window instead of taken as parsed.
	TwoDigitYear bool
}

// BirthDateRules lists the accepted birth date layouts in the order they are
// tried. The first rule that accepts the whole input wins.
var BirthDateRules = []DateRule{
	{Layout: "1/2/2006"},
	{Layout: "01/2/2006"},
	{Layout: "1/02/2006"},
	{Layout: "01/02/2006"},
	{Layout: "2-Jan-06", TwoDigitYear: true},
	{Layout: "02-Jan-06", TwoDigitYear: true},
}

// ParseDate parses s with the first matching rule. Surrounding whitespace is
// ignored. Values that do not name a real calendar date are rejected.
func ParseDate(s string, ref time.Time, rules []DateRule) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s != "" {
		for _, rule := range rules {
			t, err := time.Parse(rule.Layout, s)
			if err != nil {
				continue
			}
			if rule.TwoDigitYear {
				var ok bool
				if t, ok = resolveCentury(t, ref); !ok {
					continue
				}
			}
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrDateFormatUnrecognized, s)
}

// resolveCentury moves t into [ref.Year()-100, ref.Year()-1] keeping its last
// two year digits. ok is false when the date does not exist in that year.
func resolveCentury(t, ref time.Time) (time.Time, bool) {
	anchor := ref.Year() - 100
	year := anchor - anchor%100 + t.Year()%100
	if year < anchor {
		year += 100
	}
	d := time.Date(year, t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	if d.Day() != t.Day() {
		return time.Time{}, false
	}
	return d, true
}

// NormalizeDate returns s as an ISO-8601 calendar date (YYYY-MM-DD).
func NormalizeDate(s string, ref time.Time) (string, error) {
	t, err := ParseDate(s, ref, BirthDateRules)
	if err != nil {
		return "", err
	}
	return t.Format(time.DateOnly), nil
}

// ToPgDate converts s to a pgtype.Date using [BirthDateRules].
// Empty input yields an invalid date and no error.
func ToPgDate(s string, ref time.Time) (pgtype.Date, error) {
	if strings.TrimSpace(s) == "" {
		return pgtype.Date{}, nil
	}
	t, err := ParseDate(s, ref, BirthDateRules)
	if err != nil {
		return pgtype.Date{}, err
	}
	return pgtype.Date{Time: t, Valid: true}, nil
}

// SplitLocation splits "City, State" at the first comma. Both parts are
// trimmed; without a comma the whole value is the city.
func SplitLocation(location string) (city, state string) {
	city, state, _ = strings.Cut(location, ",")
	return strings.TrimSpace(city), strings.TrimSpace(state)
}

// MakeHeaderIndex creates a map of lowercase column names to their positions.
// The first occurrence of a duplicated name wins.
func MakeHeaderIndex(header []string) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, h := range header {
		key := strings.ToLower(CleanCell(h))
		if _, dup := idx[key]; !dup {
			idx[key] = i
		}
	}
	return idx
}

// CleanCell removes common CSV artifacts from a cell value:
// surrounding whitespace and an Excel formula wrapper (="...").
func CleanCell(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, `="`) && strings.HasSuffix(s, `"`) && len(s) >= 3 {
		s = strings.TrimSpace(s[2 : len(s)-1])
	}
	return s
}
