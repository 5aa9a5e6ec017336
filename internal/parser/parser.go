// Package parser turns cashier-typed amounts and dates into typed values.
// Inputs may use Western or Arabic-Indic digits.
package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyAmount   = errors.New("amount is required")
	ErrInvalidAmount = errors.New("amount must be a number")
	ErrInvalidDate   = errors.New("date must be YYYY-MM-DD or day followed by month name")
)

var monthNames = map[string]time.Month{
	"يناير": time.January, "jan": time.January, "january": time.January,
	"فبراير": time.February, "feb": time.February, "february": time.February,
	"مارس": time.March, "mar": time.March, "march": time.March,
	"أبريل": time.April, "ابريل": time.April, "apr": time.April, "april": time.April,
	"مايو": time.May, "may": time.May,
	"يونيو": time.June, "jun": time.June, "june": time.June,
	"يوليو": time.July, "jul": time.July, "july": time.July,
	"أغسطس": time.August, "اغسطس": time.August, "aug": time.August, "august": time.August,
	"سبتمبر": time.September, "sep": time.September, "september": time.September,
	"أكتوبر": time.October, "اكتوبر": time.October, "oct": time.October, "october": time.October,
	"نوفمبر": time.November, "nov": time.November, "november": time.November,
	"ديسمبر": time.December, "dec": time.December, "december": time.December,
}

// Thousand multipliers accepted after a number ("5k", "5 ألف").
var thousandSuffixes = []string{"ألف", "الف", "k"}

// NormalizeDigits maps Arabic-Indic and Eastern Arabic-Indic digits to ASCII,
// and the Arabic decimal/thousands separators to '.' and ','.
func NormalizeDigits(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= '٠' && r <= '٩':
			sb.WriteRune('0' + (r - '٠'))
		case r >= '۰' && r <= '۹':
			sb.WriteRune('0' + (r - '۰'))
		case r == '٫':
			sb.WriteRune('.')
		case r == '٬' || r == '،':
			sb.WriteRune(',')
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// ParseAmount parses a money amount such as "1,250.50", "١٢٠", "1.5k".
// Negative amounts are returned as-is; range checks belong to the caller.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.ToLower(strings.TrimSpace(NormalizeDigits(s)))
	if s == "" {
		return decimal.Zero, ErrEmptyAmount
	}

	multiplier := decimal.NewFromInt(1)
	for _, suffix := range thousandSuffixes {
		if strings.HasSuffix(s, suffix) {
			s = strings.TrimSpace(strings.TrimSuffix(s, suffix))
			multiplier = decimal.NewFromInt(1000)
			break
		}
	}

	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return d.Mul(multiplier), nil
}

// ParseDate accepts "2024-01-05" or "5 يناير" / "5 jan" and returns the
// YYYY-MM-DD form. A day-month date that would land more than 30 days after
// now is taken from the previous year.
func ParseDate(s string, now time.Time) (string, error) {
	s = strings.TrimSpace(NormalizeDigits(s))
	if s == "" {
		return "", ErrInvalidDate
	}

	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.Format("2006-01-02"), nil
	}

	t, ok := parseDayMonth(s, now)
	if !ok {
		return "", ErrInvalidDate
	}
	return t.Format("2006-01-02"), nil
}

func parseDayMonth(s string, now time.Time) (time.Time, bool) {
	parts := strings.Fields(strings.ToLower(s))
	if len(parts) != 2 {
		return time.Time{}, false
	}

	day, err := strconv.Atoi(parts[0])
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, false
	}

	month, ok := monthNames[strings.TrimFunc(parts[1], unicode.IsPunct)]
	if !ok {
		return time.Time{}, false
	}

	year := now.Year()
	parsed := time.Date(year, month, day, 0, 0, 0, 0, now.Location())
	if parsed.Day() != day {
		// e.g. 31 فبراير rolled into March
		return time.Time{}, false
	}
	if parsed.After(now.AddDate(0, 0, 30)) {
		parsed = time.Date(year-1, month, day, 0, 0, 0, 0, now.Location())
	}
	return parsed, true
}
