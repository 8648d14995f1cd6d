// Package timeparsing provides layered parsing for due-date expressions.
//
// The parsing is layered:
//  1. Compact duration (+6h, -1d, +2w)
//  2. Absolute timestamp (RFC3339, date-only)
//  3. Natural language (tomorrow, next monday)
package timeparsing

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// compactDurationRe matches compact duration patterns: [+-]?(\d+)([hdwmy])
// Examples: +6h, -1d, +2w, 3m, 1y
var compactDurationRe = regexp.MustCompile(`^([+-]?)(\d+)([hdwmy])$`)

// nlpParser is the shared natural-language parser. when.Parser is safe for
// concurrent Parse calls once the rules are added.
var nlpParser = newNLPParser()

func newNLPParser() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}

// ParseDueDate parses a due-date expression against the given reference
// time, trying each layer in order.
func ParseDueDate(s string, now time.Time) (time.Time, error) {
	if IsCompactDuration(s) {
		return ParseCompactDuration(s, now)
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", s, now.Location()); err == nil {
		return t, nil
	}
	return ParseNaturalLanguage(s, now)
}

// ParseCompactDuration parses compact duration syntax and returns the
// resulting time.
//
// Format: [+-]?(\d+)([hdwmy])
//
// Units:
//   - h = hours
//   - d = days
//   - w = weeks
//   - m = months
//   - y = years
//
// Examples:
//   - "+6h" -> now + 6 hours
//   - "-1d" -> now - 1 day
//   - "3m"  -> now + 3 months (no sign = positive)
//
// Returns error if input doesn't match the compact duration pattern.
func ParseCompactDuration(s string, now time.Time) (time.Time, error) {
	matches := compactDurationRe.FindStringSubmatch(s)
	if matches == nil {
		return time.Time{}, fmt.Errorf("not a compact duration: %q", s)
	}

	sign := matches[1]
	amountStr := matches[2]
	unit := matches[3]

	amount, err := strconv.Atoi(amountStr)
	if err != nil {
		// Should not happen given regex ensures digits, but handle gracefully
		return time.Time{}, fmt.Errorf("invalid duration amount: %q", amountStr)
	}

	if sign == "-" {
		amount = -amount
	}

	return applyDuration(now, amount, unit), nil
}

// applyDuration applies the given amount and unit to the base time.
func applyDuration(base time.Time, amount int, unit string) time.Time {
	switch unit {
	case "h":
		return base.Add(time.Duration(amount) * time.Hour)
	case "d":
		return base.AddDate(0, 0, amount)
	case "w":
		return base.AddDate(0, 0, amount*7)
	case "m":
		return base.AddDate(0, amount, 0)
	case "y":
		return base.AddDate(amount, 0, 0)
	default:
		// Should not happen given regex, but return base unchanged
		return base
	}
}

// IsCompactDuration returns true if the string matches compact duration syntax.
func IsCompactDuration(s string) bool {
	return compactDurationRe.MatchString(s)
}

// ParseNaturalLanguage parses expressions like "tomorrow" or "next monday"
// against the given reference time.
func ParseNaturalLanguage(s string, now time.Time) (time.Time, error) {
	r, err := nlpParser.Parse(s, now)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse %q: %w", s, err)
	}
	if r == nil {
		return time.Time{}, fmt.Errorf("unrecognized time expression: %q", s)
	}
	return r.Time, nil
}
