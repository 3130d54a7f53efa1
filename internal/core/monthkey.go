package core

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// MonthKey identifies a calendar month as "YYYY-MM". Keys sort
// chronologically as plain strings.
type MonthKey string

var ErrInvalidMonthKey = errors.New("invalid month key")

var monthNames = [...]string{
	"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
}

func monthKeyFromParts(year, month int) MonthKey {
	return MonthKey(fmt.Sprintf("%04d-%02d", year, month))
}

// MonthKeyOf returns the key of the month t falls in, using t's own location.
func MonthKeyOf(t time.Time) MonthKey {
	return monthKeyFromParts(t.Year(), int(t.Month()))
}

// TodayKey returns the key of the current local month.
func TodayKey() MonthKey {
	return MonthKeyOf(time.Now())
}

// ParseMonthKey validates s as a month key.
func ParseMonthKey(s string) (MonthKey, error) {
	k := MonthKey(strings.TrimSpace(s))
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidMonthKey, s)
	}
	return k, nil
}

func (k MonthKey) parts() (year, month int, ok bool) {
	s := string(k)
	if len(s) != 7 || s[4] != '-' {
		return 0, 0, false
	}
	y, err := strconv.Atoi(s[:4])
	if err != nil || y < 0 {
		return 0, 0, false
	}
	m, err := strconv.Atoi(s[5:])
	if err != nil || m < 1 || m > 12 {
		return 0, 0, false
	}
	return y, m, true
}

func (k MonthKey) Valid() bool {
	_, _, ok := k.parts()
	return ok
}

// Year returns the key's year, or 0 when the key is invalid.
func (k MonthKey) Year() int {
	y, _, _ := k.parts()
	return y
}

// Month returns the key's month (1-12), or 0 when the key is invalid.
func (k MonthKey) Month() int {
	_, m, _ := k.parts()
	return m
}

// Next returns the following month. An invalid key yields "".
func (k MonthKey) Next() MonthKey {
	y, m, ok := k.parts()
	if !ok {
		return ""
	}
	if m == 12 {
		return monthKeyFromParts(y+1, 1)
	}
	return monthKeyFromParts(y, m+1)
}

// Label renders the key for reports, e.g. "Março 2024".
func (k MonthKey) Label() string {
	y, m, ok := k.parts()
	if !ok {
		return string(k)
	}
	return fmt.Sprintf("%s %d", monthNames[m-1], y)
}

func (k MonthKey) String() string {
	return string(k)
}

// MonthsFrom returns count consecutive keys starting at start. Month
// arithmetic is done on year/month, so a day-31 clock never skips a month.
func MonthsFrom(start MonthKey, count int) []MonthKey {
	if count <= 0 || !start.Valid() {
		return []MonthKey{}
	}
	out := make([]MonthKey, 0, count)
	for k := start; len(out) < count; k = k.Next() {
		out = append(out, k)
	}
	return out
}

// RollingMonthsFrom returns count keys starting at the month of now.
func RollingMonthsFrom(now time.Time, count int) []MonthKey {
	return MonthsFrom(MonthKeyOf(now), count)
}

// RollingMonths returns count keys starting at the current month.
func RollingMonths(count int) []MonthKey {
	return RollingMonthsFrom(time.Now(), count)
}

// DistinctMonthsPresent lists every month referenced by any record, sorted
// ascending.
func DistinctMonthsPresent(s Snapshot) []MonthKey {
	seen := make(map[MonthKey]struct{})
	for _, in := range s.Incomes {
		seen[in.Month] = struct{}{}
	}
	for _, c := range s.Charges {
		seen[c.Month] = struct{}{}
	}
	for _, d := range s.Debits {
		seen[d.Month] = struct{}{}
	}
	out := make([]MonthKey, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
