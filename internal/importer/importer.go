// Package importer turns bank card-statement CSV exports into card charges.
//
// The expected layout is a header row followed by rows of at least
// date (YYYY-MM-DD), title and amount. Incomplete rows are skipped one by
// one; only an empty file or a file with no usable row fails the import.
package importer

import (
	"errors"
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"financas/internal/core"
)

var (
	ErrMalformedInput  = errors.New("malformed CSV: expected a header and at least one data row")
	ErrNoRecordsParsed = errors.New("no card charges found in CSV")
)

// Skip reasons reported in Result.Skipped.
const (
	ReasonTooFewFields   = "too few fields"
	ReasonMissingField   = "empty date, title or amount"
	ReasonInvalidAmount  = "amount is not positive"
	ReasonInvalidDate    = "date is not YYYY-MM-DD"
	ReasonTooManyParcels = "installment count is out of range"
	ReasonInvalidCharge  = "charge does not validate"
	minFieldsPerRow      = 3
	dateFieldPrefixBytes = 10
	maxInstallmentCount  = 420
)

var (
	installmentPattern = regexp.MustCompile(`(?i)Parcela\s+(\d+)/(\d+)`)
	installmentSuffix  = regexp.MustCompile(`(?i)\s*-\s*Parcela\s+\d+/\d+`)
	numericPrefix      = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?`)
)

// SkippedRow describes a data row that produced no charge. Row counts
// non-blank lines from 1, so the header is row 1.
type SkippedRow struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

type Result struct {
	Charges []core.CardCharge `json:"charges"`
	Skipped []SkippedRow      `json:"skipped,omitempty"`
}

// ParseCardChargesCSV returns the charges parsed from content in row order.
func ParseCardChargesCSV(content string) ([]core.CardCharge, error) {
	res, err := Parse(content)
	if err != nil {
		return nil, err
	}
	return res.Charges, nil
}

// Parse is ParseCardChargesCSV that also reports which rows were dropped.
func Parse(content string) (Result, error) {
	var lines []string
	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) < 2 {
		return Result{}, ErrMalformedInput
	}

	var res Result
	for i, line := range lines[1:] {
		c, reason := parseRow(line)
		if reason != "" {
			res.Skipped = append(res.Skipped, SkippedRow{Row: i + 2, Reason: reason})
			continue
		}
		res.Charges = append(res.Charges, c)
	}

	slog.Debug("Parsed card charges CSV",
		"rows", len(lines)-1,
		"charges", len(res.Charges),
		"skipped", len(res.Skipped),
	)

	if len(res.Charges) == 0 {
		return res, ErrNoRecordsParsed
	}
	return res, nil
}

func parseRow(line string) (core.CardCharge, string) {
	fields := splitFields(line)
	if len(fields) < minFieldsPerRow {
		return core.CardCharge{}, ReasonTooFewFields
	}
	date, title, rawAmount := fields[0], fields[1], fields[2]
	if date == "" || title == "" || rawAmount == "" {
		return core.CardCharge{}, ReasonMissingField
	}

	amount := parseLocaleAmount(rawAmount)
	if amount.Cents <= 0 {
		return core.CardCharge{}, ReasonInvalidAmount
	}

	if len(date) < dateFieldPrefixBytes {
		return core.CardCharge{}, ReasonInvalidDate
	}
	start, err := core.ParseDate(date[:dateFieldPrefixBytes])
	if err != nil {
		return core.CardCharge{}, ReasonInvalidDate
	}

	description, index, count := splitInstallment(title)
	if count > maxInstallmentCount {
		return core.CardCharge{}, ReasonTooManyParcels
	}
	total := amount
	if count > 1 {
		if amount.Cents > math.MaxInt64/int64(count) {
			return core.CardCharge{}, ReasonInvalidAmount
		}
		total = core.Money{Cents: amount.Cents * int64(count)}
	}

	c := core.CardCharge{
		ID:                uuid.NewString(),
		Description:       description,
		TotalAmount:       total,
		InstallmentCount:  count,
		InstallmentIndex:  index,
		InstallmentAmount: amount,
		StartDate:         start,
		Month:             core.MonthKey(date[:7]),
		Paid:              false,
	}
	if err := c.Validate(); err != nil {
		return core.CardCharge{}, ReasonInvalidCharge
	}
	return c, ""
}

// splitFields splits on commas outside double quotes. Quote characters are
// dropped and every field is trimmed.
func splitFields(line string) []string {
	var fields []string
	var cur strings.Builder
	inQuotes := false
	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == ',' && !inQuotes:
			fields = append(fields, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	return append(fields, strings.TrimSpace(cur.String()))
}

// parseLocaleAmount reads a decimal-comma amount such as "1234,56". Only the
// first comma becomes the decimal point and only the leading numeric part
// counts, so "12,50 BRL" is 12.50 and anything unreadable is zero.
func parseLocaleAmount(s string) core.Money {
	clean := strings.Map(func(r rune) rune {
		if r == '"' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	clean = strings.Replace(clean, ",", ".", 1)

	num := numericPrefix.FindString(clean)
	if num == "" {
		return core.Money{}
	}
	d, err := decimal.NewFromString(strings.TrimPrefix(num, "+"))
	if err != nil {
		return core.Money{}
	}
	return core.MoneyFromDecimal(d)
}

// splitInstallment extracts "Parcela i/n" from a title. Titles without a
// usable marker are a single installment.
func splitInstallment(title string) (description string, index, count int) {
	title = strings.TrimSpace(title)
	m := installmentPattern.FindStringSubmatch(title)
	if m == nil {
		return title, 1, 1
	}
	index, errIndex := strconv.Atoi(m[1])
	count, errCount := strconv.Atoi(m[2])
	if errIndex != nil || errCount != nil || count < 1 || index < 1 || index > count {
		return title, 1, 1
	}

	description = title
	if loc := installmentSuffix.FindStringIndex(title); loc != nil {
		description = title[:loc[0]] + title[loc[1]:]
	}
	description = strings.TrimSpace(description)
	if description == "" {
		description = title
	}
	return description, index, count
}
