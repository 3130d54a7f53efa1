package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	dateLayout           = "2006-01-02"
	maxDescriptionLength = 200
)

type (
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Income is money received, attributed to a single month.
	Income struct {
		ID          string   `json:"id"`
		Description string   `json:"description,omitempty"`
		Amount      Money    `json:"amount"`
		Month       MonthKey `json:"month"`
	}

	// CardCharge is one credit-card installment line. A purchase split in
	// N installments appears as N separate charges, one per month; this
	// package never synthesizes the siblings.
	CardCharge struct {
		ID                string   `json:"id"`
		Description       string   `json:"description"`
		TotalAmount       Money    `json:"total_amount"`
		InstallmentCount  int      `json:"installment_count"`
		InstallmentIndex  int      `json:"installment_index"`
		InstallmentAmount Money    `json:"installment_amount"`
		StartDate         Date     `json:"start_date"`
		Month             MonthKey `json:"month"`
		Paid              bool     `json:"paid"`
		PaidAmount        *Money   `json:"paid_amount,omitempty"`
	}

	// DebitExpense is an immediate debit payment.
	DebitExpense struct {
		ID          string   `json:"id"`
		Description string   `json:"description"`
		Amount      Money    `json:"amount"`
		Date        Date     `json:"date"`
		Month       MonthKey `json:"month"`
	}

	// Snapshot is the full set of records the projections read from.
	Snapshot struct {
		Incomes []Income       `json:"incomes"`
		Charges []CardCharge   `json:"charges"`
		Debits  []DebitExpense `json:"debits"`
	}
)

var (
	ErrInvalidDay            = errors.New("invalid day")
	ErrInvalidMonth          = errors.New("invalid month")
	ErrInvalidDate           = errors.New("invalid date")
	ErrInvalidAmount         = errors.New("invalid amount")
	ErrEmptyDescription      = errors.New("empty description")
	ErrDescriptionTooLong    = errors.New("description too long (max 200 characters)")
	ErrInvalidInstallment    = errors.New("invalid installment")
	ErrPartialPaymentExceeds = errors.New("partial payment exceeds installment amount")
)

var validationErrors = []error{
	ErrInvalidDay,
	ErrInvalidMonth,
	ErrInvalidDate,
	ErrInvalidAmount,
	ErrEmptyDescription,
	ErrDescriptionTooLong,
	ErrInvalidInstallment,
	ErrPartialPaymentExceeds,
	ErrInvalidMonthKey,
	ErrUnknownIssuer,
}

// IsValidationError reports whether err was caused by invalid record input.
func IsValidationError(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	_, month, day := d.Date()
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// MonthKey returns the month the date falls in.
func (d Date) MonthKey() MonthKey {
	return MonthKeyOf(d.Time)
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("decode date: %w", err)
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func validateDescription(s string) error {
	if strings.TrimSpace(s) == "" {
		return ErrEmptyDescription
	}
	if len(s) > maxDescriptionLength {
		return ErrDescriptionTooLong
	}
	return nil
}

// NewIncome builds a validated income with a fresh id.
func NewIncome(description string, amount Money, month MonthKey) (Income, error) {
	in := Income{
		ID:          uuid.NewString(),
		Description: strings.TrimSpace(description),
		Amount:      amount,
		Month:       month,
	}
	return in, in.Validate()
}

func (in Income) Validate() error {
	if len(in.Description) > maxDescriptionLength {
		return ErrDescriptionTooLong
	}
	if err := in.Amount.Validate(); err != nil {
		return err
	}
	if !in.Month.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidMonthKey, string(in.Month))
	}
	return nil
}

// NewCardCharge records a purchase as the first installment line. The
// installment amount is the total split evenly and rounded to the cent.
func NewCardCharge(description string, total Money, installments int, start Date) (CardCharge, error) {
	if installments < 1 {
		return CardCharge{}, fmt.Errorf("%w: %d installments", ErrInvalidInstallment, installments)
	}
	c := CardCharge{
		ID:                uuid.NewString(),
		Description:       strings.TrimSpace(description),
		TotalAmount:       total,
		InstallmentCount:  installments,
		InstallmentIndex:  1,
		InstallmentAmount: total.SplitEvenly(installments),
		StartDate:         start,
		Month:             start.MonthKey(),
	}
	return c, c.Validate()
}

func (c CardCharge) Validate() error {
	if err := validateDescription(c.Description); err != nil {
		return err
	}
	if err := c.TotalAmount.Validate(); err != nil {
		return fmt.Errorf("total amount: %w", err)
	}
	if err := c.InstallmentAmount.Validate(); err != nil {
		return fmt.Errorf("installment amount: %w", err)
	}
	if c.InstallmentCount < 1 || c.InstallmentIndex < 1 || c.InstallmentIndex > c.InstallmentCount {
		return fmt.Errorf("%w: %d/%d", ErrInvalidInstallment, c.InstallmentIndex, c.InstallmentCount)
	}
	if err := c.StartDate.Validate(); err != nil {
		return fmt.Errorf("start date: %w", err)
	}
	if !c.Month.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidMonthKey, string(c.Month))
	}
	if c.PaidAmount != nil {
		if err := c.PaidAmount.Validate(); err != nil {
			return fmt.Errorf("paid amount: %w", err)
		}
		if c.PaidAmount.Cents > c.InstallmentAmount.Cents {
			return ErrPartialPaymentExceeds
		}
	}
	return nil
}

// SettledAmount is what this charge has drained from the month's balance:
// nothing while unpaid, the partial amount when one was recorded, the full
// installment otherwise.
func (c CardCharge) SettledAmount() Money {
	if !c.Paid {
		return Money{}
	}
	if c.PaidAmount != nil {
		return *c.PaidAmount
	}
	return c.InstallmentAmount
}

// WithPaidState returns a copy with the paid flag set. A previously recorded
// partial amount is kept and counts again once the charge is paid.
func (c CardCharge) WithPaidState(paid bool) CardCharge {
	c.Paid = paid
	return c
}

// WithPartialPayment marks the charge paid for amount, which must not
// exceed the installment.
func (c CardCharge) WithPartialPayment(amount Money) (CardCharge, error) {
	if err := amount.Validate(); err != nil {
		return c, fmt.Errorf("partial payment: %w", err)
	}
	if amount.Cents > c.InstallmentAmount.Cents {
		return c, ErrPartialPaymentExceeds
	}
	c.Paid = true
	c.PaidAmount = &amount
	return c, nil
}

// NewDebitExpense builds a validated debit with a fresh id.
func NewDebitExpense(description string, amount Money, date Date) (DebitExpense, error) {
	d := DebitExpense{
		ID:          uuid.NewString(),
		Description: strings.TrimSpace(description),
		Amount:      amount,
		Date:        date,
		Month:       date.MonthKey(),
	}
	return d, d.Validate()
}

func (d DebitExpense) Validate() error {
	if err := validateDescription(d.Description); err != nil {
		return err
	}
	if err := d.Amount.Validate(); err != nil {
		return err
	}
	if err := d.Date.Validate(); err != nil {
		return err
	}
	if !d.Month.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidMonthKey, string(d.Month))
	}
	return nil
}

// Clone returns a deep copy, so callers can hand it out without sharing
// backing arrays or partial-payment pointers.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Incomes: append([]Income(nil), s.Incomes...),
		Charges: make([]CardCharge, len(s.Charges)),
		Debits:  append([]DebitExpense(nil), s.Debits...),
	}
	for i, c := range s.Charges {
		if c.PaidAmount != nil {
			paid := *c.PaidAmount
			c.PaidAmount = &paid
		}
		out.Charges[i] = c
	}
	return out
}

// FindCharge returns the charge with the given id.
func (s Snapshot) FindCharge(id string) (CardCharge, bool) {
	for _, c := range s.Charges {
		if c.ID == id {
			return c, true
		}
	}
	return CardCharge{}, false
}
