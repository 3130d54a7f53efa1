package core

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestParseMonthKey(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"2024-03", true},
		{" 2024-12 ", true},
		{"2024-00", false},
		{"2024-13", false},
		{"2024-3", false},
		{"2024/03", false},
		{"", false},
	}
	for _, tc := range cases {
		_, err := ParseMonthKey(tc.in)
		if tc.ok && err != nil {
			t.Fatalf("%q unexpected error %v", tc.in, err)
		}
		if !tc.ok && !errors.Is(err, ErrInvalidMonthKey) {
			t.Fatalf("%q expected ErrInvalidMonthKey, got %v", tc.in, err)
		}
	}
}

func TestMonthKeyOf(t *testing.T) {
	got := MonthKeyOf(time.Date(2024, time.January, 5, 23, 0, 0, 0, time.UTC))
	if got != "2024-01" {
		t.Fatalf("expected 2024-01, got %s", got)
	}
	if MonthKey("2024-12").Next() != "2025-01" {
		t.Fatalf("year rollover broken")
	}
	if MonthKey("bogus").Next() != "" {
		t.Fatalf("invalid key should have no successor")
	}
	if got := MonthKey("2024-03").Label(); got != "Março 2024" {
		t.Fatalf("unexpected label %q", got)
	}
}

func TestRollingMonthsFrom(t *testing.T) {
	cases := []struct {
		name  string
		now   time.Time
		count int
		want  []MonthKey
	}{
		{
			name:  "crosses year",
			now:   time.Date(2024, time.November, 15, 0, 0, 0, 0, time.UTC),
			count: 4,
			want:  []MonthKey{"2024-11", "2024-12", "2025-01", "2025-02"},
		},
		{
			name:  "day 31 does not skip february",
			now:   time.Date(2024, time.January, 31, 12, 0, 0, 0, time.UTC),
			count: 3,
			want:  []MonthKey{"2024-01", "2024-02", "2024-03"},
		},
		{
			name:  "zero count",
			now:   time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
			count: 0,
			want:  []MonthKey{},
		},
		{
			name:  "negative count",
			now:   time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
			count: -2,
			want:  []MonthKey{},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := RollingMonthsFrom(tc.now, tc.count)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestDistinctMonthsPresent(t *testing.T) {
	s := Snapshot{
		Incomes: []Income{{Month: "2024-03"}, {Month: "2024-01"}},
		Charges: []CardCharge{{Month: "2024-03"}, {Month: "2024-02"}},
		Debits:  []DebitExpense{{Month: "2023-12"}},
	}
	want := []MonthKey{"2023-12", "2024-01", "2024-02", "2024-03"}
	if got := DistinctMonthsPresent(s); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if got := DistinctMonthsPresent(Snapshot{}); len(got) != 0 {
		t.Fatalf("expected no months, got %v", got)
	}
}
