package report

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestResolveYesterday(t *testing.T) {
	p, err := Resolve(PeriodYesterday, date(2024, 3, 15))
	if err != nil {
		t.Fatal(err)
	}
	want := date(2024, 3, 14)
	if !p.From.Equal(want) || !p.To.Equal(want) {
		t.Fatalf("got %v..%v, want %v..%v", p.From, p.To, want, want)
	}
	if p.Empty() {
		t.Fatal("single-day period must not be empty")
	}
}

func TestResolveWeek(t *testing.T) {
	// 2024-03-15 is a Friday; the week runs Monday through yesterday.
	p, err := Resolve(PeriodWeek, date(2024, 3, 15))
	if err != nil {
		t.Fatal(err)
	}
	if !p.From.Equal(date(2024, 3, 11)) {
		t.Fatalf("from = %v, want Monday 2024-03-11", p.From)
	}
	if !p.To.Equal(date(2024, 3, 14)) {
		t.Fatalf("to = %v, want 2024-03-14", p.To)
	}
}

func TestResolveWeekOnMonday(t *testing.T) {
	// On a Monday the week has no finished days yet: the range inverts
	// and Empty reports it.
	p, err := Resolve(PeriodWeek, date(2024, 3, 11))
	if err != nil {
		t.Fatal(err)
	}
	if !p.From.Equal(date(2024, 3, 11)) || !p.To.Equal(date(2024, 3, 10)) {
		t.Fatalf("got %v..%v", p.From, p.To)
	}
	if !p.Empty() {
		t.Fatal("week on Monday must be empty")
	}
}

func TestResolveMonthOnFirstDay(t *testing.T) {
	p, err := Resolve(PeriodMonth, date(2024, 3, 1))
	if err != nil {
		t.Fatal(err)
	}
	if !p.From.Equal(date(2024, 3, 1)) || !p.To.Equal(date(2024, 2, 29)) {
		t.Fatalf("got %v..%v, want 2024-03-01..2024-02-29", p.From, p.To)
	}
	if !p.Empty() {
		t.Fatal("month on the 1st must be empty")
	}
}

func TestResolveMonthMidMonth(t *testing.T) {
	p, err := Resolve(PeriodMonth, date(2024, 3, 15))
	if err != nil {
		t.Fatal(err)
	}
	if !p.From.Equal(date(2024, 3, 1)) || !p.To.Equal(date(2024, 3, 14)) {
		t.Fatalf("got %v..%v", p.From, p.To)
	}
}

func TestResolveUnknownToken(t *testing.T) {
	if _, err := Resolve("quarter", date(2024, 3, 15)); err == nil {
		t.Fatal("want error for unknown token")
	}
}
