package usage

import (
	"context"
	"testing"
	"time"
)

// --- Mock ---

type mockBudgetReader struct {
	dailyLimit       int64
	monthlyLimit     int64
	dailyUsed        int64
	monthlyUsed      int64
	remainingDaily   int64
	remainingMonthly int64
}

func (m *mockBudgetReader) Provider() string        { return "openai" }
func (m *mockBudgetReader) DailyLimit() int64       { return m.dailyLimit }
func (m *mockBudgetReader) MonthlyLimit() int64     { return m.monthlyLimit }
func (m *mockBudgetReader) DailyUsed() int64        { return m.dailyUsed }
func (m *mockBudgetReader) MonthlyUsed() int64      { return m.monthlyUsed }
func (m *mockBudgetReader) RemainingDaily() int64   { return m.remainingDaily }
func (m *mockBudgetReader) RemainingMonthly() int64 { return m.remainingMonthly }

var fixedNow = time.Date(2026, 10, 18, 15, 30, 0, 0, time.UTC)

func newService(br BudgetReader) *Service {
	s := New(br)
	s.now = func() time.Time { return fixedNow }
	return s
}

// --- Tests ---

func TestGetReport_DailyPeriod(t *testing.T) {
	br := &mockBudgetReader{
		dailyLimit:       10000,
		dailyUsed:        3000,
		remainingDaily:   7000,
		monthlyLimit:     100000,
		monthlyUsed:      50000,
		remainingMonthly: 50000,
	}
	r := newService(br).GetReport(context.Background(), PeriodDay)

	if r.Period != PeriodDay {
		t.Errorf("expected period %q, got %q", PeriodDay, r.Period)
	}
	dayStart := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)
	if r.PeriodStart != dayStart.UnixMilli() {
		t.Errorf("expected period start %d, got %d", dayStart.UnixMilli(), r.PeriodStart)
	}
	if r.PeriodEnd != dayStart.Add(24*time.Hour).UnixMilli() {
		t.Errorf("unexpected period end %d", r.PeriodEnd)
	}
	if r.Limit != 10000 || r.TokensUsed != 3000 || r.Remaining != 7000 {
		t.Errorf("daily numbers: %+v", r)
	}
	if r.Exhausted {
		t.Error("expected not exhausted")
	}
	if r.Provider != "openai" {
		t.Errorf("expected provider openai, got %q", r.Provider)
	}
}

func TestGetReport_MonthlyPeriod(t *testing.T) {
	br := &mockBudgetReader{monthlyLimit: 100000, monthlyUsed: 40000, remainingMonthly: 60000}
	r := newService(br).GetReport(context.Background(), PeriodMonth)

	monthStart := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	if r.PeriodStart != monthStart.UnixMilli() {
		t.Errorf("expected period start %d, got %d", monthStart.UnixMilli(), r.PeriodStart)
	}
	if r.PeriodEnd != time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC).UnixMilli() {
		t.Errorf("unexpected period end %d", r.PeriodEnd)
	}
	if r.Limit != 100000 || r.TokensUsed != 40000 || r.Remaining != 60000 {
		t.Errorf("monthly numbers: %+v", r)
	}
}

func TestGetReport_NilBudgetReader(t *testing.T) {
	r := newService(nil).GetReport(context.Background(), PeriodDay)
	if r.Limit != 0 || r.TokensUsed != 0 {
		t.Errorf("expected zero usage, got %+v", r)
	}
	if r.Remaining != -1 {
		t.Errorf("expected unlimited remaining -1, got %d", r.Remaining)
	}
	if r.Exhausted {
		t.Error("unlimited budget must never be exhausted")
	}
}

func TestGetReport_Exhausted(t *testing.T) {
	br := &mockBudgetReader{dailyLimit: 1000, dailyUsed: 1200, remainingDaily: 0}
	r := newService(br).GetReport(context.Background(), PeriodDay)
	if !r.Exhausted {
		t.Error("expected exhausted")
	}
}

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		in      string
		want    Period
		wantErr bool
	}{
		{"", PeriodDay, false},
		{"day", PeriodDay, false},
		{"month", PeriodMonth, false},
		{"year", "", true},
	}
	for _, tt := range tests {
		got, err := ParsePeriod(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParsePeriod(%q) err = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParsePeriod(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
