// Package usage reports embedding token consumption against the budget.
package usage

import (
	"context"
	"fmt"
	"time"
)

// Period is the aggregation granularity.
type Period string

// Aggregation period constants.
const (
	PeriodDay   Period = "day"
	PeriodMonth Period = "month"
)

// ParsePeriod validates a period name. Empty means day.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case "", PeriodDay:
		return PeriodDay, nil
	case PeriodMonth:
		return PeriodMonth, nil
	default:
		return "", fmt.Errorf("unknown usage period %q", s)
	}
}

// Report is the embedding token usage for one budget window.
// Limit and Remaining are 0 and -1 when the window is unlimited.
type Report struct {
	Provider    string `json:"provider,omitempty"`
	Period      Period `json:"period"`
	PeriodStart int64  `json:"period_start"` // unix millis
	PeriodEnd   int64  `json:"period_end"`   // unix millis
	TokensUsed  int64  `json:"tokens_used"`
	Limit       int64  `json:"limit"`
	Remaining   int64  `json:"remaining"`
	Exhausted   bool   `json:"exhausted"`
}

// Service handles usage reporting.
type Service struct {
	br  BudgetReader
	now func() time.Time
}

// New creates a Service. br can be nil (unlimited mode).
func New(br BudgetReader) *Service {
	return &Service{br: br, now: time.Now}
}

// GetReport builds a usage report for the given period.
func (s *Service) GetReport(_ context.Context, period Period) Report {
	now := s.now().UTC()
	r := Report{Period: period, Remaining: -1}
	if s.br != nil {
		r.Provider = s.br.Provider()
	}

	switch period {
	case PeriodMonth:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		r.PeriodStart = start.UnixMilli()
		r.PeriodEnd = start.AddDate(0, 1, 0).UnixMilli()
		if s.br != nil {
			r.Limit, r.TokensUsed, r.Remaining = s.br.MonthlyLimit(), s.br.MonthlyUsed(), s.br.RemainingMonthly()
		}
	default:
		r.Period = PeriodDay
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		r.PeriodStart = start.UnixMilli()
		r.PeriodEnd = start.Add(24 * time.Hour).UnixMilli()
		if s.br != nil {
			r.Limit, r.TokensUsed, r.Remaining = s.br.DailyLimit(), s.br.DailyUsed(), s.br.RemainingDaily()
		}
	}

	r.Exhausted = r.Limit > 0 && r.Remaining <= 0
	return r
}
