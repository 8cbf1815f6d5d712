package usage

// BudgetReader exposes the embedding budget of one provider. Limits of 0
// mean unlimited; Remaining* then report -1.
type BudgetReader interface {
	Provider() string
	DailyLimit() int64
	MonthlyLimit() int64
	DailyUsed() int64
	MonthlyUsed() int64
	RemainingDaily() int64
	RemainingMonthly() int64
}
