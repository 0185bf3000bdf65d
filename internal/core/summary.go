package core

// SummaryWindowDays is how far back the period summary looks (six 30-day months).
const SummaryWindowDays = 30 * 6

// LabelAmount represents an exact amount aggregated by label.
type LabelAmount struct {
	Label  string
	Amount Money
}

// PeriodSummary holds exact per-label sums over [From, To].
type PeriodSummary struct {
	Kind    Kind
	From    Date
	To      Date
	ByLabel []LabelAmount
}

// SummaryWindow returns the inclusive date range ending on today.
func SummaryWindow(today Date) (from, to Date) {
	return today.AddDays(-SummaryWindowDays), today
}
