package types

import "time"

// BillingPeriod is the half-open window [Start, End) used to decide whether a
// customer has already been invoiced
type BillingPeriod struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// BillingPeriodFor returns the calendar month in UTC containing t
func BillingPeriodFor(t time.Time) BillingPeriod {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return BillingPeriod{
		Start: start,
		End:   start.AddDate(0, 1, 0),
	}
}

// Contains reports whether t falls inside the period
func (p BillingPeriod) Contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End)
}

func (p BillingPeriod) String() string {
	return p.Start.Format("2006-01")
}
