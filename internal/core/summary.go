package core

import "fmt"

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount Money
}

// Report is the listing and totals of one ledger, labelled with a period.
type Report struct {
	Owner      string
	Period     Period
	Categories LedgerState
	ByCategory []CategoryAmount
	Total      Money
}

// Totals returns the per-category sums of s in category order.
func (s LedgerState) Totals() []CategoryAmount {
	out := make([]CategoryAmount, 0, len(s))
	for _, c := range s {
		out = append(out, CategoryAmount{Name: c.Category, Amount: c.Total()})
	}
	return out
}

// Total sums every record in s.
func (s LedgerState) Total() Money {
	var total Money
	for _, c := range s {
		total = total.Add(c.Total())
	}
	return total
}

// CheckTotals reports ErrInvalidAmount if the magnitudes of all records in s
// do not fit in int64. Any partial sum of s is then exact.
func (s LedgerState) CheckTotals() error {
	var bound Money
	for _, c := range s {
		for _, r := range c.Records {
			abs := r.Amount
			if abs.Cents < 0 {
				abs.Cents = -abs.Cents
			}
			next, ok := bound.AddChecked(abs)
			if abs.Cents < 0 || !ok {
				return fmt.Errorf("%w: ledger total out of range", ErrInvalidAmount)
			}
			bound = next
		}
	}
	return nil
}
