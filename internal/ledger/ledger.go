// Package ledger keeps one owner's expenses grouped by category and saves
// the full state through a Store after every change.
package ledger

import (
	"context"
	"fmt"
	"sync"

	"fintrack/internal/core"
)

// Store persists one ledger per owner.
type Store interface {
	// Load returns the saved state for owner, or an empty state if none exists.
	Load(ctx context.Context, owner string) (core.LedgerState, error)
	// Save overwrites the owner's saved state.
	Save(ctx context.Context, owner string, state core.LedgerState) error
}

type Ledger struct {
	mu    sync.Mutex
	store Store
	owner string
	state core.LedgerState
}

// Open loads the session owner's ledger from store.
func Open(ctx context.Context, store Store, session core.Session) (*Ledger, error) {
	if session.Owner == "" {
		return nil, core.ErrEmptyOwner
	}
	state, err := store.Load(ctx, session.Owner)
	if err != nil {
		return nil, fmt.Errorf("load ledger for %s: %w", session.Owner, err)
	}
	if err := state.CheckTotals(); err != nil {
		return nil, fmt.Errorf("%w: load ledger for %s: %w", core.ErrStorage, session.Owner, err)
	}
	return &Ledger{
		store: store,
		owner: session.Owner,
		state: prune(state),
	}, nil
}

func (l *Ledger) Owner() string {
	return l.owner
}

// Add appends a record to category, creating the category if needed.
func (l *Ledger) Add(ctx context.Context, category string, amount core.Money, description string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	next := l.state.Clone()
	rec := core.ExpenseRecord{Amount: amount, Description: description}
	if i := next.Index(category); i >= 0 {
		next[i].Records = append(next[i].Records, rec)
	} else {
		next = append(next, core.CategoryExpenses{Category: category, Records: []core.ExpenseRecord{rec}})
	}
	return l.commit(ctx, next)
}

// Edit replaces the record at index in category.
func (l *Ledger) Edit(ctx context.Context, category string, index int, amount core.Money, description string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	ci, err := l.locate(category, index)
	if err != nil {
		return err
	}
	next := l.state.Clone()
	next[ci].Records[index] = core.ExpenseRecord{Amount: amount, Description: description}
	return l.commit(ctx, next)
}

// Delete removes the record at index in category. A category left without
// records is removed.
func (l *Ledger) Delete(ctx context.Context, category string, index int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	ci, err := l.locate(category, index)
	if err != nil {
		return err
	}
	next := l.state.Clone()
	records := next[ci].Records
	next[ci].Records = append(records[:index], records[index+1:]...)
	if len(next[ci].Records) == 0 {
		next = append(next[:ci], next[ci+1:]...)
	}
	return l.commit(ctx, next)
}

// TotalExpenses sums every record.
func (l *Ledger) TotalExpenses() core.Money {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.Total()
}

// TotalsByCategory returns per-category sums in category insertion order.
func (l *Ledger) TotalsByCategory() []core.CategoryAmount {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.Totals()
}

// ListExpenses returns a snapshot of the ledger. Later changes to the
// ledger are not reflected in it.
func (l *Ledger) ListExpenses() core.LedgerState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.Clone()
}

// Len returns the number of records.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.Len()
}

// Report builds a report labelled with period. All records are included.
func (l *Ledger) Report(period core.Period) (core.Report, error) {
	if err := period.Validate(); err != nil {
		return core.Report{}, fmt.Errorf("%w: %q", err, period)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return core.Report{
		Owner:      l.owner,
		Period:     period,
		Categories: l.state.Clone(),
		ByCategory: l.state.Totals(),
		Total:      l.state.Total(),
	}, nil
}

func (l *Ledger) locate(category string, index int) (int, error) {
	ci := l.state.Index(category)
	if ci < 0 {
		return -1, fmt.Errorf("%w: no category %q", core.ErrInvalidReference, category)
	}
	if n := len(l.state[ci].Records); index < 0 || index >= n {
		return -1, fmt.Errorf("%w: index %d out of range [0,%d) in %q", core.ErrInvalidReference, index, n, category)
	}
	return ci, nil
}

// commit saves next and only then makes it the current state.
func (l *Ledger) commit(ctx context.Context, next core.LedgerState) error {
	if err := next.CheckTotals(); err != nil {
		return err
	}
	if err := l.store.Save(ctx, l.owner, next); err != nil {
		return fmt.Errorf("save ledger for %s: %w", l.owner, err)
	}
	l.state = next
	return nil
}

func prune(state core.LedgerState) core.LedgerState {
	out := make(core.LedgerState, 0, len(state))
	for _, c := range state {
		if len(c.Records) > 0 {
			out = append(out, c)
		}
	}
	return out
}
