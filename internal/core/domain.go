package core

import (
	"errors"
	"fmt"
	"strings"
)

const (
	Daily   Period = "daily"
	Weekly  Period = "weekly"
	Monthly Period = "monthly"
	Yearly  Period = "yearly"
)

type (
	// Period labels a report. Reports are not filtered by date.
	Period string

	Money struct {
		Cents int64
	}

	ExpenseRecord struct {
		Amount      Money  `json:"amount"`
		Description string `json:"description"`
	}

	// CategoryExpenses is one category with its records in insertion order.
	CategoryExpenses struct {
		Category string
		Records  []ExpenseRecord
	}

	// Session identifies the owner whose ledger is loaded and saved.
	Session struct {
		Owner string
	}
)

var (
	ErrInvalidReference = errors.New("invalid category or expense index")
	ErrStorage          = errors.New("storage error")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyOwner       = errors.New("empty owner")
	ErrInvalidOwner     = errors.New("invalid owner name")
	ErrEmptyCategory    = errors.New("empty category")
	ErrInvalidPeriod    = errors.New("invalid period")
)

// NewSession returns a session for owner. Surrounding whitespace is ignored.
func NewSession(owner string) (Session, error) {
	owner = strings.TrimSpace(owner)
	if err := ValidateOwner(owner); err != nil {
		return Session{}, err
	}
	return Session{Owner: owner}, nil
}

// ValidateOwner rejects owner names that cannot name a ledger file: empty
// names, "." and "..", and names holding a path separator or NUL.
func ValidateOwner(owner string) error {
	if owner == "" {
		return ErrEmptyOwner
	}
	if owner == "." || owner == ".." || strings.ContainsAny(owner, `/\`+"\x00") {
		return fmt.Errorf("%w %q", ErrInvalidOwner, owner)
	}
	return nil
}

// Periods returns the supported report periods.
func Periods() []Period {
	return []Period{Daily, Weekly, Monthly, Yearly}
}

func (p Period) String() string {
	return string(p)
}

func (p Period) Validate() error {
	switch p {
	case Daily, Weekly, Monthly, Yearly:
		return nil
	default:
		return ErrInvalidPeriod
	}
}

// ParsePeriod accepts a period name in any case.
func ParsePeriod(s string) (Period, error) {
	p := Period(strings.ToLower(strings.TrimSpace(s)))
	if err := p.Validate(); err != nil {
		return "", err
	}
	return p, nil
}

// Total sums the records of the category.
func (c CategoryExpenses) Total() Money {
	var total Money
	for _, r := range c.Records {
		total = total.Add(r.Amount)
	}
	return total
}
