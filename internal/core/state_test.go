package core

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"
)

func sampleState() LedgerState {
	return LedgerState{
		{Category: "rent", Records: []ExpenseRecord{{Amount: NewMoney(900, 0), Description: "march"}}},
		{Category: "food", Records: []ExpenseRecord{
			{Amount: NewMoney(12, 50), Description: "lunch"},
			{Amount: NewMoney(5, 0), Description: "coffee"},
		}},
		{Category: "books", Records: []ExpenseRecord{{Amount: NewMoney(20, 0), Description: ""}}},
	}
}

func TestLedgerStateJSONPreservesCategoryOrder(t *testing.T) {
	b, err := json.Marshal(sampleState())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	out := string(b)
	rent, food, books := strings.Index(out, `"rent"`), strings.Index(out, `"food"`), strings.Index(out, `"books"`)
	if !(rent < food && food < books) {
		t.Fatalf("category order lost: %s", out)
	}
	if !strings.Contains(out, `{"amount":12.5,"description":"lunch"}`) {
		t.Fatalf("unexpected record encoding: %s", out)
	}

	var back LedgerState
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Equal(sampleState()) {
		t.Fatalf("round trip mismatch: %+v", back)
	}
}

func TestLedgerStateUnmarshal(t *testing.T) {
	t.Run("legacy float file", func(t *testing.T) {
		in := `{
    "travel": [{"amount": 120.0, "description": "train"}],
    "food": [{"amount": 12.5, "description": "lunch"}, {"amount": 3, "description": "tea"}]
}`
		var s LedgerState
		if err := json.Unmarshal([]byte(in), &s); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if got := s.Categories(); len(got) != 2 || got[0] != "travel" || got[1] != "food" {
			t.Fatalf("categories = %v", got)
		}
		if s.Total().Cents != 13550 {
			t.Fatalf("total = %d", s.Total().Cents)
		}
	})

	t.Run("empty categories are dropped", func(t *testing.T) {
		var s LedgerState
		if err := json.Unmarshal([]byte(`{"a": [], "b": null, "c": [{"amount": 1, "description": "x"}]}`), &s); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if len(s) != 1 || s[0].Category != "c" {
			t.Fatalf("unexpected state: %+v", s)
		}
	})

	t.Run("empty object", func(t *testing.T) {
		var s LedgerState
		if err := json.Unmarshal([]byte(`{}`), &s); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if len(s) != 0 {
			t.Fatalf("expected empty state, got %+v", s)
		}
	})

	bads := []string{
		`[]`,
		`{"a": [{"amount": 1}], "a": [{"amount": 2}]}`,
		`{"a": {"amount": 1}}`,
		`{"a": [{"amount": "lots"}]}`,
	}
	for _, in := range bads {
		var s LedgerState
		if err := json.Unmarshal([]byte(in), &s); err == nil {
			t.Errorf("%s: expected error", in)
		}
	}
}

func TestLedgerStateCloneIsDeep(t *testing.T) {
	s := sampleState()
	c := s.Clone()
	c[1].Records[0].Description = "changed"
	if s[1].Records[0].Description != "lunch" {
		t.Fatalf("clone shares records with original")
	}
	if s.Len() != 4 || c.Len() != 4 {
		t.Fatalf("unexpected lengths: %d %d", s.Len(), c.Len())
	}
}

func TestLedgerStateTotals(t *testing.T) {
	s := sampleState()
	totals := s.Totals()
	if len(totals) != 3 || totals[1].Name != "food" || totals[1].Amount.Cents != 1750 {
		t.Fatalf("unexpected totals: %+v", totals)
	}
	var sum int64
	for _, ca := range totals {
		sum += ca.Amount.Cents
	}
	if sum != s.Total().Cents {
		t.Fatalf("sum of category totals %d != total %d", sum, s.Total().Cents)
	}
}

func TestLedgerStateCheckTotals(t *testing.T) {
	if err := sampleState().CheckTotals(); err != nil {
		t.Fatalf("CheckTotals: %v", err)
	}
	big := Money{Cents: math.MaxInt64 / 2}
	s := LedgerState{
		{Category: "a", Records: []ExpenseRecord{{Amount: big}, {Amount: Money{Cents: -big.Cents}}}},
		{Category: "b", Records: []ExpenseRecord{{Amount: Money{Cents: 2}}}},
	}
	if err := s.CheckTotals(); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	s = LedgerState{{Category: "a", Records: []ExpenseRecord{{Amount: Money{Cents: math.MinInt64}}}}}
	if err := s.CheckTotals(); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for MinInt64, got %v", err)
	}
}
