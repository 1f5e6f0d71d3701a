package core

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// LedgerState maps categories to their records, keeping categories in the
// order they were first added. It encodes as a JSON object in that order.
type LedgerState []CategoryExpenses

// Index returns the position of category, or -1.
func (s LedgerState) Index(category string) int {
	for i, c := range s {
		if c.Category == category {
			return i
		}
	}
	return -1
}

// Records returns the records of category and whether it exists.
func (s LedgerState) Records(category string) ([]ExpenseRecord, bool) {
	i := s.Index(category)
	if i < 0 {
		return nil, false
	}
	return s[i].Records, true
}

// Categories returns the category names in order.
func (s LedgerState) Categories() []string {
	out := make([]string, len(s))
	for i, c := range s {
		out[i] = c.Category
	}
	return out
}

// Len returns the number of records across all categories.
func (s LedgerState) Len() int {
	n := 0
	for _, c := range s {
		n += len(c.Records)
	}
	return n
}

// Clone returns a deep copy of s.
func (s LedgerState) Clone() LedgerState {
	out := make(LedgerState, len(s))
	for i, c := range s {
		out[i] = CategoryExpenses{
			Category: c.Category,
			Records:  append([]ExpenseRecord(nil), c.Records...),
		}
	}
	return out
}

// Equal reports whether s and o hold the same categories, in the same
// order, with the same records.
func (s LedgerState) Equal(o LedgerState) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if s[i].Category != o[i].Category || len(s[i].Records) != len(o[i].Records) {
			return false
		}
		for j := range s[i].Records {
			if s[i].Records[j] != o[i].Records[j] {
				return false
			}
		}
	}
	return true
}

func (s LedgerState) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c.Category)
		if err != nil {
			return nil, err
		}
		records := c.Records
		if records == nil {
			records = []ExpenseRecord{}
		}
		value, err := json.Marshal(records)
		if err != nil {
			return nil, fmt.Errorf("category %q: %w", c.Category, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object of category arrays, preserving key order.
// Duplicate categories are rejected and empty ones are dropped.
func (s *LedgerState) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*s = LedgerState{}
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("expected ledger object, got %v", tok)
	}

	out := LedgerState{}
	seen := make(map[string]struct{})
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		category, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected category name, got %v", tok)
		}
		if _, dup := seen[category]; dup {
			return fmt.Errorf("duplicate category %q", category)
		}
		seen[category] = struct{}{}

		var records []ExpenseRecord
		if err := dec.Decode(&records); err != nil {
			return fmt.Errorf("category %q: %w", category, err)
		}
		if len(records) == 0 {
			continue
		}
		out = append(out, CategoryExpenses{Category: category, Records: records})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*s = out
	return nil
}
