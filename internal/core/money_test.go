package core

import (
	"encoding/json"
	"math"
	"testing"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half away from zero
		{"12.345", 1235, true},
		{" 2.50 ", 250, true},
		{"-1", -100, true},
		{"-0.015", -2, true},
		{"0", 0, true},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
		{"   ", 0, false},
		{"99999999999999999999999", 0, false},
		{"92233720368547758.07", 0, false},
		{"10000000000000", 1_000_000_000_000_000, true},
		{"-10000000000000", -1_000_000_000_000_000, true},
		{"10000000000000.01", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got.Cents != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got.Cents, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestNewMoney(t *testing.T) {
	if got := NewMoney(12, 50); got.Cents != 1250 {
		t.Fatalf("NewMoney(12, 50) = %d", got.Cents)
	}
	if got := NewMoney(-3, 50); got.Cents != -350 {
		t.Fatalf("NewMoney(-3, 50) = %d", got.Cents)
	}
}

func TestMoneyAdd(t *testing.T) {
	const max = math.MaxInt64
	cases := []struct {
		a, b int64
		want int64
		ok   bool
	}{
		{1250, 350, 1600, true},
		{-100, 40, -60, true},
		{max, 0, max, true},
		{max, 1, max, false},
		{max - 6, max - 6, max, false},
		{math.MinInt64, -1, math.MinInt64, false},
	}
	for _, tc := range cases {
		a, b := Money{Cents: tc.a}, Money{Cents: tc.b}
		if got := a.Add(b); got.Cents != tc.want {
			t.Errorf("%d + %d = %d, want %d", tc.a, tc.b, got.Cents, tc.want)
		}
		if _, ok := a.AddChecked(b); ok != tc.ok {
			t.Errorf("AddChecked(%d, %d) ok = %v, want %v", tc.a, tc.b, ok, tc.ok)
		}
	}
}

func TestMoneyString(t *testing.T) {
	cases := map[int64]string{
		0:     "0.00",
		1:     "0.01",
		1250:  "12.50",
		-350:  "-3.50",
		10000: "100.00",
	}
	for cents, want := range cases {
		if got := (Money{Cents: cents}).String(); got != want {
			t.Errorf("Money{%d}.String() = %q, want %q", cents, got, want)
		}
	}
}

func TestMoneyJSONIsBareNumber(t *testing.T) {
	cases := map[int64]string{
		1250: "12.5",
		1000: "10",
		0:    "0",
		-5:   "-0.05",
	}
	for cents, want := range cases {
		b, err := json.Marshal(Money{Cents: cents})
		if err != nil {
			t.Fatalf("marshal %d: %v", cents, err)
		}
		if string(b) != want {
			t.Errorf("marshal %d = %s, want %s", cents, b, want)
		}
	}
}

func TestMoneyUnmarshalJSON(t *testing.T) {
	cases := []struct {
		in   string
		want int64
		ok   bool
	}{
		{`12.5`, 1250, true},
		{`10`, 1000, true},
		{`"3.10"`, 310, true},
		{`0.333`, 33, true},
		{`null`, 0, true},
		{`"x"`, 0, false},
		{`92233720368547758.07`, 0, false},
		{`true`, 0, false},
	}
	for _, tc := range cases {
		var m Money
		err := json.Unmarshal([]byte(tc.in), &m)
		if tc.ok && (err != nil || m.Cents != tc.want) {
			t.Errorf("%s: got %d err=%v, want %d", tc.in, m.Cents, err, tc.want)
		}
		if !tc.ok && err == nil {
			t.Errorf("%s: expected error", tc.in)
		}
	}
}
