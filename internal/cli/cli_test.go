package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	"fintrack/internal/storage"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"FINTRACK_USER", "DATA_DIR", "DATA_BACKEND", "SQLITE_DB_PATH", "AMQP_URL", "LOG_LEVEL"} {
		t.Setenv(k, "")
	}
}

type result struct {
	out    string
	errOut string
	err    error
}

func run(t *testing.T, input string, args ...string) result {
	t.Helper()
	var out, errOut bytes.Buffer
	err := Run(context.Background(), args, Options{
		In:          strings.NewReader(input),
		Out:         &out,
		Err:         &errOut,
		AuthOptions: []auth.Option{auth.WithCost(bcrypt.MinCost)},
	})
	return result{out: out.String(), errOut: errOut.String(), err: err}
}

func TestCommandsAgainstFileBackend(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	base := []string{"--user", "alice", "--data-dir", dir}
	with := func(extra ...string) []string { return append(append([]string{}, base...), extra...) }

	r := run(t, "pw\n", with("add", "food", "12.50", "lunch")...)
	if r.err != nil {
		t.Fatalf("add: %v", r.err)
	}
	for _, want := range []string{"User not found. Creating a new account.", "Set a password: ", "Account created.", "Expense added."} {
		if !strings.Contains(r.out, want) {
			t.Errorf("add output missing %q:\n%s", want, r.out)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "alice"+storage.LedgerFileSuffix)); err != nil {
		t.Fatalf("ledger file: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, storage.UsersFile)); err != nil {
		t.Fatalf("users file: %v", err)
	}

	r = run(t, "pw\n", with("add", "food", "4,5", "coffee", "and", "cake")...)
	if r.err != nil {
		t.Fatalf("second add: %v", r.err)
	}
	if !strings.Contains(r.out, "Login successful.") {
		t.Errorf("expected login message:\n%s", r.out)
	}

	r = run(t, "pw\n", with("list")...)
	want := "Category: food\n  1. Amount: $12.50, Description: lunch\n  2. Amount: $4.50, Description: coffee and cake\n"
	if r.err != nil || !strings.Contains(r.out, want) {
		t.Fatalf("list = %v\n%s", r.err, r.out)
	}

	r = run(t, "pw\n", with("total")...)
	if r.err != nil || !strings.Contains(r.out, "Total Expenses: $17.00") {
		t.Fatalf("total = %v\n%s", r.err, r.out)
	}

	r = run(t, "pw\n", with("edit", "food", "2", "5", "tea")...)
	if r.err != nil {
		t.Fatalf("edit: %v", r.err)
	}
	r = run(t, "pw\n", with("by-category")...)
	if r.err != nil || !strings.Contains(r.out, "Category: food, Total: $17.50") {
		t.Fatalf("by-category = %v\n%s", r.err, r.out)
	}

	r = run(t, "pw\n", with("delete", "food", "1")...)
	if r.err != nil {
		t.Fatalf("delete: %v", r.err)
	}
	r = run(t, "pw\n", with("report", "Weekly")...)
	if r.err != nil {
		t.Fatalf("report: %v", r.err)
	}
	for _, want := range []string{"Generating weekly report...", "  1. Amount: $5.00, Description: tea", "Total Expenses: $5.00"} {
		if !strings.Contains(r.out, want) {
			t.Errorf("report output missing %q:\n%s", want, r.out)
		}
	}
}

func TestCommandErrors(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	base := []string{"--user", "alice", "--data-dir", dir}
	with := func(extra ...string) []string { return append(append([]string{}, base...), extra...) }

	if r := run(t, "pw\n", with("add", "food", "1")...); r.err != nil {
		t.Fatalf("add: %v", r.err)
	}

	tests := []struct {
		name  string
		input string
		args  []string
		want  error
	}{
		{"wrong password", "nope\n", with("list"), auth.ErrInvalidCredentials},
		{"edit past end", "pw\n", with("edit", "food", "2", "1"), core.ErrInvalidReference},
		{"edit record zero", "pw\n", with("edit", "food", "0", "1"), core.ErrInvalidReference},
		{"delete unknown category", "pw\n", with("delete", "rent", "1"), core.ErrInvalidReference},
		{"delete non-numeric", "pw\n", with("delete", "food", "first"), core.ErrInvalidReference},
		{"bad amount", "pw\n", with("add", "food", "ten"), core.ErrInvalidAmount},
		{"empty category", "pw\n", with("add", " ", "1"), core.ErrEmptyCategory},
		{"unknown period", "pw\n", with("report", "hourly"), core.ErrInvalidPeriod},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := run(t, tt.input, tt.args...)
			if !errors.Is(r.err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, r.err)
			}
		})
	}

	r := run(t, "pw\n", with("list")...)
	if !strings.Contains(r.out, "  1. Amount: $1.00, Description: \n") {
		t.Fatalf("ledger changed by failed commands:\n%s", r.out)
	}
}

func TestInvalidBackendFlag(t *testing.T) {
	clearEnv(t)
	r := run(t, "", "--backend", "sheets", "list")
	if r.err == nil || !strings.Contains(r.err.Error(), "invalid data backend 'sheets'") {
		t.Fatalf("expected config error, got %v", r.err)
	}
}

func TestInvalidUsernameIsNotRegistered(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	r := run(t, "pw\n", "--user", "a/b", "--data-dir", dir, "total")
	if !errors.Is(r.err, core.ErrInvalidOwner) {
		t.Fatalf("expected ErrInvalidOwner, got %v", r.err)
	}
	if strings.Contains(r.out, "Set a password: ") {
		t.Fatalf("password asked for an invalid username:\n%s", r.out)
	}
	r = run(t, "..\npw\n", "--data-dir", dir, "total")
	if !errors.Is(r.err, core.ErrInvalidOwner) {
		t.Fatalf("expected ErrInvalidOwner for a prompted name, got %v", r.err)
	}
	if _, err := os.Stat(filepath.Join(dir, storage.UsersFile)); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("users file written for invalid names: %v", err)
	}
}

func TestStartupIsLogged(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOG_LEVEL", "info")
	r := run(t, "pw\n", "--user", "dave", "--backend", "memory", "total")
	if r.err != nil {
		t.Fatalf("total: %v", r.err)
	}
	for _, want := range []string{
		`msg="Ledger opened"`,
		"component=app",
		"operation=startup",
		"backend=memory",
		`msg="Account created"`,
		"component=auth",
	} {
		if !strings.Contains(r.errOut, want) {
			t.Errorf("log output missing %q:\n%s", want, r.errOut)
		}
	}
}

func TestUsernameIsPrompted(t *testing.T) {
	clearEnv(t)
	r := run(t, "bob\npw\n", "--backend", "memory", "total")
	if r.err != nil {
		t.Fatalf("total: %v", r.err)
	}
	if !strings.Contains(r.out, "Username: ") || !strings.Contains(r.out, "Total Expenses: $0.00") {
		t.Fatalf("unexpected output:\n%s", r.out)
	}
}

func TestUserFromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("FINTRACK_USER", "carol")
	t.Setenv("DATA_BACKEND", "memory")
	r := run(t, "pw\n", "list")
	if r.err != nil {
		t.Fatalf("list: %v", r.err)
	}
	if strings.Contains(r.out, "Username: ") || !strings.Contains(r.out, "No expenses recorded.") {
		t.Fatalf("unexpected output:\n%s", r.out)
	}
}

func TestMenu(t *testing.T) {
	clearEnv(t)
	input := strings.Join([]string{
		"alice", "pw",
		"1", "food", "10", "a",
		"1", "food", "5", "b",
		"1", "rent", "800", "flat",
		"6", "food", "1",
		"2",
		"3",
		"4",
		"5", "rent", "1", "850", "flat2",
		"7", "yearly",
		"9",
		"8",
	}, "\n") + "\n"

	r := run(t, input, "--backend", "memory")
	if r.err != nil {
		t.Fatalf("menu: %v", r.err)
	}
	for _, want := range []string{
		"Personal Finance Tracker",
		"Category: food\n  1. Amount: $5.00, Description: b\n",
		"Total Expenses: $805.00",
		"Category: rent, Total: $800.00",
		"Generating yearly report...",
		"  1. Amount: $850.00, Description: flat2",
		"Total Expenses: $855.00",
		"Invalid choice. Please try again.",
		"Exiting the application.",
	} {
		if !strings.Contains(r.out, want) {
			t.Errorf("menu output missing %q:\n%s", want, r.out)
		}
	}
}

func TestMenuRecoversFromBadInput(t *testing.T) {
	clearEnv(t)
	input := strings.Join([]string{
		"alice", "pw",
		"1", "food", "abc",
		"5", "rent", "1", "2", "x",
		"6", "food", "x",
		"7", "hourly",
		"7", "",
		"1", "",
		"3",
	}, "\n") + "\n"

	r := run(t, input, "--backend", "memory")
	if r.err != nil {
		t.Fatalf("menu should end cleanly at end of input: %v", r.err)
	}
	for _, want := range []string{
		"Invalid amount.",
		"Invalid category or expense index.",
		"Generating hourly report...",
		"Generating monthly report...",
		"Category cannot be empty.",
		"Total Expenses: $0.00",
	} {
		if !strings.Contains(r.out, want) {
			t.Errorf("menu output missing %q:\n%s", want, r.out)
		}
	}
}

func TestParseRecordNumber(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"1", 0, false},
		{" 3 ", 2, false},
		{"0", 0, true},
		{"-1", 0, true},
		{"two", 0, true},
	}
	for _, tt := range tests {
		got, err := parseRecordNumber(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseRecordNumber(%q) error = %v", tt.in, err)
			continue
		}
		if err != nil && !errors.Is(err, core.ErrInvalidReference) {
			t.Errorf("parseRecordNumber(%q) error = %v, want ErrInvalidReference", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("parseRecordNumber(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{core.ErrInvalidReference, "Invalid category or expense index."},
		{core.ErrInvalidAmount, "Invalid amount."},
		{auth.ErrInvalidCredentials, "Incorrect password."},
		{fmt.Errorf("%w %q", core.ErrInvalidOwner, "a/b"), "Invalid username."},
		{errors.New("disk on fire"), "disk on fire"},
	}
	for _, tt := range tests {
		if got := userMessage(tt.err); got != tt.want {
			t.Errorf("userMessage(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestReportCompletesKnownPeriods(t *testing.T) {
	want := []string{"daily", "weekly", "monthly", "yearly"}
	cmd := newReportCommand(newApp(Options{}))
	if strings.Join(cmd.ValidArgs, ",") != strings.Join(want, ",") {
		t.Fatalf("ValidArgs = %v, want %v", cmd.ValidArgs, want)
	}
}
