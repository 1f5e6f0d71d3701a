package cli

import (
	"context"
	"errors"
	"io"
	"strings"

	"fintrack/internal/core"
)

const menuText = `
Personal Finance Tracker
1. Add Expense
2. View Expenses
3. Get Total Expenses
4. Get Expenses by Category
5. Edit Expense
6. Delete Expense
7. Generate Report
8. Exit`

// menu runs the interactive loop until the user exits or input ends.
// Failed actions print a reason and return to the menu.
func (a *app) menu(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		a.render.Message(menuText)
		choice, err := a.prompt.Line("Choose an option: ")
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		switch choice {
		case "1":
			err = a.menuAdd(ctx)
		case "2":
			a.render.Expenses(a.service.ListExpenses())
		case "3":
			a.render.Total(a.service.TotalExpenses())
		case "4":
			a.render.CategoryTotals(a.service.TotalsByCategory())
		case "5":
			err = a.menuEdit(ctx)
		case "6":
			err = a.menuDelete(ctx)
		case "7":
			err = a.menuReport(ctx)
		case "8":
			a.render.Message("Exiting the application.")
			return nil
		default:
			a.render.Message("Invalid choice. Please try again.")
		}

		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			if errors.Is(err, core.ErrStorage) {
				a.logger.ErrorContext(ctx, "Menu action failed", "choice", choice, "error", err)
			}
			a.render.Message(userMessage(err))
		}
	}
}

func (a *app) menuAdd(ctx context.Context) error {
	category, err := a.prompt.Line("Enter category: ")
	if err != nil {
		return err
	}
	if category, err = parseCategory(category); err != nil {
		return err
	}
	amount, err := a.readAmount("Enter amount: ")
	if err != nil {
		return err
	}
	description, err := a.prompt.Line("Enter description: ")
	if err != nil {
		return err
	}
	return a.service.AddExpense(ctx, category, amount, description)
}

func (a *app) menuEdit(ctx context.Context) error {
	category, err := a.prompt.Line("Enter category of the expense to edit: ")
	if err != nil {
		return err
	}
	a.render.Expenses(a.service.ListExpenses())
	index, err := a.readRecordNumber("Enter the expense index to edit: ")
	if err != nil {
		return err
	}
	amount, err := a.readAmount("Enter new amount: ")
	if err != nil {
		return err
	}
	description, err := a.prompt.Line("Enter new description: ")
	if err != nil {
		return err
	}
	return a.service.EditExpense(ctx, category, index, amount, description)
}

func (a *app) menuDelete(ctx context.Context) error {
	category, err := a.prompt.Line("Enter category of the expense to delete: ")
	if err != nil {
		return err
	}
	a.render.Expenses(a.service.ListExpenses())
	index, err := a.readRecordNumber("Enter the expense index to delete: ")
	if err != nil {
		return err
	}
	return a.service.DeleteExpense(ctx, category, index)
}

// menuReport accepts any period text. An unknown label is echoed back on a
// report of every record; an empty answer means monthly.
func (a *app) menuReport(ctx context.Context) error {
	answer, err := a.prompt.Line("Enter period (e.g., monthly, yearly): ")
	if err != nil {
		return err
	}
	label := strings.TrimSpace(answer)
	period, parseErr := core.ParsePeriod(label)
	if parseErr != nil {
		period = core.Monthly
	}
	rep, err := a.service.Report(ctx, period)
	if err != nil {
		return err
	}
	if parseErr != nil && label != "" {
		rep.Period = core.Period(label)
	}
	a.render.Report(rep)
	return nil
}

func (a *app) readAmount(prompt string) (core.Money, error) {
	s, err := a.prompt.Line(prompt)
	if err != nil {
		return core.Money{}, err
	}
	return core.ParseAmount(s)
}

func (a *app) readRecordNumber(prompt string) (int, error) {
	s, err := a.prompt.Line(prompt)
	if err != nil {
		return 0, err
	}
	return parseRecordNumber(s)
}
