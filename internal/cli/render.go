package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"fintrack/internal/core"
)

// renderer prints ledger views. Styles degrade to plain text when out is
// not a color terminal.
type renderer struct {
	out      io.Writer
	category lipgloss.Style
	total    lipgloss.Style
	notice   lipgloss.Style
}

func newRenderer(out io.Writer) *renderer {
	r := lipgloss.NewRenderer(out)
	return &renderer{
		out:      out,
		category: r.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		total:    r.NewStyle().Bold(true),
		notice:   r.NewStyle().Foreground(lipgloss.Color("240")),
	}
}

func (r *renderer) Expenses(state core.LedgerState) {
	if len(state) == 0 {
		fmt.Fprintln(r.out, r.notice.Render("No expenses recorded."))
		return
	}
	for _, c := range state {
		fmt.Fprintln(r.out, r.category.Render("Category: "+c.Category))
		for i, rec := range c.Records {
			fmt.Fprintf(r.out, "  %d. Amount: $%s, Description: %s\n", i+1, rec.Amount, rec.Description)
		}
	}
}

func (r *renderer) Total(total core.Money) {
	fmt.Fprintln(r.out, r.total.Render("Total Expenses: $"+total.String()))
}

func (r *renderer) CategoryTotals(totals []core.CategoryAmount) {
	for _, ca := range totals {
		fmt.Fprintf(r.out, "Category: %s, Total: $%s\n", ca.Name, ca.Amount)
	}
}

func (r *renderer) Report(rep core.Report) {
	fmt.Fprintf(r.out, "Generating %s report...\n", rep.Period)
	r.Expenses(rep.Categories)
	if len(rep.Categories) > 0 {
		r.Total(rep.Total)
	}
}

func (r *renderer) Message(msg string) {
	fmt.Fprintln(r.out, msg)
}
