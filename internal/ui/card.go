package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/adrior11/check24-best-combination-submission/internal/combo"
	"github.com/adrior11/check24-best-combination-submission/internal/coverage"
)

// indicator renders one coverage level as a colored glyph.
func indicator(l combo.Level) string {
	switch l {
	case combo.LevelFull:
		return CoverageFull.Render("✓")
	case combo.LevelPartial:
		return CoveragePartial.Render("✓")
	default:
		return CoverageNone.Render("✗")
	}
}

// cellText renders a [live, highlight] pair.
func cellText(v combo.CoverageValue) string {
	return indicator(v.Live) + " " + indicator(v.Highlight)
}

// formatCoverage prints a percentage without trailing zeros.
func formatCoverage(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "%"
}

// RenderCardHeader renders the summary line of one combination.
func RenderCardHeader(c combo.Combination, currency string) string {
	n := len(c.Packages)
	plural := "s"
	if n == 1 {
		plural = ""
	}
	parts := []string{
		CardHeaderValue.Render(fmt.Sprintf("%d package%s", n, plural)),
		"Coverage: " + CardHeaderValue.Render(formatCoverage(c.CombinedCoverage)),
		"Monthly: " + CardHeaderValue.Render(combo.FormatPrice(c.CombinedMonthlyPriceCents, currency)),
		"Yearly: " + CardHeaderValue.Render(combo.FormatPrice(c.CombinedMonthlyPriceYearlySubscriptionInCents, currency)),
	}
	return CardHeader.Render(strings.Join(parts, CardHeader.Render(" | ")))
}

// RenderMatrix renders the coverage grid with a price footer.
func RenderMatrix(c combo.Combination, m coverage.Matrix, currency string) string {
	headers := make([]string, 0, len(m.Columns)+1)
	headers = append(headers, "")
	for _, name := range m.Columns {
		headers = append(headers, name+"\nLive Highl.")
	}

	rows := make([][]string, 0, len(m.Rows)+1)
	for i, key := range m.Rows {
		row := make([]string, 0, len(m.Columns)+1)
		row = append(row, key)
		for j := range m.Columns {
			row = append(row, cellText(m.Cell(i, j)))
		}
		rows = append(rows, row)
	}

	footer := make([]string, 0, len(c.Packages)+1)
	footer = append(footer, "")
	for _, p := range c.Packages {
		var lines []string
		if p.MonthlyPriceCents != nil {
			lines = append(lines, combo.FormatOptionalPrice(p.MonthlyPriceCents, currency)+" pm")
		}
		lines = append(lines, combo.FormatPrice(p.MonthlyPriceYearlySubscriptionInCents, currency)+" pm (yr)")
		footer = append(footer, strings.Join(lines, "\n"))
	}
	rows = append(rows, footer)
	last := len(rows) - 1

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(TableBorder).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return TableHeader
			case row == last:
				return TablePrice
			case col == 0:
				return TableKey
			default:
				return TableCell
			}
		})
	return t.Render()
}

// RenderCombination renders one card. rank 0 gets the best badge.
func RenderCombination(c combo.Combination, m coverage.Matrix, rank int, currency string) string {
	var b strings.Builder
	if rank == 0 {
		b.WriteString(Badge.Render("Best Combination"))
		b.WriteString("\n")
	}
	b.WriteString(RenderCardHeader(c, currency))
	b.WriteString("\n")
	b.WriteString(RenderMatrix(c, m, currency))
	return Card.Render(b.String())
}

// RenderResults renders every combination of a result set, in order.
func RenderResults(cs []combo.Combination, memo *coverage.Memo, currency string) string {
	if memo == nil {
		memo = coverage.NewMemo(cs)
	}
	cards := make([]string, 0, len(cs))
	for i, c := range cs {
		m, _ := memo.Matrix(i)
		cards = append(cards, RenderCombination(c, m, i, currency))
	}
	return strings.Join(cards, "\n")
}
