package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/xuri/excelize/v2"
)

var (
	passSymbol = "✓"
	failSymbol = "✗"
	warnSymbol = "!"

	passStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#00D787", Dark: "#00D787"})
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#FF5F87", Dark: "#FF5F87"})
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#FFAF00", Dark: "#FFAF00"})
	detailStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#808080", Dark: "#808080"})
	titleStyle  = lipgloss.NewStyle().Bold(true)
)

// WriteText writes a human-readable report, one line per test.
func WriteText(w io.Writer, title string, r Report) error {
	if _, err := fmt.Fprintln(w, titleStyle.Render(title)); err != nil {
		return err
	}
	for _, res := range r.Results {
		symbol, style := passSymbol, passStyle
		switch res.Status {
		case StatusFail:
			symbol, style = failSymbol, failStyle
		case StatusWarning:
			symbol, style = warnSymbol, warnStyle
		}
		if _, err := fmt.Fprintf(w, "%s %2d. %s: %s\n", style.Render(symbol), res.TestNumber, res.TestName, res.Message); err != nil {
			return err
		}
		for _, d := range res.Details {
			if _, err := fmt.Fprintf(w, "       %s\n", detailStyle.Render(d)); err != nil {
				return err
			}
		}
	}
	_, err := fmt.Fprintf(w, "\n%d tests: %s, %s, %s\n", r.TotalTests,
		passStyle.Render(fmt.Sprintf("%d passed", r.Passed)),
		failStyle.Render(fmt.Sprintf("%d failed", r.Failed)),
		warnStyle.Render(fmt.Sprintf("%d warnings", r.Warnings)),
	)
	return err
}

// WriteJSON writes the report as indented JSON.
func WriteJSON(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return nil
}

const (
	summarySheet = "Summary"
	resultsSheet = "Results"
)

// WriteXLSX writes a workbook with a Summary sheet of counts and a Results
// sheet with one row per test.
func WriteXLSX(w io.Writer, title string, r Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("naming summary sheet: %w", err)
	}
	if _, err := f.NewSheet(resultsSheet); err != nil {
		return fmt.Errorf("creating results sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	summary := [][]interface{}{
		{"Report", title},
		{"Total tests", r.TotalTests},
		{"Passed", r.Passed},
		{"Failed", r.Failed},
		{"Warnings", r.Warnings},
	}
	for i, row := range summary {
		if err := setRow(f, summarySheet, i+1, row); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(summarySheet, "A1", "A5", bold); err != nil {
		return fmt.Errorf("styling summary: %w", err)
	}

	if err := setRow(f, resultsSheet, 1, []interface{}{"Test", "Name", "Status", "Message", "Details"}); err != nil {
		return err
	}
	if err := f.SetCellStyle(resultsSheet, "A1", "E1", bold); err != nil {
		return fmt.Errorf("styling results header: %w", err)
	}
	for i, res := range r.Results {
		details := ""
		for j, d := range res.Details {
			if j > 0 {
				details += "\n"
			}
			details += d
		}
		row := []interface{}{res.TestNumber, res.TestName, string(res.Status), res.Message, details}
		if err := setRow(f, resultsSheet, i+2, row); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(resultsSheet, "B", "B", 36); err != nil {
		return fmt.Errorf("sizing results sheet: %w", err)
	}
	if err := f.SetColWidth(resultsSheet, "D", "E", 60); err != nil {
		return fmt.Errorf("sizing results sheet: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("addressing row %d: %w", row, err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("writing %s row %d: %w", sheet, row, err)
	}
	return nil
}
