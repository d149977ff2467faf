// Package report renders routing sweep results (load percentage ×
// destination count grids) into Typst, CSV, Excel and PDF reports.
package report

import (
	"context"
	"strings"

	"github.com/SirJonasM/fpga-router/internal/pathfinder"
	"github.com/SirJonasM/fpga-router/pkg/apperror"
)

// RunResult is one cell of the sweep grid.
type RunResult struct {
	// Percentage is the LUT-output load of the generated plan, in percent.
	Percentage int
	// Destinations is the sink count per net.
	Destinations int
	// Converged is true when the run finished with zero conflicts.
	Converged bool
	// Result is the final iteration telemetry of the run.
	Result *pathfinder.IterationResult
}

// ReportData holds everything a generator needs.
type ReportData struct {
	Title       string
	Author      string
	Percentages []int
	DestCounts  []int
	Runs        []*RunResult
}

// Run returns the cell for a (percentage, destinations) pair, or nil.
func (d *ReportData) Run(percentage, destinations int) *RunResult {
	for _, r := range d.Runs {
		if r.Percentage == percentage && r.Destinations == destinations {
			return r
		}
	}
	return nil
}

// Format identifies a report output format.
type Format string

const (
	FormatTypst Format = "typst"
	FormatCSV   Format = "csv"
	FormatExcel Format = "xlsx"
	FormatPDF   Format = "pdf"
)

// Extension returns the file extension for the format.
func (f Format) Extension() string {
	switch f {
	case FormatTypst:
		return ".typ"
	case FormatCSV:
		return ".csv"
	case FormatExcel:
		return ".xlsx"
	case FormatPDF:
		return ".pdf"
	default:
		return ""
	}
}

// ParseFormat parses a format name.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "typst", "typ":
		return FormatTypst, nil
	case "csv":
		return FormatCSV, nil
	case "xlsx", "excel":
		return FormatExcel, nil
	case "pdf":
		return FormatPDF, nil
	default:
		return "", apperror.Newf(apperror.CodeInvalidReportKind, "unknown report format: %q", s)
	}
}

// Generator интерфейс генератора отчётов
type Generator interface {
	Generate(ctx context.Context, data *ReportData) ([]byte, error)
	Format() Format
}

// New returns the generator for a format.
func New(format Format) (Generator, error) {
	switch format {
	case FormatTypst:
		return NewTypstGenerator(), nil
	case FormatCSV:
		return NewCSVGenerator(), nil
	case FormatExcel:
		return NewExcelGenerator(), nil
	case FormatPDF:
		return NewPDFGenerator(), nil
	default:
		return nil, apperror.Newf(apperror.CodeInvalidReportKind, "unknown report format: %q", string(format))
	}
}
