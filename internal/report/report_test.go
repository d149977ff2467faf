package report

import (
	"context"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SirJonasM/fpga-router/internal/pathfinder"
)

func sweepData() *ReportData {
	return &ReportData{
		Title:       "Routing Sweep",
		Author:      "fpga-router",
		Percentages: []int{10, 20},
		DestCounts:  []int{1, 2},
		Runs: []*RunResult{
			{Percentage: 10, Destinations: 1, Converged: true, Result: &pathfinder.IterationResult{
				Iteration: 3, Conflicts: 0, LongestPathCost: 12, TotalWireUse: 40, WireReuse: 1.2,
			}},
			{Percentage: 10, Destinations: 2, Converged: true, Result: &pathfinder.IterationResult{
				Iteration: 7, Conflicts: 0, LongestPathCost: 15, TotalWireUse: 80, WireReuse: 1.5,
			}},
			{Percentage: 20, Destinations: 1, Converged: false, Result: &pathfinder.IterationResult{
				Iteration: 1000, Conflicts: 17, TotalWireUse: 90, WireReuse: 1.1,
			}},
			{Percentage: 20, Destinations: 2, Converged: false, Result: &pathfinder.IterationResult{
				Iteration: 1000, Conflicts: 25, TotalWireUse: 120, WireReuse: 1.3,
			}},
		},
	}
}

func TestParseFormat(t *testing.T) {
	for input, want := range map[string]Format{
		"typst": FormatTypst,
		"typ":   FormatTypst,
		"csv":   FormatCSV,
		"xlsx":  FormatExcel,
		"excel": FormatExcel,
		"pdf":   FormatPDF,
	} {
		got, err := ParseFormat(input)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseFormat("docx")
	assert.Error(t, err)
}

func TestTypstGenerator(t *testing.T) {
	gen := NewTypstGenerator()
	out, err := gen.Generate(context.Background(), sweepData())
	require.NoError(t, err)

	src := string(out)
	// Converged cells are green, failed cells are red
	assert.Contains(t, src, "#let p10_d1 = table.cell(\n  fill: green.lighten(60%),\n)")
	assert.Contains(t, src, "#let p20_d2 = table.cell(\n  fill: red.lighten(60%),\n)[25]")
	assert.Contains(t, src, "Iterations: 3")
	// Header row carries one column per destination count
	assert.Contains(t, src, "[*1 Dest*], [*2 Dest*]")
	assert.Contains(t, src, "[*10%*], p10_d1, p10_d2,")
}

func TestCSVGenerator(t *testing.T) {
	gen := NewCSVGenerator()
	out, err := gen.Generate(context.Background(), sweepData())
	require.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(string(out))).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 5) // header + 4 runs
	assert.Equal(t, "percentage", rows[0][0])
	assert.Equal(t, []string{"10", "1", "true", "3", "0", "12", "40", "1.2", "0"}, rows[1])
}

func TestExcelGenerator(t *testing.T) {
	gen := NewExcelGenerator()
	out, err := gen.Generate(context.Background(), sweepData())
	require.NoError(t, err)
	assert.NotEmpty(t, out)
	// XLSX containers are zip archives
	assert.Equal(t, byte('P'), out[0])
	assert.Equal(t, byte('K'), out[1])
}

func TestPDFGenerator(t *testing.T) {
	gen := NewPDFGenerator()
	out, err := gen.Generate(context.Background(), sweepData())
	require.NoError(t, err)
	require.True(t, len(out) > 4)
	assert.Equal(t, "%PDF", string(out[:4]))
}

func TestReportData_Run(t *testing.T) {
	data := sweepData()
	require.NotNil(t, data.Run(10, 2))
	assert.Equal(t, 7, data.Run(10, 2).Result.Iteration)
	assert.Nil(t, data.Run(99, 1))
}
