package report

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

// TypstGenerator renders the sweep grid as a Typst table with
// green/red cells for converged/failed runs.
type TypstGenerator struct{}

// NewTypstGenerator создаёт новый генератор
func NewTypstGenerator() *TypstGenerator {
	return &TypstGenerator{}
}

// Format возвращает формат генератора
func (g *TypstGenerator) Format() Format {
	return FormatTypst
}

// Generate renders the Typst source.
func (g *TypstGenerator) Generate(ctx context.Context, data *ReportData) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintln(&buf, "#set page(width: auto, height: auto, margin: 1cm)")
	fmt.Fprintln(&buf, "#align(center)[")

	// Cell definitions, one per run
	for _, run := range data.Runs {
		if run.Converged && run.Result != nil {
			fmt.Fprintf(&buf,
				"#let p%d_d%d = table.cell(\n  fill: green.lighten(60%%),\n)[Iterations: %d  Longest Path: %g wire reuse: %g  total wire use: %d]\n",
				run.Percentage, run.Destinations,
				run.Result.Iteration, run.Result.LongestPathCost, run.Result.WireReuse, run.Result.TotalWireUse)
		} else {
			conflicts := 0
			if run.Result != nil {
				conflicts = run.Result.Conflicts
			}
			fmt.Fprintf(&buf,
				"#let p%d_d%d = table.cell(\n  fill: red.lighten(60%%),\n)[%d]\n",
				run.Percentage, run.Destinations, conflicts)
		}
	}

	// Table: one label column plus one column per destination count
	numCols := len(data.DestCounts) + 1
	fmt.Fprintln(&buf, "  #table(")
	fmt.Fprint(&buf, "    columns: (")
	for i := 0; i < numCols; i++ {
		fmt.Fprint(&buf, "auto, ")
	}
	fmt.Fprintln(&buf, "),")
	fmt.Fprintln(&buf, "    inset: 10pt,")
	fmt.Fprintln(&buf, "    align: center + horizon,")

	// Header row
	fmt.Fprint(&buf, "    [*Load*]")
	for _, d := range data.DestCounts {
		fmt.Fprintf(&buf, ", [*%d Dest*]", d)
	}
	fmt.Fprintln(&buf, ",")

	// Data rows
	for _, perc := range data.Percentages {
		fmt.Fprintf(&buf, "    [*%d%%*]", perc)
		for _, d := range data.DestCounts {
			fmt.Fprintf(&buf, ", p%d_d%d", perc, d)
		}
		fmt.Fprintln(&buf, ",")
	}

	fmt.Fprintln(&buf, "  )")
	fmt.Fprintln(&buf, "]")

	return buf.Bytes(), nil
}

// CompileTypst executes the typst compiler on a written report file,
// producing an SVG next to it.
func CompileTypst(ctx context.Context, filename string) error {
	cmd := exec.CommandContext(ctx, "typst", "compile", filename, "-f", "svg")
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("typst compile failed: %w\n%s", err, out)
	}
	return nil
}
