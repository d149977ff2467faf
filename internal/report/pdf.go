package report

import (
	"context"
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// PDFGenerator генератор PDF отчётов
type PDFGenerator struct{}

// NewPDFGenerator создаёт новый генератор
func NewPDFGenerator() *PDFGenerator {
	return &PDFGenerator{}
}

// Format возвращает формат генератора
func (g *PDFGenerator) Format() Format {
	return FormatPDF
}

// Стили
var (
	headerBgColor = &props.Color{Red: 44, Green: 62, Blue: 80}
	successColor  = &props.Color{Red: 39, Green: 174, Blue: 96}
	dangerColor   = &props.Color{Red: 231, Green: 76, Blue: 60}
	darkGrayColor = &props.Color{Red: 127, Green: 140, Blue: 141}

	titleStyle = props.Text{
		Size:  20,
		Style: fontstyle.Bold,
		Align: align.Center,
		Color: headerBgColor,
	}

	smallStyle = props.Text{
		Size:  8,
		Color: darkGrayColor,
	}

	tableHeaderTextStyle = props.Text{
		Size:  9,
		Style: fontstyle.Bold,
		Align: align.Center,
	}

	tableCellTextStyle = props.Text{
		Size:  9,
		Align: align.Center,
	}
)

// Generate генерирует PDF отчёт
func (g *PDFGenerator) Generate(ctx context.Context, data *ReportData) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageNumber().
		WithLeftMargin(15).
		WithTopMargin(15).
		WithRightMargin(15).
		Build()

	m := maroto.New(cfg)

	g.addHeader(m, data)
	g.addSweepTable(m, data)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return doc.GetBytes(), nil
}

func (g *PDFGenerator) addHeader(m core.Maroto, data *ReportData) {
	m.AddRow(15,
		text.NewCol(12, data.Title, titleStyle),
	)
	m.AddRow(5,
		line.NewCol(12),
	)
	m.AddRow(6,
		text.NewCol(12, fmt.Sprintf("Author: %s", data.Author), smallStyle),
	)
	m.AddRow(8)
}

func (g *PDFGenerator) addSweepTable(m core.Maroto, data *ReportData) {
	m.AddRow(8,
		text.NewCol(2, "Load", tableHeaderTextStyle),
		text.NewCol(2, "Dest", tableHeaderTextStyle),
		text.NewCol(2, "Iterations", tableHeaderTextStyle),
		text.NewCol(2, "Conflicts", tableHeaderTextStyle),
		text.NewCol(2, "Wire Use", tableHeaderTextStyle),
		text.NewCol(2, "Wire Reuse", tableHeaderTextStyle),
	)

	for _, run := range data.Runs {
		statusColor := successColor
		if !run.Converged {
			statusColor = dangerColor
		}
		cellStyle := props.Text{Size: 9, Align: align.Center, Color: statusColor}

		iterations, conflicts, wireUse := "-", "-", "-"
		wireReuse := "-"
		if run.Result != nil {
			iterations = fmt.Sprintf("%d", run.Result.Iteration)
			conflicts = fmt.Sprintf("%d", run.Result.Conflicts)
			wireUse = fmt.Sprintf("%d", run.Result.TotalWireUse)
			wireReuse = fmt.Sprintf("%.2f", run.Result.WireReuse)
		}

		m.AddRow(6,
			text.NewCol(2, fmt.Sprintf("%d%%", run.Percentage), tableCellTextStyle),
			text.NewCol(2, fmt.Sprintf("%d", run.Destinations), tableCellTextStyle),
			text.NewCol(2, iterations, cellStyle),
			text.NewCol(2, conflicts, cellStyle),
			text.NewCol(2, wireUse, tableCellTextStyle),
			text.NewCol(2, wireReuse, tableCellTextStyle),
		)
	}

	m.AddRow(4, col.New(12))
}
