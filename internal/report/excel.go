package report

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ExcelGenerator генератор Excel отчётов
type ExcelGenerator struct{}

// NewExcelGenerator создаёт новый генератор
func NewExcelGenerator() *ExcelGenerator {
	return &ExcelGenerator{}
}

// Format возвращает формат генератора
func (g *ExcelGenerator) Format() Format {
	return FormatExcel
}

// Generate генерирует Excel отчёт
func (g *ExcelGenerator) Generate(ctx context.Context, data *ReportData) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Routing Sweep"
	f.NewSheet(sheetName)
	f.DeleteSheet("Sheet1")

	// Стили
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	successStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"C6EFCE"}, Pattern: 1},
	})
	failureStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"FFC7CE"}, Pattern: 1},
	})

	row := 1
	f.SetCellValue(sheetName, cellAddr("A", row), data.Title)
	f.MergeCell(sheetName, cellAddr("A", row), cellAddr("E", row))
	row += 2

	// Заголовок грида
	f.SetCellValue(sheetName, cellAddr("A", row), "Load")
	f.SetCellStyle(sheetName, cellAddr("A", row), cellAddr("A", row), headerStyle)
	for i, d := range data.DestCounts {
		col := columnName(i + 1)
		f.SetCellValue(sheetName, cellAddr(col, row), fmt.Sprintf("%d Dest", d))
		f.SetCellStyle(sheetName, cellAddr(col, row), cellAddr(col, row), headerStyle)
	}
	row++

	// Строки грида
	for _, perc := range data.Percentages {
		f.SetCellValue(sheetName, cellAddr("A", row), fmt.Sprintf("%d%%", perc))
		for i, d := range data.DestCounts {
			col := columnName(i + 1)
			run := data.Run(perc, d)
			if run == nil {
				continue
			}
			if run.Converged && run.Result != nil {
				f.SetCellValue(sheetName, cellAddr(col, row), fmt.Sprintf(
					"Iterations: %d  Longest Path: %g  Wire Reuse: %.2f  Total Wire Use: %d",
					run.Result.Iteration, run.Result.LongestPathCost, run.Result.WireReuse, run.Result.TotalWireUse))
				f.SetCellStyle(sheetName, cellAddr(col, row), cellAddr(col, row), successStyle)
			} else {
				conflicts := 0
				if run.Result != nil {
					conflicts = run.Result.Conflicts
				}
				f.SetCellValue(sheetName, cellAddr(col, row), fmt.Sprintf("Failed: %d conflicts", conflicts))
				f.SetCellStyle(sheetName, cellAddr(col, row), cellAddr(col, row), failureStyle)
			}
		}
		row++
	}

	// Детальная таблица
	row += 2
	detailHeader := []string{"Percentage", "Destinations", "Converged", "Iterations", "Conflicts", "Total Wire Use", "Wire Reuse"}
	for i, h := range detailHeader {
		col := columnName(i)
		f.SetCellValue(sheetName, cellAddr(col, row), h)
		f.SetCellStyle(sheetName, cellAddr(col, row), cellAddr(col, row), headerStyle)
	}
	row++
	for _, run := range data.Runs {
		f.SetCellValue(sheetName, cellAddr("A", row), run.Percentage)
		f.SetCellValue(sheetName, cellAddr("B", row), run.Destinations)
		f.SetCellValue(sheetName, cellAddr("C", row), run.Converged)
		if run.Result != nil {
			f.SetCellValue(sheetName, cellAddr("D", row), run.Result.Iteration)
			f.SetCellValue(sheetName, cellAddr("E", row), run.Result.Conflicts)
			f.SetCellValue(sheetName, cellAddr("F", row), run.Result.TotalWireUse)
			f.SetCellValue(sheetName, cellAddr("G", row), run.Result.WireReuse)
		}
		row++
	}

	// Записываем в буфер
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func cellAddr(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

// columnName переводит индекс столбца в буквы (0 -> A, 1 -> B, ...)
func columnName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}
