package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"strconv"
)

// CSVGenerator renders the sweep runs as flat CSV rows.
type CSVGenerator struct{}

// NewCSVGenerator создаёт новый генератор
func NewCSVGenerator() *CSVGenerator {
	return &CSVGenerator{}
}

// Format возвращает формат генератора
func (g *CSVGenerator) Format() Format {
	return FormatCSV
}

// Generate renders the CSV document.
func (g *CSVGenerator) Generate(ctx context.Context, data *ReportData) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{
		"percentage", "destinations", "converged", "iterations", "conflicts",
		"longest_path_cost", "total_wire_use", "wire_reuse", "duration_microseconds",
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, run := range data.Runs {
		row := []string{
			strconv.Itoa(run.Percentage),
			strconv.Itoa(run.Destinations),
			strconv.FormatBool(run.Converged),
		}
		if run.Result != nil {
			row = append(row,
				strconv.Itoa(run.Result.Iteration),
				strconv.Itoa(run.Result.Conflicts),
				strconv.FormatFloat(float64(run.Result.LongestPathCost), 'g', -1, 32),
				strconv.Itoa(run.Result.TotalWireUse),
				strconv.FormatFloat(float64(run.Result.WireReuse), 'g', -1, 32),
				strconv.FormatInt(run.Result.DurationMicroseconds, 10),
			)
		} else {
			row = append(row, "", "", "", "", "", "")
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
