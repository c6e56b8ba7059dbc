package export

import (
	"bytes"
	"encoding/csv"
	"strconv"
)

// CSVExporter renders a timetable grid as CSV.
type CSVExporter struct{}

// NewCSVExporter constructs a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render writes one row per period with the five weekdays as columns.
func (e *CSVExporter) Render(t *Timetable) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)

	header := make([]string, 0, 6)
	header = append(header, "Stunde")
	header = append(header, dayHeaders[:]...)
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, period := range t.Periods() {
		row := make([]string, 0, 6)
		row = append(row, strconv.Itoa(period))
		for day := 1; day <= 5; day++ {
			row = append(row, t.Cell(day, period))
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
