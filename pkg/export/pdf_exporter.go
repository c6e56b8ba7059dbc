package export

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/jung-kurt/gofpdf"
)

// PDFExporter renders a timetable grid into a landscape A4 PDF.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render draws the grid: one column per weekday, one row per period.
func (e *PDFExporter) Render(t *Timetable) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	if t.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, t.Title, "", 1, "C", false, 0, "")
		pdf.Ln(4)
	}

	const periodColWidth = 18.0
	dayColWidth := (277.0 - periodColWidth) / 5

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(periodColWidth, 8, "Std.", "1", 0, "C", false, 0, "")
	for _, day := range dayHeaders {
		pdf.CellFormat(dayColWidth, 8, day, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, period := range t.Periods() {
		pdf.CellFormat(periodColWidth, 9, strconv.Itoa(period), "1", 0, "C", false, 0, "")
		for day := 1; day <= 5; day++ {
			pdf.CellFormat(dayColWidth, 9, t.Cell(day, period), "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
