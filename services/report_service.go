package services

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"trinix-backend/analytics"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// ErrNoData is returned when a report or export would have no visits in it.
var ErrNoData = errors.New("no visits for the selected period")

// TimestampLayout stamps generated report and export file names.
const TimestampLayout = "20060102_150405"

type ReportService struct {
	dir      string
	lounge   string
	currency string
	now      func() time.Time
}

func NewReportService(dir, lounge, currency string) *ReportService {
	return &ReportService{dir: dir, lounge: lounge, currency: currency, now: time.Now}
}

func (s *ReportService) money(d decimal.Decimal) string {
	return s.currency + " " + d.StringFixed(2)
}

// ShiftReport renders the end-of-shift PDF and returns its path.
func (s *ReportService) ShiftReport(summary analytics.ShiftSummary) (string, error) {
	if summary.TotalCustomers == 0 {
		return "", ErrNoData
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create reports directory: %w", err)
	}

	now := s.now()
	path := filepath.Join(s.dir, fmt.Sprintf("shift_report_%s.pdf", now.Format(TimestampLayout)))

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetTitle(s.lounge+" Shift Report "+summary.Date, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, s.lounge, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, "Shift Report - "+summary.Date, "", 1, "C", false, 0, "")
	pdf.Ln(6)

	section(pdf, "Summary")
	table(pdf, nil, []float64{75, 50}, [][]string{
		{"Total Customers", strconv.Itoa(summary.TotalCustomers)},
		{"Total Gaming Sales", s.money(summary.TotalGaming)},
		{"Total Snacks Sales", s.money(summary.TotalSnacks)},
		{"Total Sales", s.money(summary.TotalSales)},
	})

	if len(summary.PaymentMethods) > 0 {
		section(pdf, "Payment Methods")
		rows := [][]string{}
		for _, method := range sortedKeys(summary.PaymentMethods) {
			p := summary.PaymentMethods[method]
			rows = append(rows, []string{method, strconv.Itoa(p.Count), s.money(p.Amount)})
		}
		table(pdf, []string{"Method", "Count", "Amount"}, []float64{60, 35, 40}, rows)
	}

	if len(summary.Consoles) > 0 {
		section(pdf, "Consoles")
		table(pdf, []string{"Console", "Count"}, []float64{75, 50}, countRows(summary.Consoles))
	}

	if len(summary.GameGenres) > 0 {
		section(pdf, "Game Genres")
		table(pdf, []string{"Genre", "Count"}, []float64{75, 50}, countRows(summary.GameGenres))
	}

	pdf.Ln(12)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.CellFormat(0, 6, "Generated on "+now.Format("2006-01-02 15:04:05"), "", 1, "L", false, 0, "")

	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", fmt.Errorf("failed to write shift report: %w", err)
	}
	return path, nil
}

func section(pdf *fpdf.Fpdf, title string) {
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, title, "", 1, "L", false, 0, "")
}

// table draws a bordered grid. With a header the header row is shaded;
// without one the first column is.
func table(pdf *fpdf.Fpdf, header []string, widths []float64, rows [][]string) {
	pdf.SetFillColor(230, 230, 250)
	pdf.SetFont("Helvetica", "", 11)

	if header != nil {
		for i, h := range header {
			pdf.CellFormat(widths[i], 8, h, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
	}
	for _, row := range rows {
		for i, cell := range row {
			align := "R"
			fill := false
			if i == 0 {
				align = "L"
				fill = header == nil
			}
			pdf.CellFormat(widths[i], 8, cell, "1", 0, align, fill, 0, "")
		}
		pdf.Ln(-1)
	}
}

func countRows(counts map[string]int) [][]string {
	rows := [][]string{}
	for _, k := range sortedKeys(counts) {
		rows = append(rows, []string{k, strconv.Itoa(counts[k])})
	}
	return rows
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
