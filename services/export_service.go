package services

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"trinix-backend/analytics"
	"trinix-backend/models"
	"trinix-backend/store"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
)

type exportVisit struct {
	VisitID       int    `csv:"visit_id"`
	CustomerID    int    `csv:"customer_id"`
	Date          string `csv:"date"`
	Time          string `csv:"time"`
	GameGenre     string `csv:"game_genre"`
	Console       string `csv:"console"`
	PaymentMethod string `csv:"payment_method"`
	PaymentAmount string `csv:"payment_amount"`
	SnacksAmount  string `csv:"snacks_amount"`
	SnacksDetails string `csv:"snacks_details"`
	FriendsCount  int    `csv:"friends_count"`
	Points        int    `csv:"points"`
}

type exportCustomer struct {
	ID               int    `csv:"id"`
	Name             string `csv:"name"`
	Phone            string `csv:"phone"`
	AgeGroup         string `csv:"age_group"`
	Location         string `csv:"location"`
	Occupation       string `csv:"occupation"`
	QRCodePath       string `csv:"qr_code_path"`
	RegistrationDate string `csv:"registration_date"`
	TotalPoints      int    `csv:"total_points"`
}

type exportCombined struct {
	VisitID       int    `csv:"visit_id"`
	CustomerID    int    `csv:"customer_id"`
	Date          string `csv:"date"`
	Time          string `csv:"time"`
	GameGenre     string `csv:"game_genre"`
	Console       string `csv:"console"`
	PaymentMethod string `csv:"payment_method"`
	PaymentAmount string `csv:"payment_amount"`
	SnacksAmount  string `csv:"snacks_amount"`
	SnacksDetails string `csv:"snacks_details"`
	FriendsCount  int    `csv:"friends_count"`
	Points        int    `csv:"points"`
	Name          string `csv:"name"`
	Phone         string `csv:"phone"`
	AgeGroup      string `csv:"age_group"`
	Location      string `csv:"location"`
	Occupation    string `csv:"occupation"`
}

// ExportBundle describes one export run. Files are relative to the reports
// directory; Archive is the zip holding all of them.
type ExportBundle struct {
	ID        string   `json:"id"`
	From      string   `json:"from"`
	To        string   `json:"to"`
	Files     []string `json:"files"`
	Archive   string   `json:"archive"`
	Visits    int      `json:"visits"`
	Customers int      `json:"customers"`
}

type ExportService struct {
	dir    string
	lounge string
	now    func() time.Time
}

func NewExportService(dir, lounge string) *ExportService {
	return &ExportService{dir: dir, lounge: lounge, now: time.Now}
}

// Export writes the visits in [from, to], every customer with their points
// total for that range, a joined visits+customer sheet and a README, then
// zips the four files.
func (s *ExportService) Export(ctx context.Context, rs store.RecordStore, from, to string) (*ExportBundle, error) {
	visits, err := rs.GetVisitsByDateRange(ctx, from, to)
	if err != nil {
		return nil, err
	}
	if len(visits) == 0 {
		return nil, ErrNoData
	}
	customers, err := rs.ListCustomers(ctx)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create reports directory: %w", err)
	}

	now := s.now()
	ts := now.Format(TimestampLayout)
	bundle := &ExportBundle{
		ID:        uuid.NewString(),
		From:      from,
		To:        to,
		Visits:    len(visits),
		Customers: len(customers),
	}

	visitsFile := "visits_" + ts + ".csv"
	customersFile := "customers_" + ts + ".csv"
	combinedFile := "combined_" + ts + ".csv"
	readmeFile := "README_" + ts + ".txt"

	visitRows := make([]exportVisit, 0, len(visits))
	for _, v := range visits {
		visitRows = append(visitRows, toExportVisit(v))
	}

	points := analytics.CustomerPoints(visits)
	byID := make(map[int]models.Customer, len(customers))
	customerRows := make([]exportCustomer, 0, len(customers))
	for _, c := range customers {
		byID[c.ID] = c
		customerRows = append(customerRows, exportCustomer{
			ID:               c.ID,
			Name:             c.Name,
			Phone:            c.Phone,
			AgeGroup:         c.AgeGroup,
			Location:         c.Location,
			Occupation:       c.Occupation,
			QRCodePath:       c.QRCodePath,
			RegistrationDate: c.RegistrationDate,
			TotalPoints:      points[c.ID],
		})
	}

	combinedRows := make([]exportCombined, 0, len(visits))
	for _, row := range visitRows {
		c := byID[row.CustomerID]
		combinedRows = append(combinedRows, exportCombined{
			VisitID:       row.VisitID,
			CustomerID:    row.CustomerID,
			Date:          row.Date,
			Time:          row.Time,
			GameGenre:     row.GameGenre,
			Console:       row.Console,
			PaymentMethod: row.PaymentMethod,
			PaymentAmount: row.PaymentAmount,
			SnacksAmount:  row.SnacksAmount,
			SnacksDetails: row.SnacksDetails,
			FriendsCount:  row.FriendsCount,
			Points:        row.Points,
			Name:          c.Name,
			Phone:         c.Phone,
			AgeGroup:      c.AgeGroup,
			Location:      c.Location,
			Occupation:    c.Occupation,
		})
	}

	if err := s.writeCSV(visitsFile, &visitRows); err != nil {
		return nil, err
	}
	if err := s.writeCSV(customersFile, &customerRows); err != nil {
		return nil, err
	}
	if err := s.writeCSV(combinedFile, &combinedRows); err != nil {
		return nil, err
	}

	readme := s.readme(bundle, now, visitsFile, customersFile, combinedFile)
	if err := os.WriteFile(filepath.Join(s.dir, readmeFile), []byte(readme), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", readmeFile, err)
	}

	bundle.Files = []string{visitsFile, customersFile, combinedFile, readmeFile}
	bundle.Archive = "trinix_export_" + ts + ".zip"
	if err := s.zip(bundle.Archive, bundle.Files); err != nil {
		return nil, err
	}
	return bundle, nil
}

func toExportVisit(v models.Visit) exportVisit {
	return exportVisit{
		VisitID:       v.VisitID,
		CustomerID:    v.CustomerID,
		Date:          v.Date,
		Time:          v.Time,
		GameGenre:     v.GameGenre,
		Console:       v.Console,
		PaymentMethod: v.PaymentMethod,
		PaymentAmount: v.PaymentAmount.StringFixed(2),
		SnacksAmount:  v.SnacksAmount.StringFixed(2),
		SnacksDetails: v.SnacksDetails,
		FriendsCount:  v.FriendsCount,
		Points:        v.Points,
	}
}

func (s *ExportService) writeCSV(name string, rows interface{}) error {
	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	defer f.Close()

	if err := gocsv.MarshalFile(rows, f); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

func (s *ExportService) readme(b *ExportBundle, now time.Time, visitsFile, customersFile, combinedFile string) string {
	var sb strings.Builder
	sb.WriteString(s.lounge + " - Data Export\n")
	sb.WriteString("Date: " + now.Format("2006-01-02 15:04:05") + "\n")
	sb.WriteString("Export ID: " + b.ID + "\n\n")
	sb.WriteString("Date Range: " + b.From + " to " + b.To + "\n\n")
	sb.WriteString("Files included:\n")
	sb.WriteString("1. " + visitsFile + " - Visit records\n")
	sb.WriteString("2. " + customersFile + " - Customer records (includes total_points column)\n")
	sb.WriteString("3. " + combinedFile + " - Combined visit and customer data\n\n")
	sb.WriteString("Total records:\n")
	sb.WriteString("- Visits: " + strconv.Itoa(b.Visits) + "\n")
	sb.WriteString("- Customers: " + strconv.Itoa(b.Customers) + "\n")
	return sb.String()
}

func (s *ExportService) zip(archive string, files []string) error {
	out, err := os.Create(filepath.Join(s.dir, archive))
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", archive, err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	for _, name := range files {
		if err := addToZip(zw, filepath.Join(s.dir, name), name); err != nil {
			zw.Close()
			return err
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finish %s: %w", archive, err)
	}
	return nil
}

func addToZip(zw *zip.Writer, path, name string) error {
	src, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", name, err)
	}
	defer src.Close()

	dst, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("failed to add %s: %w", name, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("failed to add %s: %w", name, err)
	}
	return nil
}
