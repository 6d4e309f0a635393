package store

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"trinix-backend/analytics"
	"trinix-backend/models"
	"trinix-backend/utils"

	"github.com/gocarina/gocsv"
)

const (
	CustomersFile = "customers.csv"
	VisitsFile    = "visits.csv"
)

var utf8BOM = []byte("\xef\xbb\xbf")

// CSVStore keeps both collections in memory and rewrites the owning file
// after every mutation. Writes go through a temp file and rename.
type CSVStore struct {
	mu            sync.RWMutex
	customersFile string
	visitsFile    string
	customers     []models.Customer
	visits        []models.Visit
}

// NewCSVStore loads (or initializes) customers.csv and visits.csv under
// dataDir.
func NewCSVStore(dataDir string) (*CSVStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	s := &CSVStore{
		customersFile: filepath.Join(dataDir, CustomersFile),
		visitsFile:    filepath.Join(dataDir, VisitsFile),
	}
	if err := s.loadCustomers(); err != nil {
		return nil, err
	}
	if err := s.loadVisits(); err != nil {
		return nil, err
	}

	log.Printf("[STORE] loaded %d customers and %d visits from %s", len(s.customers), len(s.visits), dataDir)
	return s, nil
}

func (s *CSVStore) loadCustomers() error {
	var rows []customerRow
	_, exists, err := readTable(s.customersFile, &rows)
	if err != nil {
		return err
	}

	s.customers = make([]models.Customer, 0, len(rows))
	for _, r := range rows {
		s.customers = append(s.customers, r.toModel())
	}
	if !exists {
		return s.saveCustomers(s.customers)
	}
	return nil
}

func (s *CSVStore) loadVisits() error {
	var rows []visitRow
	header, exists, err := readTable(s.visitsFile, &rows)
	if err != nil {
		return err
	}

	migrated := false
	if exists && len(header) > 0 {
		migrated = migrateVisits(header, rows)
	}

	s.visits = make([]models.Visit, 0, len(rows))
	for _, r := range rows {
		if cleanText(strings.TrimSpace(r.Points)) == "" {
			r.Points = strconv.Itoa(analytics.PointsFromText(cleanText(r.PaymentAmount)))
		}
		s.visits = append(s.visits, r.toModel())
	}

	if !exists || migrated {
		return s.saveVisits(s.visits)
	}
	return nil
}

// readTable unmarshals path into out and returns the header row. A missing
// file reports exists=false; an empty file reports exists=true with no rows.
func readTable(path string, out interface{}) (header []string, exists bool, err error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s: %w", path, err)
	}

	data = bytes.TrimPrefix(data, utf8BOM)
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, true, nil
	}

	header, err = csv.NewReader(bytes.NewReader(data)).Read()
	if err != nil {
		return nil, true, fmt.Errorf("failed to read header of %s: %w", path, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	if err := gocsv.UnmarshalBytes(data, out); err != nil {
		return nil, true, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return header, true, nil
}

// writeTable replaces path with rows, using a temp file in the same
// directory so a failed write leaves the previous table intact.
func writeTable(path string, rows interface{}) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", path, err)
	}
	tmpName := tmp.Name()

	if err := gocsv.Marshal(rows, tmp); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

func (s *CSVStore) saveCustomers(customers []models.Customer) error {
	rows := make([]customerRow, 0, len(customers))
	for _, c := range customers {
		rows = append(rows, customerToRow(c))
	}
	return writeTable(s.customersFile, &rows)
}

func (s *CSVStore) saveVisits(visits []models.Visit) error {
	rows := make([]visitRow, 0, len(visits))
	for _, v := range visits {
		rows = append(rows, visitToRow(v))
	}
	return writeTable(s.visitsFile, &rows)
}

func (s *CSVStore) indexOfCustomer(id int) int {
	for i := range s.customers {
		if s.customers[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *CSVStore) nextCustomerID() int {
	maxID := 0
	for _, c := range s.customers {
		if c.ID > maxID {
			maxID = c.ID
		}
	}
	return maxID + 1
}

func (s *CSVStore) AddCustomer(ctx context.Context, in NewCustomer) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	customer := models.Customer{
		ID:               s.nextCustomerID(),
		Name:             in.Name,
		Phone:            in.Phone,
		AgeGroup:         in.AgeGroup,
		Location:         in.Location,
		Occupation:       in.Occupation,
		QRCodePath:       in.QRCodePath,
		RegistrationDate: utils.FormatDate(clock()),
	}

	updated := append(cloneCustomers(s.customers), customer)
	if err := s.saveCustomers(updated); err != nil {
		return 0, err
	}
	s.customers = updated

	log.Printf("[STORE] added customer %d", customer.ID)
	return customer.ID, nil
}

func (s *CSVStore) UpdateCustomer(ctx context.Context, id int, update CustomerUpdate) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOfCustomer(id)
	if idx < 0 {
		log.Printf("[STORE] customer %d not found for update", id)
		return false, nil
	}

	updated := cloneCustomers(s.customers)
	update.apply(&updated[idx])
	if err := s.saveCustomers(updated); err != nil {
		return false, err
	}
	s.customers = updated
	return true, nil
}

func (s *CSVStore) DeleteCustomer(ctx context.Context, id int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOfCustomer(id)
	if idx < 0 {
		log.Printf("[STORE] customer %d not found for deletion", id)
		return false, nil
	}

	updated := make([]models.Customer, 0, len(s.customers)-1)
	updated = append(updated, s.customers[:idx]...)
	updated = append(updated, s.customers[idx+1:]...)
	if err := s.saveCustomers(updated); err != nil {
		return false, err
	}
	s.customers = updated
	return true, nil
}

func (s *CSVStore) GetCustomer(ctx context.Context, id int) (*models.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexOfCustomer(id)
	if idx < 0 {
		return nil, nil
	}
	c := s.customers[idx]
	return &c, nil
}

func (s *CSVStore) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := cloneCustomers(s.customers)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *CSVStore) FindCustomerByPhone(ctx context.Context, phone string) (*models.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.customers {
		if c.Phone == phone {
			found := c
			return &found, nil
		}
	}
	return nil, nil
}

func (s *CSVStore) SearchCustomers(ctx context.Context, query string) ([]models.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q := strings.ToLower(strings.TrimSpace(query))
	out := []models.Customer{}
	if q == "" {
		return out, nil
	}
	for _, c := range s.customers {
		if strings.Contains(strings.ToLower(c.Name), q) || c.Phone == q {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *CSVStore) AddVisit(ctx context.Context, in NewVisit) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := clock()
	visit := models.Visit{
		VisitID:       len(s.visits) + 1,
		CustomerID:    in.CustomerID,
		Date:          utils.FormatDate(now),
		Time:          now.Format(utils.TimeLayout),
		GameGenre:     in.GameGenre,
		Console:       in.Console,
		PaymentMethod: in.PaymentMethod,
		PaymentAmount: in.PaymentAmount,
		SnacksAmount:  in.SnacksAmount,
		SnacksDetails: in.SnacksDetails,
		FriendsCount:  in.FriendsCount,
		Points:        analytics.CalculatePoints(in.PaymentAmount),
	}

	updated := append(cloneVisits(s.visits), visit)
	if err := s.saveVisits(updated); err != nil {
		return 0, err
	}
	s.visits = updated

	log.Printf("[STORE] added visit %d for customer %d (%d points)", visit.VisitID, visit.CustomerID, visit.Points)
	return visit.VisitID, nil
}

func (s *CSVStore) ListVisits(ctx context.Context) ([]models.Visit, error) {
	return s.filterVisits(func(models.Visit) bool { return true }), nil
}

func (s *CSVStore) GetVisitsByCustomer(ctx context.Context, customerID int) ([]models.Visit, error) {
	return s.filterVisits(func(v models.Visit) bool { return v.CustomerID == customerID }), nil
}

// GetVisitsByDateRange is inclusive on both ends. Dates compare as
// YYYY-MM-DD strings.
func (s *CSVStore) GetVisitsByDateRange(ctx context.Context, start, end string) ([]models.Visit, error) {
	return s.filterVisits(func(v models.Visit) bool {
		return v.Date >= start && v.Date <= end
	}), nil
}

func (s *CSVStore) filterVisits(keep func(models.Visit) bool) []models.Visit {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Visit{}
	for _, v := range s.visits {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

func (s *CSVStore) Close() error {
	return nil
}

func cloneCustomers(in []models.Customer) []models.Customer {
	out := make([]models.Customer, len(in), len(in)+1)
	copy(out, in)
	return out
}

func cloneVisits(in []models.Visit) []models.Visit {
	out := make([]models.Visit, len(in), len(in)+1)
	copy(out, in)
	return out
}
