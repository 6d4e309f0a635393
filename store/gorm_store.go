package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"trinix-backend/analytics"
	"trinix-backend/models"
	"trinix-backend/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore keeps the same contract as CSVStore on an indexed SQL table.
// Ids follow the same rules (max+1 for customers, count+1 for visits) and
// are assigned inside a transaction.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore migrates the customers and visits tables.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&models.Customer{}, &models.Visit{}); err != nil {
		return nil, fmt.Errorf("failed to migrate tables: %w", err)
	}
	return &GormStore{db: db}, nil
}

func (s *GormStore) AddCustomer(ctx context.Context, in NewCustomer) (int, error) {
	var customer models.Customer
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var maxID int
		if err := tx.Model(&models.Customer{}).Select("COALESCE(MAX(id), 0)").Scan(&maxID).Error; err != nil {
			return err
		}
		customer = models.Customer{
			ID:               maxID + 1,
			Name:             in.Name,
			Phone:            in.Phone,
			AgeGroup:         in.AgeGroup,
			Location:         in.Location,
			Occupation:       in.Occupation,
			QRCodePath:       in.QRCodePath,
			RegistrationDate: utils.FormatDate(clock()),
		}
		return tx.Create(&customer).Error
	})
	if err != nil {
		return 0, fmt.Errorf("failed to add customer: %w", err)
	}

	log.Printf("[STORE] added customer %d", customer.ID)
	return customer.ID, nil
}

func (s *GormStore) UpdateCustomer(ctx context.Context, id int, update CustomerUpdate) (bool, error) {
	customer, err := s.GetCustomer(ctx, id)
	if err != nil {
		return false, err
	}
	if customer == nil {
		log.Printf("[STORE] customer %d not found for update", id)
		return false, nil
	}

	update.apply(customer)
	if err := s.db.WithContext(ctx).Save(customer).Error; err != nil {
		return false, fmt.Errorf("failed to update customer %d: %w", id, err)
	}
	return true, nil
}

func (s *GormStore) DeleteCustomer(ctx context.Context, id int) (bool, error) {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Customer{})
	if result.Error != nil {
		return false, fmt.Errorf("failed to delete customer %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		log.Printf("[STORE] customer %d not found for deletion", id)
		return false, nil
	}
	return true, nil
}

func (s *GormStore) GetCustomer(ctx context.Context, id int) (*models.Customer, error) {
	var customer models.Customer
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&customer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get customer %d: %w", id, err)
	}
	return &customer, nil
}

func (s *GormStore) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	customers := []models.Customer{}
	if err := s.db.WithContext(ctx).Order("id").Find(&customers).Error; err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	return customers, nil
}

func (s *GormStore) FindCustomerByPhone(ctx context.Context, phone string) (*models.Customer, error) {
	var customer models.Customer
	err := s.db.WithContext(ctx).Where("phone = ?", phone).Order("id").First(&customer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find customer by phone: %w", err)
	}
	return &customer, nil
}

func (s *GormStore) SearchCustomers(ctx context.Context, query string) ([]models.Customer, error) {
	customers := []models.Customer{}
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return customers, nil
	}
	err := s.db.WithContext(ctx).
		Where("LOWER(name) LIKE ? OR phone = ?", "%"+q+"%", q).
		Order("id").
		Find(&customers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search customers: %w", err)
	}
	return customers, nil
}

func (s *GormStore) AddVisit(ctx context.Context, in NewVisit) (int, error) {
	now := clock()
	visit := models.Visit{
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

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Visit{}).Count(&count).Error; err != nil {
			return err
		}
		visit.VisitID = int(count) + 1
		return tx.Create(&visit).Error
	})
	if err != nil {
		return 0, fmt.Errorf("failed to add visit: %w", err)
	}

	log.Printf("[STORE] added visit %d for customer %d (%d points)", visit.VisitID, visit.CustomerID, visit.Points)
	return visit.VisitID, nil
}

func (s *GormStore) ListVisits(ctx context.Context) ([]models.Visit, error) {
	return s.findVisits(s.db.WithContext(ctx))
}

func (s *GormStore) GetVisitsByCustomer(ctx context.Context, customerID int) ([]models.Visit, error) {
	return s.findVisits(s.db.WithContext(ctx).Where("customer_id = ?", customerID))
}

func (s *GormStore) GetVisitsByDateRange(ctx context.Context, start, end string) ([]models.Visit, error) {
	dateCol := clause.Column{Name: "date"}
	return s.findVisits(s.db.WithContext(ctx).
		Where(clause.Gte{Column: dateCol, Value: start}).
		Where(clause.Lte{Column: dateCol, Value: end}))
}

func (s *GormStore) findVisits(query *gorm.DB) ([]models.Visit, error) {
	visits := []models.Visit{}
	if err := query.Order("visit_id").Find(&visits).Error; err != nil {
		return nil, fmt.Errorf("failed to query visits: %w", err)
	}
	return visits, nil
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
