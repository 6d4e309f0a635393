// Package store persists customers and visits. Two backends share the
// RecordStore contract: flat CSV files rewritten on every mutation, and an
// indexed SQL table through GORM.
package store

import (
	"context"
	"errors"
	"time"

	"trinix-backend/models"

	"github.com/shopspring/decimal"
)

// ErrUnknownDriver is returned by Open for an unsupported STORE_DRIVER.
var ErrUnknownDriver = errors.New("unknown store driver")

// NewCustomer carries the registration fields. The store does not validate
// them.
type NewCustomer struct {
	Name       string
	Phone      string
	AgeGroup   string
	Location   string
	Occupation string
	QRCodePath string
}

// CustomerUpdate lists editable fields; nil fields are left untouched.
type CustomerUpdate struct {
	Name       *string
	Phone      *string
	AgeGroup   *string
	Location   *string
	Occupation *string
	QRCodePath *string
}

func (u CustomerUpdate) apply(c *models.Customer) {
	if u.Name != nil {
		c.Name = *u.Name
	}
	if u.Phone != nil {
		c.Phone = *u.Phone
	}
	if u.AgeGroup != nil {
		c.AgeGroup = *u.AgeGroup
	}
	if u.Location != nil {
		c.Location = *u.Location
	}
	if u.Occupation != nil {
		c.Occupation = *u.Occupation
	}
	if u.QRCodePath != nil {
		c.QRCodePath = *u.QRCodePath
	}
}

// NewVisit carries the check-in fields. CustomerID need not exist.
type NewVisit struct {
	CustomerID    int
	GameGenre     string
	Console       string
	PaymentMethod string
	PaymentAmount decimal.Decimal
	SnacksAmount  decimal.Decimal
	FriendsCount  int
	SnacksDetails string
}

// RecordStore is the persistence contract used by the API. Lookups and
// mutations on missing customers report "not found" through a false/nil
// result, never through the error, which is reserved for I/O failures.
type RecordStore interface {
	AddCustomer(ctx context.Context, in NewCustomer) (int, error)
	UpdateCustomer(ctx context.Context, id int, update CustomerUpdate) (bool, error)
	DeleteCustomer(ctx context.Context, id int) (bool, error)
	GetCustomer(ctx context.Context, id int) (*models.Customer, error)
	ListCustomers(ctx context.Context) ([]models.Customer, error)
	FindCustomerByPhone(ctx context.Context, phone string) (*models.Customer, error)
	SearchCustomers(ctx context.Context, query string) ([]models.Customer, error)

	AddVisit(ctx context.Context, in NewVisit) (int, error)
	ListVisits(ctx context.Context) ([]models.Visit, error)
	GetVisitsByCustomer(ctx context.Context, customerID int) ([]models.Visit, error)
	GetVisitsByDateRange(ctx context.Context, start, end string) ([]models.Visit, error)

	Close() error
}

// clock is swapped in tests to pin the registration and visit timestamps.
var clock = time.Now
