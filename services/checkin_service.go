package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"trinix-backend/models"
	"trinix-backend/store"
	"trinix-backend/utils"
)

// Placeholder values for customers created from a manual check-in.
const (
	WalkInName     = "Temporary Customer"
	WalkInPhone    = "0000000000"
	WalkInLocation = "Manual Entry"
)

var ErrInvalidPhone = errors.New("phone number must be exactly 10 digits")

type CheckinService struct {
	store  store.RecordStore
	badges *BadgeService
}

func NewCheckinService(rs store.RecordStore, badges *BadgeService) *CheckinService {
	return &CheckinService{store: rs, badges: badges}
}

// Scan decodes a badge image and resolves it. A decoded badge that matches
// nobody returns the data with a nil customer.
func (s *CheckinService) Scan(ctx context.Context, image io.Reader) (string, *models.Customer, error) {
	data, err := s.badges.Decode(image)
	if err != nil {
		return "", nil, err
	}
	customer, err := s.Resolve(ctx, data)
	return data, customer, err
}

// Resolve matches raw badge text against the current customers.
func (s *CheckinService) Resolve(ctx context.Context, data string) (*models.Customer, error) {
	customers, err := s.store.ListCustomers(ctx)
	if err != nil {
		return nil, err
	}
	customer := ResolveBadge(data, customers)
	if customer == nil {
		log.Printf("[CHECKIN] no customer matches badge %q", data)
	}
	return customer, nil
}

// Lookup searches by phone first (exact, then partial), falling back to a
// case-insensitive name match. Digits typed into the name box count as a
// phone number.
func (s *CheckinService) Lookup(ctx context.Context, name, phone string) (*models.Customer, error) {
	customers, err := s.store.ListCustomers(ctx)
	if err != nil {
		return nil, err
	}
	return LookupCustomer(customers, name, phone), nil
}

func LookupCustomer(customers []models.Customer, name, phone string) *models.Customer {
	name = strings.TrimSpace(name)
	phoneDigits := utils.CleanPhone(phone)
	nameDigits := utils.CleanPhone(name)

	find := func(match func(models.Customer) bool) *models.Customer {
		for i := range customers {
			if match(customers[i]) {
				return &customers[i]
			}
		}
		return nil
	}

	for _, digits := range []string{phoneDigits, nameDigits} {
		if len(digits) != 10 {
			continue
		}
		if c := find(func(c models.Customer) bool { return c.Phone == digits }); c != nil {
			return c
		}
	}

	if name != "" {
		lower := strings.ToLower(name)
		if c := find(func(c models.Customer) bool { return strings.Contains(strings.ToLower(c.Name), lower) }); c != nil {
			return c
		}
	}

	for _, digits := range []string{phoneDigits, nameDigits} {
		if digits == "" {
			continue
		}
		if c := find(func(c models.Customer) bool { return strings.Contains(c.Phone, digits) }); c != nil {
			return c
		}
	}
	return nil
}

// WalkIn finds the customer for a manual check-in by name, then by phone,
// and registers a placeholder customer when neither matches.
func (s *CheckinService) WalkIn(ctx context.Context, name, phone string) (*models.Customer, bool, error) {
	name = strings.TrimSpace(name)
	digits := utils.CleanPhone(phone)
	if digits != "" && len(digits) != 10 {
		return nil, false, ErrInvalidPhone
	}

	if name != "" {
		customers, err := s.store.ListCustomers(ctx)
		if err != nil {
			return nil, false, err
		}
		lower := strings.ToLower(name)
		for i := range customers {
			if strings.Contains(strings.ToLower(customers[i].Name), lower) {
				return &customers[i], false, nil
			}
		}
	}

	if digits != "" {
		existing, err := s.store.FindCustomerByPhone(ctx, digits)
		if err != nil {
			return nil, false, err
		}
		if existing != nil {
			return existing, false, nil
		}
	}

	in := store.NewCustomer{
		Name:       name,
		Phone:      digits,
		AgeGroup:   models.Unknown,
		Location:   WalkInLocation,
		Occupation: models.Unknown,
	}
	if in.Name == "" {
		in.Name = WalkInName
	}
	if in.Phone == "" {
		in.Phone = WalkInPhone
	}

	id, err := s.store.AddCustomer(ctx, in)
	if err != nil {
		return nil, false, fmt.Errorf("failed to register walk-in customer: %w", err)
	}
	customer, err := s.store.GetCustomer(ctx, id)
	if err != nil {
		return nil, false, err
	}
	log.Printf("[CHECKIN] registered walk-in customer %d", id)
	return customer, true, nil
}
