package store

import (
	"context"

	"trinix-backend/analytics"
	"trinix-backend/utils"
)

// GetSalesByDateRange aggregates sales for visits dated within [start, end].
func GetSalesByDateRange(ctx context.Context, s RecordStore, start, end string) (analytics.SalesReport, error) {
	visits, err := s.GetVisitsByDateRange(ctx, start, end)
	if err != nil {
		return analytics.SalesReport{}, err
	}
	return analytics.SalesByDateRange(visits), nil
}

// GetShiftSummary summarizes a single date; an empty date means today.
func GetShiftSummary(ctx context.Context, s RecordStore, date string) (analytics.ShiftSummary, error) {
	if date == "" {
		date = utils.FormatDate(clock())
	}
	visits, err := s.GetVisitsByDateRange(ctx, date, date)
	if err != nil {
		return analytics.ShiftSummary{}, err
	}
	return analytics.Shift(date, visits), nil
}

// GetCustomerVisitFrequency classifies how often a customer comes in.
func GetCustomerVisitFrequency(ctx context.Context, s RecordStore, customerID int) (analytics.VisitFrequency, error) {
	visits, err := s.GetVisitsByCustomer(ctx, customerID)
	if err != nil {
		return analytics.VisitFrequency{}, err
	}
	return analytics.Frequency(visits)
}
