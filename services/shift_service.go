// services/shift_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"trinix-backend/analytics"
	"trinix-backend/store"

	"github.com/robfig/cron/v3"
)

// ShiftClose is the outcome of closing one shift.
type ShiftClose struct {
	Summary    analytics.ShiftSummary `json:"summary"`
	ReportPath string                 `json:"report_path"`
	Notified   bool                   `json:"notified"`
}

type ShiftService struct {
	store        store.RecordStore
	reports      *ReportService
	notifier     Notifier
	managerPhone string
	lounge       string
	currency     string
	cron         *cron.Cron
}

func NewShiftService(rs store.RecordStore, reports *ReportService, notifier Notifier, managerPhone, lounge, currency string) *ShiftService {
	return &ShiftService{
		store:        rs,
		reports:      reports,
		notifier:     notifier,
		managerPhone: managerPhone,
		lounge:       lounge,
		currency:     currency,
	}
}

// StartScheduler closes the current shift on the given cron schedule.
func (s *ShiftService) StartScheduler(spec string) error {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		if _, err := s.CloseShift(context.Background()); err != nil {
			if errors.Is(err, ErrNoData) {
				log.Println("[SHIFT] no visits today, nothing to close")
				return
			}
			log.Printf("[SHIFT] failed to close shift: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid shift schedule %q: %w", spec, err)
	}

	c.Start()
	s.cron = c
	log.Printf("[SHIFT] scheduler started (%s)", spec)
	return nil
}

// Stop halts the scheduler and waits for a running job to finish.
func (s *ShiftService) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
	log.Println("[SHIFT] scheduler stopped")
}

func (s *ShiftService) CloseShift(ctx context.Context) (*ShiftClose, error) {
	return s.CloseShiftFor(ctx, "")
}

// CloseShiftFor renders the shift report for date (today when empty) and
// texts the summary to the manager. A failed message does not fail the
// close; the report is already on disk.
func (s *ShiftService) CloseShiftFor(ctx context.Context, date string) (*ShiftClose, error) {
	summary, err := store.GetShiftSummary(ctx, s.store, date)
	if err != nil {
		return nil, err
	}

	path, err := s.reports.ShiftReport(summary)
	if err != nil {
		return nil, err
	}
	log.Printf("[SHIFT] %s closed: %d customers, total %s, report %s",
		summary.Date, summary.TotalCustomers, summary.TotalSales.StringFixed(2), path)

	result := &ShiftClose{Summary: summary, ReportPath: path}
	if s.managerPhone == "" {
		return result, nil
	}
	if err := s.notifier.Send(s.managerPhone, ShiftMessage(s.lounge, s.currency, summary)); err != nil {
		log.Printf("[SHIFT] failed to notify manager: %v", err)
		return result, nil
	}
	result.Notified = true
	return result, nil
}
