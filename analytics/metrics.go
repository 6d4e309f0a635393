package analytics

import (
	"fmt"
	"sort"
	"time"

	"trinix-backend/models"
	"trinix-backend/utils"

	"github.com/shopspring/decimal"
)

// Frequency labels
const (
	FrequencyNone       = "N/A"
	FrequencyFirstVisit = "First Visit"
	FrequencyWeekly     = "Weekly"
	FrequencyMonthly    = "Monthly"
	FrequencyOccasional = "Occasional"
)

type DailySales struct {
	Gaming     decimal.Decimal `json:"gaming"`
	Snacks     decimal.Decimal `json:"snacks"`
	Total      decimal.Decimal `json:"total"`
	VisitCount int             `json:"visit_count"`
}

type SalesReport struct {
	TotalGaming decimal.Decimal       `json:"total_gaming"`
	TotalSnacks decimal.Decimal       `json:"total_snacks"`
	TotalSales  decimal.Decimal       `json:"total_sales"`
	DailySales  map[string]DailySales `json:"daily_sales"`
}

type PaymentBreakdown struct {
	Amount decimal.Decimal `json:"amount"`
	Count  int             `json:"count"`
}

type ShiftSummary struct {
	Date           string                      `json:"date"`
	TotalCustomers int                         `json:"total_customers"`
	TotalGaming    decimal.Decimal             `json:"total_gaming"`
	TotalSnacks    decimal.Decimal             `json:"total_snacks"`
	TotalSales     decimal.Decimal             `json:"total_sales"`
	PaymentMethods map[string]PaymentBreakdown `json:"payment_methods"`
	Consoles       map[string]int              `json:"consoles"`
	GameGenres     map[string]int              `json:"game_genres"`
}

type VisitFrequency struct {
	TotalVisits int    `json:"total_visits"`
	FirstVisit  string `json:"first_visit"`
	LastVisit   string `json:"last_visit"`
	Frequency   string `json:"frequency"`
}

// SalesByDateRange totals gaming and snack sales over visits already
// filtered to the range, and groups them per date.
func SalesByDateRange(visits []models.Visit) SalesReport {
	report := SalesReport{
		TotalGaming: decimal.Zero,
		TotalSnacks: decimal.Zero,
		TotalSales:  decimal.Zero,
		DailySales:  map[string]DailySales{},
	}

	for _, v := range visits {
		report.TotalGaming = report.TotalGaming.Add(v.PaymentAmount)
		report.TotalSnacks = report.TotalSnacks.Add(v.SnacksAmount)

		day, ok := report.DailySales[v.Date]
		if !ok {
			day = DailySales{Gaming: decimal.Zero, Snacks: decimal.Zero, Total: decimal.Zero}
		}
		day.Gaming = day.Gaming.Add(v.PaymentAmount)
		day.Snacks = day.Snacks.Add(v.SnacksAmount)
		day.Total = day.Gaming.Add(day.Snacks)
		day.VisitCount++
		report.DailySales[v.Date] = day
	}
	report.TotalSales = report.TotalGaming.Add(report.TotalSnacks)

	return report
}

// EmptyShiftSummary is the all-zero summary for a date without visits.
func EmptyShiftSummary(date string) ShiftSummary {
	return ShiftSummary{
		Date:           date,
		TotalGaming:    decimal.Zero,
		TotalSnacks:    decimal.Zero,
		TotalSales:     decimal.Zero,
		PaymentMethods: map[string]PaymentBreakdown{},
		Consoles:       map[string]int{},
		GameGenres:     map[string]int{},
	}
}

// Shift summarizes the visits that fall exactly on date.
func Shift(date string, visits []models.Visit) ShiftSummary {
	summary := EmptyShiftSummary(date)
	customers := map[int]struct{}{}

	for _, v := range visits {
		if v.Date != date {
			continue
		}
		customers[v.CustomerID] = struct{}{}
		summary.TotalGaming = summary.TotalGaming.Add(v.PaymentAmount)
		summary.TotalSnacks = summary.TotalSnacks.Add(v.SnacksAmount)

		method := summary.PaymentMethods[v.PaymentMethod]
		if method.Count == 0 {
			method.Amount = decimal.Zero
		}
		method.Amount = method.Amount.Add(v.PaymentAmount)
		method.Count++
		summary.PaymentMethods[v.PaymentMethod] = method

		summary.Consoles[v.Console]++
		summary.GameGenres[v.GameGenre]++
	}
	summary.TotalCustomers = len(customers)
	summary.TotalSales = summary.TotalGaming.Add(summary.TotalSnacks)

	return summary
}

// Frequency classifies a single customer's visits by the span between the
// first and last visit date.
func Frequency(visits []models.Visit) (VisitFrequency, error) {
	if len(visits) == 0 {
		return VisitFrequency{Frequency: FrequencyNone}, nil
	}

	sorted := make([]models.Visit, len(visits))
	copy(sorted, visits)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date < sorted[j].Date
	})

	first := sorted[0].Date
	last := sorted[len(sorted)-1].Date
	firstDate, err := time.Parse(utils.DateLayout, first)
	if err != nil {
		return VisitFrequency{}, fmt.Errorf("invalid visit date %q: %w", first, err)
	}
	lastDate, err := time.Parse(utils.DateLayout, last)
	if err != nil {
		return VisitFrequency{}, fmt.Errorf("invalid visit date %q: %w", last, err)
	}

	return VisitFrequency{
		TotalVisits: len(sorted),
		FirstVisit:  first,
		LastVisit:   last,
		Frequency:   classifySpan(utils.DaysBetween(firstDate, lastDate)),
	}, nil
}

func classifySpan(days int) string {
	switch {
	case days == 0:
		return FrequencyFirstVisit
	case days <= 7:
		return FrequencyWeekly
	case days <= 30:
		return FrequencyMonthly
	default:
		return FrequencyOccasional
	}
}

// CustomerPoints totals persisted points per customer.
func CustomerPoints(visits []models.Visit) map[int]int {
	totals := map[int]int{}
	for _, v := range visits {
		totals[v.CustomerID] += v.Points
	}
	return totals
}

// DailyVisitCounts counts visits per date.
func DailyVisitCounts(visits []models.Visit) map[string]int {
	counts := map[string]int{}
	for _, v := range visits {
		counts[v.Date]++
	}
	return counts
}
