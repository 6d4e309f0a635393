package controllers

import (
	"net/http"
	"sort"
	"time"

	"trinix-backend/analytics"
	"trinix-backend/models"
	"trinix-backend/store"
	"trinix-backend/utils"

	"github.com/gin-gonic/gin"
)

const recentVisitLimit = 10

type RecentVisit struct {
	models.Visit
	CustomerName string `json:"customer_name"`
}

type DashboardController struct {
	Store store.RecordStore
}

// GetDashboardOverview returns today's shift figures, the latest visits and
// the last seven days of traffic and sales.
func (dc *DashboardController) GetDashboardOverview(c *gin.Context) {
	ctx := c.Request.Context()
	now := time.Now()
	today := utils.FormatDate(now)
	weekStart := utils.FormatDate(now.AddDate(0, 0, -6))

	customers, err := dc.Store.ListCustomers(ctx)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve customers")
		return
	}
	visits, err := dc.Store.ListVisits(ctx)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve visits")
		return
	}
	week, err := dc.Store.GetVisitsByDateRange(ctx, weekStart, today)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve visits")
		return
	}

	var todays []models.Visit
	for _, v := range week {
		if v.Date == today {
			todays = append(todays, v)
		}
	}

	names := make(map[int]string, len(customers))
	for _, cu := range customers {
		names[cu.ID] = cu.Name
	}

	sorted := make([]models.Visit, len(visits))
	copy(sorted, visits)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Date != sorted[j].Date {
			return sorted[i].Date > sorted[j].Date
		}
		if sorted[i].Time != sorted[j].Time {
			return sorted[i].Time > sorted[j].Time
		}
		return sorted[i].VisitID > sorted[j].VisitID
	})
	if len(sorted) > recentVisitLimit {
		sorted = sorted[:recentVisitLimit]
	}
	recent := make([]RecentVisit, 0, len(sorted))
	for _, v := range sorted {
		recent = append(recent, RecentVisit{Visit: v, CustomerName: names[v.CustomerID]})
	}

	c.JSON(http.StatusOK, gin.H{
		"today":           analytics.Shift(today, todays),
		"total_customers": len(customers),
		"total_visits":    len(visits),
		"recent_visits":   recent,
		"daily_visits":    analytics.DailyVisitCounts(week),
		"weekly_sales":    analytics.SalesByDateRange(week),
	})
}
