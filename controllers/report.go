package controllers

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"trinix-backend/services"
	"trinix-backend/store"
	"trinix-backend/utils"

	"github.com/gin-gonic/gin"
)

type CloseShiftInput struct {
	Date string `json:"date"`
}

type ExportInput struct {
	From string `json:"from" binding:"required"`
	To   string `json:"to" binding:"required"`
}

type ReportController struct {
	Store      store.RecordStore
	Shifts     *services.ShiftService
	Exports    *services.ExportService
	ReportsDir string
}

// GetSales returns gaming, snack and per-day totals for ?from= / ?to=.
func (rc *ReportController) GetSales(c *gin.Context) {
	from, to, ok := dateRange(c)
	if !ok {
		return
	}
	report, err := store.GetSalesByDateRange(c.Request.Context(), rc.Store, from, to)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve sales")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"from":   from,
		"to":     to,
		"report": report,
	})
}

func (rc *ReportController) GetShift(c *gin.Context) {
	date := c.DefaultQuery("date", utils.Today())
	if !utils.ValidateDate(date) {
		utils.RespondWithError(c, http.StatusBadRequest, "Dates must use the YYYY-MM-DD format")
		return
	}
	summary, err := store.GetShiftSummary(c.Request.Context(), rc.Store, date)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve shift summary")
		return
	}
	c.JSON(http.StatusOK, summary)
}

// CloseShift renders the shift PDF and texts the manager. The body is
// optional; without a date the current day is closed.
func (rc *ReportController) CloseShift(c *gin.Context) {
	var input CloseShiftInput
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
			return
		}
	}
	if input.Date != "" && !utils.ValidateDate(input.Date) {
		utils.RespondWithError(c, http.StatusBadRequest, "Dates must use the YYYY-MM-DD format")
		return
	}

	result, err := rc.Shifts.CloseShiftFor(c.Request.Context(), input.Date)
	if errors.Is(err, services.ErrNoData) {
		utils.RespondWithError(c, http.StatusNotFound, "No customer data available for the shift")
		return
	}
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to close shift")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"summary":  result.Summary,
		"report":   filepath.Base(result.ReportPath),
		"notified": result.Notified,
	})
}

// Export bundles visits, customers and a joined sheet for a date range.
func (rc *ReportController) Export(c *gin.Context) {
	var input ExportInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	from, to, ok := checkRange(c, input.From, input.To)
	if !ok {
		return
	}

	bundle, err := rc.Exports.Export(c.Request.Context(), rc.Store, from, to)
	if errors.Is(err, services.ErrNoData) {
		utils.RespondWithError(c, http.StatusNotFound, "No data found for the selected date range")
		return
	}
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to export data")
		return
	}
	c.JSON(http.StatusCreated, bundle)
}

// Download serves a generated report or export by file name. Only the base
// name is honoured so requests cannot leave the reports directory.
func (rc *ReportController) Download(c *gin.Context) {
	name := filepath.Base(c.Param("name"))
	if name == "." || name == "/" || name == ".." {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid file name")
		return
	}
	path := filepath.Join(rc.ReportsDir, name)
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		utils.RespondWithError(c, http.StatusNotFound, "File not found")
		return
	}
	c.FileAttachment(path, name)
}
