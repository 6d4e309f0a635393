package controllers

import (
	"errors"
	"log"
	"net/http"

	"trinix-backend/analytics"
	"trinix-backend/models"
	"trinix-backend/services"
	"trinix-backend/store"
	"trinix-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// CreateVisitInput records one check-in. Without customer_id the visit is a
// manual walk-in resolved from walk_in_name / walk_in_phone.
type CreateVisitInput struct {
	CustomerID    *int            `json:"customer_id"`
	WalkInName    string          `json:"walk_in_name"`
	WalkInPhone   string          `json:"walk_in_phone"`
	GameGenre     string          `json:"game_genre" binding:"required"`
	Console       string          `json:"console" binding:"required"`
	PaymentMethod string          `json:"payment_method" binding:"required"`
	PaymentAmount decimal.Decimal `json:"payment_amount"`
	SnacksAmount  decimal.Decimal `json:"snacks_amount"`
	SnacksDetails string          `json:"snacks_details"`
	FriendsCount  int             `json:"friends_count" binding:"min=0"`
}

type VisitController struct {
	Store   store.RecordStore
	Checkin *services.CheckinService
	// Notifier is nil when visit SMS is disabled.
	Notifier *services.VisitNotifier
}

func (vc *VisitController) CreateVisit(c *gin.Context) {
	var input CreateVisitInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if !models.OneOf(input.GameGenre, models.GameGenres) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid game genre")
		return
	}
	if !models.OneOf(input.Console, models.Consoles) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid console")
		return
	}
	if !models.OneOf(input.PaymentMethod, models.PaymentMethods) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid payment method")
		return
	}
	if input.PaymentAmount.IsNegative() || input.SnacksAmount.IsNegative() {
		utils.RespondWithError(c, http.StatusBadRequest, "Amounts cannot be negative")
		return
	}

	ctx := c.Request.Context()
	var customer *models.Customer
	walkIn := false

	if input.CustomerID != nil {
		found, err := vc.Store.GetCustomer(ctx, *input.CustomerID)
		if err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve customer")
			return
		}
		if found == nil {
			utils.RespondWithError(c, http.StatusNotFound, "Customer not found")
			return
		}
		customer = found
	} else {
		found, created, err := vc.Checkin.WalkIn(ctx, input.WalkInName, input.WalkInPhone)
		if errors.Is(err, services.ErrInvalidPhone) {
			utils.RespondWithError(c, http.StatusBadRequest, "Phone number must be exactly 10 digits without any decimals or special characters")
			return
		}
		if err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to resolve walk-in customer")
			return
		}
		customer = found
		walkIn = created
	}

	visitID, err := vc.Store.AddVisit(ctx, store.NewVisit{
		CustomerID:    customer.ID,
		GameGenre:     input.GameGenre,
		Console:       input.Console,
		PaymentMethod: input.PaymentMethod,
		PaymentAmount: input.PaymentAmount,
		SnacksAmount:  input.SnacksAmount,
		FriendsCount:  input.FriendsCount,
		SnacksDetails: input.SnacksDetails,
	})
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to record visit")
		return
	}
	points := analytics.CalculatePoints(input.PaymentAmount)

	if vc.Notifier != nil {
		if err := vc.Notifier.Notify(ctx, customer.ID, points); err != nil {
			log.Printf("Failed to send visit SMS for customer %d: %v", customer.ID, err)
		}
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":         "Check-in for " + customer.Name + " completed successfully!",
		"visit_id":        visitID,
		"points":          points,
		"customer":        customer,
		"walk_in_created": walkIn,
	})
}

// GetVisits lists visits dated within ?from= and ?to= (inclusive).
func (vc *VisitController) GetVisits(c *gin.Context) {
	from, to, ok := dateRange(c)
	if !ok {
		return
	}
	visits, err := vc.Store.GetVisitsByDateRange(c.Request.Context(), from, to)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve visits")
		return
	}
	c.JSON(http.StatusOK, visits)
}
