package controllers

import (
	"errors"
	"net/http"
	"strings"

	"trinix-backend/services"
	"trinix-backend/utils"

	"github.com/gin-gonic/gin"
)

type ScanInput struct {
	Data string `json:"data" binding:"required"`
}

type CheckinController struct {
	Checkin *services.CheckinService
}

// Scan resolves a badge either from an uploaded image (multipart field
// "image") or from text already decoded by the front-end ({"data": ...}).
func (cc *CheckinController) Scan(c *gin.Context) {
	ctx := c.Request.Context()

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		header, err := c.FormFile("image")
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Image file is required")
			return
		}
		file, err := header.Open()
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Failed to read image")
			return
		}
		defer file.Close()

		decoded, customer, err := cc.Checkin.Scan(ctx, file)
		if errors.Is(err, services.ErrNoQRCode) {
			utils.RespondWithError(c, http.StatusUnprocessableEntity, "No QR code found. Please try again or register a new customer.")
			return
		}
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Failed to process image")
			return
		}
		if customer == nil {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Customer not found", "data": decoded})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": decoded, "customer": customer})
		return
	}

	var input ScanInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	data := input.Data

	customer, err := cc.Checkin.Resolve(ctx, data)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to look up customer")
		return
	}
	if customer == nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Customer not found", "data": data})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": data, "customer": customer})
}

// Lookup finds a customer for manual entry by ?name= and/or ?phone=.
func (cc *CheckinController) Lookup(c *gin.Context) {
	name := c.Query("name")
	phone := c.Query("phone")
	if strings.TrimSpace(name) == "" && strings.TrimSpace(phone) == "" {
		utils.RespondWithError(c, http.StatusBadRequest, "Please enter a customer name or phone number to search")
		return
	}

	customer, err := cc.Checkin.Lookup(c.Request.Context(), name, phone)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to look up customer")
		return
	}
	if customer == nil {
		utils.RespondWithError(c, http.StatusNotFound, "Customer not registered")
		return
	}
	c.JSON(http.StatusOK, customer)
}
