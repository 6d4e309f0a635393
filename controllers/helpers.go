package controllers

import (
	"net/http"
	"strconv"

	"trinix-backend/utils"

	"github.com/gin-gonic/gin"
)

// idParam parses the :id path parameter, answering 400 when it is not a
// positive integer.
func idParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid customer ID")
		return 0, false
	}
	return id, true
}

// dateRange reads ?from= and ?to=, both defaulting to today.
func dateRange(c *gin.Context) (string, string, bool) {
	today := utils.Today()
	from := c.DefaultQuery("from", today)
	to := c.DefaultQuery("to", today)
	return checkRange(c, from, to)
}

func checkRange(c *gin.Context, from, to string) (string, string, bool) {
	if !utils.ValidateDate(from) || !utils.ValidateDate(to) {
		utils.RespondWithError(c, http.StatusBadRequest, "Dates must use the YYYY-MM-DD format")
		return "", "", false
	}
	if from > to {
		utils.RespondWithError(c, http.StatusBadRequest, "'from' must not be after 'to'")
		return "", "", false
	}
	return from, to, true
}
