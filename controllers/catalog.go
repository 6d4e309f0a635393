// controllers/catalog.go
package controllers

import (
	"net/http"

	"trinix-backend/models"

	"github.com/gin-gonic/gin"
)

// GetCatalog lists the choices offered on the registration and check-in
// forms.
func GetCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, models.DefaultCatalog())
}
