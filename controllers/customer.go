package controllers

import (
	"log"
	"net/http"
	"os"
	"strings"

	"trinix-backend/models"
	"trinix-backend/services"
	"trinix-backend/store"
	"trinix-backend/utils"

	"github.com/gin-gonic/gin"
)

// CreateCustomerInput defines the expected JSON structure for registering a customer
type CreateCustomerInput struct {
	Name       string `json:"name" binding:"required"`
	Phone      string `json:"phone" binding:"required"`
	AgeGroup   string `json:"age_group" binding:"required"`
	Location   string `json:"location" binding:"required"`
	Occupation string `json:"occupation" binding:"required"`
}

// UpdateCustomerInput defines the expected JSON structure for editing a customer
type UpdateCustomerInput struct {
	Name       *string `json:"name"`
	Phone      *string `json:"phone"`
	AgeGroup   *string `json:"age_group"`
	Location   *string `json:"location"`
	Occupation *string `json:"occupation"`
}

type CustomerController struct {
	Store  store.RecordStore
	Badges *services.BadgeService
}

// CreateCustomer registers a customer and issues their badge
func (cc *CustomerController) CreateCustomer(c *gin.Context) {
	var input CreateCustomerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	name := strings.TrimSpace(input.Name)
	location := strings.TrimSpace(input.Location)
	if name == "" {
		utils.RespondWithError(c, http.StatusBadRequest, "Please enter a name")
		return
	}
	if location == "" {
		utils.RespondWithError(c, http.StatusBadRequest, "Please enter a location")
		return
	}
	if !utils.ValidatePhone(input.Phone) {
		utils.RespondWithError(c, http.StatusBadRequest, "Phone number must be exactly 10 digits without any decimals or special characters")
		return
	}
	if !models.OneOf(input.AgeGroup, models.AgeGroups) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid age group")
		return
	}
	if !models.OneOf(input.Occupation, models.Occupations) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid occupation")
		return
	}
	phone := utils.CleanPhone(input.Phone)

	ctx := c.Request.Context()
	existing, err := cc.Store.FindCustomerByPhone(ctx, phone)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to check phone number")
		return
	}
	if existing != nil {
		utils.RespondWithError(c, http.StatusConflict, "Customer with this phone number already exists")
		return
	}

	id, err := cc.Store.AddCustomer(ctx, store.NewCustomer{
		Name:       name,
		Phone:      phone,
		AgeGroup:   input.AgeGroup,
		Location:   location,
		Occupation: input.Occupation,
	})
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create customer")
		return
	}

	customer, err := cc.Store.GetCustomer(ctx, id)
	if err != nil || customer == nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to load customer")
		return
	}

	// A failed badge leaves the customer registered; it can be regenerated.
	if updated, err := cc.issueBadge(c, customer); err != nil {
		log.Printf("Failed to generate badge for customer %d: %v", id, err)
	} else {
		customer = updated
	}

	c.JSON(http.StatusCreated, customer)
}

// GetCustomers lists customers. ?q= matches name, phone or location;
// ?occupation= and ?age_group= filter exactly.
func (cc *CustomerController) GetCustomers(c *gin.Context) {
	customers, err := cc.Store.ListCustomers(c.Request.Context())
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve customers")
		return
	}

	q := strings.ToLower(strings.TrimSpace(c.Query("q")))
	occupation := c.Query("occupation")
	ageGroup := c.Query("age_group")

	filtered := []models.Customer{}
	for _, cu := range customers {
		if q != "" &&
			!strings.Contains(strings.ToLower(cu.Name), q) &&
			!strings.Contains(cu.Phone, q) &&
			!strings.Contains(strings.ToLower(cu.Location), q) {
			continue
		}
		if occupation != "" && cu.Occupation != occupation {
			continue
		}
		if ageGroup != "" && cu.AgeGroup != ageGroup {
			continue
		}
		filtered = append(filtered, cu)
	}

	c.JSON(http.StatusOK, filtered)
}

// SearchCustomers is the quick search used at the front desk: name
// substring or exact phone.
func (cc *CustomerController) SearchCustomers(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		utils.RespondWithError(c, http.StatusBadRequest, "Query parameter 'q' is required")
		return
	}
	customers, err := cc.Store.SearchCustomers(c.Request.Context(), q)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to search customers")
		return
	}
	c.JSON(http.StatusOK, customers)
}

func (cc *CustomerController) GetCustomer(c *gin.Context) {
	customer, ok := cc.loadCustomer(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, customer)
}

func (cc *CustomerController) UpdateCustomer(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var input UpdateCustomerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	update := store.CustomerUpdate{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			utils.RespondWithError(c, http.StatusBadRequest, "Name cannot be empty")
			return
		}
		update.Name = &name
	}
	if input.Phone != nil {
		if !utils.ValidatePhone(*input.Phone) {
			utils.RespondWithError(c, http.StatusBadRequest, "Phone number must be exactly 10 digits without any decimals or special characters")
			return
		}
		phone := utils.CleanPhone(*input.Phone)
		update.Phone = &phone
	}
	if input.AgeGroup != nil {
		if !models.OneOf(*input.AgeGroup, models.AgeGroups) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid age group")
			return
		}
		update.AgeGroup = input.AgeGroup
	}
	if input.Location != nil {
		location := strings.TrimSpace(*input.Location)
		update.Location = &location
	}
	if input.Occupation != nil {
		if !models.OneOf(*input.Occupation, models.Occupations) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid occupation")
			return
		}
		update.Occupation = input.Occupation
	}

	ctx := c.Request.Context()
	found, err := cc.Store.UpdateCustomer(ctx, id, update)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update customer")
		return
	}
	if !found {
		utils.RespondWithError(c, http.StatusNotFound, "Customer not found")
		return
	}

	customer, err := cc.Store.GetCustomer(ctx, id)
	if err != nil || customer == nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to load customer")
		return
	}
	c.JSON(http.StatusOK, customer)
}

func (cc *CustomerController) DeleteCustomer(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	found, err := cc.Store.DeleteCustomer(c.Request.Context(), id)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete customer")
		return
	}
	if !found {
		utils.RespondWithError(c, http.StatusNotFound, "Customer not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Customer deleted successfully"})
}

func (cc *CustomerController) GetCustomerVisits(c *gin.Context) {
	customer, ok := cc.loadCustomer(c)
	if !ok {
		return
	}
	visits, err := cc.Store.GetVisitsByCustomer(c.Request.Context(), customer.ID)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve visits")
		return
	}
	c.JSON(http.StatusOK, visits)
}

func (cc *CustomerController) GetCustomerFrequency(c *gin.Context) {
	customer, ok := cc.loadCustomer(c)
	if !ok {
		return
	}
	freq, err := store.GetCustomerVisitFrequency(c.Request.Context(), cc.Store, customer.ID)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to compute visit frequency")
		return
	}
	c.JSON(http.StatusOK, freq)
}

// GetCustomerBadge serves the badge PNG, generating it first when the file
// is missing.
func (cc *CustomerController) GetCustomerBadge(c *gin.Context) {
	customer, ok := cc.loadCustomer(c)
	if !ok {
		return
	}

	path := customer.QRCodePath
	if path == "" || !fileExists(path) {
		updated, err := cc.issueBadge(c, customer)
		if err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to generate badge")
			return
		}
		path = updated.QRCodePath
	}

	c.File(path)
}

// RegenerateCustomerBadge rebuilds the badge from the current name and phone.
func (cc *CustomerController) RegenerateCustomerBadge(c *gin.Context) {
	customer, ok := cc.loadCustomer(c)
	if !ok {
		return
	}

	updated, err := cc.issueBadge(c, customer)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to generate badge")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"customer": updated,
		"token":    services.BadgeToken(*updated),
	})
}

func (cc *CustomerController) loadCustomer(c *gin.Context) (*models.Customer, bool) {
	id, ok := idParam(c)
	if !ok {
		return nil, false
	}
	customer, err := cc.Store.GetCustomer(c.Request.Context(), id)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve customer")
		return nil, false
	}
	if customer == nil {
		utils.RespondWithError(c, http.StatusNotFound, "Customer not found")
		return nil, false
	}
	return customer, true
}

func (cc *CustomerController) issueBadge(c *gin.Context, customer *models.Customer) (*models.Customer, error) {
	path, err := cc.Badges.Generate(*customer)
	if err != nil {
		return nil, err
	}
	if _, err := cc.Store.UpdateCustomer(c.Request.Context(), customer.ID, store.CustomerUpdate{QRCodePath: &path}); err != nil {
		return nil, err
	}
	updated := *customer
	updated.QRCodePath = path
	return &updated, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
