package routes

import (
	"trinix-backend/config"
	"trinix-backend/controllers"
	"trinix-backend/services"
	"trinix-backend/store"
	"trinix-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Deps carries what the handlers need; main builds it once at startup.
type Deps struct {
	Settings config.Settings
	Store    store.RecordStore
	Badges   *services.BadgeService
	Checkin  *services.CheckinService
	Shifts   *services.ShiftService
	Exports  *services.ExportService
	// VisitSMS is nil unless VISIT_SMS_ENABLED is set.
	VisitSMS *services.VisitNotifier
}

func SetupRouter(deps Deps) *gin.Engine {
	r := gin.Default()

	origins := deps.Settings.CORSOrigins
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", config.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", config.RequestIDHeader},
		AllowCredentials: true,
		AllowOriginFunc: func(origin string) bool {
			for _, o := range origins {
				if o == origin {
					return true
				}
			}
			return false
		},
	}))

	r.Use(config.PerformanceLogger())

	authController := &controllers.AuthController{
		Username:     deps.Settings.StaffUsername,
		PasswordHash: deps.Settings.StaffPasswordHash,
	}
	auth := r.Group("/auth")
	{
		auth.POST("/login", authController.Login)

		auth.Use(utils.AuthMiddleware())
		auth.GET("/me", authController.Me)
	}

	customerController := &controllers.CustomerController{Store: deps.Store, Badges: deps.Badges}
	visitController := &controllers.VisitController{Store: deps.Store, Checkin: deps.Checkin, Notifier: deps.VisitSMS}
	checkinController := &controllers.CheckinController{Checkin: deps.Checkin}
	reportController := &controllers.ReportController{
		Store:      deps.Store,
		Shifts:     deps.Shifts,
		Exports:    deps.Exports,
		ReportsDir: deps.Settings.ReportsDir,
	}
	dashboardController := &controllers.DashboardController{Store: deps.Store}

	api := r.Group("/api")
	api.Use(utils.AuthMiddleware())
	{
		api.GET("/catalog", controllers.GetCatalog)

		// Customer routes
		customers := api.Group("/customers")
		{
			customers.POST("", customerController.CreateCustomer)
			customers.GET("", customerController.GetCustomers)
			customers.GET("/search", customerController.SearchCustomers)
			customers.GET("/:id", customerController.GetCustomer)
			customers.PUT("/:id", customerController.UpdateCustomer)
			customers.DELETE("/:id", customerController.DeleteCustomer)
			customers.GET("/:id/visits", customerController.GetCustomerVisits)
			customers.GET("/:id/frequency", customerController.GetCustomerFrequency)
			customers.GET("/:id/badge", customerController.GetCustomerBadge)
			customers.POST("/:id/badge", customerController.RegenerateCustomerBadge)
		}

		// Visit routes
		visits := api.Group("/visits")
		{
			visits.POST("", visitController.CreateVisit)
			visits.GET("", visitController.GetVisits)
		}

		checkin := api.Group("/checkin")
		{
			checkin.POST("/scan", checkinController.Scan)
			checkin.GET("/lookup", checkinController.Lookup)
		}

		// Reports routes
		reports := api.Group("/reports")
		{
			reports.GET("/sales", reportController.GetSales)
			reports.GET("/shift", reportController.GetShift)
			reports.POST("/shift/close", reportController.CloseShift)
			reports.POST("/export", reportController.Export)
			reports.GET("/download/:name", reportController.Download)
		}

		// Dashboard routes
		api.GET("/dashboard", dashboardController.GetDashboardOverview)
	}

	return r
}
