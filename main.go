package main

import (
	"fmt"
	"log"
	"os"

	"trinix-backend/config"
	"trinix-backend/routes"
	"trinix-backend/services"
	"trinix-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

func init() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	decimal.MarshalJSONWithoutQuotes = true
}

func main() {
	if len(os.Args) > 1 {
		runCommand(os.Args[1:])
		return
	}

	settings := config.Load()

	rs, err := config.ConnectStore(settings)
	if err != nil {
		log.Fatalf("Failed to open record store: %v", err)
	}
	defer rs.Close()

	notifier := services.NewNotifier(settings.TwilioAccountSID, settings.TwilioAuthToken, settings.TwilioPhoneNumber)
	badges := services.NewBadgeService(settings.QRDir, settings.LoungeName)
	reports := services.NewReportService(settings.ReportsDir, settings.LoungeName, settings.Currency)
	managerPhone := services.InternationalPhone(settings.ManagerPhone, settings.SMSCountryCode)
	shifts := services.NewShiftService(rs, reports, notifier, managerPhone, settings.LoungeName, settings.Currency)

	if err := shifts.StartScheduler(settings.ShiftCloseCron); err != nil {
		log.Fatalf("Failed to start shift scheduler: %v", err)
	}
	defer shifts.Stop()

	deps := routes.Deps{
		Settings: settings,
		Store:    rs,
		Badges:   badges,
		Checkin:  services.NewCheckinService(rs, badges),
		Shifts:   shifts,
		Exports:  services.NewExportService(settings.ReportsDir, settings.LoungeName),
	}
	if settings.VisitSMSEnabled {
		deps.VisitSMS = services.NewVisitNotifier(rs, notifier, settings.LoungeName, settings.SMSCountryCode)
	}

	r := routes.SetupRouter(deps)
	printRoutes(r)
	if err := r.Run(":" + settings.Port); err != nil {
		log.Printf("Server stopped: %v", err)
	}
}

// runCommand handles the setup helpers:
//
//	hash-password <password>   print a bcrypt hash for STAFF_PASSWORD_HASH
//	gen-secret                 print a random JWT_SECRET
func runCommand(args []string) {
	switch args[0] {
	case "hash-password":
		if len(args) < 2 {
			log.Fatal("usage: hash-password <password>")
		}
		hash, err := utils.HashPassword(args[1])
		if err != nil {
			log.Fatalf("Failed to hash password: %v", err)
		}
		fmt.Println(hash)
	case "gen-secret":
		fmt.Println(utils.GenerateJWTSecret())
	default:
		log.Fatalf("unknown command %q (want hash-password or gen-secret)", args[0])
	}
}

func printRoutes(r *gin.Engine) {
	routes := r.Routes()
	for _, route := range routes {
		fmt.Printf("%-6s %s\n", route.Method, route.Path)
	}
}
