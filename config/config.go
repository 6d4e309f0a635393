package config

import (
	"os"
	"strconv"
	"strings"
)

// Settings holds everything read from the environment at startup.
type Settings struct {
	Port        string
	StoreDriver string
	DataDir     string
	DBURL       string

	QRDir      string
	ReportsDir string
	LoungeName string
	Currency   string

	StaffUsername     string
	StaffPasswordHash string

	ShiftCloseCron string

	TwilioAccountSID  string
	TwilioAuthToken   string
	TwilioPhoneNumber string
	ManagerPhone      string
	VisitSMSEnabled   bool
	SMSCountryCode    string

	CORSOrigins []string
}

func Load() Settings {
	return Settings{
		Port:        getenv("PORT", "8080"),
		StoreDriver: strings.ToLower(getenv("STORE_DRIVER", "csv")),
		DataDir:     getenv("DATA_DIR", "data"),
		DBURL:       os.Getenv("DB_URL"),

		QRDir:      getenv("QR_DIR", "qr_codes"),
		ReportsDir: getenv("REPORTS_DIR", "reports"),
		LoungeName: getenv("LOUNGE_NAME", "Trinix Gaming"),
		Currency:   getenv("CURRENCY", "KES"),

		StaffUsername:     os.Getenv("STAFF_USERNAME"),
		StaffPasswordHash: os.Getenv("STAFF_PASSWORD_HASH"),

		ShiftCloseCron: getenv("SHIFT_CLOSE_CRON", "0 23 * * *"),

		TwilioAccountSID:  os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:   os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioPhoneNumber: os.Getenv("TWILIO_PHONE_NUMBER"),
		ManagerPhone:      os.Getenv("MANAGER_PHONE"),
		VisitSMSEnabled:   envBool("VISIT_SMS_ENABLED", false),
		SMSCountryCode:    getenv("SMS_COUNTRY_CODE", "+254"),

		CORSOrigins: splitList(getenv("CORS_ORIGINS", "http://localhost:3000")),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func splitList(s string) []string {
	out := []string{}
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
