package store

import (
	"log"
	"math"
	"strconv"
	"strings"

	"trinix-backend/models"

	"github.com/shopspring/decimal"
)

// Rows are read as raw text so every column is parsed exactly once, here,
// at the file boundary.

type customerRow struct {
	ID               string `csv:"id"`
	Name             string `csv:"name"`
	Phone            string `csv:"phone"`
	AgeGroup         string `csv:"age_group"`
	Location         string `csv:"location"`
	Occupation       string `csv:"occupation"`
	QRCodePath       string `csv:"qr_code_path"`
	RegistrationDate string `csv:"registration_date"`
}

type visitRow struct {
	VisitID       string `csv:"visit_id"`
	CustomerID    string `csv:"customer_id"`
	Date          string `csv:"date"`
	Time          string `csv:"time"`
	GameGenre     string `csv:"game_genre"`
	Console       string `csv:"console"`
	PaymentMethod string `csv:"payment_method"`
	PaymentAmount string `csv:"payment_amount"`
	SnacksAmount  string `csv:"snacks_amount"`
	SnacksDetails string `csv:"snacks_details"`
	Referrals     string `csv:"referrals"`
	Points        string `csv:"points"`
}

// InvalidID marks an identifier cell that could not be parsed.
const InvalidID = -1

var missingTokens = map[string]bool{
	"nan":  true,
	"NaN":  true,
	"None": true,
	"<NA>": true,
}

// cleanText normalizes the spreadsheet "missing" tokens to empty.
func cleanText(raw string) string {
	if missingTokens[strings.TrimSpace(raw)] {
		return ""
	}
	return raw
}

// parseID accepts "7" as well as float renderings such as "7.0".
func parseID(raw, column string) int {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		log.Printf("[STORE] unparseable %s %q, using %d", column, raw, InvalidID)
		return InvalidID
	}
	return int(f)
}

func parseCount(raw string) int {
	raw = strings.TrimSpace(cleanText(raw))
	if raw == "" {
		return 0
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) {
		log.Printf("[STORE] unparseable count %q, using 0", raw)
		return 0
	}
	return int(f)
}

func parseAmount(raw, column string) decimal.Decimal {
	raw = strings.TrimSpace(cleanText(raw))
	if raw == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		log.Printf("[STORE] unparseable %s %q, using 0", column, raw)
		return decimal.Zero
	}
	return d
}

func (r customerRow) toModel() models.Customer {
	return models.Customer{
		ID:               parseID(r.ID, "customer id"),
		Name:             cleanText(r.Name),
		Phone:            cleanText(r.Phone),
		AgeGroup:         cleanText(r.AgeGroup),
		Location:         cleanText(r.Location),
		Occupation:       cleanText(r.Occupation),
		QRCodePath:       cleanText(r.QRCodePath),
		RegistrationDate: cleanText(r.RegistrationDate),
	}
}

func customerToRow(c models.Customer) customerRow {
	return customerRow{
		ID:               strconv.Itoa(c.ID),
		Name:             c.Name,
		Phone:            c.Phone,
		AgeGroup:         c.AgeGroup,
		Location:         c.Location,
		Occupation:       c.Occupation,
		QRCodePath:       c.QRCodePath,
		RegistrationDate: c.RegistrationDate,
	}
}

// toModel expects a migrated row: Points is always populated.
func (r visitRow) toModel() models.Visit {
	return models.Visit{
		VisitID:       parseID(r.VisitID, "visit_id"),
		CustomerID:    parseID(r.CustomerID, "customer_id"),
		Date:          cleanText(r.Date),
		Time:          cleanText(r.Time),
		GameGenre:     cleanText(r.GameGenre),
		Console:       cleanText(r.Console),
		PaymentMethod: cleanText(r.PaymentMethod),
		PaymentAmount: parseAmount(r.PaymentAmount, "payment_amount"),
		SnacksAmount:  parseAmount(r.SnacksAmount, "snacks_amount"),
		SnacksDetails: cleanText(r.SnacksDetails),
		FriendsCount:  parseCount(r.Referrals),
		Points:        parseCount(r.Points),
	}
}

func visitToRow(v models.Visit) visitRow {
	return visitRow{
		VisitID:       strconv.Itoa(v.VisitID),
		CustomerID:    strconv.Itoa(v.CustomerID),
		Date:          v.Date,
		Time:          v.Time,
		GameGenre:     v.GameGenre,
		Console:       v.Console,
		PaymentMethod: v.PaymentMethod,
		PaymentAmount: v.PaymentAmount.String(),
		SnacksAmount:  v.SnacksAmount.String(),
		SnacksDetails: v.SnacksDetails,
		Referrals:     strconv.Itoa(v.FriendsCount),
		Points:        strconv.Itoa(v.Points),
	}
}
