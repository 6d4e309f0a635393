package models

import "github.com/shopspring/decimal"

// Visit is one gaming session (plus any snacks) tied to a customer.
// CustomerID is not enforced against the customers table.
type Visit struct {
	VisitID       int             `gorm:"column:visit_id;primaryKey;autoIncrement:false" json:"visit_id"`
	CustomerID    int             `gorm:"column:customer_id;index" json:"customer_id"`
	Date          string          `gorm:"column:date;type:varchar(10);index" json:"date"`
	Time          string          `gorm:"column:time;type:varchar(8)" json:"time"`
	GameGenre     string          `gorm:"column:game_genre" json:"game_genre"`
	Console       string          `gorm:"column:console" json:"console"`
	PaymentMethod string          `gorm:"column:payment_method" json:"payment_method"`
	PaymentAmount decimal.Decimal `gorm:"column:payment_amount;type:decimal(10,2)" json:"payment_amount"`
	SnacksAmount  decimal.Decimal `gorm:"column:snacks_amount;type:decimal(10,2)" json:"snacks_amount"`
	SnacksDetails string          `gorm:"column:snacks_details" json:"snacks_details"`
	// FriendsCount is persisted under the legacy "referrals" column.
	FriendsCount int `gorm:"column:referrals" json:"friends_count"`
	Points       int `gorm:"column:points" json:"points"`
}

func (Visit) TableName() string {
	return "visits"
}

// VisitColumns is the persisted column order of the visits table.
var VisitColumns = []string{
	"visit_id", "customer_id", "date", "time", "game_genre", "console",
	"payment_method", "payment_amount", "snacks_amount", "snacks_details",
	"referrals", "points",
}
