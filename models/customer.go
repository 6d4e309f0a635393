package models

// Customer is a registered lounge member. Text fields are always strings so
// phone numbers keep their leading zeros across save/load cycles.
type Customer struct {
	ID               int    `gorm:"column:id;primaryKey;autoIncrement:false" json:"id"`
	Name             string `gorm:"column:name;not null" json:"name"`
	Phone            string `gorm:"column:phone;type:varchar(10);index" json:"phone"`
	AgeGroup         string `gorm:"column:age_group" json:"age_group"`
	Location         string `gorm:"column:location" json:"location"`
	Occupation       string `gorm:"column:occupation" json:"occupation"`
	QRCodePath       string `gorm:"column:qr_code_path" json:"qr_code_path"`
	RegistrationDate string `gorm:"column:registration_date;type:varchar(10)" json:"registration_date"`
}

func (Customer) TableName() string {
	return "customers"
}

// CustomerColumns is the persisted column order of the customers table.
var CustomerColumns = []string{
	"id", "name", "phone", "age_group", "location", "occupation",
	"qr_code_path", "registration_date",
}
