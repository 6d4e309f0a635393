package models

// Form choices offered to staff. The store accepts any string; the API
// validates against these lists.
var (
	AgeGroups = []string{
		"5-10 years", "11-15 years", "16-20 years", "21-25 years",
		"26-30 years", "31-35 years", "36-40 years",
	}
	Occupations    = []string{"Student", "Professional"}
	GameGenres     = []string{"Racing", "Shooting", "Action/Adventure", "Football", "Sports", "Horror", "Other"}
	Consoles       = []string{"PS4", "PS5"}
	PaymentMethods = []string{"Cash", "Mobile Money (MPESA)", "Card", "Transfer"}
)

// Unknown fills the enumerated fields of walk-in customers created at check-in.
const Unknown = "Unknown"

// Catalog groups every choice list for the front-end forms.
type Catalog struct {
	AgeGroups      []string `json:"age_groups"`
	Occupations    []string `json:"occupations"`
	GameGenres     []string `json:"game_genres"`
	Consoles       []string `json:"consoles"`
	PaymentMethods []string `json:"payment_methods"`
}

func DefaultCatalog() Catalog {
	return Catalog{
		AgeGroups:      AgeGroups,
		Occupations:    Occupations,
		GameGenres:     GameGenres,
		Consoles:       Consoles,
		PaymentMethods: PaymentMethods,
	}
}

// OneOf reports whether value is one of choices.
func OneOf(value string, choices []string) bool {
	for _, c := range choices {
		if c == value {
			return true
		}
	}
	return false
}
