package models

import "github.com/shopspring/decimal"

// Unknown is stored in optional Deal fields the listing card did not provide
const Unknown = "unknown"

// DealCandidate holds the raw fields of one listing card as found in the page
type DealCandidate struct {
	Title         string `json:"title"`
	PriceText     string `json:"price_text"`
	Link          string `json:"link"`
	DepartureDate string `json:"departure_date,omitempty"`
	Duration      string `json:"duration,omitempty"`
}

// Deal is a validated, normalized offer that passed the price threshold
type Deal struct {
	Name           string          `json:"name"`
	PricePerPerson decimal.Decimal `json:"price_per_person"`
	TotalPrice     decimal.Decimal `json:"total_price"`
	URL            string          `json:"url"`
	DepartureDate  string          `json:"departure_date"`
	Duration       string          `json:"duration"`
}

// Identity returns the key used to suppress repeated notifications within a run
func (d Deal) Identity() string {
	return d.Name + "|" + d.PricePerPerson.String() + "|" + d.URL
}
