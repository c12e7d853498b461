package extract

// SelectorsVersion identifies the markup contract of DefaultSelectors.
// Bump it whenever the listing site changes its card markup.
const SelectorsVersion = "2026-02"

// Selectors locate the parts of a listing card. Title, Price and the info
// selectors are evaluated relative to the card.
type Selectors struct {
	Version   string `json:"version"`
	Card      string `json:"card"`
	Title     string `json:"title"`
	Price     string `json:"price"`
	InfoList  string `json:"info_list"`
	Departure string `json:"departure"`
	Duration  string `json:"duration"`
}

// DefaultSelectors returns the selectors for the current listing markup
func DefaultSelectors() Selectors {
	return Selectors{
		Version:   SelectorsVersion,
		Card:      "div[data-component='acco-card']",
		Title:     "[data-testid='acco-title'] a, a[data-testid='acco-title']",
		Price:     "[data-testid='price-per-person']",
		InfoList:  "ul[data-testid='acco-info']",
		Departure: "li[data-testid='departure-date']",
		Duration:  "li[data-testid='trip-duration']",
	}
}
