package navigator

import (
	"time"

	"github.com/law-makers/dealwatch/internal/browser"
)

// DefaultCardLocator matches one listing card on the results page
var DefaultCardLocator = browser.CSS("div[data-component='acco-card']")

// DefaultSteps returns the interstitials the listing site is known to show,
// in the order they tend to appear
func DefaultSteps() []PopupStep {
	return []PopupStep{
		{
			Name:         "cookie-consent",
			Actions:      []Action{Click(browser.XPath("//button[contains(., 'Alles toestaan')]"))},
			Optional:     true,
			OnEntry:      true,
			SettleAfter:  3 * time.Second,
			SettleAlways: true,
		},
		{
			Name:     "holiday-credit",
			Actions:  []Action{Click(browser.XPath("//button[@aria-label='Sluiten']"))},
			Optional: true,
		},
		{
			Name: "card-survey",
			Actions: []Action{
				Click(browser.XPath("//label[contains(., 'Nee')]")),
				Click(browser.XPath("//button[contains(., 'Volgende')]")),
			},
			Optional: true,
		},
		{
			Name:     "feedback-toast",
			Actions:  []Action{Click(browser.XPath("//button[text()='Sluiten']"))},
			Optional: true,
		},
	}
}
