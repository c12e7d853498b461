package report

import (
	"encoding/json"
	"os"

	"github.com/law-makers/dealwatch/pkg/models"
)

// SaveJSON writes an indented JSON export of r to path
func SaveJSON(path string, r Report) error {
	if r.Deals == nil {
		r.Deals = []models.Deal{}
	}
	content, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, content, 0644)
}
