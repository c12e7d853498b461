// Package report exports the deals found by a run.
package report

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/law-makers/dealwatch/pkg/models"
)

// Report is the exported view of one run
type Report struct {
	RunID       string        `json:"run_id"`
	Outcome     string        `json:"outcome"`
	GeneratedAt time.Time     `json:"generated_at"`
	Threshold   string        `json:"threshold"`
	Deals       []models.Deal `json:"deals"`
}

// Save writes r to path, choosing the format from the extension
func Save(path string, r Report) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return SaveJSON(path, r)
	case ".csv":
		return SaveCSV(path, r.Deals)
	default:
		return fmt.Errorf("unsupported report format %q (use .json or .csv)", ext)
	}
}
