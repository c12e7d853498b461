package report

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/law-makers/dealwatch/pkg/models"
)

func sample() Report {
	return Report{
		RunID:       "run-1",
		Outcome:     "completed",
		GeneratedAt: time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC),
		Threshold:   "1200",
		Deals: []models.Deal{{
			Name:           "Sunset, Beach",
			PricePerPerson: decimal.RequireFromString("1099.5"),
			TotalPrice:     decimal.RequireFromString("2199"),
			URL:            "https://x.test/a",
			DepartureDate:  "1 feb",
			Duration:       models.Unknown,
		}},
	}
}

func TestSave_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deals.csv")
	if err := Save(path, sample()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("invalid csv: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header + 1 row, got %d", len(rows))
	}
	want := []string{"Sunset, Beach", "1099.50", "2199.00", "1 feb", "unknown", "https://x.test/a"}
	for i := range want {
		if rows[1][i] != want[i] {
			t.Errorf("column %s = %q, want %q", rows[0][i], rows[1][i], want[i])
		}
	}
}

func TestSave_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deals.JSON")
	if err := Save(path, sample()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var got struct {
		RunID string `json:"run_id"`
		Deals []struct {
			Name           string `json:"name"`
			PricePerPerson string `json:"price_per_person"`
		} `json:"deals"`
	}
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if got.RunID != "run-1" || len(got.Deals) != 1 || got.Deals[0].PricePerPerson != "1099.5" {
		t.Errorf("unexpected export: %+v", got)
	}
}

func TestSave_EmptyDealsIsArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deals.json")
	r := sample()
	r.Deals = nil
	if err := Save(path, r); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	data, _ := os.ReadFile(path)
	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if _, ok := got["deals"].([]any); !ok {
		t.Errorf("deals should be an empty array, got %v", got["deals"])
	}
}

func TestSave_UnknownFormat(t *testing.T) {
	if err := Save(filepath.Join(t.TempDir(), "deals.xml"), sample()); err == nil {
		t.Error("expected error for .xml")
	}
}
