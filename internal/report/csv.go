package report

import (
	"encoding/csv"
	"os"

	"github.com/law-makers/dealwatch/pkg/models"
)

var csvHeader = []string{"name", "price_per_person", "total_price", "departure_date", "duration", "url"}

// SaveCSV writes one row per deal to path. Returns an error on failure.
func SaveCSV(path string, deals []models.Deal) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	if err := writer.Write(csvHeader); err != nil {
		return err
	}
	for _, d := range deals {
		row := []string{
			d.Name,
			d.PricePerPerson.StringFixed(2),
			d.TotalPrice.StringFixed(2),
			d.DepartureDate,
			d.Duration,
			d.URL,
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}
	return file.Close()
}
