// Package seed imports the catalog reference data from CSV files.
package seed

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"querychat/internal/db"
	"querychat/internal/models"
)

type Importer struct {
	store  *db.Store
	logger *zap.Logger
	newID  func() string
}

func NewImporter(store *db.Store, logger *zap.Logger) *Importer {
	return &Importer{
		store:  store,
		logger: logger,
		newID:  uuid.NewString,
	}
}

// Import reads options.csv, locations.csv and items.csv from dataDir and
// replaces the catalog tables with their contents. Any malformed file aborts
// the whole import; the previous catalog survives untouched.
func (i *Importer) Import(dataDir string) error {
	optionRows, err := readCSV(filepath.Join(dataDir, "options.csv"))
	if err != nil {
		return fmt.Errorf("read options: %w", err)
	}
	locationRows, err := readCSV(filepath.Join(dataDir, "locations.csv"))
	if err != nil {
		return fmt.Errorf("read locations: %w", err)
	}
	itemRows, err := readCSV(filepath.Join(dataDir, "items.csv"))
	if err != nil {
		return fmt.Errorf("read items: %w", err)
	}

	options := make([]models.Option, 0, len(optionRows))
	for _, row := range optionRows {
		options = append(options, models.Option{
			ID:          i.newID(),
			Name:        row["name"],
			Description: row["description"],
		})
	}
	locations := make([]models.Location, 0, len(locationRows))
	for _, row := range locationRows {
		locations = append(locations, models.Location{
			ID:   i.newID(),
			Name: row["name"],
			Type: row["type"],
		})
	}
	items := make([]models.Item, 0, len(itemRows))
	for _, row := range itemRows {
		items = append(items, models.Item{
			ID:       i.newID(),
			Name:     row["name"],
			Category: row["category"],
		})
	}

	if err := i.store.ReplaceCatalog(options, locations, items); err != nil {
		return fmt.Errorf("replace catalog: %w", err)
	}

	i.logger.Info("catalog imported",
		zap.Int("options", len(options)),
		zap.Int("locations", len(locations)),
		zap.Int("items", len(items)))
	return nil
}

// readCSV returns the rows of a headered CSV file as column-name -> value
// maps.
func readCSV(path string) ([]map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: missing header row", path)
	}

	header := records[0]
	rows := make([]map[string]string, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
