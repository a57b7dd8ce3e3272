package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"rental-scraper/models"
)

// Load reads the make/model catalog at path and returns the entries that have
// a model alias for site, i.e. a non-blank "<site>_model" column.
func Load(path, site string) ([]models.CatalogEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: open %q: %w", path, err)
	}
	defer f.Close()

	return Read(f, site)
}

// Read parses a catalog CSV with at least make, year and <site>_model columns.
func Read(r io.Reader, site string) ([]models.CatalogEntry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("catalog: read header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}

	aliasCol := site + "_model"
	for _, name := range []string{"make", "year", aliasCol} {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("catalog: missing column %q", name)
		}
	}

	seen := make(map[models.CatalogEntry]struct{})
	var entries []models.CatalogEntry
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("catalog: read row: %w", err)
		}

		alias := field(rec, col[aliasCol])
		carMake := field(rec, col["make"])
		if alias == "" || carMake == "" {
			continue
		}
		year, err := strconv.Atoi(field(rec, col["year"]))
		if err != nil {
			continue
		}

		e := models.CatalogEntry{Make: carMake, Model: alias, Year: year}
		if _, dup := seen[e]; dup {
			continue
		}
		seen[e] = struct{}{}
		entries = append(entries, e)
	}
	return entries, nil
}

func field(rec []string, i int) string {
	if i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}
