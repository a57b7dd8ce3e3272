package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"rental-scraper/models"
)

// ErrEmptyReport is returned instead of writing a report without rows.
var ErrEmptyReport = errors.New("report has no rows")

// CSVWriter writes site reports as CSV files. The target file is replaced
// atomically so readers never see a partial report.
type CSVWriter struct{}

func NewCSVWriter() *CSVWriter {
	return &CSVWriter{}
}

// Write renders rows under columns to path. Intermediate directories are
// created automatically. With zero rows nothing is written.
func (c *CSVWriter) Write(path string, columns []models.Column, rows []*models.MergedRow) error {
	if len(rows) == 0 {
		return fmt.Errorf("csv: %s: %w", path, ErrEmptyReport)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("csv: create temp file: %w", err)
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	w := csv.NewWriter(f)
	if err := w.Write(models.Header(columns)); err != nil {
		_ = f.Close()
		return fmt.Errorf("csv: write header: %w", err)
	}
	for _, r := range rows {
		if err := w.Write(models.Values(columns, r)); err != nil {
			_ = f.Close()
			return fmt.Errorf("csv: write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return fmt.Errorf("csv: flush: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("csv: close %q: %w", tmp, err)
	}

	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("csv: replace %q: %w", path, err)
	}
	return nil
}
