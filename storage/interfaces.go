package storage

import "rental-scraper/models"

// ReportWriter persists one site's report under a fixed column schema.
type ReportWriter interface {
	Write(path string, columns []models.Column, rows []*models.MergedRow) error
}

// OfferArchive stores merged rows of a run for later analysis.
type OfferArchive interface {
	Write(site string, rows []*models.MergedRow) error
	Close() error
}

var (
	_ ReportWriter = (*CSVWriter)(nil)
	_ OfferArchive = (*PostgresWriter)(nil)
)
