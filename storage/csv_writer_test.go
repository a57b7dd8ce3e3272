package storage

import (
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rental-scraper/models"
)

var testColumns = []models.Column{
	{Name: "sub-url", Value: func(r *models.MergedRow) string { return r.Listing.SubURL }},
	{Name: "contract", Value: func(r *models.MergedRow) string { return r.Contract() }},
	{Name: "offered_price", Value: func(r *models.MergedRow) string { return models.FormatFloat(r.OfferOrEmpty().OfferedPrice) }},
}

func price(v float64) *float64 { return &v }

func TestCSVWriterWritesHeaderAndRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output", "dubizzle_rentals.csv")
	rows := []*models.MergedRow{
		{Listing: &models.Listing{SubURL: "https://x/1"}, Offer: &models.ContractOffer{Contract: "daily", OfferedPrice: price(100)}},
		{Listing: &models.Listing{SubURL: "https://x/2, with comma"}},
	}

	require.NoError(t, NewCSVWriter().Write(path, testColumns, rows))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	assert.Equal(t, [][]string{
		{"sub-url", "contract", "offered_price"},
		{"https://x/1", "daily", "100"},
		{"https://x/2, with comma", "", ""},
	}, records)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp file left behind")
}

func TestCSVWriterRefusesEmptyReport(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "invygo_rentals.csv")
	require.NoError(t, os.WriteFile(path, []byte("previous,report\n"), 0644))

	err := NewCSVWriter().Write(path, testColumns, nil)
	assert.True(t, errors.Is(err, ErrEmptyReport))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "previous,report\n", string(data), "existing report untouched")
}
