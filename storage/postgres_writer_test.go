package storage

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rental-scraper/models"
)

func TestToRecords(t *testing.T) {
	runID := uuid.New()
	year := 2022
	scraped := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	l := &models.Listing{SubURL: "https://x/1", Title: "toyota camry 2022", Make: "TOYOTA", Model: "CAMRY", Year: &year, Contract: "weekly", ScrapedAt: scraped}
	rows := []*models.MergedRow{
		{Listing: l, Offer: &models.ContractOffer{Duration: "1 month", Mileage: "2000 km", OfferedPrice: price(2000)}},
		{Listing: l},
	}

	records := toRecords(runID, "invygo", rows)
	require.Len(t, records, 2)

	r := records[0]
	assert.Equal(t, runID.String(), r.RunID)
	assert.Equal(t, "invygo", r.Site)
	assert.Equal(t, "weekly", r.Contract, "contract falls back to the listing mode")
	assert.Equal(t, "1 month", r.Duration)
	assert.Equal(t, 2000.0, *r.OfferedPrice)
	assert.Equal(t, scraped, r.ScrapedAt)

	assert.Nil(t, records[1].OfferedPrice)
	assert.Empty(t, records[1].Duration)
}
