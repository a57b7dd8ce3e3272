package services

import (
	"bytes"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"

	"rental-scraper/models"
	"rental-scraper/utils"
)

func sampleRows() []*models.MergedRow {
	a := &models.Listing{SubURL: "https://x/a", Title: "toyota camry 2022"}
	b := &models.Listing{SubURL: "https://x/b", Title: "nissan sunny 2023"}
	c := &models.Listing{SubURL: "https://x/c", Title: "kia pegas 2021"}
	return []*models.MergedRow{
		{Listing: a, Offer: &models.ContractOffer{Contract: "daily", OfferedPrice: f(100)}},
		{Listing: a, Offer: &models.ContractOffer{Contract: "weekly", OfferedPrice: f(600)}},
		{Listing: b, Offer: &models.ContractOffer{Contract: "daily", OfferedPrice: f(80)}},
		{Listing: b, Offer: &models.ContractOffer{Contract: "monthly", OfferedPrice: nil}},
		{Listing: c},
	}
}

func newTestInsights() *InsightService {
	return NewInsightService(utils.NewLoggerFromCore(zapcore.NewNopCore()))
}

func TestInsightCounts(t *testing.T) {
	r := newTestInsights().Generate("dubizzle", sampleRows())
	if r.TotalRows != 5 {
		t.Errorf("TotalRows: got %d, want 5", r.TotalRows)
	}
	if r.Listings != 3 {
		t.Errorf("Listings: got %d, want 3", r.Listings)
	}
	if r.WithOffers != 2 {
		t.Errorf("WithOffers: got %d, want 2", r.WithOffers)
	}
	if r.RowsByContract["daily"] != 2 || r.RowsByContract["weekly"] != 1 || r.RowsByContract["monthly"] != 1 {
		t.Errorf("RowsByContract: got %v", r.RowsByContract)
	}
}

func TestInsightPrices(t *testing.T) {
	r := newTestInsights().Generate("dubizzle", sampleRows())
	if r.AverageOffered != 260 {
		t.Errorf("AverageOffered: got %.2f, want 260", r.AverageOffered)
	}
	if r.MinOffered != 80 {
		t.Errorf("MinOffered: got %.2f, want 80", r.MinOffered)
	}
	if r.MaxOffered != 600 {
		t.Errorf("MaxOffered: got %.2f, want 600", r.MaxOffered)
	}
	if r.CheapestListing == nil || r.CheapestListing.Listing.Title != "nissan sunny 2023" {
		t.Errorf("CheapestListing: got %+v", r.CheapestListing)
	}
}

func TestInsightEmpty(t *testing.T) {
	r := newTestInsights().Generate("invygo", nil)
	if r.TotalRows != 0 {
		t.Errorf("TotalRows: got %d, want 0", r.TotalRows)
	}
	if r.RowsByContract == nil {
		t.Error("RowsByContract should be initialised")
	}
	if r.CheapestListing != nil {
		t.Error("CheapestListing should be nil")
	}
}

func TestInsightPrint(t *testing.T) {
	svc := newTestInsights()
	var buf bytes.Buffer
	svc.Fprint(&buf, svc.Generate("dubizzle", sampleRows()))

	out := buf.String()
	for _, want := range []string{"DUBIZZLE RENTAL SUMMARY", "nissan sunny 2023", "daily", "260.00"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate: got %q", got)
	}
	if got := truncate("a very long listing title", 10); got != "a very ..." {
		t.Errorf("truncate: got %q", got)
	}
}
