package models

import "time"

// CatalogEntry is one wanted (make, model, year) combination for a single site.
// Model holds the site-specific alias as written in the catalog file.
type CatalogEntry struct {
	Make  string
	Model string
	Year  int
}

// Listing is one rental offer summary scraped from a listing page.
// SubURL is the detail-page URL and the join key for ContractOffers.
type Listing struct {
	Site       string
	SubURL     string
	Make       string
	Model      string
	Variant    string
	Year       *int
	IsFeatured bool // featured or promoted badge on the card
	Title      string

	// Contract is the rental mode the listing was found under, when the site
	// scopes listing pages by mode.
	Contract    string
	RunningsKms string

	ScrapedAt time.Time
}

// ContractOffer is one priced rental option belonging to a Listing.
type ContractOffer struct {
	SubURL   string
	Contract string
	Duration string

	BasePrice    *float64
	Savings      *float64
	OfferedPrice *float64

	Mileage      string
	MileageNote  string
	MileageAddOn int

	Dealer    *DealerInfo
	Insurance *InsuranceTerms
}

// DealerInfo carries the seller metadata printed on static detail pages.
type DealerInfo struct {
	Description    string
	SubDescription string
	PostedOn       string
	Name           string
	Type           string
	Page           string
	MinDriverAge   string
	Deposit        *int
	RefundPeriod   string
	Location       string
}

// InsuranceTerms carries the cover options printed beside interactive pricing.
type InsuranceTerms struct {
	StandardCover string
	FullCover     string
}

// MergedRow is a Listing joined with at most one of its offers.
// Offer is nil when no offer matched the listing.
type MergedRow struct {
	Listing      *Listing
	Offer        *ContractOffer
	ContractRank int
	DurationRank int
}

// Contract returns the offer's contract type, falling back to the listing's mode.
func (r *MergedRow) Contract() string {
	if r.Offer != nil && r.Offer.Contract != "" {
		return r.Offer.Contract
	}
	return r.Listing.Contract
}

// Duration returns the offer duration label, or "" when there is no offer.
func (r *MergedRow) Duration() string {
	if r.Offer == nil {
		return ""
	}
	return r.Offer.Duration
}

// Mileage returns the offer mileage label, or "" when there is no offer.
func (r *MergedRow) Mileage() string {
	if r.Offer == nil {
		return ""
	}
	return r.Offer.Mileage
}

// Column is one declared column of a site report.
type Column struct {
	Name  string
	Value func(r *MergedRow) string
}

// RunSummary holds the computed statistics over one site's merged rows.
type RunSummary struct {
	Site            string
	TotalRows       int
	Listings        int
	WithOffers      int
	RowsByContract  map[string]int
	AverageOffered  float64
	MinOffered      float64
	MaxOffered      float64
	CheapestListing *MergedRow
}
