package services

import (
	"sort"

	"rental-scraper/models"
)

// MergeRules carries the site-specific parts of a merge: the categorical
// orders used for sorting and the price derivation applied to each offer.
type MergeRules struct {
	ContractOrder []string
	DurationOrder []string
	// Derive fills derived price fields on a copy of the offer. May be nil.
	Derive func(o *models.ContractOffer)
	// ByDuration adds duration rank and mileage to the sort key.
	ByDuration bool
}

// Merger joins listings with their offers into report rows.
type Merger struct {
	rules MergeRules
}

func NewMerger(rules MergeRules) *Merger {
	return &Merger{rules: rules}
}

// Merge left-joins listings with offers on sub-url and sorts the result.
// Every listing yields at least one row; a listing without offers yields a
// single row with a nil Offer. Offers whose sub-url matches no listing are
// dropped. Inputs are not modified.
func (m *Merger) Merge(listings []*models.Listing, offers []*models.ContractOffer) []*models.MergedRow {
	bySubURL := make(map[string][]*models.ContractOffer, len(listings))
	for _, o := range offers {
		bySubURL[o.SubURL] = append(bySubURL[o.SubURL], o)
	}

	rows := make([]*models.MergedRow, 0, len(listings)+len(offers))
	for _, l := range listings {
		matched := bySubURL[l.SubURL]
		if len(matched) == 0 {
			rows = append(rows, m.row(l, nil))
			continue
		}
		for _, o := range matched {
			c := *o
			if m.rules.Derive != nil {
				m.rules.Derive(&c)
			}
			rows = append(rows, m.row(l, &c))
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.ContractRank != b.ContractRank {
			return a.ContractRank < b.ContractRank
		}
		if a.Listing.SubURL != b.Listing.SubURL {
			return a.Listing.SubURL < b.Listing.SubURL
		}
		if !m.rules.ByDuration {
			return false
		}
		if a.DurationRank != b.DurationRank {
			return a.DurationRank < b.DurationRank
		}
		return a.Mileage() < b.Mileage()
	})
	return rows
}

func (m *Merger) row(l *models.Listing, o *models.ContractOffer) *models.MergedRow {
	r := &models.MergedRow{Listing: l, Offer: o}
	r.ContractRank = Rank(m.rules.ContractOrder, r.Contract())
	r.DurationRank = Rank(m.rules.DurationOrder, r.Duration())
	return r
}

// Rank returns the position of value in order. Unknown and empty values rank
// after every known value.
func Rank(order []string, value string) int {
	for i, v := range order {
		if v == value {
			return i
		}
	}
	return len(order)
}
