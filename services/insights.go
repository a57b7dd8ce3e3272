package services

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"rental-scraper/models"
	"rental-scraper/utils"
)

type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

// Generate summarises one site's merged rows.
func (s *InsightService) Generate(site string, rows []*models.MergedRow) *models.RunSummary {
	summary := &models.RunSummary{
		Site:           site,
		RowsByContract: make(map[string]int),
	}

	if len(rows) == 0 {
		return summary
	}

	summary.TotalRows = len(rows)

	listings := make(map[string]bool)
	withOffers := make(map[string]bool)
	var priced []*models.MergedRow

	for _, r := range rows {
		listings[r.Listing.SubURL] = true
		if r.Offer != nil {
			withOffers[r.Listing.SubURL] = true
			if p := r.Offer.OfferedPrice; p != nil && *p > 0 {
				priced = append(priced, r)
			}
		}
		if c := r.Contract(); c != "" {
			summary.RowsByContract[c]++
		}
	}
	summary.Listings = len(listings)
	summary.WithOffers = len(withOffers)

	// Offered price stats (only rows with a positive price)
	if len(priced) > 0 {
		first := *priced[0].Offer.OfferedPrice
		summary.MinOffered = first
		summary.MaxOffered = first
		summary.CheapestListing = priced[0]
		var total float64
		for _, r := range priced {
			p := *r.Offer.OfferedPrice
			total += p
			if p < summary.MinOffered {
				summary.MinOffered = p
				summary.CheapestListing = r
			}
			if p > summary.MaxOffered {
				summary.MaxOffered = p
			}
		}
		summary.AverageOffered = round2(total / float64(len(priced)))
		summary.MinOffered = round2(summary.MinOffered)
		summary.MaxOffered = round2(summary.MaxOffered)
	}

	s.logger.Debug("[%s] Summary: %d rows, %d listings, %d with offers",
		site, summary.TotalRows, summary.Listings, summary.WithOffers)
	return summary
}

// Print writes the summary to stdout.
func (s *InsightService) Print(r *models.RunSummary) {
	s.Fprint(os.Stdout, r)
}

func (s *InsightService) Fprint(w io.Writer, r *models.RunSummary) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  📊 %s RENTAL SUMMARY\033[0m\n", strings.ToUpper(r.Site))
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)

	// Overview
	fmt.Fprintf(w, "\033[1;33m  Overview\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Report rows            : \033[1m%d\033[0m\n", r.TotalRows)
	fmt.Fprintf(w, "  Listings               : \033[1m%d\033[0m\n", r.Listings)
	fmt.Fprintf(w, "  Listings with offers   : \033[1m%d\033[0m\n", r.WithOffers)
	fmt.Fprintln(w)

	// Price Stats
	fmt.Fprintf(w, "\033[1;33m  Offered Price (AED)\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if r.AverageOffered > 0 {
		fmt.Fprintf(w, "  Average : \033[1;32m%.2f\033[0m\n", r.AverageOffered)
		fmt.Fprintf(w, "  Minimum : \033[1;32m%.2f\033[0m\n", r.MinOffered)
		fmt.Fprintf(w, "  Maximum : \033[1;32m%.2f\033[0m\n", r.MaxOffered)
	} else {
		fmt.Fprintf(w, "  No price data available\n")
	}
	fmt.Fprintln(w)

	if c := r.CheapestListing; c != nil {
		fmt.Fprintf(w, "\033[1;33m  Cheapest Offer\033[0m\n")
		fmt.Fprintf(w, "  %s\n", thin)
		fmt.Fprintf(w, "  %s\n", truncate(c.Listing.Title, 50))
		fmt.Fprintf(w, "  Contract : %s %s\n", c.Contract(), c.Duration())
		fmt.Fprintf(w, "  Price    : \033[1;32m%.2f\033[0m\n", *c.Offer.OfferedPrice)
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "\033[1;33m  Rows by Contract\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if len(r.RowsByContract) == 0 {
		fmt.Fprintf(w, "  No contract data\n")
	} else {
		type contractCount struct {
			contract string
			count    int
		}
		var counts []contractCount
		for c, n := range r.RowsByContract {
			counts = append(counts, contractCount{c, n})
		}
		sort.Slice(counts, func(i, j int) bool {
			if counts[i].count != counts[j].count {
				return counts[i].count > counts[j].count
			}
			return counts[i].contract < counts[j].contract
		})
		for _, cc := range counts {
			bar := strings.Repeat("█", min(cc.count, 40))
			fmt.Fprintf(w, "  %-12s %s (%d)\n", cc.contract, bar, cc.count)
		}
	}

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
