// Package dubizzle scrapes rental offers from dubai.dubizzle.com. Listing
// pages are scoped per (make, model) and detail pages are static.
package dubizzle

import (
	"context"
	"fmt"
	"strings"
	"time"

	"rental-scraper/browser"
	"rental-scraper/extract"
	"rental-scraper/models"
	"rental-scraper/scraper"
	"rental-scraper/services"
	"rental-scraper/utils"
)

const (
	Name    = "dubizzle"
	baseURL = "https://dubai.dubizzle.com"
)

// Contracts lists the contract types in business order.
var Contracts = []string{"daily", "weekly", "monthly"}

var mgModels = map[string]string{"mg3": "3", "mg5": "5"}

type Scraper struct {
	loader scraper.Loader
}

func New(loader scraper.Loader) *Scraper {
	return &Scraper{loader: loader}
}

func (s *Scraper) Name() string { return Name }

// Tasks plans one task per distinct (make, model alias) pair.
func (s *Scraper) Tasks(entries []models.CatalogEntry) []scraper.Task {
	seen := make(map[string]bool)
	var tasks []scraper.Task
	for _, e := range entries {
		carMake := strings.ToLower(strings.TrimSpace(e.Make))
		model := strings.ToLower(strings.TrimSpace(e.Model))
		key := carMake + "/" + model
		if seen[key] {
			continue
		}
		seen[key] = true
		tasks = append(tasks, scraper.Task{
			Name:  strings.ToUpper(carMake + "-" + model),
			URL:   fmt.Sprintf("%s/motors/rental-cars/%s/%s", baseURL, carMake, model),
			Make:  carMake,
			Model: model,
		})
	}
	return tasks
}

// NormaliseAlias maps a URL-style alias ("x-trail") to its printed form.
func (s *Scraper) NormaliseAlias(model string) string {
	return strings.ReplaceAll(model, "-", " ")
}

func (s *Scraper) ScrapeListings(ctx context.Context, page browser.Page, task scraper.Task, cond browser.WaitCondition, log *utils.TaskLog) ([]*models.Listing, error) {
	html, err := s.loader.Load(ctx, page, task.URL, cond, listingReady)
	if err != nil {
		return nil, err
	}
	doc, err := extract.Parse(html)
	if err != nil {
		return nil, err
	}

	records, errs := listingRules.Apply(doc)
	for _, err := range errs {
		log.Warn("Error processing card: %v", err)
	}

	now := time.Now().UTC()
	listings := make([]*models.Listing, 0, len(records))
	for _, rec := range records {
		listings = append(listings, &models.Listing{
			Site:       Name,
			SubURL:     rec.Get("sub-url"),
			Make:       rec.Get("make"),
			Model:      rec.Get("model"),
			Variant:    rec.Get("variant"),
			Year:       extract.Numeric(rec.Get("year")),
			IsFeatured: rec.Has("featured"),
			ScrapedAt:  now,
		})
	}
	log.Debug("Found %d cards on %s", len(listings), task.URL)
	return listings, nil
}

// Title renders "make model year" in lower case, with MG model codes
// shortened to their number.
func (s *Scraper) Title(l *models.Listing) string {
	model := strings.ToLower(l.Model)
	if short, ok := mgModels[model]; ok {
		model = short
	}
	year := ""
	if l.Year != nil {
		year = fmt.Sprint(*l.Year)
	}
	return strings.ToLower(l.Make) + " " + model + " " + year
}

// ScrapeDetail returns one offer per contract type with a printed price. The
// dealer metadata is shared by every offer of the page.
func (s *Scraper) ScrapeDetail(ctx context.Context, page browser.Page, l *models.Listing, cond browser.WaitCondition, log *utils.TaskLog) ([]*models.ContractOffer, error) {
	html, err := s.loader.Load(ctx, page, l.SubURL, cond, detailReady)
	if err != nil {
		return nil, err
	}
	doc, err := extract.Parse(html)
	if err != nil {
		return nil, err
	}

	var offers []*models.ContractOffer
	for _, contract := range Contracts {
		rec, err := contractRules(contract).ApplyOne(doc.Selection)
		if err != nil {
			log.Warn("Contract %s: %v", contract, err)
			continue
		}
		if !rec.Has("price") {
			continue
		}
		o := &models.ContractOffer{
			SubURL:    l.SubURL,
			Contract:  contract,
			BasePrice: toFloat(extract.Numeric(rec.Get("price"))),
		}
		if strings.EqualFold(rec.Get("unlimited"), "unlimited kilometers") {
			o.Mileage = "Unlimited"
		} else {
			o.Mileage = rec.Get("allowed")
			o.MileageNote = extract.FixSpacing(rec.Get("additional"))
		}
		offers = append(offers, o)
	}
	if len(offers) == 0 {
		return nil, fmt.Errorf("%w: no contract information on %s", utils.ErrExtraction, l.SubURL)
	}

	dealer, err := dealerRules.ApplyOne(doc.Selection)
	if err != nil {
		log.Warn("Dealer details: %v", err)
		dealer = extract.Record{}
	}
	info := &models.DealerInfo{
		Description:    dealer.Get("description"),
		SubDescription: dealer.Get("sub_description"),
		PostedOn:       dealer.Get("posted_on"),
		Name:           dealer.Get("dealer_name"),
		Type:           dealer.Get("dealer_type"),
		Page:           dealer.Get("dealer_page"),
		MinDriverAge:   dealer.Get("minimum_driver_age"),
		Deposit:        extract.Numeric(dealer.Get("deposit")),
		RefundPeriod:   dealer.Get("refund_period"),
		Location:       dealer.Get("location"),
	}
	for _, o := range offers {
		o.Dealer = info
	}
	return offers, nil
}

// MergeRules sorts by (contract, sub-url). The site prints a single price, so
// the offered price is the base price and there are no savings.
func (s *Scraper) MergeRules() services.MergeRules {
	return services.MergeRules{
		ContractOrder: Contracts,
		Derive: func(o *models.ContractOffer) {
			zero := 0.0
			o.Savings = &zero
			o.OfferedPrice = o.BasePrice
		},
	}
}

func toFloat(n *int) *float64 {
	if n == nil {
		return nil
	}
	v := float64(*n)
	return &v
}
