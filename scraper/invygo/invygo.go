// Package invygo scrapes subscription offers from invygo.com. Listing pages are
// scoped per rental mode and prices on detail pages only render after a
// duration control is clicked.
package invygo

import (
	"context"
	"fmt"
	"strconv"
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
	Name    = "invygo"
	baseURL = "https://invygo.com"

	standardCover = "No additional cost"
)

var (
	// Modes lists the rental modes in business order.
	Modes = []string{"weekly", "monthly"}
	// Durations lists the duration labels in business order.
	Durations = []string{"1 week", "1 month", "3 months", "6 months", "9 months"}
)

type Scraper struct {
	loader        scraper.Loader
	priceWait     time.Duration
	priceFallback time.Duration
}

// New returns a Scraper that waits up to priceWait for the price panel after
// each click, pausing priceFallback when it does not refresh in time.
func New(loader scraper.Loader, priceWait, priceFallback time.Duration) *Scraper {
	return &Scraper{loader: loader, priceWait: priceWait, priceFallback: priceFallback}
}

func (s *Scraper) Name() string { return Name }

// Tasks returns one task per rental mode. The catalog only filters.
func (s *Scraper) Tasks(entries []models.CatalogEntry) []scraper.Task {
	tasks := make([]scraper.Task, 0, len(Modes))
	for _, mode := range Modes {
		tasks = append(tasks, scraper.Task{
			Name: strings.ToUpper(mode) + "-LISTINGS",
			URL:  fmt.Sprintf("%s/en-ae/dubai/rent-%s-cars", baseURL, mode),
			Mode: mode,
		})
	}
	return tasks
}

// NormaliseAlias is the identity: catalog aliases already use the URL slug form.
func (s *Scraper) NormaliseAlias(model string) string { return model }

func (s *Scraper) ScrapeListings(ctx context.Context, page browser.Page, task scraper.Task, cond browser.WaitCondition, log *utils.TaskLog) ([]*models.Listing, error) {
	html, err := s.loader.Load(ctx, page, task.URL, cond, listingReady)
	if err != nil {
		return nil, err
	}
	doc, err := extract.Parse(html)
	if err != nil {
		return nil, err
	}

	records, errs := listingRules(task.Mode).Apply(doc)
	for _, err := range errs {
		log.Warn("Error processing card: %v", err)
	}

	now := time.Now().UTC()
	var listings []*models.Listing
	for _, rec := range records {
		if !rec.Has("info") {
			continue
		}
		subURL := baseURL + rec.Get("href")
		carMake, model := makeModel(subURL)
		l := &models.Listing{
			Site:        Name,
			SubURL:      subURL,
			Make:        carMake,
			Model:       model,
			Title:       rec.Get("title"),
			IsFeatured:  rec.Has("promotion"),
			Contract:    task.Mode,
			RunningsKms: rec.Get("runnings_kms"),
			ScrapedAt:   now,
		}
		if rec.Has("year") {
			y, _ := strconv.Atoi(rec.Get("year"))
			l.Year = &y
		}
		listings = append(listings, l)
	}
	log.Debug("Found %d cards on %s", len(listings), task.URL)
	return listings, nil
}

// Title appends the year to the lower-cased card title.
func (s *Scraper) Title(l *models.Listing) string {
	year := ""
	if l.Year != nil {
		year = strconv.Itoa(*l.Year)
	}
	return strings.ToLower(l.Title) + " " + year
}

// ScrapeDetail clicks every duration control in turn and returns one offer per
// (duration, mileage option). A duration label seen earlier on the page is
// skipped. A control that cannot be read is logged and skipped.
func (s *Scraper) ScrapeDetail(ctx context.Context, page browser.Page, l *models.Listing, cond browser.WaitCondition, log *utils.TaskLog) ([]*models.ContractOffer, error) {
	if _, err := s.loader.Load(ctx, page, l.SubURL, cond, detailReady); err != nil {
		return nil, err
	}
	n, err := page.Count(ctx, durationControls)
	if err != nil {
		return nil, fmt.Errorf("%w: count duration controls: %v", utils.ErrExtraction, err)
	}

	seen := make(map[string]bool)
	var offers []*models.ContractOffer
	for i := 0; i < n; i++ {
		label, got, err := s.readOption(ctx, page, i)
		if err != nil {
			log.Warn("Error processing option %d: %v", i, err)
			continue
		}
		if seen[label] {
			continue
		}
		seen[label] = true
		for _, o := range got {
			o.SubURL = l.SubURL
		}
		offers = append(offers, got...)
	}
	if len(offers) == 0 {
		return nil, fmt.Errorf("%w: no contract options on %s", utils.ErrExtraction, l.SubURL)
	}
	return offers, nil
}

// readOption activates the index-th duration control and reads the refreshed
// panel.
func (s *Scraper) readOption(ctx context.Context, page browser.Page, index int) (string, []*models.ContractOffer, error) {
	if err := page.Click(ctx, durationControls, index); err != nil {
		return "", nil, err
	}
	if err := page.WaitFor(ctx, pricePredicate, s.priceWait); err != nil {
		if err := utils.SleepContext(ctx, s.priceFallback); err != nil {
			return "", nil, err
		}
	}
	html, err := page.HTML(ctx)
	if err != nil {
		return "", nil, err
	}
	doc, err := extract.Parse(html)
	if err != nil {
		return "", nil, err
	}

	blocks := doc.Find(durationControls)
	if index >= blocks.Length() {
		return "", nil, fmt.Errorf("duration control %d disappeared", index)
	}
	duration, err := durationRules.ApplyOne(blocks.Eq(index))
	if err != nil {
		return "", nil, err
	}
	label := duration.Get("label")
	savings := float64(extract.NumericOrZero(duration.Get("savings")))

	panel, err := priceRules.ApplyOne(doc.Selection)
	if err != nil {
		return "", nil, err
	}
	var offered *float64
	if panel.Has("price") {
		p, _ := strconv.ParseFloat(panel.Get("price"), 64)
		offered = &p
	}

	insurance := &models.InsuranceTerms{StandardCover: standardCover}
	covers, _ := insuranceRules.Apply(doc)
	for _, c := range covers {
		if strings.Contains(strings.ToLower(c.Get("title")), "full cover") {
			insurance.FullCover = c.Get("note")
		}
	}

	options, _ := mileageRules.Apply(doc)
	offers := make([]*models.ContractOffer, 0, len(options))
	for _, m := range options {
		o := &models.ContractOffer{
			Duration:     label,
			Savings:      &savings,
			Mileage:      m.Get("mileage"),
			MileageNote:  m.Get("note"),
			MileageAddOn: extract.NumericOrZero(m.Get("note")),
			Insurance:    insurance,
		}
		if offered != nil {
			v := *offered
			o.OfferedPrice = &v
		}
		offers = append(offers, o)
	}
	return label, offers, nil
}

// MergeRules sorts by (contract, sub-url, duration, mileage). The advertised
// price is recurring: the one-off saving is spread over the duration and the
// mileage add-on is charged on top.
func (s *Scraper) MergeRules() services.MergeRules {
	return services.MergeRules{
		ContractOrder: Modes,
		DurationOrder: Durations,
		ByDuration:    true,
		Derive:        derivePrices,
	}
}

func derivePrices(o *models.ContractOffer) {
	if o.OfferedPrice == nil {
		return
	}
	addOn := float64(o.MileageAddOn)
	offered := *o.OfferedPrice + addOn
	o.OfferedPrice = &offered

	n := extract.LeadingInt(o.Duration)
	if n == nil || *n == 0 {
		return
	}
	var savings float64
	if o.Savings != nil {
		savings = *o.Savings
	}
	base := savings/float64(*n) + offered
	o.BasePrice = &base
}
