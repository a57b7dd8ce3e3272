package invygo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"rental-scraper/browser"
	"rental-scraper/browser/browsertest"
	"rental-scraper/models"
	"rental-scraper/scraper"
	"rental-scraper/services"
	"rental-scraper/utils"
)

const (
	weeklyURL = "https://invygo.com/en-ae/dubai/rent-weekly-cars"
	detailURL = "https://invygo.com/en-ae/dubai/rent-weekly-toyota-camry-2022-abc"
)

const listingHTML = `<html><body><div class="grid grid-cols-1">
<a href="/en-ae/dubai/rent-weekly-toyota-camry-2022-abc">
  <div class="p-4 space-y-2">
    <p class="text-[#667085] text-xs font-medium">2022</p>
    <h3 class="text-[#0C111D] font-semibold text-sm">Toyota Camry</h3>
    <div class="text-[#0C111D] font-semibold text-xs">Weekly</div>
    <div class="text-[#0C111D] font-semibold text-xs">1,000 km</div>
  </div>
  <div class="bg-[#EC625B] text-white">Deal</div>
</a>
<a href="/en-ae/dubai/rent-weekly-nissan-x-trail-2023-def">
  <div class="p-4 space-y-2">
    <p class="text-[#667085] text-xs font-medium">soon</p>
  </div>
</a>
<a href="/en-ae/dubai/rent-weekly-kia-pegas-2021-ghi"><span>ad</span></a>
<a href="/en-ae/dubai/rent-monthly-toyota-camry-2022-abc"><div class="p-4 space-y-2"></div></a>
</div></body></html>`

func control(label, note string) string {
	return fmt.Sprintf(`<div role="presentation"><div class="text-cool-gray-900">%s</div><div class="text-grey-50">%s</div></div>`, label, note)
}

func detailState(price string) string {
	var b strings.Builder
	b.WriteString(`<html><body><div class="rounded-xl border-GREY-30"><div data-testid="booking-contract-length">`)
	b.WriteString(control("1 month", "Save AED 300"))
	b.WriteString(control("3 months", "Save AED 900"))
	b.WriteString(control("1 month", "Save AED 300"))
	b.WriteString(`</div></div>`)
	if price != "" {
		b.WriteString(`<div class="text-black font-inter text-3xl">` + price + `</div>`)
	}
	b.WriteString(`<div data-testid="booking-insurance-options">`)
	b.WriteString(control("Standard cover", "No additional cost"))
	b.WriteString(control("Full cover", "AED 30 / day"))
	b.WriteString(`</div><div data-testid="booking-milage-options">`)
	b.WriteString(control("2000 km", "No additional cost"))
	b.WriteString(control("3000 km", "+ AED 250 / mo"))
	b.WriteString(`</div></body></html>`)
	return b.String()
}

func detailSite() browsertest.Site {
	return browsertest.Site{detailURL: {
		detailState(""),
		detailState("AED 2,000 / mo"),
		detailState("AED 1,800 / mo"),
		detailState("AED 2,000 / mo"),
	}}
}

func testScraper() *Scraper {
	loader := scraper.Loader{
		Poller:       browser.Poller{MaxTries: 2, Delay: time.Millisecond},
		ScrollPause:  time.Millisecond,
		ScrollRounds: 3,
	}
	return New(loader, time.Millisecond, time.Millisecond)
}

func TestTasksOnePerMode(t *testing.T) {
	tasks := testScraper().Tasks(nil)
	require.Len(t, tasks, 2)
	assert.Equal(t, "WEEKLY-LISTINGS", tasks[0].Name)
	assert.Equal(t, weeklyURL, tasks[0].URL)
	assert.Equal(t, "monthly", tasks[1].Mode)
}

func TestMakeModel(t *testing.T) {
	tests := []struct {
		url, make, model string
	}{
		{"https://invygo.com/en-ae/dubai/rent-weekly-toyota-camry-2022-abc", "toyota", "camry"},
		{"https://invygo.com/en-ae/dubai/rent-monthly-toyota-land-cruiser-2023-x", "toyota", "land-cruiser"},
		{"https://invygo.com/en-ae/dubai/rent-monthly-mg-zs%20ev-2024-y", "mg", "zs ev"},
		{"https://invygo.com/en-ae/dubai/rent-weekly-tesla-2022-z", "", ""},
		{"https://invygo.com/about", "", ""},
	}
	for _, tt := range tests {
		gotMake, gotModel := makeModel(tt.url)
		assert.Equal(t, tt.make, gotMake, tt.url)
		assert.Equal(t, tt.model, gotModel, tt.url)
	}
}

func TestScrapeListings(t *testing.T) {
	page := browsertest.NewPage(browsertest.Site{weeklyURL: {listingHTML}}, nil)
	log := utils.NewTaskLog("WEEKLY-LISTINGS")
	task := scraper.Task{URL: weeklyURL, Mode: "weekly"}

	listings, err := testScraper().ScrapeListings(context.Background(), page, task, browser.Load, log)
	require.NoError(t, err)
	require.Len(t, listings, 1)

	l := listings[0]
	assert.Equal(t, detailURL, l.SubURL)
	assert.Equal(t, "toyota", l.Make)
	assert.Equal(t, "camry", l.Model)
	assert.Equal(t, 2022, *l.Year)
	assert.Equal(t, "Toyota Camry", l.Title)
	assert.Equal(t, "1,000 km", l.RunningsKms)
	assert.Equal(t, "weekly", l.Contract)
	assert.True(t, l.IsFeatured)
	assert.Contains(t, strings.Join(log.Lines(), "\n"), "invalid year")
}

type offerView struct {
	Duration, Mileage string
	Savings, Offered  float64
	AddOn             int
}

func view(offers []*models.ContractOffer) []offerView {
	var out []offerView
	for _, o := range offers {
		out = append(out, offerView{o.Duration, o.Mileage, *o.Savings, *o.OfferedPrice, o.MileageAddOn})
	}
	return out
}

func TestScrapeDetailClicksEachDuration(t *testing.T) {
	page := browsertest.NewPage(detailSite(), nil)
	l := &models.Listing{SubURL: detailURL}

	offers, err := testScraper().ScrapeDetail(context.Background(), page, l, browser.NetworkIdle, utils.NewTaskLog("T"))
	require.NoError(t, err)

	want := []offerView{
		{"1 month", "2000 km", 300, 2000, 0},
		{"1 month", "3000 km", 300, 2000, 250},
		{"3 months", "2000 km", 900, 1800, 0},
		{"3 months", "3000 km", 900, 1800, 250},
	}
	if diff := cmp.Diff(want, view(offers)); diff != "" {
		t.Errorf("offers mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []int{0, 1, 2}, page.Clicks, "duplicate control is still clicked")
	for _, o := range offers {
		assert.Equal(t, detailURL, o.SubURL)
		assert.Equal(t, "No additional cost", o.Insurance.StandardCover)
		assert.Equal(t, "AED 30 / day", o.Insurance.FullCover)
	}
}

func TestScrapeDetailFallsBackWhenPriceWaitTimesOut(t *testing.T) {
	page := browsertest.NewPage(detailSite(), nil)
	page.WaitErr = errors.New("poll timeout")

	offers, err := testScraper().ScrapeDetail(context.Background(), page, &models.Listing{SubURL: detailURL}, browser.Load, utils.NewTaskLog("T"))
	require.NoError(t, err)
	assert.Len(t, offers, 4)
}

func TestScrapeDetailWithoutControlsFails(t *testing.T) {
	page := browsertest.NewPage(browsertest.Site{detailURL: {
		`<div class="rounded-xl border-GREY-30"><div data-testid="booking-contract-length"></div></div>`,
	}}, nil)

	_, err := testScraper().ScrapeDetail(context.Background(), page, &models.Listing{SubURL: detailURL}, browser.Load, utils.NewTaskLog("T"))
	assert.ErrorIs(t, err, utils.ErrExtraction)
}

func TestDerivePrices(t *testing.T) {
	savings, offered := 900.0, 1800.0
	o := &models.ContractOffer{Duration: "3 months", Savings: &savings, OfferedPrice: &offered, MileageAddOn: 250}
	derivePrices(o)
	assert.Equal(t, 2050.0, *o.OfferedPrice)
	assert.Equal(t, 2350.0, *o.BasePrice)
	assert.Equal(t, 1800.0, offered, "input price untouched")

	noPrice := &models.ContractOffer{Duration: "1 month"}
	derivePrices(noPrice)
	assert.Nil(t, noPrice.BasePrice)
}

func TestRunAndMergeEndToEnd(t *testing.T) {
	s := testScraper()
	opener := &browsertest.Opener{Site: browsertest.Site{
		weeklyURL: {listingHTML},
		detailURL: detailSite()[detailURL],
	}}
	cfg := scraper.RunnerConfig{
		MaxConcurrency: 5,
		Retry: &utils.RetryConfig{
			MaxAttempts: 3,
			Conditions:  browser.WaitConditions,
			Sleep:       func(context.Context, time.Duration) error { return nil },
		},
	}
	catalog := []models.CatalogEntry{{Make: "toyota", Model: "camry", Year: 2022}}
	logger := utils.NewLoggerFromCore(zapcore.NewNopCore())

	res, err := scraper.NewRunner(s, opener, catalog, cfg, logger).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"MONTHLY-LISTINGS"}, res.FailedTasks)
	require.Len(t, res.Listings, 1)
	assert.Equal(t, "toyota camry 2022", res.Listings[0].Title)

	rows := services.NewMerger(s.MergeRules()).Merge(res.Listings, res.Offers)
	require.Len(t, rows, 4)
	got := []string{}
	for _, r := range rows {
		got = append(got, r.Contract()+" "+r.Duration()+" "+r.Mileage()+" "+models.FormatFloat(r.Offer.BasePrice))
	}
	want := []string{
		"weekly 1 month 2000 km 2300",
		"weekly 1 month 3000 km 2550",
		"weekly 3 months 2000 km 2100",
		"weekly 3 months 3000 km 2350",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}

	values := models.Values(s.Columns(), rows[1])
	assert.Equal(t, []string{
		detailURL, "toyota camry 2022", "TOYOTA", "CAMRY", "2022", "yes", "1,000 km", "weekly",
		"2550", "300", "2250", "1 month", "3000 km", "+ AED 250 / mo", "No additional cost", "AED 30 / day",
	}, values)
	assert.True(t, opener.AllClosed())
}
