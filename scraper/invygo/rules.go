package invygo

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"rental-scraper/browser"
	"rental-scraper/extract"
)

const (
	infoBlock        = `div[class="p-4 space-y-2"]`
	durationControls = `[data-testid="booking-contract-length"] [role="presentation"]`
	optionTitle      = "div.text-cool-gray-900"
	optionNote       = "div.text-grey-50"

	pricePredicate = `(() => {
		const el = document.querySelector('div.text-black.font-inter.text-3xl');
		return !!el && el.textContent.includes('AED');
	})()`
)

var (
	listingReady = browser.Readiness{
		Region:  "div.grid.grid-cols-1",
		Markers: []string{`a href="/en-ae/dubai/rent-`},
	}
	detailReady = browser.Readiness{
		Region:  "div.rounded-xl.border-GREY-30",
		Markers: []string{`data-testid="booking-contract-length"`},
	}

	slugRegexp = regexp.MustCompile(`rent-(?:weekly|monthly)-([a-z0-9\- ]+)-\d{4}`)
)

func listingRules(mode string) extract.Ruleset {
	return extract.Ruleset{
		Name:  "invygo-listing-" + mode,
		Cards: fmt.Sprintf(`a[href^="/en-ae/dubai/rent-%s-"]`, mode),
		Rules: []extract.Rule{
			{Field: "href", Pick: extract.Attr("href"), Required: true},
			{Field: "info", Selector: infoBlock, Pick: extract.Exists},
			{Field: "year", Selector: infoBlock + ` p[class="text-[#667085] text-xs font-medium"]`, Transform: strictInt},
			{Field: "title", Selector: infoBlock + ` h3[class="text-[#0C111D] font-semibold text-sm"]`},
			{Field: "runnings_kms", Selector: infoBlock + ` div[class="text-[#0C111D] font-semibold text-xs"]`, Nth: 1},
			{Field: "promotion", Selector: `div[class*="EC625B"][class*="bg-"]`, Pick: extract.Exists},
		},
	}
}

var (
	// duration block of the clicked control
	durationRules = extract.Ruleset{
		Name: "invygo-duration",
		Rules: []extract.Rule{
			{Field: "label", Selector: optionTitle, Required: true},
			{Field: "savings", Selector: optionNote},
		},
	}

	priceRules = extract.Ruleset{
		Name: "invygo-price",
		Rules: []extract.Rule{
			{Field: "price", Selector: `div[class*="text-black"][class*="text-3xl"]`, Transform: price},
		},
	}

	insuranceRules = extract.Ruleset{
		Name:  "invygo-insurance",
		Cards: `[data-testid="booking-insurance-options"] [role="presentation"]`,
		Rules: []extract.Rule{
			{Field: "title", Selector: optionTitle, Required: true},
			{Field: "note", Selector: optionNote},
		},
	}

	mileageRules = extract.Ruleset{
		Name:  "invygo-mileage",
		Cards: `[data-testid="booking-milage-options"] [role="presentation"]`,
		Rules: []extract.Rule{
			{Field: "mileage", Selector: optionTitle, Required: true},
			{Field: "note", Selector: optionNote},
		},
	}
)

func strictInt(text string) (string, error) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return "", fmt.Errorf("invalid year %q", text)
	}
	return strconv.Itoa(n), nil
}

func price(text string) (string, error) {
	cleaned := extract.CleanPrice(text)
	if _, err := strconv.Atoi(cleaned); err != nil {
		return "", fmt.Errorf("invalid price %q", text)
	}
	return cleaned, nil
}

// makeModel reads make and model from a listing URL of the form
// ".../rent-weekly-<make>-<model...>-<year>-...".
func makeModel(rawURL string) (carMake, model string) {
	if u, err := url.PathUnescape(rawURL); err == nil {
		rawURL = u
	}
	m := slugRegexp.FindStringSubmatch(rawURL)
	if m == nil {
		return "", ""
	}
	parts := strings.Split(strings.TrimSpace(m[1]), "-")
	if len(parts) < 2 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], "-")
}
