package dubizzle

import (
	"fmt"
	"strings"

	"rental-scraper/browser"
	"rental-scraper/extract"
)

var (
	listingReady = browser.Readiness{
		Region:  "#listing-card-wrapper",
		Markers: []string{"data-testid"},
	}
	detailReady = browser.Readiness{
		Region:  "body",
		Markers: []string{`data-testid="listing-sub-heading"`, `data-testid="rental-price-`},
	}
)

const headingText = "h3[data-testid^='heading-text']"

var listingRules = extract.Ruleset{
	Name:  "dubizzle-listing",
	Cards: "#listing-card-wrapper a[data-testid^='listing-']",
	Rules: []extract.Rule{
		{Field: "sub-url", Pick: extract.Attr("href"), Transform: absolute, Required: true},
		{Field: "make", Selector: headingText, Nth: 0},
		{Field: "model", Selector: headingText, Nth: 1},
		{Field: "variant", Selector: headingText, Nth: 2},
		{Field: "year", Selector: "h3[data-testid='listing-year']"},
		{Field: "featured", Selector: "[data-testid='featured-badge']", Pick: extract.Exists},
	},
}

var dealerRules = extract.Ruleset{
	Name: "dubizzle-dealer",
	Rules: []extract.Rule{
		{Field: "description", Selector: "h6[data-testid='listing-sub-heading']"},
		{Field: "sub_description", Selector: "p[data-testid='description']"},
		{Field: "posted_on", Selector: "p[data-testid='posted-on']"},
		{Field: "dealer_name", Selector: "p[data-testid='name']"},
		{Field: "dealer_type", Selector: "p[data-testid='type']"},
		{Field: "dealer_page", Selector: "a[data-testid='view-all-cars']", Pick: extract.Attr("href"), Transform: absolute},
		{Field: "minimum_driver_age", Selector: "[data-ui-id='details-value-minimum_driver_age']"},
		{Field: "deposit", Selector: "[data-ui-id='details-value-security_deposit']"},
		{Field: "refund_period", Selector: "[data-ui-id='details-value-security_refund_period']"},
		{Field: "location", Selector: "div[data-testid='listing-location-map']"},
	},
}

// contractRules reads the price panel of one contract type.
func contractRules(contract string) extract.Ruleset {
	return extract.Ruleset{
		Name: "dubizzle-contract-" + contract,
		Rules: []extract.Rule{
			{Field: "price", Selector: fmt.Sprintf("h5[data-testid='rental-price-%s']", contract)},
			{Field: "unlimited", Selector: fmt.Sprintf("p[data-testid='unlimited-kms-%s']", contract)},
			{Field: "allowed", Selector: fmt.Sprintf("p[data-testid='allowed-kms-%s']", contract), Transform: kmLimit},
			{Field: "additional", Selector: fmt.Sprintf("p[data-testid='additional-kms-%s']", contract)},
		},
	}
}

func absolute(href string) (string, error) {
	if strings.HasPrefix(href, "/") {
		return baseURL + href, nil
	}
	return href, nil
}

func kmLimit(text string) (string, error) {
	return extract.FixSpacing(extract.KmLimit(text)), nil
}
