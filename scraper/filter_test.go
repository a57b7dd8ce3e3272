package scraper

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rental-scraper/models"
)

func year(y int) *int { return &y }

func TestFilterKeepsOnlyCatalogMatches(t *testing.T) {
	f := NewFilter([]models.CatalogEntry{{Make: "toyota", Model: "camry", Year: 2022}}, nil)

	listings := []*models.Listing{
		{SubURL: "a", Make: "Toyota", Model: "Camry", Year: year(2022)},
		{SubURL: "b", Make: "Honda", Model: "Civic", Year: year(2022)},
	}
	kept := f.Apply(listings)

	require.Len(t, kept, 1)
	assert.Equal(t, "a", kept[0].SubURL)
	assert.Equal(t, "TOYOTA", kept[0].Make)
	assert.Equal(t, "CAMRY", kept[0].Model)
	assert.Equal(t, "Toyota", listings[0].Make, "inputs are not mutated")
}

func TestFilterIsExactNotFuzzy(t *testing.T) {
	f := NewFilter([]models.CatalogEntry{{Make: "TOYOTA", Model: "CAMRY", Year: 2022}}, nil)

	kept := f.Apply([]*models.Listing{
		{SubURL: "1", Make: "toyota", Model: "camry hybrid", Year: year(2022)},
		{SubURL: "2", Make: "toyota", Model: "camry", Year: year(2021)},
		{SubURL: "3", Make: "toyota", Model: "camry", Year: nil},
		{SubURL: "4", Make: " toyota ", Model: "CAMRY", Year: year(2022)},
	})

	require.Len(t, kept, 1)
	assert.Equal(t, "4", kept[0].SubURL)
}

func TestFilterAppliesAliasToCatalogSide(t *testing.T) {
	hyphenToSpace := func(s string) string { return strings.ReplaceAll(s, "-", " ") }
	f := NewFilter([]models.CatalogEntry{{Make: "nissan", Model: "x-trail", Year: 2023}}, hyphenToSpace)

	kept := f.Apply([]*models.Listing{{SubURL: "x", Make: "Nissan", Model: "X Trail", Year: year(2023)}})
	assert.Len(t, kept, 1)
}

func TestFilterNeverAddsRows(t *testing.T) {
	f := NewFilter([]models.CatalogEntry{
		{Make: "toyota", Model: "camry", Year: 2022},
		{Make: "kia", Model: "pegas", Year: 2021},
	}, nil)

	assert.Empty(t, f.Apply(nil))
	kept := f.Apply([]*models.Listing{{SubURL: "k", Make: "KIA", Model: "PEGAS", Year: year(2021)}})
	assert.Len(t, kept, 1)
}
