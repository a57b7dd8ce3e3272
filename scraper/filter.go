package scraper

import (
	"strconv"
	"strings"

	"rental-scraper/models"
)

type catalogKey struct {
	make, model, year string
}

// Filter keeps only listings whose upper-cased (make, model, year) matches a
// catalog entry exactly.
type Filter struct {
	keys map[catalogKey]struct{}
}

// NewFilter indexes entries, rewriting each model alias with alias (may be nil).
func NewFilter(entries []models.CatalogEntry, alias func(string) string) *Filter {
	f := &Filter{keys: make(map[catalogKey]struct{}, len(entries))}
	for _, e := range entries {
		model := e.Model
		if alias != nil {
			model = alias(model)
		}
		f.keys[catalogKey{
			make:  canonical(e.Make),
			model: canonical(model),
			year:  strconv.Itoa(e.Year),
		}] = struct{}{}
	}
	return f
}

// Apply returns canonicalised copies of the matching listings, in input order.
func (f *Filter) Apply(listings []*models.Listing) []*models.Listing {
	var kept []*models.Listing
	for _, l := range listings {
		if l.Year == nil {
			continue
		}
		key := catalogKey{
			make:  canonical(l.Make),
			model: canonical(l.Model),
			year:  strconv.Itoa(*l.Year),
		}
		if _, ok := f.keys[key]; !ok {
			continue
		}
		c := *l
		c.Make = key.make
		c.Model = key.model
		kept = append(kept, &c)
	}
	return kept
}

// Len returns the number of distinct catalog keys.
func (f *Filter) Len() int { return len(f.keys) }

func canonical(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
