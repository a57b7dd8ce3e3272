package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"rental-scraper/utils"
)

// Picker reads a raw value out of a matched element. ok is false when the
// element carries nothing usable.
type Picker func(sel *goquery.Selection) (value string, ok bool)

// Text picks the element's whitespace-normalised text.
func Text(sel *goquery.Selection) (string, bool) {
	t := NormaliseText(sel.Text())
	return t, t != ""
}

// Attr picks an attribute value.
func Attr(name string) Picker {
	return func(sel *goquery.Selection) (string, bool) {
		v, ok := sel.Attr(name)
		return strings.TrimSpace(v), ok
	}
}

// Exists yields "true" whenever the selector matched.
func Exists(sel *goquery.Selection) (string, bool) {
	return "true", true
}

// Rule extracts one named field. Selector is relative to the card ("" means
// the card itself) and Nth picks among multiple matches.
type Rule struct {
	Field     string
	Selector  string
	Nth       int
	Pick      Picker
	Transform func(string) (string, error)
	// Required turns a missing value into a field extraction error.
	Required bool
}

// Ruleset is an ordered, named set of rules applied to every card matched by
// Cards. An empty Cards selector applies the rules once to the whole document.
type Ruleset struct {
	Name  string
	Cards string
	Rules []Rule
}

// Record holds the fields extracted from one card. Missing fields are absent.
type Record map[string]string

// Get returns a field value, or "" when missing.
func (r Record) Get(field string) string { return r[field] }

// Has reports whether a field was extracted.
func (r Record) Has(field string) bool {
	_, ok := r[field]
	return ok
}

// CardError is a field extraction failure for one card.
type CardError struct {
	Index int
	Field string
	Err   error
}

func (e *CardError) Error() string {
	return fmt.Sprintf("card %d field %q: %v", e.Index, e.Field, e.Err)
}

func (e *CardError) Unwrap() error { return utils.ErrFieldExtraction }

// Apply evaluates the ruleset. A card whose rule fails is left out of records
// and reported in errs; other cards are unaffected.
func (rs Ruleset) Apply(doc *goquery.Document) (records []Record, errs []error) {
	var cards *goquery.Selection
	if rs.Cards == "" {
		cards = doc.Selection
	} else {
		cards = doc.Find(rs.Cards)
	}

	cards.Each(func(i int, card *goquery.Selection) {
		rec, err := rs.applyCard(card)
		if err != nil {
			errs = append(errs, &CardError{Index: i, Field: err.field, Err: err.err})
			return
		}
		records = append(records, rec)
	})
	return records, errs
}

type ruleErr struct {
	field string
	err   error
}

func (rs Ruleset) applyCard(card *goquery.Selection) (rec Record, failed *ruleErr) {
	rec = Record{}
	for _, rule := range rs.Rules {
		v, ok, err := rule.eval(card)
		if err != nil {
			return nil, &ruleErr{field: rule.Field, err: err}
		}
		if !ok {
			if rule.Required {
				return nil, &ruleErr{field: rule.Field, err: fmt.Errorf("missing")}
			}
			continue
		}
		rec[rule.Field] = v
	}
	return rec, nil
}

func (r Rule) eval(card *goquery.Selection) (value string, ok bool, err error) {
	defer func() {
		// a panicking transform must only cost its own card
		if p := recover(); p != nil {
			err = fmt.Errorf("transform panic: %v", p)
		}
	}()

	sel := card
	if r.Selector != "" {
		sel = card.Find(r.Selector)
	}
	if sel.Length() <= r.Nth {
		return "", false, nil
	}
	sel = sel.Eq(r.Nth)

	pick := r.Pick
	if pick == nil {
		pick = Text
	}
	v, ok := pick(sel)
	if !ok {
		return "", false, nil
	}
	if r.Transform != nil {
		v, err = r.Transform(v)
		if err != nil {
			return "", false, err
		}
	}
	return v, true, nil
}

// Parse builds a document from rendered HTML.
func Parse(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("%w: parse html: %v", utils.ErrExtraction, err)
	}
	return doc, nil
}

// ApplyOne evaluates the rules once against root, ignoring Cards. Pass
// doc.Selection for document-level fields.
func (rs Ruleset) ApplyOne(root *goquery.Selection) (Record, error) {
	rec, err := rs.applyCard(root)
	if err != nil {
		return nil, &CardError{Field: err.field, Err: err.err}
	}
	return rec, nil
}
