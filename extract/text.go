package extract

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var (
	aedRegexp    = regexp.MustCompile(`AED(\d+)`)
	kmRegexp     = regexp.MustCompile(`(?i)(\d)(km)`)
	forRegexp    = regexp.MustCompile(`(\d)(for)`)
	kmLimitRegex = regexp.MustCompile(`(?i)\d+\s*km`)
)

// NormaliseText strips leading/trailing whitespace and collapses internal whitespace.
func NormaliseText(s string) string {
	s = strings.TrimSpace(s)
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r)
	})
	return strings.Join(fields, " ")
}

// Numeric keeps only the digits of text. Text without digits yields nil.
func Numeric(text string) *int {
	var b strings.Builder
	for _, r := range text {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return nil
	}
	n, err := strconv.Atoi(b.String())
	if err != nil {
		return nil
	}
	return &n
}

// NumericOrZero is Numeric with 0 for missing values and for the
// "No additional cost" wording.
func NumericOrZero(text string) int {
	if strings.Contains(text, "No additional cost") {
		return 0
	}
	if n := Numeric(text); n != nil {
		return *n
	}
	return 0
}

// CleanPrice strips currency and period words from a price label.
func CleanPrice(text string) string {
	r := strings.NewReplacer(
		"\u00a0", " ",
		"AED", "",
		"Save", "",
		"/ mo", "",
		"/ day", "",
		"months", "",
		"month", "",
		",", "",
	)
	return strings.TrimSpace(r.Replace(text))
}

// FixSpacing inserts the spaces dropped when text nodes are concatenated,
// e.g. "AED50" -> "AED 50" and "250km" -> "250 km".
func FixSpacing(text string) string {
	text = aedRegexp.ReplaceAllString(text, "AED $1")
	text = kmRegexp.ReplaceAllString(text, "$1 $2")
	text = forRegexp.ReplaceAllString(text, "$1 $2")
	return text
}

// KmLimit returns the first "<n> km" fragment of text, or "".
func KmLimit(text string) string {
	return kmLimitRegex.FindString(text)
}

// LeadingInt returns the first run of digits in text, or nil.
func LeadingInt(text string) *int {
	start := strings.IndexFunc(text, unicode.IsDigit)
	if start < 0 {
		return nil
	}
	end := start
	for end < len(text) && text[end] >= '0' && text[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(text[start:end])
	if err != nil {
		return nil
	}
	return &n
}
