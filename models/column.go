package models

import "strconv"

// FormatFloat renders an optional number without trailing zeros; nil is "".
func FormatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// FormatInt renders an optional integer; nil is "".
func FormatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

// OfferOrEmpty returns the row's offer, or an empty one when the listing had none.
func (r *MergedRow) OfferOrEmpty() *ContractOffer {
	if r.Offer == nil {
		return &ContractOffer{}
	}
	return r.Offer
}

// Header returns the column names in order.
func Header(columns []Column) []string {
	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.Name
	}
	return names
}

// Values renders one row under columns.
func Values(columns []Column, r *MergedRow) []string {
	values := make([]string, len(columns))
	for i, c := range columns {
		values[i] = c.Value(r)
	}
	return values
}
