package dubizzle

import "rental-scraper/models"

func dealer(r *models.MergedRow) *models.DealerInfo {
	if d := r.OfferOrEmpty().Dealer; d != nil {
		return d
	}
	return &models.DealerInfo{}
}

// Columns is the report schema, in output order.
func (s *Scraper) Columns() []models.Column {
	return []models.Column{
		{Name: "sub-url", Value: func(r *models.MergedRow) string { return r.Listing.SubURL }},
		{Name: "title", Value: func(r *models.MergedRow) string { return r.Listing.Title }},
		{Name: "make", Value: func(r *models.MergedRow) string { return r.Listing.Make }},
		{Name: "model", Value: func(r *models.MergedRow) string { return r.Listing.Model }},
		{Name: "year", Value: func(r *models.MergedRow) string { return models.FormatInt(r.Listing.Year) }},
		{Name: "is_featured", Value: func(r *models.MergedRow) string {
			if r.Listing.IsFeatured {
				return "Yes"
			}
			return ""
		}},
		{Name: "variant", Value: func(r *models.MergedRow) string { return r.Listing.Variant }},
		{Name: "contract", Value: func(r *models.MergedRow) string { return r.Contract() }},
		{Name: "base_price", Value: func(r *models.MergedRow) string { return models.FormatFloat(r.OfferOrEmpty().BasePrice) }},
		{Name: "savings", Value: func(r *models.MergedRow) string { return models.FormatFloat(r.OfferOrEmpty().Savings) }},
		{Name: "offered_price", Value: func(r *models.MergedRow) string { return models.FormatFloat(r.OfferOrEmpty().OfferedPrice) }},
		{Name: "description", Value: func(r *models.MergedRow) string { return dealer(r).Description }},
		{Name: "sub_description", Value: func(r *models.MergedRow) string { return dealer(r).SubDescription }},
		{Name: "posted_on", Value: func(r *models.MergedRow) string { return dealer(r).PostedOn }},
		{Name: "dealer_name", Value: func(r *models.MergedRow) string { return dealer(r).Name }},
		{Name: "dealer_type", Value: func(r *models.MergedRow) string { return dealer(r).Type }},
		{Name: "dealer_page", Value: func(r *models.MergedRow) string { return dealer(r).Page }},
		{Name: "mileage", Value: func(r *models.MergedRow) string { return r.Mileage() }},
		{Name: "mileage_note", Value: func(r *models.MergedRow) string { return r.OfferOrEmpty().MileageNote }},
		{Name: "minimum_driver_age", Value: func(r *models.MergedRow) string { return dealer(r).MinDriverAge }},
		{Name: "deposit", Value: func(r *models.MergedRow) string { return models.FormatInt(dealer(r).Deposit) }},
		{Name: "refund_period", Value: func(r *models.MergedRow) string { return dealer(r).RefundPeriod }},
		{Name: "location", Value: func(r *models.MergedRow) string { return dealer(r).Location }},
	}
}
