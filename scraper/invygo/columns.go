package invygo

import "rental-scraper/models"

func insurance(r *models.MergedRow) *models.InsuranceTerms {
	if i := r.OfferOrEmpty().Insurance; i != nil {
		return i
	}
	return &models.InsuranceTerms{}
}

// Columns is the report schema, in output order.
func (s *Scraper) Columns() []models.Column {
	return []models.Column{
		{Name: "sub-url", Value: func(r *models.MergedRow) string { return r.Listing.SubURL }},
		{Name: "title", Value: func(r *models.MergedRow) string { return r.Listing.Title }},
		{Name: "make", Value: func(r *models.MergedRow) string { return r.Listing.Make }},
		{Name: "model", Value: func(r *models.MergedRow) string { return r.Listing.Model }},
		{Name: "year", Value: func(r *models.MergedRow) string { return models.FormatInt(r.Listing.Year) }},
		{Name: "promotion", Value: func(r *models.MergedRow) string {
			if r.Listing.IsFeatured {
				return "yes"
			}
			return "no"
		}},
		{Name: "runnings_kms", Value: func(r *models.MergedRow) string { return r.Listing.RunningsKms }},
		{Name: "contract", Value: func(r *models.MergedRow) string { return r.Contract() }},
		{Name: "base_price", Value: func(r *models.MergedRow) string { return models.FormatFloat(r.OfferOrEmpty().BasePrice) }},
		{Name: "savings", Value: func(r *models.MergedRow) string { return models.FormatFloat(r.OfferOrEmpty().Savings) }},
		{Name: "offered_price", Value: func(r *models.MergedRow) string { return models.FormatFloat(r.OfferOrEmpty().OfferedPrice) }},
		{Name: "duration", Value: func(r *models.MergedRow) string { return r.Duration() }},
		{Name: "mileage", Value: func(r *models.MergedRow) string { return r.Mileage() }},
		{Name: "mileage_note", Value: func(r *models.MergedRow) string { return r.OfferOrEmpty().MileageNote }},
		{Name: "standard_cover_insurance", Value: func(r *models.MergedRow) string { return insurance(r).StandardCover }},
		{Name: "full_cover_insurance", Value: func(r *models.MergedRow) string { return insurance(r).FullCover }},
	}
}
