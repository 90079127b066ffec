package models

import (
	"slices"

	"devapi/pkg/fieldmap"
)

// Merchant is the counterparty of a transaction.
type Merchant struct {
	Name         string
	Category     string
	Description  string
	PointsOfSale []string
}

// MerchantFields maps Merchant attributes to their wire names.
var MerchantFields = fieldmap.MustNew("merchant",
	fieldmap.Field{Name: "name", Wire: "name", Coerce: fieldmap.String},
	fieldmap.Field{Name: "category", Wire: "category", Coerce: fieldmap.String},
	fieldmap.Field{Name: "description", Wire: "description", Coerce: fieldmap.String},
	fieldmap.Field{Name: "points_of_sale", Wire: "pointOfSale", Coerce: fieldmap.StringList},
)

// EncodeMerchant converts a merchant into its wire object.
func EncodeMerchant(m Merchant) (map[string]any, error) {
	pos := make([]any, len(m.PointsOfSale))
	for i, p := range m.PointsOfSale {
		pos[i] = p
	}
	return MerchantFields.Encode(
		fieldmap.Attr{Name: "name", Value: m.Name},
		fieldmap.Attr{Name: "category", Value: m.Category},
		fieldmap.Attr{Name: "description", Value: m.Description},
		fieldmap.Attr{Name: "points_of_sale", Value: pos},
	)
}

// DecodeMerchant converts a wire object into a merchant.
func DecodeMerchant(obj map[string]any) (Merchant, error) {
	v, err := MerchantFields.Decode(obj)
	if err != nil {
		return Merchant{}, err
	}
	return Merchant{
		Name:         fieldmap.Get[string](v, "name"),
		Category:     fieldmap.Get[string](v, "category"),
		Description:  fieldmap.Get[string](v, "description"),
		PointsOfSale: fieldmap.Get[[]string](v, "points_of_sale"),
	}, nil
}

// Equal reports whether two merchants hold the same values.
func (m Merchant) Equal(o Merchant) bool {
	return m.Name == o.Name &&
		m.Category == o.Category &&
		m.Description == o.Description &&
		slices.Equal(m.PointsOfSale, o.PointsOfSale)
}
