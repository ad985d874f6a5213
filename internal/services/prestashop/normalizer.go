package prestashop

import (
	"fmt"
	"strings"

	"tiendabot/internal/models"
)

// Normalizer maps upstream product records into flat ScannedProducts,
// deriving image and detail-page URLs from the shop's naming conventions.
type Normalizer struct {
	shopURL      string
	categorySlug string
}

// NewNormalizer takes the shop root URL (without /api) and the category
// slug used in detail-page URLs.
//
// TODO: resolve each product's real default category path from the
// webservice instead of a single fixed slug; the original dashboard
// hardcoded "inicio" for every product and that assumption is carried
// here as configuration.
func NewNormalizer(shopURL, categorySlug string) *Normalizer {
	if categorySlug == "" {
		categorySlug = "inicio"
	}
	return &Normalizer{
		shopURL:      strings.TrimRight(shopURL, "/"),
		categorySlug: categorySlug,
	}
}

// Normalize flattens one upstream record. It never fails: missing fields
// degrade to zero values, never to error returns or "undefined" literals.
func (n *Normalizer) Normalize(raw RawProduct) ScannedProduct {
	linkRewrite := raw.LinkRewrite.String()

	description := raw.Description.String()
	if description == "" {
		description = raw.DescriptionLong.String()
	}

	return ScannedProduct{
		ID:            raw.ID.Int64(),
		Name:          raw.Name.String(),
		Price:         raw.Price.Float64(),
		Description:   description,
		SKU:           n.sku(raw),
		StockQuantity: int(raw.Quantity.Int64()),
		ImageURL:      n.imageURL(raw, linkRewrite),
		ExternalURL:   n.detailURL(raw, linkRewrite),
		Combinations:  []models.Combination{},
		IsActive:      isActive(raw.Active),
	}
}

// NormalizeCombination flattens a variant record. A combination that omits
// its own price inherits the parent product's price.
func (n *Normalizer) NormalizeCombination(raw RawCombination, parentPrice float64) models.Combination {
	price := raw.Price.Float64()
	if price == 0 {
		price = parentPrice
	}

	attrs := []models.CombinationAttribute{}
	for _, ov := range raw.Associations.ProductOptionValues {
		name := ov.Name.String()
		value := ov.Value.String()
		if name == "" && value == "" {
			continue
		}
		attrs = append(attrs, models.CombinationAttribute{Name: name, Value: value})
	}

	return models.Combination{
		ID:         raw.ID.Int64(),
		Reference:  raw.Reference.String(),
		Price:      price,
		Quantity:   int(raw.Quantity.Int64()),
		Attributes: attrs,
	}
}

// sku prefers the manufacturer reference, then EAN-13, then UPC.
func (n *Normalizer) sku(raw RawProduct) string {
	if ref := raw.Reference.String(); ref != "" {
		return ref
	}
	if ean := raw.EAN13.String(); ean != "" {
		return ean
	}
	return raw.UPC.String()
}

// imageURL builds {shop}/{imageId}-medium_default/{linkRewrite}.jpg when the
// record carries a default-image id and a resolved link_rewrite. Otherwise it
// falls back to an image URL literally present on the record, else empty.
func (n *Normalizer) imageURL(raw RawProduct, linkRewrite string) string {
	imageID := raw.IDDefaultImage.String()
	if imageID != "" && imageID != "0" && linkRewrite != "" {
		return fmt.Sprintf("%s/%s-medium_default/%s.jpg", n.shopURL, imageID, linkRewrite)
	}
	return raw.ImageURL.String()
}

// detailURL builds {shop}/{slug}/{id}-{linkRewrite}[-{ean13}].html, or
// empty when the record has no link_rewrite to build from.
func (n *Normalizer) detailURL(raw RawProduct, linkRewrite string) string {
	if linkRewrite == "" {
		return ""
	}
	u := fmt.Sprintf("%s/%s/%d-%s", n.shopURL, n.categorySlug, raw.ID.Int64(), linkRewrite)
	if ean := raw.EAN13.String(); ean != "" {
		u += "-" + ean
	}
	return u + ".html"
}

// isActive treats a product as active unless the record explicitly marks it
// inactive.
func isActive(flag FlexString) bool {
	switch strings.TrimSpace(strings.ToLower(flag.String())) {
	case "0", "false":
		return false
	}
	return true
}
