package prestashop

import (
	"encoding/json"
	"strconv"
	"strings"

	"tiendabot/internal/models"
)

// LocalizedText is a webservice text field that arrives either as a bare
// string or as a multi-language list of {id, value} objects. Decoding
// collapses the list to its first locale so the rest of the code only ever
// sees a plain string.
type LocalizedText string

func (t *LocalizedText) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = LocalizedText(s)
		return nil
	}

	var entries []struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(data, &entries); err == nil {
		if len(entries) > 0 {
			*t = LocalizedText(entries[0].Value)
		} else {
			*t = ""
		}
		return nil
	}

	// Unknown shape collapses to empty rather than failing the whole page.
	*t = ""
	return nil
}

func (t LocalizedText) String() string {
	return string(t)
}

// FlexString absorbs the scalar shapes the webservice emits for the same
// field across shop versions: string, number, bool or null.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexString(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexString(n.String())
		return nil
	}

	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		if b {
			*f = "1"
		} else {
			*f = ""
		}
		return nil
	}

	*f = ""
	return nil
}

func (f FlexString) String() string {
	return string(f)
}

func (f FlexString) Int64() int64 {
	v, _ := strconv.ParseInt(strings.TrimSpace(string(f)), 10, 64)
	return v
}

func (f FlexString) Float64() float64 {
	v, _ := strconv.ParseFloat(strings.TrimSpace(string(f)), 64)
	return v
}

// RawProduct is the upstream product record as the webservice returns it.
type RawProduct struct {
	ID              FlexString    `json:"id"`
	Name            LocalizedText `json:"name"`
	Description     LocalizedText `json:"description_short"`
	DescriptionLong LocalizedText `json:"description"`
	LinkRewrite     LocalizedText `json:"link_rewrite"`
	Reference       FlexString    `json:"reference"`
	EAN13           FlexString    `json:"ean13"`
	UPC             FlexString    `json:"upc"`
	Price           FlexString    `json:"price"`
	Quantity        FlexString    `json:"quantity"`
	Active          FlexString    `json:"active"`
	IDDefaultImage  FlexString    `json:"id_default_image"`
	ImageURL        FlexString    `json:"image_url"`
}

// RawCombination is an upstream variant record. Attribute pairs only appear
// when the shop resolves option values inline; they are optional.
type RawCombination struct {
	ID           FlexString `json:"id"`
	Reference    FlexString `json:"reference"`
	Price        FlexString `json:"price"`
	Quantity     FlexString `json:"quantity"`
	Associations struct {
		ProductOptionValues []struct {
			ID    FlexString `json:"id"`
			Name  FlexString `json:"name"`
			Value FlexString `json:"value"`
		} `json:"product_option_values"`
	} `json:"associations"`
}

type productsResponse struct {
	Products []RawProduct `json:"products"`
}

type combinationsResponse struct {
	Combinations []RawCombination `json:"combinations"`
}

// ScannedProduct is the transient, normalized product produced by a scan.
// It only becomes a catalog row once the user confirms the import.
type ScannedProduct struct {
	ID            int64                `json:"id"`
	Name          string               `json:"name"`
	Price         float64              `json:"price"`
	Description   string               `json:"description,omitempty"`
	Category      string               `json:"category,omitempty"`
	SKU           string               `json:"sku,omitempty"`
	StockQuantity int                  `json:"stock_quantity"`
	ImageURL      string               `json:"image_url,omitempty"`
	ExternalURL   string               `json:"external_url,omitempty"`
	Combinations  []models.Combination `json:"combinations"`
	IsActive      bool                 `json:"is_active"`
}
