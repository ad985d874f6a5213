package prestashop

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testNormalizer() *Normalizer {
	return NewNormalizer("https://shop.example.com", "inicio")
}

func TestNormalizeFullRecord(t *testing.T) {
	raw := RawProduct{
		ID:             "42",
		Name:           "Camiseta azul",
		Description:    "Una camiseta",
		LinkRewrite:    "camiseta-azul",
		Reference:      "REF-42",
		EAN13:          "8412345678905",
		Price:          "19.900000",
		Quantity:       "7",
		Active:         "1",
		IDDefaultImage: "15",
	}

	p := testNormalizer().Normalize(raw)

	assert.Equal(t, int64(42), p.ID)
	assert.Equal(t, "Camiseta azul", p.Name)
	assert.Equal(t, 19.9, p.Price)
	assert.Equal(t, "REF-42", p.SKU)
	assert.Equal(t, 7, p.StockQuantity)
	assert.Equal(t, "https://shop.example.com/15-medium_default/camiseta-azul.jpg", p.ImageURL)
	assert.Equal(t, "https://shop.example.com/inicio/42-camiseta-azul-8412345678905.html", p.ExternalURL)
	assert.True(t, p.IsActive)
}

func TestNormalizeScalarAndArrayShapesMatch(t *testing.T) {
	scalarJSON := `{"id":"1","name":"X","description_short":"D","link_rewrite":"x","price":"5.00"}`
	arrayJSON := `{"id":"1","name":[{"value":"X"}],"description_short":[{"value":"D"}],"link_rewrite":[{"value":"x"}],"price":"5.00"}`

	var scalar, array RawProduct
	require.NoError(t, json.Unmarshal([]byte(scalarJSON), &scalar))
	require.NoError(t, json.Unmarshal([]byte(arrayJSON), &array))

	n := testNormalizer()
	assert.Equal(t, n.Normalize(scalar), n.Normalize(array))
}

func TestNormalizeMissingImageFields(t *testing.T) {
	n := testNormalizer()

	// No default image id and no link_rewrite: empty, never a broken URL.
	p := n.Normalize(RawProduct{ID: "1", Name: "X"})
	assert.Empty(t, p.ImageURL)
	assert.Empty(t, p.ExternalURL)
	assert.NotContains(t, p.ImageURL, "undefined")

	// Image id without link_rewrite falls back to the literal image URL.
	p = n.Normalize(RawProduct{ID: "1", IDDefaultImage: "9", ImageURL: "https://cdn.example.com/p1.jpg"})
	assert.Equal(t, "https://cdn.example.com/p1.jpg", p.ImageURL)

	// A zero image id is treated as absent.
	p = n.Normalize(RawProduct{ID: "1", LinkRewrite: "x", IDDefaultImage: "0"})
	assert.Empty(t, p.ImageURL)
}

func TestNormalizeDetailURLWithoutEAN(t *testing.T) {
	p := testNormalizer().Normalize(RawProduct{ID: "7", LinkRewrite: "gorra-roja"})
	assert.Equal(t, "https://shop.example.com/inicio/7-gorra-roja.html", p.ExternalURL)
	assert.True(t, strings.HasSuffix(p.ExternalURL, ".html"))
}

func TestNormalizeCategorySlugIsConfigurable(t *testing.T) {
	n := NewNormalizer("https://shop.example.com", "tienda")
	p := n.Normalize(RawProduct{ID: "7", LinkRewrite: "gorra"})
	assert.Equal(t, "https://shop.example.com/tienda/7-gorra.html", p.ExternalURL)
}

func TestNormalizeSKUPriority(t *testing.T) {
	n := testNormalizer()

	p := n.Normalize(RawProduct{ID: "1", Reference: "REF", EAN13: "EAN", UPC: "UPC"})
	assert.Equal(t, "REF", p.SKU)

	p = n.Normalize(RawProduct{ID: "1", EAN13: "EAN", UPC: "UPC"})
	assert.Equal(t, "EAN", p.SKU)

	p = n.Normalize(RawProduct{ID: "1", UPC: "UPC"})
	assert.Equal(t, "UPC", p.SKU)

	p = n.Normalize(RawProduct{ID: "1"})
	assert.Empty(t, p.SKU)
}

func TestNormalizeActiveFlag(t *testing.T) {
	n := testNormalizer()

	assert.True(t, n.Normalize(RawProduct{ID: "1"}).IsActive, "active unless explicitly inactive")
	assert.True(t, n.Normalize(RawProduct{ID: "1", Active: "1"}).IsActive)
	assert.False(t, n.Normalize(RawProduct{ID: "1", Active: "0"}).IsActive)
	assert.False(t, n.Normalize(RawProduct{ID: "1", Active: "false"}).IsActive)
}

func TestNormalizeCombinationPriceInheritance(t *testing.T) {
	n := testNormalizer()

	// A combination without its own price inherits the parent's.
	combo := n.NormalizeCombination(RawCombination{ID: "3", Quantity: "2"}, 19.9)
	assert.Equal(t, 19.9, combo.Price)
	assert.Equal(t, 2, combo.Quantity)

	// One with a price keeps it.
	combo = n.NormalizeCombination(RawCombination{ID: "3", Price: "24.50"}, 19.9)
	assert.Equal(t, 24.5, combo.Price)
}

func TestNormalizeCombinationAttributes(t *testing.T) {
	var raw RawCombination
	require.NoError(t, json.Unmarshal([]byte(`{
		"id": "5",
		"reference": "C-5",
		"price": "10.00",
		"associations": {"product_option_values": [{"id": "2", "name": "Talla", "value": "M"}]}
	}`), &raw))

	combo := testNormalizer().NormalizeCombination(raw, 0)
	require.Len(t, combo.Attributes, 1)
	assert.Equal(t, "Talla", combo.Attributes[0].Name)
	assert.Equal(t, "M", combo.Attributes[0].Value)
	assert.Equal(t, "C-5", combo.Reference)
}
