package marketplace_test

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"github.com/thywilljoshua/laptop-specs/internal/marketplace"
)

const hpListingPage = `<html><body>
<h1 class="pdp-title">HP ProBook 450 15.6 inch G10 Notebook PC</h1>
<span class="sale-subscription-price">($899.00)</span>
<div class="starting-at-price"><span data-test-hook="@hpstellar/core/typography">$1,249.99</span></div>
<span class="stock-status"> In stock </span>
<div class="promo">Save 28%</div>
<div class="offer">Free shipping</div>
<div class="promo">Save 28%</div>
<div class="bv_numReviews_component_container"><meta itemprop="reviewCount" content="42"></div>
<div class="bv_averageRating_component_container"><div class="bv_text">4.3</div></div>
</body></html>`

func parse(t *testing.T, page, url string) *marketplace.Listing {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	require.NoError(t, err)
	return marketplace.ParseListing(doc, url, marketplace.DefaultSelectors())
}

func TestParseListing(t *testing.T) {
	l := parse(t, hpListingPage, "https://www.hp.com/us-en/shop/pdp/probook-450")

	require.Equal(t, "HP", l.Brand)
	require.Equal(t, "HP ProBook 450 15.6 inch G10 Notebook PC", *l.ProductTitle)
	require.Equal(t, "$899.00", *l.PriceCurrent)
	require.Equal(t, "$1,249.99", *l.PriceOriginal)
	require.InDelta(t, 899.0, *l.CurrentValue, 0.001)
	require.InDelta(t, 1249.99, *l.OriginalValue, 0.001)
	require.InDelta(t, 350.99, *l.Discount, 0.001)
	require.Equal(t, "In stock", l.Availability)
	require.False(t, l.AvailabilityInferred)
	require.Equal(t, "Save 28% | Free shipping", *l.PromoText)
	require.Equal(t, "42", *l.ReviewsCount)
	require.Equal(t, "4.3", *l.Rating)
}

func TestParseListingAvailabilityFallback(t *testing.T) {
	tests := []struct {
		name string
		page string
		want string
	}{
		{
			name: "price present",
			page: `<html><body><h1>ThinkPad E14</h1><span itemprop="price">$679.00</span></body></html>`,
			want: "Available",
		},
		{
			name: "no price",
			page: `<html><body><h1>ThinkPad E14</h1></body></html>`,
			want: "Unavailable",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := parse(t, tt.page, "https://www.lenovo.com/us/en/p/laptops/thinkpad")
			require.Equal(t, tt.want, l.Availability)
			require.True(t, l.AvailabilityInferred)
			require.Equal(t, "Lenovo", l.Brand)
		})
	}
}

func TestParseListingNoDiscountWhenNotCheaper(t *testing.T) {
	page := `<html><body>
<span class="sale-subscription-price">$999.00</span>
<span class="was-price">$899.00</span>
</body></html>`
	l := parse(t, page, "https://www.hp.com/x")
	require.Nil(t, l.Discount)
	require.Nil(t, l.ProductTitle)
	require.Nil(t, l.PromoText)
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"$1,299.99", 1299.99, true},
		{"Now $679", 679, true},
		{"(was $899.00)", 899, true},
		{"Call for price", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := marketplace.ParsePrice(tt.in)
			require.Equal(t, tt.ok, ok)
			require.InDelta(t, tt.want, got, 0.001)
		})
	}
}

func TestBrandFromURL(t *testing.T) {
	require.Equal(t, "HP", marketplace.BrandFromURL("https://www.hp.com/us-en/shop"))
	require.Equal(t, "Lenovo", marketplace.BrandFromURL("https://www.lenovo.com/us/en/p"))
	require.Equal(t, "Unknown", marketplace.BrandFromURL("https://example.com/hp.com"))
}

func TestMergeSelectors(t *testing.T) {
	base := marketplace.DefaultSelectors()
	merged := marketplace.MergeSelectors(base, map[string][]string{
		marketplace.FieldTitle:  {"h1.custom"},
		marketplace.FieldRating: nil,
	})
	require.Equal(t, []string{"h1.custom"}, merged[marketplace.FieldTitle])
	require.Equal(t, base[marketplace.FieldRating], merged[marketplace.FieldRating])
	require.NotEqual(t, base[marketplace.FieldTitle], merged[marketplace.FieldTitle])
}
