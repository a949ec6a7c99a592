package marketplace

import (
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Selector field names.
const (
	FieldTitle         = "title"
	FieldPriceCurrent  = "price_current"
	FieldPriceOriginal = "price_original"
	FieldAvailability  = "availability"
	FieldPromoText     = "promo_text"
	FieldReviewsCount  = "reviews_count"
	FieldRating        = "rating"
)

// DefaultSelectors cover the HP and Lenovo store layouts. Each list is tried in order.
func DefaultSelectors() map[string][]string {
	return map[string][]string{
		FieldTitle: {
			"h1.pdp-title", `h1[data-test-hook="@hpstellar/core/typography"]`, "h1",
			"h1[itemprop='name']", "h1.product-name", ".product-title", ".product-name", "h2.Vp-v_gf",
		},
		FieldPriceCurrent: {
			"span.sale-subscription-price", "span[data-test='product-price']",
			"span[itemprop='price']", "div.price_container",
			".product-price .price", ".pdp-price .price", ".price__value",
		},
		FieldPriceOriginal: {
			".compare-at-price", `div.starting-at-price span[data-test-hook="@hpstellar/core/typography"]`,
			".price--was", "div.price_container", ".original-price", ".was-price",
			".price--strike",
		},
		FieldAvailability: {
			`button[data-test-hook="@hpstellar/core/button"] span[data-test-hook="@hpstellar/core/typography"]`,
			"span[data-test-hook='@hpstellar/core/product-tile__stock__stock']",
			`span[data-test-hook="@hpstellar/core/stock-indicator__stock"]`,
			"span.special-status_text", ".stock-status", ".availability",
			".out-of-stock", ".pdp-unavailable", ".stock",
		},
		FieldPromoText: {
			`div[data-test-hook="@hpstellar/core/banner/highlight-banner__description"]`,
			`div[data-test-hook="@hpstellar/core/banner/highlight-banner__title"]`,
			`div.merchandizingItem[data-tkey="merchandizingBanner.item"] p`,
			"ul.V2-I_gf div[data-test-hook='@hpstellar/core/typography'] span.cust-html",
			"div.product-offers-content p",
			`div.product-offers div.offer-type-contingent p[data-test-hook="@hpstellar/core/typography"]`,
			".promo", ".offer", ".savings", ".price-savings", ".promo-text",
		},
		FieldReviewsCount: {
			"div[data-test-hook='@hpstellar/core/typography'].Nm-Nu_gf",
			`div.bv_numReviews_component_container meta[itemprop="reviewCount"]`,
			"div.bv_numReviews_component_container div.bv_text",
			".reviews-count", ".review-count", "#reviews .count", "div.bv_numReviews_text",
		},
		FieldRating: {
			"div.bv_averageRating_component_container div.bv_text",
			"div.bv_text",
			"div[data-test-hook='@hpstellar/core/typography'].Nm-Nt_gf",
			`div.bv_avgRating_component_container[itemprop="ratingValue"]`,
		},
	}
}

// MergeSelectors replaces default lists with any non-empty override.
func MergeSelectors(base, overrides map[string][]string) map[string][]string {
	out := make(map[string][]string, len(base))
	for k, v := range base {
		out[k] = append([]string(nil), v...)
	}
	for k, v := range overrides {
		if len(v) > 0 {
			out[k] = append([]string(nil), v...)
		}
	}
	return out
}

var priceRe = regexp.MustCompile(`\$[\d,]+(?:\.\d{2})?`)

// ParsePrice reads the first dollar amount in text.
func ParsePrice(text string) (float64, bool) {
	m := priceRe.FindString(text)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.NewReplacer("$", "", ",", "").Replace(m), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// BrandFromURL maps a store host to its brand.
func BrandFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "Unknown"
	}
	host := strings.ToLower(u.Hostname())
	switch {
	case host == "hp.com" || strings.HasSuffix(host, ".hp.com"):
		return "HP"
	case host == "lenovo.com" || strings.HasSuffix(host, ".lenovo.com"):
		return "Lenovo"
	}
	return "Unknown"
}

// ParseListing applies selectors to a store page.
func ParseListing(doc *goquery.Document, sourceURL string, selectors map[string][]string) *Listing {
	l := &Listing{
		Brand:     BrandFromURL(sourceURL),
		SourceURL: sourceURL,
	}
	l.ProductTitle = strPtr(pickFirst(doc, selectors[FieldTitle]))
	l.PriceCurrent = strPtr(strings.Trim(pickFirst(doc, selectors[FieldPriceCurrent]), "()"))
	l.PriceOriginal = strPtr(strings.Trim(pickFirst(doc, selectors[FieldPriceOriginal]), "()"))

	if l.PriceCurrent != nil {
		if v, ok := ParsePrice(*l.PriceCurrent); ok {
			l.CurrentValue = &v
		}
	}
	if l.PriceOriginal != nil {
		if v, ok := ParsePrice(*l.PriceOriginal); ok {
			l.OriginalValue = &v
		}
	}
	if l.CurrentValue != nil && l.OriginalValue != nil && *l.OriginalValue > *l.CurrentValue {
		d := math.Round((*l.OriginalValue-*l.CurrentValue)*100) / 100
		l.Discount = &d
	}

	if a := pickFirst(doc, selectors[FieldAvailability]); a != "" {
		l.Availability = a
	} else {
		l.AvailabilityInferred = true
		if l.PriceCurrent != nil {
			l.Availability = "Available"
		} else {
			l.Availability = "Unavailable"
		}
	}

	if promos := pickAll(doc, selectors[FieldPromoText]); len(promos) > 0 {
		l.PromoText = strPtr(strings.Join(promos, " | "))
	}
	l.ReviewsCount = strPtr(strings.Trim(pickFirst(doc, selectors[FieldReviewsCount]), "()"))
	l.Rating = strPtr(strings.Trim(pickFirst(doc, selectors[FieldRating]), "()"))
	return l
}

// pickFirst returns the first non-empty text among the selectors, in order.
func pickFirst(doc *goquery.Document, selectors []string) string {
	for _, sel := range selectors {
		var found string
		doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			found = nodeText(s)
			return found == ""
		})
		if found != "" {
			return found
		}
	}
	return ""
}

// pickAll returns every distinct non-empty text among the selectors, in document order per selector.
func pickAll(doc *goquery.Document, selectors []string) []string {
	var out []string
	seen := map[string]bool{}
	for _, sel := range selectors {
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			t := nodeText(s)
			if t != "" && !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		})
	}
	return out
}

// nodeText is the element's whitespace-collapsed text, or its content
// attribute for empty elements such as <meta>.
func nodeText(s *goquery.Selection) string {
	t := strings.Join(strings.Fields(s.Text()), " ")
	if t == "" {
		if c, ok := s.Attr("content"); ok {
			t = strings.TrimSpace(c)
		}
	}
	return t
}
