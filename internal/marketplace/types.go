// Package marketplace scrapes mutable listing data (price, availability,
// promotions, reviews) from vendor store pages.
package marketplace

import (
	"encoding/json"
	"time"
)

// Listing is the selector-driven snapshot of one store page. Nil fields were
// not found on the page and serialize as null.
type Listing struct {
	SnapshotID    string   `json:"snapshot_id"`
	ProductTitle  *string  `json:"product_title"`
	Brand         string   `json:"brand"`
	PriceCurrent  *string  `json:"price_current"`
	PriceOriginal *string  `json:"price_original"`
	CurrentValue  *float64 `json:"price_current_value"`
	OriginalValue *float64 `json:"price_original_value"`
	Discount      *float64 `json:"discount"`
	Availability  string   `json:"availability"`
	// AvailabilityInferred is set when the page carried no availability text
	// and Availability was derived from the presence of a current price.
	AvailabilityInferred bool      `json:"availability_inferred"`
	PromoText            *string   `json:"promo_text"`
	ReviewsCount         *string   `json:"reviews_count"`
	Rating               *string   `json:"rating"`
	SourceURL            string    `json:"source_url"`
	ScrapedAt            time.Time `json:"scraped_at"`
}

// Product is the JSON-LD and review snapshot of one product detail page.
type Product struct {
	SnapshotID  string         `json:"snapshot_id"`
	URL         string         `json:"url"`
	Product     map[string]any `json:"product"`
	VisibleText string         `json:"visible_text"`
	Reviews     ReviewSet      `json:"reviews"`
	QA          QASet          `json:"qa"`
	ScrapedAt   time.Time      `json:"scraped_at"`
}

type ReviewSet struct {
	API  []APIReview  `json:"api"`
	HTML []HTMLReview `json:"html"`
}

type QASet struct {
	API  []APIQuestion  `json:"api"`
	HTML []HTMLQuestion `json:"html"`
}

type APIReview struct {
	Rating any    `json:"rating"`
	Title  string `json:"title"`
	Review string `json:"review"`
	Author string `json:"author"`
	Date   string `json:"date"`
}

type APIAnswer struct {
	Answer string `json:"answer"`
	Author string `json:"author"`
	Date   string `json:"date"`
}

type APIQuestion struct {
	Question string      `json:"question"`
	Answers  []APIAnswer `json:"answers"`
}

type HTMLReview struct {
	User     *string `json:"user"`
	Rating   *string `json:"rating"`
	Title    *string `json:"title"`
	Body     *string `json:"body"`
	Verified bool    `json:"verified"`
	Location *string `json:"location"`
}

type HTMLQuestion struct {
	Question *string `json:"question"`
	Answer   *string `json:"answer"`
}

// Result is the outcome of one target. Exactly one of Listing, Product and Err is set.
type Result struct {
	URL     string
	Listing *Listing
	Product *Product
	Err     error
}

// Failure is the serialized form of a failed target.
type Failure struct {
	Error     string `json:"error"`
	SourceURL string `json:"source_url"`
}

func (r Result) MarshalJSON() ([]byte, error) {
	switch {
	case r.Err != nil:
		return json.Marshal(Failure{Error: r.Err.Error(), SourceURL: r.URL})
	case r.Listing != nil:
		return json.Marshal(r.Listing)
	case r.Product != nil:
		return json.Marshal(r.Product)
	}
	return []byte("null"), nil
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
