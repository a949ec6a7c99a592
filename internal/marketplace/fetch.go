package marketplace

import (
	"context"
	"fmt"
	"time"

	"github.com/gocolly/colly/v2"
	"golang.org/x/time/rate"
)

// Fetcher retrieves raw page bodies.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// CollyFetcher fetches static pages with colly, paced by a shared limiter.
type CollyFetcher struct {
	base    *colly.Collector
	limiter *rate.Limiter
}

func NewCollyFetcher(userAgent string, timeout time.Duration, requestsPerSecond float64) *CollyFetcher {
	c := colly.NewCollector(
		colly.UserAgent(userAgent),
		colly.AllowURLRevisit(),
	)
	c.SetRequestTimeout(timeout)
	burst := int(requestsPerSecond)
	if burst < 1 {
		burst = 1
	}
	return &CollyFetcher{
		base:    c,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

func (f *CollyFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	// Clone copies settings but not callbacks.
	c := f.base.Clone()
	c.Context = ctx
	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", "text/html")
	})
	var body []byte
	c.OnResponse(func(r *colly.Response) {
		body = r.Body
	})
	if err := c.Visit(url); err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	if body == nil {
		return nil, fmt.Errorf("fetch %s: empty response", url)
	}
	return body, nil
}
