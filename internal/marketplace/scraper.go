package marketplace

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/thywilljoshua/laptop-specs/internal/config"
	"github.com/thywilljoshua/laptop-specs/internal/specs"
)

// Scraper runs a set of targets with bounded concurrency.
type Scraper struct {
	Fetcher     Fetcher
	API         *resty.Client
	Selectors   map[string][]string
	Concurrency int
	SaveHTMLDir string
	Publisher   Publisher
	Logger      *slog.Logger
	Now         func() time.Time
}

// New wires a Scraper from the targets file settings.
func New(cfg *config.ScrapeConfig, logger *slog.Logger) *Scraper {
	if logger == nil {
		logger = slog.Default()
	}
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	return &Scraper{
		Fetcher:     NewCollyFetcher(cfg.UserAgent, timeout, cfg.RequestsPerSecond),
		API:         NewAPIClient(cfg.UserAgent, timeout),
		Selectors:   MergeSelectors(DefaultSelectors(), cfg.Selectors),
		Concurrency: cfg.Concurrency,
		SaveHTMLDir: cfg.SaveHTMLDir,
		Logger:      logger,
		Now:         time.Now,
	}
}

// Run scrapes every target. Results follow target order; a failed target
// yields a Result with Err set and never stops the others.
func (s *Scraper) Run(ctx context.Context, targets []config.Target) []Result {
	results := make([]Result, len(targets))
	g := new(errgroup.Group)
	limit := s.Concurrency
	if limit < 1 {
		limit = 1
	}
	g.SetLimit(limit)

	for i, t := range targets {
		g.Go(func() error {
			results[i] = s.scrape(ctx, t)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (s *Scraper) scrape(ctx context.Context, t config.Target) Result {
	log := s.Logger.With("url", t.URL, "kind", t.Kind)
	if err := ctx.Err(); err != nil {
		return Result{URL: t.URL, Err: err}
	}
	log.Info("scraping")

	body, err := s.Fetcher.Fetch(ctx, t.URL)
	if err != nil {
		log.Error("fetch failed", "err", err)
		return Result{URL: t.URL, Err: err}
	}
	if s.SaveHTMLDir != "" {
		path := filepath.Join(s.SaveHTMLDir, htmlFileName(t)+".html")
		if err := specs.WriteFileAtomic(path, body); err != nil {
			log.Warn("save html failed", "path", path, "err", err)
		}
	}

	res := Result{URL: t.URL}
	var snapshot any
	switch t.Kind {
	case config.KindProduct:
		p, err := s.product(ctx, log, body, t.URL)
		if err != nil {
			log.Error("parse failed", "err", err)
			return Result{URL: t.URL, Err: err}
		}
		res.Product, snapshot = p, p
	default:
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
		if err != nil {
			log.Error("parse failed", "err", err)
			return Result{URL: t.URL, Err: fmt.Errorf("parse %s: %w", t.URL, err)}
		}
		l := ParseListing(doc, t.URL, s.Selectors)
		l.SnapshotID = uuid.NewString()
		l.ScrapedAt = s.now()
		res.Listing, snapshot = l, l
	}

	if s.Publisher != nil {
		key := snapshotID(res)
		if err := s.Publisher.Publish(ctx, key, snapshot); err != nil {
			log.Warn("publish failed", "snapshot_id", key, "err", err)
		}
	}
	log.Info("scraped")
	return res
}

func (s *Scraper) product(ctx context.Context, log *slog.Logger, body []byte, pageURL string) (*Product, error) {
	p, ep, err := ParseProduct(body, pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", pageURL, err)
	}
	p.SnapshotID = uuid.NewString()
	p.ScrapedAt = s.now()

	if ep.Reviews != "" && s.API != nil {
		if reviews, err := FetchReviews(ctx, s.API, ep.Reviews); err != nil {
			log.Warn("review api failed", "endpoint", ep.Reviews, "err", err)
		} else {
			p.Reviews.API = reviews
		}
	}
	if ep.Questions != "" && s.API != nil {
		if qa, err := FetchQuestions(ctx, s.API, ep.Questions); err != nil {
			log.Warn("q&a api failed", "endpoint", ep.Questions, "err", err)
		} else {
			p.QA.API = qa
		}
	}
	return p, nil
}

func (s *Scraper) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

func snapshotID(r Result) string {
	switch {
	case r.Listing != nil:
		return r.Listing.SnapshotID
	case r.Product != nil:
		return r.Product.SnapshotID
	}
	return ""
}

// Split separates listing results from product results. Failures go with the kind of their target.
func Split(targets []config.Target, results []Result) (listings, products []Result) {
	listings, products = []Result{}, []Result{}
	for i, r := range results {
		if i < len(targets) && targets[i].Kind == config.KindProduct {
			products = append(products, r)
			continue
		}
		listings = append(listings, r)
	}
	return listings, products
}

var nonSlug = regexp.MustCompile(`[^a-z0-9\-]+`)

func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonSlug.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	return s
}

func htmlFileName(t config.Target) string {
	if name := slugify(t.Name); name != "" {
		return name
	}
	u := strings.TrimPrefix(strings.TrimPrefix(t.URL, "https://"), "http://")
	if name := slugify(u); name != "" {
		return name
	}
	return "page"
}
