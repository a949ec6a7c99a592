// Package catalog indexes normalized laptop records and marketplace listings
// into Elasticsearch and searches them.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/thywilljoshua/laptop-specs/internal/marketplace"
	"github.com/thywilljoshua/laptop-specs/internal/specs"
)

const (
	KindSpec    = "spec"
	KindListing = "listing"
)

// Document is what gets stored per record or listing.
type Document struct {
	ID        string          `json:"id"`
	Kind      string          `json:"kind"`
	Brand     string          `json:"brand"`
	Title     string          `json:"title"`
	Text      string          `json:"text"`
	Source    json.RawMessage `json:"source"`
	IndexedAt time.Time       `json:"indexed_at"`
}

// Client wraps go-elasticsearch for the catalog index.
type Client struct {
	es    *elasticsearch.Client
	index string
	log   *slog.Logger
	now   func() time.Time
}

func New(addr, index string, logger *slog.Logger) (*Client, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{addr},
	})
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{es: es, index: index, log: logger, now: time.Now}, nil
}

func (c *Client) Ping(ctx context.Context) error {
	res, err := c.es.Ping(c.es.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("ping elasticsearch: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elasticsearch ping failed: %s", res.Status())
	}
	return nil
}

// IndexRecord stores one normalized specification record under id.
func (c *Client) IndexRecord(ctx context.Context, id string, rec specs.Record) error {
	src, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record %s: %w", id, err)
	}
	return c.put(ctx, Document{
		ID:     KindSpec + ":" + id,
		Kind:   KindSpec,
		Brand:  str(rec["brand"]),
		Title:  str(rec["model"]),
		Text:   flatten(map[string]any(rec)),
		Source: src,
	})
}

// IndexListing stores one marketplace snapshot keyed by its snapshot id.
func (c *Client) IndexListing(ctx context.Context, l *marketplace.Listing) error {
	src, err := json.Marshal(l)
	if err != nil {
		return fmt.Errorf("marshal listing %s: %w", l.SnapshotID, err)
	}
	doc := Document{
		ID:     KindListing + ":" + l.SnapshotID,
		Kind:   KindListing,
		Brand:  l.Brand,
		Source: src,
	}
	if l.ProductTitle != nil {
		doc.Title = *l.ProductTitle
	}
	parts := []string{doc.Title, l.Availability}
	for _, p := range []*string{l.PriceCurrent, l.PromoText} {
		if p != nil {
			parts = append(parts, *p)
		}
	}
	doc.Text = strings.Join(parts, " ")
	return c.put(ctx, doc)
}

func (c *Client) put(ctx context.Context, doc Document) error {
	doc.IndexedAt = c.now().UTC()
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal doc: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      c.index,
		DocumentID: doc.ID,
		Body:       bytes.NewReader(payload),
		Refresh:    "false",
	}
	res, err := req.Do(ctx, c.es)
	if err != nil {
		return fmt.Errorf("index doc: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("index doc failed: %s", strings.TrimSpace(string(body)))
	}
	c.log.Debug("indexed", "id", doc.ID)
	return nil
}

// Search runs a full-text query over titles and flattened text. An empty
// query matches everything. kind narrows to KindSpec or KindListing when set.
func (c *Client) Search(ctx context.Context, query, kind string, size int) ([]Document, error) {
	if size <= 0 {
		size = 10
	}
	if size > 100 {
		size = 100
	}

	boolQuery := map[string]any{}
	if query != "" {
		boolQuery["must"] = []map[string]any{{
			"multi_match": map[string]any{
				"query":  query,
				"fields": []string{"title^2", "brand", "text"},
			},
		}}
	} else {
		boolQuery["must"] = []map[string]any{{"match_all": map[string]any{}}}
	}
	if kind != "" {
		boolQuery["filter"] = []map[string]any{{"term": map[string]any{"kind": kind}}}
	}

	payload, err := json.Marshal(map[string]any{
		"size":  size,
		"query": map[string]any{"bool": boolQuery},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal search body: %w", err)
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(c.index),
		c.es.Search.WithBody(bytes.NewReader(payload)),
	)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		data, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("search failed: %s", strings.TrimSpace(string(data)))
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source Document `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	out := make([]Document, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		out = append(out, hit.Source)
	}
	return out, nil
}

// IndexDataset indexes every entry and returns how many made it. Failures are
// logged and the first one is returned after all entries were attempted.
func (c *Client) IndexDataset(ctx context.Context, ds *specs.Dataset) (int, error) {
	var first error
	n := 0
	for _, e := range ds.Entries {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		if err := c.IndexRecord(ctx, e.ID, e.Record); err != nil {
			c.log.Error("index record failed", "id", e.ID, "err", err)
			if first == nil {
				first = err
			}
			continue
		}
		n++
	}
	return n, first
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

// flatten renders every scalar leaf as "key value" in sorted key order.
func flatten(v any) string {
	var parts []string
	var walk func(prefix string, v any)
	walk = func(prefix string, v any) {
		switch t := v.(type) {
		case map[string]any:
			for _, k := range specs.SortedKeys(t) {
				walk(k, t[k])
			}
		case []any:
			for _, item := range t {
				walk(prefix, item)
			}
		case nil:
		default:
			if prefix == "" {
				parts = append(parts, fmt.Sprint(t))
				return
			}
			parts = append(parts, fmt.Sprintf("%s %v", strings.ReplaceAll(prefix, "_", " "), t))
		}
	}
	walk("", v)
	return strings.Join(parts, " ")
}
