package marketplace

import (
	"bytes"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Endpoints are review and Q&A JSON APIs referenced from a page's inline scripts.
type Endpoints struct {
	Reviews   string
	Questions string
}

// ParseProduct extracts everything available from the page markup itself.
// API-backed reviews and Q&A are fetched separately from the returned endpoints.
func ParseProduct(body []byte, pageURL string) (*Product, Endpoints, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, Endpoints{}, err
	}
	text, err := VisibleText(body)
	if err != nil {
		return nil, Endpoints{}, err
	}

	p := &Product{
		URL:         pageURL,
		Product:     productJSONLD(doc),
		VisibleText: text,
		Reviews:     ReviewSet{API: []APIReview{}, HTML: htmlReviews(doc)},
		QA:          QASet{API: []APIQuestion{}, HTML: htmlQuestions(doc)},
	}
	return p, findEndpoints(doc, pageURL), nil
}

// VisibleText returns the page's human-visible text, one trimmed string per line.
func VisibleText(body []byte) (string, error) {
	root, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	var lines []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "head", "meta", "link", "title":
				return
			}
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				lines = append(lines, t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return strings.Join(lines, "\n"), nil
}

func productJSONLD(doc *goquery.Document) map[string]any {
	var found map[string]any
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var parsed any
		if err := json.Unmarshal([]byte(s.Text()), &parsed); err != nil {
			return true
		}
		switch v := parsed.(type) {
		case []any:
			for _, item := range v {
				if m, ok := item.(map[string]any); ok && isProduct(m) {
					found = m
					return false
				}
			}
		case map[string]any:
			if isProduct(v) {
				found = v
				return false
			}
		}
		return true
	})
	if found == nil {
		return map[string]any{}
	}
	return found
}

func isProduct(m map[string]any) bool {
	switch t := m["@type"].(type) {
	case string:
		return t == "Product"
	case []any:
		for _, v := range t {
			if v == "Product" {
				return true
			}
		}
	}
	return false
}

// findEndpoints scans inline scripts for quoted strings naming a review or
// question API. The last match in document order wins.
func findEndpoints(doc *goquery.Document, pageURL string) Endpoints {
	var ep Endpoints
	base, _ := url.Parse(pageURL)
	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		if _, external := s.Attr("src"); external {
			return
		}
		text := s.Text()
		lower := strings.ToLower(text)
		if !strings.Contains(lower, "api") {
			return
		}
		for _, piece := range strings.Split(text, `"`) {
			if !strings.Contains(piece, "api") {
				continue
			}
			if strings.Contains(piece, "review") {
				if u := resolveEndpoint(base, piece); u != "" {
					ep.Reviews = u
				}
			}
			if strings.Contains(piece, "question") {
				if u := resolveEndpoint(base, piece); u != "" {
					ep.Questions = u
				}
			}
		}
	})
	return ep
}

func resolveEndpoint(base *url.URL, piece string) string {
	piece = strings.TrimSpace(piece)
	if piece == "" || strings.ContainsAny(piece, " \n\t{}") {
		return ""
	}
	u, err := url.Parse(piece)
	if err != nil {
		return ""
	}
	if !u.IsAbs() {
		if base == nil || !strings.HasPrefix(piece, "/") {
			return ""
		}
		u = base.ResolveReference(u)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return u.String()
}

func htmlReviews(doc *goquery.Document) []HTMLReview {
	out := []HTMLReview{}
	doc.Find("section[id^='bv-review-'], div[id^='bv-review-']").Each(func(_ int, r *goquery.Selection) {
		rev := HTMLReview{
			User:     strPtr(compact(r.Find("span.bv-rnr__sc-1r4hv38-0").First().Text())),
			Title:    strPtr(compact(r.Find("h3, .bv-content-title").First().Text())),
			Body:     strPtr(compact(r.Find(".bv-content-summary-body-text, .bv-content-review-text").First().Text())),
			Verified: r.Find("[aria-label='Verified Purchaser']").Length() > 0,
			Location: strPtr(compact(r.Find(".bv-rnr__emkap-1 span").First().Text())),
		}
		if label, ok := r.Find("[aria-label*='out of 5 stars']").First().Attr("aria-label"); ok && label != "" {
			rev.Rating = strPtr(strings.TrimSpace(strings.SplitN(label, " out", 2)[0]))
		}
		out = append(out, rev)
	})
	return out
}

func htmlQuestions(doc *goquery.Document) []HTMLQuestion {
	out := []HTMLQuestion{}
	doc.Find("section[id^='bv-question-'], div[id^='bv-question-']").Each(func(_ int, q *goquery.Selection) {
		out = append(out, HTMLQuestion{
			Question: strPtr(compact(q.Find(".bv-content-title, .bv-question-summary, h3").First().Text())),
			Answer:   strPtr(compact(q.Find(".bv-answer, .bv-answer-text").First().Text())),
		})
	})
	return out
}

func compact(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
