package marketplace_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/thywilljoshua/laptop-specs/internal/marketplace"
)

const productPage = `<html>
<head>
<title>HP ProBook 440</title>
<script type="application/ld+json">[{"@type": "BreadcrumbList"}, {"@type": "Product", "name": "HP ProBook 440 G11", "sku": "A3RN0UA"}]</script>
<style>.x { color: red }</style>
</head>
<body>
<h1>HP ProBook 440 G11</h1>
<!-- hidden comment -->
<p>  Intel Core Ultra 5  </p>
<noscript>enable js</noscript>
<script>var cfg = {"reviews": "https://api.example.com/reviews/api/v1?product=1", "qa": "/question/api/list?product=1"};</script>
<section id="bv-review-1">
  <span class="bv-rnr__sc-1r4hv38-0">Sam</span>
  <div aria-label="4 out of 5 stars"></div>
  <h3>Solid laptop</h3>
  <div class="bv-content-review-text">Fast and   light.</div>
  <span aria-label="Verified Purchaser"></span>
</section>
<div id="bv-question-9">
  <div class="bv-content-title">Does it have a backlit keyboard?</div>
  <div class="bv-answer">Yes</div>
</div>
</body></html>`

func TestParseProduct(t *testing.T) {
	p, ep, err := marketplace.ParseProduct([]byte(productPage), "https://www.hp.com/us-en/shop/pdp/probook-440")
	require.NoError(t, err)

	require.Equal(t, "HP ProBook 440 G11", p.Product["name"])
	require.True(t, strings.HasPrefix(p.VisibleText, "HP ProBook 440 G11\nIntel Core Ultra 5\nSam\n"), p.VisibleText)
	require.NotContains(t, p.VisibleText, "enable js")
	require.NotContains(t, p.VisibleText, "color: red")
	require.NotContains(t, p.VisibleText, "hidden comment")

	require.Len(t, p.Reviews.HTML, 1)
	r := p.Reviews.HTML[0]
	require.Equal(t, "Sam", *r.User)
	require.Equal(t, "4", *r.Rating)
	require.Equal(t, "Solid laptop", *r.Title)
	require.Equal(t, "Fast and light.", *r.Body)
	require.True(t, r.Verified)
	require.Nil(t, r.Location)

	require.Len(t, p.QA.HTML, 1)
	require.Equal(t, "Does it have a backlit keyboard?", *p.QA.HTML[0].Question)
	require.Equal(t, "Yes", *p.QA.HTML[0].Answer)

	require.Equal(t, "https://api.example.com/reviews/api/v1?product=1", ep.Reviews)
	require.Equal(t, "https://www.hp.com/question/api/list?product=1", ep.Questions)
}

func TestParseProductWithoutJSONLD(t *testing.T) {
	p, ep, err := marketplace.ParseProduct([]byte(`<html><body><p>hello</p></body></html>`), "https://www.hp.com/x")
	require.NoError(t, err)
	require.Empty(t, p.Product)
	require.NotNil(t, p.Reviews.HTML)
	require.Empty(t, ep.Reviews)
	require.Empty(t, ep.Questions)
}

func TestFetchReviewsAndQuestions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/reviews":
			_, _ = w.Write([]byte(`{"results": [{"rating": 5, "title": "Great", "reviewText": "Love it", "userNickname": "kim", "submissionTime": "2024-01-02"}]}`))
		case "/questions":
			_, _ = w.Write([]byte(`{"results": [{"questionText": "Weight?", "answers": [{"answerText": "1.4 kg", "userNickname": "hp"}]}]}`))
		default:
			http.Error(w, "nope", http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := marketplace.NewAPIClient("test", 5*time.Second)
	ctx := context.Background()

	reviews, err := marketplace.FetchReviews(ctx, client, srv.URL+"/reviews")
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	require.Equal(t, "Love it", reviews[0].Review)
	require.Equal(t, "kim", reviews[0].Author)
	require.EqualValues(t, 5, reviews[0].Rating)

	qa, err := marketplace.FetchQuestions(ctx, client, srv.URL+"/questions")
	require.NoError(t, err)
	require.Len(t, qa, 1)
	require.Equal(t, "Weight?", qa[0].Question)
	require.Equal(t, "1.4 kg", qa[0].Answers[0].Answer)

	_, err = marketplace.FetchReviews(ctx, client, srv.URL+"/missing")
	var apiErr *marketplace.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}
