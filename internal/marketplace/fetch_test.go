package marketplace_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/thywilljoshua/laptop-specs/internal/marketplace"
)

func TestCollyFetcherFetch(t *testing.T) {
	agents := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agents <- r.UserAgent()
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(hpListingPage))
	}))
	defer srv.Close()

	f := marketplace.NewCollyFetcher("laptopspecs-test", 5*time.Second, 10)
	body, err := f.Fetch(context.Background(), srv.URL+"/pdp")
	require.NoError(t, err)
	require.Equal(t, hpListingPage, string(body))
	require.Equal(t, "laptopspecs-test", <-agents)
}

func TestCollyFetcherHonoursCancellation(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	f := marketplace.NewCollyFetcher("laptopspecs-test", 30*time.Second, 10)
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := f.Fetch(ctx, srv.URL+"/slow")
	require.Error(t, err)
	require.Less(t, time.Since(start), 10*time.Second)
}
