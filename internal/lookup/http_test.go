package lookup

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/receipts-collator/constants"
)

func TestHTTPSourceFetch(t *testing.T) {
	var gotQuery, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("keyword")
		gotUA = r.Header.Get("User-Agent")
		switch gotQuery {
		case "782796":
			_, _ = w.Write([]byte(`<html><head><meta property="og:title" content="Kirkland Water 40 pk"></head><body>$4.99</body></html>`))
		case "404":
			http.NotFound(w, r)
		case "500":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			_, _ = w.Write([]byte(`<html><body><p>No results</p></body></html>`))
		}
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL+"/", time.Second, WithUserAgent("receipts-test"), WithHTTPClient(srv.Client()))
	ctx := context.Background()

	hint, status := src.Fetch(ctx, "782796")
	assert.Equal(t, constants.LookupStatusFound, status)
	assert.Equal(t, "Kirkland Water 40 pk", hint.Name)
	require.True(t, hint.HasPrice())
	assert.Equal(t, "4.99", hint.UnitPrice.Decimal.StringFixed(2))
	assert.Equal(t, "782796", gotQuery)
	assert.Equal(t, "receipts-test", gotUA)

	_, status = src.Fetch(ctx, "404")
	assert.Equal(t, constants.LookupStatusNotFound, status)

	_, status = src.Fetch(ctx, "500")
	assert.Equal(t, constants.LookupStatusFailed, status)

	_, status = src.Fetch(ctx, "1")
	assert.Equal(t, constants.LookupStatusNotFound, status)
}

func TestHTTPSourceTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL, 50*time.Millisecond)
	hint, ok := New(src).Lookup(context.Background(), "1")
	assert.False(t, ok)
	assert.True(t, hint.Empty())
}

func TestSearchURL(t *testing.T) {
	src := NewHTTPSource("https://www.costco.com/", 0)
	assert.Equal(t, "https://www.costco.com/s?keyword=12+34", src.SearchURL("12 34"))
}
