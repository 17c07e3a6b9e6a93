package aqi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TobiSchelling/SmogStory/internal/config"
)

const (
	testSelector = "p.aqi-value__value"
	testMarker   = "US AQI"
)

func parseHTML(t *testing.T, body string) (int, error) {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	require.NoError(t, err)
	return Parse(doc, testSelector, testMarker)
}

func newTestFetcher(url string) *Fetcher {
	return NewFetcher(config.Source{
		URL:       url,
		UserAgent: "Mozilla/5.0 test",
		Selector:  testSelector,
		Marker:    testMarker,
	})
}

func TestParsePrimarySelector(t *testing.T) {
	v, err := parseHTML(t, `<html><body><div><p class="aqi-value__value"> 87 </p><span>US AQI</span></div></body></html>`)
	require.NoError(t, err)
	assert.Equal(t, 87, v)
}

func TestParsePrimaryNotNumeric(t *testing.T) {
	_, err := parseHTML(t, `<p class="aqi-value__value">n/a</p>`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrParse))
}

func TestParseFallbackMarker(t *testing.T) {
	body := `<html><body>
<div class="header"><span>12</span></div>
<div class="reading">
  <b>154</b>
  <span class="unit">US AQI</span>
</div>
</body></html>`
	v, err := parseHTML(t, body)
	require.NoError(t, err)
	assert.Equal(t, 154, v)
}

func TestParseFallbackThroughWrapper(t *testing.T) {
	body := `<div><p><strong>41</strong></p><p>Other</p><label>US AQI</label></div>`
	v, err := parseHTML(t, body)
	require.NoError(t, err)
	assert.Equal(t, 41, v)
}

func TestParseFallbackNoNumber(t *testing.T) {
	_, err := parseHTML(t, `<div><span>hello</span><span>US AQI</span></div>`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrParse))
	assert.Contains(t, err.Error(), "could not parse")
}

func TestParseNothingFound(t *testing.T) {
	_, err := parseHTML(t, `<html><body><p>Weather is nice</p><span>42</span></body></html>`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrParse))
	assert.Contains(t, err.Error(), "could not find")
}

func TestFetchSendsUserAgent(t *testing.T) {
	var agent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agent = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`<p class="aqi-value__value">73</p>`))
	}))
	defer server.Close()

	v, err := newTestFetcher(server.URL).Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 73, v)
	assert.Equal(t, "Mozilla/5.0 test", agent)
}

func TestFetchStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	_, err := newTestFetcher(server.URL).Fetch(context.Background())
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusForbidden, statusErr.Code)
}

func TestFetchParseError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>maintenance</body></html>`))
	}))
	defer server.Close()

	_, err := newTestFetcher(server.URL).Fetch(context.Background())
	assert.True(t, errors.Is(err, ErrParse))
}
