package aqi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"golang.org/x/net/html"

	"github.com/TobiSchelling/SmogStory/internal/config"
)

// ErrParse is returned when the page does not contain a usable AQI value.
var ErrParse = errors.New("aqi parse error")

// StatusError is returned when the AQI page answers with a non-2xx status.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s returned %d", e.URL, e.Code)
}

// Fetcher scrapes the current AQI value from a city page.
type Fetcher struct {
	client   *resty.Client
	url      string
	selector string
	marker   string
}

// NewFetcher creates a fetcher for the configured source.
func NewFetcher(src config.Source) *Fetcher {
	timeout := src.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", src.UserAgent)

	return &Fetcher{
		client:   client,
		url:      src.URL,
		selector: src.Selector,
		marker:   src.Marker,
	}
}

// Fetch downloads the page and extracts the AQI value.
func (f *Fetcher) Fetch(ctx context.Context) (int, error) {
	res, err := f.client.R().
		SetContext(ctx).
		Get(f.url)
	if err != nil {
		return 0, fmt.Errorf("fetching %s: %w", f.url, err)
	}
	if !res.IsSuccess() {
		return 0, &StatusError{URL: f.url, Code: res.StatusCode()}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		return 0, fmt.Errorf("parsing html: %w", err)
	}

	return Parse(doc, f.selector, f.marker)
}

// Parse extracts the AQI value from a document. It tries the selector
// first, then falls back to the nearest purely numeric element preceding
// the first text containing marker. The fallback is a heuristic and can
// pick up an unrelated number if the page layout changes.
func Parse(doc *goquery.Document, selector, marker string) (int, error) {
	if sel := doc.Find(selector).First(); sel.Length() > 0 {
		text := strings.TrimSpace(sel.Text())
		value, ok := parseDigits(text)
		if !ok {
			return 0, fmt.Errorf("%w: element %q holds %q", ErrParse, selector, text)
		}
		return value, nil
	}

	textNode := findText(doc.Selection.Nodes[0], marker)
	if textNode == nil {
		return 0, fmt.Errorf("%w: could not find AQI element on page", ErrParse)
	}
	anchor := textNode.Parent
	if anchor == nil {
		anchor = textNode
	}

	log.Printf("Selector %q not found, scanning back from %q", selector, marker)

	// Find("*") yields elements in document order, so walking it backward
	// from the anchor visits ancestors and earlier elements nearest first.
	elements := doc.Find("*").Nodes
	start := len(elements)
	for i, n := range elements {
		if n == anchor {
			start = i
			break
		}
	}
	for i := start - 1; i >= 0; i-- {
		s, ok := ownString(elements[i])
		if !ok {
			continue
		}
		if value, ok := parseDigits(strings.TrimSpace(s)); ok {
			return value, nil
		}
	}

	return 0, fmt.Errorf("%w: could not parse AQI value from page", ErrParse)
}

// findText returns the first text node in document order containing marker.
func findText(n *html.Node, marker string) *html.Node {
	if n.Type == html.TextNode && strings.Contains(n.Data, marker) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findText(c, marker); found != nil {
			return found
		}
	}
	return nil
}

// ownString returns the text of an element whose only content is a single
// string, descending through single-child wrappers.
func ownString(n *html.Node) (string, bool) {
	child := n.FirstChild
	if child == nil || child.NextSibling != nil {
		return "", false
	}
	switch child.Type {
	case html.TextNode:
		return child.Data, true
	case html.ElementNode:
		return ownString(child)
	}
	return "", false
}

func parseDigits(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return v, true
}
