// html.go extracts puzzles embedded in web pages.

package puzzle

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// DefaultSelector matches <pre class="puzzle"> blocks.
const DefaultSelector = "pre.puzzle"

// ParseHTML returns every grid found under selector. A block is named after
// its data-name attribute, then its id, then its position on the page.
func ParseHTML(r io.Reader, selector string) ([]Puzzle, error) {
	if selector == "" {
		selector = DefaultSelector
	}
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var (
		puzzles  []Puzzle
		parseErr error
	)
	doc.Find(selector).EachWithBreak(func(i int, s *goquery.Selection) bool {
		name := fmt.Sprintf("puzzle-%d", i+1)
		if v, ok := s.Attr("data-name"); ok && strings.TrimSpace(v) != "" {
			name = strings.TrimSpace(v)
		} else if v, ok := s.Attr("id"); ok && strings.TrimSpace(v) != "" {
			name = strings.TrimSpace(v)
		}

		rows, err := ReadGrid(strings.NewReader(s.Text()))
		if err != nil {
			parseErr = fmt.Errorf("%s: %w", name, err)
			return false
		}
		puzzles = append(puzzles, Puzzle{Name: name, Rows: rows})
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return puzzles, nil
}

// FetcherConfig holds fetcher configuration.
type FetcherConfig struct {
	Selector  string
	UserAgent string
	Timeout   time.Duration
}

// DefaultFetcherConfig returns sensible defaults.
func DefaultFetcherConfig() FetcherConfig {
	return FetcherConfig{
		Selector:  DefaultSelector,
		UserAgent: "vacuum/1.0 (puzzle-fetcher)",
		Timeout:   30 * time.Second,
	}
}

// Fetcher downloads puzzle pages over HTTP.
type Fetcher struct {
	config FetcherConfig
	client *http.Client
}

// NewFetcher creates a fetcher.
func NewFetcher(config FetcherConfig) *Fetcher {
	return &Fetcher{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
	}
}

// Fetch downloads url and extracts its puzzles.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]Puzzle, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.config.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	return ParseHTML(resp.Body, f.config.Selector)
}
