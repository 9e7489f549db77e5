package outlook

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	searchUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	maxSnippets     = 10
)

// SnippetFetcher returns concatenated search-result snippets for a
// query. Implementations should honor the context deadline.
type SnippetFetcher interface {
	FetchSnippets(ctx context.Context, query string) (string, error)
}

// GoogleSearcher scrapes result snippets from Google's web search.
type GoogleSearcher struct {
	Client *http.Client
}

var _ SnippetFetcher = (*GoogleSearcher)(nil)

func NewGoogleSearcher() *GoogleSearcher {
	return &GoogleSearcher{Client: &http.Client{Timeout: 10 * time.Second}}
}

func (s *GoogleSearcher) FetchSnippets(ctx context.Context, query string) (string, error) {
	searchURL := "https://www.google.com/search?q=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, "GET", searchURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", searchUserAgent)

	resp, err := s.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("search returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to parse search results: %w", err)
	}

	var snippets []string
	doc.Find(".g").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		snippets = append(snippets, sel.Text())
		return len(snippets) < maxSnippets
	})

	return strings.Join(snippets, " "), nil
}
