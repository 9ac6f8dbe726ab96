// Package scrape fetches a web page, extracts its readable article and harvests its links.
package scrape

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/rs/zerolog/log"
	"github.com/snappy-loop/veritas/internal/models"
)

const (
	maxPageBytes = 5 << 20
	maxLinks     = 200
)

var (
	// ErrInvalidURL is returned for anything other than an absolute http(s) URL.
	ErrInvalidURL = errors.New("invalid url")
	// ErrDisallowed is returned when robots.txt forbids fetching the page.
	ErrDisallowed = errors.New("fetching disallowed by robots.txt")
)

// Scraper fetches pages politely (robots.txt first) and extracts article content.
type Scraper struct {
	httpClient *http.Client
	robots     *RobotsChecker
	userAgent  string
}

// New creates a Scraper.
func New(userAgent string, timeout time.Duration) *Scraper {
	client := &http.Client{Timeout: timeout}
	return &Scraper{
		httpClient: client,
		robots:     NewRobotsChecker(client, userAgent),
		userAgent:  userAgent,
	}
}

// Scrape fetches rawURL and returns its article text and links.
func (s *Scraper) Scrape(ctx context.Context, rawURL string) (*models.ScrapeResponse, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, ErrInvalidURL
	}

	if !s.robots.Allowed(ctx, u) {
		log.Info().Str("url", u.String()).Msg("Scrape disallowed by robots.txt")
		return nil, ErrDisallowed
	}

	body, err := s.fetch(ctx, u)
	if err != nil {
		return nil, err
	}

	article, err := readability.FromReader(bytes.NewReader(body), u)
	if err != nil {
		return nil, fmt.Errorf("extract article: %w", err)
	}
	links, err := harvestLinks(bytes.NewReader(body), u)
	if err != nil {
		return nil, fmt.Errorf("parse links: %w", err)
	}

	text := strings.TrimSpace(article.TextContent)
	log.Info().
		Str("url", u.String()).
		Int("text_len", utf8.RuneCountInString(text)).
		Int("links", len(links)).
		Msg("Page scraped")

	return &models.ScrapeResponse{
		Success:  true,
		URL:      u.String(),
		Title:    article.Title,
		Byline:   article.Byline,
		Excerpt:  article.Excerpt,
		SiteName: article.SiteName,
		Text:     text,
		Length:   utf8.RuneCountInString(text),
		Links:    links,
	}, nil
}

func (s *Scraper) fetch(ctx context.Context, u *url.URL) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch page: status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("read page: %w", err)
	}
	return body, nil
}

// harvestLinks returns absolute http(s) links in document order, deduplicated by href.
func harvestLinks(r io.Reader, base *url.URL) ([]models.Link, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	links := []models.Link{}
	seen := make(map[string]bool)
	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return true
		}
		abs := base.ResolveReference(ref)
		if abs.Scheme != "http" && abs.Scheme != "https" {
			return true
		}
		abs.Fragment = ""
		key := abs.String()
		if seen[key] {
			return true
		}
		seen[key] = true
		links = append(links, models.Link{
			Text: strings.Join(strings.Fields(sel.Text()), " "),
			Href: key,
		})
		return len(links) < maxLinks
	})
	return links, nil
}
