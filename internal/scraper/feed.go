package scraper

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"dfwatch/internal/logging"
	"dfwatch/internal/models"

	"github.com/araddon/dateparse"
	"github.com/mmcdole/gofeed"
)

// listFromFeed builds the catalog from the site's RSS feed. The feed
// itself is public, so session staleness in feed mode surfaces later,
// when a video page is resolved for download.
func (s *Scraper) listFromFeed(ctx context.Context, cred *models.Credential) ([]models.CatalogEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.feedURL, nil)
	if err != nil {
		return nil, err
	}
	if cred != nil {
		for _, c := range cred.Cookies {
			req.AddCookie(c)
		}
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch RSS feed: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logging.E("failed to close feed response body: %v", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("RSS feed returned status %d", resp.StatusCode)
	}

	feed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse RSS feed: %w", err)
	}

	entries := make([]models.CatalogEntry, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item.Link == "" {
			continue
		}
		entries = append(entries, models.CatalogEntry{
			ID:        canonicalID(item.Link),
			Title:     item.Title,
			PageURL:   item.Link,
			Published: itemPublished(item),
		})
	}

	logging.D(1, "RSS feed listed %d video(s)", len(entries))
	return entries, nil
}

// itemPublished prefers the parser's already-typed date and falls back
// to loose parsing of the raw string. A date nobody can parse is left
// zero rather than failing the fetch.
func itemPublished(item *gofeed.Item) time.Time {
	if item.PublishedParsed != nil {
		return *item.PublishedParsed
	}
	if item.Published == "" {
		return time.Time{}
	}
	t, err := dateparse.ParseAny(item.Published)
	if err != nil {
		logging.D(2, "unparseable pubDate %q: %v", item.Published, err)
		return time.Time{}
	}
	return t
}
