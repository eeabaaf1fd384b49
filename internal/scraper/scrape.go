// Package scraper queries the site for the videos currently available
// to the logged-in account, and resolves video pages into direct file
// URLs.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"dfwatch/internal/domain/consts"
	"dfwatch/internal/logging"
	"dfwatch/internal/models"

	"github.com/gocolly/colly"
)

// ErrSessionInvalid reports that the site answered as for an anonymous
// visitor: the credential is no longer accepted. Distinct from an empty
// catalog, which is a normal result.
var ErrSessionInvalid = errors.New("session is not authenticated")

// Scraper fetches the catalog from the archive page, from a specific
// collection's browse page, or from the RSS feed.
type Scraper struct {
	client  *http.Client
	listURL string
	listSel string
	feedURL string
	siteURL string
	useFeed bool
}

// New returns a Scraper. With useFeed set, the catalog comes from the
// site's RSS feed. A non-empty collection narrows the listing to that
// collection's browse page, which uses the grid layout instead of the
// archive's summary layout.
func New(useFeed bool, collection string) *Scraper {
	listURL := consts.ArchiveURL
	listSel := consts.SelSummary
	if collection != "" {
		listURL = consts.SiteURL + consts.BrowsePath + collection
		listSel = consts.SelGridItem
	}
	return &Scraper{
		client:  &http.Client{Timeout: consts.ScraperTimeout},
		listURL: listURL,
		listSel: listSel,
		feedURL: consts.FeedURL,
		siteURL: consts.SiteURL,
		useFeed: useFeed,
	}
}

// ListVideos returns the current catalog for the account. An
// unauthenticated response yields ErrSessionInvalid; transient network
// failures yield ordinary errors and are retried next cycle.
func (s *Scraper) ListVideos(ctx context.Context, cred *models.Credential) ([]models.CatalogEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.useFeed {
		return s.listFromFeed(ctx, cred)
	}
	return s.listFromPage(cred)
}

// listFromPage scrapes the listing page's video items: archive summary
// blocks, or grid items when a collection is configured.
func (s *Scraper) listFromPage(cred *models.Credential) ([]models.CatalogEntry, error) {
	c := colly.NewCollector(colly.AllowURLRevisit())
	c.SetRequestTimeout(consts.ScraperTimeout)

	if cred != nil {
		if err := c.SetCookies(s.siteURL, cred.Cookies); err != nil {
			return nil, fmt.Errorf("failed to set cookies on collector: %w", err)
		}
	}

	var (
		entries    []models.CatalogEntry
		signUpSeen bool
	)

	c.OnHTML(consts.SelSignUp, func(_ *colly.HTMLElement) {
		signUpSeen = true
	})

	c.OnHTML(s.listSel+" "+consts.SelLinkOverlay, func(e *colly.HTMLElement) {
		href := e.Attr("href")
		if href == "" {
			return
		}
		pageURL := e.Request.AbsoluteURL(href)
		id := canonicalID(pageURL)
		entries = append(entries, models.CatalogEntry{
			ID:      id,
			Title:   titleFromPath(id),
			PageURL: pageURL,
		})
	})

	if err := c.Visit(s.listURL); err != nil {
		return nil, fmt.Errorf("failed to fetch listing page: %w", err)
	}

	if signUpSeen {
		return nil, fmt.Errorf("%w: sign-up prompt found on listing page", ErrSessionInvalid)
	}

	logging.D(1, "Listing page %s returned %d video(s)", s.listURL, len(entries))
	return entries, nil
}

// canonicalID reduces a page URL to its path, the stable identifier
// recorded by the tracker.
func canonicalID(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Path == "" {
		return raw
	}
	return u.Path
}

// titleFromPath derives a display title from a page slug; the real
// title is picked up from the video page at download time.
func titleFromPath(path string) string {
	slug := strings.Trim(path, "/")
	if i := strings.LastIndex(slug, "/"); i >= 0 {
		slug = slug[i+1:]
	}
	return strings.ReplaceAll(slug, "-", " ")
}
