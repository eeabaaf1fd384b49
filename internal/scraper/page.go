package scraper

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"dfwatch/internal/contracts"
	"dfwatch/internal/domain/consts"
	"dfwatch/internal/logging"
	"dfwatch/internal/models"

	"github.com/PuerkitoBio/goquery"
)

// ResolveVideoFile fetches a video page and picks the best download
// button, preferring HEVC over h.264. A page showing the sign-up
// prompt instead of download buttons means the session went stale.
func (s *Scraper) ResolveVideoFile(ctx context.Context, cred *models.Credential, pageURL string) (models.VideoFile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return models.VideoFile{}, err
	}
	if cred != nil {
		for _, c := range cred.Cookies {
			req.AddCookie(c)
		}
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return models.VideoFile{}, fmt.Errorf("failed to fetch video page %q: %w", pageURL, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logging.E("failed to close response body for %q: %v", pageURL, err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return models.VideoFile{}, fmt.Errorf("video page %q returned status %d", pageURL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return models.VideoFile{}, fmt.Errorf("failed to parse video page %q: %w", pageURL, err)
	}

	var hevcHref, avcHref, plainHref string
	doc.Find(consts.SelDownloadButton).Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		switch strings.TrimSpace(sel.Text()) {
		case consts.DownloadHEVC:
			hevcHref = href
		case consts.DownloadAVC:
			avcHref = href
		case consts.DownloadNow:
			// Single-format pages carry one unlabeled button.
			plainHref = href
		}
	})

	href := hevcHref
	if href == "" {
		href = avcHref
	}
	if href == "" {
		href = plainHref
	}
	if href == "" {
		if doc.Find(consts.SelSignUp).Length() > 0 {
			return models.VideoFile{}, fmt.Errorf("%w: sign-up prompt on video page %q", ErrSessionInvalid, pageURL)
		}
		return models.VideoFile{}, fmt.Errorf("%w on %q", contracts.ErrNoDownloadLink, pageURL)
	}

	fileURL, err := resp.Request.URL.Parse(href)
	if err != nil {
		return models.VideoFile{}, fmt.Errorf("bad download href %q on %q: %w", href, pageURL, err)
	}

	return models.VideoFile{
		URL:   fileURL.String(),
		Title: pageTitle(doc),
	}, nil
}

// pageTitle extracts the video title, stripping the site's "Download "
// prefix.
func pageTitle(doc *goquery.Document) string {
	title := strings.TrimSpace(doc.Find("title").First().Text())
	return strings.TrimPrefix(title, consts.TitlePrefix)
}
