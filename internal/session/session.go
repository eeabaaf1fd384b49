// Package session extracts site login cookies from a local browser's
// cookie store. It never talks to the network and never persists a
// credential: a bundle is lifted fresh on every acquire.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"dfwatch/internal/domain/consts"
	"dfwatch/internal/logging"
	"dfwatch/internal/models"

	"golang.org/x/net/publicsuffix"

	"github.com/browserutils/kooky"
	// Register cookie-store finders for the supported browsers. Adding
	// support for a new browser means adding its import here and its
	// name to models.ParseBrowser.
	_ "github.com/browserutils/kooky/browser/chrome"
	_ "github.com/browserutils/kooky/browser/firefox"
	_ "github.com/browserutils/kooky/browser/safari"
)

// ErrSessionUnavailable reports that no usable login cookies exist for
// the requested browser, either because the user never logged in or
// because every matching cookie has expired.
var ErrSessionUnavailable = errors.New("no valid login session found")

// Provider reads browser cookie stores.
type Provider struct {
	domain string
}

// NewProvider returns a Provider scoped to the site domain.
func NewProvider() *Provider {
	return &Provider{domain: baseDomain(consts.SiteDomain)}
}

// baseDomain reduces a host to its registrable domain so cookies set on
// the bare domain match alongside the www host.
func baseDomain(host string) string {
	base, err := publicsuffix.EffectiveTLDPlusOne(strings.ToLower(host))
	if err != nil {
		return host
	}
	return base
}

// Acquire lifts the site's cookies from the named browser. A locked or
// missing cookie store is not fatal: the error wraps
// ErrSessionUnavailable and the caller retries on its next cycle.
func (p *Provider) Acquire(_ context.Context, browser models.Browser) (*models.Credential, error) {
	stores := kooky.FindAllCookieStores()
	defer func() {
		for _, st := range stores {
			if err := st.Close(); err != nil {
				logging.D(2, "failed to close cookie store %q: %v", st.FilePath(), err)
			}
		}
	}()

	var (
		cookies []*kooky.Cookie
		found   bool
	)
	for _, st := range stores {
		if !strings.EqualFold(st.Browser(), string(browser)) {
			continue
		}
		found = true

		cs, err := st.ReadCookies(kooky.Valid, kooky.DomainHasSuffix(p.domain))
		if err != nil {
			// Browser still open, store locked, etc. Try the next
			// profile; a full miss is reported below.
			logging.D(1, "failed reading cookies from %q: %v", st.FilePath(), err)
			continue
		}
		cookies = append(cookies, cs...)
	}

	if !found {
		return nil, fmt.Errorf("%w: no %s cookie store found", ErrSessionUnavailable, browser)
	}
	if len(cookies) == 0 {
		return nil, fmt.Errorf("%w: no unexpired %s cookies for %s, please log in to the site in %s",
			ErrSessionUnavailable, browser, p.domain, browser)
	}

	logging.I("Found %d cookie(s) for %s in %s", len(cookies), p.domain, browser)
	return &models.Credential{
		Cookies:    convertToHTTPCookies(cookies),
		AcquiredAt: time.Now(),
	}, nil
}

// convertToHTTPCookies converts kooky cookies to http.Cookie format.
func convertToHTTPCookies(kookyCookies []*kooky.Cookie) []*http.Cookie {
	httpCookies := make([]*http.Cookie, len(kookyCookies))
	for i, c := range kookyCookies {
		httpCookies[i] = &http.Cookie{
			Name:    c.Name,
			Value:   c.Value,
			Path:    c.Path,
			Domain:  c.Domain,
			Expires: c.Expires,
			Secure:  c.Secure,
		}
	}
	return httpCookies
}
