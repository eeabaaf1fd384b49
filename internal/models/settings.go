package models

import "fmt"

// Browser identifies a supported local browser cookie source.
type Browser string

const (
	BrowserChrome  Browser = "chrome"
	BrowserFirefox Browser = "firefox"
	BrowserSafari  Browser = "safari"
)

// ParseBrowser validates a raw browser name from config.
func ParseBrowser(s string) (Browser, error) {
	switch Browser(s) {
	case BrowserChrome, BrowserFirefox, BrowserSafari:
		return Browser(s), nil
	default:
		return "", fmt.Errorf("unsupported browser %q (supported: chrome, firefox, safari)", s)
	}
}

// Settings holds the immutable process-wide configuration, validated
// once at startup and never mutated afterwards.
type Settings struct {
	Browser     Browser
	RefreshMins int
	VideoDir    string
	TrackerFile string
	UseFeed     bool
	Collection  string        // empty means the whole archive
	Notify      *NotifyConfig // nil when the notify block is absent
}

// NotifyConfig holds Twilio SMS credentials and addresses.
type NotifyConfig struct {
	AccountSID string
	AuthToken  string
	From       string
	To         string
}
