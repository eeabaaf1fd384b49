// Package consts holds various global, unchanging values.
package consts

// Site locations.
const (
	SiteScheme = "https://"
	SiteDomain = "www.digitalfoundry.net"
	SiteURL    = SiteScheme + SiteDomain
	ArchiveURL = SiteURL + "/archive"
	FeedURL    = SiteURL + "/feed"
	SignUpPath = "/sign-up"
	BrowsePath = "/browse/"
)

// Page markers the scraper keys off.
const (
	DownloadHEVC = "Download HEVC"
	DownloadAVC  = "Download h.264"
	DownloadNow  = "Download now"
	TitlePrefix  = "Download "
)

// CSS selectors for the archive and video pages.
const (
	SelSummary        = "div.summary"
	SelGridItem       = "div.video-grid-item"
	SelLinkOverlay    = "a.link_overlay"
	SelDownloadButton = "a.button.primary.download"
	SelSignUp         = `a[href="` + SignUpPath + `"]`
)

// File naming.
const (
	VideoExt      = ".mp4"
	PartialSuffix = ".partial"
	TrackerFile   = "grabbed-videos.txt"
	LogFile       = "dfwatch.log"
)

// FilenameBlacklist holds characters stripped from titles when deriving
// a filename.
const FilenameBlacklist = "\\/:*?\"<>|\x00"

// MaxDisplayedVideos caps the per-cycle catalog printout.
const MaxDisplayedVideos = 24
