// Package useragent classifies visitors from their User-Agent header.
package useragent

import "regexp"

var (
	botPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)bot|googlebot|crawler|spider|robot|crawling`),
		regexp.MustCompile(`(?i)LinkedInBot`),
		regexp.MustCompile(`(?i)facebookexternalhit`),
		regexp.MustCompile(`(?i)Twitterbot`),
	}
	linkedInPattern  = regexp.MustCompile(`(?i)LinkedInApp|LinkedIn`)
	instagramPattern = regexp.MustCompile(`(?i)Instagram`)
	facebookPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bFB[\w_]+/`),
		regexp.MustCompile(`(?i)FBAN|FBAV`),
	}
	twitterPattern = regexp.MustCompile(`(?i)Twitter`)
	webViewPattern = regexp.MustCompile(`(?i)\bwv\b|WebView`)
)

// Classification holds the independent flags derived from one user agent.
// A bot may also match a platform, e.g. LinkedInBot.
type Classification struct {
	IsBot          bool `json:"isBot"`
	IsLinkedIn     bool `json:"isLinkedIn"`
	IsInstagram    bool `json:"isInstagram"`
	IsFacebook     bool `json:"isFacebook"`
	IsTwitter      bool `json:"isTwitter"`
	IsInAppBrowser bool `json:"isInAppBrowser"`
	IsWebView      bool `json:"isWebView"`
}

// Classify is pure: the same string always yields the same flags.
func Classify(ua string) Classification {
	c := Classification{
		IsBot:       matchAny(botPatterns, ua),
		IsLinkedIn:  linkedInPattern.MatchString(ua),
		IsInstagram: instagramPattern.MatchString(ua),
		IsFacebook:  matchAny(facebookPatterns, ua),
		IsTwitter:   twitterPattern.MatchString(ua),
		IsWebView:   webViewPattern.MatchString(ua),
	}
	c.IsInAppBrowser = c.IsLinkedIn || c.IsInstagram || c.IsFacebook || c.IsTwitter
	return c
}

// Platform names the first matching in-app platform, or "" when none match
func (c Classification) Platform() string {
	switch {
	case c.IsLinkedIn:
		return "linkedin"
	case c.IsInstagram:
		return "instagram"
	case c.IsFacebook:
		return "facebook"
	case c.IsTwitter:
		return "twitter"
	}
	return ""
}

// Kind is a short label used in access logs
func (c Classification) Kind() string {
	switch {
	case c.IsBot:
		return "bot"
	case c.IsInAppBrowser:
		return "in-app:" + c.Platform()
	}
	return "browser"
}

func matchAny(patterns []*regexp.Regexp, s string) bool {
	for _, p := range patterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}
