// Package breakout computes the actions that move a visitor out of an
// in-app browser and into the system default browser.
package breakout

import (
	"net/url"
	"regexp"
	"strings"
	"time"
)

// Platform is the closed set of client operating systems the escape logic knows
type Platform int

const (
	Other Platform = iota
	Android
	IOS
)

func (p Platform) String() string {
	switch p {
	case Android:
		return "android"
	case IOS:
		return "ios"
	}
	return "other"
}

var (
	androidPattern = regexp.MustCompile(`(?i)android`)
	iosPattern     = regexp.MustCompile(`(?i)iphone|ipad|ipod`)
)

// DetectPlatform maps a user agent to a Platform. Android wins when both match.
func DetectPlatform(ua string) Platform {
	switch {
	case androidPattern.MatchString(ua):
		return Android
	case iosPattern.MatchString(ua):
		return IOS
	}
	return Other
}

// AndroidIntent builds an intent URL that asks Android to open dest in any
// browsable handler, falling back to dest itself.
func AndroidIntent(dest string) string {
	scheme := "https"
	rest := dest
	if i := strings.Index(dest, "://"); i > 0 {
		scheme = dest[:i]
		rest = dest[i+3:]
	}
	return "intent://" + rest +
		"#Intent;scheme=" + scheme +
		";action=android.intent.action.VIEW" +
		";category=android.intent.category.BROWSABLE" +
		";S.browser_fallback_url=" + url.QueryEscape(dest) +
		";end"
}

// IOSURL prefixes dest with the scheme iOS routes to the default browser
func IOSURL(dest string) string {
	return "x-safari-" + dest
}

// EscapeURL returns the navigation target for a platform
func EscapeURL(p Platform, dest string) string {
	switch p {
	case Android:
		return AndroidIntent(dest)
	case IOS:
		return IOSURL(dest)
	}
	return dest
}

// Client side timings
const (
	FallbackDelay = 2500 * time.Millisecond
	Cooldown      = 2000 * time.Millisecond
	CopyAckDelay  = 2000 * time.Millisecond
)

// Plan carries every escape target so the page can pick one after reading
// navigator.userAgent itself.
type Plan struct {
	Destination string `json:"destination"`
	Android     string `json:"android"`
	IOS         string `json:"ios"`
	Other       string `json:"other"`
	Hint        string `json:"hint"`
	FallbackMS  int64  `json:"fallbackMs"`
	CooldownMS  int64  `json:"cooldownMs"`
	CopyAckMS   int64  `json:"copyAckMs"`
}

// NewPlan precomputes the targets for dest. hint is the server side guess.
func NewPlan(dest string, hint Platform) Plan {
	return Plan{
		Destination: dest,
		Android:     AndroidIntent(dest),
		IOS:         IOSURL(dest),
		Other:       dest,
		Hint:        hint.String(),
		FallbackMS:  FallbackDelay.Milliseconds(),
		CooldownMS:  Cooldown.Milliseconds(),
		CopyAckMS:   CopyAckDelay.Milliseconds(),
	}
}
