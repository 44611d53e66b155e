package domain

import (
	"strings"
	"time"
)

// Tag classifies where a link is meant to be shared
type Tag string

const (
	TagLinkedIn  Tag = "linkedin"
	TagInstagram Tag = "instagram"
	TagTwitter   Tag = "twitter(x)"
	TagFacebook  Tag = "facebook"
	TagOthers    Tag = "others"
)

// Tags lists every valid tag in display order
var Tags = []Tag{TagLinkedIn, TagInstagram, TagTwitter, TagFacebook, TagOthers}

// ParseTag normalizes a user supplied tag. Empty input yields TagOthers.
func ParseTag(s string) (Tag, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return TagOthers, true
	}
	for _, t := range Tags {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// Label is the capitalized form shown on charts, e.g. "Twitter(x)"
func (t Tag) Label() string {
	if t == "" {
		return ""
	}
	s := string(t)
	return strings.ToUpper(s[:1]) + s[1:]
}

// Link represents a shortened URL together with its click history
type Link struct {
	ID              int64        `json:"id"`
	URL             string       `json:"url"`
	Slug            string       `json:"slug"`
	Tag             Tag          `json:"tag"`
	Clicks          int64        `json:"clicks"`
	ClickTimestamps []time.Time  `json:"clickTimestamps"`
	ClicksInfo      []ClickEvent `json:"clicksInfo"`
	CreatedAt       time.Time    `json:"createdAt"`
}

// MaxSlugLength bounds custom and generated slugs
const MaxSlugLength = 20
