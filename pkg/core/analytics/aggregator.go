// Package analytics buckets recorded clicks for the dashboard. Everything here
// is a pure function of its inputs and an explicit "now".
package analytics

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/wadjakorntonsri/deeplinker/pkg/core/domain"
)

// View selects which range tokens are accepted
type View int

const (
	LinkView View = iota
	TagView
)

type unit int

const (
	unitMinute unit = iota
	unitFiveMinutes
	unitHour
	unitDay
)

// Range is a parsed range token
type Range struct {
	Token    string
	Duration time.Duration // zero for ALL
	unit     unit
}

var ranges = map[string]Range{
	"5M":  {Token: "5M", Duration: 5 * time.Minute, unit: unitMinute},
	"10M": {Token: "10M", Duration: 10 * time.Minute, unit: unitMinute},
	"30M": {Token: "30M", Duration: 30 * time.Minute, unit: unitMinute},
	"1H":  {Token: "1H", Duration: time.Hour, unit: unitFiveMinutes},
	"24H": {Token: "24H", Duration: 24 * time.Hour, unit: unitHour},
	"3D":  {Token: "3D", Duration: 3 * 24 * time.Hour, unit: unitDay},
	"7D":  {Token: "7D", Duration: 7 * 24 * time.Hour, unit: unitDay},
	"30D": {Token: "30D", Duration: 30 * 24 * time.Hour, unit: unitDay},
	"ALL": {Token: "ALL", unit: unitDay},
}

var viewTokens = map[View][]string{
	LinkView: {"5M", "10M", "30M", "1H", "24H", "7D", "30D", "ALL"},
	TagView:  {"5M", "30M", "1H", "24H", "3D", "7D", "ALL"},
}

// DefaultRange is used when the caller does not pick one
const DefaultRange = "24H"

// ParseRange validates token against the tokens accepted by view
func ParseRange(token string, view View) (Range, error) {
	token = strings.ToUpper(strings.TrimSpace(token))
	if token == "" {
		token = DefaultRange
	}
	for _, t := range viewTokens[view] {
		if t == token {
			return ranges[token], nil
		}
	}
	return Range{}, fmt.Errorf("%w: unsupported range %q", domain.ErrValidation, token)
}

// Cutoff is the earliest retained instant. ALL keeps everything.
func (r Range) Cutoff(now time.Time) time.Time {
	if r.Duration == 0 {
		return time.Unix(0, 0).In(now.Location())
	}
	return now.Add(-r.Duration)
}

// Filter returns the timestamps at or after the cutoff, in input order
func Filter(timestamps []time.Time, r Range, now time.Time) []time.Time {
	cutoff := r.Cutoff(now)
	kept := make([]time.Time, 0, len(timestamps))
	for _, ts := range timestamps {
		if !ts.Before(cutoff) {
			kept = append(kept, ts)
		}
	}
	return kept
}

// Series counts retained clicks into contiguous buckets covering the whole
// window, zero buckets included.
func Series(timestamps []time.Time, r Range, now time.Time) []domain.Bucket {
	kept := Filter(timestamps, r, now)
	sort.Slice(kept, func(i, j int) bool { return kept[i].Before(kept[j]) })

	start := r.Cutoff(now)
	if r.Duration == 0 {
		start = now.AddDate(0, 0, -1)
		if len(kept) > 0 && !kept[0].After(now) {
			start = kept[0]
		}
	}
	start = r.unit.floor(start.In(now.Location()))

	var buckets []domain.Bucket
	i := 0
	// skip anything before the first bucket
	for i < len(kept) && kept[i].Before(start) {
		i++
	}
	for b := start; !b.After(now); b = r.unit.next(b) {
		end := r.unit.next(b)
		n := 0
		for i < len(kept) && kept[i].Before(end) {
			n++
			i++
		}
		buckets = append(buckets, domain.Bucket{Time: b.Format(r.unit.layout()), Start: b, Clicks: n})
	}
	return buckets
}

// PeakHours groups the entire history by hour of day in loc
func PeakHours(timestamps []time.Time, loc *time.Location) []domain.HourCount {
	counts := make([]int, 24)
	for _, ts := range timestamps {
		counts[ts.In(loc).Hour()]++
	}
	hours := make([]domain.HourCount, 24)
	for h := range hours {
		hours[h] = domain.HourCount{Hour: fmt.Sprintf("%d:00", h), Clicks: counts[h]}
	}
	return hours
}

// Countries counts click events by country, most clicks first. Ties keep
// first-seen order. Links with a counter but no events report one Unknown bucket.
func Countries(link domain.Link) []domain.CountryCount {
	if len(link.ClicksInfo) == 0 {
		total := link.Clicks
		if total == 0 {
			total = int64(len(link.ClickTimestamps))
		}
		if total == 0 {
			return []domain.CountryCount{}
		}
		return []domain.CountryCount{{Country: domain.Unknown, Clicks: total}}
	}

	index := map[string]int{}
	var out []domain.CountryCount
	for _, ev := range link.ClicksInfo {
		country := ev.Country
		if country == "" {
			country = domain.Unknown
		}
		i, ok := index[country]
		if !ok {
			i = len(out)
			index[country] = i
			out = append(out, domain.CountryCount{Country: country})
		}
		out[i].Clicks++
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Clicks > out[j].Clicks })
	return out
}

// TagActivity sums in-range clicks per tag across links. All tags are present.
func TagActivity(links []domain.Link, r Range, now time.Time) []domain.TagCount {
	counts := map[domain.Tag]int{}
	for _, l := range links {
		tag := l.Tag
		if _, ok := domain.ParseTag(string(tag)); !ok || tag == "" {
			tag = domain.TagOthers
		}
		counts[tag] += len(Filter(l.ClickTimestamps, r, now))
	}

	out := make([]domain.TagCount, 0, len(domain.Tags))
	for _, t := range domain.Tags {
		out = append(out, domain.TagCount{Tag: t.Label(), RawTag: t, Clicks: counts[t]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Clicks > out[j].Clicks })
	return out
}

// RecentLimit bounds the recent click list
const RecentLimit = 10

// Recent returns the last RecentLimit events, newest first
func Recent(events []domain.ClickEvent) []domain.ClickEvent {
	n := len(events)
	if n > RecentLimit {
		n = RecentLimit
	}
	out := make([]domain.ClickEvent, 0, n)
	for i := len(events) - 1; i >= len(events)-n; i-- {
		out = append(out, events[i])
	}
	return out
}

// Summarize builds the full dashboard view of one link
func Summarize(link domain.Link, r Range, now time.Time) domain.LinkStats {
	countries := Countries(link)
	stats := domain.LinkStats{
		Slug:         link.Slug,
		URL:          link.URL,
		Tag:          link.Tag,
		Range:        r.Token,
		RangeClicks:  len(Filter(link.ClickTimestamps, r, now)),
		TotalClicks:  link.Clicks,
		Series:       Series(link.ClickTimestamps, r, now),
		PeakHours:    PeakHours(link.ClickTimestamps, now.Location()),
		Countries:    countries,
		RecentClicks: Recent(link.ClicksInfo),
	}
	if len(countries) > 0 {
		top := countries[0]
		stats.TopCountry = &top
	}
	return stats
}

func (u unit) floor(t time.Time) time.Time {
	y, m, d := t.Date()
	switch u {
	case unitMinute:
		return time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, t.Location())
	case unitFiveMinutes:
		return time.Date(y, m, d, t.Hour(), t.Minute()-t.Minute()%5, 0, 0, t.Location())
	case unitHour:
		return time.Date(y, m, d, t.Hour(), 0, 0, 0, t.Location())
	}
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func (u unit) next(t time.Time) time.Time {
	switch u {
	case unitMinute:
		return t.Add(time.Minute)
	case unitFiveMinutes:
		return t.Add(5 * time.Minute)
	case unitHour:
		return t.Add(time.Hour)
	}
	return t.AddDate(0, 0, 1)
}

func (u unit) layout() string {
	if u == unitDay {
		return "Jan 02"
	}
	return "15:04"
}
