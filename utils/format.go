package utils

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var numberPrinter = message.NewPrinter(language.AmericanEnglish)

// FormatNumber renders a count compactly: 1.2M, 45.0K, 999. Nil renders as a dash.
func FormatNumber(n *float64) string {
	if n == nil || math.IsNaN(*n) {
		return "—"
	}
	v := *n
	switch {
	case v >= 1_000_000:
		return fmt.Sprintf("%.1fM", v/1_000_000)
	case v >= 1_000:
		return fmt.Sprintf("%.1fK", v/1_000)
	case v == math.Trunc(v):
		return numberPrinter.Sprintf("%d", int64(v))
	default:
		return strconv.FormatFloat(math.Round(v*1000)/1000, 'f', -1, 64)
	}
}

// FormatCount is FormatNumber for integer counters.
func FormatCount(n int64) string {
	v := float64(n)
	return FormatNumber(&v)
}

var dateLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

// FormatDate renders an ISO date as "Oct 1, 2023". Empty input is "TBD";
// unparseable input is returned as given.
func FormatDate(s string) string {
	if s == "" {
		return "TBD"
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Format("Jan 2, 2006")
		}
	}
	return s
}

// FormatTimeAgo renders the age of t relative to now. Anything older than a
// week is shown as a short date.
func FormatTimeAgo(t, now time.Time) string {
	if t.IsZero() {
		return "—"
	}
	seconds := int64(now.Sub(t).Seconds())
	switch {
	case seconds < 60:
		return "Just now"
	case seconds < 3600:
		return fmt.Sprintf("%dm ago", seconds/60)
	case seconds < 86400:
		return fmt.Sprintf("%dh ago", seconds/3600)
	case seconds < 7*86400:
		return fmt.Sprintf("%dd ago", seconds/86400)
	default:
		return t.UTC().Format("Jan 2")
	}
}

// CleanSocialURL normalises a pasted social link. A bare "@handle" becomes a
// TikTok profile URL and a missing scheme gets https. Query, fragment and one
// trailing slash are dropped.
func CleanSocialURL(raw string) string {
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(raw, "@") {
		return "https://www.tiktok.com/" + raw
	}

	candidate := raw
	if !strings.HasPrefix(candidate, "http") {
		candidate = "https://" + candidate
	}
	u, err := url.Parse(candidate)
	if err != nil || u.Host == "" {
		return strings.TrimSpace(raw)
	}
	u.RawQuery = ""
	u.ForceQuery = false
	u.Fragment = ""
	u.RawFragment = ""
	return strings.TrimSuffix(u.String(), "/")
}
