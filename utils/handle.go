package utils

import (
	"strings"

	"github.com/gosimple/unidecode"
)

var handlePrefixes = []string{"https://", "http://", "www.", "tiktok.com/"}

// NormalizeHandle reduces a handle or profile link to a bare lowercase
// account name: "https://www.tiktok.com/@Sarah/" becomes "sarah".
func NormalizeHandle(raw string) string {
	h := strings.ToLower(strings.TrimSpace(unidecode.Unidecode(raw)))
	for _, p := range handlePrefixes {
		h = strings.TrimPrefix(h, p)
	}
	h = strings.TrimSuffix(h, "/")
	return strings.ReplaceAll(h, "@", "")
}

// HandleMatchesURL reports whether a video link appears to belong to handle.
func HandleMatchesURL(handle, videoURL string) bool {
	h := NormalizeHandle(handle)
	if h == "" {
		return false
	}
	return strings.Contains(strings.ToLower(unidecode.Unidecode(videoURL)), h)
}

// EmailLocalPart returns the part of an address before "@".
func EmailLocalPart(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}

// Fold transliterates s to ASCII for accent-insensitive comparison.
func Fold(s string) string {
	return unidecode.Unidecode(s)
}
