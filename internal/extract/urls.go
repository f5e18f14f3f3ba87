package extract

import (
	"net/url"
	"regexp"
	"strings"
)

// URL shapes of the chat application. A conversation only becomes addressable
// (and therefore persistable) once its URL carries a conversation id.
var (
	convPathRe = regexp.MustCompile(`^/(?:u/\d+/)?app/[0-9a-f]{4,}$`)
	gemConvRe  = regexp.MustCompile(`^/(?:u/\d+/)?gem/([0-9a-zA-Z_-]+)/[0-9a-f]{4,}$`)
	appHomeRe  = regexp.MustCompile(`^/(?:u/\d+/)?app/?$`)
	gemHomeRe  = regexp.MustCompile(`^/(?:u/\d+/)?gem/([0-9a-zA-Z_-]+)/?$`)
)

const host = "gemini.google.com"

func pathOf(raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	if u.Host != "" && !strings.EqualFold(u.Host, host) {
		return "", false
	}
	p := u.Path
	if p == "" {
		p = "/"
	}
	return p, true
}

// IsConversationURL reports whether the URL has the addressable-conversation
// shape, either a plain chat or a Gem-scoped one.
func IsConversationURL(raw string) bool {
	p, ok := pathOf(raw)
	if !ok {
		return false
	}
	return convPathRe.MatchString(p) || gemConvRe.MatchString(p)
}

// IsEligibleStartPage reports whether the URL is a page a new conversation
// can be started from: the app home screen or a Gem home screen.
func IsEligibleStartPage(raw string) bool {
	p, ok := pathOf(raw)
	if !ok {
		return false
	}
	return appHomeRe.MatchString(p) || gemHomeRe.MatchString(p)
}

// GemIDFromURL extracts the Gem id from a Gem home or Gem conversation URL.
func GemIDFromURL(raw string) (string, bool) {
	p, ok := pathOf(raw)
	if !ok {
		return "", false
	}
	if m := gemHomeRe.FindStringSubmatch(p); m != nil {
		return m[1], true
	}
	if m := gemConvRe.FindStringSubmatch(p); m != nil {
		return m[1], true
	}
	return "", false
}

// GemURL builds the canonical home URL for a Gem id.
func GemURL(id string) string {
	return "https://" + host + "/gem/" + id
}
