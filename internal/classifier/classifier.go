package classifier

import (
	"regexp"
	"strings"
)

type Kind string

const (
	Permalink       Kind = "permalink"
	Shortlink       Kind = "shortlink"
	HandleQualified Kind = "handle_qualified"
	BareSlug        Kind = "bare_slug"
)

// Match is the first supported link found in a message.
type Match struct {
	Kind Kind
	URL  string
	ID   string
}

type pattern struct {
	kind Kind
	re   *regexp.Regexp
}

// Order matters: the first matching pattern wins.
var patterns = []pattern{
	{Permalink, regexp.MustCompile(`(?i)(?:https?://)?(?:www\.|m\.)?tiktok\.com/@[\w.-]+/video/(\d+)[^\s]*`)},
	{Shortlink, regexp.MustCompile(`(?i)(?:https?://)?(?:vm|vt)\.tiktok\.com/([\w-]+)/?[^\s]*`)},
	{HandleQualified, regexp.MustCompile(`(?i)(?:https?://)?(?:www\.|m\.)?tiktok\.com/@[\w.-]+/[a-z]+/(\d+)[^\s]*`)},
	{BareSlug, regexp.MustCompile(`(?i)(?:https?://)?(?:www\.|m\.)?tiktok\.com/t/([\w-]+)/?[^\s]*`)},
}

var schemeRegex = regexp.MustCompile(`(?i)^https?://`)

// Classify looks for a supported TikTok link anywhere in text.
func Classify(text string) (Match, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Match{}, false
	}

	for _, p := range patterns {
		for _, loc := range p.re.FindAllStringSubmatchIndex(text, -1) {
			if !atHostBoundary(text, loc[0]) {
				continue
			}
			return Match{
				Kind: p.kind,
				URL:  normalize(text[loc[0]:loc[1]]),
				ID:   text[loc[2]:loc[3]],
			}, true
		}
	}
	return Match{}, false
}

func IsSupported(text string) bool {
	_, ok := Classify(text)
	return ok
}

// atHostBoundary rejects hosts such as nottiktok.com that only end in a supported host.
// A match starting with a scheme is always accepted.
func atHostBoundary(text string, start int) bool {
	if start == 0 || schemeRegex.MatchString(text[start:]) {
		return true
	}
	return !isHostByte(text[start-1])
}

func isHostByte(b byte) bool {
	switch {
	case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9':
		return true
	}
	return b == '.' || b == '-'
}

func normalize(raw string) string {
	raw = strings.TrimRight(raw, ".,!?)]>\"'»”’")
	if schemeRegex.MatchString(raw) {
		return "https://" + schemeRegex.ReplaceAllString(raw, "")
	}
	return "https://" + raw
}
