package utils

import (
	"crypto/md5"
	"encoding/hex"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const (
	// FallbackTitle replaces titles that are missing, not strings, or empty after cleaning.
	FallbackTitle  = "tiktok_video"
	MaxTitleLength = 50
	hashLength     = 8
)

var (
	hashtagRegex    = regexp.MustCompile(`#\S+`)
	mentionRegex    = regexp.MustCompile(`@\S+`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
)

// SanitizeTitle turns an arbitrary title value into a filesystem-safe base name of the form
// <clean-title>_<hash>. It never fails.
func SanitizeTitle(title any) string {
	return SanitizeTitleAt(title, time.Now())
}

// SanitizeTitleAt is SanitizeTitle with an explicit clock for the last-resort fallback.
func SanitizeTitleAt(title any, now time.Time) (name string) {
	defer func() {
		if r := recover(); r != nil {
			name = "video_" + shortHash(strconv.FormatInt(now.UnixNano(), 10))
		}
	}()

	original, ok := title.(string)
	if !ok {
		original = FallbackTitle
	}

	return CleanTitle(original) + "_" + shortHash(original)
}

// CleanTitle strips hashtags, mentions and unsafe characters from s, collapses whitespace
// into underscores and truncates the result to MaxTitleLength runes.
func CleanTitle(s string) string {
	s = norm.NFKC.String(s)
	s = hashtagRegex.ReplaceAllString(s, "")
	s = mentionRegex.ReplaceAllString(s, "")

	s = strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '_', r == '-':
			return r
		case unicode.IsSpace(r):
			return ' '
		default:
			return -1
		}
	}, s)

	s = strings.TrimSpace(whitespaceRegex.ReplaceAllString(s, " "))
	s = strings.ReplaceAll(s, " ", "_")

	if runes := []rune(s); len(runes) > MaxTitleLength {
		s = strings.TrimRight(string(runes[:MaxTitleLength]), "_-")
	}

	if s == "" {
		return FallbackTitle
	}
	return s
}

func shortHash(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])[:hashLength]
}
