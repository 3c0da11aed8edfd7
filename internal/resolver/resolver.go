package resolver

import (
	"context"
	"fmt"
	"time"

	"github.com/NikitaDmitryuk/telegram-tiktok-bot/internal/classifier"
	"github.com/NikitaDmitryuk/telegram-tiktok-bot/internal/logutils"
	"github.com/go-resty/resty/v2"
)

const (
	DefaultTimeout = 10 * time.Second
	maxRedirects   = 10
)

// Resolver expands shortlinks into full permalinks.
type Resolver interface {
	Resolve(ctx context.Context, m classifier.Match) (classifier.Match, error)
}

// ShortlinkResolver follows the redirects of vm./vt. and /t/ links.
type ShortlinkResolver struct {
	Client *resty.Client
}

func NewShortlinkResolver(headers map[string]string) *ShortlinkResolver {
	client := resty.New().
		SetTimeout(DefaultTimeout).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(maxRedirects)).
		SetHeaders(headers)
	return &ShortlinkResolver{Client: client}
}

// Resolve returns the classification of the final URL. Links that are not shortlinks
// are returned unchanged.
func (r *ShortlinkResolver) Resolve(ctx context.Context, m classifier.Match) (classifier.Match, error) {
	if m.Kind != classifier.Shortlink && m.Kind != classifier.BareSlug {
		return m, nil
	}

	resp, err := r.Client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(m.URL)
	if err != nil {
		return m, fmt.Errorf("failed to resolve %s: %w", m.URL, err)
	}
	raw := resp.RawResponse
	defer raw.Body.Close()

	if resp.IsError() {
		return m, fmt.Errorf("resolve %s: unexpected status %s", m.URL, resp.Status())
	}

	final := raw.Request.URL.String()
	resolved, ok := classifier.Classify(final)
	if !ok || resolved.Kind == classifier.Shortlink || resolved.Kind == classifier.BareSlug {
		return m, fmt.Errorf("resolve %s: final URL %s is not a video permalink", m.URL, final)
	}

	logutils.Log.WithFields(map[string]any{
		"url":      m.URL,
		"resolved": resolved.URL,
		"video_id": resolved.ID,
	}).Debug("Shortlink resolved")
	return resolved, nil
}

// NoopResolver returns matches unchanged.
type NoopResolver struct{}

func (NoopResolver) Resolve(_ context.Context, m classifier.Match) (classifier.Match, error) {
	return m, nil
}
