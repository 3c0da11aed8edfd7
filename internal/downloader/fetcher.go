package downloader

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/NikitaDmitryuk/telegram-tiktok-bot/internal/downloader/video"
	"github.com/NikitaDmitryuk/telegram-tiktok-bot/internal/logutils"
	"github.com/NikitaDmitryuk/telegram-tiktok-bot/internal/utils"
	"github.com/sirupsen/logrus"
)

const (
	DefaultFormat      = "bestvideo*+bestaudio/best"
	DefaultMergeFormat = "mp4"
	timestampLayout    = "20060102_150405"
	progressBuffer     = 8
)

// Request is what the fetcher needs to download one video.
type Request struct {
	ID         string
	ChatID     int64
	URL        string
	CustomName string
}

// Result holds either the downloaded file path or the failure.
type Result struct {
	Path    string
	VideoID string
	Title   any
	Failure *Failure
}

func (r Result) OK() bool {
	return r.Failure == nil && r.Path != ""
}

type Config struct {
	Dir         string
	CookieFile  string
	Format      string
	MergeFormat string
	Retries     video.Retries
	Headers     map[string]string
}

// DefaultHeaders mimics a desktop browser coming from the TikTok web app.
func DefaultHeaders() map[string]string {
	return map[string]string{
		"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
		"Accept-Language": "en-US,en;q=0.9",
		"Referer":         "https://www.tiktok.com/",
	}
}

// ProgressObserver receives progress events of a request.
type ProgressObserver func(req Request, p video.Progress)

type Option func(*Fetcher)

func WithProgressObserver(o ProgressObserver) Option {
	return func(f *Fetcher) { f.observer = o }
}

func WithClock(now func() time.Time) Option {
	return func(f *Fetcher) { f.now = now }
}

// Fetcher adapts a video.Backend to the bot: it builds the options, runs the backend and
// turns every error into a Failure.
type Fetcher struct {
	backend  video.Backend
	cfg      Config
	observer ProgressObserver
	now      func() time.Time
}

func NewFetcher(backend video.Backend, cfg Config, opts ...Option) *Fetcher {
	if cfg.Format == "" {
		cfg.Format = DefaultFormat
	}
	if cfg.MergeFormat == "" {
		cfg.MergeFormat = DefaultMergeFormat
	}
	if cfg.Headers == nil {
		cfg.Headers = DefaultHeaders()
	}

	f := &Fetcher{
		backend:  backend,
		cfg:      cfg,
		observer: logProgress,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ChatDir is the working directory of a chat.
func (f *Fetcher) ChatDir(chatID int64) string {
	return filepath.Join(f.cfg.Dir, strconv.FormatInt(chatID, 10))
}

// Fetch downloads req.URL. It never panics and never returns a raw backend error.
func (f *Fetcher) Fetch(ctx context.Context, req Request) (result Result) {
	log := logutils.Request(req.ID, req.ChatID).WithField("url", req.URL)

	defer func() {
		if r := recover(); r != nil {
			result = f.fail(log, Result{}, KindBackendError, fmt.Errorf("backend panic: %v", r))
		}
	}()

	dir := f.ChatDir(req.ChatID)
	if err := utils.EnsureDir(dir); err != nil {
		return f.fail(log, Result{}, KindBackendError, err)
	}

	opts := f.options()

	meta, err := f.backend.Probe(ctx, req.URL, opts)
	if err != nil {
		return f.fail(log, Result{}, kindOf(err), err)
	}
	result = Result{VideoID: meta.ID, Title: meta.Title}

	base := f.baseName(req, meta)
	opts.OutputTemplate = filepath.Join(dir, base+".%(ext)s")

	stopProgress := f.startProgress(req, &opts)
	defer stopProgress()
	path, err := f.backend.Download(ctx, req.URL, opts)
	stopProgress()

	if err != nil {
		removePartials(dir, base)
		return f.fail(log, result, kindOf(err), err)
	}
	if !utils.FileExists(path) {
		removePartials(dir, base)
		return f.fail(log, result, KindNoOutputFile, fmt.Errorf("%w: %s", video.ErrNoOutputFile, path))
	}

	result.Path = path
	log.WithField("path", path).Info("Video downloaded")
	return result
}

func (f *Fetcher) options() video.Options {
	opts := video.Options{
		Format:             f.cfg.Format,
		MergeFormat:        f.cfg.MergeFormat,
		Retries:            f.cfg.Retries,
		IgnoreErrors:       true,
		NoCheckCertificate: true,
		Headers:            f.cfg.Headers,
	}
	if utils.FileExists(f.cfg.CookieFile) {
		opts.CookieFile = f.cfg.CookieFile
	}
	return opts
}

func (f *Fetcher) baseName(req Request, meta *video.Metadata) string {
	if req.CustomName != "" {
		return utils.CleanTitle(req.CustomName)
	}
	return utils.SanitizeTitle(meta.Title) + "_" + f.now().Format(timestampLayout)
}

// startProgress forwards backend progress to the observer without ever blocking the backend.
// Events are dropped while the observer is busy.
func (f *Fetcher) startProgress(req Request, opts *video.Options) (stop func()) {
	if f.observer == nil {
		return func() {}
	}

	events := make(chan video.Progress, progressBuffer)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for p := range events {
			f.observer(req, p)
		}
	}()

	opts.Progress = func(p video.Progress) {
		select {
		case events <- p:
		default:
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			close(events)
			<-done
		})
	}
}

func (f *Fetcher) fail(log *logrus.Entry, result Result, kind Kind, err error) Result {
	result.Path = ""
	result.Failure = &Failure{Kind: kind, Err: err}
	log.WithError(err).WithField("failure", kind).Error("Fetch failed")
	return result
}

func kindOf(err error) Kind {
	switch {
	case errors.Is(err, video.ErrNoMetadata):
		return KindNoMetadata
	case errors.Is(err, video.ErrNoOutputFile):
		return KindNoOutputFile
	case errors.Is(err, video.ErrMalformedResponse):
		return KindMalformedResponse
	default:
		return KindBackendError
	}
}

// removePartials deletes leftovers such as .part and .ytdl files of a failed download.
func removePartials(dir, base string) {
	matches, err := filepath.Glob(filepath.Join(dir, base+".*"))
	if err != nil {
		return
	}
	for _, m := range matches {
		if err := utils.RemoveFile(m); err != nil {
			logutils.Log.WithError(err).WithField("file", m).Warn("Failed to remove partial download")
		}
	}
}

func logProgress(req Request, p video.Progress) {
	logutils.Request(req.ID, req.ChatID).WithFields(logrus.Fields{
		"status":  p.Status,
		"percent": p.Percent,
		"speed":   p.Speed,
		"eta":     p.ETA,
	}).Debug("Download progress")
}
