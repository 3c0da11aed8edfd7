package downloads

import (
	"context"
	"fmt"
	"time"

	"github.com/NikitaDmitryuk/telegram-tiktok-bot/internal/bot"
	"github.com/NikitaDmitryuk/telegram-tiktok-bot/internal/classifier"
	"github.com/NikitaDmitryuk/telegram-tiktok-bot/internal/database"
	"github.com/NikitaDmitryuk/telegram-tiktok-bot/internal/downloader"
	"github.com/NikitaDmitryuk/telegram-tiktok-bot/internal/lang"
	"github.com/NikitaDmitryuk/telegram-tiktok-bot/internal/logutils"
	"github.com/NikitaDmitryuk/telegram-tiktok-bot/internal/pkg/metrics"
	"github.com/NikitaDmitryuk/telegram-tiktok-bot/internal/utils"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"
)

type State string

const (
	Idle        State = "idle"
	StatusSent  State = "status_sent"
	Fetching    State = "fetching"
	SizeChecked State = "size_checked"
	Uploading   State = "uploading"
	Cleaned     State = "cleaned"
	Failed      State = "failed"
)

// Request is one qualifying message. It is not modified once created.
type Request struct {
	ID         string
	ChatID     int64
	MessageID  int
	URL        string
	Match      classifier.Match
	CustomName string
}

// Outcome describes how a request ended.
type Outcome struct {
	State    State
	FailedAt State
	Err      error
	Reason   string
	Message  string
	Size     int64
	VideoID  string
}

// Fetcher produces a local file for a URL.
type Fetcher interface {
	Fetch(ctx context.Context, req downloader.Request) downloader.Result
}

type Config struct {
	MaxFileSize   int64
	MaxConcurrent int64
}

// Orchestrator runs the download pipeline of a single request:
// status message, fetch, size check, upload, cleanup.
type Orchestrator struct {
	bot     bot.Service
	fetcher Fetcher
	history database.HistoryStore
	metrics *metrics.Metrics
	slots   *semaphore.Weighted
	maxSize int64
	now     func() time.Time
}

func NewOrchestrator(
	botService bot.Service,
	fetcher Fetcher,
	history database.HistoryStore,
	m *metrics.Metrics,
	cfg Config,
) *Orchestrator {
	if history == nil {
		history = database.NoopStore{}
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 1
	}
	return &Orchestrator{
		bot:     botService,
		fetcher: fetcher,
		history: history,
		metrics: m,
		slots:   semaphore.NewWeighted(cfg.MaxConcurrent),
		maxSize: cfg.MaxFileSize,
		now:     time.Now,
	}
}

// run carries the mutable state of one pipeline execution.
type run struct {
	o        *Orchestrator
	req      Request
	log      *logrus.Entry
	statusID int
	path     string
	out      Outcome
}

// Handle runs the pipeline to completion. Every error ends here as exactly one
// user-visible message; nothing is returned to the caller except the Outcome.
func (o *Orchestrator) Handle(ctx context.Context, req Request) (out Outcome) {
	r := &run{
		o:   o,
		req: req,
		log: logutils.Request(req.ID, req.ChatID).WithField("url", req.URL),
		out: Outcome{State: Idle, VideoID: req.Match.ID},
	}
	started := o.now()

	o.recordStart(ctx, req)
	defer func() {
		if p := recover(); p != nil {
			r.log.WithField("panic", p).Error("Download pipeline panicked")
			r.fail(fmt.Errorf("panic: %v", p), lang.GetMessage(lang.UnexpectedError))
		}
		o.metrics.ObservePipeline(o.now().Sub(started))
		o.recordFinish(req, r.out)
		out = r.out
	}()

	r.execute(ctx)
	return r.out
}

func (r *run) execute(ctx context.Context) {
	o := r.o

	statusID, err := o.bot.ReplyText(r.req.ChatID, r.req.MessageID, lang.GetMessage(lang.StatusStarting))
	if err != nil {
		r.log.WithError(err).Error("Failed to send status message")
		if _, replyErr := o.bot.SendMessage(r.req.ChatID, lang.GetMessage(lang.StatusSendFailed)); replyErr != nil {
			r.log.WithError(replyErr).Warn("Failed to report status message failure")
		}
		r.out.FailedAt = Idle
		r.out.State = Failed
		r.out.Err = utils.WrapError(utils.ErrStatusMessage, "initial status", nil)
		r.out.Reason = err.Error()
		r.out.Message = lang.GetMessage(lang.StatusSendFailed)
		o.metrics.RecordRequest(metrics.OutcomeStatusError)
		return
	}
	r.statusID = statusID
	r.out.State = StatusSent

	r.editStatus(lang.GetMessage(lang.StatusDownloading))
	r.out.State = Fetching

	result, err := r.fetch(ctx)
	if err != nil {
		r.fail(err, lang.GetMessage(lang.DownloadNoFile))
		return
	}
	r.path = result.Path
	if result.VideoID != "" {
		r.out.VideoID = result.VideoID
	}
	if !result.OK() || !utils.FileExists(result.Path) {
		r.fail(utils.WrapError(utils.ErrDownloadFailed, failureText(result), nil), lang.GetMessage(lang.DownloadNoFile))
		return
	}

	size, err := utils.FileSize(r.path)
	if err != nil {
		r.fail(utils.WrapError(utils.ErrDownloadFailed, err.Error(), nil), lang.GetMessage(lang.DownloadNoFile))
		return
	}
	r.out.Size = size
	r.out.State = SizeChecked
	o.metrics.ObserveDownloadSize(size)

	if o.maxSize > 0 && size > o.maxSize {
		tooLarge := &utils.SizeLimitError{Size: size, Limit: o.maxSize}
		r.fail(tooLarge, tooLarge.Error())
		return
	}

	r.editStatus(lang.GetMessage(lang.StatusUploading))
	r.out.State = Uploading

	if err := o.bot.ReplyVideo(r.req.ChatID, r.req.MessageID, r.path, lang.GetMessage(lang.VideoCaption)); err != nil {
		uploadErr := &utils.UploadError{Err: err}
		r.fail(uploadErr, uploadErr.Error())
		return
	}

	r.succeed()
}

// fetch waits for a worker slot and runs the fetcher in it.
func (r *run) fetch(ctx context.Context) (downloader.Result, error) {
	o := r.o
	if err := o.slots.Acquire(ctx, 1); err != nil {
		return downloader.Result{}, utils.WrapError(utils.ErrDownloadFailed, "waiting for a download slot", map[string]any{
			"error": err.Error(),
		})
	}
	defer o.slots.Release(1)

	done := o.metrics.DownloadStarted()
	defer done()

	return o.fetcher.Fetch(ctx, downloader.Request{
		ID:         r.req.ID,
		ChatID:     r.req.ChatID,
		URL:        r.req.URL,
		CustomName: r.req.CustomName,
	}), nil
}

func (r *run) succeed() {
	r.removeFile()
	if err := r.o.bot.DeleteMessage(r.req.ChatID, r.statusID); err != nil {
		r.log.WithError(err).Warn("Failed to delete status message")
	}
	r.out.State = Cleaned
	r.o.metrics.RecordRequest(metrics.OutcomeUploaded)
	r.log.WithField("size", r.out.Size).Info("Video delivered")
}

// fail removes the file and reports reason by editing the status message,
// or by a fresh reply when the edit is impossible.
func (r *run) fail(err error, reason string) {
	r.removeFile()

	r.out.FailedAt = r.out.State
	r.out.State = Failed
	r.out.Err = err
	r.out.Reason = reason
	r.out.Message = lang.GetMessage(lang.ErrorPrefix, reason)
	r.o.metrics.RecordRequest(outcomeLabel(err))
	r.log.WithError(err).WithField("failed_at", r.out.FailedAt).Warn("Download request failed")

	if r.statusID != 0 {
		editErr := r.o.bot.EditMessage(r.req.ChatID, r.statusID, r.out.Message)
		if editErr == nil {
			return
		}
		r.log.WithError(editErr).Warn("Failed to edit status message, replying instead")
	}
	if _, replyErr := r.o.bot.ReplyText(r.req.ChatID, r.req.MessageID, r.out.Message); replyErr != nil {
		r.log.WithError(replyErr).Error("Failed to deliver error message")
	}
}

func (r *run) editStatus(text string) {
	if err := r.o.bot.EditMessage(r.req.ChatID, r.statusID, text); err != nil {
		r.log.WithError(err).Warn("Failed to update status message")
	}
}

func (r *run) removeFile() {
	if r.path == "" {
		return
	}
	if err := utils.RemoveFile(r.path); err != nil {
		r.log.WithError(err).WithField("path", r.path).Warn("Failed to remove downloaded file")
		return
	}
	r.path = ""
}

func failureText(result downloader.Result) string {
	if result.Failure != nil {
		return result.Failure.Error()
	}
	return "no file on disk"
}
