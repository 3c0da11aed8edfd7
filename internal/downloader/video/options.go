package video

import (
	"sort"
	"strconv"
)

// Progress is one structured progress event reported by the backend.
type Progress struct {
	Status  string
	Percent float64
	Speed   string
	ETA     string
}

type ProgressFunc func(Progress)

type Retries struct {
	Request   int
	Fragment  int
	Extractor int
}

// Options configures a single backend invocation.
type Options struct {
	Format             string
	OutputTemplate     string
	MergeFormat        string
	CookieFile         string
	Progress           ProgressFunc
	Retries            Retries
	IgnoreErrors       bool
	NoCheckCertificate bool
	Headers            map[string]string
}

// Metadata is the subset of the extractor info the bot uses.
type Metadata struct {
	ID         string  `json:"id"`
	Title      any     `json:"title"`
	Uploader   string  `json:"uploader"`
	Duration   float64 `json:"duration"`
	Extractor  string  `json:"extractor_key"`
	WebpageURL string  `json:"webpage_url"`
}

// commonArgs are shared by the probe and the download invocations.
func (o *Options) commonArgs() []string {
	var args []string

	if o.Retries.Request > 0 {
		args = append(args, "--retries", strconv.Itoa(o.Retries.Request))
	}
	if o.Retries.Fragment > 0 {
		args = append(args, "--fragment-retries", strconv.Itoa(o.Retries.Fragment))
	}
	if o.Retries.Extractor > 0 {
		args = append(args, "--extractor-retries", strconv.Itoa(o.Retries.Extractor))
	}
	if o.NoCheckCertificate {
		args = append(args, "--no-check-certificates")
	}
	if o.CookieFile != "" {
		args = append(args, "--cookies", o.CookieFile)
	}

	keys := make([]string, 0, len(o.Headers))
	for k := range o.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, "--add-header", k+":"+o.Headers[k])
	}

	return args
}

func (o *Options) probeArgs(url string) []string {
	args := []string{"-J", "--no-playlist", "--no-warnings"}
	args = append(args, o.commonArgs()...)
	return append(args, "--", url)
}

func (o *Options) downloadArgs(url string) []string {
	args := []string{
		"--newline",
		"--no-playlist",
		"--progress",
		"--progress-template", "download:" + progressPrefix + " " + progressTemplate,
		"--print", "after_move:filepath",
	}
	if o.Format != "" {
		args = append(args, "-f", o.Format)
	}
	if o.OutputTemplate != "" {
		args = append(args, "-o", o.OutputTemplate)
	}
	if o.MergeFormat != "" {
		args = append(args, "--merge-output-format", o.MergeFormat)
	}
	if o.IgnoreErrors {
		args = append(args, "--ignore-errors")
	}
	args = append(args, o.commonArgs()...)
	return append(args, "--", url)
}
