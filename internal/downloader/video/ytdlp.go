package video

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/NikitaDmitryuk/telegram-tiktok-bot/internal/logutils"
	"github.com/NikitaDmitryuk/telegram-tiktok-bot/internal/utils"
)

const (
	DefaultBinary = "yt-dlp"

	progressPrefix   = "[progress]"
	progressTemplate = "%(progress.status)s|%(progress._percent_str)s|%(progress._speed_str)s|%(progress._eta_str)s"
	maxStderrTail    = 2048
)

var (
	ErrNoMetadata        = errors.New("extraction returned no usable metadata")
	ErrNoOutputFile      = errors.New("expected output file was not produced")
	ErrMalformedResponse = errors.New("malformed response from extractor")
)

var (
	legacyProgressRegex = regexp.MustCompile(`^\[download\]\s+([\d.]+)%(?:\s+of\s+~?\s*\S+)?(?:\s+at\s+(\S+))?(?:\s+ETA\s+(\S+))?`)
	malformedRegex      = regexp.MustCompile(`(?i)(JSONDecodeError|Expecting value|Unable to extract|unable to parse|malformed|Unexpected response)`)
)

// Backend fetches media through an external extraction engine.
type Backend interface {
	Probe(ctx context.Context, url string, opts Options) (*Metadata, error)
	Download(ctx context.Context, url string, opts Options) (string, error)
}

// YtDlp drives the yt-dlp binary.
type YtDlp struct {
	binary string
}

func NewYtDlp(binary string) *YtDlp {
	if binary == "" {
		binary = DefaultBinary
	}
	return &YtDlp{binary: binary}
}

// LookPath resolves the yt-dlp binary or returns utils.ErrBackendMissing.
func LookPath(binary string) (string, error) {
	if binary == "" {
		binary = DefaultBinary
	}
	path, err := exec.LookPath(binary)
	if err != nil {
		return "", utils.WrapError(utils.ErrBackendMissing, binary+" not found", map[string]any{
			"binary": binary,
			"error":  err.Error(),
		})
	}
	return path, nil
}

func (y *YtDlp) Version(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, y.binary, "--version").Output()
	if err != nil {
		return "", fmt.Errorf("yt-dlp --version: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

// Probe runs a metadata-only extraction.
func (y *YtDlp) Probe(ctx context.Context, url string, opts Options) (*Metadata, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, y.binary, opts.probeArgs(url)...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, classifyExitError(err, stderr.String())
	}

	return parseMetadata(stdout.Bytes())
}

func parseMetadata(out []byte) (*Metadata, error) {
	out = bytes.TrimSpace(out)
	if len(out) == 0 || bytes.Equal(out, []byte("null")) {
		return nil, ErrNoMetadata
	}

	var meta Metadata
	if err := json.Unmarshal(out, &meta); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	if meta.ID == "" {
		return nil, ErrNoMetadata
	}
	return &meta, nil
}

// Download runs the extraction and returns the final file path reported by yt-dlp.
func (y *YtDlp) Download(ctx context.Context, url string, opts Options) (string, error) {
	cmd := exec.CommandContext(ctx, y.binary, opts.downloadArgs(url)...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return "", fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("failed to start yt-dlp: %w", err)
	}

	var (
		wg       sync.WaitGroup
		path     string
		errTail  string
		progress = opts.Progress
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		path = scanOutput(stdout, progress)
	}()
	go func() {
		defer wg.Done()
		errTail = scanErrors(stderr, progress)
	}()
	wg.Wait()

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", classifyExitError(err, errTail)
	}

	if path == "" {
		return "", ErrNoOutputFile
	}
	return path, nil
}

// scanOutput reports progress lines and returns the last printed file path.
func scanOutput(r io.Reader, progress ProgressFunc) string {
	var path string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if p, ok := ParseProgress(line); ok {
			if progress != nil {
				progress(p)
			}
			continue
		}
		if strings.HasPrefix(line, "[") {
			logutils.Log.WithField("line", line).Debug("yt-dlp output")
			continue
		}
		path = line
	}
	return path
}

// scanErrors keeps the tail of stderr for error reporting. yt-dlp may print progress there in quiet mode.
func scanErrors(r io.Reader, progress ProgressFunc) string {
	var tail strings.Builder
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if p, ok := ParseProgress(strings.TrimSpace(line)); ok {
			if progress != nil {
				progress(p)
			}
			continue
		}
		tail.WriteString(line)
		tail.WriteByte('\n')
	}
	s := tail.String()
	if len(s) > maxStderrTail {
		s = s[len(s)-maxStderrTail:]
	}
	return strings.TrimSpace(s)
}

func classifyExitError(err error, stderr string) error {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return fmt.Errorf("yt-dlp failed: %w", err)
	}
	if malformedRegex.MatchString(stderr) {
		return fmt.Errorf("%w: %s", ErrMalformedResponse, stderr)
	}
	if stderr == "" {
		return fmt.Errorf("yt-dlp exited with code %d: %w", exitErr.ExitCode(), err)
	}
	return fmt.Errorf("yt-dlp exited with code %d: %s: %w", exitErr.ExitCode(), stderr, err)
}

// ParseProgress parses a templated progress line or a plain yt-dlp [download] line.
func ParseProgress(line string) (Progress, bool) {
	if rest, ok := strings.CutPrefix(line, progressPrefix); ok {
		parts := strings.Split(strings.TrimSpace(rest), "|")
		if len(parts) != 4 {
			return Progress{}, false
		}
		p := Progress{
			Status: strings.TrimSpace(parts[0]),
			Speed:  strings.TrimSpace(parts[2]),
			ETA:    strings.TrimSpace(parts[3]),
		}
		p.Percent, _ = parsePercent(parts[1])
		return p, true
	}

	m := legacyProgressRegex.FindStringSubmatch(line)
	if m == nil {
		return Progress{}, false
	}
	percent, err := parsePercent(m[1])
	if err != nil {
		return Progress{}, false
	}
	status := "downloading"
	if percent >= 100 {
		status = "finished"
	}
	return Progress{Status: status, Percent: percent, Speed: m[2], ETA: m[3]}, true
}

func parsePercent(s string) (float64, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "%")
	return strconv.ParseFloat(s, 64)
}
