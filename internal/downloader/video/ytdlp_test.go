package video

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"

	"github.com/NikitaDmitryuk/telegram-tiktok-bot/internal/logutils"
	"github.com/NikitaDmitryuk/telegram-tiktok-bot/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logutils.InitLogger("error")
	os.Exit(m.Run())
}

// fakeYtDlp writes an executable shell script standing in for yt-dlp.
func fakeYtDlp(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("skipping fake yt-dlp script test on Windows")
	}
	path := filepath.Join(t.TempDir(), "yt-dlp")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

// downloadScript creates the file named by -o with the .mp4 extension and prints its path.
const downloadScript = `
out=""
prev=""
for arg in "$@"; do
  if [ "$prev" = "-o" ]; then out="$arg"; fi
  prev="$arg"
done
file=$(printf '%s' "$out" | sed 's/%(ext)s/mp4/')
echo "[progress] downloading| 10.0%|1.00MiB/s|00:09"
echo "[download]  55.5% of ~ 3.00MiB at 2.00MiB/s ETA 00:01"
echo "[progress] finished|100.0%|2.00MiB/s|00:00"
printf 'data' > "$file"
echo "$file"
`

func testOptions(dir string) Options {
	return Options{
		Format:             "bestvideo*+bestaudio/best",
		OutputTemplate:     filepath.Join(dir, "clip_20240501_120000.%(ext)s"),
		MergeFormat:        "mp4",
		Retries:            Retries{Request: 10, Fragment: 10, Extractor: 3},
		IgnoreErrors:       true,
		NoCheckCertificate: true,
		Headers:            map[string]string{"User-Agent": "test", "Referer": "https://www.tiktok.com/"},
	}
}

func TestDownloadArgs(t *testing.T) {
	opts := testOptions("/tmp/dl/42")
	opts.CookieFile = "cookies.txt"

	args := strings.Join(opts.downloadArgs("https://vm.tiktok.com/abc/"), " ")

	for _, expected := range []string{
		"-f bestvideo*+bestaudio/best",
		"-o /tmp/dl/42/clip_20240501_120000.%(ext)s",
		"--merge-output-format mp4",
		"--retries 10",
		"--fragment-retries 10",
		"--extractor-retries 3",
		"--ignore-errors",
		"--no-check-certificates",
		"--cookies cookies.txt",
		"--add-header Referer:https://www.tiktok.com/ --add-header User-Agent:test",
		"--print after_move:filepath",
	} {
		assert.Contains(t, args, expected)
	}
	assert.True(t, strings.HasSuffix(args, "-- https://vm.tiktok.com/abc/"))
}

func TestProbeArgsSkipUnsetOptions(t *testing.T) {
	args := (&Options{}).probeArgs("https://vm.tiktok.com/abc/")
	assert.Equal(t, []string{"-J", "--no-playlist", "--no-warnings", "--", "https://vm.tiktok.com/abc/"}, args)
}

func TestParseProgress(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		expected Progress
		ok       bool
	}{
		{"Template line", "[progress] downloading| 45.3%|1.20MiB/s|00:03", Progress{"downloading", 45.3, "1.20MiB/s", "00:03"}, true},
		{"Template unknown values", "[progress] downloading|N/A|Unknown B/s|Unknown", Progress{"downloading", 0, "Unknown B/s", "Unknown"}, true},
		{"Legacy download line", "[download]  12.5% of ~  5.00MiB at  1.00MiB/s ETA 00:04", Progress{"downloading", 12.5, "1.00MiB/s", "00:04"}, true},
		{"Legacy finished line", "[download] 100% of 5.00MiB", Progress{"finished", 100, "", ""}, true},
		{"Destination line", "[download] Destination: /tmp/x.mp4", Progress{}, false},
		{"Broken template", "[progress] downloading|1%", Progress{}, false},
		{"Plain path", "/tmp/x.mp4", Progress{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := ParseProgress(tt.line)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, p)
		})
	}
}

func TestProbe(t *testing.T) {
	tests := []struct {
		name    string
		script  string
		title   any
		wantErr error
	}{
		{"Valid metadata", `echo '{"id":"123","title":"Funny cat","uploader":"u","duration":12.5}'`, "Funny cat", nil},
		{"Missing title", `echo '{"id":"123"}'`, nil, nil},
		{"Numeric title", `echo '{"id":"123","title":42}'`, float64(42), nil},
		{"Null output", `echo 'null'`, nil, ErrNoMetadata},
		{"Empty output", `exit 0`, nil, ErrNoMetadata},
		{"No id", `echo '{"title":"x"}'`, nil, ErrNoMetadata},
		{"Not JSON", `echo '<html>blocked</html>'`, nil, ErrMalformedResponse},
		{"Extractor parse failure", `echo 'ERROR: [TikTok] 123: Unable to extract webpage video data' >&2; exit 1`, nil, ErrMalformedResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := NewYtDlp(fakeYtDlp(t, tt.script+"\n"))

			meta, err := backend.Probe(context.Background(), "https://vm.tiktok.com/abc/", Options{})
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, meta)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "123", meta.ID)
			assert.Equal(t, tt.title, meta.Title)
		})
	}
}

func TestProbeBackendError(t *testing.T) {
	backend := NewYtDlp(fakeYtDlp(t, "echo 'ERROR: HTTP Error 403: Forbidden' >&2\nexit 1\n"))

	_, err := backend.Probe(context.Background(), "https://vm.tiktok.com/abc/", Options{})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMalformedResponse)
	assert.NotErrorIs(t, err, ErrNoMetadata)
	assert.Contains(t, err.Error(), "HTTP Error 403")
}

func TestDownload(t *testing.T) {
	dir := t.TempDir()
	backend := NewYtDlp(fakeYtDlp(t, downloadScript))

	var (
		mu     sync.Mutex
		events []Progress
	)
	opts := testOptions(dir)
	opts.Progress = func(p Progress) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, p)
	}

	path, err := backend.Download(context.Background(), "https://vm.tiktok.com/abc/", opts)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "clip_20240501_120000.mp4"), path)
	assert.True(t, utils.FileExists(path))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, events, 3)
	assert.InDelta(t, 10.0, events[0].Percent, 1e-9)
	assert.InDelta(t, 55.5, events[1].Percent, 1e-9)
	assert.Equal(t, "finished", events[2].Status)
}

func TestDownloadWithoutPrintedPath(t *testing.T) {
	backend := NewYtDlp(fakeYtDlp(t, "echo '[progress] finished|100%|-|-'\n"))

	_, err := backend.Download(context.Background(), "https://vm.tiktok.com/abc/", Options{})
	assert.ErrorIs(t, err, ErrNoOutputFile)
}

func TestDownloadFailure(t *testing.T) {
	backend := NewYtDlp(fakeYtDlp(t, "echo 'ERROR: Requested format is not available' >&2\nexit 1\n"))

	_, err := backend.Download(context.Background(), "https://vm.tiktok.com/abc/", Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Requested format is not available")
	assert.NotErrorIs(t, err, ErrMalformedResponse)
}

func TestDownloadCanceled(t *testing.T) {
	backend := NewYtDlp(fakeYtDlp(t, "sleep 5\n"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := backend.Download(ctx, "https://vm.tiktok.com/abc/", Options{})
	assert.Error(t, err)
}

func TestLookPath(t *testing.T) {
	script := fakeYtDlp(t, "echo 2024.05.01\n")

	path, err := LookPath(script)
	require.NoError(t, err)
	assert.Equal(t, script, path)

	_, err = LookPath(filepath.Join(t.TempDir(), "missing-yt-dlp"))
	assert.ErrorIs(t, err, utils.ErrBackendMissing)
}

func TestVersion(t *testing.T) {
	backend := NewYtDlp(fakeYtDlp(t, "echo 2024.05.01\n"))

	version, err := backend.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2024.05.01", version)
}

func TestRunUpdateDoesNotPanic(t *testing.T) {
	NewYtDlp(fakeYtDlp(t, "exit 0\n")).RunUpdate(context.Background())
	NewYtDlp(fakeYtDlp(t, "exit 1\n")).RunUpdate(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	NewYtDlp(fakeYtDlp(t, "exit 0\n")).RunUpdate(ctx)
}
