package filemanager

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/NikitaDmitryuk/telegram-tiktok-bot/internal/logutils"
	"github.com/NikitaDmitryuk/telegram-tiktok-bot/internal/utils"
)

// DefaultMaxAge is how old a leftover download must be before Sweep removes it.
const DefaultMaxAge = time.Hour

// Sweep removes regular files under dir that were last modified more than maxAge ago,
// and chat directories left empty afterwards. A missing dir is not an error.
func Sweep(dir string, maxAge time.Duration) (int, error) {
	return sweepAt(dir, maxAge, time.Now())
}

func sweepAt(dir string, maxAge time.Duration, now time.Time) (int, error) {
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}

	removed := 0
	var dirs []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logutils.Log.WithError(err).WithField("path", path).Warn("Failed to read path during cleanup")
			return nil
		}
		if d.IsDir() {
			if path != dir {
				dirs = append(dirs, path)
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		if now.Sub(info.ModTime()) <= maxAge {
			return nil
		}
		if err := os.Remove(path); err != nil {
			logutils.Log.WithError(err).WithField("path", path).Warn("Failed to delete stale file")
			return nil
		}
		logutils.Log.WithField("path", path).Debug("Stale file deleted")
		removed++
		return nil
	})
	if err != nil {
		return removed, err
	}

	// Deepest first so that nested empty directories go away too.
	for i := len(dirs) - 1; i >= 0; i-- {
		if utils.IsEmptyDirectory(dirs[i]) {
			if err := os.Remove(dirs[i]); err != nil {
				logutils.Log.WithError(err).WithField("directory", dirs[i]).Debug("Failed to delete empty directory")
			}
		}
	}
	return removed, nil
}
