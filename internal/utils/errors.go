package utils

import (
	"errors"
	"fmt"
)

var (
	ErrDownloadFailed     = errors.New("download failed")
	ErrFileTooLarge       = errors.New("file too large")
	ErrUploadFailed       = errors.New("upload failed")
	ErrStatusMessage      = errors.New("status message unavailable")
	ErrConfigurationError = errors.New("configuration error")
	ErrBackendMissing     = errors.New("fetch backend not installed")
)

type WrappedError struct {
	Err     error
	Message string
	Context map[string]any
}

func (w *WrappedError) Error() string {
	if w.Message != "" {
		return w.Message + ": " + w.Err.Error()
	}
	return w.Err.Error()
}

func (w *WrappedError) Unwrap() error {
	return w.Err
}

func WrapError(err error, message string, ctx map[string]any) error {
	return &WrappedError{
		Err:     err,
		Message: message,
		Context: ctx,
	}
}

// SizeLimitError reports a downloaded file that exceeds the upload limit.
type SizeLimitError struct {
	Size  int64 // measured size in bytes
	Limit int64 // limit in bytes
}

func (e *SizeLimitError) Error() string {
	return fmt.Sprintf("File too large (%.2fMB > %dMB)", BytesToMB(e.Size), e.Limit/MiB)
}

func (*SizeLimitError) Unwrap() error {
	return ErrFileTooLarge
}

// UploadError wraps a transport failure while sending the video.
type UploadError struct {
	Err error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("Upload failed: %v", e.Err)
}

func (e *UploadError) Is(target error) bool {
	return target == ErrUploadFailed
}

func (e *UploadError) Unwrap() error {
	return e.Err
}
