package downloader

import "fmt"

// Kind classifies fetch failures.
type Kind string

const (
	KindNoMetadata        Kind = "no_metadata"
	KindNoOutputFile      Kind = "no_output_file"
	KindMalformedResponse Kind = "malformed_response"
	KindBackendError      Kind = "backend_error"
)

type Failure struct {
	Kind Kind
	Err  error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %v", f.Kind, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}
