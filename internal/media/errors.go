package media

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a referenced object does not exist.
var ErrNotFound = errors.New("object not found")

// ValidationError rejects an upload before any side effect is performed.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// IsValidation returns true when the error is a validation rejection.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// StorageError wraps an object-store failure. The caller may need to
// reconcile partial state via the Deleter.
type StorageError struct {
	Key string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("storage: %s: %v", e.Key, e.Err) }
func (e *StorageError) Unwrap() error { return e.Err }

// Stage identifies where a transcode job failed.
type Stage string

const (
	StageValidate  Stage = "validate"
	StageTranscode Stage = "transcode"
	StageUpload    Stage = "upload"
)

// TranscodeError reports a failed transcode job together with the stage
// that produced the failure. Temp files are already cleaned up by the time
// the caller sees one.
type TranscodeError struct {
	Stage Stage
	Err   error
}

func (e *TranscodeError) Error() string { return fmt.Sprintf("transcode %s: %v", e.Stage, e.Err) }
func (e *TranscodeError) Unwrap() error { return e.Err }

// NetworkError reports a failed outbound fetch. Nothing was written to
// storage when one is returned.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string { return fmt.Sprintf("fetch %s: %v", e.URL, e.Err) }
func (e *NetworkError) Unwrap() error { return e.Err }
