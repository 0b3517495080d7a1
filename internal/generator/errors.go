package generator

import (
	"errors"
	"fmt"
)

// ErrDataFetchFailed matches any *DataFetchFailedError.
var ErrDataFetchFailed = errors.New("data fetch failed")

// DataFetchFailedError reports which read failed. The caller may retry.
type DataFetchFailedError struct {
	Source string
	Err    error
}

func (e *DataFetchFailedError) Error() string {
	return fmt.Sprintf("fetching %s: %v", e.Source, e.Err)
}

func (e *DataFetchFailedError) Unwrap() error { return e.Err }

func (e *DataFetchFailedError) Is(target error) bool { return target == ErrDataFetchFailed }

// Retryable reports whether the generation may succeed if attempted again.
func (e *DataFetchFailedError) Retryable() bool { return true }
