package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrPipelineNotFound signals that no stored definition matches the
	// requested name.
	ErrPipelineNotFound = errors.New("pipeline not found")
	// ErrDataQuery signals a MongoDB lookup or aggregation failure.
	ErrDataQuery = errors.New("data query failed")
	// ErrSummarization signals a Gemini API failure.
	ErrSummarization = errors.New("summarization failed")
)

// NotFoundError wraps ErrPipelineNotFound with the requested name so the
// transport layer can echo it back to the client.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no pipeline named %q", e.Name)
}

func (e *NotFoundError) Unwrap() error { return ErrPipelineNotFound }

// DataQueryError wraps ErrDataQuery with the underlying store error. An
// empty-but-successful aggregation is not a DataQueryError.
type DataQueryError struct {
	Err error
}

func (e *DataQueryError) Error() string {
	return ErrDataQuery.Error() + ": " + e.Err.Error()
}

func (e *DataQueryError) Unwrap() error { return ErrDataQuery }

// SummarizationError wraps ErrSummarization with the provider failure.
type SummarizationError struct {
	Err error
}

func (e *SummarizationError) Error() string {
	return ErrSummarization.Error() + ": " + e.Err.Error()
}

func (e *SummarizationError) Unwrap() error { return ErrSummarization }
