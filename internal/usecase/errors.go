package usecase

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)

// FailureKind classifies why a data source attempt did not produce games.
type FailureKind string

const (
	FailureTimeout FailureKind = "timeout"
	FailureError   FailureKind = "error"
)

// SourceFailure reports a single failed attempt against one source.
// Adapters classify the underlying cause: deadline and cancellation map
// to FailureTimeout, everything else to FailureError.
type SourceFailure struct {
	Source string
	Kind   FailureKind
	Err    error
}

func (f *SourceFailure) Error() string {
	if f.Err == nil {
		return fmt.Sprintf("%s source %s", f.Source, f.Kind)
	}
	return fmt.Sprintf("%s source %s: %v", f.Source, f.Kind, f.Err)
}

func (f *SourceFailure) Unwrap() error { return f.Err }

// BothSourcesUnavailable is returned when neither the primary nor the
// fallback source produced games for a window. When the fallback was
// disabled FallbackCause is nil and FallbackSkipped is true.
type BothSourcesUnavailable struct {
	PrimaryCause    *SourceFailure
	FallbackCause   *SourceFailure
	FallbackSkipped bool
}

func (e *BothSourcesUnavailable) Error() string {
	if e.FallbackSkipped {
		return fmt.Sprintf("both sources unavailable: primary failed (%v), fallback disabled", e.PrimaryCause)
	}
	return fmt.Sprintf("both sources unavailable: primary failed (%v), fallback failed (%v)", e.PrimaryCause, e.FallbackCause)
}

func (e *BothSourcesUnavailable) Unwrap() error { return ErrDependencyUnavailable }
