package domain

import (
	"errors"
	"fmt"
)

// FailureKind is the tag used in logs and stats for a dropped item or term.
type FailureKind string

const (
	FailureDecode       FailureKind = "decode-failure"
	FailureRejected     FailureKind = "filter-rejection"
	FailureFetch        FailureKind = "fetch-failure"
	FailureParse        FailureKind = "parse-failure"
	FailureShortContent FailureKind = "short-content"
	FailureTransport    FailureKind = "transport-failure"
)

var (
	ErrDecode       = errors.New("decode failed")
	ErrRejected     = errors.New("rejected by filter")
	ErrFetch        = errors.New("fetch failed")
	ErrParse        = errors.New("parse failed")
	ErrShortContent = errors.New("content too short")
	ErrTransport    = errors.New("feed transport failed")
)

var sentinels = map[FailureKind]error{
	FailureDecode:       ErrDecode,
	FailureRejected:     ErrRejected,
	FailureFetch:        ErrFetch,
	FailureParse:        ErrParse,
	FailureShortContent: ErrShortContent,
	FailureTransport:    ErrTransport,
}

// StageError records a local failure of one pipeline stage.
type StageError struct {
	Kind  FailureKind
	Stage string
	Err   error
}

// NewStageError builds a StageError of the given kind.
func NewStageError(kind FailureKind, stage string, err error) *StageError {
	return &StageError{Kind: kind, Stage: stage, Err: err}
}

func (e *StageError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Stage, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Stage, e.Kind, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Is matches the sentinel error of the failure kind.
func (e *StageError) Is(target error) bool {
	return sentinels[e.Kind] == target
}

// DecodeFailure is returned when an obfuscated link cannot be decoded.
type DecodeFailure struct {
	Link    string
	Message string
}

func (e *DecodeFailure) Error() string {
	return fmt.Sprintf("decode %s: %s", e.Link, e.Message)
}

func (e *DecodeFailure) Is(target error) bool { return target == ErrDecode }

// KindOf reports the failure kind carried by err, if any.
func KindOf(err error) (FailureKind, bool) {
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		return stageErr.Kind, true
	}
	var decodeErr *DecodeFailure
	if errors.As(err, &decodeErr) {
		return FailureDecode, true
	}
	return "", false
}
