package collector

import (
	"errors"
	"fmt"
)

var (
	// ErrSourceUnavailable marks transport failures: timeouts, refused
	// connections and non-2xx responses.
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrSourceProtocol marks payloads that are not the expected JSON. Icinga
	// Web 2 answers with its HTML login page on bad credentials, so this is
	// usually an authentication problem.
	ErrSourceProtocol = errors.New("source protocol error")
)

// SourceError describes a failed query against one instance
type SourceError struct {
	Source string
	Query  string
	Kind   error
	Err    error
}

func (e *SourceError) Error() string {
	if errors.Is(e.Kind, ErrSourceProtocol) {
		return fmt.Sprintf("error decoding json from %s (%s). Login error? %v", e.Source, e.Query, e.Err)
	}
	return fmt.Sprintf("error requesting %s from %s: %v", e.Query, e.Source, e.Err)
}

// Unwrap exposes both the kind and the underlying cause to errors.Is/As
func (e *SourceError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

func unavailable(source, query string, err error) *SourceError {
	return &SourceError{Source: source, Query: query, Kind: ErrSourceUnavailable, Err: err}
}

func protocolError(source, query string, err error) *SourceError {
	return &SourceError{Source: source, Query: query, Kind: ErrSourceProtocol, Err: err}
}
