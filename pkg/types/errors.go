// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "errors"

// Sentinel errors for the three failure classes of a pipeline run. Stage
// errors wrap one of these so callers can classify them with errors.Is.
var (
	// ErrSourceAccess marks a missing, unreadable or unparseable source file.
	ErrSourceAccess = errors.New("source access error")

	// ErrSchema marks a required column absent from the source table.
	ErrSchema = errors.New("schema error")

	// ErrDestinationAccess marks a failure to create the output directory
	// or write the output file.
	ErrDestinationAccess = errors.New("destination access error")
)

// ErrNotFound is returned by record stores when a requested record does
// not exist.
var ErrNotFound = errors.New("not found")

// ErrorKind names the class of a pipeline failure.
type ErrorKind string

const (
	ErrorKindNone        ErrorKind = ""
	ErrorKindSource      ErrorKind = "source"
	ErrorKindSchema      ErrorKind = "schema"
	ErrorKindDestination ErrorKind = "destination"
	ErrorKindUnknown     ErrorKind = "unknown"
)

// KindOf classifies err by the sentinel it wraps.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ErrorKindNone
	case errors.Is(err, ErrSourceAccess):
		return ErrorKindSource
	case errors.Is(err, ErrSchema):
		return ErrorKindSchema
	case errors.Is(err, ErrDestinationAccess):
		return ErrorKindDestination
	}
	return ErrorKindUnknown
}
