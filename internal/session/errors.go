package session

import (
	"errors"
	"fmt"
)

// ErrorCode classifies session failures.
type ErrorCode string

const (
	ErrCodeFileTypeInvalid      ErrorCode = "FILE_TYPE_INVALID"
	ErrCodeFileTooLarge         ErrorCode = "FILE_TOO_LARGE"
	ErrCodeFileReadFailed       ErrorCode = "FILE_READ_FAILED"
	ErrCodeEmptyTable           ErrorCode = "EMPTY_OR_UNPARSEABLE_TABLE"
	ErrCodeTransformFailed      ErrorCode = "TRANSFORM_FAILED"
	ErrCodeScoringRequestFailed ErrorCode = "SCORING_REQUEST_FAILED"
	ErrCodeNoTable              ErrorCode = "NO_TABLE"
	ErrCodeAnalysisInFlight     ErrorCode = "ANALYSIS_IN_FLIGHT"
)

// ErrStale marks work that finished after a newer file selection replaced
// the session it belonged to.
var ErrStale = errors.New("result belongs to a previous file selection")

var errNoResponse = errors.New("scorer returned no response")

// Error is a classified failure. Message is the text shown to the user.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// IsCode reports whether err is a session Error with the given code.
func IsCode(err error, code ErrorCode) bool {
	var se *Error
	return errors.As(err, &se) && se.Code == code
}

func isFileStage(code ErrorCode) bool {
	switch code {
	case ErrCodeFileTypeInvalid, ErrCodeFileTooLarge, ErrCodeFileReadFailed, ErrCodeEmptyTable:
		return true
	}
	return false
}

func newFileTypeInvalidError(err error) *Error {
	return &Error{Code: ErrCodeFileTypeInvalid, Message: "Please select a CSV file.", Err: err}
}

func newFileTooLargeError(err error) *Error {
	return &Error{Code: ErrCodeFileTooLarge, Message: "The file is too large. Maximum size: 10MB", Err: err}
}

func newFileReadFailedError(err error) *Error {
	return &Error{Code: ErrCodeFileReadFailed, Message: "Error processing the CSV file. Check that the format is correct.", Err: err}
}

func newEmptyTableError(err error) *Error {
	return &Error{Code: ErrCodeEmptyTable, Message: "The CSV file is empty or has no valid data.", Err: err}
}

func newTransformFailedError(err error) *Error {
	return &Error{Code: ErrCodeTransformFailed, Message: "Could not prepare the data for analysis.", Err: err}
}

func newScoringRequestFailedError(err error) *Error {
	return &Error{Code: ErrCodeScoringRequestFailed, Message: "Error during analysis. Check the logs for details.", Err: err}
}

func newNoTableError() *Error {
	return &Error{Code: ErrCodeNoTable, Message: "Select a CSV file before starting an analysis."}
}

func newAnalysisInFlightError() *Error {
	return &Error{Code: ErrCodeAnalysisInFlight, Message: "An analysis is already running for this file."}
}
