package models

import (
	"errors"
	"fmt"
)

// ErrorKind buckets domain errors for transport mapping (HTTP status, retry
// guidance). The Code carries the specific taxonomy entry.
type ErrorKind string

const (
	ErrorKindValidation         ErrorKind = "VALIDATION"
	ErrorKindUnauthorized       ErrorKind = "UNAUTHORIZED"
	ErrorKindNotFound           ErrorKind = "NOT_FOUND"
	ErrorKindFailedPrecondition ErrorKind = "FAILED_PRECONDITION"
	ErrorKindConflict           ErrorKind = "CONFLICT"
	ErrorKindInternal           ErrorKind = "INTERNAL"
)

// Error taxonomy codes. Business errors are always one of these; raw
// infrastructure errors never reach the caller.
const (
	CodeInvalidSession   = "INVALID_SESSION"
	CodeStoreMismatch    = "STORE_MISMATCH"
	CodeValidationFailed = "VALIDATION_FAILED"

	CodePackNotFound     = "PACK_NOT_FOUND"
	CodeBinNotFound      = "BIN_NOT_FOUND"
	CodeGameNotFound     = "GAME_NOT_FOUND"
	CodeDayNotFound      = "DAY_NOT_FOUND"
	CodeShiftNotFound    = "SHIFT_NOT_FOUND"
	CodeVarianceNotFound = "VARIANCE_NOT_FOUND"
	CodeUserNotFound     = "USER_NOT_FOUND"
	CodeCashierNotFound  = "CASHIER_NOT_FOUND"
	CodeTerminalNotFound = "TERMINAL_NOT_FOUND"
	CodeApproverNotFound = "APPROVER_NOT_FOUND"

	CodeGameInactive  = "GAME_INACTIVE"
	CodeInvalidStatus = "INVALID_STATUS"
	CodeBinMismatch   = "BIN_MISMATCH"
	CodeExpired       = "EXPIRED"

	CodeDuplicatePack   = "DUPLICATE_PACK"
	CodeAlreadyActive   = "ALREADY_ACTIVE"
	CodeAlreadyReturned = "ALREADY_RETURNED"
	CodeAlreadyApproved = "ALREADY_APPROVED"
	CodeCloseInProgress = "CLOSE_IN_PROGRESS"
)

// SyncError is the tagged domain error carried through the call chain instead
// of string-prefixed messages. Meta holds structured details safe to return
// to the device (ids and statuses, never SQL or internals).
type SyncError struct {
	Kind    ErrorKind
	Code    string
	Message string
	Meta    map[string]interface{}
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *SyncError) WithMeta(key string, value interface{}) *SyncError {
	if e.Meta == nil {
		e.Meta = map[string]interface{}{}
	}
	e.Meta[key] = value
	return e
}

func NewSyncError(kind ErrorKind, code string, format string, args ...interface{}) *SyncError {
	return &SyncError{
		Kind:    kind,
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

func ValidationError(format string, args ...interface{}) *SyncError {
	return NewSyncError(ErrorKindValidation, CodeValidationFailed, format, args...)
}

func UnauthorizedError(code string, format string, args ...interface{}) *SyncError {
	return NewSyncError(ErrorKindUnauthorized, code, format, args...)
}

func NotFoundError(code string, format string, args ...interface{}) *SyncError {
	return NewSyncError(ErrorKindNotFound, code, format, args...)
}

func PreconditionError(code string, format string, args ...interface{}) *SyncError {
	return NewSyncError(ErrorKindFailedPrecondition, code, format, args...)
}

func ConflictError(code string, format string, args ...interface{}) *SyncError {
	return NewSyncError(ErrorKindConflict, code, format, args...)
}

// AsSyncError unwraps err into a *SyncError, or nil if it isn't one.
func AsSyncError(err error) *SyncError {
	var se *SyncError
	if errors.As(err, &se) {
		return se
	}
	return nil
}

// IsCode reports whether err is a SyncError tagged with the given code.
func IsCode(err error, code string) bool {
	se := AsSyncError(err)
	return se != nil && se.Code == code
}
