package models

import (
	"errors"
	"fmt"
	"testing"
)

func TestSyncErrorConstructors(t *testing.T) {
	cases := []struct {
		err  *SyncError
		kind ErrorKind
		code string
	}{
		{ValidationError("bad %s", "input"), ErrorKindValidation, CodeValidationFailed},
		{UnauthorizedError(CodeInvalidSession, "nope"), ErrorKindUnauthorized, CodeInvalidSession},
		{NotFoundError(CodePackNotFound, "pack %s", "x"), ErrorKindNotFound, CodePackNotFound},
		{PreconditionError(CodeInvalidStatus, "status"), ErrorKindFailedPrecondition, CodeInvalidStatus},
		{ConflictError(CodeAlreadyActive, "active"), ErrorKindConflict, CodeAlreadyActive},
		{ConflictError(CodeCloseInProgress, "locked"), ErrorKindConflict, CodeCloseInProgress},
	}
	for _, tc := range cases {
		if tc.err.Kind != tc.kind {
			t.Fatalf("expected kind %s, got %s", tc.kind, tc.err.Kind)
		}
		if tc.err.Code != tc.code {
			t.Fatalf("expected code %s, got %s", tc.code, tc.err.Code)
		}
	}
	if got := ValidationError("bad %s", "input").Message; got != "bad input" {
		t.Fatalf("message formatting broken: %q", got)
	}
}

func TestAsSyncErrorUnwrapsWrappedErrors(t *testing.T) {
	base := NotFoundError(CodeBinNotFound, "bin missing")
	wrapped := fmt.Errorf("loading bin: %w", base)

	se := AsSyncError(wrapped)
	if se == nil {
		t.Fatalf("AsSyncError should unwrap fmt.Errorf chains")
	}
	if se.Code != CodeBinNotFound {
		t.Fatalf("expected BIN_NOT_FOUND, got %s", se.Code)
	}

	if AsSyncError(errors.New("plain")) != nil {
		t.Fatalf("plain errors must not convert")
	}
	if AsSyncError(nil) != nil {
		t.Fatalf("nil error must not convert")
	}
}

func TestIsCode(t *testing.T) {
	err := ConflictError(CodeAlreadyReturned, "done")
	if !IsCode(err, CodeAlreadyReturned) {
		t.Fatalf("IsCode should match the tagged code")
	}
	if IsCode(err, CodeAlreadyActive) {
		t.Fatalf("IsCode matched the wrong code")
	}
	if IsCode(errors.New("plain"), CodeAlreadyReturned) {
		t.Fatalf("IsCode matched a non-sync error")
	}
}

func TestWithMetaChains(t *testing.T) {
	err := PreconditionError(CodeBinMismatch, "wrong bin").
		WithMeta("expected_bin", "b1").
		WithMeta("actual_bin", "b2")
	if err.Meta["expected_bin"] != "b1" || err.Meta["actual_bin"] != "b2" {
		t.Fatalf("meta not accumulated: %#v", err.Meta)
	}
}
