package syncapi

import (
	"net/http"
	"testing"

	"github.com/mmdatafocus/lottery_backend/models"
)

func TestStatusForKind(t *testing.T) {
	cases := []struct {
		kind     models.ErrorKind
		expected int
	}{
		{models.ErrorKindValidation, http.StatusBadRequest},
		{models.ErrorKindFailedPrecondition, http.StatusBadRequest},
		{models.ErrorKindUnauthorized, http.StatusUnauthorized},
		{models.ErrorKindNotFound, http.StatusNotFound},
		{models.ErrorKindConflict, http.StatusConflict},
		{models.ErrorKindInternal, http.StatusInternalServerError},
		{models.ErrorKind("SOMETHING_ELSE"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := StatusForKind(tc.kind); got != tc.expected {
			t.Fatalf("StatusForKind(%s) expected %d, got %d", tc.kind, tc.expected, got)
		}
	}
}

func TestErrorBodyForDemotesPreconditionCode(t *testing.T) {
	se := models.PreconditionError(models.CodeInvalidStatus, "pack is RETURNED").
		WithMeta("from", "RETURNED")

	body := ErrorBodyFor(se)
	if body.Code != "FAILED_PRECONDITION" {
		t.Fatalf("precondition code should be FAILED_PRECONDITION, got %q", body.Code)
	}
	if body.Reason != models.CodeInvalidStatus {
		t.Fatalf("taxonomy code should move to reason, got %q", body.Reason)
	}
	if body.Message != "pack is RETURNED" {
		t.Fatalf("message lost: %q", body.Message)
	}
	if body.Details["from"] != "RETURNED" {
		t.Fatalf("meta lost: %#v", body.Details)
	}
}

func TestErrorBodyForKeepsOtherCodes(t *testing.T) {
	se := models.NotFoundError(models.CodePackNotFound, "no such pack")
	body := ErrorBodyFor(se)
	if body.Code != models.CodePackNotFound {
		t.Fatalf("expected PACK_NOT_FOUND, got %q", body.Code)
	}
	if body.Reason != "" {
		t.Fatalf("reason should be empty for non-precondition errors, got %q", body.Reason)
	}

	conflict := models.ConflictError(models.CodeAlreadyApproved, "variance already approved")
	body = ErrorBodyFor(conflict)
	if body.Code != models.CodeAlreadyApproved {
		t.Fatalf("expected ALREADY_APPROVED, got %q", body.Code)
	}
}
