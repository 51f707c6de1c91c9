package models

import "testing"

func TestValidatePackTransitionAllowed(t *testing.T) {
	allowed := []struct{ from, to PackStatus }{
		{PackStatusReceived, PackStatusActive},
		{PackStatusReceived, PackStatusReturned},
		{PackStatusActive, PackStatusDepleted},
		{PackStatusActive, PackStatusReturned},
		{PackStatusDepleted, PackStatusReturned},
	}
	for _, tc := range allowed {
		if err := ValidatePackTransition(tc.from, tc.to); err != nil {
			t.Fatalf("transition %s -> %s should be allowed: %v", tc.from, tc.to, err)
		}
	}
}

func TestValidatePackTransitionRejected(t *testing.T) {
	rejected := []struct {
		from, to PackStatus
		code     string
	}{
		{PackStatusReturned, PackStatusActive, CodeInvalidStatus},
		{PackStatusReturned, PackStatusDepleted, CodeInvalidStatus},
		{PackStatusReturned, PackStatusReceived, CodeInvalidStatus},
		{PackStatusDepleted, PackStatusActive, CodeInvalidStatus},
		{PackStatusReceived, PackStatusDepleted, CodeInvalidStatus},
		{PackStatusActive, PackStatusReceived, CodeInvalidStatus},
		// Self-loops surface the retry-friendly conflict codes.
		{PackStatusReturned, PackStatusReturned, CodeAlreadyReturned},
		{PackStatusActive, PackStatusActive, CodeAlreadyActive},
	}
	for _, tc := range rejected {
		err := ValidatePackTransition(tc.from, tc.to)
		if err == nil {
			t.Fatalf("transition %s -> %s should be rejected", tc.from, tc.to)
		}
		if !IsCode(err, tc.code) {
			t.Fatalf("transition %s -> %s expected code %s, got %v", tc.from, tc.to, tc.code, err)
		}
	}
}

func TestReturnedIsTerminal(t *testing.T) {
	for _, to := range []PackStatus{PackStatusReceived, PackStatusActive, PackStatusDepleted} {
		if err := ValidatePackTransition(PackStatusReturned, to); err == nil {
			t.Fatalf("RETURNED must be terminal, allowed -> %s", to)
		}
	}
}
