package config

import (
	"os"
	"strings"
)

// AuditPublishEnabled enables publishing audit events to Pub/Sub via the
// outbox dispatcher. When disabled, audit rows stay in MySQL only.
//
// Set via env:
// - AUDIT_PUBSUB_ENABLED=true
func AuditPublishEnabled() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("AUDIT_PUBSUB_ENABLED")))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}

// StrictSessionSingleUse invalidates any other ACTIVE session for the same
// credential when a new one is created.
//
// Set via env:
// - STRICT_SESSION_SINGLE_USE=true
func StrictSessionSingleUse() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("STRICT_SESSION_SINGLE_USE")))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}
