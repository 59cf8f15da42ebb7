package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// ComputeAuditDigest derives the tamper-evident content hash stored on every
// transaction audit entry. The digest covers the fields that define the
// transition, so any later alteration of the row is detectable.
func ComputeAuditDigest(transactionID, fromStatus, toStatus, actorRef, reasonID string, occurredAt time.Time) string {
	payload := strings.Join([]string{
		transactionID,
		fromStatus,
		toStatus,
		actorRef,
		reasonID,
		occurredAt.UTC().Format(time.RFC3339Nano),
	}, "|")
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}
