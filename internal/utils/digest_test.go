package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeAuditDigest(t *testing.T) {
	occurredAt := time.Date(2026, 8, 28, 12, 0, 0, 123456789, time.UTC)

	first := ComputeAuditDigest("txn-1", "PENDING", "POSTED", "user:teller-1", "reason-1", occurredAt)
	second := ComputeAuditDigest("txn-1", "PENDING", "POSTED", "user:teller-1", "reason-1", occurredAt)

	assert.Equal(t, first, second, "digest must be deterministic")
	assert.Len(t, first, 64)

	changed := ComputeAuditDigest("txn-1", "PENDING", "FAILED", "user:teller-1", "reason-1", occurredAt)
	assert.NotEqual(t, first, changed, "any field change must change the digest")

	laterTime := ComputeAuditDigest("txn-1", "PENDING", "POSTED", "user:teller-1", "reason-1", occurredAt.Add(time.Nanosecond))
	assert.NotEqual(t, first, laterTime)
}

func TestComputeAuditDigestNormalizesToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	utcTime := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	assert.Equal(t,
		ComputeAuditDigest("txn-1", "", "PENDING", "system", "", utcTime),
		ComputeAuditDigest("txn-1", "", "PENDING", "system", "", utcTime.In(loc)))
}

func TestGenerateReferenceNumber(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 30, 45, 0, time.UTC)

	reference, err := GenerateReferenceNumber(now)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(reference, "TXN-20260828123045-"))
	assert.Len(t, reference, len("TXN-20060102150405-")+12)
	assert.Equal(t, strings.ToUpper(reference), reference)

	other, err := GenerateReferenceNumber(now)
	require.NoError(t, err)
	assert.NotEqual(t, reference, other, "random suffix must differ between calls")
}

func TestGenerateSecureRandomString(t *testing.T) {
	value, err := GenerateSecureRandomString(6)
	require.NoError(t, err)
	assert.Len(t, value, 12)

	_, err = GenerateSecureRandomString(0)
	assert.Error(t, err)
}
