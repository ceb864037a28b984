package storage

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignedURLSignerRoundTrip(t *testing.T) {
	signer := NewSignedURLSigner("term-2-secret", time.Hour)

	token, expiresAt, err := signer.Generate("batch-42", "2026-01/batch-42.pdf")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	batchID, relPath, parsedExp, err := signer.Parse(token, false)
	require.NoError(t, err)
	assert.Equal(t, "batch-42", batchID)
	assert.Equal(t, "2026-01/batch-42.pdf", relPath)
	assert.Equal(t, expiresAt.Unix(), parsedExp.Unix())
}

func TestSignedURLSignerRejectsTampering(t *testing.T) {
	signer := NewSignedURLSigner("term-2-secret", time.Hour)
	token, _, err := signer.Generate("batch-42", "2026-01/batch-42.pdf")
	require.NoError(t, err)

	// Point the token at a different batch; the signature must not hold.
	parts := strings.Split(token, ".")
	require.Len(t, parts, 4)
	parts[0] = "batch-43"
	_, _, _, err = signer.Parse(strings.Join(parts, "."), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "signature")

	_, _, _, err = signer.Parse("not-a-token", false)
	assert.Error(t, err)
}

func TestSignedURLSignerExpiry(t *testing.T) {
	signer := NewSignedURLSigner("term-2-secret", 10*time.Millisecond)
	token, _, err := signer.Generate("batch-42", "2026-01/batch-42.pdf")
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)

	_, _, _, err = signer.Parse(token, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expired")

	// Cleanup passes allowExpired to find the file behind a stale token.
	batchID, relPath, _, err := signer.Parse(token, true)
	require.NoError(t, err)
	assert.Equal(t, "batch-42", batchID)
	assert.Equal(t, "2026-01/batch-42.pdf", relPath)
}

func TestSignedURLSignerRequiresInputs(t *testing.T) {
	signer := NewSignedURLSigner("term-2-secret", time.Hour)
	_, _, err := signer.Generate("", "2026-01/batch-42.pdf")
	assert.Error(t, err)
	_, _, err = signer.Generate("batch-42", "")
	assert.Error(t, err)

	unsigned := NewSignedURLSigner("", time.Hour)
	_, _, err = unsigned.Generate("batch-42", "2026-01/batch-42.pdf")
	assert.Error(t, err)
}
