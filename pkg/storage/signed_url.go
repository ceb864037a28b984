package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SignedURLSigner mints and checks the download tokens that let a
// browser fetch a finished report batch without a bearer token. A
// token binds a batch ID to one stored file path and an expiry, so a
// leaked URL cannot be pointed at another batch's PDF.
type SignedURLSigner struct {
	secret []byte
	ttl    time.Duration
}

// NewSignedURLSigner returns a signer using the given HMAC secret.
// Tokens default to a 24 hour lifetime when ttl is not positive.
func NewSignedURLSigner(secret string, ttl time.Duration) *SignedURLSigner {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SignedURLSigner{secret: []byte(secret), ttl: ttl}
}

// Generate signs a token for the batch and its result file.
func (s *SignedURLSigner) Generate(batchID, relPath string) (string, time.Time, error) {
	if batchID == "" || relPath == "" {
		return "", time.Time{}, fmt.Errorf("batch id and file path are required")
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("signing secret is not configured")
	}

	expiresAt := time.Now().Add(s.ttl)
	exp := strconv.FormatInt(expiresAt.Unix(), 10)
	encodedPath := base64.RawURLEncoding.EncodeToString([]byte(relPath))
	sig := s.sign(batchID, exp, encodedPath)

	return strings.Join([]string{batchID, exp, encodedPath, sig}, "."), expiresAt, nil
}

// Parse checks a token's signature and expiry and returns what it
// binds. allowExpired lets cleanup identify files behind stale tokens.
func (s *SignedURLSigner) Parse(token string, allowExpired bool) (batchID, relPath string, expiresAt time.Time, err error) {
	parts := strings.Split(token, ".")
	if len(parts) != 4 {
		return "", "", time.Time{}, fmt.Errorf("malformed download token")
	}
	batchID, exp, encodedPath, sig := parts[0], parts[1], parts[2], parts[3]

	if !hmac.Equal([]byte(s.sign(batchID, exp, encodedPath)), []byte(sig)) {
		return "", "", time.Time{}, fmt.Errorf("download token signature mismatch")
	}

	expUnix, err := strconv.ParseInt(exp, 10, 64)
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("download token expiry is not a timestamp")
	}
	expiresAt = time.Unix(expUnix, 0)
	if !allowExpired && time.Now().After(expiresAt) {
		return "", "", time.Time{}, fmt.Errorf("download token expired")
	}

	rawPath, err := base64.RawURLEncoding.DecodeString(encodedPath)
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("decode token path: %w", err)
	}
	return batchID, string(rawPath), expiresAt, nil
}

func (s *SignedURLSigner) sign(batchID, exp, encodedPath string) string {
	mac := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(mac, "%s\n%s\n%s", batchID, exp, encodedPath)
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
