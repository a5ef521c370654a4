// Package sharelink signs and verifies compact tokens that carry a calendar
// query string, so a shared view can be reopened without a server-side store.
package sharelink

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrMalformed = errors.New("malformed share token")
	ErrSignature = errors.New("invalid share token signature")
	ErrExpired   = errors.New("share token expired")
	ErrNoSecret  = errors.New("share link secret missing")
)

// Signer creates and validates share tokens of the form
// payload.expiry.signature, where payload is the base64url query.
type Signer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSigner constructs a signer. ttl <= 0 defaults to 30 days.
func NewSigner(secret string, ttl time.Duration) *Signer {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &Signer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// WithClock overrides the signer clock.
func (s *Signer) WithClock(now func() time.Time) *Signer {
	s.now = now
	return s
}

func (s *Signer) sign(encoded, expiry string) string {
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(encoded + "|" + expiry))
	return hex.EncodeToString(mac.Sum(nil))
}

// Sign wraps rawQuery in a token valid for the signer ttl.
func (s *Signer) Sign(rawQuery string) (string, time.Time, error) {
	if len(s.secret) == 0 {
		return "", time.Time{}, ErrNoSecret
	}
	expiresAt := s.now().Add(s.ttl).Truncate(time.Second)
	encoded := base64.RawURLEncoding.EncodeToString([]byte(rawQuery))
	expiry := strconv.FormatInt(expiresAt.Unix(), 10)
	return strings.Join([]string{encoded, expiry, s.sign(encoded, expiry)}, "."), expiresAt, nil
}

// Verify returns the query carried by token.
func (s *Signer) Verify(token string) (string, time.Time, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return "", time.Time{}, ErrMalformed
	}
	encoded, expiry, signature := parts[0], parts[1], parts[2]

	unix, err := strconv.ParseInt(expiry, 10, 64)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: expiry", ErrMalformed)
	}
	if !hmac.Equal([]byte(s.sign(encoded, expiry)), []byte(signature)) {
		return "", time.Time{}, ErrSignature
	}
	expiresAt := time.Unix(unix, 0)
	if s.now().After(expiresAt) {
		return "", expiresAt, ErrExpired
	}
	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: payload", ErrMalformed)
	}
	return string(raw), expiresAt, nil
}
