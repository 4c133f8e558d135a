// Package totp implements RFC 6238 time-based one-time passwords with the
// parameters authenticator apps default to: HMAC-SHA1, 6 digits, 30-second
// steps.
package totp

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/base32"
	"encoding/binary"
	"errors"
	"fmt"
	"net/url"
	"time"
)

const (
	secretBytes = 20
	// Digits is the code length produced and accepted.
	Digits = 6
	// Period is the time-step size in seconds.
	Period = 30
	// Skew is the number of adjacent time steps accepted on verification.
	Skew = 1
)

var b32 = base32.StdEncoding.WithPadding(base32.NoPadding)

// GenerateSecret returns a fresh random shared secret, base32-encoded without
// padding for direct use in provisioning URIs.
func GenerateSecret() (string, error) {
	raw := make([]byte, secretBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("totp secret: %w", err)
	}
	return b32.EncodeToString(raw), nil
}

// ProvisioningURI renders the otpauth:// URI authenticator apps scan to
// enroll an account.
func ProvisioningURI(issuer, account, secret string) string {
	label := url.PathEscape(issuer + ":" + account)

	v := url.Values{}
	v.Set("secret", secret)
	v.Set("issuer", issuer)
	v.Set("period", fmt.Sprintf("%d", Period))
	v.Set("digits", fmt.Sprintf("%d", Digits))
	v.Set("algorithm", "SHA1")

	return "otpauth://totp/" + label + "?" + v.Encode()
}

// GenerateCode derives the code for the time step containing t.
func GenerateCode(secret string, t time.Time) (string, error) {
	key, err := b32.DecodeString(secret)
	if err != nil {
		return "", errors.New("malformed totp secret")
	}
	return hotp(key, t.Unix()/Period), nil
}

// Verify checks a submitted code against the secret, accepting the current
// time step and Skew steps either side. Malformed input (wrong length,
// non-numeric) returns false rather than an error.
func Verify(secret, code string, t time.Time) (bool, error) {
	if len(code) != Digits || !isNumeric(code) {
		return false, nil
	}
	key, err := b32.DecodeString(secret)
	if err != nil {
		return false, errors.New("malformed totp secret")
	}

	base := t.Unix() / Period
	for step := int64(-Skew); step <= Skew; step++ {
		counter := base + step
		if counter < 0 {
			continue
		}
		if subtle.ConstantTimeCompare([]byte(hotp(key, counter)), []byte(code)) == 1 {
			return true, nil
		}
	}
	return false, nil
}

// hotp computes the RFC 4226 truncated HMAC-SHA1 code for a counter value.
func hotp(key []byte, counter int64) string {
	var msg [8]byte
	binary.BigEndian.PutUint64(msg[:], uint64(counter))

	mac := hmac.New(sha1.New, key)
	_, _ = mac.Write(msg[:])
	sum := mac.Sum(nil)

	offset := sum[len(sum)-1] & 0x0f
	bin := (int(sum[offset])&0x7f)<<24 |
		(int(sum[offset+1])&0xff)<<16 |
		(int(sum[offset+2])&0xff)<<8 |
		(int(sum[offset+3]) & 0xff)

	return fmt.Sprintf("%0*d", Digits, bin%1000000)
}

func isNumeric(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
