package totp

import (
	"strings"
	"testing"
	"time"
)

// RFC 6238 appendix B vectors (SHA1, 20-byte ASCII secret), truncated to the
// 6-digit codes this package produces.
func TestVerifyRFCVectors(t *testing.T) {
	secret := b32.EncodeToString([]byte("12345678901234567890"))

	cases := []struct {
		ts   int64
		code string
	}{
		{59, "287082"},
		{1111111109, "081804"},
		{1111111111, "050471"},
		{1234567890, "005924"},
		{2000000000, "279037"},
		{20000000000, "353130"},
	}

	for _, tc := range cases {
		ok, err := Verify(secret, tc.code, time.Unix(tc.ts, 0))
		if err != nil {
			t.Fatalf("Verify(t=%d) error: %v", tc.ts, err)
		}
		if !ok {
			t.Fatalf("vector failed at t=%d code=%s", tc.ts, tc.code)
		}
	}
}

func TestGenerateVerifyRoundTrip(t *testing.T) {
	secret, err := GenerateSecret()
	if err != nil {
		t.Fatalf("GenerateSecret: %v", err)
	}

	now := time.Now()
	code, err := GenerateCode(secret, now)
	if err != nil {
		t.Fatalf("GenerateCode: %v", err)
	}
	if len(code) != Digits {
		t.Fatalf("expected %d digits, got %q", Digits, code)
	}

	ok, err := Verify(secret, code, now)
	if err != nil || !ok {
		t.Fatalf("fresh code rejected: ok=%v err=%v", ok, err)
	}
}

func TestVerifySkewWindow(t *testing.T) {
	secret, _ := GenerateSecret()
	now := time.Unix(1700000000, 0)

	prev, _ := GenerateCode(secret, now.Add(-Period*time.Second))
	if ok, _ := Verify(secret, prev, now); !ok {
		t.Fatalf("previous-step code rejected within skew")
	}

	stale, _ := GenerateCode(secret, now.Add(-3*Period*time.Second))
	if ok, _ := Verify(secret, stale, now); ok {
		t.Fatalf("code three steps old accepted")
	}
}

func TestVerifyMalformedInput(t *testing.T) {
	secret, _ := GenerateSecret()
	now := time.Now()

	for _, code := range []string{"", "12345", "1234567", "12345a", "abc def"} {
		ok, err := Verify(secret, code, now)
		if err != nil {
			t.Fatalf("malformed input %q returned error: %v", code, err)
		}
		if ok {
			t.Fatalf("malformed input %q accepted", code)
		}
	}
}

func TestProvisioningURI(t *testing.T) {
	uri := ProvisioningURI("TutoringPlatform", "a@x.com", "SECRETBASE32")

	if !strings.HasPrefix(uri, "otpauth://totp/TutoringPlatform:a@x.com?") {
		t.Fatalf("unexpected uri prefix: %s", uri)
	}
	for _, want := range []string{"secret=SECRETBASE32", "issuer=TutoringPlatform", "digits=6", "period=30", "algorithm=SHA1"} {
		if !strings.Contains(uri, want) {
			t.Fatalf("uri missing %q: %s", want, uri)
		}
	}
}
