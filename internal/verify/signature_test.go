package verify

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"testing"
	"time"
)

const testSecret = "whsec_test"

func sign(secret string, ts int64, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", ts)
	mac.Write(body)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func fixedVerifier(at time.Time) *Verifier {
	v := New(testSecret, 5*time.Minute)
	v.now = func() time.Time { return at }
	return v
}

func TestVerify(t *testing.T) {
	now := time.Unix(1717200000, 0)
	body := []byte(`{"id":"evt_1","type":"payout.failed"}`)

	cases := []struct {
		name    string
		header  string
		wantErr bool
	}{
		{"valid", sign(testSecret, now.Unix(), body), false},
		{"slightly old", sign(testSecret, now.Add(-time.Minute).Unix(), body), false},
		{"wrong secret", sign("whsec_other", now.Unix(), body), true},
		{"stale timestamp", sign(testSecret, now.Add(-time.Hour).Unix(), body), true},
		{"future timestamp", sign(testSecret, now.Add(time.Hour).Unix(), body), true},
		{"missing v1", fmt.Sprintf("t=%d", now.Unix()), true},
		{"missing t", "v1=deadbeef", true},
		{"garbage", "not a signature header", true},
		{"bad hex", fmt.Sprintf("t=%d,v1=zzzz", now.Unix()), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := fixedVerifier(now)
			err := v.Verify(body, tc.header)
			if tc.wantErr {
				if !errors.Is(err, ErrSignature) {
					t.Fatalf("err = %v, want ErrSignature", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Verify: %v", err)
			}
		})
	}
}

func TestVerifyTamperedBody(t *testing.T) {
	now := time.Unix(1717200000, 0)
	header := sign(testSecret, now.Unix(), []byte(`{"amount":10}`))

	v := fixedVerifier(now)
	if err := v.Verify([]byte(`{"amount":10000}`), header); !errors.Is(err, ErrSignature) {
		t.Fatalf("err = %v, want ErrSignature for tampered body", err)
	}
}
