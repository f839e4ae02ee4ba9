// Package verify authenticates webhook payloads before they reach
// normalization. A payload that fails here must never be stored.
package verify

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultTolerance bounds how stale a signed timestamp may be.
const DefaultTolerance = 5 * time.Minute

// ErrSignature is the authenticity failure every verification error wraps.
var ErrSignature = errors.New("signature verification failed")

// Verifier checks vendor webhook signatures of the form
// "t=<unix>,v1=<hex hmac-sha256(t + \".\" + body)>" against a shared secret.
type Verifier struct {
	secret    []byte
	tolerance time.Duration
	now       func() time.Time
}

// New creates a Verifier for secret. tolerance <= 0 means DefaultTolerance.
func New(secret string, tolerance time.Duration) *Verifier {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	return &Verifier{secret: []byte(secret), tolerance: tolerance, now: time.Now}
}

// Verify checks header against body. It returns an error wrapping
// ErrSignature on any mismatch, malformed header, or stale timestamp.
func (v *Verifier) Verify(body []byte, header string) error {
	ts, sig, err := parseHeader(header)
	if err != nil {
		return err
	}

	age := v.now().Sub(time.Unix(ts, 0))
	if age > v.tolerance || age < -v.tolerance {
		return fmt.Errorf("%w: timestamp outside tolerance", ErrSignature)
	}

	mac := hmac.New(sha256.New, v.secret)
	fmt.Fprintf(mac, "%d.", ts)
	mac.Write(body)
	if !hmac.Equal(mac.Sum(nil), sig) {
		return fmt.Errorf("%w: digest mismatch", ErrSignature)
	}
	return nil
}

func parseHeader(header string) (ts int64, sig []byte, err error) {
	var gotT, gotV bool
	for _, part := range strings.Split(header, ",") {
		k, val, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch k {
		case "t":
			ts, err = strconv.ParseInt(val, 10, 64)
			if err != nil {
				return 0, nil, fmt.Errorf("%w: bad timestamp", ErrSignature)
			}
			gotT = true
		case "v1":
			sig, err = hex.DecodeString(val)
			if err != nil {
				return 0, nil, fmt.Errorf("%w: bad digest encoding", ErrSignature)
			}
			gotV = true
		}
	}
	if !gotT || !gotV {
		return 0, nil, fmt.Errorf("%w: missing t or v1", ErrSignature)
	}
	return ts, sig, nil
}
