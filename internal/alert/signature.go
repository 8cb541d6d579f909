package alert

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Sign generates the X-Wetwatch-Signature header value for an alert payload.
//
// The signed content is "{unix_timestamp}.{payload}" using HMAC-SHA256, and
// the header value is "t=<unix>,v1=<hex hmac>". Including the timestamp in
// the signed content lets receivers reject replayed deliveries.
func Sign(payload []byte, secret string, now time.Time) string {
	timestamp := now.Unix()
	signedContent := fmt.Sprintf("%d.%s", timestamp, string(payload))
	return fmt.Sprintf("t=%d,v1=%s", timestamp, computeHMAC(signedContent, secret))
}

// Verify checks a signature header value against the payload and secret,
// enforcing the given tolerance on the embedded timestamp. It exists so
// receivers (and our tests) share the exact signing scheme.
func Verify(header string, payload []byte, secret string, now time.Time, tolerance time.Duration) bool {
	var timestamp int64
	var got string
	if _, err := fmt.Sscanf(header, "t=%d,v1=%s", &timestamp, &got); err != nil {
		return false
	}

	issued := time.Unix(timestamp, 0)
	if now.Sub(issued) > tolerance || issued.Sub(now) > tolerance {
		return false
	}

	want := computeHMAC(fmt.Sprintf("%d.%s", timestamp, string(payload)), secret)
	return hmac.Equal([]byte(want), []byte(got))
}

// computeHMAC returns the hex-encoded HMAC-SHA256 of the content.
func computeHMAC(content, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(content))
	return hex.EncodeToString(mac.Sum(nil))
}
