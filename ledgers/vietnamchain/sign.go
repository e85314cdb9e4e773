package vietnamchain

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// signRequest attaches the gateway's HMAC authentication headers. The signed
// message is "METHOD:ENDPOINT:BODY:TIMESTAMP" where BODY is the canonical
// JSON encoding with keys in sorted order and TIMESTAMP is in milliseconds.
// Requests without a body sign "METHOD:ENDPOINT:TIMESTAMP" instead; the body
// segment is omitted entirely, not left empty.
func (l *ledger) signRequest(req *http.Request, method, endpoint string, body map[string]string) {
	timestamp := strconv.FormatInt(time.Now().UnixMilli(), 10)
	signature := computeSignature(l.config.APISecret, method, endpoint, body, timestamp)

	req.Header.Set("X-Auth-ApiKey", l.config.APIKey)
	req.Header.Set("X-Auth-Timestamp", timestamp)
	req.Header.Set("X-Auth-Signature", signature)
	if l.config.OrganizationID != "" {
		req.Header.Set("X-Organization-ID", l.config.OrganizationID)
	}
}

// computeSignature builds the base64 HMAC-SHA256 signature the gateway
// expects. Signed bodies use the compact encoding/json form with keys in
// sorted order, which is also the exact byte sequence sent on the wire, so
// the gateway can verify against the received body.
func computeSignature(secret, method, endpoint string, body map[string]string, timestamp string) string {
	message := fmt.Sprintf("%s:%s:%s", method, endpoint, timestamp)
	if len(body) > 0 {
		canonical, err := json.Marshal(body)
		if err == nil {
			message = fmt.Sprintf("%s:%s:%s:%s", method, endpoint, canonical, timestamp)
		}
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(message))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
