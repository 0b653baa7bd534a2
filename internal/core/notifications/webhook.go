package notifications

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// SendWebhook posts the JSON payload to the given URL, signed with an
// HMAC-SHA256 over body + "." + timestamp so the receiver can verify origin
// and freshness.
func SendWebhook(url string, payload []byte, secret string) error {
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}

	ts := strconv.FormatInt(time.Now().Unix(), 10)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(append(payload, []byte("."+ts)...))

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Cashier-Webhook/1.0")
	req.Header.Set("X-Timestamp", ts)
	req.Header.Set("X-Signature", hex.EncodeToString(mac.Sum(nil)))

	// Don't let a slow receiver block the worker.
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return fmt.Errorf("webhook receiver returned error: %d", resp.StatusCode)
}
