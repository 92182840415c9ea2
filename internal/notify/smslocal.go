package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultTimeout = 15 * time.Second

// SMSLocalSender sends OTP SMS via the SMS Local API.
type SMSLocalSender struct {
	APIKey     string
	BaseURL    string
	Sender     string
	HTTPClient *http.Client
}

// NewSMSLocalSender returns a client that uses the given API key and optional base URL/sender.
func NewSMSLocalSender(apiKey, baseURL, sender string) *SMSLocalSender {
	if baseURL == "" {
		baseURL = "https://www.smslocal.com/dev/bulkV2"
	}
	return &SMSLocalSender{
		APIKey:     apiKey,
		BaseURL:    baseURL,
		Sender:     sender,
		HTTPClient: &http.Client{Timeout: defaultTimeout},
	}
}

// SendOTP sends the code to the given phone number via SMS Local (route=otp).
// destination should be digits only (e.g. country code + number). Does not log the OTP.
func (c *SMSLocalSender) SendOTP(destination, otp string) error {
	if c.APIKey == "" {
		return fmt.Errorf("notify: SMS API key not configured")
	}
	body := map[string]interface{}{
		"route":     "otp",
		"numbers":   destination,
		"variables": otp,
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, c.BaseURL, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.APIKey)
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("notify: sms request failed status=%d body=%s", resp.StatusCode, string(b))
	}
	return nil
}
