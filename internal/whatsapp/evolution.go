// Package whatsapp talks to an Evolution API instance, the relay that
// actually delivers WhatsApp messages.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mvinicius/whatsapp-portfolio-bot/internal/errs"
)

// Client sends outbound messages through the Evolution API. It
// refuses any recipient other than the single allow-listed number.
type Client struct {
	baseURL    string
	instance   string
	apiKey     string
	allowedJID string
	cli        *http.Client
}

func NewClient(baseURL, instance, apiKey, allowedJID string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		instance:   instance,
		apiKey:     apiKey,
		allowedJID: allowedJID,
		cli:        &http.Client{Timeout: 20 * time.Second},
	}
}

type sendTextRequest struct {
	Number string `json:"number"`
	Text   string `json:"text"`
}

// SendText delivers one text message. The phone number may carry the
// "@s.whatsapp.net" suffix; it is stripped before the API call.
func (c *Client) SendText(ctx context.Context, phoneNumber, message string) error {
	if !strings.Contains(phoneNumber, c.allowedJID) {
		return errs.Unauthorized(fmt.Sprintf("recipient %s is not on the allow-list", phoneNumber))
	}

	number := strings.SplitN(phoneNumber, "@", 2)[0]

	body, err := json.Marshal(sendTextRequest{Number: number, Text: message})
	if err != nil {
		return errs.UpstreamUnavailable("error encoding message", err)
	}

	url := fmt.Sprintf("%s/message/sendText/%s", c.baseURL, c.instance)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return errs.UpstreamUnavailable("error building request", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	log.Printf("Sending message to %s: '%s'", number, truncate(message, 50))

	resp, err := c.cli.Do(req)
	if err != nil {
		if isTimeout(err) {
			return errs.UpstreamUnavailable("Request timed out", nil)
		}
		return errs.UpstreamUnavailable("error calling Evolution API", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return errs.UpstreamUnavailable(fmt.Sprintf("API Error: %s", strings.TrimSpace(string(apiErr))), nil)
	}

	log.Printf("Message sent successfully to %s", number)
	return nil
}

func isTimeout(err error) bool {
	var ne interface{ Timeout() bool }
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	return errors.Is(err, os.ErrDeadlineExceeded) || errors.Is(err, context.DeadlineExceeded)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
