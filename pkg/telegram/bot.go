// Package telegram sends plain-text messages through the Telegram Bot API.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const DefaultBaseURL = "https://api.telegram.org"

// APIError is a non-ok Bot API answer.
type APIError struct {
	Code        int    `json:"error_code"`
	Description string `json:"description"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram: %d %s", e.Code, e.Description)
}

// Bot is one bot token bound to an HTTP client.
type Bot struct {
	token   string
	baseURL string
	http    *http.Client
}

func NewBot(token string, httpClient *http.Client) *Bot {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Bot{token: token, baseURL: DefaultBaseURL, http: httpClient}
}

// WithBaseURL points the bot at another API host, e.g. a local Bot API server.
func (b *Bot) WithBaseURL(u string) *Bot {
	b.baseURL = strings.TrimRight(u, "/")
	return b
}

type sendMessageRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

type apiResponse struct {
	OK bool `json:"ok"`
	APIError
}

// Notify sends text to chatID.
func (b *Bot) Notify(ctx context.Context, chatID, text string) error {
	if b.token == "" {
		return fmt.Errorf("telegram: bot token is empty")
	}
	body, err := json.Marshal(sendMessageRequest{ChatID: chatID, Text: text})
	if err != nil {
		return err
	}
	url := fmt.Sprintf("%s/bot%s/sendMessage", b.baseURL, b.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.http.Do(req)
	if err != nil {
		// the URL carries the token; keep it out of logs
		return fmt.Errorf("telegram: sendMessage: %s", redact(err.Error(), b.token))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("telegram: read body: %w", err)
	}
	var out apiResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("telegram: http %d: decode response: %w", resp.StatusCode, err)
	}
	if !out.OK {
		apiErr := out.APIError
		if apiErr.Code == 0 {
			apiErr.Code = resp.StatusCode
		}
		return &apiErr
	}
	return nil
}

func redact(s, token string) string {
	if token == "" {
		return s
	}
	return strings.ReplaceAll(s, token, "<token>")
}
