// Package bitrix is a small client for the Bitrix24 REST methods the workday
// bridge uses: timeman.open, timeman.close, timeman.status and user.get.
// Every call goes through an inbound webhook URL of the form
// https://<portal>/rest/<user>/<secret>/.
package bitrix

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const DefaultTimeout = 30 * time.Second

var ErrNoResult = errors.New("bitrix: response has no result")

// APIError is an error reported by Bitrix in the response body.
type APIError struct {
	Code        string
	Description string
}

func (e *APIError) Error() string {
	if e.Description == "" {
		return "bitrix: " + e.Code
	}
	return fmt.Sprintf("bitrix: %s: %s", e.Code, e.Description)
}

type envelope struct {
	Result           json.RawMessage `json:"result"`
	Error            string          `json:"error"`
	ErrorDescription string          `json:"error_description"`
	Next             int             `json:"next"`
	Total            int             `json:"total"`
}

// Client calls Bitrix24 webhooks. The webhook URL is passed per call so one
// client serves every company.
type Client struct {
	http *http.Client
}

// NewClient wraps httpClient; nil gets a client with DefaultTimeout.
func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{http: httpClient}
}

func methodURL(webhook, method string) string {
	return strings.TrimRight(webhook, "/") + "/" + method
}

func (c *Client) get(ctx context.Context, webhook, method string, params url.Values) (*envelope, error) {
	u := methodURL(webhook, method)
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req, method)
}

func (c *Client) post(ctx context.Context, webhook, method string, payload any) (*envelope, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, methodURL(webhook, method), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, method)
}

func (c *Client) do(req *http.Request, method string) (*envelope, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: read body: %w", method, err)
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return nil, fmt.Errorf("%s: http %d", method, resp.StatusCode)
		}
		return nil, fmt.Errorf("%s: decode response: %w", method, err)
	}
	if env.Error != "" {
		return nil, &APIError{Code: env.Error, Description: env.ErrorDescription}
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("%s: http %d", method, resp.StatusCode)
	}
	if len(env.Result) == 0 || string(env.Result) == "null" || string(env.Result) == "false" {
		return nil, fmt.Errorf("%s: %w", method, ErrNoResult)
	}
	return &env, nil
}
