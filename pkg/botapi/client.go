// Package botapi is the client for the bot's HTTP control API.
//
// Every call is one round trip and always yields a Result: transport faults
// and malformed payloads are folded into Result{Success: false} so callers
// never handle raw transport errors.
package botapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mudler/xlog"
)

const DefaultTimeout = 15 * time.Second

// Result is the canonical shape of every control API response.
type Result struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`

	// AvailableQuests is sent along with a rejected quest request.
	AvailableQuests []string `json:"availableQuests,omitempty"`
}

// Failure builds an unsuccessful Result.
func Failure(format string, args ...any) Result {
	return Result{Success: false, Message: fmt.Sprintf(format, args...)}
}

// Invoker runs a single control API operation.
type Invoker interface {
	Invoke(ctx context.Context, op Op, payload map[string]any) Result
}

// Client talks to the control API at BaseURL.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a client with a bounded per-request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Invoke performs op with the given JSON payload. GET operations ignore the payload.
func (c *Client) Invoke(ctx context.Context, op Op, payload map[string]any) Result {
	if !Known(op) {
		return Failure("unknown operation %q", op)
	}
	method := op.Method()

	var body io.Reader
	if method != http.MethodGet {
		if payload == nil {
			payload = map[string]any{}
		}
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return Failure("error marshaling request body: %v", err)
		}
		body = bytes.NewBuffer(jsonData)
	}

	url := c.BaseURL + op.Path()
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return Failure("error creating request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	xlog.Debug("Calling bot API", "method", method, "url", url)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		xlog.Warn("Bot API unreachable", "op", op, "error", err)
		return Failure("Connection error: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Failure("Request failed: %v", err)
	}

	res := normalize(resp.StatusCode, raw)
	if !res.Success {
		xlog.Debug("Bot API reported failure", "op", op, "status", resp.StatusCode, "message", res.Message)
	}
	return res
}

// normalize folds every upstream payload variant into a Result.
//
// A response fails only on an explicit indicator: success=false, an error
// field without a success field, or an HTTP error status without a success
// field. Anything else is a success.
func normalize(status int, raw []byte) Result {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Failure("Request failed: malformed response from bot API (HTTP %d)", status)
	}

	errMsg := rawText(payload["error"])
	msg := rawText(payload["message"])

	success := true
	if s, ok := payload["success"]; ok {
		if err := json.Unmarshal(s, &success); err != nil {
			return Failure("Request failed: malformed success field in bot API response")
		}
	} else if errMsg != "" || status >= http.StatusBadRequest {
		success = false
	}

	res := Result{Success: success, Data: payload["data"]}
	if quests, ok := payload["availableQuests"]; ok {
		// a malformed list only loses the hint
		_ = json.Unmarshal(quests, &res.AvailableQuests)
	}
	switch {
	case success:
		res.Message = msg
	case errMsg != "":
		res.Message = errMsg
	case msg != "":
		res.Message = msg
	case status >= http.StatusBadRequest:
		res.Message = http.StatusText(status)
	default:
		res.Message = "Unknown error"
	}
	return res
}

// rawText returns a JSON string as-is and any other JSON value as its text.
func rawText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
