package completion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"regexp"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"

	"manim-server/internal/animation"
	"manim-server/internal/logger"
)

type Options struct {
	APIKey  string
	URL     string
	Model   string
	Timeout time.Duration
}

// Client asks an OpenAI-compatible chat-completions endpoint to turn a
// free-form prompt into an animation description.
type Client struct {
	apiKey string
	url    string
	model  string
	http   *resty.Client
	log    logger.Logger
}

func New(opts Options, log logger.Logger) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Client{
		apiKey: strings.TrimSpace(opts.APIKey),
		url:    opts.URL,
		model:  opts.Model,
		http: resty.New().
			SetTimeout(timeout).
			SetHeader("Content-Type", "application/json").
			SetHeader("Accept", "application/json"),
		log: log.With("component", "completion"),
	}
}

// Configured reports whether a credential is present.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// Describe returns the raw description for prompt. Every failure is an *Error
// whose message can be shown to the user; no call is made without a credential.
func (c *Client) Describe(ctx context.Context, prompt string) (animation.RawDescription, error) {
	if !c.Configured() {
		c.log.Warn("API key is not set, using fallback")
		return nil, &Error{Reason: ReasonNoCredential, Message: "API Key not set. Using fallback."}
	}

	req := ChatRequest{
		Model: c.model,
		Messages: []ChatMessage{
			{Role: "system", Content: SystemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature:    0.1,
		MaxTokens:      1200,
		ResponseFormat: &ResponseFormat{Type: "json_object"},
	}

	c.log.Info("Sending prompt to completion service", "prompt", prompt, "model", c.model)
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.apiKey).
		SetBody(req).
		Post(c.url)
	if err != nil {
		if isTimeout(err) {
			c.log.Error("Completion request timed out", "error", err)
			return nil, &Error{Reason: ReasonTimeout, Message: "API request timed out.", Err: err}
		}
		c.log.Error("Completion request failed", "error", err)
		return nil, &Error{Reason: ReasonRequest, Message: fmt.Sprintf("API request failed: %v", err), Err: err}
	}

	body := resp.Body()
	if resp.IsError() {
		msg := "API request failed: " + resp.Status()
		if detail := gjson.GetBytes(body, "error.message").String(); detail != "" {
			msg += ": " + detail
		}
		c.log.Error("Completion service returned an error", "status", resp.StatusCode(), "body", truncate(body, 500))
		return nil, &Error{Reason: ReasonRequest, Message: msg}
	}

	content, err := extractContent(body)
	if err != nil {
		c.log.Error("Unexpected completion response", "error", err, "body", truncate(body, 500))
		return nil, err
	}

	var raw animation.RawDescription
	if err := json.Unmarshal([]byte(SanitizeJSON(content)), &raw); err != nil {
		c.log.Error("Completion content is not valid JSON", "content", content, "error", err)
		return nil, &Error{
			Reason:  ReasonInvalidJSON,
			Message: fmt.Sprintf("LLM response not valid JSON. Details: %v", err),
			Err:     err,
		}
	}
	c.log.Debug("Completion parsed", "description", raw)
	return raw, nil
}

func extractContent(body []byte) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", &Error{Reason: ReasonUnexpected, Message: "Unexpected LLM response: response is not JSON"}
	}
	message := gjson.GetBytes(body, "choices.0.message")
	if !message.Exists() {
		detail := gjson.GetBytes(body, "error.message").String()
		if detail == "" {
			detail = "Unknown LLM error."
		}
		return "", &Error{Reason: ReasonUnexpected, Message: "Unexpected LLM response: " + detail}
	}
	content := strings.TrimSpace(message.Get("content").String())
	if content == "" {
		return "", &Error{Reason: ReasonEmpty, Message: "LLM response content is empty."}
	}
	return content, nil
}

var fenceRegex = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(.*?)\\n?```")

// SanitizeJSON strips a markdown code fence around the content, if any.
func SanitizeJSON(raw string) string {
	if matches := fenceRegex.FindStringSubmatch(raw); len(matches) > 1 {
		raw = matches[1]
	}
	return strings.TrimSpace(raw)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
