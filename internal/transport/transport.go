package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/julianstephens/coffeematch/internal/constants"
	"github.com/julianstephens/coffeematch/internal/logger"
)

// DefaultErrorMessage is used when a failed response carries no usable text.
const DefaultErrorMessage = "Request failed."

// RequestError is the single error kind returned for non-2xx responses and
// network failures. Status is 0 when no response was received.
type RequestError struct {
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	return e.Message
}

// Client issues requests against one backend base URL.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// New creates a Client for baseURL, e.g. http://localhost:8000/api/v1.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend root this client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type actorKey struct{}

// WithActor returns a context whose requests identify the acting user.
func WithActor(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, actorKey{}, userID)
}

func actorFrom(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(actorKey{}).(int64)
	return id, ok && id != 0
}

// Call sends body (if non-nil) as JSON and decodes a JSON response into out.
// A text response is stored into out when out is a *string. A 204 leaves out untouched.
func (c *Client) Call(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	var contentType string
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, reader, contentType, out)
}

// CallForm sends form as an application/x-www-form-urlencoded body.
func (c *Client) CallForm(ctx context.Context, method, path string, form url.Values, out any) error {
	return c.do(ctx, method, path, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded", out)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set(constants.HeaderRequestID, uuid.NewString())
	if actor, ok := actorFrom(ctx); ok {
		req.Header.Set(constants.HeaderActorID, strconv.FormatInt(actor, 10))
	}

	logger.Debug("request", "method", method, "path", path)

	res, err := c.http.Do(req)
	if err != nil {
		logger.Debug("request failed", "method", method, "path", path, "error", err)
		return &RequestError{Status: 0, Message: networkMessage(err)}
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return &RequestError{Status: res.StatusCode, Message: networkMessage(err)}
	}

	logger.Debug("response", "method", method, "path", path, "status", res.StatusCode)

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return &RequestError{Status: res.StatusCode, Message: errorMessage(res.Header.Get("Content-Type"), data)}
	}

	if res.StatusCode == http.StatusNoContent || out == nil {
		return nil
	}

	if isJSON(res.Header.Get("Content-Type")) {
		if len(bytes.TrimSpace(data)) == 0 {
			return nil
		}
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode response from %s %s: %w", method, path, err)
		}
		return nil
	}

	if s, ok := out.(*string); ok {
		*s = string(data)
		return nil
	}
	return fmt.Errorf("unexpected %q response from %s %s", res.Header.Get("Content-Type"), method, path)
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

// errorMessage extracts the display text from a failed response. A JSON body
// yields its "detail" (string, or the first entry of a validation list) or
// "error" field; any other body yields its raw text. Anything else is
// DefaultErrorMessage.
func errorMessage(contentType string, data []byte) string {
	if isJSON(contentType) {
		var payload struct {
			Detail json.RawMessage `json:"detail"`
			Error  string          `json:"error"`
		}
		if err := json.Unmarshal(data, &payload); err == nil {
			if msg := detailMessage(payload.Detail); msg != "" {
				return msg
			}
			if strings.TrimSpace(payload.Error) != "" {
				return payload.Error
			}
			return DefaultErrorMessage
		}
	}
	if text := strings.TrimSpace(string(data)); text != "" {
		return text
	}
	return DefaultErrorMessage
}

func detailMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var list []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return strings.TrimSpace(list[0].Msg)
	}
	return ""
}

func networkMessage(err error) string {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		err = urlErr.Err
	}
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return DefaultErrorMessage
}
