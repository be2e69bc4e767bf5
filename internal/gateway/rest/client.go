package rest

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

	"go-jobmatch-web/internal/domain"
	"go-jobmatch-web/pkg/apperror"
	"go-jobmatch-web/pkg/logger"
)

const maxErrorBody = 64 << 10

// Credentials is the per-request session the client authenticates with. It is
// looked up in the request context under domain.KeySession.
type Credentials interface {
	Token() string
	Invalidate()
}

// Client talks to the JobMatch REST backend. It performs no retries.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: httpClient,
	}
}

type envelope struct {
	Success *bool           `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
}

// errorMessage prefers error.message, then a plain string error, then message.
func (e envelope) errorMessage() string {
	if len(e.Error) > 0 {
		var nested struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(e.Error, &nested); err == nil && nested.Message != "" {
			return nested.Message
		}
		var plain string
		if err := json.Unmarshal(e.Error, &plain); err == nil && plain != "" {
			return plain
		}
	}
	return e.Message
}

func credentialsFrom(ctx context.Context) Credentials {
	creds, _ := ctx.Value(domain.KeySession).(Credentials)
	return creds
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string) (*http.Request, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("create request %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if creds := credentialsFrom(ctx); creds != nil && creds.Token() != "" {
		req.Header.Set("Authorization", "Bearer "+creds.Token())
	}
	if requestID, ok := ctx.Value(domain.KeyRequestID).(string); ok && requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}
	return req, nil
}

// send executes req and maps every non-2xx status onto an *apperror.AppError.
// The caller owns the body of a successful response.
func (c *Client) send(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, ctxErr
		}
		logger.Log.WarnContext(req.Context(), "backend unreachable",
			"method", req.Method,
			"path", req.URL.Path,
			"error", err,
		)
		return nil, apperror.Network(err)
	}

	logger.Log.DebugContext(req.Context(), "backend call",
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"latency", time.Since(start),
	)

	if resp.StatusCode < http.StatusBadRequest {
		return resp, nil
	}
	defer resp.Body.Close()

	payload, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var env envelope
	message := ""
	if json.Unmarshal(payload, &env) == nil {
		message = env.errorMessage()
	}

	if resp.StatusCode == http.StatusUnauthorized {
		if creds := credentialsFrom(req.Context()); creds != nil {
			creds.Invalidate()
		}
	}
	return nil, apperror.FromStatus(resp.StatusCode, message)
}

// do sends a JSON request and returns the envelope's data member.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload any) (json.RawMessage, error) {
	var body io.Reader
	contentType := ""
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(encoded)
		contentType = "application/json"
	}

	req, err := c.newRequest(ctx, method, path, query, body, contentType)
	if err != nil {
		return nil, err
	}
	return c.roundTrip(req)
}

func (c *Client) roundTrip(req *http.Request) (json.RawMessage, error) {
	resp, err := c.send(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, apperror.Network(fmt.Errorf("read %s %s: %w", req.Method, req.URL.Path, err))
	}
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[0] != '{' {
		return trimmed, nil
	}

	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, apperror.Internal(fmt.Errorf("decode %s %s: %w", req.Method, req.URL.Path, err))
	}
	if env.Success != nil && !*env.Success {
		message := env.errorMessage()
		if message == "" {
			message = "Request was not successful"
		}
		return nil, apperror.Validation(message)
	}
	if env.Success == nil && env.Data == nil {
		// Not an envelope; treat the whole body as data.
		return trimmed, nil
	}
	return env.Data, nil
}

// decodeList accepts either a bare array or an object wrapping the array under key.
func decodeList(data json.RawMessage, key string, out any) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if trimmed[0] == '[' {
		return json.Unmarshal(trimmed, out)
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &wrapper); err != nil {
		return err
	}
	inner, ok := wrapper[key]
	if !ok {
		return nil
	}
	return decodeList(inner, key, out)
}

func decode(data json.RawMessage, out any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return errors.New("empty response data")
	}
	return json.Unmarshal(data, out)
}

func decodeError(op string, err error) error {
	return apperror.Internal(fmt.Errorf("decode %s: %w", op, err))
}

// Ping reports whether the backend answers at all. Any status below 500 counts
// as reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("create health request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("backend unreachable: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("backend health: status %d", resp.StatusCode)
	}
	return nil
}
