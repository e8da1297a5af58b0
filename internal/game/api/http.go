package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ludo/client/internal/protocol"
)

// Error is a non-2xx answer from the game server.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("HTTP %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("HTTP %d", e.Status)
}

// IsRejected reports whether err is the server refusing an intent (4xx), as
// opposed to a transport or server failure.
func IsRejected(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Status >= 400 && e.Status < 500
}

// IsNotFound reports whether the server does not know the game asked about.
func IsNotFound(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Status == http.StatusNotFound
}

// IsTransport reports whether err means the request never got a usable answer.
func IsTransport(err error) bool {
	return err != nil && !IsRejected(err)
}

func (c *Client) url(path string, q url.Values) string {
	u := c.base + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

// getJSON and postJSON only differ in the method; the server takes all its
// arguments in the query string.
func getJSON[T any](ctx context.Context, c *Client, path string, q url.Values) (T, error) {
	return doJSON[T](ctx, c, http.MethodGet, path, q)
}

func postJSON[T any](ctx context.Context, c *Client, path string, q url.Values) (T, error) {
	return doJSON[T](ctx, c, http.MethodPost, path, q)
}

func doJSON[T any](ctx context.Context, c *Client, method, path string, q url.Values) (T, error) {
	var result T

	req, err := http.NewRequestWithContext(ctx, method, c.url(path, q), nil)
	if err != nil {
		return result, err
	}
	rid := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", rid)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("request failed",
			zap.String("method", method), zap.String("path", path),
			zap.String("request_id", rid), zap.Error(err))
		return result, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	c.log.Debug("request",
		zap.String("method", method), zap.String("path", path),
		zap.String("request_id", rid), zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)))
	if err != nil {
		return result, fmt.Errorf("%s %s: read body: %w", method, path, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return result, decodeError(resp.StatusCode, body)
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return result, fmt.Errorf("%s %s: decode: %w", method, path, err)
	}
	return result, nil
}

func decodeError(status int, body []byte) *Error {
	e := &Error{Status: status}
	var eb protocol.ErrorBody
	if json.Unmarshal(body, &eb) == nil {
		e.Code = eb.ErrorCode
		e.Message = eb.Message
		if e.Message == "" {
			e.Message = eb.Error
		}
		return e
	}
	if len(body) > 200 {
		body = body[:200]
	}
	e.Message = string(body)
	return e
}
