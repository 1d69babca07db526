package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

var (
	// ErrUnauthorized marks a 401 from the backend. Callers drop the session token and send the user to /login.
	ErrUnauthorized = errors.New("api: unauthorized")
	// ErrNotFound marks a 404.
	ErrNotFound = errors.New("api: not found")
	// ErrUnavailable wraps transport failures.
	ErrUnavailable = errors.New("api: backend unavailable")
)

// Error is a non-2xx backend response. Message is the server-supplied text, possibly empty.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: status %d", e.Status)
	}
	return fmt.Sprintf("api: status %d: %s", e.Status, e.Message)
}

// Is lets errors.Is match status-class sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}

// Message returns the server-supplied message of err, or fallback when there is none.
func Message(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && strings.TrimSpace(apiErr.Message) != "" {
		return apiErr.Message
	}
	return fallback
}

type errorPayload struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	msg := ""
	var payload errorPayload
	if err := json.Unmarshal(raw, &payload); err == nil {
		msg = strings.TrimSpace(payload.Error)
		if msg == "" {
			msg = strings.TrimSpace(payload.Message)
		}
	} else if !strings.HasPrefix(strings.TrimSpace(string(raw)), "<") {
		msg = strings.TrimSpace(string(raw))
		if len(msg) > 256 {
			msg = msg[:256]
		}
	}
	return &Error{Status: resp.StatusCode, Message: msg}
}
