// Package response maps domain errors and live streams onto HTTP.
package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"CollegeNoticeBoard/internal/core"

	"github.com/labstack/echo/v4"
)

// Status picks the HTTP status for err.
func Status(err error) int {
	var verr *core.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error writes err as a JSON error body.
func Error(c echo.Context, err error) error {
	status := Status(err)
	var verr *core.ValidationError
	if errors.As(err, &verr) {
		return c.JSON(status, map[string]interface{}{"error": verr.Error(), "fields": verr.Fields})
	}
	msg := http.StatusText(status)
	if status != http.StatusInternalServerError {
		msg = err.Error()
	}
	return c.JSON(status, map[string]string{"error": msg})
}

// EventStream writes Server-Sent Events to an echo response.
type EventStream struct {
	res *echo.Response
}

// NewEventStream sends the event-stream headers.
func NewEventStream(c echo.Context) *EventStream {
	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Connection", "keep-alive")
	res.WriteHeader(http.StatusOK)
	res.Flush()
	return &EventStream{res: res}
}

// Send writes one event with v encoded as JSON.
func (s *EventStream) Send(event string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", event, err)
	}
	if _, err := fmt.Fprintf(s.res, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	s.res.Flush()
	return nil
}

// SendError writes a terminal error event.
func (s *EventStream) SendError(err error) error {
	return s.Send("error", map[string]string{"error": err.Error()})
}
