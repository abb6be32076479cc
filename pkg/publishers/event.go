package publishers

import (
	"time"

	"github.com/samvad-hq/samvad-title-fetcher/internal/domain"
)

// Event represents one request outcome published downstream.
type Event struct {
	Mode        string    `json:"mode"`
	Locator     string    `json:"locator"`
	Success     bool      `json:"success"`
	Title       string    `json:"title,omitempty"`
	ErrorKind   string    `json:"error_kind,omitempty"`
	Error       string    `json:"error,omitempty"`
	CompletedAt time.Time `json:"completed_at"`
}

// NewEvent constructs an Event for the given outcome.
func NewEvent(out domain.Outcome) Event {
	evt := Event{
		Mode:        out.Mode.String(),
		Locator:     out.Locator,
		Success:     out.OK(),
		CompletedAt: time.Now().UTC(),
	}
	if out.OK() {
		evt.Title = out.Response.Title
	} else {
		evt.ErrorKind = domain.ErrorKind(out.Err)
		evt.Error = out.Err.Error()
	}
	return evt
}

// attributes are the routing hints sent alongside the payload by message brokers.
func (e Event) attributes() map[string]string {
	result := "failure"
	if e.Success {
		result = "success"
	}
	attrs := map[string]string{
		"mode":    e.Mode,
		"outcome": result,
	}
	if e.ErrorKind != "" {
		attrs["error_kind"] = e.ErrorKind
	}
	return attrs
}
