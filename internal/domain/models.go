package domain

import (
	"fmt"
	"strings"
)

// Domain contains core models shared by sessions, the decoder and the coordinator.

// Mode selects which session serves a request.
type Mode int

const (
	ModeLive Mode = iota + 1
	ModeFixture
)

// String returns the config/CLI spelling of the mode.
func (m Mode) String() string {
	switch m {
	case ModeLive:
		return "live"
	case ModeFixture:
		return "fixture"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode maps "live"/"fixture" (case-insensitive) to a Mode.
func ParseMode(raw string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "live", "real", "network":
		return ModeLive, nil
	case "fixture", "fake", "mock":
		return ModeFixture, nil
	default:
		return 0, fmt.Errorf("unknown session mode %q", raw)
	}
}

// APIResponse is the decoded resource. Only the decoder builds one.
type APIResponse struct {
	Title string `json:"title"`
}

// Outcome is the single result of one fetch-and-decode run.
// Exactly one of Response or Err is meaningful: Err == nil means success.
type Outcome struct {
	Mode     Mode
	Locator  string
	Response APIResponse
	Err      error
}

// Success builds a successful outcome.
func Success(mode Mode, locator string, resp APIResponse) Outcome {
	return Outcome{Mode: mode, Locator: locator, Response: resp}
}

// Failure builds a failed outcome. A nil err is replaced so the outcome
// can never read as a success without a decoded response.
func Failure(mode Mode, locator string, err error) Outcome {
	if err == nil {
		err = fmt.Errorf("request failed without a cause")
	}
	return Outcome{Mode: mode, Locator: locator, Err: err}
}

// OK reports whether the outcome carries a decoded response.
func (o Outcome) OK() bool { return o.Err == nil }
