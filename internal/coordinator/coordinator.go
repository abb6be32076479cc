package coordinator

import (
	"context"
	"errors"
	"time"

	"github.com/samvad-hq/samvad-title-fetcher/internal/domain"
	"github.com/samvad-hq/samvad-title-fetcher/internal/logger"
	"github.com/samvad-hq/samvad-title-fetcher/pkg/decoder"
	"github.com/samvad-hq/samvad-title-fetcher/pkg/session"
)

// DecodeFunc turns a raw payload into a response.
type DecodeFunc func(payload []byte) (domain.APIResponse, error)

// Coordinator runs one fetch-and-decode operation per call. It holds no
// per-request state, so concurrent Run calls are independent.
type Coordinator struct {
	sessions session.Registry
	decode   DecodeFunc
	log      logger.Logger
}

// New wires a coordinator. A nil decode uses decoder.Decode.
func New(sessions session.Registry, decode DecodeFunc, log logger.Logger) *Coordinator {
	if decode == nil {
		decode = decoder.Decode
	}
	return &Coordinator{
		sessions: sessions,
		decode:   decode,
		log:      logger.Ensure(log),
	}
}

// Run selects the session for mode, fetches locator and decodes the payload.
// A fetch failure returns immediately without decoding. No step is retried.
func (c *Coordinator) Run(ctx context.Context, mode domain.Mode, locator string) domain.Outcome {
	if c == nil || c.sessions == nil {
		return domain.Failure(mode, locator, errors.New("coordinator is not initialized"))
	}
	if ctx == nil {
		ctx = context.Background()
	}

	start := time.Now()
	s, err := c.sessions.SessionFor(mode)
	if err != nil {
		return c.fail(mode, locator, start, err)
	}

	payload, err := s.Fetch(ctx, locator)
	if err != nil {
		return c.fail(mode, locator, start, err)
	}

	resp, err := c.decode(payload)
	if err != nil {
		return c.fail(mode, locator, start, err)
	}

	c.log.InfoObj("request succeeded", "request_result", map[string]any{
		"mode":          mode.String(),
		"locator":       locator,
		"payload_bytes": len(payload),
		"elapsed_ms":    time.Since(start).Milliseconds(),
	})
	return domain.Success(mode, locator, resp)
}

func (c *Coordinator) fail(mode domain.Mode, locator string, start time.Time, err error) domain.Outcome {
	c.log.WarnObj("request failed", "request_error", map[string]any{
		"mode":       mode.String(),
		"locator":    locator,
		"error_kind": domain.ErrorKind(err),
		"error":      err.Error(),
		"elapsed_ms": time.Since(start).Milliseconds(),
	})
	return domain.Failure(mode, locator, err)
}
