package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestFetchErrorMatchesSentinelByKind(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NewFetchError(Transport, "https://example.com", errors.New("dial tcp: refused")))

	if !errors.Is(err, ErrTransport) {
		t.Fatalf("expected transport error to match ErrTransport")
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrUnreadable) {
		t.Fatalf("transport error must not match other fetch kinds")
	}
	if errors.Is(err, ErrMalformed) {
		t.Fatalf("fetch error must not match decode error")
	}
}

func TestDecodeErrorIsDisjointFromFetchErrors(t *testing.T) {
	err := &DecodeError{Err: errors.New("missing title")}
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected decode error to match ErrMalformed")
	}
	if errors.Is(err, ErrNotFound) {
		t.Fatalf("decode error matched a fetch kind")
	}
}

func TestErrorKindLabels(t *testing.T) {
	cases := map[string]error{
		"":           nil,
		"not_found":  NewFetchError(NotFound, "x", nil),
		"transport":  NewFetchError(Transport, "x", nil),
		"unreadable": NewFetchError(Unreadable, "x", nil),
		"malformed":  &DecodeError{},
		"unknown":    errors.New("boom"),
	}
	for want, err := range cases {
		if got := ErrorKind(err); got != want {
			t.Errorf("ErrorKind(%v) = %q want %q", err, got, want)
		}
	}
}

func TestParseMode(t *testing.T) {
	if m, err := ParseMode(" Live "); err != nil || m != ModeLive {
		t.Fatalf("ParseMode live = %v, %v", m, err)
	}
	if m, err := ParseMode("fixture"); err != nil || m != ModeFixture {
		t.Fatalf("ParseMode fixture = %v, %v", m, err)
	}
	if _, err := ParseMode("carrier-pigeon"); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}

func TestFailureNeverLooksSuccessful(t *testing.T) {
	if Failure(ModeLive, "x", nil).OK() {
		t.Fatalf("failure with nil cause reported OK")
	}
	if !Success(ModeFixture, "x", APIResponse{Title: "t"}).OK() {
		t.Fatalf("success reported not OK")
	}
}
