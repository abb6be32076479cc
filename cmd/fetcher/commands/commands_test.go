package commands

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/samvad-hq/samvad-title-fetcher/internal/config"
	"github.com/samvad-hq/samvad-title-fetcher/internal/domain"
	"github.com/samvad-hq/samvad-title-fetcher/internal/logger"
	"github.com/samvad-hq/samvad-title-fetcher/internal/storage"
)

type fakeRuntime struct {
	outcomes map[domain.Mode]domain.Outcome
	entries  []storage.Entry
	modes    []domain.Mode
	limit    int
	closed   bool
}

func (f *fakeRuntime) Fetch(_ context.Context, mode domain.Mode) domain.Outcome {
	f.modes = append(f.modes, mode)
	return f.outcomes[mode]
}

func (f *fakeRuntime) History(limit int) ([]storage.Entry, error) {
	f.limit = limit
	return f.entries, nil
}

func (f *fakeRuntime) Close() error {
	f.closed = true
	return nil
}

func install(t *testing.T, rt *fakeRuntime) {
	t.Helper()
	prevLoad, prevNew := loadConfig, newRuntime
	loadConfig = func() (*config.Config, error) {
		return &config.Config{AppName: "test", LogLevel: "error"}, nil
	}
	newRuntime = func(context.Context, *config.Config, logger.Logger) (runtime, error) {
		return rt, nil
	}
	t.Cleanup(func() {
		loadConfig, newRuntime = prevLoad, prevNew
		logger.S = nil
	})
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestFetchPrintsFixtureTitleByDefault(t *testing.T) {
	rt := &fakeRuntime{outcomes: map[domain.Mode]domain.Outcome{
		domain.ModeFixture: domain.Success(domain.ModeFixture, "fake_response", domain.APIResponse{Title: "delectus aut autem"}),
	}}
	install(t, rt)

	stdout, _, err := execute(t, "fetch")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if stdout != "delectus aut autem\n" {
		t.Fatalf("stdout = %q", stdout)
	}
	if len(rt.modes) != 1 || rt.modes[0] != domain.ModeFixture || !rt.closed {
		t.Fatalf("unexpected runtime use %+v", rt)
	}
}

func TestFetchLiveFailurePrintsError(t *testing.T) {
	cause := domain.NewFetchError(domain.Transport, "https://example.com", errors.New("status 503"))
	rt := &fakeRuntime{outcomes: map[domain.Mode]domain.Outcome{
		domain.ModeLive: domain.Failure(domain.ModeLive, "https://example.com", cause),
	}}
	install(t, rt)

	stdout, stderr, err := execute(t, "fetch", "--live")
	if err == nil || !IsReported(err) {
		t.Fatalf("expected reported failure, got %v", err)
	}
	if stdout != "error\n" {
		t.Fatalf("stdout = %q", stdout)
	}
	if !strings.HasPrefix(stderr, "transport:") {
		t.Fatalf("stderr = %q", stderr)
	}
	if rt.modes[0] != domain.ModeLive || !rt.closed {
		t.Fatalf("unexpected runtime use %+v", rt)
	}
}

func TestHistoryPrintsEntries(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	rt := &fakeRuntime{entries: []storage.Entry{
		{Mode: "fixture", Locator: "fake_response", Title: "delectus aut autem", CompletedAt: at},
		{Mode: "live", Locator: "https://example.com", ErrorKind: "transport", CompletedAt: at},
	}}
	install(t, rt)

	stdout, _, err := execute(t, "history", "--limit", "2")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if rt.limit != 2 {
		t.Fatalf("limit = %d", rt.limit)
	}
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %q", stdout)
	}
	if !strings.Contains(lines[0], "delectus aut autem") || !strings.Contains(lines[1], "error (transport)") {
		t.Fatalf("unexpected output %q", stdout)
	}
}

func TestHistoryRejectsNonPositiveLimit(t *testing.T) {
	install(t, &fakeRuntime{})
	if _, _, err := execute(t, "history", "--limit", "0"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestConfigErrorsAreReturned(t *testing.T) {
	install(t, &fakeRuntime{})
	loadConfig = func() (*config.Config, error) { return nil, errors.New("bad env") }
	_, _, err := execute(t, "fetch")
	if err == nil || IsReported(err) || !strings.Contains(err.Error(), "bad env") {
		t.Fatalf("unexpected error %v", err)
	}
}
