package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/samvad-hq/samvad-title-fetcher/internal/config"
	"github.com/samvad-hq/samvad-title-fetcher/internal/coordinator"
	"github.com/samvad-hq/samvad-title-fetcher/internal/domain"
	"github.com/samvad-hq/samvad-title-fetcher/internal/logger"
	"github.com/samvad-hq/samvad-title-fetcher/internal/storage"
	"github.com/samvad-hq/samvad-title-fetcher/pkg/fixtures"
	"github.com/samvad-hq/samvad-title-fetcher/pkg/httpclient"
	"github.com/samvad-hq/samvad-title-fetcher/pkg/publishers"
	"github.com/samvad-hq/samvad-title-fetcher/pkg/session"
)

// App wires the coordinator to its configured locators and to the outcome
// sinks (journal and publishers). It is what the CLI shell talks to.
type App struct {
	cfg         *config.Config
	coordinator *coordinator.Coordinator
	journal     storage.Opener
	fanout      *publishers.Fanout
	log         logger.Logger
}

// Option overrides a component built by New; used by tests.
type Option func(*options)

type options struct {
	httpClient httpclient.Client
	fixtures   session.FixtureResolver
}

// WithHTTPClient replaces the resty client used by the live session.
func WithHTTPClient(c httpclient.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithFixtures replaces the fixture store used by the fixture session.
func WithFixtures(r session.FixtureResolver) Option {
	return func(o *options) { o.fixtures = r }
}

// New builds the runtime from config.
func New(ctx context.Context, cfg *config.Config, log logger.Logger, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	log = logger.Ensure(log)
	if ctx == nil {
		ctx = context.Background()
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	if o.httpClient == nil {
		o.httpClient = httpclient.NewRestyClient(cfg.HTTPTimeout)
	}
	if o.fixtures == nil {
		store, err := loadFixtures(cfg.FixturesDir)
		if err != nil {
			return nil, fmt.Errorf("load fixtures: %w", err)
		}
		o.fixtures = store
		log.InfoObj("fixtures loaded", "fixtures_meta", map[string]any{
			"dir":   cfg.FixturesDir,
			"names": store.Names(),
		})
	}

	live := session.NewLiveSession(o.httpClient, map[string]string{
		"User-Agent": cfg.UserAgent,
		"Accept":     cfg.Accept,
	})
	sessions := session.NewModeRegistry(live, session.NewFixtureSession(o.fixtures))

	fanout, err := buildFanout(ctx, cfg.PublishersFile, log)
	if err != nil {
		return nil, err
	}

	journal, err := storage.NewOpener(cfg.JournalType, cfg.BBoltPath, storage.Options{
		EntryTTL:        cfg.JournalTTL,
		CleanupInterval: cfg.JournalCleanupInterval,
	})
	if err != nil {
		_ = fanout.Close()
		return nil, fmt.Errorf("init journal: %w", err)
	}
	log.InfoObj("journal configured", "journal_config", map[string]any{
		"type":                     cfg.JournalType,
		"path":                     cfg.BBoltPath,
		"entry_ttl_seconds":        int(cfg.JournalTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.JournalCleanupInterval.Seconds()),
	})

	return &App{
		cfg:         cfg,
		coordinator: coordinator.New(sessions, nil, log),
		journal:     journal,
		fanout:      fanout,
		log:         log,
	}, nil
}

func loadFixtures(dir string) (*fixtures.Store, error) {
	if dir == "" {
		return fixtures.Bundled(), nil
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("fixtures_dir %q is not a directory", dir)
	}
	return fixtures.New(os.DirFS(dir))
}

func buildFanout(ctx context.Context, path string, log logger.Logger) (*publishers.Fanout, error) {
	if path == "" {
		return publishers.NewFanout(nil), nil
	}

	reg, err := publishers.LoadRegistry(path)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}
	enabled := reg.Enabled()
	fanout, err := publishers.DefaultRegistry().Fanout(ctx, enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, p := range enabled {
		summaries = append(summaries, map[string]string{"id": p.ID, "type": p.Type})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(summaries),
		"publishers": summaries,
	})
	return fanout, nil
}

// Locator returns the configured locator for mode.
func (a *App) Locator(mode domain.Mode) string {
	if mode == domain.ModeFixture {
		return a.cfg.FixtureName
	}
	return a.cfg.LiveURL
}

// Fetch runs one request in mode and reports the outcome to the journal and
// publishers. Sink failures are logged; they never change the outcome.
func (a *App) Fetch(ctx context.Context, mode domain.Mode) domain.Outcome {
	if a == nil || a.coordinator == nil {
		return domain.Failure(mode, "", errors.New("app is not initialized"))
	}

	out := a.coordinator.Run(ctx, mode, a.Locator(mode))
	a.report(ctx, out)
	return out
}

func (a *App) report(ctx context.Context, out domain.Outcome) {
	evt := publishers.NewEvent(out)

	a.record(storage.Entry{
		Mode:        evt.Mode,
		Locator:     evt.Locator,
		Title:       evt.Title,
		ErrorKind:   evt.ErrorKind,
		Error:       evt.Error,
		CompletedAt: evt.CompletedAt,
	})

	if a.fanout.Size() == 0 {
		return
	}
	res, err := a.fanout.Publish(ctx, evt)
	if err != nil {
		a.log.ErrorObj("outcome publish failed", "publish_error", map[string]any{
			"delivered": res.Delivered,
			"skipped":   res.Skipped,
			"error":     err.Error(),
		})
		return
	}
	a.log.DebugObj("outcome published", "publish_result", map[string]any{
		"delivered": res.Delivered,
		"skipped":   res.Skipped,
	})
}

// record holds the journal open only for the write so concurrent runs
// sharing a bbolt file take turns instead of failing.
func (a *App) record(e storage.Entry) {
	j, err := a.journal()
	if err != nil {
		a.log.WarnObj("journal unavailable, outcome not recorded", "journal_error", map[string]any{
			"locator": e.Locator,
			"error":   err.Error(),
		})
		return
	}
	defer func() {
		if err := j.Close(); err != nil {
			a.log.WarnObj("journal close failed", "error", err.Error())
		}
	}()
	if err := j.Record(e); err != nil {
		a.log.ErrorObj("journal update failed", "error", err.Error())
	}
}

// History returns up to limit journal entries, newest first.
func (a *App) History(limit int) ([]storage.Entry, error) {
	if a == nil || a.journal == nil {
		return nil, errors.New("app is not initialized")
	}
	j, err := a.journal()
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	entries, err := j.Recent(limit)
	if cerr := j.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("close journal: %w", cerr)
	}
	return entries, err
}

// Close releases publisher connections. The journal is never held open
// between calls.
func (a *App) Close() error {
	if a == nil {
		return nil
	}
	return a.fanout.Close()
}
