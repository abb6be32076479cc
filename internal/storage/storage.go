package storage

import (
	"fmt"
	"strings"
	"time"
)

// Package storage keeps an audit journal of request outcomes. Entries are
// never read back to answer a request.

// Entry is one recorded outcome.
type Entry struct {
	Seq         uint64    `json:"seq"`
	Mode        string    `json:"mode"`
	Locator     string    `json:"locator"`
	Title       string    `json:"title,omitempty"`
	ErrorKind   string    `json:"error_kind,omitempty"`
	Error       string    `json:"error,omitempty"`
	CompletedAt time.Time `json:"completed_at"`
}

// Journal records outcomes and lists the most recent ones.
type Journal interface {
	Close() error
	Record(e Entry) error
	Recent(limit int) ([]Entry, error)
}

// Options controls retention for concrete journal implementations.
type Options struct {
	EntryTTL        time.Duration
	CleanupInterval time.Duration
}

const (
	defaultEntryTTL        = 7 * 24 * time.Hour
	defaultCleanupInterval = 6 * time.Hour
)

// Opener opens the configured journal for one unit of work. Callers close
// the returned Journal as soon as the work is done.
type Opener func() (Journal, error)

// NewOpener validates the journal settings up front and returns an Opener.
// A bbolt file is locked only while a Journal returned by the Opener is
// open, so concurrent processes can share one path.
func NewOpener(typ, path string, opts Options) (Opener, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return func() (Journal, error) { return noopJournal{}, nil }, nil
	case "bbolt":
		path = strings.TrimSpace(path)
		if path == "" {
			return nil, fmt.Errorf("bbolt journal requires a path")
		}
		return func() (Journal, error) { return openBolt(path, opts) }, nil
	default:
		return nil, fmt.Errorf("unsupported journal type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.EntryTTL <= 0 {
		opts.EntryTTL = defaultEntryTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

type noopJournal struct{}

func (noopJournal) Close() error                { return nil }
func (noopJournal) Record(Entry) error          { return nil }
func (noopJournal) Recent(int) ([]Entry, error) { return nil, nil }
