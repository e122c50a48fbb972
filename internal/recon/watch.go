package recon

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/fsnotify/fsnotify"
)

var errNotSettled = errors.New("file still changing")

// WatcherConfig configures a Watcher.
type WatcherConfig struct {
	Dir        string
	Extensions []string // Only events for these extensions trigger a run

	Debounce       time.Duration // Quiet period after the last event before running (default 2s)
	SettleAttempts uint          // Size checks per changed file before giving up (minimum 2)
	SettleDelay    time.Duration // Delay between size checks (default 500ms)

	Logger *slog.Logger
}

// Watcher re-runs a reconciliation when documents in a directory change.
type Watcher struct {
	dir            string
	exts           map[string]bool
	debounce       time.Duration
	settleAttempts uint
	settleDelay    time.Duration
	logger         *slog.Logger
	trigger        chan struct{}
}

// NewWatcher creates a watcher for cfg.Dir.
func NewWatcher(cfg WatcherConfig) *Watcher {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	exts := make(map[string]bool, len(cfg.Extensions))
	for _, e := range cfg.Extensions {
		e = strings.ToLower(e)
		if e != "" && !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		exts[e] = true
	}
	w := &Watcher{
		dir:            cfg.Dir,
		exts:           exts,
		debounce:       cfg.Debounce,
		settleAttempts: cfg.SettleAttempts,
		settleDelay:    cfg.SettleDelay,
		logger:         logger.With("watch_dir", cfg.Dir),
		trigger:        make(chan struct{}, 1),
	}
	if w.debounce <= 0 {
		w.debounce = 2 * time.Second
	}
	if w.settleAttempts < 2 {
		w.settleAttempts = 2
	}
	if w.settleDelay <= 0 {
		w.settleDelay = 500 * time.Millisecond
	}
	return w
}

// Trigger schedules a run as if a document had changed, e.g. after a
// configuration reload. It never blocks.
func (w *Watcher) Trigger() {
	select {
	case w.trigger <- struct{}{}:
	default:
	}
}

// Run calls run once, then again after each debounced batch of changes,
// until ctx is cancelled. Failed runs are logged and do not stop watching.
func (w *Watcher) Run(ctx context.Context, run func(context.Context) error) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fw.Close()
	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}

	w.runOnce(ctx, run)

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()
	pending := make(map[string]struct{})

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			w.logger.Debug("document changed", "path", ev.Name, "op", ev.Op.String())
			pending[ev.Name] = struct{}{}
			timer.Reset(w.debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)

		case <-w.trigger:
			timer.Reset(w.debounce)

		case <-timer.C:
			for path := range pending {
				if err := w.settle(ctx, path); err != nil && !errors.Is(err, fs.ErrNotExist) {
					w.logger.Warn("document did not settle", "path", path, "error", err)
				}
			}
			clear(pending)
			w.runOnce(ctx, run)
		}
	}
}

func (w *Watcher) runOnce(ctx context.Context, run func(context.Context) error) {
	if ctx.Err() != nil {
		return
	}
	if err := run(ctx); err != nil {
		if errors.Is(err, ErrNoDocuments) {
			w.logger.Info("waiting for documents", "error", err)
			return
		}
		w.logger.Error("run failed", "error", err)
	}
}

// relevant reports whether ev concerns a watched document. Hidden files are
// ignored, which covers temporary files written next to outputs.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}
	base := filepath.Base(ev.Name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	return w.exts[strings.ToLower(filepath.Ext(base))]
}

// settle waits until the size of path stops changing between two checks.
func (w *Watcher) settle(ctx context.Context, path string) error {
	last := int64(-1)
	return retry.Do(
		func() error {
			info, err := os.Stat(path)
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					return retry.Unrecoverable(err)
				}
				return err
			}
			size := info.Size()
			if size != last {
				last = size
				return errNotSettled
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(w.settleAttempts),
		retry.Delay(w.settleDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
}
