package sync

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rjeczalik/notify"

	"github.com/entrydrive/syncbox/internal/utils"
	"github.com/entrydrive/syncbox/pkg/entrystate"
)

const (
	// watcherEventBuf sizes the raw fs event channel; notify drops events
	// on an unbuffered or full channel.
	watcherEventBuf = 128

	// watcherDebounce batches sidecar events before re-resolving, so an
	// agent's temp-write-then-rename produces one transition, not two.
	watcherDebounce = 100 * time.Millisecond

	// watcherLRUSize bounds the last-observed-state cache. Eviction only
	// costs a duplicate event for a path seen again later, never a wrong
	// one.
	watcherLRUSize = 4096
)

// StateChange reports an observed sync-state transition for one entry.
type StateChange struct {
	// Path is the absolute entry path.
	Path string
	// From is the previously observed state; StateNotSet when the entry
	// was never observed before.
	From entrystate.SyncState
	// To is the newly resolved state.
	To entrystate.SyncState
}

// Watcher follows sidecar files under a drive root and emits a StateChange
// whenever re-resolving an entry yields a different state than last observed.
// The resolver itself stays cache-free; the watcher's LRU exists only to
// suppress duplicate events and holds no authority over any state.
type Watcher struct {
	root      string
	fsEvents  chan notify.EventInfo
	changes   chan StateChange
	errs      chan error
	lastSeen  *lru.Cache[string, entrystate.SyncState]
	done      chan struct{}
}

func NewWatcher(root string) (*Watcher, error) {
	root, err := utils.ResolvePath(root)
	if err != nil {
		return nil, fmt.Errorf("resolve watch root: %w", err)
	}

	lastSeen, err := lru.New[string, entrystate.SyncState](watcherLRUSize)
	if err != nil {
		return nil, err
	}

	return &Watcher{
		root:     root,
		fsEvents: make(chan notify.EventInfo, watcherEventBuf),
		changes:  make(chan StateChange, watcherEventBuf),
		errs:     make(chan error, watcherEventBuf),
		lastSeen: lastSeen,
		done:     make(chan struct{}),
	}, nil
}

// Start begins watching recursively and launches the event loop. Stop (or
// context cancellation) ends it.
func (w *Watcher) Start(ctx context.Context) error {
	slog.Info("sidecar watcher start", "dir", w.root)

	if err := notify.Watch(w.root+"/...", w.fsEvents, notify.Create|notify.Write|notify.Remove|notify.Rename); err != nil {
		return fmt.Errorf("watch %s: %w", w.root, err)
	}

	go w.run(ctx)
	return nil
}

// Stop tears down the watch and closes the output channels.
func (w *Watcher) Stop() {
	notify.Stop(w.fsEvents)
	close(w.done)
	slog.Info("sidecar watcher stop")
}

// Events streams observed state transitions.
func (w *Watcher) Events() <-chan StateChange {
	return w.changes
}

// Errors streams malformed-record errors encountered while re-resolving.
func (w *Watcher) Errors() <-chan error {
	return w.errs
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.changes)
	defer close(w.errs)

	pending := mapset.NewThreadUnsafeSet[string]()
	debounce := time.NewTicker(watcherDebounce)
	defer debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			w.flush(pending)
			return
		case ev, ok := <-w.fsEvents:
			if !ok {
				return
			}
			if entry, isSidecar := entrystate.EntryPath(ev.Path()); isSidecar {
				pending.Add(entry)
			}
		case <-debounce.C:
			w.flush(pending)
		}
	}
}

// flush re-resolves every pending entry once and emits transitions.
func (w *Watcher) flush(pending mapset.Set[string]) {
	for _, entry := range pending.ToSlice() {
		pending.Remove(entry)

		state, err := entrystate.Resolve(entry)
		if err != nil {
			select {
			case w.errs <- err:
			default:
				slog.Warn("watcher error channel full, dropping", "error", err)
			}
			continue
		}

		prev, seen := w.lastSeen.Get(entry)
		if !seen {
			prev = entrystate.StateNotSet
		}
		if prev == state {
			// First observation of an entry without metadata, or a
			// rewrite that kept the same state: not a transition.
			w.lastSeen.Add(entry, state)
			continue
		}
		w.lastSeen.Add(entry, state)

		select {
		case w.changes <- StateChange{Path: entry, From: prev, To: state}:
		default:
			slog.Warn("watcher change channel full, dropping", "path", entry)
		}
	}
}
