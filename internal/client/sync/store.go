// Package sync is the agent-facing toolkit around the entrystate protocol:
// writing sidecar records, scanning a tree for entry states, and watching
// sidecars for state transitions. The resolver in pkg/entrystate stays a pure
// read-only query; everything that mutates or aggregates lives here.
package sync

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/gofrs/flock"

	"github.com/entrydrive/syncbox/internal/utils"
	"github.com/entrydrive/syncbox/pkg/entrystate"
)

const lockFile = ".syncbox.lock"

// Store writes sidecar records on behalf of the sync agent. Writes are
// atomic (temp file + rename in the sidecar's directory) and serialized
// across processes with a flock file at the store root, so a resolver never
// observes a half-written record.
type Store struct {
	root  string
	flock *flock.Flock
}

// NewStore opens a store rooted at the synchronized drive's directory. The
// root must exist; sidecars are written next to their entries.
func NewStore(root string) (*Store, error) {
	root, err := utils.ResolvePath(root)
	if err != nil {
		return nil, fmt.Errorf("resolve store root: %w", err)
	}
	if !utils.DirExists(root) {
		return nil, fmt.Errorf("store root %q is not a directory", root)
	}

	return &Store{
		root:  root,
		flock: flock.New(filepath.Join(root, lockFile)),
	}, nil
}

// Root returns the store's resolved root directory.
func (s *Store) Root() string {
	return s.root
}

// SetNeedSync records the need_sync flag for an entry, creating the sidecar
// if absent. Fields other than need_sync in an existing record are preserved
// so newer agents' extensions survive older tooling.
func (s *Store) SetNeedSync(entry string, needSync bool) error {
	entry = s.entryPath(entry)
	if entrystate.IsSidecarPath(entry) {
		return fmt.Errorf("refusing to write a sidecar for sidecar path %q", entry)
	}

	if err := s.flock.Lock(); err != nil {
		return fmt.Errorf("store lock: %w", err)
	}
	defer s.flock.Unlock()

	sidecar := entrystate.SidecarPath(entry)

	fields := map[string]json.RawMessage{}
	if data, err := os.ReadFile(sidecar); err == nil {
		if err := json.Unmarshal(data, &fields); err != nil {
			// A corrupt record is replaced wholesale; keeping its bytes
			// around would leave the entry permanently malformed.
			slog.Warn("replacing malformed sidecar", "path", sidecar, "error", err)
			fields = map[string]json.RawMessage{}
		}
	}

	flag, err := json.Marshal(needSync)
	if err != nil {
		return err
	}
	fields["need_sync"] = flag

	data, err := json.Marshal(fields)
	if err != nil {
		return err
	}

	if err := utils.EnsureParent(sidecar); err != nil {
		return err
	}
	return atomicWrite(sidecar, data)
}

// Remove deletes an entry's sidecar, returning the entry to the not_set
// state. Removing an absent sidecar is a no-op.
func (s *Store) Remove(entry string) error {
	entry = s.entryPath(entry)

	if err := s.flock.Lock(); err != nil {
		return fmt.Errorf("store lock: %w", err)
	}
	defer s.flock.Unlock()

	err := os.Remove(entrystate.SidecarPath(entry))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// entryPath anchors relative entry paths at the store root.
func (s *Store) entryPath(entry string) string {
	if filepath.IsAbs(entry) {
		return filepath.Clean(entry)
	}
	return filepath.Join(s.root, entry)
}

// atomicWrite lands data at path via a temp file and rename, so concurrent
// readers see either the old record or the new one, never a prefix.
func atomicWrite(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
