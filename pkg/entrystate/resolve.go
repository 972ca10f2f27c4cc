package entrystate

import (
	"fmt"
	"io"
	"io/fs"
	"os"
)

// Resolve classifies the sync state of the entry at the given path by reading
// its sidecar record. It is a pure query: one open, one read, no retries, no
// caching, and the sidecar is never created, modified or deleted.
//
// Any failure to open or read the sidecar (not found, permission denied,
// I/O error) folds into (StateNotSet, nil). An unreadable record and a
// missing one are operationally the same thing: the entry has no usable sync
// metadata. A sidecar that reads fine but does not decode is different
// evidence entirely and surfaces as an error wrapping ErrMalformedRecord,
// with StateNotSet as the accompanying state.
//
// Two calls in quick succession may observe different states if the sync
// agent rewrites the sidecar in between; the result is a best-effort
// point-in-time snapshot, nothing more.
func Resolve(entry string) (SyncState, error) {
	f, err := os.Open(SidecarPath(entry))
	if err != nil {
		return StateNotSet, nil
	}
	defer f.Close()

	return classify(f, entry)
}

// ResolveFS is Resolve against an fs.FS. Driver shims that virtualize host
// reads hand their filesystem in here; semantics are otherwise identical.
func ResolveFS(fsys fs.FS, entry string) (SyncState, error) {
	f, err := fsys.Open(SidecarPath(entry))
	if err != nil {
		return StateNotSet, nil
	}
	defer f.Close()

	return classify(f, entry)
}

func classify(r io.Reader, entry string) (SyncState, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		// Mid-read failures get the same treatment as a failed open.
		return StateNotSet, nil
	}

	rec, err := DecodeRecord(data)
	if err != nil {
		return StateNotSet, fmt.Errorf("entry %s: %w", entry, err)
	}
	return rec.State(), nil
}
