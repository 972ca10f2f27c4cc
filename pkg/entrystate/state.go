// Package entrystate implements the entry sync-state resolution protocol for
// a synchronized virtual drive. The sync agent records each entry's remote
// status in a JSON sidecar file next to the entry; this package derives the
// sidecar path, reads the record, and classifies the entry as not-set, synced
// or refresh. It is the contract shared by driver shims, agents and tooling,
// and it never writes anything.
package entrystate

import (
	"fmt"

	"github.com/goccy/go-json"
)

// SyncState classifies an entry's relationship to its remote source of truth
// at the moment the sidecar was sampled.
type SyncState int

const (
	// StateNotSet means no sync metadata exists (or none is readable) for the entry.
	StateNotSet SyncState = iota
	// StateSynced means the local copy matches the synchronized source.
	StateSynced
	// StateRefresh means the local copy is stale and must be refetched.
	StateRefresh
)

func (s SyncState) String() string {
	switch s {
	case StateNotSet:
		return "not_set"
	case StateSynced:
		return "synced"
	case StateRefresh:
		return "refresh"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// MarshalJSON encodes the state as its string form, matching what the
// control-plane and CLI surfaces print.
func (s SyncState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}
