package entrystate

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
)

// ErrMalformedRecord marks a sidecar that opened and read fine but does not
// decode: invalid JSON, a missing need_sync field, or a non-boolean value.
// This is deliberately distinct from the unreadable case, which folds into
// StateNotSet: corrupt metadata is evidence of agent or driver malfunction
// and callers should be able to tell it apart from "no data recorded".
var ErrMalformedRecord = errors.New("malformed entry info record")

// Record is the sidecar document written by the sync agent. Fields other
// than need_sync may be present and are ignored here, so agents can extend
// the record without breaking older resolvers.
type Record struct {
	NeedSync bool `json:"need_sync"`
}

// State maps the record onto its sync state. The mapping is total: any
// successfully decoded record is either synced or refresh.
func (r *Record) State() SyncState {
	if r.NeedSync {
		return StateRefresh
	}
	return StateSynced
}

// DecodeRecord parses sidecar bytes. Unknown fields are skipped; a missing
// or non-boolean need_sync is rejected rather than defaulted.
func DecodeRecord(data []byte) (*Record, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}

	raw, ok := fields["need_sync"]
	if !ok {
		return nil, fmt.Errorf("%w: missing need_sync field", ErrMalformedRecord)
	}

	// Unmarshal treats null as a no-op, so it has to be rejected explicitly.
	var rec Record
	if string(raw) == "null" {
		return nil, fmt.Errorf("%w: need_sync is not a boolean", ErrMalformedRecord)
	}
	if err := json.Unmarshal(raw, &rec.NeedSync); err != nil {
		return nil, fmt.Errorf("%w: need_sync is not a boolean", ErrMalformedRecord)
	}
	return &rec, nil
}
