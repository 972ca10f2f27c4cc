package sync

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrydrive/syncbox/pkg/entrystate"
)

// seedDrive builds a small tree: one entry per state plus a malformed record
// and an ignored file.
func seedDrive(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	write := func(rel, content string) {
		t.Helper()
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	write("fresh.txt", "no sidecar yet")
	write("synced.txt", "up to date")
	write("synced.txt"+entrystate.Suffix, `{"need_sync": false}`)
	write("sub/stale.txt", "needs refetch")
	write("sub/stale.txt"+entrystate.Suffix, `{"need_sync": true}`)
	write("corrupt.txt", "whatever")
	write("corrupt.txt"+entrystate.Suffix, `not json`)
	write("scratch.tmp", "ignored by default rules")

	return root
}

func TestScanner_Summary(t *testing.T) {
	root := seedDrive(t)

	scanner, err := NewScanner(root)
	require.NoError(t, err)

	result, err := scanner.Scan(t.Context())
	require.NoError(t, err)

	assert.Len(t, result.Entries, 4, "sidecars and ignored files must not be reported")
	assert.Equal(t, 1, result.Summary.NotSet)
	assert.Equal(t, 1, result.Summary.Synced)
	assert.Equal(t, 1, result.Summary.Refresh)
	assert.Equal(t, 1, result.Summary.Malformed)
	assert.NotZero(t, result.Summary.TotalBytes)

	states := map[string]entrystate.SyncState{}
	for _, e := range result.Entries {
		states[e.Path] = e.State
		if e.Path == "corrupt.txt" {
			assert.ErrorIs(t, e.Err, entrystate.ErrMalformedRecord)
		} else {
			assert.NoError(t, e.Err)
		}
	}
	assert.Equal(t, entrystate.StateNotSet, states["fresh.txt"])
	assert.Equal(t, entrystate.StateSynced, states["synced.txt"])
	assert.Equal(t, entrystate.StateRefresh, states["sub/stale.txt"])
}

func TestScanner_Pattern(t *testing.T) {
	root := seedDrive(t)

	scanner, err := NewScanner(root)
	require.NoError(t, err)
	scanner.Pattern = "sub/**"

	result, err := scanner.Scan(t.Context())
	require.NoError(t, err)

	require.Len(t, result.Entries, 1)
	assert.Equal(t, "sub/stale.txt", result.Entries[0].Path)
	assert.Equal(t, entrystate.StateRefresh, result.Entries[0].State)
}

func TestScanner_InvalidPattern(t *testing.T) {
	root := seedDrive(t)

	scanner, err := NewScanner(root)
	require.NoError(t, err)
	scanner.Pattern = "[" // unterminated class

	_, err = scanner.Scan(t.Context())
	assert.Error(t, err)
}

func TestScanner_IgnoreFileRules(t *testing.T) {
	root := seedDrive(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, IgnoreFileName), []byte("sub/\n"), 0o644))

	scanner, err := NewScanner(root)
	require.NoError(t, err)

	result, err := scanner.Scan(t.Context())
	require.NoError(t, err)

	for _, e := range result.Entries {
		assert.NotContains(t, e.Path, "sub/")
	}
}

func TestNewScanner_MissingRoot(t *testing.T) {
	_, err := NewScanner(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
