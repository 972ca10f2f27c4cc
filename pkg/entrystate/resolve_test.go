package entrystate

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSidecar(t *testing.T, entry string, content string) string {
	t.Helper()
	sc := SidecarPath(entry)
	require.NoError(t, os.WriteFile(sc, []byte(content), 0o644))
	return sc
}

func TestResolve_NoSidecar(t *testing.T) {
	dir := t.TempDir()
	entry := filepath.Join(dir, "foo.txt")

	state, err := Resolve(entry)
	require.NoError(t, err)
	assert.Equal(t, StateNotSet, state)
}

func TestResolve_NeedSyncTrue(t *testing.T) {
	dir := t.TempDir()
	entry := filepath.Join(dir, "bar.txt")
	writeSidecar(t, entry, `{"need_sync": true}`)

	state, err := Resolve(entry)
	require.NoError(t, err)
	assert.Equal(t, StateRefresh, state)
}

func TestResolve_NeedSyncFalse(t *testing.T) {
	dir := t.TempDir()
	entry := filepath.Join(dir, "baz.txt")
	writeSidecar(t, entry, `{"need_sync": false}`)

	state, err := Resolve(entry)
	require.NoError(t, err)
	assert.Equal(t, StateSynced, state)
}

func TestResolve_MalformedRecord(t *testing.T) {
	dir := t.TempDir()

	cases := map[string]string{
		"not json":         `not json`,
		"missing field":    `{"size": 42}`,
		"wrong field type": `{"need_sync": "yes"}`,
		"null field":       `{"need_sync": null}`,
		"empty file":       ``,
	}

	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			entry := filepath.Join(dir, "corrupt-"+name+".txt")
			writeSidecar(t, entry, content)

			state, err := Resolve(entry)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedRecord)
			assert.Equal(t, StateNotSet, state)
		})
	}
}

func TestResolve_UnreadableSidecarIsNotSet(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("file permissions do not apply to root")
	}

	dir := t.TempDir()
	entry := filepath.Join(dir, "locked.txt")
	sc := writeSidecar(t, entry, `{"need_sync": true}`)
	require.NoError(t, os.Chmod(sc, 0o000))
	t.Cleanup(func() { _ = os.Chmod(sc, 0o644) })

	state, err := Resolve(entry)
	require.NoError(t, err, "unreadable sidecar must fold into not_set, not an error")
	assert.Equal(t, StateNotSet, state)
}

func TestResolve_IgnoresExtraFields(t *testing.T) {
	dir := t.TempDir()
	entry := filepath.Join(dir, "rich.txt")
	writeSidecar(t, entry, `{"need_sync": false, "etag": "abc123", "version": 7, "nested": {"a": [1, 2]}}`)

	state, err := Resolve(entry)
	require.NoError(t, err)
	assert.Equal(t, StateSynced, state)
}

func TestResolve_NeverMutatesSidecar(t *testing.T) {
	dir := t.TempDir()
	entry := filepath.Join(dir, "pristine.txt")
	content := `{"need_sync": true, "etag": "keep-me"}`
	sc := writeSidecar(t, entry, content)

	before, err := os.Stat(sc)
	require.NoError(t, err)

	for range 3 {
		_, err := Resolve(entry)
		require.NoError(t, err)
	}

	after, err := os.Stat(sc)
	require.NoError(t, err)
	assert.Equal(t, before.ModTime(), after.ModTime())

	data, err := os.ReadFile(sc)
	require.NoError(t, err)
	assert.Equal(t, content, string(data))
}

func TestResolveFS(t *testing.T) {
	fsys := fstest.MapFS{
		"vol/bar.txt" + Suffix: {Data: []byte(`{"need_sync": true}`)},
		"vol/baz.txt" + Suffix: {Data: []byte(`{"need_sync": false}`)},
		"vol/bad.txt" + Suffix: {Data: []byte(`not json`)},
	}

	state, err := ResolveFS(fsys, "vol/foo.txt")
	require.NoError(t, err)
	assert.Equal(t, StateNotSet, state)

	state, err = ResolveFS(fsys, "vol/bar.txt")
	require.NoError(t, err)
	assert.Equal(t, StateRefresh, state)

	state, err = ResolveFS(fsys, "vol/baz.txt")
	require.NoError(t, err)
	assert.Equal(t, StateSynced, state)

	state, err = ResolveFS(fsys, "vol/bad.txt")
	assert.ErrorIs(t, err, ErrMalformedRecord)
	assert.Equal(t, StateNotSet, state)
}
