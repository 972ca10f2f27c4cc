package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersionStrings(t *testing.T) {
	assert.NotEmpty(t, Version)
	assert.NotEmpty(t, Revision)

	short := Short()
	assert.Contains(t, short, Version)
	assert.Contains(t, short, Revision)

	detailed := Detailed()
	assert.Contains(t, detailed, Version)
	assert.Contains(t, detailed, "/") // GOOS/GOARCH part
}

func TestApplyBuildInfo(t *testing.T) {
	origVersion, origRevision := Version, Revision
	t.Cleanup(func() { Version, Revision = origVersion, origRevision })

	Version = "0.1.0-dev"
	Revision = "HEAD"
	applyBuildInfo("v2.3.4", map[string]string{
		"vcs.revision": "abcdef123456",
		"vcs.modified": "true",
	})
	assert.Equal(t, "2.3.4", Version)
	assert.Equal(t, "abcdef123456-dirty", Revision)

	// ldflags-provided values win
	Version = "9.9.9"
	Revision = "deadbeef"
	applyBuildInfo("v2.3.4", map[string]string{"vcs.revision": "abcdef"})
	assert.Equal(t, "9.9.9", Version)
	assert.Equal(t, "deadbeef", Revision)
}
