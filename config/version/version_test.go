package version

import (
	goos "os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetCodeVersion(t *testing.T) {
	saved := VersionInfo.Version
	t.Cleanup(func() { VersionInfo.Version = saved })
	VersionInfo.Version = "unknown-version"

	dir := t.TempDir()
	t.Chdir(dir)
	// no VERSION file
	assert.Equal(t, "unknown-version", GetCodeVersion())

	require.NoError(t, goos.WriteFile(filepath.Join(dir, "VERSION"), []byte("1.4.0-dev\n"), 0o600))
	assert.Equal(t, "1.4.0-dev", GetCodeVersion())

	// an injected version wins over the file
	VersionInfo.Version = "1.3.2"
	assert.Equal(t, "1.3.2", GetCodeVersion())
}

func TestInfoTypeString(t *testing.T) {
	out := VersionInfo.String("  ")
	assert.Contains(t, out, "  Version:      "+VersionInfo.Version+"\n")
	assert.Contains(t, out, "  OS/Arch:      "+VersionInfo.Os+"/"+VersionInfo.Arch+"\n")
}
