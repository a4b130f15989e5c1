package version

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGet(t *testing.T) {
	oldVersion, oldCommit := Version, Commit
	t.Cleanup(func() { Version, Commit = oldVersion, oldCommit })
	Version, Commit = "1.2.3", "abcdefg"

	info := Get()
	assert.Equal(t, "1.2.3", info.Version)
	assert.Equal(t, "abcdefg", info.GitCommit)
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, info.Platform)
	assert.Contains(t, info.String(), "mipbuild version 1.2.3 (commit: abcdefg)")
}

func TestShort(t *testing.T) {
	assert.Equal(t, "1.2.3", Info{Version: "1.2.3", GitCommit: "abc"}.Short())
	assert.Equal(t, "dev+abc", Info{Version: "dev", GitCommit: "abc"}.Short())
	assert.Equal(t, "dev", Info{Version: "dev", GitCommit: "none"}.Short())
}
