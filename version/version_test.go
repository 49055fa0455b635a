package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGet(t *testing.T) {
	info := Get()
	assert.Equal(t, CommitHash, info.CommitHash)
	assert.NotEmpty(t, info.GoVersion)
	assert.NotEmpty(t, info.SnapshotFormat)
	assert.Contains(t, info.Platform, "/")
}

func TestString(t *testing.T) {
	dev := Info{Version: "dev", CommitHash: "abc", BuildTime: "now", SnapshotFormat: "1.0.0"}
	assert.Equal(t, "specgraph dev (commit abc, built now, snapshot format 1.0.0)", dev.String())

	tagged := Info{Version: "v0.3.1", CommitHash: "abc", BuildTime: "now", SnapshotFormat: "1.0.0"}
	assert.Equal(t, "specgraph v0.3.1 (commit abc, built now, snapshot format 1.0.0)", tagged.String())
}

func TestShort(t *testing.T) {
	assert.Equal(t, "0123456", Info{CommitHash: "0123456789abcdef"}.Short())
	assert.Equal(t, "dev", Info{CommitHash: "dev"}.Short())
}
