package cli

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withVersion(t *testing.T, v string) {
	t.Helper()
	old := version
	version = v
	t.Cleanup(func() {
		version = old
		resetFlags(rootCmd)
	})
}

func TestVersionCmd(t *testing.T) {
	withVersion(t, "1.4.0")

	out, err := execute(t, "version")

	require.NoError(t, err)
	assert.Contains(t, out, "searchsync version 1.4.0")
	assert.Contains(t, out, runtime.GOOS+"/"+runtime.GOARCH)
}

func TestVersionCmd_Short(t *testing.T) {
	withVersion(t, "dev")

	out, err := execute(t, "version", "--short")

	require.NoError(t, err)
	assert.Equal(t, "dev\n", out)
}

func TestVersionCmd_NeedsNoServices(t *testing.T) {
	withVersion(t, "dev")
	setupServices(t, nil)
	bootstrap = nil

	_, err := execute(t, "version")

	assert.NoError(t, err)
}
