package manager

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadTemplate(t *testing.T) {
	t.Run("no file gives the built-in defaults", func(t *testing.T) {
		t.Parallel()

		template, err := LoadTemplate("")
		require.NoError(t, err)
		assert.Equal(t, defaultTemplate(), template)
	})

	t.Run("file overlays the defaults", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "template.yaml")
		content := `
balance: leastconn
client_idle_timeout: 30m
discovery:
  interval: 15s
healthcheck:
  fails: "3"
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		template, err := LoadTemplate(path)
		require.NoError(t, err)

		assert.Equal(t, "leastconn", template.Balance)
		assert.Equal(t, "30m", template.ClientIdleTimeout)
		assert.Equal(t, "15s", template.Discovery.Interval)
		assert.Equal(t, "3", template.Healthcheck.Fails)

		// untouched fields keep their defaults
		assert.Equal(t, "tcp", template.Protocol)
		assert.Equal(t, "srv", template.Discovery.Kind)
		assert.Equal(t, "ping", template.Healthcheck.Kind)
	})

	t.Run("missing file is an error", func(t *testing.T) {
		t.Parallel()

		_, err := LoadTemplate(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("unparseable file is an error", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "broken.yaml")
		require.NoError(t, os.WriteFile(path, []byte("balance: [not: closed"), 0o600))

		_, err := LoadTemplate(path)
		assert.Error(t, err)
	})
}
