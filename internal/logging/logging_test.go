package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("json lines", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		l := New(&buf, false, true)
		l.Debug("hidden")
		l.Info("page", zap.String("url", "https://example.test/"))
		require.NoError(t, l.Sync())

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "page", entry["msg"])
		assert.Equal(t, "info", entry["level"])
		assert.Equal(t, "https://example.test/", entry["url"])
		assert.NotContains(t, buf.String(), "hidden")
	})

	t.Run("verbose console", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		l := New(&buf, true, false)
		l.Debug("queued", zap.Int("row", 3))
		require.NoError(t, l.Sync())

		assert.Contains(t, buf.String(), "DEBUG")
		assert.Contains(t, buf.String(), `"row": 3`)
	})
}

func TestRedactURI(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "mongodb://user:xxxxx@db:27017/crawl", RedactURI("mongodb://user:secret@db:27017/crawl"))
	assert.Equal(t, "mongodb://db:27017", RedactURI("mongodb://db:27017"))
	assert.Equal(t, "<unparsable>", RedactURI("mongodb://%zz"))
}
