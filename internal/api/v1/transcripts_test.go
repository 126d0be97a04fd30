package v1_test

import (
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/gosuda/pulse/internal/api/v1"
)

func TestGetTranscript(t *testing.T) {
	t.Parallel()

	t.Run("missing_path", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterTranscriptRoutes(api)

		resp := api.Get("/transcript")
		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("relative_path", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterTranscriptRoutes(api)

		resp := api.Get("/transcript?path=" + url.QueryEscape("relative/path.json"))
		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("nonexistent_file", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterTranscriptRoutes(api)

		resp := api.Get("/transcript?path=" + url.QueryEscape("/tmp/nonexistent-transcript-4f1c.json"))
		assert.Equal(t, http.StatusNotFound, resp.Code)
	})

	t.Run("returns_file_contents", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "transcript.txt")
		require.NoError(t, os.WriteFile(path, []byte("hello transcript"), 0o600))

		_, api := humatest.New(t)
		v1.RegisterTranscriptRoutes(api)

		resp := api.Get("/transcript?path=" + url.QueryEscape(path))
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Body.String(), "hello transcript")
	})

	t.Run("traversal_is_canonicalized_not_rejected", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterTranscriptRoutes(api)

		// Still absolute, so not a 400; resolves to a path that does not
		// exist, so a 404.
		resp := api.Get("/transcript?path=" + url.QueryEscape("/tmp/../../etc/nonexistent-transcript-4f1c"))
		assert.Equal(t, http.StatusNotFound, resp.Code)
	})
}
