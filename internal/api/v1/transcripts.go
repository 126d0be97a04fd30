package v1

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"

	"github.com/danielgtaylor/huma/v2"
)

type TranscriptInput struct {
	Path string `query:"path" doc:"Absolute path to a transcript file on the server host"`
}

type TranscriptOutput struct {
	ContentType string `header:"Content-Type"`
	Body        []byte
}

// RegisterTranscriptRoutes exposes raw transcript files for the dashboard's
// transcript viewer. Agents record where their transcript lives in event
// payloads (transcript_path); the dashboard fetches the contents here. Paths
// must be absolute and are canonicalized before the read, so traversal
// segments resolve instead of escaping validation.
func RegisterTranscriptRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "get-transcript",
		Method:      http.MethodGet,
		Path:        "/transcript",
		Summary:     "Read an agent transcript file",
		Tags:        []string{"Transcripts"},
	}, func(_ context.Context, input *TranscriptInput) (*TranscriptOutput, error) {
		if input.Path == "" {
			return nil, huma.Error400BadRequest("path query parameter is required")
		}
		if !filepath.IsAbs(input.Path) {
			return nil, huma.Error400BadRequest("path must be absolute")
		}

		data, err := os.ReadFile(filepath.Clean(input.Path))
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, huma.Error404NotFound("transcript not found")
			}
			return nil, huma.Error500InternalServerError("failed to read transcript", err)
		}

		return &TranscriptOutput{
			ContentType: "text/plain; charset=utf-8",
			Body:        data,
		}, nil
	})
}
