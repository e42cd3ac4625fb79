package imagegen

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"

	"organquiz/internal/domain/quiz"
	"organquiz/utils/quizid"
)

var allowedMIMEs = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/webp": "webp",
}

// titanResponse is the Titan invoke response body: base64 image strings plus
// an optional provider-side error message.
type titanResponse struct {
	Images []string `json:"images"`
	Error  string   `json:"error"`
}

// Materializer decodes provider payloads into image bytes and persists them
// in the scratch root under randomly drawn names, which stay collision-free
// under concurrent callers without any check-then-create race.
type Materializer struct {
	scratchDir string
	log        zerolog.Logger
}

func NewMaterializer(scratchDir string, log zerolog.Logger) (*Materializer, error) {
	if err := os.MkdirAll(scratchDir, 0o755); err != nil {
		return nil, fmt.Errorf("create scratch directory %s: %w", scratchDir, err)
	}
	return &Materializer{
		scratchDir: scratchDir,
		log:        log.With().Str("component", "materializer").Logger(),
	}, nil
}

// Materialize turns a raw provider response body into a persisted artifact.
func (m *Materializer) Materialize(payload []byte) (*quiz.Artifact, error) {
	if len(payload) == 0 {
		return nil, &quiz.DecodeError{Reason: "empty response body"}
	}

	var resp titanResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, &quiz.DecodeError{Reason: "malformed response body", Err: err}
	}

	if resp.Error != "" {
		if isFilterMessage(resp.Error) {
			return nil, &quiz.RefusalError{Reason: resp.Error}
		}
		return nil, &quiz.ProviderError{Op: "generate", Err: fmt.Errorf("%s", resp.Error)}
	}
	if len(resp.Images) == 0 {
		return nil, &quiz.DecodeError{Reason: "response carries no image"}
	}

	data, err := base64.StdEncoding.DecodeString(resp.Images[0])
	if err != nil {
		return nil, &quiz.DecodeError{Reason: "image payload is not valid base64", Err: err}
	}

	mime := mimetype.Detect(data).String()
	ext, ok := allowedMIMEs[mime]
	if !ok {
		return nil, &quiz.DecodeError{Reason: fmt.Sprintf("unsupported image type %s", mime)}
	}

	id := quizid.NewArtifact()
	path := filepath.Join(m.scratchDir, fmt.Sprintf("%s.%s", id, ext))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("write artifact %s: %w", path, err)
	}

	m.log.Debug().
		Str("artifact_id", id).
		Str("mime", mime).
		Int("bytes", len(data)).
		Msg("materialized image")

	return &quiz.Artifact{
		ID:       id,
		Path:     path,
		MimeType: mime,
		Bytes:    int64(len(data)),
	}, nil
}

// isFilterMessage recognizes Titan's content-policy wording in error text.
func isFilterMessage(msg string) bool {
	m := strings.ToLower(msg)
	return strings.Contains(m, "content filter") || strings.Contains(m, "blocked")
}
