package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"organquiz/internal/config"
	"organquiz/internal/domain/quiz"
	"organquiz/internal/infrastructure/metrics"
)

// LocalStorage serves published artifacts from the local filesystem. It is
// the sole owner of deletion inside the publish root.
type LocalStorage struct {
	publishDir string
	scratchDir string
	baseURL    string
	log        zerolog.Logger
}

// NewLocalStorage creates the publish root if needed.
func NewLocalStorage(cfg *config.Config, log zerolog.Logger) (*LocalStorage, error) {
	if err := os.MkdirAll(cfg.PublishDir, 0o755); err != nil {
		return nil, fmt.Errorf("create publish directory %s: %w", cfg.PublishDir, err)
	}

	storage := &LocalStorage{
		publishDir: cfg.PublishDir,
		scratchDir: cfg.ScratchDir,
		baseURL:    strings.TrimSuffix(cfg.PublicBaseURL, "/"),
		log:        log.With().Str("component", "local-storage").Logger(),
	}

	storage.log.Info().
		Str("path", storage.publishDir).
		Str("base_url", storage.baseURL).
		Msg("local artifact storage initialized")

	return storage, nil
}

// Publish moves the artifact from its scratch location into the publish
// root and returns the client-reachable URL. The artifact's own id doubles
// as the freshness token: unlike a wall-clock value it cannot collide under
// high-frequency rounds.
func (l *LocalStorage) Publish(ctx context.Context, artifact *quiz.Artifact) (string, error) {
	filename := filepath.Base(artifact.Path)
	dest := filepath.Join(l.publishDir, filename)

	if err := moveFile(artifact.Path, dest); err != nil {
		return "", fmt.Errorf("publish artifact %s: %w", artifact.ID, err)
	}

	metrics.ArtifactsPublishedTotal.Inc()
	l.log.Debug().
		Str("artifact_id", artifact.ID).
		Str("path", dest).
		Msg("artifact published")

	return fmt.Sprintf("%s/%s?v=%s", l.baseURL, filename, artifact.ID), nil
}

// Remove deletes the published artifact for the given id. Already gone is
// treated as already satisfied.
func (l *LocalStorage) Remove(ctx context.Context, artifactID string) error {
	matches, err := filepath.Glob(filepath.Join(l.publishDir, artifactID+".*"))
	if err != nil {
		return fmt.Errorf("locate artifact %s: %w", artifactID, err)
	}
	for _, path := range matches {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove artifact %s: %w", artifactID, err)
		}
	}
	if len(matches) > 0 {
		metrics.ArtifactsRetiredTotal.Inc()
		l.log.Debug().Str("artifact_id", artifactID).Msg("artifact retired")
	}
	return nil
}

// Sweep drops artifacts left behind by a previous process. No session
// survives a restart, so nothing in the publish root can still be current;
// the scratch root can hold copies orphaned by a failed publish.
func (l *LocalStorage) Sweep(ctx context.Context) error {
	count := 0
	for _, root := range []string{l.publishDir, l.scratchDir} {
		if root == "" {
			continue
		}
		matches, err := filepath.Glob(filepath.Join(root, "img_*.*"))
		if err != nil {
			return fmt.Errorf("scan %s: %w", root, err)
		}
		for _, path := range matches {
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("sweep %s: %w", path, err)
			}
		}
		count += len(matches)
	}
	if count > 0 {
		l.log.Info().Int("count", count).Msg("swept stale artifacts")
	}
	return nil
}

// moveFile renames, falling back to copy+remove when the scratch and
// publish roots sit on different filesystems.
func moveFile(src, dest string) error {
	if err := os.Rename(src, dest); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dest)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(dest)
		return err
	}
	return os.Remove(src)
}
