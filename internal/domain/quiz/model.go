package quiz

import "context"

// Artifact is a generated image persisted to storage. Created by the image
// source in its scratch root, owned by the lifecycle side of the Service
// once published, deleted when the next round supersedes it.
type Artifact struct {
	ID       string
	Path     string
	MimeType string
	Bytes    int64
}

// Round is one question scoped to a single client session.
type Round struct {
	Correct  string
	Options  []string
	ImageID  string
	ImageURL string
}

// Verdict is the result of checking a submitted answer. CorrectAnswer is
// always populated so the client can reveal it on a wrong guess.
type Verdict struct {
	Correct       bool
	CorrectAnswer string
}

// Generation pairs the subject actually rendered with its artifact. The two
// stay semantically linked: the subject recorded as correct is the one the
// image was generated for, even after retries.
type Generation struct {
	Subject  string
	Artifact *Artifact
}

// ImageSource produces one image for a prompt, materialized in a scratch
// location. All failures are typed: RefusalError, ProviderError or
// DecodeError.
type ImageSource interface {
	GenerateImage(ctx context.Context, prompt string) (*Artifact, error)
}

// Storage owns the client-reachable artifact root.
type Storage interface {
	// Publish moves the artifact into the serving root and returns its
	// client-reachable URL carrying a freshness token.
	Publish(ctx context.Context, artifact *Artifact) (string, error)
	// Remove deletes a published artifact. A missing artifact is not an
	// error; the desired state is already satisfied.
	Remove(ctx context.Context, artifactID string) error
}

// Generator obtains a freshly matched (subject, artifact) pair for a round.
type Generator interface {
	Generate(ctx context.Context) (*Generation, error)
}
