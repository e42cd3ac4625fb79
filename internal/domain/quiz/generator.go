package quiz

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// RoundGenerator drives build→invoke→materialize for one round. On any
// failure it records the failed subject and moves on to one not yet
// attempted, so a provider refusal never surfaces to the caller while
// alternative subjects remain. Termination is bounded by the pool size.
type RoundGenerator struct {
	pool           *Pool
	source         ImageSource
	promptTemplate string
	log            zerolog.Logger
}

func NewRoundGenerator(pool *Pool, source ImageSource, promptTemplate string, log zerolog.Logger) *RoundGenerator {
	return &RoundGenerator{
		pool:           pool,
		source:         source,
		promptTemplate: promptTemplate,
		log:            log.With().Str("component", "round-generator").Logger(),
	}
}

// Generate attempts each pool subject in random order until one yields an
// image, returning the subject actually used alongside its artifact.
// Returns ErrPoolExhausted when every subject has been attempted and failed.
func (g *RoundGenerator) Generate(ctx context.Context) (*Generation, error) {
	for _, subject := range g.pool.Shuffled() {
		artifact, err := g.source.GenerateImage(ctx, g.prompt(subject))
		if err == nil {
			g.log.Debug().
				Str("subject", subject).
				Str("artifact_id", artifact.ID).
				Msg("generated round image")
			return &Generation{Subject: subject, Artifact: artifact}, nil
		}

		if ctx.Err() != nil {
			return nil, fmt.Errorf("round generation cancelled: %w", ctx.Err())
		}

		var refusal *RefusalError
		if errors.As(err, &refusal) {
			// Expected intermittently for specific prompts; not a fault.
			g.log.Info().
				Str("subject", subject).
				Str("reason", refusal.Reason).
				Msg("provider refused subject, trying another")
			continue
		}
		g.log.Warn().
			Err(err).
			Str("subject", subject).
			Msg("image generation failed, trying another subject")
	}
	return nil, ErrPoolExhausted
}

func (g *RoundGenerator) prompt(subject string) string {
	return fmt.Sprintf(g.promptTemplate, strings.ToLower(subject))
}
