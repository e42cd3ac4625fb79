package quiz

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"github.com/rs/zerolog"
)

// optionsPerRound is the size of the multiple-choice set presented to the
// client: the correct subject plus three distractors.
const optionsPerRound = 4

type sessionState struct {
	round      *Round
	artifactID string
}

// Service holds the active round per client session and owns the published
// artifact's lifecycle: at most one published artifact per session, retired
// when the next round supersedes it.
//
// The sessions map is the only shared state; the mutex is never held across
// the provider call, so independent sessions generate concurrently.
type Service struct {
	pool      *Pool
	generator Generator
	storage   Storage
	log       zerolog.Logger

	mu       sync.Mutex
	sessions map[string]*sessionState
}

func NewService(pool *Pool, generator Generator, storage Storage, log zerolog.Logger) *Service {
	return &Service{
		pool:      pool,
		generator: generator,
		storage:   storage,
		log:       log.With().Str("component", "quiz-service").Logger(),
		sessions:  make(map[string]*sessionState),
	}
}

// StartRound retires the session's previous artifact, generates a freshly
// matched (subject, image) pair and publishes it, then builds the 4-way
// option set. On generation failure the session is left with no round and
// no published artifact.
func (s *Service) StartRound(ctx context.Context, sessionID string) (*Round, error) {
	previous := s.resetSession(sessionID)
	if previous != "" {
		if err := s.storage.Remove(ctx, previous); err != nil {
			s.log.Warn().Err(err).Str("artifact_id", previous).Msg("retire previous artifact")
		}
	}

	generation, err := s.generator.Generate(ctx)
	if err != nil {
		return nil, err
	}

	url, err := s.storage.Publish(ctx, generation.Artifact)
	if err != nil {
		return nil, fmt.Errorf("publish artifact: %w", err)
	}

	options, err := s.buildOptions(generation.Subject)
	if err != nil {
		return nil, err
	}

	round := &Round{
		Correct:  generation.Subject,
		Options:  options,
		ImageID:  generation.Artifact.ID,
		ImageURL: url,
	}

	s.mu.Lock()
	state := s.sessions[sessionID]
	state.round = round
	state.artifactID = generation.Artifact.ID
	s.mu.Unlock()

	return round, nil
}

// CheckAnswer compares the selected label exactly against the stored correct
// subject. A correct answer consumes the round; a wrong one leaves it active
// so the client may try again. Fails with ErrNoActiveRound when nothing is
// pending for the session.
func (s *Service) CheckAnswer(ctx context.Context, sessionID, selected string) (*Verdict, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.sessions[sessionID]
	if !ok || state.round == nil {
		return nil, ErrNoActiveRound
	}

	round := state.round
	correct := selected == round.Correct
	if correct {
		// Consumed: the round cannot be answered twice for a first-try
		// result. The artifact stays published until the next round.
		state.round = nil
	}

	return &Verdict{Correct: correct, CorrectAnswer: round.Correct}, nil
}

// resetSession clears the session's round and returns the artifact id that
// should be retired, creating the session entry when absent.
func (s *Service) resetSession(sessionID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.sessions[sessionID]
	if !ok {
		state = &sessionState{}
		s.sessions[sessionID] = state
	}
	previous := state.artifactID
	state.round = nil
	state.artifactID = ""
	return previous
}

func (s *Service) buildOptions(correct string) ([]string, error) {
	distractors, err := s.pool.Distractors(correct, optionsPerRound-1)
	if err != nil {
		return nil, fmt.Errorf("build option set: %w", err)
	}
	options := append(distractors, correct)
	rand.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})
	return options, nil
}
