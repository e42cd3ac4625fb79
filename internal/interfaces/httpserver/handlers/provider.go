package handlers

import (
	"github.com/rs/zerolog"

	"organquiz/internal/config"
	domain "organquiz/internal/domain/quiz"
)

// Provider wires HTTP handlers.
type Provider struct {
	Quiz *QuizHandler
}

func NewProvider(cfg *config.Config, service *domain.Service, log zerolog.Logger) *Provider {
	return &Provider{
		Quiz: NewQuizHandler(cfg, service, log),
	}
}
