package responses

import "organquiz/internal/domain/quiz"

// QuestionResponse is the payload for a freshly started round.
type QuestionResponse struct {
	Options  []string `json:"options"`
	ImageURL string   `json:"image_url"`
}

// BuildQuestionResponse creates the response from a domain round.
func BuildQuestionResponse(round *quiz.Round) *QuestionResponse {
	return &QuestionResponse{
		Options:  round.Options,
		ImageURL: round.ImageURL,
	}
}

// AnswerResponse reports the verdict and always reveals the correct answer.
type AnswerResponse struct {
	IsCorrect     bool   `json:"is_correct"`
	CorrectAnswer string `json:"correct_answer"`
}

// BuildAnswerResponse creates the response from a domain verdict.
func BuildAnswerResponse(verdict *quiz.Verdict) *AnswerResponse {
	return &AnswerResponse{
		IsCorrect:     verdict.Correct,
		CorrectAnswer: verdict.CorrectAnswer,
	}
}

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	Code  string `json:"code,omitempty"`
	Error string `json:"error"`
}
