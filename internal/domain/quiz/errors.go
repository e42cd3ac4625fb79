package quiz

import (
	"errors"
	"fmt"
)

var (
	// ErrPoolExhausted means every subject in the pool was attempted and
	// failed to produce an image. The round cannot be served.
	ErrPoolExhausted = errors.New("every subject in the pool failed to generate an image")

	// ErrNoActiveRound means the caller checked an answer before starting
	// a round for its session.
	ErrNoActiveRound = errors.New("no active round for this session")
)

// RefusalError reports that the provider declined to synthesize an image for
// a prompt on content-policy grounds. Recoverable by trying another subject,
// unlike a transport or auth failure.
type RefusalError struct {
	Reason string
}

func (e *RefusalError) Error() string {
	return fmt.Sprintf("provider refused prompt: %s", e.Reason)
}

// ProviderError wraps transport, auth and response-shape failures from the
// image provider. Retried the same way as a refusal, but logged distinctly
// since it may indicate an outage rather than a per-subject policy issue.
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error (%s): %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// DecodeError reports a success response whose payload was absent or could
// not be decoded into image bytes.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode image payload: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("decode image payload: %s", e.Reason)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
