// Package quizid mints the prefixed ULIDs used for artifacts and client
// sessions. ULIDs are random enough to be collision-free across concurrent
// callers, which is what makes artifact filenames safe without coordination.
package quizid

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

const (
	artifactPrefix = "img_"
	sessionPrefix  = "sess_"
)

var (
	entropyOnce sync.Once
	entropyMu   sync.Mutex
	entropy     *ulid.MonotonicEntropy
)

func newEntropy() *ulid.MonotonicEntropy {
	entropyOnce.Do(func() {
		source := rand.NewSource(time.Now().UnixNano())
		entropy = ulid.Monotonic(rand.New(source), 0)
	})
	return entropy
}

func newID(prefix string) string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	id := ulid.MustNew(ulid.Timestamp(time.Now()), newEntropy())
	return prefix + strings.ToLower(id.String())
}

// NewArtifact returns an img_* ULID string.
func NewArtifact() string {
	return newID(artifactPrefix)
}

// NewSession returns a sess_* ULID string.
func NewSession() string {
	return newID(sessionPrefix)
}

// IsArtifact reports whether the string is an img_* ULID.
func IsArtifact(value string) bool {
	return isValid(value, artifactPrefix)
}

// IsSession reports whether the string is a sess_* ULID.
func IsSession(value string) bool {
	return isValid(value, sessionPrefix)
}

func isValid(value, prefix string) bool {
	if !strings.HasPrefix(value, prefix) {
		return false
	}
	_, err := ulid.Parse(strings.TrimPrefix(strings.TrimSpace(value), prefix))
	return err == nil
}
