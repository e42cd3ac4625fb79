package quiz

import (
	"bufio"
	"fmt"
	"math/rand"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// MinSubjects is the smallest usable pool: one correct answer plus three
// distinct distractors.
const MinSubjects = 4

var defaultSubjects = []string{
	"Heart", "Liver", "Lung", "Kidney", "Stomach",
	"Brain", "Pancreas", "Small Intestine", "Large Intestine", "Spleen",
}

// Pool is the ordered list of answer categories, loaded once at startup and
// immutable for the process lifetime.
type Pool struct {
	subjects []string
}

// NewPool validates and wraps a subject list.
func NewPool(subjects []string) (*Pool, error) {
	seen := make(map[string]struct{}, len(subjects))
	unique := make([]string, 0, len(subjects))
	for _, s := range subjects {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		unique = append(unique, s)
	}
	if len(unique) < MinSubjects {
		return nil, fmt.Errorf("subject pool needs at least %d distinct entries, got %d", MinSubjects, len(unique))
	}
	return &Pool{subjects: unique}, nil
}

// LoadPool reads one subject per line from path, skipping blank lines. A
// missing file falls back to the built-in organ list.
func LoadPool(path string, log zerolog.Logger) (*Pool, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warn().Str("path", path).Msg("subject file not found, using default organ list")
			return NewPool(defaultSubjects)
		}
		return nil, fmt.Errorf("open subject file %s: %w", path, err)
	}
	defer file.Close()

	var subjects []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			subjects = append(subjects, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read subject file %s: %w", path, err)
	}
	if len(subjects) == 0 {
		log.Warn().Str("path", path).Msg("subject file is empty, using default organ list")
		return NewPool(defaultSubjects)
	}
	return NewPool(subjects)
}

// Size returns the number of subjects in the pool.
func (p *Pool) Size() int {
	return len(p.subjects)
}

// Subjects returns a copy of the pool contents.
func (p *Pool) Subjects() []string {
	out := make([]string, len(p.subjects))
	copy(out, p.subjects)
	return out
}

// Shuffled returns an independently shuffled copy of the pool, used as the
// attempt order for one round.
func (p *Pool) Shuffled() []string {
	out := p.Subjects()
	rand.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

// Distractors draws n distinct subjects without replacement, excluding the
// correct one.
func (p *Pool) Distractors(correct string, n int) ([]string, error) {
	candidates := make([]string, 0, len(p.subjects))
	for _, s := range p.subjects {
		if s != correct {
			candidates = append(candidates, s)
		}
	}
	if len(candidates) < n {
		return nil, fmt.Errorf("need %d distractors but only %d subjects differ from %q", n, len(candidates), correct)
	}
	rand.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	return candidates[:n], nil
}
