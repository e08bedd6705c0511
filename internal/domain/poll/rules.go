package poll

import (
	"errors"
	"strings"
	"unicode/utf8"

	"pollboard/internal/sanitize"
)

var (
	ErrQuestionRequired = errors.New("question must not be empty")
	ErrQuestionTooLong  = errors.New("question exceeds maximum length")
	ErrTooFewOptions    = errors.New("poll must have at least 2 distinct options")
	ErrTooManyOptions   = errors.New("poll must have at most 10 options")
	ErrOptionTooLong    = errors.New("option exceeds maximum length")
)

// Rules configures the shared validation routine. Create and update share
// the routine with different rules instead of carrying two divergent copies.
type Rules struct {
	MaxQuestionLen int // 0 disables the cap
	MaxOptionLen   int // 0 disables the cap
	MinOptions     int
	MaxOptions     int // 0 disables the cap
	Dedupe         bool
	Sanitize       bool
}

var (
	CreateRules = Rules{
		MaxQuestionLen: 500,
		MaxOptionLen:   200,
		MinOptions:     2,
		MaxOptions:     10,
		Dedupe:         true,
		Sanitize:       true,
	}

	// Update keeps its historically looser shape: no length caps, no
	// dedup, no sanitization.
	UpdateRules = Rules{
		MinOptions: 2,
	}
)

// validateInput checks and normalizes a question plus its options against
// r. Options are trimmed, empties dropped and, when r.Dedupe is set,
// de-duplicated by exact match preserving first-seen order. The returned
// strings are what gets persisted.
func validateInput(question string, options []string, r Rules) (string, []string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", nil, ErrQuestionRequired
	}
	if r.MaxQuestionLen > 0 && utf8.RuneCountInString(question) > r.MaxQuestionLen {
		return "", nil, ErrQuestionTooLong
	}

	if len(options) < r.MinOptions {
		return "", nil, ErrTooFewOptions
	}
	if r.MaxOptions > 0 && len(options) > r.MaxOptions {
		return "", nil, ErrTooManyOptions
	}

	normalized := make([]string, 0, len(options))
	seen := make(map[string]bool, len(options))
	for _, opt := range options {
		opt = strings.TrimSpace(opt)
		if opt == "" {
			continue
		}
		if r.Dedupe {
			if seen[opt] {
				continue
			}
			seen[opt] = true
		}
		normalized = append(normalized, opt)
	}

	if len(normalized) < r.MinOptions {
		return "", nil, ErrTooFewOptions
	}
	if r.MaxOptionLen > 0 {
		for _, opt := range normalized {
			if utf8.RuneCountInString(opt) > r.MaxOptionLen {
				return "", nil, ErrOptionTooLong
			}
		}
	}

	if r.Sanitize {
		question = sanitize.Markup(question)
		for i := range normalized {
			normalized[i] = sanitize.Markup(normalized[i])
		}
	}

	return question, normalized, nil
}
