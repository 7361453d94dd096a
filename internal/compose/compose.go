// Package compose produces the publish copy (title, description) for a
// candidate.
package compose

import (
	"context"
	"strings"

	"shortpost/internal/reddit"
)

// Copy is the finished publish text for both destinations.
type Copy struct {
	Title       string
	Description string
}

// interface for publish copy generation
type Composer interface {
	Compose(ctx context.Context, cand *reddit.Candidate) (*Copy, error)
}

// StaticComposer reuses the post title verbatim and appends the source
// credit line. Used when no LLM key is configured.
type StaticComposer struct{}

func (StaticComposer) Compose(_ context.Context, cand *reddit.Candidate) (*Copy, error) {
	description := cand.Title
	if cand.Attribution != "" {
		description = cand.Title + "\n\n" + cand.Attribution
	}
	return &Copy{
		Title:       strings.TrimSpace(cand.Title),
		Description: description,
	}, nil
}
