package reddit

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
)

// Poster is the listing operation Source depends on; satisfied by Client.
type Poster interface {
	TopPost(ctx context.Context, subreddit string, index int) (*Candidate, error)
}

// Source draws publishing candidates from a pool of subreddits. Each call
// picks a subreddit uniformly at random, independent of prior calls, so a
// fixed seed makes the whole sequence reproducible.
type Source struct {
	client     Poster
	subreddits []string
	videoPool  []string
	rng        *rand.Rand
}

func NewSource(client Poster, subreddits, videoPool []string, seed int64) *Source {
	return &Source{
		client:     client,
		subreddits: subreddits,
		videoPool:  videoPool,
		rng:        rand.New(rand.NewSource(seed)),
	}
}

// Next returns the candidate at index from a randomly chosen subreddit.
func (s *Source) Next(ctx context.Context, index int) (*Candidate, error) {
	if len(s.subreddits) == 0 {
		return nil, errors.New("no subreddits configured")
	}

	subreddit := s.subreddits[s.rng.Intn(len(s.subreddits))]
	cand, err := s.client.TopPost(ctx, subreddit, index)
	if err != nil {
		return nil, fmt.Errorf("candidate %d from r/%s: %w", index, subreddit, err)
	}
	return cand, nil
}

// FallbackVideo picks a background video for narrated posts. The draw is
// uniform over the configured pool and reproducible under a fixed seed.
func (s *Source) FallbackVideo() (string, error) {
	if len(s.videoPool) == 0 {
		return "", errors.New("no fallback videos configured")
	}
	return s.videoPool[s.rng.Intn(len(s.videoPool))], nil
}
