package reddit

import (
	"context"
	"testing"
)

// recordingPoster returns canned candidates and records which subreddit was
// asked.
type recordingPoster struct {
	asked []string
}

func (p *recordingPoster) TopPost(_ context.Context, subreddit string, index int) (*Candidate, error) {
	p.asked = append(p.asked, subreddit)
	return &Candidate{Title: subreddit, Rank: index}, nil
}

func TestSourceDeterministicUnderSeed(t *testing.T) {
	subs := []string{"videos", "funny", "aww"}

	first := &recordingPoster{}
	a := NewSource(first, subs, nil, 7)
	for i := 0; i < 10; i++ {
		if _, err := a.Next(context.Background(), i); err != nil {
			t.Fatalf("Next returned error: %v", err)
		}
	}

	second := &recordingPoster{}
	b := NewSource(second, subs, nil, 7)
	for i := 0; i < 10; i++ {
		if _, err := b.Next(context.Background(), i); err != nil {
			t.Fatalf("Next returned error: %v", err)
		}
	}

	for i := range first.asked {
		if first.asked[i] != second.asked[i] {
			t.Fatalf("same seed produced different draws: %v vs %v", first.asked, second.asked)
		}
	}
}

func TestSourcePassesIndexThrough(t *testing.T) {
	poster := &recordingPoster{}
	source := NewSource(poster, []string{"videos"}, nil, 1)

	cand, err := source.Next(context.Background(), 3)
	if err != nil {
		t.Fatalf("Next returned error: %v", err)
	}
	if cand.Rank != 3 {
		t.Errorf("expected rank 3, got %d", cand.Rank)
	}
}

func TestSourceNoSubreddits(t *testing.T) {
	source := NewSource(&recordingPoster{}, nil, nil, 1)
	if _, err := source.Next(context.Background(), 0); err == nil {
		t.Error("expected error with an empty pool")
	}
}

func TestFallbackVideo(t *testing.T) {
	pool := []string{"https://youtu.be/a", "https://youtu.be/b"}
	source := NewSource(&recordingPoster{}, []string{"videos"}, pool, 3)

	url, err := source.FallbackVideo()
	if err != nil {
		t.Fatalf("FallbackVideo returned error: %v", err)
	}
	found := false
	for _, p := range pool {
		if p == url {
			found = true
		}
	}
	if !found {
		t.Errorf("fallback %q not from the pool", url)
	}

	empty := NewSource(&recordingPoster{}, []string{"videos"}, nil, 3)
	if _, err := empty.FallbackVideo(); err == nil {
		t.Error("expected error with an empty video pool")
	}
}
