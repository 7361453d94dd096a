// Package reddit supplies publishing candidates from subreddit top listings.
package reddit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrContentUnavailable marks a candidate that cannot drive a trial: the
// listing was empty, or the post has neither playable media nor body text.
var ErrContentUnavailable = errors.New("content unavailable")

// Candidate is one piece of source content considered for a publishing trial.
type Candidate struct {
	Title       string
	Body        string
	MediaURL    string
	Duration    time.Duration
	Attribution string
	// Rank is the candidate's position in the listing it was drawn from.
	Rank int
}

// Usable reports whether the candidate can drive a trial at all: it needs
// either a playable video or body text to narrate.
func (c *Candidate) Usable() bool {
	return c.MediaURL != "" || strings.TrimSpace(c.Body) != ""
}

// DashAudioVariants derives the candidate audio stream URLs for a DASH video
// URL, in preference order. Listings expose only the video rendition; the
// audio lives next to it under a small set of known names.
func (c *Candidate) DashAudioVariants() []string {
	if c.MediaURL == "" {
		return nil
	}
	base, _, found := strings.Cut(c.MediaURL, "DASH_")
	if !found {
		return nil
	}
	return []string{
		base + "DASH_AUDIO_128.mp4",
		base + "DASH_AUDIO_64.mp4",
		base + "DASH_audio.mp4",
	}
}

// Client fetches top posts over the public JSON listing endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
}

func NewClient(userAgent string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    "https://www.reddit.com",
		userAgent:  userAgent,
	}
}

// listing mirrors the slice of the listing payload we consume.
type listing struct {
	Data struct {
		Children []struct {
			Data struct {
				Title    string `json:"title"`
				Selftext string `json:"selftext"`
				Author   string `json:"author"`
				Media    *struct {
					RedditVideo *struct {
						Duration    float64 `json:"duration"`
						FallbackURL string  `json:"fallback_url"`
					} `json:"reddit_video"`
				} `json:"media"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// TopPost returns the post at index in the subreddit's daily top listing.
// When the listing is shorter than index, the last available post is
// returned instead; a clamped index is fallback behavior, not an error.
func (c *Client) TopPost(ctx context.Context, subreddit string, index int) (*Candidate, error) {
	if index < 0 {
		index = 0
	}

	url := fmt.Sprintf("%s/r/%s/top.json?t=day&limit=%d", c.baseURL, subreddit, index+1)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch r/%s: %w", subreddit, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch r/%s: http status %d", subreddit, resp.StatusCode)
	}

	var body listing
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode r/%s listing: %w", subreddit, err)
	}

	children := body.Data.Children
	if len(children) == 0 {
		return nil, fmt.Errorf("r/%s: empty top listing: %w", subreddit, ErrContentUnavailable)
	}
	if index >= len(children) {
		index = len(children) - 1
	}

	post := children[index].Data
	cand := &Candidate{
		Title: post.Title,
		Body:  post.Selftext,
		Rank:  index,
	}
	if post.Author != "" {
		cand.Attribution = fmt.Sprintf("Credit: u/%s on Reddit", post.Author)
	}
	if post.Media != nil && post.Media.RedditVideo != nil {
		cand.MediaURL = post.Media.RedditVideo.FallbackURL
		cand.Duration = time.Duration(post.Media.RedditVideo.Duration * float64(time.Second))
	}

	return cand, nil
}
