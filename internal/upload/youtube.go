package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"google.golang.org/api/youtube/v3"

	"shortpost/internal/retry"
)

const youtubeUploadURL = "https://www.googleapis.com/upload/youtube/v3/videos?uploadType=resumable&part=snippet,status"

// Metadata describes the video being published.
type Metadata struct {
	Title       string
	Description string
	CategoryID  string
	Privacy     string
}

// YouTubeTransport implements ChunkTransport against the YouTube resumable
// upload protocol: one session-initiation request, then sequential PUTs with
// Content-Range headers. 308 means the range was stored; a 2xx carries the
// final video resource.
type YouTubeTransport struct {
	client *http.Client
	meta   Metadata

	uploadURL string
}

// NewYouTubeTransport builds a transport over an authenticated HTTP client.
func NewYouTubeTransport(client *http.Client, meta Metadata) *YouTubeTransport {
	return &YouTubeTransport{client: client, meta: meta}
}

// init obtains the session upload URL for the given total size.
func (t *YouTubeTransport) init(ctx context.Context, size int64) error {
	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       t.meta.Title,
			Description: t.meta.Description,
			CategoryId:  t.meta.CategoryID,
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus: t.meta.Privacy,
		},
	}

	body, err := json.Marshal(video)
	if err != nil {
		return &retry.Permanent{Err: fmt.Errorf("encode metadata: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, youtubeUploadURL, bytes.NewReader(body))
	if err != nil {
		return &retry.Permanent{Err: err}
	}
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	req.Header.Set("X-Upload-Content-Type", "video/mp4")
	req.Header.Set("X-Upload-Content-Length", strconv.FormatInt(size, 10))

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("initiate upload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return classifyStatus(resp.StatusCode, "initiate upload")
	}

	loc := resp.Header.Get("Location")
	if loc == "" {
		return &retry.Permanent{Err: fmt.Errorf("initiate upload: missing session location: %w", ErrUnexpectedResponse)}
	}
	t.uploadURL = loc
	return nil
}

// SendChunk uploads one byte range of the session file.
func (t *YouTubeTransport) SendChunk(ctx context.Context, sess *Session, offset int64, data []byte) (*ChunkResult, error) {
	if t.uploadURL == "" {
		if err := t.init(ctx, sess.Size); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, t.uploadURL, bytes.NewReader(data))
	if err != nil {
		return nil, &retry.Permanent{Err: err}
	}
	last := offset + int64(len(data)) - 1
	req.Header.Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", offset, last, sess.Size))
	req.Header.Set("Content-Length", strconv.Itoa(len(data)))

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send chunk at %d: %w", offset, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == 308:
		// range stored, upload continues
		return &ChunkResult{}, nil
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
		var video struct {
			ID string `json:"id"`
		}
		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read completion body: %w", err)
		}
		if err := json.Unmarshal(raw, &video); err != nil {
			// malformed success payload is fatal, not transient
			return nil, &retry.Permanent{Err: fmt.Errorf("decode completion: %w", ErrUnexpectedResponse)}
		}
		return &ChunkResult{Done: true, RemoteID: video.ID}, nil
	default:
		return nil, classifyStatus(resp.StatusCode, fmt.Sprintf("chunk at %d", offset))
	}
}

// classifyStatus maps HTTP status codes onto transient vs permanent errors.
func classifyStatus(status int, op string) error {
	err := fmt.Errorf("%s: http status %d", op, status)
	if status >= 500 || status == http.StatusTooManyRequests {
		return err
	}
	return &retry.Permanent{Err: err}
}
