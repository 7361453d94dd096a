package media

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestFetchWritesFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "video-bytes")
	}))
	defer server.Close()

	path := filepath.Join(t.TempDir(), "video.mp4")
	if err := Fetch(context.Background(), server.Client(), server.URL, path); err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(data) != "video-bytes" {
		t.Errorf("unexpected content %q", data)
	}
}

func TestFetchFirstFallsThroughVariants(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/DASH_audio.mp4" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprint(w, "audio-bytes")
	}))
	defer server.Close()

	urls := []string{
		server.URL + "/DASH_AUDIO_128.mp4",
		server.URL + "/DASH_AUDIO_64.mp4",
		server.URL + "/DASH_audio.mp4",
	}

	path := filepath.Join(t.TempDir(), "audio.mp4")
	if err := FetchFirst(context.Background(), server.Client(), urls, path); err != nil {
		t.Fatalf("FetchFirst returned error: %v", err)
	}

	data, _ := os.ReadFile(path)
	if string(data) != "audio-bytes" {
		t.Errorf("unexpected content %q", data)
	}
}

func TestDownloaderMapsRestriction(t *testing.T) {
	d := NewDownloader()
	d.Runner = func(_ context.Context, name string, args ...string) ([]byte, error) {
		return []byte("ERROR: Sign in to confirm your age"), errors.New("exit status 1")
	}

	err := d.Download(context.Background(), "https://youtu.be/x", "/tmp/out.mp4")
	if !errors.Is(err, ErrRestricted) {
		t.Errorf("expected ErrRestricted, got %v", err)
	}
}

func TestDownloaderPassesArgs(t *testing.T) {
	var gotName string
	var gotArgs []string

	d := NewDownloader()
	d.Runner = func(_ context.Context, name string, args ...string) ([]byte, error) {
		gotName = name
		gotArgs = args
		return nil, nil
	}

	if err := d.Download(context.Background(), "https://youtu.be/x", "/tmp/out.mp4"); err != nil {
		t.Fatalf("Download returned error: %v", err)
	}
	if gotName != "yt-dlp" {
		t.Errorf("expected yt-dlp, got %q", gotName)
	}
	if gotArgs[len(gotArgs)-1] != "https://youtu.be/x" {
		t.Errorf("url should be the last argument, got %v", gotArgs)
	}
}

func TestLayoutPaths(t *testing.T) {
	layout := NewLayout("/work")

	if layout.Subtitles() != filepath.Join("/work", "subtitles.srt") {
		t.Errorf("unexpected subtitles path %q", layout.Subtitles())
	}
	if layout.Voiceover(".wav") != filepath.Join("/work", "voiceover.wav") {
		t.Errorf("unexpected voiceover path %q", layout.Voiceover(".wav"))
	}
	if len(layout.All()) != 10 {
		t.Errorf("expected 10 artifacts, got %d", len(layout.All()))
	}
}
