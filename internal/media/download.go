package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"strings"
	"time"
)

var execCommand = exec.CommandContext

// returned when the hosting site refuses to serve the video (age gates etc.)
var ErrRestricted = errors.New("video is restricted")

// Fetch downloads a URL straight to a local file.
func Fetch(ctx context.Context, client *http.Client, url, outputPath string) error {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Minute}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch %s: http status %d", url, resp.StatusCode)
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("write %s: %w", outputPath, err)
	}
	return nil
}

// FetchFirst tries each URL in order and keeps the first that succeeds.
// Used for DASH audio renditions where only some variants exist.
func FetchFirst(ctx context.Context, client *http.Client, urls []string, outputPath string) error {
	var lastErr error
	for _, url := range urls {
		if err := Fetch(ctx, client, url, outputPath); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	if lastErr == nil {
		lastErr = errors.New("no urls to fetch")
	}
	return lastErr
}

// Downloader fetches background videos with yt-dlp.
type Downloader struct {
	// YtdlpPath is the path to the yt-dlp executable.
	YtdlpPath string
	// Runner executes the command; tests substitute it.
	Runner func(ctx context.Context, name string, args ...string) ([]byte, error)
}

func NewDownloader() *Downloader {
	return &Downloader{YtdlpPath: "yt-dlp"}
}

// Download saves the video at url to outputPath as 720p mp4. A site
// restriction (age gate, geo block) maps to ErrRestricted so the caller can
// try a different video.
func (d *Downloader) Download(ctx context.Context, url, outputPath string) error {
	args := []string{
		"-f", "bestvideo[height<=720][ext=mp4]+bestaudio[ext=m4a]/best[height<=720][ext=mp4]",
		"--no-warnings",
		"-o", outputPath,
		url,
	}

	runner := d.Runner
	if runner == nil {
		runner = runCommand
	}

	out, err := runner(ctx, d.YtdlpPath, args...)
	if err != nil {
		combined := strings.ToLower(string(out) + err.Error())
		if strings.Contains(combined, "age") || strings.Contains(combined, "restricted") ||
			strings.Contains(combined, "sign in to confirm") {
			return fmt.Errorf("%s: %w", url, ErrRestricted)
		}
		return fmt.Errorf("yt-dlp %s: %w", url, err)
	}
	return nil
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := bytes.Buffer{}
	c := execCommand(ctx, name, args...)
	c.Stdout = &cmd
	c.Stderr = &cmd
	err := c.Run()
	return cmd.Bytes(), err
}
