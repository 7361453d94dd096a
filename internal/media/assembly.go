// Package media assembles the run's video artifacts.
package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Layout names every transient artifact of one run inside the work dir.
type Layout struct {
	Dir string
}

func NewLayout(dir string) Layout {
	return Layout{Dir: dir}
}

func (l Layout) RedditVideo() string   { return filepath.Join(l.Dir, "reddit_video.mp4") }
func (l Layout) RedditAudio() string   { return filepath.Join(l.Dir, "reddit_audio.mp4") }
func (l Layout) CombinedVideo() string { return filepath.Join(l.Dir, "combined_video.mp4") }
func (l Layout) Subtitles() string     { return filepath.Join(l.Dir, "subtitles.srt") }

// Voiceover takes the extension because the container depends on the TTS
// provider (mp3 for OpenAI, wav for Gemini).
func (l Layout) Voiceover(ext string) string { return filepath.Join(l.Dir, "voiceover"+ext) }
func (l Layout) BackgroundVideo() string {
	return filepath.Join(l.Dir, "background_video.mp4")
}
func (l Layout) BaseVideo() string      { return filepath.Join(l.Dir, "base_video.mp4") }
func (l Layout) SubtitledVideo() string { return filepath.Join(l.Dir, "subtitled_video.mp4") }
func (l Layout) ShortsVideo() string    { return filepath.Join(l.Dir, "shorts_video.mp4") }

// All lists every artifact path a run can produce, for organize/cleanup.
func (l Layout) All() []string {
	return []string{
		l.RedditVideo(), l.RedditAudio(), l.CombinedVideo(), l.Subtitles(),
		l.Voiceover(".mp3"), l.Voiceover(".wav"),
		l.BackgroundVideo(), l.BaseVideo(), l.SubtitledVideo(),
		l.ShortsVideo(),
	}
}

// Processor runs the ffmpeg operations of the pipeline.
type Processor struct{}

func NewProcessor() *Processor {
	return &Processor{}
}

// Combine muxes a silent video with its separate audio track, trimmed to
// the shorter of the two streams.
func (p *Processor) Combine(ctx context.Context, videoPath, audioPath, outputPath string) error {
	if err := checkInput(videoPath); err != nil {
		return err
	}
	if err := checkInput(audioPath); err != nil {
		return err
	}

	video := ffmpeg.Input(videoPath)
	audio := ffmpeg.Input(audioPath)

	err := ffmpeg.Output(
		[]*ffmpeg.Stream{video, audio},
		outputPath,
		ffmpeg.KwArgs{
			"c:v":      "copy",
			"c:a":      "aac",
			"shortest": "",
		},
	).OverWriteOutput().Run()
	if err != nil {
		return fmt.Errorf("ffmpeg combine failed: %w", err)
	}
	return nil
}

// CreateBase cuts a voiceover-length subclip out of the background video
// starting at offset and replaces its audio with the voiceover.
func (p *Processor) CreateBase(ctx context.Context, videoPath, voiceoverPath string, offset, duration time.Duration, outputPath string) error {
	if err := checkInput(videoPath); err != nil {
		return err
	}
	if err := checkInput(voiceoverPath); err != nil {
		return err
	}

	video := ffmpeg.Input(videoPath, ffmpeg.KwArgs{
		"ss": seconds(offset),
		"t":  seconds(duration),
	})
	audio := ffmpeg.Input(voiceoverPath)

	err := ffmpeg.Output(
		[]*ffmpeg.Stream{video.Video(), audio.Audio()},
		outputPath,
		ffmpeg.KwArgs{
			"c:v":      "libx264",
			"preset":   "ultrafast",
			"c:a":      "aac",
			"shortest": "",
		},
	).OverWriteOutput().Run()
	if err != nil {
		return fmt.Errorf("ffmpeg base video failed: %w", err)
	}
	return nil
}

// BurnSubtitles renders the SRT file into the video frames.
func (p *Processor) BurnSubtitles(ctx context.Context, videoPath, srtPath, outputPath string) error {
	if err := checkInput(videoPath); err != nil {
		return err
	}
	if err := checkInput(srtPath); err != nil {
		return err
	}

	err := ffmpeg.Input(videoPath).
		Output(outputPath, ffmpeg.KwArgs{
			"vf":     fmt.Sprintf("subtitles=%s:force_style='Alignment=10,Fontsize=20'", srtPath),
			"c:a":    "copy",
			"c:v":    "libx264",
			"preset": "ultrafast",
		}).
		OverWriteOutput().Run()
	if err != nil {
		return fmt.Errorf("ffmpeg subtitles failed: %w", err)
	}
	return nil
}

// FormatShorts letterboxes the video into the 720x1280 vertical frame.
func (p *Processor) FormatShorts(ctx context.Context, videoPath, outputPath string) error {
	if err := checkInput(videoPath); err != nil {
		return err
	}

	err := ffmpeg.Input(videoPath).
		Output(outputPath, ffmpeg.KwArgs{
			"vf":     "scale=720:1280:force_original_aspect_ratio=decrease,pad=720:1280:(ow-iw)/2:(oh-ih)/2",
			"c:a":    "copy",
			"c:v":    "libx264",
			"preset": "ultrafast",
		}).
		OverWriteOutput().Run()
	if err != nil {
		return fmt.Errorf("ffmpeg shorts format failed: %w", err)
	}
	return nil
}

// JSON output from ffprobe
type ffprobeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Duration probes the duration of an audio/video file.
func (p *Processor) Duration(ctx context.Context, path string) (time.Duration, error) {
	if err := checkInput(path); err != nil {
		return 0, err
	}

	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		path,
	)

	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w", err)
	}

	var probe ffprobeOutput
	if err := json.Unmarshal(out.Bytes(), &probe); err != nil {
		return 0, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	var secs float64
	if _, err := fmt.Sscanf(probe.Format.Duration, "%f", &secs); err != nil {
		return 0, fmt.Errorf("failed to parse duration: %w", err)
	}

	return time.Duration(secs * float64(time.Second)), nil
}

func checkInput(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", path)
	}
	return nil
}

func seconds(d time.Duration) string {
	return fmt.Sprintf("%.3f", d.Seconds())
}
