package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"shortpost/internal/logging"
	"shortpost/internal/media"
	"shortpost/internal/reddit"
	"shortpost/internal/speech"
	"shortpost/internal/subtitle"
)

// MediaAssembler builds the publishable video with ffmpeg. Candidates with
// their own video get the download-and-mux path; text-only candidates get a
// synthesized voiceover over a background clip with burned-in captions.
// backgroundFetcher is the slice of media.Downloader the assembler needs;
// tests substitute it.
type backgroundFetcher interface {
	Download(ctx context.Context, url, outputPath string) error
}

type MediaAssembler struct {
	layout   media.Layout
	proc     *media.Processor
	fetcher  backgroundFetcher
	client   *http.Client
	speech   speech.Synthesizer
	timer    *subtitle.Timer
	fallback func() (string, error)
	minStart time.Duration
	random   func() float64
	log      *logging.Logger
}

// AssemblerOptions carries the collaborators MediaAssembler needs.
type AssemblerOptions struct {
	Layout   media.Layout
	Speech   speech.Synthesizer
	Fallback func() (string, error)
	MinStart time.Duration
	Random   func() float64
	Log      *logging.Logger
}

func NewMediaAssembler(opts AssemblerOptions) *MediaAssembler {
	return &MediaAssembler{
		layout:   opts.Layout,
		proc:     media.NewProcessor(),
		fetcher:  media.NewDownloader(),
		client:   &http.Client{Timeout: 5 * time.Minute},
		speech:   opts.Speech,
		timer:    subtitle.NewTimer(),
		fallback: opts.Fallback,
		minStart: opts.MinStart,
		random:   opts.Random,
		log:      opts.Log,
	}
}

func (a *MediaAssembler) Assemble(ctx context.Context, cand *reddit.Candidate) (*Asset, error) {
	if cand.MediaURL != "" {
		return a.assembleFromMedia(ctx, cand)
	}
	return a.assembleFromText(ctx, cand)
}

func (a *MediaAssembler) assembleFromMedia(ctx context.Context, cand *reddit.Candidate) (*Asset, error) {
	videoPath := a.layout.RedditVideo()
	if err := media.Fetch(ctx, a.client, cand.MediaURL, videoPath); err != nil {
		return nil, fmt.Errorf("fetch candidate video: %w", err)
	}

	out := videoPath
	audioPath := a.layout.RedditAudio()
	if err := media.FetchFirst(ctx, a.client, cand.DashAudioVariants(), audioPath); err != nil {
		// silent posts exist; publish the video track alone
		a.log.Infow("no audio rendition found, using video as-is", "error", err)
	} else {
		out = a.layout.CombinedVideo()
		if err := a.proc.Combine(ctx, videoPath, audioPath, out); err != nil {
			return nil, fmt.Errorf("mux candidate streams: %w", err)
		}
	}

	dur, err := a.proc.Duration(ctx, out)
	if err != nil {
		dur = cand.Duration
	}
	return &Asset{VideoPath: out, Duration: dur}, nil
}

func (a *MediaAssembler) assembleFromText(ctx context.Context, cand *reddit.Candidate) (*Asset, error) {
	narration := narrationText(cand)

	voicePath := a.layout.Voiceover(a.speech.Extension())
	if err := a.speech.Synthesize(ctx, narration, voicePath); err != nil {
		return nil, fmt.Errorf("synthesize voiceover: %w", err)
	}
	voiceDur, err := a.proc.Duration(ctx, voicePath)
	if err != nil {
		return nil, fmt.Errorf("probe voiceover: %w", err)
	}

	cues, err := a.timer.Synthesize(narration, voiceDur)
	if err != nil {
		return nil, fmt.Errorf("time captions: %w", err)
	}
	srtPath := a.layout.Subtitles()
	if err := subtitle.WriteSRT(cues, srtPath); err != nil {
		return nil, fmt.Errorf("write captions: %w", err)
	}

	bgPath := a.layout.BackgroundVideo()
	if err := a.fetchBackground(ctx, bgPath); err != nil {
		return nil, err
	}
	bgDur, err := a.proc.Duration(ctx, bgPath)
	if err != nil {
		return nil, fmt.Errorf("probe background video: %w", err)
	}

	offset := baseOffset(bgDur, voiceDur, a.minStart, a.random())
	basePath := a.layout.BaseVideo()
	if err := a.proc.CreateBase(ctx, bgPath, voicePath, offset, voiceDur, basePath); err != nil {
		return nil, fmt.Errorf("cut base video: %w", err)
	}

	finalPath := a.layout.SubtitledVideo()
	if err := a.proc.BurnSubtitles(ctx, basePath, srtPath, finalPath); err != nil {
		return nil, fmt.Errorf("burn captions: %w", err)
	}

	return &Asset{VideoPath: finalPath, Duration: voiceDur}, nil
}

// backgroundAttempts bounds how many pool draws a restricted video gets.
const backgroundAttempts = 3

// fetchBackground downloads a background clip from the fallback pool. A
// restricted video is not a dead end: the pool gets re-drawn, up to
// backgroundAttempts picks.
func (a *MediaAssembler) fetchBackground(ctx context.Context, outputPath string) error {
	var lastErr error
	for attempt := 1; attempt <= backgroundAttempts; attempt++ {
		url, err := a.fallback()
		if err != nil {
			return err
		}
		lastErr = a.fetcher.Download(ctx, url, outputPath)
		if lastErr == nil {
			return nil
		}
		if !errors.Is(lastErr, media.ErrRestricted) {
			return fmt.Errorf("fetch background video: %w", lastErr)
		}
		a.log.Infow("background video restricted, drawing another",
			"attempt", attempt,
			"error", lastErr,
		)
	}
	return fmt.Errorf("fetch background video after %d picks: %w", backgroundAttempts, lastErr)
}

func (a *MediaAssembler) FormatShorts(ctx context.Context, asset *Asset) (*Asset, error) {
	out := a.layout.ShortsVideo()
	if err := a.proc.FormatShorts(ctx, asset.VideoPath, out); err != nil {
		return nil, err
	}
	return &Asset{VideoPath: out, Duration: asset.Duration}, nil
}

// narrationText is what the voiceover reads: the post title, then the body.
func narrationText(cand *reddit.Candidate) string {
	title := strings.TrimSpace(cand.Title)
	body := strings.TrimSpace(cand.Body)
	switch {
	case title == "":
		return body
	case body == "":
		return title
	}
	if !strings.ContainsAny(title[len(title)-1:], ".!?") {
		title += "."
	}
	return title + " " + body
}

// baseOffset picks where the background subclip starts. r is a uniform
// draw in [0, 1). The subclip always fits inside the background video.
func baseOffset(bgDur, voiceDur, minStart time.Duration, r float64) time.Duration {
	latest := bgDur - voiceDur
	if latest <= 0 {
		return 0
	}
	if latest <= minStart {
		return time.Duration(r * float64(latest))
	}
	window := latest - minStart
	return minStart + time.Duration(r*float64(window))
}
