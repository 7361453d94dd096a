// Package pipeline runs the end-to-end publishing trial loop.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shortpost/internal/compose"
	"shortpost/internal/logging"
	"shortpost/internal/reddit"
)

// ErrExhaustedTrials is returned when every trial failed to produce a post.
var ErrExhaustedTrials = errors.New("all trials exhausted")

// shortsLimit is the duration under which the upload gets the vertical
// shorts treatment.
const shortsLimit = 60 * time.Second

// Asset is a finished local video ready to publish.
type Asset struct {
	VideoPath string
	Duration  time.Duration
}

// CandidateSource hands out one candidate per trial.
type CandidateSource interface {
	Next(ctx context.Context, index int) (*reddit.Candidate, error)
}

// Assembler turns a candidate into a publishable video file.
type Assembler interface {
	Assemble(ctx context.Context, cand *reddit.Candidate) (*Asset, error)
	// FormatShorts reframes an asset to the vertical shorts layout.
	FormatShorts(ctx context.Context, asset *Asset) (*Asset, error)
}

// SocialPublisher shares the video through the browser workflow.
type SocialPublisher interface {
	Publish(ctx context.Context, videoPath, caption string) error
}

// VideoUploader pushes the video to the hosting platform and returns the
// remote id.
type VideoUploader interface {
	Upload(ctx context.Context, videoPath string, copy *compose.Copy) (string, error)
}

// Report describes the trial that succeeded.
type Report struct {
	Trial     int
	Candidate *reddit.Candidate
	Copy      *compose.Copy
	VideoPath string
	RemoteID  string
}

// Orchestrator drives trials until one candidate is published everywhere.
type Orchestrator struct {
	source    CandidateSource
	assembler Assembler
	composer  compose.Composer
	social    SocialPublisher
	uploader  VideoUploader
	log       *logging.Logger
}

func NewOrchestrator(source CandidateSource, assembler Assembler, composer compose.Composer, social SocialPublisher, uploader VideoUploader, log *logging.Logger) *Orchestrator {
	return &Orchestrator{
		source:    source,
		assembler: assembler,
		composer:  composer,
		social:    social,
		uploader:  uploader,
		log:       log,
	}
}

// Run tries up to maxTrials candidates. Fetch and assembly problems are
// content problems and move on to the next trial; once publishing starts,
// any failure is fatal for the whole run so a half-published post is never
// silently retried with different content.
func (o *Orchestrator) Run(ctx context.Context, maxTrials int) (*Report, error) {
	if maxTrials < 1 {
		maxTrials = 1
	}

	var lastErr error
	for trial := 1; trial <= maxTrials; trial++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		cand, err := o.source.Next(ctx, trial-1)
		if err != nil {
			o.log.Warnw("candidate fetch failed", "trial", trial, "error", err)
			lastErr = err
			continue
		}
		if !cand.Usable() {
			o.log.Infow("candidate not usable, skipping", "trial", trial, "title", cand.Title)
			lastErr = fmt.Errorf("trial %d: %w", trial, reddit.ErrContentUnavailable)
			continue
		}

		asset, err := o.assembler.Assemble(ctx, cand)
		if err != nil {
			o.log.Warnw("assembly failed", "trial", trial, "error", err)
			lastErr = err
			continue
		}

		report, err := o.publish(ctx, trial, cand, asset)
		if err != nil {
			return nil, err
		}
		return report, nil
	}

	return nil, fmt.Errorf("%w after %d trials: %v", ErrExhaustedTrials, maxTrials, lastErr)
}

func (o *Orchestrator) publish(ctx context.Context, trial int, cand *reddit.Candidate, asset *Asset) (*Report, error) {
	pub, err := o.composer.Compose(ctx, cand)
	if err != nil {
		return nil, fmt.Errorf("compose publish copy: %w", err)
	}

	o.log.Infow("publishing to social", "trial", trial, "title", pub.Title)
	if err := o.social.Publish(ctx, asset.VideoPath, pub.Description); err != nil {
		return nil, fmt.Errorf("social publish: %w", err)
	}

	uploadAsset := asset
	// zero means the duration could not be determined; never reformat blind
	if asset.Duration > 0 && asset.Duration < shortsLimit {
		o.log.Infow("short clip, reformatting for vertical upload",
			"duration", asset.Duration)
		uploadAsset, err = o.assembler.FormatShorts(ctx, asset)
		if err != nil {
			return nil, fmt.Errorf("shorts reformat: %w", err)
		}
	}

	remoteID, err := o.uploader.Upload(ctx, uploadAsset.VideoPath, pub)
	if err != nil {
		return nil, fmt.Errorf("video upload: %w", err)
	}

	o.log.Infow("published", "trial", trial, "remote_id", remoteID)
	return &Report{
		Trial:     trial,
		Candidate: cand,
		Copy:      pub,
		VideoPath: uploadAsset.VideoPath,
		RemoteID:  remoteID,
	}, nil
}
