package cli

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"shortpost/internal/auth"
	"shortpost/internal/backup"
	"shortpost/internal/browser"
	"shortpost/internal/compose"
	"shortpost/internal/config"
	"shortpost/internal/media"
	"shortpost/internal/pipeline"
	"shortpost/internal/reddit"
	"shortpost/internal/retry"
	"shortpost/internal/speech"
	"shortpost/internal/workflow"
)

var postCmd = &cobra.Command{
	Use:   "post",
	Short: "Create a short video from a top subreddit post and publish it",
	Long: `Fetch a top post from a configured subreddit, build a short video from
it and publish the result to Instagram and YouTube.

Posts with their own video are downloaded and remuxed. Text posts are
narrated with AI text-to-speech over a background clip with burned-in
captions. Clips under a minute are reformatted vertically before the
YouTube upload.

After publishing, the run's artifacts are archived, backed up to Google
Drive and removed locally.

Examples:
  shortpost post
  shortpost post --max-trials 3 --no-headless
  shortpost post --skip-backup`,
	Args: cobra.NoArgs,
	RunE: runPost,
}

func init() {
	rootCmd.AddCommand(postCmd)

	postCmd.Flags().
		Int("max-trials", 0, "Override the configured number of candidate trials")
	postCmd.Flags().
		Bool("no-headless", false, "Run the browser with a visible window")
	postCmd.Flags().
		Bool("skip-backup", false, "Skip the Drive backup and keep artifacts locally")
}

func runPost(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	maxTrials, _ := cmd.Flags().GetInt("max-trials")
	if maxTrials <= 0 {
		maxTrials = cfg.MaxTrials
	}
	noHeadless, _ := cmd.Flags().GetBool("no-headless")
	skipBackup, _ := cmd.Flags().GetBool("skip-backup")

	runID := uuid.NewString()
	workDir := filepath.Join(cfg.WorkDir, "run-"+runID[:8])
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return fmt.Errorf("create work dir: %w", err)
	}
	layout := media.NewLayout(workDir)

	logger.Infow("Starting publishing run",
		"run_id", runID,
		"work_dir", workDir,
		"max_trials", maxTrials,
	)

	synth, err := newSynthesizer(ctx, cfg)
	if err != nil {
		return err
	}
	composer := newComposer(cfg)

	googleClient, err := auth.NewClient(ctx, cfg.CredentialsFile, cfg.TokenFile)
	if err != nil {
		return fmt.Errorf("google auth: %w", err)
	}

	seed := time.Now().UnixNano()
	source := reddit.NewSource(reddit.NewClient(cfg.UserAgent), cfg.Subreddits, cfg.VideoPool, seed)

	rng := rand.New(rand.NewSource(seed))
	assembler := pipeline.NewMediaAssembler(pipeline.AssemblerOptions{
		Layout:   layout,
		Speech:   synth,
		Fallback: source.FallbackVideo,
		MinStart: cfg.BaseVideoMinStart,
		Random:   rng.Float64,
		Log:      logger,
	})

	wfCfg := workflow.DefaultConfig()
	wfCfg.Humanlike = cfg.Humanlike
	driver := workflow.NewDriver(wfCfg, logger)
	social := pipeline.NewInstagramPublisher(driver,
		func(ctx context.Context) (browser.Session, func(), error) {
			return browser.NewChromeSession(ctx, !noHeadless)
		},
		workflow.InstagramLogin{
			URL:      cfg.InstagramURL,
			Username: cfg.InstagramUser,
			Password: cfg.InstagramPass,
		},
	)

	retryCfg := retry.DefaultConfig()
	retryCfg.MaxAttempts = cfg.MaxAttempts
	retryCfg.BaseDelay = cfg.BaseDelay
	uploader := pipeline.NewYouTubeUploader(googleClient, cfg.UploadChunkSize, retryCfg,
		cfg.YouTubeCategoryID, cfg.YouTubePrivacy, logger)

	orchestrator := pipeline.NewOrchestrator(source, assembler, composer, social, uploader, logger)

	report, err := orchestrator.Run(ctx, maxTrials)
	if err != nil {
		return err
	}

	logger.Infow("Run published",
		"trial", report.Trial,
		"title", report.Copy.Title,
		"remote_id", report.RemoteID,
	)

	if err := archiveRun(ctx, cfg, googleClient, layout, workDir, skipBackup); err != nil {
		return err
	}

	fmt.Printf("Published %q\n", report.Copy.Title)
	fmt.Printf("  Trial: %d\n", report.Trial)
	fmt.Printf("  Video ID: %s\n", report.RemoteID)

	return nil
}

func newSynthesizer(ctx context.Context, cfg *config.Config) (speech.Synthesizer, error) {
	provider := speech.Provider(cfg.SpeechProvider)
	key := cfg.OpenAIKey
	if provider == speech.ProviderGemini {
		key = cfg.GeminiKey
	}
	return speech.Factory(ctx, provider, key, speech.Options{
		WordsPerMinute: cfg.WordsPerMinute,
	})
}

func newComposer(cfg *config.Config) compose.Composer {
	if cfg.AnthropicKey == "" {
		logger.Infow("No LLM key configured, using post title as publish copy")
		return compose.StaticComposer{}
	}
	composer, err := compose.NewAnthropicComposer(cfg.AnthropicKey, "")
	if err != nil {
		logger.Warnw("LLM composer unavailable, falling back to static copy", "error", err)
		return compose.StaticComposer{}
	}
	return composer
}

// archiveRun gathers the surviving artifacts into a dated folder, mirrors
// it to Drive and removes the local copies.
func archiveRun(ctx context.Context, cfg *config.Config, client *http.Client, layout media.Layout, workDir string, skipBackup bool) error {
	archiveDir, err := backup.Organize(cfg.WorkDir, layout.All(), time.Now())
	if err != nil {
		return err
	}

	if skipBackup {
		logger.Infow("Backup skipped, keeping artifacts", "dir", archiveDir)
		return nil
	}

	service, err := drive.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return fmt.Errorf("drive service: %w", err)
	}
	if err := backup.NewDrive(service, cfg.DriveFolderID, logger).Backup(ctx, archiveDir); err != nil {
		return fmt.Errorf("drive backup: %w", err)
	}

	if err := backup.Cleanup(archiveDir, workDir); err != nil {
		return err
	}
	logger.Infow("Artifacts backed up and cleaned up", "dir", archiveDir)
	return nil
}
