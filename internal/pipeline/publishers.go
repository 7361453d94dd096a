package pipeline

import (
	"context"
	"net/http"

	"shortpost/internal/browser"
	"shortpost/internal/compose"
	"shortpost/internal/logging"
	"shortpost/internal/retry"
	"shortpost/internal/upload"
	"shortpost/internal/workflow"
)

// SessionFactory opens a fresh browser session per publish.
type SessionFactory func(ctx context.Context) (browser.Session, func(), error)

// InstagramPublisher shares videos through the declarative browser flow.
type InstagramPublisher struct {
	driver     *workflow.Driver
	newSession SessionFactory
	login      workflow.InstagramLogin
}

func NewInstagramPublisher(driver *workflow.Driver, newSession SessionFactory, login workflow.InstagramLogin) *InstagramPublisher {
	return &InstagramPublisher{
		driver:     driver,
		newSession: newSession,
		login:      login,
	}
}

func (p *InstagramPublisher) Publish(ctx context.Context, videoPath, caption string) error {
	session, closeSession, err := p.newSession(ctx)
	if err != nil {
		return err
	}
	defer closeSession()

	steps := workflow.InstagramPublishSteps(p.login, videoPath, caption)
	return p.driver.Run(ctx, session, p.login.URL, steps)
}

// YouTubeUploader runs the resumable chunk upload against the videos API.
type YouTubeUploader struct {
	client     *http.Client
	chunkSize  int64
	retryCfg   retry.Config
	categoryID string
	privacy    string
	log        *logging.Logger
}

func NewYouTubeUploader(client *http.Client, chunkSize int64, retryCfg retry.Config, categoryID, privacy string, log *logging.Logger) *YouTubeUploader {
	return &YouTubeUploader{
		client:     client,
		chunkSize:  chunkSize,
		retryCfg:   retryCfg,
		categoryID: categoryID,
		privacy:    privacy,
		log:        log,
	}
}

func (u *YouTubeUploader) Upload(ctx context.Context, videoPath string, pub *compose.Copy) (string, error) {
	transport := upload.NewYouTubeTransport(u.client, upload.Metadata{
		Title:       pub.Title,
		Description: pub.Description,
		CategoryID:  u.categoryID,
		Privacy:     u.privacy,
	})
	controller := upload.NewController(transport, u.chunkSize, u.retryCfg, u.log)

	sess := &upload.Session{
		Destination: "youtube",
		Path:        videoPath,
	}
	return controller.Upload(ctx, sess)
}
