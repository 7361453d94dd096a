// Package backup archives run artifacts locally and mirrors them to Drive.
package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"

	"shortpost/internal/logging"
)

// Organize moves the artifacts that exist into a fresh timestamped directory
// under archiveRoot and returns its path. Artifacts that were never produced
// on this run are skipped.
func Organize(archiveRoot string, artifacts []string, now time.Time) (string, error) {
	dir := filepath.Join(archiveRoot, now.Format("2006-01-02_15-04-05"))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create archive dir: %w", err)
	}

	for _, path := range artifacts {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		dest := filepath.Join(dir, filepath.Base(path))
		if err := os.Rename(path, dest); err != nil {
			return "", fmt.Errorf("move %s: %w", path, err)
		}
	}
	return dir, nil
}

// Cleanup removes the archive directory and any leftover paths.
func Cleanup(dir string, extra ...string) error {
	if err := os.RemoveAll(dir); err != nil {
		return err
	}
	for _, path := range extra {
		if err := os.RemoveAll(path); err != nil {
			return err
		}
	}
	return nil
}

// Drive mirrors a local archive directory into a Drive folder.
type Drive struct {
	files    fileCreator
	parentID string
	log      *logging.Logger
}

// fileCreator is the slice of the Drive API the uploader needs.
type fileCreator interface {
	Create(ctx context.Context, meta *drive.File, localPath string) (*drive.File, error)
}

type driveFiles struct {
	service *drive.Service
}

func (d *driveFiles) Create(ctx context.Context, meta *drive.File, localPath string) (*drive.File, error) {
	call := d.service.Files.Create(meta).Context(ctx)
	if localPath != "" {
		f, err := os.Open(localPath)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		call = call.Media(f, googleapi.ChunkSize(4*1024*1024))
	}
	return call.Do()
}

// NewDrive wraps an authenticated Drive service. parentID is the folder the
// archives land under; empty means the Drive root.
func NewDrive(service *drive.Service, parentID string, log *logging.Logger) *Drive {
	return &Drive{
		files:    &driveFiles{service: service},
		parentID: parentID,
		log:      log,
	}
}

// Backup creates a remote folder named after dir and uploads every regular
// file inside it.
func (d *Drive) Backup(ctx context.Context, dir string) error {
	meta := &drive.File{
		Name:     filepath.Base(dir),
		MimeType: "application/vnd.google-apps.folder",
	}
	if d.parentID != "" {
		meta.Parents = []string{d.parentID}
	}

	folder, err := d.files.Create(ctx, meta, "")
	if err != nil {
		return fmt.Errorf("create backup folder: %w", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read archive dir: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		local := filepath.Join(dir, entry.Name())
		d.log.Infow("uploading backup file", "file", entry.Name())
		_, err := d.files.Create(ctx, &drive.File{
			Name:    entry.Name(),
			Parents: []string{folder.Id},
		}, local)
		if err != nil {
			return fmt.Errorf("upload %s: %w", entry.Name(), err)
		}
	}
	return nil
}
