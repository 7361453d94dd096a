// Package upload drives chunked resumable uploads to completion.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"shortpost/internal/logging"
	"shortpost/internal/retry"
)

// returned when the service signals completion without a remote identifier
var ErrUnexpectedResponse = errors.New("upload completed with unexpected response")

// Session tracks one upload from start to terminal success or abort.
// It is owned by the Controller for the lifetime of one Upload call.
type Session struct {
	// Destination names the target service, for logs and errors.
	Destination string
	// Path is the local source file.
	Path string
	// Size is the total byte size; filled from the file when zero.
	Size int64
	// Acked is the count of bytes the service has acknowledged. It only
	// ever advances; a chunk retry reuses the same byte range.
	Acked int64
	// Retries counts transient failures across the whole upload.
	Retries int
	// LastErr holds the most recent transient error, if any.
	LastErr error
}

// ChunkResult reports the service's answer to one chunk.
type ChunkResult struct {
	// Done is true once the service considers the upload complete.
	Done bool
	// RemoteID is the identifier of the uploaded object; required when Done.
	RemoteID string
}

// ChunkTransport sends one byte range of a session to the remote service.
// Implementations return an error for transient transport failures and a
// retry.Permanent for failures that must not be retried.
type ChunkTransport interface {
	SendChunk(ctx context.Context, sess *Session, offset int64, data []byte) (*ChunkResult, error)
}

// Controller uploads a session chunk by chunk, retrying transient failures
// with backoff and aborting on anything fatal.
type Controller struct {
	transport ChunkTransport
	chunkSize int64
	retryCfg  retry.Config
	log       *logging.Logger
}

func NewController(transport ChunkTransport, chunkSize int64, retryCfg retry.Config, log *logging.Logger) *Controller {
	if chunkSize <= 0 {
		chunkSize = 8 * 1024 * 1024
	}
	if log == nil {
		log = logging.NewNop()
	}
	return &Controller{
		transport: transport,
		chunkSize: chunkSize,
		retryCfg:  retryCfg,
		log:       log,
	}
}

// Upload sends the session's file and returns the remote identifier.
// Exhausted retries or a malformed completion abort the whole upload.
func (c *Controller) Upload(ctx context.Context, sess *Session) (string, error) {
	file, err := os.Open(sess.Path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", sess.Path, err)
	}
	defer file.Close()

	if sess.Size == 0 {
		info, err := file.Stat()
		if err != nil {
			return "", fmt.Errorf("stat %s: %w", sess.Path, err)
		}
		sess.Size = info.Size()
	}

	buf := make([]byte, c.chunkSize)

	for {
		offset := sess.Acked

		n, err := file.ReadAt(buf, offset)
		if err != nil && err != io.EOF {
			return "", fmt.Errorf("read %s at %d: %w", sess.Path, offset, err)
		}
		if n == 0 {
			// service never signaled completion for the final chunk
			return "", fmt.Errorf("%s: ran out of bytes at %d: %w", sess.Destination, offset, ErrUnexpectedResponse)
		}
		chunk := buf[:n]

		var result *ChunkResult
		err = retry.Do(ctx, c.retryCfg, func(ctx context.Context) error {
			res, err := c.transport.SendChunk(ctx, sess, offset, chunk)
			if err != nil {
				sess.Retries++
				sess.LastErr = err
				c.log.Warnw("chunk failed",
					"destination", sess.Destination,
					"offset", offset,
					"retries", sess.Retries,
					"error", err,
				)
				return err
			}
			result = res
			return nil
		})
		if err != nil {
			return "", fmt.Errorf("%s upload aborted: %w", sess.Destination, err)
		}

		sess.Acked = offset + int64(n)

		if result.Done {
			if result.RemoteID == "" {
				return "", fmt.Errorf("%s: %w", sess.Destination, ErrUnexpectedResponse)
			}
			c.log.Infow("upload complete",
				"destination", sess.Destination,
				"remote_id", result.RemoteID,
				"bytes", sess.Acked,
			)
			return result.RemoteID, nil
		}

		if sess.Acked >= sess.Size {
			return "", fmt.Errorf("%s: all bytes sent without completion: %w", sess.Destination, ErrUnexpectedResponse)
		}
	}
}
