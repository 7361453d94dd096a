package upload

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"shortpost/internal/retry"
)

func fastRetry(maxAttempts int) retry.Config {
	return retry.Config{
		MaxAttempts: maxAttempts,
		BaseDelay:   time.Millisecond,
		Sleep:       func(context.Context, time.Duration) error { return nil },
		Rand:        func() float64 { return 0 },
	}
}

// fakeTransport records every chunk and can inject failures per call.
type fakeTransport struct {
	size     int64
	received []byte
	offsets  []int64
	failures int // fail this many calls before succeeding
	remoteID string
	noID     bool
}

func (f *fakeTransport) SendChunk(_ context.Context, sess *Session, offset int64, data []byte) (*ChunkResult, error) {
	if f.failures > 0 {
		f.failures--
		return nil, errors.New("connection reset")
	}

	f.offsets = append(f.offsets, offset)
	if offset != int64(len(f.received)) {
		return nil, fmt.Errorf("out of order chunk at %d, have %d bytes", offset, len(f.received))
	}
	f.received = append(f.received, data...)

	if int64(len(f.received)) >= f.size {
		if f.noID {
			return &ChunkResult{Done: true}, nil
		}
		return &ChunkResult{Done: true, RemoteID: f.remoteID}, nil
	}
	return &ChunkResult{}, nil
}

func writeTempFile(t *testing.T, size int) string {
	t.Helper()
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i % 251)
	}
	path := filepath.Join(t.TempDir(), "video.mp4")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func TestUploadFailsTwiceThenSucceeds(t *testing.T) {
	const size = 1000
	path := writeTempFile(t, size)

	transport := &fakeTransport{size: size, failures: 2, remoteID: "vid-123"}
	ctrl := NewController(transport, 256, fastRetry(5), nil)

	sess := &Session{Destination: "youtube", Path: path}
	id, err := ctrl.Upload(context.Background(), sess)
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}
	if id != "vid-123" {
		t.Errorf("expected remote id vid-123, got %q", id)
	}

	// full byte range exactly once, no duplicates or gaps
	if int64(len(transport.received)) != size {
		t.Errorf("expected %d bytes uploaded, got %d", size, len(transport.received))
	}
	want, _ := os.ReadFile(path)
	for i := range want {
		if transport.received[i] != want[i] {
			t.Fatalf("byte %d differs", i)
		}
	}

	if sess.Acked != size {
		t.Errorf("expected Acked %d, got %d", size, sess.Acked)
	}
	if sess.Retries != 2 {
		t.Errorf("expected 2 recorded retries, got %d", sess.Retries)
	}
}

func TestUploadChunkRetryReusesByteRange(t *testing.T) {
	const size = 600
	path := writeTempFile(t, size)

	// first call of the second chunk fails; its retry must reuse offset 256
	transport := &fakeTransport{size: size, remoteID: "vid-9"}
	wrapped := &failAtOffset{inner: transport, failOffset: 256, failures: 1}
	ctrl := NewController(wrapped, 256, fastRetry(3), nil)

	sess := &Session{Destination: "youtube", Path: path}
	if _, err := ctrl.Upload(context.Background(), sess); err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}

	wantOffsets := []int64{0, 256, 512}
	if len(transport.offsets) != len(wantOffsets) {
		t.Fatalf("expected offsets %v, got %v", wantOffsets, transport.offsets)
	}
	for i, off := range wantOffsets {
		if transport.offsets[i] != off {
			t.Errorf("offset %d: expected %d, got %d", i, off, transport.offsets[i])
		}
	}
}

type failAtOffset struct {
	inner      *fakeTransport
	failOffset int64
	failures   int
}

func (f *failAtOffset) SendChunk(ctx context.Context, sess *Session, offset int64, data []byte) (*ChunkResult, error) {
	if offset == f.failOffset && f.failures > 0 {
		f.failures--
		return nil, errors.New("timeout")
	}
	return f.inner.SendChunk(ctx, sess, offset, data)
}

func TestUploadExhaustedRetriesIsFatal(t *testing.T) {
	path := writeTempFile(t, 100)

	transport := &fakeTransport{size: 100, failures: 100}
	ctrl := NewController(transport, 256, fastRetry(3), nil)

	sess := &Session{Destination: "youtube", Path: path}
	_, err := ctrl.Upload(context.Background(), sess)
	if !errors.Is(err, retry.ErrRetriesExhausted) {
		t.Errorf("expected retries exhausted, got %v", err)
	}
	if sess.Acked != 0 {
		t.Errorf("no chunk was acknowledged, Acked should be 0, got %d", sess.Acked)
	}
}

func TestUploadCompletionWithoutIDIsUnexpectedResponse(t *testing.T) {
	path := writeTempFile(t, 100)

	transport := &fakeTransport{size: 100, noID: true}
	ctrl := NewController(transport, 256, fastRetry(3), nil)

	sess := &Session{Destination: "youtube", Path: path}
	_, err := ctrl.Upload(context.Background(), sess)
	if !errors.Is(err, ErrUnexpectedResponse) {
		t.Errorf("expected ErrUnexpectedResponse, got %v", err)
	}
}

func TestUploadAckedNeverRewinds(t *testing.T) {
	const size = 768
	path := writeTempFile(t, size)

	transport := &fakeTransport{size: size, remoteID: "vid-1"}
	tracker := &ackTracker{inner: transport}
	ctrl := NewController(tracker, 256, fastRetry(3), nil)

	sess := &Session{Destination: "youtube", Path: path}
	tracker.sess = sess
	if _, err := ctrl.Upload(context.Background(), sess); err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}

	for i := 1; i < len(tracker.acks); i++ {
		if tracker.acks[i] < tracker.acks[i-1] {
			t.Fatalf("Acked rewound: %v", tracker.acks)
		}
	}
}

type ackTracker struct {
	inner *fakeTransport
	sess  *Session
	acks  []int64
}

func (a *ackTracker) SendChunk(ctx context.Context, sess *Session, offset int64, data []byte) (*ChunkResult, error) {
	a.acks = append(a.acks, a.sess.Acked)
	return a.inner.SendChunk(ctx, sess, offset, data)
}
