package poller

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/roadwatch/camsnap/internal/storage"
	"github.com/roadwatch/camsnap/internal/telemetry"
)

const defaultImageExt = ".jpg"

// FileSystemSink persists images under <root>/<cameraID>/<timestamp><ext>
// and optionally mirrors each file to a remote object store. The local
// write is the primary success criterion; a mirror failure is recorded and
// logged but never fails the store.
type FileSystemSink struct {
	root         string
	mirror       storage.Provider
	mirrorPrefix string
	logger       *zap.Logger
}

// NewFileSystemSink creates the output root and returns a sink. Pass a nil
// mirror to persist locally only.
func NewFileSystemSink(root string, mirror storage.Provider, mirrorPrefix string, logger *zap.Logger) (*FileSystemSink, error) {
	if root == "" {
		return nil, fmt.Errorf("output root is required")
	}
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("create output root %s: %w", root, err)
	}
	return &FileSystemSink{
		root:         root,
		mirror:       mirror,
		mirrorPrefix: mirrorPrefix,
		logger:       logger,
	}, nil
}

// Store writes a successful attempt to disk atomically, then mirrors it.
// Failed attempts perform no I/O and return a zero result.
func (s *FileSystemSink) Store(ctx context.Context, attempt FetchAttempt) SinkResult {
	if !attempt.Succeeded() {
		return SinkResult{}
	}

	name := attempt.AttemptedAt.UTC().Format("20060102T150405Z") + imageExt(attempt.SourceURL)
	dir := filepath.Join(s.root, attempt.CameraID)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return SinkResult{Err: fmt.Errorf("create camera dir %s: %w", dir, err)}
	}

	target := filepath.Join(dir, name)
	if err := writeFileAtomic(dir, target, attempt.Body); err != nil {
		return SinkResult{Err: err}
	}
	telemetry.AddPersistedBytes(len(attempt.Body))

	result := SinkResult{Stored: true, Path: target}
	if s.mirror != nil {
		result.MirrorKey = s.mirrorKey(attempt.CameraID, name)
		if err := s.mirror.Put(ctx, result.MirrorKey, attempt.ContentType, attempt.Body); err != nil {
			result.MirrorErr = err
			telemetry.IncMirrorFailure()
			s.logger.Warn("mirror copy failed",
				zap.String("camera_id", attempt.CameraID),
				zap.String("key", result.MirrorKey),
				zap.Error(err),
			)
		}
	}
	return result
}

func (s *FileSystemSink) mirrorKey(cameraID, name string) string {
	if s.mirrorPrefix == "" {
		return path.Join(cameraID, name)
	}
	return path.Join(s.mirrorPrefix, cameraID, name)
}

// writeFileAtomic writes via a temp file in the same directory and renames
// it into place, so a concurrent reader never observes a partial file.
func writeFileAtomic(dir, target string, data []byte) error {
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0o640); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename %s to %s: %w", tmpName, target, err)
	}
	return nil
}

// imageExt derives the file extension from the source URL path, defaulting
// to .jpg when the URL carries none.
func imageExt(sourceURL string) string {
	u, err := url.Parse(sourceURL)
	if err != nil {
		return defaultImageExt
	}
	if ext := path.Ext(u.Path); ext != "" {
		return ext
	}
	return defaultImageExt
}
