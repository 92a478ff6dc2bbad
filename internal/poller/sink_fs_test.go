package poller

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/roadwatch/camsnap/internal/storage"
)

var testInstant = time.Date(2026, 6, 15, 8, 30, 0, 0, time.UTC)

func successAttempt(cameraID string, body []byte) FetchAttempt {
	return NewSuccessAttempt(cameraID, testInstant, body, "image/jpeg", "https://img.example.com/"+cameraID+".jpg")
}

func TestStoreWritesTimestampedFile(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	sink, err := NewFileSystemSink(root, nil, "", zaptest.NewLogger(t))
	require.NoError(t, err)

	body := []byte("jpeg-bytes")
	result := sink.Store(context.Background(), successAttempt("1001", body))

	require.True(t, result.Stored)
	require.NoError(t, result.Err)
	require.Equal(t, filepath.Join(root, "1001", "20260615T083000Z.jpg"), result.Path)

	got, err := os.ReadFile(result.Path)
	require.NoError(t, err)
	require.Equal(t, body, got)
}

func TestStoreDefaultsExtensionToJPG(t *testing.T) {
	t.Parallel()

	sink, err := NewFileSystemSink(t.TempDir(), nil, "", zaptest.NewLogger(t))
	require.NoError(t, err)

	attempt := NewSuccessAttempt("1001", testInstant, []byte("x"), "image/jpeg", "https://img.example.com/current?camera=1001")
	result := sink.Store(context.Background(), attempt)
	require.True(t, result.Stored)
	require.Equal(t, ".jpg", filepath.Ext(result.Path))
}

func TestStoreKeepsSourceExtension(t *testing.T) {
	t.Parallel()

	sink, err := NewFileSystemSink(t.TempDir(), nil, "", zaptest.NewLogger(t))
	require.NoError(t, err)

	attempt := NewSuccessAttempt("1001", testInstant, []byte("x"), "image/png", "https://img.example.com/1001.png")
	result := sink.Store(context.Background(), attempt)
	require.Equal(t, ".png", filepath.Ext(result.Path))
}

func TestStoreFailedAttemptPerformsNoIO(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	sink, err := NewFileSystemSink(root, nil, "", zaptest.NewLogger(t))
	require.NoError(t, err)

	result := sink.Store(context.Background(), NewFailedAttempt("1001", testInstant, "timeout"))
	require.False(t, result.Stored)
	require.Empty(t, result.Path)

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestStoreLeavesNoTempFiles(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	sink, err := NewFileSystemSink(root, nil, "", zaptest.NewLogger(t))
	require.NoError(t, err)

	result := sink.Store(context.Background(), successAttempt("1001", []byte("payload")))
	require.True(t, result.Stored)

	leftovers, err := filepath.Glob(filepath.Join(root, "1001", ".tmp-*"))
	require.NoError(t, err)
	require.Empty(t, leftovers)
}

// TestStoreDuplicateAttemptIsAtomic replays the same attempt and checks the
// final file is always complete, never a partial mix.
func TestStoreDuplicateAttemptIsAtomic(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	sink, err := NewFileSystemSink(root, nil, "", zaptest.NewLogger(t))
	require.NoError(t, err)

	body := []byte("complete-image-payload")
	first := sink.Store(context.Background(), successAttempt("1001", body))
	second := sink.Store(context.Background(), successAttempt("1001", body))
	require.True(t, first.Stored)
	require.True(t, second.Stored)
	require.Equal(t, first.Path, second.Path)

	got, err := os.ReadFile(first.Path)
	require.NoError(t, err)
	require.Equal(t, body, got)
}

func TestStoreMirrorsUnderPrefixedKey(t *testing.T) {
	t.Parallel()

	mirror := storage.NewMemoryProvider()
	sink, err := NewFileSystemSink(t.TempDir(), mirror, "raw", zaptest.NewLogger(t))
	require.NoError(t, err)

	body := []byte("jpeg-bytes")
	result := sink.Store(context.Background(), successAttempt("1001", body))

	require.True(t, result.Stored)
	require.NoError(t, result.MirrorErr)
	require.Equal(t, "raw/1001/20260615T083000Z.jpg", result.MirrorKey)

	stored, ok := mirror.Get(result.MirrorKey)
	require.True(t, ok)
	require.Equal(t, body, stored)
	require.Equal(t, "image/jpeg", mirror.ContentType(result.MirrorKey))
}

func TestStoreMirrorsWithoutPrefix(t *testing.T) {
	t.Parallel()

	mirror := storage.NewMemoryProvider()
	sink, err := NewFileSystemSink(t.TempDir(), mirror, "", zaptest.NewLogger(t))
	require.NoError(t, err)

	result := sink.Store(context.Background(), successAttempt("1001", []byte("x")))
	require.Equal(t, "1001/20260615T083000Z.jpg", result.MirrorKey)
}

// TestStoreMirrorFailureKeepsLocalFile pins the priority: local durability
// wins, the mirror error is recorded, and the run can continue.
func TestStoreMirrorFailureKeepsLocalFile(t *testing.T) {
	t.Parallel()

	mirror := storage.NewMemoryProvider()
	mirror.FailWith = errors.New("bucket unavailable")

	sink, err := NewFileSystemSink(t.TempDir(), mirror, "raw", zaptest.NewLogger(t))
	require.NoError(t, err)

	body := []byte("jpeg-bytes")
	result := sink.Store(context.Background(), successAttempt("1001", body))

	require.True(t, result.Stored)
	require.Error(t, result.MirrorErr)

	got, err := os.ReadFile(result.Path)
	require.NoError(t, err)
	require.Equal(t, body, got)
	require.Zero(t, mirror.Len())
}

func TestNewFileSystemSinkRequiresRoot(t *testing.T) {
	t.Parallel()

	_, err := NewFileSystemSink("", nil, "", zaptest.NewLogger(t))
	require.Error(t, err)
}
