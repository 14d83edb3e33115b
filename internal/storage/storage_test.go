package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"btcpay-plugins/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildObjectPath(t *testing.T) {
	now := time.Date(2024, 3, 7, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, "payroll/2024/03/07/abc-def.pdf", buildObjectPath(now, "Payroll", "abc def", ".PDF"))
	assert.Equal(t, "misc/2024/03/07/x.bin", buildObjectPath(now, "", "x", ""))
	assert.Contains(t, buildObjectPath(now, "payroll", "", "png"), "payroll/2024/03/07/")
}

func TestJoinPrefix(t *testing.T) {
	assert.Equal(t, "uploads/a/b.pdf", joinPrefix("/uploads/", "/a/b.pdf"))
	assert.Equal(t, "a/b.pdf", joinPrefix("", "/a/b.pdf"))
}

func TestDetectContentType(t *testing.T) {
	assert.Equal(t, "application/pdf", detectContentType("pdf"))
	assert.Equal(t, "application/octet-stream", detectContentType(""))
}

func TestLocalStorageSaveAndDelete(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStorage(dir)
	require.NoError(t, err)
	ctx := context.Background()

	key, err := s.Save(ctx, []byte("%PDF-1.4"), SaveOptions{Category: "payroll", BaseName: "inv-1", Extension: "pdf"})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(key)))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))

	require.NoError(t, s.Delete(ctx, key))
	_, err = os.Stat(filepath.Join(dir, filepath.FromSlash(key)))
	assert.True(t, os.IsNotExist(err))

	// second delete is a no-op
	assert.NoError(t, s.Delete(ctx, key))
}

func TestLocalStorageOpen(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	key, err := s.Save(ctx, []byte("%PDF-1.7 body"), SaveOptions{Category: "payroll", BaseName: "inv-2", Extension: "pdf"})
	require.NoError(t, err)

	rc, err := s.Open(ctx, key)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7 body", string(data))

	require.NoError(t, s.Delete(ctx, key))
	_, err = s.Open(ctx, key)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Open(ctx, "../../etc/passwd")
	assert.Error(t, err)
}

func TestLocalStorageRejectsEmptyAndEscapingKeys(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = s.Save(context.Background(), nil, SaveOptions{})
	assert.Error(t, err)

	assert.Error(t, s.Delete(context.Background(), "../outside.txt"))
}

func TestNewStorageUnknownType(t *testing.T) {
	_, err := NewStorage(&config.Config{StorageType: "ftp"})
	assert.ErrorContains(t, err, "unsupported storage type")
}

func TestNewStorageRemoteBackendsValidateConfig(t *testing.T) {
	_, err := NewStorage(&config.Config{StorageType: TypeS3})
	assert.ErrorContains(t, err, "missing S3 bucket")

	_, err = NewStorage(&config.Config{StorageType: TypeOSS})
	assert.ErrorContains(t, err, "missing OSS endpoint")

	_, err = NewStorage(&config.Config{StorageType: TypeCOS})
	assert.ErrorContains(t, err, "missing COS bucket URL")
}
