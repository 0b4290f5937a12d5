package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestProvider(t *testing.T) (*LocalProvider, string) {
	t.Helper()
	dir := t.TempDir()
	provider, err := NewLocalProvider(dir)
	require.NoError(t, err)
	return provider, dir
}

func TestLocalProvider_PutObject(t *testing.T) {
	provider, baseDir := setupTestProvider(t)

	content := []byte("Test content")

	err := provider.PutObject(context.Background(), "test-bucket", "docs/a.json", bytes.NewReader(content))
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(baseDir, "test-bucket", "docs", "a.json"))
	require.NoError(t, err)
	assert.Equal(t, content, data)
}

func TestLocalProvider_GetObject(t *testing.T) {
	provider, _ := setupTestProvider(t)

	require.NoError(t, provider.PutObject(context.Background(), "b", "k.txt", bytes.NewReader([]byte("abc"))))

	data, err := provider.GetObject(context.Background(), "b", "k.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), data)

	_, err = provider.GetObject(context.Background(), "b", "missing.txt")
	assert.Error(t, err)
}

func TestLocalProvider_ListObjectsSorted(t *testing.T) {
	provider, _ := setupTestProvider(t)
	ctx := context.Background()

	for _, name := range []string{"c.json", "a.json", "b.yaml"} {
		require.NoError(t, provider.PutObject(ctx, "b", filepath.Join("docs", name), bytes.NewReader([]byte("x"))))
	}
	require.NoError(t, provider.PutObject(ctx, "b", "docs/nested/d.json", bytes.NewReader([]byte("x"))))

	objects, err := provider.ListObjects(ctx, "b", "docs")
	require.NoError(t, err)

	var names []string
	for _, obj := range objects {
		names = append(names, obj.Name)
	}
	assert.Equal(t, []string{"docs/a.json", "docs/b.yaml", "docs/c.json"}, names)
}

func TestParseS3URI(t *testing.T) {
	bucket, prefix, err := ParseS3URI("s3://docs-bucket/support/v1")
	require.NoError(t, err)
	assert.Equal(t, "docs-bucket", bucket)
	assert.Equal(t, "support/v1", prefix)

	bucket, prefix, err = ParseS3URI("s3://docs-bucket")
	require.NoError(t, err)
	assert.Equal(t, "docs-bucket", bucket)
	assert.Equal(t, "", prefix)

	_, _, err = ParseS3URI("docs-bucket/x")
	assert.Error(t, err)

	_, _, err = ParseS3URI("s3:///x")
	assert.Error(t, err)
}
